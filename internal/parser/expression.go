package parser

import (
	"strconv"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/token"
	"ash/internal/value"
)

func (p *Parser) parseExpr() (*ast.Expr, bool) {
	return p.parseBinary(precLogicalOr)
}

// parseBinary is precedence climbing over left-associative operators.
func (p *Parser) parseBinary(minPrec int) (*ast.Expr, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for {
		kind := p.lx.Peek().Kind
		prec := binaryPrec(kind)
		if prec == precNone || prec < minPrec {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinary(prec + 1)
		if !ok {
			return nil, false
		}
		left = &ast.Expr{
			Kind: ast.ExprBinary,
			Span: left.Span.Cover(right.Span),
			Data: &ast.BinaryData{Op: binaryOp(kind), Left: left, Right: right},
		}
	}
}

func (p *Parser) parseUnary() (*ast.Expr, bool) {
	var op ast.UnaryOp
	switch p.lx.Peek().Kind {
	case token.Minus:
		op = ast.UnaryNeg
	case token.Bang:
		op = ast.UnaryNot
	default:
		return p.parsePostfix()
	}
	tok := p.advance()
	operand, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	return &ast.Expr{
		Kind: ast.ExprUnary,
		Span: tok.Span.Cover(operand.Span),
		Data: &ast.UnaryData{Op: op, Operand: operand},
	}, true
}

// parsePostfix handles call suffixes: f(a, b)(c).
func (p *Parser) parsePostfix() (*ast.Expr, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for p.at(token.LParen) {
		p.advance()
		var args []*ast.Expr
		for !p.at(token.RParen) {
			arg, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			args = append(args, arg)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		closing, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close argument list")
		if !ok {
			return nil, false
		}
		expr = &ast.Expr{
			Kind: ast.ExprCall,
			Span: expr.Span.Cover(closing.Span),
			Data: &ast.CallData{Callee: expr, Args: args},
		}
	}
	return expr, true
}

func (p *Parser) parsePrimary() (*ast.Expr, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 32)
		if err != nil {
			p.report(diag.LexBadNumber, tok.Span, "integer literal out of I32 range")
			return nil, false
		}
		return literal(tok, value.MakeI32(int32(n))), true
	case token.FloatLit:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.report(diag.LexBadNumber, tok.Span, "float literal out of F64 range")
			return nil, false
		}
		return literal(tok, value.MakeF64(f)), true
	case token.StringLit:
		p.advance()
		return literal(tok, value.MakeString(tok.Text)), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return literal(tok, value.MakeBool(tok.Kind == token.KwTrue)), true
	case token.Ident:
		p.advance()
		return &ast.Expr{
			Kind: ast.ExprVariable,
			Span: tok.Span,
			Data: &ast.VariableData{ID: p.ids.Next(), Name: tok.Text},
		}, true
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		closing, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
		if !ok {
			return nil, false
		}
		return &ast.Expr{Kind: ast.ExprGroup, Span: tok.Span.Cover(closing.Span), Data: &ast.GroupData{Inner: inner}}, true
	case token.LBrace:
		return p.parseBlockExpr()
	case token.KwIf:
		return p.parseIf()
	}
	p.err(diag.SynExpectExpression, "expected expression, found "+tok.Kind.String())
	return nil, false
}

func literal(tok token.Token, v value.Value) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Span: tok.Span, Data: &ast.LiteralData{Value: v}}
}

// parseBraced parses `{ stmts }` and returns the statements.
func (p *Parser) parseBraced() ([]*ast.Stmt, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	stmts := p.parseStmtList(token.RBrace)
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'"); !ok {
		return nil, false
	}
	return stmts, true
}

func (p *Parser) parseBlockExpr() (*ast.Expr, bool) {
	start := p.lx.Peek().Span
	stmts, ok := p.parseBraced()
	if !ok {
		return nil, false
	}
	return &ast.Expr{
		Kind: ast.ExprBlock,
		Span: start.Cover(p.lastSpan),
		Data: &ast.BlockData{ID: p.ids.Next(), Stmts: stmts},
	}, true
}

// parseIf parses `if c { } else if c { } else { }`.
func (p *Parser) parseIf() (*ast.Expr, bool) {
	start := p.lx.Peek().Span
	data := &ast.IfData{}
	for {
		armStart := p.advance().Span // 'if'
		cond, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		body, ok := p.parseBraced()
		if !ok {
			return nil, false
		}
		data.Arms = append(data.Arms, ast.IfArm{ID: p.ids.Next(), Cond: cond, Body: body, Span: armStart.Cover(p.lastSpan)})
		if !p.at(token.KwElse) {
			break
		}
		elseTok := p.advance()
		if p.at(token.KwIf) {
			continue
		}
		body, ok = p.parseBraced()
		if !ok {
			return nil, false
		}
		data.Else = &ast.ElseArm{ID: p.ids.Next(), Body: body, Span: elseTok.Span.Cover(p.lastSpan)}
		break
	}
	return &ast.Expr{Kind: ast.ExprIf, Span: start.Cover(p.lastSpan), Data: data}, true
}
