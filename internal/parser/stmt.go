package parser

import (
	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/token"
)

func (p *Parser) parseStmt() (*ast.Stmt, bool) {
	switch p.lx.Peek().Kind {
	case token.At:
		return p.parseAnnotatedFunction()
	case token.KwFun:
		return p.parseFunction(nil)
	case token.KwVal, token.KwVar:
		return p.parseVarDecl()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwBreak:
		return p.parseBreak()
	case token.KwReturn:
		return p.parseReturn()
	default:
		return p.parseExprOrAssign()
	}
}

// parseAnnotatedFunction parses `@[a, b]` (optionally on its own line) and the
// function that follows it.
func (p *Parser) parseAnnotatedFunction() (*ast.Stmt, bool) {
	var anns []ast.Annotation
	for p.at(token.At) {
		p.advance()
		if _, ok := p.expect(token.LBracket, diag.SynBadAnnotation, "expected '[' after '@'"); !ok {
			return nil, false
		}
		for {
			name, ok := p.expect(token.Ident, diag.SynBadAnnotation, "expected annotation name")
			if !ok {
				return nil, false
			}
			anns = append(anns, ast.Annotation{Name: name.Text, Span: name.Span})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close annotation"); !ok {
			return nil, false
		}
		p.skipSemicolons()
	}
	if !p.at(token.KwFun) {
		p.err(diag.SynBadAnnotation, "annotations must precede a function declaration")
		return nil, false
	}
	return p.parseFunction(anns)
}

// parseFunction parses
//
//	fun name(a: T, ...) [: R] = expr
//	fun name(a: T, ...) [: R] { ... }
//	fun name(a: T, ...) [: R]          // prototype
func (p *Parser) parseFunction(anns []ast.Annotation) (*ast.Stmt, bool) {
	kw := p.advance()
	start := kw.Span
	if len(anns) > 0 {
		start = anns[0].Span
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		return nil, false
	}
	if _, ok = p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return nil, false
	}
	var params []ast.Param
	for !p.at(token.RParen) {
		pname, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
		if !ok {
			return nil, false
		}
		if _, ok = p.expect(token.Colon, diag.SynExpectType, "expected ':' and a type after parameter name"); !ok {
			return nil, false
		}
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		params = append(params, ast.Param{ID: p.ids.Next(), Name: pname.Text, Type: ty, Span: pname.Span.Cover(ty.Span)})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok = p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close parameter list"); !ok {
		return nil, false
	}
	data := &ast.FunctionData{
		ID:          p.ids.Next(),
		Name:        name.Text,
		NameSpan:    name.Span,
		Params:      params,
		Annotations: anns,
	}
	if p.at(token.Colon) {
		p.advance()
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		data.Result = &ty
	}
	switch {
	case p.at(token.Assign):
		p.advance()
		body, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		data.Body = body
	case p.at(token.LBrace):
		body, ok := p.parseBlockExpr()
		if !ok {
			return nil, false
		}
		data.Body = body
	}
	return &ast.Stmt{Kind: ast.StmtFunction, Span: start.Cover(p.lastSpan), Data: data}, true
}

func (p *Parser) parseType() (ast.TypeExpr, bool) {
	tok, ok := p.expect(token.Ident, diag.SynExpectType, "expected type name")
	if !ok {
		return ast.TypeExpr{}, false
	}
	return ast.TypeExpr{Name: tok.Text, Span: tok.Span}, true
}

// parseVarDecl parses `val|var name [: T] = expr`.
func (p *Parser) parseVarDecl() (*ast.Stmt, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
	if !ok {
		return nil, false
	}
	data := &ast.VarDeclData{
		ID:       p.ids.Next(),
		Name:     name.Text,
		NameSpan: name.Span,
		Mutable:  kw.Kind == token.KwVar,
	}
	if p.at(token.Colon) {
		p.advance()
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		data.Type = &ty
	}
	if _, ok = p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' and an initializer"); !ok {
		return nil, false
	}
	val, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	data.Value = val
	return &ast.Stmt{Kind: ast.StmtVarDecl, Span: kw.Span.Cover(val.Span), Data: data}, true
}

func (p *Parser) parseWhile() (*ast.Stmt, bool) {
	kw := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	body, ok := p.parseBraced()
	if !ok {
		return nil, false
	}
	data := &ast.WhileData{ID: p.ids.Next(), Cond: cond, Body: body}
	return &ast.Stmt{Kind: ast.StmtWhile, Span: kw.Span.Cover(p.lastSpan), Data: data}, true
}

func (p *Parser) parseBreak() (*ast.Stmt, bool) {
	kw := p.advance()
	data := &ast.BreakData{ID: p.ids.Next()}
	if p.startsExpr() {
		val, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		data.Value = val
	}
	return &ast.Stmt{Kind: ast.StmtBreak, Span: kw.Span.Cover(p.lastSpan), Data: data}, true
}

func (p *Parser) parseReturn() (*ast.Stmt, bool) {
	kw := p.advance()
	data := &ast.ReturnData{}
	if p.startsExpr() {
		val, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		data.Value = val
	}
	return &ast.Stmt{Kind: ast.StmtReturn, Span: kw.Span.Cover(p.lastSpan), Data: data}, true
}

// parseExprOrAssign parses an expression statement, turning `name = expr`
// into an assignment.
func (p *Parser) parseExprOrAssign() (*ast.Stmt, bool) {
	lhs, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if !p.at(token.Assign) {
		return &ast.Stmt{Kind: ast.StmtExpr, Span: lhs.Span, Data: &ast.ExprStmtData{Expr: lhs}}, true
	}
	eq := p.advance()
	target, isVar := lhs.Data.(*ast.VariableData)
	if !isVar {
		p.report(diag.SynUnexpectedToken, eq.Span, "left side of '=' must be a variable name")
		return nil, false
	}
	val, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	data := &ast.AssignData{ID: target.ID, Name: target.Name, NameSpan: lhs.Span, Value: val}
	return &ast.Stmt{Kind: ast.StmtAssign, Span: lhs.Span.Cover(val.Span), Data: data}, true
}

// startsExpr reports whether the next token can begin an expression.
func (p *Parser) startsExpr() bool {
	switch p.lx.Peek().Kind {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse,
		token.LParen, token.LBrace, token.KwIf, token.Minus, token.Bang:
		return true
	default:
		return false
	}
}
