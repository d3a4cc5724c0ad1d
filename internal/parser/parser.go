// Package parser builds an ast.File from tokens. It allocates an ID for every
// binding site, reference and break target from the compilation's allocator.
package parser

import (
	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/lexer"
	"ash/internal/source"
	"ash/internal/token"
)

type Options struct {
	Reporter diag.Reporter
	// IDs is shared with later stages; a nil allocator gets a private one.
	IDs *ast.IDAllocator
}

// Parser holds the state for one file.
type Parser struct {
	lx       *lexer.Lexer
	ids      *ast.IDAllocator
	opts     Options
	lastSpan source.Span
}

// ParseFile scans and parses f. Syntax errors are reported and the parser
// resynchronizes at the next statement, so the returned tree is always usable
// for further reporting but should not be compiled when errors were reported.
func ParseFile(f *source.File, opts Options) *ast.File {
	if opts.IDs == nil {
		opts.IDs = ast.NewIDAllocator()
	}
	p := &Parser{
		lx:   lexer.New(f, lexer.Options{Reporter: opts.Reporter}),
		ids:  opts.IDs,
		opts: opts,
	}
	out := &ast.File{Path: f.Path, ID: f.ID}
	start := p.lx.Peek().Span
	out.Stmts = p.parseStmtList(token.EOF)
	out.Span = start.Cover(p.lastSpan)
	return out
}

// parseStmtList parses statements until the closing token (not consumed).
func (p *Parser) parseStmtList(closing token.Kind) []*ast.Stmt {
	var out []*ast.Stmt
	for {
		p.skipSemicolons()
		if p.at(closing) || p.at(token.EOF) {
			return out
		}
		stmt, ok := p.parseStmt()
		if !ok {
			p.resync()
			continue
		}
		out = append(out, stmt)
		if !p.endStmt(closing) {
			p.resync()
		}
	}
}

// endStmt requires a statement terminator: ';', a newline, or the closing token.
func (p *Parser) endStmt(closing token.Kind) bool {
	switch {
	case p.at(token.Semicolon):
		p.advance()
		return true
	case p.at(closing), p.at(token.EOF):
		return true
	}
	p.err(diag.SynExpectSemicolon, "expected ';' or newline after statement, found "+p.lx.Peek().Kind.String())
	return false
}

func (p *Parser) skipSemicolons() {
	for p.at(token.Semicolon) {
		p.advance()
	}
}

// resync skips to the end of the current statement, respecting braces.
func (p *Parser) resync() {
	depth := 0
	for {
		switch p.lx.Peek().Kind {
		case token.EOF:
			return
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
