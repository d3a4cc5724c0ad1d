package lexer

import (
	"ash/internal/diag"
	"ash/internal/token"
)

// skipTrivia consumes whitespace and comments. When a newline terminates a
// statement it returns the synthetic Semicolon token.
func (lx *Lexer) skipTrivia() (token.Token, bool) {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r':
			lx.cursor.Bump()
		case '\n':
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			if lx.last.EndsStatement() {
				return token.Token{Kind: token.Semicolon, Span: lx.cursor.SpanFrom(start), Text: "\n"}, true
			}
		case '/':
			_, b1, ok := lx.cursor.Peek2()
			if !ok {
				return token.Token{}, false
			}
			switch b1 {
			case '/':
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
			case '*':
				if nl, ok := lx.skipBlockComment(); ok {
					return nl, true
				}
			default:
				return token.Token{}, false
			}
		default:
			return token.Token{}, false
		}
	}
	return token.Token{}, false
}

// skipBlockComment consumes "/* ... */". A comment spanning lines acts as a newline.
func (lx *Lexer) skipBlockComment() (token.Token, bool) {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	sawNewline := false
	for {
		if lx.cursor.EOF() {
			lx.report(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
			break
		}
		b := lx.cursor.Bump()
		if b == '\n' {
			sawNewline = true
		}
		if b == '*' && lx.cursor.Eat('/') {
			break
		}
	}
	if sawNewline && lx.last.EndsStatement() {
		return token.Token{Kind: token.Semicolon, Span: lx.cursor.SpanFrom(start), Text: "\n"}, true
	}
	return token.Token{}, false
}
