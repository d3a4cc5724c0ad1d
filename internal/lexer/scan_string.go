package lexer

import (
	"strings"

	"ash/internal/diag"
	"ash/internal/token"
)

// scanString scans a double-quoted literal. Token.Text holds the decoded value.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote

	var b strings.Builder
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnterminatedString, sp, "unterminated string literal")
			return token.Token{Kind: token.StringLit, Span: sp, Text: b.String()}
		}
		ch := lx.cursor.Bump()
		switch ch {
		case '"':
			return token.Token{Kind: token.StringLit, Span: lx.cursor.SpanFrom(start), Text: b.String()}
		case '\\':
			escStart := lx.cursor.Mark() - 1
			switch esc := lx.cursor.Bump(); esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '"', '\\':
				b.WriteByte(esc)
			default:
				lx.report(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "unknown escape sequence")
			}
		default:
			b.WriteByte(ch)
		}
	}
}
