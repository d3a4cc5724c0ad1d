package lexer

import (
	"ash/internal/diag"
	"ash/internal/token"
)

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	ch := lx.cursor.Bump()

	kind := token.Invalid
	switch ch {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '=':
		kind = lx.pick('=', token.EqEq, token.Assign)
	case '!':
		kind = lx.pick('=', token.BangEq, token.Bang)
	case '<':
		kind = lx.pick('=', token.LtEq, token.Lt)
	case '>':
		kind = lx.pick('=', token.GtEq, token.Gt)
	case '&':
		if lx.cursor.Eat('&') {
			kind = token.AndAnd
		}
	case '|':
		if lx.cursor.Eat('|') {
			kind = token.OrOr
		}
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case '@':
		kind = token.At
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if kind == token.Invalid {
		lx.report(diag.LexUnknownChar, sp, "unknown character "+quoteText(text))
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}

// pick consumes next and returns yes when the following byte matches it.
func (lx *Lexer) pick(next byte, yes, no token.Kind) token.Kind {
	if lx.cursor.Eat(next) {
		return yes
	}
	return no
}

func quoteText(s string) string {
	return "'" + s + "'"
}
