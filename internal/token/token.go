package token

import (
	"ash/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, boolean, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// EndsStatement reports whether a newline following the token terminates
// the current statement.
func (t Token) EndsStatement() bool {
	switch t.Kind {
	case Ident, IntLit, FloatLit, StringLit, KwTrue, KwFalse,
		KwBreak, KwReturn, RParen, RBrace, RBracket:
		return true
	default:
		return false
	}
}

var keywords = map[string]Kind{
	"fun":    KwFun,
	"val":    KwVal,
	"var":    KwVar,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"break":  KwBreak,
	"return": KwReturn,
	"true":   KwTrue,
	"false":  KwFalse,
}

// LookupKeyword reports the keyword kind of ident. Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
