package token

// Kind represents the category of a source token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	KwFun    // fun
	KwVal    // val
	KwVar    // var
	KwIf     // if
	KwElse   // else
	KwWhile  // while
	KwBreak  // break
	KwReturn // return
	KwTrue   // true
	KwFalse  // false

	IntLit
	FloatLit
	StringLit

	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Assign    // =
	EqEq      // ==
	Bang      // !
	BangEq    // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	AndAnd    // &&
	OrOr      // ||
	Colon     // :
	Semicolon // ; or an inserted newline
	Comma     // ,
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	At        // @
)

var kindNames = [...]string{
	Invalid:   "invalid",
	EOF:       "end of file",
	Ident:     "identifier",
	KwFun:     "'fun'",
	KwVal:     "'val'",
	KwVar:     "'var'",
	KwIf:      "'if'",
	KwElse:    "'else'",
	KwWhile:   "'while'",
	KwBreak:   "'break'",
	KwReturn:  "'return'",
	KwTrue:    "'true'",
	KwFalse:   "'false'",
	IntLit:    "integer literal",
	FloatLit:  "float literal",
	StringLit: "string literal",
	Plus:      "'+'",
	Minus:     "'-'",
	Star:      "'*'",
	Slash:     "'/'",
	Percent:   "'%'",
	Assign:    "'='",
	EqEq:      "'=='",
	Bang:      "'!'",
	BangEq:    "'!='",
	Lt:        "'<'",
	LtEq:      "'<='",
	Gt:        "'>'",
	GtEq:      "'>='",
	AndAnd:    "'&&'",
	OrOr:      "'||'",
	Colon:     "':'",
	Semicolon: "';'",
	Comma:     "','",
	LParen:    "'('",
	RParen:    "')'",
	LBrace:    "'{'",
	RBrace:    "'}'",
	LBracket:  "'['",
	RBracket:  "']'",
	At:        "'@'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
