package parser

import (
	"ash/internal/ast"
	"ash/internal/token"
)

// Binary operator precedence; higher binds tighter. All are left-associative.
const (
	precNone           = 0
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precEquality       = 3 // == !=
	precComparison     = 4 // < <= > >=
	precAdditive       = 5 // + -
	precMultiplicative = 6 // * / %
)

func binaryPrec(kind token.Kind) int {
	switch kind {
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd
	case token.EqEq, token.BangEq:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	default:
		return precNone
	}
}

func binaryOp(kind token.Kind) ast.BinaryOp {
	switch kind {
	case token.Plus:
		return ast.BinaryAdd
	case token.Minus:
		return ast.BinarySub
	case token.Star:
		return ast.BinaryMul
	case token.Slash:
		return ast.BinaryDiv
	case token.Percent:
		return ast.BinaryRem
	case token.EqEq:
		return ast.BinaryEq
	case token.BangEq:
		return ast.BinaryNeq
	case token.Lt:
		return ast.BinaryLt
	case token.Gt:
		return ast.BinaryGt
	case token.LtEq:
		return ast.BinaryLtEq
	case token.GtEq:
		return ast.BinaryGtEq
	case token.AndAnd:
		return ast.BinaryAnd
	default:
		return ast.BinaryOr
	}
}
