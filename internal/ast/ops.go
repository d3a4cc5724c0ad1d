package ast

type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryRem
	BinaryEq
	BinaryNeq
	BinaryLt
	BinaryGt
	BinaryLtEq
	BinaryGtEq
	BinaryAnd
	BinaryOr
)

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryRem:
		return "%"
	case BinaryEq:
		return "=="
	case BinaryNeq:
		return "!="
	case BinaryLt:
		return "<"
	case BinaryGt:
		return ">"
	case BinaryLtEq:
		return "<="
	case BinaryGtEq:
		return ">="
	case BinaryAnd:
		return "&&"
	case BinaryOr:
		return "||"
	default:
		return "?"
	}
}

// IsShortCircuit reports whether the right operand is evaluated conditionally.
func (op BinaryOp) IsShortCircuit() bool {
	return op == BinaryAnd || op == BinaryOr
}

type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	default:
		return "?"
	}
}
