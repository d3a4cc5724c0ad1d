package types

import "ash/internal/ast"

// FamilyMask describes the categories of types an operator accepts.
type FamilyMask uint8

const (
	FamilyNone FamilyMask = 0
	FamilyBool FamilyMask = 1 << iota
	FamilyI32
	FamilyF64
	FamilyString
)

const (
	FamilyNumeric  = FamilyI32 | FamilyF64
	FamilyEquality = FamilyNumeric | FamilyString | FamilyBool
)

// FamilyOf maps a type to its family bit.
func FamilyOf(t Ty) FamilyMask {
	switch t.Kind {
	case KindBool:
		return FamilyBool
	case KindI32:
		return FamilyI32
	case KindF64:
		return FamilyF64
	case KindString:
		return FamilyString
	}
	return FamilyNone
}

// BinaryResult describes how to derive the result type of an operator.
type BinaryResult uint8

const (
	BinaryResultOperand BinaryResult = iota
	BinaryResultBool
)

// BinarySpec lists the accepted operand family and the result rule. Both
// operands must have the same type.
type BinarySpec struct {
	Operands     FamilyMask
	Result       BinaryResult
	ShortCircuit bool
}

var binarySpecTable = map[ast.BinaryOp]BinarySpec{
	ast.BinaryAdd:  {Operands: FamilyNumeric | FamilyString, Result: BinaryResultOperand},
	ast.BinarySub:  {Operands: FamilyNumeric, Result: BinaryResultOperand},
	ast.BinaryMul:  {Operands: FamilyNumeric, Result: BinaryResultOperand},
	ast.BinaryDiv:  {Operands: FamilyNumeric, Result: BinaryResultOperand},
	ast.BinaryRem:  {Operands: FamilyNumeric, Result: BinaryResultOperand},
	ast.BinaryEq:   {Operands: FamilyEquality, Result: BinaryResultBool},
	ast.BinaryNeq:  {Operands: FamilyEquality, Result: BinaryResultBool},
	ast.BinaryLt:   {Operands: FamilyNumeric | FamilyString, Result: BinaryResultBool},
	ast.BinaryGt:   {Operands: FamilyNumeric | FamilyString, Result: BinaryResultBool},
	ast.BinaryLtEq: {Operands: FamilyNumeric | FamilyString, Result: BinaryResultBool},
	ast.BinaryGtEq: {Operands: FamilyNumeric | FamilyString, Result: BinaryResultBool},
	ast.BinaryAnd:  {Operands: FamilyBool, Result: BinaryResultBool, ShortCircuit: true},
	ast.BinaryOr:   {Operands: FamilyBool, Result: BinaryResultBool, ShortCircuit: true},
}

func BinarySpecFor(op ast.BinaryOp) (BinarySpec, bool) {
	spec, ok := binarySpecTable[op]
	return spec, ok
}

// BinaryResultType checks operand types of op and returns the result type.
func BinaryResultType(op ast.BinaryOp, left, right Ty) (Ty, bool) {
	spec, ok := binarySpecTable[op]
	if !ok || !left.Equal(right) || FamilyOf(left)&spec.Operands == 0 {
		return Invalid, false
	}
	if spec.Result == BinaryResultBool {
		return Bool, true
	}
	return left, true
}

var unarySpecTable = map[ast.UnaryOp]FamilyMask{
	ast.UnaryNeg: FamilyNumeric,
	ast.UnaryNot: FamilyBool,
}

// UnaryResultType checks the operand of op; unary operators preserve the type.
func UnaryResultType(op ast.UnaryOp, operand Ty) (Ty, bool) {
	mask, ok := unarySpecTable[op]
	if !ok || FamilyOf(operand)&mask == 0 {
		return Invalid, false
	}
	return operand, true
}
