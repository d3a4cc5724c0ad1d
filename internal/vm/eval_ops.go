package vm

import (
	"math"
	"strings"

	"ash/internal/bytecode"
	"ash/internal/value"
)

func (vm *VM) unary(op bytecode.Opcode, v value.Value) (value.Value, *VMError) {
	switch {
	case op == bytecode.OpNeg && v.Kind == value.KindI32:
		return value.MakeI32(-v.Int), nil
	case op == bytecode.OpNeg && v.Kind == value.KindF64:
		return value.MakeF64(-v.Float), nil
	case op == bytecode.OpNot && v.Kind == value.KindBool:
		return value.MakeBool(!v.Bool), nil
	}
	return value.Value{}, vm.eb.typeMismatch(op.String(), v.Kind.String())
}

// binary applies left OP right. Both operands have the same kind; the
// type checker guarantees it and a mismatch here is a panic.
func (vm *VM) binary(op bytecode.Opcode, left, right value.Value) (value.Value, *VMError) {
	if left.Kind != right.Kind {
		return value.Value{}, vm.eb.typeMismatch(op.String(), left.Kind.String(), right.Kind.String())
	}
	switch op {
	case bytecode.OpEq:
		return value.MakeBool(left.Equal(right)), nil
	case bytecode.OpNeq:
		return value.MakeBool(!left.Equal(right)), nil
	case bytecode.OpGt, bytecode.OpLt, bytecode.OpGte, bytecode.OpLte:
		cmp, ok := compare(left, right)
		if !ok {
			break
		}
		return value.MakeBool(ordered(op, cmp)), nil
	}
	switch left.Kind {
	case value.KindI32:
		return vm.arithI32(op, left.Int, right.Int)
	case value.KindF64:
		return vm.arithF64(op, left.Float, right.Float)
	case value.KindString:
		if op == bytecode.OpSum {
			return value.MakeString(left.Str + right.Str), nil
		}
	}
	return value.Value{}, vm.eb.typeMismatch(op.String(), left.Kind.String(), right.Kind.String())
}

// arithI32 wraps on overflow.
func (vm *VM) arithI32(op bytecode.Opcode, a, b int32) (value.Value, *VMError) {
	switch op {
	case bytecode.OpSum:
		return value.MakeI32(a + b), nil
	case bytecode.OpSub:
		return value.MakeI32(a - b), nil
	case bytecode.OpMul:
		return value.MakeI32(a * b), nil
	case bytecode.OpDiv:
		if b == 0 {
			return value.Value{}, vm.eb.divisionByZero()
		}
		return value.MakeI32(a / b), nil
	case bytecode.OpRem:
		if b == 0 {
			return value.Value{}, vm.eb.divisionByZero()
		}
		return value.MakeI32(a % b), nil
	}
	return value.Value{}, vm.eb.typeMismatch(op.String(), "I32", "I32")
}

// arithF64 follows IEEE 754: division by zero yields an infinity or NaN.
func (vm *VM) arithF64(op bytecode.Opcode, a, b float64) (value.Value, *VMError) {
	switch op {
	case bytecode.OpSum:
		return value.MakeF64(a + b), nil
	case bytecode.OpSub:
		return value.MakeF64(a - b), nil
	case bytecode.OpMul:
		return value.MakeF64(a * b), nil
	case bytecode.OpDiv:
		return value.MakeF64(a / b), nil
	case bytecode.OpRem:
		return value.MakeF64(math.Mod(a, b)), nil
	}
	return value.Value{}, vm.eb.typeMismatch(op.String(), "F64", "F64")
}

const unordered = 2

// compare returns -1, 0 or 1, or unordered when a NaN is involved.
func compare(a, b value.Value) (int, bool) {
	switch a.Kind {
	case value.KindI32:
		switch {
		case a.Int < b.Int:
			return -1, true
		case a.Int > b.Int:
			return 1, true
		}
		return 0, true
	case value.KindF64:
		switch {
		case a.Float < b.Float:
			return -1, true
		case a.Float > b.Float:
			return 1, true
		case a.Float == b.Float:
			return 0, true
		}
		return unordered, true
	case value.KindString:
		return strings.Compare(a.Str, b.Str), true
	}
	return 0, false
}

func ordered(op bytecode.Opcode, cmp int) bool {
	if cmp == unordered {
		return false
	}
	switch op {
	case bytecode.OpGt:
		return cmp > 0
	case bytecode.OpLt:
		return cmp < 0
	case bytecode.OpGte:
		return cmp >= 0
	default:
		return cmp <= 0
	}
}
