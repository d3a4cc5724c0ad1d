package vm

import (
	"fmt"
	"io"
	"math"

	"ash/internal/types"
	"ash/internal/value"
)

// Native is a host function callable by name. Params and Result are its
// static signature, used to declare it to the resolver.
type Native struct {
	Name   string
	Params []types.Ty
	Result types.Ty
	Fn     func(vm *VM, args []value.Value) (value.Value, *VMError)
}

// Natives returns the standard native functions.
func Natives() []Native {
	return []Native{
		{Name: "print", Params: []types.Ty{types.String}, Result: types.Void, Fn: intrinsicPrint},
		{Name: "println", Params: []types.Ty{types.String}, Result: types.Void, Fn: intrinsicPrintln},
		{Name: "i32_to_string", Params: []types.Ty{types.I32}, Result: types.String, Fn: intrinsicToString},
		{Name: "f64_to_string", Params: []types.Ty{types.F64}, Result: types.String, Fn: intrinsicToString},
		{Name: "bool_to_string", Params: []types.Ty{types.Bool}, Result: types.String, Fn: intrinsicToString},
		{Name: "i32_to_f64", Params: []types.Ty{types.I32}, Result: types.F64, Fn: intrinsicI32ToF64},
		{Name: "f64_to_i32", Params: []types.Ty{types.F64}, Result: types.I32, Fn: intrinsicF64ToI32},
		{Name: "assert", Params: []types.Ty{types.Bool}, Result: types.Void, Fn: intrinsicAssert},
	}
}

// Signature returns the function type of the native.
func (n *Native) Signature() types.Ty {
	return types.Function(n.Params, n.Result)
}

// callNative pops the arguments, runs the native and pushes its result
// unless it returns Void.
func (vm *VM) callNative(n *Native, argc int) *VMError {
	if argc != len(n.Params) {
		return vm.eb.arityMismatch(n.Name, len(n.Params), argc)
	}
	args := make([]value.Value, argc)
	copy(args, vm.stack[len(vm.stack)-argc:])
	vm.stack = vm.stack[:len(vm.stack)-argc]
	for i, a := range args {
		if types.OfValue(a).Kind != n.Params[i].Kind {
			return vm.eb.typeMismatch(n.Name, a.Kind.String())
		}
	}
	res, vmErr := n.Fn(vm, args)
	if vmErr != nil {
		return vmErr
	}
	if !n.Result.IsVoid() {
		vm.push(res)
	}
	return nil
}

func intrinsicPrint(vm *VM, args []value.Value) (value.Value, *VMError) {
	return value.Value{}, vm.write(args[0].Str)
}

func intrinsicPrintln(vm *VM, args []value.Value) (value.Value, *VMError) {
	return value.Value{}, vm.write(args[0].Str + "\n")
}

func (vm *VM) write(s string) *VMError {
	if _, err := io.WriteString(vm.out, s); err != nil {
		return vm.eb.makeError(PanicIO, fmt.Sprintf("write to stdout: %v", err))
	}
	return nil
}

func intrinsicToString(_ *VM, args []value.Value) (value.Value, *VMError) {
	return value.MakeString(args[0].String()), nil
}

func intrinsicI32ToF64(_ *VM, args []value.Value) (value.Value, *VMError) {
	return value.MakeF64(float64(args[0].Int)), nil
}

// intrinsicF64ToI32 truncates toward zero.
func intrinsicF64ToI32(vm *VM, args []value.Value) (value.Value, *VMError) {
	f := math.Trunc(args[0].Float)
	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return value.Value{}, vm.eb.makeError(PanicOutOfBounds, fmt.Sprintf("f64_to_i32: %v does not fit in I32", args[0].Float))
	}
	return value.MakeI32(int32(f)), nil
}

func intrinsicAssert(vm *VM, args []value.Value) (value.Value, *VMError) {
	if !args[0].Bool {
		return value.Value{}, vm.eb.makeError(PanicAssertion, "assertion failed")
	}
	return value.Value{}, nil
}
