package vm

import "ash/internal/value"

// Frame represents a function activation record on the call stack.
type Frame struct {
	ReturnIP int    // Offset to resume at in the caller
	Base     int    // Stack index of the first parameter
	Name     string // Unique function name
}

func (vm *VM) frame() *Frame {
	return &vm.frames[len(vm.frames)-1]
}

// call pushes a frame for fn whose arguments are already on the stack.
func (vm *VM) call(fn function, argc int, returnIP int) *VMError {
	if argc != fn.arity {
		return vm.eb.arityMismatch(fn.name, fn.arity, argc)
	}
	if len(vm.frames) >= vm.maxFrames {
		return vm.eb.stackOverflow(vm.maxFrames)
	}
	vm.frames = append(vm.frames, Frame{ReturnIP: returnIP, Base: len(vm.stack) - argc, Name: fn.name})
	vm.ip = fn.entry
	return nil
}

// ret leaves the current frame, dropping its locals. At the outermost
// frame it halts the program.
func (vm *VM) ret(result *value.Value) {
	f := vm.frame()
	if len(vm.frames) == 1 {
		vm.halted = true
		if result != nil {
			vm.result, vm.hasResult = *result, true
		}
		return
	}
	vm.stack = vm.stack[:f.Base]
	vm.ip = f.ReturnIP
	vm.frames = vm.frames[:len(vm.frames)-1]
	if result != nil {
		vm.push(*result)
	}
}
