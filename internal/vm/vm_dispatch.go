package vm

import (
	"ash/internal/bytecode"
	"ash/internal/value"
)

// step executes a single instruction.
func (vm *VM) step() *VMError {
	code := vm.chunk.Code
	if vm.ip < 0 || vm.ip >= len(code) {
		return vm.eb.outOfBounds("ip", vm.ip, len(code))
	}
	vm.instrStart = vm.ip
	op := bytecode.Opcode(code[vm.ip])
	info, ok := bytecode.Lookup(op)
	if !ok {
		return vm.eb.badOpcode(code[vm.ip])
	}
	if vm.ip+1+info.Width() > len(code) {
		return vm.eb.outOfBounds("operand", vm.ip+1+info.Width(), len(code))
	}
	if vm.trace != nil {
		vm.trace.TraceInstr(len(vm.frames)-1, vm.chunk, vm.ip, vm.stack)
	}
	vm.ip++

	switch op {
	case bytecode.OpRet:
		vm.ret(nil)

	case bytecode.OpRetValue:
		v, vmErr := vm.pop()
		if vmErr != nil {
			return vmErr
		}
		vm.ret(&v)

	case bytecode.OpConst, bytecode.OpConstLong:
		k, vmErr := vm.constant(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		vm.push(k)

	case bytecode.OpTrue:
		vm.push(value.MakeBool(true))

	case bytecode.OpFalse:
		vm.push(value.MakeBool(false))

	case bytecode.OpPop:
		if _, vmErr := vm.pop(); vmErr != nil {
			return vmErr
		}

	case bytecode.OpNeg, bytecode.OpNot:
		v, vmErr := vm.pop()
		if vmErr != nil {
			return vmErr
		}
		res, vmErr := vm.unary(op, v)
		if vmErr != nil {
			return vmErr
		}
		vm.push(res)

	case bytecode.OpSum, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpRem,
		bytecode.OpEq, bytecode.OpNeq, bytecode.OpGt, bytecode.OpLt, bytecode.OpGte, bytecode.OpLte:
		right, vmErr := vm.pop()
		if vmErr != nil {
			return vmErr
		}
		left, vmErr := vm.pop()
		if vmErr != nil {
			return vmErr
		}
		res, vmErr := vm.binary(op, left, right)
		if vmErr != nil {
			return vmErr
		}
		vm.push(res)

	case bytecode.OpDefGlobal, bytecode.OpDefGlobalLong:
		name, vmErr := vm.name(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		v, vmErr := vm.pop()
		if vmErr != nil {
			return vmErr
		}
		vm.globals[name] = v

	case bytecode.OpLoadGlobal, bytecode.OpLoadGlobalLong:
		name, vmErr := vm.name(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		v, ok := vm.globals[name]
		if !ok {
			return vm.eb.undefinedGlobal(name)
		}
		vm.push(v)

	case bytecode.OpStoreGlobal, bytecode.OpStoreGlobalLong:
		name, vmErr := vm.name(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		if _, ok := vm.globals[name]; !ok {
			return vm.eb.undefinedGlobal(name)
		}
		v, vmErr := vm.pop()
		if vmErr != nil {
			return vmErr
		}
		vm.globals[name] = v

	case bytecode.OpLoadLocal, bytecode.OpLoadLocalLong:
		slot, vmErr := vm.slot(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		vm.push(vm.stack[slot])

	case bytecode.OpStoreLocal, bytecode.OpStoreLocalLong:
		slot, vmErr := vm.slot(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		v, vmErr := vm.pop()
		if vmErr != nil {
			return vmErr
		}
		if slot >= len(vm.stack) {
			return vm.eb.outOfBounds("slot", slot, len(vm.stack))
		}
		vm.stack[slot] = v

	case bytecode.OpJmpIfFalse:
		off := vm.readU16()
		cond, vmErr := vm.peek()
		if vmErr != nil {
			return vmErr
		}
		if cond.Kind != value.KindBool {
			return vm.eb.typeMismatch("condition", cond.Kind.String())
		}
		if !cond.Bool {
			vm.ip += off
		}

	case bytecode.OpJmp:
		vm.ip += vm.readU16()

	case bytecode.OpLoop:
		vm.ip -= vm.readU16()

	case bytecode.OpCall, bytecode.OpCallLong:
		name, vmErr := vm.name(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		argc := vm.readByte()
		if argc > len(vm.stack)-vm.frame().Base {
			return vm.eb.stackUnderflow()
		}
		if fn, ok := vm.functions[name]; ok {
			return vm.call(fn, argc, vm.ip)
		}
		if n, ok := vm.natives[name]; ok {
			return vm.callNative(n, argc)
		}
		return vm.eb.undefinedFunction(name)

	case bytecode.OpFun, bytecode.OpFunLong:
		name, vmErr := vm.name(vm.readIndex(info.Long))
		if vmErr != nil {
			return vmErr
		}
		arity := vm.readByte()
		body := vm.readU16()
		vm.functions[name] = function{name: name, arity: arity, entry: vm.ip}
		vm.ip += body

	default:
		return vm.eb.badOpcode(byte(op))
	}
	return nil
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

// pop never reaches below the base of the current frame.
func (vm *VM) pop() (value.Value, *VMError) {
	if len(vm.stack) <= vm.frame().Base {
		return value.Value{}, vm.eb.stackUnderflow()
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek() (value.Value, *VMError) {
	if len(vm.stack) <= vm.frame().Base {
		return value.Value{}, vm.eb.stackUnderflow()
	}
	return vm.stack[len(vm.stack)-1], nil
}

// The decoder helpers rely on step having checked the operand width.

func (vm *VM) readByte() int {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return int(b)
}

func (vm *VM) readIndex(long bool) int {
	idx := vm.chunk.ReadIndex(vm.ip, long)
	if long {
		vm.ip += 3
	} else {
		vm.ip++
	}
	return idx
}

func (vm *VM) readU16() int {
	n := vm.chunk.ReadU16(vm.ip)
	vm.ip += 2
	return n
}

func (vm *VM) constant(idx int) (value.Value, *VMError) {
	if idx >= len(vm.chunk.Constants) {
		return value.Value{}, vm.eb.outOfBounds("constant", idx, len(vm.chunk.Constants))
	}
	return vm.chunk.Constants[idx], nil
}

func (vm *VM) name(idx int) (string, *VMError) {
	k, vmErr := vm.constant(idx)
	if vmErr != nil {
		return "", vmErr
	}
	if k.Kind != value.KindString {
		return "", vm.eb.typeMismatch("name constant", k.Kind.String())
	}
	return k.Str, nil
}

// slot converts a frame-relative local index to a stack index.
func (vm *VM) slot(idx int) (int, *VMError) {
	abs := vm.frame().Base + idx
	if abs >= len(vm.stack) {
		return 0, vm.eb.outOfBounds("local slot", idx, len(vm.stack)-vm.frame().Base)
	}
	return abs, nil
}
