package vm

import (
	"fmt"
	"strings"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicTypeMismatch      PanicCode = 1001 // VM1001: operand of the wrong type
	PanicStackUnderflow    PanicCode = 1002 // VM1002: pop from an empty stack
	PanicUndefinedGlobal   PanicCode = 1003 // VM1003: global read or written before definition
	PanicUndefinedFunction PanicCode = 1004 // VM1004: call of an unknown name
	PanicArityMismatch     PanicCode = 1005 // VM1005: wrong argument count
	PanicDivisionByZero    PanicCode = 1006 // VM1006: integer division or remainder by zero
	PanicBadOpcode         PanicCode = 1007 // VM1007: unknown opcode
	PanicOutOfBounds       PanicCode = 1008 // VM1008: ip, slot or constant index out of range
	PanicAssertion         PanicCode = 1009 // VM1009: assert(false)
	PanicStackOverflow     PanicCode = 1010 // VM1010: too many nested calls
	PanicIO                PanicCode = 1011 // VM1011: output could not be written
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// VMError represents a runtime panic in the VM. Execution cannot continue
// after one.
type VMError struct {
	Code    PanicCode
	Message string
	// IP is the offset of the instruction that failed.
	IP int
	// Backtrace lists the active functions from innermost to outermost.
	Backtrace []string
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// Format renders the panic with its location and backtrace.
func (p *VMError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	fmt.Fprintf(&sb, "at ip %05d\n", p.IP)
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, fn := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s\n", i, fn)
		}
	}
	return sb.String()
}

// errorBuilder helps construct VMError values.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{
		Code:    code,
		Message: msg,
		IP:      eb.vm.instrStart,
	}
	frames := eb.vm.frames
	e.Backtrace = make([]string, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		e.Backtrace[len(frames)-1-i] = eb.vm.displayName(frames[i].Name)
	}
	return e
}

func (eb *errorBuilder) typeMismatch(op string, got ...string) *VMError {
	return eb.makeError(PanicTypeMismatch, fmt.Sprintf("%s: unexpected operand types %s", op, strings.Join(got, ", ")))
}

func (eb *errorBuilder) stackUnderflow() *VMError {
	return eb.makeError(PanicStackUnderflow, "operand stack underflow")
}

func (eb *errorBuilder) undefinedGlobal(name string) *VMError {
	return eb.makeError(PanicUndefinedGlobal, fmt.Sprintf("undefined global %s", eb.vm.displayName(name)))
}

func (eb *errorBuilder) undefinedFunction(name string) *VMError {
	return eb.makeError(PanicUndefinedFunction, fmt.Sprintf("undefined function %s", eb.vm.displayName(name)))
}

func (eb *errorBuilder) arityMismatch(name string, want, got int) *VMError {
	return eb.makeError(PanicArityMismatch, fmt.Sprintf("%s expects %d arguments, got %d", eb.vm.displayName(name), want, got))
}

func (eb *errorBuilder) divisionByZero() *VMError {
	return eb.makeError(PanicDivisionByZero, "integer division by zero")
}

func (eb *errorBuilder) badOpcode(b byte) *VMError {
	return eb.makeError(PanicBadOpcode, fmt.Sprintf("bad opcode %d", b))
}

func (eb *errorBuilder) outOfBounds(what string, index, length int) *VMError {
	return eb.makeError(PanicOutOfBounds, fmt.Sprintf("%s %d out of bounds for length %d", what, index, length))
}

func (eb *errorBuilder) stackOverflow(depth int) *VMError {
	return eb.makeError(PanicStackOverflow, fmt.Sprintf("call depth exceeds %d", depth))
}
