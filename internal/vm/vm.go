// Package vm executes compiled chunks on an operand stack.
package vm

import (
	"io"
	"os"

	"ash/internal/bytecode"
	"ash/internal/value"
)

// DefaultMaxFrames bounds the call depth.
const DefaultMaxFrames = 4096

// Options configures VM execution.
type Options struct {
	// Stdout receives the output of print and println. Defaults to os.Stdout.
	Stdout io.Writer
	// Trace, when set, receives one line per executed instruction.
	Trace io.Writer
	// Natives replaces the default native function set.
	Natives   []Native
	MaxFrames int
}

// function is a user function registered by a Fun instruction.
type function struct {
	name  string
	arity int
	entry int
}

// VM is a bytecode interpreter for one chunk.
type VM struct {
	chunk     *bytecode.Chunk
	ip        int
	stack     []value.Value
	frames    []Frame
	globals   map[string]value.Value
	functions map[string]function
	natives   map[string]*Native
	out       io.Writer
	trace     *Tracer
	maxFrames int

	// instrStart is the offset of the instruction being executed.
	instrStart int
	halted     bool
	result     value.Value
	hasResult  bool

	eb *errorBuilder
}

// New creates a VM for the chunk. The chunk must not be modified while the
// VM runs.
func New(chunk *bytecode.Chunk, opts Options) *VM {
	vm := &VM{
		chunk:     chunk,
		globals:   make(map[string]value.Value),
		functions: make(map[string]function),
		natives:   make(map[string]*Native),
		out:       opts.Stdout,
		maxFrames: opts.MaxFrames,
	}
	if vm.out == nil {
		vm.out = os.Stdout
	}
	if vm.maxFrames <= 0 {
		vm.maxFrames = DefaultMaxFrames
	}
	if opts.Trace != nil {
		vm.trace = NewTracer(opts.Trace)
	}
	natives := opts.Natives
	if natives == nil {
		natives = Natives()
	}
	for i := range natives {
		vm.natives[natives[i].Name] = &natives[i]
	}
	vm.eb = &errorBuilder{vm: vm}
	vm.frames = []Frame{{Name: mainFrameName, ReturnIP: -1}}
	return vm
}

const mainFrameName = "<main>"

// Run executes the chunk until the top-level Ret or RetValue. The result is
// set when the program ended with RetValue.
func (vm *VM) Run() (value.Value, bool, *VMError) {
	for !vm.halted {
		if vmErr := vm.step(); vmErr != nil {
			return value.Value{}, false, vmErr
		}
	}
	return vm.result, vm.hasResult, nil
}

// Global returns the value of a global by its unique name or, failing
// that, by its source name.
func (vm *VM) Global(name string) (value.Value, bool) {
	if v, ok := vm.globals[name]; ok {
		return v, true
	}
	for mangled, src := range vm.chunk.Symbols {
		if src != name {
			continue
		}
		if v, ok := vm.globals[mangled]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// StackDepth returns the number of values on the operand stack.
func (vm *VM) StackDepth() int { return len(vm.stack) }

func (vm *VM) displayName(name string) string {
	if src, ok := vm.chunk.Symbols[name]; ok && src != name {
		return src + " (" + name + ")"
	}
	return name
}
