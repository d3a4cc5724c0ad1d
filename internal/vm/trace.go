package vm

import (
	"fmt"
	"io"
	"strings"

	"ash/internal/bytecode"
	"ash/internal/value"
)

// Tracer outputs execution traces for debugging.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a new tracer that writes to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// TraceInstr traces execution of an instruction before it runs.
// Format: [depth=N] <disassembly> | stack=[...]
func (t *Tracer) TraceInstr(depth int, chunk *bytecode.Chunk, ip int, stack []value.Value) {
	if t == nil || t.w == nil {
		return
	}
	line, _ := chunk.Instruction(ip)
	fmt.Fprintf(t.w, "[depth=%d] %s | stack=[%s]\n", depth, line, formatStack(stack))
}

func formatStack(stack []value.Value) string {
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = v.Literal()
	}
	return strings.Join(parts, " ")
}
