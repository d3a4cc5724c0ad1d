package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble writes a listing of the whole chunk.
func Disassemble(w io.Writer, c *Chunk, name string) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", name); err != nil {
		return err
	}
	for offset := 0; offset < len(c.Code); {
		line, next := c.Instruction(offset)
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// Instruction renders the instruction at offset and returns the offset of
// the next one.
func (c *Chunk) Instruction(offset int) (string, int) {
	op := Opcode(c.Code[offset])
	info, ok := Lookup(op)
	if !ok {
		return fmt.Sprintf("%05d <bad opcode %d>", offset, byte(op)), offset + 1
	}
	if offset+1+info.Width() > len(c.Code) {
		return fmt.Sprintf("%05d %-16s <truncated>", offset, info.Name), len(c.Code)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%05d %-16s", offset, info.Name)
	at := offset + 1
	switch info.Operand {
	case OperandIndex:
		idx := c.ReadIndex(at, info.Long)
		fmt.Fprintf(&sb, " %4d", idx)
		if op.isConstRef() {
			fmt.Fprintf(&sb, " %s", c.constant(idx))
		}
	case OperandJump:
		dist := c.ReadU16(at)
		dest := at + 2 + dist
		if op == OpLoop {
			dest = at + 2 - dist
		}
		fmt.Fprintf(&sb, " %4d -> %05d", dist, dest)
	case OperandCall:
		idx := c.ReadIndex(at, info.Long)
		argc := int(c.Code[at+info.IndexWidth()])
		fmt.Fprintf(&sb, " %4d %s (%d args)", idx, c.constant(idx), argc)
	case OperandFun:
		idx := c.ReadIndex(at, info.Long)
		arity := int(c.Code[at+info.IndexWidth()])
		body := c.ReadU16(at + info.IndexWidth() + 1)
		fmt.Fprintf(&sb, " %4d %s arity %d body %d", idx, c.constant(idx), arity, body)
	}
	return sb.String(), at + info.Width()
}

// isConstRef reports whether the index operand of op refers to the
// constant pool rather than a local slot.
func (op Opcode) isConstRef() bool {
	switch op {
	case OpLoadLocal, OpLoadLocalLong, OpStoreLocal, OpStoreLocalLong:
		return false
	}
	return true
}

func (c *Chunk) constant(idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "<bad constant>"
	}
	return "'" + c.Constants[idx].String() + "'"
}
