package bytecode

import (
	"fmt"

	"fortio.org/safecast"

	"ash/internal/value"
)

const (
	// MaxShortIndex is the largest index encoded in one byte.
	MaxShortIndex = 0xFF
	// MaxLongIndex is the largest index encoded in three bytes.
	MaxLongIndex = 1<<24 - 1
	// MaxJump is the largest jump, loop or function body length.
	MaxJump = 0xFFFF
	// MaxArgs is the largest call argument count or function arity.
	MaxArgs = 0xFF
)

// Chunk is a compiled program: a constant pool and an instruction stream.
// It is append-only while compiling and read-only while executing.
type Chunk struct {
	Constants []value.Value
	Code      []byte
	// Symbols maps mangled global names to their source names.
	Symbols map[string]string

	names map[string]int
}

func NewChunk() *Chunk {
	return &Chunk{Symbols: make(map[string]string), names: make(map[string]int)}
}

// AddConstant appends v to the constant pool and returns its index.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Name returns the pool index of a global or function name, adding it on
// first use. Each name is stored once.
func (c *Chunk) Name(name string) int {
	if c.names == nil {
		c.rebuildNames()
	}
	if idx, ok := c.names[name]; ok {
		return idx
	}
	idx := c.AddConstant(value.MakeString(name))
	c.names[name] = idx
	return idx
}

func (c *Chunk) rebuildNames() {
	c.names = make(map[string]int, len(c.Constants))
	for i, k := range c.Constants {
		if k.Kind != value.KindString {
			continue
		}
		if _, seen := c.names[k.Str]; !seen {
			c.names[k.Str] = i
		}
	}
}

func (c *Chunk) Len() int { return len(c.Code) }

func (c *Chunk) WriteOp(op Opcode) {
	c.Code = append(c.Code, byte(op))
}

// WriteIndexed emits op with an index operand, switching to the long form
// when the index does not fit in one byte.
func (c *Chunk) WriteIndexed(op Opcode, index int) error {
	if index < 0 || index > MaxLongIndex {
		return &EncodingError{Op: op, Value: index, Limit: MaxLongIndex, What: "index"}
	}
	if index > MaxShortIndex {
		long, ok := longForm[op]
		if !ok {
			return &EncodingError{Op: op, Value: index, Limit: MaxShortIndex, What: "index"}
		}
		c.WriteOp(long)
		c.writeU24(index)
		return nil
	}
	c.WriteOp(op)
	c.Code = append(c.Code, byte(index))
	return nil
}

// WriteCount emits a one-byte count.
func (c *Chunk) WriteCount(op Opcode, n int) error {
	b, err := safecast.Conv[uint8](n)
	if err != nil {
		return &EncodingError{Op: op, Value: n, Limit: MaxArgs, What: "count"}
	}
	c.Code = append(c.Code, b)
	return nil
}

// WritePlaceholder reserves a 2-byte operand and returns its offset.
func (c *Chunk) WritePlaceholder() int {
	c.Code = append(c.Code, 0xFF, 0xFF)
	return len(c.Code) - 2
}

// WriteJump emits a forward jump with a placeholder displacement.
func (c *Chunk) WriteJump(op Opcode) int {
	c.WriteOp(op)
	return c.WritePlaceholder()
}

// Patch fills the placeholder at offset with the distance from the byte
// after it to the current end of code.
func (c *Chunk) Patch(op Opcode, offset int) error {
	dist := len(c.Code) - offset - 2
	d, err := safecast.Conv[uint16](dist)
	if err != nil {
		return &EncodingError{Op: op, Value: dist, Limit: MaxJump, What: "jump"}
	}
	c.Code[offset] = byte(d)
	c.Code[offset+1] = byte(d >> 8)
	return nil
}

// WriteLoop emits a backward jump to start.
func (c *Chunk) WriteLoop(start int) error {
	c.WriteOp(OpLoop)
	dist := len(c.Code) - start + 2
	d, err := safecast.Conv[uint16](dist)
	if err != nil {
		return &EncodingError{Op: OpLoop, Value: dist, Limit: MaxJump, What: "jump"}
	}
	c.Code = append(c.Code, byte(d), byte(d>>8))
	return nil
}

func (c *Chunk) writeU24(n int) {
	c.Code = append(c.Code, byte(n), byte(n>>8), byte(n>>16))
}

// ReadIndex decodes an index operand at offset.
func (c *Chunk) ReadIndex(offset int, long bool) int {
	if long {
		return int(c.Code[offset]) | int(c.Code[offset+1])<<8 | int(c.Code[offset+2])<<16
	}
	return int(c.Code[offset])
}

// ReadU16 decodes a 2-byte little-endian operand at offset.
func (c *Chunk) ReadU16(offset int) int {
	return int(c.Code[offset]) | int(c.Code[offset+1])<<8
}

// EncodingError reports an operand that does not fit its encoding. It is
// fatal for the compilation.
type EncodingError struct {
	Op    Opcode
	What  string
	Value int
	Limit int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("bytecode: %s %d of %s exceeds the encodable limit %d", e.What, e.Value, e.Op, e.Limit)
}
