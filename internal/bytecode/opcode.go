// Package bytecode defines the instruction set, the Chunk container and the
// compiler from the lowered tree.
package bytecode

import "fmt"

// Opcode is the first byte of every instruction. Values are stable: they are
// persisted in chunk files.
type Opcode byte

const (
	OpRet Opcode = iota
	OpConst
	OpConstLong
	OpNeg
	OpSum
	OpSub
	OpMul
	OpDiv
	OpRem
	OpTrue
	OpFalse
	OpNot
	OpEq
	OpNeq
	OpGt
	OpLt
	OpGte
	OpLte
	OpPop
	OpDefGlobal
	OpDefGlobalLong
	OpLoadGlobal
	OpLoadGlobalLong
	OpStoreGlobal
	OpStoreGlobalLong
	OpLoadLocal
	OpLoadLocalLong
	OpStoreLocal
	OpStoreLocalLong
	OpJmpIfFalse
	OpJmp
	OpLoop
	OpRetValue
	OpCall
	OpCallLong
	OpFun
	OpFunLong

	opCount
)

// OperandKind describes the bytes following an opcode.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	// OperandIndex is a constant, global name or local slot index.
	OperandIndex
	// OperandJump is a 2-byte little-endian displacement.
	OperandJump
	// OperandCall is a name index followed by a 1-byte argument count.
	OperandCall
	// OperandFun is a name index, a 1-byte arity and a 2-byte body length.
	OperandFun
)

// Info is the static description of one opcode.
type Info struct {
	Name    string
	Operand OperandKind
	// Long marks the 3-byte index form.
	Long bool
}

var infoTable = [opCount]Info{
	OpRet:             {Name: "Ret"},
	OpConst:           {Name: "Const", Operand: OperandIndex},
	OpConstLong:       {Name: "ConstLong", Operand: OperandIndex, Long: true},
	OpNeg:             {Name: "Neg"},
	OpSum:             {Name: "Sum"},
	OpSub:             {Name: "Sub"},
	OpMul:             {Name: "Mul"},
	OpDiv:             {Name: "Div"},
	OpRem:             {Name: "Rem"},
	OpTrue:            {Name: "True"},
	OpFalse:           {Name: "False"},
	OpNot:             {Name: "Not"},
	OpEq:              {Name: "Eq"},
	OpNeq:             {Name: "Neq"},
	OpGt:              {Name: "Gt"},
	OpLt:              {Name: "Lt"},
	OpGte:             {Name: "Gte"},
	OpLte:             {Name: "Lte"},
	OpPop:             {Name: "Pop"},
	OpDefGlobal:       {Name: "DefGlobal", Operand: OperandIndex},
	OpDefGlobalLong:   {Name: "DefGlobalLong", Operand: OperandIndex, Long: true},
	OpLoadGlobal:      {Name: "LoadGlobal", Operand: OperandIndex},
	OpLoadGlobalLong:  {Name: "LoadGlobalLong", Operand: OperandIndex, Long: true},
	OpStoreGlobal:     {Name: "StoreGlobal", Operand: OperandIndex},
	OpStoreGlobalLong: {Name: "StoreGlobalLong", Operand: OperandIndex, Long: true},
	OpLoadLocal:       {Name: "LoadLocal", Operand: OperandIndex},
	OpLoadLocalLong:   {Name: "LoadLocalLong", Operand: OperandIndex, Long: true},
	OpStoreLocal:      {Name: "StoreLocal", Operand: OperandIndex},
	OpStoreLocalLong:  {Name: "StoreLocalLong", Operand: OperandIndex, Long: true},
	OpJmpIfFalse:      {Name: "JmpIfFalse", Operand: OperandJump},
	OpJmp:             {Name: "Jmp", Operand: OperandJump},
	OpLoop:            {Name: "Loop", Operand: OperandJump},
	OpRetValue:        {Name: "RetValue"},
	OpCall:            {Name: "Call", Operand: OperandCall},
	OpCallLong:        {Name: "CallLong", Operand: OperandCall, Long: true},
	OpFun:             {Name: "Fun", Operand: OperandFun},
	OpFunLong:         {Name: "FunLong", Operand: OperandFun, Long: true},
}

// Lookup returns the description of op.
func Lookup(op Opcode) (Info, bool) {
	if op >= opCount {
		return Info{}, false
	}
	return infoTable[op], true
}

func (op Opcode) String() string {
	if info, ok := Lookup(op); ok {
		return info.Name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// IndexWidth is the size of an index operand.
func (i Info) IndexWidth() int {
	if i.Long {
		return 3
	}
	return 1
}

// Width returns the number of operand bytes following the opcode.
func (i Info) Width() int {
	switch i.Operand {
	case OperandIndex:
		return i.IndexWidth()
	case OperandJump:
		return 2
	case OperandCall:
		return i.IndexWidth() + 1
	case OperandFun:
		return i.IndexWidth() + 3
	default:
		return 0
	}
}

// longForm maps a short indexed opcode to its 3-byte variant.
var longForm = map[Opcode]Opcode{
	OpConst:       OpConstLong,
	OpDefGlobal:   OpDefGlobalLong,
	OpLoadGlobal:  OpLoadGlobalLong,
	OpStoreGlobal: OpStoreGlobalLong,
	OpLoadLocal:   OpLoadLocalLong,
	OpStoreLocal:  OpStoreLocalLong,
	OpCall:        OpCallLong,
	OpFun:         OpFunLong,
}
