package ast

import (
	"ash/internal/source"
	"ash/internal/value"
)

// ExprKind enumerates syntax tree expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprCall
	ExprBlock
	ExprGroup
	ExprUnary
	ExprBinary
	ExprIf
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVariable:
		return "Variable"
	case ExprCall:
		return "Call"
	case ExprBlock:
		return "Block"
	case ExprGroup:
		return "Group"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprIf:
		return "If"
	default:
		return "Unknown"
	}
}

type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is the kind-specific payload of an Expr.
type ExprData interface {
	exprData()
}

type LiteralData struct {
	Value value.Value
}

func (LiteralData) exprData() {}

// VariableData is a reference; ID is bound to a declaration by the resolver.
type VariableData struct {
	ID   ID
	Name string
}

func (VariableData) exprData() {}

type CallData struct {
	Callee *Expr
	Args   []*Expr
}

func (CallData) exprData() {}

// BlockData is a braced statement list. ID is the target of `break value`.
type BlockData struct {
	ID    ID
	Stmts []*Stmt
}

func (BlockData) exprData() {}

type GroupData struct {
	Inner *Expr
}

func (GroupData) exprData() {}

type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

func (UnaryData) exprData() {}

type BinaryData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// IfArm is one `if cond { ... }` or `else if cond { ... }` branch.
type IfArm struct {
	ID   ID
	Cond *Expr
	Body []*Stmt
	Span source.Span
}

// ElseArm is the trailing `else { ... }` branch.
type ElseArm struct {
	ID   ID
	Body []*Stmt
	Span source.Span
}

// IfData holds an if/else-if chain. Arms[0] is the leading `if`.
type IfData struct {
	Arms []IfArm
	Else *ElseArm
}

func (IfData) exprData() {}
