// Package hir holds the lowered tree: no expression produces its value
// through a block or an if, every binding has a globally unique name, and
// top-level declarations are in initialization order.
package hir

import (
	"ash/internal/ast"
	"ash/internal/source"
	"ash/internal/types"
	"ash/internal/value"
)

type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprCall
	ExprUnary
	ExprBinary
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVariable:
		return "Variable"
	case ExprCall:
		return "Call"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

type Expr struct {
	Kind ExprKind
	Ty   types.Ty
	Span source.Span
	Data ExprData
}

type ExprData interface {
	exprData()
}

type LiteralData struct {
	Value value.Value
}

func (LiteralData) exprData() {}

// VariableData reads the binding declared with ID under its unique Name.
type VariableData struct {
	ID   ast.ID
	Name string
}

func (VariableData) exprData() {}

// CallData calls a function by its unique name.
type CallData struct {
	ID   ast.ID
	Name string
	Args []*Expr
}

func (CallData) exprData() {}

type UnaryData struct {
	Op      ast.UnaryOp
	Operand *Expr
}

func (UnaryData) exprData() {}

type BinaryData struct {
	Op    ast.BinaryOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

type StmtKind uint8

const (
	StmtFunction StmtKind = iota
	StmtVarDecl
	StmtAssign
	StmtReturn
	StmtExpr
	StmtIf
	StmtWhile
	StmtBlock
	StmtBreak
)

func (k StmtKind) String() string {
	switch k {
	case StmtFunction:
		return "Function"
	case StmtVarDecl:
		return "VarDecl"
	case StmtAssign:
		return "Assign"
	case StmtReturn:
		return "Return"
	case StmtExpr:
		return "Expr"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtBlock:
		return "Block"
	case StmtBreak:
		return "Break"
	default:
		return "Unknown"
	}
}

type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

type StmtData interface {
	stmtData()
}

type Param struct {
	ID   ast.ID
	Name string
	Ty   types.Ty
}

type FunctionData struct {
	ID     ast.ID
	Name   string
	Params []Param
	Result types.Ty
	Body   []*Stmt
}

func (FunctionData) stmtData() {}

// VarDeclData declares Name. Temp is set for variables introduced by
// lowering.
type VarDeclData struct {
	ID      ast.ID
	Name    string
	Ty      types.Ty
	Mutable bool
	Temp    bool
	Value   *Expr
}

func (VarDeclData) stmtData() {}

type AssignData struct {
	ID    ast.ID
	Name  string
	Value *Expr
}

func (AssignData) stmtData() {}

type ReturnData struct {
	Value *Expr
}

func (ReturnData) stmtData() {}

type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

type IfArm struct {
	Cond *Expr
	Body []*Stmt
}

// IfData is a statement-form if chain; Else may be empty.
type IfData struct {
	Arms []IfArm
	Else []*Stmt
}

func (IfData) stmtData() {}

// WhileData is a loop; breaks with Target equal to ID leave it.
type WhileData struct {
	ID   ast.ID
	Cond *Expr
	Body []*Stmt
}

func (WhileData) stmtData() {}

// BlockData is a nested scope. A block with a valid Target can be left early
// by a break.
type BlockData struct {
	Target ast.ID
	Body   []*Stmt
}

func (BlockData) stmtData() {}

type BreakData struct {
	Target ast.ID
}

func (BreakData) stmtData() {}

// Module is the lowered program. CallsMain is set when lowering appended
// the call to main as the final statement.
type Module struct {
	Path      string
	Stmts     []*Stmt
	CallsMain bool
}
