package sema

import (
	"ash/internal/ast"
	"ash/internal/source"
	"ash/internal/types"
	"ash/internal/value"
)

// ExprKind enumerates typed expression kinds. Groups are gone: parentheses
// only shaped the syntax tree.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprCall
	ExprBlock
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

// Expr is a typed expression. Diverges is set when every path through the
// expression ends in a return.
type Expr struct {
	Kind     ExprKind
	Ty       types.Ty
	Span     source.Span
	Diverges bool
	Data     ExprData
}

type ExprData interface {
	exprData()
}

type LiteralData struct {
	Value value.Value
}

func (LiteralData) exprData() {}

// VariableData is a reference; ID points at its declaration in the context.
type VariableData struct {
	ID   ast.ID
	Name string
}

func (VariableData) exprData() {}

type CallData struct {
	Callee *Expr
	Args   []*Expr
}

func (CallData) exprData() {}

type BlockData struct {
	ID    ast.ID
	Stmts []*Stmt
}

func (BlockData) exprData() {}

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

// Arm is one branch of an if chain. Cond is nil for the trailing else.
type Arm struct {
	ID   ast.ID
	Cond *Expr
	Body []*Stmt
	Span source.Span
}

// IfData holds the typed if chain; Valued reports whether its value is used.
type IfData struct {
	Arms   []Arm
	Valued bool
}

func (IfData) exprData() {}

// HasElse reports whether the chain ends in an unconditional arm.
func (d *IfData) HasElse() bool {
	return len(d.Arms) > 0 && d.Arms[len(d.Arms)-1].Cond == nil
}

type StmtKind uint8

const (
	StmtFunction StmtKind = iota
	StmtVarDecl
	StmtAssign
	StmtReturn
	StmtExpr
	StmtWhile
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
	case StmtWhile:
		return "While"
	case StmtBreak:
		return "Break"
	default:
		return "Unknown"
	}
}

// Stmt is a typed statement. Ty is the expression type for expression
// statements and Void otherwise.
type Stmt struct {
	Kind     StmtKind
	Ty       types.Ty
	Span     source.Span
	Diverges bool
	Data     StmtData
}

type StmtData interface {
	stmtData()
}

type Param struct {
	ID   ast.ID
	Name string
	Ty   types.Ty
}

// FunctionData is a typed function. Body is nil for builtins.
type FunctionData struct {
	ID       ast.ID
	Name     string
	Params   []Param
	Result   types.Ty
	Body     *Expr
	Builtin  bool
	NoMangle bool
}

func (FunctionData) stmtData() {}

type VarDeclData struct {
	ID      ast.ID
	Name    string
	Mutable bool
	Ty      types.Ty
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

type WhileData struct {
	ID   ast.ID
	Cond *Expr
	Body []*Stmt
}

func (WhileData) stmtData() {}

// BreakData leaves Target, the loop, value block or if-arm it was bound to.
type BreakData struct {
	ID     ast.ID
	Target ast.ID
	Value  *Expr
}

func (BreakData) stmtData() {}

// File is the typed tree of one source file.
type File struct {
	Path  string
	Stmts []*Stmt
}
