package ast

import (
	"ash/internal/source"
)

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

type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the kind-specific payload of a Stmt.
type StmtData interface {
	stmtData()
}

// TypeExpr is a written type annotation, resolved by name later.
type TypeExpr struct {
	Name string
	Span source.Span
}

// Annotation is an `@[name]` marker in front of a function.
type Annotation struct {
	Name string
	Span source.Span
}

type Param struct {
	ID   ID
	Name string
	Type TypeExpr
	Span source.Span
}

// FunctionData declares a function. Body is nil for a prototype; otherwise
// it is either the `= expr` expression or a Block expression.
type FunctionData struct {
	ID          ID
	Name        string
	NameSpan    source.Span
	Params      []Param
	Result      *TypeExpr // nil means Void
	Body        *Expr
	Annotations []Annotation
}

func (FunctionData) stmtData() {}

// HasAnnotation reports whether the function carries @[name].
func (d *FunctionData) HasAnnotation(name string) bool {
	for _, a := range d.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// VarDeclData is `val name [: T] = value` or `var name [: T] = value`.
type VarDeclData struct {
	ID       ID
	Name     string
	NameSpan source.Span
	Mutable  bool
	Type     *TypeExpr
	Value    *Expr
}

func (VarDeclData) stmtData() {}

// AssignData is `name = value`; ID is bound to the assigned declaration.
type AssignData struct {
	ID       ID
	Name     string
	NameSpan source.Span
	Value    *Expr
}

func (AssignData) stmtData() {}

type ReturnData struct {
	Value *Expr // nil for a bare return
}

func (ReturnData) stmtData() {}

type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// WhileData is a loop; ID is the target of a bare `break`.
type WhileData struct {
	ID   ID
	Cond *Expr
	Body []*Stmt
}

func (WhileData) stmtData() {}

// BreakData leaves the innermost loop, or with a value the innermost value
// block or if-arm. ID is bound to the target by the resolver.
type BreakData struct {
	ID    ID
	Value *Expr
}

func (BreakData) stmtData() {}
