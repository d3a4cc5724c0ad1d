// Package ast holds the untyped syntax tree produced by the parser.
package ast

import (
	"ash/internal/source"
)

// File is the root of one parsed source file.
type File struct {
	Path  string
	ID    source.FileID
	Span  source.Span
	Stmts []*Stmt
}

// Walk visits every statement and expression in depth-first order. The
// callbacks may be nil.
func Walk(stmts []*Stmt, onStmt func(*Stmt), onExpr func(*Expr)) {
	w := walker{onStmt: onStmt, onExpr: onExpr}
	w.stmts(stmts)
}

type walker struct {
	onStmt func(*Stmt)
	onExpr func(*Expr)
}

func (w walker) stmts(list []*Stmt) {
	for _, s := range list {
		w.stmt(s)
	}
}

func (w walker) stmt(s *Stmt) {
	if s == nil {
		return
	}
	if w.onStmt != nil {
		w.onStmt(s)
	}
	switch d := s.Data.(type) {
	case *FunctionData:
		w.expr(d.Body)
	case *VarDeclData:
		w.expr(d.Value)
	case *AssignData:
		w.expr(d.Value)
	case *ReturnData:
		w.expr(d.Value)
	case *ExprStmtData:
		w.expr(d.Expr)
	case *WhileData:
		w.expr(d.Cond)
		w.stmts(d.Body)
	case *BreakData:
		w.expr(d.Value)
	}
}

func (w walker) expr(e *Expr) {
	if e == nil {
		return
	}
	if w.onExpr != nil {
		w.onExpr(e)
	}
	switch d := e.Data.(type) {
	case *CallData:
		w.expr(d.Callee)
		for _, a := range d.Args {
			w.expr(a)
		}
	case *BlockData:
		w.stmts(d.Stmts)
	case *GroupData:
		w.expr(d.Inner)
	case *UnaryData:
		w.expr(d.Operand)
	case *BinaryData:
		w.expr(d.Left)
		w.expr(d.Right)
	case *IfData:
		for i := range d.Arms {
			w.expr(d.Arms[i].Cond)
			w.stmts(d.Arms[i].Body)
		}
		if d.Else != nil {
			w.stmts(d.Else.Body)
		}
	}
}
