package hir

import (
	"fmt"

	"ash/internal/ast"
	"ash/internal/sema"
	"ash/internal/types"
)

// value lowers e for use as a value. It returns the expression to use at the
// original site and the statements that must run right before it, in
// source order.
func (l *lowerer) value(e *sema.Expr) (*Expr, []*Stmt) {
	if types.ContainsDeferred(e.Ty) {
		l.fail("expression at %s has unresolved type %s", e.Span, e.Ty)
	}
	switch d := e.Data.(type) {
	case *sema.LiteralData:
		return &Expr{Kind: ExprLiteral, Ty: e.Ty, Span: e.Span, Data: &LiteralData{Value: d.Value}}, nil
	case *sema.VariableData:
		return &Expr{Kind: ExprVariable, Ty: e.Ty, Span: e.Span, Data: &VariableData{
			ID: l.ctx.Target(d.ID), Name: l.ctx.NameOf(d.ID),
		}}, nil
	case *sema.CallData:
		callee, ok := d.Callee.Data.(*sema.VariableData)
		if !ok {
			l.fail("call of a %s expression", d.Callee.Kind)
			return l.placeholder(e), nil
		}
		args, prefix := l.operands(d.Args)
		return &Expr{Kind: ExprCall, Ty: e.Ty, Span: e.Span, Data: &CallData{
			ID: l.ctx.Target(callee.ID), Name: l.ctx.NameOf(callee.ID), Args: args,
		}}, prefix
	case *sema.UnaryData:
		operand, prefix := l.value(d.Operand)
		return &Expr{Kind: ExprUnary, Ty: e.Ty, Span: e.Span, Data: &UnaryData{Op: d.Op, Operand: operand}}, prefix
	case *sema.BinaryData:
		if d.Op.IsShortCircuit() {
			return l.shortCircuit(e, d)
		}
		ops, prefix := l.operands([]*sema.Expr{d.Left, d.Right})
		return &Expr{Kind: ExprBinary, Ty: e.Ty, Span: e.Span, Data: &BinaryData{Op: d.Op, Left: ops[0], Right: ops[1]}}, prefix
	case *sema.BlockData:
		return l.valueBlock(e, d)
	case *sema.IfData:
		return l.valueIf(e, d)
	}
	panic(fmt.Sprintf("hir: unexpected expression %T", e.Data))
}

// operands lowers a left-to-right operand list. When a later operand needs
// statements of its own, every earlier operand that is not a literal is
// first saved in a temporary so it is still evaluated before them.
func (l *lowerer) operands(list []*sema.Expr) ([]*Expr, []*Stmt) {
	vals := make([]*Expr, len(list))
	prefixes := make([][]*Stmt, len(list))
	last := -1
	for i, e := range list {
		vals[i], prefixes[i] = l.value(e)
		if len(prefixes[i]) > 0 {
			last = i
		}
	}
	var out []*Stmt
	for i := range list {
		out = append(out, prefixes[i]...)
		if i < last && vals[i].Kind != ExprLiteral {
			decl, t := l.declareTemp(vals[i].Ty, vals[i], vals[i].Span)
			out = append(out, decl)
			vals[i] = t.read(vals[i].Span)
		}
	}
	return vals, out
}

// shortCircuit keeps && and || as operators unless the right operand needs
// statements, which must then only run when the right side is evaluated:
//
//	var t = left; if t { prefix; t = right }     (&&)
//	var t = left; if !t { prefix; t = right }    (||)
func (l *lowerer) shortCircuit(e *sema.Expr, d *sema.BinaryData) (*Expr, []*Stmt) {
	left, prefix := l.value(d.Left)
	right, rightPrefix := l.value(d.Right)
	if len(rightPrefix) == 0 {
		return &Expr{Kind: ExprBinary, Ty: e.Ty, Span: e.Span, Data: &BinaryData{Op: d.Op, Left: left, Right: right}}, prefix
	}
	decl, t := l.declareTemp(types.Bool, left, d.Left.Span)
	cond := t.read(d.Left.Span)
	if d.Op == ast.BinaryOr {
		cond = &Expr{Kind: ExprUnary, Ty: types.Bool, Span: cond.Span, Data: &UnaryData{Op: ast.UnaryNot, Operand: cond}}
	}
	body := append(rightPrefix, t.assign(right))
	ifStmt := &Stmt{Kind: StmtIf, Span: e.Span, Data: &IfData{Arms: []IfArm{{Cond: cond, Body: body}}}}
	return t.read(e.Span), append(prefix, decl, ifStmt)
}

// valueBlock splices the statements of a block before the site and uses its
// trailing expression as the value. A block left by breaks with a value
// becomes a temporary plus a breakable block assigning it on every path.
func (l *lowerer) valueBlock(e *sema.Expr, d *sema.BlockData) (*Expr, []*Stmt) {
	if l.valueTargets[d.ID] {
		decl, t := l.temp(e.Ty, e.Span)
		l.breakTemps[d.ID] = t
		block := &Stmt{Kind: StmtBlock, Span: e.Span, Data: &BlockData{Target: d.ID, Body: l.valueBody(d.Stmts, t)}}
		return t.read(e.Span), []*Stmt{decl, block}
	}
	last, rest := trailing(d.Stmts)
	out := l.stmts(rest)
	if last == nil {
		// Every path left through a return; the site is never reached.
		return l.placeholder(e), out
	}
	val, prefix := l.value(last.Data.(*sema.ExprStmtData).Expr)
	return val, append(out, prefix...)
}

// valueIf declares one temporary of the if's type, assigns it at the end of
// every arm and reads it at the original site.
func (l *lowerer) valueIf(e *sema.Expr, d *sema.IfData) (*Expr, []*Stmt) {
	decl, t := l.temp(e.Ty, e.Span)
	return t.read(e.Span), append([]*Stmt{decl}, l.ifChain(d.Arms, t)...)
}

// placeholder stands in for a value that is never computed because control
// cannot reach it.
func (l *lowerer) placeholder(e *sema.Expr) *Expr {
	zero, ok := types.Zero(e.Ty)
	if !ok {
		l.fail("unreachable value of type %s", e.Ty)
	}
	return &Expr{Kind: ExprLiteral, Ty: e.Ty, Span: e.Span, Data: &LiteralData{Value: zero}}
}
