package sema

import (
	"fmt"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/source"
	"ash/internal/types"
)

// expr types e. valued reports whether the value is consumed; blocks and ifs
// in statement position are Void and their arms are not unified.
func (tc *typeChecker) expr(e *ast.Expr, valued bool) *Expr {
	switch d := e.Data.(type) {
	case *ast.VariableData:
		v := tc.variable(e, d)
		if v.Ty.IsFunction() {
			// A bare function reference outside callee position is a call.
			return &Expr{Kind: ExprCall, Ty: tc.callResult(e, v, nil), Span: e.Span, Data: &CallData{Callee: v}}
		}
		return v
	case *ast.GroupData:
		return tc.expr(d.Inner, valued)
	}
	out := &Expr{Span: e.Span}
	switch d := e.Data.(type) {
	case *ast.LiteralData:
		out.Kind = ExprLiteral
		out.Ty = types.OfValue(d.Value)
		out.Data = &LiteralData{Value: d.Value}
	case *ast.CallData:
		out.Kind = ExprCall
		callee := tc.callee(d.Callee)
		args := make([]*Expr, len(d.Args))
		for i, a := range d.Args {
			args[i] = tc.expr(a, true)
		}
		out.Ty = tc.callResult(e, callee, args)
		out.Data = &CallData{Callee: callee, Args: args}
	case *ast.BlockData:
		out.Kind = ExprBlock
		stmts, trailing := tc.stmts(d.Stmts, valued)
		out.Ty, out.Diverges = tc.bodyValue(d.ID, stmts, trailing, valued)
		out.Data = &BlockData{ID: d.ID, Stmts: stmts}
	case *ast.UnaryData:
		out.Kind = ExprUnary
		operand := tc.expr(d.Operand, true)
		out.Ty = tc.unaryResult(e, d.Op, operand.Ty)
		out.Data = &UnaryData{Op: d.Op, Operand: operand}
	case *ast.BinaryData:
		out.Kind = ExprBinary
		left := tc.expr(d.Left, true)
		right := tc.expr(d.Right, true)
		out.Ty = tc.binaryResult(e, d.Op, left.Ty, right.Ty)
		out.Data = &BinaryData{Op: d.Op, Left: left, Right: right}
	case *ast.IfData:
		out.Kind = ExprIf
		out.Data, out.Ty, out.Diverges = tc.ifExpr(e, d, valued)
	default:
		panic(fmt.Sprintf("sema: unexpected expression %T", e.Data))
	}
	return out
}

func (tc *typeChecker) variable(e *ast.Expr, d *ast.VariableData) *Expr {
	return &Expr{Kind: ExprVariable, Ty: tc.typeOf(d.ID), Span: e.Span, Data: &VariableData{ID: d.ID, Name: d.Name}}
}

// callee types the expression in call position, where function references
// are not promoted.
func (tc *typeChecker) callee(e *ast.Expr) *Expr {
	switch d := e.Data.(type) {
	case *ast.VariableData:
		return tc.variable(e, d)
	case *ast.GroupData:
		return tc.callee(d.Inner)
	}
	return tc.expr(e, true)
}

func (tc *typeChecker) callResult(e *ast.Expr, callee *Expr, args []*Expr) types.Ty {
	fn := callee.Ty
	if !fn.IsValid() {
		return types.Invalid
	}
	if !fn.IsFunction() {
		tc.errorf(diag.TypNotCallable, callee.Span, "cannot call value of type %s", fn)
		return types.Invalid
	}
	if len(args) != len(fn.Params) {
		tc.errorf(diag.TypArgCount, e.Span, "wrong number of arguments: expected %d, found %d", len(fn.Params), len(args))
		return fn.Ret()
	}
	for i, a := range args {
		tc.mismatch(diag.TypArgMismatch, a.Span, fn.Params[i], a.Ty,
			fmt.Sprintf("argument %d: expected %%s, found %%s", i+1))
	}
	return fn.Ret()
}

func (tc *typeChecker) unaryResult(e *ast.Expr, op ast.UnaryOp, operand types.Ty) types.Ty {
	if !operand.IsValid() {
		return types.Invalid
	}
	ty, ok := types.UnaryResultType(op, operand)
	if !ok {
		tc.errorf(diag.TypUnaryOperand, e.Span, "operator %s is not defined for %s", op, operand)
		return types.Invalid
	}
	return ty
}

func (tc *typeChecker) binaryResult(e *ast.Expr, op ast.BinaryOp, left, right types.Ty) types.Ty {
	if !left.IsValid() || !right.IsValid() {
		return types.Invalid
	}
	if left.IsVoid() || right.IsVoid() {
		tc.errorf(diag.TypVoidOperand, e.Span, "Void value used as operand of %s", op)
		return types.Invalid
	}
	if !left.Equal(right) {
		tc.errorf(diag.TypMismatch, e.Span, "mismatched operand types for %s: %s and %s", op, left, right)
		return types.Invalid
	}
	ty, ok := types.BinaryResultType(op, left, right)
	if !ok {
		tc.errorf(diag.TypBinaryOperand, e.Span, "operator %s is not defined for %s", op, left)
		return types.Invalid
	}
	return ty
}

// ifExpr types every arm as a block. In value position the arm types are
// gathered into a deferred union that is collapsed right away: the first
// candidate is authoritative and the others must equal it. Diverging arms
// contribute no candidate.
func (tc *typeChecker) ifExpr(e *ast.Expr, d *ast.IfData, valued bool) (*IfData, types.Ty, bool) {
	out := &IfData{Valued: valued}
	var candidates []types.Ty
	var spans []source.Span
	allDiverge := true
	arm := func(id ast.ID, cond *Expr, body []*ast.Stmt, a Arm) {
		stmts, trailing := tc.stmts(body, valued)
		ty, diverges := tc.bodyValue(id, stmts, trailing, valued)
		a.Cond, a.Body = cond, stmts
		out.Arms = append(out.Arms, a)
		if !diverges {
			allDiverge = false
			candidates = append(candidates, ty)
			spans = append(spans, a.Span)
		}
	}
	for i := range d.Arms {
		src := d.Arms[i]
		arm(src.ID, tc.condition(src.Cond), src.Body, Arm{ID: src.ID, Span: src.Span})
	}
	if d.Else != nil {
		arm(d.Else.ID, nil, d.Else.Body, Arm{ID: d.Else.ID, Span: d.Else.Span})
	}
	diverges := d.Else != nil && allDiverge
	if !valued {
		return out, types.Void, diverges
	}
	ty, bad := types.Collapse(types.DeferredUnion(candidates, e.Span))
	if bad >= 0 && ty.IsValid() && candidates[bad].IsValid() {
		tc.errorf(diag.TypBranchMismatch, spans[bad],
			"if arms have different types: expected %s, found %s", ty, candidates[bad])
		return out, types.Invalid, diverges
	}
	return out, ty, diverges
}
