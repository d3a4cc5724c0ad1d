package sema

import (
	"fmt"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/symbols"
	"ash/internal/types"
)

func (tc *typeChecker) stmt(s *ast.Stmt) *Stmt {
	out := &Stmt{Span: s.Span, Ty: types.Void}
	switch d := s.Data.(type) {
	case *ast.FunctionData:
		out.Kind = StmtFunction
		out.Data = tc.function(d)
	case *ast.VarDeclData:
		out.Kind = StmtVarDecl
		data := tc.varDecl(d)
		out.Data = data
		out.Diverges = data.Value.Diverges
	case *ast.AssignData:
		out.Kind = StmtAssign
		val := tc.expr(d.Value, true)
		tc.mismatch(diag.TypAssignMismatch, d.Value.Span, tc.typeOf(d.ID), val.Ty,
			"cannot assign: variable has type %s, value has type %s")
		out.Data = &AssignData{ID: d.ID, Name: d.Name, Value: val}
		out.Diverges = val.Diverges
	case *ast.ReturnData:
		out.Kind = StmtReturn
		out.Data = tc.returnStmt(s, d)
		out.Diverges = true
	case *ast.ExprStmtData:
		out.Kind = StmtExpr
		e := tc.expr(d.Expr, false)
		out.Ty = e.Ty
		out.Diverges = e.Diverges
		out.Data = &ExprStmtData{Expr: e}
	case *ast.WhileData:
		out.Kind = StmtWhile
		cond := tc.condition(d.Cond)
		body, _ := tc.stmts(d.Body, false)
		out.Data = &WhileData{ID: d.ID, Cond: cond, Body: body}
	case *ast.BreakData:
		out.Kind = StmtBreak
		out.Data = tc.breakStmt(d)
	default:
		panic(fmt.Sprintf("sema: unexpected statement %T", s.Data))
	}
	return out
}

func (tc *typeChecker) function(d *ast.FunctionData) *FunctionData {
	rec := tc.ctx.Get(d.ID)
	fnTy, _ := tc.ctx.TypeOf(d.ID)
	out := &FunctionData{
		ID:       d.ID,
		Name:     d.Name,
		Result:   fnTy.Ret(),
		Builtin:  rec.Has(symbols.FlagBuiltin),
		NoMangle: rec.Has(symbols.FlagNoMangle),
	}
	for i, p := range d.Params {
		ty := types.Invalid
		if i < len(fnTy.Params) {
			ty = fnTy.Params[i]
		}
		out.Params = append(out.Params, Param{ID: p.ID, Name: p.Name, Ty: ty})
	}
	if d.Body == nil {
		return out
	}
	tc.fns = append(tc.fns, fnFrame{result: out.Result})
	valued := !out.Result.IsVoid()
	body := tc.expr(d.Body, valued)
	tc.fns = tc.fns[:len(tc.fns)-1]
	if valued && !body.Diverges {
		tc.mismatch(diag.TypReturnMismatch, d.Body.Span, out.Result, body.Ty,
			"function body must produce %s, found %s")
	}
	out.Body = body
	return out
}

func (tc *typeChecker) varDecl(d *ast.VarDeclData) *VarDeclData {
	val := tc.expr(d.Value, true)
	ty := val.Ty
	if d.Type != nil {
		if declared, ok := tc.ctx.TypeOf(d.ID); ok {
			tc.mismatch(diag.TypAnnotationMismatch, d.Value.Span, declared, val.Ty,
				"initializer does not match annotation: expected %s, found %s")
			ty = declared
		}
	} else if ty.IsValid() {
		tc.ctx.SetType(d.ID, ty)
	}
	if ty.IsVoid() {
		tc.errorf(diag.TypVoidVariable, d.NameSpan, "variable %s cannot have type Void", d.Name)
	}
	return &VarDeclData{ID: d.ID, Name: d.Name, Mutable: d.Mutable, Ty: ty, Value: val}
}

func (tc *typeChecker) returnStmt(s *ast.Stmt, d *ast.ReturnData) *ReturnData {
	out := &ReturnData{}
	want := types.Void
	inFn := len(tc.fns) > 0
	if inFn {
		want = tc.fns[len(tc.fns)-1].result
	}
	if d.Value == nil {
		if inFn && !want.IsVoid() && want.IsValid() {
			tc.errorf(diag.TypReturnMismatch, s.Span, "missing return value of type %s", want)
		}
		return out
	}
	out.Value = tc.expr(d.Value, true)
	if inFn && want.IsVoid() && out.Value.Ty.IsValid() && !out.Value.Ty.IsVoid() {
		tc.errorf(diag.TypReturnMismatch, d.Value.Span, "function returning Void cannot return a %s value", out.Value.Ty)
		return out
	}
	tc.mismatch(diag.TypReturnMismatch, d.Value.Span, want, out.Value.Ty, "return type mismatch: expected %s, found %s")
	return out
}

func (tc *typeChecker) breakStmt(d *ast.BreakData) *BreakData {
	out := &BreakData{ID: d.ID, Target: tc.ctx.Target(d.ID)}
	if d.Value == nil {
		return out
	}
	out.Value = tc.expr(d.Value, true)
	if !out.Value.Ty.IsValid() {
		return out
	}
	info := tc.targets[out.Target]
	if info == nil {
		info = &breakInfo{}
		tc.targets[out.Target] = info
	}
	if !info.set {
		info.ty, info.set = out.Value.Ty, true
		return out
	}
	tc.mismatch(diag.TypBreakMismatch, d.Value.Span, info.ty, out.Value.Ty, "break value type mismatch: expected %s, found %s")
	return out
}

func (tc *typeChecker) condition(e *ast.Expr) *Expr {
	cond := tc.expr(e, true)
	tc.mismatch(diag.TypConditionNotBool, e.Span, types.Bool, cond.Ty, "condition must be %s, found %s")
	return cond
}

// stmts checks a statement list. When valued, a trailing expression
// statement is checked in value position and its type is returned.
func (tc *typeChecker) stmts(list []*ast.Stmt, valued bool) ([]*Stmt, *Stmt) {
	out := make([]*Stmt, 0, len(list))
	var trailing *Stmt
	for i, s := range list {
		if es, ok := s.Data.(*ast.ExprStmtData); ok && valued && i == len(list)-1 {
			e := tc.expr(es.Expr, true)
			trailing = &Stmt{Kind: StmtExpr, Ty: e.Ty, Span: s.Span, Diverges: e.Diverges, Data: &ExprStmtData{Expr: e}}
			out = append(out, trailing)
			continue
		}
		out = append(out, tc.stmt(s))
	}
	return out, trailing
}

// bodyValue computes the value type and divergence of a block or arm body
// registered as break target id.
func (tc *typeChecker) bodyValue(id ast.ID, stmts []*Stmt, trailing *Stmt, valued bool) (types.Ty, bool) {
	diverges := false
	for _, s := range stmts {
		if s.Diverges {
			diverges = true
			break
		}
	}
	if !valued {
		return types.Void, diverges
	}
	info := tc.targets[id]
	switch {
	case trailing != nil && !trailing.Diverges:
		if info != nil && info.set {
			tc.mismatch(diag.TypBreakMismatch, trailing.Span, info.ty, trailing.Ty, "block value type mismatch: breaks produce %s, trailing expression is %s")
		}
		return trailing.Ty, false
	case info != nil && info.set:
		return info.ty, false
	}
	return types.Void, diverges
}
