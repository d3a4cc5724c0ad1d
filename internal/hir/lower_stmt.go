package hir

import (
	"fmt"

	"ash/internal/ast"
	"ash/internal/sema"
	"ash/internal/types"
	"ash/internal/value"
)

// stmt lowers one statement into the statements that replace it.
func (l *lowerer) stmt(s *sema.Stmt) []*Stmt {
	switch d := s.Data.(type) {
	case *sema.FunctionData:
		if d.Builtin || d.Body == nil {
			return nil
		}
		return []*Stmt{l.function(s, d)}
	case *sema.VarDeclData:
		if types.ContainsDeferred(d.Ty) {
			l.fail("variable %s has unresolved type %s", d.Name, d.Ty)
		}
		val, prefix := l.value(d.Value)
		decl := &Stmt{Kind: StmtVarDecl, Span: s.Span, Data: &VarDeclData{
			ID: d.ID, Name: l.ctx.NameOf(d.ID), Ty: d.Ty, Mutable: d.Mutable, Value: val,
		}}
		return append(prefix, decl)
	case *sema.AssignData:
		val, prefix := l.value(d.Value)
		decl := l.ctx.Target(d.ID)
		return append(prefix, &Stmt{Kind: StmtAssign, Span: s.Span, Data: &AssignData{
			ID: decl, Name: l.ctx.NameOf(d.ID), Value: val,
		}})
	case *sema.ReturnData:
		if d.Value == nil {
			return []*Stmt{{Kind: StmtReturn, Span: s.Span, Data: &ReturnData{}}}
		}
		val, prefix := l.value(d.Value)
		return append(prefix, &Stmt{Kind: StmtReturn, Span: s.Span, Data: &ReturnData{Value: val}})
	case *sema.ExprStmtData:
		return l.effect(d.Expr)
	case *sema.WhileData:
		return []*Stmt{l.while(s, d)}
	case *sema.BreakData:
		brk := &Stmt{Kind: StmtBreak, Span: s.Span, Data: &BreakData{Target: d.Target}}
		if d.Value == nil {
			return []*Stmt{brk}
		}
		t, ok := l.breakTemps[d.Target]
		if !ok {
			l.fail("break value without a receiving temporary")
			return []*Stmt{brk}
		}
		val, prefix := l.value(d.Value)
		return append(prefix, t.assign(val), brk)
	}
	panic(fmt.Sprintf("hir: unexpected statement %T", s.Data))
}

func (l *lowerer) stmts(list []*sema.Stmt) []*Stmt {
	var out []*Stmt
	for _, s := range list {
		out = append(out, l.stmt(s)...)
	}
	return out
}

// effect lowers an expression evaluated only for its side effects.
func (l *lowerer) effect(e *sema.Expr) []*Stmt {
	switch d := e.Data.(type) {
	case *sema.BlockData:
		if !l.valueTargets[d.ID] {
			return []*Stmt{{Kind: StmtBlock, Span: e.Span, Data: &BlockData{Body: l.stmts(d.Stmts)}}}
		}
	case *sema.IfData:
		if !d.Valued || e.Diverges {
			return l.ifChain(d.Arms, tempRef{})
		}
	}
	val, prefix := l.value(e)
	return append(prefix, &Stmt{Kind: StmtExpr, Span: e.Span, Data: &ExprStmtData{Expr: val}})
}

// function lowers a function body. A value-returning body ends in an
// explicit return of its value; any other body ends in a bare return.
func (l *lowerer) function(s *sema.Stmt, d *sema.FunctionData) *Stmt {
	out := &FunctionData{ID: d.ID, Name: l.ctx.NameOf(d.ID), Result: d.Result}
	for _, p := range d.Params {
		out.Params = append(out.Params, Param{ID: p.ID, Name: l.ctx.NameOf(p.ID), Ty: p.Ty})
	}
	if !d.Result.IsVoid() && !d.Body.Diverges {
		val, prefix := l.value(d.Body)
		out.Body = append(prefix, &Stmt{Kind: StmtReturn, Span: d.Body.Span, Data: &ReturnData{Value: val}})
	} else {
		if block, ok := d.Body.Data.(*sema.BlockData); ok {
			out.Body = l.stmts(block.Stmts)
		} else {
			out.Body = l.effect(d.Body)
		}
		if n := len(out.Body); n == 0 || out.Body[n-1].Kind != StmtReturn {
			out.Body = append(out.Body, &Stmt{Kind: StmtReturn, Span: d.Body.Span, Data: &ReturnData{}})
		}
	}
	return &Stmt{Kind: StmtFunction, Span: s.Span, Data: out}
}

// while keeps a plain condition in place. A condition that needs statements
// of its own is evaluated at the top of every iteration instead:
//
//	while true { prefix; if !cond { break }; body }
func (l *lowerer) while(s *sema.Stmt, d *sema.WhileData) *Stmt {
	cond, prefix := l.value(d.Cond)
	body := l.stmts(d.Body)
	if len(prefix) > 0 {
		exit := &Stmt{Kind: StmtIf, Span: d.Cond.Span, Data: &IfData{Arms: []IfArm{{
			Cond: &Expr{Kind: ExprUnary, Ty: types.Bool, Span: cond.Span, Data: &UnaryData{Op: ast.UnaryNot, Operand: cond}},
			Body: []*Stmt{{Kind: StmtBreak, Span: d.Cond.Span, Data: &BreakData{Target: d.ID}}},
		}}}}
		body = append(append(prefix, exit), body...)
		cond = &Expr{Kind: ExprLiteral, Ty: types.Bool, Span: d.Cond.Span, Data: &LiteralData{Value: value.MakeBool(true)}}
	}
	return &Stmt{Kind: StmtWhile, Span: s.Span, Data: &WhileData{ID: d.ID, Cond: cond, Body: body}}
}

// ifChain lowers an if chain in statement form. With a valid temporary, the
// trailing value of every arm is assigned to it. A condition of a later arm
// that needs statements of its own moves into the else branch of the arms
// before it, so it only runs when they were not taken.
func (l *lowerer) ifChain(arms []sema.Arm, t tempRef) []*Stmt {
	if len(arms) == 0 {
		return nil
	}
	if arms[0].Cond == nil {
		return l.armBody(arms[0], t)
	}
	cond, prefix := l.value(arms[0].Cond)
	return append(prefix, l.ifFrom(cond, arms, t))
}

func (l *lowerer) ifFrom(cond *Expr, arms []sema.Arm, t tempRef) *Stmt {
	d := &IfData{Arms: []IfArm{{Cond: cond, Body: l.armBody(arms[0], t)}}}
	for i := 1; i < len(arms); i++ {
		a := arms[i]
		if a.Cond == nil {
			d.Else = l.armBody(a, t)
			break
		}
		c, prefix := l.value(a.Cond)
		if len(prefix) > 0 {
			d.Else = append(prefix, l.ifFrom(c, arms[i:], t))
			break
		}
		d.Arms = append(d.Arms, IfArm{Cond: c, Body: l.armBody(a, t)})
	}
	return &Stmt{Kind: StmtIf, Span: arms[0].Span, Data: d}
}

// armBody lowers the body of one arm. An arm left by breaks with a value
// becomes a breakable block.
func (l *lowerer) armBody(a sema.Arm, t tempRef) []*Stmt {
	breakable := t.valid() && l.valueTargets[a.ID]
	if breakable {
		l.breakTemps[a.ID] = t
	}
	body := l.valueBody(a.Body, t)
	if breakable {
		return []*Stmt{{Kind: StmtBlock, Span: a.Span, Data: &BlockData{Target: a.ID, Body: body}}}
	}
	return body
}

// valueBody lowers stmts and, when t is valid, assigns the trailing
// expression to t.
func (l *lowerer) valueBody(stmts []*sema.Stmt, t tempRef) []*Stmt {
	last, rest := trailing(stmts)
	if !t.valid() || last == nil {
		return l.stmts(stmts)
	}
	out := l.stmts(rest)
	val, prefix := l.value(last.Data.(*sema.ExprStmtData).Expr)
	out = append(out, prefix...)
	return append(out, t.assign(val))
}

// trailing splits off a final expression statement that produces the value
// of its block. Diverging statements never produce one.
func trailing(stmts []*sema.Stmt) (*sema.Stmt, []*sema.Stmt) {
	if len(stmts) == 0 {
		return nil, stmts
	}
	last := stmts[len(stmts)-1]
	if last.Kind != sema.StmtExpr || last.Diverges {
		return nil, stmts
	}
	return last, stmts[:len(stmts)-1]
}
