package hir

import (
	"ash/internal/ast"
	"ash/internal/sema"
)

// order arranges top-level statements: functions first, then variable
// declarations with every global they read initialized before them, then
// everything else in source order.
//
// Variables are stably partitioned into those whose dependencies are already
// emitted and those that wait in a queue; the queue is rescanned until it
// drains. The resolver rejected initialization loops, so it always does.
func (l *lowerer) order(stmts []*sema.Stmt) []*sema.Stmt {
	var funcs, vars, rest []*sema.Stmt
	for _, s := range stmts {
		switch s.Kind {
		case sema.StmtFunction:
			funcs = append(funcs, s)
		case sema.StmtVarDecl:
			vars = append(vars, s)
		default:
			rest = append(rest, s)
		}
	}

	isVar := make(map[ast.ID]bool, len(vars))
	for _, s := range vars {
		isVar[s.Data.(*sema.VarDeclData).ID] = true
	}
	emitted := make(map[ast.ID]bool, len(vars))
	ready := func(s *sema.Stmt) bool {
		for _, dep := range l.varDeps(s.Data.(*sema.VarDeclData).ID) {
			if isVar[dep] && !emitted[dep] {
				return false
			}
		}
		return true
	}

	out := make([]*sema.Stmt, 0, len(stmts))
	out = append(out, funcs...)
	var queue []*sema.Stmt
	for _, s := range vars {
		if ready(s) {
			out = append(out, s)
			emitted[s.Data.(*sema.VarDeclData).ID] = true
			continue
		}
		queue = append(queue, s)
	}
	for progress := true; progress && len(queue) > 0; {
		progress = false
		waiting := queue[:0]
		for _, s := range queue {
			if ready(s) {
				out = append(out, s)
				emitted[s.Data.(*sema.VarDeclData).ID] = true
				progress = true
				continue
			}
			waiting = append(waiting, s)
		}
		queue = waiting
	}
	if len(queue) > 0 {
		l.fail("initialization order of %d globals cannot be satisfied", len(queue))
		out = append(out, queue...)
	}
	return append(out, rest...)
}

// varDeps returns the globals a top-level variable reads, looking through
// the functions its initializer calls.
func (l *lowerer) varDeps(id ast.ID) []ast.ID {
	var out []ast.ID
	seen := map[ast.ID]bool{id: true}
	var walk func(n ast.ID)
	walk = func(n ast.ID) {
		node := l.ctx.Node(n)
		if node == nil {
			return
		}
		for _, dep := range node.Deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if target := l.ctx.Node(dep); target != nil && target.Function {
				walk(dep)
				continue
			}
			out = append(out, dep)
		}
	}
	walk(id)
	return out
}
