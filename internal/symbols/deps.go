package symbols

import (
	"fmt"
	"strings"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/source"
)

// addDependency records that the top-level declaration from refers to the
// top-level declaration to. Before the edge is accepted the existing graph is
// searched for a path back from to to from; a path that passes through a
// variable is an initialization loop and is reported at site. A loop made of
// functions alone is recursion and is allowed.
func (r *Resolver) addDependency(from, to ast.ID, site source.Span) {
	if from == to {
		return
	}
	node := r.ctx.Node(from)
	if node == nil || r.ctx.Node(to) == nil || node.dependsOn(to) {
		return
	}
	if path := r.findPath(to, from); path != nil {
		cycle := append([]ast.ID{from}, path...)
		if r.cycleHasVariable(cycle) {
			r.reportCycle(cycle, site)
			return
		}
	}
	node.Deps = append(node.Deps, to)
}

// findPath returns the nodes on a dependency path start -> ... -> goal, or nil.
func (r *Resolver) findPath(start, goal ast.ID) []ast.ID {
	visited := make(map[ast.ID]bool)
	var walk func(id ast.ID) []ast.ID
	walk = func(id ast.ID) []ast.ID {
		if id == goal {
			return []ast.ID{id}
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		node := r.ctx.Node(id)
		if node == nil {
			return nil
		}
		for _, dep := range node.Deps {
			if rest := walk(dep); rest != nil {
				return append([]ast.ID{id}, rest...)
			}
		}
		return nil
	}
	return walk(start)
}

func (r *Resolver) cycleHasVariable(cycle []ast.ID) bool {
	for _, id := range cycle {
		if n := r.ctx.Node(id); n != nil && !n.Function {
			return true
		}
	}
	return false
}

// reportCycle emits "initialization loop: a → b → a". cycle starts and ends
// with the same declaration; every member gets one note.
func (r *Resolver) reportCycle(cycle []ast.ID, site source.Span) {
	names := make([]string, len(cycle))
	for i, id := range cycle {
		names[i] = r.ctx.Node(id).Name
	}
	b := diag.ReportError(r.reporter, diag.ResInitCycle, site,
		"initialization loop: "+strings.Join(names, " → "))
	for i := 0; i+1 < len(cycle); i++ {
		n := r.ctx.Node(cycle[i])
		b.WithNote(n.Span, fmt.Sprintf("%s refers to %s", n.Name, names[i+1]))
	}
	b.Emit()
	r.errors++
}
