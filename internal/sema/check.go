// Package sema type-checks a resolved syntax tree and produces the typed tree
// consumed by the desugarer.
package sema

import (
	"fmt"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/source"
	"ash/internal/symbols"
	"ash/internal/types"
)

// Options configure a semantic pass over a file.
type Options struct {
	Reporter diag.Reporter
	Context  *symbols.Context
}

// Result stores the typed tree and the number of type errors reported.
type Result struct {
	File   *File
	Errors int
}

func (r Result) OK() bool { return r.Errors == 0 }

type checkState uint8

const (
	stateUnchecked checkState = iota
	stateChecking
	stateDone
)

// global is a top-level variable declaration; globals are checked on demand
// so a forward reference sees the type of the initializer it refers to.
type global struct {
	stmt  *ast.Stmt
	state checkState
	typed *Stmt
}

// breakInfo collects the type of the first break into a value target.
type breakInfo struct {
	ty  types.Ty
	set bool
}

type fnFrame struct {
	result types.Ty
}

type typeChecker struct {
	ctx      *symbols.Context
	reporter diag.Reporter
	errors   int
	globals  map[ast.ID]*global
	targets  map[ast.ID]*breakInfo
	fns      []fnFrame
}

// Check computes the type of every expression and statement of a resolved
// file. All type errors are reported; the typed tree must not be lowered
// when Errors is non-zero.
func Check(file *ast.File, opts Options) Result {
	tc := &typeChecker{
		ctx:      opts.Context,
		reporter: opts.Reporter,
		globals:  make(map[ast.ID]*global),
		targets:  make(map[ast.ID]*breakInfo),
	}
	if tc.ctx == nil {
		tc.ctx = symbols.NewContext(0)
	}
	out := &File{}
	if file == nil {
		return Result{File: out}
	}
	out.Path = file.Path
	for _, s := range file.Stmts {
		if d, ok := s.Data.(*ast.VarDeclData); ok {
			tc.globals[d.ID] = &global{stmt: s}
		}
	}
	for _, s := range file.Stmts {
		if d, ok := s.Data.(*ast.VarDeclData); ok {
			out.Stmts = append(out.Stmts, tc.checkGlobal(d.ID))
			continue
		}
		out.Stmts = append(out.Stmts, tc.stmt(s))
	}
	return Result{File: out, Errors: tc.errors}
}

func (tc *typeChecker) checkGlobal(id ast.ID) *Stmt {
	g := tc.globals[id]
	switch g.state {
	case stateDone:
		return g.typed
	case stateChecking:
		return nil
	}
	g.state = stateChecking
	// Globals are checked outside of any function.
	saved := tc.fns
	tc.fns = nil
	g.typed = tc.stmt(g.stmt)
	tc.fns = saved
	g.state = stateDone
	return g.typed
}

// typeOf returns the type of the declaration a reference points at, checking
// a global initializer first when its type is still unknown.
func (tc *typeChecker) typeOf(ref ast.ID) types.Ty {
	if ty, ok := tc.ctx.TypeOf(ref); ok {
		return ty
	}
	decl := tc.ctx.Target(ref)
	if _, ok := tc.globals[decl]; ok {
		tc.checkGlobal(decl)
		if ty, ok := tc.ctx.TypeOf(ref); ok {
			return ty
		}
	}
	return types.Invalid
}

func (tc *typeChecker) errorf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
	tc.errors++
}

// mismatch reports unless either side is already invalid.
func (tc *typeChecker) mismatch(code diag.Code, span source.Span, want, got types.Ty, format string) bool {
	if !want.IsValid() || !got.IsValid() || want.Equal(got) {
		return false
	}
	tc.errorf(code, span, format, want, got)
	return true
}
