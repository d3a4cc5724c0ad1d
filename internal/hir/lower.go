package hir

import (
	"errors"
	"fmt"

	"ash/internal/ast"
	"ash/internal/sema"
	"ash/internal/source"
	"ash/internal/symbols"
	"ash/internal/types"
)

// ErrInvariant reports a typed tree that violates what the resolver and the
// type checker guarantee.
var ErrInvariant = errors.New("hir: invariant violation")

// Options carry the per-compilation state shared with earlier stages.
type Options struct {
	Context *symbols.Context
	// IDs is the allocator the parser drew from; temporaries get fresh IDs
	// from it.
	IDs *ast.IDAllocator
}

type lowerer struct {
	ctx *symbols.Context
	ids *ast.IDAllocator
	// valueTargets are blocks and if-arms left by at least one break with a
	// value; breakTemps maps them to the temporary receiving the value.
	valueTargets map[ast.ID]bool
	breakTemps   map[ast.ID]tempRef
	err          error
}

// Lower rewrites a type-checked file into the lowered tree. It mangles every
// declared name, orders top-level declarations so each global is
// initialized after the globals it reads, and replaces value-producing
// blocks and ifs with temporaries assigned on every path.
func Lower(file *sema.File, opts Options) (*Module, error) {
	if file == nil {
		return &Module{}, nil
	}
	l := &lowerer{
		ctx:          opts.Context,
		ids:          opts.IDs,
		valueTargets: make(map[ast.ID]bool),
		breakTemps:   make(map[ast.ID]tempRef),
	}
	if l.ctx == nil || l.ids == nil {
		return nil, fmt.Errorf("%w: lowering needs the symbol context and the ID allocator", ErrInvariant)
	}
	l.prepare(file.Stmts)

	m := &Module{Path: file.Path}
	for _, s := range l.order(file.Stmts) {
		m.Stmts = append(m.Stmts, l.stmt(s)...)
	}
	if call := l.mainCall(file.Stmts); call != nil {
		m.Stmts = append(m.Stmts, call)
		m.CallsMain = true
	}
	l.ctx.DropNodes()
	if l.err != nil {
		return nil, l.err
	}
	return m, nil
}

func (l *lowerer) fail(format string, args ...any) {
	if l.err == nil {
		l.err = fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
	}
}

// prepare assigns the unique name of every declaration before any reference
// is lowered, and finds the targets of breaks with a value.
func (l *lowerer) prepare(stmts []*sema.Stmt) {
	sema.Walk(stmts, func(s *sema.Stmt) {
		switch d := s.Data.(type) {
		case *sema.FunctionData:
			l.mangle(d.ID, d.Name, d.NoMangle)
			for _, p := range d.Params {
				l.mangle(p.ID, p.Name, false)
			}
		case *sema.VarDeclData:
			l.mangle(d.ID, d.Name, false)
		case *sema.BreakData:
			if d.Value != nil {
				l.valueTargets[d.Target] = true
			}
		}
	}, nil)
}

// mangle gives a binding the name name$id unless it must keep its source
// name.
func (l *lowerer) mangle(id ast.ID, name string, keep bool) string {
	mangled := name
	if !keep {
		mangled = fmt.Sprintf("%s$%d", name, id)
	}
	l.ctx.SetMangled(id, mangled)
	return mangled
}

// tempRef names a temporary introduced by lowering.
type tempRef struct {
	id   ast.ID
	name string
	ty   types.Ty
}

func (t tempRef) valid() bool { return t.id.IsValid() }

func (t tempRef) read(span source.Span) *Expr {
	return &Expr{Kind: ExprVariable, Ty: t.ty, Span: span, Data: &VariableData{ID: t.id, Name: t.name}}
}

func (t tempRef) assign(val *Expr) *Stmt {
	return &Stmt{Kind: StmtAssign, Span: val.Span, Data: &AssignData{ID: t.id, Name: t.name, Value: val}}
}

// temp declares a fresh mutable temporary holding the default value of ty.
func (l *lowerer) temp(ty types.Ty, span source.Span) (*Stmt, tempRef) {
	zero, ok := types.Zero(ty)
	if !ok {
		l.fail("no default value for temporary of type %s", ty)
	}
	lit := &Expr{Kind: ExprLiteral, Ty: ty, Span: span, Data: &LiteralData{Value: zero}}
	return l.declareTemp(ty, lit, span)
}

func (l *lowerer) declareTemp(ty types.Ty, init *Expr, span source.Span) (*Stmt, tempRef) {
	t := tempRef{id: l.ids.Next(), ty: ty}
	t.name = fmt.Sprintf("tmp$%d", t.id)
	l.ctx.Declare(t.id, symbols.Record{Name: "tmp", Ty: ty, Flags: symbols.FlagMutable, Mangled: t.name, Span: span})
	return &Stmt{
		Kind: StmtVarDecl,
		Span: span,
		Data: &VarDeclData{ID: t.id, Name: t.name, Ty: ty, Mutable: true, Temp: true, Value: init},
	}, t
}

// mainCall builds the final call of a parameterless top-level main.
func (l *lowerer) mainCall(stmts []*sema.Stmt) *Stmt {
	for _, s := range stmts {
		d, ok := s.Data.(*sema.FunctionData)
		if !ok || d.Name != "main" || d.Builtin || len(d.Params) != 0 {
			continue
		}
		call := &Expr{Kind: ExprCall, Ty: d.Result, Span: s.Span, Data: &CallData{ID: d.ID, Name: l.ctx.NameOf(d.ID)}}
		return &Stmt{Kind: StmtExpr, Span: s.Span, Data: &ExprStmtData{Expr: call}}
	}
	return nil
}
