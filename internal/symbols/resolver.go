package symbols

import (
	"fmt"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/source"
	"ash/internal/types"
)

// MaxArgs is the largest number of parameters or call arguments; the count
// travels as one byte in the bytecode.
const MaxArgs = 255

// PreludeEntry describes a native function visible to every program.
type PreludeEntry struct {
	Name string
	Type types.Ty
}

// ResolveOptions controls a resolve pass over one file.
type ResolveOptions struct {
	// Context receives the bindings; nil allocates a fresh one.
	Context  *Context
	IDs      *ast.IDAllocator
	Prelude  []PreludeEntry
	Reporter diag.Reporter
}

// Result captures the resolve artefacts for one file.
type Result struct {
	Context *Context
	Errors  int
}

func (r Result) OK() bool { return r.Errors == 0 }

type scopeKind uint8

const (
	scopeGlobal scopeKind = iota
	scopeBlock
	scopeFunction
	scopeLoop
	// scopeValue is a block or if-arm whose value is consumed.
	scopeValue
)

// varData is what a scope knows about a name.
type varData struct {
	id       ast.ID
	span     source.Span
	defined  bool
	mutable  bool
	function bool
	global   bool
	fnLevel  int
}

type scope struct {
	kind      scopeKind
	target    ast.ID
	names     map[string]*varData
	earlyExit bool
}

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	ctx      *Context
	ids      *ast.IDAllocator
	reporter diag.Reporter
	universe map[string]*varData
	stack    []*scope
	// initializing holds the declarations whose initializer is being resolved.
	initializing []ast.ID
	// owner is the top-level declaration whose initializer or body is being
	// resolved; references to globals become its dependencies.
	owner   ast.ID
	fnLevel int
	errors  int
}

// ResolveFile binds every reference in file and checks the scoping rules.
// Resolution continues after errors so one pass reports all of them.
func ResolveFile(file *ast.File, opts ResolveOptions) Result {
	ctx := opts.Context
	ids := opts.IDs
	if ids == nil {
		ids = ast.NewIDAllocator()
	}
	if ctx == nil {
		ctx = NewContext(ids.Count())
	}
	r := &Resolver{
		ctx:      ctx,
		ids:      ids,
		reporter: opts.Reporter,
		universe: make(map[string]*varData),
	}
	r.installPrelude(opts.Prelude)
	if file != nil {
		r.enter(scopeGlobal, ast.NoID)
		r.predeclare(file.Stmts)
		for _, s := range file.Stmts {
			r.topLevel(s)
		}
		r.leave()
	}
	return Result{Context: ctx, Errors: r.errors}
}

func (r *Resolver) installPrelude(entries []PreludeEntry) {
	for _, e := range entries {
		id := r.ids.Next()
		r.ctx.Declare(id, Record{
			Name:    e.Name,
			Ty:      e.Type,
			Flags:   FlagGlobal | FlagFunction | FlagBuiltin | FlagNoMangle,
			Mangled: e.Name,
		})
		r.universe[e.Name] = &varData{id: id, defined: true, function: true, global: true}
	}
}

func (r *Resolver) enter(kind scopeKind, target ast.ID) *scope {
	s := &scope{kind: kind, target: target, names: make(map[string]*varData)}
	r.stack = append(r.stack, s)
	return s
}

func (r *Resolver) leave() *scope {
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return top
}

func (r *Resolver) current() *scope {
	return r.stack[len(r.stack)-1]
}

// depth is 0 for globals.
func (r *Resolver) depth() int {
	return len(r.stack) - 1
}

// declare installs name in the current scope and records it in the context.
func (r *Resolver) declare(name string, id ast.ID, span source.Span, v varData, rec Record) *varData {
	cur := r.current()
	v.id = id
	v.span = span
	v.fnLevel = r.fnLevel
	v.global = r.depth() == 0
	rec.Name = name
	rec.Span = span
	rec.Depth = r.depth()
	if v.global {
		rec.Flags |= FlagGlobal
	}
	if v.mutable {
		rec.Flags |= FlagMutable
	}
	r.ctx.Declare(id, rec)
	if prev, ok := cur.names[name]; ok {
		diag.ReportError(r.reporter, diag.ResDuplicate, span, fmt.Sprintf("%q is already declared in this scope", name)).
			WithNote(prev.span, "previous declaration here").
			Emit()
		r.errors++
		return prev
	}
	entry := v
	cur.names[name] = &entry
	return &entry
}

// lookup searches the scope stack innermost first, then the prelude.
func (r *Resolver) lookup(name string) *varData {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if v, ok := r.stack[i].names[name]; ok {
			return v
		}
	}
	return r.universe[name]
}

func (r *Resolver) isInitializing(id ast.ID) bool {
	for _, x := range r.initializing {
		if x == id {
			return true
		}
	}
	return false
}

// reference resolves name at span and binds ref to the declaration. It
// returns nil when the name cannot be used here.
func (r *Resolver) reference(ref ast.ID, name string, span source.Span) *varData {
	v := r.lookup(name)
	if v == nil {
		r.errorf(diag.ResUndefined, span, "variable does not exist: %s", name)
		return nil
	}
	r.ctx.Bind(ref, v.id)
	if !v.defined && r.isInitializing(v.id) {
		r.errorf(diag.ResSelfReference, span, "use of variable in its own initializer: %s", name)
		return nil
	}
	if !v.global && !v.function && v.fnLevel < r.fnLevel {
		r.errorf(diag.ResCaptureLocal, span, "cannot capture local variable %s from an enclosing function", name)
		return nil
	}
	if v.global && r.owner.IsValid() {
		r.addDependency(r.owner, v.id, span)
	}
	return v
}

// findTarget returns the innermost loop (value false) or value scope
// (value true) inside the current function.
func (r *Resolver) findTarget(value bool) *scope {
	for i := len(r.stack) - 1; i >= 0; i-- {
		s := r.stack[i]
		switch s.kind {
		case scopeFunction, scopeGlobal:
			return nil
		case scopeLoop:
			if !value {
				return s
			}
		case scopeValue:
			if value {
				return s
			}
		}
	}
	return nil
}

func (r *Resolver) resolveType(t ast.TypeExpr) types.Ty {
	ty, ok := types.FromName(t.Name)
	if !ok {
		r.errorf(diag.ResUnknownType, t.Span, "unknown type %s", t.Name)
		return types.Invalid
	}
	return ty
}

func (r *Resolver) errorf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(r.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
	r.errors++
}
