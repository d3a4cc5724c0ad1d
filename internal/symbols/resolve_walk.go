package symbols

import (
	"fmt"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/source"
	"ash/internal/types"
)

// predeclare makes every top-level function and variable visible before any
// initializer or body is resolved. Functions are defined immediately;
// variables stay undefined until their initializer has been resolved.
func (r *Resolver) predeclare(stmts []*ast.Stmt) {
	for _, s := range stmts {
		switch d := s.Data.(type) {
		case *ast.FunctionData:
			r.declareFunction(d)
			r.ctx.addNode(&VarNode{ID: d.ID, Name: d.Name, Span: d.NameSpan, Function: true})
		case *ast.VarDeclData:
			rec := Record{}
			if d.Type != nil {
				rec.Ty = r.resolveType(*d.Type)
			}
			r.declare(d.Name, d.ID, d.NameSpan, varData{mutable: d.Mutable}, rec)
			r.ctx.addNode(&VarNode{ID: d.ID, Name: d.Name, Span: d.NameSpan, Init: d.Value})
		}
	}
}

// declareFunction checks the annotations and declares the function name in
// the current scope together with its signature.
func (r *Resolver) declareFunction(d *ast.FunctionData) {
	var flags Flags = FlagFunction
	for _, a := range d.Annotations {
		switch a.Name {
		case "builtin":
			flags |= FlagBuiltin | FlagNoMangle
		case "nomangle":
			flags |= FlagNoMangle
		default:
			r.errorf(diag.ResUnknownAnnotation, a.Span, "unknown annotation @[%s]", a.Name)
		}
	}
	if d.Name == "main" && r.depth() == 0 {
		flags |= FlagNoMangle
	}
	switch {
	case flags&FlagBuiltin != 0 && d.Body != nil:
		r.errorf(diag.ResBuiltinHasBody, d.NameSpan, "@[builtin] function %s must not have a body", d.Name)
	case flags&FlagBuiltin != 0 && r.depth() != 0:
		r.errorf(diag.ResBuiltinNotTopLevel, d.NameSpan, "@[builtin] function %s must be declared at top level", d.Name)
	case flags&FlagBuiltin == 0 && d.Body == nil:
		r.errorf(diag.ResPrototypeNoBuiltin, d.NameSpan, "function %s has no body; prototypes need @[builtin]", d.Name)
	}
	if len(d.Params) > MaxArgs {
		r.errorf(diag.ResTooManyArguments, d.NameSpan, "too many arguments: %s has %d parameters, at most %d allowed", d.Name, len(d.Params), MaxArgs)
	}
	params := make([]types.Ty, len(d.Params))
	for i, p := range d.Params {
		params[i] = r.resolveType(p.Type)
	}
	result := types.Void
	if d.Result != nil {
		result = r.resolveType(*d.Result)
	}
	rec := Record{Ty: types.Function(params, result), Flags: flags}
	if flags&FlagNoMangle != 0 {
		rec.Mangled = d.Name
	}
	r.declare(d.Name, d.ID, d.NameSpan, varData{defined: true, function: true}, rec)
}

func (r *Resolver) topLevel(s *ast.Stmt) {
	switch d := s.Data.(type) {
	case *ast.FunctionData:
		r.owner = d.ID
		r.functionBody(d)
		r.owner = ast.NoID
	case *ast.VarDeclData:
		r.owner = d.ID
		r.initializer(d.ID, d.Value)
		r.owner = ast.NoID
		if v := r.current().names[d.Name]; v != nil && v.id == d.ID {
			v.defined = true
		}
	default:
		r.stmt(s)
	}
}

func (r *Resolver) initializer(id ast.ID, value *ast.Expr) {
	r.initializing = append(r.initializing, id)
	r.expr(value, true)
	r.initializing = r.initializing[:len(r.initializing)-1]
}

// functionBody resolves parameters and body in a fresh function scope.
func (r *Resolver) functionBody(d *ast.FunctionData) {
	if d.Body == nil {
		return
	}
	fnTy, _ := r.ctx.TypeOf(d.ID)
	r.fnLevel++
	r.enter(scopeFunction, d.ID)
	for i, p := range d.Params {
		rec := Record{Flags: FlagParam}
		if i < len(fnTy.Params) {
			rec.Ty = fnTy.Params[i]
		}
		r.declare(p.Name, p.ID, p.Span, varData{defined: true}, rec)
	}
	valued := !fnTy.Ret().IsVoid() && fnTy.Ret().IsValid()
	if block, ok := d.Body.Data.(*ast.BlockData); ok {
		r.block(d.Body, block, valued)
	} else {
		r.expr(d.Body, valued)
	}
	r.leave()
	r.fnLevel--
}

func (r *Resolver) stmts(list []*ast.Stmt, valued bool) {
	for i, s := range list {
		if valued && i == len(list)-1 {
			if es, ok := s.Data.(*ast.ExprStmtData); ok {
				r.expr(es.Expr, true)
				r.current().earlyExit = true
				continue
			}
		}
		r.stmt(s)
	}
}

func (r *Resolver) stmt(s *ast.Stmt) {
	switch d := s.Data.(type) {
	case *ast.FunctionData:
		// Nested functions are visible from their declaration on and may
		// call themselves.
		r.declareFunction(d)
		r.functionBody(d)
	case *ast.VarDeclData:
		rec := Record{}
		if d.Type != nil {
			rec.Ty = r.resolveType(*d.Type)
		}
		v := r.declare(d.Name, d.ID, d.NameSpan, varData{mutable: d.Mutable}, rec)
		r.initializer(d.ID, d.Value)
		if v.id == d.ID {
			v.defined = true
		}
	case *ast.AssignData:
		r.expr(d.Value, true)
		v := r.reference(d.ID, d.Name, d.NameSpan)
		if v != nil && !v.mutable {
			r.errorf(diag.ResAssignImmutable, d.NameSpan, "cannot assign to immutable variable %s", d.Name)
		}
	case *ast.ReturnData:
		if r.fnLevel == 0 {
			r.errorf(diag.ResReturnOutsideFn, s.Span, "return outside of a function")
		}
		if d.Value != nil {
			r.expr(d.Value, true)
		}
		if t := r.findTarget(true); t != nil {
			t.earlyExit = true
		}
	case *ast.ExprStmtData:
		r.expr(d.Expr, false)
	case *ast.WhileData:
		r.expr(d.Cond, true)
		r.ctx.Declare(d.ID, Record{Flags: FlagTarget, Depth: r.depth(), Span: s.Span})
		r.enter(scopeLoop, d.ID)
		r.stmts(d.Body, false)
		r.leave()
	case *ast.BreakData:
		if d.Value != nil {
			r.expr(d.Value, true)
		}
		target := r.findTarget(d.Value != nil)
		if target == nil {
			if d.Value != nil {
				r.errorf(diag.ResBreakOutsideTarget, s.Span, "break with a value outside of a block or if expression")
			} else {
				r.errorf(diag.ResBreakOutsideTarget, s.Span, "break outside of a loop")
			}
			return
		}
		r.ctx.Bind(d.ID, target.target)
		if d.Value != nil {
			target.earlyExit = true
		}
	default:
		panic(fmt.Sprintf("symbols: unexpected statement %T", s.Data))
	}
}

// expr resolves e. valued reports whether the value of e is consumed, which
// decides whether blocks and ifs must be exhaustive.
func (r *Resolver) expr(e *ast.Expr, valued bool) {
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case *ast.LiteralData:
	case *ast.VariableData:
		r.reference(d.ID, d.Name, e.Span)
	case *ast.CallData:
		r.expr(d.Callee, true)
		for _, a := range d.Args {
			r.expr(a, true)
		}
		if len(d.Args) > MaxArgs {
			r.errorf(diag.ResTooManyArguments, e.Span, "too many arguments: %d given, at most %d allowed", len(d.Args), MaxArgs)
		}
	case *ast.BlockData:
		r.block(e, d, valued)
	case *ast.GroupData:
		r.expr(d.Inner, valued)
	case *ast.UnaryData:
		r.expr(d.Operand, true)
	case *ast.BinaryData:
		r.expr(d.Left, true)
		r.expr(d.Right, true)
	case *ast.IfData:
		r.ifExpr(e, d, valued)
	default:
		panic(fmt.Sprintf("symbols: unexpected expression %T", e.Data))
	}
}

func (r *Resolver) block(e *ast.Expr, d *ast.BlockData, valued bool) {
	kind := scopeBlock
	flags := Flags(0)
	if valued {
		kind = scopeValue
		flags = FlagTarget
	}
	r.ctx.Declare(d.ID, Record{Flags: flags, Depth: r.depth(), Span: e.Span})
	r.enter(kind, d.ID)
	r.stmts(d.Stmts, valued)
	s := r.leave()
	if valued && !s.earlyExit {
		r.errorf(diag.ResBlockNotExhaustive, e.Span, "block expression not exhaustive")
	}
}

func (r *Resolver) ifExpr(e *ast.Expr, d *ast.IfData, valued bool) {
	exhaustive := d.Else != nil
	kind := scopeBlock
	flags := Flags(0)
	if valued {
		kind = scopeValue
		flags = FlagTarget
	}
	arm := func(id ast.ID, body []*ast.Stmt, span source.Span) {
		r.ctx.Declare(id, Record{Flags: flags, Depth: r.depth(), Span: span})
		r.enter(kind, id)
		r.stmts(body, valued)
		if s := r.leave(); !s.earlyExit {
			exhaustive = false
		}
	}
	for i := range d.Arms {
		r.expr(d.Arms[i].Cond, true)
		arm(d.Arms[i].ID, d.Arms[i].Body, d.Arms[i].Span)
	}
	if d.Else != nil {
		arm(d.Else.ID, d.Else.Body, d.Else.Span)
	}
	if valued && !exhaustive {
		r.errorf(diag.ResIfNotExhaustive, e.Span, "if expression not exhaustive")
	}
}
