package symbols_test

import (
	"fmt"
	"strings"
	"testing"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/parser"
	"ash/internal/source"
	"ash/internal/symbols"
	"ash/internal/types"
)

func resolveSource(t *testing.T, src string) (*ast.File, symbols.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.ash", []byte(src)))
	ids := ast.NewIDAllocator()
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	file := parser.ParseFile(f, parser.Options{Reporter: rep, IDs: ids})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", summary(bag))
	}
	res := symbols.ResolveFile(file, symbols.ResolveOptions{
		IDs:      ids,
		Reporter: rep,
		Prelude: []symbols.PreludeEntry{
			{Name: "println", Type: types.Function([]types.Ty{types.String}, types.Void)},
		},
	})
	return file, res, bag
}

func summary(bag *diag.Bag) string {
	if bag.Len() == 0 {
		return "<none>"
	}
	parts := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		parts = append(parts, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return strings.Join(parts, "; ")
}

func mustResolve(t *testing.T, src string) (*ast.File, *symbols.Context) {
	t.Helper()
	file, res, bag := resolveSource(t, src)
	if !res.OK() || bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", summary(bag))
	}
	return file, res.Context
}

func expectCode(t *testing.T, src string, code diag.Code) *diag.Bag {
	t.Helper()
	_, res, bag := resolveSource(t, src)
	if res.OK() {
		t.Fatalf("expected %s, resolve succeeded", code.ID())
	}
	for _, d := range bag.Items() {
		if d.Code == code {
			return bag
		}
	}
	t.Fatalf("expected %s, got %s", code.ID(), summary(bag))
	return nil
}

func variables(file *ast.File) []*ast.VariableData {
	var out []*ast.VariableData
	ast.Walk(file.Stmts, nil, func(e *ast.Expr) {
		if v, ok := e.Data.(*ast.VariableData); ok {
			out = append(out, v)
		}
	})
	return out
}

func TestAssignmentBindsToDeclaration(t *testing.T) {
	file, ctx := mustResolve(t, "var x = 1; x = x + 1;")
	decl := file.Stmts[0].Data.(*ast.VarDeclData)
	assign := file.Stmts[1].Data.(*ast.AssignData)
	refs := variables(file)
	if len(refs) != 1 {
		t.Fatalf("expected 1 variable reference, got %d", len(refs))
	}
	if got := ctx.Target(assign.ID); got != decl.ID {
		t.Fatalf("assignment bound to %d, want %d", got, decl.ID)
	}
	if got := ctx.Target(refs[0].ID); got != decl.ID {
		t.Fatalf("reference bound to %d, want %d", got, decl.ID)
	}
	rec := ctx.Get(decl.ID)
	if !rec.Has(symbols.FlagMutable | symbols.FlagGlobal) {
		t.Fatalf("declaration flags %v", rec.Flags.Strings())
	}
}

func TestForwardGlobalReference(t *testing.T) {
	file, ctx := mustResolve(t, "val a = b; val b = 1")
	a := ctx.Node(file.Stmts[0].Data.(*ast.VarDeclData).ID)
	b := file.Stmts[1].Data.(*ast.VarDeclData).ID
	if len(a.Deps) != 1 || a.Deps[0] != b {
		t.Fatalf("a must depend on b, got %v", a.Deps)
	}
}

func TestInitializationLoop(t *testing.T) {
	bag := expectCode(t, "val a = b; val b = a", diag.ResInitCycle)
	var cycle diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code == diag.ResInitCycle {
			cycle = d
		}
	}
	if cycle.Message != "initialization loop: b → a → b" {
		t.Fatalf("unexpected message %q", cycle.Message)
	}
	if len(cycle.Notes) != 2 {
		t.Fatalf("expected one note per member, got %d", len(cycle.Notes))
	}
	if bag.ErrorCount() != 1 {
		t.Fatalf("cycle must be reported once, got %s", summary(bag))
	}
}

func TestInitializationLoopThroughFunction(t *testing.T) {
	expectCode(t, "fun f(): I32 = a\nval a = f()", diag.ResInitCycle)
}

func TestRecursionIsNotALoop(t *testing.T) {
	mustResolve(t, `
fun even(n: I32): Bool = if n == 0 { true } else { odd(n - 1) }
fun odd(n: I32): Bool = if n == 0 { false } else { even(n - 1) }
val e = even(10)
`)
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"self reference", "val x = x + 1", diag.ResSelfReference},
		{"local self reference", "fun f(): I32 { val y = { y }; y }", diag.ResSelfReference},
		{"undefined", "val x = missing", diag.ResUndefined},
		{"block not exhaustive", "val x = { val y = 1 }", diag.ResBlockNotExhaustive},
		{"empty block", "val x = {}", diag.ResBlockNotExhaustive},
		{"if without else", "val x = if true { 1 }", diag.ResIfNotExhaustive},
		{"if arm not exhaustive", "val x = if true { 1 } else { val z = 2 }", diag.ResIfNotExhaustive},
		{"assign immutable", "val x = 1; x = 2", diag.ResAssignImmutable},
		{"return outside", "return 1", diag.ResReturnOutsideFn},
		{"break outside loop", "break", diag.ResBreakOutsideTarget},
		{"break value outside block", "while true { break 1 }", diag.ResBreakOutsideTarget},
		{"duplicate", "fun f() { val a = 1; val a = 2 }", diag.ResDuplicate},
		{"capture", "fun outer(p: I32): I32 { fun inner(): I32 = p; inner() }", diag.ResCaptureLocal},
		{"unknown annotation", "@[inline] fun f() {}", diag.ResUnknownAnnotation},
		{"prototype without builtin", "fun f(a: I32)", diag.ResPrototypeNoBuiltin},
		{"builtin with body", "@[builtin] fun f() {}", diag.ResBuiltinHasBody},
		{"unknown type", "val x: Int = 1", diag.ResUnknownType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectCode(t, tc.src, tc.code)
		})
	}
}

func TestTooManyArguments(t *testing.T) {
	args := make([]string, symbols.MaxArgs+1)
	for i := range args {
		args[i] = "1"
	}
	expectCode(t, "fun f() {}\nf("+strings.Join(args, ", ")+")", diag.ResTooManyArguments)
}

func TestShadowingAcrossScopes(t *testing.T) {
	file, ctx := mustResolve(t, "val x = 1\nfun f(): I32 { val x = 2; x }")
	fn := file.Stmts[1].Data.(*ast.FunctionData)
	inner := fn.Body.Data.(*ast.BlockData).Stmts[0].Data.(*ast.VarDeclData)
	refs := variables(file)
	if got := ctx.Target(refs[len(refs)-1].ID); got != inner.ID {
		t.Fatalf("reference must bind to the innermost declaration")
	}
	if rec := ctx.Get(inner.ID); rec.Depth == 0 || rec.Has(symbols.FlagGlobal) {
		t.Fatalf("local recorded as global: %+v", rec)
	}
}

func TestBreakTargets(t *testing.T) {
	file, ctx := mustResolve(t, "val w = { if w2 { break 10 }; 20 }\nval w2 = true\nwhile true { break }")
	block := file.Stmts[0].Data.(*ast.VarDeclData).Value.Data.(*ast.BlockData)
	loop := file.Stmts[2].Data.(*ast.WhileData)
	var breaks []*ast.BreakData
	ast.Walk(file.Stmts, func(s *ast.Stmt) {
		if b, ok := s.Data.(*ast.BreakData); ok {
			breaks = append(breaks, b)
		}
	}, nil)
	if len(breaks) != 2 {
		t.Fatalf("expected 2 breaks, got %d", len(breaks))
	}
	if ctx.Target(breaks[0].ID) != block.ID {
		t.Fatalf("break value must target the value block")
	}
	if ctx.Target(breaks[1].ID) != loop.ID {
		t.Fatalf("bare break must target the loop")
	}
	if !ctx.Get(block.ID).Has(symbols.FlagTarget) {
		t.Fatalf("value block must be marked as a target")
	}
}

func TestTypeOfFollowsChain(t *testing.T) {
	file, ctx := mustResolve(t, "fun add(a: I32, b: I32): I32 = a + b\nval r = add(1, 2)")
	fn := file.Stmts[0].Data.(*ast.FunctionData)
	refs := variables(file)
	callee := refs[len(refs)-1]
	ty, ok := ctx.TypeOf(callee.ID)
	if !ok || !ty.Equal(types.Function([]types.Ty{types.I32, types.I32}, types.I32)) {
		t.Fatalf("unexpected callee type %s", ty)
	}
	if ctx.Target(callee.ID) != fn.ID {
		t.Fatalf("callee bound to wrong declaration")
	}
	if ty, ok := ctx.TypeOf(fn.Params[0].ID); !ok || !ty.Equal(types.I32) {
		t.Fatalf("parameter type %s", ty)
	}
}

func TestPreludeAndMainAreNotMangled(t *testing.T) {
	file, ctx := mustResolve(t, "fun main() { println(\"hi\") }")
	main := ctx.Get(file.Stmts[0].Data.(*ast.FunctionData).ID)
	if !main.Has(symbols.FlagNoMangle) || main.Mangled != "main" {
		t.Fatalf("main must keep its name: %+v", main)
	}
	refs := variables(file)
	native := ctx.Decl(refs[0].ID)
	if native == nil || !native.Has(symbols.FlagBuiltin) || ctx.NameOf(refs[0].ID) != "println" {
		t.Fatalf("println must resolve to the prelude")
	}
}

func TestTypeOfCycleGuard(t *testing.T) {
	ctx := symbols.NewContext(4)
	ctx.Declare(1, symbols.Record{Name: "a"})
	ctx.Bind(1, 2)
	ctx.Bind(2, 1)
	if _, ok := ctx.TypeOf(1); ok {
		t.Fatalf("cyclic chain must not produce a type")
	}
	ctx.Bind(3, 3)
	if got := ctx.Target(3); got != 3 {
		t.Fatalf("self-pointing record must end the walk, got %d", got)
	}
}
