package sema_test

import (
	"fmt"
	"strings"
	"testing"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/parser"
	"ash/internal/sema"
	"ash/internal/source"
	"ash/internal/symbols"
	"ash/internal/types"
)

func check(t *testing.T, src string) (sema.Result, *diag.Bag) {
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
			{Name: "i32_to_string", Type: types.Function([]types.Ty{types.I32}, types.String)},
		},
	})
	if !res.OK() {
		t.Fatalf("resolve errors: %s", summary(bag))
	}
	return sema.Check(file, sema.Options{Reporter: rep, Context: res.Context}), bag
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

func mustCheck(t *testing.T, src string) *sema.File {
	t.Helper()
	res, bag := check(t, src)
	if !res.OK() {
		t.Fatalf("unexpected type errors: %s", summary(bag))
	}
	return res.File
}

func varType(t *testing.T, file *sema.File, name string) types.Ty {
	t.Helper()
	for _, s := range file.Stmts {
		if d, ok := s.Data.(*sema.VarDeclData); ok && d.Name == name {
			return d.Ty
		}
	}
	t.Fatalf("no variable %s", name)
	return types.Invalid
}

func TestInferredTypes(t *testing.T) {
	file := mustCheck(t, `
fun add(a: I32, b: I32): I32 = a + b
fun pick(c: Bool): String { if c { "yes" } else { "no" } }
val sum = add(1, 2)
val word = pick(sum == 3)
val ratio = 1.0 + 2.0 * 3.0
val nested = { val t = 3; t * 2 }
val broken = { if sum > 1 { break "big" }; "small" }
val cmp = "a" < "b" && !false
val text = i32_to_string(sum)
`)
	want := map[string]types.Ty{
		"sum":    types.I32,
		"word":   types.String,
		"ratio":  types.F64,
		"nested": types.I32,
		"broken": types.String,
		"cmp":    types.Bool,
		"text":   types.String,
	}
	for name, ty := range want {
		if got := varType(t, file, name); !got.Equal(ty) {
			t.Errorf("%s: got %s, want %s", name, got, ty)
		}
	}
}

func TestForwardGlobalGetsType(t *testing.T) {
	file := mustCheck(t, "val a = b * 2.0\nval b = 1.5")
	if got := varType(t, file, "a"); !got.Equal(types.F64) {
		t.Fatalf("a: got %s", got)
	}
}

func TestFunctionReferencePromotedToCall(t *testing.T) {
	file := mustCheck(t, "fun one(): I32 = 1\nval x = one + 1")
	decl := file.Stmts[1].Data.(*sema.VarDeclData)
	bin := decl.Value.Data.(*sema.BinaryData)
	call, ok := bin.Left.Data.(*sema.CallData)
	if !ok || len(call.Args) != 0 || bin.Left.Kind != sema.ExprCall {
		t.Fatalf("bare function reference must become a zero-argument call, got %s", bin.Left.Kind)
	}
	if !bin.Left.Ty.Equal(types.I32) {
		t.Fatalf("promoted call has type %s", bin.Left.Ty)
	}
}

func TestDivergingArmContributesNoCandidate(t *testing.T) {
	file := mustCheck(t, "fun f(c: Bool): I32 { val x = if c { return 0 } else { 5 }; x }")
	fn := file.Stmts[0].Data.(*sema.FunctionData)
	decl := fn.Body.Data.(*sema.BlockData).Stmts[0].Data.(*sema.VarDeclData)
	if !decl.Ty.Equal(types.I32) {
		t.Fatalf("x: got %s", decl.Ty)
	}
	ifData := decl.Value.Data.(*sema.IfData)
	if !ifData.Valued || !ifData.HasElse() || len(ifData.Arms) != 2 {
		t.Fatalf("unexpected if shape %+v", ifData)
	}
}

func TestTypeNeverLeavesDeferred(t *testing.T) {
	file := mustCheck(t, "val x = if true { 1 } else if false { 2 } else { 3 }")
	if ty := varType(t, file, "x"); types.ContainsDeferred(ty) || !ty.Equal(types.I32) {
		t.Fatalf("if type must collapse to I32, got %s", ty)
	}
}

func TestStatementIfIsNotUnified(t *testing.T) {
	mustCheck(t, `fun f(c: Bool) { if c { 1 } else { "one" } }`)
}

func TestTypeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"branch mismatch", `val x = if true { 1 } else { "one" }`, diag.TypBranchMismatch},
		{"operand mismatch", "val x = 1 + 2.0", diag.TypMismatch},
		{"operator family", "val x = true + false", diag.TypBinaryOperand},
		{"logical on numbers", "val x = 1 && 2", diag.TypBinaryOperand},
		{"negate bool", "val x = -true", diag.TypUnaryOperand},
		{"not number", "val x = !1", diag.TypUnaryOperand},
		{"arity", "fun f(a: I32): I32 = a\nval x = f(1, 2)", diag.TypArgCount},
		{"argument", "fun f(a: I32): I32 = a\nval x = f(\"s\")", diag.TypArgMismatch},
		{"not callable", "val a = 1\nval x = a(2)", diag.TypNotCallable},
		{"condition", "while 1 { break }", diag.TypConditionNotBool},
		{"if condition", `val x = if "s" { 1 } else { 2 }`, diag.TypConditionNotBool},
		{"body result", `fun f(): I32 { "s" }`, diag.TypReturnMismatch},
		{"return value", `fun f(): I32 { return "s" }`, diag.TypReturnMismatch},
		{"bare return", "fun f(): I32 { return }", diag.TypReturnMismatch},
		{"return in void", "fun f() { return 1 }", diag.TypReturnMismatch},
		{"void variable", `val x = println("hi")`, diag.TypVoidVariable},
		{"assign", "var x = 1\nx = 2.0", diag.TypAssignMismatch},
		{"annotation", `val x: String = 1`, diag.TypAnnotationMismatch},
		{"break value", `val x = { if true { break 1 }; "s" }`, diag.TypBreakMismatch},
		{"void operand", `val x = println("a") == println("b")`, diag.TypVoidOperand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, bag := check(t, tc.src)
			if res.OK() {
				t.Fatalf("expected %s, check succeeded", tc.code.ID())
			}
			for _, d := range bag.Items() {
				if d.Code == tc.code {
					return
				}
			}
			t.Fatalf("expected %s, got %s", tc.code.ID(), summary(bag))
		})
	}
}

func TestErrorsDoNotCascade(t *testing.T) {
	res, bag := check(t, "val a = 1 + \"s\"\nval b = a * 2\nval c = b + 1")
	if res.Errors != 1 {
		t.Fatalf("expected exactly one error, got %s", summary(bag))
	}
}
