package hir_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"ash/internal/ast"
	"ash/internal/diag"
	"ash/internal/hir"
	"ash/internal/parser"
	"ash/internal/sema"
	"ash/internal/source"
	"ash/internal/symbols"
	"ash/internal/testkit"
	"ash/internal/types"
)

func lower(t *testing.T, src string) *hir.Module {
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
	checked := sema.Check(file, sema.Options{Reporter: rep, Context: res.Context})
	if !checked.OK() {
		t.Fatalf("type errors: %s", summary(bag))
	}
	m, err := hir.Lower(checked.File, hir.Options{Context: res.Context, IDs: ids})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := testkit.CheckLowered(m); err != nil {
		t.Fatalf("malformed lowered tree: %v\n%s", err, m)
	}
	return m
}

func summary(bag *diag.Bag) string {
	parts := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		parts = append(parts, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return strings.Join(parts, "; ")
}

func declName(s *hir.Stmt) string {
	if d, ok := s.Data.(*hir.VarDeclData); ok {
		return d.Name
	}
	return ""
}

func temps(stmts []*hir.Stmt) []*hir.VarDeclData {
	var out []*hir.VarDeclData
	for _, s := range stmts {
		if d, ok := s.Data.(*hir.VarDeclData); ok && d.Temp {
			out = append(out, d)
		}
	}
	return out
}

func TestValueIfAssignsOneTemporaryPerArm(t *testing.T) {
	m := lower(t, "val c = true\nval x = if c { 1 } else if !c { 2 } else { 3 }")
	if len(m.Stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d:\n%s", len(m.Stmts), m)
	}
	tmp := temps(m.Stmts)
	if len(tmp) != 1 {
		t.Fatalf("expected one temporary, got %d", len(tmp))
	}
	if !tmp[0].Mutable || tmp[0].Value.Data.(*hir.LiteralData).Value.Int != 0 {
		t.Fatalf("temporary must be mutable and zero-initialized")
	}
	ifData, ok := m.Stmts[2].Data.(*hir.IfData)
	if !ok {
		t.Fatalf("expected an if statement, got %T", m.Stmts[2].Data)
	}
	if len(ifData.Arms) != 2 || len(ifData.Else) != 1 {
		t.Fatalf("expected 2 arms and an else, got %d arms and %d else statements", len(ifData.Arms), len(ifData.Else))
	}
	bodies := [][]*hir.Stmt{ifData.Arms[0].Body, ifData.Arms[1].Body, ifData.Else}
	for i, body := range bodies {
		last := body[len(body)-1]
		assign, ok := last.Data.(*hir.AssignData)
		if !ok || assign.Name != tmp[0].Name {
			t.Fatalf("arm %d must end by assigning %s", i, tmp[0].Name)
		}
		if got := assign.Value.Data.(*hir.LiteralData).Value.Int; got != int32(i+1) {
			t.Fatalf("arm %d assigns %d", i, got)
		}
	}
	x := m.Stmts[3].Data.(*hir.VarDeclData)
	if v, ok := x.Value.Data.(*hir.VariableData); !ok || v.Name != tmp[0].Name {
		t.Fatalf("x must read the temporary")
	}
}

func TestGlobalsOrderedByDependency(t *testing.T) {
	m := lower(t, "val a = b\nfun get(): I32 = c\nval b = get()\nval c = 1")
	var order []string
	for _, s := range m.Stmts {
		if name := declName(s); name != "" {
			order = append(order, strings.SplitN(name, "$", 2)[0])
		}
	}
	if got := strings.Join(order, " "); got != "c b a" {
		t.Fatalf("expected order c b a, got %s", got)
	}
	if m.Stmts[0].Kind != hir.StmtFunction {
		t.Fatalf("functions come first, got %s", m.Stmts[0].Kind)
	}
}

func TestNamesAreMangled(t *testing.T) {
	m := lower(t, "fun main() { val x = 1; println(i32_to_string(x)) }")
	if !m.CallsMain {
		t.Fatalf("expected main to be called")
	}
	fn := m.Stmts[0].Data.(*hir.FunctionData)
	if fn.Name != "main" {
		t.Fatalf("main must keep its name, got %s", fn.Name)
	}
	decl := fn.Body[0].Data.(*hir.VarDeclData)
	if !regexp.MustCompile(`^x\$\d+$`).MatchString(decl.Name) {
		t.Fatalf("unexpected local name %s", decl.Name)
	}
	call := fn.Body[1].Data.(*hir.ExprStmtData).Expr.Data.(*hir.CallData)
	if call.Name != "println" {
		t.Fatalf("natives keep their names, got %s", call.Name)
	}
	arg := call.Args[0].Data.(*hir.CallData).Args[0].Data.(*hir.VariableData)
	if arg.Name != decl.Name || arg.ID != decl.ID {
		t.Fatalf("reference %s(%d) does not match declaration %s(%d)", arg.Name, arg.ID, decl.Name, decl.ID)
	}
	if fn.Body[len(fn.Body)-1].Kind != hir.StmtReturn {
		t.Fatalf("function body must end with a return")
	}
	last := m.Stmts[len(m.Stmts)-1].Data.(*hir.ExprStmtData)
	if c, ok := last.Expr.Data.(*hir.CallData); !ok || c.Name != "main" {
		t.Fatalf("module must end with a call of main")
	}
}

func TestMainWithParamsIsNotCalled(t *testing.T) {
	m := lower(t, "fun main(n: I32) { println(i32_to_string(n)) }")
	if m.CallsMain {
		t.Fatalf("main with parameters must not be called")
	}
}

func TestValueBlockIsSpliced(t *testing.T) {
	m := lower(t, "val y = { val t = 3; t * 2 }")
	if len(m.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got:\n%s", m)
	}
	if !strings.HasPrefix(declName(m.Stmts[0]), "t$") || !strings.HasPrefix(declName(m.Stmts[1]), "y$") {
		t.Fatalf("unexpected statements:\n%s", m)
	}
	y := m.Stmts[1].Data.(*hir.VarDeclData)
	if y.Value.Kind != hir.ExprBinary {
		t.Fatalf("y must be initialized by the trailing expression, got %s", y.Value.Kind)
	}
}

func TestBreakValueBlockBecomesBreakable(t *testing.T) {
	m := lower(t, "val c = true\nval w = { if c { break 10 }; 20 }")
	tmp := temps(m.Stmts)
	if len(tmp) != 1 {
		t.Fatalf("expected one temporary, got:\n%s", m)
	}
	var block *hir.BlockData
	for _, s := range m.Stmts {
		if b, ok := s.Data.(*hir.BlockData); ok {
			block = b
		}
	}
	if block == nil || !block.Target.IsValid() {
		t.Fatalf("expected a breakable block, got:\n%s", m)
	}
	inner := block.Body[0].Data.(*hir.IfData).Arms[0].Body
	if len(inner) != 2 {
		t.Fatalf("break must assign then leave, got %d statements", len(inner))
	}
	if a, ok := inner[0].Data.(*hir.AssignData); !ok || a.Name != tmp[0].Name {
		t.Fatalf("break value must be assigned to the temporary")
	}
	if b, ok := inner[1].Data.(*hir.BreakData); !ok || b.Target != block.Target {
		t.Fatalf("break must leave the block")
	}
	if a, ok := block.Body[len(block.Body)-1].Data.(*hir.AssignData); !ok || a.Name != tmp[0].Name {
		t.Fatalf("fallthrough value must be assigned to the temporary")
	}
}

func TestEarlierOperandsAreSpilled(t *testing.T) {
	m := lower(t, "val x = 1\nval y = x + { val t = 2; t }")
	names := make([]string, 0, len(m.Stmts))
	for _, s := range m.Stmts {
		names = append(names, strings.SplitN(declName(s), "$", 2)[0])
	}
	if got := strings.Join(names, " "); got != "x tmp t y" {
		t.Fatalf("expected x tmp t y, got %s:\n%s", got, m)
	}
	spill := m.Stmts[1].Data.(*hir.VarDeclData)
	if v, ok := spill.Value.Data.(*hir.VariableData); !ok || !strings.HasPrefix(v.Name, "x$") {
		t.Fatalf("left operand must be saved before the block runs")
	}
	sum := m.Stmts[3].Data.(*hir.VarDeclData).Value.Data.(*hir.BinaryData)
	if v := sum.Left.Data.(*hir.VariableData); v.Name != spill.Name {
		t.Fatalf("sum must read the saved operand")
	}
}

func TestLiteralOperandsAreNotSpilled(t *testing.T) {
	m := lower(t, "val y = 1 + { val t = 2; t }")
	if len(temps(m.Stmts)) != 0 {
		t.Fatalf("literal operand must not be spilled:\n%s", m)
	}
}

func TestShortCircuitWithStatements(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		negate bool
	}{
		{"and", "&&", false},
		{"or", "||", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := lower(t, "val c = true\nval r = c "+tt.op+" { val t = false; t }")
			if len(m.Stmts) != 4 {
				t.Fatalf("expected 4 statements, got:\n%s", m)
			}
			tmp := m.Stmts[1].Data.(*hir.VarDeclData)
			if !tmp.Temp || !tmp.Ty.Equal(types.Bool) {
				t.Fatalf("expected a Bool temporary")
			}
			ifData := m.Stmts[2].Data.(*hir.IfData)
			cond := ifData.Arms[0].Cond
			if negated := cond.Kind == hir.ExprUnary; negated != tt.negate {
				t.Fatalf("condition negated = %v", negated)
			}
			body := ifData.Arms[0].Body
			if !strings.HasPrefix(declName(body[0]), "t$") {
				t.Fatalf("right operand statements must run inside the if")
			}
			if a, ok := body[len(body)-1].Data.(*hir.AssignData); !ok || a.Name != tmp.Name {
				t.Fatalf("right operand must be assigned to the temporary")
			}
		})
	}
}

func TestShortCircuitStaysAnOperator(t *testing.T) {
	m := lower(t, "val a = true\nval b = false\nval r = a && b")
	r := m.Stmts[2].Data.(*hir.VarDeclData)
	if d, ok := r.Value.Data.(*hir.BinaryData); !ok || d.Op != ast.BinaryAnd {
		t.Fatalf("expected a plain && expression")
	}
}

func TestWhileConditionWithStatements(t *testing.T) {
	m := lower(t, "var i = 0\nwhile ({ val t = 3; i < t }) { i = i + 1 }")
	loop := m.Stmts[1].Data.(*hir.WhileData)
	lit, ok := loop.Cond.Data.(*hir.LiteralData)
	if !ok || !lit.Value.Bool {
		t.Fatalf("condition must become true")
	}
	if !strings.HasPrefix(declName(loop.Body[0]), "t$") {
		t.Fatalf("condition statements must run first in the body")
	}
	exit := loop.Body[1].Data.(*hir.IfData)
	if exit.Arms[0].Cond.Kind != hir.ExprUnary {
		t.Fatalf("exit test must negate the condition")
	}
	if b, ok := exit.Arms[0].Body[0].Data.(*hir.BreakData); !ok || b.Target != loop.ID {
		t.Fatalf("exit test must break out of the loop")
	}
	if loop.Body[2].Kind != hir.StmtAssign {
		t.Fatalf("original body must follow the exit test")
	}
}

func TestNoValueLeavesThroughBlocksOrIfs(t *testing.T) {
	m := lower(t, `
fun pick(c: Bool): String { if c { "yes" } else { "no" } }
fun f(n: I32): I32 {
    val a = if n > 1 { { val t = n; t * 2 } } else { n }
    a + if n > 0 { 1 } else { return 0 }
}
val w = { if pick(true) == "yes" { break 1 }; 2 }
`)
	var walk func(list []*hir.Stmt)
	walk = func(list []*hir.Stmt) {
		for _, s := range list {
			switch d := s.Data.(type) {
			case *hir.FunctionData:
				walk(d.Body)
			case *hir.IfData:
				for _, a := range d.Arms {
					walk(a.Body)
				}
				walk(d.Else)
			case *hir.WhileData:
				walk(d.Body)
			case *hir.BlockData:
				walk(d.Body)
			case *hir.VarDeclData:
				if d.Ty.Kind == types.KindDeferredUnion {
					t.Fatalf("%s has an unresolved type", d.Name)
				}
			}
		}
	}
	walk(m.Stmts)
	if !strings.Contains(m.String(), "return tmp$") {
		t.Fatalf("pick must return its temporary:\n%s", m)
	}
}

func TestLowerNeedsContext(t *testing.T) {
	if _, err := hir.Lower(&sema.File{}, hir.Options{}); err == nil {
		t.Fatalf("expected an error without a symbol context")
	}
}

func TestDump(t *testing.T) {
	m := lower(t, "fun add(a: I32, b: I32): I32 = a + b\nval s = add(1, 2)")
	out := m.String()
	for _, want := range []string{"fun add$", ": I32 = add$", "return a$"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q:\n%s", want, out)
		}
	}
}
