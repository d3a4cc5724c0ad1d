package bytecode_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"ash/internal/ast"
	"ash/internal/bytecode"
	"ash/internal/hir"
	"ash/internal/types"
	"ash/internal/value"
)

func i32(n int32) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprLiteral, Ty: types.I32, Data: &hir.LiteralData{Value: value.MakeI32(n)}}
}

func boolean(b bool) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprLiteral, Ty: types.Bool, Data: &hir.LiteralData{Value: value.MakeBool(b)}}
}

func variable(name string, ty types.Ty) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprVariable, Ty: ty, Data: &hir.VariableData{Name: name}}
}

func decl(name string, val *hir.Expr) *hir.Stmt {
	return &hir.Stmt{Kind: hir.StmtVarDecl, Data: &hir.VarDeclData{Name: name, Ty: val.Ty, Value: val}}
}

func exprStmt(e *hir.Expr) *hir.Stmt {
	return &hir.Stmt{Kind: hir.StmtExpr, Data: &hir.ExprStmtData{Expr: e}}
}

func ops(codes ...any) []byte {
	out := make([]byte, 0, len(codes))
	for _, c := range codes {
		switch c := c.(type) {
		case bytecode.Opcode:
			out = append(out, byte(c))
		case int:
			out = append(out, byte(c))
		}
	}
	return out
}

func compile(t *testing.T, stmts ...*hir.Stmt) *bytecode.Chunk {
	t.Helper()
	c, err := bytecode.Compile(&hir.Module{Stmts: stmts})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return c
}

func expectCode(t *testing.T, c *bytecode.Chunk, want []byte) {
	t.Helper()
	if !bytes.Equal(c.Code, want) {
		var sb strings.Builder
		_ = bytecode.Disassemble(&sb, c, "got")
		t.Fatalf("code mismatch\nwant % x\ngot  % x\n%s", want, c.Code, sb.String())
	}
}

func TestIndexWidthByMagnitude(t *testing.T) {
	c := bytecode.NewChunk()
	for i := 0; i < 257; i++ {
		c.AddConstant(value.MakeI32(int32(i)))
	}
	if err := c.WriteIndexed(bytecode.OpConst, 255); err != nil {
		t.Fatalf("short form: %v", err)
	}
	if err := c.WriteIndexed(bytecode.OpConst, 256); err != nil {
		t.Fatalf("long form: %v", err)
	}
	expectCode(t, c, ops(bytecode.OpConst, 255, bytecode.OpConstLong, 0, 1, 0))
	if got := c.ReadIndex(3, true); got != 256 {
		t.Fatalf("long index decodes to %d", got)
	}
}

func TestIndexOverflowIsFatal(t *testing.T) {
	c := bytecode.NewChunk()
	err := c.WriteIndexed(bytecode.OpLoadGlobal, bytecode.MaxLongIndex+1)
	var encErr *bytecode.EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected an encoding error, got %v", err)
	}
	if err := c.WriteCount(bytecode.OpCall, 256); !errors.As(err, &encErr) {
		t.Fatalf("expected an encoding error for 256 arguments, got %v", err)
	}
}

func TestPatchRejectsLongJump(t *testing.T) {
	c := bytecode.NewChunk()
	at := c.WriteJump(bytecode.OpJmp)
	c.Code = append(c.Code, make([]byte, bytecode.MaxJump+1)...)
	err := c.Patch(bytecode.OpJmp, at)
	var encErr *bytecode.EncodingError
	if !errors.As(err, &encErr) || encErr.What != "jump" {
		t.Fatalf("expected a jump encoding error, got %v", err)
	}
}

func TestPatchDisplacement(t *testing.T) {
	c := bytecode.NewChunk()
	at := c.WriteJump(bytecode.OpJmp)
	c.WriteOp(bytecode.OpPop)
	c.WriteOp(bytecode.OpPop)
	if err := c.Patch(bytecode.OpJmp, at); err != nil {
		t.Fatalf("patch: %v", err)
	}
	expectCode(t, c, ops(bytecode.OpJmp, 2, 0, bytecode.OpPop, bytecode.OpPop))
}

func TestLocalsArePoppedOnScopeExit(t *testing.T) {
	block := &hir.Stmt{Kind: hir.StmtBlock, Data: &hir.BlockData{Body: []*hir.Stmt{
		decl("a$1", i32(1)),
		decl("b$2", i32(2)),
		decl("c$3", variable("a$1", types.I32)),
	}}}
	c := compile(t, block)
	expectCode(t, c, ops(
		bytecode.OpConst, 0,
		bytecode.OpConst, 1,
		bytecode.OpLoadLocal, 0,
		bytecode.OpPop, bytecode.OpPop, bytecode.OpPop,
		bytecode.OpRet,
	))
}

func TestGlobalsAreNamedOnce(t *testing.T) {
	x := variable("x$1", types.I32)
	assign := &hir.Stmt{Kind: hir.StmtAssign, Data: &hir.AssignData{Name: "x$1", Value: &hir.Expr{
		Kind: hir.ExprBinary, Ty: types.I32, Data: &hir.BinaryData{Op: ast.BinaryAdd, Left: x, Right: i32(1)},
	}}}
	c := compile(t, &hir.Stmt{Kind: hir.StmtVarDecl, Data: &hir.VarDeclData{Name: "x$1", Ty: types.I32, Mutable: true, Value: i32(1)}}, assign)
	expectCode(t, c, ops(
		bytecode.OpConst, 0,
		bytecode.OpDefGlobal, 1,
		bytecode.OpLoadGlobal, 1,
		bytecode.OpConst, 2,
		bytecode.OpSum,
		bytecode.OpStoreGlobal, 1,
		bytecode.OpRet,
	))
	if c.Symbols["x$1"] != "x" {
		t.Fatalf("symbols: %v", c.Symbols)
	}
}

func TestFinalExpressionIsTheResult(t *testing.T) {
	sum := &hir.Expr{Kind: hir.ExprBinary, Ty: types.I32, Data: &hir.BinaryData{Op: ast.BinaryMul, Left: i32(2), Right: i32(3)}}
	c := compile(t, exprStmt(sum))
	expectCode(t, c, ops(bytecode.OpConst, 0, bytecode.OpConst, 1, bytecode.OpMul, bytecode.OpRetValue))

	c = compile(t, exprStmt(i32(1)), decl("x$1", i32(2)))
	expectCode(t, c, ops(bytecode.OpConst, 0, bytecode.OpPop, bytecode.OpConst, 1, bytecode.OpDefGlobal, 2, bytecode.OpRet))
}

func TestVoidCallIsNotPopped(t *testing.T) {
	call := &hir.Expr{Kind: hir.ExprCall, Ty: types.Void, Data: &hir.CallData{Name: "println", Args: []*hir.Expr{
		{Kind: hir.ExprLiteral, Ty: types.String, Data: &hir.LiteralData{Value: value.MakeString("hi")}},
	}}}
	c := compile(t, exprStmt(call))
	expectCode(t, c, ops(bytecode.OpConst, 0, bytecode.OpCall, 1, 1, bytecode.OpRet))
}

func TestIfJumpsLandOnConditionPop(t *testing.T) {
	ifStmt := &hir.Stmt{Kind: hir.StmtIf, Data: &hir.IfData{Arms: []hir.IfArm{{Cond: boolean(true)}}}}
	c := compile(t, ifStmt)
	expectCode(t, c, ops(
		bytecode.OpTrue,
		bytecode.OpJmpIfFalse, 4, 0,
		bytecode.OpPop,
		bytecode.OpJmp, 1, 0,
		bytecode.OpPop,
		bytecode.OpRet,
	))
}

func TestWhileWithBreak(t *testing.T) {
	loop := &hir.Stmt{Kind: hir.StmtWhile, Data: &hir.WhileData{ID: 7, Cond: boolean(true), Body: []*hir.Stmt{
		{Kind: hir.StmtBreak, Data: &hir.BreakData{Target: 7}},
	}}}
	c := compile(t, loop)
	expectCode(t, c, ops(
		bytecode.OpTrue,
		bytecode.OpJmpIfFalse, 7, 0,
		bytecode.OpPop,
		bytecode.OpJmp, 4, 0,
		bytecode.OpLoop, 11, 0,
		bytecode.OpPop,
		bytecode.OpRet,
	))
}

func TestBreakPopsLocalsOfTarget(t *testing.T) {
	block := &hir.Stmt{Kind: hir.StmtBlock, Data: &hir.BlockData{Target: 5, Body: []*hir.Stmt{
		decl("x$1", i32(1)),
		{Kind: hir.StmtBreak, Data: &hir.BreakData{Target: 5}},
	}}}
	c := compile(t, block)
	expectCode(t, c, ops(
		bytecode.OpConst, 0,
		bytecode.OpPop,
		bytecode.OpJmp, 1, 0,
		bytecode.OpPop,
		bytecode.OpRet,
	))
}

func TestFunctionBody(t *testing.T) {
	sum := &hir.Expr{Kind: hir.ExprBinary, Ty: types.I32, Data: &hir.BinaryData{
		Op: ast.BinaryAdd, Left: variable("a$1", types.I32), Right: variable("b$2", types.I32),
	}}
	fn := &hir.Stmt{Kind: hir.StmtFunction, Data: &hir.FunctionData{
		Name:   "add$3",
		Params: []hir.Param{{Name: "a$1", Ty: types.I32}, {Name: "b$2", Ty: types.I32}},
		Result: types.I32,
		Body:   []*hir.Stmt{{Kind: hir.StmtReturn, Data: &hir.ReturnData{Value: sum}}},
	}}
	c := compile(t, fn)
	expectCode(t, c, ops(
		bytecode.OpFun, 0, 2, 6, 0,
		bytecode.OpLoadLocal, 0,
		bytecode.OpLoadLocal, 1,
		bytecode.OpSum,
		bytecode.OpRetValue,
		bytecode.OpRet,
	))
	if c.Symbols["add$3"] != "add" {
		t.Fatalf("symbols: %v", c.Symbols)
	}
}

func TestShortCircuitEmission(t *testing.T) {
	and := &hir.Expr{Kind: hir.ExprBinary, Ty: types.Bool, Data: &hir.BinaryData{Op: ast.BinaryAnd, Left: boolean(false), Right: boolean(true)}}
	c := compile(t, exprStmt(and))
	expectCode(t, c, ops(
		bytecode.OpFalse,
		bytecode.OpJmpIfFalse, 2, 0,
		bytecode.OpPop,
		bytecode.OpTrue,
		bytecode.OpRetValue,
	))

	or := &hir.Expr{Kind: hir.ExprBinary, Ty: types.Bool, Data: &hir.BinaryData{Op: ast.BinaryOr, Left: boolean(true), Right: boolean(false)}}
	c = compile(t, exprStmt(or))
	expectCode(t, c, ops(
		bytecode.OpTrue,
		bytecode.OpJmpIfFalse, 3, 0,
		bytecode.OpJmp, 2, 0,
		bytecode.OpPop,
		bytecode.OpFalse,
		bytecode.OpRetValue,
	))
}

func TestLoopBodyTooLong(t *testing.T) {
	body := make([]*hir.Stmt, 0, 20000)
	for i := 0; i < 20000; i++ {
		body = append(body, exprStmt(i32(int32(i))))
	}
	loop := &hir.Stmt{Kind: hir.StmtWhile, Data: &hir.WhileData{ID: 1, Cond: boolean(true), Body: body}}
	_, err := bytecode.Compile(&hir.Module{Stmts: []*hir.Stmt{loop}})
	var encErr *bytecode.EncodingError
	if !errors.As(err, &encErr) || encErr.What != "jump" {
		t.Fatalf("expected a jump encoding error, got %v", err)
	}
}

func TestDisassemble(t *testing.T) {
	c := compile(t, decl("x$1", i32(42)), exprStmt(variable("x$1", types.I32)))
	var sb strings.Builder
	if err := bytecode.Disassemble(&sb, c, "demo"); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"== demo ==", "00000 Const", "'42'", "DefGlobal", "'x$1'", "LoadGlobal", "RetValue"} {
		if !strings.Contains(out, want) {
			t.Fatalf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	src := compile(t,
		decl("s$1", &hir.Expr{Kind: hir.ExprLiteral, Ty: types.String, Data: &hir.LiteralData{Value: value.MakeString("héllo")}}),
		decl("f$2", &hir.Expr{Kind: hir.ExprLiteral, Ty: types.F64, Data: &hir.LiteralData{Value: value.MakeF64(2.5)}}),
		decl("b$3", boolean(true)),
		exprStmt(variable("s$1", types.String)),
	)
	for _, f := range []bytecode.Format{bytecode.FormatMsgpack, bytecode.FormatCBOR} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := bytecode.WriteFile(&buf, src, f); err != nil {
				t.Fatalf("write: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte(bytecode.Magic)) {
				t.Fatalf("missing magic")
			}
			got, format, err := bytecode.ReadFile(&buf)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if format != f {
				t.Fatalf("format %s, want %s", format, f)
			}
			if !bytes.Equal(got.Code, src.Code) {
				t.Fatalf("code differs")
			}
			if len(got.Constants) != len(src.Constants) {
				t.Fatalf("constants: %d, want %d", len(got.Constants), len(src.Constants))
			}
			for i := range src.Constants {
				if !got.Constants[i].Equal(src.Constants[i]) {
					t.Fatalf("constant %d: %v, want %v", i, got.Constants[i], src.Constants[i])
				}
			}
			if got.Symbols["s$1"] != "s" {
				t.Fatalf("symbols: %v", got.Symbols)
			}
			if got.Name("s$1") != src.Name("s$1") {
				t.Fatalf("name index not restored")
			}
		})
	}
}

func TestReadFileRejectsGarbage(t *testing.T) {
	if _, _, err := bytecode.Unmarshal([]byte("nope, not a chunk")); !errors.Is(err, bytecode.ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
	data := append([]byte(bytecode.Magic), 99, byte(bytecode.FormatMsgpack))
	if _, _, err := bytecode.Unmarshal(data); !errors.Is(err, bytecode.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]bytecode.Format{"": bytecode.FormatMsgpack, "msgpack": bytecode.FormatMsgpack, "CBOR": bytecode.FormatCBOR} {
		got, err := bytecode.ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := bytecode.ParseFormat("json"); err == nil {
		t.Fatalf("expected an error for json")
	}
}
