package types

import (
	"testing"

	"ash/internal/ast"
	"ash/internal/source"
)

func TestBinaryResultType(t *testing.T) {
	tests := []struct {
		name  string
		op    ast.BinaryOp
		l, r  Ty
		want  Ty
		valid bool
	}{
		{"add f64", ast.BinaryAdd, F64, F64, F64, true},
		{"concat strings", ast.BinaryAdd, String, String, String, true},
		{"add bools", ast.BinaryAdd, Bool, Bool, Invalid, false},
		{"mixed numeric", ast.BinaryMul, I32, F64, Invalid, false},
		{"sub strings", ast.BinarySub, String, String, Invalid, false},
		{"equality on bool", ast.BinaryEq, Bool, Bool, Bool, true},
		{"ordering on i32", ast.BinaryLt, I32, I32, Bool, true},
		{"ordering on bool", ast.BinaryGtEq, Bool, Bool, Invalid, false},
		{"logical and", ast.BinaryAnd, Bool, Bool, Bool, true},
		{"logical or on ints", ast.BinaryOr, I32, I32, Invalid, false},
		{"void operands", ast.BinaryEq, Void, Void, Invalid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BinaryResultType(tt.op, tt.l, tt.r)
			if ok != tt.valid || !got.Equal(tt.want) {
				t.Fatalf("BinaryResultType(%s, %s, %s) = %s, %v", tt.op, tt.l, tt.r, got, ok)
			}
		})
	}
}

func TestUnaryResultType(t *testing.T) {
	if got, ok := UnaryResultType(ast.UnaryNeg, F64); !ok || !got.Equal(F64) {
		t.Fatalf("-F64 = %s, %v", got, ok)
	}
	if _, ok := UnaryResultType(ast.UnaryNeg, Bool); ok {
		t.Fatalf("-Bool must be rejected")
	}
	if _, ok := UnaryResultType(ast.UnaryNot, I32); ok {
		t.Fatalf("!I32 must be rejected")
	}
}

func TestCollapse(t *testing.T) {
	sp := source.Span{Start: 1, End: 2}
	ty, bad := Collapse(DeferredUnion([]Ty{I32, I32, I32}, sp))
	if bad != -1 || !ty.Equal(I32) {
		t.Fatalf("uniform union collapsed to %s (bad=%d)", ty, bad)
	}
	ty, bad = Collapse(DeferredUnion([]Ty{String, String, Bool}, sp))
	if bad != 2 || !ty.Equal(String) {
		t.Fatalf("first candidate must win: %s, bad=%d", ty, bad)
	}
	nested := DeferredUnion([]Ty{DeferredUnion([]Ty{F64, F64}, sp), F64}, sp)
	if ty, bad = Collapse(nested); bad != -1 || !ty.Equal(F64) {
		t.Fatalf("nested union collapsed to %s (bad=%d)", ty, bad)
	}
	if !ContainsDeferred(Function([]Ty{nested}, Void)) {
		t.Fatalf("ContainsDeferred must see parameter unions")
	}
}

func TestFunctionEqualAndString(t *testing.T) {
	a := Function([]Ty{I32, F64}, Bool)
	b := Function([]Ty{I32, F64}, Bool)
	c := Function([]Ty{I32}, Bool)
	if !a.Equal(b) || a.Equal(c) {
		t.Fatalf("function equality is structural")
	}
	if got := a.String(); got != "fun(I32, F64): Bool" {
		t.Fatalf("String() = %q", got)
	}
}
