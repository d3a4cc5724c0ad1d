package value

import (
	"math"
	"testing"
)

func TestValue_StringAndLiteral(t *testing.T) {
	tests := []struct {
		v       Value
		str     string
		literal string
	}{
		{MakeI32(-7), "-7", "-7"},
		{MakeF64(7), "7", "7.0"},
		{MakeF64(2.5), "2.5", "2.5"},
		{MakeBool(true), "true", "true"},
		{MakeString("a\"b"), "a\"b", `"a\"b"`},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.str {
			t.Errorf("String(%v) = %q, want %q", tt.v, got, tt.str)
		}
		if got := tt.v.Literal(); got != tt.literal {
			t.Errorf("Literal(%v) = %q, want %q", tt.v, got, tt.literal)
		}
	}
}

func TestValue_Equal(t *testing.T) {
	if !MakeI32(1).Equal(MakeI32(1)) {
		t.Fatalf("equal ints must compare equal")
	}
	if MakeI32(1).Equal(MakeF64(1)) {
		t.Fatalf("values of different kinds must differ")
	}
	nan := MakeF64(math.NaN())
	if nan.Equal(nan) {
		t.Fatalf("NaN must not equal itself")
	}
}
