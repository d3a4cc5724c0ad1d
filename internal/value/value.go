// Package value defines the literal values shared by the constant pool and
// the virtual machine.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the runtime type of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindI32
	KindF64
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindString:
		return "String"
	case KindI32:
		return "I32"
	case KindF64:
		return "F64"
	case KindBool:
		return "Bool"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is a tagged literal. Strings are host-managed Go strings.
type Value struct {
	Kind  Kind
	Int   int32
	Float float64
	Bool  bool
	Str   string
}

func MakeString(s string) Value { return Value{Kind: KindString, Str: s} }

func MakeI32(n int32) Value { return Value{Kind: KindI32, Int: n} }

func MakeF64(f float64) Value { return Value{Kind: KindF64, Float: f} }

func MakeBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func (v Value) IsValid() bool { return v.Kind != KindInvalid }

// Equal compares kind and payload. F64 follows IEEE semantics (NaN != NaN).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindI32:
		return v.Int == o.Int
	case KindF64:
		return v.Float == o.Float
	case KindBool:
		return v.Bool == o.Bool
	default:
		return true
	}
}

// String renders the value the way the language prints it.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindI32:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindF64:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "<invalid>"
	}
}

// Literal renders the value as it would appear in source code.
func (v Value) Literal() string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindF64:
		s := strconv.FormatFloat(v.Float, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	default:
		return v.String()
	}
}
