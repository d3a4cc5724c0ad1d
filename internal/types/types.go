// Package types defines the closed set of static types.
package types

import (
	"fmt"
	"strings"

	"ash/internal/source"
	"ash/internal/value"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindI32
	KindF64
	KindVoid
	KindFunction
	// KindDeferredUnion is a placeholder built while checking conditional
	// expressions. It never leaves the type checker.
	KindDeferredUnion
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindI32:
		return "I32"
	case KindF64:
		return "F64"
	case KindVoid:
		return "Void"
	case KindFunction:
		return "Function"
	case KindDeferredUnion:
		return "DeferredUnion"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Ty is a type descriptor. Params and Result are set for functions,
// Candidates and Span for deferred unions.
type Ty struct {
	Kind       Kind
	Params     []Ty
	Result     *Ty
	Candidates []Ty
	Span       source.Span
}

var (
	Invalid = Ty{}
	String  = Ty{Kind: KindString}
	Bool    = Ty{Kind: KindBool}
	I32     = Ty{Kind: KindI32}
	F64     = Ty{Kind: KindF64}
	Void    = Ty{Kind: KindVoid}
)

func Function(params []Ty, result Ty) Ty {
	r := result
	return Ty{Kind: KindFunction, Params: params, Result: &r}
}

func DeferredUnion(candidates []Ty, span source.Span) Ty {
	return Ty{Kind: KindDeferredUnion, Candidates: candidates, Span: span}
}

func (t Ty) IsValid() bool { return t.Kind != KindInvalid }

func (t Ty) IsVoid() bool { return t.Kind == KindVoid }

func (t Ty) IsFunction() bool { return t.Kind == KindFunction }

func (t Ty) IsNumeric() bool { return t.Kind == KindI32 || t.Kind == KindF64 }

// Ret returns the result type of a function type, Invalid otherwise.
func (t Ty) Ret() Ty {
	if t.Kind != KindFunction || t.Result == nil {
		return Invalid
	}
	return *t.Result
}

// Equal is structural equality. Deferred unions compare by candidates; their
// spans are ignored.
func (t Ty) Equal(o Ty) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindFunction:
		if len(t.Params) != len(o.Params) || !t.Ret().Equal(o.Ret()) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return true
	case KindDeferredUnion:
		if len(t.Candidates) != len(o.Candidates) {
			return false
		}
		for i := range t.Candidates {
			if !t.Candidates[i].Equal(o.Candidates[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t Ty) String() string {
	switch t.Kind {
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("fun(%s): %s", strings.Join(parts, ", "), t.Ret())
	case KindDeferredUnion:
		parts := make([]string, len(t.Candidates))
		for i, c := range t.Candidates {
			parts[i] = c.String()
		}
		return "union{" + strings.Join(parts, " | ") + "}"
	default:
		return t.Kind.String()
	}
}

// FromName maps a written type name to its type.
func FromName(name string) (Ty, bool) {
	switch name {
	case "String":
		return String, true
	case "Bool":
		return Bool, true
	case "I32":
		return I32, true
	case "F64":
		return F64, true
	case "Void":
		return Void, true
	}
	return Invalid, false
}

// OfValue returns the type of a literal.
func OfValue(v value.Value) Ty {
	switch v.Kind {
	case value.KindString:
		return String
	case value.KindI32:
		return I32
	case value.KindF64:
		return F64
	case value.KindBool:
		return Bool
	}
	return Invalid
}

// Zero returns the default value used to initialize temporaries of type t:
// "" for String, 0 for I32, 0.0 for F64, false for Bool.
func Zero(t Ty) (value.Value, bool) {
	switch t.Kind {
	case KindString:
		return value.MakeString(""), true
	case KindI32:
		return value.MakeI32(0), true
	case KindF64:
		return value.MakeF64(0), true
	case KindBool:
		return value.MakeBool(false), true
	}
	return value.Value{}, false
}
