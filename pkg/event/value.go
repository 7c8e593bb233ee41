// Package event defines the typed attribute values, events, and complex-event
// chains that flow through every junction and processor in the engine.
package event

import "fmt"

// Kind tags the underlying representation held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the attribute types the engine understands.
// Only one of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	b    bool
	i    int32
	l    int64
	f    float32
	d    float64
	s    string
	obj  any
}

func Null() Value                  { return Value{Kind: KindNull} }
func Bool(v bool) Value            { return Value{Kind: KindBool, b: v} }
func Int(v int32) Value            { return Value{Kind: KindInt, i: v} }
func Long(v int64) Value           { return Value{Kind: KindLong, l: v} }
func Float(v float32) Value        { return Value{Kind: KindFloat, f: v} }
func Double(v float64) Value       { return Value{Kind: KindDouble, d: v} }
func String(v string) Value        { return Value{Kind: KindString, s: v} }
func Object(v any) Value           { return Value{Kind: KindObject, obj: v} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) Bool() bool       { return v.b }
func (v Value) Int() int32       { return v.i }
func (v Value) Long() int64      { return v.l }
func (v Value) Float() float32   { return v.f }
func (v Value) Double() float64  { return v.d }
func (v Value) String() string {
	if v.Kind != KindString {
		return fmt.Sprintf("%v", v.Raw())
	}
	return v.s
}
func (v Value) Object() any { return v.obj }

// Raw returns the boxed Go value, useful for formatting and hashing.
func (v Value) Raw() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindLong:
		return v.l
	case KindFloat:
		return v.f
	case KindDouble:
		return v.d
	case KindString:
		return v.s
	case KindObject:
		return v.obj
	default:
		return nil
	}
}

// AsFloat64 widens any numeric kind to float64 for arithmetic/comparison.
// Non-numeric kinds return (0, false).
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.i), true
	case KindLong:
		return float64(v.l), true
	case KindFloat:
		return float64(v.f), true
	case KindDouble:
		return v.d, true
	default:
		return 0, false
	}
}

// StructEqual is the exact structural equality used by table lookup: two
// null values are equal under this relation, unlike the SQL comparison
// operators below.
func (v Value) StructEqual(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindLong:
		return v.l == o.l
	case KindFloat:
		return v.f == o.f
	case KindDouble:
		return v.d == o.d
	case KindString:
		return v.s == o.s
	case KindObject:
		return v.obj == o.obj
	default:
		return false
	}
}

// CompareEqual implements SQL three-valued equality: null is unequal to
// everything, including another null.
func CompareEqual(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}
	if af, aok := a.AsFloat64(); aok {
		if bf, bok := b.AsFloat64(); bok {
			return af == bf
		}
	}
	return a.StructEqual(b)
}

// HashKey returns a value usable as a map key for grouping/table indexing.
// Distinct kinds never collide because the kind tag is folded into the key.
func (v Value) HashKey() any {
	return [2]any{v.Kind, v.Raw()}
}
