// Package interp implements C7 of the core pipeline: the tree-walking
// reference interpreter described in spec.md §3/§4.7 — a stack of frames,
// value-semantics copying on assignment and parameter binding, and the
// three mutually-exclusive control-flow signals (breaking, continuing,
// returning).
package interp

import "github.com/arbor-lang/arbor/internal/types"

// Value is a runtime value: a type tag plus a Go-native payload. Compound
// payloads (*StructValue, *ArrayValue, *TupleValue, *MapValue, *UnionValue)
// are pointers so a Value can be mutated in place through an lvalue, but
// every assignment and parameter bind runs Copy first so no two variables
// ever alias the same compound payload (spec.md §4.7, value semantics).
type Value struct {
	Type *types.Type
	V    any
}

type StructValue struct {
	Fields []*Value
}

type TupleValue struct {
	Elems []*Value
}

// ArrayValue backs both arrays and strings (string is array-of-char,
// dim 1). The array's length is len(Elems); there is no separate length
// field.
type ArrayValue struct {
	Elems []*Value
}

// MapValue preserves insertion order so printing is deterministic
// (spec.md §6).
type MapValue struct {
	Keys []*Value
	Vals []*Value
}

type UnionValue struct {
	OptionIndex int
	Payload     *Value
}

type CallableValue struct {
	Decl     any // *ast.Subroutine
	Receiver *Value
}

// Copy returns a value with the same contents but no shared compound
// payload with v (spec.md §4.7).
func Copy(v *Value) *Value {
	if v == nil {
		return nil
	}
	switch p := v.V.(type) {
	case *StructValue:
		fields := make([]*Value, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = Copy(f)
		}
		return &Value{Type: v.Type, V: &StructValue{Fields: fields}}
	case *TupleValue:
		elems := make([]*Value, len(p.Elems))
		for i, e := range p.Elems {
			elems[i] = Copy(e)
		}
		return &Value{Type: v.Type, V: &TupleValue{Elems: elems}}
	case *ArrayValue:
		elems := make([]*Value, len(p.Elems))
		for i, e := range p.Elems {
			elems[i] = Copy(e)
		}
		return &Value{Type: v.Type, V: &ArrayValue{Elems: elems}}
	case *MapValue:
		keys := make([]*Value, len(p.Keys))
		vals := make([]*Value, len(p.Vals))
		for i := range p.Keys {
			keys[i] = Copy(p.Keys[i])
			vals[i] = Copy(p.Vals[i])
		}
		return &Value{Type: v.Type, V: &MapValue{Keys: keys, Vals: vals}}
	case *UnionValue:
		return &Value{Type: v.Type, V: &UnionValue{OptionIndex: p.OptionIndex, Payload: Copy(p.Payload)}}
	default:
		// primitives (bool, char, int, float) and callables are copied by
		// value already: a fresh *Value sharing no mutable state.
		return &Value{Type: v.Type, V: v.V}
	}
}

func NewString(r *types.Registry, s []byte) *Value {
	elems := make([]*Value, len(s))
	for i, b := range s {
		elems[i] = &Value{Type: r.Primitive(types.Char), V: b}
	}
	return &Value{Type: r.GetStringType(), V: &ArrayValue{Elems: elems}}
}

func StringBytes(v *Value) []byte {
	arr := v.V.(*ArrayValue)
	buf := make([]byte, len(arr.Elems))
	for i, e := range arr.Elems {
		buf[i] = e.V.(byte)
	}
	return buf
}
