package interp

import "github.com/arbor-lang/arbor/internal/types"

func asInt(v *Value) int64 {
	switch x := v.V.(type) {
	case int64:
		return x
	case byte:
		return int64(x)
	case float64:
		return int64(x)
	}
	return 0
}

func asFloat(v *Value) float64 {
	switch x := v.V.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case byte:
		return float64(x)
	}
	return 0
}

// maskInt truncates v to k's bit width, sign-extending signed kinds and
// zero-extending unsigned ones, so repeated arithmetic stays within the
// declared type's range (spec.md §4.4).
func maskInt(v int64, k types.Kind) int64 {
	w := k.Width()
	if w == 0 || w >= 64 {
		return v
	}
	mask := int64(1)<<uint(w) - 1
	masked := v & mask
	if !k.IsUnsigned() {
		signBit := int64(1) << uint(w-1)
		if masked&signBit != 0 {
			masked |= ^mask
		}
	}
	return masked
}

func compareInt(a, b int64, k types.Kind) int {
	if k.IsUnsigned() {
		ua, ub := uint64(a), uint64(b)
		switch {
		case ua < ub:
			return -1
		case ua > ub:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func intDiv(a, b int64, k types.Kind) int64 {
	if k.IsUnsigned() {
		return int64(uint64(a) / uint64(b))
	}
	return a / b
}

// convertValue implements the runtime side of spec.md §4.3's conversion
// predicate: int widening/narrowing, int<->float, char<->int, and
// injection into a union (picking the one option the source converts to;
// ambiguity is already rejected at resolve time).
func convertValue(reg *types.Registry, v *Value, target *types.Type) *Value {
	canon := reg.Canonicalize(target)
	if canon.Kind == types.UnionKind {
		for i, opt := range canon.T.(*types.UnionType).Options {
			if types.CanConvert(reg, v.Type, opt) {
				return &Value{Type: target, V: &UnionValue{OptionIndex: i, Payload: convertValue(reg, v, opt)}}
			}
		}
		return &Value{Type: target, V: v.V}
	}
	switch {
	case canon.Kind.IsFloat():
		return &Value{Type: target, V: asFloat(v)}
	case canon.Kind == types.Char:
		return &Value{Type: target, V: byte(asInt(v))}
	case canon.Kind.IsInteger():
		return &Value{Type: target, V: maskInt(asInt(v), canon.Kind)}
	case canon.Kind == types.EnumKind:
		return &Value{Type: target, V: asInt(v)}
	default:
		return &Value{Type: target, V: v.V}
	}
}

// valuesEqual is deep structural equality over runtime values, used by
// `==`, switch case matching, and map key lookup.
func valuesEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.V.(type) {
	case bool:
		bv, ok := b.V.(bool)
		return ok && av == bv
	case byte:
		bv, ok := b.V.(byte)
		return ok && av == bv
	case int64:
		bv, ok := b.V.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.V.(float64)
		return ok && av == bv
	case *ArrayValue:
		bv, ok := b.V.(*ArrayValue)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *StructValue:
		bv, ok := b.V.(*StructValue)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if !valuesEqual(av.Fields[i], bv.Fields[i]) {
				return false
			}
		}
		return true
	case *TupleValue:
		bv, ok := b.V.(*TupleValue)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *MapValue:
		bv, ok := b.V.(*MapValue)
		if !ok || len(av.Keys) != len(bv.Keys) {
			return false
		}
		for i, k := range av.Keys {
			found := false
			for j, k2 := range bv.Keys {
				if valuesEqual(k, k2) && valuesEqual(av.Vals[i], bv.Vals[j]) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case *UnionValue:
		bv, ok := b.V.(*UnionValue)
		return ok && av.OptionIndex == bv.OptionIndex && valuesEqual(av.Payload, bv.Payload)
	default:
		return a.V == b.V
	}
}

// sameUnionOption reports whether uv's active option (scoped to
// scrutineeType's union definition) canonicalizes to optType.
func sameUnionOption(reg *types.Registry, optType *types.Type, uv *UnionValue, scrutineeType *types.Type) bool {
	canon := reg.Canonicalize(scrutineeType)
	ut, ok := canon.T.(*types.UnionType)
	if !ok || uv.OptionIndex < 0 || uv.OptionIndex >= len(ut.Options) {
		return false
	}
	return types.TypesSame(reg, ut.Options[uv.OptionIndex], optType)
}
