package types

import "testing"

func TestArrayInterning(t *testing.T) {
	r := NewRegistry()
	a1 := r.GetArrayType(r.Primitive(Int32), 1)
	a2 := r.GetArrayType(r.Primitive(Int32), 1)
	if a1 != a2 {
		t.Fatal("expected the same interned handle for two identical array specs")
	}
	a3 := r.GetArrayType(r.Primitive(Int32), 2)
	if a1 == a3 {
		t.Fatal("arrays of different dimension must not be interned together")
	}
}

func TestStringIsArrayOfCharDimOne(t *testing.T) {
	r := NewRegistry()
	s := r.GetStringType()
	want := r.GetArrayType(r.Primitive(Char), 1)
	if s != want {
		t.Fatal("string must be the canonical array-of-char, dim=1 handle")
	}
}

func TestTupleSingletonNotEquivalentToElement(t *testing.T) {
	r := NewRegistry()
	elem := r.Primitive(Int32)
	tuple := r.GetTupleType([]*Type{elem})
	if TypesSame(r, tuple, elem) {
		t.Fatal("a singleton tuple must not equal its element type")
	}
}

func TestCallableInterning(t *testing.T) {
	r := NewRegistry()
	c1 := r.GetCallableType(true, nil, []*Type{r.Primitive(Int32)}, r.Primitive(Bool))
	c2 := r.GetCallableType(true, nil, []*Type{r.Primitive(Int32)}, r.Primitive(Bool))
	if c1 != c2 {
		t.Fatal("expected interned callable handles to be identical")
	}
}

func TestTypesSameReflexiveOnIdentity(t *testing.T) {
	r := NewRegistry()
	a := r.Primitive(Int64)
	if !TypesSame(r, a, a) {
		t.Fatal("TypesSame must be reflexive")
	}
}

func TestCanConvertReflexiveAndTransitiveThroughAlias(t *testing.T) {
	r := NewRegistry()
	base := r.Primitive(Int32)
	if !CanConvert(r, base, base) {
		t.Fatal("CanConvert must be reflexive on identity")
	}
	alias := r.NewAliasType("MyInt", base)
	if !CanConvert(r, alias, base) || !CanConvert(r, base, alias) {
		t.Fatal("alias must convert to and from its underlying type")
	}
}

func TestCanConvertIntegerToUnionWithExactlyOneMatch(t *testing.T) {
	r := NewRegistry()
	u, err := r.NewUnionType([]*Type{r.Primitive(Bool), r.Primitive(Int32)})
	if err != nil {
		t.Fatal(err)
	}
	if !CanConvert(r, r.Primitive(Int32), u) {
		t.Fatal("int32 should convert into a union with exactly one matching option")
	}
}

func TestCanConvertRejectsAmbiguousUnionInjection(t *testing.T) {
	r := NewRegistry()
	u, err := r.NewUnionType([]*Type{r.Primitive(Int32), r.Primitive(Int64)})
	if err != nil {
		t.Fatal(err)
	}
	if CanConvert(r, r.Primitive(Int8), u) {
		t.Fatal("int8 converts to both int32 and int64 options, so injection is ambiguous and must be rejected")
	}
}

func TestDuplicateUnionOptionRejected(t *testing.T) {
	r := NewRegistry()
	if _, err := r.NewUnionType([]*Type{r.Primitive(Int32), r.Primitive(Int32)}); err == nil {
		t.Fatal("expected an error for duplicate union options")
	}
}

func TestEnumConvertsToIntegerViaUnderlyingValue(t *testing.T) {
	r := NewRegistry()
	e := r.NewEnumType("Color", []EnumMember{{Name: "Red", Value: 0}})
	if !CanConvert(r, e, r.Primitive(Int64)) {
		t.Fatal("enum should convert to an integer type")
	}
}

func TestCharIntegerInterchange(t *testing.T) {
	r := NewRegistry()
	if !CanConvert(r, r.Primitive(Char), r.Primitive(Int32)) {
		t.Fatal("char should convert to int32")
	}
	if !CanConvert(r, r.Primitive(Int32), r.Primitive(Char)) {
		t.Fatal("int32 should convert to char")
	}
}
