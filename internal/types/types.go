// Package types implements C3 of the core pipeline: the type system
// described in spec.md §3/§4.3 — primitive, struct, union, tuple, array,
// map, callable, enum and alias types, canonical interning of structural
// types, and the conversion predicate. Default values of every type are
// produced by package ast (DefaultValueExpr), which can build Expr nodes.
package types

import (
	"fmt"
	"math"
)

// Kind tags the variant of a Type.
type Kind int

const (
	Void Kind = iota
	Bool
	Char // unsigned byte
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	ErrorKind

	StructKind
	UnionKind
	TupleKind
	ArrayKind
	MapKind
	CallableKind
	EnumKind
	AliasKind
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case ErrorKind:
		return "error"
	case StructKind:
		return "struct"
	case UnionKind:
		return "union"
	case TupleKind:
		return "tuple"
	case ArrayKind:
		return "array"
	case MapKind:
		return "map"
	case CallableKind:
		return "callable"
	case EnumKind:
		return "enum"
	case AliasKind:
		return "alias"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) IsInteger() bool {
	switch k {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

func (k Kind) IsFloat() bool { return k == Float32 || k == Float64 }

func (k Kind) IsNumeric() bool { return k.IsInteger() || k.IsFloat() }

func (k Kind) IsUnsigned() bool {
	switch k {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// Width returns the bit width of an integer/float/bool/char primitive, or
// 0 for a non-primitive kind.
func (k Kind) Width() int {
	switch k {
	case Bool, Char, Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64:
		return 64
	default:
		return 0
	}
}

// Range returns an integer kind's representable bounds: (min, max) for a
// signed kind, (0, maxu) for an unsigned one. Non-integer kinds get the
// zero range.
func (k Kind) Range() (min, max int64, maxu uint64) {
	w := k.Width()
	if w == 0 {
		return 0, 0, 0
	}
	if k.IsUnsigned() {
		if w == 64 {
			return 0, 0, math.MaxUint64
		}
		return 0, 0, uint64(1)<<uint(w) - 1
	}
	if w == 64 {
		return math.MinInt64, math.MaxInt64, 0
	}
	max = int64(1)<<uint(w-1) - 1
	min = -max - 1
	return min, max, 0
}

// IntFits reports whether an integer constant carrying sval/uval (per the
// literal's own signed-ness) is representable in k without truncation
// (spec.md §4.3, "IntConstant.convert(t) performs overflow detection
// against the target width").
func IntFits(k Kind, sval int64, uval uint64, signed bool) bool {
	if !k.IsInteger() {
		return true
	}
	min, max, maxu := k.Range()
	if k.IsUnsigned() {
		if signed {
			if sval < 0 {
				return false
			}
			return uint64(sval) <= maxu
		}
		return uval <= maxu
	}
	if signed {
		return sval >= min && sval <= max
	}
	if uval > uint64(math.MaxInt64) {
		return false
	}
	v := int64(uval)
	return v >= min && v <= max
}

// Type is a tagged value: Kind plus an optional structural payload. For
// the primitive kinds T is nil; structural/nominal kinds carry one of the
// *XxxType payloads below.
type Type struct {
	Kind Kind
	T    any
}

type Member struct {
	Name     string
	Type     *Type
	Composed bool
}

// Subroutine is the minimal description of a member subroutine's signature
// a struct type needs to carry (spec.md §3, Struct). The full declaration
// (body, scope) lives in package ast; this is an opaque handle to it.
type Subroutine struct {
	Name string
	Type *Type // always Kind == CallableKind
	Decl any   // *ast.Subroutine, opaque to avoid an import cycle
}

type StructType struct {
	id         int
	Name       string
	Enclosing  any // *scope.Scope, kept as any to avoid import cycle risk surface
	Members    []*Member
	Subroutine []*Subroutine
}

// UnionType is nominal: "ordered set of option types (all distinct after
// canonicalization)" (spec.md §3).
type UnionType struct {
	id      int
	Options []*Type
}

type TupleType struct {
	Elems []*Type
}

type ArrayType struct {
	Elem *Type
	Dim  int
}

type MapType struct {
	Key   *Type
	Value *Type
}

type CallableType struct {
	Pure     bool // true = function (pure), false = procedure (impure)
	Receiver *Type
	Params   []*Type
	Ret      *Type
}

type EnumMember struct {
	Name     string
	Value    int64
	Unsigned bool
}

type EnumType struct {
	id      int
	Name    string
	Members []EnumMember
}

type AliasType struct {
	Name       string
	Underlying *Type
}

// Registry is the global type interning registry described in spec.md §3:
// structural types (tuple, array, map, callable) are interned so that two
// structurally-equal specifications yield the same handle; struct, union,
// enum and alias are nominal, identified by declaration site. A Registry
// is created once per compilation and passed explicitly rather than held
// in a package-level singleton (spec.md §9).
type Registry struct {
	primitives map[Kind]*Type

	arrays    map[string]*Type
	tuples    map[string]*Type
	maps      map[string]*Type
	callables map[string]*Type

	structs []*Type
	unions  []*Type
	enums   []*Type
	aliases []*Type

	stringType *Type
	nextID     int
}

func NewRegistry() *Registry {
	r := &Registry{
		primitives: make(map[Kind]*Type),
		arrays:     make(map[string]*Type),
		tuples:     make(map[string]*Type),
		maps:       make(map[string]*Type),
		callables:  make(map[string]*Type),
	}
	for _, k := range []Kind{
		Void, Bool, Char, Int8, Int16, Int32, Int64,
		Uint8, Uint16, Uint32, Uint64, Float32, Float64, ErrorKind,
	} {
		r.primitives[k] = &Type{Kind: k}
	}
	r.stringType = r.GetArrayType(r.primitives[Char], 1)
	return r
}

// Primitive returns the canonical singleton for a built-in primitive kind.
func (r *Registry) Primitive(k Kind) *Type {
	t, ok := r.primitives[k]
	if !ok {
		panic(fmt.Sprintf("types: %s is not a primitive kind", k))
	}
	return t
}

var primitiveNames = map[string]Kind{
	"void": Void, "bool": Bool, "char": Char,
	"int8": Int8, "int16": Int16, "int32": Int32, "int64": Int64,
	"uint8": Uint8, "uint16": Uint16, "uint32": Uint32, "uint64": Uint64,
	"float32": Float32, "float64": Float64,
	"error": ErrorKind,
}

// PrimitiveByName returns the canonical type handle for a primitive type
// name, or (nil, false) if name does not name a primitive. "string" is
// handled specially: it returns GetStringType(), the canonical
// array-of-char, dim=1 (spec.md §4.3).
func (r *Registry) PrimitiveByName(name string) (*Type, bool) {
	if name == "string" {
		return r.GetStringType(), true
	}
	k, ok := primitiveNames[name]
	if !ok {
		return nil, false
	}
	return r.Primitive(k), true
}

func ptrKey(t *Type) string { return fmt.Sprintf("%p", t) }

// GetArrayType interns and returns an array type. string is defined as
// GetArrayType(char, 1) (spec.md §4.3).
func (r *Registry) GetArrayType(elem *Type, dim int) *Type {
	elem = r.Canonicalize(elem)
	key := fmt.Sprintf("%s#%d", ptrKey(elem), dim)
	if t, ok := r.arrays[key]; ok {
		return t
	}
	t := &Type{Kind: ArrayKind, T: &ArrayType{Elem: elem, Dim: dim}}
	r.arrays[key] = t
	return t
}

// GetStringType returns the canonical string type: array of char, dim 1.
func (r *Registry) GetStringType() *Type { return r.stringType }

// GetTupleType interns a tuple type. A singleton tuple is not equivalent
// to its sole element type (spec.md §4.3): they carry distinct Kinds, so
// no special-casing is required here.
func (r *Registry) GetTupleType(elems []*Type) *Type {
	canon := make([]*Type, len(elems))
	key := "T"
	for i, e := range elems {
		canon[i] = r.Canonicalize(e)
		key += "|" + ptrKey(canon[i])
	}
	if t, ok := r.tuples[key]; ok {
		return t
	}
	t := &Type{Kind: TupleKind, T: &TupleType{Elems: canon}}
	r.tuples[key] = t
	return t
}

func (r *Registry) GetMapType(key, value *Type) *Type {
	key = r.Canonicalize(key)
	value = r.Canonicalize(value)
	cacheKey := ptrKey(key) + "#" + ptrKey(value)
	if t, ok := r.maps[cacheKey]; ok {
		return t
	}
	t := &Type{Kind: MapKind, T: &MapType{Key: key, Value: value}}
	r.maps[cacheKey] = t
	return t
}

func (r *Registry) GetCallableType(pure bool, receiver *Type, params []*Type, ret *Type) *Type {
	if receiver != nil {
		receiver = r.Canonicalize(receiver)
	}
	ret = r.Canonicalize(ret)
	key := fmt.Sprintf("%v#%s#", pure, ptrKey(receiver))
	canonParams := make([]*Type, len(params))
	for i, p := range params {
		canonParams[i] = r.Canonicalize(p)
		key += ptrKey(canonParams[i]) + ","
	}
	key += "#" + ptrKey(ret)
	if t, ok := r.callables[key]; ok {
		return t
	}
	t := &Type{Kind: CallableKind, T: &CallableType{Pure: pure, Receiver: receiver, Params: canonParams, Ret: ret}}
	r.callables[key] = t
	return t
}

// NewStructType creates a new nominal struct type. Struct identity is per
// declaration site: calling this twice for "the same" struct produces two
// distinct, unequal types.
func (r *Registry) NewStructType(name string, enclosing any) *Type {
	r.nextID++
	st := &StructType{id: r.nextID, Name: name, Enclosing: enclosing}
	t := &Type{Kind: StructKind, T: st}
	r.structs = append(r.structs, t)
	return t
}

// NewUnionType creates a nominal union type from an ordered list of option
// types. It is an error for two options to canonicalize to the same type.
func (r *Registry) NewUnionType(options []*Type) (*Type, error) {
	r.nextID++
	canon := make([]*Type, len(options))
	for i, o := range options {
		canon[i] = r.Canonicalize(o)
		for j := 0; j < i; j++ {
			if canon[j] == canon[i] {
				return nil, fmt.Errorf("duplicate union option %s", canon[i])
			}
		}
	}
	t := &Type{Kind: UnionKind, T: &UnionType{id: r.nextID, Options: canon}}
	r.unions = append(r.unions, t)
	return t, nil
}

func (r *Registry) NewEnumType(name string, members []EnumMember) *Type {
	r.nextID++
	t := &Type{Kind: EnumKind, T: &EnumType{id: r.nextID, Name: name, Members: members}}
	r.enums = append(r.enums, t)
	return t
}

func (r *Registry) NewAliasType(name string, underlying *Type) *Type {
	t := &Type{Kind: AliasKind, T: &AliasType{Name: name, Underlying: underlying}}
	r.aliases = append(r.aliases, t)
	return t
}

// Canonicalize strips aliases and returns the interned handle.
func (r *Registry) Canonicalize(t *Type) *Type {
	for t != nil && t.Kind == AliasKind {
		t = t.T.(*AliasType).Underlying
	}
	return t
}

// TypesSame reports equality on canonical handles: pointer equality
// suffices for primitives and interned structural types; union (the one
// nominal type whose occurrences are not guaranteed to share a pointer)
// falls back to a deep, order-sensitive comparison of its options.
func TypesSame(r *Registry, a, b *Type) bool {
	a = r.Canonicalize(a)
	b = r.Canonicalize(b)
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	if a.Kind == UnionKind {
		au, bu := a.T.(*UnionType), b.T.(*UnionType)
		if len(au.Options) != len(bu.Options) {
			return false
		}
		for i := range au.Options {
			if !TypesSame(r, au.Options[i], bu.Options[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// CanConvert implements the total predicate A.canConvert(B) of spec.md
// §3/§4.3. Compound-literal-to-struct/tuple/array conversions are
// checked against the literal's elements by package ast, which has the
// expression tree; this function covers type-to-type convertibility.
func CanConvert(r *Registry, from, to *Type) bool {
	from = r.Canonicalize(from)
	to = r.Canonicalize(to)
	if TypesSame(r, from, to) {
		return true
	}
	if to.Kind == UnionKind {
		count := 0
		for _, opt := range to.T.(*UnionType).Options {
			if CanConvert(r, from, opt) {
				count++
			}
		}
		return count == 1
	}
	if from.Kind == EnumKind && to.Kind.IsInteger() {
		return true
	}
	if from.Kind.IsInteger() && to.Kind.IsInteger() {
		return true
	}
	if from.Kind.IsInteger() && to.Kind.IsFloat() {
		return true
	}
	if from.Kind.IsFloat() && to.Kind.IsInteger() {
		return true
	}
	if from.Kind.IsFloat() && to.Kind.IsFloat() {
		return true
	}
	if from.Kind == Char && to.Kind.IsInteger() {
		return true
	}
	if from.Kind.IsInteger() && to.Kind == Char {
		return true
	}
	return false
}

func (t *Type) String() string {
	switch t.Kind {
	case StructKind:
		return t.T.(*StructType).Name
	case UnionKind:
		u := t.T.(*UnionType)
		s := ""
		for i, o := range u.Options {
			if i > 0 {
				s += "|"
			}
			s += o.String()
		}
		return "(" + s + ")"
	case TupleKind:
		tt := t.T.(*TupleType)
		s := ""
		for i, e := range tt.Elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return "(" + s + ")"
	case ArrayKind:
		at := t.T.(*ArrayType)
		if at.Elem.Kind == Char && at.Dim == 1 {
			return "string"
		}
		s := at.Elem.String()
		for i := 0; i < at.Dim; i++ {
			s += "[]"
		}
		return s
	case MapKind:
		mt := t.T.(*MapType)
		return fmt.Sprintf("map[%s]%s", mt.Key, mt.Value)
	case CallableKind:
		ct := t.T.(*CallableType)
		kw := "func"
		if !ct.Pure {
			kw = "proc"
		}
		s := kw + "("
		for i, p := range ct.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ") " + ct.Ret.String()
	case EnumKind:
		return t.T.(*EnumType).Name
	case AliasKind:
		return t.T.(*AliasType).Name
	default:
		return t.Kind.String()
	}
}

// IsStringType reports whether t is the canonical string type
// (array of char, dim 1).
func IsStringType(r *Registry, t *Type) bool {
	return TypesSame(r, r.Canonicalize(t), r.GetStringType())
}
