package ast

import (
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// DefaultValueExpr builds the zero-value expression for t (spec.md §3,
// Variable: "a declared-but-uninitialized variable holds its type's
// default value"). It lives in package ast, not package types, because
// producing a default for a compound type means constructing Expr nodes,
// and package types cannot import package ast, which already imports types.
func DefaultValueExpr(r *types.Registry, t *types.Type) *Expr {
	t = r.Canonicalize(t)
	switch t.Kind {
	case types.Void:
		return nil
	case types.Bool:
		e := NewBoolConst(token.Pos{}, false)
		e.Type = t
		return e
	case types.Char:
		e := NewCharConst(token.Pos{}, 0)
		e.Type = t
		return e
	case types.Float32, types.Float64:
		e := NewFloatConst(token.Pos{}, 0, t.Kind == types.Float32)
		e.Type = t
		return e
	case types.Int8, types.Int16, types.Int32, types.Int64,
		types.Uint8, types.Uint16, types.Uint32, types.Uint64:
		e := NewIntConst(token.Pos{}, 0, !t.Kind.IsUnsigned())
		e.Type = t
		return e
	case types.EnumKind:
		et := t.T.(*types.EnumType)
		if len(et.Members) == 0 {
			e := NewIntConst(token.Pos{}, 0, true)
			e.Type = t
			return e
		}
		e := NewIntConst(token.Pos{}, uint64(et.Members[0].Value), !et.Members[0].Unsigned)
		e.Type = t
		return e
	case types.StructKind:
		st := t.T.(*types.StructType)
		elems := make([]*Expr, len(st.Members))
		for i, m := range st.Members {
			elems[i] = DefaultValueExpr(r, m.Type)
		}
		e := &Expr{Kind: CompoundLit, Type: t, E: &CompoundLitExpr{Elems: elems}}
		return e
	case types.TupleKind:
		tt := t.T.(*types.TupleType)
		elems := make([]*Expr, len(tt.Elems))
		for i, el := range tt.Elems {
			elems[i] = DefaultValueExpr(r, el)
		}
		return &Expr{Kind: CompoundLit, Type: t, E: &CompoundLitExpr{Elems: elems}}
	case types.ArrayKind:
		return createArray(r, t)
	case types.MapKind:
		return &Expr{Kind: MapConst, Type: t, E: &MapConstExpr{}}
	case types.UnionKind:
		ut := t.T.(*types.UnionType)
		payload := DefaultValueExpr(r, ut.Options[0])
		return &Expr{Kind: UnionConst, Type: t, E: &UnionConstExpr{Payload: payload, OptionIndex: 0}}
	default:
		return nil
	}
}

// createArray builds an empty array default: a single zero-length compound
// literal, whatever the array's dimension (spec.md §12, supplemented from
// original_source/src/AstInterpreter.cpp's createArray). An array's
// default is empty, not a fixed-size zero-filled buffer: array length is
// dynamic and grows only through explicit `new` or element assignment.
func createArray(r *types.Registry, t *types.Type) *Expr {
	return &Expr{Kind: CompoundLit, Type: t, E: &CompoundLitExpr{Elems: nil}}
}
