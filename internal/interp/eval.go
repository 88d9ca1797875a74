package interp

import (
	"fmt"
	"math"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// eval evaluates e, implementing spec.md §4.7's expression semantics.
func (in *Interp) eval(e *ast.Expr) (*Value, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case ast.IntConst:
		v := e.E.(*ast.IntConstExpr)
		return &Value{Type: e.Type, V: int64(v.UVal)}, nil

	case ast.FloatConst:
		return &Value{Type: e.Type, V: e.E.(*ast.FloatConstExpr).Val}, nil

	case ast.BoolConst:
		return &Value{Type: e.Type, V: e.E.(*ast.BoolConstExpr).Val}, nil

	case ast.CharConst:
		return &Value{Type: e.Type, V: e.E.(*ast.CharConstExpr).Val}, nil

	case ast.StringConst:
		return NewString(in.Reg, e.E.(*ast.StringConstExpr).Val), nil

	case ast.CompoundLit:
		return in.evalCompoundLit(e)

	case ast.MapConst:
		mc := e.E.(*ast.MapConstExpr)
		mv := &MapValue{}
		for i := range mc.Keys {
			k, err := in.eval(mc.Keys[i])
			if err != nil {
				return nil, err
			}
			v, err := in.eval(mc.Values[i])
			if err != nil {
				return nil, err
			}
			mv.Keys = append(mv.Keys, Copy(k))
			mv.Vals = append(mv.Vals, Copy(v))
		}
		return &Value{Type: e.Type, V: mv}, nil

	case ast.UnionConst:
		uc := e.E.(*ast.UnionConstExpr)
		payload, err := in.eval(uc.Payload)
		if err != nil {
			return nil, err
		}
		return &Value{Type: e.Type, V: &UnionValue{OptionIndex: uc.OptionIndex, Payload: Copy(payload)}}, nil

	case ast.VarRef:
		v := in.lookupVar(e.E.(*ast.VarRefExpr).Var)
		return v, nil

	case ast.SubrRef:
		sr := e.E.(*ast.SubrRefExpr)
		var recv *Value
		if sr.Receiver != nil {
			rv, err := in.eval(sr.Receiver)
			if err != nil {
				return nil, err
			}
			recv = rv
		} else if len(in.frames) > 0 {
			recv = in.frame().This
		}
		return &Value{Type: e.Type, V: &CallableValue{Decl: sr.Decl, Receiver: recv}}, nil

	case ast.MemberExprKind:
		me := e.E.(*ast.StructMemberExpr)
		base, err := in.eval(me.Base)
		if err != nil {
			return nil, err
		}
		sv := base.V.(*StructValue)
		return sv.Fields[me.MemberIdx], nil

	case ast.IndexExprKind:
		return in.evalIndex(e)

	case ast.UnaryExprKind:
		return in.evalUnary(e)

	case ast.BinaryExprKind:
		return in.evalBinary(e)

	case ast.CallExprKind:
		return in.evalCall(e)

	case ast.IsTestKind:
		it := e.E.(*ast.IsTestExpr)
		base, err := in.eval(it.Base)
		if err != nil {
			return nil, err
		}
		uv := base.V.(*UnionValue)
		return &Value{Type: e.Type, V: uv.OptionIndex == it.OptionIndex}, nil

	case ast.AsNarrowKind:
		an := e.E.(*ast.AsNarrowExpr)
		base, err := in.eval(an.Base)
		if err != nil {
			return nil, err
		}
		uv := base.V.(*UnionValue)
		if uv.OptionIndex != an.OptionIndex {
			return nil, rtErrf(e.Pos, "union does not hold a %s", an.OptionType)
		}
		return Copy(uv.Payload), nil

	case ast.ThisRefKind:
		return in.frame().This, nil

	case ast.NewArrayKind:
		return in.evalNewArray(e)

	case ast.ArrayLenKind:
		al := e.E.(*ast.ArrayLenExpr)
		base, err := in.eval(al.Base)
		if err != nil {
			return nil, err
		}
		arr := base.V.(*ArrayValue)
		for d := 0; d < al.Dim; d++ {
			if len(arr.Elems) == 0 {
				return &Value{Type: e.Type, V: int64(0)}, nil
			}
			arr = arr.Elems[0].V.(*ArrayValue)
		}
		return &Value{Type: e.Type, V: int64(len(arr.Elems))}, nil

	case ast.ConvertedKind:
		ce := e.E.(*ast.ConvertedExpr)
		inner, err := in.eval(ce.Inner)
		if err != nil {
			return nil, err
		}
		return convertValue(in.Reg, inner, e.Type), nil

	default:
		return nil, rtErrf(e.Pos, "unhandled expression kind %d", e.Kind)
	}
}

func (in *Interp) evalCompoundLit(e *ast.Expr) (*Value, error) {
	lit := e.E.(*ast.CompoundLitExpr)
	elems := make([]*Value, len(lit.Elems))
	for i, el := range lit.Elems {
		v, err := in.eval(el)
		if err != nil {
			return nil, err
		}
		elems[i] = Copy(v)
	}
	canon := in.Reg.Canonicalize(e.Type)
	switch canon.Kind {
	case types.StructKind:
		return &Value{Type: e.Type, V: &StructValue{Fields: elems}}, nil
	case types.TupleKind:
		return &Value{Type: e.Type, V: &TupleValue{Elems: elems}}, nil
	default:
		return &Value{Type: e.Type, V: &ArrayValue{Elems: elems}}, nil
	}
}

func (in *Interp) evalIndex(e *ast.Expr) (*Value, error) {
	ie := e.E.(*ast.IndexExprData)
	base, err := in.eval(ie.Base)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(ie.Index)
	if err != nil {
		return nil, err
	}
	switch p := base.V.(type) {
	case *ArrayValue:
		i := int(asInt(idx))
		if i < 0 || i >= len(p.Elems) {
			return nil, rtErrf(e.Pos, "array index %d out of range [0, %d)", i, len(p.Elems))
		}
		return p.Elems[i], nil
	case *MapValue:
		for i, k := range p.Keys {
			if valuesEqual(k, idx) {
				return p.Vals[i], nil
			}
		}
		// A read through a missing key inserts the element type's default
		// value, mirroring assign's insert-on-miss and the uniform lvalue
		// path a map index denotes (std::map::operator[] semantics).
		def, err := in.eval(ast.DefaultValueExpr(in.Reg, in.Reg.Canonicalize(base.Type).T.(*types.MapType).Value))
		if err != nil {
			return nil, err
		}
		p.Keys = append(p.Keys, Copy(idx))
		p.Vals = append(p.Vals, def)
		return def, nil
	case *TupleValue:
		i := int(asInt(idx))
		if i < 0 || i >= len(p.Elems) {
			return nil, rtErrf(e.Pos, "tuple index %d out of range [0, %d)", i, len(p.Elems))
		}
		return p.Elems[i], nil
	default:
		return nil, rtErrf(e.Pos, "value is not indexable")
	}
}

func (in *Interp) evalNewArray(e *ast.Expr) (*Value, error) {
	na := e.E.(*ast.NewArrayExpr)
	sizes := make([]int, len(na.Dims))
	for i, d := range na.Dims {
		v, err := in.eval(d)
		if err != nil {
			return nil, err
		}
		sizes[i] = int(asInt(v))
	}
	return in.buildArray(sizes, na.ElemType), nil
}

func (in *Interp) buildArray(sizes []int, elemType *types.Type) *Value {
	n := sizes[0]
	elems := make([]*Value, n)
	rest := sizes[1:]
	for i := range elems {
		if len(rest) == 0 {
			v, _ := in.eval(ast.DefaultValueExpr(in.Reg, elemType))
			elems[i] = Copy(v)
		} else {
			elems[i] = in.buildArray(rest, elemType)
		}
	}
	arrType := in.Reg.GetArrayType(elemType, len(sizes))
	return &Value{Type: arrType, V: &ArrayValue{Elems: elems}}
}

func (in *Interp) evalUnary(e *ast.Expr) (*Value, error) {
	ue := e.E.(*ast.UnaryOpExpr)
	operand, err := in.eval(ue.Operand)
	if err != nil {
		return nil, err
	}
	canon := in.Reg.Canonicalize(e.Type)
	switch ue.Op {
	case token.NOT:
		return &Value{Type: e.Type, V: !operand.V.(bool)}, nil
	case token.TILDE:
		return &Value{Type: e.Type, V: maskInt(^asInt(operand), canon.Kind)}, nil
	case token.MINUS:
		if canon.Kind.IsFloat() {
			return &Value{Type: e.Type, V: -asFloat(operand)}, nil
		}
		v := asInt(operand)
		if isSignedMin(v, canon.Kind) {
			return nil, rtErrf(e.Pos, "negation of the minimum value of %s overflows", canon)
		}
		return &Value{Type: e.Type, V: maskInt(-v, canon.Kind)}, nil
	}
	return nil, rtErrf(e.Pos, "unhandled unary operator %s", ue.Op)
}

func isSignedMin(v int64, k types.Kind) bool {
	switch k {
	case types.Int8:
		return v == math.MinInt8
	case types.Int16:
		return v == math.MinInt16
	case types.Int32:
		return v == math.MinInt32
	case types.Int64:
		return v == math.MinInt64
	}
	return false
}

func (in *Interp) evalBinary(e *ast.Expr) (*Value, error) {
	be := e.E.(*ast.BinaryOpExpr)
	l, err := in.eval(be.Left)
	if err != nil {
		return nil, err
	}
	r, err := in.eval(be.Right)
	if err != nil {
		return nil, err
	}
	if be.Op == token.PLUS {
		if av, ok := l.V.(*ArrayValue); ok {
			return concatArrays(e, av, r)
		}
	}
	switch be.Op {
	case token.ANDAND:
		return &Value{Type: e.Type, V: l.V.(bool) && r.V.(bool)}, nil
	case token.OROR:
		return &Value{Type: e.Type, V: l.V.(bool) || r.V.(bool)}, nil
	case token.EQ:
		return &Value{Type: e.Type, V: valuesEqual(l, r)}, nil
	case token.NE:
		return &Value{Type: e.Type, V: !valuesEqual(l, r)}, nil
	}

	opType := in.Reg.Canonicalize(e.Type)
	leftCanon := in.Reg.Canonicalize(be.Left.Type)
	if leftCanon.Kind.IsFloat() || opType.Kind.IsFloat() {
		lf, rf := asFloat(l), asFloat(r)
		switch be.Op {
		case token.LT:
			return &Value{Type: e.Type, V: lf < rf}, nil
		case token.LE:
			return &Value{Type: e.Type, V: lf <= rf}, nil
		case token.GT:
			return &Value{Type: e.Type, V: lf > rf}, nil
		case token.GE:
			return &Value{Type: e.Type, V: lf >= rf}, nil
		case token.PLUS:
			return &Value{Type: e.Type, V: lf + rf}, nil
		case token.MINUS:
			return &Value{Type: e.Type, V: lf - rf}, nil
		case token.STAR:
			return &Value{Type: e.Type, V: lf * rf}, nil
		case token.SLASH:
			return &Value{Type: e.Type, V: lf / rf}, nil
		}
		return nil, rtErrf(e.Pos, "unhandled float operator %s", be.Op)
	}

	li, ri := asInt(l), asInt(r)
	switch be.Op {
	case token.LT:
		return &Value{Type: e.Type, V: compareInt(li, ri, leftCanon.Kind) < 0}, nil
	case token.LE:
		return &Value{Type: e.Type, V: compareInt(li, ri, leftCanon.Kind) <= 0}, nil
	case token.GT:
		return &Value{Type: e.Type, V: compareInt(li, ri, leftCanon.Kind) > 0}, nil
	case token.GE:
		return &Value{Type: e.Type, V: compareInt(li, ri, leftCanon.Kind) >= 0}, nil
	case token.PLUS:
		return &Value{Type: e.Type, V: maskInt(li+ri, opType.Kind)}, nil
	case token.MINUS:
		return &Value{Type: e.Type, V: maskInt(li-ri, opType.Kind)}, nil
	case token.STAR:
		return &Value{Type: e.Type, V: maskInt(li*ri, opType.Kind)}, nil
	case token.SLASH:
		if ri == 0 {
			return nil, rtErrf(e.Pos, "integer division by zero")
		}
		return &Value{Type: e.Type, V: maskInt(intDiv(li, ri, opType.Kind), opType.Kind)}, nil
	case token.PERCENT:
		if ri == 0 {
			return nil, rtErrf(e.Pos, "integer division by zero")
		}
		return &Value{Type: e.Type, V: maskInt(li%ri, opType.Kind)}, nil
	case token.AMP:
		return &Value{Type: e.Type, V: maskInt(li&ri, opType.Kind)}, nil
	case token.PIPE:
		return &Value{Type: e.Type, V: maskInt(li|ri, opType.Kind)}, nil
	case token.CARET:
		return &Value{Type: e.Type, V: maskInt(li^ri, opType.Kind)}, nil
	case token.SHL:
		return &Value{Type: e.Type, V: maskInt(li<<uint(ri), opType.Kind)}, nil
	case token.SHR:
		return &Value{Type: e.Type, V: maskInt(li>>uint(ri), opType.Kind)}, nil
	}
	return nil, rtErrf(e.Pos, "unhandled integer operator %s", be.Op)
}

func concatArrays(e *ast.Expr, left *ArrayValue, r *Value) (*Value, error) {
	elems := make([]*Value, 0, len(left.Elems)+1)
	for _, el := range left.Elems {
		elems = append(elems, Copy(el))
	}
	if rArr, ok := r.V.(*ArrayValue); ok {
		for _, el := range rArr.Elems {
			elems = append(elems, Copy(el))
		}
	} else {
		elems = append(elems, Copy(r))
	}
	return &Value{Type: e.Type, V: &ArrayValue{Elems: elems}}, nil
}

func (in *Interp) evalCall(e *ast.Expr) (*Value, error) {
	ce := e.E.(*ast.CallExprData)
	callee, err := in.eval(ce.Callee)
	if err != nil {
		return nil, err
	}
	cv := callee.V.(*CallableValue)
	subr := cv.Decl.(*ast.Subroutine)
	args := make([]*Value, len(ce.Args))
	for i, a := range ce.Args {
		v, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return in.Invoke(subr, cv.Receiver, args)
}

// assign writes rv into the storage location denoted by lhs
// (spec.md §4.7, lvalue evaluation).
func (in *Interp) assign(lhs *ast.Expr, rv *Value) error {
	switch lhs.Kind {
	case ast.VarRef:
		in.setVar(lhs.E.(*ast.VarRefExpr).Var, rv)
		return nil
	case ast.ThisRefKind:
		in.frame().This = rv
		return nil
	case ast.MemberExprKind:
		me := lhs.E.(*ast.StructMemberExpr)
		base, err := in.eval(me.Base)
		if err != nil {
			return err
		}
		base.V.(*StructValue).Fields[me.MemberIdx] = rv
		return nil
	case ast.IndexExprKind:
		ie := lhs.E.(*ast.IndexExprData)
		base, err := in.eval(ie.Base)
		if err != nil {
			return err
		}
		idx, err := in.eval(ie.Index)
		if err != nil {
			return err
		}
		switch p := base.V.(type) {
		case *ArrayValue:
			i := int(asInt(idx))
			if i < 0 || i >= len(p.Elems) {
				return rtErrf(lhs.Pos, "array index %d out of range [0, %d)", i, len(p.Elems))
			}
			p.Elems[i] = rv
			return nil
		case *MapValue:
			for i, k := range p.Keys {
				if valuesEqual(k, idx) {
					p.Vals[i] = rv
					return nil
				}
			}
			p.Keys = append(p.Keys, Copy(idx))
			p.Vals = append(p.Vals, rv)
			return nil
		}
		return rtErrf(lhs.Pos, "value is not assignable by index")
	case ast.CompoundLit:
		lit := lhs.E.(*ast.CompoundLitExpr)
		elems, err := compoundElems(rv)
		if err != nil {
			return rtErrf(lhs.Pos, "%s", err)
		}
		if len(elems) != len(lit.Elems) {
			return rtErrf(lhs.Pos, "compound assignment arity mismatch: %d targets, %d values", len(lit.Elems), len(elems))
		}
		for i, target := range lit.Elems {
			if err := in.assign(target, elems[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return rtErrf(lhs.Pos, "expression is not assignable")
	}
}

// compoundElems unwraps the element slice of rv's tuple/array/struct
// payload, for a compound-literal lvalue's element-by-element assignment
// (spec.md §4.7, "A compound-literal lvalue assigns element-by-element").
func compoundElems(rv *Value) ([]*Value, error) {
	switch p := rv.V.(type) {
	case *TupleValue:
		return p.Elems, nil
	case *ArrayValue:
		return p.Elems, nil
	case *StructValue:
		return p.Fields, nil
	default:
		return nil, fmt.Errorf("value is not a compound type")
	}
}
