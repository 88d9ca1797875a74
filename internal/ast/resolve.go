package ast

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// Ctx is the explicit compiler state threaded through resolution instead of
// package-level singletons (spec.md §9 redesign note).
type Ctx struct {
	Types *types.Registry
	Diags *diagnostics.Collector
}

func (c *Ctx) errorf(pos token.Pos, format string, args ...any) {
	c.Diags.Report(pos, diagnostics.ResolutionError, format, args...)
}

// declare shadow-checks n against sc's ancestors before inserting it,
// reporting a resolution error on either a shadow or a local collision
// (spec.md §4.2, invariant ii) instead of accepting the declaration
// silently.
func (c *Ctx) declare(sc *scope.Scope, n *scope.Name) {
	if err := sc.ShadowCheck(n.Ident); err != nil {
		c.errorf(n.Pos, "%s", err)
		return
	}
	if err := sc.Insert(n); err != nil {
		c.errorf(n.Pos, "%s", err)
	}
}

// LookupType resolves a type name visible from sc: a struct, enum, alias
// or primitive/string name.
func (c *Ctx) LookupType(sc *scope.Scope, name string) (*types.Type, error) {
	if t, ok := c.Types.PrimitiveByName(name); ok {
		return t, nil
	}
	n, err := sc.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	switch decl := n.Entity.(type) {
	case *StructDecl:
		return decl.Type, nil
	case *EnumDecl:
		return decl.Type, nil
	case *AliasDecl:
		return decl.Type, nil
	default:
		return nil, fmt.Errorf("%q does not name a type", name)
	}
}

// Coerce resolves e and, if its type differs from expected but converts to
// it, wraps it in a Converted node (spec.md §4.4, implicit conversion
// insertion).
func (c *Ctx) Coerce(sc *scope.Scope, e *Expr, expected *types.Type) *Expr {
	e = e.Resolve(c, sc)
	if e == nil || expected == nil {
		return e
	}
	if types.TypesSame(c.Types, e.Type, expected) {
		return e
	}
	if e.Kind == CompoundLit {
		if ok := c.fitCompoundLit(sc, e, expected); ok {
			return e
		}
	}
	if !types.CanConvert(c.Types, e.Type, expected) {
		c.errorf(e.Pos, "cannot convert %s to %s", e.Type, expected)
		return e
	}
	if e.Kind == IntConst && expected.Kind.IsInteger() {
		v := e.E.(*IntConstExpr)
		if !types.IntFits(expected.Kind, v.SVal, v.UVal, v.Signed) {
			if v.Signed {
				c.errorf(e.Pos, "constant %d overflows %s", v.SVal, expected)
			} else {
				c.errorf(e.Pos, "constant %d overflows %s", v.UVal, expected)
			}
			return e
		}
	}
	return &Expr{Kind: ConvertedKind, Pos: e.Pos, Type: expected, E: &ConvertedExpr{Inner: e}}
}

// fitCompoundLit assigns struct/tuple/array element types to an
// untyped compound literal against its expected type, elementwise
// (spec.md §4.3, compound-literal conversion rule).
func (c *Ctx) fitCompoundLit(sc *scope.Scope, e *Expr, expected *types.Type) bool {
	canon := c.Types.Canonicalize(expected)
	lit := e.E.(*CompoundLitExpr)
	switch canon.Kind {
	case types.StructKind:
		st := canon.T.(*types.StructType)
		if len(lit.Elems) != len(st.Members) {
			return false
		}
		for i, m := range st.Members {
			lit.Elems[i] = c.Coerce(sc, lit.Elems[i], m.Type)
		}
	case types.TupleKind:
		tt := canon.T.(*types.TupleType)
		if len(lit.Elems) != len(tt.Elems) {
			return false
		}
		for i, t := range tt.Elems {
			lit.Elems[i] = c.Coerce(sc, lit.Elems[i], t)
		}
	case types.ArrayKind:
		at := canon.T.(*types.ArrayType)
		elemType := at.Elem
		if at.Dim > 1 {
			elemType = c.Types.GetArrayType(at.Elem, at.Dim-1)
		}
		for i := range lit.Elems {
			lit.Elems[i] = c.Coerce(sc, lit.Elems[i], elemType)
		}
	default:
		return false
	}
	e.Type = expected
	return true
}

// Resolve type-checks e in scope sc, filling e.Type and binding names.
func (e *Expr) Resolve(ctx *Ctx, sc *scope.Scope) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case IntConst:
		if e.Type == nil {
			v := e.E.(*IntConstExpr)
			if v.Signed {
				e.Type = ctx.Types.Primitive(types.Int32)
			} else {
				e.Type = ctx.Types.Primitive(types.Uint32)
			}
		}
		return e

	case FloatConst:
		if e.Type == nil {
			if e.E.(*FloatConstExpr).Is32 {
				e.Type = ctx.Types.Primitive(types.Float32)
			} else {
				e.Type = ctx.Types.Primitive(types.Float64)
			}
		}
		return e

	case BoolConst:
		e.Type = ctx.Types.Primitive(types.Bool)
		return e

	case CharConst:
		e.Type = ctx.Types.Primitive(types.Char)
		return e

	case StringConst:
		e.Type = ctx.Types.GetStringType()
		return e

	case CompoundLit:
		lit := e.E.(*CompoundLitExpr)
		for i, el := range lit.Elems {
			lit.Elems[i] = el.Resolve(ctx, sc)
		}
		if len(lit.Elems) > 0 {
			e.Type = ctx.Types.GetArrayType(lit.Elems[0].Type, 1)
		}
		return e

	case MapConst:
		mc := e.E.(*MapConstExpr)
		var kt, vt *types.Type
		for i := range mc.Keys {
			mc.Keys[i] = mc.Keys[i].Resolve(ctx, sc)
			mc.Values[i] = mc.Values[i].Resolve(ctx, sc)
			if kt == nil {
				kt, vt = mc.Keys[i].Type, mc.Values[i].Type
			}
		}
		if kt != nil {
			e.Type = ctx.Types.GetMapType(kt, vt)
		}
		return e

	case UnionConst:
		uc := e.E.(*UnionConstExpr)
		uc.Payload = uc.Payload.Resolve(ctx, sc)
		return e

	case VarRef:
		vr := e.E.(*VarRefExpr)
		n, err := sc.Lookup(vr.Name)
		if err != nil {
			ctx.errorf(e.Pos, "undefined name %q", vr.Name)
			return e
		}
		if sub, ok := n.Entity.(*Subroutine); ok {
			return &Expr{Kind: SubrRef, Pos: e.Pos, Type: sub.Type, E: &SubrRefExpr{Kind: SubrFree, Decl: sub}}
		}
		v, ok := n.Entity.(*Variable)
		if !ok {
			ctx.errorf(e.Pos, "%q does not name a variable", vr.Name)
			return e
		}
		vr.Var = v
		e.Type = v.Type
		return e

	case SubrRef:
		sr := e.E.(*SubrRefExpr)
		if sr.Receiver != nil {
			sr.Receiver = sr.Receiver.Resolve(ctx, sc)
		}
		if sr.Decl != nil {
			e.Type = sr.Decl.Type
		}
		return e

	case MemberExprKind:
		me := e.E.(*StructMemberExpr)
		me.Base = me.Base.Resolve(ctx, sc)
		base := ctx.Types.Canonicalize(me.Base.Type)
		if base == nil || base.Kind != types.StructKind {
			ctx.errorf(e.Pos, "%s is not a struct", me.Base.Type)
			return e
		}
		st := base.T.(*types.StructType)
		for i, m := range st.Members {
			if m.Name == me.MemberName {
				me.MemberIdx = i
				e.Type = m.Type
				return e
			}
		}
		for _, meth := range st.Subroutine {
			if meth.Name == me.MemberName {
				// A bound method reference desugars into a SubrRef carrying
				// the receiver expression (spec.md §4.4, "StructMember ...
				// a bound subroutine reference").
				decl, _ := meth.Decl.(*Subroutine)
				return &Expr{
					Kind: SubrRef, Pos: e.Pos, Type: meth.Type,
					E: &SubrRefExpr{Kind: SubrMethod, Receiver: me.Base, Decl: decl},
				}
			}
		}
		ctx.errorf(e.Pos, "struct %s has no member %q", st.Name, me.MemberName)
		return e

	case IndexExprKind:
		ie := e.E.(*IndexExprData)
		ie.Base = ie.Base.Resolve(ctx, sc)
		ie.Index = ie.Index.Resolve(ctx, sc)
		base := ctx.Types.Canonicalize(ie.Base.Type)
		switch {
		case base != nil && base.Kind == types.ArrayKind:
			at := base.T.(*types.ArrayType)
			if at.Dim > 1 {
				e.Type = ctx.Types.GetArrayType(at.Elem, at.Dim-1)
			} else {
				e.Type = at.Elem
			}
		case base != nil && base.Kind == types.MapKind:
			e.Type = base.T.(*types.MapType).Value
		case base != nil && base.Kind == types.TupleKind:
			tt := base.T.(*types.TupleType)
			if ie.Index.Kind != IntConst {
				ctx.errorf(e.Pos, "tuple subscript must be an integer constant")
				return e
			}
			idx := int(ie.Index.E.(*IntConstExpr).UVal)
			if idx < 0 || idx >= len(tt.Elems) {
				ctx.errorf(e.Pos, "tuple index %d out of range [0, %d)", idx, len(tt.Elems))
				return e
			}
			e.Type = tt.Elems[idx]
		default:
			ctx.errorf(e.Pos, "%s is not indexable", ie.Base.Type)
		}
		return e

	case UnaryExprKind:
		ue := e.E.(*UnaryOpExpr)
		ue.Operand = ue.Operand.Resolve(ctx, sc)
		t, err := UnaryResultType(ctx.Types, ue.Op, ue.Operand.Type)
		if err != nil {
			ctx.errorf(e.Pos, "%s", err)
			return e
		}
		e.Type = t
		return e

	case BinaryExprKind:
		be := e.E.(*BinaryOpExpr)
		be.Left = be.Left.Resolve(ctx, sc)
		be.Right = be.Right.Resolve(ctx, sc)
		if be.Op == token.PLUS {
			lc := ctx.Types.Canonicalize(be.Left.Type)
			if lc != nil && lc.Kind == types.ArrayKind {
				e.Type = be.Left.Type
				return e
			}
			if types.IsStringType(ctx.Types, be.Left.Type) {
				e.Type = be.Left.Type
				return e
			}
		}
		t, err := BinaryResultType(ctx.Types, be.Op, be.Left.Type, be.Right.Type)
		if err != nil {
			ctx.errorf(e.Pos, "%s", err)
			return e
		}
		e.Type = t
		return e

	case CallExprKind:
		ce := e.E.(*CallExprData)
		ce.Callee = ce.Callee.Resolve(ctx, sc)
		for i, a := range ce.Args {
			ce.Args[i] = a.Resolve(ctx, sc)
		}
		callable := ctx.Types.Canonicalize(ce.Callee.Type)
		if callable == nil || callable.Kind != types.CallableKind {
			ctx.errorf(e.Pos, "%s is not callable", ce.Callee.Type)
			return e
		}
		ct := callable.T.(*types.CallableType)
		for i, p := range ct.Params {
			if i < len(ce.Args) {
				ce.Args[i] = ctx.Coerce(sc, ce.Args[i], p)
			}
		}
		e.Type = ct.Ret
		return e

	case IsTestKind:
		it := e.E.(*IsTestExpr)
		it.Base = it.Base.Resolve(ctx, sc)
		e.Type = ctx.Types.Primitive(types.Bool)
		target, err := ctx.LookupType(sc, it.TypeName)
		if err != nil {
			ctx.errorf(e.Pos, "%s", err)
			return e
		}
		it.OptionType = target
		base := ctx.Types.Canonicalize(it.Base.Type)
		if base != nil && base.Kind == types.UnionKind {
			for i, opt := range base.T.(*types.UnionType).Options {
				if types.TypesSame(ctx.Types, opt, target) {
					it.OptionIndex = i
					break
				}
			}
		}
		return e

	case AsNarrowKind:
		an := e.E.(*AsNarrowExpr)
		an.Base = an.Base.Resolve(ctx, sc)
		target, err := ctx.LookupType(sc, an.TypeName)
		if err != nil {
			ctx.errorf(e.Pos, "%s", err)
			return e
		}
		an.OptionType = target
		e.Type = target
		base := ctx.Types.Canonicalize(an.Base.Type)
		if base != nil && base.Kind == types.UnionKind {
			for i, opt := range base.T.(*types.UnionType).Options {
				if types.TypesSame(ctx.Types, opt, target) {
					an.OptionIndex = i
					break
				}
			}
		}
		return e

	case ThisRefKind:
		n, err := sc.Lookup("this")
		if err != nil {
			ctx.errorf(e.Pos, "this used outside a method")
			return e
		}
		if v, ok := n.Entity.(*Variable); ok {
			e.Type = v.Type
		}
		return e

	case NewArrayKind:
		na := e.E.(*NewArrayExpr)
		for i, d := range na.Dims {
			na.Dims[i] = d.Resolve(ctx, sc)
		}
		e.Type = ctx.Types.GetArrayType(na.ElemType, len(na.Dims))
		return e

	case ArrayLenKind:
		al := e.E.(*ArrayLenExpr)
		al.Base = al.Base.Resolve(ctx, sc)
		e.Type = ctx.Types.Primitive(types.Int64)
		return e

	case ConvertedKind:
		ce := e.E.(*ConvertedExpr)
		ce.Inner = ce.Inner.Resolve(ctx, sc)
		return e

	default:
		return e
	}
}

// breakTarget/continueTarget thread the nearest enclosing breakable
// (loop or switch) and continuable (loop) statement through statement
// resolution, implementing spec.md §4.5's "resolved by walking the parent
// block chain" without a runtime walk.
type loopCtx struct {
	brk  *Stmt
	cont *Stmt
}

// ResolveBody resolves a subroutine body from a fresh (no enclosing loop or
// switch) control-flow context. Exported because loopCtx itself is not:
// callers outside this package (the resolver's body-resolution phase)
// cannot otherwise construct one.
func ResolveBody(ctx *Ctx, body *Stmt, sc *scope.Scope, retType *types.Type) {
	body.Resolve(ctx, sc, retType, loopCtx{})
}

// Resolve type-checks s and everything nested within it.
func (s *Stmt) Resolve(ctx *Ctx, sc *scope.Scope, retType *types.Type, lc loopCtx) {
	if s == nil {
		return
	}
	switch s.Kind {
	case BlockStmtKind:
		b := s.S.(*BlockStmtData)
		for _, child := range b.Stmts {
			child.Resolve(ctx, b.Scope, retType, lc)
		}

	case VarDeclStmtKind:
		v := s.S.(*VarDeclStmtData).Var
		if v.Init != nil {
			if v.Type != nil {
				v.Init = ctx.Coerce(sc, v.Init, v.Type)
			} else {
				v.Init = v.Init.Resolve(ctx, sc)
				v.Type = v.Init.Type
			}
		} else if v.Type != nil {
			v.Init = DefaultValueExpr(ctx.Types, v.Type)
		}
		ctx.declare(sc, &scope.Name{Ident: v.Name, Kind: scope.NameVariable, Entity: v, Pos: v.Pos})

	case AssignStmtKind:
		a := s.S.(*AssignStmtData)
		a.LHS = a.LHS.Resolve(ctx, sc)
		if !a.LHS.Assignable() {
			ctx.errorf(s.Pos, "left side of assignment is not assignable")
		}
		a.RHS = ctx.Coerce(sc, a.RHS, a.LHS.Type)

	case ExprStmtKind:
		x := s.S.(*ExprStmtData)
		x.X = x.X.Resolve(ctx, sc)

	case ForCStmtKind:
		f := s.S.(*ForCStmtData)
		f.Init.Resolve(ctx, f.Scope, retType, lc)
		if f.Cond != nil {
			f.Cond = ctx.Coerce(f.Scope, f.Cond, ctx.Types.Primitive(types.Bool))
		}
		f.Incr.Resolve(ctx, f.Scope, retType, lc)
		f.Body.Resolve(ctx, f.Scope, retType, loopCtx{brk: s, cont: s})

	case WhileStmtKind:
		w := s.S.(*WhileStmtData)
		w.Cond = ctx.Coerce(sc, w.Cond, ctx.Types.Primitive(types.Bool))
		w.Body.Resolve(ctx, sc, retType, loopCtx{brk: s, cont: s})

	case IfStmtKind:
		i := s.S.(*IfStmtData)
		i.Cond = ctx.Coerce(sc, i.Cond, ctx.Types.Primitive(types.Bool))
		i.Then.Resolve(ctx, sc, retType, lc)
		i.Else.Resolve(ctx, sc, retType, lc)

	case SwitchStmtKind:
		sw := s.S.(*SwitchStmtData)
		sw.Scrutinee = sw.Scrutinee.Resolve(ctx, sc)
		for i, cv := range sw.CaseValues {
			sw.CaseValues[i] = ctx.Coerce(sc, cv, sw.Scrutinee.Type)
		}
		for _, st := range sw.Stmts {
			st.Resolve(ctx, sc, retType, loopCtx{brk: s, cont: lc.cont})
		}

	case MatchStmtKind:
		m := s.S.(*MatchStmtData)
		m.Scrutinee = m.Scrutinee.Resolve(ctx, sc)
		for i, body := range m.CaseBodies {
			if i < len(m.CaseVars) && m.CaseVars[i] != nil {
				v := m.CaseVars[i]
				v.Type = m.OptionTypes[i]
				ctx.declare(v.Scope, &scope.Name{Ident: v.Name, Kind: scope.NameVariable, Entity: v, Pos: v.Pos})
			}
			body.Resolve(ctx, sc, retType, lc)
		}
		m.DefaultBody.Resolve(ctx, sc, retType, lc)

	case ReturnStmtKind:
		r := s.S.(*ReturnStmtData)
		if r.Value != nil {
			r.Value = ctx.Coerce(sc, r.Value, retType)
		} else if retType != nil && ctx.Types.Canonicalize(retType).Kind != types.Void {
			ctx.errorf(s.Pos, "missing return value")
		}

	case BreakStmtKind:
		b := s.S.(*BreakStmtData)
		if lc.brk == nil {
			ctx.errorf(s.Pos, "break outside a loop or switch")
		}
		b.Target = lc.brk

	case ContinueStmtKind:
		c := s.S.(*ContinueStmtData)
		if lc.cont == nil {
			ctx.errorf(s.Pos, "continue outside a loop")
		}
		c.Target = lc.cont

	case PrintStmtKind:
		p := s.S.(*PrintStmtData)
		for i, a := range p.Args {
			p.Args[i] = a.Resolve(ctx, sc)
		}

	case AssertStmtKind:
		a := s.S.(*AssertStmtData)
		a.Cond = ctx.Coerce(sc, a.Cond, ctx.Types.Primitive(types.Bool))
	}
}
