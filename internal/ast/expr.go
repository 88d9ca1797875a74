package ast

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// ExprKind tags the variant of an expression node (spec.md §3/§4.4).
type ExprKind int

const (
	IntConst ExprKind = iota
	FloatConst
	BoolConst
	CharConst
	StringConst
	CompoundLit
	MapConst
	UnionConst
	VarRef
	SubrRef
	MemberExprKind
	IndexExprKind
	UnaryExprKind
	BinaryExprKind
	CallExprKind
	IsTestKind
	AsNarrowKind
	ThisRefKind
	NewArrayKind
	ArrayLenKind
	ConvertedKind
)

// Expr is the single polymorphic node type for the expression family: a
// Kind tag plus an opaque payload (spec.md §9 redesign note: a tagged sum
// type dispatched on Kind rather than a virtual class hierarchy).
type Expr struct {
	Kind ExprKind
	Pos  token.Pos
	Type *types.Type // nil until resolved
	E    any
}

// --- payloads ---

type IntConstExpr struct {
	SVal   int64
	UVal   uint64
	Signed bool
}

type FloatConstExpr struct {
	Val  float64
	Is32 bool
}

type BoolConstExpr struct{ Val bool }

type CharConstExpr struct{ Val byte }

type StringConstExpr struct{ Val []byte }

// CompoundLitExpr covers struct/tuple/array compound literals; which one it
// denotes is determined at resolution time from the expected type
// (spec.md §4.3, CanConvert elementwise rule).
type CompoundLitExpr struct {
	Elems []*Expr
}

type MapConstExpr struct {
	Keys   []*Expr
	Values []*Expr
}

// UnionConstExpr wraps a payload expression whose type has been injected
// into one option of a union type (spec.md §4.3).
type UnionConstExpr struct {
	Payload     *Expr
	OptionIndex int
}

type VarRefExpr struct {
	Name string
	Var  *Variable
}

// SubrRefExpr models spec.md §9's SubrRef = Free | Method | Extern.
type SubrRefExpr struct {
	Kind     SubrKind
	Receiver *Expr // non-nil only for SubrMethod
	Decl     *Subroutine
}

type StructMemberExpr struct {
	Base       *Expr
	MemberName string
	MemberIdx  int // index into the struct's Member list, filled on resolve
}

type IndexExprData struct {
	Base  *Expr
	Index *Expr
}

type UnaryOpExpr struct {
	Op      token.Kind
	Operand *Expr
}

type BinaryOpExpr struct {
	Op    token.Kind
	Left  *Expr
	Right *Expr
}

type CallExprData struct {
	Callee *Expr
	Args   []*Expr
}

// IsTestExpr is the `x is T` union-tag test (spec.md §4.4). TypeName is
// filled by the parser; OptionIndex/OptionType are filled on resolve.
type IsTestExpr struct {
	Base        *Expr
	TypeName    string
	OptionIndex int
	OptionType  *types.Type
}

// AsNarrowExpr is the `x as T` union narrowing conversion.
type AsNarrowExpr struct {
	Base        *Expr
	TypeName    string
	OptionIndex int
	OptionType  *types.Type
}

type ThisExpr struct{}

// NewArrayExpr allocates an array of the given element type with one size
// expression per dimension (spec.md §4.5, `new`).
type NewArrayExpr struct {
	ElemType *types.Type
	Dims     []*Expr
}

type ArrayLenExpr struct {
	Base *Expr
	Dim  int // which dimension's length (0 = outermost), for multi-dim arrays
}

// ConvertedExpr wraps an expression the resolver has inserted an implicit
// conversion around; Expr.Type carries the target type (spec.md §4.4,
// "C4 ... may insert a conversion wrapper").
type ConvertedExpr struct {
	Inner *Expr
}

// --- constructors ---

func NewIntConst(pos token.Pos, v uint64, signed bool) *Expr {
	return &Expr{Kind: IntConst, Pos: pos, E: &IntConstExpr{SVal: int64(v), UVal: v, Signed: signed}}
}

func NewFloatConst(pos token.Pos, v float64, is32 bool) *Expr {
	return &Expr{Kind: FloatConst, Pos: pos, E: &FloatConstExpr{Val: v, Is32: is32}}
}

func NewBoolConst(pos token.Pos, v bool) *Expr {
	return &Expr{Kind: BoolConst, Pos: pos, E: &BoolConstExpr{Val: v}}
}

func NewCharConst(pos token.Pos, v byte) *Expr {
	return &Expr{Kind: CharConst, Pos: pos, E: &CharConstExpr{Val: v}}
}

func NewStringConst(pos token.Pos, v []byte) *Expr {
	return &Expr{Kind: StringConst, Pos: pos, E: &StringConstExpr{Val: v}}
}

// --- node mechanics: Assignable / Constant / Copy / Hash / Equal / Less ---

// Assignable reports whether e denotes an lvalue (spec.md §4.4). A compound
// literal is assignable iff every element is, in which case it denotes a
// multi-target (tuple-unpack) assignment, each element assigned in turn.
func (e *Expr) Assignable() bool {
	switch e.Kind {
	case VarRef, IndexExprKind, ThisRefKind, MemberExprKind:
		return true
	case CompoundLit:
		for _, el := range e.E.(*CompoundLitExpr).Elems {
			if !el.Assignable() {
				return false
			}
		}
		return len(e.E.(*CompoundLitExpr).Elems) > 0
	default:
		return false
	}
}

// Constant reports whether e is a compile-time constant expression
// (spec.md §4.4): literals, and compound/union/map constants built
// entirely from constants.
func (e *Expr) Constant() bool {
	switch e.Kind {
	case IntConst, FloatConst, BoolConst, CharConst, StringConst:
		return true
	case CompoundLit:
		for _, el := range e.E.(*CompoundLitExpr).Elems {
			if !el.Constant() {
				return false
			}
		}
		return true
	case MapConst:
		mc := e.E.(*MapConstExpr)
		for i := range mc.Keys {
			if !mc.Keys[i].Constant() || !mc.Values[i].Constant() {
				return false
			}
		}
		return true
	case UnionConst:
		return e.E.(*UnionConstExpr).Payload.Constant()
	case UnaryExprKind:
		return e.E.(*UnaryOpExpr).Operand.Constant()
	case BinaryExprKind:
		b := e.E.(*BinaryOpExpr)
		return b.Left.Constant() && b.Right.Constant()
	case ConvertedKind:
		return e.E.(*ConvertedExpr).Inner.Constant()
	default:
		return false
	}
}

// Copy returns a deep, independent copy of e (spec.md §4.6, value
// semantics: no aliasing survives an assignment or parameter bind).
func (e *Expr) Copy() *Expr {
	if e == nil {
		return nil
	}
	cp := &Expr{Kind: e.Kind, Pos: e.Pos, Type: e.Type}
	switch e.Kind {
	case IntConst:
		v := *e.E.(*IntConstExpr)
		cp.E = &v
	case FloatConst:
		v := *e.E.(*FloatConstExpr)
		cp.E = &v
	case BoolConst:
		v := *e.E.(*BoolConstExpr)
		cp.E = &v
	case CharConst:
		v := *e.E.(*CharConstExpr)
		cp.E = &v
	case StringConst:
		orig := e.E.(*StringConstExpr)
		buf := make([]byte, len(orig.Val))
		copy(buf, orig.Val)
		cp.E = &StringConstExpr{Val: buf}
	case CompoundLit:
		orig := e.E.(*CompoundLitExpr)
		elems := make([]*Expr, len(orig.Elems))
		for i, el := range orig.Elems {
			elems[i] = el.Copy()
		}
		cp.E = &CompoundLitExpr{Elems: elems}
	case MapConst:
		orig := e.E.(*MapConstExpr)
		keys := make([]*Expr, len(orig.Keys))
		vals := make([]*Expr, len(orig.Values))
		for i := range orig.Keys {
			keys[i] = orig.Keys[i].Copy()
			vals[i] = orig.Values[i].Copy()
		}
		cp.E = &MapConstExpr{Keys: keys, Values: vals}
	case UnionConst:
		orig := e.E.(*UnionConstExpr)
		cp.E = &UnionConstExpr{Payload: orig.Payload.Copy(), OptionIndex: orig.OptionIndex}
	case VarRef:
		v := *e.E.(*VarRefExpr)
		cp.E = &v
	case SubrRef:
		orig := e.E.(*SubrRefExpr)
		n := &SubrRefExpr{Kind: orig.Kind, Decl: orig.Decl}
		if orig.Receiver != nil {
			n.Receiver = orig.Receiver.Copy()
		}
		cp.E = n
	case MemberExprKind:
		orig := e.E.(*StructMemberExpr)
		cp.E = &StructMemberExpr{Base: orig.Base.Copy(), MemberName: orig.MemberName, MemberIdx: orig.MemberIdx}
	case IndexExprKind:
		orig := e.E.(*IndexExprData)
		cp.E = &IndexExprData{Base: orig.Base.Copy(), Index: orig.Index.Copy()}
	case UnaryExprKind:
		orig := e.E.(*UnaryOpExpr)
		cp.E = &UnaryOpExpr{Op: orig.Op, Operand: orig.Operand.Copy()}
	case BinaryExprKind:
		orig := e.E.(*BinaryOpExpr)
		cp.E = &BinaryOpExpr{Op: orig.Op, Left: orig.Left.Copy(), Right: orig.Right.Copy()}
	case CallExprKind:
		orig := e.E.(*CallExprData)
		args := make([]*Expr, len(orig.Args))
		for i, a := range orig.Args {
			args[i] = a.Copy()
		}
		cp.E = &CallExprData{Callee: orig.Callee.Copy(), Args: args}
	case IsTestKind:
		orig := e.E.(*IsTestExpr)
		cp.E = &IsTestExpr{Base: orig.Base.Copy(), TypeName: orig.TypeName, OptionIndex: orig.OptionIndex, OptionType: orig.OptionType}
	case AsNarrowKind:
		orig := e.E.(*AsNarrowExpr)
		cp.E = &AsNarrowExpr{Base: orig.Base.Copy(), TypeName: orig.TypeName, OptionIndex: orig.OptionIndex, OptionType: orig.OptionType}
	case ThisRefKind:
		cp.E = &ThisExpr{}
	case NewArrayKind:
		orig := e.E.(*NewArrayExpr)
		dims := make([]*Expr, len(orig.Dims))
		for i, d := range orig.Dims {
			dims[i] = d.Copy()
		}
		cp.E = &NewArrayExpr{ElemType: orig.ElemType, Dims: dims}
	case ArrayLenKind:
		orig := e.E.(*ArrayLenExpr)
		cp.E = &ArrayLenExpr{Base: orig.Base.Copy(), Dim: orig.Dim}
	case ConvertedKind:
		orig := e.E.(*ConvertedExpr)
		cp.E = &ConvertedExpr{Inner: orig.Inner.Copy()}
	}
	return cp
}

// Hash produces a structural hash consistent with Equal: deeply-equal
// expressions always hash the same (spec.md §8, Property 5).
func (e *Expr) Hash() uint64 {
	h := fnv.New64a()
	e.hashInto(h)
	return h.Sum64()
}

func (e *Expr) hashInto(h interface{ Write([]byte) (int, error) }) {
	write := func(s string) { h.Write([]byte(s)) }
	if e == nil {
		write("nil")
		return
	}
	if e.Kind == ConvertedKind {
		e.E.(*ConvertedExpr).Inner.hashInto(h)
		return
	}
	write(fmt.Sprintf("K%d:", e.Kind))
	switch e.Kind {
	case IntConst:
		v := e.E.(*IntConstExpr)
		write(fmt.Sprintf("%d,%v", v.UVal, v.Signed))
	case FloatConst:
		v := e.E.(*FloatConstExpr)
		bits := math.Float64bits(v.Val)
		if v.Val == 0 {
			bits = 0
		}
		write(fmt.Sprintf("%v", bits))
	case BoolConst:
		write(fmt.Sprintf("%v", e.E.(*BoolConstExpr).Val))
	case CharConst:
		write(fmt.Sprintf("%d", e.E.(*CharConstExpr).Val))
	case StringConst:
		write(string(e.E.(*StringConstExpr).Val))
	case CompoundLit:
		for _, el := range e.E.(*CompoundLitExpr).Elems {
			el.hashInto(h)
		}
	case MapConst:
		mc := e.E.(*MapConstExpr)
		for i := range mc.Keys {
			mc.Keys[i].hashInto(h)
			mc.Values[i].hashInto(h)
		}
	case UnionConst:
		uc := e.E.(*UnionConstExpr)
		write(fmt.Sprintf("%d:", uc.OptionIndex))
		uc.Payload.hashInto(h)
	case VarRef:
		write(e.E.(*VarRefExpr).Name)
	case SubrRef:
		sr := e.E.(*SubrRefExpr)
		write(fmt.Sprintf("%d,%p", sr.Kind, sr.Decl))
		sr.Receiver.hashInto(h)
	case UnaryExprKind:
		u := e.E.(*UnaryOpExpr)
		write(u.Op.String())
		u.Operand.hashInto(h)
	case BinaryExprKind:
		b := e.E.(*BinaryOpExpr)
		write(b.Op.String())
		left, right := b.Left, b.Right
		if isCommutative(b.Op) && left.Hash() > right.Hash() {
			left, right = right, left
		}
		left.hashInto(h)
		right.hashInto(h)
	case MemberExprKind:
		m := e.E.(*StructMemberExpr)
		m.Base.hashInto(h)
		write(m.MemberName)
	case IndexExprKind:
		ix := e.E.(*IndexExprData)
		ix.Base.hashInto(h)
		ix.Index.hashInto(h)
	case CallExprKind:
		c := e.E.(*CallExprData)
		c.Callee.hashInto(h)
		for _, a := range c.Args {
			a.hashInto(h)
		}
	case IsTestKind:
		it := e.E.(*IsTestExpr)
		it.Base.hashInto(h)
		write(it.TypeName)
	case AsNarrowKind:
		an := e.E.(*AsNarrowExpr)
		an.Base.hashInto(h)
		write(an.TypeName)
	case ThisRefKind:
		write("this")
	case NewArrayKind:
		na := e.E.(*NewArrayExpr)
		for _, d := range na.Dims {
			d.hashInto(h)
		}
	case ArrayLenKind:
		al := e.E.(*ArrayLenExpr)
		al.Base.hashInto(h)
		write(fmt.Sprintf("%d", al.Dim))
	default:
		write(fmt.Sprintf("%p", e.E))
	}
}

// isCommutative reports whether op's hash/equality treatment should ignore
// operand order (spec.md §4.4: "normalises commutative operators so that
// `a op b` and `b op a` hash identically").
func isCommutative(op token.Kind) bool {
	switch op {
	case token.PLUS, token.STAR, token.EQ, token.NE, token.AMP, token.PIPE, token.CARET, token.ANDAND, token.OROR:
		return true
	default:
		return false
	}
}

// Equal reports deep structural equality of two constant expressions
// (spec.md §8, Property 4/5).
func Equal(a, b *Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == ConvertedKind {
		return Equal(a.E.(*ConvertedExpr).Inner, b)
	}
	if b.Kind == ConvertedKind {
		return Equal(a, b.E.(*ConvertedExpr).Inner)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case IntConst:
		av, bv := a.E.(*IntConstExpr), b.E.(*IntConstExpr)
		return av.UVal == bv.UVal && av.Signed == bv.Signed
	case FloatConst:
		return a.E.(*FloatConstExpr).Val == b.E.(*FloatConstExpr).Val
	case BoolConst:
		return a.E.(*BoolConstExpr).Val == b.E.(*BoolConstExpr).Val
	case CharConst:
		return a.E.(*CharConstExpr).Val == b.E.(*CharConstExpr).Val
	case StringConst:
		av, bv := a.E.(*StringConstExpr).Val, b.E.(*StringConstExpr).Val
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case CompoundLit:
		ae, be := a.E.(*CompoundLitExpr).Elems, b.E.(*CompoundLitExpr).Elems
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !Equal(ae[i], be[i]) {
				return false
			}
		}
		return true
	case MapConst:
		am, bm := a.E.(*MapConstExpr), b.E.(*MapConstExpr)
		if len(am.Keys) != len(bm.Keys) {
			return false
		}
		for i := range am.Keys {
			if !Equal(am.Keys[i], bm.Keys[i]) || !Equal(am.Values[i], bm.Values[i]) {
				return false
			}
		}
		return true
	case UnionConst:
		au, bu := a.E.(*UnionConstExpr), b.E.(*UnionConstExpr)
		return au.OptionIndex == bu.OptionIndex && Equal(au.Payload, bu.Payload)
	case VarRef:
		return a.E.(*VarRefExpr).Var == b.E.(*VarRefExpr).Var
	case SubrRef:
		as, bs := a.E.(*SubrRefExpr), b.E.(*SubrRefExpr)
		return as.Kind == bs.Kind && as.Decl == bs.Decl && Equal(as.Receiver, bs.Receiver)
	case MemberExprKind:
		am, bm := a.E.(*StructMemberExpr), b.E.(*StructMemberExpr)
		return am.MemberName == bm.MemberName && Equal(am.Base, bm.Base)
	case IndexExprKind:
		ai, bi := a.E.(*IndexExprData), b.E.(*IndexExprData)
		return Equal(ai.Base, bi.Base) && Equal(ai.Index, bi.Index)
	case UnaryExprKind:
		au, bu := a.E.(*UnaryOpExpr), b.E.(*UnaryOpExpr)
		return au.Op == bu.Op && Equal(au.Operand, bu.Operand)
	case BinaryExprKind:
		ab, bb := a.E.(*BinaryOpExpr), b.E.(*BinaryOpExpr)
		if ab.Op != bb.Op {
			return false
		}
		if Equal(ab.Left, bb.Left) && Equal(ab.Right, bb.Right) {
			return true
		}
		if isCommutative(ab.Op) {
			return Equal(ab.Left, bb.Right) && Equal(ab.Right, bb.Left)
		}
		return false
	case CallExprKind:
		ac, bc := a.E.(*CallExprData), b.E.(*CallExprData)
		if !Equal(ac.Callee, bc.Callee) || len(ac.Args) != len(bc.Args) {
			return false
		}
		for i := range ac.Args {
			if !Equal(ac.Args[i], bc.Args[i]) {
				return false
			}
		}
		return true
	case IsTestKind:
		ai, bi := a.E.(*IsTestExpr), b.E.(*IsTestExpr)
		return ai.TypeName == bi.TypeName && Equal(ai.Base, bi.Base)
	case AsNarrowKind:
		aa, ba := a.E.(*AsNarrowExpr), b.E.(*AsNarrowExpr)
		return aa.TypeName == ba.TypeName && Equal(aa.Base, ba.Base)
	case ThisRefKind:
		return true
	case NewArrayKind:
		an, bn := a.E.(*NewArrayExpr), b.E.(*NewArrayExpr)
		if an.ElemType != bn.ElemType || len(an.Dims) != len(bn.Dims) {
			return false
		}
		for i := range an.Dims {
			if !Equal(an.Dims[i], bn.Dims[i]) {
				return false
			}
		}
		return true
	case ArrayLenKind:
		aa, ba := a.E.(*ArrayLenExpr), b.E.(*ArrayLenExpr)
		return aa.Dim == ba.Dim && Equal(aa.Base, ba.Base)
	default:
		return a == b
	}
}

// Less imposes a total order over constant expressions (spec.md §8,
// Property 6): ordering first by Kind, then by payload.
func Less(a, b *Expr) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case IntConst:
		av, bv := a.E.(*IntConstExpr), b.E.(*IntConstExpr)
		if av.Signed {
			return av.SVal < bv.SVal
		}
		return av.UVal < bv.UVal
	case FloatConst:
		return a.E.(*FloatConstExpr).Val < b.E.(*FloatConstExpr).Val
	case BoolConst:
		return !a.E.(*BoolConstExpr).Val && b.E.(*BoolConstExpr).Val
	case CharConst:
		return a.E.(*CharConstExpr).Val < b.E.(*CharConstExpr).Val
	case StringConst:
		return string(a.E.(*StringConstExpr).Val) < string(b.E.(*StringConstExpr).Val)
	default:
		return a.Hash() < b.Hash()
	}
}
