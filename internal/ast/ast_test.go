package ast

import (
	"testing"

	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

func newCtx() *Ctx {
	return &Ctx{Types: types.NewRegistry(), Diags: diagnostics.New()}
}

func TestCopyProducesIndependentExpr(t *testing.T) {
	orig := NewStringConst(token.Pos{}, []byte("hi"))
	cp := orig.Copy()
	cp.E.(*StringConstExpr).Val[0] = 'H'
	if orig.E.(*StringConstExpr).Val[0] != 'h' {
		t.Fatal("Copy must not alias the original's backing array")
	}
}

func TestEqualAndHashAgreeOnDeepEquality(t *testing.T) {
	a := NewIntConst(token.Pos{}, 7, true)
	b := NewIntConst(token.Pos{}, 7, true)
	if !Equal(a, b) {
		t.Fatal("structurally identical constants must be Equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("deeply equal expressions must hash the same (Property 5)")
	}
}

func TestEqualIgnoresConvertedWrapper(t *testing.T) {
	inner := NewIntConst(token.Pos{}, 3, true)
	wrapped := &Expr{Kind: ConvertedKind, E: &ConvertedExpr{Inner: inner}}
	plain := NewIntConst(token.Pos{}, 3, true)
	if !Equal(wrapped, plain) {
		t.Fatal("Converted wrapper must not affect constant equality")
	}
}

func TestLessTotalOrderOnIntConstants(t *testing.T) {
	a := NewIntConst(token.Pos{}, 1, true)
	b := NewIntConst(token.Pos{}, 2, true)
	if !Less(a, b) || Less(b, a) {
		t.Fatal("expected a strict total order between distinct int constants")
	}
}

func TestConstantPropagatesThroughCompoundLiteral(t *testing.T) {
	lit := &Expr{Kind: CompoundLit, E: &CompoundLitExpr{Elems: []*Expr{
		NewIntConst(token.Pos{}, 1, true),
		NewIntConst(token.Pos{}, 2, true),
	}}}
	if !lit.Constant() {
		t.Fatal("a compound literal of constants must itself be constant")
	}
}

func TestResolveVarRefBindsVariable(t *testing.T) {
	ctx := newCtx()
	sc := scope.NewModuleScope(nil, "m")
	v := &Variable{Name: "x", Type: ctx.Types.Primitive(types.Int32)}
	sc.Insert(&scope.Name{Ident: "x", Kind: scope.NameVariable, Entity: v})

	ref := &Expr{Kind: VarRef, E: &VarRefExpr{Name: "x"}}
	ref = ref.Resolve(ctx, sc)
	if ref.E.(*VarRefExpr).Var != v {
		t.Fatal("expected VarRef to bind the declared variable")
	}
	if ref.Type != v.Type {
		t.Fatal("expected VarRef's type to be the variable's type")
	}
}

func TestBinaryResultTypeWidensOnMismatchedIntWidth(t *testing.T) {
	r := types.NewRegistry()
	got, err := BinaryResultType(r, token.PLUS, r.Primitive(types.Int8), r.Primitive(types.Int32))
	if err != nil {
		t.Fatal(err)
	}
	if got != r.Primitive(types.Int32) {
		t.Fatal("expected the wider operand type to dominate")
	}
}

func TestBinaryResultTypeUnsignedWinsOnWidthTie(t *testing.T) {
	r := types.NewRegistry()
	got, err := BinaryResultType(r, token.PLUS, r.Primitive(types.Int32), r.Primitive(types.Uint32))
	if err != nil {
		t.Fatal(err)
	}
	if got != r.Primitive(types.Uint32) {
		t.Fatal("expected the unsigned type to win on a width tie")
	}
}

func TestDefaultValueExprForStructFillsEachMember(t *testing.T) {
	r := types.NewRegistry()
	st := r.NewStructType("Point", nil)
	st.T.(*types.StructType).Members = []*types.Member{
		{Name: "x", Type: r.Primitive(types.Int32)},
		{Name: "y", Type: r.Primitive(types.Int32)},
	}
	def := DefaultValueExpr(r, st)
	elems := def.E.(*CompoundLitExpr).Elems
	if len(elems) != 2 {
		t.Fatalf("expected 2 default members, got %d", len(elems))
	}
	if elems[0].E.(*IntConstExpr).SVal != 0 {
		t.Fatal("expected a zero default for each int32 member")
	}
}

func TestBreakOutsideLoopIsResolutionError(t *testing.T) {
	ctx := newCtx()
	sc := scope.NewModuleScope(nil, "m")
	s := &Stmt{Kind: BreakStmtKind, S: &BreakStmtData{}}
	s.Resolve(ctx, sc, nil, loopCtx{})
	if !ctx.Diags.HasErrors() {
		t.Fatal("expected an error for break outside any loop or switch")
	}
}
