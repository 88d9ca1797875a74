package interp

import (
	"bytes"
	"testing"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

func TestEvalBinaryArithmeticPrecedenceEquivalent(t *testing.T) {
	// 1 + 2 * 3 evaluated as 1 + (2 * 3), i.e. the caller is responsible
	// for building the tree with the right shape; the interpreter just
	// walks whatever shape it's given.
	reg := types.NewRegistry()
	in := New(reg, &bytes.Buffer{})
	i32 := reg.Primitive(types.Int32)

	mul := &ast.Expr{Kind: ast.BinaryExprKind, Type: i32, E: &ast.BinaryOpExpr{
		Op: token.STAR, Left: typed(ast.NewIntConst(token.Pos{}, 2, true), i32), Right: typed(ast.NewIntConst(token.Pos{}, 3, true), i32),
	}}
	add := &ast.Expr{Kind: ast.BinaryExprKind, Type: i32, E: &ast.BinaryOpExpr{
		Op: token.PLUS, Left: typed(ast.NewIntConst(token.Pos{}, 1, true), i32), Right: mul,
	}}
	v, err := in.eval(add)
	if err != nil {
		t.Fatal(err)
	}
	if asInt(v) != 7 {
		t.Fatalf("expected 7, got %d", asInt(v))
	}
}

func typed(e *ast.Expr, t *types.Type) *ast.Expr {
	e.Type = t
	return e
}

func TestArrayIndexAssignmentMutatesInPlace(t *testing.T) {
	reg := types.NewRegistry()
	in := New(reg, &bytes.Buffer{})
	i32 := reg.Primitive(types.Int32)
	arrType := reg.GetArrayType(i32, 1)

	v := &ast.Variable{Name: "a", Type: arrType}
	arrVal := &Value{Type: arrType, V: &ArrayValue{Elems: []*Value{
		{Type: i32, V: int64(1)}, {Type: i32, V: int64(10)}, {Type: i32, V: int64(3)},
	}}}
	in.setVar(v, arrVal)

	lhs := &ast.Expr{Kind: ast.IndexExprKind, Type: i32, E: &ast.IndexExprData{
		Base:  &ast.Expr{Kind: ast.VarRef, Type: arrType, E: &ast.VarRefExpr{Var: v}},
		Index: typed(ast.NewIntConst(token.Pos{}, 1, true), i32),
	}}
	if err := in.assign(lhs, &Value{Type: i32, V: int64(99)}); err != nil {
		t.Fatal(err)
	}
	if in.lookupVar(v).V.(*ArrayValue).Elems[1].V.(int64) != 99 {
		t.Fatal("expected in-place mutation of the array element")
	}
	var buf bytes.Buffer
	Render(&buf, reg, in.lookupVar(v))
	if buf.String() != "[1, 99, 3]" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestForCLoopHonorsContinue(t *testing.T) {
	reg := types.NewRegistry()
	in := New(reg, &bytes.Buffer{})
	i32 := reg.Primitive(types.Int32)

	sum := &ast.Variable{Name: "sum", Type: i32}
	in.setVar(sum, &Value{Type: i32, V: int64(0)})
	iVar := &ast.Variable{Name: "i", Type: i32}
	in.setVar(iVar, &Value{Type: i32, V: int64(0)})

	iRef := func() *ast.Expr { return &ast.Expr{Kind: ast.VarRef, Type: i32, E: &ast.VarRefExpr{Var: iVar}} }
	sumRef := func() *ast.Expr { return &ast.Expr{Kind: ast.VarRef, Type: i32, E: &ast.VarRefExpr{Var: sum}} }

	// for i in 0..5 { if i == 2 { continue } sum = sum + i }
	cond := &ast.Expr{Kind: ast.BinaryExprKind, Type: i32, E: &ast.BinaryOpExpr{Op: token.EQ, Left: iRef(), Right: typed(ast.NewIntConst(token.Pos{}, 2, true), i32)}}
	skip := &ast.Stmt{Kind: ast.IfStmtKind, S: &ast.IfStmtData{
		Cond: cond,
		Then: &ast.Stmt{Kind: ast.ContinueStmtKind, S: &ast.ContinueStmtData{}},
	}}
	addSum := &ast.Stmt{Kind: ast.AssignStmtKind, S: &ast.AssignStmtData{
		LHS: sumRef(),
		RHS: &ast.Expr{Kind: ast.BinaryExprKind, Type: i32, E: &ast.BinaryOpExpr{Op: token.PLUS, Left: sumRef(), Right: iRef()}},
	}}
	body := ast.NewBlock(nil, []*ast.Stmt{skip, addSum})

	loopCond := &ast.Expr{Kind: ast.BinaryExprKind, Type: i32, E: &ast.BinaryOpExpr{Op: token.LT, Left: iRef(), Right: typed(ast.NewIntConst(token.Pos{}, 5, true), i32)}}
	incr := &ast.Stmt{Kind: ast.AssignStmtKind, S: &ast.AssignStmtData{
		LHS: iRef(),
		RHS: &ast.Expr{Kind: ast.BinaryExprKind, Type: i32, E: &ast.BinaryOpExpr{Op: token.PLUS, Left: iRef(), Right: typed(ast.NewIntConst(token.Pos{}, 1, true), i32)}},
	}}
	forStmt := &ast.Stmt{Kind: ast.ForCStmtKind, S: &ast.ForCStmtData{Cond: loopCond, Incr: incr, Body: body}}

	if err := in.exec(forStmt); err != nil {
		t.Fatal(err)
	}
	// 0+1+3+4 = 8 (2 skipped by continue)
	if asInt(in.lookupVar(sum)) != 8 {
		t.Fatalf("expected sum 8, got %d", asInt(in.lookupVar(sum)))
	}
}

func TestRenderStructAndMap(t *testing.T) {
	reg := types.NewRegistry()
	i32 := reg.Primitive(types.Int32)
	st := reg.NewStructType("Point", nil)
	st.T.(*types.StructType).Members = []*types.Member{{Name: "x", Type: i32}, {Name: "y", Type: i32}}

	var buf bytes.Buffer
	Render(&buf, reg, &Value{Type: st, V: &StructValue{Fields: []*Value{{Type: i32, V: int64(1)}, {Type: i32, V: int64(2)}}}})
	if buf.String() != "Point{1, 2}" {
		t.Fatalf("got %q", buf.String())
	}

	buf.Reset()
	mv := &MapValue{Keys: []*Value{{Type: i32, V: int64(1)}}, Vals: []*Value{{Type: i32, V: int64(2)}}}
	Render(&buf, reg, &Value{Type: reg.GetMapType(i32, i32), V: mv})
	if buf.String() != "{1: 2}" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestAssertFailureProducesRuntimeError(t *testing.T) {
	reg := types.NewRegistry()
	in := New(reg, &bytes.Buffer{})
	stmt := &ast.Stmt{Kind: ast.AssertStmtKind, S: &ast.AssertStmtData{
		Cond:       typed(ast.NewBoolConst(token.Pos{}, false), reg.Primitive(types.Bool)),
		SourceText: "1 == 2",
	}}
	err := in.exec(stmt)
	if err == nil {
		t.Fatal("expected a runtime error from a failing assertion")
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
}
