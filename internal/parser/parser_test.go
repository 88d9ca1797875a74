package parser

import (
	"testing"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/token"
)

func TestParseExprRespectsMulOverAddPrecedence(t *testing.T) {
	e, _, err := ExprFrom("1 + 2 * 3")
	if err != nil {
		t.Fatal(err)
	}
	add := e.E.(*ast.BinaryOpExpr)
	if add.Op != token.PLUS {
		t.Fatalf("expected top-level +, got %s", add.Op)
	}
	mul, ok := add.Right.E.(*ast.BinaryOpExpr)
	if !ok || mul.Op != token.STAR {
		t.Fatalf("expected right operand to be a * node, got %#v", add.Right.E)
	}
}

func TestParseVarDeclStmtCarriesTypeAndInit(t *testing.T) {
	s, _, err := StmtFrom("x: int32 = 5")
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != ast.VarDeclStmtKind {
		t.Fatalf("expected VarDeclStmtKind, got %v", s.Kind)
	}
	v := s.S.(*ast.VarDeclStmtData).Var
	if v.Name != "x" {
		t.Fatalf("expected variable name x, got %q", v.Name)
	}
	if v.Init == nil || v.Init.Kind != ast.IntConst {
		t.Fatalf("expected an int constant initializer, got %#v", v.Init)
	}
}

func TestParseIfElseBuildsBothBranches(t *testing.T) {
	s, _, err := StmtFrom("if x < 3 { y = 1 } else { y = 2 }")
	if err != nil {
		t.Fatal(err)
	}
	ifData := s.S.(*ast.IfStmtData)
	if ifData.Then == nil || ifData.Else == nil {
		t.Fatal("expected both a then and an else branch")
	}
	cond := ifData.Cond.E.(*ast.BinaryOpExpr)
	if cond.Op != token.LT {
		t.Fatalf("expected < in condition, got %s", cond.Op)
	}
}

func TestParseSwitchFlattensCasesIntoLabels(t *testing.T) {
	s, _, err := StmtFrom("switch x { case 1: y = 1 case 2, 3: y = 2 default: y = 3 }")
	if err != nil {
		t.Fatal(err)
	}
	sw := s.S.(*ast.SwitchStmtData)
	if len(sw.CaseValues) != 3 {
		t.Fatalf("expected 3 case values (1, 2, 3), got %d", len(sw.CaseValues))
	}
	// case 2 and case 3 share the same label (fall into the same statement).
	if sw.CaseLabels[1] != sw.CaseLabels[2] {
		t.Fatalf("expected the comma-joined case values to share a label, got %v", sw.CaseLabels)
	}
	if sw.DefaultLabel != len(sw.Stmts)-1 {
		t.Fatalf("expected default label to point at the last statement, got %d (len %d)", sw.DefaultLabel, len(sw.Stmts))
	}
}

func TestParseModuleWithStructAndMainProc(t *testing.T) {
	src := `
struct Point {
	x: int32
	y: int32
}

proc main() {
	p: Point = Point{1, 2}
	print(p.x)
}
`
	m, collector, _, err := ModuleFrom(src)
	if err != nil {
		t.Fatalf("parse failed: %v, diags=%v", err, collector.Diags)
	}
	if len(m.Structs) != 1 || m.Structs[0].Name != "Point" {
		t.Fatalf("expected one struct named Point, got %#v", m.Structs)
	}
	if len(m.Structs[0].Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(m.Structs[0].Members))
	}
	if len(m.Subrs) != 1 || m.Subrs[0].Name != "main" {
		t.Fatalf("expected one subroutine named main, got %#v", m.Subrs)
	}
	if m.Subrs[0].Pure {
		t.Fatal("expected main to be impure (a proc)")
	}
}

func TestParseForRangeDesugarsToForC(t *testing.T) {
	s, _, err := StmtFrom("for i in 0..5 { y = i }")
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != ast.ForCStmtKind {
		t.Fatalf("expected for-range to desugar to ForCStmtKind, got %v", s.Kind)
	}
}
