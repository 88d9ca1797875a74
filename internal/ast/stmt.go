package ast

import (
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// StmtKind tags the variant of a statement node (spec.md §3/§4.5).
type StmtKind int

const (
	BlockStmtKind StmtKind = iota
	VarDeclStmtKind
	AssignStmtKind
	ExprStmtKind
	ForCStmtKind
	WhileStmtKind
	IfStmtKind
	SwitchStmtKind
	MatchStmtKind
	ReturnStmtKind
	BreakStmtKind
	ContinueStmtKind
	PrintStmtKind
	AssertStmtKind
)

// Stmt is the single polymorphic node type for the statement family,
// mirroring Expr (spec.md §9 redesign note).
type Stmt struct {
	Kind StmtKind
	Pos  token.Pos
	S    any
}

type BlockStmtData struct {
	Scope *scope.Scope
	Stmts []*Stmt
}

type VarDeclStmtData struct {
	Var *Variable
}

type AssignStmtData struct {
	LHS *Expr
	RHS *Expr
}

// ExprStmtData is a bare call used as a statement (spec.md §4.5).
type ExprStmtData struct {
	X *Expr
}

// ForCStmtData is the canonical C-style for loop. for-range and for-array
// desugar into this shape at construction time (spec.md §4.5); there is no
// separate persisted node kind for either.
type ForCStmtData struct {
	Scope *scope.Scope
	Init  *Stmt // may be nil
	Cond  *Expr // may be nil (infinite loop)
	Incr  *Stmt // may be nil
	Body  *Stmt
}

type WhileStmtData struct {
	Cond *Expr
	Body *Stmt
}

type IfStmtData struct {
	Cond *Expr
	Then *Stmt
	Else *Stmt // may be nil
}

// SwitchStmtData models the linear case-search + flat-statement-list resume
// semantics of spec.md §4.7: CaseValues[i] jumps to Stmts[CaseLabels[i]];
// no match falls through to Stmts[DefaultLabel] (or does nothing if there
// is no default and DefaultLabel is -1).
type SwitchStmtData struct {
	Scrutinee    *Expr
	CaseValues   []*Expr
	CaseLabels   []int
	DefaultLabel int
	Stmts        []*Stmt
}

// MatchStmtData models a match over a union value: the first case whose
// declared type equals the scrutinee's active option runs, binding
// CaseVars[i] to the unwrapped payload (spec.md §4.5/§4.7).
type MatchStmtData struct {
	Scrutinee   *Expr
	OptionTypes []*types.Type
	CaseVars    []*Variable
	CaseBodies  []*Stmt
	DefaultBody *Stmt // may be nil
}

type ReturnStmtData struct {
	Value *Expr // nil for a void return
}

// BreakStmtData/ContinueStmtData carry the resolved loop/switch target so
// the interpreter doesn't need to re-walk the block chain (spec.md §4.5,
// "resolved by walking the parent block chain").
type BreakStmtData struct{ Target *Stmt }
type ContinueStmtData struct{ Target *Stmt }

type PrintStmtData struct {
	Args []*Expr
}

// AssertStmtData carries the rendered source text of Cond so the runtime
// failure diagnostic can show it (spec.md §12, supplemented from
// original_source/src/AstInterpreter.cpp).
type AssertStmtData struct {
	Cond       *Expr
	SourceText string
}

// --- constructors ---

func NewBlock(sc *scope.Scope, stmts []*Stmt) *Stmt {
	return &Stmt{Kind: BlockStmtKind, S: &BlockStmtData{Scope: sc, Stmts: stmts}}
}

// NewForRange desugars `for x in start..end { body }` into the canonical
// for-C form: `for (var x = start; x < end; x = x + 1) { body }`
// (spec.md §4.5).
func NewForRange(pos token.Pos, sc *scope.Scope, loopVar *Variable, start, end *Expr, body *Stmt, intType *types.Type) *Stmt {
	init := &Stmt{Kind: VarDeclStmtKind, Pos: pos, S: &VarDeclStmtData{Var: loopVar}}
	loopVar.Init = start

	varRef := func() *Expr {
		return &Expr{Kind: VarRef, Pos: pos, Type: intType, E: &VarRefExpr{Name: loopVar.Name, Var: loopVar}}
	}
	cond := &Expr{
		Kind: BinaryExprKind, Pos: pos, Type: intType,
		E: &BinaryOpExpr{Op: token.LT, Left: varRef(), Right: end},
	}
	one := NewIntConst(pos, 1, true)
	one.Type = intType
	incr := &Stmt{
		Kind: AssignStmtKind, Pos: pos,
		S: &AssignStmtData{
			LHS: varRef(),
			RHS: &Expr{Kind: BinaryExprKind, Pos: pos, Type: intType, E: &BinaryOpExpr{Op: token.PLUS, Left: varRef(), Right: one}},
		},
	}
	return &Stmt{Kind: ForCStmtKind, Pos: pos, S: &ForCStmtData{Scope: sc, Init: init, Cond: cond, Incr: incr, Body: body}}
}

// NewForArray desugars `for elem in arr { body }` into nested for-C loops,
// one per array dimension, each indexing progressively deeper
// (spec.md §4.5, "for-array desugars to nested for-C over each dimension").
func NewForArray(pos token.Pos, sc *scope.Scope, elemVar *Variable, arr *Expr, dims int, indexVars []*Variable, intType *types.Type, body *Stmt) *Stmt {
	indexed := arr
	for _, iv := range indexVars {
		ivRef := &Expr{Kind: VarRef, Pos: pos, Type: intType, E: &VarRefExpr{Name: iv.Name, Var: iv}}
		indexed = &Expr{Kind: IndexExprKind, Pos: pos, E: &IndexExprData{Base: indexed, Index: ivRef}}
	}
	elemVar.Init = indexed
	elemBind := &Stmt{Kind: VarDeclStmtKind, Pos: pos, S: &VarDeclStmtData{Var: elemVar}}
	inner := NewBlock(sc, []*Stmt{elemBind, body})

	cur := inner
	for d := dims - 1; d >= 0; d-- {
		iv := indexVars[d]
		lenExpr := &Expr{Kind: ArrayLenKind, Pos: pos, Type: intType, E: &ArrayLenExpr{Base: arr, Dim: d}}
		cur = NewForRange(pos, sc, iv, NewIntConst(pos, 0, true), lenExpr, cur, intType)
	}
	return cur
}
