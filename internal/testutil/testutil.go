// Package testutil holds fixture constructors for the core pipeline's
// tests, grounded on HicaroD-Telia's internal/testutil/testutil.go. None of
// the current test files import it.
package testutil

import (
	"bytes"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/interp"
	"github.com/arbor-lang/arbor/internal/lexer"
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

const DefaultFilename = "test.arbor"

func NewLexer(src []byte, filename string) *lexer.Lexer {
	if filename == "" {
		filename = DefaultFilename
	}
	return lexer.New(filename, src, diagnostics.New())
}

func NewLexerWithCollector(src []byte, filename string) (*lexer.Lexer, *diagnostics.Collector) {
	if filename == "" {
		filename = DefaultFilename
	}
	collector := diagnostics.New()
	return lexer.New(filename, src, collector), collector
}

// NewCtx builds a fresh resolution context over a new registry, the shape
// every ast-level test needs to resolve an expression or statement.
func NewCtx() (*ast.Ctx, *types.Registry, *diagnostics.Collector) {
	reg := types.NewRegistry()
	collector := diagnostics.New()
	return &ast.Ctx{Types: reg, Diags: collector}, reg, collector
}

// NewInterp builds an interpreter over a fresh registry with stdout
// captured in the returned buffer, for tests that assert on printed output.
func NewInterp() (*interp.Interp, *types.Registry, *bytes.Buffer) {
	reg := types.NewRegistry()
	var buf bytes.Buffer
	return interp.New(reg, &buf), reg, &buf
}

func NewIntVar(name string, t *types.Type) *ast.Variable {
	return &ast.Variable{Name: name, Type: t}
}

func NewVarRef(name string, v *ast.Variable) *ast.Expr {
	return &ast.Expr{Kind: ast.VarRef, Type: v.Type, E: &ast.VarRefExpr{Name: name, Var: v}}
}

func NewBinExpr(op token.Kind, left, right *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.BinaryExprKind, E: &ast.BinaryOpExpr{Op: op, Left: left, Right: right}}
}

// FakeScope returns a standalone module scope with no parent, for tests
// that need a Scope but don't care about the wider module tree.
func FakeScope(name string) *scope.Scope {
	if name == "" {
		name = "test"
	}
	return scope.NewModuleScope(nil, name)
}
