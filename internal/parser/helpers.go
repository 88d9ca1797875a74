package parser

import (
	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/types"
)

// ExprFrom parses src as a single standalone expression, for use in tests
// that want a tree without a surrounding module/subroutine.
func ExprFrom(src string) (*ast.Expr, *diagnostics.Collector, error) {
	collector := diagnostics.New()
	reg := types.NewRegistry()
	p, err := NewFromSource("<test>", []byte(src), collector, reg)
	if err != nil {
		return nil, collector, err
	}
	e := p.parseExpr()
	if collector.HasErrors() {
		return e, collector, diagnostics.ErrHalt
	}
	return e, collector, nil
}

// StmtFrom parses src as a single statement within an empty block scope.
func StmtFrom(src string) (*ast.Stmt, *diagnostics.Collector, error) {
	collector := diagnostics.New()
	reg := types.NewRegistry()
	p, err := NewFromSource("<test>", []byte(src), collector, reg)
	if err != nil {
		return nil, collector, err
	}
	sc := scope.NewBlockScope(nil)
	s := p.parseStmt(sc)
	if collector.HasErrors() {
		return s, collector, diagnostics.ErrHalt
	}
	return s, collector, nil
}

// ModuleFrom parses src as a whole module named "main", the form the CLI
// driver feeds into the resolver.
func ModuleFrom(src string) (*ast.ModuleDecl, *diagnostics.Collector, *types.Registry, error) {
	collector := diagnostics.New()
	reg := types.NewRegistry()
	p, err := NewFromSource("<test>", []byte(src), collector, reg)
	if err != nil {
		return nil, collector, reg, err
	}
	m, err := p.ParseModule("main")
	return m, collector, reg, err
}
