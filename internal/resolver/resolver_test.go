package resolver

import (
	"testing"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/types"
)

func buildTrivialMain(reg *types.Registry) *ast.ModuleDecl {
	modScope := scope.NewModuleScope(nil, "main")
	subrScope := scope.NewSubroutineScope(modScope, "main")
	body := ast.NewBlock(scope.NewBlockScope(subrScope), nil)
	main := &ast.Subroutine{
		Name:    "main",
		Scope:   subrScope,
		Kind:    ast.SubrFree,
		RetType: reg.Primitive(types.Void),
		Body:    body,
		Type:    reg.GetCallableType(false, nil, nil, reg.Primitive(types.Void)),
	}
	modScope.Insert(&scope.Name{Ident: "main", Kind: scope.NameSubroutine, Entity: main})
	return &ast.ModuleDecl{Name: "main", Scope: modScope, Subrs: []*ast.Subroutine{main}}
}

func TestRunFindsAndValidatesMain(t *testing.T) {
	reg := types.NewRegistry()
	diags := diagnostics.New()
	root := buildTrivialMain(reg)

	prog, err := New(reg, diags).Run(root)
	if err != nil {
		t.Fatalf("unexpected error: %v (%v)", err, diags.Diags)
	}
	if prog.Main == nil {
		t.Fatal("expected Run to locate main")
	}
}

func TestRunRejectsPureMain(t *testing.T) {
	reg := types.NewRegistry()
	diags := diagnostics.New()
	root := buildTrivialMain(reg)
	root.Subrs[0].Pure = true

	if _, err := New(reg, diags).Run(root); err == nil {
		t.Fatal("expected an error when main is declared pure")
	}
}

func TestRunRejectsMissingMain(t *testing.T) {
	reg := types.NewRegistry()
	diags := diagnostics.New()
	root := &ast.ModuleDecl{Name: "main", Scope: scope.NewModuleScope(nil, "main")}

	if _, err := New(reg, diags).Run(root); err == nil {
		t.Fatal("expected an error when no main procedure is present")
	}
}
