// Package resolver implements C6 of the core pipeline: the two-phase walk
// described in spec.md §4.6 — a declaration pass that populates scopes and
// types while queuing subroutine bodies, followed by a body pass that
// resolves expressions and statements and inserts implicit conversions.
package resolver

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// Resolver orchestrates the declare-then-resolve-bodies walk. It holds no
// package-level state; a fresh Resolver is created per compilation
// (spec.md §9, explicit context over singletons).
type Resolver struct {
	ctx     *ast.Ctx
	pending []func()
}

func New(reg *types.Registry, diags *diagnostics.Collector) *Resolver {
	return &Resolver{ctx: &ast.Ctx{Types: reg, Diags: diags}}
}

// Run declares every member of root (recursively through nested modules
// and structs), then resolves every queued subroutine body, then locates
// and validates main (spec.md §4.6, "main present" check).
func (r *Resolver) Run(root *ast.ModuleDecl) (*ast.Program, error) {
	r.declareModule(root)
	for _, body := range r.pending {
		body()
	}

	prog := &ast.Program{Root: root, Types: r.ctx.Types}
	if root.Scope != nil {
		prog.Universe = root.Scope.Parent
	}
	prog.Main = findMain(root)
	if prog.Main == nil {
		r.ctx.Diags.Report(token.Pos{}, diagnostics.ResolutionError, "no main procedure found in module %q", root.Name)
	} else if err := checkMainSignature(r.ctx.Types, prog.Main); err != nil {
		r.ctx.Diags.Report(prog.Main.Pos, diagnostics.ResolutionError, "%s", err)
	}

	if r.ctx.Diags.HasErrors() {
		return prog, diagnostics.ErrHalt
	}
	return prog, nil
}

func (r *Resolver) declareModule(m *ast.ModuleDecl) {
	for _, sub := range m.Modules {
		r.declareModule(sub)
	}
	for _, s := range m.Structs {
		r.declareStruct(s)
	}
	for _, g := range m.Globals {
		r.declareGlobal(m, g)
	}
	for _, s := range m.Subrs {
		r.declareSubr(s)
	}
}

func (r *Resolver) declareStruct(s *ast.StructDecl) {
	for _, meth := range s.Methods {
		r.declareSubr(meth)
	}
}

func (r *Resolver) declareGlobal(m *ast.ModuleDecl, g *ast.Variable) {
	if g.Init != nil {
		g.Init = g.Init.Resolve(r.ctx, m.Scope)
		if g.Type == nil {
			g.Type = g.Init.Type
		} else {
			g.Init = r.ctx.Coerce(m.Scope, g.Init, g.Type)
		}
	} else if g.Type != nil {
		g.Init = ast.DefaultValueExpr(r.ctx.Types, g.Type)
	}
}

func (r *Resolver) declareSubr(s *ast.Subroutine) {
	if s.Body == nil {
		return
	}
	body, subr := s.Body, s
	r.pending = append(r.pending, func() {
		ast.ResolveBody(r.ctx, body, subr.Scope, subr.RetType)
	})
}

// findMain looks for main only among root's own subroutines: spec.md
// §4.5/§6 requires main "at global module scope", so a nested submodule's
// procedure of the same name does not qualify even if it otherwise passes
// checkMainSignature.
func findMain(root *ast.ModuleDecl) *ast.Subroutine {
	for _, s := range root.Subrs {
		if s.IsMain() {
			return s
		}
	}
	return nil
}

// checkMainSignature validates spec.md §6's contract: main is impure,
// declared at global module scope, returns void or int, and takes either
// no parameters or a single array-of-string (array-of-char, dim 2)
// parameter.
func checkMainSignature(reg *types.Registry, main *ast.Subroutine) error {
	if main.Pure {
		return fmt.Errorf("main must be a procedure, not a function")
	}
	ct := reg.Canonicalize(main.Type)
	if ct == nil || ct.Kind != types.CallableKind {
		return fmt.Errorf("main has no resolved signature")
	}
	ret := reg.Canonicalize(ct.T.(*types.CallableType).Ret)
	if ret.Kind != types.Void && ret.Kind != types.Int32 && ret.Kind != types.Int64 {
		return fmt.Errorf("main must return void or int, not %s", ret)
	}
	switch len(main.Params) {
	case 0:
		return nil
	case 1:
		pt := reg.Canonicalize(main.Params[0].Type)
		if pt.Kind != types.ArrayKind {
			return fmt.Errorf("main's single parameter must be array-of-string, dim 2")
		}
		at := pt.T.(*types.ArrayType)
		if at.Dim != 2 || reg.Canonicalize(at.Elem).Kind != types.Char {
			return fmt.Errorf("main's single parameter must be array-of-string, dim 2")
		}
		return nil
	default:
		return fmt.Errorf("main must take no parameters or exactly one array-of-string parameter")
	}
}
