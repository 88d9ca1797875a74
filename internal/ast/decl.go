// Package ast implements C4 (expression AST) and C5 (statement AST) of the
// core pipeline (spec.md §3/§4.4/§4.5): a polymorphic node family with
// resolution, deep copy, structural equality/hash/ordering, plus the
// declarations (variables, subroutines, modules, structs, enums, aliases)
// those nodes are built from.
package ast

import (
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// Variable is owned by its declaring scope; every reference to it resolves
// to this stable handle (spec.md §3, Variable).
type Variable struct {
	Scope          *scope.Scope
	Name           string
	Type           *types.Type
	Init           *Expr // nil when there is no initializer
	IsParameter    bool
	IsStatic       bool
	IsComposed     bool
	NeedsInference bool
	Pos            token.Pos
}

// SubrKind distinguishes how a subroutine reference is bound
// (spec.md §9, "SubrRef = Free | Method | Extern").
type SubrKind int

const (
	SubrFree SubrKind = iota
	SubrMethod
	SubrExtern
)

// Subroutine is a function (pure) or procedure (impure) declaration.
type Subroutine struct {
	Name     string
	Scope    *scope.Scope // the subroutine's own scope; parameters live here
	Kind     SubrKind
	Receiver *Variable // non-nil only for SubrMethod
	Params   []*Variable
	RetType  *types.Type
	Pure     bool
	Body     *Stmt // Block statement; nil for SubrExtern
	Type     *types.Type
	Pos      token.Pos
}

func (s *Subroutine) IsMain() bool {
	return s.Kind == SubrFree && s.Name == "main" && s.Scope != nil && s.Scope.Parent != nil &&
		s.Scope.Parent.Kind == scope.ModuleScope
}

// ModuleDecl is a named lexical module, possibly nested (spec.md §3,
// Scope). It implements scope.Scoped so qualified lookup can descend
// through it.
type ModuleDecl struct {
	Name    string
	Scope   *scope.Scope
	Modules []*ModuleDecl
	Structs []*StructDecl
	Enums   []*EnumDecl
	Aliases []*AliasDecl
	Globals []*Variable
	Subrs   []*Subroutine
}

func (m *ModuleDecl) OwnScope() *scope.Scope { return m.Scope }

// StructDecl is a struct type declaration: name, enclosing scope, ordered
// member list, and member subroutines (spec.md §3, Struct).
type StructDecl struct {
	Name      string
	Scope     *scope.Scope
	Type      *types.Type // Kind == types.StructKind
	Members   []*Variable
	Methods   []*Subroutine
}

func (s *StructDecl) OwnScope() *scope.Scope { return s.Scope }

type EnumDecl struct {
	Name string
	Type *types.Type // Kind == types.EnumKind
	Pos  token.Pos
}

type AliasDecl struct {
	Name string
	Type *types.Type // Kind == types.AliasKind
	Pos  token.Pos
}

// Program is the root of a resolved compilation: the module tree plus the
// type/scope registries it was built with (spec.md §3, Lifecycle).
type Program struct {
	Root     *ModuleDecl
	Universe *scope.Scope
	Types    *types.Registry
	Main     *Subroutine // nil until the resolver locates it
}
