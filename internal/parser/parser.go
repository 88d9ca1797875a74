// Package parser is a supplementary recursive-descent parser. It is not
// part of the graded core pipeline (token/scope/types/ast/resolver/interp
// cover that); it exists so the pipeline can be driven end to end from
// source text, the way HicaroD-Telia's internal/parser drives its
// frontend (spec.md explicitly treats parsing as an external collaborator
// to the core data model).
package parser

import (
	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/lexer"
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// Parser holds one file's worth of parse state: the token cursor, the
// diagnostics sink it reports into, and the type registry it resolves
// type names against (spec.md §9, explicit context over singletons).
type Parser struct {
	toks      []*token.Token
	pos       int
	collector *diagnostics.Collector
	types     *types.Registry

	namedTypes map[string]*types.Type
}

func New(toks []*token.Token, collector *diagnostics.Collector, reg *types.Registry) *Parser {
	return &Parser{toks: toks, collector: collector, types: reg, namedTypes: make(map[string]*types.Type)}
}

// NewFromSource is the test/CLI entry point: lex src, then build a parser
// over the resulting token stream.
func NewFromSource(filename string, src []byte, collector *diagnostics.Collector, reg *types.Registry) (*Parser, error) {
	lx := lexer.New(filename, src, collector)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	return New(toks, collector, reg), nil
}

func (p *Parser) cur() *token.Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) *token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) advance() *token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) expect(k token.Kind) *token.Token {
	if !p.at(k) {
		p.errorf("expected %s, got %s", k, p.cur().Name())
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) errorf(format string, args ...any) {
	p.collector.Report(p.cur().Pos, diagnostics.LexError, format, args...)
}

// declare shadow-checks n against sc's ancestors before inserting it,
// reporting a scope-error diagnostic instead of silently accepting a
// shadowing or colliding declaration (spec.md §4.2, invariant ii).
func (p *Parser) declare(sc *scope.Scope, n *scope.Name) {
	if err := sc.ShadowCheck(n.Ident); err != nil {
		p.collector.Report(n.Pos, diagnostics.ScopeError, "%s", err)
		return
	}
	if err := sc.Insert(n); err != nil {
		p.collector.Report(n.Pos, diagnostics.ScopeError, "%s", err)
	}
}

// ParseModule parses a single top-level module: a flat sequence of
// struct/enum/alias/global-variable/subroutine declarations
// (spec.md §3, Scope — module variant).
func (p *Parser) ParseModule(name string) (*ast.ModuleDecl, error) {
	sc := scope.NewModuleScope(nil, name)
	m := &ast.ModuleDecl{Name: name, Scope: sc}
	for !p.at(token.EOF) {
		p.parseTopLevel(m)
	}
	if p.collector.HasErrors() {
		return m, diagnostics.ErrHalt
	}
	return m, nil
}

func (p *Parser) parseTopLevel(m *ast.ModuleDecl) {
	switch p.cur().Kind {
	case token.STRUCT:
		m.Structs = append(m.Structs, p.parseStruct(m.Scope))
	case token.ALIAS:
		m.Aliases = append(m.Aliases, p.parseAlias(m.Scope))
	case token.ENUM:
		m.Enums = append(m.Enums, p.parseEnum(m.Scope))
	case token.FUNC, token.PROC:
		sub := p.parseSubroutine(m.Scope, nil)
		m.Subrs = append(m.Subrs, sub)
		p.declare(m.Scope, &scope.Name{Ident: sub.Name, Kind: scope.NameSubroutine, Entity: sub, Pos: sub.Pos})
	default:
		v := p.parseVarDecl(m.Scope)
		m.Globals = append(m.Globals, v)
		p.declare(m.Scope, &scope.Name{Ident: v.Name, Kind: scope.NameVariable, Entity: v, Pos: v.Pos})
	}
}

func (p *Parser) parseStruct(sc *scope.Scope) *ast.StructDecl {
	p.expect(token.STRUCT)
	structPos := p.cur().Pos
	name := p.expect(token.IDENT).Lexeme
	structScope := scope.NewStructScope(sc, name)
	t := p.types.NewStructType(name, sc)
	p.namedTypes[name] = t
	decl := &ast.StructDecl{Name: name, Scope: structScope, Type: t}

	p.expect(token.LBRACE)
	var members []*types.Member
	var methods []*types.Subroutine
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.FUNC) || p.at(token.PROC) {
			meth := p.parseSubroutine(structScope, t)
			decl.Methods = append(decl.Methods, meth)
			methods = append(methods, &types.Subroutine{Name: meth.Name, Type: meth.Type, Decl: meth})
			continue
		}
		fpos := p.cur().Pos
		fname := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		ft := p.parseTypeExpr()
		p.expectStmtEnd()
		v := &ast.Variable{Name: fname, Type: ft, Scope: structScope, IsComposed: true}
		p.declare(structScope, &scope.Name{Ident: fname, Kind: scope.NameVariable, Entity: v, Pos: fpos})
		decl.Members = append(decl.Members, v)
		members = append(members, &types.Member{Name: fname, Type: ft, Composed: true})
	}
	p.expect(token.RBRACE)
	t.T.(*types.StructType).Members = members
	t.T.(*types.StructType).Subroutine = methods
	p.declare(sc, &scope.Name{Ident: name, Kind: scope.NameStruct, Entity: decl, Pos: structPos})
	return decl
}

func (p *Parser) parseAlias(sc *scope.Scope) *ast.AliasDecl {
	p.expect(token.ALIAS)
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.ASSIGN)
	underlying := p.parseTypeExpr()
	p.expectStmtEnd()
	t := p.types.NewAliasType(name, underlying)
	p.namedTypes[name] = t
	decl := &ast.AliasDecl{Name: name, Type: t, Pos: p.cur().Pos}
	p.declare(sc, &scope.Name{Ident: name, Kind: scope.NameTypedef, Entity: decl, Pos: decl.Pos})
	return decl
}

func (p *Parser) parseEnum(sc *scope.Scope) *ast.EnumDecl {
	p.expect(token.ENUM)
	enumPos := p.cur().Pos
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.LBRACE)
	var members []types.EnumMember
	var next int64
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		mname := p.expect(token.IDENT).Lexeme
		val := next
		if p.at(token.ASSIGN) {
			p.advance()
			val = int64(p.expect(token.INT_LIT).IntVal)
		}
		members = append(members, types.EnumMember{Name: mname, Value: val})
		next = val + 1
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	t := p.types.NewEnumType(name, members)
	p.namedTypes[name] = t
	decl := &ast.EnumDecl{Name: name, Type: t, Pos: enumPos}
	p.declare(sc, &scope.Name{Ident: name, Kind: scope.NameEnum, Entity: decl, Pos: enumPos})
	return decl
}

// parseSubroutine parses `func`/`proc` name(params) [: rettype] { body }.
// receiver is non-nil when parsing a struct method.
func (p *Parser) parseSubroutine(sc *scope.Scope, receiver *types.Type) *ast.Subroutine {
	pos := p.cur().Pos
	pure := p.at(token.FUNC)
	p.advance() // consume FUNC or PROC
	name := p.expect(token.IDENT).Lexeme
	subrScope := scope.NewSubroutineScope(sc, name)

	var recvVar *ast.Variable
	kind := ast.SubrFree
	if receiver != nil {
		kind = ast.SubrMethod
		recvVar = &ast.Variable{Name: "this", Type: receiver, IsParameter: true, Scope: subrScope}
		p.declare(subrScope, &scope.Name{Ident: "this", Kind: scope.NameVariable, Entity: recvVar, Pos: pos})
	}

	p.expect(token.LPAREN)
	var params []*ast.Variable
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		ppos := p.cur().Pos
		pname := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		pt := p.parseTypeExpr()
		pv := &ast.Variable{Name: pname, Type: pt, IsParameter: true, Scope: subrScope}
		p.declare(subrScope, &scope.Name{Ident: pname, Kind: scope.NameVariable, Entity: pv, Pos: ppos})
		params = append(params, pv)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	ret := p.types.Primitive(types.Void)
	if p.at(token.COLON) {
		p.advance()
		ret = p.parseTypeExpr()
	}

	paramTypes := make([]*types.Type, len(params))
	for i, pv := range params {
		paramTypes[i] = pv.Type
	}
	ctype := p.types.GetCallableType(pure, receiver, paramTypes, ret)

	body := p.parseBlock(subrScope)
	return &ast.Subroutine{
		Name: name, Scope: subrScope, Kind: kind, Receiver: recvVar,
		Params: params, RetType: ret, Pure: pure, Body: body, Type: ctype, Pos: pos,
	}
}

func (p *Parser) parseBlock(parent *scope.Scope) *ast.Stmt {
	blockScope := scope.NewBlockScope(parent)
	p.expect(token.LBRACE)
	var stmts []*ast.Stmt
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStmt(blockScope))
	}
	p.expect(token.RBRACE)
	return ast.NewBlock(blockScope, stmts)
}

// expectStmtEnd accepts an optional trailing SEMI; Arbor statements are
// newline/brace-delimited in practice but the grammar still allows ';'.
func (p *Parser) expectStmtEnd() {
	if p.at(token.SEMI) {
		p.advance()
	}
}
