package parser

import (
	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/scope"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// parseVarDecl parses `[static] name : Type [= expr]`. It does not insert
// the resulting Variable into sc: a global caller does that itself at
// parse time, while a statement-level declaration is inserted once by
// ast.Stmt.Resolve's VarDeclStmtKind case (spec.md §4.6) — inserting here
// too would double-register the name. Type inference from the initializer
// alone (no annotation) is out of scope for this supplementary grammar;
// every declaration this parser accepts carries an explicit type.
func (p *Parser) parseVarDecl(sc *scope.Scope) *ast.Variable {
	isStatic := false
	if p.at(token.STATIC) {
		p.advance()
		isStatic = true
	}
	pos := p.cur().Pos
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.COLON)
	vt := p.parseTypeExpr()
	v := &ast.Variable{Name: name, Type: vt, Scope: sc, IsStatic: isStatic, Pos: pos}
	if p.at(token.ASSIGN) {
		p.advance()
		v.Init = p.parseExpr()
	}
	p.expectStmtEnd()
	return v
}

func (p *Parser) parseStmt(sc *scope.Scope) *ast.Stmt {
	switch p.cur().Kind {
	case token.LBRACE:
		return p.parseBlock(sc)
	case token.IF:
		return p.parseIf(sc)
	case token.WHILE:
		return p.parseWhile(sc)
	case token.FOR:
		return p.parseFor(sc)
	case token.SWITCH:
		return p.parseSwitch(sc)
	case token.MATCH:
		return p.parseMatch(sc)
	case token.RETURN:
		pos := p.advance().Pos
		var val *ast.Expr
		if !p.at(token.SEMI) && !p.at(token.RBRACE) {
			val = p.parseExpr()
		}
		p.expectStmtEnd()
		return &ast.Stmt{Kind: ast.ReturnStmtKind, Pos: pos, S: &ast.ReturnStmtData{Value: val}}
	case token.BREAK:
		pos := p.advance().Pos
		p.expectStmtEnd()
		return &ast.Stmt{Kind: ast.BreakStmtKind, Pos: pos, S: &ast.BreakStmtData{}}
	case token.CONTINUE:
		pos := p.advance().Pos
		p.expectStmtEnd()
		return &ast.Stmt{Kind: ast.ContinueStmtKind, Pos: pos, S: &ast.ContinueStmtData{}}
	case token.PRINT:
		pos := p.advance().Pos
		p.expect(token.LPAREN)
		var args []*ast.Expr
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			args = append(args, p.parseExpr())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
		p.expectStmtEnd()
		return &ast.Stmt{Kind: ast.PrintStmtKind, Pos: pos, S: &ast.PrintStmtData{Args: args}}
	case token.ASSERT:
		pos := p.advance().Pos
		start := p.pos
		cond := p.parseExpr()
		src := p.sourceSpan(start, p.pos)
		p.expectStmtEnd()
		return &ast.Stmt{Kind: ast.AssertStmtKind, Pos: pos, S: &ast.AssertStmtData{Cond: cond, SourceText: src}}
	case token.STATIC:
		v := p.parseVarDecl(sc)
		return &ast.Stmt{Kind: ast.VarDeclStmtKind, Pos: v.Pos, S: &ast.VarDeclStmtData{Var: v}}
	case token.IDENT:
		if p.peekAt(1).Kind == token.COLON {
			v := p.parseVarDecl(sc)
			return &ast.Stmt{Kind: ast.VarDeclStmtKind, Pos: v.Pos, S: &ast.VarDeclStmtData{Var: v}}
		}
		return p.parseSimpleStmt()
	default:
		return p.parseSimpleStmt()
	}
}

// parseSimpleStmt parses an assignment or a bare expression statement.
func (p *Parser) parseSimpleStmt() *ast.Stmt {
	pos := p.cur().Pos
	e := p.parseExpr()
	if p.at(token.ASSIGN) {
		p.advance()
		rhs := p.parseExpr()
		p.expectStmtEnd()
		return &ast.Stmt{Kind: ast.AssignStmtKind, Pos: pos, S: &ast.AssignStmtData{LHS: e, RHS: rhs}}
	}
	p.expectStmtEnd()
	return &ast.Stmt{Kind: ast.ExprStmtKind, Pos: pos, S: &ast.ExprStmtData{X: e}}
}

// sourceSpan reconstructs the literal-ish source text of the tokens between
// [from, to) for assertion failure messages; it is not meant to be a
// faithful re-print, just a recognizable rendering of what was asserted.
func (p *Parser) sourceSpan(from, to int) string {
	s := ""
	for i := from; i < to; i++ {
		if i > from {
			s += " "
		}
		s += p.toks[i].Lexeme
		if p.toks[i].Lexeme == "" {
			s += p.toks[i].Kind.String()
		}
	}
	return s
}

func (p *Parser) parseIf(sc *scope.Scope) *ast.Stmt {
	pos := p.advance().Pos
	cond := p.parseExpr()
	then := p.parseBlock(sc)
	var els *ast.Stmt
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			els = p.parseIf(sc)
		} else {
			els = p.parseBlock(sc)
		}
	}
	return &ast.Stmt{Kind: ast.IfStmtKind, Pos: pos, S: &ast.IfStmtData{Cond: cond, Then: then, Else: els}}
}

func (p *Parser) parseWhile(sc *scope.Scope) *ast.Stmt {
	pos := p.advance().Pos
	cond := p.parseExpr()
	body := p.parseBlock(sc)
	return &ast.Stmt{Kind: ast.WhileStmtKind, Pos: pos, S: &ast.WhileStmtData{Cond: cond, Body: body}}
}

// parseFor supports the two surface forms spec.md §4.5 describes:
// `for i in start..end { }` (range, desugars via ast.NewForRange) and the
// canonical C-style `for init; cond; incr { }`. for-array's surface form
// needs the array's dimensionality to desugar correctly, which this
// single-pass parser does not have before the resolver runs, so it is not
// accepted here, and ast.NewForArray has no caller in the parser.
func (p *Parser) parseFor(sc *scope.Scope) *ast.Stmt {
	pos := p.advance().Pos
	if p.at(token.IDENT) && p.peekAt(1).Kind == token.IN {
		loopScope := scope.NewBlockScope(sc)
		name := p.advance().Lexeme
		p.expect(token.IN)
		start := p.parseExpr()
		p.expect(token.RANGE)
		end := p.parseExpr()
		intType := p.types.Primitive(types.Int32)
		// loopVar is inserted into loopScope by ast.NewForRange's own
		// VarDeclStmtKind wrapper when the resolver walks it, not here.
		loopVar := &ast.Variable{Name: name, Type: intType, Scope: loopScope, Pos: pos}
		body := p.parseBlock(loopScope)
		return ast.NewForRange(pos, loopScope, loopVar, start, end, body, intType)
	}

	forScope := scope.NewBlockScope(sc)
	var init, incr *ast.Stmt
	var cond *ast.Expr
	if !p.at(token.SEMI) {
		init = p.parseSimpleOrDeclStmt(forScope)
	} else {
		p.advance()
	}
	if !p.at(token.SEMI) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)
	if !p.at(token.LBRACE) {
		incr = p.parseSimpleStmtNoTerm()
	}
	body := p.parseBlock(forScope)
	return &ast.Stmt{Kind: ast.ForCStmtKind, Pos: pos, S: &ast.ForCStmtData{Scope: forScope, Init: init, Cond: cond, Incr: incr, Body: body}}
}

func (p *Parser) parseSimpleOrDeclStmt(sc *scope.Scope) *ast.Stmt {
	if p.at(token.IDENT) && p.peekAt(1).Kind == token.COLON {
		v := p.parseVarDecl2NoTerm(sc)
		return &ast.Stmt{Kind: ast.VarDeclStmtKind, Pos: v.Pos, S: &ast.VarDeclStmtData{Var: v}}
	}
	s := p.parseSimpleStmtNoTerm()
	p.expect(token.SEMI)
	return s
}

// parseVarDecl2NoTerm is parseVarDecl without consuming a trailing
// statement terminator, for use inside a for-C header. It does not insert
// into sc either, for the same reason parseVarDecl doesn't.
func (p *Parser) parseVarDecl2NoTerm(sc *scope.Scope) *ast.Variable {
	pos := p.cur().Pos
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.COLON)
	vt := p.parseTypeExpr()
	v := &ast.Variable{Name: name, Type: vt, Scope: sc, Pos: pos}
	if p.at(token.ASSIGN) {
		p.advance()
		v.Init = p.parseExpr()
	}
	p.expect(token.SEMI)
	return v
}

func (p *Parser) parseSimpleStmtNoTerm() *ast.Stmt {
	pos := p.cur().Pos
	e := p.parseExpr()
	if p.at(token.ASSIGN) {
		p.advance()
		rhs := p.parseExpr()
		return &ast.Stmt{Kind: ast.AssignStmtKind, Pos: pos, S: &ast.AssignStmtData{LHS: e, RHS: rhs}}
	}
	return &ast.Stmt{Kind: ast.ExprStmtKind, Pos: pos, S: &ast.ExprStmtData{X: e}}
}

// parseSwitch parses the flat-statement-list, linear-case-search form
// described by ast.SwitchStmtData: each `case v1, v2:` clause records one
// label (the index into the flattened Stmts list) per value, and
// statements accumulate until the next case/default/closing brace.
func (p *Parser) parseSwitch(sc *scope.Scope) *ast.Stmt {
	pos := p.advance().Pos
	scrut := p.parseExpr()
	blockScope := scope.NewBlockScope(sc)
	p.expect(token.LBRACE)

	data := &ast.SwitchStmtData{Scrutinee: scrut, DefaultLabel: -1}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.CASE:
			p.advance()
			label := len(data.Stmts)
			data.CaseValues = append(data.CaseValues, p.parseExpr())
			data.CaseLabels = append(data.CaseLabels, label)
			for p.at(token.COMMA) {
				p.advance()
				data.CaseValues = append(data.CaseValues, p.parseExpr())
				data.CaseLabels = append(data.CaseLabels, label)
			}
			p.expect(token.COLON)
		case token.DEFAULT:
			p.advance()
			p.expect(token.COLON)
			data.DefaultLabel = len(data.Stmts)
		default:
			data.Stmts = append(data.Stmts, p.parseStmt(blockScope))
		}
	}
	p.expect(token.RBRACE)
	return &ast.Stmt{Kind: ast.SwitchStmtKind, Pos: pos, S: data}
}

// parseMatch parses `match expr { case TypeName name { ... } ... default { ... } }`
// over a union-typed scrutinee (spec.md §4.5/§4.7).
func (p *Parser) parseMatch(sc *scope.Scope) *ast.Stmt {
	pos := p.advance().Pos
	scrut := p.parseExpr()
	p.expect(token.LBRACE)

	data := &ast.MatchStmtData{Scrutinee: scrut}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.CASE:
			p.advance()
			var typeName string
			if p.cur().Kind.IsPrimitiveType() {
				typeName = p.advance().Name()
			} else {
				typeName = p.expect(token.IDENT).Lexeme
			}
			varName := p.expect(token.IDENT).Lexeme
			caseScope := scope.NewBlockScope(sc)
			optType, ok := p.namedTypes[typeName]
			if !ok {
				if prim, ok2 := p.types.PrimitiveByName(typeName); ok2 {
					optType = prim
				} else {
					p.errorf("undeclared type %q in match case", typeName)
					optType = p.types.Primitive(types.Void)
				}
			}
			// cv is inserted into caseScope by ast.Stmt.Resolve's
			// MatchStmtKind case, not here (mirrors the for-range loop
			// variable's deferred insertion).
			cv := &ast.Variable{Name: varName, Type: optType, Scope: caseScope, Pos: p.cur().Pos}
			data.OptionTypes = append(data.OptionTypes, optType)
			data.CaseVars = append(data.CaseVars, cv)
			data.CaseBodies = append(data.CaseBodies, p.parseBlock(caseScope))
		case token.DEFAULT:
			p.advance()
			data.DefaultBody = p.parseBlock(sc)
		default:
			p.errorf("expected case or default in match, got %s", p.cur().Name())
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return &ast.Stmt{Kind: ast.MatchStmtKind, Pos: pos, S: data}
}
