package parser

import (
	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// parseTypeExpr parses a type specification: a primitive keyword, a
// previously-declared struct/enum/alias name, a tuple "(T, T, ...)", a
// "map[K]V" (map is a context-sensitive identifier, not a reserved word),
// a union "T1|T2|...", each optionally followed by one or more trailing
// "[]" array-of suffixes.
func (p *Parser) parseTypeExpr() *types.Type {
	t := p.parseUnionMember()
	if p.at(token.PIPE) {
		opts := []*types.Type{t}
		for p.at(token.PIPE) {
			p.advance()
			opts = append(opts, p.parseUnionMember())
		}
		ut, err := p.types.NewUnionType(opts)
		if err != nil {
			p.errorf("%s", err)
			return t
		}
		return ut
	}
	return t
}

func (p *Parser) parseUnionMember() *types.Type {
	var t *types.Type
	switch {
	case p.cur().Kind.IsPrimitiveType():
		name := p.advance().Name()
		prim, ok := p.types.PrimitiveByName(name)
		if !ok {
			p.errorf("unknown primitive type %q", name)
			prim = p.types.Primitive(types.Void)
		}
		t = prim
	case p.at(token.IDENT) && p.cur().Lexeme == "map":
		p.advance()
		p.expect(token.LBRACKET)
		key := p.parseTypeExpr()
		p.expect(token.RBRACKET)
		val := p.parseTypeExpr()
		t = p.types.GetMapType(key, val)
	case p.at(token.IDENT):
		name := p.advance().Lexeme
		named, ok := p.namedTypes[name]
		if !ok {
			p.errorf("undeclared type %q", name)
			named = p.types.Primitive(types.Void)
		}
		t = named
	case p.at(token.LPAREN):
		p.advance()
		var elems []*types.Type
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			elems = append(elems, p.parseTypeExpr())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
		t = p.types.GetTupleType(elems)
	default:
		p.errorf("expected a type, got %s", p.cur().Name())
		t = p.types.Primitive(types.Void)
	}
	for p.at(token.LBRACKET) {
		p.advance()
		p.expect(token.RBRACKET)
		t = p.types.GetArrayType(t, 1)
	}
	return t
}

// parseExpr parses a full expression via precedence climbing; the
// resulting tree is unresolved (Type is nil except on literal nodes where
// it is filled once the resolver sees an expected type).
func (p *Parser) parseExpr() *ast.Expr { return p.parseBinary(0) }

// precedence tables, lowest to highest.
func binPrec(k token.Kind) int {
	switch k {
	case token.OROR:
		return 1
	case token.ANDAND:
		return 2
	case token.PIPE:
		return 3
	case token.CARET:
		return 4
	case token.AMP:
		return 5
	case token.EQ, token.NE:
		return 6
	case token.LT, token.LE, token.GT, token.GE:
		return 7
	case token.SHL, token.SHR:
		return 8
	case token.PLUS, token.MINUS:
		return 9
	case token.STAR, token.SLASH, token.PERCENT:
		return 10
	default:
		return -1
	}
}

func (p *Parser) parseBinary(minPrec int) *ast.Expr {
	left := p.parseUnary()
	for {
		prec := binPrec(p.cur().Kind)
		if prec < 0 || prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.Expr{Kind: ast.BinaryExprKind, Pos: op.Pos, E: &ast.BinaryOpExpr{Op: op.Kind, Left: left, Right: right}}
	}
}

func (p *Parser) parseUnary() *ast.Expr {
	switch p.cur().Kind {
	case token.MINUS, token.NOT, token.TILDE:
		op := p.advance()
		operand := p.parseUnary()
		return &ast.Expr{Kind: ast.UnaryExprKind, Pos: op.Pos, E: &ast.UnaryOpExpr{Op: op.Kind, Operand: operand}}
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

func (p *Parser) parsePostfix(e *ast.Expr) *ast.Expr {
	for {
		switch p.cur().Kind {
		case token.DOT:
			p.advance()
			if p.at(token.LEN) {
				lenPos := p.advance().Pos
				e = &ast.Expr{Kind: ast.ArrayLenKind, Pos: lenPos, E: &ast.ArrayLenExpr{Base: e, Dim: 0}}
				continue
			}
			name := p.expect(token.IDENT).Lexeme
			e = &ast.Expr{Kind: ast.MemberExprKind, E: &ast.StructMemberExpr{Base: e, MemberName: name, MemberIdx: -1}}
		case token.LBRACKET:
			pos := p.advance().Pos
			idx := p.parseExpr()
			p.expect(token.RBRACKET)
			e = &ast.Expr{Kind: ast.IndexExprKind, Pos: pos, E: &ast.IndexExprData{Base: e, Index: idx}}
		case token.LPAREN:
			pos := p.advance().Pos
			var args []*ast.Expr
			for !p.at(token.RPAREN) && !p.at(token.EOF) {
				args = append(args, p.parseExpr())
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RPAREN)
			e = &ast.Expr{Kind: ast.CallExprKind, Pos: pos, E: &ast.CallExprData{Callee: e, Args: args}}
		case token.IS:
			pos := p.advance().Pos
			name := p.expect(token.IDENT).Lexeme
			e = &ast.Expr{Kind: ast.IsTestKind, Pos: pos, E: &ast.IsTestExpr{Base: e, TypeName: name, OptionIndex: -1}}
		case token.AS:
			pos := p.advance().Pos
			name := p.expect(token.IDENT).Lexeme
			e = &ast.Expr{Kind: ast.AsNarrowKind, Pos: pos, E: &ast.AsNarrowExpr{Base: e, TypeName: name, OptionIndex: -1}}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() *ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.INT_LIT:
		p.advance()
		return ast.NewIntConst(t.Pos, t.IntVal, true)
	case token.FLOAT_LIT:
		p.advance()
		return ast.NewFloatConst(t.Pos, t.FloatVal, false)
	case token.CHAR_LIT:
		p.advance()
		return ast.NewCharConst(t.Pos, t.CharVal)
	case token.STRING_LIT:
		p.advance()
		return ast.NewStringConst(t.Pos, t.StringVal)
	case token.TRUE:
		p.advance()
		return ast.NewBoolConst(t.Pos, true)
	case token.FALSE:
		p.advance()
		return ast.NewBoolConst(t.Pos, false)
	case token.THIS:
		p.advance()
		return &ast.Expr{Kind: ast.ThisRefKind, Pos: t.Pos, E: &ast.ThisExpr{}}
	case token.NEW:
		p.advance()
		elemType := p.parseUnionMember()
		var dims []*ast.Expr
		for p.at(token.LBRACKET) {
			p.advance()
			dims = append(dims, p.parseExpr())
			p.expect(token.RBRACKET)
		}
		return &ast.Expr{Kind: ast.NewArrayKind, Pos: t.Pos, E: &ast.NewArrayExpr{ElemType: elemType, Dims: dims}}
	case token.LPAREN:
		p.advance()
		first := p.parseExpr()
		if p.at(token.COMMA) {
			elems := []*ast.Expr{first}
			for p.at(token.COMMA) {
				p.advance()
				elems = append(elems, p.parseExpr())
			}
			p.expect(token.RPAREN)
			return &ast.Expr{Kind: ast.CompoundLit, Pos: t.Pos, E: &ast.CompoundLitExpr{Elems: elems}}
		}
		p.expect(token.RPAREN)
		return first
	case token.LBRACKET:
		p.advance()
		var elems []*ast.Expr
		for !p.at(token.RBRACKET) && !p.at(token.EOF) {
			elems = append(elems, p.parseExpr())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RBRACKET)
		return &ast.Expr{Kind: ast.CompoundLit, Pos: t.Pos, E: &ast.CompoundLitExpr{Elems: elems}}
	case token.IDENT:
		name := p.advance().Lexeme
		if p.at(token.LBRACE) && p.namedTypes[name] != nil {
			return p.parseBraceLit(t.Pos, name)
		}
		return &ast.Expr{Kind: ast.VarRef, Pos: t.Pos, E: &ast.VarRefExpr{Name: name}}
	default:
		p.errorf("unexpected token %s in expression", t.Name())
		p.advance()
		return ast.NewIntConst(t.Pos, 0, true)
	}
}

// parseBraceLit parses `StructName{a, b, c}`, a compound literal whose
// expected type is already known syntactically.
func (p *Parser) parseBraceLit(pos token.Pos, typeName string) *ast.Expr {
	p.expect(token.LBRACE)
	var elems []*ast.Expr
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		elems = append(elems, p.parseExpr())
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	e := &ast.Expr{Kind: ast.CompoundLit, Pos: pos, E: &ast.CompoundLitExpr{Elems: elems}}
	if t, ok := p.namedTypes[typeName]; ok {
		e.Type = t
	}
	return e
}
