package scope

import "testing"

func TestInsertCollision(t *testing.T) {
	s := NewModuleScope(nil, "m")
	if err := s.Insert(&Name{Ident: "x", Kind: NameVariable}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Insert(&Name{Ident: "x", Kind: NameVariable}); err == nil {
		t.Fatal("expected collision error")
	}
}

func TestShadowCheck(t *testing.T) {
	outer := NewModuleScope(nil, "m")
	if err := outer.Insert(&Name{Ident: "x", Kind: NameVariable}); err != nil {
		t.Fatal(err)
	}
	inner := NewBlockScope(outer)
	if err := inner.ShadowCheck("x"); err == nil {
		t.Fatal("expected shadow error")
	}
	if err := inner.ShadowCheck("y"); err != nil {
		t.Fatalf("unexpected shadow error for unrelated name: %v", err)
	}
}

func TestLexicalLookupWalksAncestors(t *testing.T) {
	outer := NewModuleScope(nil, "m")
	outer.Insert(&Name{Ident: "g", Kind: NameVariable})
	inner := NewBlockScope(outer)
	n, err := inner.Lookup("g")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Ident != "g" {
		t.Fatalf("got %q", n.Ident)
	}
	if _, err := inner.LookupLocal("g"); err == nil {
		t.Fatal("LookupLocal should not see ancestor bindings")
	}
}

type fakeScoped struct{ scope *Scope }

func (f fakeScoped) OwnScope() *Scope { return f.scope }

func TestQualifiedLookupIntoStruct(t *testing.T) {
	module := NewModuleScope(nil, "m")
	structScope := NewStructScope(module, "Point")
	structScope.Insert(&Name{Ident: "x", Kind: NameVariable})

	module.Insert(&Name{
		Ident:  "Point",
		Kind:   NameStruct,
		Entity: fakeScoped{scope: structScope},
	})

	inner := NewBlockScope(module)
	n, err := inner.LookupMember([]string{"Point", "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Ident != "x" {
		t.Fatalf("got %q", n.Ident)
	}
}

func TestQualifiedLookupFallsBackToParentScope(t *testing.T) {
	universe := NewModuleScope(nil, "")
	outerStruct := NewStructScope(universe, "S")
	outerStruct.Insert(&Name{Ident: "x", Kind: NameVariable})
	universe.Insert(&Name{Ident: "S", Kind: NameStruct, Entity: fakeScoped{scope: outerStruct}})

	module := NewModuleScope(universe, "m")
	innerStruct := NewStructScope(module, "S")
	// The module's own "S" has no member x, so a qualified "S.x" fails to
	// resolve through it and falls back to the enclosing scope's "S".
	module.Insert(&Name{Ident: "S", Kind: NameStruct, Entity: fakeScoped{scope: innerStruct}})

	n, err := module.LookupMember([]string{"S", "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != outerStruct.Names["x"] {
		t.Fatalf("expected the enclosing scope's S.x, got %v", n)
	}
}

func TestBlockScopeAutoNaming(t *testing.T) {
	ResetBlockCounter()
	module := NewModuleScope(nil, "m")
	b1 := NewBlockScope(module)
	b2 := NewBlockScope(module)
	if b1.Label == b2.Label {
		t.Fatalf("expected distinct auto-generated labels, got %q twice", b1.Label)
	}
}
