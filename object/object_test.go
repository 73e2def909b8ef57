package object

import "testing"

func TestDynamicScopeInheritsPrototypeFields(t *testing.T) {
	parent := NewDynamic(nil, "Parent")
	parent.Scope.Define("_shared", NewNumber(1, nil))

	child := NewDynamic(parent, "Child")
	v, ok := child.Scope.Lookup("_shared")
	if !ok {
		t.Fatalf("expected child's object-scope to inherit _shared from parent")
	}
	n, ok := v.(*Number)
	if !ok || n.Val != 1 {
		t.Errorf("got %#v, want Number(1)", v)
	}
}

func TestAddMethodRejectsEmptySelector(t *testing.T) {
	dyn := NewDynamic(nil, "Obj")
	var reported string
	dyn.AddMethod(func(msg string) { reported = msg }, "", &Block{})
	if reported != "Runtime error: cannot define a method with an empty name" {
		t.Errorf("got %q, want the empty-selector diagnostic", reported)
	}
	if len(dyn.Methods) != 0 {
		t.Errorf("expected no method installed")
	}
}

func TestAddMethodRejectsNonBlockBody(t *testing.T) {
	dyn := NewDynamic(nil, "Obj")
	var reported string
	dyn.AddMethod(func(msg string) { reported = msg }, "foo", NewNumber(1, nil))
	if reported == "" {
		t.Errorf("expected a diagnostic for a non-block method body")
	}
	if len(dyn.Methods) != 0 {
		t.Errorf("expected no method installed")
	}
}

func TestAddMethodInstallsBlock(t *testing.T) {
	dyn := NewDynamic(nil, "Obj")
	block := &Block{}
	var reported string
	dyn.AddMethod(func(msg string) { reported = msg }, "foo", block)
	if reported != "" {
		t.Errorf("unexpected diagnostic %q", reported)
	}
	if dyn.Methods["foo"] != block {
		t.Errorf("expected foo to be installed as block")
	}
}

func TestScopeNamesWalksParentChain(t *testing.T) {
	global := NewScope(nil)
	global.Define("a", NewNumber(1, nil))
	child := NewScope(global)
	child.Define("b", NewNumber(2, nil))

	names := map[string]bool{}
	for _, n := range child.Names() {
		names[n] = true
	}
	if !names["a"] || !names["b"] {
		t.Errorf("got %v, want both \"a\" and \"b\"", child.Names())
	}
}

func TestScopeSetOnlyAffectsExistingBinding(t *testing.T) {
	s := NewScope(nil)
	if s.Set("missing", NewNumber(1, nil)) {
		t.Errorf("Set on an undefined name should report failure")
	}
	s.Define("x", NewNumber(1, nil))
	if !s.Set("x", NewNumber(2, nil)) {
		t.Errorf("Set on a defined name should succeed")
	}
	v, _ := s.Lookup("x")
	if v.(*Number).Val != 2 {
		t.Errorf("got %v, want 2", v)
	}
}

func TestEnvironmentInternStringIsIdempotent(t *testing.T) {
	env := NewEnvironment()
	id1 := env.InternString("foo")
	id2 := env.InternString("foo")
	if id1 != id2 {
		t.Errorf("interning the same string twice returned different ids: %d, %d", id1, id2)
	}
	if env.StringAt(id1) != "foo" {
		t.Errorf("got %q, want \"foo\"", env.StringAt(id1))
	}
}
