package token

import "testing"

func TestLookupIdentRecognizesKeywords(t *testing.T) {
	cases := map[string]Type{
		"def":       DEF,
		"obj":       OBJ,
		"var":       VAR,
		"return":    RETURN,
		"self":      SELF,
		"undefined": UNDEFINED,
		"foo":       NAME,
		"Object":    NAME,
	}
	for ident, want := range cases {
		if got := LookupIdent(ident); got != want {
			t.Errorf("LookupIdent(%q) = %v, want %v", ident, got, want)
		}
	}
}

func TestTypeStringKnownAndUnknown(t *testing.T) {
	if DEF.String() != "def" {
		t.Errorf("got %q, want \"def\"", DEF.String())
	}
	if Type(999).String() != "Type(999)" {
		t.Errorf("got %q, want \"Type(999)\"", Type(999).String())
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 3, Column: 7}
	if p.String() != "3:7" {
		t.Errorf("got %q, want \"3:7\"", p.String())
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: NAME, Literal: "foo"}
	if tok.String() != `NAME("foo")` {
		t.Errorf("got %q, want %q", tok.String(), `NAME("foo")`)
	}
}
