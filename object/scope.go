package object

// Scope is a lexical environment: a name-to-value mapping plus an
// optional parent, chained up to the global scope.
type Scope struct {
	vars   map[string]Value
	parent *Scope
}

// NewScope creates a scope parented on parent (nil for the global scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]Value), parent: parent}
}

// Lookup walks the scope chain outward and returns the bound value, or
// (nil, false) if name is unbound anywhere in the chain.
func (s *Scope) Lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define writes name into this scope specifically, shadowing any binding
// of the same name in an ancestor scope.
func (s *Scope) Define(name string, v Value) {
	s.vars[name] = v
}

// Set assigns to the nearest ancestor scope (including s itself) where
// name already exists. Returns false if name is unbound anywhere in the
// chain, in which case no assignment happens.
func (s *Scope) Set(name string, v Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}
	return false
}

// Parent returns the enclosing scope, or nil at the global scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Names returns every name bound anywhere in the scope chain starting at
// s, walking outward to the global scope. Used by completion.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for cur := s; cur != nil; cur = cur.parent {
		for name := range cur.vars {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
