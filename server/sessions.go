package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/etherlang/ether/object"
)

// Session is a workspace with its own top-level scope, parented on the
// interpreter's shared global scope so it inherits every well-known
// object and every previously bootstrapped definition without copying
// any of it.
type Session struct {
	ID    string
	Name  string
	Scope *object.Scope
}

// Sessions tracks named workspace sessions over one shared Environment.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	nextID   atomic.Uint64
	env      *object.Environment
}

// NewSessions creates a session tracker whose sessions are all layered
// over env's global scope.
func NewSessions(env *object.Environment) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		env:      env,
	}
}

// Create starts a new session with an optional display name.
func (s *Sessions) Create(name string) *Session {
	id := fmt.Sprintf("s-%d", s.nextID.Add(1))
	session := &Session{
		ID:    id,
		Name:  name,
		Scope: object.NewScope(s.env.Global),
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Destroy removes a session; its scope is simply dropped, since nothing
// else in the shared global scope refers into it.
func (s *Sessions) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// All returns every live session, for listing.
func (s *Sessions) All() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
