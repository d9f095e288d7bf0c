package review

import (
	"sync"
	"time"
)

// Registry holds in-flight sessions by id. Sessions are process-local and
// expire after the configured TTL; an expired session is equivalent to an
// abandoned one since nothing is persisted before Finalize.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]registryEntry
}

type registryEntry struct {
	session   *Session
	expiresAt time.Time
}

// NewRegistry creates a registry whose sessions expire after ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		sessions: make(map[string]registryEntry),
	}
}

// Put registers a session.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = registryEntry{session: s, expiresAt: time.Now().Add(r.ttl)}
}

// Get returns the session with the given id. Expired entries are pruned on
// access.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(r.sessions, id)
		return nil, false
	}
	return e.session, true
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of registered sessions, counting expired entries
// not yet pruned.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
