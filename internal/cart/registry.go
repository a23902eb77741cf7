package cart

import (
	"sync"

	"github.com/tabishkhalil463/FeastDash/internal/api"
)

// Registry hands out one Store per session, so all consumers of a session
// observe the same snapshot through a single writer.
type Registry struct {
	remote Remote
	tokens func(sessionID string) api.TokenStore

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(remote Remote, tokens func(sessionID string) api.TokenStore) *Registry {
	return &Registry{
		remote: remote,
		tokens: tokens,
		stores: make(map[string]*Store),
	}
}

func (r *Registry) ForSession(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[sessionID]; ok {
		return s
	}
	s := NewStore(r.remote, r.tokens(sessionID))
	r.stores[sessionID] = s
	return s
}

// Drop releases a session's store on logout or expiry.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
}
