package checkout

import (
	"sync"
	"time"

	"github.com/tabishkhalil463/FeastDash/internal/cart"
)

// Registry keeps at most one wizard per session. Entering checkout replaces
// any previous attempt; leaving discards the form.
type Registry struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
}

func NewRegistry() *Registry {
	return &Registry{wizards: make(map[string]*Wizard)}
}

// Begin starts a fresh wizard for the session. A wizard with a payment
// attempt in flight cannot be replaced until the attempt settles.
func (r *Registry) Begin(sessionID string, cartStore *cart.Store, place PlaceOrderFunc, sleep func(time.Duration)) (*Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.wizards[sessionID]; ok && prev.processing() {
		return nil, ErrProcessing
	}
	w, err := NewWizard(cartStore, place, sleep)
	if err != nil {
		return nil, err
	}
	r.wizards[sessionID] = w
	return w, nil
}

func (r *Registry) Get(sessionID string) (*Wizard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wizards[sessionID]
	return w, ok
}

// Discard drops the session's wizard; the ephemeral form does not survive
// navigation away. It refuses while a payment attempt is in flight.
func (r *Registry) Discard(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wizards[sessionID]; ok && w.processing() {
		return ErrProcessing
	}
	delete(r.wizards, sessionID)
	return nil
}

// Drop removes the session's wizard unconditionally. Used when the session
// itself ends and the result can no longer reach anyone.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.wizards, sessionID)
}
