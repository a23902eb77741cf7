package httpapi

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
	"github.com/tabishkhalil463/FeastDash/internal/poll"
)

// searchQuiet is the live-search quiet period: keystrokes inside it collapse
// into a single upstream request.
const searchQuiet = 300 * time.Millisecond

type searchRemote interface {
	ListRestaurants(ctx context.Context, search string) ([]domain.Restaurant, error)
}

// liveSearch is one session's debounced restaurant search: rapid queries
// supersede each other, and only the last one reaches the API.
type liveSearch struct {
	remote   searchRemote
	debounce *poll.Debouncer

	mu      sync.RWMutex
	query   string
	results []domain.Restaurant
	pending bool
}

func newLiveSearch(remote searchRemote, quiet time.Duration) *liveSearch {
	return &liveSearch{remote: remote, debounce: poll.NewDebouncer(quiet)}
}

func (s *liveSearch) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.pending = true
	s.mu.Unlock()
	s.debounce.Trigger(func() { s.run(q) })
}

func (s *liveSearch) run(q string) {
	results, err := s.remote.ListRestaurants(context.Background(), q)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query != q {
		// A newer query superseded this one while it was in flight.
		return
	}
	s.pending = false
	if err != nil {
		log.Printf("WARN: restaurant search failed: %v", err)
		return
	}
	s.results = results
}

type searchView struct {
	Query   string              `json:"query"`
	Pending bool                `json:"pending"`
	Results []domain.Restaurant `json:"results"`
}

func (s *liveSearch) Snapshot() searchView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.Restaurant, len(s.results))
	copy(results, s.results)
	return searchView{Query: s.query, Pending: s.pending, Results: results}
}

func (s *liveSearch) Stop() { s.debounce.Stop() }

type searchRegistry struct {
	remote searchRemote

	mu       sync.Mutex
	searches map[string]*liveSearch
}

func newSearchRegistry(remote searchRemote) *searchRegistry {
	return &searchRegistry{remote: remote, searches: make(map[string]*liveSearch)}
}

func (r *searchRegistry) For(sessionID string) *liveSearch {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.searches[sessionID]; ok {
		return s
	}
	s := newLiveSearch(r.remote, searchQuiet)
	r.searches[sessionID] = s
	return s
}

func (r *searchRegistry) Close(sessionID string) {
	r.mu.Lock()
	s, ok := r.searches[sessionID]
	delete(r.searches, sessionID)
	r.mu.Unlock()
	if ok {
		s.Stop()
	}
}
