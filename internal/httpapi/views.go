package httpapi

import (
	"context"
	"sync"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/orders"
)

// boardRegistry keeps one live restaurant board per owner session. Opening
// starts the 30s poll; closing (leave, logout, expiry) cancels it. A board
// whose session ages out of the store retires its own loop, so an entry
// here never polls past its session.
type boardRegistry struct {
	remote orders.BoardRemote
	tokens func(sessionID string) api.TokenStore

	mu     sync.Mutex
	boards map[string]*orders.Board
}

func newBoardRegistry(remote orders.BoardRemote, tokens func(string) api.TokenStore) *boardRegistry {
	return &boardRegistry{remote: remote, tokens: tokens, boards: make(map[string]*orders.Board)}
}

func (r *boardRegistry) Open(sessionID string) *orders.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boards[sessionID]; ok {
		return b
	}
	b := orders.NewBoard(r.remote, r.tokens(sessionID))
	b.Start(context.Background())
	r.boards[sessionID] = b
	return b
}

func (r *boardRegistry) Close(sessionID string) {
	r.mu.Lock()
	b, ok := r.boards[sessionID]
	delete(r.boards, sessionID)
	r.mu.Unlock()
	if ok {
		b.Stop()
	}
}

type driverRegistry struct {
	remote orders.DriverRemote
	tokens func(sessionID string) api.TokenStore

	mu         sync.Mutex
	dashboards map[string]*orders.Dashboard
}

func newDriverRegistry(remote orders.DriverRemote, tokens func(string) api.TokenStore) *driverRegistry {
	return &driverRegistry{remote: remote, tokens: tokens, dashboards: make(map[string]*orders.Dashboard)}
}

func (r *driverRegistry) Open(sessionID string) *orders.Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.dashboards[sessionID]; ok {
		return d
	}
	d := orders.NewDashboard(r.remote, r.tokens(sessionID))
	d.Start(context.Background())
	r.dashboards[sessionID] = d
	return d
}

func (r *driverRegistry) Close(sessionID string) {
	r.mu.Lock()
	d, ok := r.dashboards[sessionID]
	delete(r.dashboards, sessionID)
	r.mu.Unlock()
	if ok {
		d.Stop()
	}
}
