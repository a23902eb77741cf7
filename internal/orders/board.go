package orders

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/domain"
	"github.com/tabishkhalil463/FeastDash/internal/poll"
)

// PollInterval is how often the restaurant board and driver dashboard
// refresh themselves while mounted.
const PollInterval = 30 * time.Second

var (
	ErrNoTransition = errors.New("no transition available from this status")
	ErrUnknownOrder = errors.New("order not in current snapshot")
)

type BoardRemote interface {
	RestaurantOrders(ctx context.Context, ts api.TokenStore) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, ts api.TokenStore, orderNumber string, status domain.OrderStatus) error
}

// Board is the restaurant owner's live order view: a polled snapshot of all
// orders, grouped into tabs, with one forward transition per status.
type Board struct {
	remote   BoardRemote
	tokens   api.TokenStore
	interval time.Duration

	mu     sync.RWMutex
	orders []domain.Order
	poller *poll.Poller
}

func NewBoard(remote BoardRemote, tokens api.TokenStore) *Board {
	return &Board{remote: remote, tokens: tokens, interval: PollInterval}
}

// SetInterval overrides the poll interval; call before Start.
func (b *Board) SetInterval(d time.Duration) { b.interval = d }

// Start begins polling; the loop dies with ctx (the view's lifetime).
func (b *Board) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.poller != nil {
		return
	}
	b.poller = poll.Start(ctx, b.interval, b.fetch)
}

func (b *Board) Stop() {
	b.mu.Lock()
	p := b.poller
	b.poller = nil
	b.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// Refresh coalesces with the scheduled poll; at most one request is ever in
// flight for this board.
func (b *Board) Refresh() {
	b.mu.RLock()
	p := b.poller
	b.mu.RUnlock()
	if p != nil {
		p.Trigger()
	}
}

func (b *Board) fetch(ctx context.Context) {
	orders, err := b.remote.RestaurantOrders(ctx, b.tokens)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			// Nobody is left to look at this board; retire the loop.
			log.Printf("WARN: restaurant orders poll stopped: %v", err)
			b.halt()
			return
		}
		// Reads degrade silently; the previous snapshot stays visible.
		log.Printf("WARN: restaurant orders refresh failed: %v", err)
		return
	}
	b.mu.Lock()
	b.orders = orders
	b.mu.Unlock()
}

// halt cancels the poll loop from inside a run.
func (b *Board) halt() {
	b.mu.RLock()
	p := b.poller
	b.mu.RUnlock()
	if p != nil {
		p.Cancel()
	}
}

func (b *Board) Snapshot() []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// Tab filters the snapshot by one of the fixed status groups.
func (b *Board) Tab(value string) []domain.Order {
	var tab *domain.Tab
	for i := range domain.BoardTabs {
		if domain.BoardTabs[i].Value == value {
			tab = &domain.BoardTabs[i]
			break
		}
	}
	if tab == nil {
		return nil
	}
	var out []domain.Order
	for _, o := range b.Snapshot() {
		if tab.Contains(o.Status) {
			out = append(out, o)
		}
	}
	return out
}

func (b *Board) Counts() map[string]int {
	counts := make(map[string]int, len(domain.BoardTabs))
	snapshot := b.Snapshot()
	for _, tab := range domain.BoardTabs {
		n := 0
		for _, o := range snapshot {
			if tab.Contains(o.Status) {
				n++
			}
		}
		counts[tab.Value] = n
	}
	return counts
}

// NextAction reports the single forward transition for an order's current
// status, if any.
func (b *Board) NextAction(orderNumber string) (domain.Transition, bool) {
	for _, o := range b.Snapshot() {
		if o.OrderNumber == orderNumber {
			t, ok := domain.OwnerTransitions[o.Status]
			return t, ok
		}
	}
	return domain.Transition{}, false
}

// Advance requests the order's one forward transition. Fire-and-forget: on
// success the board refetches, on failure the snapshot is left untouched and
// the server's reason comes back to the caller.
func (b *Board) Advance(ctx context.Context, orderNumber string) error {
	var current *domain.Order
	for _, o := range b.Snapshot() {
		if o.OrderNumber == orderNumber {
			current = &o
			break
		}
	}
	if current == nil {
		return ErrUnknownOrder
	}
	transition, ok := domain.OwnerTransitions[current.Status]
	if !ok {
		return ErrNoTransition
	}
	if err := b.remote.UpdateOrderStatus(ctx, b.tokens, orderNumber, transition.Next); err != nil {
		return err
	}
	b.Refresh()
	return nil
}
