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

type DriverRemote interface {
	DriverActiveOrder(ctx context.Context, ts api.TokenStore) (*domain.Order, error)
	DriverAvailableOrders(ctx context.Context, ts api.TokenStore) ([]domain.Order, error)
	DriverOrderHistory(ctx context.Context, ts api.TokenStore) ([]domain.Order, error)
	AcceptOrder(ctx context.Context, ts api.TokenStore, orderNumber string) error
	UpdateDriverOrderStatus(ctx context.Context, ts api.TokenStore, orderNumber string, status domain.OrderStatus) error
}

// DashboardView is the driver's polled snapshot: at most one active
// assignment, the claimable pool, and delivery history.
type DashboardView struct {
	Active    *domain.Order  `json:"active_order"`
	Available []domain.Order `json:"available_orders"`
	History   []domain.Order `json:"order_history"`
}

type Dashboard struct {
	remote   DriverRemote
	tokens   api.TokenStore
	interval time.Duration

	mu     sync.RWMutex
	view   DashboardView
	poller *poll.Poller
}

func NewDashboard(remote DriverRemote, tokens api.TokenStore) *Dashboard {
	return &Dashboard{remote: remote, tokens: tokens, interval: PollInterval}
}

func (d *Dashboard) SetInterval(interval time.Duration) { d.interval = interval }

func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.poller != nil {
		return
	}
	d.poller = poll.Start(ctx, d.interval, d.fetch)
}

func (d *Dashboard) Stop() {
	d.mu.Lock()
	p := d.poller
	d.poller = nil
	d.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

func (d *Dashboard) Refresh() {
	d.mu.RLock()
	p := d.poller
	d.mu.RUnlock()
	if p != nil {
		p.Trigger()
	}
}

// fetch loads all three lists; each degrades independently so one failing
// endpoint does not blank the rest. A dead session retires the loop instead.
func (d *Dashboard) fetch(ctx context.Context) {
	view := DashboardView{}
	active, err := d.remote.DriverActiveOrder(ctx, d.tokens)
	if errors.Is(err, api.ErrSessionExpired) {
		log.Printf("WARN: driver dashboard poll stopped: %v", err)
		d.halt()
		return
	}
	if err != nil {
		log.Printf("WARN: driver active order fetch failed: %v", err)
	} else {
		view.Active = active
	}
	available, err := d.remote.DriverAvailableOrders(ctx, d.tokens)
	if err != nil {
		log.Printf("WARN: driver available orders fetch failed: %v", err)
	} else {
		view.Available = available
	}
	history, err := d.remote.DriverOrderHistory(ctx, d.tokens)
	if err != nil {
		log.Printf("WARN: driver order history fetch failed: %v", err)
	} else {
		view.History = history
	}

	d.mu.Lock()
	d.view = view
	d.mu.Unlock()
}

// halt cancels the poll loop from inside a run.
func (d *Dashboard) halt() {
	d.mu.RLock()
	p := d.poller
	d.mu.RUnlock()
	if p != nil {
		p.Cancel()
	}
}

func (d *Dashboard) Snapshot() DashboardView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	view := d.view
	if view.Active != nil {
		copied := *view.Active
		view.Active = &copied
	}
	return view
}

// Accept claims an available order. The server enforces the single-active-
// assignment rule; a rejection comes back as-is.
func (d *Dashboard) Accept(ctx context.Context, orderNumber string) error {
	if err := d.remote.AcceptOrder(ctx, d.tokens, orderNumber); err != nil {
		return err
	}
	d.Refresh()
	return nil
}

// NextAction is the driver's single forward transition for the active
// assignment, if any.
func (d *Dashboard) NextAction() (domain.Transition, bool) {
	view := d.Snapshot()
	if view.Active == nil {
		return domain.Transition{}, false
	}
	t, ok := domain.DriverTransitions[view.Active.Status]
	return t, ok
}

// Advance moves the active assignment forward (ready -> picked_up ->
// delivered).
func (d *Dashboard) Advance(ctx context.Context) error {
	view := d.Snapshot()
	if view.Active == nil {
		return ErrUnknownOrder
	}
	transition, ok := domain.DriverTransitions[view.Active.Status]
	if !ok {
		return ErrNoTransition
	}
	if err := d.remote.UpdateDriverOrderStatus(ctx, d.tokens, view.Active.OrderNumber, transition.Next); err != nil {
		return err
	}
	d.Refresh()
	return nil
}

// DayStats is the same-day totals shown on the driver dashboard.
type DayStats struct {
	Deliveries int          `json:"deliveries"`
	Earnings   domain.Money `json:"earnings"`
}

// TodayStats filters history by calendar-day match against the local clock;
// this is a client-side aggregate, not a server one.
func TodayStats(history []domain.Order, now time.Time) DayStats {
	y, m, d := now.Date()
	stats := DayStats{}
	for _, o := range history {
		oy, om, od := o.CreatedAt.Local().Date()
		if oy == y && om == m && od == d {
			stats.Deliveries++
			stats.Earnings += o.GrandTotal
		}
	}
	return stats
}
