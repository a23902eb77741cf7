package poll

import (
	"context"
	"sync"
	"time"
)

// Poller runs fn at a fixed interval for as long as ctx lives. At most one
// run is in flight: a tick that lands while fn is still running is skipped,
// and Trigger coalesces manual refreshes into the same guarantee.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)
	trigger  chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Start begins polling immediately, then on every interval tick.
func Start(ctx context.Context, interval time.Duration, fn func(context.Context)) *Poller {
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{
		interval: interval,
		fn:       fn,
		trigger:  make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.trigger:
		}
		if ctx.Err() != nil {
			return
		}
		// fn runs on this goroutine, so a slow run naturally swallows the
		// ticks and triggers that arrive while it is in flight.
		p.fn(ctx)
	}
}

// Trigger requests an immediate run. It never blocks; a pending trigger or
// in-flight run absorbs it.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for any in-flight run. Idempotent.
func (p *Poller) Stop() {
	p.stopOnce.Do(p.cancel)
	<-p.done
}

// Cancel stops the loop without waiting for the in-flight run to return,
// which lets fn retire its own poller. A later Stop still waits.
func (p *Poller) Cancel() {
	p.stopOnce.Do(p.cancel)
}

// Debouncer collapses rapid triggers into a single call after a quiet
// period, superseding any pending timer.
type Debouncer struct {
	Quiet time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{Quiet: quiet}
}

// Trigger schedules fn after the quiet period, cancelling whatever was
// pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.Quiet, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
