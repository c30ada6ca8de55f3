package engine

import (
	"context"
	"time"
)

// Scheduler drives a session's timed refresh outside the TUI event loop.
// Each refresh is one generate → evaluate → OnRefresh pass.
type Scheduler struct {
	session   *Session
	onRefresh func(View)
	trigger   chan struct{}
}

// NewScheduler creates a scheduler for s. onRefresh may be nil.
func NewScheduler(s *Session, onRefresh func(View)) *Scheduler {
	if onRefresh == nil {
		onRefresh = func(View) {}
	}
	return &Scheduler{
		session:   s,
		onRefresh: onRefresh,
		trigger:   make(chan struct{}, 1),
	}
}

// Trigger requests an immediate refresh. Requests made while one is
// already pending are coalesced.
func (sc *Scheduler) Trigger() {
	select {
	case sc.trigger <- struct{}{}:
	default:
	}
}

// SetEnabled toggles timed refresh. Manual triggers still work when disabled.
func (sc *Scheduler) SetEnabled(on bool) {
	sc.session.SetAutoRefresh(on)
}

// Run refreshes on every interval tick while auto-refresh is enabled, and on
// every Trigger. A manual refresh restarts the interval. Run returns when ctx
// is cancelled.
func (sc *Scheduler) Run(ctx context.Context) error {
	interval := sc.session.Interval()
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sc.trigger:
			sc.onRefresh(sc.session.Refresh())
			t.Reset(interval)
		case <-t.C:
			if sc.session.AutoRefresh() {
				sc.onRefresh(sc.session.Refresh())
			}
		}
	}
}
