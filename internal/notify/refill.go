package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

// RefillScheduler periodically checks pill supply for subscribed users and
// fires refill reminders. No dedup tracker: the coarse interval (24h by
// default) is itself the repeat window, and a still-low supply re-alerts
// every run.
type RefillScheduler struct {
	source   DataSource
	registry *Registry
	notifier Notifier
	clk      clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

// NewRefillScheduler wires a refill scheduler.
func NewRefillScheduler(source DataSource, registry *Registry, notifier Notifier, interval time.Duration, logger *slog.Logger) *RefillScheduler {
	return &RefillScheduler{
		source:   source,
		registry: registry,
		notifier: notifier,
		clk:      clock.New(),
		interval: interval,
		logger:   logger,
	}
}

// Run executes one sweep immediately, then one per interval. Blocks until
// ctx is cancelled. Intended to be called with `go`.
func (s *RefillScheduler) Run(ctx context.Context) {
	s.logger.Info("refill reminder scheduler started", "interval", s.interval)

	t := s.clk.Ticker(s.interval)
	defer t.Stop()

	go s.sweep(ctx)

	for {
		select {
		case <-t.C:
			go s.sweep(ctx)
		case <-ctx.Done():
			s.logger.Info("refill reminder scheduler stopped")
			return
		}
	}
}

// sweep checks supply for every currently subscribed user. Unlike the dose
// scheduler it skips unreachable users entirely — there is no per-instant
// dedup state to preserve for them.
func (s *RefillScheduler) sweep(ctx context.Context) {
	for _, userID := range s.registry.UserIDs() {
		meds, err := s.source.ListMedications(ctx, userID)
		if err != nil {
			s.logger.Warn("refill sweep: list medications", "user_id", userID, "error", err)
			continue
		}
		for _, med := range meds {
			// Zero stock is excluded: depleted medications are treated as
			// already handled, not alertable.
			if med.PillsRemaining > 0 && med.PillsRemaining <= med.RefillThreshold {
				s.notifier.SendRefillDue(ctx, userID, med.Name, med.PillsRemaining)
			}
		}
	}
}
