package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

const minutesPerDay = 24 * 60

// ReminderScheduler re-evaluates every user's dose schedule once a minute
// and fires a push reminder a fixed lead before each dose, at most once per
// calendar day per (user, medication, scheduled time).
type ReminderScheduler struct {
	source   DataSource
	registry *Registry
	notifier Notifier
	tracker  *DayTracker
	clk      clock.Clock
	interval time.Duration
	lead     time.Duration
	logger   *slog.Logger
}

// NewReminderScheduler wires a dose reminder scheduler. interval is the tick
// period (one minute in production); lead is how far before a dose the
// reminder fires.
func NewReminderScheduler(source DataSource, registry *Registry, notifier Notifier, tracker *DayTracker, interval, lead time.Duration, logger *slog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		source:   source,
		registry: registry,
		notifier: notifier,
		tracker:  tracker,
		clk:      clock.New(),
		interval: interval,
		lead:     lead,
		logger:   logger,
	}
}

// Run executes one tick immediately, then one per interval. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func (s *ReminderScheduler) Run(ctx context.Context) {
	s.logger.Info("medication reminder scheduler started",
		"interval", s.interval, "lead", s.lead)

	t := s.clk.Ticker(s.interval)
	defer t.Stop()

	// Doses due at the moment of startup must not be skipped.
	go s.tick(ctx, s.clk.Now())

	for {
		select {
		case now := <-t.C:
			// A slow delivery must not delay the next minute's tick.
			go s.tick(ctx, now)
		case <-ctx.Done():
			s.logger.Info("medication reminder scheduler stopped")
			return
		}
	}
}

// tick walks all users and all scheduled dose times, firing reminders whose
// instant matches the current minute. All users are read, not just
// subscribed ones — reachability is decided per dose after the dedup check.
func (s *ReminderScheduler) tick(ctx context.Context, now time.Time) {
	day := now.Format("2006-01-02")
	nowMinutes := now.Hour()*60 + now.Minute()

	userIDs, err := s.source.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("reminder tick: list users", "error", err)
		return
	}

	for _, userID := range userIDs {
		meds, err := s.source.ListMedications(ctx, userID)
		if err != nil {
			// One user's read failure must not abort the tick for the rest.
			s.logger.Warn("reminder tick: list medications", "user_id", userID, "error", err)
			continue
		}
		for _, med := range meds {
			for _, scheduledTime := range med.Times {
				s.checkDose(ctx, day, nowMinutes, userID, med, scheduledTime)
			}
		}
	}
}

func (s *ReminderScheduler) checkDose(ctx context.Context, day string, nowMinutes int, userID string, med Medication, scheduledTime string) {
	doseMinutes, err := parseClockTime(scheduledTime)
	if err != nil {
		s.logger.Warn("skipping unparsable schedule time",
			"medication_id", med.ID, "time", scheduledTime)
		return
	}
	if reminderInstant(doseMinutes, s.lead) != nowMinutes {
		return
	}
	if !s.tracker.ShouldSend(day, userID, med.ID, scheduledTime) {
		return
	}
	if !s.registry.Has(userID) {
		// Leave the dedup slot unconsumed. A later subscribe the same day
		// only helps if the due minute recurs, which it will not —
		// best-effort, not retried.
		return
	}

	s.notifier.SendMedicationDue(ctx, userID, med.Name, scheduledTime)
	// Attempted is attempted: success or transient failure, the reminder is
	// not retried within the day.
	s.tracker.MarkSent(day, userID, med.ID, scheduledTime)
}

// reminderInstant returns the minute-of-day at which the reminder for a dose
// fires, wrapping across midnight (a 00:10 dose reminds at 23:55).
func reminderInstant(doseMinutes int, lead time.Duration) int {
	return (doseMinutes - int(lead.Minutes()) + minutesPerDay) % minutesPerDay
}

// parseClockTime parses a wall-clock "HH:MM" string into minute-of-day.
func parseClockTime(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
