// Package maintenance runs periodic background tasks as Go tickers.
// The API server is already a persistent process for the reminder
// schedulers, so scheduled cleanup work is driven from Go as well.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartaid/medtrack/internal/notify"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	LogRetentionInterval time.Duration // Purge old dose logs
	SubscriptionInterval time.Duration // Purge expired push subscriptions
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		LogRetentionInterval: 24 * time.Hour,
		SubscriptionInterval: time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, pool *pgxpool.Pool, registry *notify.Registry, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"log_retention", cfg.LogRetentionInterval,
		"subscriptions", cfg.SubscriptionInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.LogRetentionInterval > 0 {
		t := time.NewTicker(cfg.LogRetentionInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeOldLogs(ctx, pool, logger) })
	}

	if cfg.SubscriptionInterval > 0 {
		t := time.NewTicker(cfg.SubscriptionInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeExpiredSubscriptions(ctx, pool, registry, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// purgeOldLogs removes dose logs and their surveys older than 90 days.
func purgeOldLogs(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM medication_surveys
		WHERE medication_log_id IN (
			SELECT id FROM medication_logs
			WHERE created_at < NOW() - INTERVAL '90 days')`)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old surveys", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Cleanup: purged old surveys", "count", tag.RowsAffected())
	}

	tag, err = pool.Exec(ctx, `
		DELETE FROM medication_logs
		WHERE created_at < NOW() - INTERVAL '90 days'`)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old logs", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Cleanup: purged old logs", "count", tag.RowsAffected())
	}
}

// purgeExpiredSubscriptions drops push subscriptions whose browser-reported
// expiration has passed, then evicts those users from the live registry.
func purgeExpiredSubscriptions(ctx context.Context, pool *pgxpool.Pool, registry *notify.Registry, logger *slog.Logger) {
	rows, err := pool.Query(ctx, `
		DELETE FROM push_subscriptions
		WHERE expiration_time IS NOT NULL
		  AND expiration_time < NOW()
		RETURNING user_id`)
	if err != nil {
		logger.Warn("Cleanup: failed to purge expired subscriptions", "error", err)
		return
	}
	defer rows.Close()

	var purged int
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			logger.Warn("Cleanup: scan purged subscription", "error", err)
			return
		}
		registry.Remove(userID)
		purged++
	}
	if err := rows.Err(); err != nil {
		logger.Warn("Cleanup: iterate purged subscriptions", "error", err)
		return
	}
	if purged > 0 {
		logger.Info("Cleanup: purged expired subscriptions", "count", purged)
	}
}
