// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartaid/medtrack/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and scheduler
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Users
		"user_by_id":    "SELECT id, email, password_hash, first_name, last_name, role, created_at FROM users WHERE id = $1",
		"user_by_email": "SELECT id, email, password_hash, first_name, last_name, role, created_at FROM users WHERE email = $1",
		"insert_user":   "INSERT INTO users (id, email, password_hash, first_name, last_name, role) VALUES ($1, $2, $3, $4, $5, $6)",
		"list_user_ids": "SELECT id FROM users",

		// Medications
		"list_medications": "SELECT id, user_id, name, dosage, pill_type, image_url, times, pills_remaining, refill_threshold, last_refill_date FROM medications WHERE user_id = $1 ORDER BY name",
		"medication_by_id": "SELECT id, user_id, name, dosage, pill_type, image_url, times, pills_remaining, refill_threshold, last_refill_date FROM medications WHERE id = $1 AND user_id = $2",
		"insert_medication": `INSERT INTO medications (id, user_id, name, dosage, pill_type, image_url, times, pills_remaining, refill_threshold, last_refill_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		"update_medication": `UPDATE medications
			SET name = $3, dosage = $4, pill_type = $5, image_url = $6, times = $7, pills_remaining = $8, refill_threshold = $9, last_refill_date = $10
			WHERE id = $1 AND user_id = $2`,
		"delete_medication":     "DELETE FROM medications WHERE id = $1 AND user_id = $2",
		"decrement_pills":       "UPDATE medications SET pills_remaining = GREATEST(pills_remaining - 1, 0) WHERE id = $1 AND user_id = $2",
		"medication_names_user": "SELECT name FROM medications WHERE user_id = $1",

		// Medication logs
		"insert_log": `INSERT INTO medication_logs (id, user_id, medication_id, medication_name, scheduled_time, taken_time, status, confidence, scanned_pill_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		"list_logs":       "SELECT id, user_id, medication_id, medication_name, scheduled_time, taken_time, status, confidence, scanned_pill_type, created_at FROM medication_logs WHERE user_id = $1 ORDER BY created_at DESC",
		"list_today_logs": "SELECT id, user_id, medication_id, medication_name, scheduled_time, taken_time, status, confidence, scanned_pill_type, created_at FROM medication_logs WHERE user_id = $1 AND created_at >= date_trunc('day', NOW()) ORDER BY created_at DESC",

		// Push subscriptions
		"subscription_by_user":   "SELECT id, user_id, endpoint, p256dh, auth, expiration_time, created_at FROM push_subscriptions WHERE user_id = $1",
		"list_subscriptions":     "SELECT id, user_id, endpoint, p256dh, auth, expiration_time, created_at FROM push_subscriptions",
		"upsert_subscription":    `INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, expiration_time) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id) DO UPDATE SET endpoint = EXCLUDED.endpoint, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth, expiration_time = EXCLUDED.expiration_time`,
		"delete_subscription":    "DELETE FROM push_subscriptions WHERE user_id = $1",

		// Surveys
		"insert_survey":    "INSERT INTO medication_surveys (id, user_id, medication_log_id, mood, side_effects, notes) VALUES ($1, $2, $3, $4, $5, $6)",
		"list_surveys":     "SELECT id, user_id, medication_log_id, mood, side_effects, notes, created_at FROM medication_surveys WHERE user_id = $1 ORDER BY created_at DESC",
		"survey_by_log_id": "SELECT id, user_id, medication_log_id, mood, side_effects, notes, created_at FROM medication_surveys WHERE medication_log_id = $1 AND user_id = $2",

		// Caregivers
		"list_caregivers":  "SELECT id, user_id, name, relationship, email, phone, notify_missed, created_at FROM caregivers WHERE user_id = $1 ORDER BY name",
		"insert_caregiver": "INSERT INTO caregivers (id, user_id, name, relationship, email, phone, notify_missed) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		"update_caregiver": "UPDATE caregivers SET name = $3, relationship = $4, email = $5, phone = $6, notify_missed = $7 WHERE id = $1 AND user_id = $2",
		"delete_caregiver": "DELETE FROM caregivers WHERE id = $1 AND user_id = $2",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
