package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateLog inserts a medication log entry and returns it.
func CreateLog(ctx context.Context, pool *pgxpool.Pool, l MedicationLog) (*MedicationLog, error) {
	l.ID = uuid.NewString()
	_, err := pool.Exec(ctx, "insert_log",
		l.ID, l.UserID, l.MedicationID, l.MedicationName, l.ScheduledTime,
		l.TakenTime, l.Status, l.Confidence, l.ScannedPillType)
	if err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}
	return &l, nil
}

// ListLogs returns all log entries for a user, newest first.
func ListLogs(ctx context.Context, pool *pgxpool.Pool, userID string) ([]MedicationLog, error) {
	return queryLogs(ctx, pool, "list_logs", userID)
}

// ListTodayLogs returns the user's log entries since local midnight.
func ListTodayLogs(ctx context.Context, pool *pgxpool.Pool, userID string) ([]MedicationLog, error) {
	return queryLogs(ctx, pool, "list_today_logs", userID)
}

func queryLogs(ctx context.Context, pool *pgxpool.Pool, stmt, userID string) ([]MedicationLog, error) {
	rows, err := pool.Query(ctx, stmt, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stmt, err)
	}
	defer rows.Close()

	var logs []MedicationLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func scanLog(row pgx.Row) (*MedicationLog, error) {
	var l MedicationLog
	err := row.Scan(&l.ID, &l.UserID, &l.MedicationID, &l.MedicationName, &l.ScheduledTime,
		&l.TakenTime, &l.Status, &l.Confidence, &l.ScannedPillType, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}
	return &l, nil
}
