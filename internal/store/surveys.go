package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateSurvey inserts a post-dose survey and returns it.
func CreateSurvey(ctx context.Context, pool *pgxpool.Pool, s Survey) (*Survey, error) {
	s.ID = uuid.NewString()
	_, err := pool.Exec(ctx, "insert_survey",
		s.ID, s.UserID, s.MedicationLogID, s.Mood, s.SideEffects, s.Notes)
	if err != nil {
		return nil, fmt.Errorf("insert survey: %w", err)
	}
	return &s, nil
}

// ListSurveys returns the user's surveys, newest first.
func ListSurveys(ctx context.Context, pool *pgxpool.Pool, userID string) ([]Survey, error) {
	rows, err := pool.Query(ctx, "list_surveys", userID)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, *s)
	}
	return surveys, rows.Err()
}

// GetSurveyByLogID returns the survey attached to a log entry, if any.
func GetSurveyByLogID(ctx context.Context, pool *pgxpool.Pool, logID, userID string) (*Survey, error) {
	s, err := scanSurvey(pool.QueryRow(ctx, "survey_by_log_id", logID, userID))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSurvey(row pgx.Row) (*Survey, error) {
	var s Survey
	err := row.Scan(&s.ID, &s.UserID, &s.MedicationLogID, &s.Mood, &s.SideEffects, &s.Notes, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan survey: %w", err)
	}
	return &s, nil
}
