package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListMedications returns all medications for a user.
func ListMedications(ctx context.Context, pool *pgxpool.Pool, userID string) ([]Medication, error) {
	rows, err := pool.Query(ctx, "list_medications", userID)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	var meds []Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}

// GetMedication returns one medication owned by the user.
func GetMedication(ctx context.Context, pool *pgxpool.Pool, id, userID string) (*Medication, error) {
	m, err := scanMedication(pool.QueryRow(ctx, "medication_by_id", id, userID))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMedication inserts a medication and returns it with its new id.
func CreateMedication(ctx context.Context, pool *pgxpool.Pool, m Medication) (*Medication, error) {
	m.ID = uuid.NewString()
	_, err := pool.Exec(ctx, "insert_medication",
		m.ID, m.UserID, m.Name, m.Dosage, m.PillType, m.ImageURL,
		m.Times, m.PillsRemaining, m.RefillThreshold, m.LastRefillDate)
	if err != nil {
		return nil, fmt.Errorf("insert medication: %w", err)
	}
	return &m, nil
}

// UpdateMedication replaces the mutable fields of a medication. Ownership is
// enforced by the statement's user_id predicate.
func UpdateMedication(ctx context.Context, pool *pgxpool.Pool, m Medication) (*Medication, error) {
	tag, err := pool.Exec(ctx, "update_medication",
		m.ID, m.UserID, m.Name, m.Dosage, m.PillType, m.ImageURL,
		m.Times, m.PillsRemaining, m.RefillThreshold, m.LastRefillDate)
	if err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return GetMedication(ctx, pool, m.ID, m.UserID)
}

// DeleteMedication removes a medication owned by the user.
func DeleteMedication(ctx context.Context, pool *pgxpool.Pool, id, userID string) error {
	tag, err := pool.Exec(ctx, "delete_medication", id, userID)
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementPills reduces pills_remaining by one, floored at zero. Called by
// the log-creation route when a dose is taken — never by the schedulers.
func DecrementPills(ctx context.Context, pool *pgxpool.Pool, id, userID string) error {
	_, err := pool.Exec(ctx, "decrement_pills", id, userID)
	if err != nil {
		return fmt.Errorf("decrement pills: %w", err)
	}
	return nil
}

// MedicationNames returns the names of a user's scheduled medications.
// Used to constrain pill identification to the user's own schedule.
func MedicationNames(ctx context.Context, pool *pgxpool.Pool, userID string) ([]string, error) {
	rows, err := pool.Query(ctx, "medication_names_user", userID)
	if err != nil {
		return nil, fmt.Errorf("medication names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan medication name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.PillType, &m.ImageURL,
		&m.Times, &m.PillsRemaining, &m.RefillThreshold, &m.LastRefillDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan medication: %w", err)
	}
	return &m, nil
}
