package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListCaregivers returns the caregivers linked to a user.
func ListCaregivers(ctx context.Context, pool *pgxpool.Pool, userID string) ([]Caregiver, error) {
	rows, err := pool.Query(ctx, "list_caregivers", userID)
	if err != nil {
		return nil, fmt.Errorf("list caregivers: %w", err)
	}
	defer rows.Close()

	var caregivers []Caregiver
	for rows.Next() {
		c, err := scanCaregiver(rows)
		if err != nil {
			return nil, err
		}
		caregivers = append(caregivers, *c)
	}
	return caregivers, rows.Err()
}

// CreateCaregiver inserts a caregiver contact and returns it.
func CreateCaregiver(ctx context.Context, pool *pgxpool.Pool, c Caregiver) (*Caregiver, error) {
	c.ID = uuid.NewString()
	_, err := pool.Exec(ctx, "insert_caregiver",
		c.ID, c.UserID, c.Name, c.Relationship, c.Email, c.Phone, c.NotifyMissed)
	if err != nil {
		return nil, fmt.Errorf("insert caregiver: %w", err)
	}
	return &c, nil
}

// UpdateCaregiver replaces the mutable fields of a caregiver.
func UpdateCaregiver(ctx context.Context, pool *pgxpool.Pool, c Caregiver) (*Caregiver, error) {
	tag, err := pool.Exec(ctx, "update_caregiver",
		c.ID, c.UserID, c.Name, c.Relationship, c.Email, c.Phone, c.NotifyMissed)
	if err != nil {
		return nil, fmt.Errorf("update caregiver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &c, nil
}

// DeleteCaregiver removes a caregiver owned by the user.
func DeleteCaregiver(ctx context.Context, pool *pgxpool.Pool, id, userID string) error {
	tag, err := pool.Exec(ctx, "delete_caregiver", id, userID)
	if err != nil {
		return fmt.Errorf("delete caregiver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCaregiver(row pgx.Row) (*Caregiver, error) {
	var c Caregiver
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Relationship, &c.Email, &c.Phone, &c.NotifyMissed, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan caregiver: %w", err)
	}
	return &c, nil
}
