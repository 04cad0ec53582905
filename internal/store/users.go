package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// GetUser returns a user by id.
func GetUser(ctx context.Context, pool *pgxpool.Pool, id string) (*User, error) {
	return scanUser(pool.QueryRow(ctx, "user_by_id", id))
}

// GetUserByEmail returns a user by email.
func GetUserByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (*User, error) {
	return scanUser(pool.QueryRow(ctx, "user_by_email", email))
}

// CreateUser inserts a new user and returns it.
func CreateUser(ctx context.Context, pool *pgxpool.Pool, email, passwordHash, firstName, lastName, role string) (*User, error) {
	id := uuid.NewString()
	_, err := pool.Exec(ctx, "insert_user", id, email, passwordHash, firstName, lastName, role)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return GetUser(ctx, pool, id)
}

// ListUserIDs returns the ids of all users. Used by the reminder scheduler,
// which walks every user each tick.
func ListUserIDs(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, "list_user_ids")
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
