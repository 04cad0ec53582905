package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetSubscription returns the user's push subscription, if any.
func GetSubscription(ctx context.Context, pool *pgxpool.Pool, userID string) (*Subscription, error) {
	s, err := scanSubscription(pool.QueryRow(ctx, "subscription_by_user", userID))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSubscriptions returns every persisted push subscription. Used to
// hydrate the in-memory registry at startup.
func ListSubscriptions(ctx context.Context, pool *pgxpool.Pool) ([]Subscription, error) {
	rows, err := pool.Query(ctx, "list_subscriptions")
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// UpsertSubscription inserts or replaces the user's subscription. One
// subscription per user; a new subscribe overwrites the previous one.
func UpsertSubscription(ctx context.Context, pool *pgxpool.Pool, s Subscription) (*Subscription, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := pool.Exec(ctx, "upsert_subscription",
		s.ID, s.UserID, s.Endpoint, s.P256dh, s.Auth, s.ExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}
	return &s, nil
}

// DeleteSubscription removes the user's subscription. Idempotent.
func DeleteSubscription(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	_, err := pool.Exec(ctx, "delete_subscription", userID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.ExpirationTime, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return &s, nil
}
