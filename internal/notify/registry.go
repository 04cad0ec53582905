package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartaid/medtrack/internal/store"
)

// Registry is the in-process view of which users can currently receive a
// push. One subscription per user; Add overwrites.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]Subscription
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		subs:   make(map[string]Subscription),
		logger: logger,
	}
}

// Load hydrates the registry from persisted subscriptions. A read failure is
// logged and leaves the registry empty — the schedulers degrade to no-ops
// rather than crashing the process.
func (r *Registry) Load(ctx context.Context, pool *pgxpool.Pool) {
	subs, err := store.ListSubscriptions(ctx, pool)
	if err != nil {
		r.logger.Error("failed to load push subscriptions, starting empty", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range subs {
		r.subs[s.UserID] = Subscription{
			Endpoint: s.Endpoint,
			P256dh:   s.P256dh,
			Auth:     s.Auth,
		}
	}
	r.logger.Info("push subscriptions loaded", "count", len(r.subs))
}

// Add registers or replaces the user's subscription.
func (r *Registry) Add(userID string, sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[userID] = sub
}

// Remove drops the user's subscription. Idempotent.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, userID)
}

// Has reports whether the user has an active subscription.
func (r *Registry) Has(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subs[userID]
	return ok
}

// Get returns the user's subscription.
func (r *Registry) Get(userID string) (Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[userID]
	return sub, ok
}

// UserIDs returns the ids of all subscribed users.
func (r *Registry) UserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
