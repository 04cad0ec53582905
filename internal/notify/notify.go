// Package notify is the reminder/notification core: an in-memory push
// subscription registry, a web-push dispatcher, a per-day dedup tracker, and
// the two background schedulers (dose reminders and refill alerts).
//
// Both schedulers poll: each tick reads current users and medications from
// the store, computes what is due, and hands sends to the dispatcher.
// Dedup is in-memory and best-effort — a restart forgets the current day.
package notify

import "context"

const (
	// Push payload TTL handed to the transport, in seconds.
	payloadTTL = 24 * 60 * 60

	iconPath  = "/icon-192x192.png"
	badgePath = "/badge-72x72.png"
)

// Subscription is the delivery address for one user's pushes.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Medication is the slice of medication state the schedulers need.
type Medication struct {
	ID              string
	Name            string
	Times           []string // wall-clock "HH:MM", server-local
	PillsRemaining  int
	RefillThreshold int
}

// DataSource supplies users and medications to the schedulers.
type DataSource interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	ListMedications(ctx context.Context, userID string) ([]Medication, error)
}

// Notifier sends the two reminder kinds. Implemented by Dispatcher.
type Notifier interface {
	SendMedicationDue(ctx context.Context, userID, medicationName, scheduledTime string) bool
	SendRefillDue(ctx context.Context, userID, medicationName string, pillsRemaining int) bool
}

// Payload is the JSON document delivered to the service worker.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon,omitempty"`
	Badge string            `json:"badge,omitempty"`
	Tag   string            `json:"tag,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
	URL   string            `json:"url,omitempty"`
}
