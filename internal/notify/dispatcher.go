package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Dispatcher translates reminder events into web-push delivery attempts.
// When VAPID keys are not configured every send fails fast; the schedulers
// keep running harmlessly.
type Dispatcher struct {
	registry   *Registry
	logger     *slog.Logger
	subscriber string
	publicKey  string
	privateKey string
	configured bool
}

// NewDispatcher creates a dispatcher. Empty VAPID keys produce an inert
// dispatcher that logs once and refuses every delivery.
func NewDispatcher(registry *Registry, publicKey, privateKey, subscriber string, logger *slog.Logger) *Dispatcher {
	configured := publicKey != "" && privateKey != ""
	if !configured {
		logger.Warn("VAPID keys not configured, push delivery disabled")
	}
	return &Dispatcher{
		registry:   registry,
		logger:     logger,
		subscriber: subscriber,
		publicKey:  publicKey,
		privateKey: privateKey,
		configured: configured,
	}
}

// PublicKey returns the VAPID public key clients subscribe with.
func (d *Dispatcher) PublicKey() string {
	return d.publicKey
}

// SendMedicationDue pushes a "time to take your medication" reminder.
func (d *Dispatcher) SendMedicationDue(ctx context.Context, userID, medicationName, scheduledTime string) bool {
	return d.Deliver(ctx, userID, Payload{
		Title: "Time for Your Medication",
		Body:  fmt.Sprintf("Don't forget to take %s at %s", medicationName, scheduledTime),
		Icon:  iconPath,
		Badge: badgePath,
		Tag:   "medication-" + medicationName,
		Data: map[string]string{
			"type":           "medication-reminder",
			"medicationName": medicationName,
			"scheduledTime":  scheduledTime,
		},
		URL: "/scan",
	})
}

// SendRefillDue pushes a low-supply refill reminder.
func (d *Dispatcher) SendRefillDue(ctx context.Context, userID, medicationName string, pillsRemaining int) bool {
	return d.Deliver(ctx, userID, Payload{
		Title: "Medication Refill Reminder",
		Body:  fmt.Sprintf("%s is running low (%d pills remaining). Time to refill!", medicationName, pillsRemaining),
		Icon:  iconPath,
		Badge: badgePath,
		Tag:   "refill-" + medicationName,
		Data: map[string]string{
			"type":           "refill-reminder",
			"medicationName": medicationName,
			"pillsRemaining": fmt.Sprintf("%d", pillsRemaining),
		},
		URL: "/schedule",
	})
}

// SendTestRefill pushes a refill-styled test notification so a user can
// verify delivery end to end.
func (d *Dispatcher) SendTestRefill(ctx context.Context, userID string) bool {
	return d.Deliver(ctx, userID, Payload{
		Title: "Medication Refill Reminder",
		Body:  "This is a test refill reminder. Push notifications are working!",
		Icon:  iconPath,
		Badge: badgePath,
		Tag:   "refill-test",
		Data: map[string]string{
			"type": "refill-reminder",
			"test": "true",
		},
		URL: "/schedule",
	})
}

// Deliver serializes the payload and pushes it to the user's subscription.
// A 404/410 response means the endpoint is permanently gone: the
// subscription is dropped from the registry before returning false. Any
// other failure is transient and returns false without mutating state.
func (d *Dispatcher) Deliver(ctx context.Context, userID string, payload Payload) bool {
	if !d.configured {
		return false
	}

	sub, ok := d.registry.Get(userID)
	if !ok {
		d.logger.Warn("no push subscription for user", "user_id", userID)
		return false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("marshal push payload", "error", err)
		return false
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      d.subscriber,
		VAPIDPublicKey:  d.publicKey,
		VAPIDPrivateKey: d.privateKey,
		TTL:             payloadTTL,
	})
	if err != nil {
		d.logger.Warn("push send failed", "user_id", userID, "error", err)
		return false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		// Endpoint no longer valid — unsubscribe the user.
		d.logger.Info("push subscription gone, removing", "user_id", userID, "status", resp.StatusCode)
		d.registry.Remove(userID)
		return false
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true
	default:
		d.logger.Warn("push rejected", "user_id", userID, "status", resp.StatusCode)
		return false
	}
}

// Verify interface compliance.
var _ Notifier = (*Dispatcher)(nil)
