package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/notify"
	"github.com/smartaid/medtrack/internal/store"
)

// subscribeRequest mirrors the browser PushSubscription JSON shape.
type subscribeRequest struct {
	Endpoint       string `json:"endpoint"`
	ExpirationTime *int64 `json:"expirationTime,omitempty"` // epoch millis
	Keys           struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// VAPIDPublicKey returns the server's push public key.
// @Summary VAPID public key
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} respond.ErrorResponse
// @Router /notifications/vapid-public-key [get]
func (h *Handler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	key := h.dispatcher.PublicKey()
	if key == "" {
		respond.WriteError(w, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push notifications are not configured")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]string{"publicKey": key})
}

// Subscribe registers the caller's push subscription. A second subscription
// from the same user replaces the first.
// @Summary Subscribe to push notifications
// @Tags notifications
// @Accept json
// @Produce json
// @Success 201 {object} store.Subscription
// @Failure 400 {object} respond.ErrorResponse
// @Router /notifications/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SUBSCRIPTION", "endpoint and keys are required")
		return
	}

	userID := auth.UserID(r.Context())
	sub := store.Subscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if req.ExpirationTime != nil {
		t := time.UnixMilli(*req.ExpirationTime)
		sub.ExpirationTime = &t
	}

	saved, err := store.UpsertSubscription(r.Context(), h.pool, sub)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to save subscription")
		return
	}

	h.registry.Add(userID, notify.Subscription{
		Endpoint: saved.Endpoint,
		P256dh:   saved.P256dh,
		Auth:     saved.Auth,
	})
	respond.WriteJSONObject(w, http.StatusCreated, saved)
}

// Unsubscribe removes the caller's push subscription.
// @Summary Unsubscribe from push notifications
// @Tags notifications
// @Success 204
// @Router /notifications/unsubscribe [post]
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := store.DeleteSubscription(r.Context(), h.pool, userID); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to remove subscription")
		return
	}
	h.registry.Remove(userID)
	respond.WriteNoContent(w)
}

// TestNotification sends a refill-styled test push to the caller so they can
// verify delivery end to end.
// @Summary Send test notification
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 404 {object} respond.ErrorResponse
// @Router /notifications/test [post]
func (h *Handler) TestNotification(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if !h.registry.Has(userID) {
		respond.WriteError(w, http.StatusNotFound, "NOT_SUBSCRIBED", "No push subscription for this user")
		return
	}

	ok := h.dispatcher.SendTestRefill(r.Context(), userID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]bool{"delivered": ok})
}
