package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/store"
)

type logRequest struct {
	MedicationID    string  `json:"medicationId"`
	MedicationName  string  `json:"medicationName"`
	ScheduledTime   string  `json:"scheduledTime"`
	Status          string  `json:"status"`
	Confidence      *int    `json:"confidence,omitempty"`
	ScannedPillType *string `json:"scannedPillType,omitempty"`
}

// CreateLog records a taken or missed dose. A taken dose decrements the
// medication's pill supply.
// @Summary Create dose log
// @Tags logs
// @Accept json
// @Produce json
// @Success 201 {object} store.MedicationLog
// @Failure 400 {object} respond.ErrorResponse
// @Router /logs [post]
func (h *Handler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if req.MedicationID == "" || req.MedicationName == "" || req.ScheduledTime == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_LOG", "medicationId, medicationName and scheduledTime are required")
		return
	}
	if req.Status != "taken" && req.Status != "missed" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be 'taken' or 'missed'")
		return
	}

	userID := auth.UserID(r.Context())
	entry := store.MedicationLog{
		UserID:          userID,
		MedicationID:    req.MedicationID,
		MedicationName:  req.MedicationName,
		ScheduledTime:   req.ScheduledTime,
		Status:          req.Status,
		Confidence:      req.Confidence,
		ScannedPillType: req.ScannedPillType,
	}
	if req.Status == "taken" {
		now := time.Now()
		entry.TakenTime = &now
	}

	log, err := store.CreateLog(r.Context(), h.pool, entry)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create log")
		return
	}

	if req.Status == "taken" {
		if err := store.DecrementPills(r.Context(), h.pool, req.MedicationID, userID); err != nil {
			// The log is already written; a failed decrement self-corrects on
			// the next manual supply edit.
			respond.WriteJSONObject(w, http.StatusCreated, log)
			return
		}
	}
	h.cache.Invalidate("stats:" + userID)
	respond.WriteJSONObject(w, http.StatusCreated, log)
}

// ListLogs returns the caller's full dose history, newest first.
// @Summary List dose logs
// @Tags logs
// @Produce json
// @Success 200 {array} store.MedicationLog
// @Router /logs [get]
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := store.ListLogs(r.Context(), h.pool, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch logs")
		return
	}
	if logs == nil {
		logs = []store.MedicationLog{}
	}
	respond.WriteJSONObject(w, http.StatusOK, logs)
}

// ListTodayLogs returns the caller's dose logs since local midnight.
// @Summary List today's dose logs
// @Tags logs
// @Produce json
// @Success 200 {array} store.MedicationLog
// @Router /logs/today [get]
func (h *Handler) ListTodayLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := store.ListTodayLogs(r.Context(), h.pool, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch today's logs")
		return
	}
	if logs == nil {
		logs = []store.MedicationLog{}
	}
	respond.WriteJSONObject(w, http.StatusOK, logs)
}
