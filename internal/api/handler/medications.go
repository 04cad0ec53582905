package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/store"
)

type medicationRequest struct {
	Name            string   `json:"name"`
	Dosage          string   `json:"dosage"`
	PillType        string   `json:"pillType"`
	ImageURL        string   `json:"imageUrl"`
	Times           []string `json:"times"`
	PillsRemaining  int      `json:"pillsRemaining"`
	RefillThreshold int      `json:"refillThreshold"`
}

func (req *medicationRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "Name is required"
	}
	if len(req.Times) == 0 {
		return "At least one scheduled time is required"
	}
	for _, t := range req.Times {
		if !validClockTime(t) {
			return "Times must be HH:MM in 24-hour format"
		}
	}
	if req.PillsRemaining < 0 || req.RefillThreshold < 0 {
		return "Pill counts cannot be negative"
	}
	return ""
}

func validClockTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	return h < 24 && m < 60
}

// ListMedications returns the caller's medication schedule.
// @Summary List medications
// @Tags medications
// @Produce json
// @Success 200 {array} store.Medication
// @Router /medications [get]
func (h *Handler) ListMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := store.ListMedications(r.Context(), h.pool, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch medications")
		return
	}
	if meds == nil {
		meds = []store.Medication{}
	}
	respond.WriteJSONObject(w, http.StatusOK, meds)
}

// GetMedication returns one medication by id.
// @Summary Get medication
// @Tags medications
// @Produce json
// @Param id path string true "Medication ID"
// @Success 200 {object} store.Medication
// @Failure 404 {object} respond.ErrorResponse
// @Router /medications/{id} [get]
func (h *Handler) GetMedication(w http.ResponseWriter, r *http.Request) {
	med, err := store.GetMedication(r.Context(), h.pool, chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Medication not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch medication")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, med)
}

// CreateMedication adds a medication to the caller's schedule.
// @Summary Create medication
// @Tags medications
// @Accept json
// @Produce json
// @Success 201 {object} store.Medication
// @Failure 400 {object} respond.ErrorResponse
// @Router /medications [post]
func (h *Handler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_MEDICATION", msg)
		return
	}

	userID := auth.UserID(r.Context())
	med, err := store.CreateMedication(r.Context(), h.pool, store.Medication{
		UserID:          userID,
		Name:            req.Name,
		Dosage:          req.Dosage,
		PillType:        req.PillType,
		ImageURL:        req.ImageURL,
		Times:           req.Times,
		PillsRemaining:  req.PillsRemaining,
		RefillThreshold: req.RefillThreshold,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create medication")
		return
	}
	h.cache.Invalidate("stats:" + userID)
	respond.WriteJSONObject(w, http.StatusCreated, med)
}

// UpdateMedication replaces a medication's schedule and supply fields.
// @Summary Update medication
// @Tags medications
// @Accept json
// @Produce json
// @Param id path string true "Medication ID"
// @Success 200 {object} store.Medication
// @Failure 404 {object} respond.ErrorResponse
// @Router /medications/{id} [put]
func (h *Handler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_MEDICATION", msg)
		return
	}

	userID := auth.UserID(r.Context())
	med, err := store.UpdateMedication(r.Context(), h.pool, store.Medication{
		ID:              chi.URLParam(r, "id"),
		UserID:          userID,
		Name:            req.Name,
		Dosage:          req.Dosage,
		PillType:        req.PillType,
		ImageURL:        req.ImageURL,
		Times:           req.Times,
		PillsRemaining:  req.PillsRemaining,
		RefillThreshold: req.RefillThreshold,
	})
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Medication not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to update medication")
		return
	}
	h.cache.Invalidate("stats:" + userID)
	respond.WriteJSONObject(w, http.StatusOK, med)
}

// DeleteMedication removes a medication from the schedule.
// @Summary Delete medication
// @Tags medications
// @Param id path string true "Medication ID"
// @Success 204
// @Failure 404 {object} respond.ErrorResponse
// @Router /medications/{id} [delete]
func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	err := store.DeleteMedication(r.Context(), h.pool, chi.URLParam(r, "id"), userID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Medication not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to delete medication")
		return
	}
	h.cache.Invalidate("stats:" + userID)
	respond.WriteNoContent(w)
}
