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

type caregiverRequest struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	NotifyMissed bool   `json:"notifyMissed"`
}

// ListCaregivers returns the caller's caregiver contacts.
// @Summary List caregivers
// @Tags caregivers
// @Produce json
// @Success 200 {array} store.Caregiver
// @Router /caregivers [get]
func (h *Handler) ListCaregivers(w http.ResponseWriter, r *http.Request) {
	caregivers, err := store.ListCaregivers(r.Context(), h.pool, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch caregivers")
		return
	}
	if caregivers == nil {
		caregivers = []store.Caregiver{}
	}
	respond.WriteJSONObject(w, http.StatusOK, caregivers)
}

// CreateCaregiver links a caregiver contact to the caller.
// @Summary Create caregiver
// @Tags caregivers
// @Accept json
// @Produce json
// @Success 201 {object} store.Caregiver
// @Failure 400 {object} respond.ErrorResponse
// @Router /caregivers [post]
func (h *Handler) CreateCaregiver(w http.ResponseWriter, r *http.Request) {
	var req caregiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_CAREGIVER", "Name is required")
		return
	}

	caregiver, err := store.CreateCaregiver(r.Context(), h.pool, store.Caregiver{
		UserID:       auth.UserID(r.Context()),
		Name:         req.Name,
		Relationship: req.Relationship,
		Email:        req.Email,
		Phone:        req.Phone,
		NotifyMissed: req.NotifyMissed,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create caregiver")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, caregiver)
}

// UpdateCaregiver replaces a caregiver contact's fields.
// @Summary Update caregiver
// @Tags caregivers
// @Accept json
// @Produce json
// @Param id path string true "Caregiver ID"
// @Success 200 {object} store.Caregiver
// @Failure 404 {object} respond.ErrorResponse
// @Router /caregivers/{id} [put]
func (h *Handler) UpdateCaregiver(w http.ResponseWriter, r *http.Request) {
	var req caregiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	caregiver, err := store.UpdateCaregiver(r.Context(), h.pool, store.Caregiver{
		ID:           chi.URLParam(r, "id"),
		UserID:       auth.UserID(r.Context()),
		Name:         req.Name,
		Relationship: req.Relationship,
		Email:        req.Email,
		Phone:        req.Phone,
		NotifyMissed: req.NotifyMissed,
	})
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Caregiver not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to update caregiver")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, caregiver)
}

// DeleteCaregiver removes a caregiver contact.
// @Summary Delete caregiver
// @Tags caregivers
// @Param id path string true "Caregiver ID"
// @Success 204
// @Failure 404 {object} respond.ErrorResponse
// @Router /caregivers/{id} [delete]
func (h *Handler) DeleteCaregiver(w http.ResponseWriter, r *http.Request) {
	err := store.DeleteCaregiver(r.Context(), h.pool, chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Caregiver not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to delete caregiver")
		return
	}
	respond.WriteNoContent(w)
}
