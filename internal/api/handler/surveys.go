package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/store"
)

type surveyRequest struct {
	MedicationLogID string   `json:"medicationLogId"`
	Mood            string   `json:"mood"`
	SideEffects     []string `json:"sideEffects"`
	Notes           string   `json:"notes"`
}

// CreateSurvey records a post-dose check-in.
// @Summary Create survey
// @Tags surveys
// @Accept json
// @Produce json
// @Success 201 {object} store.Survey
// @Failure 400 {object} respond.ErrorResponse
// @Router /surveys [post]
func (h *Handler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if req.MedicationLogID == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SURVEY", "medicationLogId is required")
		return
	}

	survey, err := store.CreateSurvey(r.Context(), h.pool, store.Survey{
		UserID:          auth.UserID(r.Context()),
		MedicationLogID: req.MedicationLogID,
		Mood:            req.Mood,
		SideEffects:     req.SideEffects,
		Notes:           req.Notes,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create survey")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, survey)
}

// ListSurveys returns the caller's survey history, newest first.
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Success 200 {array} store.Survey
// @Router /surveys [get]
func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := store.ListSurveys(r.Context(), h.pool, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch surveys")
		return
	}
	if surveys == nil {
		surveys = []store.Survey{}
	}
	respond.WriteJSONObject(w, http.StatusOK, surveys)
}

// GetSurveyByLog returns the survey attached to one dose log.
// @Summary Get survey for dose log
// @Tags surveys
// @Produce json
// @Param logId path string true "Medication log ID"
// @Success 200 {object} store.Survey
// @Failure 404 {object} respond.ErrorResponse
// @Router /surveys/log/{logId} [get]
func (h *Handler) GetSurveyByLog(w http.ResponseWriter, r *http.Request) {
	survey, err := store.GetSurveyByLogID(r.Context(), h.pool, chi.URLParam(r, "logId"), auth.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No survey for this log")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch survey")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, survey)
}
