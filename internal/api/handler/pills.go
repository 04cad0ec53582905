package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/store"
)

type identifyRequest struct {
	Image string `json:"image"` // base64, optional
}

// IdentifyPill resolves a scanned pill against the catalog, constrained to
// the caller's scheduled medications.
// @Summary Identify scanned pill
// @Tags pills
// @Accept json
// @Produce json
// @Success 200 {object} pill.Result
// @Router /identify-pill [post]
func (h *Handler) IdentifyPill(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	// The image is advisory; an empty body still resolves via the catalog.
	_ = json.NewDecoder(r.Body).Decode(&req)

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_IMAGE", "Image must be base64 encoded")
			return
		}
		image = decoded
	}

	names, err := store.MedicationNames(r.Context(), h.pool, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to identify pill")
		return
	}

	result := h.identifier.Identify(r.Context(), image, names)
	respond.WriteJSONObject(w, http.StatusOK, result)
}
