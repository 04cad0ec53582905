package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/cache"
	"github.com/smartaid/medtrack/internal/store"
)

// Stats summarizes today's schedule progress and recent adherence.
type Stats struct {
	TotalScheduledToday int `json:"totalScheduledToday"`
	TakenCount          int `json:"takenCount"`
	MissedCount         int `json:"missedCount"`
	PendingCount        int `json:"pendingCount"`
	AdherenceRate       int `json:"adherenceRate"`
}

// GetStats returns adherence statistics for the caller.
// @Summary Adherence statistics
// @Tags stats
// @Produce json
// @Success 200 {object} Stats
// @Router /stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	cacheKey := "stats:" + userID
	ttl := cache.TTLStats

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	meds, err := store.ListMedications(r.Context(), h.pool, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch statistics")
		return
	}
	todayLogs, err := store.ListTodayLogs(r.Context(), h.pool, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch statistics")
		return
	}
	allLogs, err := store.ListLogs(r.Context(), h.pool, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch statistics")
		return
	}

	stats := computeStats(meds, todayLogs, allLogs, time.Now())
	data, err := json.Marshal(stats)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to fetch statistics")
		return
	}
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

// computeStats derives today's schedule progress and the 7-day adherence
// rate. Doses are keyed by medication-time pairs so a medication listed at
// the same time twice counts once.
func computeStats(meds []store.Medication, todayLogs, allLogs []store.MedicationLog, now time.Time) Stats {
	nowMinutes := now.Hour()*60 + now.Minute()

	scheduled := make(map[string]struct{})
	dueSoFar := make(map[string]struct{})
	for _, med := range meds {
		for _, t := range med.Times {
			key := med.ID + "-" + t
			scheduled[key] = struct{}{}

			m, err := parseClockMinutes(t)
			if err != nil {
				continue
			}
			if m <= nowMinutes {
				dueSoFar[key] = struct{}{}
			}
		}
	}

	var taken, missed int
	for _, log := range todayLogs {
		switch log.Status {
		case "taken":
			taken++
		case "missed":
			missed++
		}
	}

	pending := len(dueSoFar) - taken - missed
	if pending < 0 {
		pending = 0
	}

	// 7-day adherence: share of recent logs marked taken. No logs means a
	// clean slate, reported as 100.
	cutoff := now.AddDate(0, 0, -7)
	var recent, recentTaken int
	for _, log := range allLogs {
		if log.CreatedAt.Before(cutoff) {
			continue
		}
		recent++
		if log.Status == "taken" {
			recentTaken++
		}
	}
	adherence := 100
	if recent > 0 {
		adherence = int(float64(recentTaken)/float64(recent)*100 + 0.5)
	}

	return Stats{
		TotalScheduledToday: len(scheduled),
		TakenCount:          taken,
		MissedCount:         missed,
		PendingCount:        pending,
		AdherenceRate:       adherence,
	}
}

func parseClockMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
