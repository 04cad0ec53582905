package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartaid/medtrack/internal/store"
)

func statsNow(hour, minute int) time.Time {
	return time.Date(2024, 6, 1, hour, minute, 0, 0, time.Local)
}

func takenLog(createdAt time.Time) store.MedicationLog {
	return store.MedicationLog{Status: "taken", CreatedAt: createdAt}
}

func missedLog(createdAt time.Time) store.MedicationLog {
	return store.MedicationLog{Status: "missed", CreatedAt: createdAt}
}

func TestComputeStatsCountsUniqueDoses(t *testing.T) {
	meds := []store.Medication{
		// Duplicate time entries collapse to one dose.
		{ID: "m1", Times: []string{"08:00", "08:00", "20:00"}},
		{ID: "m2", Times: []string{"08:00"}},
	}

	stats := computeStats(meds, nil, nil, statsNow(12, 0))
	assert.Equal(t, 3, stats.TotalScheduledToday)
}

func TestComputeStatsPendingOnlyCountsElapsedDoses(t *testing.T) {
	now := statsNow(12, 0)
	meds := []store.Medication{
		{ID: "m1", Times: []string{"08:00", "20:00"}},
	}

	// The 20:00 dose has not come due yet, so nothing logged means one
	// pending dose, not two.
	stats := computeStats(meds, nil, nil, now)
	assert.Equal(t, 1, stats.PendingCount)

	// Logging the 08:00 dose clears the pending count.
	logs := []store.MedicationLog{takenLog(now)}
	stats = computeStats(meds, logs, logs, now)
	assert.Equal(t, 0, stats.PendingCount)
	assert.Equal(t, 1, stats.TakenCount)
}

func TestComputeStatsPendingNeverNegative(t *testing.T) {
	now := statsNow(12, 0)
	meds := []store.Medication{{ID: "m1", Times: []string{"08:00"}}}
	logs := []store.MedicationLog{takenLog(now), takenLog(now), missedLog(now)}

	stats := computeStats(meds, logs, logs, now)
	assert.Equal(t, 0, stats.PendingCount)
}

func TestComputeStatsAdherenceWindow(t *testing.T) {
	now := statsNow(12, 0)
	recent := now.AddDate(0, 0, -2)
	stale := now.AddDate(0, 0, -10)

	allLogs := []store.MedicationLog{
		takenLog(recent),
		takenLog(recent),
		missedLog(recent),
		missedLog(stale), // outside the 7-day window, ignored
	}

	stats := computeStats(nil, nil, allLogs, now)
	assert.Equal(t, 67, stats.AdherenceRate)
}

func TestComputeStatsAdherenceDefaultsToPerfect(t *testing.T) {
	stats := computeStats(nil, nil, nil, statsNow(9, 0))
	assert.Equal(t, 100, stats.AdherenceRate)
}

func TestComputeStatsSkipsMalformedTimes(t *testing.T) {
	meds := []store.Medication{{ID: "m1", Times: []string{"bad", "08:00"}}}

	stats := computeStats(meds, nil, nil, statsNow(12, 0))
	assert.Equal(t, 2, stats.TotalScheduledToday) // still counted as scheduled
	assert.Equal(t, 1, stats.PendingCount)        // but never comes due
}

func TestValidClockTime(t *testing.T) {
	assert.True(t, validClockTime("08:00"))
	assert.True(t, validClockTime("23:59"))
	assert.False(t, validClockTime("24:00"))
	assert.False(t, validClockTime("8:00"))
	assert.False(t, validClockTime("08-00"))
	assert.False(t, validClockTime("ab:cd"))
}
