package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayTrackerAtMostOncePerDay(t *testing.T) {
	tr := NewDayTracker()

	assert.True(t, tr.ShouldSend("2024-06-01", "u1", "m1", "08:00"))
	// ShouldSend alone must not consume the slot.
	assert.True(t, tr.ShouldSend("2024-06-01", "u1", "m1", "08:00"))

	tr.MarkSent("2024-06-01", "u1", "m1", "08:00")
	assert.False(t, tr.ShouldSend("2024-06-01", "u1", "m1", "08:00"))

	// Different key components stay independent.
	assert.True(t, tr.ShouldSend("2024-06-01", "u1", "m1", "20:00"))
	assert.True(t, tr.ShouldSend("2024-06-01", "u1", "m2", "08:00"))
	assert.True(t, tr.ShouldSend("2024-06-01", "u2", "m1", "08:00"))
}

func TestDayTrackerMarkSentIdempotent(t *testing.T) {
	tr := NewDayTracker()

	tr.MarkSent("2024-06-01", "u1", "m1", "08:00")
	tr.MarkSent("2024-06-01", "u1", "m1", "08:00")
	assert.False(t, tr.ShouldSend("2024-06-01", "u1", "m1", "08:00"))
}

func TestDayTrackerRolloverResets(t *testing.T) {
	tr := NewDayTracker()

	tr.MarkSent("2024-06-01", "u1", "m1", "08:00")
	assert.False(t, tr.ShouldSend("2024-06-01", "u1", "m1", "08:00"))

	// A key marked sent on day D is sendable again on D+1.
	assert.True(t, tr.ShouldSend("2024-06-02", "u1", "m1", "08:00"))

	// The rollover cleared day D's state entirely.
	tr.MarkSent("2024-06-02", "u1", "m1", "08:00")
	assert.True(t, tr.ShouldSend("2024-06-03", "u1", "m1", "08:00"))
}
