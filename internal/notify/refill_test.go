package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRefill(src DataSource, reg *Registry, n Notifier) *RefillScheduler {
	return NewRefillScheduler(src, reg, n, 24*time.Hour, testLogger())
}

func TestSweepThresholdBoundary(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {
				{ID: "m1", Name: "AtThreshold", PillsRemaining: 7, RefillThreshold: 7},
				{ID: "m2", Name: "AboveThreshold", PillsRemaining: 8, RefillThreshold: 7},
				{ID: "m3", Name: "Depleted", PillsRemaining: 0, RefillThreshold: 7},
				{ID: "m4", Name: "Low", PillsRemaining: 1, RefillThreshold: 7},
			},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestRefill(src, reg, n)

	s.sweep(context.Background())

	require.Equal(t, 2, n.refillCount())
	assert.Contains(t, n.refillCalls, "u1/AtThreshold/7")
	assert.Contains(t, n.refillCalls, "u1/Low/1")
}

func TestSweepRefiresWhileConditionHolds(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Lisinopril", PillsRemaining: 5, RefillThreshold: 7}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestRefill(src, reg, n)

	// No dedup: each run re-alerts while the supply stays low.
	s.sweep(context.Background())
	s.sweep(context.Background())
	assert.Equal(t, 2, n.refillCount())
}

func TestSweepOnlySubscribedUsers(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1", "u2"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Metformin", PillsRemaining: 2, RefillThreshold: 7}},
			"u2": {{ID: "m2", Name: "Aspirin", PillsRemaining: 2, RefillThreshold: 7}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestRefill(src, reg, n)

	s.sweep(context.Background())

	require.Equal(t, 1, n.refillCount())
	assert.Equal(t, "u1/Metformin/2", n.refillCalls[0])
}
