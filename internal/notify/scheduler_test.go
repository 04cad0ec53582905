package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeSource struct {
	mu       sync.Mutex
	users    []string
	meds     map[string][]Medication
	usersErr error
	medsErr  map[string]error
}

func (f *fakeSource) ListUserIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users, nil
}

func (f *fakeSource) ListMedications(ctx context.Context, userID string) ([]Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.medsErr[userID]; err != nil {
		return nil, err
	}
	return f.meds[userID], nil
}

type fakeNotifier struct {
	mu          sync.Mutex
	medCalls    []string
	refillCalls []string
	result      bool
}

func (f *fakeNotifier) SendMedicationDue(ctx context.Context, userID, name, scheduledTime string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.medCalls = append(f.medCalls, fmt.Sprintf("%s/%s/%s", userID, name, scheduledTime))
	return f.result
}

func (f *fakeNotifier) SendRefillDue(ctx context.Context, userID, name string, pillsRemaining int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refillCalls = append(f.refillCalls, fmt.Sprintf("%s/%s/%d", userID, name, pillsRemaining))
	return f.result
}

func (f *fakeNotifier) medCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.medCalls)
}

func (f *fakeNotifier) refillCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.refillCalls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(day string, hour, minute int) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("%s %02d:%02d", day, hour, minute), time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestScheduler(src DataSource, reg *Registry, n Notifier) *ReminderScheduler {
	return NewReminderScheduler(src, reg, n, NewDayTracker(), time.Minute, 15*time.Minute, testLogger())
}

// --------------------------------------------------------------------------
// Reminder instant arithmetic
// --------------------------------------------------------------------------

func TestReminderInstant(t *testing.T) {
	lead := 15 * time.Minute

	// 08:00 dose reminds at 07:45.
	assert.Equal(t, 7*60+45, reminderInstant(8*60, lead))
	// Minute underflow borrows an hour: 09:05 reminds at 08:50.
	assert.Equal(t, 8*60+50, reminderInstant(9*60+5, lead))
}

func TestReminderInstantWrapsMidnight(t *testing.T) {
	lead := 15 * time.Minute

	// 00:10 dose reminds at 23:55 the previous wall-clock hour.
	assert.Equal(t, 23*60+55, reminderInstant(10, lead))
	// Exactly at lead: 00:15 reminds at midnight.
	assert.Equal(t, 0, reminderInstant(15, lead))
}

func TestParseClockTime(t *testing.T) {
	m, err := parseClockTime("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8*60+30, m)

	_, err = parseClockTime("8 o'clock")
	assert.Error(t, err)
}

// --------------------------------------------------------------------------
// Tick behavior
// --------------------------------------------------------------------------

func TestTickFiresAtReminderInstantOnly(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Lisinopril", Times: []string{"08:00", "20:00"}}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	s.tick(context.Background(), at("2024-06-01", 7, 44))
	assert.Equal(t, 0, n.medCount())

	s.tick(context.Background(), at("2024-06-01", 7, 45))
	require.Equal(t, 1, n.medCount())
	assert.Equal(t, "u1/Lisinopril/08:00", n.medCalls[0])

	s.tick(context.Background(), at("2024-06-01", 7, 46))
	assert.Equal(t, 1, n.medCount())

	// The 20:00 dose fires independently at 19:45.
	s.tick(context.Background(), at("2024-06-01", 19, 45))
	require.Equal(t, 2, n.medCount())
	assert.Equal(t, "u1/Lisinopril/20:00", n.medCalls[1])
}

func TestTickAtMostOncePerDay(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Metformin", Times: []string{"08:00"}}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	// Re-evaluating the same minute repeatedly sends once.
	for i := 0; i < 5; i++ {
		s.tick(context.Background(), at("2024-06-01", 7, 45))
	}
	assert.Equal(t, 1, n.medCount())

	// Next day the same dose fires again.
	s.tick(context.Background(), at("2024-06-02", 7, 45))
	assert.Equal(t, 2, n.medCount())
}

func TestTickTransientFailureStillConsumesSlot(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Aspirin", Times: []string{"12:00"}}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: false} // delivery fails transiently
	s := newTestScheduler(src, reg, n)

	s.tick(context.Background(), at("2024-06-01", 11, 45))
	s.tick(context.Background(), at("2024-06-01", 11, 45))

	// Attempted once, not retried within the day.
	assert.Equal(t, 1, n.medCount())
}

func TestTickSkipsUnsubscribedWithoutConsumingSlot(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Omeprazole", Times: []string{"08:00"}}},
		},
	}
	reg := NewRegistry(testLogger())
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	// Unreachable at the due minute: no send, and the dedup slot stays free.
	s.tick(context.Background(), at("2024-06-01", 7, 45))
	assert.Equal(t, 0, n.medCount())
	assert.True(t, s.tracker.ShouldSend("2024-06-01", "u1", "m1", "08:00"))

	// If the same minute could recur (it cannot in production — documented
	// best-effort limitation), a subscribe would still receive it.
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	s.tick(context.Background(), at("2024-06-01", 7, 45))
	assert.Equal(t, 1, n.medCount())
}

func TestTickDuplicateTimesFireOnce(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			// Duplicate HH:MM entries route through the same dedup key.
			"u1": {{ID: "m1", Name: "Gabapentin", Times: []string{"09:00", "09:00"}}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	s.tick(context.Background(), at("2024-06-01", 8, 45))
	assert.Equal(t, 1, n.medCount())
}

func TestTickMidnightWraparoundUsesTickDate(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Levothyroxine", Times: []string{"00:10"}}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	// The 00:10 dose reminds at 23:55, dedup-keyed under the tick's own
	// calendar date (May 31), consistent with the time-of-day-only model.
	s.tick(context.Background(), at("2024-05-31", 23, 55))
	assert.Equal(t, 1, n.medCount())
	assert.False(t, s.tracker.ShouldSend("2024-05-31", "u1", "m1", "00:10"))
	assert.True(t, s.tracker.ShouldSend("2024-06-01", "u1", "m1", "00:10"))
}

func TestTickIsolatesPerUserFailures(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1", "u2"},
		meds: map[string][]Medication{
			"u2": {{ID: "m2", Name: "Amlodipine", Times: []string{"10:00"}}},
		},
		medsErr: map[string]error{"u1": fmt.Errorf("connection reset")},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u2", Subscription{Endpoint: "https://push.example/u2"})
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	s.tick(context.Background(), at("2024-06-01", 9, 45))
	assert.Equal(t, 1, n.medCount())
}

func TestTickSkipsMalformedScheduleTimes(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Atorvastatin", Times: []string{"", "25:99", "midnight"}}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	assert.NotPanics(t, func() {
		s.tick(context.Background(), at("2024-06-01", 7, 45))
	})
	assert.Equal(t, 0, n.medCount())
}

// --------------------------------------------------------------------------
// Run loop (mock clock)
// --------------------------------------------------------------------------

func TestRunTicksImmediatelyAndPerInterval(t *testing.T) {
	src := &fakeSource{
		users: []string{"u1"},
		meds: map[string][]Medication{
			"u1": {{ID: "m1", Name: "Lisinopril", Times: []string{"08:00"}}},
		},
	}
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	n := &fakeNotifier{result: true}
	s := newTestScheduler(src, reg, n)

	mock := clock.NewMock()
	mock.Set(at("2024-06-01", 7, 45))
	s.clk = mock

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Startup tick fires the 07:45 reminder without waiting a minute.
	require.Eventually(t, func() bool { return n.medCount() == 1 },
		time.Second, 5*time.Millisecond)

	// Advancing a minute re-evaluates but dedup holds.
	mock.Add(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, n.medCount())
}
