package notify

import "sync"

// DayTracker prevents duplicate medication reminders within a calendar day.
// The scheduler re-evaluates every minute, so a due dose is seen 1440 times
// a day; the tracker collapses that to at most one send per key.
//
// ShouldSend deliberately does not mark the key: marking is a separate step
// the caller performs only after a dispatch attempt, so a send skipped for
// unreachability does not consume the day's slot.
type DayTracker struct {
	mu   sync.Mutex
	day  string
	sent map[string]struct{}
}

// NewDayTracker creates an empty tracker.
func NewDayTracker() *DayTracker {
	return &DayTracker{sent: make(map[string]struct{})}
}

// ShouldSend reports whether the reminder for the key has not been sent on
// the given calendar day. Day rollover is detected lazily on first use.
func (t *DayTracker) ShouldSend(day, userID, medicationID, scheduledTime string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover(day)
	_, seen := t.sent[dedupKey(day, userID, medicationID, scheduledTime)]
	return !seen
}

// MarkSent records that the reminder for the key was attempted today.
// Idempotent.
func (t *DayTracker) MarkSent(day, userID, medicationID, scheduledTime string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover(day)
	t.sent[dedupKey(day, userID, medicationID, scheduledTime)] = struct{}{}
}

// rollover clears the set when the calendar day changes. Caller holds mu.
func (t *DayTracker) rollover(day string) {
	if day != t.day {
		t.day = day
		t.sent = make(map[string]struct{})
	}
}

func dedupKey(day, userID, medicationID, scheduledTime string) string {
	return day + "/" + userID + "/" + medicationID + "/" + scheduledTime
}
