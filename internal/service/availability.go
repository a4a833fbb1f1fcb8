package service

import (
	"sync"
	"time"
)

// AvailabilityTracker decides whether the last data we hold is trustworthy.
// It keeps two independent clocks: the last time the controller answered at
// all (success or tolerated failure) and the last time a cycle fully
// succeeded. Availability is driven by the response clock so a flaky
// backend can miss several polls before consumers are told the data is gone.
type AvailabilityTracker struct {
	staleness time.Duration
	now       func() time.Time

	mu           sync.Mutex
	lastResponse time.Time
	lastSuccess  time.Time
}

// NewAvailabilityTracker builds a tracker with the given staleness window.
func NewAvailabilityTracker(staleness time.Duration) *AvailabilityTracker {
	return &AvailabilityTracker{
		staleness: staleness,
		now:       time.Now,
	}
}

// MarkResponse records that the controller responded, without a full update.
func (a *AvailabilityTracker) MarkResponse() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastResponse = a.now()
	return a.lastResponse
}

// MarkSuccess records a fully successful update cycle. A success is also a
// response, so both clocks advance.
func (a *AvailabilityTracker) MarkSuccess() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	a.lastResponse = now
	a.lastSuccess = now
	return now
}

// IsAvailable is false until the first response ever, then true while the
// time since the last response stays inside the staleness window.
func (a *AvailabilityTracker) IsAvailable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastResponse.IsZero() {
		return false
	}
	return a.now().Sub(a.lastResponse) < a.staleness
}

// SinceSuccess returns the elapsed time since the last fully successful
// update; ok is false if no cycle has ever succeeded.
func (a *AvailabilityTracker) SinceSuccess() (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastSuccess.IsZero() {
		return 0, false
	}
	return a.now().Sub(a.lastSuccess), true
}

// LastSuccess returns the timestamp of the last fully successful update.
func (a *AvailabilityTracker) LastSuccess() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSuccess
}
