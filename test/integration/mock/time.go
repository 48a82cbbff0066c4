package mock

import (
	"sync"
	"time"
)

// Time is a settable clock. Pinning it makes calendar-bucketed assertions
// deterministic regardless of when the suite runs.
type Time struct {
	mu    sync.Mutex
	base  time.Time
	setAt time.Time
}

// NewTime returns a clock tracking real time until pinned.
func NewTime() *Time {
	now := time.Now()
	return &Time{base: now, setAt: now}
}

// SetCurrentTime pins the clock to the given instant.
func (t *Time) SetCurrentTime(current time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base = current
	t.setAt = time.Now()
}

// Now returns the pinned instant advanced by real elapsed time since the pin.
func (t *Time) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.base.Add(time.Since(t.setAt))
}
