package state

import "sync"

// UpdateTracker remembers the newest "last updated" timestamp seen from the
// feed. The marker only moves forward.
type UpdateTracker struct {
	mu   sync.Mutex
	last int64
}

// NewUpdateTracker returns a tracker whose marker starts at zero.
func NewUpdateTracker() *UpdateTracker {
	return &UpdateTracker{}
}

// ObserveTimestamp records candidate and reports whether it is strictly
// newer than anything seen before. An equal timestamp means the cached
// outages are current and returns false.
func (t *UpdateTracker) ObserveTimestamp(candidate int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if candidate <= t.last {
		return false
	}
	t.last = candidate
	return true
}

// Last returns the stored marker.
func (t *UpdateTracker) Last() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
