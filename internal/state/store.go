package state

import (
	"sync"
	"time"

	"github.com/tejusbharadwaj/outagewatch/internal/models"
)

// OutageStore holds the most recently fetched outage list. The list is only
// ever replaced as a whole.
type OutageStore struct {
	mu        sync.RWMutex
	records   []models.OutageRecord
	updatedAt time.Time
}

// NewOutageStore returns an empty store.
func NewOutageStore() *OutageStore {
	return &OutageStore{}
}

// ReplaceAll discards the current list and installs a copy of records.
// The copy is built before the lock is taken so readers never see a
// partially built list.
func (s *OutageStore) ReplaceAll(records []models.OutageRecord) {
	next := cloneRecords(records)
	now := time.Now()

	s.mu.Lock()
	s.records = next
	s.updatedAt = now
	s.mu.Unlock()
}

// Snapshot returns an independent copy of the stored list. Callers may
// iterate or modify it without affecting the store.
func (s *OutageStore) Snapshot() []models.OutageRecord {
	s.mu.RLock()
	current := s.records
	s.mu.RUnlock()

	// The stored slice is never mutated in place, so copying outside the
	// lock is safe.
	return cloneRecords(current)
}

// Len returns the number of stored outages.
func (s *OutageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// UpdatedAt returns when the list was last replaced, or the zero time.
func (s *OutageStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func cloneRecords(records []models.OutageRecord) []models.OutageRecord {
	out := make([]models.OutageRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
