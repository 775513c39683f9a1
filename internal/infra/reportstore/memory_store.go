package reportstore

import (
	"context"
	"sync"
	"time"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
)

type latestKey struct {
	userID int64
	kind   analytics.Kind
}

type cachedReport struct {
	payload   report.Report
	expiresAt time.Time
}

// MemoryStore is an in-memory report.Cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[latestKey]cachedReport
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[latestKey]cachedReport), now: time.Now}
}

// GetLatest implements report.Cache.
func (s *MemoryStore) GetLatest(_ context.Context, userID int64, kind analytics.Kind) (report.Report, bool, error) {
	key := latestKey{userID: userID, kind: kind}
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return report.Report{}, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return report.Report{}, false, nil
	}
	return entry.payload, true, nil
}

// SetLatest caches rep under its kind and under the "any kind" slot.
func (s *MemoryStore) SetLatest(_ context.Context, rep report.Report, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	entry := cachedReport{payload: rep, expiresAt: exp}
	s.entries[latestKey{userID: rep.UserID, kind: rep.Kind}] = entry
	s.entries[latestKey{userID: rep.UserID}] = entry
	return nil
}

var _ report.Cache = (*MemoryStore)(nil)
