package reportrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
)

// MemoryRepository is an in-memory report.Repository used for tests/dev.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[int64][]report.Report
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[int64][]report.Report)}
}

// Save implements report.Repository.
func (r *MemoryRepository) Save(_ context.Context, rep report.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[rep.UserID] = append(r.byUser[rep.UserID], rep)
	return nil
}

// ListByUser implements report.Repository.
func (r *MemoryRepository) ListByUser(_ context.Context, userID int64, kind analytics.Kind, limit int) ([]report.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.byUser[userID]
	out := make([]report.Report, 0, len(all))
	for _, rep := range all {
		if kind == "" || rep.Kind == kind {
			out = append(out, rep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ report.Repository = (*MemoryRepository)(nil)
