package report

import (
	"context"
	"time"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
)

// Repository persists archived reports.
type Repository interface {
	Save(ctx context.Context, rep Report) error
	// ListByUser returns reports newest first. An empty kind matches all kinds.
	ListByUser(ctx context.Context, userID int64, kind analytics.Kind, limit int) ([]Report, error)
}

// Cache keeps the latest report per user and kind.
type Cache interface {
	GetLatest(ctx context.Context, userID int64, kind analytics.Kind) (Report, bool, error)
	SetLatest(ctx context.Context, rep Report, ttl time.Duration) error
}

// Exporter uploads rendered documents to object storage.
type Exporter interface {
	Export(ctx context.Context, key string, body []byte, contentType string) (string, error)
}
