package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
)

// Report is one archived analysis result.
type Report struct {
	ID        uuid.UUID          `json:"id"`
	UserID    int64              `json:"userId"`
	Kind      analytics.Kind     `json:"kind"`
	Period    string             `json:"period,omitempty"`
	RiskLevel string             `json:"riskLevel,omitempty"`
	Status    analytics.Status   `json:"status"`
	Answers   *analytics.Answers `json:"answers,omitempty"`
	Payload   json.RawMessage    `json:"payload"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Entry is an analysis result to archive for a user.
type Entry struct {
	UserID  int64
	Period  analytics.Period
	Answers *analytics.Answers
	Result  analytics.Result
}

// Document is a rendered, downloadable report.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
	// Location is the exported object key, empty when export is disabled.
	Location string
}

// Config controls archiving behavior.
type Config struct {
	HistoryLimit int
	CacheTTL     time.Duration
	ExportPrefix string
}

// Error codes returned by the report service.
const (
	CodeNotFound     = "not_found"
	CodeStorageError = "storage_error"
	CodeInvalidInput = "invalid_input"
)
