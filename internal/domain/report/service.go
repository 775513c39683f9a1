package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	apperrors "github.com/metalhealth/checkin-insights/pkg/errors"
	"github.com/metalhealth/checkin-insights/pkg/util"
)

// Service archives analysis results and renders history reports.
type Service interface {
	Archive(ctx context.Context, entry Entry) (Report, error)
	History(ctx context.Context, userID int64, kind analytics.Kind, limit int) ([]Report, error)
	Latest(ctx context.Context, userID int64, kind analytics.Kind) (Report, error)
	Download(ctx context.Context, userID int64) (Document, error)
}

type service struct {
	cfg      Config
	repo     Repository
	cache    Cache
	exporter Exporter
	logger   *slog.Logger
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewService wires the report archive. exporter may be nil.
func NewService(cfg Config, repo Repository, cache Cache, exporter Exporter, logger *slog.Logger) Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 30
	}
	return &service{
		cfg:      cfg,
		repo:     repo,
		cache:    cache,
		exporter: exporter,
		logger:   logger.With("component", "report.service"),
		now:      util.NowUTC,
		newID:    uuid.New,
	}
}

func (s *service) Archive(ctx context.Context, entry Entry) (Report, error) {
	if entry.UserID <= 0 {
		return Report{}, apperrors.Wrap(CodeInvalidInput, "user id is required", nil)
	}
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return Report{}, apperrors.Wrap(CodeStorageError, "failed to encode report", err)
	}
	rep := Report{
		ID:        s.newID(),
		UserID:    entry.UserID,
		Kind:      entry.Result.Kind,
		Period:    string(entry.Period),
		RiskLevel: entry.Result.RiskLevel(),
		Status:    entry.Result.Status,
		Answers:   entry.Answers,
		Payload:   payload,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, rep); err != nil {
		return Report{}, apperrors.Wrap(CodeStorageError, "failed to save report", err)
	}
	if err := s.cache.SetLatest(ctx, rep, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", "error", err, "userId", rep.UserID, "kind", string(rep.Kind))
	}
	s.logger.Info("report archived", "reportId", rep.ID.String(), "userId", rep.UserID, "kind", string(rep.Kind), "riskLevel", rep.RiskLevel)
	return rep, nil
}

func (s *service) History(ctx context.Context, userID int64, kind analytics.Kind, limit int) ([]Report, error) {
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	reports, err := s.repo.ListByUser(ctx, userID, kind, limit)
	if err != nil {
		return nil, apperrors.Wrap(CodeStorageError, "failed to list reports", err)
	}
	return reports, nil
}

func (s *service) Latest(ctx context.Context, userID int64, kind analytics.Kind) (Report, error) {
	if rep, ok, err := s.cache.GetLatest(ctx, userID, kind); err != nil {
		s.logger.Warn("report cache read failed", "error", err, "userId", userID)
	} else if ok {
		return rep, nil
	}
	reports, err := s.repo.ListByUser(ctx, userID, kind, 1)
	if err != nil {
		return Report{}, apperrors.Wrap(CodeStorageError, "failed to load latest report", err)
	}
	if len(reports) == 0 {
		return Report{}, apperrors.Wrap(CodeNotFound, "no reports available", nil)
	}
	if err := s.cache.SetLatest(ctx, reports[0], s.cfg.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", "error", err, "userId", userID)
	}
	return reports[0], nil
}

func (s *service) Download(ctx context.Context, userID int64) (Document, error) {
	reports, err := s.repo.ListByUser(ctx, userID, analytics.KindCheckIn, s.cfg.HistoryLimit)
	if err != nil {
		return Document{}, apperrors.Wrap(CodeStorageError, "failed to list reports", err)
	}
	if len(reports) == 0 {
		return Document{}, apperrors.Wrap(CodeNotFound, "no assessment data available to generate report", nil)
	}

	now := s.now()
	doc := Document{
		Filename:    fmt.Sprintf("mental-health-report-%s.txt", now.Format("2006-01-02")),
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(Render(userID, reports, now)),
	}
	if s.exporter != nil {
		key := path.Join(s.cfg.ExportPrefix, fmt.Sprintf("%d", userID), doc.Filename)
		location, err := s.exporter.Export(ctx, key, doc.Body, doc.ContentType)
		if err != nil {
			s.logger.Warn("report export failed", "error", err, "userId", userID)
		} else {
			doc.Location = location
		}
	}
	s.logger.Info("report rendered", "userId", userID, "assessments", len(reports), "exported", doc.Location != "")
	return doc, nil
}
