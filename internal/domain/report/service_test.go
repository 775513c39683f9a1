package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	apperrors "github.com/metalhealth/checkin-insights/pkg/errors"
)

type fakeRepo struct {
	mu      sync.Mutex
	reports []Report
	err     error
	lists   int
}

func (r *fakeRepo) Save(_ context.Context, rep Report) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID int64, kind analytics.Kind, limit int) ([]Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var out []Report
	for _, rep := range r.reports {
		if rep.UserID == userID && (kind == "" || rep.Kind == kind) {
			out = append(out, rep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCache struct {
	latest map[string]Report
	err    error
}

func (c *fakeCache) key(userID int64, kind analytics.Kind) string {
	return fmt.Sprintf("%s:%d", kind, userID)
}

func (c *fakeCache) GetLatest(_ context.Context, userID int64, kind analytics.Kind) (Report, bool, error) {
	if c.err != nil {
		return Report{}, false, c.err
	}
	rep, ok := c.latest[c.key(userID, kind)]
	return rep, ok, nil
}

func (c *fakeCache) SetLatest(_ context.Context, rep Report, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.latest[c.key(rep.UserID, rep.Kind)] = rep
	return nil
}

type fakeExporter struct {
	keys []string
	err  error
}

func (e *fakeExporter) Export(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.keys = append(e.keys, key)
	return "s3://bucket/" + key, nil
}

func newTestService(repo *fakeRepo, cache *fakeCache, exporter Exporter) *service {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(Config{ExportPrefix: "reports"}, repo, cache, exporter, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func checkInResult(risk, summary string) analytics.Result {
	return analytics.Result{
		Kind:   analytics.KindCheckIn,
		Status: analytics.StatusOK,
		Fields: analytics.Record{"summary": summary, "riskLevel": risk, "recommendations": "rest"},
	}
}

func intPtr(v int) *int { return &v }

func TestArchiveAndLatest(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{latest: map[string]Report{}}
	svc := newTestService(repo, cache, nil)
	ctx := context.Background()

	rep, err := svc.Archive(ctx, Entry{UserID: 1, Result: checkInResult("Low", "fine")})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, rep.ID)
	require.Equal(t, "Low", rep.RiskLevel)
	require.JSONEq(t, `{"summary":"fine","riskLevel":"Low","recommendations":"rest"}`, string(rep.Payload))

	latest, err := svc.Latest(ctx, 1, analytics.KindCheckIn)
	require.NoError(t, err)
	require.Equal(t, rep.ID, latest.ID)
	require.Equal(t, 0, repo.lists)
}

func TestLatestFallsBackToRepository(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{latest: map[string]Report{}, err: errors.New("cache down")}
	svc := newTestService(repo, cache, nil)
	ctx := context.Background()

	_, err := svc.Latest(ctx, 1, analytics.KindPeriod)
	require.True(t, apperrors.IsCode(err, CodeNotFound))

	repo.reports = append(repo.reports, Report{ID: uuid.New(), UserID: 1, Kind: analytics.KindPeriod, CreatedAt: time.Now()})
	latest, err := svc.Latest(ctx, 1, analytics.KindPeriod)
	require.NoError(t, err)
	require.Equal(t, repo.reports[0].ID, latest.ID)
}

func TestArchiveRejectsAnonymous(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeCache{latest: map[string]Report{}}, nil)
	_, err := svc.Archive(context.Background(), Entry{Result: checkInResult("Low", "x")})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
}

func TestArchiveStorageFailure(t *testing.T) {
	svc := newTestService(&fakeRepo{err: errors.New("db down")}, &fakeCache{latest: map[string]Report{}}, nil)
	_, err := svc.Archive(context.Background(), Entry{UserID: 1, Result: checkInResult("Low", "x")})
	require.True(t, apperrors.IsCode(err, CodeStorageError))
}

func TestDownloadRendersAndExports(t *testing.T) {
	repo := &fakeRepo{}
	exporter := &fakeExporter{}
	svc := newTestService(repo, &fakeCache{latest: map[string]Report{}}, exporter)
	ctx := context.Background()

	_, err := svc.Download(ctx, 4)
	require.True(t, apperrors.IsCode(err, CodeNotFound))

	_, err = svc.Archive(ctx, Entry{UserID: 4, Answers: &analytics.Answers{Mood: "Calm", MoodLevel: intPtr(6), AnxietyFrequency: "Rarely"}, Result: checkInResult("Low", "first day")})
	require.NoError(t, err)
	_, err = svc.Archive(ctx, Entry{UserID: 4, Answers: &analytics.Answers{Mood: "Calm", MoodLevel: intPtr(8)}, Result: checkInResult("High", "second day")})
	require.NoError(t, err)

	doc, err := svc.Download(ctx, 4)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(doc.Filename, "mental-health-report-2024-05-01"))
	require.Equal(t, "s3://bucket/reports/4/"+doc.Filename, doc.Location)

	body := string(doc.Body)
	require.Contains(t, body, "Total Assessments: 2")
	require.Contains(t, body, "Average Mood Level: 7.0/10")
	require.Contains(t, body, "- High Risk: 1 assessments")
	require.Contains(t, body, "Most Common Mood: Calm")
	require.Contains(t, body, "Most Common Overwhelmed Frequency: Not specified")
	require.Less(t, strings.Index(body, "first day"), strings.Index(body, "second day"))
}

func TestDownloadSurvivesExportFailure(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeCache{latest: map[string]Report{}}, &fakeExporter{err: errors.New("s3 down")})
	ctx := context.Background()
	_, err := svc.Archive(ctx, Entry{UserID: 2, Result: checkInResult("Medium", "only")})
	require.NoError(t, err)

	doc, err := svc.Download(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, doc.Location)
	require.NotEmpty(t, doc.Body)
}
