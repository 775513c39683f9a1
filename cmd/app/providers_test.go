package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metalhealth/checkin-insights/internal/infra/config"
	"github.com/metalhealth/checkin-insights/internal/infra/reportrepo"
	"github.com/metalhealth/checkin-insights/internal/infra/reportstore"
)

func TestProvideReportServiceNeedsSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{Archive: config.ArchiveConfig{Enabled: true}}
	repo := reportrepo.NewMemoryRepository()
	cache := reportstore.NewMemoryStore()

	require.Nil(t, provideReportService(cfg, provideReportConfig(cfg), repo, cache, nil, logger))

	cfg.Auth.Secret = "s3cret"
	require.NotNil(t, provideReportService(cfg, provideReportConfig(cfg), repo, cache, nil, logger))

	cfg.Archive.Enabled = false
	require.Nil(t, provideReportService(cfg, provideReportConfig(cfg), repo, cache, nil, logger))
}
