//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/metalhealth/checkin-insights/internal/bootstrap"
	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/auth"
	"github.com/metalhealth/checkin-insights/internal/infra/config"
	"github.com/metalhealth/checkin-insights/internal/infra/credentials"
	"github.com/metalhealth/checkin-insights/internal/infra/tokenizer"
	httpiface "github.com/metalhealth/checkin-insights/internal/interface/http"
	"github.com/metalhealth/checkin-insights/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAnalyticsConfig,
		provideCredentials,
		provideGenerator,
		provideTokenCounter,
		provideAuthConfig,
		provideReportConfig,
		provideReportRepository,
		provideReportCache,
		provideReportExporter,
		provideReportService,
		analytics.NewPromptBuilder,
		analytics.NewService,
		auth.NewService,
		wire.Bind(new(analytics.CredentialSource), new(credentials.Static)),
		wire.Bind(new(analytics.TokenCounter), new(*tokenizer.Counter)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
