package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/auth"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
	"github.com/metalhealth/checkin-insights/internal/infra/config"
	"github.com/metalhealth/checkin-insights/internal/infra/credentials"
	"github.com/metalhealth/checkin-insights/internal/infra/llm/chatgpt"
	"github.com/metalhealth/checkin-insights/internal/infra/llm/gemini"
	"github.com/metalhealth/checkin-insights/internal/infra/reportexport"
	"github.com/metalhealth/checkin-insights/internal/infra/reportrepo"
	"github.com/metalhealth/checkin-insights/internal/infra/reportstore"
	"github.com/metalhealth/checkin-insights/internal/infra/tokenizer"
)

func provideAnalyticsConfig(cfg *config.Config) analytics.Config {
	out := analytics.DefaultConfig()
	out.Model = cfg.LLM.Model
	out.CheckInTimeout = cfg.Analysis.CheckInTimeout
	out.PeriodTimeout = cfg.Analysis.PeriodTimeout
	out.ExcerptLimit = cfg.Analysis.ExcerptLimit
	out.MaxPromptAssessments = cfg.Analysis.MaxPromptAssessments
	out.MaxPromptSummaries = cfg.Analysis.MaxPromptSummaries
	return out
}

func provideCredentials(cfg *config.Config) credentials.Static {
	return credentials.NewStatic(cfg.LLM.APIKey)
}

func provideGenerator(cfg *config.Config, creds credentials.Static, logger *slog.Logger) analytics.Generator {
	switch cfg.LLM.Provider {
	case "openai":
		key, _ := creds.APIKey()
		client, err := chatgpt.NewClient(key, cfg.LLM.BaseURL)
		if err != nil {
			logger.Warn("chatgpt client unavailable", "error", err)
			return unavailableGenerator{err: err}
		}
		logger.Info("text generator selected", "provider", "openai", "model", cfg.LLM.Model)
		return chatgpt.NewGenerator(client, cfg.LLM.Model, cfg.LLM.Temperature)
	default:
		logger.Info("text generator selected", "provider", "gemini", "model", cfg.LLM.Model)
		return gemini.NewClient(cfg.LLM.EndpointTemplate, cfg.LLM.Model, creds)
	}
}

// unavailableGenerator stands in when the configured provider could not be built.
type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", g.err
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) *tokenizer.Counter {
	return tokenizer.New(cfg.LLM.TokenEncoding, logger)
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret: cfg.Auth.Secret,
	}
}

func provideReportConfig(cfg *config.Config) report.Config {
	return report.Config{
		HistoryLimit: cfg.Archive.HistoryLimit,
		CacheTTL:     cfg.Archive.CacheTTL,
		ExportPrefix: cfg.Archive.Export.Prefix,
	}
}

func provideReportRepository(cfg *config.Config, logger *slog.Logger) report.Repository {
	fallback := reportrepo.NewMemoryRepository()
	if !cfg.Archive.Enabled {
		return fallback
	}
	dsn := strings.TrimSpace(cfg.Archive.Postgres.DSN)
	if dsn == "" {
		logger.Info("archive postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Archive.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Archive.Postgres.MaxConns
	}
	if cfg.Archive.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Archive.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("archive postgres repository enabled")
	return reportrepo.NewPostgresRepository(pool)
}

func provideReportCache(cfg *config.Config, logger *slog.Logger) report.Cache {
	if cfg.Archive.Enabled && cfg.Archive.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg.Archive.Redis.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return reportstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return reportstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("report valkey cache enabled", "addr", cfg.Archive.Redis.Addr)
			return reportstore.NewValkeyStore(client, "checkin")
		}
	}
	return reportstore.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideReportExporter(cfg *config.Config, logger *slog.Logger) report.Exporter {
	exp := cfg.Archive.Export
	if !cfg.Archive.Enabled || !exp.Enabled {
		return nil
	}
	exporter, err := reportexport.NewS3Exporter(exp.Endpoint, exp.AccessKeyID, exp.SecretAccessKey, exp.Bucket, exp.UseSSL, logger)
	if err != nil {
		logger.Error("report export disabled", "error", err)
		return nil
	}
	logger.Info("report export enabled", "endpoint", exp.Endpoint, "bucket", exp.Bucket)
	return exporter
}

// provideReportService returns nil when archiving is disabled or no token
// secret is set; the HTTP layer then skips archiving and answers report
// routes with 404.
func provideReportService(cfg *config.Config, reportCfg report.Config, repo report.Repository, cache report.Cache, exporter report.Exporter, logger *slog.Logger) report.Service {
	if !cfg.Archive.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		logger.Warn("report archive disabled: auth secret not configured")
		return nil
	}
	return report.NewService(reportCfg, repo, cache, exporter, logger)
}
