package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	LLM      LLMConfig      `yaml:"llm"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Auth     AuthConfig     `yaml:"auth"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	AllowOrigins []string        `yaml:"allowOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig selects and configures the text generator.
type LLMConfig struct {
	Provider         string  `yaml:"provider"`
	APIKey           string  `yaml:"apiKey"`
	BaseURL          string  `yaml:"baseUrl"`
	EndpointTemplate string  `yaml:"endpointTemplate"`
	Model            string  `yaml:"model"`
	Temperature      float32 `yaml:"temperature"`
	TokenEncoding    string  `yaml:"tokenEncoding"`
}

// AnalysisConfig holds pipeline limits.
type AnalysisConfig struct {
	CheckInTimeout       time.Duration `yaml:"checkInTimeout"`
	PeriodTimeout        time.Duration `yaml:"periodTimeout"`
	ExcerptLimit         int           `yaml:"excerptLimit"`
	MaxPromptAssessments int           `yaml:"maxPromptAssessments"`
	MaxPromptSummaries   int           `yaml:"maxPromptSummaries"`
}

// AuthConfig controls bearer token validation.
type AuthConfig struct {
	Secret string `yaml:"secret"`
	// RequiredSetting is the explicit yaml/env choice. Left unset, auth is
	// required exactly when a secret is configured.
	RequiredSetting *bool `yaml:"required"`
	// Required is resolved by Load.
	Required bool `yaml:"-"`
}

func (a *AuthConfig) resolve() {
	if a.RequiredSetting != nil {
		a.Required = *a.RequiredSetting
		return
	}
	a.Required = strings.TrimSpace(a.Secret) != ""
}

// ArchiveConfig controls where analysis reports are kept.
type ArchiveConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HistoryLimit int            `yaml:"historyLimit"`
	CacheTTL     time.Duration  `yaml:"cacheTtl"`
	Postgres     PostgresConfig `yaml:"postgres"`
	Redis        RedisConfig    `yaml:"redis"`
	Export       ExportConfig   `yaml:"export"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ExportConfig configures S3 compatible report export.
type ExportConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSsl"`
	Prefix          string `yaml:"prefix"`
}

// Load reads configuration from a YAML file and environment variables. A
// .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	cfg.Auth.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOW_ORIGINS"); v != "" {
		cfg.HTTP.AllowOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_ENDPOINT_TEMPLATE"); v != "" {
		cfg.LLM.EndpointTemplate = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	if v := os.Getenv("ANALYSIS_CHECKIN_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Analysis.CheckInTimeout = parsed
		}
	}
	if v := os.Getenv("ANALYSIS_PERIOD_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Analysis.PeriodTimeout = parsed
		}
	}
	if v := os.Getenv("ANALYSIS_EXCERPT_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.ExcerptLimit = parsed
		}
	}

	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_REQUIRED"); v != "" {
		required := parseBool(v)
		cfg.Auth.RequiredSetting = &required
	}

	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_HISTORY_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Archive.HistoryLimit = parsed
		}
	}
	if v := os.Getenv("ARCHIVE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Archive.CacheTTL = parsed
		}
	}
	if v := os.Getenv("ARCHIVE_POSTGRES_DSN"); v != "" {
		cfg.Archive.Postgres.DSN = v
	}
	if v := os.Getenv("ARCHIVE_REDIS_ENABLED"); v != "" {
		cfg.Archive.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_REDIS_ADDR"); v != "" {
		cfg.Archive.Redis.Addr = v
	}
	if v := os.Getenv("ARCHIVE_EXPORT_ENABLED"); v != "" {
		cfg.Archive.Export.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_EXPORT_ENDPOINT"); v != "" {
		cfg.Archive.Export.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_EXPORT_BUCKET"); v != "" {
		cfg.Archive.Export.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_EXPORT_ACCESS_KEY_ID"); v != "" {
		cfg.Archive.Export.AccessKeyID = v
	}
	if v := os.Getenv("ARCHIVE_EXPORT_SECRET_ACCESS_KEY"); v != "" {
		cfg.Archive.Export.SecretAccessKey = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			AllowOrigins: []string{"http://localhost:3000"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Provider:         "gemini",
			EndpointTemplate: "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent?key={api_key}",
			Model:            "gemini-2.5-flash",
			Temperature:      0.2,
			TokenEncoding:    "cl100k_base",
		},
		Analysis: AnalysisConfig{
			CheckInTimeout:       30 * time.Second,
			PeriodTimeout:        60 * time.Second,
			ExcerptLimit:         200,
			MaxPromptAssessments: 10,
			MaxPromptSummaries:   5,
		},
		Archive: ArchiveConfig{
			Enabled:      true,
			HistoryLimit: 30,
			CacheTTL:     6 * time.Hour,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Export: ExportConfig{
				UseSSL: true,
				Prefix: "reports",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.LLM.Provider {
	case "gemini":
		if !strings.Contains(c.LLM.EndpointTemplate, "{model}") {
			return errors.New("llm.endpointTemplate must contain {model}")
		}
	case "openai":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Analysis.CheckInTimeout <= 0 || c.Analysis.PeriodTimeout <= 0 {
		return errors.New("analysis timeouts must be positive")
	}
	if c.Analysis.ExcerptLimit <= 0 {
		return errors.New("analysis.excerptLimit must be positive")
	}
	if c.Auth.Required && strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty when auth is required")
	}
	if c.Archive.HistoryLimit < 0 {
		return errors.New("archive.historyLimit cannot be negative")
	}
	if c.Archive.CacheTTL < 0 {
		return errors.New("archive.cacheTtl cannot be negative")
	}
	if c.Archive.Redis.Enabled && strings.TrimSpace(c.Archive.Redis.Addr) == "" {
		return errors.New("archive.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Archive.Export.Enabled {
		if strings.TrimSpace(c.Archive.Export.Endpoint) == "" || strings.TrimSpace(c.Archive.Export.Bucket) == "" {
			return errors.New("archive.export endpoint and bucket are required when export is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
