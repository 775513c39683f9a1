package analytics

import "time"

// Config holds analytics tunables. It is built once at start-up and shared
// read-only by every request.
type Config struct {
	Model                string
	CheckInTimeout       time.Duration
	PeriodTimeout        time.Duration
	ExcerptLimit         int
	MaxPromptAssessments int
	MaxPromptSummaries   int
	Rules                RuleTable
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:                "gemini-2.5-flash",
		CheckInTimeout:       30 * time.Second,
		PeriodTimeout:        60 * time.Second,
		ExcerptLimit:         200,
		MaxPromptAssessments: 10,
		MaxPromptSummaries:   5,
		Rules:                DefaultRuleTable(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.CheckInTimeout <= 0 {
		c.CheckInTimeout = def.CheckInTimeout
	}
	if c.PeriodTimeout <= 0 {
		c.PeriodTimeout = def.PeriodTimeout
	}
	if c.ExcerptLimit <= 0 {
		c.ExcerptLimit = def.ExcerptLimit
	}
	if c.MaxPromptAssessments <= 0 {
		c.MaxPromptAssessments = def.MaxPromptAssessments
	}
	if c.MaxPromptSummaries <= 0 {
		c.MaxPromptSummaries = def.MaxPromptSummaries
	}
	if len(c.Rules.Rules) == 0 {
		c.Rules = def.Rules
	}
	return c
}

func (c Config) timeoutFor(kind Kind) time.Duration {
	if kind == KindPeriod {
		return c.PeriodTimeout
	}
	return c.CheckInTimeout
}
