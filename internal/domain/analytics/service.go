package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/metalhealth/checkin-insights/pkg/errors"
	"github.com/metalhealth/checkin-insights/pkg/metrics"
	"github.com/metalhealth/checkin-insights/pkg/util"
)

// Service runs the analysis flows. Every method returns a structurally valid
// Result; failures are reported through its fields, never as errors.
type Service interface {
	AnalyzeCheckIn(ctx context.Context, req CheckInRequest) Result
	AnalyzeDailySummary(ctx context.Context, req DailySummaryRequest) Result
	AnalyzePeriod(ctx context.Context, req PeriodRequest) Result
	AssessRisk(ctx context.Context, req RiskRequest) Result
}

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CredentialSource supplies the generator API key.
type CredentialSource interface {
	APIKey() (string, bool)
}

// TokenCounter estimates token usage of a text.
type TokenCounter interface {
	Count(text string) int
}

type service struct {
	cfg         Config
	generator   Generator
	credentials CredentialSource
	prompts     PromptBuilder
	tokens      TokenCounter
	classifier  *Classifier
	normalizer  *Normalizer
	logger      *slog.Logger
	now         func() time.Time
}

// NewService wires the analytics pipeline.
func NewService(cfg Config, generator Generator, credentials CredentialSource, prompts PromptBuilder, tokens TokenCounter, logger *slog.Logger) Service {
	cfg = cfg.withDefaults()
	if prompts == nil {
		prompts = NewPromptBuilder(cfg)
	}
	svc := &service{
		cfg:         cfg,
		generator:   generator,
		credentials: credentials,
		prompts:     prompts,
		tokens:      tokens,
		classifier:  NewClassifier(cfg.Rules),
		normalizer:  NewNormalizer(cfg.ExcerptLimit),
		logger:      logger.With("component", "analytics.service"),
		now:         util.NowUTC,
	}
	svc.normalizer.now = func() time.Time { return svc.now() }
	return svc
}

type stage int

const (
	stageInit stage = iota
	stageStatsComputed
	stageRequestBuilt
	stageResponseReceived
	stageNormalized
	stageMerged
	stageError
)

func (s stage) String() string {
	switch s {
	case stageInit:
		return "init"
	case stageStatsComputed:
		return "stats_computed"
	case stageRequestBuilt:
		return "request_built"
	case stageResponseReceived:
		return "response_received"
	case stageNormalized:
		return "normalized"
	case stageMerged:
		return "merged"
	case stageError:
		return "error"
	default:
		return "unknown"
	}
}

// run carries one invocation through the pipeline.
type run struct {
	kind   Kind
	stage  stage
	logger *slog.Logger
	schema Schema
	prompt string
	// unavailable overrides the defaults when the generator fails.
	unavailable Record
	// merge writes locally computed fields over the normalized record.
	merge func(Record)
}

func (r *run) advance(next stage) {
	r.logger.Debug("analysis stage", "from", r.stage.String(), "to", next.String())
	r.stage = next
}

func (s *service) newRun(kind Kind) *run {
	return &run{kind: kind, stage: stageInit, logger: s.logger.With("kind", string(kind))}
}

func (s *service) AnalyzeCheckIn(ctx context.Context, req CheckInRequest) Result {
	r := s.newRun(KindCheckIn)
	if res, ok := s.requireCredential(r); !ok {
		return res
	}
	r.advance(stageStatsComputed)
	r.schema = checkInSchema()
	r.prompt = s.prompts.CheckIn(req)
	return s.execute(ctx, r)
}

func (s *service) AnalyzeDailySummary(ctx context.Context, req DailySummaryRequest) Result {
	r := s.newRun(KindDailySummary)
	if strings.TrimSpace(req.DailySummary) == "" {
		return s.invalid(r, errors.New("dailySummary is required"))
	}
	if res, ok := s.requireCredential(r); !ok {
		return res
	}
	r.advance(stageStatsComputed)
	r.schema = dailySummarySchema()
	r.prompt = s.prompts.DailySummary(req)
	return s.execute(ctx, r)
}

func (s *service) AnalyzePeriod(ctx context.Context, req PeriodRequest) Result {
	r := s.newRun(KindPeriod)
	switch req.Period {
	case "":
		req.Period = PeriodWeekly
	case PeriodWeekly, PeriodMonthly:
	default:
		return s.invalid(r, fmt.Errorf("period must be weekly or monthly, got %q", req.Period))
	}
	if res, ok := s.requireCredential(r); !ok {
		return res
	}

	stats := Aggregate(req.Assessments)
	trends := ComputeTrends(req.Assessments)
	r.advance(stageStatsComputed)
	r.logger.Info("period statistics computed",
		"period", string(req.Period),
		"assessments", stats.TotalAssessments,
		"summaries", len(req.Summaries),
		"moodTrend", string(trends.Mood),
	)

	r.schema = periodSchema(req.Period)
	r.unavailable = periodUnavailable(req.Period, trends)
	r.merge = trends.apply
	r.prompt = s.prompts.Period(PeriodPromptInput{Request: req, Stats: stats, Trends: trends})
	return s.execute(ctx, r)
}

func (s *service) AssessRisk(ctx context.Context, req RiskRequest) Result {
	r := s.newRun(KindRisk)
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return s.invalid(r, errors.New("text is required"))
	}

	narrative := text
	status := StatusOK
	var notes []string
	var failure string
	var usage metrics.TokenUsage
	if _, ok := s.credentials.APIKey(); !ok {
		status = StatusFallback
		failure = "API key not found"
		notes = append(notes, CodeMissingCredential)
		r.logger.Warn("risk narrative generation skipped", "error", apperrors.Wrap(CodeMissingCredential, "api key not configured", nil))
	} else {
		r.prompt = s.prompts.Risk(req)
		r.advance(stageRequestBuilt)
		usage.PromptTokens = s.count(r.prompt)
		raw, err := s.generate(ctx, r)
		switch {
		case err != nil:
			status = StatusFallback
			failure = "AI analysis failed"
			notes = append(notes, CodeExternalUnavailable)
			r.logger.Warn("risk narrative generation failed", "error", apperrors.Wrap(CodeExternalUnavailable, "generator call failed", err))
		case strings.TrimSpace(raw) == "":
			status = StatusRepaired
			notes = append(notes, CodeMalformedResponse)
		default:
			r.advance(stageResponseReceived)
			narrative = strings.TrimSpace(raw)
			usage.CompletionTokens = s.count(raw)
		}
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	assessment := s.classifier.Assess(narrative)
	// Without a generated narrative the level may only err upward.
	if status != StatusOK && assessment.Level == RiskLow {
		assessment = RiskAssessment{Level: RiskMedium, Recommendations: s.classifier.Recommend(RiskMedium, narrative)}
	}
	r.advance(stageMerged)
	rec := Record{
		FieldNarrative:    narrative,
		FieldRiskLevel:    string(assessment.Level),
		FieldSpecialists:  assessment.Recommendations,
		FieldAdvisory:     Advisory(assessment.Level),
		FieldRulesVersion: s.classifier.Version(),
		FieldTimestamp:    s.now().Format(time.RFC3339),
	}
	if failure != "" {
		rec[FieldError] = failure
	}
	s.logCompleted(r, status, usage)
	return Result{Kind: KindRisk, Status: status, Notes: notes, Usage: usage, Fields: rec}
}

func (s *service) requireCredential(r *run) (Result, bool) {
	if _, ok := s.credentials.APIKey(); ok {
		return Result{}, true
	}
	err := apperrors.Wrap(CodeMissingCredential, "api key not configured", nil)
	r.logger.Warn("analysis short-circuited", "error", err)
	r.advance(stageError)
	return Result{
		Kind:   r.kind,
		Status: StatusFallback,
		Notes:  []string{CodeMissingCredential},
		Fields: shortCircuit(r.kind, "API key not found", "Unable to perform analysis", s.now()),
	}, false
}

func (s *service) invalid(r *run, err error) Result {
	r.logger.Warn("analysis rejected", "error", apperrors.Wrap(CodeInvalidInput, "invalid analysis request", err))
	r.advance(stageError)
	res := InvalidInputResult(r.kind, err)
	res.Fields[FieldTimestamp] = s.now().Format(time.RFC3339)
	return res
}

func (s *service) generate(ctx context.Context, r *run) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.timeoutFor(r.kind))
	defer cancel()
	return s.generator.Generate(callCtx, r.prompt)
}

// execute drives a prepared run from RequestBuilt to Merged, or to the error
// state when the generator cannot be reached.
func (s *service) execute(ctx context.Context, r *run) Result {
	r.advance(stageRequestBuilt)
	usage := metrics.TokenUsage{PromptTokens: s.count(r.prompt)}

	raw, err := s.generate(ctx, r)
	if err != nil {
		r.logger.Warn("generator unavailable", "error", apperrors.Wrap(CodeExternalUnavailable, "generator call failed", err))
		r.advance(stageError)
		rec := s.normalizer.Fallback("", r.schema).Record
		for k, v := range r.unavailable {
			rec[k] = v
		}
		rec[FieldError] = "AI analysis failed"
		if r.merge != nil {
			r.merge(rec)
		}
		usage.TotalTokens = usage.PromptTokens
		s.logCompleted(r, StatusFallback, usage)
		return Result{Kind: r.kind, Status: StatusFallback, Notes: []string{CodeExternalUnavailable}, Usage: usage, Fields: rec}
	}
	r.advance(stageResponseReceived)
	usage.CompletionTokens = s.count(raw)
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	outcome := s.normalizer.Normalize(raw, r.schema)
	r.advance(stageNormalized)
	notes := outcome.Notes
	if outcome.Status == StatusFailed {
		r.logger.Warn("generator reply malformed", "error", apperrors.Wrap(CodeMalformedResponse, "reply is not a JSON object", nil), "excerpt", truncate(raw, s.cfg.ExcerptLimit))
		notes = append([]string{CodeMalformedResponse}, notes...)
	}

	rec := outcome.Record
	if r.merge != nil {
		r.merge(rec)
	}
	r.advance(stageMerged)
	s.logCompleted(r, outcome.Status, usage)
	return Result{Kind: r.kind, Status: outcome.Status, Notes: notes, Usage: usage, Fields: rec}
}

func (s *service) count(text string) int {
	if s.tokens == nil {
		return len(strings.Fields(text))
	}
	return s.tokens.Count(text)
}

func (s *service) logCompleted(r *run, status Status, usage metrics.TokenUsage) {
	r.logger.Info("analysis completed",
		"status", string(status),
		"stage", r.stage.String(),
		"promptTokens", usage.PromptTokens,
		"completionTokens", usage.CompletionTokens,
	)
}
