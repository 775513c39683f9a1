package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply    string
	err      error
	calls    int
	prompts  []string
	deadline time.Duration
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if dl, ok := ctx.Deadline(); ok {
		s.deadline = time.Until(dl)
	}
	return s.reply, s.err
}

type stubCredentials struct {
	key string
}

func (s stubCredentials) APIKey() (string, bool) {
	return s.key, s.key != ""
}

var fixedNow = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

func newTestService(gen Generator, key string) *service {
	svc := NewService(Config{}, gen, stubCredentials{key: key}, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestAnalyzeCheckInSuccess(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n{\"summary\":\"Stable mood\",\"riskLevel\":\"Low\",\"recommendations\":\"Keep a routine\"}\n```"}
	svc := newTestService(gen, "key")

	res := svc.AnalyzeCheckIn(context.Background(), CheckInRequest{
		Answers:      Answers{Mood: "Content", MoodLevel: intPtr(7), SleepHours: floatPtr(7.5)},
		DailySummary: "Went for a run",
	})

	require.Equal(t, StatusOK, res.Status)
	require.Equal(t, "Stable mood", res.Fields[FieldSummary])
	require.Equal(t, "Low", res.RiskLevel())
	require.Equal(t, "2024-05-01T08:30:00Z", res.Fields[FieldTimestamp])
	require.Empty(t, res.Error())
	require.Equal(t, 1, gen.calls)
	require.Contains(t, gen.prompts[0], "Went for a run")
	require.Contains(t, gen.prompts[0], "Mood level (1-10): 7 (positive)")
	require.Greater(t, res.Usage.PromptTokens, 0)
	require.InDelta(t, 30*time.Second, gen.deadline, float64(time.Second))
}

func TestAnalyzeCheckInMissingCredential(t *testing.T) {
	gen := &stubGenerator{}
	svc := newTestService(gen, "")

	res := svc.AnalyzeCheckIn(context.Background(), CheckInRequest{})
	require.Equal(t, 0, gen.calls)
	require.Equal(t, StatusFallback, res.Status)
	require.Equal(t, "API key not found", res.Error())
	require.Equal(t, "Unable to perform analysis", res.Fields[FieldSummary])
	require.Equal(t, "Medium", res.RiskLevel())
	require.Equal(t, []string{CodeMissingCredential}, res.Notes)
}

func TestAnalyzeCheckInGeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("HTTP 503")}
	svc := newTestService(gen, "key")

	res := svc.AnalyzeCheckIn(context.Background(), CheckInRequest{})
	require.Equal(t, StatusFallback, res.Status)
	require.Equal(t, "AI analysis failed", res.Error())
	require.Equal(t, "Medium", res.RiskLevel())
	require.Equal(t, "Analysis completed but summary not available.", res.Fields[FieldSummary])
	require.Equal(t, []string{CodeExternalUnavailable}, res.Notes)
}

func TestAnalyzeCheckInMalformedReply(t *testing.T) {
	gen := &stubGenerator{reply: "I think things are fine overall."}
	svc := newTestService(gen, "key")

	res := svc.AnalyzeCheckIn(context.Background(), CheckInRequest{})
	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, "I think things are fine overall.", res.Fields[FieldSummary])
	require.Equal(t, "Medium", res.RiskLevel())
	require.Equal(t, CodeMalformedResponse, res.Notes[0])
	require.Empty(t, res.Error())
}

func TestAnalyzeDailySummary(t *testing.T) {
	gen := &stubGenerator{reply: `{"summary":"Reflective","mood_indicators":"calm","patterns":"","insights":"rest helps","suggestions":"journal"}`}
	svc := newTestService(gen, "key")

	res := svc.AnalyzeDailySummary(context.Background(), DailySummaryRequest{
		DailySummary: "Quiet day at home.",
		Context:      &SummaryContext{IsEdit: true, TimeOfDay: "evening"},
	})
	require.Equal(t, StatusRepaired, res.Status)
	require.Equal(t, "Reflective", res.Fields[FieldSummary])
	require.Equal(t, "Unable to identify specific patterns", res.Fields[FieldPatterns])
	require.Contains(t, gen.prompts[0], "edited an earlier version")
	require.Contains(t, gen.prompts[0], "Written in the evening.")
}

func TestAnalyzeDailySummaryRejectsBlankText(t *testing.T) {
	gen := &stubGenerator{}
	svc := newTestService(gen, "key")

	res := svc.AnalyzeDailySummary(context.Background(), DailySummaryRequest{DailySummary: "  "})
	require.Equal(t, 0, gen.calls)
	require.Contains(t, res.Error(), "invalid input")
	require.Equal(t, "Not available", res.Fields[FieldMoodIndicators])
}

func TestAnalyzePeriodOverwritesTrends(t *testing.T) {
	gen := &stubGenerator{reply: `{"summary":"Good week","trends":"Up","insights":"i","recommendations":"r","riskLevel":"Low","moodTrend":"Declining"}`}
	svc := newTestService(gen, "key")

	records := make([]CheckInRecord, 0, 6)
	for _, mood := range []int{3, 4, 4, 5, 6, 7} {
		records = append(records, CheckInRecord{CreatedAt: "2024-04-25T09:00:00Z", Answers: Answers{MoodLevel: intPtr(mood)}})
	}
	res := svc.AnalyzePeriod(context.Background(), PeriodRequest{Assessments: records})

	require.Equal(t, StatusOK, res.Status)
	require.Equal(t, "Improving", res.Fields[FieldMoodTrend])
	require.Equal(t, "Stable", res.Fields[FieldStressTrend])
	require.Equal(t, "Low", res.RiskLevel())
	require.Contains(t, gen.prompts[0], "Total assessments: 6")
	require.Contains(t, gen.prompts[0], "Day 1 (2024-04-25)")
	require.InDelta(t, 60*time.Second, gen.deadline, float64(time.Second))
}

func TestAnalyzePeriodUnavailable(t *testing.T) {
	gen := &stubGenerator{err: context.DeadlineExceeded}
	svc := newTestService(gen, "key")

	res := svc.AnalyzePeriod(context.Background(), PeriodRequest{Period: PeriodMonthly})
	require.Equal(t, StatusFallback, res.Status)
	require.Equal(t, "AI analysis failed", res.Error())
	require.Equal(t, "Monthly analysis completed with limited functionality", res.Fields[FieldSummary])
	require.Equal(t, "Basic trend analysis: Mood Insufficient data, Stress Insufficient data", res.Fields[FieldTrends])
	require.Equal(t, "Insufficient data", res.Fields[FieldEnergyTrend])
	require.Equal(t, "Medium", res.RiskLevel())
}

func TestAnalyzePeriodMissingCredential(t *testing.T) {
	svc := newTestService(&stubGenerator{}, "")
	res := svc.AnalyzePeriod(context.Background(), PeriodRequest{})
	require.Equal(t, "API key not found", res.Error())
	require.Equal(t, "Unknown", res.Fields[FieldMoodTrend])
	require.Equal(t, "Medium", res.RiskLevel())
}

func TestAnalyzePeriodRejectsUnknownPeriod(t *testing.T) {
	gen := &stubGenerator{}
	svc := newTestService(gen, "key")
	res := svc.AnalyzePeriod(context.Background(), PeriodRequest{Period: "yearly"})
	require.Equal(t, 0, gen.calls)
	require.Contains(t, res.Error(), "period must be weekly or monthly")
}

func TestAssessRisk(t *testing.T) {
	gen := &stubGenerator{reply: "Clear signs of crisis and self-harm thoughts."}
	svc := newTestService(gen, "key")

	res := svc.AssessRisk(context.Background(), RiskRequest{Text: "Output from today", Context: []string{"earlier analysis"}})
	require.Equal(t, StatusOK, res.Status)
	require.Equal(t, "High", res.RiskLevel())
	require.Equal(t, "Clear signs of crisis and self-harm thoughts.", res.Fields[FieldNarrative])
	require.Equal(t, Advisory(RiskHigh), res.Fields[FieldAdvisory])
	require.Equal(t, "risk-keywords/v1", res.Fields[FieldRulesVersion])
	require.Contains(t, gen.prompts[0], "Prior output 1:\nearlier analysis")

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(data), `"speciality":"Crisis Intervention"`)
}

func TestAssessRiskWithoutCredentialClassifiesInput(t *testing.T) {
	gen := &stubGenerator{}
	svc := newTestService(gen, "")

	res := svc.AssessRisk(context.Background(), RiskRequest{Text: "ongoing anxiety, panic and stress"})
	require.Equal(t, 0, gen.calls)
	require.Equal(t, StatusFallback, res.Status)
	require.Equal(t, "Medium", res.RiskLevel())
	require.Equal(t, "API key not found", res.Error())
	require.Equal(t, []string{CodeMissingCredential}, res.Notes)
}

func TestAssessRiskDegradedNeverLow(t *testing.T) {
	tests := []struct {
		name  string
		gen   *stubGenerator
		key   string
		error string
	}{
		{name: "generator failure", gen: &stubGenerator{err: errors.New("boom")}, key: "key", error: "AI analysis failed"},
		{name: "missing credential", gen: &stubGenerator{}, key: "", error: "API key not found"},
		{name: "empty reply", gen: &stubGenerator{reply: "  "}, key: "key"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(tc.gen, tc.key)

			res := svc.AssessRisk(context.Background(), RiskRequest{Text: "calm and rested"})
			require.NotEqual(t, StatusOK, res.Status)
			require.Equal(t, "calm and rested", res.Fields[FieldNarrative])
			require.Equal(t, "Medium", res.RiskLevel())
			require.Equal(t, Advisory(RiskMedium), res.Fields[FieldAdvisory])
			require.Equal(t, svc.classifier.Recommend(RiskMedium, "calm and rested"), res.Fields[FieldSpecialists])
			require.Equal(t, tc.error, res.Error())
		})
	}
}

func TestAssessRiskDegradedKeepsHigh(t *testing.T) {
	svc := newTestService(&stubGenerator{err: errors.New("boom")}, "key")

	res := svc.AssessRisk(context.Background(), RiskRequest{Text: "thoughts of suicide and self-harm"})
	require.Equal(t, StatusFallback, res.Status)
	require.Equal(t, "High", res.RiskLevel())
	require.Equal(t, Advisory(RiskHigh), res.Fields[FieldAdvisory])
}

func TestInvalidInputResultShape(t *testing.T) {
	res := InvalidInputResult(KindPeriod, errors.New("bad json"))
	require.Equal(t, "invalid input: bad json", res.Error())
	require.Equal(t, "Analysis failed", res.Fields[FieldSummary])
	require.Equal(t, "Medium", res.RiskLevel())
	require.NotEmpty(t, res.Fields[FieldTimestamp])
}
