package analytics

import (
	"encoding/json"
	"strings"

	"github.com/metalhealth/checkin-insights/pkg/metrics"
)

// Kind identifies which analysis flow produced a result.
type Kind string

const (
	KindCheckIn      Kind = "checkin"
	KindDailySummary Kind = "daily_summary"
	KindPeriod       Kind = "period"
	KindRisk         Kind = "risk"
)

// RiskLevel is the discrete severity attached to an analysis.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel accepts only the exact enumerated spellings.
func ParseRiskLevel(value string) (RiskLevel, bool) {
	switch RiskLevel(value) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(value), true
	default:
		return "", false
	}
}

// Period selects the window of a longitudinal analysis.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Noun returns "week" or "month".
func (p Period) Noun() string {
	if p == PeriodMonthly {
		return "month"
	}
	return "week"
}

// Title returns the capitalized period name.
func (p Period) Title() string {
	if p == PeriodMonthly {
		return "Monthly"
	}
	return "Weekly"
}

// Answers holds one day of structured check-in answers. Numeric answers are
// optional so that a missing value is never confused with zero.
type Answers struct {
	Mood                 string   `json:"mood,omitempty"`
	MoodLevel            *int     `json:"moodLevel,omitempty" binding:"omitempty,min=1,max=10"`
	StressLevel          *int     `json:"stressLevel,omitempty" binding:"omitempty,min=1,max=10"`
	SleepHours           *float64 `json:"sleepHours,omitempty" binding:"omitempty,min=0,max=24"`
	SleepQuality         string   `json:"sleepQuality,omitempty"`
	AnxietyFrequency     string   `json:"anxietyFrequency,omitempty"`
	EnergyLevel          string   `json:"energyLevel,omitempty"`
	OverwhelmedFrequency string   `json:"overwhelmedFrequency,omitempty"`
	SocialConnection     string   `json:"socialConnection,omitempty"`
	DailyFunctioning     string   `json:"dailyFunctioning,omitempty"`
	CommonFeeling        string   `json:"commonFeeling,omitempty"`
}

// PriorAnalysis is the subset of an earlier analysis carried on a record.
type PriorAnalysis struct {
	RiskLevel string `json:"riskLevel,omitempty"`
}

// CheckInRecord is one stored daily check-in supplied by the caller.
type CheckInRecord struct {
	CreatedAt  string        `json:"createdAt,omitempty"`
	Answers    Answers       `json:"answers"`
	AIAnalysis PriorAnalysis `json:"aiAnalysis"`
}

// Date returns the calendar part of CreatedAt.
func (r CheckInRecord) Date() string {
	if r.CreatedAt == "" {
		return "Unknown date"
	}
	date, _, _ := strings.Cut(r.CreatedAt, "T")
	return date
}

// DailySummary is the optional free-text companion of a check-in.
type DailySummary struct {
	Date        string `json:"date,omitempty"`
	Text        string `json:"summary"`
	IsSynthetic bool   `json:"isSynthetic,omitempty"`
	IsEdit      bool   `json:"isEdit,omitempty"`
}

// SummaryContext describes how a daily summary was produced.
type SummaryContext struct {
	IsSynthetic         bool   `json:"isSynthetic"`
	IsEdit              bool   `json:"isEdit"`
	TimeOfDay           string `json:"timeOfDay,omitempty"`
	HasPreviousAnalysis bool   `json:"hasPreviousAnalysis"`
}

// CheckInRequest is the single-day analysis payload.
type CheckInRequest struct {
	Answers      Answers `json:"answers"`
	DailySummary string  `json:"dailySummary,omitempty"`
	UserGender   string  `json:"userGender,omitempty"`
}

// DailySummaryRequest is the journal analysis payload.
type DailySummaryRequest struct {
	DailySummary string          `json:"dailySummary" binding:"required"`
	Context      *SummaryContext `json:"context,omitempty"`
	UserGender   string          `json:"userGender,omitempty"`
}

// PeriodRequest is the weekly/monthly analysis payload. Assessments are
// expected in chronological order.
type PeriodRequest struct {
	Assessments []CheckInRecord `json:"assessments" binding:"dive"`
	Summaries   []DailySummary  `json:"summaries"`
	Period      Period          `json:"period,omitempty" binding:"omitempty,oneof=weekly monthly"`
	UserGender  string          `json:"userGender,omitempty"`
}

// RiskRequest asks for a narrative risk assessment of prior outputs.
type RiskRequest struct {
	Text    string   `json:"text" binding:"required"`
	Context []string `json:"context,omitempty"`
}

// Recommendation names a specialist and why they are suggested.
type Recommendation struct {
	Speciality string `json:"speciality"`
	Reason     string `json:"reason"`
}

// RiskAssessment couples a level with its specialist recommendations.
type RiskAssessment struct {
	Level           RiskLevel        `json:"level"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Record is a loosely typed structured object produced by the generator.
type Record map[string]any

// String returns the field as a string, or "" when absent or not a string.
func (r Record) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Status reports how a result was obtained.
type Status string

const (
	// StatusOK means the generator reply parsed and validated cleanly.
	StatusOK Status = "ok"
	// StatusRepaired means defaults were substituted for some fields.
	StatusRepaired Status = "repaired"
	// StatusFailed means the reply could not be parsed at all.
	StatusFailed Status = "failed"
	// StatusFallback means the pipeline ended in its error state.
	StatusFallback Status = "fallback"
)

// Result is the merged analysis handed back to callers. Only Fields are
// serialized; the rest is metadata for logging and archiving.
type Result struct {
	Kind   Kind
	Status Status
	Notes  []string
	Usage  metrics.TokenUsage
	Fields Record
}

// MarshalJSON emits the result fields as a flat object.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(r.Fields))
}

// RiskLevel returns the result's risk level field.
func (r Result) RiskLevel() string {
	return r.Fields.String(FieldRiskLevel)
}

// Error returns the error field, empty when the analysis was not short-circuited.
func (r Result) Error() string {
	return r.Fields.String(FieldError)
}

// Degraded reports whether any local fallback content was used.
func (r Result) Degraded() bool {
	return r.Status != StatusOK
}

// Field names shared by the result shapes.
const (
	FieldSummary         = "summary"
	FieldRiskLevel       = "riskLevel"
	FieldRecommendations = "recommendations"
	FieldTimestamp       = "timestamp"
	FieldError           = "error"
	FieldTrends          = "trends"
	FieldInsights        = "insights"
	FieldMoodIndicators  = "mood_indicators"
	FieldPatterns        = "patterns"
	FieldSuggestions     = "suggestions"
	FieldMoodTrend       = "moodTrend"
	FieldStressTrend     = "stressTrend"
	FieldSleepTrend      = "sleepTrend"
	FieldEnergyTrend     = "energyTrend"
	FieldNarrative       = "narrative"
	FieldSpecialists     = "specialists"
	FieldAdvisory        = "advisory"
	FieldRulesVersion    = "rulesVersion"
)
