package analytics

import (
	"fmt"
	"time"

	"github.com/metalhealth/checkin-insights/pkg/util"
)

const professionalAdvice = "Please consider speaking with a mental health professional for personalized advice."

func checkInSchema() Schema {
	return Schema{
		Required:     []string{FieldSummary, FieldRiskLevel, FieldRecommendations},
		SummaryField: FieldSummary,
		Defaults: Record{
			FieldSummary:         "Analysis completed but summary not available.",
			FieldRiskLevel:       string(RiskMedium),
			FieldRecommendations: professionalAdvice,
		},
	}
}

func dailySummarySchema() Schema {
	return Schema{
		Required:     []string{FieldSummary, FieldMoodIndicators, FieldPatterns, FieldInsights, FieldSuggestions},
		SummaryField: FieldSummary,
		Defaults: Record{
			FieldSummary:        "Analysis completed but summary not available.",
			FieldMoodIndicators: "Analysis completed but format unclear",
			FieldPatterns:       "Unable to identify specific patterns",
			FieldInsights:       professionalAdvice,
			FieldSuggestions:    "Continue journaling to track your thoughts and feelings.",
		},
	}
}

func periodSchema(period Period) Schema {
	return Schema{
		Required:     []string{FieldSummary, FieldTrends, FieldInsights, FieldRecommendations, FieldRiskLevel},
		SummaryField: FieldSummary,
		Defaults: Record{
			FieldSummary:         fmt.Sprintf("Analysis completed for the %s.", period.Noun()),
			FieldTrends:          "Trend analysis completed.",
			FieldInsights:        "Please continue monitoring your mental health.",
			FieldRecommendations: "Continue taking daily assessments.",
			FieldRiskLevel:       string(RiskMedium),
		},
	}
}

// periodUnavailable is the content used when the generator could not be reached.
func periodUnavailable(period Period, trends Trends) Record {
	return Record{
		FieldSummary:         fmt.Sprintf("%s analysis completed with limited functionality", period.Title()),
		FieldTrends:          fmt.Sprintf("Basic trend analysis: Mood %s, Stress %s", trends.Mood, trends.Stress),
		FieldInsights:        "AI analysis unavailable - using basic statistical analysis",
		FieldRecommendations: "Continue taking daily assessments and consider consulting a mental health professional",
		FieldRiskLevel:       string(RiskMedium),
	}
}

// shortCircuit returns the fixed record for a kind that never reached the
// generator. The error message is stored verbatim in the error field.
func shortCircuit(kind Kind, message, summary string, now time.Time) Record {
	rec := Record{
		FieldError:     message,
		FieldSummary:   summary,
		FieldTimestamp: now.Format(time.RFC3339),
	}
	switch kind {
	case KindDailySummary:
		rec[FieldMoodIndicators] = "Not available"
		rec[FieldPatterns] = "Not available"
		rec[FieldInsights] = "Please contact a mental health professional"
		rec[FieldSuggestions] = "Please try again later"
	case KindPeriod:
		rec[FieldTrends] = "Analysis unavailable"
		rec[FieldInsights] = "Please contact a mental health professional"
		rec[FieldRecommendations] = "Please try again later"
		rec[FieldRiskLevel] = string(RiskMedium)
		UniformTrends(TrendUnknown).apply(rec)
	case KindRisk:
		rec[FieldRiskLevel] = string(RiskMedium)
		rec[FieldAdvisory] = Advisory(RiskMedium)
	default:
		rec[FieldRiskLevel] = string(RiskMedium)
		rec[FieldRecommendations] = "Please contact a mental health professional"
	}
	return rec
}

// InvalidInputResult is the fixed result for a request that could not be
// decoded or validated.
func InvalidInputResult(kind Kind, err error) Result {
	message := "invalid input"
	if err != nil {
		message = "invalid input: " + err.Error()
	}
	return Result{
		Kind:   kind,
		Status: StatusFallback,
		Notes:  []string{CodeInvalidInput},
		Fields: shortCircuit(kind, message, "Analysis failed", util.NowUTC()),
	}
}
