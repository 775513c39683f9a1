package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	require.True(t, stats.Empty())
	require.Equal(t, 0, stats.TotalAssessments)
	require.Nil(t, stats.AverageMood)
	require.Empty(t, stats.MoodRange)
	require.Empty(t, stats.RiskDistribution)
}

func TestAggregateWindow(t *testing.T) {
	records := []CheckInRecord{
		{Answers: Answers{MoodLevel: intPtr(4), StressLevel: intPtr(7), SleepHours: floatPtr(6.5)}, AIAnalysis: PriorAnalysis{RiskLevel: "High"}},
		{Answers: Answers{MoodLevel: intPtr(6), StressLevel: intPtr(5), SleepHours: floatPtr(7)}, AIAnalysis: PriorAnalysis{RiskLevel: "Low"}},
		{Answers: Answers{MoodLevel: intPtr(7)}},
	}

	stats := Aggregate(records)
	require.Equal(t, 3, stats.TotalAssessments)
	require.InDelta(t, 5.7, *stats.AverageMood, 1e-9)
	require.InDelta(t, 5.7, *stats.AverageStress, 1e-9)
	require.InDelta(t, 7.2, *stats.AverageSleep, 1e-9)
	require.Equal(t, "4-7", stats.MoodRange)
	require.Equal(t, "5-7", stats.StressRange)
	require.Equal(t, "6.5-8.0", stats.SleepRange)
	require.Equal(t, map[string]int{"High": 1, "Low": 1, "Medium": 1}, stats.RiskDistribution)
}

func TestAggregateDistributionSumsToTotal(t *testing.T) {
	levels := []string{"Low", "", "High", "Medium", "Low", "unexpected"}
	records := make([]CheckInRecord, 0, len(levels))
	for _, level := range levels {
		records = append(records, CheckInRecord{AIAnalysis: PriorAnalysis{RiskLevel: level}})
	}

	stats := Aggregate(records)
	sum := 0
	for _, n := range stats.RiskDistribution {
		sum += n
	}
	require.Equal(t, stats.TotalAssessments, sum)
	require.Equal(t, 1, stats.RiskDistribution["unexpected"])
}
