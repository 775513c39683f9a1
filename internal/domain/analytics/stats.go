package analytics

import (
	"fmt"
	"math"
)

// Statistics summarizes a window of check-ins. All fields except
// TotalAssessments are omitted for an empty window.
type Statistics struct {
	AverageMood      *float64       `json:"averageMood,omitempty"`
	AverageStress    *float64       `json:"averageStress,omitempty"`
	AverageSleep     *float64       `json:"averageSleep,omitempty"`
	MoodRange        string         `json:"moodRange,omitempty"`
	StressRange      string         `json:"stressRange,omitempty"`
	SleepRange       string         `json:"sleepRange,omitempty"`
	RiskDistribution map[string]int `json:"riskDistribution,omitempty"`
	TotalAssessments int            `json:"totalAssessments"`
}

// Empty reports whether the statistics describe no records.
func (s Statistics) Empty() bool {
	return s.TotalAssessments == 0
}

// Aggregate computes summary statistics over records.
func Aggregate(records []CheckInRecord) Statistics {
	if len(records) == 0 {
		return Statistics{}
	}
	series := ExtractSeries(records)
	dist := make(map[string]int)
	for _, rec := range records {
		level := rec.AIAnalysis.RiskLevel
		if level == "" {
			level = string(RiskMedium)
		}
		dist[level]++
	}

	avgMood := round1(mean(series.Mood))
	avgStress := round1(mean(series.Stress))
	avgSleep := round1(mean(series.Sleep))
	moodMin, moodMax := bounds(series.Mood)
	stressMin, stressMax := bounds(series.Stress)
	sleepMin, sleepMax := bounds(series.Sleep)

	return Statistics{
		AverageMood:      &avgMood,
		AverageStress:    &avgStress,
		AverageSleep:     &avgSleep,
		MoodRange:        fmt.Sprintf("%d-%d", int(moodMin), int(moodMax)),
		StressRange:      fmt.Sprintf("%d-%d", int(stressMin), int(stressMax)),
		SleepRange:       fmt.Sprintf("%.1f-%.1f", sleepMin, sleepMax),
		RiskDistribution: dist,
		TotalAssessments: len(records),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
