package analytics

// TrendLabel classifies the direction of a series.
type TrendLabel string

const (
	TrendImproving    TrendLabel = "Improving"
	TrendDeclining    TrendLabel = "Declining"
	TrendStable       TrendLabel = "Stable"
	TrendNoChange     TrendLabel = "No change"
	TrendInsufficient TrendLabel = "Insufficient data"
	TrendUnknown      TrendLabel = "Unknown"
)

// trendThreshold is the slope magnitude, in units per sample, below which a
// series counts as stable. It is applied to every metric regardless of scale.
const trendThreshold = 0.1

// Defaults substituted for missing numeric answers.
const (
	DefaultMood   = 5
	DefaultStress = 5
	DefaultSleep  = 8.0
	DefaultEnergy = 3
)

var energyScale = map[string]int{
	"Very low":  1,
	"Low":       2,
	"Moderate":  3,
	"High":      4,
	"Very high": 5,
}

// EnergyScore maps an energy label onto 1..5, defaulting to Moderate.
func EnergyScore(label string) int {
	if v, ok := energyScale[label]; ok {
		return v
	}
	return DefaultEnergy
}

// Trend fits a least-squares line through values against their index and
// labels its slope. A rising stress series is labelled Improving too; callers
// interpret direction per metric.
func Trend(values []float64) TrendLabel {
	n := len(values)
	if n < 2 {
		return TrendInsufficient
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return TrendNoChange
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	switch {
	case slope > trendThreshold:
		return TrendImproving
	case slope < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Trends holds the four per-metric labels.
type Trends struct {
	Mood   TrendLabel `json:"moodTrend"`
	Stress TrendLabel `json:"stressTrend"`
	Sleep  TrendLabel `json:"sleepTrend"`
	Energy TrendLabel `json:"energyTrend"`
}

// UniformTrends sets every metric to the same label.
func UniformTrends(label TrendLabel) Trends {
	return Trends{Mood: label, Stress: label, Sleep: label, Energy: label}
}

// apply overwrites the trend fields of rec.
func (t Trends) apply(rec Record) {
	rec[FieldMoodTrend] = string(t.Mood)
	rec[FieldStressTrend] = string(t.Stress)
	rec[FieldSleepTrend] = string(t.Sleep)
	rec[FieldEnergyTrend] = string(t.Energy)
}

// Series extracts the metric series of records, substituting defaults for
// missing answers.
type Series struct {
	Mood   []float64
	Stress []float64
	Sleep  []float64
	Energy []float64
}

// ExtractSeries builds per-metric series in record order.
func ExtractSeries(records []CheckInRecord) Series {
	s := Series{
		Mood:   make([]float64, 0, len(records)),
		Stress: make([]float64, 0, len(records)),
		Sleep:  make([]float64, 0, len(records)),
		Energy: make([]float64, 0, len(records)),
	}
	for _, rec := range records {
		a := rec.Answers
		s.Mood = append(s.Mood, float64(intOr(a.MoodLevel, DefaultMood)))
		s.Stress = append(s.Stress, float64(intOr(a.StressLevel, DefaultStress)))
		s.Sleep = append(s.Sleep, floatOr(a.SleepHours, DefaultSleep))
		s.Energy = append(s.Energy, float64(EnergyScore(a.EnergyLevel)))
	}
	return s
}

// ComputeTrends labels all four metrics of records.
func ComputeTrends(records []CheckInRecord) Trends {
	if len(records) < 2 {
		return UniformTrends(TrendInsufficient)
	}
	s := ExtractSeries(records)
	return Trends{
		Mood:   Trend(s.Mood),
		Stress: Trend(s.Stress),
		Sleep:  Trend(s.Sleep),
		Energy: Trend(s.Energy),
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
