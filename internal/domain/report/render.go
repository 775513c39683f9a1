package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
)

var (
	heavyRule = strings.Repeat("=", 60)
	lightRule = strings.Repeat("-", 40)
)

// Render builds the plain text history report for check-in reports, which
// are expected newest first.
func Render(userID int64, reports []Report, now time.Time) string {
	ordered := make([]Report, len(reports))
	for i, rep := range reports {
		ordered[len(reports)-1-i] = rep
	}
	records := make([]analytics.CheckInRecord, 0, len(ordered))
	for _, rep := range ordered {
		records = append(records, analytics.CheckInRecord{
			CreatedAt:  rep.CreatedAt.Format(time.RFC3339),
			Answers:    answersOf(rep),
			AIAnalysis: analytics.PriorAnalysis{RiskLevel: rep.RiskLevel},
		})
	}
	stats := analytics.Aggregate(records)

	var sb strings.Builder
	sb.WriteString("MENTAL HEALTH ASSESSMENT REPORT\n")
	fmt.Fprintf(&sb, "Generated on: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "User ID: %d\n", userID)
	fmt.Fprintf(&sb, "Total Assessments: %d\n\n", stats.TotalAssessments)

	section(&sb, "SUMMARY STATISTICS")
	fmt.Fprintf(&sb, "Average Stress Level: %s/10\n", floatOrNA(stats.AverageStress))
	fmt.Fprintf(&sb, "Average Mood Level: %s/10\n", floatOrNA(stats.AverageMood))
	fmt.Fprintf(&sb, "Average Sleep Hours: %s hours\n\n", floatOrNA(stats.AverageSleep))
	sb.WriteString("Risk Level Distribution:\n")
	for _, level := range []analytics.RiskLevel{analytics.RiskLow, analytics.RiskMedium, analytics.RiskHigh} {
		fmt.Fprintf(&sb, "- %s Risk: %d assessments\n", level, stats.RiskDistribution[string(level)])
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Most Common Mood: %s\n", mostCommon(records, func(a analytics.Answers) string { return a.Mood }))
	fmt.Fprintf(&sb, "Most Common Anxiety Frequency: %s\n", mostCommon(records, func(a analytics.Answers) string { return a.AnxietyFrequency }))
	fmt.Fprintf(&sb, "Most Common Overwhelmed Frequency: %s\n\n", mostCommon(records, func(a analytics.Answers) string { return a.OverwhelmedFrequency }))

	section(&sb, "DETAILED ASSESSMENT HISTORY")
	for i, rep := range ordered {
		a := answersOf(rep)
		fields := payloadFields(rep.Payload)
		fmt.Fprintf(&sb, "Assessment #%d - %s at %s\n%s\n\n", i+1, rep.CreatedAt.Format("2006-01-02"), rep.CreatedAt.Format("15:04:05"), lightRule)
		fmt.Fprintf(&sb, "Mood: %s\n", orNotSpecified(a.Mood))
		fmt.Fprintf(&sb, "Stress Level: %s/10\n", intOrNA(a.StressLevel))
		fmt.Fprintf(&sb, "Mood Level: %s/10\n", intOrNA(a.MoodLevel))
		fmt.Fprintf(&sb, "Sleep Hours: %s\n", sleepOrNA(a.SleepHours))
		fmt.Fprintf(&sb, "Anxiety Frequency: %s\n", orNotSpecified(a.AnxietyFrequency))
		fmt.Fprintf(&sb, "Overwhelmed Frequency: %s\n", orNotSpecified(a.OverwhelmedFrequency))
		fmt.Fprintf(&sb, "Common Feeling: %s\n\n", orNotSpecified(a.CommonFeeling))
		sb.WriteString("AI Analysis:\n")
		fmt.Fprintf(&sb, "- Risk Level: %s\n", orNotSpecified(rep.RiskLevel))
		fmt.Fprintf(&sb, "- Summary: %s\n", orNotSpecified(textField(fields[analytics.FieldSummary])))
		fmt.Fprintf(&sb, "- Recommendations: %s\n\n", orNotSpecified(textField(fields[analytics.FieldRecommendations])))
		sb.WriteString(heavyRule + "\n\n")
	}

	section(&sb, "RECOMMENDATIONS")
	sb.WriteString(`Based on your assessment history, here are some general recommendations:

1. Monitor your stress levels regularly and practice stress management techniques
2. Maintain consistent sleep patterns for better mental health
3. Consider seeking professional help if you notice persistent high-risk assessments
4. Track your mood patterns to identify triggers and positive influences
5. Practice self-care and mindfulness techniques

This report is for informational purposes only and should not replace professional medical advice.
If you have concerns about your mental health, please consult with a qualified healthcare provider.
`)
	return sb.String()
}

func section(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, "%s\n%s\n%s\n\n", heavyRule, title, heavyRule)
}

func answersOf(rep Report) analytics.Answers {
	if rep.Answers == nil {
		return analytics.Answers{}
	}
	return *rep.Answers
}

func payloadFields(payload json.RawMessage) analytics.Record {
	var rec analytics.Record
	if len(payload) == 0 || json.Unmarshal(payload, &rec) != nil {
		return analytics.Record{}
	}
	return rec
}

// textField flattens a string or list of strings.
func textField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// mostCommon returns the most frequent non-empty value. On a tie the value
// that reached the count first wins.
func mostCommon(records []analytics.CheckInRecord, pick func(analytics.Answers) string) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, rec := range records {
		v := pick(rec.Answers)
		if v == "" {
			continue
		}
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return orNotSpecified(best)
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not specified"
	}
	return v
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *v)
}

func intOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}

func sleepOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}
