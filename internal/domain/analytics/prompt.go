package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PeriodPromptInput is everything the period prompt is assembled from.
type PeriodPromptInput struct {
	Request PeriodRequest
	Stats   Statistics
	Trends  Trends
}

// PromptBuilder turns analysis inputs into a single text request.
type PromptBuilder interface {
	CheckIn(req CheckInRequest) string
	DailySummary(req DailySummaryRequest) string
	Period(in PeriodPromptInput) string
	Risk(req RiskRequest) string
}

type promptBuilder struct {
	maxAssessments int
	maxSummaries   int
}

// NewPromptBuilder returns the default prompt builder.
func NewPromptBuilder(cfg Config) PromptBuilder {
	cfg = cfg.withDefaults()
	return &promptBuilder{
		maxAssessments: cfg.MaxPromptAssessments,
		maxSummaries:   cfg.MaxPromptSummaries,
	}
}

const jsonOnly = "Respond ONLY with a single valid JSON object using exactly the keys shown. Do not wrap it in markdown and do not add text outside the object."

const riskCriteria = `Risk levels:
- High: suicidal ideation, self-harm, psychosis, substance abuse, crisis, severe functional impairment.
- Medium: persistent anxiety, moderate depression, sleep disturbance, social withdrawal, stress overload.
- Low: mild symptoms, stable mood, adequate sleep, manageable stress, good coping.`

func (b *promptBuilder) CheckIn(req CheckInRequest) string {
	a := req.Answers
	var sb strings.Builder
	sb.WriteString("You are a clinical psychologist reviewing one person's daily mental health check-in. ")
	sb.WriteString("Interpret the data clinically instead of restating it, and do not quote scores back to the person.\n\n")
	fmt.Fprintf(&sb, "Gender: %s\n\n", orNotSpecified(req.UserGender))
	sb.WriteString("Check-in:\n")
	fmt.Fprintf(&sb, "- Mood today: %s\n", orNotSpecified(a.Mood))
	fmt.Fprintf(&sb, "- Mood level (1-10): %s %s\n", intText(a.MoodLevel), moodBand(a.MoodLevel))
	fmt.Fprintf(&sb, "- Stress level (1-10): %s %s\n", intText(a.StressLevel), stressBand(a.StressLevel))
	fmt.Fprintf(&sb, "- Sleep hours: %s %s\n", floatText(a.SleepHours), sleepBand(a.SleepHours))
	fmt.Fprintf(&sb, "- Sleep quality: %s\n", orNotSpecified(a.SleepQuality))
	fmt.Fprintf(&sb, "- Anxiety: %s\n", orNotSpecified(a.AnxietyFrequency))
	fmt.Fprintf(&sb, "- Energy: %s\n", orNotSpecified(a.EnergyLevel))
	fmt.Fprintf(&sb, "- Overwhelm: %s\n", orNotSpecified(a.OverwhelmedFrequency))
	fmt.Fprintf(&sb, "- Social connection: %s\n", orNotSpecified(a.SocialConnection))
	fmt.Fprintf(&sb, "- Daily functioning: %s\n\n", orNotSpecified(a.DailyFunctioning))
	if text := strings.TrimSpace(req.DailySummary); text != "" {
		fmt.Fprintf(&sb, "Personal reflection written today:\n%q\nUse it to pick up themes and warning signs the structured answers miss.\n\n", text)
	}
	sb.WriteString(riskCriteria)
	sb.WriteString("\n\nOutput shape:\n")
	sb.WriteString(`{"summary": "3-4 sentence clinical assessment", "riskLevel": "Low|Medium|High", "recommendations": "4-6 evidence-based recommendations"}`)
	sb.WriteString("\n\n")
	sb.WriteString(jsonOnly)
	return sb.String()
}

func (b *promptBuilder) DailySummary(req DailySummaryRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a clinical psychologist trained in journal analysis. ")
	sb.WriteString("Read the daily summary below and describe the writer's emotional state, patterns and well-being.\n\n")
	if ctx := req.Context; ctx != nil {
		sb.WriteString("Context:\n")
		if ctx.IsSynthetic {
			sb.WriteString("- The summary was generated from structured check-in answers.\n")
		} else {
			sb.WriteString("- The summary was written by the user.\n")
		}
		if ctx.IsEdit {
			sb.WriteString("- The user edited an earlier version of this summary.\n")
		}
		if ctx.TimeOfDay != "" {
			fmt.Fprintf(&sb, "- Written in the %s.\n", ctx.TimeOfDay)
		}
		if ctx.HasPreviousAnalysis {
			sb.WriteString("- This summary was analyzed before; focus on what changed.\n")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Gender: %s\n\n", orNotSpecified(req.UserGender))
	fmt.Fprintf(&sb, "Daily summary:\n%q\n\n", strings.TrimSpace(req.DailySummary))
	sb.WriteString("Output shape:\n")
	sb.WriteString(`{"summary": "2-3 sentence analysis", "mood_indicators": "emotional indicators found", "patterns": "recurring patterns", "insights": "clinical insights", "suggestions": "practical suggestions"}`)
	sb.WriteString("\n\n")
	sb.WriteString(jsonOnly)
	return sb.String()
}

func (b *promptBuilder) Period(in PeriodPromptInput) string {
	req := in.Request
	period := req.Period
	stats := in.Stats
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a clinical psychologist analysing one %s of mental health check-ins. ", period.Noun())
	sb.WriteString("Describe trajectories, correlations and areas of concern, and give actionable recommendations.\n\n")
	fmt.Fprintf(&sb, "Gender: %s\n\n", orNotSpecified(req.UserGender))

	sb.WriteString("Statistics:\n")
	fmt.Fprintf(&sb, "- Total assessments: %d\n", stats.TotalAssessments)
	fmt.Fprintf(&sb, "- Average mood: %s/10\n", optFloat(stats.AverageMood))
	fmt.Fprintf(&sb, "- Average stress: %s/10\n", optFloat(stats.AverageStress))
	fmt.Fprintf(&sb, "- Average sleep: %s hours\n", optFloat(stats.AverageSleep))
	fmt.Fprintf(&sb, "- Mood range: %s\n", orNA(stats.MoodRange))
	fmt.Fprintf(&sb, "- Stress range: %s\n", orNA(stats.StressRange))
	fmt.Fprintf(&sb, "- Sleep range: %s hours\n", orNA(stats.SleepRange))
	fmt.Fprintf(&sb, "- Risk distribution: %s\n\n", distributionText(stats.RiskDistribution))

	sb.WriteString("Computed trends:\n")
	fmt.Fprintf(&sb, "- Mood: %s\n- Stress: %s\n- Sleep: %s\n- Energy: %s\n\n", in.Trends.Mood, in.Trends.Stress, in.Trends.Sleep, in.Trends.Energy)

	if len(req.Assessments) > 0 {
		sb.WriteString("Daily check-ins:\n")
		for i, rec := range limit(req.Assessments, b.maxAssessments) {
			a := rec.Answers
			fmt.Fprintf(&sb, "Day %d (%s): mood %s (%s/10), stress %s/10, sleep %s h (%s), energy %s, anxiety %s, overwhelm %s, social %s, functioning %s, risk %s\n",
				i+1, rec.Date(), orNA(a.Mood), intText(a.MoodLevel), intText(a.StressLevel), floatText(a.SleepHours), orNA(a.SleepQuality),
				orNA(a.EnergyLevel), orNA(a.AnxietyFrequency), orNA(a.OverwhelmedFrequency), orNA(a.SocialConnection), orNA(a.DailyFunctioning),
				orUnknown(rec.AIAnalysis.RiskLevel))
		}
		sb.WriteString("\n")
	}
	if len(req.Summaries) > 0 {
		fmt.Fprintf(&sb, "Daily summaries (%d entries):\n", len(req.Summaries))
		for _, s := range limit(req.Summaries, b.maxSummaries) {
			fmt.Fprintf(&sb, "%s: %s\n", orUnknown(s.Date), strings.TrimSpace(s.Text))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Overall risk: Low when assessments are mostly low risk with stable or improving trends, High when mostly high risk with declining trends, Medium otherwise.\n\n")
	sb.WriteString("Output shape:\n")
	fmt.Fprintf(&sb, `{"summary": "4-5 sentence %s summary", "trends": "3-4 sentences on mood, stress, sleep and energy", "insights": "clinical insights", "recommendations": "actionable recommendations", "riskLevel": "Low|Medium|High"}`, period.Noun())
	sb.WriteString("\n\n")
	sb.WriteString(jsonOnly)
	return sb.String()
}

func (b *promptBuilder) Risk(req RiskRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a clinical psychologist performing a risk assessment from the analyses below. ")
	sb.WriteString("Weigh immediate risk factors against protective factors and state clearly if crisis intervention is needed.\n\n")
	for i, part := range req.Context {
		if strings.TrimSpace(part) == "" {
			continue
		}
		fmt.Fprintf(&sb, "Prior output %d:\n%s\n\n", i+1, strings.TrimSpace(part))
	}
	fmt.Fprintf(&sb, "Material to assess:\n%s\n\n", strings.TrimSpace(req.Text))
	sb.WriteString(riskCriteria)
	sb.WriteString("\n\nReply in plain prose covering current state, risk factors, protective factors and recommended next steps.")
	return sb.String()
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not specified"
	}
	return v
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Unknown"
	}
	return v
}

func intText(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}

func floatText(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func moodBand(v *int) string {
	switch {
	case v == nil:
		return ""
	case *v >= 7:
		return "(positive)"
	case *v >= 4:
		return "(neutral)"
	default:
		return "(low)"
	}
}

func stressBand(v *int) string {
	switch {
	case v == nil:
		return ""
	case *v >= 8:
		return "(high)"
	case *v >= 5:
		return "(moderate)"
	default:
		return "(low)"
	}
}

func sleepBand(v *float64) string {
	switch {
	case v == nil:
		return ""
	case *v >= 7 && *v <= 9:
		return "(adequate)"
	case *v < 6 || *v > 10:
		return "(concerning)"
	default:
		return "(borderline)"
	}
}

func distributionText(dist map[string]int) string {
	if len(dist) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, dist[k]))
	}
	return strings.Join(parts, ", ")
}
