package analytics

import "strings"

// Keyword set names used by the default rule table.
const (
	KeywordSetHigh   = "high"
	KeywordSetMedium = "medium"
)

// Condition is satisfied when at least MinHits distinct keywords of Set occur.
type Condition struct {
	Set     string
	MinHits int
}

// RiskRule assigns Level when any of its conditions holds.
type RiskRule struct {
	Level      RiskLevel
	Conditions []Condition
}

// TopicRule maps a group of keywords to a specialist.
type TopicRule struct {
	Keywords       []string
	Recommendation Recommendation
}

// RecommendationTable lists the specialists proposed for each level.
type RecommendationTable struct {
	High           []Recommendation
	MediumTopics   []TopicRule
	MediumFallback []Recommendation
	MediumLimit    int
	Low            []Recommendation
}

// RuleTable is a versioned keyword policy. Rules are evaluated in order and
// the first match wins; Fallback applies when none match.
type RuleTable struct {
	Version         string
	KeywordSets     map[string][]string
	Rules           []RiskRule
	Fallback        RiskLevel
	Recommendations RecommendationTable
}

// DefaultRuleTable returns the built-in risk policy.
func DefaultRuleTable() RuleTable {
	return RuleTable{
		Version: "risk-keywords/v1",
		KeywordSets: map[string][]string{
			KeywordSetHigh: {
				"suicide", "self-harm", "severe depression", "crisis", "emergency",
				"immediate help", "urgent", "dangerous", "harmful", "extreme",
				"psychotic", "delusional", "hallucination", "manic episode",
				"substance abuse", "addiction", "overdose", "withdrawal",
			},
			KeywordSetMedium: {
				"moderate", "concerning", "worrying", "persistent", "chronic",
				"anxiety", "panic", "stress", "mood swings", "irritability",
				"sleep problems", "appetite changes", "social withdrawal",
			},
		},
		Rules: []RiskRule{
			{Level: RiskHigh, Conditions: []Condition{{Set: KeywordSetHigh, MinHits: 2}}},
			{Level: RiskMedium, Conditions: []Condition{
				{Set: KeywordSetMedium, MinHits: 3},
				{Set: KeywordSetHigh, MinHits: 1},
			}},
		},
		Fallback: RiskLow,
		Recommendations: RecommendationTable{
			High: []Recommendation{
				{Speciality: "Crisis Intervention", Reason: "Immediate professional help needed for crisis situation"},
				{Speciality: "Psychiatry", Reason: "Medical evaluation and potential medication management required"},
			},
			MediumTopics: []TopicRule{
				{Keywords: []string{"anxiety", "panic", "stress"}, Recommendation: Recommendation{Speciality: "Clinical Psychology", Reason: "Specialized in anxiety disorders and stress management"}},
				{Keywords: []string{"depression", "mood", "sadness"}, Recommendation: Recommendation{Speciality: "Psychiatry", Reason: "Expert in mood disorders and depression treatment"}},
				{Keywords: []string{"trauma", "ptsd", "flashback"}, Recommendation: Recommendation{Speciality: "Trauma & PTSD Specialist", Reason: "Specialized in trauma recovery and PTSD treatment"}},
				{Keywords: []string{"addiction", "substance", "alcohol", "drug"}, Recommendation: Recommendation{Speciality: "Addiction Psychiatry", Reason: "Expert in substance use disorders and recovery"}},
				{Keywords: []string{"eating", "food", "weight", "body image"}, Recommendation: Recommendation{Speciality: "Eating Disorders", Reason: "Specialized in eating disorder treatment and recovery"}},
				{Keywords: []string{"family", "relationship", "couple", "marriage"}, Recommendation: Recommendation{Speciality: "Couples & Family Therapy", Reason: "Expert in relationship and family dynamics"}},
			},
			MediumFallback: []Recommendation{
				{Speciality: "Clinical Psychology", Reason: "General mental health support and therapy"},
				{Speciality: "Psychiatry", Reason: "Medical evaluation and treatment options"},
			},
			MediumLimit: 2,
			Low: []Recommendation{
				{Speciality: "Clinical Psychology", Reason: "Preventive mental health support and wellness"},
				{Speciality: "General Medicine", Reason: "General health checkup and lifestyle guidance"},
			},
		},
	}
}

// Classifier applies a RuleTable to free text. It holds no mutable state.
type Classifier struct {
	table RuleTable
}

// NewClassifier binds a classifier to a rule table.
func NewClassifier(table RuleTable) *Classifier {
	return &Classifier{table: table}
}

// Version reports the rule table version in use.
func (c *Classifier) Version() string {
	return c.table.Version
}

// Hits counts the distinct keywords of each set found in text.
func (c *Classifier) Hits(text string) map[string]int {
	lower := strings.ToLower(text)
	hits := make(map[string]int, len(c.table.KeywordSets))
	for name, keywords := range c.table.KeywordSets {
		hits[name] = countDistinct(lower, keywords)
	}
	return hits
}

// Classify maps text to a risk level.
func (c *Classifier) Classify(text string) RiskLevel {
	hits := c.Hits(text)
	for _, rule := range c.table.Rules {
		for _, cond := range rule.Conditions {
			if hits[cond.Set] >= cond.MinHits {
				return rule.Level
			}
		}
	}
	return c.table.Fallback
}

// Recommend lists the specialists suggested for a level given the text.
func (c *Classifier) Recommend(level RiskLevel, text string) []Recommendation {
	recs := c.table.Recommendations
	switch level {
	case RiskHigh:
		return copyRecommendations(recs.High)
	case RiskMedium:
		lower := strings.ToLower(text)
		out := make([]Recommendation, 0, len(recs.MediumTopics))
		for _, topic := range recs.MediumTopics {
			if countDistinct(lower, topic.Keywords) > 0 {
				out = append(out, topic.Recommendation)
			}
		}
		if len(out) == 0 {
			return copyRecommendations(recs.MediumFallback)
		}
		if recs.MediumLimit > 0 && len(out) > recs.MediumLimit {
			out = out[:recs.MediumLimit]
		}
		return out
	default:
		return copyRecommendations(recs.Low)
	}
}

// Assess classifies text and attaches recommendations.
func (c *Classifier) Assess(text string) RiskAssessment {
	level := c.Classify(text)
	return RiskAssessment{Level: level, Recommendations: c.Recommend(level, text)}
}

// Advisory returns the guidance sentence shown alongside a level.
func Advisory(level RiskLevel) string {
	switch level {
	case RiskHigh:
		return "URGENT: high risk detected. Please seek immediate professional help: contact a crisis helpline, visit an emergency room, book an urgent appointment with a psychiatrist, or reach out to a trusted friend or family member."
	case RiskMedium:
		return "Professional consultation recommended. Consider scheduling an appointment with a mental health professional within the next week."
	default:
		return "Preventive care recommended. Regular check-ins with mental health professionals can help maintain wellness."
	}
}

func countDistinct(lower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

func copyRecommendations(in []Recommendation) []Recommendation {
	out := make([]Recommendation, len(in))
	copy(out, in)
	return out
}
