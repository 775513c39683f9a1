package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyLevels(t *testing.T) {
	c := NewClassifier(DefaultRuleTable())

	require.Equal(t, RiskHigh, c.Classify("Signs of SUICIDE ideation and an acute crisis."))
	require.Equal(t, RiskMedium, c.Classify("Reports anxiety, panic attacks and mood swings."))
	require.Equal(t, RiskMedium, c.Classify("An urgent follow-up is advised."))
	require.Equal(t, RiskLow, c.Classify("Slept well and enjoyed a walk."))
	require.Equal(t, RiskLow, c.Classify(""))
}

func TestClassifyCountsDistinctKeywords(t *testing.T) {
	c := NewClassifier(DefaultRuleTable())
	require.Equal(t, RiskMedium, c.Classify("crisis crisis crisis"))
	require.Equal(t, 1, c.Hits("crisis crisis")[KeywordSetHigh])
}

func TestClassifyMonotonicInHighHits(t *testing.T) {
	c := NewClassifier(DefaultRuleTable())
	rank := map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}
	keywords := DefaultRuleTable().KeywordSets[KeywordSetHigh]

	text := "feeling tired"
	prev := c.Classify(text)
	for _, kw := range keywords {
		text += " " + kw
		next := c.Classify(text)
		require.GreaterOrEqual(t, rank[next], rank[prev], "adding %q lowered the level", kw)
		prev = next
	}
	require.Equal(t, RiskHigh, prev)
}

func TestRecommendHigh(t *testing.T) {
	c := NewClassifier(DefaultRuleTable())
	assessment := c.Assess("suicide risk and crisis")
	require.Equal(t, RiskHigh, assessment.Level)
	require.Equal(t, []string{"Crisis Intervention", "Psychiatry"}, specialities(assessment.Recommendations))
}

func TestRecommendMediumTopics(t *testing.T) {
	c := NewClassifier(DefaultRuleTable())

	recs := c.Recommend(RiskMedium, "Stress at work, family tension and drinking alcohol")
	require.Equal(t, []string{"Clinical Psychology", "Addiction Psychiatry"}, specialities(recs))

	recs = c.Recommend(RiskMedium, "nothing in particular")
	require.Equal(t, []string{"Clinical Psychology", "Psychiatry"}, specialities(recs))
	require.Equal(t, "General mental health support and therapy", recs[0].Reason)
}

func TestRecommendLow(t *testing.T) {
	c := NewClassifier(DefaultRuleTable())
	recs := c.Recommend(RiskLow, "anything")
	require.Equal(t, []string{"Clinical Psychology", "General Medicine"}, specialities(recs))
}

func TestRecommendDoesNotShareTable(t *testing.T) {
	table := DefaultRuleTable()
	c := NewClassifier(table)
	recs := c.Recommend(RiskHigh, "")
	recs[0].Speciality = "changed"
	require.Equal(t, "Crisis Intervention", c.Recommend(RiskHigh, "")[0].Speciality)
}

func TestAdvisory(t *testing.T) {
	require.True(t, strings.HasPrefix(Advisory(RiskHigh), "URGENT"))
	require.Contains(t, Advisory(RiskMedium), "within the next week")
	require.Contains(t, Advisory(RiskLow), "Preventive")
}

func specialities(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Speciality)
	}
	return out
}
