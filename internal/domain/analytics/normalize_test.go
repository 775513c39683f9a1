package analytics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	n := NewNormalizer(200)
	n.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return n
}

func TestNormalizeFencedPartialReply(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize("```json\n{\"summary\":\"ok\"}\n```", checkInSchema())

	require.Equal(t, StatusRepaired, out.Status)
	require.Equal(t, "ok", out.Record[FieldSummary])
	require.Equal(t, "Medium", out.Record[FieldRiskLevel])
	require.Equal(t, professionalAdvice, out.Record[FieldRecommendations])
	require.Equal(t, "2024-05-01T12:00:00Z", out.Record[FieldTimestamp])
	require.Len(t, out.Notes, 2)
}

func TestNormalizeValidReplyIsOK(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(`{"summary":"Calm week","riskLevel":"Low","recommendations":"Keep walking","extra":1}`, checkInSchema())

	require.Equal(t, StatusOK, out.Status)
	require.Empty(t, out.Notes)
	require.Equal(t, "Low", out.Record[FieldRiskLevel])
	require.EqualValues(t, 1, out.Record["extra"])
}

func TestNormalizeInvalidRiskLevel(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(`{"summary":"s","riskLevel":"Severe","recommendations":"r"}`, checkInSchema())
	require.Equal(t, StatusRepaired, out.Status)
	require.Equal(t, "Medium", out.Record[FieldRiskLevel])

	out = n.Normalize(`{"summary":"s","riskLevel":3,"recommendations":"r"}`, checkInSchema())
	require.Equal(t, "Medium", out.Record[FieldRiskLevel])
}

func TestNormalizeUnparseableReply(t *testing.T) {
	n := newTestNormalizer()
	raw := "The person seems fine. " + strings.Repeat("é", 300)
	out := n.Normalize(raw, dailySummarySchema())

	require.Equal(t, StatusFailed, out.Status)
	summary := out.Record[FieldSummary].(string)
	require.Equal(t, 200, len([]rune(summary)))
	require.True(t, strings.HasPrefix(summary, "The person seems fine."))
	require.Equal(t, "Analysis completed but format unclear", out.Record[FieldMoodIndicators])
	require.Equal(t, "Unable to identify specific patterns", out.Record[FieldPatterns])
	require.Equal(t, "Continue journaling to track your thoughts and feelings.", out.Record[FieldSuggestions])
	require.NotEmpty(t, out.Record[FieldTimestamp])
}

func TestNormalizeFencedMalformedReplyExcerptsInnerText(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize("```json\n{\"summary\": \"Feeling low, \n```", checkInSchema())

	require.Equal(t, StatusFailed, out.Status)
	summary := out.Record[FieldSummary].(string)
	require.NotContains(t, summary, "```")
	require.True(t, strings.HasPrefix(summary, `{"summary": "Feeling low,`))
}

func TestNormalizeNonObjectJSON(t *testing.T) {
	n := newTestNormalizer()
	for _, raw := range []string{"null", "[1,2]", `"text"`, "42", ""} {
		out := n.Normalize(raw, checkInSchema())
		require.Equal(t, StatusFailed, out.Status, raw)
		require.Equal(t, "Medium", out.Record[FieldRiskLevel], raw)
	}
}

func TestNormalizeEmptyReplyUsesDefaultSummary(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize("   ", checkInSchema())
	require.Equal(t, "Analysis completed but summary not available.", out.Record[FieldSummary])
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newTestNormalizer()
	schema := periodSchema(PeriodWeekly)
	first := n.Normalize(`{"summary":"","trends":"up","insights":["a"],"riskLevel":"High"}`, schema)

	data, err := json.Marshal(first.Record)
	require.NoError(t, err)
	second := n.Normalize(string(data), schema)

	require.Equal(t, StatusOK, second.Status)
	require.Equal(t, first.Record, second.Record)
}

func TestStripFences(t *testing.T) {
	require.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}```"))
	require.Equal(t, `{"a":1}`, StripFences(`  {"a":1}  `))
}
