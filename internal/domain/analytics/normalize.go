package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/metalhealth/checkin-insights/pkg/util"
)

// Schema describes the shape a generator reply must be coerced into.
type Schema struct {
	// Required lists the fields that must be present and non-empty.
	Required []string
	// Defaults supplies the substitute for every required field.
	Defaults Record
	// SummaryField receives the raw excerpt when the reply cannot be parsed.
	SummaryField string
}

func (s Schema) requires(field string) bool {
	for _, f := range s.Required {
		if f == field {
			return true
		}
	}
	return false
}

// Outcome is the tagged result of normalization.
type Outcome struct {
	Status Status
	Record Record
	Notes  []string
}

// Normalizer coerces free-form generator text into a Schema.
type Normalizer struct {
	excerptLimit int
	now          func() time.Time
}

// NewNormalizer builds a normalizer that truncates excerpts to excerptLimit runes.
func NewNormalizer(excerptLimit int) *Normalizer {
	return &Normalizer{excerptLimit: excerptLimit, now: util.NowUTC}
}

// Normalize parses raw and repairs it against schema. It never fails; an
// unparseable reply yields StatusFailed with every field defaulted.
func (n *Normalizer) Normalize(raw string, schema Schema) Outcome {
	cleaned := StripFences(raw)
	parsed, err := decodeObject(cleaned)
	if err != nil {
		out := n.Fallback(cleaned, schema)
		out.Notes = append(out.Notes, fmt.Sprintf("reply not parseable: %v", err))
		return out
	}

	rec := parsed.clone()
	var notes []string
	for _, field := range schema.Required {
		value, ok := rec[field]
		switch {
		case !ok || isEmpty(value):
			rec[field] = schema.Defaults[field]
			notes = append(notes, fmt.Sprintf("%s missing, default applied", field))
		case field == FieldRiskLevel:
			str, _ := value.(string)
			if _, valid := ParseRiskLevel(str); !valid {
				rec[field] = schema.Defaults[field]
				notes = append(notes, fmt.Sprintf("riskLevel %v invalid, default applied", value))
			}
		}
	}
	rec[FieldTimestamp] = n.timestamp()

	status := StatusOK
	if len(notes) > 0 {
		status = StatusRepaired
	}
	return Outcome{Status: status, Record: rec, Notes: notes}
}

// Fallback builds the failed outcome: the summary carries an excerpt of text
// (or its default when text is blank) and every other field is defaulted.
func (n *Normalizer) Fallback(text string, schema Schema) Outcome {
	rec := make(Record, len(schema.Required)+1)
	for _, field := range schema.Required {
		rec[field] = schema.Defaults[field]
	}
	if excerpt := n.excerpt(text); excerpt != "" && schema.requires(schema.SummaryField) {
		rec[schema.SummaryField] = excerpt
	}
	rec[FieldTimestamp] = n.timestamp()
	return Outcome{Status: StatusFailed, Record: rec}
}

func (n *Normalizer) timestamp() string {
	return n.now().Format(time.RFC3339)
}

func (n *Normalizer) excerpt(raw string) string {
	return truncate(strings.TrimSpace(raw), n.excerptLimit)
}

// StripFences removes a leading ```json or ``` marker and a trailing ```.
func StripFences(raw string) string {
	sanitized := strings.TrimSpace(raw)
	if strings.HasPrefix(sanitized, "```json") {
		sanitized = strings.TrimPrefix(sanitized, "```json")
	} else {
		sanitized = strings.TrimPrefix(sanitized, "```")
	}
	sanitized = strings.TrimSuffix(strings.TrimSpace(sanitized), "```")
	return strings.TrimSpace(sanitized)
}

func decodeObject(text string) (Record, error) {
	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("expected JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("expected JSON object")
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing content after JSON object")
	}
	return rec, nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case bool:
		return !v
	case float64:
		return v == 0
	default:
		return false
	}
}

func truncate(input string, limit int) string {
	if limit <= 0 {
		return input
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
