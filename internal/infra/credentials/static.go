package credentials

import "strings"

// Static serves an API key captured at start-up.
type Static struct {
	key string
}

// NewStatic cleans raw of surrounding whitespace and quotes, as copied from
// .env files.
func NewStatic(raw string) Static {
	key := strings.TrimSpace(raw)
	key = strings.Trim(key, `"'`)
	return Static{key: strings.TrimSpace(key)}
}

// APIKey returns the key and whether one is configured.
func (s Static) APIKey() (string, bool) {
	return s.key, s.key != ""
}
