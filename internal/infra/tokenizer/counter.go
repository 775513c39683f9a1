package tokenizer

import (
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates prompt and completion token usage.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New loads encoding. When the encoding cannot be loaded (for example when
// the BPE ranks cannot be downloaded) the counter falls back to word counts.
func New(encoding string, logger *slog.Logger) *Counter {
	if strings.TrimSpace(encoding) == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.Warn("token encoding unavailable, counting words", "encoding", encoding, "error", err)
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.enc == nil {
		return len(strings.Fields(text))
	}
	return len(c.enc.Encode(text, nil, nil))
}
