package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpointTemplate is the public generateContent endpoint.
const DefaultEndpointTemplate = "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent?key={api_key}"

// ErrMissingKey is returned when no API key is available at call time.
var ErrMissingKey = errors.New("gemini api key not configured")

// KeySource resolves the API key for each call.
type KeySource interface {
	APIKey() (string, bool)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content json.RawMessage `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent API.
type Client struct {
	endpointTemplate string
	model            string
	keys             KeySource
	httpClient       *http.Client
}

// NewClient constructs a Gemini client. An empty template selects the public endpoint.
func NewClient(endpointTemplate, model string, keys KeySource) *Client {
	if strings.TrimSpace(endpointTemplate) == "" {
		endpointTemplate = DefaultEndpointTemplate
	}
	return &Client{
		endpointTemplate: endpointTemplate,
		model:            model,
		keys:             keys,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Generate posts prompt and returns the joined candidate text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	key, ok := c.keys.APIKey()
	if !ok {
		return "", ErrMissingKey
	}
	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(key), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request gemini: %w", redact(err, key))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("gemini request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	return extractText(out), nil
}

func (c *Client) endpoint(key string) string {
	return strings.NewReplacer(
		"{model}", url.PathEscape(c.model),
		"{api_key}", url.QueryEscape(key),
	).Replace(c.endpointTemplate)
}

// extractText joins the non-empty text parts of every candidate. Content may
// be an object with parts or a bare string.
func extractText(resp generateResponse) string {
	var texts []string
	for _, cand := range resp.Candidates {
		raw := bytes.TrimSpace(cand.Content)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '"':
			var s string
			if json.Unmarshal(raw, &s) == nil {
				texts = appendNonEmpty(texts, s)
			}
		case '{':
			var c struct {
				Parts []struct {
					Text *string `json:"text"`
				} `json:"parts"`
			}
			if json.Unmarshal(raw, &c) != nil {
				continue
			}
			for _, p := range c.Parts {
				if p.Text != nil {
					texts = appendNonEmpty(texts, *p.Text)
				}
			}
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

func appendNonEmpty(texts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		return append(texts, s)
	}
	return texts
}

// redact strips the key from transport errors, which embed the request URL.
func redact(err error, key string) error {
	if key == "" {
		return err
	}
	msg := err.Error()
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	msg = strings.ReplaceAll(msg, key, "REDACTED")
	return errors.New(msg)
}
