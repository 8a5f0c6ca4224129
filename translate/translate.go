// Package translate is a client for the Rapid Translate Multi Traduction API
// on RapidAPI.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pevans/opinionscraper/config"
)

// NotConfigured is shown instead of a translation when no API credentials
// are set.
const NotConfigured = "[Translation not configured]"

// DefaultTimeout bounds a single translation request.
const DefaultTimeout = 15 * time.Second

// ErrNotConfigured is returned when no RapidAPI key or host is set.
var ErrNotConfigured = errors.New("translation API credentials not set")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client translates text through RapidAPI.
type Client struct {
	creds    config.RapidAPI
	endpoint string
	http     *http.Client
	logger   *log.Logger
}

// Options configures a Client. Zero values use the defaults.
type Options struct {
	HTTPClient *http.Client
	// Endpoint overrides https://<host>/t.
	Endpoint string
	Logger   *log.Logger
}

// NewClient creates a client for creds. A client without credentials is
// valid; every translation then reports NotConfigured.
func NewClient(creds config.RapidAPI, opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	endpoint := opts.Endpoint
	if endpoint == "" && creds.Host != "" {
		endpoint = "https://" + creds.Host + "/t"
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		creds:    creds,
		endpoint: endpoint,
		http:     client,
		logger:   logger,
	}
}

type request struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Q    []string `json:"q"`
}

// Translate translates text from one language to another. It always returns
// something printable: on failure the string is a bracketed placeholder and
// err says what went wrong. A response in an unknown shape yields text
// unchanged with a nil error.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	if !c.creds.Configured() {
		c.logger.Warn("RAPID_API_KEY and RAPID_API_HOST not set, skipping translation")
		return NotConfigured, ErrNotConfigured
	}

	translated, err := c.translate(ctx, text, from, to)
	if err != nil {
		c.logger.Error("translation failed", "err", truncate(err.Error(), 100))
		return Placeholder(err), err
	}
	return translated, nil
}

func (c *Client) translate(ctx context.Context, text, from, to string) (string, error) {
	payload, err := json.Marshal(request{From: from, To: to, Q: []string{text}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", c.creds.Key)
	req.Header.Set("x-rapidapi-host", c.creds.Host)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translation API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 100)}
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if translated, ok := extract(result); ok {
		return translated, nil
	}
	return text, nil
}

// Placeholder renders err as the text shown in place of a translation.
func Placeholder(err error) string {
	if errors.Is(err, ErrNotConfigured) {
		return NotConfigured
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("[Translation failed: HTTP %d]", statusErr.StatusCode)
	}
	return fmt.Sprintf("[Translation failed: %s]", truncate(err.Error(), 50))
}

// extract pulls the first translation out of any of the response shapes the
// API has been seen to return:
//
//	["text"]
//	[{"translatedText": "text"}] or [{"translated": "text"}]
//	{"translatedText": "text" | ["text"]}
//	{"translated": "text" | ["text"]}
//	{"translations": [{"text": "text"} | {"translatedText": "text"}]}
func extract(result any) (string, bool) {
	switch v := result.(type) {
	case []any:
		if len(v) == 0 {
			return "", false
		}
		switch first := v[0].(type) {
		case string:
			return first, true
		case map[string]any:
			return firstString(first, "translatedText", "translated")
		}

	case map[string]any:
		for _, key := range []string{"translatedText", "translated"} {
			if value, ok := v[key]; ok {
				return stringOrFirst(value)
			}
		}
		if list, ok := v["translations"].([]any); ok && len(list) > 0 {
			if first, ok := list[0].(map[string]any); ok {
				return firstString(first, "text", "translatedText")
			}
		}
	}

	return "", false
}

func firstString(m map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

func stringOrFirst(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []any:
		if len(v) > 0 {
			s, ok := v[0].(string)
			return s, ok
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
