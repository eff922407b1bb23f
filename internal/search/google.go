// Package search wraps the Google Custom Search JSON API for the research
// capability. One query fetches a single result and returns its snippet.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// Client queries Google Custom Search.
type Client struct {
	apiKey     string
	engineID   string
	endpoint   string
	httpClient *http.Client
}

// Config holds search client configuration.
type Config struct {
	APIKey   string
	EngineID string
	Endpoint string
	Timeout  time.Duration
}

// NewClient creates a search client. Timeout defaults to 5s, matching the
// conservative per-call budget for the research pipeline.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

// Snippet searches for the topic and returns the first result's snippet.
// No-result and no-snippet outcomes are not errors: they return a
// descriptive placeholder so the research pipeline can proceed.
func (c *Client) Snippet(ctx context.Context, topic string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("search: missing Google API credentials")
	}

	params := url.Values{}
	params.Set("q", topic)
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("num", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("search: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("search: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search: HTTP %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("search: parse response: %w", err)
	}

	if len(parsed.Items) == 0 {
		return "No results found.", nil
	}
	snippet := strings.TrimSpace(parsed.Items[0].Snippet)
	if snippet == "" {
		return "No snippet available.", nil
	}
	return snippet, nil
}
