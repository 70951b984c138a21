// Package apify provides a client for running Apify actors synchronously
// and typed helpers for the three actors the pipeline depends on: batch
// web search, website-content crawling, and company-profile scraping.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.apify.com/v2"

// ErrMissingToken is returned when the client has no API token configured.
// Callers treat it as a provider outage: the affected stage degrades to an
// empty result set instead of failing the run.
var ErrMissingToken = eris.New("apify: missing API token")

// Client runs Apify actors and returns their dataset items.
type Client interface {
	// RunActorSync starts an actor run, waits for it to finish, and
	// returns the default dataset items as raw JSON objects.
	RunActorSync(ctx context.Context, actorID string, input any) ([]map[string]any, error)
}

// APIError is returned when Apify responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apify: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Apify client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			// Actor runs block until completion; crawls can take minutes.
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) RunActorSync(ctx context.Context, actorID string, input any) ([]map[string]any, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal actor input")
	}

	endpoint := c.baseURL + "/acts/" + url.PathEscape(actorID) + "/run-sync-get-dataset-items?token=" + url.QueryEscape(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "apify: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "apify: run actor %s", actorID)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apify: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var items []map[string]any
	if err := json.Unmarshal(respBody, &items); err != nil {
		return nil, eris.Wrapf(err, "apify: unmarshal dataset items for %s", actorID)
	}

	return items, nil
}

// stringField returns the first non-empty string value among keys.
func stringField(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// intField returns the first numeric value among keys, truncated to int.
func intField(item map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := item[k].(type) {
		case float64:
			return int(v)
		case int:
			return v
		}
	}
	return 0
}
