// Package websearch provides a rate-limited client for a Jina-style web
// search API. Dispatch is paced process-wide so concurrent product research
// never exceeds the provider's request spacing.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNoAPIKey is returned by NewClient when no credentials are configured.
// It is fatal: without a key no research can run at all.
var ErrNoAPIKey = eris.New("websearch: api key not configured")

// ErrExhausted marks a query abandoned after the retry ceiling; the last
// failure is carried in the message. Callers treat it as "no results for
// this query" and move on.
var ErrExhausted = eris.New("websearch: retries exhausted")

// Hit is one search result.
type Hit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Client performs web searches.
type Client interface {
	Search(ctx context.Context, query string) ([]Hit, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the search endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithMinInterval sets the minimum spacing between dispatched searches.
func WithMinInterval(d time.Duration) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithMaxAttempts sets the retry ceiling for rate-limited responses.
func WithMaxAttempts(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff overrides the 429 backoff schedule (for testing).
func WithBackoff(base, max time.Duration) Option {
	return func(c *httpClient) {
		c.baseBackoff = base
		c.maxBackoff = max
	}
}

type httpClient struct {
	apiKey      string
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// NewClient creates a search client. Fails with ErrNoAPIKey when the key is
// empty. Defaults: 1s spacing, 10s request timeout, 5 attempts with
// exponential backoff starting at 2s on HTTP 429.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://s.jina.ai",
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		maxAttempts: 5,
		baseBackoff: 2 * time.Second,
		maxBackoff:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// searchResponse is the provider's wire format.
type searchResponse struct {
	Code int `json:"code"`
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"data"`
}

// Search issues one query, blocking until the process-wide spacing elapses.
// HTTP 429 backs off exponentially up to the attempt ceiling; other HTTP
// failures are not retried.
func (c *httpClient) Search(ctx context.Context, query string) ([]Hit, error) {
	backoff := c.baseBackoff
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "websearch: pacing wait")
		}

		hits, retryable, err := c.doSearch(ctx, query)
		if err == nil {
			return hits, nil
		}
		if !retryable {
			// Not a rate limit: no retry happened, so no exhaustion label.
			return nil, err
		}
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}

		zap.L().Warn("websearch: rate limited, backing off",
			zap.String("query", query),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}

	return nil, eris.Wrapf(ErrExhausted, "after %d attempts: %v", c.maxAttempts, lastErr)
}

func (c *httpClient) doSearch(ctx context.Context, query string) (hits []Hit, retryable bool, err error) {
	reqURL := fmt.Sprintf("%s/?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, eris.Wrap(err, "websearch: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and transport errors count as failed, not hung.
		return nil, true, eris.Wrap(err, "websearch: request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, eris.Wrap(err, "websearch: read body")
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, eris.Errorf("websearch: rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, eris.Errorf("websearch: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, eris.Wrap(err, "websearch: decode response")
	}

	for _, d := range parsed.Data {
		snippet := d.Description
		if snippet == "" {
			snippet = truncate(d.Content, 500)
		}
		hits = append(hits, Hit{URL: d.URL, Title: d.Title, Snippet: snippet})
	}
	return hits, false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
