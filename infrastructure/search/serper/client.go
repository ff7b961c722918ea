// ABOUTME: Web search provider client for a Serper-style Google search API
// ABOUTME: Caches query results and rate-limits outbound calls

package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
	"blogforge-app-api/core/interfaces"
)

const (
	defaultBaseURL = "https://google.serper.dev"
	cacheTTL       = 6 * time.Hour
)

// Client implements interfaces.SearchProvider against a Serper-style
// JSON search API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      interfaces.Cache
	logger     interfaces.Logger
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (useful for tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit bounds outbound searches per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a search client. cache may be nil to disable caching.
func NewClient(apiKey string, cache interfaces.Cache, logger interfaces.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchRequest is the API request payload.
type searchRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl,omitempty"`
	Num int    `json:"num,omitempty"`
}

// searchResponse is the subset of the API response we consume.
type searchResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic"`
}

// Search runs one query and returns up to maxResults organic results.
func (c *Client) Search(ctx context.Context, query string, country string, maxResults int) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, &coreerrors.ValidationError{Field: "query", Message: "search query cannot be empty"}
	}
	if maxResults <= 0 {
		maxResults = 2
	}

	cacheKey := fmt.Sprintf("search:%s:%d:%s", country, maxResults, query)
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var results []domain.SearchResult
			if err := json.Unmarshal(data, &results); err == nil {
				return results, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(searchRequest{Q: query, GL: country, Num: maxResults})
	if err != nil {
		return nil, fmt.Errorf("search: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("search: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode,
			Message:    string(data),
			API:        "websearch",
		}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	results := make([]domain.SearchResult, 0, maxResults)
	for i, organic := range payload.Organic {
		if i >= maxResults {
			break
		}
		position := organic.Position
		if position == 0 {
			position = i + 1
		}
		results = append(results, domain.SearchResult{
			Title:    organic.Title,
			URL:      organic.Link,
			Snippet:  organic.Snippet,
			Position: position,
		})
	}

	if c.cache != nil && len(results) > 0 {
		if data, err := json.Marshal(results); err == nil {
			_ = c.cache.Set(ctx, cacheKey, data, cacheTTL)
		}
	}

	return results, nil
}

var _ interfaces.SearchProvider = (*Client)(nil)
