// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for the external collaborators of the collection pipeline

package interfaces

import (
	"context"

	"blogforge-app-api/core/domain"
)

// SearchProvider performs web searches against an external search API.
// Implementations are expected to be safe for concurrent use.
type SearchProvider interface {
	// Search runs one query and returns up to maxResults organic results
	// for the given two-letter country code.
	Search(ctx context.Context, query string, country string, maxResults int) ([]domain.SearchResult, error)
}

// PageScraper fetches a web page and extracts its readable article content.
type PageScraper interface {
	// Scrape downloads and extracts the page at url. The returned page
	// carries the article text (markdown) used as LLM context.
	Scrape(ctx context.Context, url string) (*domain.ScrapedPage, error)
}

// ChatRequest is a single prompt exchange sent to an LLM provider.
type ChatRequest struct {
	// System is the system prompt, may be empty.
	System string

	// User is the user prompt.
	User string

	// Temperature controls sampling randomness (0 uses the provider default).
	Temperature float64

	// MaxTokens bounds the completion length (0 uses the provider default).
	MaxTokens int
}

// ChatClient performs chat completions against an LLM provider.
type ChatClient interface {
	// ChatCompletion runs one completion and returns the raw model output.
	ChatCompletion(ctx context.Context, req ChatRequest) (string, error)
}
