// ABOUTME: Article scraper built on go-readability with a goquery fallback
// ABOUTME: Fetches pages through the shared HTTP client and emits markdown content

package readability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
	"blogforge-app-api/core/interfaces"
)

// maxBodyBytes bounds how much of a page is read before extraction.
const maxBodyBytes = 2 << 20

// Scraper implements interfaces.PageScraper.
type Scraper struct {
	httpClient interfaces.HTTPClient
	cache      interfaces.Cache
	logger     interfaces.Logger
	limiter    *rate.Limiter
	timeout    time.Duration
	converter  *md.Converter
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithTimeout bounds a single scrape.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRateLimit bounds outbound fetches per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Scraper) {
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewScraper creates a scraper. cache may be nil to disable caching.
func NewScraper(httpClient interfaces.HTTPClient, cache interfaces.Cache, logger interfaces.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		httpClient: httpClient,
		cache:      cache,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(20), 20),
		timeout:    20 * time.Second,
		converter:  md.NewConverter("", true, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape downloads the page and extracts its readable article content.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*domain.ScrapedPage, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "invalid URL format"}
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey(pageURL)); err == nil && data != nil {
			var page domain.ScrapedPage
			if err := json.Unmarshal(data, &page); err == nil {
				return &page, nil
			}
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.httpClient.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("scrape: fetch %s: %w", pageURL, err)
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    "page fetch failed",
			API:        "scraper",
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body(), maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("scrape: read %s: %w", pageURL, err)
	}

	page := s.extract(body, parsed)
	if page.Markdown == "" {
		return nil, fmt.Errorf("scrape: no readable content at %s", pageURL)
	}

	if s.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			_ = s.cache.Set(ctx, cacheKey(pageURL), data, time.Hour)
		}
	}

	return page, nil
}

// extract runs readability over the body and converts the article to
// markdown. When readability finds no title, the raw document title is
// used instead.
func (s *Scraper) extract(body []byte, pageURL *url.URL) *domain.ScrapedPage {
	page := &domain.ScrapedPage{URL: pageURL.String()}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		page.Title = article.Title
		page.SiteName = article.SiteName
		page.Excerpt = article.Excerpt

		if article.Content != "" {
			if markdown, err := s.converter.ConvertString(article.Content); err == nil {
				page.Markdown = strings.TrimSpace(markdown)
			}
		}
		if page.Markdown == "" {
			page.Markdown = strings.TrimSpace(article.TextContent)
		}
	} else {
		s.logger.Debug("Readability extraction failed", map[string]interface{}{
			"url":   pageURL.String(),
			"error": err.Error(),
		})
	}

	if page.Title == "" || page.Excerpt == "" {
		s.fillFromDocument(body, page)
	}

	return page
}

// fillFromDocument recovers title and description straight from the HTML.
func (s *Scraper) fillFromDocument(body []byte, page *domain.ScrapedPage) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return
	}

	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if page.Excerpt == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			page.Excerpt = strings.TrimSpace(desc)
		}
	}
}

func cacheKey(pageURL string) string {
	return "scrape:" + pageURL
}

var _ interfaces.PageScraper = (*Scraper)(nil)
