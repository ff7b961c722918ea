// ABOUTME: Hand-rolled mocks for the collection pipeline's collaborators
// ABOUTME: Shared by the collector, stream, aggregator and committer tests

package sources

import (
	"context"
	"fmt"
	"sync"

	"blogforge-app-api/core/domain"
	"blogforge-app-api/core/interfaces"
)

// noopLogger satisfies interfaces.Logger and discards everything.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields map[string]interface{}) {}
func (noopLogger) Info(msg string, fields map[string]interface{})  {}
func (noopLogger) Warn(msg string, fields map[string]interface{})  {}
func (noopLogger) Error(msg string, fields map[string]interface{}) {}

func testDeps() interfaces.Dependencies {
	return interfaces.Dependencies{Logger: noopLogger{}}
}

// mockSearch returns canned results per query, or an error for queries in
// the fail set.
type mockSearch struct {
	mu      sync.Mutex
	results map[string][]domain.SearchResult
	fail    map[string]bool
	calls   []string
}

func (m *mockSearch) Search(ctx context.Context, query, country string, maxResults int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()

	if m.fail[query] {
		return nil, fmt.Errorf("search unavailable")
	}
	return m.results[query], nil
}

// mockScraper returns a page per URL; URLs in the fail set error out.
type mockScraper struct {
	mu    sync.Mutex
	pages map[string]*domain.ScrapedPage
	fail  map[string]bool
	calls []string
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*domain.ScrapedPage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()

	if m.fail[url] {
		return nil, fmt.Errorf("scrape failed")
	}
	if page, ok := m.pages[url]; ok {
		return page, nil
	}
	return &domain.ScrapedPage{URL: url, Title: "Page " + url, Markdown: "content of " + url}, nil
}

// mockChat replays scripted responses in call order. When the script runs
// out it keeps returning the last response.
type mockChat struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []interfaces.ChatRequest
}

func (m *mockChat) ChatCompletion(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.calls)
	m.calls = append(m.calls, req)

	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("no scripted response")
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

// mockBlogStore records commits.
type mockBlogStore struct {
	mu        sync.Mutex
	commits   []domain.SourcesCommit
	commitErr error
}

func (m *mockBlogStore) FetchBlogDocument(ctx context.Context, blogID, projectID, userID string, fields []string) (*domain.BlogDocument, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBlogStore) CommitSourcesRun(ctx context.Context, blogID string, commit domain.SourcesCommit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits = append(m.commits, commit)
	return nil
}

func (m *mockBlogStore) AppendSourcesRecord(ctx context.Context, blogID string, record domain.SourcesRecord) error {
	return fmt.Errorf("not implemented")
}

// collectSink records sent events and can be told to fail after N sends.
type collectSink struct {
	events    []domain.StreamEvent
	failAfter int // -1 disables failing
}

func newCollectSink() *collectSink {
	return &collectSink{failAfter: -1}
}

func (s *collectSink) Send(ev domain.StreamEvent) error {
	if s.failAfter >= 0 && len(s.events) >= s.failAfter {
		return fmt.Errorf("client gone")
	}
	s.events = append(s.events, ev)
	return nil
}

// mustOutline builds a canonical outline from section titles. Each entry is
// "heading:sub1,sub2"; an entry with no subs becomes a direct heading.
func mustOutline(sections ...[2]interface{}) *domain.Outline {
	o := &domain.Outline{}
	for i, section := range sections {
		heading := domain.OutlineHeading{
			ID:    fmt.Sprintf("h%d", i),
			Title: section[0].(string),
			Order: i + 1,
		}
		subs := section[1].([]string)
		for j, sub := range subs {
			heading.Subsections = append(heading.Subsections, domain.OutlineSubsection{
				ID:    fmt.Sprintf("h%d-s%d", i, j),
				Title: sub,
				Order: j + 1,
			})
		}
		if len(subs) == 0 {
			heading.Direct = true
			heading.Subsections = []domain.OutlineSubsection{{
				ID:    fmt.Sprintf("h%d-direct", i),
				Title: heading.Title,
				Order: 1,
			}}
		}
		o.Headings = append(o.Headings, heading)
	}
	return o
}
