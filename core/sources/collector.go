// ABOUTME: Source collector walks the outline and researches every subsection
// ABOUTME: Emits ordered stream events; per-unit failures degrade to empty results

package sources

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"blogforge-app-api/core/domain"
	"blogforge-app-api/core/interfaces"
)

// CollectorConfig holds the numeric policy knobs of a collection run.
type CollectorConfig struct {
	// QueriesPerSubsection is how many search queries are generated per unit
	QueriesPerSubsection int

	// ResultsPerQuery is how many top results are scraped per query
	ResultsPerQuery int

	// MaxSourcesPerSubsection caps the combined sources fed to extraction
	MaxSourcesPerSubsection int

	// FanOutLimit bounds concurrent search+scrape operations within a unit
	FanOutLimit int

	// UnitTimeout bounds one unit's search, scrape and extraction work
	UnitTimeout time.Duration
}

// DefaultCollectorConfig returns the production defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		QueriesPerSubsection:    5,
		ResultsPerQuery:         2,
		MaxSourcesPerSubsection: 10,
		FanOutLimit:             5,
		UnitTimeout:             90 * time.Second,
	}
}

// normalize fills zero or negative knobs with defaults.
func (c CollectorConfig) normalize() CollectorConfig {
	def := DefaultCollectorConfig()
	if c.QueriesPerSubsection <= 0 {
		c.QueriesPerSubsection = def.QueriesPerSubsection
	}
	if c.ResultsPerQuery <= 0 {
		c.ResultsPerQuery = def.ResultsPerQuery
	}
	if c.MaxSourcesPerSubsection <= 0 {
		c.MaxSourcesPerSubsection = def.MaxSourcesPerSubsection
	}
	if c.FanOutLimit <= 0 {
		c.FanOutLimit = def.FanOutLimit
	}
	if c.UnitTimeout <= 0 {
		c.UnitTimeout = def.UnitTimeout
	}
	return c
}

// Metadata returns the knobs as the persisted processing metadata.
func (c CollectorConfig) Metadata() domain.ProcessingMetadata {
	return domain.ProcessingMetadata{
		QueriesPerSubsection:    c.QueriesPerSubsection,
		ResultsPerQuery:         c.ResultsPerQuery,
		MaxSourcesPerSubsection: c.MaxSourcesPerSubsection,
	}
}

// CollectRequest is one collection run's input.
type CollectRequest struct {
	Outline        *domain.Outline
	PrimaryKeyword string
	Country        string
	BlogTitle      string
}

// Collector orchestrates search, scraping and LLM extraction for every
// processing unit of an outline.
type Collector struct {
	deps    interfaces.Dependencies
	search  interfaces.SearchProvider
	scraper interfaces.PageScraper
	chat    interfaces.ChatClient
	config  CollectorConfig
}

// NewCollector creates a collector.
func NewCollector(deps interfaces.Dependencies, search interfaces.SearchProvider, scraper interfaces.PageScraper, chat interfaces.ChatClient, config CollectorConfig) *Collector {
	return &Collector{
		deps:    deps,
		search:  search,
		scraper: scraper,
		chat:    chat,
		config:  config.normalize(),
	}
}

// Metadata returns the normalized knobs the collector runs with.
func (c *Collector) Metadata() domain.ProcessingMetadata {
	return c.config.Metadata()
}

// Collect runs the pipeline and returns the event stream. Events are
// produced lazily into a channel with capacity one, so at most one event is
// in flight beyond the consumer. The channel is closed when the run ends;
// ctx cancellation stops production without a terminal event (there is no
// one left to receive it).
func (c *Collector) Collect(ctx context.Context, req CollectRequest) <-chan domain.StreamEvent {
	events := make(chan domain.StreamEvent, 1)
	go c.run(ctx, req, events)
	return events
}

func (c *Collector) run(ctx context.Context, req CollectRequest, events chan<- domain.StreamEvent) {
	defer close(events)

	if req.Outline == nil || len(req.Outline.Units()) == 0 {
		ev := domain.NewStreamEvent(domain.StatusFailed, "Sources collection failed: outline has no processable sections")
		emit(ctx, events, ev)
		return
	}

	units := req.Outline.Units()
	c.deps.Logger.Info("Starting sources collection", map[string]interface{}{
		"units":   len(units),
		"keyword": req.PrimaryKeyword,
	})

	completed := 0
	for _, unit := range units {
		if ctx.Err() != nil {
			return
		}

		result := c.processUnit(ctx, req, unit, events)
		if ctx.Err() != nil {
			// Cancelled mid-unit; the partial result must not be emitted.
			return
		}

		if !emit(ctx, events, completionEvent(unit, result)) {
			return
		}
		completed++
	}

	done := domain.NewStreamEvent(domain.StatusProcessingComplete,
		fmt.Sprintf("All processing complete. %d subsections processed.", completed))
	done.TotalProcessed = completed
	emit(ctx, events, done)
}

// unitResult is the internal outcome of one processing unit.
type unitResult struct {
	sources      []domain.WebSource
	informations map[string]interface{}
}

// emptyUnitResult is what a failed unit degrades to: collection continues,
// downstream aggregation sees an explicit empty marker.
func emptyUnitResult() unitResult {
	return unitResult{
		sources:      []domain.WebSource{},
		informations: domain.NoInformations(),
	}
}

// processUnit runs search, scrape and extraction for one unit. Any failure
// is logged and converted to an empty result; it never aborts the run.
func (c *Collector) processUnit(parent context.Context, req CollectRequest, unit domain.ProcessingUnit, events chan<- domain.StreamEvent) unitResult {
	ctx, cancel := context.WithTimeout(parent, c.config.UnitTimeout)
	defer cancel()

	queries, err := c.generateQueries(ctx, req, unit)
	if err != nil || len(queries) == 0 {
		c.deps.Logger.Error("Query generation failed", map[string]interface{}{
			"subsection": unit.Title,
			"error":      errString(err),
		})
		return emptyUnitResult()
	}

	pages := c.searchAndScrape(ctx, req.Country, queries, unit, events)
	if len(pages) == 0 {
		c.deps.Logger.Warn("No usable sources for subsection", map[string]interface{}{
			"subsection": unit.Title,
		})
		return emptyUnitResult()
	}

	informations := c.extractInformations(ctx, req, unit, pages)

	sources := make([]domain.WebSource, 0, len(pages))
	for _, page := range pages {
		sources = append(sources, page.source)
	}

	return unitResult{sources: sources, informations: informations}
}

// generateQueries asks the LLM for the unit's search queries.
func (c *Collector) generateQueries(ctx context.Context, req CollectRequest, unit domain.ProcessingUnit) ([]string, error) {
	raw, err := c.chat.ChatCompletion(ctx, interfaces.ChatRequest{
		System:      queryGenerationSystem,
		User:        queryGenerationPrompt(c.config.QueriesPerSubsection, req.BlogTitle, unit.HeadingTitle, unit.Title, req.PrimaryKeyword, req.Country, req.Outline),
		Temperature: 0.3,
		MaxTokens:   300,
	})
	if err != nil {
		return nil, err
	}

	parsed := parseModelJSON(raw)
	queries := make([]string, 0, c.config.QueriesPerSubsection)
	for i := 1; i <= c.config.QueriesPerSubsection; i++ {
		key := fmt.Sprintf("query_%d", i)
		if q, ok := parsed[key].(string); ok && q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries in model response")
	}
	return queries, nil
}

// scrapedPage pairs a successfully scraped page with its source metadata.
type scrapedPage struct {
	source     domain.WebSource
	content    string
	queryIndex int
	position   int
}

// searchAndScrape fans out every query, scrapes the top results and streams
// a found_websites event per successful scrape. Individual query or scrape
// failures are logged and skipped; ordering of the returned pages is
// deterministic (query-major, rank-minor) regardless of completion order.
func (c *Collector) searchAndScrape(ctx context.Context, country string, queries []string, unit domain.ProcessingUnit, events chan<- domain.StreamEvent) []scrapedPage {
	var (
		mu    sync.Mutex
		pages []scrapedPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.FanOutLimit)

	for qi, query := range queries {
		qi, query := qi, query
		g.Go(func() error {
			results, err := c.search.Search(gctx, query, country, c.config.ResultsPerQuery)
			if err != nil {
				c.deps.Logger.Warn("Search query failed", map[string]interface{}{
					"query": query,
					"error": err.Error(),
				})
				return nil
			}

			for ri, result := range results {
				page, err := c.scraper.Scrape(gctx, result.URL)
				if err != nil {
					c.deps.Logger.Warn("Scrape failed", map[string]interface{}{
						"url":   result.URL,
						"error": err.Error(),
					})
					continue
				}

				title := page.Title
				if title == "" {
					title = result.Title
				}
				sp := scrapedPage{
					source: domain.WebSource{
						URL:      result.URL,
						Title:    title,
						Snippet:  result.Snippet,
						Position: ri + 1,
					},
					content:    page.Markdown,
					queryIndex: qi,
					position:   ri + 1,
				}

				mu.Lock()
				pages = append(pages, sp)
				mu.Unlock()

				emit(gctx, events, websiteFoundEvent(unit, sp.source))
			}
			return nil
		})
	}

	// Worker errors are already handled per-query; Wait only observes
	// context cancellation.
	_ = g.Wait()

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].queryIndex != pages[j].queryIndex {
			return pages[i].queryIndex < pages[j].queryIndex
		}
		return pages[i].position < pages[j].position
	})

	if len(pages) > c.config.MaxSourcesPerSubsection {
		pages = pages[:c.config.MaxSourcesPerSubsection]
	}
	return pages
}

// extractInformations runs the LLM extraction over the combined scraped
// content. Failures degrade to the explicit no-information marker.
func (c *Collector) extractInformations(ctx context.Context, req CollectRequest, unit domain.ProcessingUnit, pages []scrapedPage) map[string]interface{} {
	combined := make([]scrapedSource, 0, len(pages))
	for _, page := range pages {
		combined = append(combined, scrapedSource{
			url:     page.source.URL,
			title:   page.source.Title,
			content: page.content,
		})
	}

	raw, err := c.chat.ChatCompletion(ctx, interfaces.ChatRequest{
		System:      informationSystem,
		User:        informationPrompt(req.BlogTitle, unit.HeadingTitle, unit.Title, combined),
		Temperature: 1.0,
		MaxTokens:   16384,
	})
	if err != nil {
		c.deps.Logger.Error("Information extraction failed", map[string]interface{}{
			"subsection": unit.Title,
			"error":      err.Error(),
		})
		return domain.NoInformations()
	}

	return parseModelJSON(raw)
}

// completionEvent builds the unit's terminal event. Direct headings
// complete as heading_completed, everything else as subsection_completed.
func completionEvent(unit domain.ProcessingUnit, result unitResult) domain.StreamEvent {
	status := domain.StatusSubsectionCompleted
	if unit.IsDirectHeading {
		status = domain.StatusHeadingCompleted
	}

	ev := domain.NewStreamEvent(status,
		fmt.Sprintf("Completed %s (%d sources)", unit.Title, len(result.sources)))
	ev.SubsectionTitle = unit.Title
	ev.HeadingTitle = unit.HeadingTitle
	ev.HeadingIndex = intPtr(unit.HeadingIndex)
	ev.SubsectionIndex = intPtr(unit.SubsectionIndex)
	ev.IsDirectHeading = boolPtr(unit.IsDirectHeading)
	ev.Sources = result.sources
	ev.Informations = result.informations
	return ev
}

// websiteFoundEvent announces one successfully scraped source.
func websiteFoundEvent(unit domain.ProcessingUnit, source domain.WebSource) domain.StreamEvent {
	ev := domain.NewStreamEvent(domain.StatusFoundWebsites,
		fmt.Sprintf("Website found for %s (#%d)", unit.Title, source.Position))
	ev.SubsectionTitle = unit.Title
	ev.HeadingTitle = unit.HeadingTitle
	ev.HeadingIndex = intPtr(unit.HeadingIndex)
	ev.SubsectionIndex = intPtr(unit.SubsectionIndex)
	ev.IsDirectHeading = boolPtr(unit.IsDirectHeading)
	ev.WebsiteData = &domain.WebsiteData{
		URL:      source.URL,
		Title:    source.Title,
		Position: source.Position,
	}
	return ev
}

// emit sends one event unless the consumer is gone. Returns false when the
// context was cancelled before the send completed.
func emit(ctx context.Context, events chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func errString(err error) string {
	if err == nil {
		return "empty result"
	}
	return err.Error()
}
