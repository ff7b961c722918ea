// ABOUTME: Domain models for collected sources and the persisted append-only records
// ABOUTME: SubsectionResult is request-scoped; SourcesRecord is permanent once written

package domain

import (
	"time"
)

// WebSource is one discovered and successfully scraped web page.
type WebSource struct {
	// URL is the page URL
	URL string `json:"url" bson:"url"`

	// Title is the page title as extracted during scraping
	Title string `json:"title" bson:"title"`

	// Snippet is an optional short excerpt of the page content
	Snippet string `json:"snippet,omitempty" bson:"snippet,omitempty"`

	// Position is the 1-based rank of the result within its query
	Position int `json:"position,omitempty" bson:"position,omitempty"`
}

// SubsectionResult is the completed collection outcome for one processing
// unit. It is created once the unit's collection finishes and is immutable
// afterwards.
type SubsectionResult struct {
	Title           string                 `json:"title" bson:"title"`
	HeadingIndex    int                    `json:"heading_index" bson:"heading_index"`
	SubsectionIndex int                    `json:"subsection_index" bson:"subsection_index"`
	HeadingTitle    string                 `json:"heading_title" bson:"heading_title"`
	IsDirectHeading bool                   `json:"is_direct_heading" bson:"is_direct_heading"`
	Sources         []WebSource            `json:"sources" bson:"sources"`
	Informations    map[string]interface{} `json:"informations" bson:"informations"`
	ProcessedAt     string                 `json:"processed_at" bson:"processed_at"`
	SourcesCount    int                    `json:"sources_count" bson:"sources_count"`
}

// NoInformations is the explicit marker stored when a subsection yielded no
// usable extracted content. Downstream stages must not treat it as missing
// data.
func NoInformations() map[string]interface{} {
	return map[string]interface{}{"no_information_found": true}
}

// ProcessingMetadata records the collector knobs a run was executed with.
type ProcessingMetadata struct {
	QueriesPerSubsection    int `json:"queries_per_subsection" bson:"queries_per_subsection"`
	ResultsPerQuery         int `json:"results_per_query" bson:"results_per_query"`
	MaxSourcesPerSubsection int `json:"max_sources_per_subsection" bson:"max_sources_per_subsection"`
}

// SourcesRecord is one append-only entry of a blog document's sources
// history. The tag distinguishes provenance: "generated" entries come from
// the streaming pipeline, "updated" entries from the direct PUT path.
type SourcesRecord struct {
	// SubsectionsData holds the per-unit results. For generated records it
	// is a []SubsectionResult; for updated records it is the caller's
	// payload stored verbatim.
	SubsectionsData interface{} `json:"subsections_data" bson:"subsections_data"`

	// Outline is the outline snapshot the run worked from
	Outline interface{} `json:"outline,omitempty" bson:"outline,omitempty"`

	TotalSubsections int    `json:"total_subsections,omitempty" bson:"total_subsections,omitempty"`
	TotalSources     int    `json:"total_sources,omitempty" bson:"total_sources,omitempty"`
	PrimaryKeyword   string `json:"primary_keyword,omitempty" bson:"primary_keyword,omitempty"`
	Country          string `json:"country,omitempty" bson:"country,omitempty"`
	BlogTitle        string `json:"blog_title,omitempty" bson:"blog_title,omitempty"`

	GeneratedAt        time.Time           `json:"generated_at" bson:"generated_at"`
	ProcessingMetadata *ProcessingMetadata `json:"processing_metadata,omitempty" bson:"processing_metadata,omitempty"`

	// Tag is the provenance tag: "generated" or "updated"
	Tag string `json:"tag" bson:"tag"`
}

// OutlineRecord is the sibling "outline finalized" entry appended alongside
// a generated SourcesRecord.
type OutlineRecord struct {
	Outline          interface{} `json:"outline" bson:"outline"`
	SourcesCollected bool        `json:"sources_collected" bson:"sources_collected"`
	FinalizedAt      time.Time   `json:"finalized_at" bson:"finalized_at"`
	PrimaryKeyword   string      `json:"primary_keyword" bson:"primary_keyword"`
	Country          string      `json:"country" bson:"country"`
	BlogTitle        string      `json:"blog_title" bson:"blog_title"`

	// Tag is "final" for records written by the committer
	Tag string `json:"tag" bson:"tag"`
}

// StepEntry is one step-tracking record appended when a pipeline stage
// completes.
type StepEntry struct {
	Step        string    `json:"step" bson:"step"`
	Status      string    `json:"status" bson:"status"`
	CompletedAt time.Time `json:"completed_at" bson:"completed_at"`
}

// SourcesCommit is everything the persistence committer writes in one
// atomic update after a successful collection run.
type SourcesCommit struct {
	OutlineFinal OutlineRecord
	Sources      SourcesRecord
	OutlineStep  StepEntry
	SourcesStep  StepEntry

	// CurrentStep becomes the document's step_tracking.current_step
	CurrentStep string
}

// BlogDocument is the per-blog datastore document. Sibling arrays for the
// earlier pipeline stages are consulted read-only by this service.
type BlogDocument struct {
	ID                string                   `json:"id" bson:"_id,omitempty"`
	ProjectID         string                   `json:"project_id" bson:"project_id"`
	UserID            string                   `json:"user_id" bson:"user_id"`
	Country           string                   `json:"country" bson:"country"`
	Title             []string                 `json:"title" bson:"title"`
	PrimaryKeyword    []map[string]interface{} `json:"primary_keyword" bson:"primary_keyword"`
	SecondaryKeywords []map[string]interface{} `json:"secondary_keywords" bson:"secondary_keywords"`
	Categories        []map[string]interface{} `json:"categories" bson:"categories"`
	Titles            []map[string]interface{} `json:"titles" bson:"titles"`
	WordCount         []interface{}            `json:"word_count" bson:"word_count"`
	Outlines          []map[string]interface{} `json:"outlines" bson:"outlines"`
	Sources           []SourcesRecord          `json:"sources" bson:"sources"`
}

// LatestPrimaryKeyword returns the most recent primary keyword, if any
// earlier pipeline stage produced one.
func (d *BlogDocument) LatestPrimaryKeyword() (string, bool) {
	if len(d.PrimaryKeyword) == 0 {
		return "", false
	}
	latest := d.PrimaryKeyword[len(d.PrimaryKeyword)-1]
	keyword, ok := latest["keyword"].(string)
	if !ok || keyword == "" {
		return "", false
	}
	return keyword, true
}

// BlogTitle returns the most recent blog title, falling back to a default.
func (d *BlogDocument) BlogTitle() string {
	if len(d.Title) == 0 {
		return "Untitled Blog"
	}
	return d.Title[len(d.Title)-1]
}

// CountryOrDefault returns the blog's country code, defaulting to "us".
func (d *BlogDocument) CountryOrDefault() string {
	if d.Country == "" {
		return "us"
	}
	return d.Country
}

// LatestSources returns the last element of the sources history, if any.
func (d *BlogDocument) LatestSources() (*SourcesRecord, bool) {
	if len(d.Sources) == 0 {
		return nil, false
	}
	return &d.Sources[len(d.Sources)-1], true
}

// SearchResult is one organic result returned by the search provider.
type SearchResult struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// ScrapedPage is the readable content extracted from one web page.
type ScrapedPage struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	SiteName string `json:"site_name,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`

	// Markdown is the article content converted to markdown, used as LLM
	// context
	Markdown string `json:"markdown"`
}

// Project is the relational project row owning blog documents.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BalanceStatus describes a passed balance check.
type BalanceStatus struct {
	ServiceKey      string  `json:"service_key"`
	ServiceName     string  `json:"service_name"`
	CurrentBalance  float64 `json:"current_balance"`
	RequiredBalance float64 `json:"required_balance"`
}

// ActivityEntry is one row of the request activity log.
type ActivityEntry struct {
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Name      string    `json:"name,omitempty"`
	Endpoint  string    `json:"endpoint"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
