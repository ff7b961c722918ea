// ABOUTME: Response DTOs for the sources collection endpoints
// ABOUTME: Shapes the latest-sources view with denormalized pipeline snapshots

package responses

// LatestSourcesResponse is the GET view over a blog's most recent sources
// entry, plus the latest snapshot of every earlier pipeline step so
// clients render the whole document state from one call.
type LatestSourcesResponse struct {
	// Sources is the latest entry's subsections data, nil when no run
	// has been persisted yet
	Sources interface{} `json:"sources,omitempty" doc:"Latest collected sources data"`

	TotalSubsections int `json:"total_subsections,omitempty" doc:"Subsections in the latest run"`
	TotalSources     int `json:"total_sources,omitempty" doc:"Sources in the latest run"`

	// Denormalized latest snapshots of the earlier pipeline steps
	Outline           interface{}              `json:"outline,omitempty" doc:"Latest outline"`
	Titles            interface{}              `json:"titles,omitempty" doc:"Latest generated titles"`
	Categories        interface{}              `json:"categories,omitempty" doc:"Latest categories"`
	SecondaryKeywords interface{}              `json:"secondary_keywords,omitempty" doc:"Latest secondary keywords"`
	PrimaryKeyword    map[string]interface{}   `json:"primary_keyword,omitempty" doc:"Latest primary keyword entry"`
	WordCount         interface{}              `json:"word_count,omitempty" doc:"Latest word count"`

	Country            string      `json:"country,omitempty" doc:"Blog country code"`
	BlogTitle          string      `json:"blog_title,omitempty" doc:"Blog title"`
	ProcessingMetadata interface{} `json:"processing_metadata,omitempty" doc:"Collector knobs of the latest run"`
	GeneratedAt        string      `json:"generated_at,omitempty" doc:"When the latest run was persisted"`

	// Status is "success" when sources data exists, "no_data" otherwise
	Status string `json:"status" doc:"success or no_data"`
	BlogID string `json:"blog_id" doc:"Blog document ID"`
}

// UpdateSourcesResponse acknowledges a direct sources append.
type UpdateSourcesResponse struct {
	Status  string                 `json:"status" doc:"Always 'updated'"`
	Sources map[string]interface{} `json:"sources" doc:"The appended sources data"`
	BlogID  string                 `json:"blog_id" doc:"Blog document ID"`
	Message string                 `json:"message" doc:"Human-readable confirmation"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status" doc:"Always 'ok' when the service is up"`
	Version string `json:"version" doc:"API version"`
}
