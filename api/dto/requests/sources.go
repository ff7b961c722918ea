// ABOUTME: Request DTOs for the sources collection endpoints
// ABOUTME: Provides validation for incoming collection and update payloads

package requests

import "encoding/json"

// CollectSourcesRequest is the POST body starting a streaming collection
// run. The outline is kept raw; the collection pipeline normalizes the
// three accepted shapes (nested, sections object, flat list) itself.
type CollectSourcesRequest struct {
	// Outline is the outline payload from the outline generation step
	Outline json.RawMessage `json:"outline" doc:"Outline to collect sources for"`
}

// UpdateSourcesRequest is the PUT body appending caller-provided sources
// data directly, without running the collection pipeline.
type UpdateSourcesRequest struct {
	// Sources is stored verbatim as the new entry's subsections data.
	// Optional in the schema so a missing or empty object reaches the
	// handler and fails with a 400 instead of a schema-level 422.
	Sources map[string]interface{} `json:"sources,omitempty" required:"false" doc:"Raw sources data to append"`
}

// HasSources reports whether the payload carries any sources data.
func (r *UpdateSourcesRequest) HasSources() bool {
	return len(r.Sources) > 0
}
