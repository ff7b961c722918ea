// ABOUTME: Stream event model pushed to SSE clients during a collection run
// ABOUTME: Events are request-scoped and never persisted

package domain

import (
	"time"
)

// Stream event statuses, in rough lifecycle order.
const (
	StatusProcessing           = "processing"
	StatusFoundWebsites        = "found_websites"
	StatusSubsectionCompleted  = "subsection_completed"
	StatusHeadingCompleted     = "heading_completed"
	StatusProcessingComplete   = "processing_complete"
	StatusCompleted            = "completed"
	StatusCompletedWithWarning = "completed_with_warning"
	StatusCompletedWithError   = "completed_with_error"
	StatusFailed               = "failed"
	StatusStreamError          = "stream_error"
	StatusError                = "error"
)

// WebsiteData is the payload of a found_websites event.
type WebsiteData struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// StreamEvent is one message pushed to the client during a collection run.
// Status determines which of the optional fields are populated.
type StreamEvent struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`

	// Unit context, set on found_websites and completion events
	SubsectionTitle string `json:"subsection_title,omitempty"`
	HeadingTitle    string `json:"heading_title,omitempty"`
	HeadingIndex    *int   `json:"heading_index,omitempty"`
	SubsectionIndex *int   `json:"subsection_index,omitempty"`
	IsDirectHeading *bool  `json:"is_direct_heading,omitempty"`

	// found_websites payload
	WebsiteData *WebsiteData `json:"website_data,omitempty"`

	// Completion payload
	Sources      []WebSource            `json:"sources,omitempty"`
	Informations map[string]interface{} `json:"informations,omitempty"`

	// Run summary payload
	TotalProcessed    int      `json:"total_processed,omitempty"`
	TotalSubsections  int      `json:"total_subsections,omitempty"`
	TotalSources      int      `json:"total_sources,omitempty"`
	SectionsProcessed int      `json:"sections_processed,omitempty"`
	BlogID            string   `json:"blog_id,omitempty"`
	SavedTo           []string `json:"saved_to,omitempty"`

	// Error payload
	ErrorType string `json:"error_type,omitempty"`
	Error     string `json:"error,omitempty"`

	// Balance failure payload
	RequiredBalance *float64 `json:"required_balance,omitempty"`
	CurrentBalance  *float64 `json:"current_balance,omitempty"`
	Shortfall       *float64 `json:"shortfall,omitempty"`
	NextRefillTime  *string  `json:"next_refill_time,omitempty"`
}

// NewStreamEvent creates an event stamped with the current UTC time.
func NewStreamEvent(status, message string) StreamEvent {
	return StreamEvent{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// IsUnitCompletion reports whether the event completes one processing unit.
func (e *StreamEvent) IsUnitCompletion() bool {
	return e.Status == StatusSubsectionCompleted || e.Status == StatusHeadingCompleted
}

// IsTerminal reports whether no further events follow this one.
func (e *StreamEvent) IsTerminal() bool {
	switch e.Status {
	case StatusCompleted, StatusCompletedWithWarning, StatusCompletedWithError,
		StatusFailed, StatusStreamError, StatusError:
		return true
	}
	return false
}
