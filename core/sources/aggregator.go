// ABOUTME: Result aggregator accumulates completed subsection results in memory
// ABOUTME: Pure bookkeeping; malformed events are coerced to defaults, never rejected

package sources

import (
	"time"

	"blogforge-app-api/core/domain"
)

// Aggregator observes unit-completion events as they pass through the
// stream and keeps the derived results in emission order. It is owned by a
// single goroutine per request and needs no locking.
type Aggregator struct {
	results []domain.SubsectionResult
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Observe records a unit-completion event. Other events are ignored.
func (a *Aggregator) Observe(ev domain.StreamEvent) {
	if !ev.IsUnitCompletion() {
		return
	}

	result := domain.SubsectionResult{
		Title:           ev.SubsectionTitle,
		HeadingTitle:    ev.HeadingTitle,
		Sources:         ev.Sources,
		Informations:    ev.Informations,
		ProcessedAt:     ev.Timestamp,
		IsDirectHeading: ev.Status == domain.StatusHeadingCompleted,
	}

	// Coerce missing payload pieces to defaults so downstream persistence
	// never sees nils.
	if result.Sources == nil {
		result.Sources = []domain.WebSource{}
	}
	if result.Informations == nil {
		result.Informations = domain.NoInformations()
	}
	if result.ProcessedAt == "" {
		result.ProcessedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if ev.HeadingIndex != nil {
		result.HeadingIndex = *ev.HeadingIndex
	}
	if ev.SubsectionIndex != nil {
		result.SubsectionIndex = *ev.SubsectionIndex
	}
	if ev.IsDirectHeading != nil {
		result.IsDirectHeading = *ev.IsDirectHeading
	}
	result.SourcesCount = len(result.Sources)

	a.results = append(a.results, result)
}

// Results returns the accumulated results in emission order.
func (a *Aggregator) Results() []domain.SubsectionResult {
	return a.results
}

// Count returns how many units have completed.
func (a *Aggregator) Count() int {
	return len(a.results)
}

// TotalSources sums the source counts across all completed units.
func (a *Aggregator) TotalSources() int {
	total := 0
	for _, r := range a.results {
		total += r.SourcesCount
	}
	return total
}
