// ABOUTME: Persistence committer writes one completed run to the blog document
// ABOUTME: Exactly one append attempt per run; failures surface, never retry

package sources

import (
	"context"
	"time"

	"blogforge-app-api/core/domain"
	"blogforge-app-api/core/interfaces"
)

// CommitRequest is everything needed to persist one successful run.
type CommitRequest struct {
	BlogID string

	// OutlineSnapshot is the caller's outline payload, stored verbatim
	OutlineSnapshot interface{}

	Results        []domain.SubsectionResult
	PrimaryKeyword string
	Country        string
	BlogTitle      string
	Metadata       domain.ProcessingMetadata
}

// Committer builds and appends the records of a completed collection run.
type Committer struct {
	store  interfaces.BlogStore
	logger interfaces.Logger
}

// NewCommitter creates a committer.
func NewCommitter(store interfaces.BlogStore, logger interfaces.Logger) *Committer {
	return &Committer{store: store, logger: logger}
}

// Commit appends the sources record, the finalized outline record and the
// step-tracking entries in one atomic update. It is called exactly once per
// successful run, after processing_complete and only while the client is
// still connected.
func (c *Committer) Commit(ctx context.Context, req CommitRequest) error {
	now := time.Now().UTC()

	totalSources := 0
	for _, r := range req.Results {
		totalSources += r.SourcesCount
	}

	commit := domain.SourcesCommit{
		OutlineFinal: domain.OutlineRecord{
			Outline:          req.OutlineSnapshot,
			SourcesCollected: true,
			FinalizedAt:      now,
			PrimaryKeyword:   req.PrimaryKeyword,
			Country:          req.Country,
			BlogTitle:        req.BlogTitle,
			Tag:              "final",
		},
		Sources: domain.SourcesRecord{
			SubsectionsData:    req.Results,
			Outline:            req.OutlineSnapshot,
			TotalSubsections:   len(req.Results),
			TotalSources:       totalSources,
			PrimaryKeyword:     req.PrimaryKeyword,
			Country:            req.Country,
			BlogTitle:          req.BlogTitle,
			GeneratedAt:        now,
			ProcessingMetadata: &req.Metadata,
			Tag:                "generated",
		},
		OutlineStep: domain.StepEntry{
			Step:        "outline",
			Status:      "done",
			CompletedAt: now,
		},
		SourcesStep: domain.StepEntry{
			Step:        "sources",
			Status:      "generated",
			CompletedAt: now,
		},
		CurrentStep: "sources",
	}

	if err := c.store.CommitSourcesRun(ctx, req.BlogID, commit); err != nil {
		c.logger.Error("Failed to persist sources run", map[string]interface{}{
			"blog_id": req.BlogID,
			"error":   err.Error(),
		})
		return err
	}

	c.logger.Info("Sources run persisted", map[string]interface{}{
		"blog_id":           req.BlogID,
		"total_subsections": len(req.Results),
		"total_sources":     totalSources,
	})
	return nil
}
