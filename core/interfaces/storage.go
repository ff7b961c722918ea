// ABOUTME: Storage interfaces for the blog datastore and relational lookups
// ABOUTME: Defines contracts for persistence and the validation collaborators

package interfaces

import (
	"context"

	"blogforge-app-api/core/domain"
)

// BlogStore is the per-blog document store. Blog documents hold append-only
// history arrays; entries are never mutated in place.
type BlogStore interface {
	// FetchBlogDocument returns the blog document scoped to its project and
	// owner. fields, when non-empty, restricts the projection. Returns a
	// NotFoundError when no matching document exists.
	FetchBlogDocument(ctx context.Context, blogID, projectID, userID string, fields []string) (*domain.BlogDocument, error)

	// CommitSourcesRun appends a completed run's records (sources, outline
	// final, step tracking) to the document in one atomic update.
	CommitSourcesRun(ctx context.Context, blogID string, commit domain.SourcesCommit) error

	// AppendSourcesRecord appends a single sources entry, used by the
	// direct update path.
	AppendSourcesRecord(ctx context.Context, blogID string, record domain.SourcesRecord) error
}

// ProjectStore looks up projects in the relational store.
type ProjectStore interface {
	// GetProject returns the project or a NotFoundError.
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)
}

// BalanceService checks a user's service balance before expensive work.
type BalanceService interface {
	// ValidateServiceBalance returns the balance status when the user can
	// afford the service, or an InsufficientBalanceError (resp. a
	// NotFoundError for a missing account, a ValidationError for an
	// unknown service key).
	ValidateServiceBalance(ctx context.Context, userID, serviceKey string) (*domain.BalanceStatus, error)
}

// ActivityStore records request activity. Writes are best-effort; failures
// are logged, never surfaced to callers.
type ActivityStore interface {
	Record(ctx context.Context, entry domain.ActivityEntry) error
}
