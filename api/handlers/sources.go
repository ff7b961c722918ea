// ABOUTME: Sources handlers for the Huma API
// ABOUTME: Provides the latest-sources view and the direct sources append

package handlers

import (
	"context"
	"net/http"
	"time"

	"blogforge-app-api/api/dto/requests"
	"blogforge-app-api/api/dto/responses"
	"blogforge-app-api/api/middleware"
	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
	"blogforge-app-api/core/interfaces"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

// SourcesHandler handles the non-streaming sources endpoints
type SourcesHandler struct {
	blogs    interfaces.BlogStore
	projects interfaces.ProjectStore
	logger   interfaces.Logger
}

// NewSourcesHandler creates a new sources handler
func NewSourcesHandler(blogs interfaces.BlogStore, projects interfaces.ProjectStore, logger interfaces.Logger) *SourcesHandler {
	return &SourcesHandler{
		blogs:    blogs,
		projects: projects,
		logger:   logger,
	}
}

// RegisterRoutes registers the sources routes
func (h *SourcesHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getLatestSources",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/sources/{document_id}",
		Summary:     "Get the latest collected sources",
		Description: "Returns the most recent sources entry plus the latest snapshot of every earlier pipeline step",
		Tags:        []string{"Sources"},
	}, h.GetLatestSources)

	huma.Register(api, huma.Operation{
		OperationID: "updateSources",
		Method:      http.MethodPut,
		Path:        "/projects/{project_id}/sources/{document_id}",
		Summary:     "Append raw sources data",
		Description: "Appends caller-provided sources data directly, without running the collection pipeline",
		Tags:        []string{"Sources"},
	}, h.UpdateSources)
}

// requireCaller returns the authenticated caller or a 401.
func requireCaller(ctx context.Context) (middleware.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return middleware.Identity{}, huma.Error401Unauthorized("Missing caller identity")
	}
	return id, nil
}

// validateProjectID rejects non-UUID project IDs before any datastore work.
func validateProjectID(projectID string) error {
	if _, err := uuid.Parse(projectID); err != nil {
		return &coreerrors.ValidationError{
			Field:   "project_id",
			Message: "'" + projectID + "' is not a valid project ID",
		}
	}
	return nil
}

// checkProjectAccess loads the project and verifies the caller owns it.
func (h *SourcesHandler) checkProjectAccess(ctx context.Context, projectID, userID string) error {
	project, err := h.projects.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.UserID != userID {
		return &coreerrors.AccessDeniedError{Resource: "project", ID: projectID}
	}
	return nil
}

// GetLatestSourcesInput defines the input for the GetLatestSources operation
type GetLatestSourcesInput struct {
	ProjectID  string `path:"project_id" doc:"Project ID (UUID)"`
	DocumentID string `path:"document_id" doc:"Blog document ID"`
}

// GetLatestSourcesOutput defines the output for the GetLatestSources operation
type GetLatestSourcesOutput struct {
	Body responses.LatestSourcesResponse
}

// GetLatestSources handles GET /projects/{project_id}/sources/{document_id}
func (h *SourcesHandler) GetLatestSources(ctx context.Context, input *GetLatestSourcesInput) (*GetLatestSourcesOutput, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	if err := validateProjectID(input.ProjectID); err != nil {
		return nil, toHumaError(err)
	}

	if err := h.checkProjectAccess(ctx, input.ProjectID, caller.UserID); err != nil {
		return nil, toHumaError(err)
	}

	fields := []string{
		"sources", "outlines", "titles", "categories",
		"secondary_keywords", "primary_keyword", "word_count",
		"country", "title",
	}
	doc, err := h.blogs.FetchBlogDocument(ctx, input.DocumentID, input.ProjectID, caller.UserID, fields)
	if err != nil {
		return nil, toHumaError(err)
	}

	resp := responses.LatestSourcesResponse{
		Country:   doc.CountryOrDefault(),
		BlogTitle: doc.BlogTitle(),
		Status:    "no_data",
		BlogID:    input.DocumentID,
	}

	if latest, ok := doc.LatestSources(); ok {
		resp.Sources = latest.SubsectionsData
		resp.TotalSubsections = latest.TotalSubsections
		resp.TotalSources = latest.TotalSources
		resp.ProcessingMetadata = latest.ProcessingMetadata
		if !latest.GeneratedAt.IsZero() {
			resp.GeneratedAt = latest.GeneratedAt.UTC().Format(time.RFC3339)
		}
		resp.Status = "success"
	}

	resp.Outline = latestOf(doc.Outlines, "outline")
	resp.Titles = latestOf(doc.Titles, "titles")
	resp.Categories = latestOf(doc.Categories, "categories")
	resp.SecondaryKeywords = latestOf(doc.SecondaryKeywords, "keywords")
	if len(doc.PrimaryKeyword) > 0 {
		resp.PrimaryKeyword = doc.PrimaryKeyword[len(doc.PrimaryKeyword)-1]
	}
	if len(doc.WordCount) > 0 {
		resp.WordCount = doc.WordCount[len(doc.WordCount)-1]
	}

	return &GetLatestSourcesOutput{Body: resp}, nil
}

// latestOf extracts the named field of the last entry in a history array.
func latestOf(history []map[string]interface{}, field string) interface{} {
	if len(history) == 0 {
		return nil
	}
	return history[len(history)-1][field]
}

// UpdateSourcesInput defines the input for the UpdateSources operation
type UpdateSourcesInput struct {
	ProjectID  string `path:"project_id" doc:"Project ID (UUID)"`
	DocumentID string `path:"document_id" doc:"Blog document ID"`
	Body       requests.UpdateSourcesRequest
}

// UpdateSourcesOutput defines the output for the UpdateSources operation
type UpdateSourcesOutput struct {
	Body responses.UpdateSourcesResponse
}

// UpdateSources handles PUT /projects/{project_id}/sources/{document_id}
func (h *SourcesHandler) UpdateSources(ctx context.Context, input *UpdateSourcesInput) (*UpdateSourcesOutput, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	if err := validateProjectID(input.ProjectID); err != nil {
		return nil, toHumaError(err)
	}

	if !input.Body.HasSources() {
		return nil, huma.Error400BadRequest("sources object required")
	}

	// Existence check with a minimal projection before the append
	if _, err := h.blogs.FetchBlogDocument(ctx, input.DocumentID, input.ProjectID, caller.UserID, []string{"country"}); err != nil {
		return nil, toHumaError(err)
	}

	record := domain.SourcesRecord{
		SubsectionsData: input.Body.Sources,
		GeneratedAt:     time.Now().UTC(),
		Tag:             "updated",
	}
	if err := h.blogs.AppendSourcesRecord(ctx, input.DocumentID, record); err != nil {
		return nil, toHumaError(err)
	}

	h.logger.Info("Sources appended directly", map[string]interface{}{
		"blog_id":    input.DocumentID,
		"project_id": input.ProjectID,
		"user_id":    caller.UserID,
	})

	return &UpdateSourcesOutput{
		Body: responses.UpdateSourcesResponse{
			Status:  "updated",
			Sources: input.Body.Sources,
			BlogID:  input.DocumentID,
			Message: "Raw sources data added to sources",
		},
	}, nil
}
