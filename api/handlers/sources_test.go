// ABOUTME: Tests for the GET and PUT sources endpoints
// ABOUTME: Runs the full router with identity middleware and mock stores

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogforge-app-api/api/dto/responses"
	"blogforge-app-api/api/middleware"
	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
)

const (
	testProjectID = "7a9f1d2e-3b4c-4d5e-8f60-123456789abc"
	testBlogID    = "66f0a0b1c2d3e4f5a6b7c8d9"
	testUserID    = "user-1"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields map[string]interface{}) {}
func (noopLogger) Info(msg string, fields map[string]interface{})  {}
func (noopLogger) Warn(msg string, fields map[string]interface{})  {}
func (noopLogger) Error(msg string, fields map[string]interface{}) {}

type mockBlogStore struct {
	doc      *domain.BlogDocument
	fetchErr error

	appended  []domain.SourcesRecord
	appendErr error
}

func (m *mockBlogStore) FetchBlogDocument(ctx context.Context, blogID, projectID, userID string, fields []string) (*domain.BlogDocument, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if m.doc == nil {
		return nil, &coreerrors.NotFoundError{Resource: "blog", ID: blogID}
	}
	return m.doc, nil
}

func (m *mockBlogStore) CommitSourcesRun(ctx context.Context, blogID string, commit domain.SourcesCommit) error {
	return fmt.Errorf("not implemented")
}

func (m *mockBlogStore) AppendSourcesRecord(ctx context.Context, blogID string, record domain.SourcesRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, record)
	return nil
}

type mockProjectStore struct {
	project *domain.Project
	err     error
}

func (m *mockProjectStore) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.project == nil {
		return nil, &coreerrors.NotFoundError{Resource: "project", ID: projectID}
	}
	return m.project, nil
}

func newTestRouter(blogs *mockBlogStore, projects *mockProjectStore) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireIdentity)

	api := humachi.New(router, huma.DefaultConfig("Test API", "0.0.0"))
	NewSourcesHandler(blogs, projects, noopLogger{}).RegisterRoutes(api)
	NewHealthHandler("0.0.0").RegisterRoutes(api)

	return router
}

func doRequest(t *testing.T, router chi.Router, method, path, body string, identified bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if identified {
		req.Header.Set("X-User-ID", testUserID)
		req.Header.Set("X-User-Email", "user@example.com")
		req.Header.Set("X-User-Name", "Test User")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sourcesPath(projectID, blogID string) string {
	return "/projects/" + projectID + "/sources/" + blogID
}

func ownedProject() *mockProjectStore {
	return &mockProjectStore{project: &domain.Project{ID: testProjectID, UserID: testUserID}}
}

func TestGetLatestSources_RequiresIdentity(t *testing.T) {
	router := newTestRouter(&mockBlogStore{}, ownedProject())

	rec := doRequest(t, router, http.MethodGet, sourcesPath(testProjectID, testBlogID), "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetLatestSources_InvalidProjectID(t *testing.T) {
	router := newTestRouter(&mockBlogStore{}, ownedProject())

	rec := doRequest(t, router, http.MethodGet, sourcesPath("not-a-uuid", testBlogID), "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a valid project ID")
}

func TestGetLatestSources_ForeignProjectDenied(t *testing.T) {
	projects := &mockProjectStore{project: &domain.Project{ID: testProjectID, UserID: "someone-else"}}
	router := newTestRouter(&mockBlogStore{}, projects)

	rec := doRequest(t, router, http.MethodGet, sourcesPath(testProjectID, testBlogID), "", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetLatestSources_MissingProject(t *testing.T) {
	router := newTestRouter(&mockBlogStore{}, &mockProjectStore{})

	rec := doRequest(t, router, http.MethodGet, sourcesPath(testProjectID, testBlogID), "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestSources_MissingBlog(t *testing.T) {
	router := newTestRouter(&mockBlogStore{}, ownedProject())

	rec := doRequest(t, router, http.MethodGet, sourcesPath(testProjectID, testBlogID), "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestSources_NoData(t *testing.T) {
	blogs := &mockBlogStore{doc: &domain.BlogDocument{ID: testBlogID, Country: "de", Title: []string{"My Blog"}}}
	router := newTestRouter(blogs, ownedProject())

	rec := doRequest(t, router, http.MethodGet, sourcesPath(testProjectID, testBlogID), "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.LatestSourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "no_data", resp.Status)
	assert.Equal(t, testBlogID, resp.BlogID)
	assert.Equal(t, "de", resp.Country)
	assert.Equal(t, "My Blog", resp.BlogTitle)
	assert.Nil(t, resp.Sources)
}

func TestGetLatestSources_ReturnsLatestSnapshots(t *testing.T) {
	generatedAt := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	blogs := &mockBlogStore{doc: &domain.BlogDocument{
		ID:      testBlogID,
		Country: "us",
		Title:   []string{"Old Title", "Current Title"},
		Outlines: []map[string]interface{}{
			{"outline": "old outline"},
			{"outline": map[string]interface{}{"sections": []interface{}{}}},
		},
		Titles: []map[string]interface{}{
			{"titles": []interface{}{"t1", "t2"}},
		},
		Categories: []map[string]interface{}{
			{"categories": []interface{}{"go", "testing"}},
		},
		SecondaryKeywords: []map[string]interface{}{
			{"keywords": []interface{}{"kw1"}},
			{"keywords": []interface{}{"kw2", "kw3"}},
		},
		PrimaryKeyword: []map[string]interface{}{
			{"keyword": "first"},
			{"keyword": "latest", "volume": float64(900)},
		},
		WordCount: []interface{}{float64(1200), float64(1800)},
		Sources: []domain.SourcesRecord{
			{SubsectionsData: "old run", Tag: "generated"},
			{
				SubsectionsData:  []interface{}{map[string]interface{}{"title": "sub"}},
				TotalSubsections: 3,
				TotalSources:     9,
				GeneratedAt:      generatedAt,
				Tag:              "generated",
			},
		},
	}}
	router := newTestRouter(blogs, ownedProject())

	rec := doRequest(t, router, http.MethodGet, sourcesPath(testProjectID, testBlogID), "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.LatestSourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 3, resp.TotalSubsections)
	assert.Equal(t, 9, resp.TotalSources)
	assert.Equal(t, "2026-02-10T09:30:00Z", resp.GeneratedAt)
	assert.Equal(t, []interface{}{map[string]interface{}{"title": "sub"}}, resp.Sources)

	assert.Equal(t, map[string]interface{}{"sections": []interface{}{}}, resp.Outline)
	assert.Equal(t, []interface{}{"t1", "t2"}, resp.Titles)
	assert.Equal(t, []interface{}{"go", "testing"}, resp.Categories)
	assert.Equal(t, []interface{}{"kw2", "kw3"}, resp.SecondaryKeywords)
	assert.Equal(t, "latest", resp.PrimaryKeyword["keyword"])
	assert.Equal(t, float64(1800), resp.WordCount)
	assert.Equal(t, "Current Title", resp.BlogTitle)
}

func TestUpdateSources_RequiresIdentity(t *testing.T) {
	router := newTestRouter(&mockBlogStore{}, ownedProject())

	rec := doRequest(t, router, http.MethodPut, sourcesPath(testProjectID, testBlogID), `{"sources":{"a":1}}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateSources_EmptySourcesRejected(t *testing.T) {
	blogs := &mockBlogStore{doc: &domain.BlogDocument{ID: testBlogID}}
	router := newTestRouter(blogs, ownedProject())

	for _, body := range []string{`{}`, `{"sources":{}}`} {
		rec := doRequest(t, router, http.MethodPut, sourcesPath(testProjectID, testBlogID), body, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Empty(t, blogs.appended)
	}
}

func TestUpdateSources_MissingBlogNothingAppended(t *testing.T) {
	blogs := &mockBlogStore{}
	router := newTestRouter(blogs, ownedProject())

	rec := doRequest(t, router, http.MethodPut, sourcesPath(testProjectID, testBlogID), `{"sources":{"a":1}}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, blogs.appended)
}

func TestUpdateSources_AppendsTaggedRecord(t *testing.T) {
	blogs := &mockBlogStore{doc: &domain.BlogDocument{ID: testBlogID}}
	router := newTestRouter(blogs, ownedProject())

	body := `{"sources":{"subsection_1":{"urls":["https://a.example"]}}}`
	rec := doRequest(t, router, http.MethodPut, sourcesPath(testProjectID, testBlogID), body, true)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, blogs.appended, 1)
	record := blogs.appended[0]
	assert.Equal(t, "updated", record.Tag)
	assert.False(t, record.GeneratedAt.IsZero())
	assert.NotNil(t, record.SubsectionsData)

	var resp responses.UpdateSourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "updated", resp.Status)
	assert.Equal(t, testBlogID, resp.BlogID)
	assert.Equal(t, "Raw sources data added to sources", resp.Message)
	assert.Contains(t, resp.Sources, "subsection_1")
}

func TestHealth_NoIdentityRequired(t *testing.T) {
	router := newTestRouter(&mockBlogStore{}, ownedProject())

	rec := doRequest(t, router, http.MethodGet, "/health", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
