// ABOUTME: Tests for the identity, rate limit and request logging middleware
// ABOUTME: Uses httptest recorders and a recording logger

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogforge-app-api/core/domain"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.log(msg) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.log(msg) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.log(msg) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.log(msg) }

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireIdentity_RejectsMissingUserID(t *testing.T) {
	handler := RequireIdentity(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/projects/p/sources/d", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing caller identity")
}

func TestRequireIdentity_StoresIdentityInContext(t *testing.T) {
	var got Identity
	var ok bool
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = IdentityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/projects/p/sources/d", nil)
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-User-Email", "user@example.com")
	req.Header.Set("X-User-Name", "Test User")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "user@example.com", got.UserEmail)
	assert.Equal(t, "Test User", got.Name)
}

func TestRequireIdentity_ExemptPaths(t *testing.T) {
	handler := RequireIdentity(okHandler())

	for _, path := range []string{"/health", "/openapi.json", "/docs"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

type recordingActivityStore struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (s *recordingActivityStore) Record(ctx context.Context, entry domain.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingActivityStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestActivityMiddleware_RecordsAuthenticatedRequests(t *testing.T) {
	store := &recordingActivityStore{}
	logger := &recordingLogger{}
	handler := RequireIdentity(ActivityMiddleware(store, logger)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/projects/p/sources/d", nil)
	req.Header.Set("X-User-ID", "user-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// The write happens in the background
	require.Eventually(t, func() bool { return store.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	store.mu.Lock()
	entry := store.entries[0]
	store.mu.Unlock()
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "GET /projects/p/sources/d", entry.Endpoint)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestActivityMiddleware_SkipsAnonymousRequests(t *testing.T) {
	store := &recordingActivityStore{}
	handler := ActivityMiddleware(store, &recordingLogger{})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, store.count())
}

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("key"), "request %d", i)
	}
	assert.False(t, limiter.Allow("key"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
}

func TestRateLimiter_WindowResets(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	assert.True(t, limiter.Allow("key"))
	assert.False(t, limiter.Allow("key"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, limiter.Allow("key"))
}

func TestRateLimitMiddleware_Returns429WhenExceeded(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	handler := RateLimitMiddleware(limiter)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/projects/p/sources/d", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_KeyedByAuthenticatedUser(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	handler := RequireIdentity(RateLimitMiddleware(limiter)(okHandler()))

	// Two users behind the same address each get their own quota
	for _, user := range []string{"user-1", "user-2"} {
		req := httptest.NewRequest(http.MethodGet, "/projects/p/sources/d", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-User-ID", user)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, user)
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		realIP   string
		remote   string
		expected string
	}{
		{"forwarded chain", "1.1.1.1, 2.2.2.2", "", "3.3.3.3:80", "2.2.2.2"},
		{"single forwarded", "1.1.1.1", "", "3.3.3.3:80", "1.1.1.1"},
		{"real ip", "", "2.2.2.2", "3.3.3.3:80", "2.2.2.2"},
		{"remote addr", "", "", "3.3.3.3:80", "3.3.3.3:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.expected, extractIP(req))
		})
	}
}

func TestRequestLoggingMiddleware_SetsRequestID(t *testing.T) {
	logger := &recordingLogger{}
	var ctxID string
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), ctxID)
	assert.Contains(t, logger.messages(), "Request started")
	assert.Contains(t, logger.messages(), "Request completed")
}

func TestRequestLoggingMiddleware_LogsServerErrors(t *testing.T) {
	logger := &recordingLogger{}
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, logger.messages(), "Request failed with server error")
}

func TestResponseWriter_FlushPassthrough(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	var w http.ResponseWriter = wrapped
	flusher, ok := w.(http.Flusher)
	require.True(t, ok)

	_, err := wrapped.Write([]byte("data: x\n\n"))
	require.NoError(t, err)
	flusher.Flush()
	assert.True(t, rec.Flushed)
}
