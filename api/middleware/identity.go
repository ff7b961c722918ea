// ABOUTME: Caller identity middleware and best-effort activity recording
// ABOUTME: Reads gateway-provided identity headers and logs request activity

package middleware

import (
	"context"
	"net/http"
	"time"

	"blogforge-app-api/core/domain"
	"blogforge-app-api/core/interfaces"
)

// Identity is the authenticated caller, as asserted by the upstream
// gateway. Token verification happens before requests reach this service.
type Identity struct {
	UserID    string
	UserEmail string
	Name      string
}

type identityKey struct{}

// IdentityFrom returns the caller identity stored by RequireIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// identityExempt lists paths served without caller identity.
var identityExempt = map[string]bool{
	"/health":       true,
	"/openapi.json": true,
	"/openapi.yaml": true,
	"/docs":         true,
}

// RequireIdentity rejects requests without identity headers and stores the
// identity in the request context for handlers downstream.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityExempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		id := Identity{
			UserID:    r.Header.Get("X-User-ID"),
			UserEmail: r.Header.Get("X-User-Email"),
			Name:      r.Header.Get("X-User-Name"),
		}
		if id.UserID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized","message":"Missing caller identity"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// ActivityMiddleware records one activity row per authenticated request.
// The write runs in the background; request handling never waits on it.
func ActivityMiddleware(store interfaces.ActivityStore, logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := IdentityFrom(r.Context()); ok {
				entry := domain.ActivityEntry{
					UserID:    id.UserID,
					UserEmail: id.UserEmail,
					Name:      id.Name,
					Endpoint:  r.Method + " " + r.URL.Path,
					CreatedAt: time.Now().UTC(),
				}
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					// Record logs its own failures; activity is best-effort.
					_ = store.Record(ctx, entry)
				}()
			}

			next.ServeHTTP(w, r)
		})
	}
}
