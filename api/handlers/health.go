// ABOUTME: Health check handler
// ABOUTME: Reports service liveness for load balancers and orchestrators

package handlers

import (
	"context"
	"net/http"

	"blogforge-app-api/api/dto/responses"
	"github.com/danielgtaylor/huma/v2"
)

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, h.Health)
}

// HealthOutput defines the output for the Health operation
type HealthOutput struct {
	Body responses.HealthResponse
}

// Health handles GET /health
func (h *HealthHandler) Health(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{
		Body: responses.HealthResponse{
			Status:  "ok",
			Version: h.version,
		},
	}, nil
}
