// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reviewlens/reviewlens-api/internal/version"
)

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
}

// HealthCheck returns the health status of the API.
func HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	out := &HealthCheckOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = version.Get().Version
	return out, nil
}

// LivezOutput represents the liveness probe response.
type LivezOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Livez is the Kubernetes liveness probe.
func Livez(ctx context.Context, input *struct{}) (*LivezOutput, error) {
	out := &LivezOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// DBPinger checks database connectivity. Satisfied by *sql.DB; mocked in
// tests.
type DBPinger interface {
	Ping() error
}

// ReadyzHandler checks database connectivity for the readiness probe.
type ReadyzHandler struct {
	db DBPinger
}

// NewReadyzHandler creates a readiness probe handler.
func NewReadyzHandler(db DBPinger) *ReadyzHandler {
	return &ReadyzHandler{db: db}
}

// ReadyzOutput represents the readiness probe response.
type ReadyzOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Readyz is the Kubernetes readiness probe.
func (h *ReadyzHandler) Readyz(ctx context.Context, input *struct{}) (*ReadyzOutput, error) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			return nil, huma.Error503ServiceUnavailable("database not reachable")
		}
	}
	out := &ReadyzOutput{}
	out.Body.Status = "ok"
	return out, nil
}
