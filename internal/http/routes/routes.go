// Package routes registers all API routes with a Huma API instance.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/reviewlens/reviewlens-api/internal/http/handlers"
	"github.com/reviewlens/reviewlens-api/internal/repository"
	"github.com/reviewlens/reviewlens-api/internal/service"
)

// Handlers bundles the route handlers.
type Handlers struct {
	Analyze *handlers.AnalyzeHandler
	Report  *handlers.ReportHandler
	Cache   *handlers.CacheHandler
}

// NewHandlers wires handlers from the service layer.
func NewHandlers(services *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Analyze: handlers.NewAnalyzeHandler(services.Pipeline),
		Report:  handlers.NewReportHandler(services.Pipeline, services.Storage),
		Cache:   handlers.NewCacheHandler(repos.ReviewCache),
	}
}

// Register registers the public API surface.
func Register(api huma.API, h *Handlers) {
	huma.Get(api, "/v1/health", handlers.HealthCheck)

	huma.Register(api, huma.Operation{
		OperationID: "analyze",
		Method:      "POST",
		Path:        "/v1/analyze",
		Summary:     "Analyze a review source",
		Description: "Fetches reviews from the given source, runs sentiment and theme analysis and returns the aggregate report.",
		Tags:        []string{"Analysis"},
	}, h.Analyze.Analyze)

	huma.Register(api, huma.Operation{
		OperationID: "getReport",
		Method:      "GET",
		Path:        "/v1/reports/{id}",
		Summary:     "Get a stored report",
		Tags:        []string{"Reports"},
	}, h.Report.GetReport)

	huma.Register(api, huma.Operation{
		OperationID: "downloadReport",
		Method:      "GET",
		Path:        "/v1/reports/{id}/download",
		Summary:     "Get a presigned download URL for an archived report",
		Tags:        []string{"Reports"},
	}, h.Report.GetReportDownload)

	huma.Register(api, huma.Operation{
		OperationID: "invalidateCache",
		Method:      "DELETE",
		Path:        "/v1/cache",
		Summary:     "Invalidate cached reviews for a URL",
		Tags:        []string{"Cache"},
	}, h.Cache.InvalidateCache)
}
