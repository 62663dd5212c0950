package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// ReportStore retrieves persisted reports. Implemented by
// *service.PipelineService.
type ReportStore interface {
	GetReport(ctx context.Context, id string) (*models.StoredReport, error)
}

// ReportArchive is the object-storage archive of finished reports.
// Implemented by *service.StorageService.
type ReportArchive interface {
	IsEnabled() bool
	GetArchivedReport(ctx context.Context, id string) (*models.StoredReport, error)
	ReportPresignedURL(ctx context.Context, id string, expiry time.Duration) (string, error)
}

// ReportHandler serves persisted reports and their archive downloads.
type ReportHandler struct {
	store   ReportStore
	archive ReportArchive
}

// NewReportHandler creates a new report handler.
func NewReportHandler(store ReportStore, archive ReportArchive) *ReportHandler {
	return &ReportHandler{store: store, archive: archive}
}

// GetReportInput identifies a stored report.
type GetReportInput struct {
	ID string `path:"id" doc:"Report ID"`
}

// GetReportOutput represents a stored report response.
type GetReportOutput struct {
	Body models.StoredReport
}

// GetReport retrieves a previously produced report by ID. Reports missing
// from the database (e.g. pruned by retention) are looked up in the archive.
func (h *ReportHandler) GetReport(ctx context.Context, input *GetReportInput) (*GetReportOutput, error) {
	stored, err := h.store.GetReport(ctx, input.ID)
	if err != nil {
		return nil, NewAPIError(err)
	}
	if stored == nil && h.archive.IsEnabled() {
		stored, _ = h.archive.GetArchivedReport(ctx, input.ID)
	}
	if stored == nil {
		return nil, huma.Error404NotFound("report not found")
	}
	return &GetReportOutput{Body: *stored}, nil
}

// GetReportDownloadInput identifies the report to download.
type GetReportDownloadInput struct {
	ID string `path:"id" doc:"Report ID"`
}

// GetReportDownloadOutput represents a report download response.
type GetReportDownloadOutput struct {
	Body struct {
		ReportID    string `json:"report_id" doc:"Report ID"`
		DownloadURL string `json:"download_url" doc:"Presigned URL to download the report JSON (valid for 1 hour)"`
		ExpiresAt   string `json:"expires_at" doc:"URL expiration time"`
	}
}

// GetReportDownload returns a presigned URL for downloading an archived
// report from object storage.
func (h *ReportHandler) GetReportDownload(ctx context.Context, input *GetReportDownloadInput) (*GetReportDownloadOutput, error) {
	stored, err := h.store.GetReport(ctx, input.ID)
	if err != nil {
		return nil, NewAPIError(err)
	}
	if stored == nil {
		return nil, huma.Error404NotFound("report not found")
	}

	if !h.archive.IsEnabled() {
		return nil, huma.Error503ServiceUnavailable("report archive is not configured")
	}
	if stored.ArchivedAt == nil {
		return nil, huma.Error400BadRequest("report is not yet archived - try again shortly")
	}

	expiry := 1 * time.Hour
	downloadURL, err := h.archive.ReportPresignedURL(ctx, input.ID, expiry)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to generate download URL", err)
	}

	out := &GetReportDownloadOutput{}
	out.Body.ReportID = input.ID
	out.Body.DownloadURL = downloadURL
	out.Body.ExpiresAt = time.Now().Add(expiry).Format(time.RFC3339)
	return out, nil
}
