package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

type stubReportStore struct {
	report *models.StoredReport
	err    error
}

func (s *stubReportStore) GetReport(_ context.Context, _ string) (*models.StoredReport, error) {
	return s.report, s.err
}

type stubReportArchive struct {
	enabled  bool
	archived *models.StoredReport
	url      string
	urlErr   error
}

func (a *stubReportArchive) IsEnabled() bool { return a.enabled }

func (a *stubReportArchive) GetArchivedReport(_ context.Context, _ string) (*models.StoredReport, error) {
	if a.archived == nil {
		return nil, errors.New("not found in archive")
	}
	return a.archived, nil
}

func (a *stubReportArchive) ReportPresignedURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	return a.url, a.urlErr
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	se, ok := err.(interface{ GetStatus() int })
	if !ok {
		t.Fatalf("error %v carries no status", err)
	}
	return se.GetStatus()
}

func archivedReport(id string) *models.StoredReport {
	at := time.Now().UTC()
	return &models.StoredReport{
		ID:         id,
		SourceKind: models.SourceMapsListing,
		Report:     &models.AggregateReport{ReviewCount: 5},
		CreatedAt:  at,
		ArchivedAt: &at,
	}
}

func TestGetReportFallsBackToArchive(t *testing.T) {
	h := NewReportHandler(
		&stubReportStore{},
		&stubReportArchive{enabled: true, archived: archivedReport("r1")},
	)

	out, err := h.GetReport(context.Background(), &GetReportInput{ID: "r1"})
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if out.Body.ID != "r1" || out.Body.Report.ReviewCount != 5 {
		t.Errorf("unexpected body: %+v", out.Body)
	}
}

func TestGetReportMissingEverywhere(t *testing.T) {
	h := NewReportHandler(&stubReportStore{}, &stubReportArchive{enabled: true})

	_, err := h.GetReport(context.Background(), &GetReportInput{ID: "gone"})
	if status := statusOf(t, err); status != 404 {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestGetReportArchiveDisabledIsPlainMiss(t *testing.T) {
	h := NewReportHandler(&stubReportStore{}, &stubReportArchive{enabled: false})

	_, err := h.GetReport(context.Background(), &GetReportInput{ID: "gone"})
	if status := statusOf(t, err); status != 404 {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestGetReportDownload(t *testing.T) {
	tests := []struct {
		name       string
		store      *stubReportStore
		archive    *stubReportArchive
		wantStatus int
	}{
		{
			name:       "report missing",
			store:      &stubReportStore{},
			archive:    &stubReportArchive{enabled: true},
			wantStatus: 404,
		},
		{
			name:       "archive disabled",
			store:      &stubReportStore{report: archivedReport("r1")},
			archive:    &stubReportArchive{enabled: false},
			wantStatus: 503,
		},
		{
			name: "not yet archived",
			store: &stubReportStore{report: &models.StoredReport{
				ID:         "r1",
				SourceKind: models.SourceText,
				CreatedAt:  time.Now().UTC(),
			}},
			archive:    &stubReportArchive{enabled: true},
			wantStatus: 400,
		},
		{
			name:       "presign failure",
			store:      &stubReportStore{report: archivedReport("r1")},
			archive:    &stubReportArchive{enabled: true, urlErr: errors.New("s3 down")},
			wantStatus: 500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(tt.store, tt.archive)
			_, err := h.GetReportDownload(context.Background(), &GetReportDownloadInput{ID: "r1"})
			if status := statusOf(t, err); status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestGetReportDownloadReturnsPresignedURL(t *testing.T) {
	h := NewReportHandler(
		&stubReportStore{report: archivedReport("r9")},
		&stubReportArchive{enabled: true, url: "https://bucket.example/reports/r9.json?sig=abc"},
	)

	out, err := h.GetReportDownload(context.Background(), &GetReportDownloadInput{ID: "r9"})
	if err != nil {
		t.Fatalf("GetReportDownload() error = %v", err)
	}
	if out.Body.ReportID != "r9" {
		t.Errorf("ReportID = %q", out.Body.ReportID)
	}
	if out.Body.DownloadURL != "https://bucket.example/reports/r9.json?sig=abc" {
		t.Errorf("DownloadURL = %q", out.Body.DownloadURL)
	}
	if _, err := time.Parse(time.RFC3339, out.Body.ExpiresAt); err != nil {
		t.Errorf("ExpiresAt %q is not RFC3339: %v", out.Body.ExpiresAt, err)
	}
}
