// Package repository provides data access for the review cache and stored
// reports.
package repository

import (
	"context"
	"database/sql"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// ReviewCacheRepository stores extracted review sets keyed by source URL.
// Upsert semantics: one entry per URL, last write wins. Lookups fail open -
// an error reads as a miss at the call site.
type ReviewCacheRepository interface {
	Get(ctx context.Context, url string) (*models.CacheEntry, error)
	Put(ctx context.Context, url string, reviews []models.RawReview) error
	DeleteByURL(ctx context.Context, url string) error
}

// ReportRepository persists pipeline results.
type ReportRepository interface {
	Create(ctx context.Context, report *models.StoredReport) error
	GetByID(ctx context.Context, id string) (*models.StoredReport, error)
	ListUnarchived(ctx context.Context, limit int) ([]*models.StoredReport, error)
	MarkArchived(ctx context.Context, id string) error
}

// Repositories bundles all repositories for dependency injection.
type Repositories struct {
	ReviewCache ReviewCacheRepository
	Report      ReportRepository
}

// NewRepositories creates all repositories backed by the given database.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		ReviewCache: NewSQLiteReviewCacheRepository(db),
		Report:      NewSQLiteReportRepository(db),
	}
}
