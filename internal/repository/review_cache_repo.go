package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// SQLiteReviewCacheRepository implements ReviewCacheRepository for SQLite/libsql.
type SQLiteReviewCacheRepository struct {
	db *sql.DB
}

// NewSQLiteReviewCacheRepository creates a new SQLite review cache repository.
func NewSQLiteReviewCacheRepository(db *sql.DB) *SQLiteReviewCacheRepository {
	return &SQLiteReviewCacheRepository{db: db}
}

// Get returns the cache entry for a URL, or nil on a miss.
func (r *SQLiteReviewCacheRepository) Get(ctx context.Context, url string) (*models.CacheEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT url, reviews_json, created_at
		FROM review_cache
		WHERE url = ?
	`, url)

	var entry models.CacheEntry
	var reviewsJSON, createdAt string

	err := row.Scan(&entry.URL, &reviewsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(reviewsJSON), &entry.Reviews); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", url, err)
	}
	entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &entry, nil
}

// Put upserts the review set for a URL. Whole-value replacement, so
// concurrent writers race safely with last-write-wins.
func (r *SQLiteReviewCacheRepository) Put(ctx context.Context, url string, reviews []models.RawReview) error {
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO review_cache (url, reviews_json, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			reviews_json = excluded.reviews_json,
			created_at = excluded.created_at
	`, url, string(reviewsJSON), time.Now().UTC().Format(time.RFC3339))

	return err
}

// DeleteByURL removes the cache entry for a URL, if any.
func (r *SQLiteReviewCacheRepository) DeleteByURL(ctx context.Context, url string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM review_cache WHERE url = ?`, url)
	return err
}
