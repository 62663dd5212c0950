package repository

import (
	"context"
	"testing"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

func TestReviewCacheGetMiss(t *testing.T) {
	repo := NewSQLiteReviewCacheRepository(setupTestDB(t))

	entry, err := repo.Get(context.Background(), "https://example.com/unknown")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil on miss, got %+v", entry)
	}
}

func TestReviewCachePutGetRoundTrip(t *testing.T) {
	repo := NewSQLiteReviewCacheRepository(setupTestDB(t))
	ctx := context.Background()

	reviews := []models.RawReview{
		{Text: "Lovely stay", Rating: models.Float64Ptr(5), Date: "2026-02-01"},
		{Text: "Noisy room", Rating: nil, Date: models.DateUnknown},
	}
	if err := repo.Put(ctx, "https://booking.com/hotel/x", reviews); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entry, err := repo.Get(ctx, "https://booking.com/hotel/x")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry == nil {
		t.Fatal("expected cache hit")
	}
	if len(entry.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(entry.Reviews))
	}
	if entry.Reviews[0].Text != "Lovely stay" || *entry.Reviews[0].Rating != 5 {
		t.Errorf("first review = %+v", entry.Reviews[0])
	}
	if entry.Reviews[1].Rating != nil {
		t.Errorf("nil rating should survive the round trip, got %v", *entry.Reviews[1].Rating)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestReviewCachePutIsUpsert(t *testing.T) {
	repo := NewSQLiteReviewCacheRepository(setupTestDB(t))
	ctx := context.Background()
	url := "https://tripadvisor.com/hotel/y"

	if err := repo.Put(ctx, url, []models.RawReview{{Text: "old", Date: models.DateUnknown}}); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := repo.Put(ctx, url, []models.RawReview{{Text: "new", Date: models.DateUnknown}}); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	entry, err := repo.Get(ctx, url)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(entry.Reviews) != 1 || entry.Reviews[0].Text != "new" {
		t.Errorf("last write should win, got %+v", entry.Reviews)
	}
}

func TestReviewCacheDeleteByURL(t *testing.T) {
	repo := NewSQLiteReviewCacheRepository(setupTestDB(t))
	ctx := context.Background()
	url := "https://maps.google.com/place/z"

	if err := repo.Put(ctx, url, []models.RawReview{{Text: "cached", Date: models.DateUnknown}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := repo.DeleteByURL(ctx, url); err != nil {
		t.Fatalf("DeleteByURL() error = %v", err)
	}

	entry, err := repo.Get(ctx, url)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry != nil {
		t.Errorf("expected miss after delete, got %+v", entry)
	}

	// Deleting a URL that was never cached is not an error
	if err := repo.DeleteByURL(ctx, "https://maps.google.com/place/never"); err != nil {
		t.Errorf("DeleteByURL() on absent entry = %v", err)
	}
}
