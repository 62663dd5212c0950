package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

const samplePage = `<html><body>
	<nav class="review-nav">Reviews</nav>
	<div class="review-text">The staff went out of their way to help us.</div>
	<div class="review-text">Rooms were dated and the wifi barely worked.</div>
	<div class="review-text">Rooms were dated and the wifi barely worked.</div>
</body></html>`

func TestHeuristicExtractor(t *testing.T) {
	texts := (&HeuristicExtractor{}).Extract(samplePage)
	// The nav label is too short and the duplicate collapses
	if len(texts) != 2 {
		t.Fatalf("expected 2 reviews, got %d: %v", len(texts), texts)
	}
}

func TestHeuristicExtractorNoMatches(t *testing.T) {
	if texts := (&HeuristicExtractor{}).Extract("<html><body><p>hi</p></body></html>"); texts != nil {
		t.Errorf("expected nil, got %v", texts)
	}
}

func TestWebFetcherExtractsReviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, samplePage)
	}))
	defer server.Close()

	fetcher := NewWebFetcher(nil, nil)
	reviews, err := fetcher.Fetch(context.Background(), models.SourceReference{Kind: models.SourceWeb, URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	if *reviews[0].Rating != 3 || reviews[0].Date != models.DateUnknown {
		t.Errorf("expected midpoint defaults, got %+v", reviews[0])
	}
}

func TestWebFetcherInvalidURL(t *testing.T) {
	fetcher := NewWebFetcher(nil, nil)
	_, err := fetcher.Fetch(context.Background(), models.SourceReference{URL: "not a url"})
	if models.KindOf(err) != models.ErrKindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
