package source

import (
	"context"
	"testing"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

func TestTextFetcherSplitsLines(t *testing.T) {
	fetcher := NewTextFetcher()
	reviews, err := fetcher.Fetch(context.Background(), models.SourceReference{
		Kind:    models.SourceText,
		RawText: "Great service!\n\n  Too expensive.  \nIt was okay.\n",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(reviews))
	}
	for i, want := range []string{"Great service!", "Too expensive.", "It was okay."} {
		if reviews[i].Text != want {
			t.Errorf("review %d: expected %q, got %q", i, want, reviews[i].Text)
		}
		if *reviews[i].Rating != 3 {
			t.Errorf("review %d: expected midpoint rating, got %v", i, *reviews[i].Rating)
		}
		if reviews[i].Date != models.DateUnknown {
			t.Errorf("review %d: expected Unknown date, got %q", i, reviews[i].Date)
		}
	}
}

func TestTextFetcherEmptyInput(t *testing.T) {
	fetcher := NewTextFetcher()
	_, err := fetcher.Fetch(context.Background(), models.SourceReference{RawText: "  \n \n"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if models.KindOf(err) != models.ErrKindValidation {
		t.Errorf("expected validation kind, got %v", models.KindOf(err))
	}
}
