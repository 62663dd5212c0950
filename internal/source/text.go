package source

import (
	"context"
	"strings"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// TextFetcher treats pasted raw text as one review per non-blank line.
// Ratings default to the scale midpoint and dates are unknown.
type TextFetcher struct{}

// NewTextFetcher creates a text fetcher.
func NewTextFetcher() *TextFetcher {
	return &TextFetcher{}
}

// Fetch splits the raw input on newlines, dropping blank lines.
func (f *TextFetcher) Fetch(_ context.Context, ref models.SourceReference) ([]models.RawReview, error) {
	var reviews []models.RawReview
	for _, line := range strings.Split(ref.RawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		reviews = append(reviews, models.RawReview{
			Text:   line,
			Rating: models.Float64Ptr(3),
			Date:   models.DateUnknown,
		})
	}

	if len(reviews) == 0 {
		return nil, models.NewValidationError("no review text provided")
	}
	return reviews, nil
}
