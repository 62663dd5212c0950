package analysis

import (
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// DetectLanguage detects the language of the corpus from the first non-empty
// review text, so analysis output comes back in the reviews' own language.
// Falls back to English when nothing is detectable.
func DetectLanguage(reviews []models.RawReview) string {
	for _, review := range reviews {
		text := strings.TrimSpace(review.Text)
		if text == "" {
			continue
		}
		info := whatlanggo.Detect(text)
		if info.IsReliable() {
			return info.Lang.String()
		}
		break
	}
	return "English"
}
