package source

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// ReviewExtractor pulls review text strings out of a raw HTML document.
// The default implementation is heuristic; callers can plug in their own.
type ReviewExtractor interface {
	Extract(html string) []string
}

// WebFetcher scrapes an ad-hoc URL and extracts review text from the page.
// Extracted reviews carry the midpoint rating and an unknown date.
type WebFetcher struct {
	extractor ReviewExtractor
	logger    *slog.Logger
}

// NewWebFetcher creates a web fetcher. A nil extractor falls back to the
// heuristic one.
func NewWebFetcher(extractor ReviewExtractor, logger *slog.Logger) *WebFetcher {
	if extractor == nil {
		extractor = &HeuristicExtractor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebFetcher{
		extractor: extractor,
		logger:    logger.With("component", "web_fetcher"),
	}
}

// Fetch downloads the page and runs the review extractor over it.
func (f *WebFetcher) Fetch(ctx context.Context, ref models.SourceReference) ([]models.RawReview, error) {
	parsed, err := url.Parse(ref.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, models.NewValidationError("invalid URL %q", ref.URL)
	}

	var body []byte
	collector := colly.NewCollector(colly.StdlibContext(ctx))
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := collector.Visit(ref.URL); err != nil {
		return nil, models.NewUpstreamJobError("failed to fetch page", err)
	}
	collector.Wait()

	texts := f.extractor.Extract(string(body))
	f.logger.Info("extracted page reviews", "url", ref.URL, "count", len(texts))

	if len(texts) == 0 {
		return nil, models.NewExtractionEmptyError("web")
	}

	reviews := make([]models.RawReview, 0, len(texts))
	for _, text := range texts {
		reviews = append(reviews, models.RawReview{
			Text:   text,
			Rating: models.Float64Ptr(3),
			Date:   models.DateUnknown,
		})
	}
	return reviews, nil
}

// HeuristicExtractor finds review-looking blocks by class name conventions.
type HeuristicExtractor struct{}

// Candidate selectors, most specific first. The class*= forms catch the
// BEM-style names review sites tend to use.
var reviewSelectors = []string{
	"[itemprop=reviewBody]",
	"[class*=review-text]",
	"[class*=review-body]",
	"[class*=review-content]",
	"[data-review]",
	"[class*=review]",
	"blockquote",
}

// Extract returns the text of review-like elements, shortest selector that
// yields anything wins.
func (e *HeuristicExtractor) Extract(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	for _, selector := range reviewSelectors {
		var texts []string
		seen := make(map[string]bool)
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			// Skip chrome: nav labels, star widgets, one-word snippets
			if len(text) < 20 || seen[text] {
				return
			}
			seen[text] = true
			texts = append(texts, text)
		})
		if len(texts) > 0 {
			return texts
		}
	}
	return nil
}
