package source

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/models"
	"github.com/reviewlens/reviewlens-api/internal/repository"
	"github.com/reviewlens/reviewlens-api/internal/scrape"
)

// providerSpec describes one scraping-job-backed review provider.
type providerSpec struct {
	kind     models.SourceKind
	name     string             // used in user-facing error messages
	urlToken string             // case-insensitive substring a valid URL must contain
	scale    scrape.RatingScale
	maxPolls int                // poll budget for this provider's runs
	payload  func(url string) map[string]any
}

func providerConfigs(cfg *config.Config) []providerSpec {
	return []providerSpec{
		{
			kind:     models.SourceMapsListing,
			name:     "maps listing",
			urlToken: "google",
			scale:    scrape.ScaleFiveStar,
			maxPolls: cfg.MapsMaxPolls,
			payload: func(url string) map[string]any {
				return map[string]any{
					"startUrls":   []map[string]string{{"url": url}},
					"maxReviews":  100,
					"reviewsSort": "newest",
					"language":    "en",
				}
			},
		},
		{
			kind:     models.SourceHospitality,
			name:     "Tripadvisor",
			urlToken: "tripadvisor",
			scale:    scrape.ScaleFiveStar,
			maxPolls: cfg.MaxPolls,
			payload: func(url string) map[string]any {
				return map[string]any{
					"startUrls":      []map[string]string{{"url": url}},
					"maxItems":       100,
					"language":       "en",
					"includeRatings": true,
				}
			},
		},
		{
			kind:     models.SourceBooking,
			name:     "Booking.com",
			urlToken: "booking",
			scale:    scrape.ScaleTenPoint,
			maxPolls: cfg.MaxPolls,
			payload: func(url string) map[string]any {
				return map[string]any{
					"startUrls":          []map[string]string{{"url": url}},
					"maxReviewsPerHotel": 100,
					"sortReviewsBy":      "f_recent_desc",
					"proxyConfig":        map[string]any{"useProxy": true},
				}
			},
		},
	}
}

// providerFetcher is the shared fetch path for scraping-job providers:
// validate URL, consult the cache, run the job, normalize, cache the result.
type providerFetcher struct {
	spec   providerSpec
	cfg    *config.Config
	cache  repository.ReviewCacheRepository
	runner ScrapeRunner
	logger *slog.Logger
}

func newProviderFetcher(
	spec providerSpec,
	cfg *config.Config,
	cache repository.ReviewCacheRepository,
	runner ScrapeRunner,
	logger *slog.Logger,
) *providerFetcher {
	return &providerFetcher{
		spec:   spec,
		cfg:    cfg,
		cache:  cache,
		runner: runner,
		logger: logger.With("component", "source", "provider", string(spec.kind)),
	}
}

// Fetch runs the provider's cache-then-scrape path. Configuration and
// validation failures surface before any network call.
func (f *providerFetcher) Fetch(ctx context.Context, ref models.SourceReference) ([]models.RawReview, error) {
	if !f.cfg.HasScrapeCredentials() {
		return nil, models.NewConfigurationError("SCRAPE_API_TOKEN is not set")
	}
	if ref.URL == "" || !strings.Contains(strings.ToLower(ref.URL), f.spec.urlToken) {
		return nil, models.NewValidationError("%q does not look like a %s URL", ref.URL, f.spec.name)
	}

	if reviews := f.cachedReviews(ctx, ref.URL); reviews != nil {
		return reviews, nil
	}

	items, err := f.runner.RunAndFetch(ctx, f.spec.payload(ref.URL), f.spec.maxPolls)
	if err != nil {
		return nil, err
	}

	reviews := scrape.ExtractReviews(items, f.spec.scale)
	if len(reviews) == 0 {
		return nil, models.NewExtractionEmptyError(f.spec.name)
	}

	if err := f.cache.Put(ctx, ref.URL, reviews); err != nil {
		// Fail open: a broken cache degrades to re-scraping
		f.logger.Warn("failed to cache reviews", "url", ref.URL, "error", err)
	}

	return reviews, nil
}

// cachedReviews returns a usable cached review set or nil. Lookup errors and
// expired entries both read as misses.
func (f *providerFetcher) cachedReviews(ctx context.Context, url string) []models.RawReview {
	entry, err := f.cache.Get(ctx, url)
	if err != nil {
		f.logger.Warn("cache lookup failed", "url", url, "error", err)
		return nil
	}
	if entry == nil || len(entry.Reviews) == 0 {
		return nil
	}
	if f.cfg.CacheTTL > 0 && time.Since(entry.CreatedAt) > f.cfg.CacheTTL {
		f.logger.Info("cache entry expired", "url", url, "age", time.Since(entry.CreatedAt))
		return nil
	}

	f.logger.Info("cache hit", "url", url, "reviews", len(entry.Reviews))
	return entry.Reviews
}
