package source

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/models"
)

type fakeRunner struct {
	items []byte
	err   error
	runs  int
}

func (r *fakeRunner) RunAndFetch(_ context.Context, _ map[string]any, _ int) ([]byte, error) {
	r.runs++
	if r.err != nil {
		return nil, r.err
	}
	return r.items, nil
}

type memoryCache struct {
	entries map[string]*models.CacheEntry
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*models.CacheEntry)}
}

func (c *memoryCache) Get(_ context.Context, url string) (*models.CacheEntry, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[url], nil
}

func (c *memoryCache) Put(_ context.Context, url string, reviews []models.RawReview) error {
	c.entries[url] = &models.CacheEntry{URL: url, Reviews: reviews, CreatedAt: time.Now()}
	return nil
}

func (c *memoryCache) DeleteByURL(_ context.Context, url string) error {
	delete(c.entries, url)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ScrapeAPIToken: "token",
		MaxPolls:       60,
		MapsMaxPolls:   30,
	}
}

func mapsFetcher(cfg *config.Config, cache *memoryCache, runner *fakeRunner) *providerFetcher {
	spec := providerConfigs(cfg)[0]
	return newProviderFetcher(spec, cfg, cache, runner, slog.Default())
}

func TestProviderFetcherCacheIdempotence(t *testing.T) {
	cfg := testConfig()
	cache := newMemoryCache()
	runner := &fakeRunner{items: []byte(`[{"text":"Great","rating":5,"date":"2024-05-01"}]`)}
	fetcher := mapsFetcher(cfg, cache, runner)

	ref := models.SourceReference{Kind: models.SourceMapsListing, URL: "https://www.google.com/maps/place/x"}

	first, err := fetcher.Fetch(context.Background(), ref)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := fetcher.Fetch(context.Background(), ref)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if runner.runs != 1 {
		t.Errorf("expected exactly 1 scrape run, got %d", runner.runs)
	}
	if len(first) != len(second) {
		t.Fatalf("cached result differs in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text || first[i].Date != second[i].Date || *first[i].Rating != *second[i].Rating {
			t.Errorf("review %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestProviderFetcherMissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.ScrapeAPIToken = ""
	runner := &fakeRunner{}
	fetcher := mapsFetcher(cfg, newMemoryCache(), runner)

	_, err := fetcher.Fetch(context.Background(), models.SourceReference{URL: "https://www.google.com/maps/place/x"})
	if models.KindOf(err) != models.ErrKindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if runner.runs != 0 {
		t.Errorf("expected no scrape runs, got %d", runner.runs)
	}
}

func TestProviderFetcherWrongProviderURL(t *testing.T) {
	runner := &fakeRunner{}
	fetcher := mapsFetcher(testConfig(), newMemoryCache(), runner)

	_, err := fetcher.Fetch(context.Background(), models.SourceReference{URL: "https://www.tripadvisor.com/Hotel"})
	if models.KindOf(err) != models.ErrKindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if runner.runs != 0 {
		t.Errorf("expected no scrape runs, got %d", runner.runs)
	}
}

func TestProviderFetcherEmptyExtraction(t *testing.T) {
	runner := &fakeRunner{items: []byte(`[{"irrelevant": true}]`)}
	fetcher := mapsFetcher(testConfig(), newMemoryCache(), runner)

	_, err := fetcher.Fetch(context.Background(), models.SourceReference{URL: "https://maps.google.com/place/x"})
	if models.KindOf(err) != models.ErrKindExtractionEmpty {
		t.Fatalf("expected extraction empty error, got %v", err)
	}
}

func TestProviderFetcherCacheLookupFailsOpen(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = context.DeadlineExceeded
	runner := &fakeRunner{items: []byte(`[{"text":"Fine","rating":4}]`)}
	fetcher := mapsFetcher(testConfig(), cache, runner)

	reviews, err := fetcher.Fetch(context.Background(), models.SourceReference{URL: "https://maps.google.com/place/x"})
	if err != nil {
		t.Fatalf("expected fetch to fall back to scraping, got %v", err)
	}
	if len(reviews) != 1 || runner.runs != 1 {
		t.Errorf("expected scrape fallback, reviews=%d runs=%d", len(reviews), runner.runs)
	}
}

func TestProviderFetcherExpiredCacheEntryRescrapes(t *testing.T) {
	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	cache := newMemoryCache()
	cache.entries["https://maps.google.com/place/x"] = &models.CacheEntry{
		URL:       "https://maps.google.com/place/x",
		Reviews:   []models.RawReview{{Text: "stale", Date: models.DateUnknown}},
		CreatedAt: time.Now().Add(-time.Hour),
	}
	runner := &fakeRunner{items: []byte(`[{"text":"fresh","rating":4}]`)}
	fetcher := mapsFetcher(cfg, cache, runner)

	reviews, err := fetcher.Fetch(context.Background(), models.SourceReference{URL: "https://maps.google.com/place/x"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if runner.runs != 1 {
		t.Errorf("expected re-scrape of expired entry, runs=%d", runner.runs)
	}
	if len(reviews) != 1 || reviews[0].Text != "fresh" {
		t.Errorf("expected fresh reviews, got %+v", reviews)
	}
}

func TestBookingFetcherUsesTenPointScale(t *testing.T) {
	cfg := testConfig()
	spec := providerConfigs(cfg)[2]
	runner := &fakeRunner{items: []byte(`[{"reviews":[{"text":"Good location","rating":7}]}]`)}
	fetcher := newProviderFetcher(spec, cfg, newMemoryCache(), runner, slog.Default())

	reviews, err := fetcher.Fetch(context.Background(), models.SourceReference{URL: "https://www.booking.com/hotel/x"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if *reviews[0].Rating != 4 { // ceil(7/2)
		t.Errorf("expected remapped rating 4, got %v", *reviews[0].Rating)
	}
}
