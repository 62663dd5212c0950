// Package source turns caller-supplied source references into normalized
// review lists. One fetcher per source kind; the three scraping-job kinds
// share the cache-then-run path.
package source

import (
	"context"
	"log/slog"

	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/models"
	"github.com/reviewlens/reviewlens-api/internal/repository"
)

// ScrapeRunner executes one scraping-job run and returns the raw dataset
// items. Implemented by scrape.Runner; faked in tests.
type ScrapeRunner interface {
	RunAndFetch(ctx context.Context, payload map[string]any, maxPolls int) ([]byte, error)
}

// Fetcher produces reviews for one source kind.
type Fetcher interface {
	Fetch(ctx context.Context, ref models.SourceReference) ([]models.RawReview, error)
}

// Fetchers dispatches a source reference to the fetcher for its kind.
type Fetchers struct {
	byKind map[models.SourceKind]Fetcher
}

// NewFetchers wires up every source fetcher.
func NewFetchers(
	cfg *config.Config,
	cache repository.ReviewCacheRepository,
	runner ScrapeRunner,
	extractor ReviewExtractor,
	logger *slog.Logger,
) *Fetchers {
	if logger == nil {
		logger = slog.Default()
	}

	byKind := map[models.SourceKind]Fetcher{
		models.SourceText:        NewTextFetcher(),
		models.SourceSpreadsheet: NewSpreadsheetFetcher(),
		models.SourceWeb:         NewWebFetcher(extractor, logger),
	}
	for _, p := range providerConfigs(cfg) {
		byKind[p.kind] = newProviderFetcher(p, cfg, cache, runner, logger)
	}

	return &Fetchers{byKind: byKind}
}

// Fetch resolves and runs the fetcher for the reference's kind.
func (f *Fetchers) Fetch(ctx context.Context, ref models.SourceReference) ([]models.RawReview, error) {
	fetcher, ok := f.byKind[ref.Kind]
	if !ok {
		return nil, models.NewValidationError("unsupported source kind %q", ref.Kind)
	}
	return fetcher.Fetch(ctx, ref)
}
