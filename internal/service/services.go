// Package service contains the business logic layer.
package service

import (
	"log/slog"

	"github.com/reviewlens/reviewlens-api/internal/analysis"
	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/repository"
	"github.com/reviewlens/reviewlens-api/internal/scrape"
	"github.com/reviewlens/reviewlens-api/internal/source"
)

// Services bundles all services for dependency injection.
type Services struct {
	Pipeline *PipelineService
	Storage  *StorageService
}

// NewServices wires the full pipeline: scrape client, source fetchers,
// analysis clients and report assembly, all from one config.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	storage, err := NewStorageService(cfg, logger)
	if err != nil {
		return nil, err
	}

	scrapeClient := scrape.NewClient(cfg.ScrapeAPIURL, cfg.ScrapeAPIToken, logger)
	runner := scrape.NewRunner(scrapeClient, cfg.PollInterval, logger)
	fetchers := source.NewFetchers(cfg, repos.ReviewCache, runner, &source.HeuristicExtractor{}, logger)

	analysisClient := analysis.NewClient(cfg, logger)
	pipeline := NewPipelineService(
		cfg,
		fetchers,
		analysis.NewBatchAnalyzer(cfg, analysisClient, logger),
		analysis.NewHolisticAnalyzer(cfg, analysisClient, logger),
		repos.Report,
		logger,
	)

	return &Services{
		Pipeline: pipeline,
		Storage:  storage,
	}, nil
}
