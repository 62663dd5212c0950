package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/analysis"
	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/models"
	"github.com/reviewlens/reviewlens-api/internal/report"
	"github.com/reviewlens/reviewlens-api/internal/repository"
)

// SourceFetcher resolves a source reference into normalized reviews.
// Implemented by source.Fetchers.
type SourceFetcher interface {
	Fetch(ctx context.Context, ref models.SourceReference) ([]models.RawReview, error)
}

// ReviewAnalyzer produces per-review analyses for at most Cap() reviews.
type ReviewAnalyzer interface {
	Analyze(ctx context.Context, reviews []models.RawReview, language string) []models.ReviewAnalysis
	Cap() int
}

// CorpusAnalyzer produces the single holistic report. Never fails.
type CorpusAnalyzer interface {
	Analyze(ctx context.Context, reviews []models.RawReview, ratings []float64) models.HolisticReport
}

// PipelineService runs the full ingest-analyze-assemble pipeline for one
// source reference.
type PipelineService struct {
	fetcher      SourceFetcher
	batch        ReviewAnalyzer
	holistic     CorpusAnalyzer
	extrapolator *analysis.Extrapolator
	reports      repository.ReportRepository
	timeout      time.Duration
	logger       *slog.Logger
}

// NewPipelineService creates the pipeline orchestrator.
func NewPipelineService(
	cfg *config.Config,
	fetcher SourceFetcher,
	batch ReviewAnalyzer,
	holistic CorpusAnalyzer,
	reports repository.ReportRepository,
	logger *slog.Logger,
) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.PipelineTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &PipelineService{
		fetcher:      fetcher,
		batch:        batch,
		holistic:     holistic,
		extrapolator: analysis.NewExtrapolator(time.Now().UnixNano()),
		reports:      reports,
		timeout:      timeout,
		logger:       logger.With("component", "pipeline"),
	}
}

// Analyze runs one end-to-end pipeline invocation: fetch, analyze, assemble,
// persist. Fetch errors surface to the caller; analysis failures degrade to
// defaults and never do.
func (s *PipelineService) Analyze(ctx context.Context, ref models.SourceReference) (*models.StoredReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	reviews, err := s.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	dates := dateColumn(reviews)
	ratings := ratingColumn(ref.Kind, reviews)
	language := analysis.DetectLanguage(reviews)

	s.logger.Info("source fetched",
		"kind", ref.Kind,
		"review_count", len(reviews),
		"rated_count", len(ratings),
		"language", language,
	)

	holistic := s.holistic.Analyze(ctx, reviews, ratings)

	analyses := s.batch.Analyze(ctx, reviews, language)
	if remainder := len(reviews) - len(analyses); remainder > 0 {
		analyses = append(analyses, s.extrapolator.Extrapolate(remainder, holistic)...)
	}

	aggregate := report.Assemble(reviews, analyses, holistic, dates, ratings, language)

	stored := &models.StoredReport{
		SourceKind: ref.Kind,
		SourceURL:  ref.URL,
		Report:     aggregate,
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reports.Create(ctx, stored); err != nil {
		// The caller still gets the report inline; only retrieval by ID
		// and archiving are lost.
		s.logger.Error("failed to persist report", "error", err)
	}

	s.logger.Info("pipeline complete",
		"kind", ref.Kind,
		"report_id", stored.ID,
		"review_count", aggregate.ReviewCount,
		"duration_ms", stored.DurationMs,
	)
	return stored, nil
}

// GetReport retrieves a persisted report by ID.
func (s *PipelineService) GetReport(ctx context.Context, id string) (*models.StoredReport, error) {
	return s.reports.GetByID(ctx, id)
}

func dateColumn(reviews []models.RawReview) []string {
	dates := make([]string, len(reviews))
	for i, r := range reviews {
		dates[i] = r.Date
	}
	return dates
}

// ratingColumn builds the ratings used for NPS and rating statistics. Only
// scrape-run and spreadsheet sources carry real customer ratings; text and
// web reviews get the midpoint fill, so they contribute none.
func ratingColumn(kind models.SourceKind, reviews []models.RawReview) []float64 {
	if !kind.IsScrapeRun() && kind != models.SourceSpreadsheet {
		return nil
	}

	ratings := make([]float64, 0, len(reviews))
	for _, r := range reviews {
		if r.Rating != nil {
			ratings = append(ratings, *r.Rating)
		}
	}
	return ratings
}
