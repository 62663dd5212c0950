package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/models"
)

// maxReviewChars bounds how much of a single review is sent for analysis.
const maxReviewChars = 2000

// BatchAnalyzer sends individual reviews to the analysis service in small
// sequential batches with deliberate pauses, as a cost and rate-limit
// control. Only the first cap reviews are analyzed individually; the rest
// are handled by the extrapolator.
type BatchAnalyzer struct {
	client      Completer
	cap         int
	batchSize   int
	reviewDelay time.Duration
	batchDelay  time.Duration
	retries     int
	logger      *slog.Logger
}

// NewBatchAnalyzer creates a batch analyzer from the application config.
func NewBatchAnalyzer(cfg *config.Config, client Completer, logger *slog.Logger) *BatchAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &BatchAnalyzer{
		client:      client,
		cap:         cfg.ReviewAnalysisCap,
		batchSize:   cfg.AnalysisBatchSize,
		reviewDelay: cfg.InterReviewDelay,
		batchDelay:  cfg.InterBatchDelay,
		retries:     cfg.AnalysisRetries,
		logger:      logger.With("component", "batch_analyzer"),
	}
	if a.cap <= 0 {
		a.cap = 20
	}
	if a.batchSize <= 0 {
		a.batchSize = 5
	}
	if a.retries <= 0 {
		a.retries = 3
	}
	return a
}

// Cap returns the per-review analysis limit.
func (a *BatchAnalyzer) Cap() int { return a.cap }

// Analyze runs per-review analysis over at most Cap() reviews, in input
// order. Every per-review failure is absorbed with the neutral default; the
// returned slice is always 1:1 with the capped input slice.
func (a *BatchAnalyzer) Analyze(ctx context.Context, reviews []models.RawReview, language string) []models.ReviewAnalysis {
	n := len(reviews)
	if n > a.cap {
		n = a.cap
	}

	analyses := make([]models.ReviewAnalysis, 0, n)
	for batchStart := 0; batchStart < n; batchStart += a.batchSize {
		if batchStart > 0 {
			if err := sleepCtx(ctx, a.batchDelay); err != nil {
				break
			}
		}

		batchEnd := batchStart + a.batchSize
		if batchEnd > n {
			batchEnd = n
		}
		for i := batchStart; i < batchEnd; i++ {
			if i > batchStart {
				if err := sleepCtx(ctx, a.reviewDelay); err != nil {
					break
				}
			}
			analyses = append(analyses, a.analyzeOne(ctx, reviews[i].Text, language))
		}

		a.logger.Debug("analysis batch done", "from", batchStart, "to", batchEnd, "total", n)
	}

	// Context cancellation mid-run still honors the 1:1 contract
	for len(analyses) < n {
		analyses = append(analyses, DefaultReviewAnalysis())
	}
	return analyses
}

func (a *BatchAnalyzer) analyzeOne(ctx context.Context, text, language string) models.ReviewAnalysis {
	var content string
	err := withRetry(ctx, a.logger, a.retries, func(ctx context.Context) error {
		var callErr error
		content, callErr = a.client.Complete(ctx, buildReviewPrompt(text, language))
		return callErr
	})
	if err != nil {
		a.logger.Warn("per-review analysis failed, using default", "error", err)
		return DefaultReviewAnalysis()
	}

	raw, ok := extractJSONObject(content)
	if !ok {
		a.logger.Warn("per-review analysis returned no JSON, using default")
		return DefaultReviewAnalysis()
	}

	var parsed struct {
		Sentiment  string   `json:"sentiment"`
		Score      *float64 `json:"score"`
		Themes     []string `json:"themes"`
		Emotions   []string `json:"emotions"`
		Strengths  []string `json:"strengths"`
		Weaknesses []string `json:"weaknesses"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		a.logger.Warn("per-review analysis JSON malformed, using default", "error", err)
		return DefaultReviewAnalysis()
	}

	result := DefaultReviewAnalysis()
	switch models.Sentiment(parsed.Sentiment) {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
		result.Sentiment = models.Sentiment(parsed.Sentiment)
	}
	if parsed.Score != nil && *parsed.Score >= 0 && *parsed.Score <= 1 {
		result.Score = *parsed.Score
	}
	if len(parsed.Themes) > 0 {
		result.Themes = parsed.Themes
	}
	if len(parsed.Emotions) > 0 {
		result.Emotions = parsed.Emotions
	}
	if len(parsed.Strengths) > 0 {
		result.Strengths = parsed.Strengths
	}
	if len(parsed.Weaknesses) > 0 {
		result.Weaknesses = parsed.Weaknesses
	}
	return result
}

// truncateText cuts text to at most max bytes without splitting a rune.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func buildReviewPrompt(text, language string) string {
	text = truncateText(text, maxReviewChars)
	return fmt.Sprintf(`Analyze this customer review. Respond with only a JSON object:
{"sentiment": "positive"|"negative"|"neutral", "score": 0.0-1.0, "themes": [..], "emotions": [..], "strengths": [..], "weaknesses": [..]}
Use %s for all list entries.

Review: %q`, language, text)
}
