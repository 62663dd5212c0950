package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/models"
)

// holisticSampleSize bounds how many review texts go into the holistic
// prompt; the aggregate statistics stand in for the rest.
const holisticSampleSize = 10

// RatingStats are the aggregate rating statistics computed before the
// holistic call and embedded in its prompt.
type RatingStats struct {
	Average     float64
	PositivePct float64
	NegativePct float64
	NeutralPct  float64
}

// ComputeRatingStats derives the average rating and the positive (>=4),
// negative (<=2) and neutral percentage split. An empty rating list reads as
// fully neutral.
func ComputeRatingStats(ratings []float64) RatingStats {
	if len(ratings) == 0 {
		return RatingStats{NeutralPct: 100}
	}

	var sum float64
	var positive, negative int
	for _, r := range ratings {
		sum += r
		switch {
		case r >= 4:
			positive++
		case r <= 2:
			negative++
		}
	}

	total := float64(len(ratings))
	stats := RatingStats{
		Average:     round2(sum / total),
		PositivePct: round2(100 * float64(positive) / total),
		NegativePct: round2(100 * float64(negative) / total),
	}
	stats.NeutralPct = round2(100 - stats.PositivePct - stats.NegativePct)
	return stats
}

// HolisticAnalyzer produces the single whole-corpus report. It never returns
// an error: any failure degrades to a default report built from the rating
// statistics.
type HolisticAnalyzer struct {
	client  Completer
	retries int
	logger  *slog.Logger
}

// NewHolisticAnalyzer creates a holistic analyzer from the application config.
func NewHolisticAnalyzer(cfg *config.Config, client Completer, logger *slog.Logger) *HolisticAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	retries := cfg.AnalysisRetries
	if retries <= 0 {
		retries = 3
	}
	return &HolisticAnalyzer{
		client:  client,
		retries: retries,
		logger:  logger.With("component", "holistic_analyzer"),
	}
}

// Analyze calls the analysis service once over a bounded review sample plus
// the precomputed statistics, merging per-field defaults into whatever comes
// back.
func (h *HolisticAnalyzer) Analyze(ctx context.Context, reviews []models.RawReview, ratings []float64) models.HolisticReport {
	stats := ComputeRatingStats(ratings)

	var content string
	err := withRetry(ctx, h.logger, h.retries, func(ctx context.Context) error {
		var callErr error
		content, callErr = h.client.Complete(ctx, buildHolisticPrompt(reviews, len(ratings), stats))
		return callErr
	})
	if err != nil {
		h.logger.Warn("holistic analysis failed, using default report", "error", err)
		return DefaultHolisticReport(stats)
	}

	raw, ok := extractJSONObject(content)
	if !ok {
		h.logger.Warn("holistic analysis returned no JSON, using default report")
		return DefaultHolisticReport(stats)
	}

	return mergeHolistic(raw, stats, h.logger)
}

// mergeHolistic fills each missing or malformed top-level field from its
// fixed default. Partial-default merge: one bad field never discards the
// other nine.
func mergeHolistic(raw []byte, stats RatingStats, logger *slog.Logger) models.HolisticReport {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		logger.Warn("holistic JSON malformed, using default report", "error", err)
		return DefaultHolisticReport(stats)
	}

	report := DefaultHolisticReport(stats)

	if f, ok := fields["overallSentiment"]; ok {
		var summary models.SentimentSummary
		var wire struct {
			Summary     string   `json:"summary"`
			PositivePct *float64 `json:"positivePct"`
			NegativePct *float64 `json:"negativePct"`
			NeutralPct  *float64 `json:"neutralPct"`
		}
		if err := json.Unmarshal(f, &wire); err == nil && wire.PositivePct != nil && wire.NegativePct != nil && wire.NeutralPct != nil {
			summary = models.SentimentSummary{
				Summary:     wire.Summary,
				PositivePct: *wire.PositivePct,
				NegativePct: *wire.NegativePct,
				NeutralPct:  *wire.NeutralPct,
			}
			if summary.Summary == "" {
				summary.Summary = report.OverallSentiment.Summary
			}
			report.OverallSentiment = summary
		}
	}

	if f, ok := fields["keyThemes"]; ok {
		var themes []models.RankedTheme
		if err := json.Unmarshal(f, &themes); err == nil && len(themes) > 0 {
			report.KeyThemes = themes
		}
	}
	if f, ok := fields["strengths"]; ok {
		var strengths []string
		if err := json.Unmarshal(f, &strengths); err == nil && len(strengths) > 0 {
			report.Strengths = strengths
		}
	}
	if f, ok := fields["weaknesses"]; ok {
		var weaknesses []string
		if err := json.Unmarshal(f, &weaknesses); err == nil && len(weaknesses) > 0 {
			report.Weaknesses = weaknesses
		}
	}
	if f, ok := fields["emotions"]; ok {
		var emotions []models.EmotionShare
		if err := json.Unmarshal(f, &emotions); err == nil && len(emotions) > 0 {
			report.Emotions = emotions
		}
	}
	report.Recommendations = stringField(fields, "recommendations", report.Recommendations)
	report.MarketingInsights = stringField(fields, "marketingInsights", report.MarketingInsights)
	report.CompetitiveAnalysis = stringField(fields, "competitiveAnalysis", report.CompetitiveAnalysis)
	report.TrendAnalysis = stringField(fields, "trendAnalysis", report.TrendAnalysis)
	if f, ok := fields["satisfactionDrivers"]; ok {
		var drivers []string
		if err := json.Unmarshal(f, &drivers); err == nil && len(drivers) > 0 {
			report.SatisfactionDrivers = drivers
		}
	}

	return report
}

func stringField(fields map[string]json.RawMessage, key, fallback string) string {
	f, ok := fields[key]
	if !ok {
		return fallback
	}
	var s string
	if err := json.Unmarshal(f, &s); err != nil || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func buildHolisticPrompt(reviews []models.RawReview, ratingCount int, stats RatingStats) string {
	var sample strings.Builder
	for i, review := range reviews {
		if i >= holisticSampleSize {
			break
		}
		fmt.Fprintf(&sample, "- %s\n", truncateText(review.Text, maxReviewChars))
	}

	return fmt.Sprintf(`You are analyzing aggregate customer feedback.

Precomputed statistics over all %d rated reviews:
- average rating: %.2f / 5
- positive (rating >= 4): %.1f%%
- negative (rating <= 2): %.1f%%
- neutral: %.1f%%

Sample reviews:
%s
Respond with only a JSON object with exactly these fields:
{"overallSentiment": {"summary": string, "positivePct": number, "negativePct": number, "neutralPct": number},
 "keyThemes": [{"name": string, "count": number}],
 "strengths": [string], "weaknesses": [string],
 "emotions": [{"name": string, "pct": number}],
 "recommendations": string, "marketingInsights": string,
 "competitiveAnalysis": string, "trendAnalysis": string,
 "satisfactionDrivers": [string]}`,
		ratingCount, stats.Average, stats.PositivePct, stats.NegativePct, stats.NeutralPct, sample.String())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
