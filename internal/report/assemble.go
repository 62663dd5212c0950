// Package report assembles the final aggregate report from normalized
// reviews, per-review analyses and the holistic analysis.
package report

import (
	"math"
	"sort"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// NPS category boundaries on the 0-10 scale.
const (
	npsPromoterMin  = 9
	npsDetractorMax = 6
)

// Assemble is a pure function combining everything one pipeline run produced
// into the final report. analyses must be index-aligned 1:1 with rawReviews;
// dates and ratings are the per-review columns extracted upstream.
func Assemble(
	rawReviews []models.RawReview,
	analyses []models.ReviewAnalysis,
	holistic models.HolisticReport,
	dates []string,
	ratings []float64,
	language string,
) *models.AggregateReport {
	reviewCount := len(rawReviews)

	return &models.AggregateReport{
		ReviewCount:       reviewCount,
		Language:          language,
		Sentiment:         sentimentBreakdown(analyses),
		AverageScore:      averageScore(analyses),
		AverageRating:     average(ratings),
		SatisfactionScore: satisfactionScore(analyses),
		NPS:               ComputeNPS(ratings),
		ReviewsByDate:     countByDate(dates),
		Themes:            themeCounts(holistic.KeyThemes),
		Emotions:          emotionCounts(holistic.Emotions, reviewCount),
		Strengths:         distributeEvenly(holistic.Strengths, reviewCount),
		Weaknesses:        distributeEvenly(holistic.Weaknesses, reviewCount),
		ReviewSummary:     reviewSummary(rawReviews, analyses),
		Holistic:          holistic,
	}
}

// sentimentBreakdown derives the positive/negative/neutral split from the
// per-review analyses. Neutral absorbs the rounding remainder so the three
// always sum to 100.
func sentimentBreakdown(analyses []models.ReviewAnalysis) models.SentimentBreakdown {
	if len(analyses) == 0 {
		return models.SentimentBreakdown{Neutral: 100}
	}

	var positive, negative int
	for _, a := range analyses {
		switch a.Sentiment {
		case models.SentimentPositive:
			positive++
		case models.SentimentNegative:
			negative++
		}
	}

	total := float64(len(analyses))
	breakdown := models.SentimentBreakdown{
		Positive: round1(100 * float64(positive) / total),
		Negative: round1(100 * float64(negative) / total),
	}
	breakdown.Neutral = round1(100 - breakdown.Positive - breakdown.Negative)
	return breakdown
}

// ComputeNPS maps 1-5 ratings onto the 0-10 Net Promoter scale and scores
// them. Returns nil when there are no ratings to score.
func ComputeNPS(ratings []float64) *models.NPSResult {
	if len(ratings) == 0 {
		return nil
	}

	counts := make([]int, 11)
	for _, r := range ratings {
		scaled := int(math.Round(r * 2))
		if scaled < 0 {
			scaled = 0
		}
		if scaled > 10 {
			scaled = 10
		}
		counts[scaled]++
	}

	var promoters, passives, detractors int
	histogram := make([]models.NPSBucket, 0, 11)
	for value, count := range counts {
		category := "passive"
		switch {
		case value >= npsPromoterMin:
			category = "promoter"
			promoters += count
		case value <= npsDetractorMax:
			category = "detractor"
			detractors += count
		default:
			passives += count
		}
		histogram = append(histogram, models.NPSBucket{Value: value, Count: count, Category: category})
	}

	total := float64(len(ratings))
	promoterPct := 100 * float64(promoters) / total
	detractorPct := 100 * float64(detractors) / total
	return &models.NPSResult{
		Score:        int(math.Round(promoterPct - detractorPct)),
		PromoterPct:  round1(promoterPct),
		PassivePct:   round1(100 * float64(passives) / total),
		DetractorPct: round1(detractorPct),
		Histogram:    histogram,
	}
}

// satisfactionScore is the share of individually-analyzed reviews classified
// positive, as a whole percentage.
func satisfactionScore(analyses []models.ReviewAnalysis) int {
	if len(analyses) == 0 {
		return 0
	}
	var positive int
	for _, a := range analyses {
		if a.Sentiment == models.SentimentPositive {
			positive++
		}
	}
	return int(math.Round(100 * float64(positive) / float64(len(analyses))))
}

// countByDate groups dated reviews by ISO date, ascending. Undated reviews
// are excluded rather than bucketed.
func countByDate(dates []string) []models.DateCount {
	counts := make(map[string]int)
	for _, d := range dates {
		if d == "" || d == models.DateUnknown {
			continue
		}
		counts[d]++
	}

	keys := make([]string, 0, len(counts))
	for d := range counts {
		keys = append(keys, d)
	}
	sort.Strings(keys)

	out := make([]models.DateCount, 0, len(keys))
	for _, d := range keys {
		out = append(out, models.DateCount{Date: d, Count: counts[d]})
	}
	return out
}

func themeCounts(themes []models.RankedTheme) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(themes))
	for _, t := range themes {
		out = append(out, models.NamedCount{Name: t.Name, Count: t.Count})
	}
	return out
}

// emotionCounts projects the holistic emotion percentages onto the full
// review volume.
func emotionCounts(emotions []models.EmotionShare, reviewCount int) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(emotions))
	for _, em := range emotions {
		count := int(math.Round(em.Pct / 100 * float64(reviewCount)))
		out = append(out, models.NamedCount{Name: em.Name, Count: count})
	}
	return out
}

// distributeEvenly spreads reviewCount across the holistic list entries,
// earlier entries absorbing the remainder. The holistic analysis carries no
// per-entry counts for strengths and weaknesses, so the split is an even
// approximation rather than a measurement.
func distributeEvenly(entries []string, reviewCount int) []models.NamedCount {
	if len(entries) == 0 {
		return nil
	}

	base := reviewCount / len(entries)
	remainder := reviewCount % len(entries)
	out := make([]models.NamedCount, 0, len(entries))
	for i, name := range entries {
		count := base
		if i < remainder {
			count++
		}
		out = append(out, models.NamedCount{Name: name, Count: count})
	}
	return out
}

// reviewSummary is strictly index-aligned with rawReviews; a missing analysis
// slot degrades to a neutral row rather than shifting alignment.
func reviewSummary(rawReviews []models.RawReview, analyses []models.ReviewAnalysis) []models.ReviewSummaryItem {
	out := make([]models.ReviewSummaryItem, 0, len(rawReviews))
	for i, review := range rawReviews {
		item := models.ReviewSummaryItem{
			Text:      review.Text,
			Score:     0.5,
			Sentiment: models.SentimentNeutral,
		}
		if i < len(analyses) {
			item.Score = analyses[i].Score
			item.Sentiment = analyses[i].Sentiment
		}
		out = append(out, item)
	}
	return out
}

func averageScore(analyses []models.ReviewAnalysis) float64 {
	if len(analyses) == 0 {
		return 0
	}
	var sum float64
	for _, a := range analyses {
		sum += a.Score
	}
	return round2(sum / float64(len(analyses)))
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return round2(sum / float64(len(values)))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
