package analysis

import (
	"fmt"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// DefaultReviewAnalysis is substituted for a single review whose analysis
// call could not be completed. Per-review failure never fails the run.
func DefaultReviewAnalysis() models.ReviewAnalysis {
	return models.ReviewAnalysis{
		Sentiment:  models.SentimentNeutral,
		Score:      0.5,
		Themes:     []string{"quality"},
		Emotions:   []string{"neutral"},
		Strengths:  []string{"quality"},
		Weaknesses: []string{"price"},
	}
}

// Fixed per-field defaults merged into partially-valid holistic responses.
var (
	defaultKeyThemes = []models.RankedTheme{
		{Name: "quality", Count: 1},
		{Name: "service", Count: 1},
		{Name: "price", Count: 1},
	}
	defaultStrengths  = []string{"quality", "service"}
	defaultWeaknesses = []string{"price"}
	defaultEmotions   = []models.EmotionShare{
		{Name: "satisfaction", Pct: 40},
		{Name: "neutral", Pct: 35},
		{Name: "frustration", Pct: 25},
	}
	defaultRecommendations     = "Collect more detailed customer feedback to identify concrete improvement areas."
	defaultMarketingInsights   = "Highlight consistently praised aspects of the experience in marketing material."
	defaultCompetitiveAnalysis = "Not enough analyzed feedback to position against competitors."
	defaultTrendAnalysis       = "No clear trend detected in the analyzed period."
	defaultSatisfactionDrivers = []string{"product quality", "customer service", "value for money"}
)

// DefaultHolisticReport builds the fallback report from the precomputed
// rating statistics. Used when the analysis call fails entirely; this path
// never surfaces an error.
func DefaultHolisticReport(stats RatingStats) models.HolisticReport {
	return models.HolisticReport{
		OverallSentiment:    defaultSentimentSummary(stats),
		KeyThemes:           defaultKeyThemes,
		Strengths:           defaultStrengths,
		Weaknesses:          defaultWeaknesses,
		Emotions:            defaultEmotions,
		Recommendations:     defaultRecommendations,
		MarketingInsights:   defaultMarketingInsights,
		CompetitiveAnalysis: defaultCompetitiveAnalysis,
		TrendAnalysis:       defaultTrendAnalysis,
		SatisfactionDrivers: defaultSatisfactionDrivers,
	}
}

func defaultSentimentSummary(stats RatingStats) models.SentimentSummary {
	return models.SentimentSummary{
		Summary: fmt.Sprintf(
			"Based on ratings: %.0f%% positive, %.0f%% negative, %.0f%% neutral.",
			stats.PositivePct, stats.NegativePct, stats.NeutralPct,
		),
		PositivePct: stats.PositivePct,
		NegativePct: stats.NegativePct,
		NeutralPct:  stats.NeutralPct,
	}
}
