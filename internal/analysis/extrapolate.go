package analysis

import (
	"math/rand"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// Extrapolator synthesizes per-review analyses for reviews beyond the
// individual analysis cap, sampling from the holistic report's sentiment
// distribution so the aggregate stays representative without extra analysis
// calls.
type Extrapolator struct {
	rng *rand.Rand
}

// NewExtrapolator seeds the sampler. Tests pass a fixed seed for
// deterministic output.
func NewExtrapolator(seed int64) *Extrapolator {
	return &Extrapolator{rng: rand.New(rand.NewSource(seed))}
}

// Extrapolate produces count synthetic analyses drawn from the holistic
// sentiment split, with scores inside the band matching each drawn sentiment
// and attributes sampled from the holistic lists.
func (e *Extrapolator) Extrapolate(count int, holistic models.HolisticReport) []models.ReviewAnalysis {
	if count <= 0 {
		return nil
	}

	themes := themeNames(holistic.KeyThemes)
	emotions := emotionNames(holistic.Emotions)

	analyses := make([]models.ReviewAnalysis, 0, count)
	for i := 0; i < count; i++ {
		sentiment := e.drawSentiment(holistic.OverallSentiment)
		analyses = append(analyses, models.ReviewAnalysis{
			Sentiment:  sentiment,
			Score:      e.drawScore(sentiment),
			Themes:     e.sampleTwo(themes),
			Emotions:   e.sampleTwo(emotions),
			Strengths:  e.sampleTwo(holistic.Strengths),
			Weaknesses: e.sampleTwo(holistic.Weaknesses),
		})
	}
	return analyses
}

func (e *Extrapolator) drawSentiment(split models.SentimentSummary) models.Sentiment {
	roll := e.rng.Float64() * 100
	switch {
	case roll < split.PositivePct:
		return models.SentimentPositive
	case roll < split.PositivePct+split.NegativePct:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Score bands per sentiment: positive [0.7,1.0), negative [0.0,0.4),
// neutral [0.4,0.7).
func (e *Extrapolator) drawScore(sentiment models.Sentiment) float64 {
	switch sentiment {
	case models.SentimentPositive:
		return 0.7 + e.rng.Float64()*0.3
	case models.SentimentNegative:
		return e.rng.Float64() * 0.4
	default:
		return 0.4 + e.rng.Float64()*0.3
	}
}

// sampleTwo picks up to two distinct entries from the list, preserving no
// particular order.
func (e *Extrapolator) sampleTwo(list []string) []string {
	switch len(list) {
	case 0:
		return nil
	case 1:
		return []string{list[0]}
	}

	first := e.rng.Intn(len(list))
	second := e.rng.Intn(len(list) - 1)
	if second >= first {
		second++
	}
	return []string{list[first], list[second]}
}

func themeNames(themes []models.RankedTheme) []string {
	names := make([]string, 0, len(themes))
	for _, t := range themes {
		names = append(names, t.Name)
	}
	return names
}

func emotionNames(emotions []models.EmotionShare) []string {
	names := make([]string, 0, len(emotions))
	for _, em := range emotions {
		names = append(names, em.Name)
	}
	return names
}
