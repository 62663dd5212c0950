package analysis

import (
	"testing"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

func testHolisticReport(positive, negative float64) models.HolisticReport {
	return models.HolisticReport{
		OverallSentiment: models.SentimentSummary{
			PositivePct: positive,
			NegativePct: negative,
			NeutralPct:  100 - positive - negative,
		},
		KeyThemes: []models.RankedTheme{
			{Name: "quality", Count: 3},
			{Name: "service", Count: 2},
			{Name: "price", Count: 1},
		},
		Strengths:  []string{"staff", "location", "speed"},
		Weaknesses: []string{"price", "parking"},
		Emotions: []models.EmotionShare{
			{Name: "joy", Pct: 60},
			{Name: "frustration", Pct: 40},
		},
	}
}

func TestExtrapolateCountAndScoreBands(t *testing.T) {
	e := NewExtrapolator(42)
	analyses := e.Extrapolate(200, testHolisticReport(50, 30))

	if len(analyses) != 200 {
		t.Fatalf("expected 200 analyses, got %d", len(analyses))
	}
	for i, analysis := range analyses {
		var lo, hi float64
		switch analysis.Sentiment {
		case models.SentimentPositive:
			lo, hi = 0.7, 1.0
		case models.SentimentNegative:
			lo, hi = 0.0, 0.4
		case models.SentimentNeutral:
			lo, hi = 0.4, 0.7
		default:
			t.Fatalf("analysis %d: unexpected sentiment %q", i, analysis.Sentiment)
		}
		if analysis.Score < lo || analysis.Score >= hi {
			t.Errorf("analysis %d: score %v outside %s band [%v,%v)", i, analysis.Score, analysis.Sentiment, lo, hi)
		}
	}
}

func TestExtrapolateFollowsSentimentSplit(t *testing.T) {
	tests := []struct {
		name     string
		positive float64
		negative float64
		want     models.Sentiment
	}{
		{"all positive", 100, 0, models.SentimentPositive},
		{"all negative", 0, 100, models.SentimentNegative},
		{"all neutral", 0, 0, models.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtrapolator(1)
			for i, analysis := range e.Extrapolate(50, testHolisticReport(tt.positive, tt.negative)) {
				if analysis.Sentiment != tt.want {
					t.Fatalf("analysis %d: sentiment = %q, want %q", i, analysis.Sentiment, tt.want)
				}
			}
		})
	}
}

func TestExtrapolateSamplesDistinctAttributes(t *testing.T) {
	e := NewExtrapolator(7)
	report := testHolisticReport(40, 30)

	for i, analysis := range e.Extrapolate(100, report) {
		for _, pair := range [][]string{analysis.Themes, analysis.Emotions, analysis.Strengths, analysis.Weaknesses} {
			if len(pair) != 2 {
				t.Fatalf("analysis %d: expected 2 sampled entries, got %v", i, pair)
			}
			if pair[0] == pair[1] {
				t.Fatalf("analysis %d: sampled entries must be distinct, got %v", i, pair)
			}
		}
	}
}

func TestExtrapolateDeterministicForSeed(t *testing.T) {
	report := testHolisticReport(60, 20)
	a := NewExtrapolator(99).Extrapolate(10, report)
	b := NewExtrapolator(99).Extrapolate(10, report)

	for i := range a {
		if a[i].Sentiment != b[i].Sentiment || a[i].Score != b[i].Score {
			t.Fatalf("analysis %d differs across runs with the same seed", i)
		}
	}
}

func TestExtrapolateEdgeCases(t *testing.T) {
	e := NewExtrapolator(3)

	if got := e.Extrapolate(0, testHolisticReport(50, 20)); got != nil {
		t.Errorf("count 0 should yield nil, got %v", got)
	}
	if got := e.Extrapolate(-5, testHolisticReport(50, 20)); got != nil {
		t.Errorf("negative count should yield nil, got %v", got)
	}

	sparse := models.HolisticReport{
		OverallSentiment: models.SentimentSummary{NeutralPct: 100},
		Strengths:        []string{"only one"},
	}
	analyses := e.Extrapolate(3, sparse)
	if len(analyses) != 3 {
		t.Fatalf("expected 3 analyses, got %d", len(analyses))
	}
	for i, analysis := range analyses {
		if len(analysis.Strengths) != 1 || analysis.Strengths[0] != "only one" {
			t.Errorf("analysis %d: single-entry list should be returned as-is, got %v", i, analysis.Strengths)
		}
		if analysis.Themes != nil {
			t.Errorf("analysis %d: empty source list should sample nil, got %v", i, analysis.Themes)
		}
	}
}
