package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestHolisticAnalyzer(client Completer) *HolisticAnalyzer {
	return &HolisticAnalyzer{client: client, retries: 1, logger: slog.Default()}
}

func TestComputeRatingStats(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    RatingStats
	}{
		{
			name:    "empty is fully neutral",
			ratings: nil,
			want:    RatingStats{NeutralPct: 100},
		},
		{
			name:    "mixed split",
			ratings: []float64{5, 4, 3, 2, 1},
			want:    RatingStats{Average: 3, PositivePct: 40, NegativePct: 40, NeutralPct: 20},
		},
		{
			name:    "all positive",
			ratings: []float64{5, 5, 4},
			want:    RatingStats{Average: 4.67, PositivePct: 100, NegativePct: 0, NeutralPct: 0},
		},
		{
			name:    "threes are neutral",
			ratings: []float64{3, 3},
			want:    RatingStats{Average: 3, PositivePct: 0, NegativePct: 0, NeutralPct: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRatingStats(tt.ratings); got != tt.want {
				t.Errorf("ComputeRatingStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHolisticAnalyzerMergesFullResponse(t *testing.T) {
	response := `{
		"overallSentiment": {"summary": "Mostly happy customers.", "positivePct": 70, "negativePct": 20, "neutralPct": 10},
		"keyThemes": [{"name": "delivery", "count": 12}],
		"strengths": ["fast shipping"],
		"weaknesses": ["packaging"],
		"emotions": [{"name": "joy", "pct": 55}],
		"recommendations": "Improve packaging.",
		"marketingInsights": "Lead with delivery speed.",
		"competitiveAnalysis": "Faster than most rivals.",
		"trendAnalysis": "Sentiment improving month over month.",
		"satisfactionDrivers": ["delivery speed"]
	}`
	stub := &stubCompleter{responses: func(int) (string, error) { return response, nil }}
	h := newTestHolisticAnalyzer(stub)

	report := h.Analyze(context.Background(), makeReviews(3), []float64{5, 4, 2})

	if report.OverallSentiment.PositivePct != 70 {
		t.Errorf("positive pct = %v, want 70", report.OverallSentiment.PositivePct)
	}
	if len(report.KeyThemes) != 1 || report.KeyThemes[0].Name != "delivery" {
		t.Errorf("key themes = %+v, want delivery", report.KeyThemes)
	}
	if report.Recommendations != "Improve packaging." {
		t.Errorf("recommendations = %q", report.Recommendations)
	}
	if len(report.SatisfactionDrivers) != 1 || report.SatisfactionDrivers[0] != "delivery speed" {
		t.Errorf("satisfaction drivers = %v", report.SatisfactionDrivers)
	}
}

func TestHolisticAnalyzerFillsMissingFieldsFromDefaults(t *testing.T) {
	response := `{"strengths": ["great staff"], "weaknesses": []}`
	stub := &stubCompleter{responses: func(int) (string, error) { return response, nil }}
	h := newTestHolisticAnalyzer(stub)

	report := h.Analyze(context.Background(), makeReviews(2), []float64{5, 1})
	def := DefaultHolisticReport(ComputeRatingStats([]float64{5, 1}))

	if len(report.Strengths) != 1 || report.Strengths[0] != "great staff" {
		t.Errorf("strengths = %v, want service response kept", report.Strengths)
	}
	// Empty list is treated as missing
	if len(report.Weaknesses) != len(def.Weaknesses) || report.Weaknesses[0] != def.Weaknesses[0] {
		t.Errorf("weaknesses = %v, want default %v", report.Weaknesses, def.Weaknesses)
	}
	if report.Recommendations != def.Recommendations {
		t.Errorf("recommendations = %q, want default", report.Recommendations)
	}
	if report.OverallSentiment != def.OverallSentiment {
		t.Errorf("overall sentiment = %+v, want stats-derived default", report.OverallSentiment)
	}
}

func TestHolisticAnalyzerFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		responses func(int) (string, error)
	}{
		{"service error", func(int) (string, error) { return "", errors.New("boom") }},
		{"no JSON in response", func(int) (string, error) { return "sorry, no can do", nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHolisticAnalyzer(&stubCompleter{responses: tt.responses})

			ratings := []float64{5, 5, 1, 3}
			report := h.Analyze(context.Background(), makeReviews(4), ratings)

			want := DefaultHolisticReport(ComputeRatingStats(ratings))
			if report.OverallSentiment != want.OverallSentiment {
				t.Errorf("overall sentiment = %+v, want %+v", report.OverallSentiment, want.OverallSentiment)
			}
			if !strings.Contains(report.OverallSentiment.Summary, "50% positive") {
				t.Errorf("summary %q should reflect the rating split", report.OverallSentiment.Summary)
			}
			if len(report.KeyThemes) == 0 || len(report.Emotions) == 0 {
				t.Errorf("default report must have non-empty themes and emotions")
			}
		})
	}
}

func TestHolisticPromptBoundsSample(t *testing.T) {
	reviews := makeReviews(30)
	prompt := buildHolisticPrompt(reviews, 30, ComputeRatingStats([]float64{4, 4}))

	if strings.Contains(prompt, "review 10") {
		t.Errorf("prompt should only include the first %d reviews", holisticSampleSize)
	}
	if !strings.Contains(prompt, "review 9") {
		t.Errorf("prompt should include the %dth review", holisticSampleSize)
	}
	if !strings.Contains(prompt, "30 rated reviews") {
		t.Errorf("prompt should state the full rating count")
	}
}
