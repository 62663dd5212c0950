// Package models contains domain types shared across the application.
package models

import "time"

// SourceKind identifies which fetcher handles a source reference.
type SourceKind string

const (
	SourceText        SourceKind = "text"
	SourceSpreadsheet SourceKind = "spreadsheet"
	SourceWeb         SourceKind = "web"
	SourceMapsListing SourceKind = "maps"
	SourceHospitality SourceKind = "hospitality"
	SourceBooking     SourceKind = "booking"
)

// IsScrapeRun returns true for kinds served by the external scraping-job
// service (and therefore by the review cache).
func (k SourceKind) IsScrapeRun() bool {
	switch k {
	case SourceMapsListing, SourceHospitality, SourceBooking:
		return true
	}
	return false
}

// SourceReference is the caller-supplied pointer to a review source.
// Exactly one of URL, RawText or FileBytes is meaningful depending on Kind.
type SourceReference struct {
	Kind      SourceKind `json:"kind"`
	URL       string     `json:"url,omitempty"`
	RawText   string     `json:"raw_text,omitempty"`
	FileBytes []byte     `json:"file_bytes,omitempty"`
}

// RawReview is the normalized shape every source fetcher produces.
// Rating is nil when the source carries no usable rating. Date is an ISO
// YYYY-MM-DD string or DateUnknown.
type RawReview struct {
	Text   string   `json:"text"`
	Rating *float64 `json:"rating"`
	Date   string   `json:"date"`
}

// DateUnknown is the placeholder for reviews without a parseable date.
const DateUnknown = "Unknown"

// RunStatus is the lifecycle state of an external scrape run.
type RunStatus string

const (
	RunSubmitted RunStatus = "submitted"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunAborted   RunStatus = "aborted"
	RunTimedOut  RunStatus = "timed_out"
)

// Terminal returns true once the run can no longer change state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunSucceeded, RunFailed, RunAborted, RunTimedOut:
		return true
	}
	return false
}

// ScrapeRun tracks one submission to the scraping-job service. It lives only
// for the duration of a single source fetch and is never persisted.
type ScrapeRun struct {
	RunID         string
	DatasetID     string
	Status        RunStatus
	StatusMessage string
}

// Sentiment is the three-way classification used throughout the pipeline.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ReviewAnalysis is the per-review output of the analysis service, or a
// synthesized equivalent from the extrapolator. Index-aligned 1:1 with the
// RawReview list it was produced from.
type ReviewAnalysis struct {
	Sentiment  Sentiment `json:"sentiment"`
	Score      float64   `json:"score"`
	Themes     []string  `json:"themes"`
	Emotions   []string  `json:"emotions"`
	Strengths  []string  `json:"strengths"`
	Weaknesses []string  `json:"weaknesses"`
}

// SentimentSummary holds the aggregate sentiment split of a holistic report.
// Percentages are 0-100 and sum to ~100.
type SentimentSummary struct {
	Summary     string  `json:"summary"`
	PositivePct float64 `json:"positive_pct"`
	NegativePct float64 `json:"negative_pct"`
	NeutralPct  float64 `json:"neutral_pct"`
}

// RankedTheme is a theme with its occurrence count, ordered most-common first.
type RankedTheme struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// EmotionShare is an emotion with the share of reviews expressing it.
type EmotionShare struct {
	Name string  `json:"name"`
	Pct  float64 `json:"pct"`
}

// HolisticReport is the structured multi-facet output of the single
// whole-corpus analysis call. Every field is guaranteed non-empty: missing
// fields in the service response are filled from fixed defaults.
type HolisticReport struct {
	OverallSentiment    SentimentSummary `json:"overall_sentiment"`
	KeyThemes           []RankedTheme    `json:"key_themes"`
	Strengths           []string         `json:"strengths"`
	Weaknesses          []string         `json:"weaknesses"`
	Emotions            []EmotionShare   `json:"emotions"`
	Recommendations     string           `json:"recommendations"`
	MarketingInsights   string           `json:"marketing_insights"`
	CompetitiveAnalysis string           `json:"competitive_analysis"`
	TrendAnalysis       string           `json:"trend_analysis"`
	SatisfactionDrivers []string         `json:"satisfaction_drivers"`
}

// SentimentBreakdown holds the final positive/negative/neutral percentages of
// the aggregate report. The three values sum to 100 up to rounding.
type SentimentBreakdown struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// NamedCount pairs a label with an occurrence count.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DateCount is the number of reviews published on a given ISO date.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// NPSBucket is one bar of the 0-10 Net Promoter Score histogram.
type NPSBucket struct {
	Value    int    `json:"value"`
	Count    int    `json:"count"`
	Category string `json:"category"` // detractor, passive, promoter
}

// NPSResult is the Net Promoter Score block of the aggregate report.
type NPSResult struct {
	Score        int         `json:"score"`
	PromoterPct  float64     `json:"promoter_pct"`
	PassivePct   float64     `json:"passive_pct"`
	DetractorPct float64     `json:"detractor_pct"`
	Histogram    []NPSBucket `json:"histogram"`
}

// ReviewSummaryItem is one row of the review-level summary list, strictly
// index-aligned with the source review list.
type ReviewSummaryItem struct {
	Text      string    `json:"text"`
	Score     float64   `json:"score"`
	Sentiment Sentiment `json:"sentiment"`
}

// AggregateReport is the final output of one pipeline run.
type AggregateReport struct {
	ReviewCount       int                 `json:"review_count"`
	Language          string              `json:"language"`
	Sentiment         SentimentBreakdown  `json:"sentiment"`
	AverageScore      float64             `json:"average_score"`
	AverageRating     float64             `json:"average_rating"`
	SatisfactionScore int                 `json:"satisfaction_score"`
	NPS               *NPSResult          `json:"nps"`
	ReviewsByDate     []DateCount         `json:"reviews_by_date"`
	Themes            []NamedCount        `json:"themes"`
	Emotions          []NamedCount        `json:"emotions"`
	Strengths         []NamedCount        `json:"strengths"`
	Weaknesses        []NamedCount        `json:"weaknesses"`
	ReviewSummary     []ReviewSummaryItem `json:"review_summary"`
	Holistic          HolisticReport      `json:"holistic"`
}

// CacheEntry is one row of the URL-keyed review cache. One entry per URL,
// last write wins.
type CacheEntry struct {
	URL       string      `json:"url"`
	Reviews   []RawReview `json:"reviews"`
	CreatedAt time.Time   `json:"created_at"`
}

// StoredReport is a persisted pipeline result, retrievable by ID and
// optionally archived to object storage by the background worker.
type StoredReport struct {
	ID         string           `json:"id"`
	SourceKind SourceKind       `json:"source_kind"`
	SourceURL  string           `json:"source_url,omitempty"`
	Report     *AggregateReport `json:"report"`
	DurationMs int64            `json:"duration_ms"`
	CreatedAt  time.Time        `json:"created_at"`
	ArchivedAt *time.Time       `json:"archived_at,omitempty"`
}

// Float64Ptr returns a pointer to v. Convenience for RawReview ratings.
func Float64Ptr(v float64) *float64 { return &v }
