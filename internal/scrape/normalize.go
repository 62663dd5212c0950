package scrape

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/tidwall/gjson"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// RatingScale describes how a provider encodes ratings.
type RatingScale int

const (
	// ScaleFiveStar is the canonical 1-5 scale.
	ScaleFiveStar RatingScale = iota
	// ScaleTenPoint is the booking-site 0-10 scale, remapped to 1-5.
	ScaleTenPoint
)

// midpointRating substitutes for missing or invalid ratings.
const midpointRating = 3

var (
	// The known payload shapes name their fields narrowly; the generic scan
	// casts a wider net so it also catches content/review and score fields.
	probeTextKeys   = []string{"text", "reviewText"}
	probeRatingKeys = []string{"rating", "totalScore", "stars"}
	scanTextKeys    = []string{"text", "reviewText", "content", "review"}
	scanRatingKeys  = []string{"totalScore", "stars", "rating", "score"}
	dateKeys        = []string{"publishedAtDate", "publishedDate", "reviewDate", "date", "publishedAt", "createdAt"}
)

// ExtractReviews normalizes an opaque dataset-items payload into RawReviews.
// Per item it applies ordered shape probes, first match wins; when no probe
// matches anything across all items it falls back to a generic recursive scan
// of the whole object graph. It never fails: unusable payloads yield an empty
// slice.
func ExtractReviews(itemsJSON []byte, scale RatingScale) []models.RawReview {
	root := gjson.ParseBytes(itemsJSON)

	items := []gjson.Result{root}
	if root.IsArray() {
		items = root.Array()
	}

	var reviews []models.RawReview
	for _, item := range items {
		reviews = append(reviews, probeItem(item, scale)...)
	}
	if len(reviews) > 0 {
		return reviews
	}

	// No probe matched anywhere; scan every node of the graph. A parent node
	// may itself be a review and contain nested reviews, so both are emitted
	// and duplicates are acceptable.
	for _, item := range items {
		reviews = append(reviews, scanGraph(item, scale)...)
	}
	return reviews
}

// probeItem tries the known payload shapes in priority order.
func probeItem(item gjson.Result, scale RatingScale) []models.RawReview {
	// 1. item.reviews[]
	if reviews := reviewsFromArray(item.Get("reviews"), scale); len(reviews) > 0 {
		return reviews
	}

	// 2. the item itself is a review with an explicit numeric rating
	if review, ok := reviewFromObject(item, scale, true); ok {
		return []models.RawReview{review}
	}

	// 3. item.reviewsData[]
	if reviews := reviewsFromArray(item.Get("reviewsData"), scale); len(reviews) > 0 {
		return reviews
	}

	// 4. item.data[].reviews[]
	var nested []models.RawReview
	item.Get("data").ForEach(func(_, d gjson.Result) bool {
		nested = append(nested, reviewsFromArray(d.Get("reviews"), scale)...)
		return true
	})
	return nested
}

func reviewsFromArray(arr gjson.Result, scale RatingScale) []models.RawReview {
	if !arr.IsArray() {
		return nil
	}
	var reviews []models.RawReview
	arr.ForEach(func(_, el gjson.Result) bool {
		if review, ok := reviewFromObject(el, scale, false); ok {
			reviews = append(reviews, review)
		}
		return true
	})
	return reviews
}

// reviewFromObject extracts a RawReview from an object node. With
// requireRating set, a numeric rating field is part of the match (used when
// probing whether the item itself is a review); otherwise a missing rating
// falls back to the scale midpoint.
func reviewFromObject(obj gjson.Result, scale RatingScale, requireRating bool) (models.RawReview, bool) {
	if !obj.IsObject() {
		return models.RawReview{}, false
	}

	text := firstString(obj, probeTextKeys)
	if text == "" {
		return models.RawReview{}, false
	}

	rating, hasRating := firstNumber(obj, probeRatingKeys)
	if requireRating && !hasRating {
		return models.RawReview{}, false
	}

	return models.RawReview{
		Text:   text,
		Rating: models.Float64Ptr(normalizeRating(rating, hasRating, scale)),
		Date:   dateFromObject(obj),
	}, true
}

// scanGraph recursively walks arrays element-wise and objects property-wise,
// emitting a review at every object node that pairs a text-like field with a
// numeric rating-like field. Children are recursed regardless of whether the
// parent matched.
func scanGraph(node gjson.Result, scale RatingScale) []models.RawReview {
	var reviews []models.RawReview

	switch {
	case node.IsArray():
		node.ForEach(func(_, el gjson.Result) bool {
			reviews = append(reviews, scanGraph(el, scale)...)
			return true
		})
	case node.IsObject():
		if text := firstString(node, scanTextKeys); text != "" {
			if rating, ok := firstNumber(node, scanRatingKeys); ok {
				reviews = append(reviews, models.RawReview{
					Text:   text,
					Rating: models.Float64Ptr(normalizeRating(rating, true, scale)),
					Date:   dateFromObject(node),
				})
			}
		}
		node.ForEach(func(_, child gjson.Result) bool {
			reviews = append(reviews, scanGraph(child, scale)...)
			return true
		})
	}

	return reviews
}

// normalizeRating maps a provider rating onto the canonical 1-5 scale.
func normalizeRating(raw float64, present bool, scale RatingScale) float64 {
	if !present {
		return midpointRating
	}
	switch scale {
	case ScaleTenPoint:
		if raw < 0 || raw > 10 {
			return midpointRating
		}
		mapped := math.Ceil(raw / 2)
		if mapped < 1 {
			mapped = 1
		}
		return mapped
	default:
		if raw < 0 || raw > 5 {
			return midpointRating
		}
		return raw
	}
}

// dateFromObject finds the first date-like field and reduces it to an ISO
// YYYY-MM-DD string. String values are truncated to their first 10
// characters; anything unparseable becomes Unknown.
func dateFromObject(obj gjson.Result) string {
	for _, key := range dateKeys {
		field := obj.Get(key)
		if !field.Exists() {
			continue
		}
		if field.Type != gjson.String {
			return models.DateUnknown
		}

		s := field.String()
		if len(s) >= 10 {
			if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
				return s[:10]
			}
		}
		// Not ISO-prefixed; provider dates show up in arbitrary formats
		if t, err := dateparse.ParseAny(strings.TrimSpace(s)); err == nil {
			return t.Format("2006-01-02")
		}
		return models.DateUnknown
	}
	return models.DateUnknown
}

func firstString(obj gjson.Result, keys []string) string {
	for _, key := range keys {
		if v := obj.Get(key); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return v.String()
		}
	}
	return ""
}

func firstNumber(obj gjson.Result, keys []string) (float64, bool) {
	for _, key := range keys {
		if v := obj.Get(key); v.Type == gjson.Number {
			return v.Float(), true
		}
	}
	return 0, false
}
