package source

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// Column header synonyms, matched case-insensitively (exact first, then
// substring). The review column is mandatory; rating and date are optional.
var (
	textHeaders   = []string{"review", "reviews", "avis", "comment", "feedback"}
	ratingHeaders = []string{"note", "notes", "rating", "score", "stars"}
	dateHeaders   = []string{"date", "published", "publishedat", "created", "timestamp"}
)

// SpreadsheetFetcher ingests uploaded workbook files. The first sheet is
// parsed as a row grid with row 0 as the header.
type SpreadsheetFetcher struct{}

// NewSpreadsheetFetcher creates a spreadsheet fetcher.
func NewSpreadsheetFetcher() *SpreadsheetFetcher {
	return &SpreadsheetFetcher{}
}

// Fetch parses the uploaded file. Rows are kept or dropped as whole tuples:
// a row without review text is dropped entirely, while blank rating or date
// cells leave those fields unset on the kept row, so columns never
// desynchronize.
func (f *SpreadsheetFetcher) Fetch(_ context.Context, ref models.SourceReference) ([]models.RawReview, error) {
	if len(ref.FileBytes) == 0 {
		return nil, models.NewValidationError("no spreadsheet file provided")
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(ref.FileBytes))
	if err != nil {
		return nil, models.NewValidationError("could not read spreadsheet: %v", err)
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, models.NewValidationError("spreadsheet has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, models.NewValidationError("could not read sheet %q: %v", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, models.NewValidationError("spreadsheet has no data rows")
	}

	textCol := matchColumn(rows[0], textHeaders)
	if textCol < 0 {
		return nil, models.NewValidationError("no review column found (expected a header like %q)", strings.Join(textHeaders, ", "))
	}
	ratingCol := matchColumn(rows[0], ratingHeaders)
	dateCol := matchColumn(rows[0], dateHeaders)

	var reviews []models.RawReview
	for _, row := range rows[1:] {
		text := cell(row, textCol)
		if text == "" {
			continue
		}

		review := models.RawReview{Text: text, Date: models.DateUnknown}
		if ratingCol >= 0 {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, ratingCol), ",", "."), 64); err == nil {
				review.Rating = models.Float64Ptr(v)
			}
		}
		if dateCol >= 0 {
			if t, err := dateparse.ParseAny(cell(row, dateCol)); err == nil {
				review.Date = t.Format("2006-01-02")
			}
		}
		reviews = append(reviews, review)
	}

	if len(reviews) == 0 {
		return nil, models.NewValidationError("spreadsheet has no data rows")
	}
	return reviews, nil
}

// matchColumn finds the first header matching a synonym: exact matches win
// over substring matches so "rating" beats a column named "rating notes".
func matchColumn(header []string, synonyms []string) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for i, h := range normalized {
		for _, s := range synonyms {
			if h == s {
				return i
			}
		}
	}
	for i, h := range normalized {
		for _, s := range synonyms {
			if h != "" && strings.Contains(h, s) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
