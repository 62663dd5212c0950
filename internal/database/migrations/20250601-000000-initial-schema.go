package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250601-000000",
		Description: "Initial schema",
		Up: []string{
			// Review cache - one row per scraped URL, whole-value replacement
			`CREATE TABLE IF NOT EXISTS review_cache (
				url TEXT PRIMARY KEY,
				reviews_json TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,

			// Reports - persisted pipeline results
			`CREATE TABLE IF NOT EXISTS reports (
				id TEXT PRIMARY KEY,
				source_kind TEXT NOT NULL,
				source_url TEXT,
				report_json TEXT NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				archived_at TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_reports_archived ON reports(archived_at) WHERE archived_at IS NULL`,
		},
	})
}
