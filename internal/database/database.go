// Package database handles database connections and migrations.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/reviewlens/reviewlens-api/internal/database/migrations"
)

// New opens a libsql database.
// Local files use DATABASE_URL="file:path/to/db.sqlite"; a local libsql
// server ("turso dev") works with DATABASE_URL="http://127.0.0.1:8080".
func New(dsn string) (*sql.DB, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate runs pending database migrations.
func Migrate(db *sql.DB, logger *slog.Logger) error {
	return migrations.Run(db, logger)
}
