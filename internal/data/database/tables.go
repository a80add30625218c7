package database

import (
	"database/sql"
	"fmt"
)

// initBatchesTable creates the batches table.
func initBatchesTable(tx *sql.Tx) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		total INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	)`
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("failed to create batches table: %w", err)
	}
	return nil
}

// initDownloadsTable creates the downloads table and its indexes.
func initDownloadsTable(tx *sql.Tx) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL UNIQUE,
		batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		pct REAL NOT NULL DEFAULT 0.0,
		bytes_written INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error_reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("failed to create downloads table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_downloads_url ON downloads(url)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_status ON downloads(status)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at)`,
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
