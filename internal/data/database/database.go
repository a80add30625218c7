// Package database sets up/opens the program database.
package database

import (
	"database/sql"
	"fmt"

	"batchtube/internal/utils/logging"

	// Package sqlite3 provides the SQLite3 database driver.
	_ "github.com/mattn/go-sqlite3"
)

const dbDriver = "sqlite3"

// Database holds the program database handle.
type Database struct {
	DB *sql.DB
}

// InitDB opens (or creates) the database at the given path and prepares it
// for concurrent access.
func InitDB(path string) (*Database, error) {
	d := new(Database)

	var err error
	d.DB, err = sql.Open(dbDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at path %q: %w", path, err)
	}

	pragmas := []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA synchronous = NORMAL;`,
	}
	for _, p := range pragmas {
		if _, err := d.DB.Exec(p); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if err := d.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return d, nil
}

// Close closes the underlying database handle.
func (d *Database) Close() {
	if err := d.DB.Close(); err != nil {
		logging.E("Failed to close database: %v", err)
	}
}

// initTables initializes the SQL tables.
func (d *Database) initTables() error {
	tx, err := d.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("Transaction rollback failed after original error %v: %v", err, rbErr)
			}
		}
	}()

	if err = initBatchesTable(tx); err != nil {
		return err
	}
	if err = initDownloadsTable(tx); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}
