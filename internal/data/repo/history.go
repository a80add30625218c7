// Package repo implements the storage layer over the program database.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"batchtube/internal/contracts"
	"batchtube/internal/domain/consts"
	"batchtube/internal/models"
	"batchtube/internal/utils/logging"

	"github.com/Masterminds/squirrel"
	"github.com/araddon/dateparse"
)

// HistoryStore persists batches and per-download outcomes.
type HistoryStore struct {
	DB *sql.DB
}

var _ contracts.HistoryStore = (*HistoryStore)(nil)

// GetHistoryStore returns a history store with injected database.
func GetHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{DB: db}
}

// GetDB returns the database.
func (hs *HistoryStore) GetDB() *sql.DB {
	return hs.DB
}

// BeginBatch inserts the batch row and a pending download row per request.
func (hs *HistoryStore) BeginBatch(ctx context.Context, batchID string, requests []*models.DownloadRequest) error {
	var committed bool

	tx, err := hs.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("Error rolling back batch %s start: %v", batchID, rbErr)
			}
		}
	}()

	insertBatch := squirrel.Insert(consts.DBBatches).
		Columns(consts.QBatchID, consts.QBatchTotal, consts.QBatchStartedAt).
		Values(batchID, len(requests), time.Now()).
		RunWith(tx)
	if _, err := insertBatch.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert batch %s: %w", batchID, err)
	}

	for _, req := range requests {
		insertDL := squirrel.Insert(consts.DBDownloads).
			Columns(consts.QDLItemID, consts.QDLBatchID, consts.QDLURL, consts.QDLStatus).
			Values(req.ID, batchID, req.URL, models.StatusPending).
			RunWith(tx)
		if _, err := insertDL.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert download row for %q: %w", req.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch start: %w", err)
	}
	committed = true
	return nil
}

// UpdateDownloadStatuses writes live status updates for in-flight downloads.
func (hs *HistoryStore) UpdateDownloadStatuses(ctx context.Context, updates []models.StatusUpdate) error {
	var committed bool

	tx, err := hs.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("Failed to rollback status updates: %v", rbErr)
			}
		}
	}()

	for _, update := range updates {
		pct := update.Percent
		if pct > 100.0 {
			pct = 100.0
		} else if pct < 0.0 {
			pct = 0.0
		}

		query := squirrel.Update(consts.DBDownloads).
			Set(consts.QDLStatus, update.Status).
			Set(consts.QDLPct, pct).
			Set(consts.QDLUpdatedAt, time.Now()).
			Where(squirrel.Eq{consts.QDLItemID: update.ItemID}).
			RunWith(tx)
		if _, err := query.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to update status for item %s: %w", update.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status updates: %w", err)
	}
	committed = true
	return nil
}

// FinishBatch records final per-item outcomes and seals the batch row.
func (hs *HistoryStore) FinishBatch(ctx context.Context, result *models.BatchResult) error {
	var committed bool

	tx, err := hs.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("Error rolling back batch %s completion: %v", result.BatchID, rbErr)
			}
		}
	}()

	for itemID, item := range result.Items {
		pct := 0.0
		if item.Status == models.StatusSucceeded {
			pct = 100.0
		}
		query := squirrel.Update(consts.DBDownloads).
			Set(consts.QDLStatus, item.Status).
			Set(consts.QDLPct, pct).
			Set(consts.QDLFilename, item.Filename).
			Set(consts.QDLBytes, item.BytesWritten).
			Set(consts.QDLDuration, item.Duration.Milliseconds()).
			Set(consts.QDLErrReason, item.ErrReason).
			Set(consts.QDLUpdatedAt, time.Now()).
			Where(squirrel.Eq{consts.QDLItemID: itemID}).
			RunWith(tx)
		if _, err := query.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to finalize download row for item %s: %w", itemID, err)
		}
	}

	succeeded, failed, skipped := result.Counts()
	batchQuery := squirrel.Update(consts.DBBatches).
		Set(consts.QBatchSucceeded, succeeded).
		Set(consts.QBatchFailed, failed).
		Set(consts.QBatchSkipped, skipped).
		Set(consts.QBatchFinishedAt, result.FinishedAt).
		Where(squirrel.Eq{consts.QBatchID: result.BatchID}).
		RunWith(tx)
	if _, err := batchQuery.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to finalize batch %s: %w", result.BatchID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch completion: %w", err)
	}
	committed = true

	logging.S("Recorded batch %s: %d succeeded, %d failed, %d skipped",
		result.BatchID, succeeded, failed, skipped)
	return nil
}

// RecentDownloads returns the newest download rows, most recent first.
func (hs *HistoryStore) RecentDownloads(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := hs.selectDownloads().
		OrderBy(consts.QDLCreatedAt + " DESC").
		Limit(uint64(limit))
	return hs.queryEntries(ctx, query)
}

// SearchDownloads returns download rows whose URL or filename contains term.
func (hs *HistoryStore) SearchDownloads(ctx context.Context, term string) ([]models.HistoryEntry, error) {
	pattern := "%" + term + "%"
	query := hs.selectDownloads().
		Where(squirrel.Or{
			squirrel.Like{consts.QDLURL: pattern},
			squirrel.Like{consts.QDLFilename: pattern},
		}).
		OrderBy(consts.QDLCreatedAt + " DESC")
	return hs.queryEntries(ctx, query)
}

// DownloadsSince returns download rows created at or after the given time
// expression. Free-form expressions like "2025-01-02" or "02 Jan 2025" parse.
func (hs *HistoryStore) DownloadsSince(ctx context.Context, expr string) ([]models.HistoryEntry, error) {
	since, err := dateparse.ParseAny(expr)
	if err != nil {
		return nil, fmt.Errorf("could not parse time expression %q: %w", expr, err)
	}
	query := hs.selectDownloads().
		Where(squirrel.GtOrEq{consts.QDLCreatedAt: since}).
		OrderBy(consts.QDLCreatedAt + " DESC")
	return hs.queryEntries(ctx, query)
}

// ClearDownloads deletes download history. An empty olderThan clears all rows;
// otherwise only rows created before the parsed time are removed.
func (hs *HistoryStore) ClearDownloads(ctx context.Context, olderThan string) (int64, error) {
	del := squirrel.Delete(consts.DBDownloads)
	if olderThan != "" {
		cutoff, err := dateparse.ParseAny(olderThan)
		if err != nil {
			return 0, fmt.Errorf("could not parse time expression %q: %w", olderThan, err)
		}
		del = del.Where(squirrel.Lt{consts.QDLCreatedAt: cutoff})
	}

	res, err := del.RunWith(hs.DB).ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear download history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	logging.I("Cleared %d download history rows", n)
	return n, nil
}

// selectDownloads builds the base select over the downloads table.
func (hs *HistoryStore) selectDownloads() squirrel.SelectBuilder {
	return squirrel.Select(
		consts.QDLID, consts.QDLItemID, consts.QDLBatchID, consts.QDLURL,
		consts.QDLFilename, consts.QDLStatus, consts.QDLPct, consts.QDLBytes,
		consts.QDLDuration, consts.QDLErrReason, consts.QDLCreatedAt).
		From(consts.DBDownloads)
}

// queryEntries executes a select and scans the rows into history entries.
func (hs *HistoryStore) queryEntries(ctx context.Context, query squirrel.SelectBuilder) ([]models.HistoryEntry, error) {
	rows, err := query.RunWith(hs.DB).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query download history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.E("Failed to close history rows: %v", closeErr)
		}
	}()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e          models.HistoryEntry
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.ItemID, &e.BatchID, &e.URL, &e.Filename,
			&e.Status, &e.Percent, &e.Bytes, &durationMS, &e.ErrReason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
