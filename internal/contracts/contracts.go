// Package contracts defines interfaces that decouple the batch layer from the
// download engine and storage implementations.
package contracts

import (
	"context"
	"database/sql"
	"time"

	"batchtube/internal/models"
)

// ProgressFunc receives per-item progress callbacks from the engine.
// fraction is in [0.0, 1.0], speed in bytes per second.
type ProgressFunc func(fraction, speed float64, eta time.Duration)

// Engine is the external component that performs one download given a request.
// Fetch blocks until the download reaches a terminal state; onProgress may be
// invoked zero or more times before it returns.
type Engine interface {
	Fetch(ctx context.Context, req *models.DownloadRequest, onProgress ProgressFunc) (*models.Outcome, error)
}

// HistoryStore allows access to the download history repo methods.
type HistoryStore interface {
	GetDB() *sql.DB

	// Batch lifecycle.
	BeginBatch(ctx context.Context, batchID string, requests []*models.DownloadRequest) error
	UpdateDownloadStatuses(ctx context.Context, updates []models.StatusUpdate) error
	FinishBatch(ctx context.Context, result *models.BatchResult) error

	// Query operations.
	RecentDownloads(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	SearchDownloads(ctx context.Context, term string) ([]models.HistoryEntry, error)
	DownloadsSince(ctx context.Context, expr string) ([]models.HistoryEntry, error)

	// Delete operations.
	ClearDownloads(ctx context.Context, olderThan string) (int64, error)
}
