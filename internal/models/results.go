package models

import "time"

// Outcome is what the download engine reports for a finished fetch.
type Outcome struct {
	Filename     string
	BytesWritten int64
}

// ItemResult is the terminal record for one work item.
type ItemResult struct {
	URL          string
	Status       ItemStatus
	Filename     string
	BytesWritten int64
	Duration     time.Duration
	ErrReason    string
}

// BatchResult is the final, immutable map of item results for a batch.
type BatchResult struct {
	BatchID    string
	Items      map[string]ItemResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Counts tallies the terminal statuses in the result.
func (r *BatchResult) Counts() (succeeded, failed, skipped int) {
	for _, item := range r.Items {
		switch item.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

// HistoryEntry is one persisted download row, as read back from storage.
type HistoryEntry struct {
	ID        int64
	ItemID    string
	BatchID   string
	URL       string
	Filename  string
	Status    ItemStatus
	Percent   float64
	Bytes     int64
	Duration  time.Duration
	ErrReason string
	CreatedAt time.Time
}
