package batch

import (
	"context"
	"time"

	"batchtube/internal/contracts"
	"batchtube/internal/domain/consts"
	"batchtube/internal/models"
	"batchtube/internal/utils/logging"
)

// Tracker forwards live status updates from workers to the history store.
// Updates flow through a buffered channel so workers never block on storage.
type Tracker struct {
	updates chan models.StatusUpdate
	done    chan struct{}
	store   contracts.HistoryStore
}

// NewTracker returns a tracker flushing into the given store.
func NewTracker(store contracts.HistoryStore) *Tracker {
	return &Tracker{
		updates: make(chan models.StatusUpdate, 100),
		done:    make(chan struct{}),
		store:   store,
	}
}

// Start begins processing status updates.
func (t *Tracker) Start(ctx context.Context) {
	go t.processUpdates(ctx)
}

// Stop stops status tracking after draining buffered updates.
func (t *Tracker) Stop() {
	close(t.done)
}

// Send queues one status update. Drops the update rather than stalling a
// worker when the buffer is full.
func (t *Tracker) Send(u models.StatusUpdate) {
	select {
	case t.updates <- u:
	default:
		logging.D(2, "Dropped status update for item %s (buffer full)", u.ItemID)
	}
}

// processUpdates processes download status updates until stopped.
func (t *Tracker) processUpdates(ctx context.Context) {
	var last models.StatusUpdate
	for {
		select {
		case <-t.done:
			for {
				select {
				case update := <-t.updates:
					t.flushUpdates(ctx, []models.StatusUpdate{update})
				default:
					return
				}
			}

		case update := <-t.updates:
			if update == last {
				continue
			}
			last = update
			logging.D(1, "Status update for %q: status=%s pct=%.1f err=%v",
				update.URL, update.Status, update.Percent, update.Err)
			t.flushUpdates(ctx, []models.StatusUpdate{update})
		}
	}
}

// flushUpdates writes pending status updates with bounded retry.
func (t *Tracker) flushUpdates(ctx context.Context, updates []models.StatusUpdate) {
	if len(updates) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, consts.FlushTimeout)
	defer cancel()

	backoff := consts.Interval100ms
	const maxRetries = 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := t.store.UpdateDownloadStatuses(ctx, updates); err != nil {
			if attempt == maxRetries-1 {
				logging.E("Failed to flush download statuses after %d attempts: %v", maxRetries, err)
				return
			}
			logging.W("Retrying status flush after failure (attempt %d/%d): %v",
				attempt+1, maxRetries, err)
			time.Sleep(backoff * time.Duration(attempt+1))
			continue
		}
		break
	}
	logging.D(2, "Flushed %d status updates", len(updates))
}
