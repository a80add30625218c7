// Package batch sequences download requests through a bounded worker pool,
// aggregating progress and collecting per-item outcomes.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"batchtube/internal/contracts"
	"batchtube/internal/domain/consts"
	"batchtube/internal/models"
	"batchtube/internal/queue"
	"batchtube/internal/utils/logging"

	"github.com/google/uuid"
)

// ErrInvalidConcurrency is returned by Submit for a non-positive worker bound.
var ErrInvalidConcurrency = errors.New("max concurrent downloads must be a positive integer")

// SubmitOptions configures a batch submission.
type SubmitOptions struct {
	// MaxConcurrent bounds the number of simultaneous downloads. Required, > 0.
	MaxConcurrent int

	// Backoff is the sleep between dequeue attempts on an empty or paused
	// queue. Zero selects the default.
	Backoff time.Duration

	// Store, when set, receives live status updates and the final batch
	// record for history.
	Store contracts.HistoryStore
}

// Handle tracks one submitted batch through to its terminal state.
type Handle struct {
	BatchID string

	q         *queue.Queue
	pool      *pool
	agg       *Aggregator
	collector *Collector
	tracker   *Tracker
	store     contracts.HistoryStore
	requests  []*models.DownloadRequest

	done   chan struct{}
	result *models.BatchResult
}

// Submit validates and launches a batch of download requests against the
// engine. Every submitted request reaches exactly one terminal status in the
// batch result, even when the batch is stopped early.
func Submit(ctx context.Context, engine contracts.Engine, requests []*models.DownloadRequest, opts SubmitOptions) (*Handle, error) {
	if engine == nil {
		return nil, errors.New("download engine is nil")
	}
	if opts.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidConcurrency, opts.MaxConcurrent)
	}
	for _, req := range requests {
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("invalid download request: %w", err)
		}
	}

	if opts.Backoff <= 0 {
		opts.Backoff = consts.WorkerBackoff
	}

	batchID := uuid.NewString()

	q := queue.New()
	itemIDs := make([]string, 0, len(requests))
	for _, req := range requests {
		if err := q.Enqueue(req); err != nil {
			return nil, err
		}
		itemIDs = append(itemIDs, req.ID)
	}

	h := &Handle{
		BatchID:   batchID,
		q:         q,
		agg:       NewAggregator(itemIDs),
		collector: NewCollector(batchID),
		store:     opts.Store,
		requests:  requests,
		done:      make(chan struct{}),
	}

	if opts.Store != nil {
		if err := opts.Store.BeginBatch(ctx, batchID, requests); err != nil {
			return nil, fmt.Errorf("failed to record batch start: %w", err)
		}
		h.tracker = NewTracker(opts.Store)
		h.tracker.Start(ctx)
	}

	h.pool = &pool{
		q:       q,
		engine:  engine,
		agg:     h.agg,
		coll:    h.collector,
		tracker: h.tracker,
		workers: opts.MaxConcurrent,
		backoff: opts.Backoff,
	}

	logging.I("Submitting batch %s: %d requests, %d workers", batchID, len(requests), opts.MaxConcurrent)

	q.Start()
	h.pool.start(ctx)
	go h.finish(ctx)

	return h, nil
}

// Pause holds back pending items. In-flight downloads continue.
func (h *Handle) Pause() {
	h.q.Pause()
	logging.I("Batch %s paused", h.BatchID)
}

// Resume continues processing after a pause.
func (h *Handle) Resume() {
	h.q.Resume()
	logging.I("Batch %s resumed", h.BatchID)
}

// Stop drains the batch: in-flight items finish, pending items are skipped.
func (h *Handle) Stop() {
	h.q.Stop()
	logging.I("Batch %s stopping (draining in-flight items)", h.BatchID)
}

// Progress returns a point-in-time snapshot of batch progress.
func (h *Handle) Progress() models.BatchProgress {
	return h.agg.Snapshot()
}

// Done returns a channel closed when the batch reaches its terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Await blocks until the batch completes or ctx ends.
func (h *Handle) Await(ctx context.Context) (*models.BatchResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return h.result, nil
	}
}

// finish joins the pool, accounts for never-started items, seals the result,
// and hands it to the history store.
func (h *Handle) finish(ctx context.Context) {
	h.pool.join()
	h.q.Stop()

	// Items still pending after the pool exits (stopped batch) are skipped,
	// so every request reaches a terminal status exactly once.
	for _, req := range h.requests {
		if h.collector.Recorded(req.ID) {
			continue
		}
		if err := h.collector.Record(req.ID, models.ItemResult{
			URL:       req.URL,
			Status:    models.StatusSkipped,
			ErrReason: "batch stopped before item started",
		}); err != nil {
			logging.E("Result ledger violation: %v", err)
		}
	}

	h.result = h.collector.Finalize()

	if h.tracker != nil {
		h.tracker.Stop()
	}
	if h.store != nil {
		if err := h.store.FinishBatch(ctx, h.result); err != nil {
			logging.E("Failed to record batch %s completion: %v", h.BatchID, err)
		}
	}

	succeeded, failed, skipped := h.result.Counts()
	logging.I("Batch %s finished: %d succeeded, %d failed, %d skipped",
		h.BatchID, succeeded, failed, skipped)
	close(h.done)
}
