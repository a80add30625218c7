package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"batchtube/internal/contracts"
	"batchtube/internal/models"
	"batchtube/internal/queue"
	"batchtube/internal/utils/logging"
)

// pool runs a bounded set of workers that drain the queue and invoke the
// download engine. The worker count is the concurrency bound: each worker
// holds at most one item, so the number of in-progress items can never
// exceed it.
type pool struct {
	q        *queue.Queue
	engine   contracts.Engine
	agg      *Aggregator
	coll     *Collector
	tracker  *Tracker
	workers  int
	backoff  time.Duration
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// start launches the worker goroutines.
func (p *pool) start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.workerLoop(ctx, id)
		}(i)
	}
}

// join blocks until all workers have exited.
func (p *pool) join() {
	p.wg.Wait()
}

// InFlight returns the number of items currently being processed.
func (p *pool) InFlight() int64 {
	return p.inFlight.Load()
}

// workerLoop pulls items until the queue stops, drains, or the context ends.
// An empty-but-paused queue is waited out with a backoff sleep, not a spin.
func (p *pool) workerLoop(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			logging.D(2, "Worker %d exiting: context done", id)
			return
		}

		item := p.q.Dequeue()
		if item == nil {
			switch p.q.State() {
			case queue.StateStopped:
				logging.D(2, "Worker %d exiting: queue stopped", id)
				return
			case queue.StateRunning:
				if p.q.Len() == 0 {
					logging.D(2, "Worker %d exiting: queue drained", id)
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.backoff):
			}
			continue
		}

		p.inFlight.Add(1)
		p.runItem(ctx, item)
		p.inFlight.Add(-1)
	}
}

// runItem executes a single work item against the engine. Failures are
// absorbed into the item's result; they never halt the pool.
func (p *pool) runItem(ctx context.Context, item *models.WorkItem) {
	req := item.Request

	item.Status = models.StatusInProgress
	p.sendUpdate(item, 0.0, nil)
	logging.I("Starting download for %s", req.URL)

	start := time.Now()
	onProgress := func(fraction, speed float64, eta time.Duration) {
		p.agg.Report(req.ID, fraction, speed, eta)
		p.sendUpdate(item, fraction*100, nil)
	}

	outcome, err := p.engine.Fetch(ctx, req, onProgress)

	res := models.ItemResult{
		URL:      req.URL,
		Duration: time.Since(start),
	}
	if err != nil {
		item.Status = models.StatusFailed
		item.Reason = err.Error()
		res.Status = models.StatusFailed
		res.ErrReason = err.Error()
		logging.E("Download failed for %s: %v", req.URL, err)
	} else {
		item.Status = models.StatusSucceeded
		res.Status = models.StatusSucceeded
		if outcome != nil {
			res.Filename = outcome.Filename
			res.BytesWritten = outcome.BytesWritten
		}
		logging.S("Download completed for %s", req.URL)
	}

	p.agg.MarkDone(req.ID)
	p.sendUpdate(item, 100.0, err)

	if recErr := p.coll.Record(req.ID, res); recErr != nil {
		logging.E("Result ledger violation: %v", recErr)
	}
}

// sendUpdate forwards a live status update to the tracker, if one is attached.
func (p *pool) sendUpdate(item *models.WorkItem, pct float64, err error) {
	if p.tracker == nil {
		return
	}
	p.tracker.Send(models.StatusUpdate{
		ItemID:  item.Request.ID,
		URL:     item.Request.URL,
		Status:  item.Status,
		Percent: pct,
		Err:     err,
	})
}
