package batch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"batchtube/internal/models"
)

// ErrLateRecord signals a double record or a record after finalization. Either
// means the worker lifecycle is broken and should fail loudly in testing.
var ErrLateRecord = errors.New("result recorded after finalize or recorded twice")

// Collector is the in-memory ledger of terminal outcomes for one batch.
type Collector struct {
	mu        sync.Mutex
	items     map[string]models.ItemResult
	batchID   string
	startedAt time.Time
	result    *models.BatchResult
}

// NewCollector returns an empty ledger for the given batch.
func NewCollector(batchID string) *Collector {
	return &Collector{
		items:     make(map[string]models.ItemResult),
		batchID:   batchID,
		startedAt: time.Now(),
	}
}

// Record stores the terminal outcome for one item. Called exactly once per
// item by the worker that completed it.
func (c *Collector) Record(itemID string, res models.ItemResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result != nil {
		return fmt.Errorf("item %s: %w", itemID, ErrLateRecord)
	}
	if _, exists := c.items[itemID]; exists {
		return fmt.Errorf("item %s: %w", itemID, ErrLateRecord)
	}
	c.items[itemID] = res
	return nil
}

// Recorded reports whether an outcome exists for the item.
func (c *Collector) Recorded(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[itemID]
	return ok
}

// Finalize seals the ledger and returns the complete result map. Subsequent
// calls return the identical result.
func (c *Collector) Finalize() *models.BatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result != nil {
		return c.result
	}

	items := make(map[string]models.ItemResult, len(c.items))
	for id, res := range c.items {
		items[id] = res
	}
	c.result = &models.BatchResult{
		BatchID:    c.batchID,
		Items:      items,
		StartedAt:  c.startedAt,
		FinishedAt: time.Now(),
	}
	return c.result
}
