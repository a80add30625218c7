package batch

import (
	"sync"
	"time"

	"batchtube/internal/models"
)

// Aggregator merges per-item progress events into a coherent batch snapshot.
// Workers report concurrently for different items; no two workers ever report
// for the same item at once (single-owner invariant held by the pool).
type Aggregator struct {
	mu    sync.Mutex
	items map[string]models.ItemProgress
	total int
}

// NewAggregator tracks progress for a batch of the given item IDs. Items not
// yet reported count as 0.0 toward the overall mean.
func NewAggregator(itemIDs []string) *Aggregator {
	items := make(map[string]models.ItemProgress, len(itemIDs))
	for _, id := range itemIDs {
		items[id] = models.ItemProgress{}
	}
	return &Aggregator{
		items: items,
		total: len(itemIDs),
	}
}

// Report records the latest progress for one item.
func (a *Aggregator) Report(itemID string, fraction, speed float64, eta time.Duration) {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[itemID] = models.ItemProgress{
		Fraction: fraction,
		Speed:    speed,
		ETA:      eta,
	}
}

// MarkDone pins an item's fraction to 1.0 once it reaches a terminal status.
func (a *Aggregator) MarkDone(itemID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[itemID] = models.ItemProgress{Fraction: 1.0}
}

// Snapshot returns a consistent point-in-time copy, not a live reference.
func (a *Aggregator) Snapshot() models.BatchProgress {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := models.BatchProgress{
		Items: make(map[string]models.ItemProgress, len(a.items)),
	}
	var sum float64
	for id, p := range a.items {
		snap.Items[id] = p
		sum += p.Fraction
	}
	if a.total > 0 {
		snap.Overall = sum / float64(a.total)
	}
	return snap
}
