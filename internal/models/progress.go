package models

import "time"

// ItemProgress is the latest reported progress for a single work item.
type ItemProgress struct {
	Fraction float64
	Speed    float64 // bytes per second
	ETA      time.Duration
}

// BatchProgress is a point-in-time snapshot over all items in a batch.
// Overall is the arithmetic mean of per-item fractions, counting items
// that have not started yet as 0.0.
type BatchProgress struct {
	Items   map[string]ItemProgress
	Overall float64
}
