package models

// ItemStatus holds constant work item status strings.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusSucceeded  ItemStatus = "succeeded"
	StatusFailed     ItemStatus = "failed"
	StatusSkipped    ItemStatus = "skipped"
)

// Terminal reports whether the status is final for an item.
func (s ItemStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// WorkItem is one request's mutable execution state within a batch.
// Owned by at most one worker at a time.
type WorkItem struct {
	Request *DownloadRequest
	Status  ItemStatus
	Reason  string
}

// NewWorkItem wraps a request in its pending execution state.
func NewWorkItem(req *DownloadRequest) *WorkItem {
	return &WorkItem{
		Request: req,
		Status:  StatusPending,
	}
}

// StatusUpdate models a live status change for one work item.
type StatusUpdate struct {
	ItemID  string
	URL     string
	Status  ItemStatus
	Percent float64
	Err     error
}
