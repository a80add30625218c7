// Package queue provides the ordered, thread-safe holding pen for download
// requests that the worker pool drains.
package queue

import (
	"errors"
	"sync"

	"batchtube/internal/models"
)

// State holds constant queue state strings.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

var (
	// ErrQueueClosed is returned by Enqueue once the queue has been stopped.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrQueueRunning is returned by Clear while the queue is still running.
	ErrQueueRunning = errors.New("queue is running, pause or stop it first")
)

// Queue hands out work items in FIFO order. A single mutex guards the state
// flag and the item list together, so a state check and a pop can never
// interleave with a transition.
type Queue struct {
	mu    sync.Mutex
	state State
	items []*models.WorkItem
}

// New returns an idle, empty queue.
func New() *Queue {
	return &Queue{state: StateIdle}
}

// Enqueue appends a request to the tail. Fails only once the queue is stopped.
func (q *Queue) Enqueue(req *models.DownloadRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == StateStopped {
		return ErrQueueClosed
	}
	q.items = append(q.items, models.NewWorkItem(req))
	return nil
}

// Dequeue pops the head item if the queue is running. Returns nil without
// blocking when the queue is paused, stopped, or empty. An item is handed out
// at most once.
func (q *Queue) Dequeue() *models.WorkItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateRunning || len(q.items) == 0 {
		return nil
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// Start transitions the queue from idle to running.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == StateIdle {
		q.state = StateRunning
	}
}

// Pause holds back further dequeues. No effect unless the queue is running.
func (q *Queue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == StateRunning {
		q.state = StatePaused
	}
}

// Resume continues dequeues after a pause. No effect unless paused.
func (q *Queue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == StatePaused {
		q.state = StateRunning
	}
}

// Stop closes the queue permanently. Items already dequeued by workers are
// allowed to finish; nothing further is handed out.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state = StateStopped
}

// Clear removes all not-yet-dequeued items and returns them. Fails while the
// queue is running so in-flight accounting cannot be lost.
func (q *Queue) Clear() ([]*models.WorkItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == StateRunning {
		return nil, ErrQueueRunning
	}
	cleared := q.items
	q.items = nil
	return cleared, nil
}

// State returns the current queue state.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Len returns the count of not-yet-dequeued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
