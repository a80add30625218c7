package batch_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"batchtube/internal/batch"
	"batchtube/internal/models"

	"github.com/stretchr/testify/require"
)

// fakeStore records every history call it receives.
type fakeStore struct {
	mu        sync.Mutex
	began     []string
	updates   []models.StatusUpdate
	finished  []*models.BatchResult
	updateErr error
}

func (s *fakeStore) GetDB() *sql.DB { return nil }

func (s *fakeStore) BeginBatch(_ context.Context, batchID string, _ []*models.DownloadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.began = append(s.began, batchID)
	return nil
}

func (s *fakeStore) UpdateDownloadStatuses(_ context.Context, updates []models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, updates...)
	return nil
}

func (s *fakeStore) FinishBatch(_ context.Context, result *models.BatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, result)
	return nil
}

func (s *fakeStore) RecentDownloads(context.Context, int) ([]models.HistoryEntry, error) {
	return nil, nil
}

func (s *fakeStore) SearchDownloads(context.Context, string) ([]models.HistoryEntry, error) {
	return nil, nil
}

func (s *fakeStore) DownloadsSince(context.Context, string) ([]models.HistoryEntry, error) {
	return nil, nil
}

func (s *fakeStore) ClearDownloads(context.Context, string) (int64, error) { return 0, nil }

func TestTrackerFlushesUpdatesInOrder(t *testing.T) {
	store := &fakeStore{}
	tr := batch.NewTracker(store)
	tr.Start(context.Background())

	sent := []models.StatusUpdate{
		{ItemID: "a", URL: "https://example.com/a", Status: models.StatusInProgress, Percent: 0},
		{ItemID: "a", URL: "https://example.com/a", Status: models.StatusInProgress, Percent: 50},
		{ItemID: "a", URL: "https://example.com/a", Status: models.StatusSucceeded, Percent: 100},
	}
	for _, u := range sent {
		tr.Send(u)
	}
	tr.Stop()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.updates) == len(sent)
	}, 2*time.Second, 10*time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	for i, u := range sent {
		require.Equal(t, u.Percent, store.updates[i].Percent)
		require.Equal(t, u.Status, store.updates[i].Status)
	}
}

func TestTrackerDropsConsecutiveDuplicates(t *testing.T) {
	store := &fakeStore{}
	tr := batch.NewTracker(store)
	tr.Start(context.Background())

	u := models.StatusUpdate{ItemID: "a", URL: "https://example.com/a", Status: models.StatusInProgress, Percent: 25}
	tr.Send(u)
	tr.Send(u)
	tr.Send(u)

	// Let the identical updates drain through before stopping, otherwise the
	// shutdown path flushes them without deduplication.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.updates) >= 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	tr.Stop()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.updates) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubmitWithStoreRecordsBatchLifecycle(t *testing.T) {
	store := &fakeStore{}
	eng := &fakeEngine{}
	reqs := makeRequests(2)

	h, err := batch.Submit(context.Background(), eng, reqs, batch.SubmitOptions{
		MaxConcurrent: 2,
		Backoff:       5 * time.Millisecond,
		Store:         store,
	})
	require.NoError(t, err)

	result, err := h.Await(context.Background())
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Equal(t, []string{h.BatchID}, store.began)
	require.Len(t, store.finished, 1)
	require.Same(t, result, store.finished[0])
	require.NotEmpty(t, store.updates, "live status updates should reach the store")
}
