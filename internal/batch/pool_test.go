package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"batchtube/internal/batch"
	"batchtube/internal/contracts"
	"batchtube/internal/models"

	"github.com/stretchr/testify/require"
)

// fakeEngine stands in for yt-dlp. It reports midway progress once, can block
// on a gate, and fails the URLs it is told to fail.
type fakeEngine struct {
	gate     chan struct{} // each Fetch receives once before completing, when set
	started  chan string   // receives the URL when a Fetch begins, when set
	failWith map[string]string
	active   atomic.Int64
	peak     atomic.Int64
}

func (e *fakeEngine) Fetch(ctx context.Context, req *models.DownloadRequest, onProgress contracts.ProgressFunc) (*models.Outcome, error) {
	cur := e.active.Add(1)
	defer e.active.Add(-1)
	for {
		p := e.peak.Load()
		if cur <= p || e.peak.CompareAndSwap(p, cur) {
			break
		}
	}

	if e.started != nil {
		e.started <- req.URL
	}
	if onProgress != nil {
		onProgress(0.5, 2048, 10*time.Second)
	}
	if e.gate != nil {
		select {
		case <-e.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if reason, ok := e.failWith[req.URL]; ok {
		return nil, errors.New(reason)
	}
	return &models.Outcome{Filename: "/videos/" + req.ID + ".mp4", BytesWritten: 1 << 20}, nil
}

func makeRequests(n int) []*models.DownloadRequest {
	reqs := make([]*models.DownloadRequest, 0, n)
	for i := 0; i < n; i++ {
		reqs = append(reqs, models.NewDownloadRequest(
			fmt.Sprintf("https://example.com/video/%d", i), models.DownloadOptions{}))
	}
	return reqs
}

func TestSubmitRunsEveryItemToATerminalState(t *testing.T) {
	reqs := makeRequests(5)
	eng := &fakeEngine{failWith: map[string]string{
		reqs[1].URL: "video unavailable",
		reqs[3].URL: "video unavailable",
	}}

	h, err := batch.Submit(context.Background(), eng, reqs, batch.SubmitOptions{
		MaxConcurrent: 2,
		Backoff:       5 * time.Millisecond,
	})
	require.NoError(t, err)

	result, err := h.Await(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Items, len(reqs))

	succeeded, failed, skipped := result.Counts()
	require.Equal(t, 3, succeeded)
	require.Equal(t, 2, failed)
	require.Equal(t, 0, skipped)

	for _, req := range reqs {
		item, ok := result.Items[req.ID]
		require.Truef(t, ok, "missing result for %s", req.URL)
		if reason, shouldFail := eng.failWith[req.URL]; shouldFail {
			require.Equal(t, models.StatusFailed, item.Status)
			require.Equal(t, reason, item.ErrReason)
		} else {
			require.Equal(t, models.StatusSucceeded, item.Status)
			require.NotEmpty(t, item.Filename)
			require.Equal(t, int64(1<<20), item.BytesWritten)
		}
	}

	// Terminal items are pinned to 1.0 regardless of outcome.
	snap := h.Progress()
	require.Equal(t, 1.0, snap.Overall)
	for id, p := range snap.Items {
		require.Equalf(t, 1.0, p.Fraction, "item %s not pinned", id)
	}
}

func TestSubmitValidation(t *testing.T) {
	reqs := makeRequests(1)

	_, err := batch.Submit(context.Background(), nil, reqs, batch.SubmitOptions{MaxConcurrent: 1})
	require.Error(t, err)

	_, err = batch.Submit(context.Background(), &fakeEngine{}, reqs, batch.SubmitOptions{MaxConcurrent: 0})
	require.ErrorIs(t, err, batch.ErrInvalidConcurrency)

	_, err = batch.Submit(context.Background(), &fakeEngine{}, reqs, batch.SubmitOptions{MaxConcurrent: -3})
	require.ErrorIs(t, err, batch.ErrInvalidConcurrency)

	bad := []*models.DownloadRequest{models.NewDownloadRequest("ftp://example.com/v", models.DownloadOptions{})}
	_, err = batch.Submit(context.Background(), &fakeEngine{}, bad, batch.SubmitOptions{MaxConcurrent: 1})
	require.Error(t, err)
}

func TestInFlightNeverExceedsMaxConcurrent(t *testing.T) {
	const maxConcurrent = 2
	eng := &fakeEngine{}

	h, err := batch.Submit(context.Background(), eng, makeRequests(8), batch.SubmitOptions{
		MaxConcurrent: maxConcurrent,
		Backoff:       5 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = h.Await(context.Background())
	require.NoError(t, err)
	require.LessOrEqual(t, eng.peak.Load(), int64(maxConcurrent))
}

func TestStopSkipsPendingItems(t *testing.T) {
	reqs := makeRequests(4)
	eng := &fakeEngine{
		gate:    make(chan struct{}),
		started: make(chan string, len(reqs)),
	}

	h, err := batch.Submit(context.Background(), eng, reqs, batch.SubmitOptions{
		MaxConcurrent: 1,
		Backoff:       5 * time.Millisecond,
	})
	require.NoError(t, err)

	// One item in flight; stop before it completes, then release it.
	<-eng.started
	h.Stop()
	close(eng.gate)

	result, err := h.Await(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Items, len(reqs))

	succeeded, failed, skipped := result.Counts()
	require.Equal(t, 1, succeeded, "in-flight item should finish")
	require.Equal(t, 0, failed)
	require.Equal(t, 3, skipped, "pending items should be skipped")

	for _, item := range result.Items {
		if item.Status == models.StatusSkipped {
			require.NotEmpty(t, item.ErrReason)
		}
	}
}

func TestPauseHoldsBackPendingItems(t *testing.T) {
	reqs := makeRequests(3)
	eng := &fakeEngine{
		gate:    make(chan struct{}),
		started: make(chan string, len(reqs)),
	}

	h, err := batch.Submit(context.Background(), eng, reqs, batch.SubmitOptions{
		MaxConcurrent: 1,
		Backoff:       5 * time.Millisecond,
	})
	require.NoError(t, err)

	<-eng.started
	h.Pause()
	eng.gate <- struct{}{} // in-flight item runs to completion during the pause

	// No new item may start while paused.
	select {
	case url := <-eng.started:
		t.Fatalf("item %s started while paused", url)
	case <-time.After(100 * time.Millisecond):
	}

	h.Resume()
	for i := 0; i < len(reqs)-1; i++ {
		<-eng.started
		eng.gate <- struct{}{}
	}

	result, err := h.Await(context.Background())
	require.NoError(t, err)

	succeeded, failed, skipped := result.Counts()
	require.Equal(t, 3, succeeded)
	require.Equal(t, 0, failed)
	require.Equal(t, 0, skipped)
}

func TestAwaitHonorsContext(t *testing.T) {
	eng := &fakeEngine{gate: make(chan struct{})}
	h, err := batch.Submit(context.Background(), eng, makeRequests(1), batch.SubmitOptions{
		MaxConcurrent: 1,
		Backoff:       5 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = h.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(eng.gate)
	_, err = h.Await(context.Background())
	require.NoError(t, err)
}

func TestDoneClosesExactlyWhenBatchCompletes(t *testing.T) {
	eng := &fakeEngine{gate: make(chan struct{})}
	h, err := batch.Submit(context.Background(), eng, makeRequests(2), batch.SubmitOptions{
		MaxConcurrent: 2,
		Backoff:       5 * time.Millisecond,
	})
	require.NoError(t, err)

	select {
	case <-h.Done():
		t.Fatal("done closed while items are still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(eng.gate)
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("done never closed")
	}
}
