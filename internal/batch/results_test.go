package batch_test

import (
	"testing"

	"batchtube/internal/batch"
	"batchtube/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCollectorRecordAndFinalize(t *testing.T) {
	c := batch.NewCollector("batch-1")

	require.False(t, c.Recorded("a"))
	require.NoError(t, c.Record("a", models.ItemResult{
		URL:    "https://example.com/a",
		Status: models.StatusSucceeded,
	}))
	require.True(t, c.Recorded("a"))
	require.NoError(t, c.Record("b", models.ItemResult{
		URL:       "https://example.com/b",
		Status:    models.StatusFailed,
		ErrReason: "video unavailable",
	}))

	result := c.Finalize()
	require.Equal(t, "batch-1", result.BatchID)
	require.Len(t, result.Items, 2)
	require.False(t, result.FinishedAt.Before(result.StartedAt))

	succeeded, failed, skipped := result.Counts()
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, failed)
	require.Equal(t, 0, skipped)
}

func TestCollectorRejectsDoubleRecord(t *testing.T) {
	c := batch.NewCollector("batch-1")

	require.NoError(t, c.Record("a", models.ItemResult{Status: models.StatusSucceeded}))
	err := c.Record("a", models.ItemResult{Status: models.StatusFailed})
	require.ErrorIs(t, err, batch.ErrLateRecord)

	// The first record wins.
	result := c.Finalize()
	require.Equal(t, models.StatusSucceeded, result.Items["a"].Status)
}

func TestCollectorRejectsRecordAfterFinalize(t *testing.T) {
	c := batch.NewCollector("batch-1")
	c.Finalize()

	err := c.Record("late", models.ItemResult{Status: models.StatusSucceeded})
	require.ErrorIs(t, err, batch.ErrLateRecord)
}

func TestCollectorFinalizeIsIdempotent(t *testing.T) {
	c := batch.NewCollector("batch-1")
	require.NoError(t, c.Record("a", models.ItemResult{Status: models.StatusSkipped}))

	first := c.Finalize()
	second := c.Finalize()
	require.Same(t, first, second)
}
