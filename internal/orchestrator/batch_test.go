package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBatchReturnsAllResultsInOriginalOrder(t *testing.T) {
	paths := writeTempFiles(t, 6)
	o := New(WithIntermediateYieldSize(2))

	results, progress := o.ProcessBatch(context.Background(), paths, fixedSizeOptions())
	for range progress {
	}

	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		require.NoError(t, r.Err)
		assert.NotEmpty(t, r.Chunks)
	}
}

func TestProcessBatchEmptyPathsClosesProgressImmediately(t *testing.T) {
	o := New()
	results, progress := o.ProcessBatch(context.Background(), nil, fixedSizeOptions())
	assert.Empty(t, results)
	_, ok := <-progress
	assert.False(t, ok)
}

func TestProcessBatchProgressSnapshotsAreMonotonic(t *testing.T) {
	paths := writeTempFiles(t, 10)
	o := New(WithIntermediateYieldSize(3), WithConcurrency(3))

	_, progress := o.ProcessBatch(context.Background(), paths, fixedSizeOptions())
	last := 0
	for snapshot := range progress {
		assert.GreaterOrEqual(t, snapshot.Completed, last)
		assert.LessOrEqual(t, snapshot.Completed, snapshot.Total)
		assert.Len(t, snapshot.Results, snapshot.Completed)
		last = snapshot.Completed
	}
	assert.Equal(t, len(paths), last)
}

func TestProcessBatchCancelledContextStillReturns(t *testing.T) {
	paths := writeTempFiles(t, 4)
	o := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, progress := o.ProcessBatch(ctx, paths, fixedSizeOptions())
	for range progress {
	}
	require.Len(t, results, len(paths))
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}
