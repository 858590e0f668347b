package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFiles(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, "doc"+string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(p, []byte("some document content that is long enough to chunk meaningfully for test purposes."), 0o644))
		paths[i] = p
	}
	return paths
}

func TestStreamingProcessorYieldsOneResultPerPath(t *testing.T) {
	paths := writeTempFiles(t, 5)
	o := New()
	sp := NewStreamingProcessor(o)

	out := sp.Stream(context.Background(), paths, fixedSizeOptions())
	seen := map[string]bool{}
	for r := range out {
		require.NoError(t, r.Err)
		seen[r.Path] = true
	}
	assert.Len(t, seen, len(paths))
}

func TestStreamingProcessorEmptyPathsClosesImmediately(t *testing.T) {
	o := New()
	sp := NewStreamingProcessor(o)
	out := sp.Stream(context.Background(), nil, fixedSizeOptions())
	_, ok := <-out
	assert.False(t, ok)
}

func TestStreamingProcessorCancelledContextStillCompletes(t *testing.T) {
	paths := writeTempFiles(t, 3)
	o := New()
	sp := NewStreamingProcessor(o)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := sp.Stream(ctx, paths, fixedSizeOptions())
	count := 0
	for r := range out {
		assert.Error(t, r.Err)
		count++
	}
	assert.Equal(t, len(paths), count)
}

func TestStreamingProcessorRespectsConcurrencyLimit(t *testing.T) {
	paths := writeTempFiles(t, 8)
	o := New(WithConcurrency(2), WithStreamingCapacity(1))
	sp := NewStreamingProcessor(o)

	out := sp.Stream(context.Background(), paths, fixedSizeOptions())
	count := 0
	for range out {
		count++
	}
	assert.Equal(t, len(paths), count)
}
