package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chunkstream/internal/cache"
	"chunkstream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixedSizeOptions() model.ChunkingOptions {
	opts := model.DefaultChunkingOptions()
	opts.Strategy = "FixedSize"
	opts.MaxChunkSize = 40
	opts.OverlapSize = 5
	return opts
}

func TestOrchestratorProcessEndToEnd(t *testing.T) {
	path := writeTemp(t, "doc.txt", "This is a short document used to exercise the full pipeline end to end across every stage.")
	o := New()
	chunks, err := o.Process(context.Background(), path, fixedSizeOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "FixedSize", c.StrategyName)
	}
}

func TestOrchestratorExtractUnreadablePath(t *testing.T) {
	o := New()
	_, err := o.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageExtract, stageErr.Stage)
}

func TestOrchestratorChunkUnknownStrategy(t *testing.T) {
	o := New()
	opts := model.DefaultChunkingOptions()
	opts.Strategy = "NotRegistered"
	_, err := o.Chunk(context.Background(), model.ParsedContent{Text: "hello there friend"}, opts)
	require.Error(t, err)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageChunk, stageErr.Stage)
}

func TestOrchestratorProcessRespectsCancelledContext(t *testing.T) {
	path := writeTemp(t, "doc.txt", "some content")
	o := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Process(ctx, path, fixedSizeOptions())
	require.Error(t, err)
}

func TestOrchestratorRefineNoopWithoutRefiner(t *testing.T) {
	o := New()
	parsed := model.ParsedContent{Text: "unchanged"}
	out := o.Refine(parsed)
	assert.Equal(t, parsed.Text, out.Text)
}

func TestOrchestratorProcessUsesCache(t *testing.T) {
	path := writeTemp(t, "doc.txt", "cached content goes through the pipeline only once per key.")
	o := New(WithCache(cache.New(1 << 20)))
	opts := fixedSizeOptions()

	first, err := o.Process(context.Background(), path, opts)
	require.NoError(t, err)
	second, err := o.Process(context.Background(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}
