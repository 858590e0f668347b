package chunkstream

import (
	"context"
	"os"
	"path/filepath"
	"testing"

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

func smallFixedSizeOptions() ChunkingOptions {
	opts := DefaultOptions()
	opts.Strategy = "FixedSize"
	opts.MaxChunkSize = 40
	opts.OverlapSize = 5
	return opts
}

func TestPipelineProcessReturnsChunks(t *testing.T) {
	path := writeTemp(t, "doc.txt", "This document is chunked end to end through the public Pipeline facade for a basic smoke test.")
	p := New()
	chunks, err := p.Process(context.Background(), path, smallFixedSizeOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestPipelineProcessResultFormatsMarkdown(t *testing.T) {
	path := writeTemp(t, "doc.txt", "Some content for the result wrapper to format as markdown sections.")
	p := New()
	result, err := p.ProcessResult(context.Background(), path, smallFixedSizeOptions())
	require.NoError(t, err)
	assert.Contains(t, result.FormatMarkdown(), "## Chunk 0")
	assert.False(t, result.IsEmpty())
	assert.Greater(t, result.TotalChars(), 0)
}

func TestPipelineExtractWrapsMissingFileAsStageError(t *testing.T) {
	p := New()
	_, err := p.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageExtract, stageErr.Stage)
}

func TestPipelineWithUnknownRefinePresetFailsAtUse(t *testing.T) {
	path := writeTemp(t, "doc.txt", "content")
	p := New(WithRefinePreset("NotAPreset"))
	_, err := p.Process(context.Background(), path, smallFixedSizeOptions())
	require.Error(t, err)
}

func TestPipelineStreamYieldsAllPaths(t *testing.T) {
	paths := []string{
		writeTemp(t, "a.txt", "first document with enough content to chunk meaningfully."),
		writeTemp(t, "b.txt", "second document with enough content to chunk meaningfully."),
	}
	p := New()
	out := p.Stream(context.Background(), paths, smallFixedSizeOptions())
	count := 0
	for r := range out {
		require.NoError(t, r.Err)
		count++
	}
	assert.Equal(t, len(paths), count)
}

func TestPipelineProcessBatchReturnsResultsInOrder(t *testing.T) {
	paths := []string{
		writeTemp(t, "a.txt", "first document with enough content to chunk meaningfully."),
		writeTemp(t, "b.txt", "second document with enough content to chunk meaningfully."),
	}
	p := New()
	results, progress := p.ProcessBatch(context.Background(), paths, smallFixedSizeOptions())
	for range progress {
	}
	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
}

func TestDefaultOptionsUsesAutoStrategy(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "Auto", opts.Strategy)
}
