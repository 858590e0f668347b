package chunking

import (
	"context"
	"testing"

	"chunkstream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSizeStrategyRespectsCeiling(t *testing.T) {
	s := NewFixedSizeStrategy()
	text := "This is a reasonably long passage used to exercise the fixed size window and its word boundary backoff behaviour across several chunks."
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 30, OverlapSize: 5}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 30)
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "FixedSize", c.StrategyName)
	}
}

func TestFixedSizeStrategyShortTextSingleChunk(t *testing.T) {
	s := NewFixedSizeStrategy()
	parsed := model.ParsedContent{Text: "short"}
	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 512})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Content)
}

func TestFixedSizeStrategyCancelledContext(t *testing.T) {
	s := NewFixedSizeStrategy()
	parsed := model.ParsedContent{Text: "some content that would normally span multiple chunks if given enough length to do so"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Chunk(ctx, parsed, model.ChunkingOptions{MaxChunkSize: 10})
	assert.Error(t, err)
}

func TestFixedSizeStrategyName(t *testing.T) {
	assert.Equal(t, "FixedSize", NewFixedSizeStrategy().Name())
}
