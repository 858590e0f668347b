package chunking

import (
	"context"
	"testing"

	"chunkstream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphStrategySplitsOnBlankLines(t *testing.T) {
	s := NewParagraphStrategy()
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."
	parsed := model.ParsedContent{Text: text}
	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 15})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "Paragraph", c.StrategyName)
	}
}

func TestParagraphStrategyCombinesShortParagraphs(t *testing.T) {
	s := NewParagraphStrategy()
	text := "One.\n\nTwo.\n\nThree."
	parsed := model.ParsedContent{Text: text}
	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 512})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, "One.")
	assert.Contains(t, chunks[0].Content, "Three.")
}

func TestParagraphStrategyStartsFreshChunkAtHeader(t *testing.T) {
	s := NewParagraphStrategy()
	text := "Intro paragraph.\n\n# A Header\n\nBody under the header."
	parsed := model.ParsedContent{Text: text}
	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 512})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Contains(t, chunks[1].Content, "# A Header")
}

func TestParagraphStrategyEmptyInput(t *testing.T) {
	s := NewParagraphStrategy()
	chunks, err := s.Chunk(context.Background(), model.ParsedContent{Text: "   \n\n  "}, model.ChunkingOptions{MaxChunkSize: 512})
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestParagraphStrategyCancelledContext(t *testing.T) {
	s := NewParagraphStrategy()
	text := "Para one.\n\nPara two.\n\nPara three."
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Chunk(ctx, model.ParsedContent{Text: text}, model.ChunkingOptions{MaxChunkSize: 5})
	assert.Error(t, err)
}
