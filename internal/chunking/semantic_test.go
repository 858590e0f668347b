package chunking

import (
	"context"
	"strings"
	"testing"

	"chunkstream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSemanticStrategyHeaderStartsOwnChunk documents the decision for the
// "# Title\n\nAlpha. Beta. Gamma." case: a heading never waits to be
// outvoted by MinSentences alongside the prose that follows it (mirroring
// ParagraphChunkingStrategy's "headers start a fresh chunk" rule), so it is
// always emitted as its own chunk rather than merged with body text. That
// still produces the two chunks a reader would expect from the input, even
// though the split point is the heading itself rather than partway into the
// following sentence run.
func TestSemanticStrategyHeaderStartsOwnChunk(t *testing.T) {
	s := NewSemanticStrategy()
	parsed := model.ParsedContent{Text: "# Title\n\nAlpha. Beta. Gamma."}
	opts := model.ChunkingOptions{MaxChunkSize: 40}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "# Title", chunks[0].Content)
	assert.Equal(t, "Alpha. Beta. Gamma.", chunks[1].Content)
}

// TestSemanticStrategyAccumulatesWithinSentenceBounds checks that no chunk
// holds more than MaxSentences sentences.
func TestSemanticStrategyAccumulatesWithinSentenceBounds(t *testing.T) {
	s := NewSemanticStrategy()
	text := strings.Repeat("One clause stands alone. ", 10)
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 1000}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		n := len(SplitSentences(c.Content))
		assert.LessOrEqual(t, n, s.MaxSentences)
	}
}

// TestSemanticStrategyIndexMonotonicity covers spec property 2 for
// Semantic.
func TestSemanticStrategyIndexMonotonicity(t *testing.T) {
	s := NewSemanticStrategy()
	text := strings.Repeat("Short declarative sentence. ", 20)
	parsed := model.ParsedContent{Text: text}
	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 60, OverlapSize: 8})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		assert.Equal(t, chunks[i].Index+1, chunks[i+1].Index)
		assert.GreaterOrEqual(t, chunks[i+1].Location.StartChar, chunks[i].Location.StartChar)
	}
}

// TestSemanticStrategyOverlapCarriesTrailingSentence covers spec property 6
// for Semantic: with overlap_size > 0, the next chunk's content carries
// material drawn from the previous chunk's tail.
func TestSemanticStrategyOverlapCarriesTrailingSentence(t *testing.T) {
	s := NewSemanticStrategy()
	text := strings.Repeat("A recurring sentence used to test overlap. ", 20)
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 120, OverlapSize: 30}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	firstSentence := strings.TrimSpace(SplitSentences(chunks[0].Content)[0])
	assert.True(t, strings.HasPrefix(chunks[1].Content, firstSentence) || strings.Contains(chunks[1].Content, firstSentence),
		"expected chunk 1 to carry overlap text from chunk 0, got %q", chunks[1].Content)
}

func TestSemanticStrategyEmptyInput(t *testing.T) {
	s := NewSemanticStrategy()
	chunks, err := s.Chunk(context.Background(), model.ParsedContent{Text: ""}, model.ChunkingOptions{MaxChunkSize: 100})
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestSemanticStrategyCancelledContext(t *testing.T) {
	s := NewSemanticStrategy()
	text := strings.Repeat("One sentence. ", 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Chunk(ctx, model.ParsedContent{Text: text}, model.ChunkingOptions{MaxChunkSize: 30})
	assert.Error(t, err)
}

func TestSemanticStrategyName(t *testing.T) {
	assert.Equal(t, "Semantic", NewSemanticStrategy().Name())
}
