package chunking

import (
	"context"
	"strings"
	"testing"

	"chunkstream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSmartStrategySentenceIntegrity covers spec property 4: every chunk
// ends on a sentence terminator unless it is the document's final chunk
// and the document itself doesn't end in one.
func TestSmartStrategySentenceIntegrity(t *testing.T) {
	s := NewSmartStrategy()
	text := strings.Repeat("The quick fox jumps over the lazy dog. ", 12) +
		"A second clause follows here! And a third one wraps up the thought?"
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 80, OverlapSize: 10}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		if i == len(chunks)-1 {
			continue // final chunk may trail off if the document itself does
		}
		assert.True(t, EndsOnSentence(c.Content), "chunk %d does not end on a sentence: %q", i, c.Content)
	}
}

// TestSmartStrategyRespectsSafetyCeiling exercises seed S6: a single
// enormous "sentence" (no terminator at all) must still be forced under
// the safety ceiling, and the forced chunks are annotated as such.
func TestSmartStrategyRespectsSafetyCeiling(t *testing.T) {
	s := NewSmartStrategy()
	text := strings.Repeat("a", 10000)
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 100, OverlapSize: 0}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	ceiling := int(float64(opts.MaxChunkSize) * opts.SafetyFactor())
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), ceiling)
		assert.NotEmpty(t, c.Props[model.PropForcedBoundary])
	}
}

// TestSmartStrategyIndexMonotonicity covers spec property 2 for Smart.
func TestSmartStrategyIndexMonotonicity(t *testing.T) {
	s := NewSmartStrategy()
	text := strings.Repeat("Short sentence here. ", 20)
	parsed := model.ParsedContent{Text: text}
	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 60, OverlapSize: 8})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		assert.Equal(t, chunks[i].Index+1, chunks[i+1].Index)
		assert.GreaterOrEqual(t, chunks[i+1].Location.StartChar, chunks[i].Location.StartChar)
	}
}

// TestSmartStrategyOverlapCarriesTrailingSentence covers spec property 6:
// when overlap_size > 0, the next chunk starts with material drawn from
// the previous chunk's tail.
func TestSmartStrategyOverlapCarriesTrailingSentence(t *testing.T) {
	s := NewSmartStrategy()
	text := strings.Repeat("Sentence with some shared keywords appears here. ", 20)
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 80, OverlapSize: 20}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// BuildOverlapText takes whole trailing sentences from the previous
	// chunk; every sentence in this fixture is identical, so the overlap
	// prefix is always a verbatim sentence drawn from chunk i's content.
	firstSentence := strings.TrimSpace(SplitSentences(chunks[0].Content)[0])
	assert.True(t, strings.HasPrefix(chunks[1].Content, firstSentence) || strings.Contains(chunks[1].Content, firstSentence),
		"expected chunk 1 to carry overlap text from chunk 0, got %q", chunks[1].Content)
}

func TestSmartStrategyEmptyInput(t *testing.T) {
	s := NewSmartStrategy()
	chunks, err := s.Chunk(context.Background(), model.ParsedContent{Text: ""}, model.ChunkingOptions{MaxChunkSize: 100})
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestSmartStrategyCancelledContext(t *testing.T) {
	s := NewSmartStrategy()
	text := strings.Repeat("One sentence. ", 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Chunk(ctx, model.ParsedContent{Text: text}, model.ChunkingOptions{MaxChunkSize: 30})
	assert.Error(t, err)
}

func TestSmartStrategyName(t *testing.T) {
	assert.Equal(t, "Smart", NewSmartStrategy().Name())
}
