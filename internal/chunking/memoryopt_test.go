package chunking

import (
	"context"
	"strings"
	"testing"

	"chunkstream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryOptimizedStrategyTableNeverStartsWithDataRow covers spec
// property 3 for the streaming strategy: forcing repeated mid-table splits
// (a large table scanned line by line) must still never leave a chunk
// starting on a bare data row.
func TestMemoryOptimizedStrategyTableNeverStartsWithDataRow(t *testing.T) {
	s := NewMemoryOptimizedIntelligentStrategy()
	text := buildMarkdownTable(400)
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 100}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "expected the oversized table to force multiple streamed chunks")

	assertNoChunkStartsWithDataRow(t, chunks)
}

// TestMemoryOptimizedStrategySetsMemoryOptimizedProp checks every emitted
// chunk is flagged as produced by the pool-backed streaming path.
func TestMemoryOptimizedStrategySetsMemoryOptimizedProp(t *testing.T) {
	s := NewMemoryOptimizedIntelligentStrategy()
	text := "# Heading\n\nSome plain prose line.\nAnother line of prose.\n"
	parsed := model.ParsedContent{Text: text}

	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 200})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.Equal(t, true, c.Props[model.PropMemoryOptimized])
	}
}

// TestMemoryOptimizedStrategySizeCeiling covers spec property 1.
func TestMemoryOptimizedStrategySizeCeiling(t *testing.T) {
	s := NewMemoryOptimizedIntelligentStrategy()
	text := strings.Repeat("A line with no terminator and no structure\n", 200)
	parsed := model.ParsedContent{Text: text}
	opts := model.ChunkingOptions{MaxChunkSize: 80}

	chunks, err := s.Chunk(context.Background(), parsed, opts)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	ceiling := int(float64(opts.MaxChunkSize) * opts.SafetyFactor())
	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), ceiling, "chunk %d exceeds the safety ceiling", i)
	}
}

// TestMemoryOptimizedStrategyIndexMonotonicity covers spec property 2.
func TestMemoryOptimizedStrategyIndexMonotonicity(t *testing.T) {
	s := NewMemoryOptimizedIntelligentStrategy()
	text := strings.Repeat("Plain line of prose with no markup.\n", 60)
	parsed := model.ParsedContent{Text: text}

	chunks, err := s.Chunk(context.Background(), parsed, model.ChunkingOptions{MaxChunkSize: 80})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		assert.Equal(t, chunks[i].Index+1, chunks[i+1].Index)
		assert.GreaterOrEqual(t, chunks[i+1].Location.StartChar, chunks[i].Location.StartChar)
	}
}

func TestMemoryOptimizedStrategyEmptyInput(t *testing.T) {
	s := NewMemoryOptimizedIntelligentStrategy()
	chunks, err := s.Chunk(context.Background(), model.ParsedContent{Text: "   \n  \n"}, model.ChunkingOptions{MaxChunkSize: 200})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMemoryOptimizedStrategyCancelledContext(t *testing.T) {
	s := NewMemoryOptimizedIntelligentStrategy()
	text := strings.Repeat("A line of text.\n", 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Chunk(ctx, model.ParsedContent{Text: text}, model.ChunkingOptions{MaxChunkSize: 30})
	assert.Error(t, err)
}

func TestMemoryOptimizedStrategyName(t *testing.T) {
	assert.Equal(t, "MemoryOptimizedIntelligent", NewMemoryOptimizedIntelligentStrategy().Name())
}
