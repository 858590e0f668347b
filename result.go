package chunkstream

import (
	"fmt"
	"strings"

	"chunkstream/internal/model"
	"chunkstream/internal/orchestrator"
)

// StreamResult is one file's outcome from Pipeline.Stream or
// Pipeline.ProcessBatch.
type StreamResult = orchestrator.StreamResult

// BatchProgress is an intermediate snapshot Pipeline.ProcessBatch yields
// periodically while a batch run is still in flight.
type BatchProgress = orchestrator.BatchProgress

// Chunk is a bounded, annotated substring of a document intended as a
// retrieval unit. It is a direct alias of the internal representation so
// callers pay no conversion cost crossing the public API boundary.
type Chunk = model.Chunk

// ChunkLocation records where a chunk sits in the source document.
type ChunkLocation = model.ChunkLocation

// ChunkingOptions configures a chunking run: which strategy to use, target
// chunk/overlap sizes, and strategy-specific custom knobs.
type ChunkingOptions = model.ChunkingOptions

// DefaultOptions returns the documented defaults: Auto strategy selection,
// a 512-character target chunk size, and 64 characters of overlap.
func DefaultOptions() ChunkingOptions {
	return model.DefaultChunkingOptions()
}

// RunResult bundles the source path with the chunks produced by one
// Process call.
type RunResult struct {
	Path   string
	Chunks []*Chunk
}

// FormatMarkdown renders the result as a sequence of Markdown sections, one
// per chunk, each annotated with its index and strategy.
//
// Example output:
//
//	# report.pdf
//
//	## Chunk 0 (Intelligent)
//
//	...chunk content...
func (r *RunResult) FormatMarkdown() string {
	var sb strings.Builder
	if r.Path != "" {
		sb.WriteString("# ")
		sb.WriteString(r.Path)
		sb.WriteString("\n\n")
	}
	for _, c := range r.Chunks {
		sb.WriteString(fmt.Sprintf("## Chunk %d (%s)\n\n", c.Index, c.StrategyName))
		sb.WriteString(c.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// IsEmpty reports whether the result carries no chunks.
func (r *RunResult) IsEmpty() bool {
	return len(r.Chunks) == 0
}

// TotalChars returns the sum of every chunk's content length in runes.
func (r *RunResult) TotalChars() int {
	total := 0
	for _, c := range r.Chunks {
		total += len([]rune(c.Content))
	}
	return total
}
