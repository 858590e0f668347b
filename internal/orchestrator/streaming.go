package orchestrator

import (
	"context"
	"sync"

	"chunkstream/internal/model"
)

// StreamResult is one file's outcome from a StreamingProcessor run.
type StreamResult struct {
	Path   string
	Chunks []*model.Chunk
	Err    error
}

// StreamingProcessor feeds paths through Process concurrently and emits
// results on a bounded channel, applying back-pressure once the channel's
// buffer (StreamingCapacity, default 64) fills — mirrors a
// ChunkedReader/StreamingParser pairing, generalised from bytes to files.
type StreamingProcessor struct {
	orch *Orchestrator
}

// NewStreamingProcessor binds a StreamingProcessor to orch.
func NewStreamingProcessor(orch *Orchestrator) *StreamingProcessor {
	return &StreamingProcessor{orch: orch}
}

// Stream launches one goroutine per path, bounded by maxConcurrentFiles
// (New defaults it to runtime.NumCPU()), and returns a channel that yields
// a StreamResult per completed file. The channel is closed once every path
// has been processed or skipped because ctx was already cancelled.
func (s *StreamingProcessor) Stream(ctx context.Context, paths []string, opts model.ChunkingOptions) <-chan StreamResult {
	capacity := s.orch.streamingCapacity
	if capacity <= 0 {
		capacity = 64
	}
	out := make(chan StreamResult, capacity)
	if len(paths) == 0 {
		close(out)
		return out
	}

	limit := s.orch.maxConcurrentFiles
	if limit <= 0 {
		limit = len(paths)
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	wg.Add(len(paths))
	go func() {
		wg.Wait()
		close(out)
	}()

	go func() {
		for _, p := range paths {
			select {
			case <-ctx.Done():
				out <- StreamResult{Path: p, Err: ctx.Err()}
				wg.Done()
				continue
			case sem <- struct{}{}:
			}

			go func(path string) {
				defer func() { <-sem; wg.Done() }()
				chunks, err := s.orch.Process(ctx, path, opts)
				out <- StreamResult{Path: path, Chunks: chunks, Err: err}
			}(p)
		}
	}()

	return out
}
