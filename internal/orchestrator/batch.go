package orchestrator

import (
	"context"
	"sync"

	"chunkstream/internal/model"
)

// BatchProgress is an intermediate snapshot a batch run yields every
// yieldSize completions, so a long-running CLI invocation can report
// progress without waiting for the whole batch.
type BatchProgress struct {
	Completed int
	Total     int
	Results   []StreamResult
}

// ProcessBatch runs every path through Process, bounded by
// maxConcurrentFiles concurrent workers, and returns the final results plus
// a channel of intermediate BatchProgress snapshots taken every yieldSize
// completions.
func (o *Orchestrator) ProcessBatch(ctx context.Context, paths []string, opts model.ChunkingOptions) ([]StreamResult, <-chan BatchProgress) {
	progress := make(chan BatchProgress, 8)
	results := make([]StreamResult, len(paths))

	if len(paths) == 0 {
		close(progress)
		return results, progress
	}

	limit := o.maxConcurrentFiles
	if limit <= 0 {
		limit = len(paths)
	}
	sem := make(chan struct{}, limit)

	yieldSize := o.yieldSize
	if yieldSize <= 0 {
		yieldSize = 10
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		inOrder []StreamResult
	)

	wg.Add(len(paths))
	for i, p := range paths {
		select {
		case <-ctx.Done():
			result := StreamResult{Path: p, Err: ctx.Err()}
			results[i] = result
			mu.Lock()
			inOrder = append(inOrder, result)
			completedNow := len(inOrder)
			mu.Unlock()
			wg.Done()
			if completedNow%yieldSize == 0 || completedNow == len(paths) {
				progress <- BatchProgress{Completed: completedNow, Total: len(paths), Results: append([]StreamResult(nil), inOrder...)}
			}
			continue
		case sem <- struct{}{}:
		}

		go func(idx int, path string) {
			defer func() { <-sem; wg.Done() }()
			chunks, err := o.Process(ctx, path, opts)
			result := StreamResult{Path: path, Chunks: chunks, Err: err}
			results[idx] = result

			mu.Lock()
			inOrder = append(inOrder, result)
			completedNow := len(inOrder)
			snapshotDue := completedNow%yieldSize == 0 || completedNow == len(paths)
			var snapshot []StreamResult
			if snapshotDue {
				snapshot = append([]StreamResult(nil), inOrder...)
			}
			mu.Unlock()

			if snapshotDue {
				progress <- BatchProgress{Completed: completedNow, Total: len(paths), Results: snapshot}
			}
		}(i, p)
	}

	go func() {
		wg.Wait()
		close(progress)
	}()

	return results, progress
}
