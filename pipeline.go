package chunkstream

import (
	"context"

	"chunkstream/internal/model"
	"chunkstream/internal/orchestrator"
)

// Pipeline is the public façade over the internal Extract -> Parse ->
// Refine -> Chunk (+Enrich) orchestrator. A Pipeline is safe for concurrent
// use once built; build one per process and share it.
type Pipeline struct {
	orchOpts []orchestrator.Option
	orch     *orchestrator.Orchestrator
	buildErr error
}

// New builds a Pipeline from the given options. A misconfigured option
// (e.g. an unknown refine preset) is recorded and surfaced on the first
// call to Process rather than panicking here.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.buildErr != nil {
		return p
	}
	p.orch = orchestrator.New(p.orchOpts...)
	return p
}

// Process runs the full pipeline over the file at path and returns its
// chunks.
func (p *Pipeline) Process(ctx context.Context, path string, opts ChunkingOptions) ([]*Chunk, error) {
	if p.buildErr != nil {
		return nil, newStageError(ErrInvalidInput, StageExtract, path, p.buildErr)
	}
	chunks, err := p.orch.Process(ctx, path, opts)
	if err != nil {
		return nil, wrapStageErr(path, err)
	}
	return chunks, nil
}

// ProcessResult is a convenience wrapper around Process that returns a
// RunResult instead of a bare slice, for callers that want FormatMarkdown
// and friends.
func (p *Pipeline) ProcessResult(ctx context.Context, path string, opts ChunkingOptions) (*RunResult, error) {
	chunks, err := p.Process(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return &RunResult{Path: path, Chunks: chunks}, nil
}

// Extract runs only the reader stage, returning the raw text and source
// hints for path.
func (p *Pipeline) Extract(ctx context.Context, path string) (model.RawContent, error) {
	raw, err := p.orch.Extract(ctx, path)
	if err != nil {
		return raw, wrapStageErr(path, err)
	}
	return raw, nil
}

// Chunk runs only the chunking stage over already-parsed content, useful
// for callers that maintain their own extract/parse/refine pipeline and
// just want the strategy family.
func (p *Pipeline) Chunk(ctx context.Context, parsed model.ParsedContent, opts ChunkingOptions) ([]*Chunk, error) {
	chunks, err := p.orch.Chunk(ctx, parsed, opts)
	if err != nil {
		return nil, wrapStageErr("", err)
	}
	return chunks, nil
}

// ProcessBatch runs every path through Process, bounded by WithConcurrency
// concurrent workers, returning the final per-path results alongside a
// channel of intermediate progress snapshots.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string, opts ChunkingOptions) ([]StreamResult, <-chan BatchProgress) {
	return p.orch.ProcessBatch(ctx, paths, opts)
}

// Stream runs every path through Process concurrently and returns a
// channel that yields one result per file as it completes.
func (p *Pipeline) Stream(ctx context.Context, paths []string, opts ChunkingOptions) <-chan StreamResult {
	return orchestrator.NewStreamingProcessor(p.orch).Stream(ctx, paths, opts)
}

// wrapStageErr adapts an internal orchestrator.StageError into the public
// StageError family, defaulting to ErrStage when the cause doesn't carry a
// more specific classification.
func wrapStageErr(source string, err error) error {
	stageErr, ok := err.(*orchestrator.StageError)
	if !ok {
		return newStageError(ErrStage, StageChunk, source, err)
	}

	stage := StageChunk
	switch stageErr.Stage {
	case orchestrator.StageExtract:
		stage = StageExtract
	case orchestrator.StageParse:
		stage = StageParse
	case orchestrator.StageRefine:
		stage = StageRefine
	case orchestrator.StageChunk:
		stage = StageChunk
	case orchestrator.StageEnrich:
		stage = StageEnrich
	case orchestrator.StageCache:
		stage = StageCache
	}

	code := ErrStage
	switch {
	case stageErr.Unwrap() == context.Canceled || stageErr.Unwrap() == context.DeadlineExceeded:
		code = ErrCancelled
	}

	src := stageErr.Source
	if src == "" {
		src = source
	}
	return newStageError(code, stage, src, stageErr.Unwrap())
}
