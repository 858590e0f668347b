// Package orchestrator composes the Extract -> Parse -> Refine -> Chunk
// (+Enrich) stages into single-file and streaming/batch runs, mirroring a
// worker pool and streaming parser composing fetch+extract
// over many inputs.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"chunkstream/internal/cache"
	"chunkstream/internal/chunking"
	"chunkstream/internal/llm"
	"chunkstream/internal/metrics"
	"chunkstream/internal/model"
	"chunkstream/internal/parse"
	"chunkstream/internal/readers"
	"chunkstream/internal/refine"
)

// memoryPressureThreshold is the heap-allocation level (500 MB of
// runtime.MemStats.Alloc) above which AdaptiveStrategySelector switches
// Intelligent to its pool-backed, streaming sibling. The process's
// resident set size is not measured.
const memoryPressureThreshold = 500 * 1024 * 1024

// rssMemoryPressure reports whether the process's current heap allocation
// exceeds memoryPressureThreshold, read via runtime.MemStats.Alloc (no
// GC forced — this is a cheap periodic probe, not a measurement point).
func rssMemoryPressure() bool {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc > memoryPressureThreshold
}

// StageFunc identifies which stage an orchestrator error or metric
// observation concerns, independent of the root package's public StageKind
// so this package has no import-cycle back to the module root.
type StageFunc string

const (
	StageExtract StageFunc = "extract"
	StageParse   StageFunc = "parse"
	StageRefine  StageFunc = "refine"
	StageChunk   StageFunc = "chunk"
	StageEnrich  StageFunc = "enrich"
	StageCache   StageFunc = "cache"
)

// StageError reports which stage a run failed in, wrapping the underlying
// cause.
type StageError struct {
	Stage  StageFunc
	Source string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("orchestrator: %s %s: %v", e.Stage, e.Source, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReaders overrides the default reader registry.
func WithReaders(r *readers.Registry) Option {
	return func(o *Orchestrator) { o.readers = r }
}

// WithRefiner sets the refine stage's policy set. A nil refiner (the
// default) skips the refine stage entirely.
func WithRefiner(r *refine.Refiner) Option {
	return func(o *Orchestrator) { o.refiner = r }
}

// WithChunkingRegistry overrides the default strategy registry.
func WithChunkingRegistry(r *chunking.Registry) Option {
	return func(o *Orchestrator) { o.strategies = r }
}

// WithCache attaches a ResultCache; omitted, every run builds fresh.
func WithCache(c *cache.Cache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithLLM attaches a text completion service used for per-chunk enrichment.
func WithLLM(svc llm.TextCompletionService) Option {
	return func(o *Orchestrator) { o.llm = svc }
}

// WithVision attaches an image-to-text service. It is stored on the
// Orchestrator only: no reader or stage is handed it or calls it.
func WithVision(svc llm.ImageToTextService) Option {
	return func(o *Orchestrator) { o.vision = svc }
}

// WithMetrics attaches a Prometheus recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithConcurrency sets the maximum number of files processed concurrently
// in batch mode. Default is runtime.NumCPU() if unset (zero).
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.maxConcurrentFiles = n }
}

// WithStreamingCapacity sets the buffered channel capacity StreamingProcessor
// uses. Default is 64.
func WithStreamingCapacity(n int) Option {
	return func(o *Orchestrator) { o.streamingCapacity = n }
}

// WithIntermediateYieldSize sets how many completed files a batch run
// accumulates before yielding an intermediate progress snapshot.
func WithIntermediateYieldSize(n int) Option {
	return func(o *Orchestrator) { o.yieldSize = n }
}

// Orchestrator composes the pipeline stages end to end.
type Orchestrator struct {
	readers    *readers.Registry
	refiner    *refine.Refiner
	strategies *chunking.Registry
	selector   *chunking.AdaptiveStrategySelector
	cache      *cache.Cache
	llm        llm.TextCompletionService
	vision     llm.ImageToTextService
	metrics    *metrics.Recorder

	maxConcurrentFiles int
	streamingCapacity  int
	yieldSize          int
}

// New constructs an Orchestrator with sensible defaults (a full reader
// registry, no refine preset, the default strategy family with an
// LLM-backed Auto selector if WithLLM was supplied).
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		readers:           readers.NewDefaultRegistry(),
		streamingCapacity: 64,
		yieldSize:         10,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxConcurrentFiles <= 0 {
		o.maxConcurrentFiles = runtime.NumCPU()
	}
	if o.strategies == nil {
		o.selector = chunking.NewAdaptiveStrategySelector(o.llm, rssMemoryPressure)
		o.strategies = chunking.NewDefaultRegistry(o.selector)
	}
	return o
}

// Extract runs the reader stage for path.
func (o *Orchestrator) Extract(ctx context.Context, path string) (model.RawContent, error) {
	started := time.Now()
	raw, err := o.readers.Extract(ctx, path)
	o.observe(StageExtract, started)
	if err != nil {
		return model.RawContent{}, &StageError{Stage: StageExtract, Source: path, Err: err}
	}
	return raw, nil
}

// Parse runs the parse stage over raw.
func (o *Orchestrator) Parse(raw model.RawContent) model.ParsedContent {
	started := time.Now()
	parsed := parse.Parse(raw)
	o.observe(StageParse, started)
	return parsed
}

// Refine runs the configured refine policies, if any, over parsed.
func (o *Orchestrator) Refine(parsed model.ParsedContent) model.ParsedContent {
	if o.refiner == nil {
		return parsed
	}
	started := time.Now()
	out := o.refiner.Apply(parsed)
	o.observe(StageRefine, started)
	return out
}

// Chunk resolves and runs the configured strategy over parsed.
func (o *Orchestrator) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	started := time.Now()
	strategy, err := chunking.Resolve(o.strategies, opts)
	if err != nil {
		return nil, &StageError{Stage: StageChunk, Source: opts.Strategy, Err: err}
	}
	chunks, err := strategy.Chunk(ctx, parsed, opts)
	o.observe(StageChunk, started)
	if err != nil {
		return nil, &StageError{Stage: StageChunk, Source: strategy.Name(), Err: err}
	}
	if opts.Bool(model.OptEnableMetadataEnrichment) {
		o.enrich(ctx, chunks)
	}
	return chunks, nil
}

// enrich stores the LLM's whole "Summary: ...; Keywords: ..." reply under
// PropEnrichedSummary and the chunk's own content under
// PropEnrichedContextualText; keywords are not split out into
// PropEnrichedKeywords. It skips silently when no LLM is configured or a
// call fails.
func (o *Orchestrator) enrich(ctx context.Context, chunks []*model.Chunk) {
	if o.llm == nil {
		return
	}
	started := time.Now()
	for _, c := range chunks {
		prompt := "Summarise this passage in one sentence and list up to five keywords, " +
			"formatted as 'Summary: ...; Keywords: a, b, c'.\n\n" + c.Content
		text, err := o.llm.Generate(ctx, prompt, llm.CompletionOptions{MaxTokens: 128, Temperature: 0.2})
		if err != nil || text == "" {
			continue
		}
		c.Props[model.PropEnrichedSummary] = text
		c.Props[model.PropEnrichedContextualText] = c.Content
	}
	o.observe(StageEnrich, started)
}

// Process runs the full Extract->Parse->Refine->Chunk pipeline for path,
// consulting the cache (if configured) keyed by file bytes + opts before
// doing any work.
func (o *Orchestrator) Process(ctx context.Context, path string, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	if o.cache == nil {
		return o.process(ctx, path, opts)
	}

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Source: path, Err: err}
	}
	key := cache.ComputeKey(fileBytes, opts)

	chunks, hit, err := o.cache.GetOrBuild(ctx, key, func() ([]*model.Chunk, error) {
		return o.process(ctx, path, opts)
	})
	o.observeCache(hit)
	return chunks, err
}

func (o *Orchestrator) process(ctx context.Context, path string, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	raw, err := o.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageParse, Source: path, Err: err}
	}

	parsed := o.Parse(raw)
	parsed = o.Refine(parsed)

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageChunk, Source: path, Err: err}
	}
	return o.Chunk(ctx, parsed, opts)
}

func (o *Orchestrator) observe(stage StageFunc, started time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveStage(string(stage), time.Since(started))
}

func (o *Orchestrator) observeCache(hit bool) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveCache(hit)
}

// Selector exposes the bound AdaptiveStrategySelector, for callers that
// want the selection decision without running the chosen strategy. It is
// nil when WithChunkingRegistry was supplied.
func (o *Orchestrator) Selector() *chunking.AdaptiveStrategySelector {
	return o.selector
}
