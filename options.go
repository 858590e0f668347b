package chunkstream

import (
	"chunkstream/internal/cache"
	"chunkstream/internal/chunking"
	"chunkstream/internal/llm"
	"chunkstream/internal/metrics"
	"chunkstream/internal/orchestrator"
	"chunkstream/internal/readers"
	"chunkstream/internal/refine"

	"github.com/prometheus/client_golang/prometheus"
)

// Option is a functional option for configuring a Pipeline.
type Option func(*Pipeline)

// WithReaderRegistry overrides the default set of format readers.
//
// Example:
//
//	registry := readers.NewDefaultRegistry()
//	p := chunkstream.New(chunkstream.WithReaderRegistry(registry))
func WithReaderRegistry(r *readers.Registry) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithReaders(r))
	}
}

// WithRefinePreset selects one of refine.Presets ("Light", "Standard",
// "ForRAG", "ForPdfContent", "ForWebContent", "ForKorean",
// "ForKoreanWebContent") to run between parsing and chunking. Omitted, no
// refine stage runs.
func WithRefinePreset(name string) Option {
	return func(p *Pipeline) {
		r, err := refine.FromPreset(name)
		if err != nil {
			p.buildErr = err
			return
		}
		p.orchOpts = append(p.orchOpts, orchestrator.WithRefiner(r))
	}
}

// WithRefinePolicies builds a custom refine.Refiner from an explicit policy
// list instead of a named preset.
func WithRefinePolicies(policies []string) Option {
	return func(p *Pipeline) {
		r, err := refine.New(policies)
		if err != nil {
			p.buildErr = err
			return
		}
		p.orchOpts = append(p.orchOpts, orchestrator.WithRefiner(r))
	}
}

// WithCache attaches a content-addressed ResultCache with the given byte
// budget. Omitted, every Process call builds fresh.
//
// Example:
//
//	p := chunkstream.New(chunkstream.WithCache(256 * 1024 * 1024))
func WithCache(budgetBytes int64) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithCache(cache.New(budgetBytes)))
	}
}

// WithLLM attaches a text completion service, enabling LLM-assisted
// strategy selection and per-chunk enrichment.
func WithLLM(svc llm.TextCompletionService) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithLLM(svc))
	}
}

// WithOpenAI is a convenience wrapper around WithLLM using the concrete
// go-openai backed adapter.
func WithOpenAI(apiKey, model string) Option {
	return WithLLM(llm.NewOpenAIService(apiKey, model))
}

// WithVision attaches an image-to-text service to the orchestrator. No
// built-in reader calls it.
func WithVision(svc llm.ImageToTextService) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithVision(svc))
	}
}

// WithMetrics registers Prometheus collectors against reg and records
// stage latency and cache hit ratio on every run.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithMetrics(metrics.New(reg)))
	}
}

// WithConcurrency sets how many files ProcessBatch/Stream process at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithConcurrency(n))
	}
}

// WithStreamingCapacity sets Stream's result channel buffer size.
func WithStreamingCapacity(n int) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithStreamingCapacity(n))
	}
}

// WithIntermediateYieldSize sets how many completed files ProcessBatch
// accumulates before yielding a progress snapshot.
func WithIntermediateYieldSize(n int) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithIntermediateYieldSize(n))
	}
}

// WithChunkingRegistry overrides the default strategy family, e.g. to
// register a caller-supplied Strategy implementation alongside the built-in
// ones.
func WithChunkingRegistry(r *chunking.Registry) Option {
	return func(p *Pipeline) {
		p.orchOpts = append(p.orchOpts, orchestrator.WithChunkingRegistry(r))
	}
}
