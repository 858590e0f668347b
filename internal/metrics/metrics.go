// Package metrics is the optional Prometheus hook PipelineOrchestrator and
// StreamingProcessor record stage latency and cache hit ratio through. It
// is never registered unless a caller opts in via WithMetrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the metrics surface the orchestrator calls into. A nil
// *Recorder is valid and every method on it is a no-op, so metrics stay
// entirely optional.
type Recorder struct {
	stageLatency *prometheus.HistogramVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	filesTotal   *prometheus.CounterVec
}

// New builds a Recorder and registers its collectors against reg. Pass
// prometheus.DefaultRegisterer to use the global registry, or a fresh
// prometheus.NewRegistry() for isolated tests.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "chunkstream_stage_duration_seconds",
			Help: "Duration of each pipeline stage.",
		}, []string{"stage"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunkstream_cache_hits_total",
			Help: "Number of ResultCache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunkstream_cache_misses_total",
			Help: "Number of ResultCache misses.",
		}),
		filesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkstream_files_processed_total",
			Help: "Files processed, partitioned by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.stageLatency, r.cacheHits, r.cacheMisses, r.filesTotal)
	return r
}

// ObserveStage records how long a named stage took to run.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveCache records the outcome of a cache lookup.
func (r *Recorder) ObserveCache(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.cacheHits.Inc()
	} else {
		r.cacheMisses.Inc()
	}
}

// ObserveFile records the terminal outcome ("ok", "error", "cancelled") of
// processing one file.
func (r *Recorder) ObserveFile(outcome string) {
	if r == nil {
		return
	}
	r.filesTotal.WithLabelValues(outcome).Inc()
}
