// Package chunkstream transforms heterogeneous documents (plain text,
// Markdown, HTML, JSON, CSV, ZIP archives, and opaque office/PDF formats via
// pluggable readers) into retrieval-ready text chunks carrying structural,
// positional, and linguistic metadata.
//
// # Basic Usage
//
// Build a pipeline and process a file:
//
//	p := chunkstream.New()
//	chunks, err := p.Process(context.Background(), "report.pdf", chunkstream.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range chunks {
//	    fmt.Println(c.Content)
//	}
//
// # Configuration
//
// The pipeline is configured with functional options:
//
//	p := chunkstream.New(
//	    chunkstream.WithCache(256*1024*1024),
//	    chunkstream.WithRefinePreset("ForRAG"),
//	    chunkstream.WithConcurrency(8),
//	)
//
// # Strategy Selection
//
// ChunkingOptions.Strategy names one of FixedSize, Paragraph, Semantic,
// Smart, Intelligent, MemoryOptimizedIntelligent, or Auto (the default),
// which inspects a sample of the document and picks among the others.
//
// # Error Handling
//
// Errors are typed for programmatic handling:
//
//	chunks, err := p.Process(ctx, path, opts)
//	if err != nil {
//	    var stageErr *chunkstream.StageError
//	    if errors.As(err, &stageErr) {
//	        switch {
//	        case stageErr.IsCancelled():
//	            // context was cancelled mid-run
//	        case stageErr.IsServiceUnavailable():
//	            // an optional LLM/vision collaborator was unreachable
//	        }
//	    }
//	}
//
// # Batch and Streaming
//
// ProcessBatch and Stream run many files concurrently, bounded by
// WithConcurrency, yielding intermediate progress or a per-file result
// channel respectively.
package chunkstream
