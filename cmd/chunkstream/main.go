package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"chunkstream"
	"chunkstream/internal/llm"
	"chunkstream/internal/parse"
	"chunkstream/internal/quality"

	"github.com/spf13/cobra"
)

var (
	outputFile   string
	outputFormat string
	strategy     string
	maxChunkSize int
	overlapSize  int
	refinePreset string
	enrich       bool
	useAI        bool
	quiet        bool
	verbose      bool
	concurrency  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chunkstream",
		Short: "Chunkstream - document chunking for retrieval-augmented generation",
		Long:  "Chunkstream transforms documents into retrieval-ready chunks with structural and linguistic metadata",
	}

	extractCmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Extract raw text from a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}

	chunkCmd := &cobra.Command{
		Use:   "chunk <path...>",
		Short: "Run the full pipeline and print the resulting chunks",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runChunk,
	}

	processCmd := &cobra.Command{
		Use:   "process <path...>",
		Short: "Alias for chunk with metadata enrichment implied",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enrich = true
			return runChunk(cmd, args)
		},
	}

	evaluateCmd := &cobra.Command{
		Use:   "evaluate <path>",
		Short: "Chunk a document and report quality metrics and a QA benchmark",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvaluate,
	}

	for _, c := range []*cobra.Command{extractCmd, chunkCmd, processCmd, evaluateCmd} {
		c.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
		c.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json|text)")
		c.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
		c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-stage timing")
	}
	for _, c := range []*cobra.Command{chunkCmd, processCmd, evaluateCmd} {
		c.Flags().StringVar(&strategy, "strategy", "Auto", "Chunking strategy (FixedSize|Paragraph|Semantic|Smart|Intelligent|MemoryOptimizedIntelligent|Auto)")
		c.Flags().IntVar(&maxChunkSize, "max-size", 512, "Target chunk size in characters")
		c.Flags().IntVar(&overlapSize, "overlap", 64, "Overlap size in characters")
		c.Flags().StringVar(&refinePreset, "refine", "", "Refine preset to apply before chunking (Light|Standard|ForRAG|ForPdfContent|ForWebContent|ForKorean|ForKoreanWebContent)")
		c.Flags().BoolVar(&enrich, "enrich", false, "Enable per-chunk metadata enrichment")
		c.Flags().BoolVar(&useAI, "ai", false, "Enable LLM-backed strategy selection and enrichment (reads OPENAI_API_KEY)")
	}
	chunkCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent files when multiple paths are given (default: number of CPUs)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("chunkstream v0.1.0")
		},
	}

	rootCmd.AddCommand(extractCmd, chunkCmd, processCmd, evaluateCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a StageError's stage to a distinct process exit code, so
// scripts can branch on which pipeline stage failed without parsing stderr.
func exitCodeFor(err error) int {
	var stageErr *chunkstream.StageError
	if !errors.As(err, &stageErr) {
		return 1
	}
	switch stageErr.Stage {
	case chunkstream.StageExtract:
		return 2
	case chunkstream.StageParse:
		return 3
	case chunkstream.StageRefine:
		return 4
	case chunkstream.StageChunk:
		return 5
	case chunkstream.StageEnrich:
		return 6
	case chunkstream.StageCache:
		return 7
	default:
		return 1
	}
}

func buildPipeline() *chunkstream.Pipeline {
	var opts []chunkstream.Option
	if refinePreset != "" {
		opts = append(opts, chunkstream.WithRefinePreset(refinePreset))
	}
	if concurrency > 0 {
		opts = append(opts, chunkstream.WithConcurrency(concurrency))
	}
	if useAI {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			model := os.Getenv("OPENAI_MODEL")
			if model == "" {
				model = "gpt-4o-mini"
			}
			opts = append(opts, chunkstream.WithOpenAI(key, model))
		}
	}
	return chunkstream.New(opts...)
}

func buildOptions() chunkstream.ChunkingOptions {
	opts := chunkstream.DefaultOptions()
	opts.Strategy = strategy
	opts.MaxChunkSize = maxChunkSize
	opts.OverlapSize = overlapSize
	opts.Custom["enableMetadataEnrichment"] = enrich
	return opts
}

func runExtract(cmd *cobra.Command, args []string) error {
	p := buildPipeline()
	started := time.Now()
	raw, err := p.Extract(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "extract: %v\n", time.Since(started))
	}

	if outputFormat == "text" {
		return writeOutput([]byte(raw.Text))
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(b)
}

func runChunk(cmd *cobra.Command, args []string) error {
	p := buildPipeline()
	opts := buildOptions()
	ctx := cmd.Context()

	if len(args) == 1 {
		started := time.Now()
		chunks, err := p.Process(ctx, args[0], opts)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "process %s: %v (%d chunks)\n", args[0], time.Since(started), len(chunks))
		}
		return writeChunks(chunks)
	}

	results, progress := p.ProcessBatch(ctx, args, opts)
	for snapshot := range progress {
		if !quiet {
			fmt.Fprintf(os.Stderr, "progress: %d/%d\n", snapshot.Completed, snapshot.Total)
		}
	}

	var all []*chunkstream.Chunk
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "error processing %s: %v\n", r.Path, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		all = append(all, r.Chunks...)
	}
	if len(all) == 0 && firstErr != nil {
		return firstErr
	}
	return writeChunks(all)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	p := buildPipeline()
	opts := buildOptions()
	ctx := cmd.Context()

	raw, err := p.Extract(ctx, args[0])
	if err != nil {
		return err
	}
	chunks, err := p.Process(ctx, args[0], opts)
	if err != nil {
		return err
	}

	var completion llm.TextCompletionService
	if useAI {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			model := os.Getenv("OPENAI_MODEL")
			if model == "" {
				model = "gpt-4o-mini"
			}
			completion = llm.NewOpenAIService(key, model)
		}
	}
	engine := quality.New(completion)

	metrics := engine.Metrics(chunks)
	questions := engine.GenerateQuestions(ctx, parse.Parse(raw), 10)
	answerability := engine.ValidateAnswerability(questions, chunks)

	report := map[string]interface{}{
		"path":          args[0],
		"chunk_count":   len(chunks),
		"metrics":       metrics,
		"answerability": answerability,
		"recommendations": engine.Recommendations(metrics, 0),
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(b)
}

func writeChunks(chunks []*chunkstream.Chunk) error {
	if outputFormat == "text" {
		result := &chunkstream.RunResult{Chunks: chunks}
		return writeOutput([]byte(result.FormatMarkdown()))
	}
	b, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(b)
}

func writeOutput(b []byte) error {
	if outputFile != "" {
		return os.WriteFile(outputFile, b, 0o644)
	}
	fmt.Println(string(b))
	return nil
}
