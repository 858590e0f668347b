// Package llm defines the two external collaborators the pipeline treats
// as optional (TextCompletionService, ImageToTextService) plus one
// concrete, optional OpenAI-backed adapter. Every call site elsewhere in
// the module must tolerate a nil service or a returned error and fall
// through to its rule-based path.
package llm

import (
	"context"
)

// CompletionOptions bounds a single completion call.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
}

// TextCompletionService is the LLM collaborator strategies and the Auto
// selector call when available.
type TextCompletionService interface {
	Generate(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// VisionOptions bounds a single vision call.
type VisionOptions struct {
	MaxTokens int
}

// VisionResult is what an ImageToTextService returns for one image.
type VisionResult struct {
	Text               string
	Confidence         float64
	Language           string
	StructuralElements []string
}

// ImageToTextService is the vision collaborator used by readers that need
// OCR fallback (e.g. scanned PDFs) and is otherwise unused by the core
// chunking path.
type ImageToTextService interface {
	ExtractText(ctx context.Context, imageBytes []byte, opts VisionOptions) (VisionResult, error)
}
