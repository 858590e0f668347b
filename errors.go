package chunkstream

import (
	"fmt"
)

// StageKind identifies which pipeline stage an error originated from.
type StageKind int

const (
	StageExtract StageKind = iota
	StageParse
	StageRefine
	StageChunk
	StageEnrich
	StageCache
)

// String returns a human-readable stage name.
func (s StageKind) String() string {
	switch s {
	case StageExtract:
		return "extract"
	case StageParse:
		return "parse"
	case StageRefine:
		return "refine"
	case StageChunk:
		return "chunk"
	case StageEnrich:
		return "enrich"
	case StageCache:
		return "cache"
	default:
		return "unknown stage"
	}
}

// ErrorCode represents the type of error that occurred while running a
// pipeline stage.
type ErrorCode int

const (
	// ErrInvalidInput indicates the input document or options were malformed.
	ErrInvalidInput ErrorCode = iota

	// ErrStage indicates a stage-internal failure (parsing, chunking, ...).
	ErrStage

	// ErrServiceUnavailable indicates an optional external collaborator
	// (LLM, vision service, disk cache) was unreachable; callers degrade
	// gracefully rather than failing the run.
	ErrServiceUnavailable

	// ErrResourceExceeded indicates a configured resource limit (max file
	// size, memory budget, analysis timeout) was hit.
	ErrResourceExceeded

	// ErrCancelled indicates the context was cancelled mid-run.
	ErrCancelled
)

// String returns a human-readable string for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrInvalidInput:
		return "invalid input"
	case ErrStage:
		return "stage error"
	case ErrServiceUnavailable:
		return "service unavailable"
	case ErrResourceExceeded:
		return "resource exceeded"
	case ErrCancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// StageError represents an error that occurred while running one stage of
// the pipeline. It carries enough context (stage, error code, underlying
// cause) for callers to decide whether to retry, skip, or abort a run.
type StageError struct {
	// Code indicates the type of error.
	Code ErrorCode

	// Stage is the pipeline stage that produced the error.
	Stage StageKind

	// Source identifies the document or file this error concerns, when
	// known (path, URL, or a caller-supplied identifier).
	Source string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chunkstream: %s %s: %s: %v", e.Stage, e.Source, e.Code, e.Err)
	}
	return fmt.Sprintf("chunkstream: %s %s: %s", e.Stage, e.Source, e.Code)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error is equal to this error.
func (e *StageError) Is(target error) bool {
	t, ok := target.(*StageError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Stage == t.Stage
}

// IsCancelled returns true if the error was caused by context cancellation.
func (e *StageError) IsCancelled() bool {
	return e.Code == ErrCancelled
}

// IsServiceUnavailable returns true if the error came from an optional
// external collaborator being unreachable.
func (e *StageError) IsServiceUnavailable() bool {
	return e.Code == ErrServiceUnavailable
}

// IsResourceExceeded returns true if the error was caused by hitting a
// configured resource limit.
func (e *StageError) IsResourceExceeded() bool {
	return e.Code == ErrResourceExceeded
}

// IsInvalidInput returns true if the error was caused by malformed input.
func (e *StageError) IsInvalidInput() bool {
	return e.Code == ErrInvalidInput
}

// IsStage returns true if the error is a stage-internal failure.
func (e *StageError) IsStage() bool {
	return e.Code == ErrStage
}

// newStageError is a small constructor used throughout the pipeline to
// avoid repeating the struct literal at every call site.
func newStageError(code ErrorCode, stage StageKind, source string, err error) *StageError {
	return &StageError{Code: code, Stage: stage, Source: source, Err: err}
}

// ErrorCollection holds multiple stage errors accumulated during a batch or
// streaming run, so a caller can inspect every failure once processing
// finishes instead of aborting on the first one.
type ErrorCollection struct {
	Errors []*StageError
}

// Add appends err to the collection.
func (ec *ErrorCollection) Add(err *StageError) {
	ec.Errors = append(ec.Errors, err)
}

// HasErrors reports whether any errors were recorded.
func (ec *ErrorCollection) HasErrors() bool {
	return len(ec.Errors) > 0
}

// Count returns the number of recorded errors.
func (ec *ErrorCollection) Count() int {
	return len(ec.Errors)
}

// Error implements the error interface, summarising the collection.
func (ec *ErrorCollection) Error() string {
	if len(ec.Errors) == 0 {
		return "no errors"
	}
	if len(ec.Errors) == 1 {
		return ec.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %v", len(ec.Errors), ec.Errors[0])
}

// ByStage returns only the errors that occurred in the given stage.
func (ec *ErrorCollection) ByStage(stage StageKind) []*StageError {
	var out []*StageError
	for _, e := range ec.Errors {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first recorded error, or nil if none were recorded.
func (ec *ErrorCollection) First() *StageError {
	if len(ec.Errors) == 0 {
		return nil
	}
	return ec.Errors[0]
}
