// Package readers implements the ReaderRegistry: a pluggable,
// extension-keyed dispatch from a file path to a Reader that yields
// RawContent. Binary document formats (PDF/DOCX/XLSX/PPTX) are genuinely
// out of scope — this package only defines their registry slot and a
// placeholder that reports them as unsupported until a real implementation
// is registered, exactly like the other external collaborator
// interfaces (TextCompletionService, ImageToTextService).
package readers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"chunkstream/internal/model"
)

// Reader extracts RawContent from a file.
type Reader interface {
	// CanRead reports whether this reader handles the given path (usually
	// by extension).
	CanRead(path string) bool

	// Extract reads and decodes the file at path into RawContent. cancel
	// (via ctx) aborts in-flight reads; callers must check ctx.Err() at
	// natural suspension points on large inputs.
	Extract(ctx context.Context, path string) (model.RawContent, error)
}

// Registry dispatches a file path to the Reader registered for its
// extension. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	readers map[string]Reader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// NewDefaultRegistry returns a registry pre-populated with every reader
// this package implements concretely, plus opaque stubs for the binary
// office/PDF formats this registry recognizes by extension only.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".txt", NewTextReader())
	r.Register(".md", NewMarkdownReader())
	r.Register(".html", NewHTMLReader())
	r.Register(".htm", NewHTMLReader())
	r.Register(".json", NewJSONReader())
	r.Register(".csv", NewCSVReader())
	r.Register(".zip", NewZipReader(r))
	for _, ext := range []string{".pdf", ".docx", ".xlsx", ".pptx"} {
		r.Register(ext, NewOpaqueReader(ext))
	}
	return r
}

// Register associates an extension (including the leading dot, matched
// case-insensitively) with a reader, overwriting any previous registration.
func (r *Registry) Register(ext string, reader Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[strings.ToLower(ext)] = reader
}

// ReaderFor returns the reader registered for path's extension.
func (r *Registry) ReaderFor(path string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r.mu.RLock()
	reader, ok := r.readers[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("readers: no reader registered for extension %q", ext)
	}
	return reader, nil
}

// Extract looks up the reader for path and runs it.
func (r *Registry) Extract(ctx context.Context, path string) (model.RawContent, error) {
	reader, err := r.ReaderFor(path)
	if err != nil {
		return model.RawContent{}, err
	}
	return reader.Extract(ctx, path)
}

// ErrUnsupportedFormat is returned by the opaque binary-format stubs.
type ErrUnsupportedFormat struct {
	Extension string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("readers: %s requires an external binary parser, none registered", e.Extension)
}

// OpaqueReader is the registry slot for formats treated as external
// collaborators (PDF/DOCX/XLSX/PPTX): it reports CanRead truthfully so
// dispatch by extension still works, but Extract fails with a typed error
// until a real implementation is swapped in via Register.
type OpaqueReader struct {
	ext string
}

// NewOpaqueReader constructs a placeholder reader for ext.
func NewOpaqueReader(ext string) *OpaqueReader {
	return &OpaqueReader{ext: ext}
}

func (o *OpaqueReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), o.ext)
}

func (o *OpaqueReader) Extract(ctx context.Context, path string) (model.RawContent, error) {
	return model.RawContent{}, &ErrUnsupportedFormat{Extension: o.ext}
}
