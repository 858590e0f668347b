package readers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chunkstream/internal/langdetect"
	"chunkstream/internal/model"

	"golang.org/x/text/unicode/norm"
)

// MarkdownReader reads Markdown source files verbatim (the parse stage is
// responsible for turning ATX/Setext headings into Sections).
type MarkdownReader struct{}

// NewMarkdownReader constructs a MarkdownReader.
func NewMarkdownReader() *MarkdownReader { return &MarkdownReader{} }

func (m *MarkdownReader) CanRead(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

func (m *MarkdownReader) Extract(ctx context.Context, path string) (model.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return model.RawContent{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: reading %s: %w", path, err)
	}

	text := norm.NFC.String(decodeBestEffort(raw))
	lang, _ := langdetect.Detect(sampleFor(text))

	info, _ := os.Stat(path)
	var size int64
	if info != nil {
		size = info.Size()
	}

	return model.RawContent{
		Text: text,
		Hints: model.SourceHints{
			FileName:     filepath.Base(path),
			Size:         size,
			FileType:     "text/markdown",
			BaseLanguage: lang,
		},
	}, nil
}

// sampleFor returns the leading portion of text used for cheap feature
// detection (language guessing, characteristic sampling), capped at 2000
// bytes (the cut can fall inside a multi-byte character).
func sampleFor(text string) string {
	const maxSample = 2000
	if len(text) <= maxSample {
		return text
	}
	return text[:maxSample]
}
