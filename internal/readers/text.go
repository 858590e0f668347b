package readers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"chunkstream/internal/model"

	"github.com/saintfish/chardet"
	"golang.org/x/text/unicode/norm"
)

// TextReader reads plain-text files, sniffing non-UTF-8 byte content via
// chardet before falling back to treating it as UTF-8.
type TextReader struct{}

// NewTextReader constructs a TextReader.
func NewTextReader() *TextReader { return &TextReader{} }

func (t *TextReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

func (t *TextReader) Extract(ctx context.Context, path string) (model.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return model.RawContent{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: reading %s: %w", path, err)
	}

	text := decodeBestEffort(raw)
	text = norm.NFC.String(text)

	info, _ := os.Stat(path)
	var size int64
	if info != nil {
		size = info.Size()
	}

	return model.RawContent{
		Text: text,
		Hints: model.SourceHints{
			FileName: filepath.Base(path),
			Size:     size,
			FileType: "text/plain",
		},
	}, nil
}

// decodeBestEffort returns raw as a string directly when it is already
// valid UTF-8; otherwise it sniffs the charset with chardet and, lacking a
// decoder for every possible charset in this minimal pipeline, falls back
// to a lossy UTF-8 reinterpretation (replacing invalid sequences) rather
// than failing the whole extraction over an encoding guess.
func decodeBestEffort(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(raw); err == nil && result != nil {
		// Charset detected but no decoder is wired for this minimal reader,
		// and the result is not passed on; the bytes themselves are
		// degraded to valid UTF-8 below.
		_ = result.Charset
	}
	return strings.ToValidUTF8(string(raw), "�")
}
