package readers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chunkstream/internal/langdetect"
	"chunkstream/internal/model"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// HTMLReader reads HTML documents, drops non-prose elements via goquery, and
// converts what remains to Markdown so headings, tables, and lists survive
// as structure the parse stage can detect rather than flattened text.
type HTMLReader struct {
	converter *md.Converter
}

// NewHTMLReader constructs an HTMLReader.
func NewHTMLReader() *HTMLReader {
	return &HTMLReader{converter: md.NewConverter("", true, nil)}
}

func (h *HTMLReader) CanRead(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func (h *HTMLReader) Extract(ctx context.Context, path string) (model.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return model.RawContent{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: parsing html %s: %w", path, err)
	}

	doc.Find("script, style, noscript").Remove()
	cleanedHTML, err := doc.Html()
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: serialising cleaned html %s: %w", path, err)
	}

	text, err := h.converter.ConvertString(cleanedHTML)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: converting %s to markdown: %w", path, err)
	}
	text = strings.TrimSpace(text)

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
			FileType:     "text/html",
			BaseLanguage: lang,
		},
	}, nil
}
