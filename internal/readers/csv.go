package readers

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chunkstream/internal/model"
)

// CSVReader renders tabular rows as Markdown-style pipe tables so downstream
// table-detection logic (structural role classification, Intelligent
// chunking's table coalescing) recognizes the content without a dedicated
// tabular code path.
type CSVReader struct{}

// NewCSVReader constructs a CSVReader.
func NewCSVReader() *CSVReader { return &CSVReader{} }

func (c *CSVReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func (c *CSVReader) Extract(ctx context.Context, path string) (model.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return model.RawContent{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: parsing csv %s: %w", path, err)
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString(" |\n")
		if i == 0 {
			b.WriteString("|")
			for range row {
				b.WriteString(" --- |")
			}
			b.WriteString("\n")
		}
	}

	info, _ := os.Stat(path)
	var size int64
	if info != nil {
		size = info.Size()
	}

	return model.RawContent{
		Text: strings.TrimSpace(b.String()),
		Hints: model.SourceHints{
			FileName: filepath.Base(path),
			Size:     size,
			FileType: "text/csv",
		},
	}, nil
}
