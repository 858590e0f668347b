package readers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chunkstream/internal/model"
)

// JSONReader flattens a JSON document into a readable text stream, so the
// rest of the pipeline can treat it like any other prose source. Structure
// is preserved as indentation and dotted key paths rather than raw braces.
type JSONReader struct{}

// NewJSONReader constructs a JSONReader.
func NewJSONReader() *JSONReader { return &JSONReader{} }

func (j *JSONReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func (j *JSONReader) Extract(ctx context.Context, path string) (model.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return model.RawContent{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: reading %s: %w", path, err)
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return model.RawContent{}, fmt.Errorf("readers: parsing json %s: %w", path, err)
	}

	var b strings.Builder
	flattenJSON(&b, "", value)

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
			FileType: "application/json",
		},
	}, nil
}

func flattenJSON(b *strings.Builder, prefix string, value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			flattenJSON(b, path, child)
		}
	case []interface{}:
		for i, child := range v {
			path := prefix + "[" + strconv.Itoa(i) + "]"
			flattenJSON(b, path, child)
		}
	default:
		if prefix != "" {
			b.WriteString(prefix)
			b.WriteString(": ")
		}
		fmt.Fprintf(b, "%v\n", v)
	}
}
