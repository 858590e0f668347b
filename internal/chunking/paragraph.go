package chunking

import (
	"context"
	"regexp"
	"strings"

	"chunkstream/internal/model"
)

// ParagraphChunkingStrategy splits on blank lines, combines short
// paragraphs while staying under MaxChunkSize, splits long paragraphs on
// sentence boundaries, and always starts a fresh chunk at a header.
type ParagraphChunkingStrategy struct{}

func NewParagraphStrategy() *ParagraphChunkingStrategy { return &ParagraphChunkingStrategy{} }

func (s *ParagraphChunkingStrategy) Name() string { return "Paragraph" }

const shortParagraphThreshold = 50

var paragraphHeaderLine = regexp.MustCompile(`^#{1,6}\s+\S`)

func (s *ParagraphChunkingStrategy) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	max := opts.MaxChunkSize
	if max <= 0 {
		max = 512
	}

	paragraphs, spans := splitParagraphs(parsed.Text)
	if len(paragraphs) == 0 {
		return nil, nil
	}

	var chunks []*model.Chunk
	index := 0

	var buf strings.Builder
	bufStart, bufEnd := -1, -1

	flush := func() {
		content := strings.TrimSpace(buf.String())
		if content == "" {
			buf.Reset()
			return
		}
		for _, piece := range EnforceMaxSize(content, int(float64(max)*opts.SafetyFactor())) {
			c := model.NewChunk(index, piece, s.Name())
			FinishChunk(c, parsed, bufStart, bufEnd)
			chunks = append(chunks, c)
			index++
		}
		buf.Reset()
		bufStart, bufEnd = -1, -1
	}

	for i, p := range paragraphs {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}

		isHeader := paragraphHeaderLine.MatchString(trimmed)

		if isHeader && buf.Len() > 0 {
			flush()
		}

		if buf.Len() > 0 && len([]rune(buf.String()))+len([]rune(trimmed)) > max {
			flush()
		}

		if bufStart < 0 {
			bufStart = spans[i].Start
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(trimmed)
		bufEnd = spans[i].End
	}
	flush()

	return chunks, nil
}

// splitParagraphs splits text on blank lines and returns each paragraph's
// character span alongside its text.
func splitParagraphs(text string) ([]string, []model.Span) {
	var paragraphs []string
	var spans []model.Span

	offset := 0
	start := -1
	var buf strings.Builder

	lines := strings.Split(text, "\n")
	lineOffset := 0
	flush := func(end int) {
		if buf.Len() > 0 {
			paragraphs = append(paragraphs, buf.String())
			spans = append(spans, model.Span{Start: start, End: end})
			buf.Reset()
			start = -1
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush(lineOffset)
		} else {
			if start < 0 {
				start = lineOffset
			}
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(line)
		}
		lineOffset += len(line) + 1
	}
	flush(len(text))
	_ = offset
	return paragraphs, spans
}
