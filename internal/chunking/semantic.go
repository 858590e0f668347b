package chunking

import (
	"context"
	"strings"

	"chunkstream/internal/model"
)

// SemanticChunkingStrategy aggregates sentences into buffers of at most
// MaxSentences (before any overlap text is prepended), emitting when the
// buffer reaches MaxChunkSize or MaxSentences. A paragraph break flushes the
// buffer only once it holds MinSentences sentences; a heading is always
// emitted as its own chunk, so some chunks hold fewer than MinSentences.
type SemanticChunkingStrategy struct {
	MinSentences int
	MaxSentences int
}

func NewSemanticStrategy() *SemanticChunkingStrategy {
	return &SemanticChunkingStrategy{MinSentences: 2, MaxSentences: 8}
}

func (s *SemanticChunkingStrategy) Name() string { return "Semantic" }

type sentenceSpan struct {
	text  string
	start int
	end   int
}

func (s *SemanticChunkingStrategy) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	max := opts.MaxChunkSize
	if max <= 0 {
		max = 512
	}

	spans := sentenceSpansWithParagraphBreaks(parsed.Text)
	if len(spans) == 0 {
		return nil, nil
	}

	var chunks []*model.Chunk
	index := 0
	var buf []sentenceSpan
	var prevContent string

	flush := func() {
		if len(buf) == 0 {
			return
		}
		var sb strings.Builder
		for i, sp := range buf {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(sp.text)
		}
		content := ApplyOverlap(prevContent, sb.String(), opts)
		c := model.NewChunk(index, content, s.Name())
		FinishChunk(c, parsed, buf[0].start, buf[len(buf)-1].end)
		chunks = append(chunks, c)
		index++
		prevContent = sb.String()
		buf = nil
	}

	for _, sp := range spans {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		if sp.text == "" { // paragraph-break marker
			if len(buf) >= s.MinSentences {
				flush()
			}
			continue
		}

		// A heading is never itself a prose sentence worth accumulating
		// toward MinSentences; like ParagraphChunkingStrategy (§4.5), it
		// always starts a fresh chunk rather than waiting to be outvoted
		// by MinSentences alongside body text that follows it.
		if intHeaderLine.MatchString(strings.TrimSpace(sp.text)) {
			flush()
			buf = []sentenceSpan{sp}
			flush()
			continue
		}

		candidateLen := bufferLen(buf) + len([]rune(sp.text)) + 1
		if len(buf) > 0 && (candidateLen > max || len(buf) >= s.MaxSentences) {
			flush()
		}
		buf = append(buf, sp)
	}
	flush()

	return chunks, nil
}

func bufferLen(buf []sentenceSpan) int {
	n := 0
	for _, sp := range buf {
		n += len([]rune(sp.text)) + 1
	}
	return n
}

// sentenceSpansWithParagraphBreaks splits text into sentence spans,
// inserting an empty-text marker span at each paragraph break so the caller
// can treat them as a possible chunk boundary without losing offsets.
func sentenceSpansWithParagraphBreaks(text string) []sentenceSpan {
	var spans []sentenceSpan
	paragraphs, pSpans := splitParagraphs(text)
	for i, p := range paragraphs {
		offset := pSpans[i].Start
		cursor := 0
		for _, sent := range SplitSentences(p) {
			start := offset + cursor
			if idx := strings.Index(p[cursor:], sent); idx >= 0 {
				start = offset + cursor + idx
				cursor += idx + len(sent)
			}
			end := start + len(sent)
			spans = append(spans, sentenceSpan{text: sent, start: start, end: end})
		}
		spans = append(spans, sentenceSpan{text: "", start: pSpans[i].End, end: pSpans[i].End})
	}
	return spans
}
