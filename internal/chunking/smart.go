package chunking

import (
	"context"
	"strings"

	"chunkstream/internal/model"
)

// SmartChunkingStrategy accumulates whole sentences until the limit, emits
// early once 70% full on overflow, and otherwise keeps accumulating up to
// the safety-factor ceiling before a forced emit. Chunks end on a sentence
// boundary except where a single sentence longer than the ceiling is split
// by EnforceMaxSize; when the next sentence would pass the ceiling, the
// buffer is emitted even if it is under 70% full.
type SmartChunkingStrategy struct{}

func NewSmartStrategy() *SmartChunkingStrategy { return &SmartChunkingStrategy{} }

func (s *SmartChunkingStrategy) Name() string { return "Smart" }

const smartCompletenessThreshold = 0.7

func (s *SmartChunkingStrategy) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	max := opts.MaxChunkSize
	if max <= 0 {
		max = 512
	}
	ceiling := int(float64(max) * opts.SafetyFactor())
	minAcceptable := int(float64(max) * smartCompletenessThreshold)

	spans := sentenceSpansFlat(parsed.Text)
	if len(spans) == 0 {
		return nil, nil
	}

	var chunks []*model.Chunk
	index := 0
	var buf []sentenceSpan
	var prevContent string

	flush := func(forcedBoundary bool) {
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
		if forcedBoundary {
			c.Props[model.PropForcedBoundary] = "sentence ceiling reached without a natural stop"
		}
		chunks = append(chunks, c)
		index++
		prevContent = sb.String()
		buf = nil
	}

	for _, sp := range spans {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}

		candidate := append(append([]sentenceSpan{}, buf...), sp)
		candidateLen := bufferLen(candidate)

		switch {
		case candidateLen <= max:
			buf = candidate
		case candidateLen <= ceiling:
			// Over the soft limit but under the safety ceiling: emit now
			// if what we already have clears the completeness bar,
			// otherwise keep absorbing toward the ceiling.
			if bufferLen(buf) >= minAcceptable {
				flush(false)
				buf = []sentenceSpan{sp}
			} else {
				buf = candidate
			}
		default:
			// Adding sp would blow the safety ceiling outright.
			if len(buf) > 0 {
				flush(false)
			}
			if len([]rune(sp.text)) > ceiling {
				for _, piece := range EnforceMaxSize(sp.text, ceiling) {
					c := model.NewChunk(index, ApplyOverlap(prevContent, piece, opts), s.Name())
					FinishChunk(c, parsed, sp.start, sp.end)
					c.Props[model.PropForcedBoundary] = "single sentence exceeded the safety ceiling"
					chunks = append(chunks, c)
					index++
					prevContent = piece
				}
				buf = nil
			} else {
				buf = []sentenceSpan{sp}
			}
		}
	}

	if len(buf) > 0 {
		flush(bufferLen(buf) > max)
	}

	return chunks, nil
}

// sentenceSpansFlat splits the whole document into sentence spans without
// paragraph-break markers (Smart does not treat paragraphs specially).
func sentenceSpansFlat(text string) []sentenceSpan {
	var spans []sentenceSpan
	cursor := 0
	for _, sent := range SplitSentences(text) {
		start := cursor
		if idx := strings.Index(text[cursor:], sent); idx >= 0 {
			start = cursor + idx
			cursor = start + len(sent)
		}
		end := start + len(sent)
		spans = append(spans, sentenceSpan{text: sent, start: start, end: end})
	}
	return spans
}
