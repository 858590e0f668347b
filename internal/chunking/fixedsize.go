package chunking

import (
	"context"
	"strings"

	"chunkstream/internal/model"
)

// FixedSizeStrategy takes MaxChunkSize characters at a time, backing off to
// the last word boundary when that boundary falls past half-way through the
// window.
type FixedSizeStrategy struct{}

func NewFixedSizeStrategy() *FixedSizeStrategy { return &FixedSizeStrategy{} }

func (s *FixedSizeStrategy) Name() string { return "FixedSize" }

func (s *FixedSizeStrategy) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	text := parsed.Text
	max := opts.MaxChunkSize
	if max <= 0 {
		max = 512
	}
	overlapSize := opts.OverlapSize
	if half := max / 2; overlapSize > half {
		overlapSize = half
	}

	var chunks []*model.Chunk
	runes := []rune(text)
	pos := 0
	index := 0

	for pos < len(runes) {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}

		end := pos + max
		if end > len(runes) {
			end = len(runes)
		} else {
			half := pos + max/2
			window := string(runes[pos:end])
			if b := LastWordBoundary(window, len(window)); b > 0 {
				// b is a byte offset into window; pos and end count runes.
				if rb := len([]rune(window[:b])); pos+rb > half {
					end = pos + rb
				}
			}
		}

		content := strings.TrimSpace(string(runes[pos:end]))
		if content != "" {
			c := model.NewChunk(index, content, s.Name())
			FinishChunk(c, parsed, pos, end)
			chunks = append(chunks, c)
			index++
		}

		if end >= len(runes) {
			break
		}
		next := end - overlapSize
		if next <= pos {
			next = end
		}
		pos = next
	}

	return chunks, nil
}
