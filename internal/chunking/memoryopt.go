package chunking

import (
	"bufio"
	"context"
	"strings"

	"chunkstream/internal/model"
	"chunkstream/internal/pool"
)

// MemoryOptimizedIntelligentStrategy is the streaming, pool-backed sibling
// of IntelligentChunkingStrategy: it scans the document
// line by line with pooled line buffers instead of materialising the full
// unit list, trading a little cut-point sophistication for a bounded
// working set on very large documents. Selected by the Auto selector when
// process memory pressure is detected.
type MemoryOptimizedIntelligentStrategy struct {
	builders *pool.BuilderPool
	lines    *pool.LineBufferPool
}

func NewMemoryOptimizedIntelligentStrategy() *MemoryOptimizedIntelligentStrategy {
	return &MemoryOptimizedIntelligentStrategy{
		builders: pool.NewBuilderPool(),
		lines:    pool.NewLineBufferPool(),
	}
}

func (s *MemoryOptimizedIntelligentStrategy) Name() string { return "MemoryOptimizedIntelligent" }

func (s *MemoryOptimizedIntelligentStrategy) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	max := opts.MaxChunkSize
	if max <= 0 {
		max = 512
	}
	safetyCeiling := int(float64(max) * opts.SafetyFactor())

	scanner := bufio.NewScanner(strings.NewReader(parsed.Text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	buf := s.lines.Get()
	defer s.lines.Put(buf)

	var chunks []*model.Chunk
	index := 0
	offset := 0
	chunkStart := 0
	bufLen := 0
	inTable := false
	var tableHeader []string // header + separator row of the table currently being accumulated

	emit := func(end int) {
		if len(buf) == 0 {
			return
		}
		b := s.builders.Get()
		defer s.builders.Put(b)
		for i, l := range buf {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(l)
		}
		content := b.String()
		ceiling := safetyCeiling
		pieces := []string{content}
		if len([]rune(content)) > ceiling {
			if looksLikeTable(content) {
				pieces = splitTableText(content, ceiling)
			} else {
				pieces = EnforceMaxSize(content, ceiling)
			}
		}
		for _, piece := range pieces {
			c := model.NewChunk(index, piece, s.Name())
			FinishChunk(c, parsed, chunkStart, end)
			enrich(c)
			c.Props[model.PropMemoryOptimized] = true
			chunks = append(chunks, c)
			index++
		}
		buf = buf[:0]
		bufLen = 0
		chunkStart = end
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		line := scanner.Text()
		lineLen := len(line) + 1
		trimmed := strings.TrimSpace(line)

		isTableRow := isTableRowText(trimmed)
		isHeader := intHeaderLine.MatchString(trimmed)

		if isHeader && bufLen >= int(0.3*float64(max)) {
			emit(offset)
		}

		if isTableRow && !inTable {
			tableHeader = nil // a fresh table run starts here
		}
		if !isTableRow && inTable {
			inTable = false
			tableHeader = nil
		}
		if isTableRow {
			inTable = true
			if len(tableHeader) < 2 {
				tableHeader = append(tableHeader, line)
			}
		}

		if trimmed != "" {
			if bufLen+lineLen > max && !inTable {
				emit(offset)
			}
			buf = append(buf, line)
			bufLen += lineLen
		}

		offset += lineLen

		// A table can legitimately grow past max (never split mid-row);
		// only force-emit once it clears the oversized-table ceiling. The
		// header+separator row is re-seeded into the next buffer so a row
		// split never starts a chunk on a bare data row.
		if inTable && bufLen >= int(2.5*float64(max)) {
			emit(offset)
			for _, h := range tableHeader {
				buf = append(buf, h)
				bufLen += len(h) + 1
			}
		}
	}
	emit(offset)

	return chunks, scanner.Err()
}
