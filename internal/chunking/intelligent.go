package chunking

import (
	"context"
	"regexp"
	"strings"

	"chunkstream/internal/boundary"
	"chunkstream/internal/helper"
	"chunkstream/internal/model"
)

// IntelligentChunkingStrategy splits while preserving structural units: a
// table stays in one chunk or, when oversized, is split on row boundaries
// with its header and separator rows repeated, and a section header starts
// a new chunk once the buffer holds 30% of the window. Fenced code blocks
// are not treated as one unit: their lines are chunked like any other line,
// so a long block can be split between chunks.
type IntelligentChunkingStrategy struct{}

func NewIntelligentStrategy() *IntelligentChunkingStrategy { return &IntelligentChunkingStrategy{} }

func (s *IntelligentChunkingStrategy) Name() string { return "Intelligent" }

const intelligentQualityThreshold = 0.6

var (
	intHeaderLine = regexp.MustCompile(`^#{1,6}\s+\S`)
	intTableRow   = regexp.MustCompile(`\|.*\|`)
)

// unit is one semantic-unit-extraction result: either
// a single non-table line or a coalesced run of table rows.
type unit struct {
	kind                string // "header" | "table" | "line"
	text                string
	start, end          int
	importance          float64
	contextualRelevance float64
}

func (u unit) length() int { return len([]rune(u.text)) }

func (s *IntelligentChunkingStrategy) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	max := opts.MaxChunkSize
	if max <= 0 {
		max = 512
	}

	units := extractUnits(parsed.Text)
	if len(units) == 0 {
		return nil, nil
	}

	window := max
	for _, u := range units {
		if u.kind == "table" {
			window = max * 2
			break
		}
	}

	rawChunks := contextualChunk(units, window, opts.OverlapSize)

	var chunks []*model.Chunk
	index := 0
	safetyCeiling := int(float64(max) * opts.SafetyFactor())

	for _, rc := range rawChunks {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}

		content := rc.text
		if quality(content) < intelligentQualityThreshold {
			content = strings.Join(SplitSentences(content), " ")
		}

		pieces := []string{content}
		if len([]rune(content)) > safetyCeiling {
			if looksLikeTable(content) {
				pieces = splitTableText(content, safetyCeiling)
			} else {
				pieces = EnforceMaxSize(content, safetyCeiling)
			}
		}

		for _, piece := range pieces {
			c := model.NewChunk(index, piece, s.Name())
			FinishChunk(c, parsed, rc.start, rc.end)
			enrich(c)
			chunks = append(chunks, c)
			index++
		}
	}

	return chunks, nil
}

// enrich annotates a finished chunk with its structural role, detected
// technical keyword categories, and document domain.
func enrich(c *model.Chunk) {
	c.Props[model.PropStructuralRole] = string(helper.ClassifyStructuralRole(c.Content))
	if kws := helper.DetectKeywordCategories(c.Content); len(kws) > 0 {
		c.Props[model.PropDocumentKeywords] = kws
	}
	c.Props[model.PropContentType] = string(helper.DetectDomain(c.Content))
}

// quality is a cheap structural-coherence score used by the optimisation
// pass: a chunk that ends on a sentence terminator or a structural boundary
// scores well; one that trails off mid-thought does not.
func quality(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	if EndsOnSentence(trimmed) {
		return 0.9
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 1 {
		eval := boundary.Evaluate(lines, len(lines)-1)
		return eval.Quality
	}
	return 0.5
}

type rawChunk struct {
	text       string
	start, end int
}

// contextualChunk accumulates units until
// the window would overflow, force-emit at headers once the buffer holds
// 30% of the window, and handle table units as atomic (or row-split when
// oversized) blocks that are never broken mid-row.
func contextualChunk(units []unit, window, overlapSize int) []rawChunk {
	var out []rawChunk
	var buf []unit
	var prevText string

	bufLen := func() int {
		n := 0
		for _, u := range buf {
			n += u.length() + 1
		}
		return n
	}

	emit := func() {
		if len(buf) == 0 {
			return
		}
		var sb strings.Builder
		for i, u := range buf {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(u.text)
		}
		text := sb.String()

		last := buf[len(buf)-1]
		size := int(float64(overlapSize) * last.contextualRelevance)
		if size > 0 && prevText != "" {
			if ov := overlapManager.BuildOverlapText(prevText, size); ov != "" {
				text = ov + "\n" + text
			}
		}

		out = append(out, rawChunk{text: text, start: buf[0].start, end: buf[len(buf)-1].end})
		prevText = sb.String()
		buf = nil
	}

	maxTableSize := int(2.5 * float64(window))

	for _, u := range units {
		switch u.kind {
		case "header":
			if len(buf) > 0 && bufLen() >= int(0.3*float64(window)) {
				emit()
			}
			buf = append(buf, u)

		case "table":
			if u.length() <= maxTableSize {
				if len(buf) > 0 && bufLen()+u.length() > window {
					emit()
				}
				buf = append(buf, u)
				if bufLen() >= window {
					emit()
				}
			} else {
				if len(buf) > 0 {
					emit()
				}
				for _, part := range splitTableUnit(u, maxTableSize) {
					buf = []unit{part}
					emit()
				}
			}

		default:
			if len(buf) > 0 {
				candidate := bufLen() + u.length() + 1
				if candidate > window {
					if continuityOK(buf, u) || bufLen() >= 2*window {
						emit()
					}
				}
			}
			buf = append(buf, u)
		}
	}
	emit()

	return out
}

// continuityOK approximates a "boundary passes a continuity check" test
// by scoring the proposed cut (between the buffered unit text and
// the next unit) with the boundary evaluator.
func continuityOK(buf []unit, next unit) bool {
	if len(buf) == 0 {
		return true
	}
	lines := []string{buf[len(buf)-1].text, next.text}
	return boundary.Evaluate(lines, 1).Quality >= 0.5
}

// splitTableUnit splits an oversized table unit on row boundaries, keeping
// the header row and separator row as a prefix on every part so no chunk
// ever starts with a bare data row.
func splitTableUnit(u unit, maxSize int) []unit {
	rows := strings.Split(u.text, "\n")
	var tableRows []string
	for _, r := range rows {
		if strings.TrimSpace(r) != "" {
			tableRows = append(tableRows, r)
		}
	}
	if len(tableRows) < 2 {
		return []unit{u}
	}

	header := tableRows[0]
	sep := tableRows[1]
	prefixLen := len([]rune(header)) + len([]rune(sep)) + 2

	var parts []unit
	var body strings.Builder
	bodyLen := prefixLen
	start := u.start

	flush := func() {
		if body.Len() == 0 {
			return
		}
		text := header + "\n" + sep + "\n" + body.String()
		parts = append(parts, unit{kind: "table", text: text, start: start, end: u.end, importance: 1.0, contextualRelevance: u.contextualRelevance})
		body.Reset()
		bodyLen = prefixLen
	}

	for _, row := range tableRows[2:] {
		rowLen := len([]rune(row)) + 1
		if bodyLen+rowLen > maxSize && body.Len() > 0 {
			flush()
		}
		body.WriteString(row)
		body.WriteString("\n")
		bodyLen += rowLen
	}
	flush()

	if len(parts) == 0 {
		return []unit{u}
	}
	return parts
}

// extractUnits walks text line by line, coalescing contiguous (optionally
// blank-line-separated) table rows into one table unit and treating every
// other non-blank line as its own unit.
func extractUnits(text string) []unit {
	lines := strings.Split(text, "\n")
	offsets := make([]int, len(lines)+1)
	off := 0
	for i, l := range lines {
		offsets[i] = off
		off += len(l) + 1
	}
	offsets[len(lines)] = off

	var units []unit
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			i++
			continue
		}

		if isTableRowText(trimmed) {
			j := i
			lastTable := i
			for j < len(lines) {
				t := strings.TrimSpace(lines[j])
				if isTableRowText(t) {
					lastTable = j
					j++
					continue
				}
				if t == "" && j+1 < len(lines) && isTableRowText(strings.TrimSpace(lines[j+1])) {
					j++
					continue
				}
				break
			}
			text := strings.Join(nonBlank(lines[i:lastTable+1]), "\n")
			units = append(units, unit{
				kind: "table", text: text, start: offsets[i], end: offsets[lastTable+1],
				importance: 1.0, contextualRelevance: 1.0,
			})
			i = lastTable + 1
			continue
		}

		if intHeaderLine.MatchString(trimmed) {
			level := strings.IndexFunc(trimmed, func(r rune) bool { return r != '#' })
			importance := 1.0 - 0.5*float64(level-1)/5.0
			units = append(units, unit{
				kind: "header", text: trimmed, start: offsets[i], end: offsets[i+1],
				importance: importance, contextualRelevance: importance,
			})
			i++
			continue
		}

		importance := lineImportance(trimmed)
		units = append(units, unit{
			kind: "line", text: lines[i], start: offsets[i], end: offsets[i+1],
			importance: importance, contextualRelevance: importance,
		})
		i++
	}
	return units
}

func nonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func isTableRowText(line string) bool {
	return intTableRow.MatchString(line) && strings.Count(line, "|") >= 2
}

// looksLikeTable reports whether content's first two lines are table rows,
// meaning it is (or starts with) a coalesced table unit rather than prose.
func looksLikeTable(content string) bool {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return false
	}
	return isTableRowText(strings.TrimSpace(lines[0])) && isTableRowText(strings.TrimSpace(lines[1]))
}

// splitTableText re-applies the row-preserving table split to chunk text
// that is still over the safety ceiling after contextualChunk's own
// windowing (e.g. once overlap text is prepended), so the generic
// sentence/word splitter in EnforceMaxSize never cuts a table mid-row.
func splitTableText(content string, ceiling int) []string {
	u := unit{kind: "table", text: strings.TrimSpace(content)}
	parts := splitTableUnit(u, ceiling)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.text)
	}
	return out
}

var keywordDensityPattern = regexp.MustCompile(`(?i)\b(important|key|critical|must|required|note)\b`)

// lineImportance scores a non-header, non-table line by length and keyword
// density.
func lineImportance(line string) float64 {
	lengthScore := float64(len(line)) / 200.0
	if lengthScore > 1 {
		lengthScore = 1
	}
	density := float64(len(keywordDensityPattern.FindAllString(line, -1)))
	score := 0.5*lengthScore + 0.1*density
	if score > 1 {
		score = 1
	}
	if score < 0.1 {
		score = 0.1
	}
	return score
}

