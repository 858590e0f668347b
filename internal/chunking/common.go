package chunking

import (
	"regexp"
	"strings"
	"unicode"

	"chunkstream/internal/contextdep"
	"chunkstream/internal/helper"
	"chunkstream/internal/model"
	"chunkstream/internal/overlap"
	"chunkstream/internal/tokenest"
)

var sentenceTerminators = map[rune]bool{'.': true, '!': true, '?': true, '。': true}

// SplitSentences splits text into sentences, keeping the terminating
// punctuation attached to the sentence it closes. A trailing fragment with
// no terminator is returned as a final, unterminated sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var sb strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		sb.WriteRune(r)
		if sentenceTerminators[r] {
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				sb.WriteRune(runes[j])
				j++
			}
			i = j - 1
			if s := strings.TrimSpace(sb.String()); s != "" {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	if rem := strings.TrimSpace(sb.String()); rem != "" {
		sentences = append(sentences, rem)
	}
	return sentences
}

// EndsOnSentence reports whether text ends with a sentence terminator
// (ignoring trailing whitespace).
func EndsOnSentence(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	r := []rune(trimmed)
	return sentenceTerminators[r[len(r)-1]]
}

var wordBoundary = regexp.MustCompile(`\s`)

// LastWordBoundary returns the byte index of the last whitespace character
// in text[:limit], or -1 if none exists.
func LastWordBoundary(text string, limit int) int {
	if limit > len(text) {
		limit = len(text)
	}
	idx := wordBoundary.FindAllStringIndex(text[:limit], -1)
	if len(idx) == 0 {
		return -1
	}
	return idx[len(idx)-1][0]
}

// BuildLocation fills in a chunk's ChunkLocation from its character span
// and the document's section/page structure.
func BuildLocation(parsed model.ParsedContent, start, end int) model.ChunkLocation {
	return model.ChunkLocation{
		StartChar:   start,
		EndChar:     end,
		HeadingPath: helper.HeadingPathAt(parsed.Sections, start),
		PageNumber:  helper.PageNumberAt(parsed.PageRanges, start),
	}
}

// FinishChunk stamps the derived fields every strategy computes the same
// way: trimmed content, token estimate, context-dependency score, and
// location.
func FinishChunk(c *model.Chunk, parsed model.ParsedContent, start, end int) *model.Chunk {
	c.Content = strings.TrimSpace(c.Content)
	c.Location = BuildLocation(parsed, start, end)
	c.EstimatedTokens = tokenest.Estimate(c.Content)
	c.ContextDependency = contextdep.Analyze(c.Content)
	return c
}

// EnforceMaxSize cascades sentence-then-word splitting over content until
// every piece is at most ceiling runes, guaranteeing the hard ceiling
// every chunk must respect. It never returns an empty slice for
// non-empty input.
func EnforceMaxSize(content string, ceiling int) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len([]rune(content)) <= ceiling {
		return []string{content}
	}

	sentences := SplitSentences(content)
	if len(sentences) <= 1 {
		return splitByWords(content, ceiling)
	}

	var pieces []string
	var buf strings.Builder
	for _, s := range sentences {
		if buf.Len() > 0 && len([]rune(buf.String()))+1+len([]rune(s)) > ceiling {
			pieces = append(pieces, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		if len([]rune(s)) > ceiling {
			if buf.Len() > 0 {
				pieces = append(pieces, strings.TrimSpace(buf.String()))
				buf.Reset()
			}
			pieces = append(pieces, splitByWords(s, ceiling)...)
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(s)
	}
	if buf.Len() > 0 {
		pieces = append(pieces, strings.TrimSpace(buf.String()))
	}
	return pieces
}

func splitByWords(text string, ceiling int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var pieces []string
	var buf strings.Builder
	for _, w := range words {
		if buf.Len() > 0 && len([]rune(buf.String()))+1+len([]rune(w)) > ceiling {
			pieces = append(pieces, buf.String())
			buf.Reset()
		}
		if len([]rune(w)) > ceiling {
			if buf.Len() > 0 {
				pieces = append(pieces, buf.String())
				buf.Reset()
			}
			pieces = append(pieces, splitByRunes(w, ceiling)...)
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(w)
	}
	if buf.Len() > 0 {
		pieces = append(pieces, buf.String())
	}
	return pieces
}

func splitByRunes(word string, ceiling int) []string {
	runes := []rune(word)
	var pieces []string
	for i := 0; i < len(runes); i += ceiling {
		end := i + ceiling
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[i:end]))
	}
	return pieces
}

// overlapManager is shared by the sentence-aware strategies (Smart,
// Semantic, Intelligent) for adaptive overlap between consecutive chunks.
var overlapManager = overlap.NewManager()

// ApplyOverlap prepends adaptive overlap text carried over from prev's tail
// onto next's content, when both are non-empty and opts.OverlapSize > 0.
func ApplyOverlap(prev, next string, opts model.ChunkingOptions) string {
	if prev == "" || next == "" || opts.OverlapSize <= 0 {
		return next
	}
	size := overlapManager.OptimalOverlapSize(prev, next, opts)
	overlapText := overlapManager.BuildOverlapText(prev, size)
	if overlapText == "" {
		return next
	}
	return strings.TrimSpace(overlapText) + "\n\n" + next
}
