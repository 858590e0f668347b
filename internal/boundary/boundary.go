// Package boundary rates how "natural" a proposed cut point between two
// lines is, and can search nearby lines for a better one.
package boundary

import (
	"regexp"
	"strings"
)

// Kind classifies why a boundary scored the way it did.
type Kind string

const (
	Structural Kind = "Structural"
	Semantic   Kind = "Semantic"
	Paragraph  Kind = "Paragraph"
	Sentence   Kind = "Sentence"
	Arbitrary  Kind = "Arbitrary"
	Poor       Kind = "Poor"
)

// Evaluation is the result of scoring one candidate line index.
type Evaluation struct {
	Quality    float64
	Kind       Kind
	Confidence float64
	Reason     string
	Line       int // the (possibly relocated) line index this evaluation refers to
}

var (
	headerPattern    = regexp.MustCompile(`^#{1,6}\s+\S`)
	codeFencePattern = regexp.MustCompile("^\\s*```")
	listItemPattern  = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+\S`)
	tablePattern     = regexp.MustCompile(`\|.*\|`)
	sentenceEnd      = regexp.MustCompile(`[.!?。]\s*$`)
	wordPattern      = regexp.MustCompile(`\w+`)
)

// Evaluate scores a single proposed cut point: the boundary sits just
// before lines[index], i.e. between lines[index-1] and lines[index].
func Evaluate(lines []string, index int) Evaluation {
	if index <= 0 || index >= len(lines) {
		return Evaluation{Quality: 0.3, Kind: Arbitrary, Confidence: 0.5, Reason: "boundary at document edge", Line: index}
	}

	prev := lines[index-1]

	if isStructuralBoundary(lines, index) {
		return Evaluation{Quality: 0.95, Kind: Structural, Confidence: 0.9, Reason: "structural boundary (header, table, code fence, or list group)", Line: index}
	}

	if strings.TrimSpace(prev) == "" || strings.TrimSpace(lines[index]) == "" {
		// Blank-line boundary (a blank line on either side of the cut):
		// distinguish semantic topic shift from a
		// plain paragraph break by keyword overlap of the surrounding
		// non-blank lines.
		before := lastNonBlank(lines, index-1)
		after := firstNonBlank(lines, index)
		if before != "" && after != "" && keywordOverlap(before, after) < 0.3 {
			return Evaluation{Quality: 0.85, Kind: Semantic, Confidence: 0.75, Reason: "blank line with low keyword continuity", Line: index}
		}
		return Evaluation{Quality: 0.75, Kind: Paragraph, Confidence: 0.7, Reason: "paragraph break", Line: index}
	}

	if sentenceEnd.MatchString(strings.TrimRight(prev, " \t")) {
		return Evaluation{Quality: 0.65, Kind: Sentence, Confidence: 0.6, Reason: "previous line ends on a sentence terminator", Line: index}
	}

	return Evaluation{Quality: 0.3, Kind: Arbitrary, Confidence: 0.4, Reason: "no structural, semantic, or sentence signal", Line: index}
}

// FindBetter searches ±min(10, N/10) lines (never fewer than 5) around index
// for a higher-scoring boundary when Evaluate(lines, index).Quality < 0.7,
// returning the best evaluation found (which may be the original).
func FindBetter(lines []string, index int) Evaluation {
	best := Evaluate(lines, index)
	if best.Quality >= 0.7 {
		return best
	}

	window := len(lines) / 10
	if window > 10 {
		window = 10
	}
	if window < 5 {
		window = 5
	}

	lo := index - window
	if lo < 1 {
		lo = 1
	}
	hi := index + window
	if hi > len(lines)-1 {
		hi = len(lines) - 1
	}

	for i := lo; i <= hi; i++ {
		if i == index {
			continue
		}
		candidate := Evaluate(lines, i)
		if candidate.Quality > best.Quality {
			best = candidate
		}
	}
	return best
}

func isStructuralBoundary(lines []string, index int) bool {
	prev := lines[index-1]
	cur := lines[index]

	if headerPattern.MatchString(strings.TrimSpace(cur)) {
		return true
	}
	if codeFencePattern.MatchString(cur) || codeFencePattern.MatchString(prev) {
		return true
	}

	prevIsTable := tablePattern.MatchString(prev)
	curIsTable := tablePattern.MatchString(cur)
	if prevIsTable != curIsTable {
		return true // table begin/end transition
	}

	prevIsList := listItemPattern.MatchString(prev)
	curIsList := listItemPattern.MatchString(cur)
	if prevIsList && !curIsList && strings.TrimSpace(cur) != "" {
		return true // end of a list group
	}
	if !prevIsList && curIsList {
		return true // start of a list group
	}

	return false
}

func lastNonBlank(lines []string, from int) string {
	for i := from; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

func firstNonBlank(lines []string, from int) string {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

// keywordOverlap returns the Jaccard similarity of the lowercased word sets
// of a and b.
func keywordOverlap(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	words := wordPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
