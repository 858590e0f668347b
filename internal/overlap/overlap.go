// Package overlap computes adaptive, sentence-aligned overlap text carried
// from one chunk into the next, sized by semantic continuity rather than a
// fixed constant.
package overlap

import (
	"regexp"
	"strings"

	"chunkstream/internal/model"

	"github.com/agnivade/levenshtein"
)

var (
	sentenceSplit = regexp.MustCompile(`(?:[.!?。]+\s*)`)
	wordPattern   = regexp.MustCompile(`\w+`)
)

// importantKeywords are the domain-neutral signal words whose presence in
// the previous chunk earns the "important content" bonus.
var importantKeywords = []string{
	"important", "critical", "required", "must", "warning", "note",
	"caution", "key", "essential", "mandatory",
}

// Manager computes and builds adaptive overlaps between consecutive chunks.
type Manager struct{}

// NewManager constructs an overlap Manager. It holds no state; it exists as
// a type so call sites read the same way the rest of the strategy family
// does (one small object per concern).
func NewManager() *Manager {
	return &Manager{}
}

// OptimalOverlapSize computes the target overlap length in characters for
// the boundary between prev and next.
func (m *Manager) OptimalOverlapSize(prev, next string, opts model.ChunkingOptions) int {
	maxOverlap := 3 * opts.OverlapSize
	if quarter := opts.MaxChunkSize / 4; quarter < maxOverlap {
		maxOverlap = quarter
	}
	if maxOverlap <= 0 {
		return 0
	}

	sentenceBoundaryOverlap := float64(opts.OverlapSize)

	jaccard := keywordJaccard(prev, next)
	semanticContinuityBonus := sentenceBoundaryOverlap * 0.5 * jaccard

	importantContentBonus := 0.0
	if containsImportantKeyword(prev) {
		importantContentBonus = sentenceBoundaryOverlap * 0.3
	}

	size := sentenceBoundaryOverlap + semanticContinuityBonus + importantContentBonus
	if int(size) > maxOverlap {
		return maxOverlap
	}
	return int(size)
}

// BuildOverlapText takes whole trailing sentences from prev until the
// target size is reached (never splitting a sentence), returning "" if the
// target is 0 or prev has no sentences.
func (m *Manager) BuildOverlapText(prev string, targetSize int) string {
	if targetSize <= 0 {
		return ""
	}
	sentences := splitSentences(prev)
	if len(sentences) == 0 {
		return ""
	}

	var picked []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		s := sentences[i]
		if total > 0 && total+len(s)+1 > targetSize {
			break
		}
		picked = append([]string{s}, picked...)
		total += len(s) + 1
		if total >= targetSize {
			break
		}
	}
	return strings.TrimSpace(strings.Join(picked, " "))
}

// Validate scores a built overlap against the chunks it bridges, combining
// Levenshtein-based start/end similarity with sentence completeness.
// It is observational: no strategy calls it, so overlaps are never gated
// on its score.
func (m *Manager) Validate(overlapText, prev, next string) float64 {
	if overlapText == "" {
		return 0
	}

	endMatch := similarity(suffix(prev, len(overlapText)), overlapText)
	startMatch := similarity(prefix(next, len(overlapText)), overlapText)
	completeness := sentenceCompleteness(overlapText)

	return 0.4*endMatch + 0.4*startMatch + 0.2*completeness
}

func sentenceCompleteness(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") ||
		strings.HasSuffix(text, "?") || strings.HasSuffix(text, "。") {
		return 1
	}
	return 0.3
}

// similarity returns a normalised Levenshtein similarity in [0,1]: 1 means
// identical, 0 means completely dissimilar.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func suffix(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return ""
	}
	return s[len(s)-n:]
}

func prefix(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return ""
	}
	return s[:n]
}

func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceSplit.FindAllStringIndex(text, -1) {
		if p := strings.TrimSpace(text[last:loc[1]]); p != "" {
			out = append(out, p)
		}
		last = loc[1]
	}
	if p := strings.TrimSpace(text[last:]); p != "" {
		out = append(out, p)
	}
	return out
}

func keywordJaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	words := wordPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

func containsImportantKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range importantKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
