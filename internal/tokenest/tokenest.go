// Package tokenest provides a cheap word-approximation token estimator,
// used wherever the pipeline needs a size signal without calling a real
// tokenizer.
package tokenest

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\S+`)

// Estimate approximates the token count of text using a word-count heuristic
// scaled for subword tokenization overhead (roughly 0.75 words per token for
// English-like text, so tokens ~= words / 0.75).
func Estimate(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return 0
	}
	tokens := float64(len(words)) / 0.75
	return int(tokens + 0.5)
}

// EstimateWords returns the raw whitespace-delimited word count, the unit
// several strategies (MinSentences/MaxSentences bookkeeping, paragraph
// length thresholds) reason about directly.
func EstimateWords(text string) int {
	return len(wordPattern.FindAllString(text, -1))
}
