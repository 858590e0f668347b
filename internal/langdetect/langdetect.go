// Package langdetect guesses the language of a text sample from unicode
// script frequency, the way a full statistical language model would be
// overkill for a ≤2000-character sample.
package langdetect

import (
	"unicode"

	"github.com/saintfish/chardet"
	"golang.org/x/text/language"
)

// block is one of the unicode ranges we score.
type block struct {
	tag   string
	table *unicode.RangeTable
}

var blocks = []block{
	{"ko", unicode.Hangul},
	{"zh", unicode.Han},
	{"ja", unicode.Hiragana},
	{"ja", unicode.Katakana},
	{"ru", unicode.Cyrillic},
	{"ar", unicode.Arabic},
	{"hi", unicode.Devanagari},
}

// Detect returns a BCP-47-normalised language tag and a confidence in
// [0,1], using script-block frequency over the sample. Falls back to "en"
// when no script dominates, and to chardet's byte-level guess when the
// sample contains no letters to score.
func Detect(sample string) (string, float64) {
	runes := []rune(sample)
	if len(runes) == 0 {
		return "en", 0
	}

	counts := make(map[string]int, len(blocks))
	letters := 0
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, b := range blocks {
			if unicode.Is(b.table, r) {
				counts[b.tag]++
				break
			}
		}
	}

	if letters == 0 {
		return fallbackFromBytes(sample)
	}

	bestTag := ""
	bestCount := 0
	for _, b := range blocks {
		if c := counts[b.tag]; c > bestCount {
			bestCount = c
			bestTag = b.tag
		}
	}

	if bestTag == "" || float64(bestCount)/float64(letters) < 0.3 {
		return "en", float64(letters-bestCount) / float64(letters)
	}

	confidence := float64(bestCount) / float64(letters)
	return normalize(bestTag), confidence
}

func fallbackFromBytes(sample string) (string, float64) {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest([]byte(sample))
	if err != nil || result == nil || result.Language == "" {
		return "en", 0
	}
	return normalize(result.Language), float64(result.Confidence) / 100.0
}

func normalize(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return "en"
	}
	base, _ := t.Base()
	return base.String()
}
