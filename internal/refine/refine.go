// Package refine implements the cleanup stage between parsing and chunking:
// a small set of named policies that strip boilerplate, tidy
// whitespace, and optionally re-normalise structure, composed via presets.
package refine

import (
	"fmt"
	"regexp"
	"strings"

	"chunkstream/internal/model"
	"chunkstream/internal/parse"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// Policy names recognised by Apply, in the order a caller is free to choose.
const (
	PolicyRemoveHeadersFooters = "remove_headers_footers"
	PolicyRemovePageNumbers    = "remove_page_numbers"
	PolicyCleanWhitespace      = "clean_whitespace"
	PolicyRestructureHeadings  = "restructure_headings"
	PolicyConvertToMarkdown    = "convert_to_markdown"
)

// Presets bundle policies into named, ready-to-use configurations.
var Presets = map[string][]string{
	"Light":              {PolicyCleanWhitespace},
	"Standard":           {PolicyRemoveHeadersFooters, PolicyRemovePageNumbers, PolicyCleanWhitespace},
	"ForKorean":          {PolicyCleanWhitespace, PolicyRestructureHeadings},
	"ForWebContent":      {PolicyConvertToMarkdown, PolicyCleanWhitespace, PolicyRestructureHeadings},
	"ForPdfContent":      {PolicyRemoveHeadersFooters, PolicyRemovePageNumbers, PolicyCleanWhitespace, PolicyRestructureHeadings},
	"ForRAG":             {PolicyRemoveHeadersFooters, PolicyRemovePageNumbers, PolicyConvertToMarkdown, PolicyCleanWhitespace, PolicyRestructureHeadings},
	"ForKoreanWebContent": {PolicyConvertToMarkdown, PolicyCleanWhitespace, PolicyRestructureHeadings},
}

var sanitizer = bluemonday.StrictPolicy()
var converter = md.NewConverter("", true, nil)

// Refiner applies a sequence of named cleanup policies and re-derives
// section structure once, at the end, since text-mutating policies can
// shift every character offset parse originally computed.
type Refiner struct {
	policies []string
}

// New builds a Refiner that applies policies in the given order. Unknown
// names are rejected up front so a typo in a custom policy list fails fast
// rather than silently no-opping.
func New(policies []string) (*Refiner, error) {
	for _, name := range policies {
		if _, ok := policyFuncs[name]; !ok {
			return nil, fmt.Errorf("refine: unknown policy %q", name)
		}
	}
	return &Refiner{policies: policies}, nil
}

// FromPreset builds a Refiner from a named preset.
func FromPreset(name string) (*Refiner, error) {
	policies, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("refine: unknown preset %q", name)
	}
	return New(policies)
}

// Apply runs every configured policy over parsed.Text in order and
// re-parses the result so Sections stay consistent with the new text.
func (r *Refiner) Apply(parsed model.ParsedContent) model.ParsedContent {
	text := parsed.Text
	for _, name := range r.policies {
		text = policyFuncs[name](text, parsed)
	}
	if text == parsed.Text {
		return parsed
	}
	reparsed := parse.Parse(model.RawContent{Text: text, Hints: parsed.Hints})
	reparsed.PageRanges = parsed.PageRanges
	return reparsed
}

type policyFunc func(text string, parsed model.ParsedContent) string

var policyFuncs = map[string]policyFunc{
	PolicyRemoveHeadersFooters: removeHeadersFooters,
	PolicyRemovePageNumbers:    removePageNumbers,
	PolicyCleanWhitespace:      cleanWhitespace,
	PolicyRestructureHeadings:  restructureHeadings,
	PolicyConvertToMarkdown:    convertToMarkdown,
}

var pageNumberLine = regexp.MustCompile(`(?i)^\s*(page\s+)?\d{1,4}(\s*/\s*\d{1,4})?\s*$`)

func removePageNumbers(text string, _ model.ParsedContent) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if pageNumberLine.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// removeHeadersFooters drops lines that repeat verbatim across a document's
// paginated boundaries (running headers/footers), using each page's first
// and last non-blank line as the candidate set.
func removeHeadersFooters(text string, parsed model.ParsedContent) string {
	if len(parsed.Hints.PageRanges) < 2 {
		return text
	}

	lines := strings.Split(text, "\n")
	candidateCounts := make(map[string]int)
	for _, span := range parsed.Hints.PageRanges {
		first, last := pageBoundaryLines(lines, span)
		if first != "" {
			candidateCounts[first]++
		}
		if last != "" {
			candidateCounts[last]++
		}
	}

	threshold := (len(parsed.Hints.PageRanges) + 1) / 2
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && candidateCounts[trimmed] >= threshold && candidateCounts[trimmed] > 1 {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func pageBoundaryLines(lines []string, span model.Span) (first, last string) {
	offset := 0
	for _, line := range lines {
		lineEnd := offset + len(line)
		if lineEnd >= span.Start && offset < span.End {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				if first == "" {
					first = trimmed
				}
				last = trimmed
			}
		}
		offset = lineEnd + 1
		if offset > span.End {
			break
		}
	}
	return first, last
}

var (
	multiBlankLines = regexp.MustCompile(`\n{3,}`)
	trailingSpace   = regexp.MustCompile(`[ \t]+\n`)
	multiSpace      = regexp.MustCompile(`[ \t]{2,}`)
)

// cleanWhitespace strips any stray markup via bluemonday, normalises to NFC,
// and collapses redundant blank lines and runs of spaces.
func cleanWhitespace(text string, _ model.ParsedContent) string {
	text = sanitizer.Sanitize(text)
	text = norm.NFC.String(text)
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text) + "\n"
}

var atxHeadingLine = regexp.MustCompile(`(?m)^(#{1,6})(\s+\S.*)$`)

// restructureHeadings shifts heading levels so the shallowest heading in the
// document becomes level 1, preserving relative nesting (a document whose
// top heading is "###" reads as a fragment; this promotes it to a proper
// root).
func restructureHeadings(text string, _ model.ParsedContent) string {
	matches := atxHeadingLine.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text
	}
	minLevel := 6
	for _, m := range matches {
		if l := len(m[1]); l < minLevel {
			minLevel = l
		}
	}
	if minLevel <= 1 {
		return text
	}
	shift := minLevel - 1
	return atxHeadingLine.ReplaceAllStringFunc(text, func(line string) string {
		m := atxHeadingLine.FindStringSubmatch(line)
		newLevel := len(m[1]) - shift
		if newLevel < 1 {
			newLevel = 1
		}
		return strings.Repeat("#", newLevel) + m[2]
	})
}

var htmlTag = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

// convertToMarkdown runs any residual HTML fragments (e.g. from a reader
// that passed through raw markup) through the Markdown converter; text
// already in Markdown passes through unchanged.
func convertToMarkdown(text string, _ model.ParsedContent) string {
	if !htmlTag.MatchString(text) {
		return text
	}
	converted, err := converter.ConvertString(text)
	if err != nil {
		return text
	}
	return converted
}
