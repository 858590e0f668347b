// Package parse turns RawContent into ParsedContent: it detects heading
// structure and builds the Section tree every downstream strategy walks for
// heading paths and table-of-contents-aware boundaries.
package parse

import (
	"regexp"
	"strings"

	"chunkstream/internal/model"
)

var (
	atxHeading     = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	setextH1       = regexp.MustCompile(`^=+\s*$`)
	setextH2       = regexp.MustCompile(`^-+\s*$`)
	htmlHeadingTag = regexp.MustCompile(`(?i)^<h([1-6])[^>]*>(.*?)</h[1-6]>\s*$`)
)

type headingLine struct {
	level int
	text  string
	// lineOffset is the character offset of the first character of the
	// heading's own line (not its content span, which runs to the next
	// heading of equal-or-shallower level).
	lineOffset int
}

// Parse builds a Section tree from raw.Text's heading structure and returns
// the ParsedContent the refine stage consumes. Text passes through
// unmodified; only structure is derived here.
func Parse(raw model.RawContent) model.ParsedContent {
	headings := findHeadings(raw.Text)
	sections := buildTree(headings, len(raw.Text))

	return model.ParsedContent{
		Text:       raw.Text,
		Sections:   sections,
		Hints:      raw.Hints,
		PageRanges: raw.Hints.PageRanges,
	}
}

func findHeadings(text string) []headingLine {
	var headings []headingLine
	lines := strings.Split(text, "\n")

	offset := 0
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")

		if m := atxHeading.FindStringSubmatch(trimmed); m != nil {
			headings = append(headings, headingLine{
				level:      len(m[1]),
				text:       strings.TrimSpace(m[2]),
				lineOffset: offset,
			})
		} else if m := htmlHeadingTag.FindStringSubmatch(trimmed); m != nil {
			level := 1
			switch m[1] {
			case "1":
				level = 1
			case "2":
				level = 2
			case "3":
				level = 3
			case "4":
				level = 4
			case "5":
				level = 5
			case "6":
				level = 6
			}
			headings = append(headings, headingLine{
				level:      level,
				text:       strings.TrimSpace(stripTags(m[2])),
				lineOffset: offset,
			})
		} else if i+1 < len(lines) && strings.TrimSpace(trimmed) != "" {
			next := strings.TrimRight(lines[i+1], "\r")
			if setextH1.MatchString(next) {
				headings = append(headings, headingLine{level: 1, text: strings.TrimSpace(trimmed), lineOffset: offset})
			} else if setextH2.MatchString(next) {
				headings = append(headings, headingLine{level: 2, text: strings.TrimSpace(trimmed), lineOffset: offset})
			}
		}

		offset += len(line) + 1 // account for the stripped "\n"
	}
	return headings
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// buildTree converts a flat, offset-ordered heading list into a nested
// Section tree using a level stack: each heading closes every open section
// at an equal-or-deeper level before becoming the new innermost section.
func buildTree(headings []headingLine, textLen int) []model.Section {
	if len(headings) == 0 {
		return nil
	}

	type frame struct {
		section *model.Section
		parent  *[]model.Section
	}

	var roots []model.Section
	stack := []frame{{parent: &roots}}

	for i, h := range headings {
		end := textLen
		for j := i + 1; j < len(headings); j++ {
			if headings[j].level <= h.level {
				end = headings[j].lineOffset
				break
			}
		}

		for len(stack) > 1 && stack[len(stack)-1].section.Level >= h.level {
			stack = stack[:len(stack)-1]
		}

		parent := stack[len(stack)-1].parent
		*parent = append(*parent, model.Section{
			Heading:  h.text,
			Level:    h.level,
			CharSpan: model.Span{Start: h.lineOffset, End: end},
		})
		newSection := &(*parent)[len(*parent)-1]
		stack = append(stack, frame{section: newSection, parent: &newSection.Subsections})
	}

	// Each span runs to the next heading of equal-or-shallower level, so a
	// parent's span covers its subsections; clipToParent then keeps every
	// span inside its parent's and before its next sibling's start.
	clipToParent(roots, textLen)
	return roots
}

// clipToParent ensures no span extends past its immediate next sibling's
// start, and the last sibling's span not past its parent's end.
func clipToParent(sections []model.Section, parentEnd int) {
	for i := range sections {
		if i+1 < len(sections) && sections[i].CharSpan.End > sections[i+1].CharSpan.Start {
			sections[i].CharSpan.End = sections[i+1].CharSpan.Start
		} else if i+1 == len(sections) && sections[i].CharSpan.End > parentEnd {
			sections[i].CharSpan.End = parentEnd
		}
		clipToParent(sections[i].Subsections, sections[i].CharSpan.End)
	}
}
