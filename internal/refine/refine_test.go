package refine

import (
	"testing"

	"chunkstream/internal/model"
	"chunkstream/internal/parse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovePageNumbers(t *testing.T) {
	r, err := New([]string{PolicyRemovePageNumbers})
	require.NoError(t, err)
	parsed := parse.Parse(model.RawContent{Text: "Body text.\n12\nMore body.\nPage 3\n"})
	out := r.Apply(parsed)
	assert.NotContains(t, out.Text, "\n12\n")
	assert.NotContains(t, out.Text, "Page 3")
	assert.Contains(t, out.Text, "Body text.")
}

func TestCleanWhitespaceCollapsesBlankLines(t *testing.T) {
	r, err := New([]string{PolicyCleanWhitespace})
	require.NoError(t, err)
	parsed := parse.Parse(model.RawContent{Text: "Para one.   \n\n\n\n\nPara two.  extra   spaces.\n"})
	out := r.Apply(parsed)
	assert.NotContains(t, out.Text, "\n\n\n")
	assert.NotContains(t, out.Text, "  extra")
}

func TestRestructureHeadingsPromotesTopLevel(t *testing.T) {
	r, err := New([]string{PolicyRestructureHeadings})
	require.NoError(t, err)
	parsed := parse.Parse(model.RawContent{Text: "### Title\nbody\n#### Sub\nmore\n"})
	out := r.Apply(parsed)
	require.Len(t, out.Sections, 1)
	assert.Equal(t, 1, out.Sections[0].Level)
	assert.Equal(t, "Title", out.Sections[0].Heading)
}

func TestRemoveHeadersFootersAcrossPages(t *testing.T) {
	r, err := New([]string{PolicyRemoveHeadersFooters})
	require.NoError(t, err)

	page1 := "Running Header\nPage one content.\n"
	page2 := "Running Header\nPage two content.\n"
	text := page1 + page2
	hints := model.SourceHints{
		PageRanges: map[int]model.Span{
			1: {Start: 0, End: len(page1)},
			2: {Start: len(page1), End: len(text)},
		},
	}
	parsed := parse.Parse(model.RawContent{Text: text, Hints: hints})
	out := r.Apply(parsed)
	assert.NotContains(t, out.Text, "Running Header")
	assert.Contains(t, out.Text, "Page one content.")
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New([]string{"not_a_real_policy"})
	assert.Error(t, err)
}

func TestFromPresetStandard(t *testing.T) {
	r, err := FromPreset("Standard")
	require.NoError(t, err)
	parsed := parse.Parse(model.RawContent{Text: "# Title\nBody.\n12\n"})
	out := r.Apply(parsed)
	assert.NotContains(t, out.Text, "\n12\n")
}

func TestFromPresetUnknownName(t *testing.T) {
	_, err := FromPreset("DoesNotExist")
	assert.Error(t, err)
}

func TestConvertToMarkdownPassesThroughPlainText(t *testing.T) {
	r, err := New([]string{PolicyConvertToMarkdown})
	require.NoError(t, err)
	parsed := parse.Parse(model.RawContent{Text: "# Already Markdown\nNo html here.\n"})
	out := r.Apply(parsed)
	assert.Equal(t, parsed.Text, out.Text)
}

func TestConvertToMarkdownStripsResidualTags(t *testing.T) {
	r, err := New([]string{PolicyConvertToMarkdown})
	require.NoError(t, err)
	parsed := parse.Parse(model.RawContent{Text: "<p>Hello <b>World</b></p>"})
	out := r.Apply(parsed)
	assert.Contains(t, out.Text, "World")
	assert.NotContains(t, out.Text, "<p>")
}
