package chunking

import (
	"testing"

	"chunkstream/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentencesKeepsTerminators(t *testing.T) {
	sentences := SplitSentences("First sentence. Second sentence! Third?")
	assert.Equal(t, []string{"First sentence.", "Second sentence!", "Third?"}, sentences)
}

func TestSplitSentencesTrailingFragment(t *testing.T) {
	sentences := SplitSentences("Complete one. trailing fragment without end")
	assert.Equal(t, []string{"Complete one.", "trailing fragment without end"}, sentences)
}

func TestEndsOnSentenceTrue(t *testing.T) {
	assert.True(t, EndsOnSentence("Done here.   "))
}

func TestEndsOnSentenceFalse(t *testing.T) {
	assert.False(t, EndsOnSentence("not finished"))
	assert.False(t, EndsOnSentence(""))
}

func TestLastWordBoundaryFindsLastSpace(t *testing.T) {
	idx := LastWordBoundary("hello world wide", 11)
	assert.Equal(t, 5, idx)
}

func TestLastWordBoundaryNoneFound(t *testing.T) {
	assert.Equal(t, -1, LastWordBoundary("nowhitespace", 5))
}

func TestEnforceMaxSizeUnderCeilingReturnsSingle(t *testing.T) {
	pieces := EnforceMaxSize("short text", 100)
	assert.Equal(t, []string{"short text"}, pieces)
}

func TestEnforceMaxSizeEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, EnforceMaxSize("   ", 10))
}

func TestEnforceMaxSizeSplitsOnSentenceBoundaries(t *testing.T) {
	text := "Sentence number one here. Sentence number two here. Sentence number three here."
	pieces := EnforceMaxSize(text, 40)
	for _, p := range pieces {
		assert.LessOrEqual(t, len([]rune(p)), 40)
	}
	assert.Greater(t, len(pieces), 1)
}

func TestEnforceMaxSizeFallsBackToWordSplit(t *testing.T) {
	text := "onereallylongwordlesssentencewithnoterminatoratallcontinuingonandon and more words after that keep going"
	pieces := EnforceMaxSize(text, 20)
	for _, p := range pieces {
		assert.LessOrEqual(t, len([]rune(p)), 20)
	}
}

func TestApplyOverlapNoOverlapConfigured(t *testing.T) {
	out := ApplyOverlap("prev tail text.", "next content.", model.ChunkingOptions{OverlapSize: 0})
	assert.Equal(t, "next content.", out)
}

func TestApplyOverlapEmptyPrevOrNext(t *testing.T) {
	opts := model.ChunkingOptions{OverlapSize: 10}
	assert.Equal(t, "next", ApplyOverlap("", "next", opts))
	assert.Equal(t, "", ApplyOverlap("prev", "", opts))
}
