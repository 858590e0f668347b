package chunkstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageErrorIncludesCause(t *testing.T) {
	cause := errors.New("boom")
	err := newStageError(ErrStage, StageChunk, "doc.txt", cause)
	assert.Contains(t, err.Error(), "chunk")
	assert.Contains(t, err.Error(), "doc.txt")
	assert.Contains(t, err.Error(), "boom")
	assert.Same(t, cause, err.Unwrap())
}

func TestStageErrorIsComparesCodeAndStage(t *testing.T) {
	a := newStageError(ErrCancelled, StageExtract, "a.txt", errors.New("x"))
	b := newStageError(ErrCancelled, StageExtract, "b.txt", errors.New("y"))
	c := newStageError(ErrStage, StageExtract, "a.txt", errors.New("x"))

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
}

func TestStageErrorPredicateHelpers(t *testing.T) {
	cases := []struct {
		code  ErrorCode
		check func(*StageError) bool
	}{
		{ErrCancelled, (*StageError).IsCancelled},
		{ErrServiceUnavailable, (*StageError).IsServiceUnavailable},
		{ErrResourceExceeded, (*StageError).IsResourceExceeded},
		{ErrInvalidInput, (*StageError).IsInvalidInput},
		{ErrStage, (*StageError).IsStage},
	}
	for _, tc := range cases {
		err := newStageError(tc.code, StageParse, "x", nil)
		assert.True(t, tc.check(err))
	}
}

func TestStageKindStringUnknown(t *testing.T) {
	assert.Equal(t, "unknown stage", StageKind(99).String())
}

func TestErrorCodeStringUnknown(t *testing.T) {
	assert.Equal(t, "unknown error", ErrorCode(99).String())
}

func TestErrorCollectionAccumulatesAndFilters(t *testing.T) {
	var ec ErrorCollection
	assert.False(t, ec.HasErrors())
	assert.Nil(t, ec.First())

	ec.Add(newStageError(ErrStage, StageExtract, "a.txt", errors.New("a")))
	ec.Add(newStageError(ErrStage, StageChunk, "b.txt", errors.New("b")))

	assert.True(t, ec.HasErrors())
	assert.Equal(t, 2, ec.Count())
	assert.Equal(t, "a.txt", ec.First().Source)
	assert.Len(t, ec.ByStage(StageChunk), 1)
	assert.Contains(t, ec.Error(), "2 errors")
}

func TestErrorCollectionSingleErrorMessage(t *testing.T) {
	var ec ErrorCollection
	ec.Add(newStageError(ErrStage, StageExtract, "a.txt", errors.New("a")))
	assert.Equal(t, ec.Errors[0].Error(), ec.Error())
}
