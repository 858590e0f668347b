package overlap

import (
	"testing"

	"chunkstream/internal/model"
)

func TestOptimalOverlapSizeRespectsMax(t *testing.T) {
	m := NewManager()
	opts := model.ChunkingOptions{MaxChunkSize: 100, OverlapSize: 64}
	size := m.OptimalOverlapSize("some previous chunk text", "some next chunk text", opts)
	maxOverlap := opts.MaxChunkSize / 4
	if size > maxOverlap {
		t.Fatalf("overlap size %d exceeds max %d", size, maxOverlap)
	}
}

func TestBuildOverlapTextWholeSentences(t *testing.T) {
	m := NewManager()
	prev := "First sentence here. Second sentence follows. Third and final sentence."
	got := m.BuildOverlapText(prev, 40)
	if got == "" {
		t.Fatal("expected non-empty overlap text")
	}
	if got[0] == ' ' {
		t.Fatalf("overlap text should be trimmed: %q", got)
	}
}

func TestBuildOverlapTextZeroTarget(t *testing.T) {
	m := NewManager()
	if got := m.BuildOverlapText("Some text.", 0); got != "" {
		t.Fatalf("expected empty overlap for zero target, got %q", got)
	}
}

func TestValidateIdenticalOverlap(t *testing.T) {
	m := NewManager()
	prev := "The end of the chunk reads exactly like this."
	next := "The end of the chunk reads exactly like this. And then continues."
	overlapText := "The end of the chunk reads exactly like this."
	score := m.Validate(overlapText, prev, next)
	if score < 0.8 {
		t.Fatalf("expected high validate score for exact overlap, got %v", score)
	}
}
