package contextdep

import "testing"

func TestAnalyzeLowDependency(t *testing.T) {
	score := Analyze("The Eiffel Tower is located in Paris. It was completed in 1889.")
	if score <= 0 || score >= 1 {
		t.Fatalf("score out of range: %v", score)
	}
}

func TestAnalyzeHighDependency(t *testing.T) {
	low := Analyze("Bears hibernate in winter. Salmon swim upstream to spawn.")
	high := Analyze("As mentioned above, this affects them directly. Therefore, it also impacts those previously discussed.")
	if high <= low {
		t.Fatalf("expected high-dependency text to score above low-dependency text: high=%v low=%v", high, low)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if got := Analyze(""); got != 0 {
		t.Errorf("Analyze(\"\") = %v, want 0", got)
	}
}
