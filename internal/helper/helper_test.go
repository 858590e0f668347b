package helper

import (
	"testing"

	"chunkstream/internal/model"
)

func TestHeadingPathAt(t *testing.T) {
	sections := []model.Section{
		{
			Heading:  "Chapter 1",
			CharSpan: model.Span{Start: 0, End: 100},
			Subsections: []model.Section{
				{Heading: "Section 1.1", CharSpan: model.Span{Start: 10, End: 50}},
			},
		},
	}
	path := HeadingPathAt(sections, 20)
	if len(path) != 2 || path[0] != "Chapter 1" || path[1] != "Section 1.1" {
		t.Fatalf("unexpected heading path: %v", path)
	}
}

func TestPageNumberAt(t *testing.T) {
	ranges := map[int]model.Span{1: {Start: 0, End: 50}, 2: {Start: 50, End: 100}}
	page := PageNumberAt(ranges, 75)
	if page == nil || *page != 2 {
		t.Fatalf("expected page 2, got %v", page)
	}
}

func TestClassifyStructuralRole(t *testing.T) {
	cases := map[string]StructuralRole{
		"# A Header\n":                   RoleHeader,
		"| a | b |\n|---|---|\n| 1 | 2 |": RoleTable,
		"- item one\n- item two\n":        RoleList,
		"```go\nfunc main() {}\n```":      RoleCodeBlock,
		"Just a regular paragraph.":       RoleContent,
	}
	for content, want := range cases {
		if got := ClassifyStructuralRole(content); got != want {
			t.Errorf("ClassifyStructuralRole(%q) = %v, want %v", content, got, want)
		}
	}
}

func TestDetectKeywordCategories(t *testing.T) {
	cats := DetectKeywordCategories("The REST API calls the database via SQL query.")
	if len(cats) == 0 {
		t.Fatal("expected at least one keyword category")
	}
}

func TestDetectDomain(t *testing.T) {
	if got := DetectDomain("Our research methodology follows a peer-reviewed abstract and literature review."); got != model.DomainAcademic {
		t.Errorf("DetectDomain = %v, want Academic", got)
	}
	if got := DetectDomain("The cat sat on the mat."); got != model.DomainGeneral {
		t.Errorf("DetectDomain = %v, want General", got)
	}
}
