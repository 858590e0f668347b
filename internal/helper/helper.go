// Package helper collects the small cross-cutting utilities every chunking
// strategy needs: heading-path resolution, page-number lookup, dependency
// scoring, and the per-chunk structural/domain enrichment used by the
// Intelligent strategy.
package helper

import (
	"regexp"
	"strings"

	"chunkstream/internal/contextdep"
	"chunkstream/internal/model"
)

// HeadingPathAt walks sections (and their subsections) to find the deepest
// section containing charOffset, returning the chain of headings from the
// document root down to it.
func HeadingPathAt(sections []model.Section, charOffset int) []string {
	var path []string
	walkSections(sections, charOffset, &path)
	return path
}

func walkSections(sections []model.Section, offset int, path *[]string) bool {
	for _, s := range sections {
		if offset >= s.CharSpan.Start && offset < s.CharSpan.End {
			*path = append(*path, s.Heading)
			walkSections(s.Subsections, offset, path)
			return true
		}
	}
	return false
}

// PageNumberAt returns the page number whose span contains charOffset, or
// nil when the document carries no page mapping (non-paginated sources).
func PageNumberAt(pageRanges map[int]model.Span, charOffset int) *int {
	for page, span := range pageRanges {
		if charOffset >= span.Start && charOffset < span.End {
			p := page
			return &p
		}
	}
	return nil
}

// DependencyScore scores how much content relies on prior context (thin
// wrapper kept here so strategies depend on one helper package instead of
// reaching into internal/contextdep directly for this one call).
func DependencyScore(content string) float64 {
	return contextdep.Analyze(content)
}

// StructuralRole classifies a chunk's primary structural category.
type StructuralRole string

const (
	RoleHeader    StructuralRole = "header"
	RoleTable     StructuralRole = "table"
	RoleCodeBlock StructuralRole = "code_block"
	RoleList      StructuralRole = "list"
	RoleContent   StructuralRole = "content"
)

var (
	headerLine = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	codeFence  = regexp.MustCompile("```")
	tableRow   = regexp.MustCompile(`\|.*\|`)
	listItem   = regexp.MustCompile(`(?m)^\s*([-*+]|\d+[.)])\s+\S`)
)

// ClassifyStructuralRole inspects a chunk's raw content to decide its
// dominant structural role.
func ClassifyStructuralRole(content string) StructuralRole {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && headerLine.MatchString(strings.TrimSpace(lines[0])) {
		return RoleHeader
	}

	tableLines := 0
	codeLines := 0
	listLines := 0
	nonBlank := 0
	inFence := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonBlank++
		if codeFence.MatchString(line) {
			inFence = !inFence
			codeLines++
			continue
		}
		if inFence {
			codeLines++
			continue
		}
		if tableRow.MatchString(line) {
			tableLines++
		}
		if listItem.MatchString(line) {
			listLines++
		}
	}
	if nonBlank == 0 {
		return RoleContent
	}

	switch {
	case float64(tableLines)/float64(nonBlank) > 0.5:
		return RoleTable
	case float64(codeLines)/float64(nonBlank) > 0.5:
		return RoleCodeBlock
	case float64(listLines)/float64(nonBlank) > 0.5:
		return RoleList
	default:
		return RoleContent
	}
}

// keywordCategory is a technical keyword bucket detected by whole-word
// match, in the order they are checked.
type keywordCategory struct {
	name    string
	pattern *regexp.Regexp
}

func wholeWordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

var keywordCategories = []keywordCategory{
	{"API", wholeWordPattern([]string{"API", "REST", "GraphQL", "endpoint", "HTTP", "webhook", "gRPC"})},
	{"Database", wholeWordPattern([]string{"database", "SQL", "query", "schema", "index", "table", "transaction", "migration"})},
	{"Frontend", wholeWordPattern([]string{"component", "UI", "CSS", "React", "Vue", "DOM", "render", "browser"})},
	{"Backend", wholeWordPattern([]string{"server", "service", "backend", "middleware", "controller", "handler"})},
	{"DevOps", wholeWordPattern([]string{"deploy", "pipeline", "docker", "kubernetes", "container", "infrastructure"})},
	{"AI/ML", wholeWordPattern([]string{"model", "training", "inference", "embedding", "neural", "LLM", "token"})},
}

// DetectKeywordCategories returns the technical keyword categories whose
// terms appear (whole word, case-insensitive) in content, in the checked
// order.
func DetectKeywordCategories(content string) []string {
	var found []string
	for _, cat := range keywordCategories {
		if cat.pattern.MatchString(content) {
			found = append(found, cat.name)
		}
	}
	return found
}

// domainKeywords maps a document domain to the compiled whole-word pattern
// used to detect it.
var domainKeywords = map[model.Domain]*regexp.Regexp{
	model.DomainTechnical: wholeWordPattern([]string{"API", "function", "algorithm", "database", "server", "code", "software", "deploy"}),
	model.DomainBusiness:  wholeWordPattern([]string{"revenue", "customer", "market", "strategy", "stakeholder", "ROI", "quarter", "invoice"}),
	model.DomainAcademic:  wholeWordPattern([]string{"abstract", "hypothesis", "methodology", "citation", "research", "study", "literature"}),
}

var domainOrder = []model.Domain{model.DomainTechnical, model.DomainBusiness, model.DomainAcademic}

// DetectDomain picks the domain whose keyword set has the most whole-word
// hits in content, defaulting to General when none score.
func DetectDomain(content string) model.Domain {
	best := model.DomainGeneral
	bestCount := 0
	for _, domain := range domainOrder {
		count := len(domainKeywords[domain].FindAllStringIndex(content, -1))
		if count > bestCount {
			bestCount = count
			best = domain
		}
	}
	return best
}
