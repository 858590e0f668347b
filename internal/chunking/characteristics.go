package chunking

import (
	"path/filepath"
	"regexp"
	"strings"

	"chunkstream/internal/helper"
	"chunkstream/internal/langdetect"
	"chunkstream/internal/model"
	"chunkstream/internal/tokenest"
)

const sampleLimit = 2000

var (
	codeFencePattern       = regexp.MustCompile("```")
	listItemPattern        = regexp.MustCompile(`(?m)^\s*([-*+]|\d+[.)])\s+\S`)
	numberedSectionPattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`)
	deepNumberedPattern    = regexp.MustCompile(`(?m)^\s*\d+(\.\d+)+\s+\S`)
	mathPattern            = regexp.MustCompile(`\$[^$]+\$|\\\[|\\\(|\\sum|\\int|\\frac`)
	requirementPattern     = regexp.MustCompile(`(?i)\b(requirement|REQ-\d+|shall|must)\b`)
	legalPattern           = regexp.MustCompile(`(?i)\b(whereas|hereinafter|pursuant|plaintiff|defendant|statute|jurisdiction|covenant)\b`)
	medicalPattern         = regexp.MustCompile(`(?i)\b(diagnosis|patient|symptom|dosage|treatment|clinical|prognosis|comorbidity)\b`)
)

// Sample returns the first sampleLimit characters of text, the window
// DocumentCharacteristics and the LLM prompt both operate over.
func Sample(text string) string {
	runes := []rune(text)
	if len(runes) > sampleLimit {
		runes = runes[:sampleLimit]
	}
	return string(runes)
}

// AnalyzeCharacteristics computes the feature vector strategy selection
// relies on, from a document sample plus the source file's extension.
func AnalyzeCharacteristics(sample string, fileName string) model.DocumentCharacteristics {
	ext := strings.ToLower(filepath.Ext(fileName))

	hasHeaders := intHeaderLine.MatchString(sample) || regexp.MustCompile(`(?mi)^<h[1-6][^>]*>`).MatchString(sample)
	hasCode := codeFencePattern.MatchString(sample)
	hasTables := hasTableLines(sample)
	hasLists := listItemPattern.MatchString(sample)
	hasMath := mathPattern.MatchString(sample)
	numberedLines := len(numberedSectionPattern.FindAllString(sample, -1))
	hasNumberedSections := numberedLines >= 3 || deepNumberedPattern.MatchString(sample)
	hasStructuredReqs := len(requirementPattern.FindAllString(sample, -1)) >= 2

	lang, _ := langdetect.Detect(sample)
	domain := detectDomain(sample)

	sentences := SplitSentences(sample)
	avgSentenceLen := 0.0
	if len(sentences) > 0 {
		total := 0
		for _, s := range sentences {
			total += tokenest.EstimateWords(s)
		}
		avgSentenceLen = float64(total) / float64(len(sentences))
	}

	paragraphs, _ := splitParagraphs(sample)
	paragraphCount := 0
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			paragraphCount++
		}
	}

	contentType := classifyContentType(hasTables, hasCode, hasHeaders, avgSentenceLen, sample)
	complexity := structureComplexity(hasHeaders, hasCode, hasTables, hasLists, hasNumberedSections, paragraphCount)

	return model.DocumentCharacteristics{
		Extension:                 ext,
		HasHeaders:                hasHeaders,
		HasCodeBlocks:             hasCode,
		HasTables:                 hasTables,
		HasLists:                  hasLists,
		HasMath:                   hasMath,
		HasNumberedSections:       hasNumberedSections,
		HasStructuredRequirements: hasStructuredReqs,
		ContentType:               contentType,
		Language:                  lang,
		Domain:                    domain,
		AvgSentenceLength:         avgSentenceLen,
		ParagraphCount:            paragraphCount,
		StructureComplexity:       complexity,
	}
}

func hasTableLines(sample string) bool {
	for _, line := range strings.Split(sample, "\n") {
		if isTableRowText(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// detectDomain extends helper.DetectDomain's Technical/Business/Academic
// vocabulary with the Legal and Medical domains the Auto selector's rules
// require but chunk enrichment does not.
func detectDomain(sample string) model.Domain {
	legalHits := len(legalPattern.FindAllString(sample, -1))
	medicalHits := len(medicalPattern.FindAllString(sample, -1))
	if legalHits >= medicalHits && legalHits >= 2 {
		return model.DomainLegal
	}
	if medicalHits >= 2 {
		return model.DomainMedical
	}
	return helper.DetectDomain(sample)
}

func classifyContentType(hasTables, hasCode, hasHeaders bool, avgSentenceLen float64, sample string) model.ContentType {
	switch {
	case hasTables && strings.Count(sample, "|") > 20:
		return model.ContentTabular
	case hasCode && hasHeaders:
		return model.ContentTechnical
	case avgSentenceLen > 20:
		return model.ContentNarrative
	case hasHeaders:
		return model.ContentStructured
	default:
		return model.ContentNarrative
	}
}

func structureComplexity(hasHeaders, hasCode, hasTables, hasLists, hasNumbered bool, paragraphCount int) float64 {
	score := 0.0
	if hasHeaders {
		score += 2.5
	}
	if hasCode {
		score += 2
	}
	if hasTables {
		score += 2.5
	}
	if hasLists {
		score += 1.5
	}
	if hasNumbered {
		score += 1.5
	}
	if paragraphCount > 10 {
		score += 1
	}
	if score > 10 {
		score = 10
	}
	return score
}
