// Package quality scores chunked output and drives a QA benchmark:
// chunk-set metrics, QA benchmark question generation, answerability
// validation, strategy A/B scoring, and improvement recommendations.
package quality

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"chunkstream/internal/boundary"
	"chunkstream/internal/llm"
	"chunkstream/internal/model"

	"github.com/agnivade/levenshtein"
	dateparser "github.com/markusmobius/go-dateparser"
)

// ChunkingQuality is the metrics bundle a quality pass produces.
type ChunkingQuality struct {
	AverageCompleteness  float64
	ContentConsistency   float64
	BoundaryQuality      float64
	SizeDistribution     float64
	OverlapEffectiveness float64
}

// QuestionType enumerates the QA benchmark categories questions are
// distributed across.
type QuestionType string

const (
	Factual      QuestionType = "Factual"
	Conceptual   QuestionType = "Conceptual"
	Analytical   QuestionType = "Analytical"
	Procedural   QuestionType = "Procedural"
	Comparative  QuestionType = "Comparative"
	Inferential  QuestionType = "Inferential"
	MultiHop     QuestionType = "MultiHop"
)

var questionTypes = []QuestionType{Factual, Conceptual, Analytical, Procedural, Comparative, Inferential, MultiHop}

// Question is one generated QA benchmark item.
type Question struct {
	Text       string
	Type       QuestionType
	SourceHint string
}

// AnswerabilityReport is validate_answerability's result.
type AnswerabilityReport struct {
	Total         int
	Answerable    int
	HighQuality   int
	AvgConfidence float64
}

// Engine implements QualityEngine. LLM may be nil: question generation then falls back to the
// deterministic template.
type Engine struct {
	LLM llm.TextCompletionService
}

// New constructs an Engine, optionally backed by an LLM for question
// generation.
func New(completion llm.TextCompletionService) *Engine {
	return &Engine{LLM: completion}
}

// Metrics computes the five chunk-set quality scores.
func (e *Engine) Metrics(chunks []*model.Chunk) ChunkingQuality {
	if len(chunks) == 0 {
		return ChunkingQuality{}
	}

	return ChunkingQuality{
		AverageCompleteness:  averageCompleteness(chunks),
		ContentConsistency:   inverseCoV(chunkLengths(chunks)),
		BoundaryQuality:      averageBoundaryQuality(chunks),
		SizeDistribution:     inverseCoV(chunkLengths(chunks)),
		OverlapEffectiveness: averageOverlapJaccard(chunks),
	}
}

func chunkLengths(chunks []*model.Chunk) []float64 {
	lengths := make([]float64, len(chunks))
	for i, c := range chunks {
		lengths[i] = float64(len(c.Content))
	}
	return lengths
}

// inverseCoV returns 1/(1+CoV), so a tight size distribution (low
// coefficient of variation) scores near 1.
func inverseCoV(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	cov := math.Sqrt(variance) / mean
	return 1 / (1 + cov)
}

func averageCompleteness(chunks []*model.Chunk) float64 {
	total := 0.0
	for _, c := range chunks {
		trimmed := strings.TrimSpace(c.Content)
		if trimmed == "" {
			continue
		}
		r := []rune(trimmed)
		last := r[len(r)-1]
		if last == '.' || last == '!' || last == '?' || last == '。' {
			total += 1
		} else {
			total += 0.5
		}
	}
	return total / float64(len(chunks))
}

func averageBoundaryQuality(chunks []*model.Chunk) float64 {
	if len(chunks) < 2 {
		return 1
	}
	total := 0.0
	count := 0
	for i := 1; i < len(chunks); i++ {
		lines := []string{lastLine(chunks[i-1].Content), firstLine(chunks[i].Content)}
		total += boundary.Evaluate(lines, 1).Quality
		count++
	}
	if count == 0 {
		return 1
	}
	return total / float64(count)
}

func lastLine(s string) string {
	parts := strings.Split(s, "\n")
	return parts[len(parts)-1]
}

func firstLine(s string) string {
	parts := strings.Split(s, "\n")
	return parts[0]
}

func averageOverlapJaccard(chunks []*model.Chunk) float64 {
	if len(chunks) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(chunks); i++ {
		total += jaccard(wordSet(chunks[i-1].Content), wordSet(chunks[i].Content))
	}
	return total / float64(len(chunks)-1)
}

var wordPattern = regexp.MustCompile(`\w+`)

func wordSet(s string) map[string]bool {
	words := wordPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// OverallScore weights chunking quality 40%, information density 30%, and
// structure preservation 30%, used to rank strategies in
// A/B benchmarks.
func (e *Engine) OverallScore(q ChunkingQuality, density, structurePreservation float64) float64 {
	chunkingScore := (q.AverageCompleteness + q.ContentConsistency + q.BoundaryQuality + q.SizeDistribution + q.OverlapEffectiveness) / 5
	return 0.4*chunkingScore + 0.3*density + 0.3*structurePreservation
}

// Recommendations returns ordered improvement suggestions keyed by which
// metric is weakest.
func (e *Engine) Recommendations(q ChunkingQuality, redundancy float64) []string {
	var out []string
	if q.SizeDistribution < 0.6 {
		out = append(out, "chunk sizes vary widely; consider shrinking MaxChunkSize")
	}
	if q.BoundaryQuality < 0.6 {
		out = append(out, "boundary quality is low; switch to the Intelligent strategy")
	}
	if redundancy > 0.5 {
		out = append(out, "high redundancy across chunks; enable content filtering")
	}
	if q.OverlapEffectiveness < 0.2 {
		out = append(out, "structural cues are not preserved across boundaries; enable structural cues")
	}
	return out
}

// GenerateQuestions produces n questions evenly distributed across
// questionTypes, preferring the LLM when available and falling back to a
// deterministic sentence-sampling template per type.
func (e *Engine) GenerateQuestions(ctx context.Context, parsed model.ParsedContent, n int) []Question {
	if n <= 0 {
		return nil
	}

	sentences := splitDocumentSentences(parsed.Text)
	if len(sentences) == 0 {
		return nil
	}

	var questions []Question
	for i := 0; i < n; i++ {
		qType := questionTypes[i%len(questionTypes)]
		sentence := sentences[i%len(sentences)]

		if e.LLM != nil {
			if q, ok := e.tryLLMQuestion(ctx, sentence, qType); ok {
				questions = append(questions, q)
				continue
			}
		}
		questions = append(questions, templateQuestion(sentence, qType))
	}
	return questions
}

func (e *Engine) tryLLMQuestion(ctx context.Context, sentence string, qType QuestionType) (Question, bool) {
	prompt := "Write one " + string(qType) + "-type question whose answer is found in this text: " + sentence
	text, err := e.LLM.Generate(ctx, prompt, llm.CompletionOptions{MaxTokens: 128, Temperature: 0.5})
	if err != nil || strings.TrimSpace(text) == "" {
		return Question{}, false
	}
	return Question{Text: strings.TrimSpace(text), Type: qType, SourceHint: sentence}, true
}

// templatePhrasings gives each question type a deterministic phrasing
// template keyed off a sampled sentence, used when no LLM is available.
var templatePhrasings = map[QuestionType]string{
	Factual:     "According to the text, what happened regarding: \"%s\"?",
	Conceptual:  "What concept is being described in: \"%s\"?",
	Analytical:  "Why might the following be true: \"%s\"?",
	Procedural:  "What steps are implied by: \"%s\"?",
	Comparative: "How does this compare to other approaches: \"%s\"?",
	Inferential: "What can be inferred from: \"%s\"?",
	MultiHop:    "What earlier context connects to: \"%s\"?",
}

func templateQuestion(sentence string, qType QuestionType) Question {
	sentence = strings.TrimSpace(sentence)
	if r := []rune(sentence); len(r) > 120 {
		sentence = string(r[:120])
	}

	if qType == Factual {
		cfg := &dateparser.Configuration{CurrentTime: time.Now(), StrictParsing: false}
		if _, err := dateparser.Parse(cfg, sentence); err == nil {
			return Question{Text: "When did this occur: \"" + sentence + "\"?", Type: Factual, SourceHint: sentence}
		}
	}

	template := templatePhrasings[qType]
	return Question{Text: sprintfSimple(template, sentence), Type: qType, SourceHint: sentence}
}

func sprintfSimple(template, value string) string {
	return strings.Replace(template, "%s", value, 1)
}

var sentenceSplit = regexp.MustCompile(`[.!?。]+\s*`)

func splitDocumentSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateAnswerability scores each question against the top-3 chunks by
// question-word overlap (words > 3 chars).
func (e *Engine) ValidateAnswerability(questions []Question, chunks []*model.Chunk) AnswerabilityReport {
	report := AnswerabilityReport{Total: len(questions)}
	if len(questions) == 0 || len(chunks) == 0 {
		return report
	}

	var totalConfidence float64
	for _, q := range questions {
		confidence := bestChunkOverlap(q.Text, chunks)
		totalConfidence += confidence
		if confidence > 0.3 {
			report.Answerable++
		}
		if confidence > 0.6 {
			report.HighQuality++
		}
	}
	report.AvgConfidence = totalConfidence / float64(len(questions))
	return report
}

func bestChunkOverlap(question string, chunks []*model.Chunk) float64 {
	qWords := significantWords(question)
	if len(qWords) == 0 {
		return 0
	}

	scores := make([]float64, 0, len(chunks))
	for _, c := range chunks {
		cWords := wordSet(c.Content)
		hits := 0
		for w := range qWords {
			if cWords[w] {
				hits++
			}
		}
		scores = append(scores, float64(hits)/float64(len(qWords)))
	}

	// top-3 mean.
	best := topN(scores, 3)
	if len(best) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range best {
		total += s
	}
	return total / float64(len(best))
}

func significantWords(s string) map[string]bool {
	words := wordPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

func topN(vals []float64, n int) []float64 {
	// simple selection of the n largest, O(n*len) is fine at benchmark scale.
	var out []float64
	used := make([]bool, len(vals))
	for i := 0; i < n && i < len(vals); i++ {
		best := -1
		for j, v := range vals {
			if used[j] {
				continue
			}
			if best == -1 || v > vals[best] {
				best = j
			}
		}
		if best == -1 {
			break
		}
		used[best] = true
		out = append(out, vals[best])
	}
	return out
}

// LevenshteinSimilarity is exposed for callers (e.g. A/B benchmark
// reporting) that want a normalised string-similarity alongside the
// word-overlap metrics above.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
