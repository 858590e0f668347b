package chunking

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"chunkstream/internal/llm"
	"chunkstream/internal/model"
)

// SelectionResult is what AdaptiveStrategySelector.Select returns.
type SelectionResult struct {
	StrategyName string
	Confidence   float64
	Reasoning    string
	UsedLLM      bool
	Alternatives []Alternative
}

// Alternative is one candidate the selector considered but did not pick.
type Alternative struct {
	Name       string
	Confidence float64
	Reasoning  string
}

// candidateInfo describes one strategy for the LLM prompt and for
// PreferSpeed/PreferQuality ordering.
type candidateInfo struct {
	Name        string
	Description string
	Strengths   string
	Limitations string
	OptimalFor  string
}

var candidates = []candidateInfo{
	{"FixedSize", "Splits at a constant character window.", "Predictable, cheap, no structural analysis needed.", "Ignores all document structure; can cut mid-sentence or mid-table.", "Uniform, low-structure data like CSV exports."},
	{"Paragraph", "Splits on blank-line paragraph breaks.", "Cheap, respects natural prose breaks.", "No sentence-level guarantee on long paragraphs.", "Simple prose with short paragraphs."},
	{"Semantic", "Aggregates sentences into topically coherent groups.", "Keeps narrative flow, respects paragraph boundaries.", "Less structure-aware than Intelligent.", "Narrative prose, articles, long-form text."},
	{"Intelligent", "Structure-aware: preserves tables, headers, code blocks.", "Best boundary quality on structured documents.", "More expensive; assumes Markdown-like structural cues.", "Technical docs, specs, anything with tables or code."},
	{"Smart", "Guarantees sentence-boundary integrity on every chunk.", "Best for legal/medical text where mid-sentence cuts are costly.", "Can overshoot MaxChunkSize on single long sentences.", "Legal, medical, or numbered-requirement documents."},
	{"MemoryOptimizedIntelligent", "Streaming variant of Intelligent using pooled buffers.", "Bounded memory on very large documents.", "Slightly coarser cut-point selection than Intelligent.", "Large documents under memory pressure."},
}

// AdaptiveStrategySelector picks a strategy name for a document by
// computing DocumentCharacteristics, optionally asking an LLM, and
// otherwise applying the rule table and hard overrides below.
type AdaptiveStrategySelector struct {
	LLM             llm.TextCompletionService
	MemoryPressure  func() bool // returns true under memory pressure (the orchestrator's probe: heap Alloc > 500MB)
	registryNames   func() []string
}

// NewAdaptiveStrategySelector builds a selector. completion may be nil;
// memoryPressure may be nil, in which case memory pressure is treated as
// always false.
func NewAdaptiveStrategySelector(completion llm.TextCompletionService, memoryPressure func() bool) *AdaptiveStrategySelector {
	return &AdaptiveStrategySelector{LLM: completion, MemoryPressure: memoryPressure}
}

// bindRegistry lets AutoStrategy tell the selector which strategy names are
// actually registered, for the final downgrade-to-Smart step.
func (a *AdaptiveStrategySelector) bindRegistry(names func() []string) {
	a.registryNames = names
}

// Select runs the full selection algorithm against parsed.
func (a *AdaptiveStrategySelector) Select(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) SelectionResult {
	sample := Sample(parsed.Text)
	chars := AnalyzeCharacteristics(sample, parsed.Hints.FileName)

	if forced := opts.String(model.OptForceStrategy); forced != "" {
		return a.finalize(SelectionResult{StrategyName: forced, Confidence: 1.0, Reasoning: "ForceStrategy override"}, chars, opts)
	}

	result := SelectionResult{Alternatives: ruleAlternatives(chars)}

	if a.LLM != nil && !a.maxAnalysisTimeExceeded(opts) {
		if r, ok := a.tryLLM(ctx, chars, opts); ok {
			r.Alternatives = result.Alternatives
			return a.finalize(r, chars, opts)
		}
	}

	name, confidence, reasoning := ruleBasedSelect(chars)
	result.StrategyName = name
	result.Confidence = confidence
	result.Reasoning = reasoning

	return a.finalize(result, chars, opts)
}

func (a *AdaptiveStrategySelector) maxAnalysisTimeExceeded(opts model.ChunkingOptions) bool {
	d := opts.Duration(model.OptMaxAnalysisTime)
	return d > 0 && d < time.Millisecond // a positive budget under 1ms means "skip the LLM"; zero means no limit
}

// tryLLM builds the characteristics+candidates prompt, calls the service
// with a bounded timeout, and parses the JSON response. Any failure at any
// step falls through to the rule-based path.
func (a *AdaptiveStrategySelector) tryLLM(ctx context.Context, chars model.DocumentCharacteristics, opts model.ChunkingOptions) (SelectionResult, bool) {
	timeout := opts.Duration(model.OptMaxAnalysisTime)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := buildSelectionPrompt(chars)
	raw, err := a.LLM.Generate(callCtx, prompt, llm.CompletionOptions{MaxTokens: 512, Temperature: 0.2})
	if err != nil || strings.TrimSpace(raw) == "" {
		return SelectionResult{}, false
	}

	parsed, ok := parseLLMSelection(raw)
	if !ok {
		return SelectionResult{}, false
	}
	parsed.UsedLLM = true
	return parsed, true
}

func buildSelectionPrompt(chars model.DocumentCharacteristics) string {
	var sb strings.Builder
	sb.WriteString("Pick the best chunking strategy for a document with these characteristics:\n")
	sb.WriteString("extension=" + chars.Extension)
	sb.WriteString(" content_type=" + string(chars.ContentType))
	sb.WriteString(" domain=" + string(chars.Domain))
	sb.WriteString("\nCandidates:\n")
	for _, c := range candidates {
		sb.WriteString("- " + c.Name + ": " + c.Description + " Strengths: " + c.Strengths + " Limitations: " + c.Limitations + " Optimal for: " + c.OptimalFor + "\n")
	}
	sb.WriteString("\nRespond with JSON: {\"strategy_name\": \"...\", \"confidence\": 0.0-1.0, \"reasoning\": \"...\"}")
	return sb.String()
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// parseLLMSelection best-effort extracts the JSON object from raw, which
// may be wrapped in prose or a code fence.
func parseLLMSelection(raw string) (SelectionResult, bool) {
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return SelectionResult{}, false
	}
	var payload struct {
		StrategyName string  `json:"strategy_name"`
		Confidence   float64 `json:"confidence"`
		Reasoning    string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(match), &payload); err != nil || payload.StrategyName == "" {
		return SelectionResult{}, false
	}
	return SelectionResult{StrategyName: payload.StrategyName, Confidence: payload.Confidence, Reasoning: payload.Reasoning}, true
}

// ruleBasedSelect applies the ordered rule table.
func ruleBasedSelect(c model.DocumentCharacteristics) (name string, confidence float64, reasoning string) {
	switch {
	case c.HasNumberedSections || c.HasStructuredRequirements:
		return "Smart", 0.95, "numbered sections or structured requirements detected"
	case c.HasCodeBlocks && c.HasHeaders:
		return "Intelligent", 0.85, "code blocks with markdown headers"
	case c.Domain == model.DomainLegal || c.Domain == model.DomainMedical:
		return "Smart", 0.9, "legal or medical domain needs sentence-integrity guarantees"
	case c.ContentType == model.ContentNarrative || c.AvgSentenceLength > 20:
		return "Semantic", 0.8, "narrative content or long average sentence length"
	case c.StructureComplexity < 3:
		return "Paragraph", 0.75, "low structural complexity"
	default:
		return "Smart", 0.7, "default fallback"
	}
}

// ruleAlternatives reports every rule's candidate for the Alternatives list,
// even when it isn't the one chosen — informative only.
func ruleAlternatives(c model.DocumentCharacteristics) []Alternative {
	rules := []struct {
		cond   bool
		name   string
		conf   float64
		reason string
	}{
		{c.HasNumberedSections || c.HasStructuredRequirements, "Smart", 0.95, "numbered sections or structured requirements"},
		{c.HasCodeBlocks && c.HasHeaders, "Intelligent", 0.85, "code blocks with headers"},
		{c.Domain == model.DomainLegal || c.Domain == model.DomainMedical, "Smart", 0.9, "legal/medical domain"},
		{c.ContentType == model.ContentNarrative || c.AvgSentenceLength > 20, "Semantic", 0.8, "narrative/long sentences"},
		{c.StructureComplexity < 3, "Paragraph", 0.75, "low structural complexity"},
	}
	var alts []Alternative
	for _, r := range rules {
		if r.cond {
			alts = append(alts, Alternative{Name: r.name, Confidence: r.conf, Reasoning: r.reason})
		}
	}
	return alts
}

// finalize applies the hard overrides and the unregistered-strategy
// downgrade.
func (a *AdaptiveStrategySelector) finalize(r SelectionResult, chars model.DocumentCharacteristics, opts model.ChunkingOptions) SelectionResult {
	if chars.Extension == ".pdf" && chars.HasTables {
		r.StrategyName = "Intelligent"
		r.Confidence = 0.95
		r.Reasoning = "PDF with tables: hard override to Intelligent"
	} else if !strategyExplicitlyChosen(r) {
		if ext, ok := extensionDefaults[chars.Extension]; ok {
			r.StrategyName = ext
			r.Reasoning = "extension default for " + chars.Extension
		}
	}

	if a.memoryPressureActive() && r.StrategyName == "Intelligent" {
		r.StrategyName = "MemoryOptimizedIntelligent"
		r.Reasoning += "; switched to memory-optimised variant under memory pressure"
	}

	if opts.Bool(model.OptPreferSpeed) {
		if picked, ok := firstAvailable(speedOrder, a.availableNames()); ok {
			r.StrategyName = picked
			r.Reasoning = "PreferSpeed override"
		}
	} else if opts.Bool(model.OptPreferQuality) {
		if picked, ok := firstAvailable(qualityOrder, a.availableNames()); ok {
			r.StrategyName = picked
			r.Reasoning = "PreferQuality override"
		}
	}

	if threshold := opts.Float(model.OptConfidenceThreshold, 0); threshold > 0 && r.Confidence < threshold && r.Confidence > 0 {
		r.Reasoning += "; below ConfidenceThreshold, but no richer signal available"
	}

	if a.registryNames != nil {
		known := false
		for _, n := range a.registryNames() {
			if n == r.StrategyName {
				known = true
				break
			}
		}
		if !known {
			r.StrategyName = "Smart"
			r.Confidence *= 0.8
			r.Reasoning += "; downgraded to Smart (strategy not registered)"
		}
	}

	return r
}

// strategyExplicitlyChosen reports whether r came from a strong rule
// (confidence >= 0.8) that the extension-default table should not override.
func strategyExplicitlyChosen(r SelectionResult) bool {
	return r.Confidence >= 0.8
}

var extensionDefaults = map[string]string{
	".pdf":  "Semantic",
	".docx": "Intelligent",
	".xlsx": "Intelligent",
	".xls":  "Intelligent",
	".ppt":  "Intelligent",
	".pptx": "Intelligent",
	".md":   "Semantic",
	".txt":  "Semantic",
	".html": "Semantic",
	".htm":  "Semantic",
	".json": "Smart",
	".csv":  "FixedSize",
}

var speedOrder = []string{"FixedSize", "Paragraph", "Semantic", "Intelligent", "Smart"}
var qualityOrder = []string{"Smart", "Intelligent", "Semantic", "Paragraph", "FixedSize"}

func firstAvailable(order, available []string) (string, bool) {
	set := make(map[string]bool, len(available))
	for _, n := range available {
		set[n] = true
	}
	for _, n := range order {
		if set[n] {
			return n, true
		}
	}
	return "", false
}

func (a *AdaptiveStrategySelector) availableNames() []string {
	if a.registryNames != nil {
		return a.registryNames()
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}

func (a *AdaptiveStrategySelector) memoryPressureActive() bool {
	return a.MemoryPressure != nil && a.MemoryPressure()
}
