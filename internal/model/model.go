// Package model defines the data types shared by every pipeline stage:
// RawContent, ParsedContent, Chunk, and the options that shape chunking.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Span is a half-open character range [Start, End) into a document's text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// SourceHints carries whatever a reader knows about the document it read.
type SourceHints struct {
	FileName      string
	Size          int64
	FileType      string
	PageRanges    map[int]Span // page number -> character span, when known
	BaseLanguage  string
}

// RawContent is the reader stage's output: unicode text plus source metadata.
type RawContent struct {
	Text  string
	Hints SourceHints
}

// Section is a heading and the text span it covers, possibly nested.
type Section struct {
	Heading     string
	Level       int // 1..6
	CharSpan    Span
	Subsections []Section
}

// ParsedContent is the parse stage's output: normalised text plus structure.
type ParsedContent struct {
	Text       string
	Sections   []Section
	Hints      SourceHints
	PageRanges map[int]Span
}

// ChunkLocation records where a chunk sits in the source document.
type ChunkLocation struct {
	StartChar   int
	EndChar     int
	HeadingPath []string
	PageNumber  *int
}

// Reserved Chunk.Props keys.
const (
	PropDocumentTopic          = "DocumentTopic"
	PropDocumentKeywords       = "DocumentKeywords"
	PropQualityRelevanceScore  = "QualityRelevanceScore"
	PropQualityCompleteness    = "QualityCompleteness"
	PropContentType            = "ContentType"
	PropStructuralRole         = "StructuralRole"
	PropEnrichedSummary        = "EnrichedSummary"
	PropEnrichedKeywords       = "EnrichedKeywords"
	PropEnrichedContextualText = "EnrichedContextualText"
	PropAutoSelectedStrategy   = "AutoSelectedStrategy"
	PropSelectionReasoning     = "SelectionReasoning"
	PropSelectionConfidence    = "SelectionConfidence"
	PropMemoryOptimized        = "MemoryOptimized"
	PropForcedBoundary         = "ForcedBoundary"
)

// Props is a deliberately untyped slot map; reserved keys (above) carry a
// known payload type (string, float64, []string) by convention but the map
// stays open for strategy-specific extensions.
type Props map[string]interface{}

// Clone returns a shallow copy of the map.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String reads a reserved string-valued key, returning "" if absent or the
// wrong type.
func (p Props) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Float reads a reserved float-valued key, returning 0 if absent or the
// wrong type.
func (p Props) Float(key string) float64 {
	if v, ok := p[key].(float64); ok {
		return v
	}
	return 0
}

// StringSlice reads a reserved []string-valued key.
func (p Props) StringSlice(key string) []string {
	if v, ok := p[key].([]string); ok {
		return v
	}
	return nil
}

// Chunk is a bounded, annotated substring of a document intended as a
// retrieval unit.
type Chunk struct {
	ID                string
	Index             int
	Content           string
	StrategyName      string
	Location          ChunkLocation
	EstimatedTokens   int
	ContextDependency float64
	Props             Props
}

// NewChunk allocates a chunk with a fresh opaque ID and an initialised
// Props map.
func NewChunk(index int, content, strategyName string) *Chunk {
	return &Chunk{
		ID:           uuid.NewString(),
		Index:        index,
		Content:      content,
		StrategyName: strategyName,
		Props:        Props{},
	}
}

// MetadataSchema enumerates the domain vocabularies QualityEngine and the
// enrichment stage recognise for the "metadataSchema" custom option.
type MetadataSchema string

const (
	SchemaGeneral   MetadataSchema = "general"
	SchemaAcademic  MetadataSchema = "academic"
	SchemaTechnical MetadataSchema = "technical"
	SchemaLegal     MetadataSchema = "legal"
	SchemaMedical   MetadataSchema = "medical"
)

// ChunkingOptions configures a chunking run.
type ChunkingOptions struct {
	Strategy      string // strategy name, or "Auto"
	MaxChunkSize  int
	OverlapSize   int
	Custom        map[string]interface{}
}

// Recognised Custom keys.
const (
	OptEnableMetadataEnrichment = "enableMetadataEnrichment"
	OptMetadataSchema           = "metadataSchema"
	OptForceStrategy            = "ForceStrategy"
	OptConfidenceThreshold      = "ConfidenceThreshold"
	OptPreferSpeed              = "PreferSpeed"
	OptPreferQuality            = "PreferQuality"
	OptMaxAnalysisTime          = "MaxAnalysisTime"
	OptSafetyFactor             = "SafetyFactor"
	OptValidateOverlap          = "ValidateOverlap"
)

// DefaultChunkingOptions returns the package's documented defaults.
func DefaultChunkingOptions() ChunkingOptions {
	return ChunkingOptions{
		Strategy:     "Auto",
		MaxChunkSize: 512,
		OverlapSize:  64,
		Custom:       map[string]interface{}{},
	}
}

// SafetyFactor returns the configured EnforceMaxSize ceiling multiplier,
// defaulting to 1.5.
func (o ChunkingOptions) SafetyFactor() float64 {
	if v, ok := o.Custom[OptSafetyFactor].(float64); ok && v > 1.0 {
		return v
	}
	return 1.5
}

// Bool reads a boolean custom option, defaulting to false.
func (o ChunkingOptions) Bool(key string) bool {
	v, _ := o.Custom[key].(bool)
	return v
}

// Float reads a float64 custom option with a default.
func (o ChunkingOptions) Float(key string, def float64) float64 {
	if v, ok := o.Custom[key].(float64); ok {
		return v
	}
	return def
}

// String reads a string custom option.
func (o ChunkingOptions) String(key string) string {
	v, _ := o.Custom[key].(string)
	return v
}

// Duration reads a MaxAnalysisTime-shaped custom option expressed in
// seconds, returning 0 (no limit) if absent.
func (o ChunkingOptions) Duration(key string) time.Duration {
	if v, ok := o.Custom[key].(float64); ok {
		return time.Duration(v * float64(time.Second))
	}
	return 0
}

// ContentType classifies the overall character of a sampled document, used
// by DocumentCharacteristics and the Auto selector's rule table.
type ContentType string

const (
	ContentNarrative    ContentType = "narrative"
	ContentTechnical    ContentType = "technical"
	ContentStructured   ContentType = "structured"
	ContentConversation ContentType = "conversation"
	ContentTabular      ContentType = "tabular"
)

// Domain classifies the subject-matter domain of a sampled document.
type Domain string

const (
	DomainGeneral   Domain = "General"
	DomainTechnical Domain = "Technical"
	DomainBusiness  Domain = "Business"
	DomainAcademic  Domain = "Academic"
	DomainLegal     Domain = "Legal"
	DomainMedical   Domain = "Medical"
)

// DocumentCharacteristics is the feature vector computed from a document
// sample.
type DocumentCharacteristics struct {
	Extension                 string
	HasHeaders                bool
	HasCodeBlocks             bool
	HasTables                 bool
	HasLists                  bool
	HasMath                   bool
	HasNumberedSections       bool
	HasStructuredRequirements bool
	ContentType               ContentType
	Language                  string
	Domain                    Domain
	AvgSentenceLength         float64
	ParagraphCount            int
	StructureComplexity       float64 // 0..10
}
