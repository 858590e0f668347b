// Package chunking implements the strategy family: the
// structure-aware Intelligent splitter, the sentence-integrity Smart
// splitter, the Semantic and Paragraph splitters, the FixedSize baseline,
// the memory-optimised Intelligent variant, and the Auto selector that
// picks among them.
package chunking

import (
	"context"
	"fmt"
	"sync"

	"chunkstream/internal/model"
)

// Strategy splits a parsed document into chunks. Implementations borrow
// ParsedContent read-only and own their own scratch state.
type Strategy interface {
	// Name is the label written into Chunk.StrategyName.
	Name() string

	// Chunk splits parsed into a sequence of chunks honouring opts. ctx is
	// checked at unit boundaries so long documents remain cancellable.
	Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error)
}

// Registry is an explicit, constructor-supplied map of strategy name to
// Strategy. Safe for concurrent read after construction; Register should
// only be called during setup.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// NewDefaultRegistry returns a registry with every strategy this package
// implements, plus an Auto entry that delegates to selector.
func NewDefaultRegistry(selector *AdaptiveStrategySelector) *Registry {
	r := NewRegistry()
	r.Register(NewFixedSizeStrategy())
	r.Register(NewParagraphStrategy())
	r.Register(NewSemanticStrategy())
	r.Register(NewSmartStrategy())
	r.Register(NewIntelligentStrategy())
	r.Register(NewMemoryOptimizedIntelligentStrategy())
	r.Register(NewAutoStrategy(r, selector))
	return r
}

// Register adds or replaces the strategy under its own Name().
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// Names returns every registered strategy name except "Auto", in a stable
// preference order used by PreferSpeed/PreferQuality.
func (r *Registry) Names() []string {
	order := []string{"FixedSize", "Paragraph", "Semantic", "Intelligent", "Smart", "MemoryOptimizedIntelligent"}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, n := range order {
		if _, ok := r.strategies[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ErrUnknownStrategy is returned when ChunkingOptions.Strategy names a
// strategy absent from the registry.
type ErrUnknownStrategy struct{ Name string }

func (e *ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("chunking: unknown strategy %q", e.Name)
}

// Resolve looks up opts.Strategy in r, resolving "Auto" (or an empty
// string) to the registry's Auto entry.
func Resolve(r *Registry, opts model.ChunkingOptions) (Strategy, error) {
	name := opts.Strategy
	if name == "" {
		name = "Auto"
	}
	s, ok := r.Get(name)
	if !ok {
		return nil, &ErrUnknownStrategy{Name: name}
	}
	return s, nil
}
