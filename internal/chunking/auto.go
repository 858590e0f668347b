package chunking

import (
	"context"

	"chunkstream/internal/model"
)

// AutoStrategy is the "Auto" façade strategy: it delegates strategy choice
// to AdaptiveStrategySelector, then hands the
// document to the chosen strategy, relabelling its output as
// "Auto(<inner>)" and recording the selection in each chunk's props.
type AutoStrategy struct {
	registry *Registry
	selector *AdaptiveStrategySelector
}

// NewAutoStrategy binds Auto to registry (for strategy lookup) and selector
// (for the decision). It also wires selector.registryNames so the
// selector's final downgrade step reflects exactly
// what this registry has available.
func NewAutoStrategy(registry *Registry, selector *AdaptiveStrategySelector) *AutoStrategy {
	a := &AutoStrategy{registry: registry, selector: selector}
	if selector != nil {
		selector.bindRegistry(registry.Names)
	}
	return a
}

func (a *AutoStrategy) Name() string { return "Auto" }

func (a *AutoStrategy) Chunk(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) ([]*model.Chunk, error) {
	selection := a.selector.Select(ctx, parsed, opts)

	inner, ok := a.registry.Get(selection.StrategyName)
	if !ok {
		inner, ok = a.registry.Get("Smart")
		if !ok {
			return nil, &ErrUnknownStrategy{Name: selection.StrategyName}
		}
		selection.StrategyName = "Smart"
	}

	chunks, err := inner.Chunk(ctx, parsed, opts)
	if err != nil {
		return chunks, err
	}

	label := "Auto(" + selection.StrategyName + ")"
	for _, c := range chunks {
		c.StrategyName = label
		c.Props[model.PropAutoSelectedStrategy] = selection.StrategyName
		c.Props[model.PropSelectionReasoning] = selection.Reasoning
		c.Props[model.PropSelectionConfidence] = selection.Confidence
	}
	return chunks, nil
}

// Select exposes the underlying selection for callers (e.g. the
// orchestrator, tests) that need the decision without running the chosen
// strategy.
func (a *AutoStrategy) Select(ctx context.Context, parsed model.ParsedContent, opts model.ChunkingOptions) SelectionResult {
	return a.selector.Select(ctx, parsed, opts)
}
