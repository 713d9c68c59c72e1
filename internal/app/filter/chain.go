package filter

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the beat.
// Filters are only applied if they declare they apply to the given scope.
func (c *Chain) Execute(ctx context.Context, q Query, b *beat.Beat, scope Scope) Result {
	for _, f := range c.filters {
		if !f.AppliesTo(scope) {
			continue
		}

		result := f.Check(ctx, q, b)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}

// Build creates a chain from the registered filters. Filters marked as core
// are always added; the others only when enabled is true for their name.
// Settings are validated by each filter before it is added.
func Build(settings map[string]map[string]any, enabled func(name string) bool) (*Chain, error) {
	chain := NewChain()
	for _, name := range Order {
		factory, ok := registry[name]
		if !ok {
			continue
		}
		if !core[name] && (enabled == nil || !enabled(name)) {
			continue
		}
		f := factory()
		if err := f.ValidateConfig(settings[name]); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		chain.Add(f)
	}
	return chain, nil
}
