package filter

import (
	"context"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// ActiveFilter hides beats that were withdrawn from the storefront.
type ActiveFilter struct{}

func (f *ActiveFilter) Name() string {
	return "active_filter"
}

func (f *ActiveFilter) Description() string {
	return "Hides inactive beats from the public catalog"
}

func (f *ActiveFilter) ReturnCodes() []string {
	return []string{"inactive"}
}

func (f *ActiveFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *ActiveFilter) AppliesTo(scope Scope) bool {
	// Admins see the whole catalog
	return scope == ScopePublic
}

func (f *ActiveFilter) Check(ctx context.Context, q Query, b *beat.Beat) Result {
	if !b.Active {
		return Reject("inactive")
	}
	return Accept()
}

func init() {
	Register("active_filter", func() Filter {
		return &ActiveFilter{}
	})
}
