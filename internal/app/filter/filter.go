// Package filter provides the filter chain for catalog queries.
package filter

import (
	"context"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// Scope identifies who is browsing the catalog.
type Scope int

const (
	ScopePublic Scope = iota // Storefront listeners
	ScopeAdmin               // Authenticated administrators
)

// String returns the string representation of the scope.
func (s Scope) String() string {
	switch s {
	case ScopePublic:
		return "public"
	case ScopeAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Query holds the listener-supplied search criteria.
type Query struct {
	Genre  string // Genre label, "" or beat.AnyLabel for any
	Mood   string // Mood label, "" or beat.AnyLabel for any
	Search string // Case-insensitive title substring
	BPMMin int    // Inclusive lower bound, ignored when <= 0
	BPMMax int    // Inclusive upper bound, ignored when <= 0
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "inactive", "genre_mismatch", "bpm_out_of_range"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for catalog filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates the filter configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this filter should be applied for the given scope.
	AppliesTo(scope Scope) bool
	// Check performs the filter check.
	Check(ctx context.Context, q Query, b *beat.Beat) Result
}

// Order is the evaluation order of filters in a built chain.
var Order = []string{
	"active_filter",
	"genre_filter",
	"mood_filter",
	"search_filter",
	"bpm_range_filter",
	"recent_filter",
}

// core filters implement the storefront search semantics and are always on.
var core = map[string]bool{
	"active_filter":    true,
	"genre_filter":     true,
	"mood_filter":      true,
	"search_filter":    true,
	"bpm_range_filter": true,
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}

// isAny reports whether a label criterion means "no filter".
func isAny(label string) bool {
	return label == "" || label == beat.AnyLabel
}
