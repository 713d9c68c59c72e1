package filter

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// SearchConfig represents the configuration for SearchFilter.
type SearchConfig struct {
	MinLength int `yaml:"min_length" mapstructure:"min_length" default:"1" validate:"gte=1,lte=64"`
}

// SearchFilter matches the search text against beat titles, case-insensitively.
type SearchFilter struct {
	config *SearchConfig
}

// NewSearchFilter creates a new search filter.
func NewSearchFilter() *SearchFilter {
	return &SearchFilter{}
}

func (f *SearchFilter) Name() string {
	return "search_filter"
}

func (f *SearchFilter) Description() string {
	return "Keeps beats whose title contains the search text"
}

func (f *SearchFilter) ReturnCodes() []string {
	return []string{"title_mismatch"}
}

func (f *SearchFilter) ValidateConfig(settings map[string]any) error {
	var config SearchConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.config = &config
	zlog.Debug().Msgf("search filter config: %+v", config)
	return nil
}

func (f *SearchFilter) AppliesTo(scope Scope) bool {
	return true
}

func (f *SearchFilter) Check(ctx context.Context, q Query, b *beat.Beat) Result {
	text := strings.TrimSpace(q.Search)
	if text == "" {
		return Accept()
	}
	// Shorter queries are ignored rather than matched
	if f.config != nil && len([]rune(text)) < f.config.MinLength {
		return Accept()
	}
	if strings.Contains(strings.ToLower(b.Title), strings.ToLower(text)) {
		return Accept()
	}
	return Reject("title_mismatch")
}

func init() {
	Register("search_filter", func() Filter {
		return &SearchFilter{}
	})
}
