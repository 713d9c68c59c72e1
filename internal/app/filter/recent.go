package filter

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// RecentConfig represents the configuration for RecentFilter.
type RecentConfig struct {
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days" default:"30" validate:"gte=1"`
}

// RecentFilter limits the public storefront to recently published beats.
type RecentFilter struct {
	config *RecentConfig
	now    func() time.Time
}

// NewRecentFilter creates a new recent filter.
func NewRecentFilter(now func() time.Time) *RecentFilter {
	return &RecentFilter{now: now}
}

func (f *RecentFilter) Name() string {
	return "recent_filter"
}

func (f *RecentFilter) Description() string {
	return "Hides beats published more than max_age_days ago"
}

func (f *RecentFilter) ReturnCodes() []string {
	return []string{"too_old"}
}

func (f *RecentFilter) ValidateConfig(settings map[string]any) error {
	var config RecentConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.config = &config
	zlog.Info().Msgf("recent filter config: %+v", config)
	return nil
}

func (f *RecentFilter) AppliesTo(scope Scope) bool {
	return scope == ScopePublic
}

func (f *RecentFilter) Check(ctx context.Context, q Query, b *beat.Beat) Result {
	// If config is not set, accept all beats
	if f.config == nil || b.CreatedAt.IsZero() {
		return Accept()
	}
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	cutoff := now().AddDate(0, 0, -f.config.MaxAgeDays)
	if b.CreatedAt.Before(cutoff) {
		return Reject("too_old")
	}
	return Accept()
}

func init() {
	Register("recent_filter", func() Filter {
		return NewRecentFilter(time.Now)
	})
}
