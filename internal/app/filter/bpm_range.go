package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// BPMRangeConfig represents the configuration for BPMRangeFilter.
type BPMRangeConfig struct {
	MinBPM int `yaml:"min_bpm" mapstructure:"min_bpm" default:"1" validate:"gte=1"`
	MaxBPM int `yaml:"max_bpm" mapstructure:"max_bpm" default:"400" validate:"gte=1"`
}

// BPMRangeFilter keeps beats whose tempo lies within the requested range.
// Requested bounds outside the configured range are clamped to it.
type BPMRangeFilter struct {
	config *BPMRangeConfig
}

// NewBPMRangeFilter creates a new BPM range filter.
func NewBPMRangeFilter() *BPMRangeFilter {
	return &BPMRangeFilter{}
}

func (f *BPMRangeFilter) Name() string {
	return "bpm_range_filter"
}

func (f *BPMRangeFilter) Description() string {
	return "Keeps beats within the requested BPM range"
}

func (f *BPMRangeFilter) ReturnCodes() []string {
	return []string{"bpm_out_of_range"}
}

func (f *BPMRangeFilter) ValidateConfig(settings map[string]any) error {
	var config BPMRangeConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	if config.MinBPM > config.MaxBPM {
		return errors.New("min_bpm cannot be greater than max_bpm")
	}
	f.config = &config
	zlog.Debug().Msgf("bpm range filter config: %+v", config)
	return nil
}

func (f *BPMRangeFilter) AppliesTo(scope Scope) bool {
	return true
}

// Bounds returns the effective inclusive range for q. Zero means unbounded.
func (f *BPMRangeFilter) Bounds(q Query) (lo, hi int) {
	lo, hi = max(q.BPMMin, 0), max(q.BPMMax, 0)
	if f.config == nil {
		return lo, hi
	}
	if lo > 0 {
		lo = min(max(lo, f.config.MinBPM), f.config.MaxBPM)
	}
	if hi > 0 {
		hi = min(max(hi, f.config.MinBPM), f.config.MaxBPM)
	}
	return lo, hi
}

func (f *BPMRangeFilter) Check(ctx context.Context, q Query, b *beat.Beat) Result {
	lo, hi := f.Bounds(q)
	if lo > 0 && b.BPM < lo {
		return Reject("bpm_out_of_range")
	}
	if hi > 0 && b.BPM > hi {
		return Reject("bpm_out_of_range")
	}
	return Accept()
}

func init() {
	Register("bpm_range_filter", func() Filter {
		return &BPMRangeFilter{}
	})
}
