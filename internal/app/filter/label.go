package filter

import (
	"context"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// GenreFilter keeps beats carrying the requested genre.
type GenreFilter struct{}

func (f *GenreFilter) Name() string {
	return "genre_filter"
}

func (f *GenreFilter) Description() string {
	return "Keeps beats tagged with the requested genre (\"Tous\" matches all)"
}

func (f *GenreFilter) ReturnCodes() []string {
	return []string{"genre_mismatch"}
}

func (f *GenreFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *GenreFilter) AppliesTo(scope Scope) bool {
	return true
}

func (f *GenreFilter) Check(ctx context.Context, q Query, b *beat.Beat) Result {
	if isAny(q.Genre) || b.HasGenre(q.Genre) {
		return Accept()
	}
	return Reject("genre_mismatch")
}

// MoodFilter keeps beats carrying the requested mood.
type MoodFilter struct{}

func (f *MoodFilter) Name() string {
	return "mood_filter"
}

func (f *MoodFilter) Description() string {
	return "Keeps beats tagged with the requested mood (\"Tous\" matches all)"
}

func (f *MoodFilter) ReturnCodes() []string {
	return []string{"mood_mismatch"}
}

func (f *MoodFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *MoodFilter) AppliesTo(scope Scope) bool {
	return true
}

func (f *MoodFilter) Check(ctx context.Context, q Query, b *beat.Beat) Result {
	if isAny(q.Mood) || b.HasMood(q.Mood) {
		return Accept()
	}
	return Reject("mood_mismatch")
}

func init() {
	Register("genre_filter", func() Filter {
		return &GenreFilter{}
	})
	Register("mood_filter", func() Filter {
		return &MoodFilter{}
	})
}
