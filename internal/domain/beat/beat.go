// Package beat provides the Beat catalog entity.
package beat

import (
	"slices"
	"strings"
	"time"

	"github.com/osa030/beatbox/internal/domain/track"
)

// Genre is a catalog genre label.
type Genre string

const (
	GenreHipHop     Genre = "Hip-Hop"
	GenreTrap       Genre = "Trap"
	GenreRnB        Genre = "R&B"
	GenrePop        Genre = "Pop"
	GenreDrill      Genre = "Drill"
	GenreAfrobeat   Genre = "Afrobeat"
	GenreLoFi       Genre = "Lo-Fi"
	GenreBoomBap    Genre = "Boom Bap"
	GenreDancehall  Genre = "Dancehall"
	GenreElectronic Genre = "Electronic"
)

// Mood is a catalog mood label.
type Mood string

const (
	MoodEnergetic   Mood = "Energique"
	MoodMelancholic Mood = "Mélancolique"
	MoodAggressive  Mood = "Agressif"
	MoodChill       Mood = "Chill"
	MoodDark        Mood = "Sombre"
	MoodHappy       Mood = "Joyeux"
	MoodEpic        Mood = "Épique"
	MoodRomantic    Mood = "Romantique"
	MoodMysterious  Mood = "Mystérieux"
)

// AnyLabel is the storefront's "no filter" value for genre and mood.
const AnyLabel = "Tous"

// KnownGenres returns the genres the storefront ships with.
func KnownGenres() []Genre {
	return []Genre{
		GenreHipHop, GenreTrap, GenreRnB, GenrePop, GenreDrill,
		GenreAfrobeat, GenreLoFi, GenreBoomBap, GenreDancehall, GenreElectronic,
	}
}

// KnownMoods returns the moods the storefront ships with.
func KnownMoods() []Mood {
	return []Mood{
		MoodEnergetic, MoodMelancholic, MoodAggressive, MoodChill, MoodDark,
		MoodHappy, MoodEpic, MoodRomantic, MoodMysterious,
	}
}

// Beat represents a beat offered in the catalog.
type Beat struct {
	ID              string    // Stable identifier
	Title           string    // Display title
	BPM             int       // Tempo
	Genres          []Genre   // Genre labels
	Moods           []Mood    // Mood labels
	CoverArtURL     string    // Artwork locator (optional)
	PreviewAudioURL string    // Public preview audio locator
	FullAudioURL    string    // Full-length audio locator, delivered after approval only
	Active          bool      // Listed in the public catalog
	CreatedAt       time.Time // Creation time
}

// HasGenre reports whether the beat carries the given genre (case-insensitive).
func (b *Beat) HasGenre(g string) bool {
	return slices.ContainsFunc(b.Genres, func(x Genre) bool {
		return strings.EqualFold(string(x), strings.TrimSpace(g))
	})
}

// HasMood reports whether the beat carries the given mood (case-insensitive).
func (b *Beat) HasMood(m string) bool {
	return slices.ContainsFunc(b.Moods, func(x Mood) bool {
		return strings.EqualFold(string(x), strings.TrimSpace(m))
	})
}

// Track builds the preview track used by the playback coordinator.
// The full-length asset is never part of a Track.
func (b *Beat) Track() (track.Track, error) {
	return track.New(b.ID, b.Title, b.PreviewAudioURL, b.CoverArtURL)
}

// Public returns a copy safe to expose to unauthenticated listeners.
func (b *Beat) Public() Beat {
	c := *b
	c.FullAudioURL = ""
	c.Genres = slices.Clone(b.Genres)
	c.Moods = slices.Clone(b.Moods)
	return c
}

// NormalizeGenres trims labels and drops empty and duplicate entries.
func NormalizeGenres(in []string) []Genre {
	out := make([]Genre, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, Genre(s)) {
			continue
		}
		out = append(out, Genre(s))
	}
	return out
}

// NormalizeMoods trims labels and drops empty and duplicate entries.
func NormalizeMoods(in []string) []Mood {
	out := make([]Mood, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, Mood(s)) {
			continue
		}
		out = append(out, Mood(s))
	}
	return out
}
