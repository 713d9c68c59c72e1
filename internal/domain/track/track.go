// Package track provides the Track domain entity.
package track

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrInvalidTrack is returned when a track fails validation.
var ErrInvalidTrack = errors.New("invalid track")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Identity and locator must carry more than whitespace.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Track identifies a playable preview.
// Values are constructed once where catalog data is resolved and are never
// mutated afterwards.
type Track struct {
	ID          string `json:"id" validate:"required,notblank"`        // Stable identifier, used for identity comparison
	Title       string `json:"title" validate:"required,notblank"`     // Display name
	AudioURL    string `json:"audio_url" validate:"required,notblank"` // Audio stream locator (path, file:// or http(s)://)
	CoverArtURL string `json:"cover_art_url,omitempty"`                // Artwork locator (optional)
}

// New creates a validated Track.
func New(id, title, audioURL, coverArtURL string) (Track, error) {
	t := Track{
		ID:          strings.TrimSpace(id),
		Title:       strings.TrimSpace(title),
		AudioURL:    strings.TrimSpace(audioURL),
		CoverArtURL: strings.TrimSpace(coverArtURL),
	}
	if err := t.Validate(); err != nil {
		return Track{}, err
	}
	return t, nil
}

// Validate checks that all required fields are present.
func (t Track) Validate() error {
	if err := validate.Struct(t); err != nil {
		return errors.Mark(errors.Wrapf(err, "track %q", t.ID), ErrInvalidTrack)
	}
	return nil
}

// Same reports whether both tracks share the same identity.
func (t Track) Same(other Track) bool {
	return t.ID == other.ID
}

// HasCoverArt reports whether artwork is available.
func (t Track) HasCoverArt() bool {
	return t.CoverArtURL != ""
}
