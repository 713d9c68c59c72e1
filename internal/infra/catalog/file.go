// Package catalog loads beats from catalog files and audio directories.
package catalog

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/beatbox/internal/domain/beat"
)

// File is the on-disk catalog format.
type File struct {
	Beats []Entry `yaml:"beats" validate:"dive"`
}

// Entry is a single beat in a catalog file.
type Entry struct {
	ID              string    `yaml:"id" validate:"required"`
	Title           string    `yaml:"title" validate:"required"`
	BPM             int       `yaml:"bpm" validate:"gte=0,lte=999"`
	Genres          []string  `yaml:"genres"`
	Moods           []string  `yaml:"moods"`
	CoverArtURL     string    `yaml:"cover_art_url"`
	PreviewAudioURL string    `yaml:"preview_audio_url" validate:"required"`
	FullAudioURL    string    `yaml:"full_audio_url"`
	Active          *bool     `yaml:"active"` // Defaults to true
	CreatedAt       time.Time `yaml:"created_at"`
}

// Beat converts the entry.
func (e Entry) Beat() beat.Beat {
	active := true
	if e.Active != nil {
		active = *e.Active
	}
	return beat.Beat{
		ID:              e.ID,
		Title:           e.Title,
		BPM:             e.BPM,
		Genres:          beat.NormalizeGenres(e.Genres),
		Moods:           beat.NormalizeMoods(e.Moods),
		CoverArtURL:     e.CoverArtURL,
		PreviewAudioURL: e.PreviewAudioURL,
		FullAudioURL:    e.FullAudioURL,
		Active:          active,
		CreatedAt:       e.CreatedAt,
	}
}

// LoadFile reads beats from a YAML catalog file.
func LoadFile(path string) ([]beat.Beat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}
	return ParseFile(data)
}

// ParseFile parses beats from YAML catalog data.
func ParseFile(data []byte) ([]beat.Beat, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog file")
	}

	validate := validator.New()
	if err := validate.Struct(&f); err != nil {
		return nil, errors.Wrap(err, "catalog validation failed")
	}

	beats := make([]beat.Beat, 0, len(f.Beats))
	for _, e := range f.Beats {
		beats = append(beats, e.Beat())
	}
	return beats, nil
}

// Load collects beats from the catalog file and the scan directory.
// Either may be empty.
func Load(ctx context.Context, file, scanDir string, workers int) ([]beat.Beat, error) {
	var beats []beat.Beat

	if file != "" {
		fromFile, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		zlog.Info().Msgf("catalog file loaded: path=%s beats=%d", file, len(fromFile))
		beats = append(beats, fromFile...)
	}

	if scanDir != "" {
		scanned, err := NewScanner(workers).Scan(ctx, scanDir)
		if err != nil {
			return nil, err
		}
		zlog.Info().Msgf("catalog directory scanned: path=%s beats=%d", scanDir, len(scanned))
		beats = append(beats, scanned...)
	}

	return beats, nil
}
