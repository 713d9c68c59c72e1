package beat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeat_HasGenreAndMood(t *testing.T) {
	b := &Beat{
		ID:     "b1",
		Genres: []Genre{GenreTrap, GenreDrill},
		Moods:  []Mood{MoodDark},
	}

	tests := []struct {
		name     string
		check    func() bool
		expected bool
	}{
		{"genre present", func() bool { return b.HasGenre("Trap") }, true},
		{"genre case-insensitive", func() bool { return b.HasGenre("drill") }, true},
		{"genre with spaces", func() bool { return b.HasGenre(" Trap ") }, true},
		{"genre absent", func() bool { return b.HasGenre("Pop") }, false},
		{"mood present", func() bool { return b.HasMood("Sombre") }, true},
		{"mood absent", func() bool { return b.HasMood("Chill") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.check())
		})
	}
}

func TestBeat_Track(t *testing.T) {
	b := &Beat{
		ID:              "b1",
		Title:           "Night Drive",
		PreviewAudioURL: "previews/b1.mp3",
		FullAudioURL:    "full/b1.wav",
		CoverArtURL:     "covers/b1.jpg",
	}

	tr, err := b.Track()
	require.NoError(t, err)
	assert.Equal(t, "b1", tr.ID)
	assert.Equal(t, "Night Drive", tr.Title)
	assert.Equal(t, "previews/b1.mp3", tr.AudioURL, "preview asset only")
	assert.Equal(t, "covers/b1.jpg", tr.CoverArtURL)
}

func TestBeat_Track_MissingPreview(t *testing.T) {
	b := &Beat{ID: "b1", Title: "No Preview", FullAudioURL: "full/b1.wav"}

	_, err := b.Track()
	assert.Error(t, err)
}

func TestBeat_Public(t *testing.T) {
	b := &Beat{
		ID:           "b1",
		FullAudioURL: "full/b1.wav",
		Genres:       []Genre{GenreTrap},
	}

	p := b.Public()
	assert.Empty(t, p.FullAudioURL)
	assert.Equal(t, "full/b1.wav", b.FullAudioURL, "original untouched")

	p.Genres[0] = GenrePop
	assert.Equal(t, GenreTrap, b.Genres[0], "slices are copied")
}

func TestNormalizeLabels(t *testing.T) {
	genres := NormalizeGenres([]string{" Trap", "", "Trap", "Afro-House"})
	assert.Equal(t, []Genre{GenreTrap, "Afro-House"}, genres)

	moods := NormalizeMoods([]string{"Chill ", "  ", "Chill"})
	assert.Equal(t, []Mood{MoodChill}, moods)
}
