package track

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		title    string
		audioURL string
		cover    string
		wantErr  bool
	}{
		{
			name:     "valid track",
			id:       "t1",
			title:    "Beat One",
			audioURL: "a.mp3",
			wantErr:  false,
		},
		{
			name:     "valid track with cover",
			id:       "t2",
			title:    "Beat Two",
			audioURL: "https://cdn.example.com/b.mp3",
			cover:    "https://cdn.example.com/b.jpg",
			wantErr:  false,
		},
		{
			name:     "missing id",
			title:    "Beat",
			audioURL: "a.mp3",
			wantErr:  true,
		},
		{
			name:     "blank id",
			id:       "   ",
			title:    "Beat",
			audioURL: "a.mp3",
			wantErr:  true,
		},
		{
			name:     "missing title",
			id:       "t1",
			audioURL: "a.mp3",
			wantErr:  true,
		},
		{
			name:    "missing audio url",
			id:      "t1",
			title:   "Beat",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.id, tt.title, tt.audioURL, tt.cover)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTrack))
				assert.Equal(t, Track{}, tr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, tr.ID)
			assert.Equal(t, tt.title, tr.Title)
			assert.Equal(t, tt.audioURL, tr.AudioURL)
			assert.Equal(t, tt.cover != "", tr.HasCoverArt())
		})
	}
}

func TestNew_TrimsFields(t *testing.T) {
	tr, err := New(" t1 ", " Beat One ", " a.mp3 ", "")
	require.NoError(t, err)
	assert.Equal(t, "t1", tr.ID)
	assert.Equal(t, "Beat One", tr.Title)
	assert.Equal(t, "a.mp3", tr.AudioURL)
}

func TestTrack_Same(t *testing.T) {
	a := Track{ID: "t1", Title: "A", AudioURL: "a.mp3"}
	b := Track{ID: "t1", Title: "A (remaster)", AudioURL: "a2.mp3"}
	c := Track{ID: "t2", Title: "A", AudioURL: "a.mp3"}

	assert.True(t, a.Same(b), "identity is the ID only")
	assert.False(t, a.Same(c))
}

func TestTrack_Validate(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		wantErr bool
	}{
		{name: "valid", track: Track{ID: "t1", Title: "A", AudioURL: "a.mp3"}},
		{name: "blank id", track: Track{ID: "  ", Title: "A", AudioURL: "a.mp3"}, wantErr: true},
		{name: "blank title", track: Track{ID: "t1", Title: "\t", AudioURL: "a.mp3"}, wantErr: true},
		{name: "blank audio url", track: Track{ID: "t1", Title: "A", AudioURL: " \n"}, wantErr: true},
		{name: "blank cover allowed", track: Track{ID: "t1", Title: "A", AudioURL: "a.mp3", CoverArtURL: " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.track.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidTrack))
				return
			}
			assert.NoError(t, err)
		})
	}
}
