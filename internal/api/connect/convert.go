package connect

import (
	"time"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/app/catalog"
	"github.com/osa030/beatbox/internal/domain/beat"
)

// toBeatMessage converts a beat for listeners. The full-length asset is
// never part of a public message.
func toBeatMessage(b beat.Beat) *beatv1.Beat {
	p := b.Public()
	msg := &beatv1.Beat{
		ID:              p.ID,
		Title:           p.Title,
		BPM:             int32(p.BPM),
		Genres:          make([]string, 0, len(p.Genres)),
		Moods:           make([]string, 0, len(p.Moods)),
		CoverArtURL:     p.CoverArtURL,
		PreviewAudioURL: p.PreviewAudioURL,
		Active:          p.Active,
	}
	for _, g := range p.Genres {
		msg.Genres = append(msg.Genres, string(g))
	}
	for _, m := range p.Moods {
		msg.Moods = append(msg.Moods, string(m))
	}
	if !p.CreatedAt.IsZero() {
		msg.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return msg
}

// toAdminBeatMessage converts a beat for administrators.
func toAdminBeatMessage(b beat.Beat) *beatv1.Beat {
	msg := toBeatMessage(b)
	msg.FullAudioURL = b.FullAudioURL
	return msg
}

// fromCreateRequest builds a new beat; beats are listed unless Active is
// explicitly false.
func fromCreateRequest(m *beatv1.CreateBeatRequest) beat.Beat {
	active := true
	if m.Active != nil {
		active = *m.Active
	}
	return beat.Beat{
		ID:              m.ID,
		Title:           m.Title,
		BPM:             int(m.BPM),
		Genres:          beat.NormalizeGenres(m.Genres),
		Moods:           beat.NormalizeMoods(m.Moods),
		CoverArtURL:     m.CoverArtURL,
		PreviewAudioURL: m.PreviewAudioURL,
		FullAudioURL:    m.FullAudioURL,
		Active:          active,
	}
}

func toPatch(m *beatv1.UpdateBeatRequest) catalog.Patch {
	p := catalog.Patch{
		Title:           m.Title,
		Genres:          m.Genres,
		Moods:           m.Moods,
		CoverArtURL:     m.CoverArtURL,
		PreviewAudioURL: m.PreviewAudioURL,
		FullAudioURL:    m.FullAudioURL,
		Active:          m.Active,
	}
	if m.BPM != nil {
		bpm := int(*m.BPM)
		p.BPM = &bpm
	}
	return p
}
