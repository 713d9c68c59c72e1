// Package playback provides the shared single-track playback coordinator.
package playback

import (
	"time"

	"github.com/osa030/beatbox/internal/domain/track"
)

// State represents the coordinator state.
type State int

const (
	StateIdle    State = iota // No current track
	StatePaused               // Track loaded, not producing audio
	StatePlaying              // Track loaded, producing audio
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of the playback state.
type Snapshot struct {
	Track        *track.Track  // Current track (nil when idle)
	Playing      bool          // Output is producing audio
	Position     time.Duration // Elapsed time within the preview window
	Duration     time.Duration // min(native duration, preview limit); 0 until known
	PreviewLimit time.Duration // Preview window length
}

// State derives the state machine state from the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.Track == nil:
		return StateIdle
	case s.Playing:
		return StatePlaying
	default:
		return StatePaused
	}
}

// TrackID returns the current track ID, or "" when idle.
func (s Snapshot) TrackID() string {
	if s.Track == nil {
		return ""
	}
	return s.Track.ID
}
