package playback

import "time"

// OutputEventType represents an event emitted by the audio output.
type OutputEventType int

const (
	OutputTimeUpdate     OutputEventType = iota // Playback clock advanced
	OutputMetadataLoaded                        // Native duration became known
	OutputEnded                                 // Natural end of stream
	OutputError                                 // Load or decode failure
)

// String returns the string representation of the output event type.
func (e OutputEventType) String() string {
	switch e {
	case OutputTimeUpdate:
		return "time_update"
	case OutputMetadataLoaded:
		return "metadata_loaded"
	case OutputEnded:
		return "ended"
	case OutputError:
		return "error"
	default:
		return "unknown"
	}
}

// OutputEvent is emitted by an Output for the load generation it belongs to.
type OutputEvent struct {
	Type       OutputEventType
	Generation uint64        // Generation passed to Output.Load
	Position   time.Duration // OutputTimeUpdate
	Duration   time.Duration // OutputMetadataLoaded (native duration)
	Err        error         // OutputError
}

// Output is the single audio output resource owned by the coordinator.
//
// Load replaces whatever source was loaded before without starting playback.
// Implementations deliver events through Events and must never call back into
// the coordinator synchronously.
type Output interface {
	Load(generation uint64, url string) error
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	Unload() error
	Events() <-chan OutputEvent
	Close() error
}
