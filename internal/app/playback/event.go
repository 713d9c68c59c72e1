package playback

// EventType represents a coordinator event type.
type EventType int

const (
	EventTrackLoaded     EventType = iota // A new track replaced the previous one
	EventStateChanged                     // Play/pause/resume
	EventPositionChanged                  // Time advance or seek
	EventDurationKnown                    // Metadata loaded
	EventPreviewLimit                     // Preview window reached, rewound to 0
	EventTrackEnded                       // Natural end of a short track
	EventLoadFailed                       // Output could not load or start the track
	EventClosed                           // Coordinator returned to idle
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackLoaded:
		return "track_loaded"
	case EventStateChanged:
		return "state_changed"
	case EventPositionChanged:
		return "position_changed"
	case EventDurationKnown:
		return "duration_known"
	case EventPreviewLimit:
		return "preview_limit"
	case EventTrackEnded:
		return "track_ended"
	case EventLoadFailed:
		return "load_failed"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is emitted after every applied state transition.
type Event struct {
	Type     EventType
	Snapshot Snapshot // State after the transition
	Err      error    // Set for EventLoadFailed
}
