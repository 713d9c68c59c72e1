package session

import (
	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/app/playback"
)

// StateMessage converts a playback snapshot to its wire form.
func StateMessage(s playback.Snapshot) *beatv1.PlaybackState {
	msg := &beatv1.PlaybackState{
		Status:         PlaybackStatus(s.State()),
		Playing:        s.Playing,
		PositionMs:     s.Position.Milliseconds(),
		DurationMs:     s.Duration.Milliseconds(),
		PreviewLimitMs: s.PreviewLimit.Milliseconds(),
	}
	if s.Track != nil {
		msg.TrackID = s.Track.ID
		msg.Title = s.Track.Title
		msg.CoverArtURL = s.Track.CoverArtURL
	}
	return msg
}

// PlaybackStatus converts a coordinator state to its wire form.
func PlaybackStatus(st playback.State) beatv1.PlaybackStatus {
	switch st {
	case playback.StatePlaying:
		return beatv1.PlaybackStatusPlaying
	case playback.StatePaused:
		return beatv1.PlaybackStatusPaused
	default:
		return beatv1.PlaybackStatusIdle
	}
}

// NotificationType maps a coordinator event to a notification type.
func NotificationType(t playback.EventType) beatv1.NotificationType {
	switch t {
	case playback.EventTrackLoaded:
		return beatv1.NotificationTypeTrackLoaded
	case playback.EventPositionChanged:
		return beatv1.NotificationTypePosition
	case playback.EventPreviewLimit:
		return beatv1.NotificationTypePreviewLimit
	case playback.EventTrackEnded:
		return beatv1.NotificationTypeTrackEnded
	case playback.EventLoadFailed:
		return beatv1.NotificationTypeLoadFailed
	case playback.EventClosed:
		return beatv1.NotificationTypeClosed
	default:
		return beatv1.NotificationTypeState
	}
}
