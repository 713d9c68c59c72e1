package notification

import (
	zlog "github.com/rs/zerolog/log"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
)

// LocalSource exposes a local-player subscription to the playback coordinator.
// PauseLocal delivers a PAUSE_LOCAL notification asynchronously.
type LocalSource struct {
	m  *Manager
	id string
}

// LocalSource returns the local source for a subscription.
func (m *Manager) LocalSource(subscriptionID string) *LocalSource {
	return &LocalSource{m: m, id: subscriptionID}
}

// SourceID returns the subscription ID.
func (s *LocalSource) SourceID() string {
	return s.id
}

// PauseLocal asks the subscriber to stop its own output.
func (s *LocalSource) PauseLocal(reason string) {
	n := &beatv1.Notification{
		Type:       beatv1.NotificationTypePauseLocal,
		SequenceNo: s.m.NextSequenceNo(),
		Reason:     reason,
	}
	go func() {
		if err := s.m.Send(s.id, n); err != nil {
			zlog.Debug().Msgf("notification: pause local failed: id=%s error=%v", s.id, err)
		}
	}()
}
