// Package session provides the listening session manager.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/app/catalog"
	"github.com/osa030/beatbox/internal/app/notification"
	"github.com/osa030/beatbox/internal/app/playback"
)

var (
	ErrSessionNotRunning = errors.New("session is not running")
	ErrSessionRunning    = errors.New("session is already running")
)

// Config holds session configuration.
type Config struct {
	PreviewLimit time.Duration
	SendTimeout  time.Duration
}

// Manager manages the listening session: the catalog, the shared playback
// coordinator, and the notification subscribers.
type Manager struct {
	mu sync.RWMutex

	// Components
	catalog      *catalog.Store
	playback     *playback.Coordinator
	notification *notification.Manager

	running bool

	// Channels
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	loops     sync.WaitGroup
}

// NewManager creates a new session manager owning out.
func NewManager(cfg Config, store *catalog.Store, out playback.Output) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	notif := notification.NewManager()
	notif.SetSendTimeout(cfg.SendTimeout)

	return &Manager{
		catalog: store,
		playback: playback.NewCoordinator(out, playback.Config{
			PreviewLimit: cfg.PreviewLimit,
		}),
		notification: notif,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// Start starts the coordinator loop and the notification forwarding loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrSessionRunning
	}
	select {
	case <-m.done:
		return ErrSessionNotRunning
	default:
	}

	m.running = true

	m.loops.Add(2)
	go func() {
		defer m.loops.Done()
		m.playback.Run(ctx)
	}()
	go func() {
		defer m.loops.Done()
		m.playbackLoop()
	}()

	zlog.Info().Msgf("session started: beats=%d preview_limit=%v", m.catalog.Len(), m.playback.PreviewLimit())
	return nil
}

// Done returns a channel closed when the session is closed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Catalog returns the beat catalog.
func (m *Manager) Catalog() *catalog.Store {
	return m.catalog
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

// PlayBeat resolves an active beat and plays its preview.
func (m *Manager) PlayBeat(ctx context.Context, beatID string) (playback.Snapshot, error) {
	if err := m.ensureRunning(); err != nil {
		return playback.Snapshot{}, err
	}

	b, err := m.catalog.GetActive(beatID)
	if err != nil {
		return playback.Snapshot{}, err
	}
	t, err := b.Track()
	if err != nil {
		return playback.Snapshot{}, errors.Wrapf(err, "beat %s", beatID)
	}

	zlog.Info().Msgf("play requested: beat_id=%s title=%s", b.ID, b.Title)
	if err := m.playback.Play(t); err != nil {
		return playback.Snapshot{}, err
	}
	return m.playback.Snapshot(), nil
}

// Pause pauses the current track.
func (m *Manager) Pause() (playback.Snapshot, error) {
	if err := m.ensureRunning(); err != nil {
		return playback.Snapshot{}, err
	}
	m.playback.Pause()
	return m.playback.Snapshot(), nil
}

// TogglePlay toggles between playing and paused.
func (m *Manager) TogglePlay() (playback.Snapshot, error) {
	if err := m.ensureRunning(); err != nil {
		return playback.Snapshot{}, err
	}
	m.playback.TogglePlay()
	return m.playback.Snapshot(), nil
}

// Seek moves the current track to pos.
func (m *Manager) Seek(pos time.Duration) (playback.Snapshot, error) {
	if err := m.ensureRunning(); err != nil {
		return playback.Snapshot{}, err
	}
	m.playback.Seek(pos)
	return m.playback.Snapshot(), nil
}

// ClosePlayer unloads the current track and returns the player to idle.
func (m *Manager) ClosePlayer() (playback.Snapshot, error) {
	if err := m.ensureRunning(); err != nil {
		return playback.Snapshot{}, err
	}
	m.playback.Close()
	return m.playback.Snapshot(), nil
}

// Relinquish pauses the shared player on behalf of a local player.
func (m *Manager) Relinquish() (bool, playback.Snapshot, error) {
	if err := m.ensureRunning(); err != nil {
		return false, playback.Snapshot{}, err
	}
	was := m.playback.Relinquish()
	return was, m.playback.Snapshot(), nil
}

// PreviewLimit returns the preview window applied to every track.
func (m *Manager) PreviewLimit() time.Duration {
	return m.playback.PreviewLimit()
}

// Status returns the current playback state.
func (m *Manager) Status() playback.Snapshot {
	return m.playback.Snapshot()
}

// Subscribe registers a notification stream. Local players are also
// registered with the coordinator so they are paused when shared playback
// starts. The returned function removes the subscription.
func (m *Manager) Subscribe(stream notification.Stream, opts notification.Options) (string, func()) {
	id := m.notification.Subscribe(stream, opts)

	unregister := func() {}
	if opts.LocalPlayer {
		unregister = m.playback.Register(m.notification.LocalSource(id))
		if opts.TrackID != "" && m.playback.Holds(opts.TrackID) {
			// The shared player is busy with another beat.
			m.notification.LocalSource(id).PauseLocal("shared_player_active")
		}
	}

	return id, func() {
		unregister()
		m.notification.Unsubscribe(id)
	}
}

// Close closes the session manager.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		if err := m.playback.Shutdown(); err != nil {
			zlog.Error().Msgf("failed to shut down playback: %v", err)
		}
		m.loops.Wait()
		m.notification.Close()

		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(m.done)
		zlog.Info().Msg("session closed")
	})
}

func (m *Manager) ensureRunning() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.running {
		return ErrSessionNotRunning
	}
	return nil
}

// playbackLoop forwards coordinator events to subscribers.
func (m *Manager) playbackLoop() {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("playback loop panicked: %v", r)
			// Restart loop to keep subscribers informed
			zlog.Info().Msg("restarting playback loop")
			m.loops.Add(1)
			go func() {
				defer m.loops.Done()
				m.playbackLoop()
			}()
		}
	}()

	events := m.playback.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.handlePlaybackEvent(event)
		}
	}
}

// handlePlaybackEvent broadcasts a coordinator event.
func (m *Manager) handlePlaybackEvent(event playback.Event) {
	if event.Type != playback.EventPositionChanged {
		zlog.Info().Msgf("playback event: type=%s track=%s state=%s",
			event.Type, event.Snapshot.TrackID(), event.Snapshot.State())
	}

	n := &beatv1.Notification{
		Type:  NotificationType(event.Type),
		State: StateMessage(event.Snapshot),
	}
	if event.Err != nil {
		n.Error = event.Err.Error()
	}
	if err := m.notification.Broadcast(n); err != nil {
		zlog.Error().Msgf("failed to broadcast %s: %v", n.Type, err)
	}
}
