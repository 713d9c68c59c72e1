package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/app/catalog"
	"github.com/osa030/beatbox/internal/app/filter"
	"github.com/osa030/beatbox/internal/app/notification"
	"github.com/osa030/beatbox/internal/app/playback"
	"github.com/osa030/beatbox/internal/domain/beat"
)

// nullOutput accepts every command and never emits events by itself.
type nullOutput struct {
	mu     sync.Mutex
	loaded []string
	events chan playback.OutputEvent
}

func (o *nullOutput) Load(_ uint64, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loaded = append(o.loaded, url)
	return nil
}
func (o *nullOutput) Play() error                         { return nil }
func (o *nullOutput) Pause() error                        { return nil }
func (o *nullOutput) Seek(time.Duration) error            { return nil }
func (o *nullOutput) Position() time.Duration             { return 0 }
func (o *nullOutput) Duration() time.Duration             { return 0 }
func (o *nullOutput) Unload() error                       { return nil }
func (o *nullOutput) Events() <-chan playback.OutputEvent { return o.events }
func (o *nullOutput) Close() error                        { return nil }

type chanStream struct {
	ch chan *beatv1.Notification
}

func (s *chanStream) Send(n *beatv1.Notification) error {
	s.ch <- n
	return nil
}

// next returns the next notification of the given type.
func (s *chanStream) next(t *testing.T, typ beatv1.NotificationType) *beatv1.Notification {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-s.ch:
			if n.Type == typ {
				return n
			}
		case <-deadline:
			t.Fatalf("no %s notification received", typ)
			return nil
		}
	}
}

func newTestManager(t *testing.T) (*Manager, *nullOutput) {
	t.Helper()
	chain, err := filter.Build(nil, nil)
	require.NoError(t, err)
	store := catalog.NewStore(chain, catalog.Config{})
	require.NoError(t, store.Load([]beat.Beat{
		{ID: "b1", Title: "One", BPM: 90, PreviewAudioURL: "one.mp3", FullAudioURL: "one.wav", Active: true},
		{ID: "b2", Title: "Two", BPM: 120, PreviewAudioURL: "two.mp3", Active: true},
		{ID: "b3", Title: "Hidden", BPM: 100, PreviewAudioURL: "three.mp3", Active: false},
	}))

	out := &nullOutput{events: make(chan playback.OutputEvent, 8)}
	m := NewManager(Config{PreviewLimit: 90 * time.Second}, store, out)
	t.Cleanup(m.Close)
	return m, out
}

func TestManager_NotRunning(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.PlayBeat(context.Background(), "b1")
	assert.True(t, errors.Is(err, ErrSessionNotRunning))

	_, err = m.Pause()
	assert.True(t, errors.Is(err, ErrSessionNotRunning))
}

func TestManager_StartTwice(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, errors.Is(m.Start(context.Background()), ErrSessionRunning))
}

func TestManager_PlayBeat(t *testing.T) {
	m, out := newTestManager(t)
	require.NoError(t, m.Start(context.Background()))

	s, err := m.PlayBeat(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", s.TrackID())
	assert.True(t, s.Playing)
	assert.Equal(t, []string{"one.mp3"}, out.loaded, "preview asset only")

	_, err = m.PlayBeat(context.Background(), "b3")
	assert.True(t, errors.Is(err, catalog.ErrBeatInactive))

	_, err = m.PlayBeat(context.Background(), "nope")
	assert.True(t, errors.Is(err, catalog.ErrBeatNotFound))

	assert.Equal(t, "b1", m.Status().TrackID(), "failed requests leave playback untouched")
}

func TestManager_Operations(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Start(context.Background()))

	_, err := m.PlayBeat(context.Background(), "b1")
	require.NoError(t, err)

	s, err := m.Seek(200 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, s.Position)

	s, err = m.Pause()
	require.NoError(t, err)
	assert.Equal(t, playback.StatePaused, s.State())

	s, err = m.TogglePlay()
	require.NoError(t, err)
	assert.Equal(t, playback.StatePlaying, s.State())

	was, s, err := m.Relinquish()
	require.NoError(t, err)
	assert.True(t, was)
	assert.False(t, s.Playing)

	s, err = m.ClosePlayer()
	require.NoError(t, err)
	assert.Equal(t, playback.StateIdle, s.State())
}

func TestManager_BroadcastsEvents(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Start(context.Background()))

	stream := &chanStream{ch: make(chan *beatv1.Notification, 32)}
	_, unsubscribe := m.Subscribe(stream, notification.Options{})
	defer unsubscribe()

	_, err := m.PlayBeat(context.Background(), "b2")
	require.NoError(t, err)

	n := stream.next(t, beatv1.NotificationTypeTrackLoaded)
	require.NotNil(t, n.State)
	assert.Equal(t, "b2", n.State.TrackID)
	assert.Equal(t, beatv1.PlaybackStatusPlaying, n.State.Status)
	assert.Equal(t, int64(90000), n.State.PreviewLimitMs)

	_, err = m.ClosePlayer()
	require.NoError(t, err)
	n = stream.next(t, beatv1.NotificationTypeClosed)
	assert.Equal(t, beatv1.PlaybackStatusIdle, n.State.Status)
}

func TestManager_LocalPlayerPausedOnSharedPlayback(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Start(context.Background()))

	local := &chanStream{ch: make(chan *beatv1.Notification, 32)}
	_, unsubscribe := m.Subscribe(local, notification.Options{LocalPlayer: true, TrackID: "b2"})

	_, err := m.PlayBeat(context.Background(), "b1")
	require.NoError(t, err)

	n := local.next(t, beatv1.NotificationTypePauseLocal)
	assert.Equal(t, "track_started", n.Reason)

	unsubscribe()
	assert.Equal(t, 0, m.GetNotificationManager().SubscriberCount())
}

func TestManager_LocalPlayerJoinsWhileSharedPlayerBusy(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Start(context.Background()))

	_, err := m.PlayBeat(context.Background(), "b1")
	require.NoError(t, err)

	local := &chanStream{ch: make(chan *beatv1.Notification, 32)}
	_, unsubscribe := m.Subscribe(local, notification.Options{LocalPlayer: true, TrackID: "b2"})
	defer unsubscribe()

	n := local.next(t, beatv1.NotificationTypePauseLocal)
	assert.Equal(t, "shared_player_active", n.Reason)
}

func TestManager_Close(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Start(context.Background()))

	m.Close()
	m.Close()

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
	_, err := m.PlayBeat(context.Background(), "b1")
	assert.True(t, errors.Is(err, ErrSessionNotRunning))
}

func TestStateMessage(t *testing.T) {
	idle := StateMessage(playback.Snapshot{PreviewLimit: 90 * time.Second})
	assert.Equal(t, beatv1.PlaybackStatusIdle, idle.Status)
	assert.Empty(t, idle.TrackID)
	assert.Equal(t, int64(90000), idle.PreviewLimitMs)

	assert.Equal(t, beatv1.NotificationTypePreviewLimit, NotificationType(playback.EventPreviewLimit))
	assert.Equal(t, beatv1.NotificationTypeState, NotificationType(playback.EventDurationKnown))
}
