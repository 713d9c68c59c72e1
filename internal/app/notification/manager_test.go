package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
)

type recordingStream struct {
	mu    sync.Mutex
	got   []*beatv1.Notification
	err   error
	block chan struct{}
}

func (s *recordingStream) Send(n *beatv1.Notification) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, n)
	return nil
}

func (s *recordingStream) received() []*beatv1.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*beatv1.Notification(nil), s.got...)
}

func TestManager_SubscribeUnsubscribe(t *testing.T) {
	m := NewManager()

	id1 := m.Subscribe(&recordingStream{}, Options{})
	id2 := m.Subscribe(&recordingStream{}, Options{LocalPlayer: true, TrackID: "b1"})
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, m.SubscriberCount())
	assert.Equal(t, 1, m.LocalPlayerCount())

	m.Unsubscribe(id2)
	assert.Equal(t, 1, m.SubscriberCount())
	assert.Equal(t, 0, m.LocalPlayerCount())

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestManager_Broadcast(t *testing.T) {
	m := NewManager()
	a, b := &recordingStream{}, &recordingStream{}
	m.Subscribe(a, Options{})
	m.Subscribe(b, Options{})

	require.NoError(t, m.Broadcast(&beatv1.Notification{Type: beatv1.NotificationTypeState}))
	require.NoError(t, m.Broadcast(&beatv1.Notification{Type: beatv1.NotificationTypeClosed}))

	for _, s := range []*recordingStream{a, b} {
		got := s.received()
		require.Len(t, got, 2)
		assert.Equal(t, uint64(1), got[0].SequenceNo)
		assert.Equal(t, uint64(2), got[1].SequenceNo)
		assert.Equal(t, beatv1.NotificationTypeClosed, got[1].Type)
	}
}

func TestManager_BroadcastSkipsFailingAndSlowSubscribers(t *testing.T) {
	m := NewManager()
	m.SetSendTimeout(20 * time.Millisecond)

	ok := &recordingStream{}
	failing := &recordingStream{err: errors.New("stream closed")}
	slow := &recordingStream{block: make(chan struct{})}
	defer close(slow.block)

	m.Subscribe(ok, Options{})
	m.Subscribe(failing, Options{})
	m.Subscribe(slow, Options{})

	start := time.Now()
	require.NoError(t, m.Broadcast(&beatv1.Notification{Type: beatv1.NotificationTypeState}))
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, ok.received(), 1)
}

func TestManager_Send(t *testing.T) {
	m := NewManager()
	s := &recordingStream{}
	id := m.Subscribe(s, Options{})

	require.NoError(t, m.Send(id, &beatv1.Notification{Type: beatv1.NotificationTypeState}))
	assert.Len(t, s.received(), 1)

	assert.NoError(t, m.Send("unknown", &beatv1.Notification{}), "unknown subscribers are ignored")
}

func TestLocalSource_PauseLocal(t *testing.T) {
	m := NewManager()
	s := &recordingStream{}
	id := m.Subscribe(s, Options{LocalPlayer: true, TrackID: "b2"})

	src := m.LocalSource(id)
	assert.Equal(t, id, src.SourceID())

	src.PauseLocal("track_started")

	assert.Eventually(t, func() bool { return len(s.received()) == 1 }, time.Second, 5*time.Millisecond)
	n := s.received()[0]
	assert.Equal(t, beatv1.NotificationTypePauseLocal, n.Type)
	assert.Equal(t, "track_started", n.Reason)
	assert.NotZero(t, n.SequenceNo)
}
