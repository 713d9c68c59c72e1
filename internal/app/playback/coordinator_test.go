package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/beatbox/internal/domain/track"
)

// fakeOutput records calls and lets tests drive output events by hand.
type fakeOutput struct {
	mu sync.Mutex

	url        string
	generation uint64
	audible    bool
	pos        time.Duration
	dur        time.Duration

	loads   []string
	plays   int
	pauses  int
	seeks   []time.Duration
	unloads int
	closed  bool

	loadErr error
	playErr error

	events chan OutputEvent
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{events: make(chan OutputEvent, 16)}
}

func (f *fakeOutput) Load(generation uint64, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, url)
	if f.loadErr != nil {
		return f.loadErr
	}
	f.url = url
	f.generation = generation
	f.pos = 0
	return nil
}

func (f *fakeOutput) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	if f.playErr != nil {
		return f.playErr
	}
	f.audible = true
	return nil
}

func (f *fakeOutput) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.audible = false
	return nil
}

func (f *fakeOutput) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, pos)
	f.pos = pos
	return nil
}

func (f *fakeOutput) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeOutput) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dur
}

func (f *fakeOutput) Unload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloads++
	f.url = ""
	f.audible = false
	return nil
}

func (f *fakeOutput) Events() <-chan OutputEvent {
	return f.events
}

func (f *fakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeSource is a local playback source.
type fakeSource struct {
	id     string
	mu     sync.Mutex
	paused []string
}

func (s *fakeSource) SourceID() string { return s.id }

func (s *fakeSource) PauseLocal(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = append(s.paused, reason)
}

func (s *fakeSource) pauseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paused)
}

func mustTrack(t *testing.T, id string) track.Track {
	t.Helper()
	tr, err := track.New(id, "Beat "+id, id+".mp3", "")
	require.NoError(t, err)
	return tr
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeOutput) {
	t.Helper()
	out := newFakeOutput()
	c := NewCoordinator(out, Config{PreviewLimit: 90 * time.Second})
	t.Cleanup(func() { _ = c.Shutdown() })
	return c, out
}

// gen returns the generation of the current load.
func gen(c *Coordinator) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func tick(c *Coordinator, pos time.Duration) {
	c.HandleOutputEvent(OutputEvent{Type: OutputTimeUpdate, Generation: gen(c), Position: pos})
}

func TestNewCoordinator_Defaults(t *testing.T) {
	c := NewCoordinator(newFakeOutput(), Config{})
	defer c.Shutdown()

	assert.Equal(t, DefaultPreviewLimit, c.PreviewLimit())
	assert.Equal(t, StateIdle, c.State())

	s := c.Snapshot()
	assert.Nil(t, s.Track)
	assert.False(t, s.Playing)
	assert.Zero(t, s.Position)
	assert.Zero(t, s.Duration)
}

func TestCoordinator_Play_NewTrack(t *testing.T) {
	c, out := newTestCoordinator(t)

	require.NoError(t, c.Play(mustTrack(t, "t1")))

	s := c.Snapshot()
	require.NotNil(t, s.Track)
	assert.Equal(t, "t1", s.Track.ID)
	assert.True(t, s.Playing)
	assert.Zero(t, s.Position)
	assert.Zero(t, s.Duration)
	assert.Equal(t, StatePlaying, s.State())
	assert.Equal(t, []string{"t1.mp3"}, out.loads)
	assert.True(t, out.audible)
}

func TestCoordinator_Play_InvalidTrack(t *testing.T) {
	c, out := newTestCoordinator(t)

	for _, tr := range []track.Track{
		{ID: "t1"},
		{ID: "   ", Title: "Blank", AudioURL: "a.mp3"},
		{ID: "t1", Title: "Blank URL", AudioURL: "  "},
	} {
		err := c.Play(tr)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTrack))
	}
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, out.loads)
}

// Starting B replaces A; A is no longer audible.
func TestCoordinator_MutualExclusion(t *testing.T) {
	c, out := newTestCoordinator(t)

	require.NoError(t, c.Play(mustTrack(t, "A")))
	require.NoError(t, c.Play(mustTrack(t, "B")))

	s := c.Snapshot()
	assert.Equal(t, "B", s.TrackID())
	assert.True(t, s.Playing)
	assert.Equal(t, "B.mp3", out.url, "single output now holds B only")
	assert.True(t, out.audible)
	assert.Equal(t, 1, out.unloads, "A was unloaded before B was loaded")
	assert.Equal(t, []string{"A.mp3", "B.mp3"}, out.loads)
}

// Resume without reload keeps the position.
func TestCoordinator_ResumeWithoutReload(t *testing.T) {
	c, out := newTestCoordinator(t)
	a := mustTrack(t, "A")

	require.NoError(t, c.Play(a))
	tick(c, 12*time.Second)
	c.Pause()

	s := c.Snapshot()
	assert.False(t, s.Playing)
	assert.Equal(t, "A", s.TrackID(), "pause keeps the track")
	assert.Equal(t, 12*time.Second, s.Position)

	require.NoError(t, c.Play(a))

	s = c.Snapshot()
	assert.True(t, s.Playing)
	assert.Equal(t, 12*time.Second, s.Position)
	assert.Len(t, out.loads, 1, "no reload")
	assert.Equal(t, 0, out.unloads)
}

func TestCoordinator_Play_SameTrackWhilePlaying(t *testing.T) {
	c, out := newTestCoordinator(t)
	a := mustTrack(t, "A")

	require.NoError(t, c.Play(a))
	tick(c, 5*time.Second)
	require.NoError(t, c.Play(a))

	assert.Equal(t, 5*time.Second, c.Snapshot().Position)
	assert.Len(t, out.loads, 1)
	assert.Equal(t, 1, out.plays)
}

// The preview limit fires exactly once per crossing.
func TestCoordinator_PreviewLimit(t *testing.T) {
	c, out := newTestCoordinator(t)

	require.NoError(t, c.Play(mustTrack(t, "A")))
	c.HandleOutputEvent(OutputEvent{Type: OutputMetadataLoaded, Generation: gen(c), Duration: 150 * time.Second})
	assert.Equal(t, 90*time.Second, c.Snapshot().Duration)

	tick(c, 89*time.Second)
	assert.Equal(t, 89*time.Second, c.Snapshot().Position)

	tick(c, 90*time.Second)
	s := c.Snapshot()
	assert.False(t, s.Playing)
	assert.Zero(t, s.Position)
	assert.Equal(t, "A", s.TrackID())
	assert.False(t, out.audible)
	assert.Equal(t, []time.Duration{0}, out.seeks)

	pausesAfterLimit := out.pauses
	for _, p := range []time.Duration{90 * time.Second, 90100 * time.Millisecond, 90200 * time.Millisecond} {
		tick(c, p)
	}
	assert.Equal(t, pausesAfterLimit, out.pauses, "no repeated trigger")
	assert.Equal(t, []time.Duration{0}, out.seeks, "no repeated rewind")
	assert.Zero(t, c.Snapshot().Position)
}

func TestCoordinator_PreviewLimit_StaleTickAfterResume(t *testing.T) {
	c, out := newTestCoordinator(t)

	require.NoError(t, c.Play(mustTrack(t, "A")))
	tick(c, 90*time.Second)
	c.TogglePlay()
	require.True(t, c.Snapshot().Playing)

	// A tick queued before the rewind arrives after the resume.
	tick(c, 90050*time.Millisecond)
	s := c.Snapshot()
	assert.True(t, s.Playing)
	assert.Zero(t, s.Position)
	assert.Len(t, out.seeks, 1)

	// A fresh crossing fires again.
	tick(c, 1*time.Second)
	tick(c, 91*time.Second)
	s = c.Snapshot()
	assert.False(t, s.Playing)
	assert.Zero(t, s.Position)
	assert.Len(t, out.seeks, 2)
}

// A short track ends naturally without the clamp.
func TestCoordinator_ShortTrackEnds(t *testing.T) {
	c, out := newTestCoordinator(t)

	require.NoError(t, c.Play(mustTrack(t, "A")))
	c.HandleOutputEvent(OutputEvent{Type: OutputMetadataLoaded, Generation: gen(c), Duration: 40 * time.Second})
	assert.Equal(t, 40*time.Second, c.Snapshot().Duration)

	tick(c, 39*time.Second)
	c.HandleOutputEvent(OutputEvent{Type: OutputEnded, Generation: gen(c)})

	s := c.Snapshot()
	assert.False(t, s.Playing)
	assert.Zero(t, s.Position)
	assert.Equal(t, "A", s.TrackID())
	assert.Equal(t, 40*time.Second, s.Duration)
	assert.Equal(t, 0, out.pauses, "clamp did not fire")
}

// Seek is clamped to the preview window.
func TestCoordinator_SeekClamp(t *testing.T) {
	tests := []struct {
		name     string
		target   time.Duration
		expected time.Duration
	}{
		{"within window", 30 * time.Second, 30 * time.Second},
		{"beyond limit", 500 * time.Second, 90 * time.Second},
		{"exact limit", 90 * time.Second, 90 * time.Second},
		{"negative", -5 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCoordinator(t)
			require.NoError(t, c.Play(mustTrack(t, "A")))

			c.Seek(tt.target)

			assert.Equal(t, tt.expected, c.Snapshot().Position)
			assert.Equal(t, tt.expected, out.Position())
		})
	}
}

func TestCoordinator_SeekToLimitThenTick(t *testing.T) {
	c, _ := newTestCoordinator(t)
	require.NoError(t, c.Play(mustTrack(t, "A")))

	c.Seek(500 * time.Second)
	tick(c, 90*time.Second)

	s := c.Snapshot()
	assert.False(t, s.Playing)
	assert.Zero(t, s.Position)
}

// Close resets fully from any state.
func TestCoordinator_Close(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Coordinator)
	}{
		{"from idle", func(c *Coordinator) {}},
		{"from playing", func(c *Coordinator) {
			_ = c.Play(track.Track{ID: "A", Title: "A", AudioURL: "A.mp3"})
			tick(c, 10*time.Second)
		}},
		{"from paused", func(c *Coordinator) {
			_ = c.Play(track.Track{ID: "A", Title: "A", AudioURL: "A.mp3"})
			c.HandleOutputEvent(OutputEvent{Type: OutputMetadataLoaded, Generation: gen(c), Duration: time.Minute})
			c.Pause()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCoordinator(t)
			tt.setup(c)

			c.Close()

			s := c.Snapshot()
			assert.Nil(t, s.Track)
			assert.False(t, s.Playing)
			assert.Zero(t, s.Position)
			assert.Zero(t, s.Duration)
			assert.Equal(t, StateIdle, s.State())
		})
	}
}

func TestCoordinator_Close_UnloadsOutput(t *testing.T) {
	c, out := newTestCoordinator(t)
	require.NoError(t, c.Play(mustTrack(t, "A")))

	c.Close()

	assert.False(t, out.audible)
	assert.Empty(t, out.url)
	assert.Equal(t, 1, out.unloads)
}

// Idle operations are no-ops.
func TestCoordinator_IdleNoOps(t *testing.T) {
	c, out := newTestCoordinator(t)
	before := c.Snapshot()

	assert.NotPanics(t, func() {
		c.Pause()
		c.TogglePlay()
		c.Seek(30 * time.Second)
	})

	assert.Equal(t, before, c.Snapshot())
	assert.Zero(t, out.pauses)
	assert.Zero(t, out.plays)
	assert.Empty(t, out.seeks)
}

func TestCoordinator_TogglePlay(t *testing.T) {
	c, out := newTestCoordinator(t)
	require.NoError(t, c.Play(mustTrack(t, "A")))
	tick(c, 3*time.Second)

	c.TogglePlay()
	assert.Equal(t, StatePaused, c.State())
	assert.False(t, out.audible)

	c.TogglePlay()
	assert.Equal(t, StatePlaying, c.State())
	assert.True(t, out.audible)
	assert.Equal(t, 3*time.Second, c.Snapshot().Position)
	assert.Len(t, out.loads, 1)
}

// Browse, preview, switch and close in one session.
func TestCoordinator_Scenario(t *testing.T) {
	c, _ := newTestCoordinator(t)
	t1, err := track.New("t1", "Beat One", "a.mp3", "")
	require.NoError(t, err)

	require.NoError(t, c.Play(t1))
	s := c.Snapshot()
	assert.Equal(t, "t1", s.TrackID())
	assert.True(t, s.Playing)
	assert.Zero(t, s.Position)

	c.HandleOutputEvent(OutputEvent{Type: OutputMetadataLoaded, Generation: gen(c), Duration: 200 * time.Second})
	assert.Equal(t, 90*time.Second, c.Snapshot().Duration)

	tick(c, 89900*time.Millisecond)
	assert.Equal(t, 89900*time.Millisecond, c.Snapshot().Position)

	tick(c, 90*time.Second)
	s = c.Snapshot()
	assert.False(t, s.Playing)
	assert.Zero(t, s.Position)

	c.TogglePlay()
	s = c.Snapshot()
	assert.True(t, s.Playing)
	assert.Zero(t, s.Position, "resumes from the rewound position")
}

func TestCoordinator_StaleEventsIgnored(t *testing.T) {
	c, _ := newTestCoordinator(t)

	require.NoError(t, c.Play(mustTrack(t, "A")))
	genA := gen(c)
	require.NoError(t, c.Play(mustTrack(t, "B")))
	c.HandleOutputEvent(OutputEvent{Type: OutputMetadataLoaded, Generation: gen(c), Duration: 60 * time.Second})

	// Late events from A.
	c.HandleOutputEvent(OutputEvent{Type: OutputMetadataLoaded, Generation: genA, Duration: 30 * time.Second})
	c.HandleOutputEvent(OutputEvent{Type: OutputTimeUpdate, Generation: genA, Position: 20 * time.Second})
	c.HandleOutputEvent(OutputEvent{Type: OutputEnded, Generation: genA})
	c.HandleOutputEvent(OutputEvent{Type: OutputError, Generation: genA, Err: errors.New("boom")})

	s := c.Snapshot()
	assert.Equal(t, "B", s.TrackID())
	assert.True(t, s.Playing)
	assert.Equal(t, 60*time.Second, s.Duration)
	assert.Zero(t, s.Position)
}

func TestCoordinator_EventsAfterCloseIgnored(t *testing.T) {
	c, _ := newTestCoordinator(t)
	require.NoError(t, c.Play(mustTrack(t, "A")))
	g := gen(c)

	c.Close()
	c.HandleOutputEvent(OutputEvent{Type: OutputTimeUpdate, Generation: g, Position: 5 * time.Second})

	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, c.Snapshot().Position)
}

func TestCoordinator_LoadFailure(t *testing.T) {
	t.Run("synchronous load error", func(t *testing.T) {
		c, out := newTestCoordinator(t)
		out.loadErr = errors.New("unsupported format")

		require.NoError(t, c.Play(mustTrack(t, "A")), "load failures are not returned")

		s := c.Snapshot()
		assert.Equal(t, "A", s.TrackID(), "failed track stays current")
		assert.False(t, s.Playing)
	})

	t.Run("play error", func(t *testing.T) {
		c, out := newTestCoordinator(t)
		out.playErr = errors.New("device busy")

		require.NoError(t, c.Play(mustTrack(t, "A")))

		s := c.Snapshot()
		assert.Equal(t, "A", s.TrackID())
		assert.False(t, s.Playing)
	})

	t.Run("asynchronous error event", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		require.NoError(t, c.Play(mustTrack(t, "A")))

		c.HandleOutputEvent(OutputEvent{Type: OutputError, Generation: gen(c), Err: errors.New("network")})

		s := c.Snapshot()
		assert.Equal(t, "A", s.TrackID())
		assert.False(t, s.Playing)
	})

	t.Run("retry is caller driven", func(t *testing.T) {
		c, out := newTestCoordinator(t)
		out.playErr = errors.New("device busy")
		require.NoError(t, c.Play(mustTrack(t, "A")))
		assert.Equal(t, 1, out.plays, "no automatic retry")

		out.playErr = nil
		require.NoError(t, c.Play(mustTrack(t, "A")))
		assert.True(t, c.Snapshot().Playing)
	})
}

func TestCoordinator_LocalSources(t *testing.T) {
	c, _ := newTestCoordinator(t)
	detail := &fakeSource{id: "detail-page"}
	unregister := c.Register(detail)
	assert.Equal(t, 1, c.SourceCount())

	require.NoError(t, c.Play(mustTrack(t, "A")))
	assert.Equal(t, 1, detail.pauseCount(), "local source paused before shared playback")

	c.Pause()
	c.TogglePlay()
	assert.Equal(t, 2, detail.pauseCount(), "resume pauses local sources too")

	unregister()
	assert.Equal(t, 0, c.SourceCount())
	require.NoError(t, c.Play(mustTrack(t, "B")))
	assert.Equal(t, 2, detail.pauseCount())
}

func TestCoordinator_RelinquishAndHolds(t *testing.T) {
	c, out := newTestCoordinator(t)

	assert.False(t, c.Relinquish(), "nothing to relinquish when idle")
	assert.False(t, c.Holds("A"))

	require.NoError(t, c.Play(mustTrack(t, "A")))
	assert.True(t, c.Holds("B"), "a local player for B must pause")
	assert.False(t, c.Holds("A"), "same track is not a conflict")

	assert.True(t, c.Relinquish())
	assert.False(t, out.audible)
	s := c.Snapshot()
	assert.Equal(t, "A", s.TrackID())
	assert.False(t, s.Playing)
	assert.False(t, c.Holds("B"))
	assert.False(t, c.Relinquish())
}

func TestCoordinator_Events(t *testing.T) {
	c, _ := newTestCoordinator(t)

	require.NoError(t, c.Play(mustTrack(t, "A")))
	c.HandleOutputEvent(OutputEvent{Type: OutputMetadataLoaded, Generation: gen(c), Duration: 120 * time.Second})
	tick(c, 90*time.Second)
	c.Close()

	var types []EventType
	for len(c.Events()) > 0 {
		types = append(types, (<-c.Events()).Type)
	}
	assert.Equal(t, []EventType{EventTrackLoaded, EventDurationKnown, EventPreviewLimit, EventClosed}, types)
}

func TestCoordinator_Run(t *testing.T) {
	c, out := newTestCoordinator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.NoError(t, c.Play(mustTrack(t, "A")))
	out.events <- OutputEvent{Type: OutputMetadataLoaded, Generation: gen(c), Duration: 30 * time.Second}
	out.events <- OutputEvent{Type: OutputTimeUpdate, Generation: gen(c), Position: 4 * time.Second}

	assert.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.Duration == 30*time.Second && s.Position == 4*time.Second
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCoordinator_Shutdown(t *testing.T) {
	out := newFakeOutput()
	c := NewCoordinator(out, Config{})
	require.NoError(t, c.Play(mustTrack(t, "A")))

	require.NoError(t, c.Shutdown())
	require.NoError(t, c.Shutdown(), "idempotent")

	assert.True(t, out.closed)
	assert.Equal(t, StateIdle, c.State())
	assert.ErrorIs(t, c.Play(mustTrack(t, "B")), ErrShutdown)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "unknown", State(42).String())
}
