package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/domain/track"
)

// DefaultPreviewLimit is the preview window applied when none is configured.
const DefaultPreviewLimit = 90 * time.Second

// Errors
var (
	ErrInvalidTrack = track.ErrInvalidTrack
	ErrShutdown     = errors.New("coordinator is shut down")
)

// Config holds coordinator configuration.
type Config struct {
	PreviewLimit time.Duration // Maximum audible time per track
	EventBuffer  int           // Capacity of the observer event channel
}

// Coordinator owns the single audio output and guarantees that at most one
// track produces audio at any time.
type Coordinator struct {
	mu sync.Mutex

	out          Output
	previewLimit time.Duration

	// Current track state
	current  *track.Track
	playing  bool
	position time.Duration
	duration time.Duration

	// generation identifies the current load; output events carrying any
	// other generation belong to a superseded track.
	generation uint64
	// limitFired is set when the preview limit rewound the track and cleared
	// by the next time update below the limit, a seek, or a new load.
	limitFired bool

	// Local playback sources
	sourcesMu sync.RWMutex
	sources   map[string]LocalSource

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCoordinator creates a coordinator that exclusively owns out.
func NewCoordinator(out Output, cfg Config) *Coordinator {
	if cfg.PreviewLimit <= 0 {
		cfg.PreviewLimit = DefaultPreviewLimit
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		out:          out,
		previewLimit: cfg.PreviewLimit,
		sources:      make(map[string]LocalSource),
		eventCh:      make(chan Event, cfg.EventBuffer),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Events returns the observer event channel.
func (c *Coordinator) Events() <-chan Event {
	return c.eventCh
}

// PreviewLimit returns the configured preview window.
func (c *Coordinator) PreviewLimit() time.Duration {
	return c.previewLimit
}

// Play starts playback of t. If t is already the current track, playback
// resumes in place. Otherwise the previous track is stopped and unloaded and
// t is loaded into the shared output from position 0.
//
// Load failures are not returned: they leave the coordinator paused on t.
func (c *Coordinator) Play(t track.Track) error {
	if err := t.Validate(); err != nil {
		return err
	}

	// Local sources stop before the shared output starts.
	c.pauseSources("track_started")

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrShutdown
	}

	if c.current != nil && c.current.Same(t) {
		if !c.playing {
			c.resumeLocked()
		}
		return nil
	}

	c.loadLocked(t)
	return nil
}

// Pause stops output of the current track. The track stays current.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || !c.playing {
		return
	}
	c.pauseLocked()
	c.sendEventLocked(EventStateChanged, nil)
}

// TogglePlay pauses when playing and resumes without reload when paused.
func (c *Coordinator) TogglePlay() {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	if c.playing {
		c.pauseLocked()
		c.sendEventLocked(EventStateChanged, nil)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.pauseSources("track_resumed")

	c.mu.Lock()
	defer c.mu.Unlock()

	// State may have moved while sources were paused.
	if c.current == nil || c.playing || c.closed {
		return
	}
	c.resumeLocked()
}

// Seek moves the output to pos, clamped to [0, preview limit].
func (c *Coordinator) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	clamped := min(max(pos, 0), c.previewLimit)
	if err := c.out.Seek(clamped); err != nil {
		zlog.Warn().Msgf("playback: seek failed: track=%s position=%v error=%v", c.current.ID, clamped, err)
		return
	}
	c.position = clamped
	c.limitFired = false
	c.sendEventLocked(EventPositionChanged, nil)
}

// Close stops output, unloads the current track and returns to idle.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	if c.playing {
		if err := c.out.Pause(); err != nil {
			zlog.Warn().Msgf("playback: pause on close failed: %v", err)
		}
	}
	if err := c.out.Unload(); err != nil {
		zlog.Warn().Msgf("playback: unload failed: %v", err)
	}

	zlog.Debug().Msgf("playback: closed: track=%s", c.current.ID)

	// Late events from the unloaded track must not touch the idle state.
	c.generation++
	c.resetLocked()
	c.sendEventLocked(EventClosed, nil)
}

// Snapshot returns a copy of the current playback state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the current state machine state.
func (c *Coordinator) State() State {
	return c.Snapshot().State()
}

// HandleOutputEvent applies a single output event. Events are applied one at
// a time; events from a superseded load are ignored.
func (c *Coordinator) HandleOutputEvent(ev OutputEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || ev.Generation != c.generation {
		zlog.Debug().Msgf("playback: ignoring stale output event: type=%s generation=%d current=%d",
			ev.Type, ev.Generation, c.generation)
		return
	}

	switch ev.Type {
	case OutputTimeUpdate:
		c.onTimeUpdateLocked(ev.Position)

	case OutputMetadataLoaded:
		c.duration = min(max(ev.Duration, 0), c.previewLimit)
		zlog.Debug().Msgf("playback: metadata loaded: track=%s native=%v effective=%v",
			c.current.ID, ev.Duration, c.duration)
		c.sendEventLocked(EventDurationKnown, nil)

	case OutputEnded:
		c.onEndedLocked()

	case OutputError:
		err := ev.Err
		if err == nil {
			err = errors.New("output error")
		}
		c.failLocked(err)
	}
}

// Run drains the output event channel until ctx is done, the coordinator is
// shut down, or the output closes its channel.
func (c *Coordinator) Run(ctx context.Context) {
	events := c.out.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.HandleOutputEvent(ev)
		}
	}
}

// Shutdown stops the event loop, releases the output and closes the event
// channel. The coordinator cannot be used afterwards.
func (c *Coordinator) Shutdown() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.generation++
	c.resetLocked()
	close(c.eventCh)

	if err := c.out.Close(); err != nil {
		return errors.Wrap(err, "failed to close output")
	}
	return nil
}

// loadLocked replaces the current track with t and starts it.
// Must be called with lock held.
func (c *Coordinator) loadLocked(t track.Track) {
	if c.current != nil {
		prev := c.current.ID
		if c.playing {
			if err := c.out.Pause(); err != nil {
				zlog.Warn().Msgf("playback: pause before reload failed: track=%s error=%v", prev, err)
			}
		}
		if err := c.out.Unload(); err != nil {
			zlog.Warn().Msgf("playback: unload failed: track=%s error=%v", prev, err)
		}
	}

	c.generation++
	c.current = &t
	c.playing = false
	c.position = 0
	c.duration = 0
	c.limitFired = false

	zlog.Debug().Msgf("playback: loading track: track=%s url=%s generation=%d", t.ID, t.AudioURL, c.generation)

	if err := c.out.Load(c.generation, t.AudioURL); err != nil {
		c.failLocked(err)
		return
	}
	if err := c.out.Play(); err != nil {
		c.failLocked(err)
		return
	}

	c.playing = true
	c.sendEventLocked(EventTrackLoaded, nil)
}

// resumeLocked resumes output for the current track without reload.
// Must be called with lock held.
func (c *Coordinator) resumeLocked() {
	if err := c.out.Play(); err != nil {
		c.failLocked(err)
		return
	}
	c.playing = true
	c.sendEventLocked(EventStateChanged, nil)
}

// pauseLocked stops output and clears the playing flag.
// Must be called with lock held.
func (c *Coordinator) pauseLocked() {
	if err := c.out.Pause(); err != nil {
		zlog.Warn().Msgf("playback: pause failed: track=%s error=%v", c.current.ID, err)
	}
	c.playing = false
}

// onTimeUpdateLocked applies a time advance and enforces the preview limit.
// Must be called with lock held.
func (c *Coordinator) onTimeUpdateLocked(pos time.Duration) {
	if !c.playing {
		return
	}

	if pos >= c.previewLimit {
		if c.limitFired {
			return
		}
		c.limitFired = true
		c.pauseLocked()
		if err := c.out.Seek(0); err != nil {
			zlog.Warn().Msgf("playback: rewind failed: track=%s error=%v", c.current.ID, err)
		}
		c.position = 0
		zlog.Info().Msgf("playback: preview limit reached: track=%s limit=%v", c.current.ID, c.previewLimit)
		c.sendEventLocked(EventPreviewLimit, nil)
		return
	}

	c.limitFired = false
	c.position = max(pos, 0)
	c.sendEventLocked(EventPositionChanged, nil)
}

// onEndedLocked handles the natural end of a track shorter than the limit.
// Must be called with lock held.
func (c *Coordinator) onEndedLocked() {
	c.playing = false
	c.position = 0
	c.limitFired = false
	if err := c.out.Seek(0); err != nil {
		zlog.Debug().Msgf("playback: rewind after end failed: track=%s error=%v", c.current.ID, err)
	}
	zlog.Debug().Msgf("playback: track ended: track=%s", c.current.ID)
	c.sendEventLocked(EventTrackEnded, nil)
}

// failLocked reflects a load failure in state; the failed track stays current.
// Must be called with lock held.
func (c *Coordinator) failLocked(err error) {
	c.playing = false
	zlog.Warn().Msgf("playback: load failed: track=%s error=%v", c.current.ID, err)
	c.sendEventLocked(EventLoadFailed, err)
}

// resetLocked returns all fields to their idle values.
// Must be called with lock held.
func (c *Coordinator) resetLocked() {
	c.current = nil
	c.playing = false
	c.position = 0
	c.duration = 0
	c.limitFired = false
}

// snapshotLocked copies the current state.
// Must be called with lock held.
func (c *Coordinator) snapshotLocked() Snapshot {
	s := Snapshot{
		Playing:      c.playing,
		Position:     c.position,
		Duration:     c.duration,
		PreviewLimit: c.previewLimit,
	}
	if c.current != nil {
		t := *c.current
		s.Track = &t
	}
	return s
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Coordinator) sendEventLocked(typ EventType, err error) {
	if c.closed {
		return
	}
	e := Event{Type: typ, Snapshot: c.snapshotLocked(), Err: err}
	select {
	case c.eventCh <- e:
		// Successfully sent
	case <-c.ctx.Done():
		// Shut down, don't send
	default:
		// Channel full, drop event
		zlog.Debug().Msgf("playback: event channel full, dropping event: type=%s", typ)
	}
}
