package audio

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/app/playback"
)

// ClockOutput is a silent output driven by the wall clock.
//
// It decodes the source once to learn its duration and then advances a
// virtual playhead. It is used on headless hosts and in tests.
type ClockOutput struct {
	mu     sync.Mutex
	opener *Opener
	tick   time.Duration
	events chan playback.OutputEvent

	generation uint64
	loaded     bool
	duration   time.Duration
	playing    bool
	startTime  time.Time     // Wall time at which position 0 would have played
	position   time.Duration // Position while not playing
	closed     bool

	cancelTicker context.CancelFunc
	cancelProbe  context.CancelFunc
}

var _ playback.Output = (*ClockOutput)(nil)

// NewClockOutput creates a clock output that reports every tick.
func NewClockOutput(opener *Opener, tick time.Duration) *ClockOutput {
	return &ClockOutput{
		opener: opener,
		tick:   tick,
		events: make(chan playback.OutputEvent, eventBufferSize),
	}
}

// Load replaces the current source. The duration is reported asynchronously.
func (o *ClockOutput) Load(generation uint64, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	o.unloadLocked()

	o.generation = generation
	o.loaded = true

	ctx, cancel := context.WithCancel(context.Background())
	o.cancelProbe = cancel
	go o.probe(ctx, generation, url)
	return nil
}

func (o *ClockOutput) probe(ctx context.Context, generation uint64, url string) {
	d, err := probe(ctx, o.opener, url)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || !o.loaded || o.generation != generation {
		return
	}
	if err != nil {
		// A failed source cannot be played; Play reports ErrNotLoaded until
		// the next Load.
		o.stopLocked()
		o.loaded = false
		o.position = 0
		trySend(o.events, playback.OutputEvent{
			Type:       playback.OutputError,
			Generation: generation,
			Err:        err,
		})
		return
	}

	o.duration = d
	zlog.Debug().Msgf("audio: clock source ready: generation=%d duration=%v", generation, d)
	trySend(o.events, playback.OutputEvent{
		Type:       playback.OutputMetadataLoaded,
		Generation: generation,
		Duration:   d,
	})
}

// Play starts or resumes the playhead.
func (o *ClockOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if !o.loaded {
		return ErrNotLoaded
	}
	if o.playing {
		return nil
	}

	o.playing = true
	o.startTime = toWallTime(time.Now()).Add(-o.position)
	generation := o.generation
	o.cancelTicker = startWallClockTicker(o.tick, func(now time.Time) {
		o.onTick(generation, now)
	})
	return nil
}

func (o *ClockOutput) onTick(generation uint64, now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || !o.playing || o.generation != generation {
		return
	}

	pos := now.Sub(o.startTime)
	if o.duration > 0 && pos >= o.duration {
		o.position = o.duration
		o.stopLocked()
		trySend(o.events, playback.OutputEvent{
			Type:       playback.OutputEnded,
			Generation: generation,
		})
		return
	}

	trySend(o.events, playback.OutputEvent{
		Type:       playback.OutputTimeUpdate,
		Generation: generation,
		Position:   pos,
	})
}

// Pause freezes the playhead.
func (o *ClockOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.playing {
		o.position = o.positionLocked()
		o.stopLocked()
	}
	return nil
}

// Seek moves the playhead, clamped to the known duration.
func (o *ClockOutput) Seek(pos time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if !o.loaded {
		return ErrNotLoaded
	}

	pos = max(pos, 0)
	if o.duration > 0 {
		pos = min(pos, o.duration)
	}
	o.position = pos
	if o.playing {
		o.startTime = toWallTime(time.Now()).Add(-pos)
	}
	return nil
}

// Position returns the current playhead.
func (o *ClockOutput) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.positionLocked()
}

// Duration returns the native duration, or 0 while unknown.
func (o *ClockOutput) Duration() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.duration
}

// Unload releases the current source.
func (o *ClockOutput) Unload() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unloadLocked()
	return nil
}

// Events returns the output event channel.
func (o *ClockOutput) Events() <-chan playback.OutputEvent {
	return o.events
}

// Close releases the output and closes the event channel.
func (o *ClockOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.unloadLocked()
	o.closed = true
	close(o.events)
	return nil
}

// positionLocked must be called with lock held.
func (o *ClockOutput) positionLocked() time.Duration {
	if !o.playing {
		return o.position
	}
	pos := toWallTime(time.Now()).Sub(o.startTime)
	if o.duration > 0 {
		pos = min(pos, o.duration)
	}
	return pos
}

// stopLocked stops the ticker. Must be called with lock held.
func (o *ClockOutput) stopLocked() {
	o.playing = false
	if o.cancelTicker != nil {
		o.cancelTicker()
		o.cancelTicker = nil
	}
}

// unloadLocked must be called with lock held.
func (o *ClockOutput) unloadLocked() {
	o.stopLocked()
	if o.cancelProbe != nil {
		o.cancelProbe()
		o.cancelProbe = nil
	}
	o.loaded = false
	o.duration = 0
	o.position = 0
}
