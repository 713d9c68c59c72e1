package audio

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/app/playback"
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker initializes the process-wide speaker once.
func initSpeaker(sr beep.SampleRate, buffer time.Duration) error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sr, sr.N(buffer))
	})
	return speakerErr
}

// SpeakerOutput plays audio through the host's sound device.
//
// Sources are decoded in the background after Load. Play and Seek issued
// before decoding finishes are applied once the stream is ready.
type SpeakerOutput struct {
	mu         sync.Mutex
	opener     *Opener
	tick       time.Duration
	sampleRate beep.SampleRate
	events     chan playback.OutputEvent

	generation  uint64
	loaded      bool
	wantPlay    bool
	pendingSeek time.Duration
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	queued      bool // ctrl is on the speaker mixer
	duration    time.Duration
	closed      bool

	cancelTicker context.CancelFunc
	cancelLoad   context.CancelFunc
}

var _ playback.Output = (*SpeakerOutput)(nil)

// NewSpeakerOutput initializes the speaker and creates an output.
func NewSpeakerOutput(opener *Opener, tick time.Duration, sampleRate int, buffer time.Duration) (*SpeakerOutput, error) {
	sr := beep.SampleRate(sampleRate)
	if err := initSpeaker(sr, buffer); err != nil {
		return nil, errors.Wrap(err, "failed to initialize speaker")
	}
	return &SpeakerOutput{
		opener:     opener,
		tick:       tick,
		sampleRate: sr,
		events:     make(chan playback.OutputEvent, eventBufferSize),
	}, nil
}

// Load replaces the current source and starts decoding it.
func (o *SpeakerOutput) Load(generation uint64, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	o.unloadLocked()

	o.generation = generation
	o.loaded = true

	ctx, cancel := context.WithCancel(context.Background())
	o.cancelLoad = cancel
	go o.decode(ctx, generation, url)
	return nil
}

func (o *SpeakerOutput) decode(ctx context.Context, generation uint64, url string) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	r, ext, err := o.opener.Open(ctx, url)
	if err == nil {
		streamer, format, err = Decode(r, ext)
		if err != nil {
			r.Close()
			err = errors.Wrapf(err, "failed to decode %s", url)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || !o.loaded || o.generation != generation {
		if streamer != nil {
			streamer.Close()
		}
		return
	}
	if err != nil {
		// Play reports ErrNotLoaded until the next Load.
		o.wantPlay = false
		o.loaded = false
		o.pendingSeek = 0
		o.stopTickerLocked()
		trySend(o.events, playback.OutputEvent{
			Type:       playback.OutputError,
			Generation: generation,
			Err:        err,
		})
		return
	}

	o.streamer = streamer
	o.format = format
	o.duration = streamDuration(streamer, format)

	var source beep.Streamer = streamer
	if format.SampleRate != o.sampleRate {
		source = beep.Resample(4, format.SampleRate, o.sampleRate, streamer)
	}
	o.ctrl = &beep.Ctrl{Streamer: source, Paused: true}

	if o.pendingSeek > 0 {
		if err := o.seekLocked(o.pendingSeek); err != nil {
			zlog.Warn().Msgf("audio: deferred seek failed: generation=%d error=%v", generation, err)
		}
		o.pendingSeek = 0
	}

	zlog.Debug().Msgf("audio: speaker source ready: generation=%d duration=%v sample_rate=%d",
		generation, o.duration, format.SampleRate)
	trySend(o.events, playback.OutputEvent{
		Type:       playback.OutputMetadataLoaded,
		Generation: generation,
		Duration:   o.duration,
	})

	if o.wantPlay {
		o.startLocked()
	}
}

// Play starts or resumes playback.
func (o *SpeakerOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if !o.loaded {
		return ErrNotLoaded
	}
	if o.wantPlay && o.cancelTicker != nil {
		return nil
	}
	o.wantPlay = true
	if o.ctrl != nil {
		o.startLocked()
	}
	return nil
}

// Pause pauses playback.
func (o *SpeakerOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	o.wantPlay = false
	o.stopTickerLocked()
	if o.ctrl != nil {
		speaker.Lock()
		o.ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

// Seek moves playback to pos, clamped to the stream bounds.
func (o *SpeakerOutput) Seek(pos time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if !o.loaded {
		return ErrNotLoaded
	}
	if o.streamer == nil {
		o.pendingSeek = max(pos, 0)
		return nil
	}
	return o.seekLocked(pos)
}

// Position returns the stream position.
func (o *SpeakerOutput) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.positionLocked()
}

// Duration returns the native duration, or 0 while decoding.
func (o *SpeakerOutput) Duration() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.duration
}

// Unload stops playback and releases the current stream.
func (o *SpeakerOutput) Unload() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unloadLocked()
	return nil
}

// Events returns the output event channel.
func (o *SpeakerOutput) Events() <-chan playback.OutputEvent {
	return o.events
}

// Close releases the stream and closes the event channel.
func (o *SpeakerOutput) Close() error {
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

// startLocked queues the stream if needed, unpauses it and starts reporting.
// Must be called with lock held.
func (o *SpeakerOutput) startLocked() {
	if !o.queued {
		generation := o.generation
		// The callback runs on the speaker goroutine with the speaker locked.
		speaker.Play(beep.Seq(o.ctrl, beep.Callback(func() {
			go o.onEnded(generation)
		})))
		o.queued = true
	}

	speaker.Lock()
	o.ctrl.Paused = false
	speaker.Unlock()

	if o.cancelTicker == nil {
		generation := o.generation
		o.cancelTicker = startWallClockTicker(o.tick, func(time.Time) {
			o.onTick(generation)
		})
	}
}

func (o *SpeakerOutput) onTick(generation uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || o.generation != generation || o.cancelTicker == nil {
		return
	}
	trySend(o.events, playback.OutputEvent{
		Type:       playback.OutputTimeUpdate,
		Generation: generation,
		Position:   o.positionLocked(),
	})
}

func (o *SpeakerOutput) onEnded(generation uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || o.generation != generation || o.ctrl == nil {
		return
	}
	o.queued = false
	o.wantPlay = false
	o.stopTickerLocked()
	trySend(o.events, playback.OutputEvent{
		Type:       playback.OutputEnded,
		Generation: generation,
	})
}

// seekLocked must be called with lock held and a decoded stream.
func (o *SpeakerOutput) seekLocked(pos time.Duration) error {
	speaker.Lock()
	defer speaker.Unlock()

	n := o.format.SampleRate.N(max(pos, 0))
	n = min(n, max(o.streamer.Len()-1, 0))
	if err := o.streamer.Seek(n); err != nil {
		return errors.Wrap(err, "failed to seek")
	}
	return nil
}

// positionLocked must be called with lock held.
func (o *SpeakerOutput) positionLocked() time.Duration {
	if o.streamer == nil {
		return o.pendingSeek
	}
	speaker.Lock()
	defer speaker.Unlock()
	return o.format.SampleRate.D(o.streamer.Position())
}

// stopTickerLocked must be called with lock held.
func (o *SpeakerOutput) stopTickerLocked() {
	if o.cancelTicker != nil {
		o.cancelTicker()
		o.cancelTicker = nil
	}
}

// unloadLocked must be called with lock held.
func (o *SpeakerOutput) unloadLocked() {
	o.stopTickerLocked()
	if o.cancelLoad != nil {
		o.cancelLoad()
		o.cancelLoad = nil
	}
	if o.ctrl != nil {
		speaker.Clear()
	}
	if o.streamer != nil {
		if err := o.streamer.Close(); err != nil {
			zlog.Debug().Msgf("audio: stream close failed: generation=%d error=%v", o.generation, err)
		}
	}
	o.streamer = nil
	o.ctrl = nil
	o.queued = false
	o.loaded = false
	o.wantPlay = false
	o.pendingSeek = 0
	o.duration = 0
}
