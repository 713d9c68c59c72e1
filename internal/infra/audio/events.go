package audio

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/app/playback"
)

const eventBufferSize = 64

var (
	// ErrNotLoaded is returned when a command needs a loaded source.
	ErrNotLoaded = errors.New("no audio loaded")
	// ErrClosed is returned after the output has been closed.
	ErrClosed = errors.New("audio output closed")
)

// trySend delivers ev without blocking; a full buffer drops the event.
// The caller guarantees ch is still open.
func trySend(ch chan playback.OutputEvent, ev playback.OutputEvent) {
	select {
	case ch <- ev:
	default:
		zlog.Warn().Msgf("audio: event dropped: type=%s generation=%d", ev.Type, ev.Generation)
	}
}

// probe decodes the audio at locator only to learn its native duration.
func probe(ctx context.Context, opener *Opener, locator string) (time.Duration, error) {
	r, ext, err := opener.Open(ctx, locator)
	if err != nil {
		return 0, err
	}
	streamer, format, err := Decode(r, ext)
	if err != nil {
		r.Close()
		return 0, errors.Wrapf(err, "failed to decode %s", locator)
	}
	defer streamer.Close()
	return streamDuration(streamer, format), nil
}

// startWallClockTicker calls fn every interval until the returned cancel
// func is called.
func startWallClockTicker(interval time.Duration, fn func(now time.Time)) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(toWallTime(time.Now()))
			}
		}
	}()

	return cancel
}

// toWallTime returns the time with monotonic clock stripped.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
