package audio

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/app/playback"
)

// Output kinds accepted by New.
const (
	KindClock   = "clock"
	KindSpeaker = "speaker"
)

// Settings configures an output. Keys come from playback.settings.
type Settings struct {
	BaseDir        string `mapstructure:"base_dir"`
	TickMs         int    `mapstructure:"tick_ms" default:"250" validate:"gte=10,lte=5000"`
	SampleRate     int    `mapstructure:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs       int    `mapstructure:"buffer_ms" default:"100" validate:"gte=10,lte=2000"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" default:"30" validate:"gte=1,lte=600"`
}

// ParseSettings decodes raw settings, applies defaults and validates them.
func ParseSettings(raw map[string]any) (Settings, error) {
	var s Settings

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return s, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return s, errors.Wrap(err, "failed to decode output settings")
	}
	if err := defaults.Set(&s); err != nil {
		return s, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(&s); err != nil {
		return s, errors.Wrap(err, "output settings validation failed")
	}
	return s, nil
}

// New creates the output of the given kind.
func New(kind string, raw map[string]any) (playback.Output, error) {
	s, err := ParseSettings(raw)
	if err != nil {
		return nil, err
	}

	opener := NewOpener(s.BaseDir, time.Duration(s.HTTPTimeoutSec)*time.Second)
	tick := time.Duration(s.TickMs) * time.Millisecond

	zlog.Debug().Msgf("creating audio output: kind=%s settings=%+v", kind, s)
	switch kind {
	case KindClock:
		return NewClockOutput(opener, tick), nil
	case KindSpeaker:
		out, err := NewSpeakerOutput(opener, tick, s.SampleRate, time.Duration(s.BufferMs)*time.Millisecond)
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, errors.Newf("unsupported output kind: %s", kind)
	}
}
