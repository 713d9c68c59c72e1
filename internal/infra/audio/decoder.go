// Package audio provides playback outputs backed by faiface/beep.
package audio

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// ErrUnsupportedFormat is returned for audio formats without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// SupportedFormats returns the list of supported file extensions.
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// IsSupported checks if a file format is supported.
func IsSupported(path string) bool {
	return slices.Contains(SupportedFormats(), strings.ToLower(filepath.Ext(path)))
}

// Decode decodes an audio stream based on its extension.
func Decode(r io.ReadSeekCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
}

// streamDuration returns the native length of a decoded stream.
func streamDuration(s beep.StreamSeekCloser, f beep.Format) time.Duration {
	return f.SampleRate.D(s.Len())
}
