package audio

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// maxRemoteSize bounds the size of a fetched preview.
const maxRemoteSize = 64 << 20

// Opener resolves audio locators to seekable readers.
//
// Accepted locators are plain paths (relative paths resolve against BaseDir),
// file:// URLs and http(s):// URLs. Remote audio is fetched fully into memory
// so decoders can seek.
type Opener struct {
	BaseDir string
	Client  *http.Client
}

// NewOpener creates an opener.
func NewOpener(baseDir string, timeout time.Duration) *Opener {
	return &Opener{
		BaseDir: baseDir,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Open returns a reader for locator and the extension used to pick a decoder.
func (o *Opener) Open(ctx context.Context, locator string) (io.ReadSeekCloser, string, error) {
	u, err := url.Parse(locator)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return o.fetch(ctx, u)
		case "file":
			return o.openFile(u.Path)
		}
	}
	return o.openFile(locator)
}

func (o *Opener) openFile(p string) (io.ReadSeekCloser, string, error) {
	if !filepath.IsAbs(p) && o.BaseDir != "" {
		p = filepath.Join(o.BaseDir, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to open %s", p)
	}
	return f, filepath.Ext(p), nil
}

func (o *Opener) fetch(ctx context.Context, u *url.URL) (io.ReadSeekCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to build request")
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to fetch %s", u.Redacted())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Newf("failed to fetch %s: status %d", u.Redacted(), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to read %s", u.Redacted())
	}
	if len(data) > maxRemoteSize {
		return nil, "", errors.Newf("audio at %s exceeds %d bytes", u.Redacted(), maxRemoteSize)
	}

	ext := path.Ext(u.Path)
	if !IsSupported(ext) {
		ext = extFromContentType(resp.Header.Get("Content-Type"))
	}
	zlog.Debug().Msgf("audio: fetched %s: bytes=%d ext=%s", u.Redacted(), len(data), ext)
	return &memFile{Reader: bytes.NewReader(data)}, ext, nil
}

func extFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch strings.ToLower(mt) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return ".wav"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	default:
		return ""
	}
}

// memFile is an in-memory io.ReadSeekCloser.
type memFile struct {
	*bytes.Reader
}

func (m *memFile) Close() error { return nil }
