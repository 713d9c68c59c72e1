package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/domain/beat"
	"github.com/osa030/beatbox/internal/infra/audio"
)

// beatNamespace derives stable beat IDs from file paths.
var beatNamespace = uuid.MustParse("6f1c9a52-3c1e-4d0b-9a57-0f4e8f1b7c21")

// bpmKeys are raw tag keys that may carry the tempo.
var bpmKeys = []string{"TBPM", "TBP", "bpm", "BPM"}

// Scanner turns a directory of audio files into beats using a worker pool.
type Scanner struct {
	workers int
}

// NewScanner creates a scanner.
func NewScanner(workers int) *Scanner {
	if workers <= 0 {
		workers = 4
	}
	return &Scanner{workers: workers}
}

// Scan walks dir and returns one active beat per supported audio file,
// ordered by path. Unreadable files are skipped.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]beat.Beat, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", dir)
	}

	var paths []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && audio.IsSupported(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", dir)
	}

	files := make(chan string)
	results := make(chan beat.Beat, len(paths))

	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range files {
				b, err := readBeat(p)
				if err != nil {
					zlog.Warn().Msgf("catalog: skipping file: path=%s error=%v", p, err)
					continue
				}
				results <- b
			}
		}()
	}

feed:
	for _, p := range paths {
		select {
		case files <- p:
		case <-ctx.Done():
			break feed
		}
	}
	close(files)
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "scan cancelled")
	}

	beats := make([]beat.Beat, 0, len(paths))
	for b := range results {
		beats = append(beats, b)
	}
	slices.SortFunc(beats, func(a, b beat.Beat) int {
		return strings.Compare(a.PreviewAudioURL, b.PreviewAudioURL)
	})
	return beats, nil
}

// readBeat builds a beat from a file's tags, falling back to its name.
func readBeat(path string) (beat.Beat, error) {
	f, err := os.Open(path)
	if err != nil {
		return beat.Beat{}, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return beat.Beat{}, errors.Wrap(err, "failed to stat file")
	}

	b := beat.Beat{
		ID:              uuid.NewSHA1(beatNamespace, []byte(path)).String(),
		Title:           titleFromName(path),
		PreviewAudioURL: path,
		Active:          true,
		CreatedAt:       info.ModTime().UTC(),
	}

	m, err := tag.ReadFrom(f)
	if err != nil {
		// No tags: keep the file name.
		return b, nil
	}

	if t := strings.TrimSpace(m.Title()); t != "" {
		b.Title = t
	}
	if g := m.Genre(); g != "" {
		b.Genres = beat.NormalizeGenres(splitLabels(g))
	}
	b.BPM = bpmFromTags(m.Raw())
	return b, nil
}

func titleFromName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func splitLabels(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '/'
	})
}

func bpmFromTags(raw map[string]any) int {
	for _, k := range bpmKeys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && f > 0 {
			return int(f + 0.5)
		}
	}
	return 0
}
