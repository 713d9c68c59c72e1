// Package catalog provides the in-memory beat catalog and its search.
package catalog

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/app/filter"
	"github.com/osa030/beatbox/internal/domain/beat"
)

// Default paging and ordering
const (
	DefaultPageSize    = 12
	DefaultMaxPageSize = 100
	DefaultOrderBy     = "-created_at"
)

// Errors
var (
	ErrBeatNotFound  = errors.New("beat not found")
	ErrBeatInactive  = errors.New("beat is not active")
	ErrInvalidBeat   = errors.New("invalid beat")
	ErrDuplicateBeat = errors.New("duplicate beat id")
	ErrInvalidQuery  = errors.New("invalid query")
)

// Patch holds the fields of an update; nil fields are left unchanged.
type Patch struct {
	Title           *string
	BPM             *int
	Genres          *[]string
	Moods           *[]string
	CoverArtURL     *string
	PreviewAudioURL *string
	FullAudioURL    *string
	Active          *bool
}

// Query is a paged catalog search.
type Query struct {
	filter.Query
	Page    int    // 0-based page index
	Limit   int    // Page size, 0 for the configured default
	OrderBy string // title | bpm | created_at, "-" prefix for descending
}

// Page is one page of search results.
type Page struct {
	Items []beat.Beat
	Total int // Matches before pagination
	Page  int
	Limit int
}

// Config holds store configuration.
type Config struct {
	PageSize    int
	MaxPageSize int
}

// Store is a thread-safe in-memory beat catalog.
type Store struct {
	mu    sync.RWMutex
	beats map[string]*beat.Beat

	chain *filter.Chain
	cfg   Config
}

// NewStore creates an empty store that filters searches through chain.
func NewStore(chain *filter.Chain, cfg Config) *Store {
	if chain == nil {
		chain = filter.NewChain()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultMaxPageSize
	}
	if cfg.PageSize > cfg.MaxPageSize {
		cfg.PageSize = cfg.MaxPageSize
	}
	return &Store{
		beats: make(map[string]*beat.Beat),
		chain: chain,
		cfg:   cfg,
	}
}

// Load replaces the catalog contents. Nothing is replaced on error.
func (s *Store) Load(beats []beat.Beat) error {
	next := make(map[string]*beat.Beat, len(beats))
	for i := range beats {
		b := beats[i]
		if err := validateBeat(&b); err != nil {
			return err
		}
		if _, exists := next[b.ID]; exists {
			return errors.Mark(errors.Newf("beat %q appears more than once", b.ID), ErrDuplicateBeat)
		}
		next[b.ID] = &b
	}

	s.mu.Lock()
	s.beats = next
	s.mu.Unlock()

	zlog.Info().Msgf("catalog loaded: beats=%d", len(next))
	return nil
}

// Add inserts a single beat.
func (s *Store) Add(b beat.Beat) error {
	if err := validateBeat(&b); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.beats[b.ID]; exists {
		return errors.Mark(errors.Newf("beat %q already exists", b.ID), ErrDuplicateBeat)
	}
	s.beats[b.ID] = &b
	return nil
}

// Create inserts a new beat. An empty ID is replaced by a generated one and
// a zero CreatedAt by the current time.
func (s *Store) Create(b beat.Beat) (beat.Beat, error) {
	if strings.TrimSpace(b.ID) == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.Genres = slices.Clone(b.Genres)
	b.Moods = slices.Clone(b.Moods)
	if err := s.Add(b); err != nil {
		return beat.Beat{}, err
	}
	zlog.Info().Msgf("beat created: id=%s title=%q", strings.TrimSpace(b.ID), b.Title)
	return s.Get(strings.TrimSpace(b.ID))
}

// Update applies p to the beat with the given ID. The beat is left
// untouched when the result would be invalid.
func (s *Store) Update(id string, p Patch) (beat.Beat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.beats[id]
	if !ok {
		return beat.Beat{}, errors.Wrapf(ErrBeatNotFound, "id=%s", id)
	}

	next := cloneBeat(cur)
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.BPM != nil {
		next.BPM = *p.BPM
	}
	if p.Genres != nil {
		next.Genres = beat.NormalizeGenres(*p.Genres)
	}
	if p.Moods != nil {
		next.Moods = beat.NormalizeMoods(*p.Moods)
	}
	if p.CoverArtURL != nil {
		next.CoverArtURL = strings.TrimSpace(*p.CoverArtURL)
	}
	if p.PreviewAudioURL != nil {
		next.PreviewAudioURL = strings.TrimSpace(*p.PreviewAudioURL)
	}
	if p.FullAudioURL != nil {
		next.FullAudioURL = strings.TrimSpace(*p.FullAudioURL)
	}
	if p.Active != nil {
		next.Active = *p.Active
	}
	if err := validateBeat(&next); err != nil {
		return beat.Beat{}, err
	}

	s.beats[id] = &next
	zlog.Info().Msgf("beat updated: id=%s", id)
	return cloneBeat(&next), nil
}

// Delete removes the beat with the given ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.beats[id]; !ok {
		return errors.Wrapf(ErrBeatNotFound, "id=%s", id)
	}
	delete(s.beats, id)
	zlog.Info().Msgf("beat deleted: id=%s", id)
	return nil
}

// Len returns the number of beats, active or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.beats)
}

// Get returns the beat with the given ID.
func (s *Store) Get(id string) (beat.Beat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.beats[id]
	if !ok {
		return beat.Beat{}, errors.Wrapf(ErrBeatNotFound, "id=%s", id)
	}
	return cloneBeat(b), nil
}

// GetActive returns the beat with the given ID if it is listed publicly.
func (s *Store) GetActive(id string) (beat.Beat, error) {
	b, err := s.Get(id)
	if err != nil {
		return beat.Beat{}, err
	}
	if !b.Active {
		return beat.Beat{}, errors.Wrapf(ErrBeatInactive, "id=%s", id)
	}
	return b, nil
}

// GetMany returns the beats for ids in the given order, skipping unknown IDs.
func (s *Store) GetMany(ids []string) []beat.Beat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]beat.Beat, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.beats[id]; ok {
			out = append(out, cloneBeat(b))
		}
	}
	return out
}

// SetActive lists or withdraws a beat.
func (s *Store) SetActive(id string, active bool) (beat.Beat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beats[id]
	if !ok {
		return beat.Beat{}, errors.Wrapf(ErrBeatNotFound, "id=%s", id)
	}
	b.Active = active
	zlog.Info().Msgf("beat activation changed: id=%s active=%v", id, active)
	return cloneBeat(b), nil
}

// All returns every beat ordered by orderBy ("" for the default order).
func (s *Store) All(orderBy string) ([]beat.Beat, error) {
	cmpFn, err := comparator(orderBy)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]beat.Beat, 0, len(s.beats))
	for _, b := range s.beats {
		out = append(out, cloneBeat(b))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, cmpFn)
	return out, nil
}

// Search returns one page of beats matching q for the given scope.
func (s *Store) Search(ctx context.Context, q Query, scope filter.Scope) (Page, error) {
	cmpFn, err := comparator(q.OrderBy)
	if err != nil {
		return Page{}, err
	}
	if q.Page < 0 {
		return Page{}, errors.Mark(errors.Newf("page must be non-negative: %d", q.Page), ErrInvalidQuery)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	limit = min(limit, s.cfg.MaxPageSize)

	s.mu.RLock()
	matches := make([]beat.Beat, 0)
	for _, b := range s.beats {
		if err := ctx.Err(); err != nil {
			s.mu.RUnlock()
			return Page{}, err
		}
		if s.chain.Execute(ctx, q.Query, b, scope).Accepted {
			matches = append(matches, cloneBeat(b))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, cmpFn)

	page := Page{Total: len(matches), Page: q.Page, Limit: limit}
	from := q.Page * limit
	if from >= len(matches) {
		page.Items = []beat.Beat{}
		return page, nil
	}
	to := min(from+limit, len(matches))
	page.Items = matches[from:to]
	return page, nil
}

// comparator parses an order expression into a sort function. Ties are
// broken by ID so paging is stable.
func comparator(orderBy string) (func(a, b beat.Beat) int, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}
	desc := strings.HasPrefix(orderBy, "-")
	column := strings.TrimPrefix(orderBy, "-")

	var by func(a, b beat.Beat) int
	switch column {
	case "title":
		by = func(a, b beat.Beat) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case "bpm":
		by = func(a, b beat.Beat) int { return cmp.Compare(a.BPM, b.BPM) }
	case "created_at", "created_date":
		by = func(a, b beat.Beat) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return nil, errors.Mark(errors.Newf("unsupported order column %q", column), ErrInvalidQuery)
	}

	return func(a, b beat.Beat) int {
		c := by(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}, nil
}

func validateBeat(b *beat.Beat) error {
	b.ID = strings.TrimSpace(b.ID)
	b.Title = strings.TrimSpace(b.Title)
	if b.ID == "" {
		return errors.Mark(errors.New("beat id is required"), ErrInvalidBeat)
	}
	if b.BPM < 0 {
		return errors.Mark(errors.Newf("beat %q: bpm must be non-negative", b.ID), ErrInvalidBeat)
	}
	if _, err := b.Track(); err != nil {
		return errors.Mark(errors.Wrapf(err, "beat %q", b.ID), ErrInvalidBeat)
	}
	return nil
}

func cloneBeat(b *beat.Beat) beat.Beat {
	c := *b
	c.Genres = slices.Clone(b.Genres)
	c.Moods = slices.Clone(b.Moods)
	return c
}
