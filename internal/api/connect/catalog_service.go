package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/app/catalog"
	"github.com/osa030/beatbox/internal/app/filter"
	"github.com/osa030/beatbox/internal/domain/beat"
)

// CatalogService implements the CatalogService RPC.
type CatalogService struct {
	catalog *catalog.Store
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store *catalog.Store) *CatalogService {
	return &CatalogService{
		catalog: store,
	}
}

// Ensure CatalogService implements the interface.
var _ beatv1.CatalogServiceHandler = (*CatalogService)(nil)

// SearchBeats returns one page of active beats.
func (s *CatalogService) SearchBeats(
	ctx context.Context,
	req *connect.Request[beatv1.SearchBeatsRequest],
) (*connect.Response[beatv1.SearchBeatsResponse], error) {
	m := req.Msg
	page, err := s.catalog.Search(ctx, catalog.Query{
		Query: filter.Query{
			Genre:  m.Genre,
			Mood:   m.Mood,
			Search: m.Search,
			BPMMin: int(m.BPMMin),
			BPMMax: int(m.BPMMax),
		},
		Page:    int(m.Page),
		Limit:   int(m.Limit),
		OrderBy: m.OrderBy,
	}, filter.ScopePublic)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &beatv1.SearchBeatsResponse{
		Beats: make([]*beatv1.Beat, 0, len(page.Items)),
		Total: int32(page.Total),
		Page:  int32(page.Page),
		Limit: int32(page.Limit),
	}
	for _, b := range page.Items {
		resp.Beats = append(resp.Beats, toBeatMessage(b))
	}
	return connect.NewResponse(resp), nil
}

// GetBeat returns a single active beat.
func (s *CatalogService) GetBeat(
	ctx context.Context,
	req *connect.Request[beatv1.GetBeatRequest],
) (*connect.Response[beatv1.GetBeatResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}
	b, err := s.catalog.GetActive(req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.GetBeatResponse{Beat: toBeatMessage(b)}), nil
}

// maxGetBeats bounds the number of IDs in a GetBeats request.
const maxGetBeats = 100

// GetBeats returns the active beats among the requested IDs, in request
// order. Unknown and withdrawn IDs are skipped.
func (s *CatalogService) GetBeats(
	ctx context.Context,
	req *connect.Request[beatv1.GetBeatsRequest],
) (*connect.Response[beatv1.GetBeatsResponse], error) {
	if len(req.Msg.IDs) > maxGetBeats {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			errors.Newf("at most %d ids per request", maxGetBeats))
	}

	beats := s.catalog.GetMany(req.Msg.IDs)
	resp := &beatv1.GetBeatsResponse{Beats: make([]*beatv1.Beat, 0, len(beats))}
	for _, b := range beats {
		if !b.Active {
			continue
		}
		resp.Beats = append(resp.Beats, toBeatMessage(b))
	}
	return connect.NewResponse(resp), nil
}

// ListGenres returns the storefront genre and mood labels.
func (s *CatalogService) ListGenres(
	ctx context.Context,
	req *connect.Request[beatv1.ListGenresRequest],
) (*connect.Response[beatv1.ListGenresResponse], error) {
	resp := &beatv1.ListGenresResponse{
		Genres: []string{beat.AnyLabel},
		Moods:  []string{beat.AnyLabel},
	}
	for _, g := range beat.KnownGenres() {
		resp.Genres = append(resp.Genres, string(g))
	}
	for _, m := range beat.KnownMoods() {
		resp.Moods = append(resp.Moods, string(m))
	}
	return connect.NewResponse(resp), nil
}
