package connect

import (
	"context"
	"sort"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/app/catalog"
	"github.com/osa030/beatbox/internal/app/filter"
)

// AdminService implements the AdminService RPC.
type AdminService struct {
	catalog *catalog.Store
}

// NewAdminService creates a new AdminService.
func NewAdminService(store *catalog.Store) *AdminService {
	return &AdminService{
		catalog: store,
	}
}

// Ensure AdminService implements the interface.
var _ beatv1.AdminServiceHandler = (*AdminService)(nil)

// SetBeatActive lists or withdraws a beat.
func (s *AdminService) SetBeatActive(
	ctx context.Context,
	req *connect.Request[beatv1.SetBeatActiveRequest],
) (*connect.Response[beatv1.SetBeatActiveResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}
	b, err := s.catalog.SetActive(req.Msg.ID, req.Msg.Active)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.SetBeatActiveResponse{Beat: toAdminBeatMessage(b)}), nil
}

// ListBeats returns every beat, including inactive ones.
func (s *AdminService) ListBeats(
	ctx context.Context,
	req *connect.Request[beatv1.ListBeatsRequest],
) (*connect.Response[beatv1.ListBeatsResponse], error) {
	beats, err := s.catalog.All(req.Msg.OrderBy)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &beatv1.ListBeatsResponse{Beats: make([]*beatv1.Beat, 0, len(beats))}
	for _, b := range beats {
		resp.Beats = append(resp.Beats, toAdminBeatMessage(b))
	}
	return connect.NewResponse(resp), nil
}

// CreateBeat adds a beat to the catalog.
func (s *AdminService) CreateBeat(
	ctx context.Context,
	req *connect.Request[beatv1.CreateBeatRequest],
) (*connect.Response[beatv1.CreateBeatResponse], error) {
	b, err := s.catalog.Create(fromCreateRequest(req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.CreateBeatResponse{Beat: toAdminBeatMessage(b)}), nil
}

// UpdateBeat changes the fields set in the request.
func (s *AdminService) UpdateBeat(
	ctx context.Context,
	req *connect.Request[beatv1.UpdateBeatRequest],
) (*connect.Response[beatv1.UpdateBeatResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}
	b, err := s.catalog.Update(req.Msg.ID, toPatch(req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.UpdateBeatResponse{Beat: toAdminBeatMessage(b)}), nil
}

// DeleteBeat removes a beat from the catalog.
func (s *AdminService) DeleteBeat(
	ctx context.Context,
	req *connect.Request[beatv1.DeleteBeatRequest],
) (*connect.Response[beatv1.DeleteBeatResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}
	if err := s.catalog.Delete(req.Msg.ID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.DeleteBeatResponse{}), nil
}

// ListFilters returns the registered catalog filters.
func (s *AdminService) ListFilters(
	ctx context.Context,
	req *connect.Request[beatv1.ListFiltersRequest],
) (*connect.Response[beatv1.ListFiltersResponse], error) {
	registered := filter.GetRegistered()
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := &beatv1.ListFiltersResponse{Filters: make([]*beatv1.FilterInfo, 0, len(names))}
	for _, name := range names {
		f := registered[name]()
		resp.Filters = append(resp.Filters, &beatv1.FilterInfo{
			Name:        f.Name(),
			Description: f.Description(),
			ReturnCodes: f.ReturnCodes(),
		})
	}
	return connect.NewResponse(resp), nil
}
