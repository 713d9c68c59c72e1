package beatv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Service names
const (
	PlayerServiceName  = "beat.v1.PlayerService"
	CatalogServiceName = "beat.v1.CatalogService"
	AdminServiceName   = "beat.v1.AdminService"
)

// Procedure paths
const (
	PlayerServicePlayProcedure       = "/beat.v1.PlayerService/Play"
	PlayerServicePauseProcedure      = "/beat.v1.PlayerService/Pause"
	PlayerServiceTogglePlayProcedure = "/beat.v1.PlayerService/TogglePlay"
	PlayerServiceSeekProcedure       = "/beat.v1.PlayerService/Seek"
	PlayerServiceCloseProcedure      = "/beat.v1.PlayerService/Close"
	PlayerServiceRelinquishProcedure = "/beat.v1.PlayerService/Relinquish"
	PlayerServiceGetStateProcedure   = "/beat.v1.PlayerService/GetState"
	PlayerServiceSubscribeProcedure  = "/beat.v1.PlayerService/Subscribe"

	CatalogServiceSearchBeatsProcedure = "/beat.v1.CatalogService/SearchBeats"
	CatalogServiceGetBeatProcedure     = "/beat.v1.CatalogService/GetBeat"
	CatalogServiceGetBeatsProcedure    = "/beat.v1.CatalogService/GetBeats"
	CatalogServiceListGenresProcedure  = "/beat.v1.CatalogService/ListGenres"

	AdminServiceSetBeatActiveProcedure = "/beat.v1.AdminService/SetBeatActive"
	AdminServiceListBeatsProcedure     = "/beat.v1.AdminService/ListBeats"
	AdminServiceListFiltersProcedure   = "/beat.v1.AdminService/ListFilters"
	AdminServiceCreateBeatProcedure    = "/beat.v1.AdminService/CreateBeat"
	AdminServiceUpdateBeatProcedure    = "/beat.v1.AdminService/UpdateBeat"
	AdminServiceDeleteBeatProcedure    = "/beat.v1.AdminService/DeleteBeat"
)

// PlayerServiceHandler is implemented by the player service.
type PlayerServiceHandler interface {
	Play(context.Context, *connect.Request[PlayRequest]) (*connect.Response[StateResponse], error)
	Pause(context.Context, *connect.Request[PauseRequest]) (*connect.Response[StateResponse], error)
	TogglePlay(context.Context, *connect.Request[TogglePlayRequest]) (*connect.Response[StateResponse], error)
	Seek(context.Context, *connect.Request[SeekRequest]) (*connect.Response[StateResponse], error)
	Close(context.Context, *connect.Request[CloseRequest]) (*connect.Response[StateResponse], error)
	Relinquish(context.Context, *connect.Request[RelinquishRequest]) (*connect.Response[RelinquishResponse], error)
	GetState(context.Context, *connect.Request[GetStateRequest]) (*connect.Response[StateResponse], error)
	Subscribe(context.Context, *connect.Request[SubscribeRequest], *connect.ServerStream[Notification]) error
}

// CatalogServiceHandler is implemented by the catalog service.
type CatalogServiceHandler interface {
	SearchBeats(context.Context, *connect.Request[SearchBeatsRequest]) (*connect.Response[SearchBeatsResponse], error)
	GetBeat(context.Context, *connect.Request[GetBeatRequest]) (*connect.Response[GetBeatResponse], error)
	GetBeats(context.Context, *connect.Request[GetBeatsRequest]) (*connect.Response[GetBeatsResponse], error)
	ListGenres(context.Context, *connect.Request[ListGenresRequest]) (*connect.Response[ListGenresResponse], error)
}

// AdminServiceHandler is implemented by the admin service.
type AdminServiceHandler interface {
	SetBeatActive(context.Context, *connect.Request[SetBeatActiveRequest]) (*connect.Response[SetBeatActiveResponse], error)
	ListBeats(context.Context, *connect.Request[ListBeatsRequest]) (*connect.Response[ListBeatsResponse], error)
	ListFilters(context.Context, *connect.Request[ListFiltersRequest]) (*connect.Response[ListFiltersResponse], error)
	CreateBeat(context.Context, *connect.Request[CreateBeatRequest]) (*connect.Response[CreateBeatResponse], error)
	UpdateBeat(context.Context, *connect.Request[UpdateBeatRequest]) (*connect.Response[UpdateBeatResponse], error)
	DeleteBeat(context.Context, *connect.Request[DeleteBeatRequest]) (*connect.Response[DeleteBeatResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// NewPlayerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(PlayerServicePlayProcedure, connect.NewUnaryHandler(PlayerServicePlayProcedure, svc.Play, opts...))
	mux.Handle(PlayerServicePauseProcedure, connect.NewUnaryHandler(PlayerServicePauseProcedure, svc.Pause, opts...))
	mux.Handle(PlayerServiceTogglePlayProcedure, connect.NewUnaryHandler(PlayerServiceTogglePlayProcedure, svc.TogglePlay, opts...))
	mux.Handle(PlayerServiceSeekProcedure, connect.NewUnaryHandler(PlayerServiceSeekProcedure, svc.Seek, opts...))
	mux.Handle(PlayerServiceCloseProcedure, connect.NewUnaryHandler(PlayerServiceCloseProcedure, svc.Close, opts...))
	mux.Handle(PlayerServiceRelinquishProcedure, connect.NewUnaryHandler(PlayerServiceRelinquishProcedure, svc.Relinquish, opts...))
	mux.Handle(PlayerServiceGetStateProcedure, connect.NewUnaryHandler(PlayerServiceGetStateProcedure, svc.GetState, opts...))
	mux.Handle(PlayerServiceSubscribeProcedure, connect.NewServerStreamHandler(PlayerServiceSubscribeProcedure, svc.Subscribe, opts...))
	return "/" + PlayerServiceName + "/", mux
}

// NewCatalogServiceHandler builds an HTTP handler from the service implementation.
func NewCatalogServiceHandler(svc CatalogServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(CatalogServiceSearchBeatsProcedure, connect.NewUnaryHandler(CatalogServiceSearchBeatsProcedure, svc.SearchBeats, opts...))
	mux.Handle(CatalogServiceGetBeatProcedure, connect.NewUnaryHandler(CatalogServiceGetBeatProcedure, svc.GetBeat, opts...))
	mux.Handle(CatalogServiceGetBeatsProcedure, connect.NewUnaryHandler(CatalogServiceGetBeatsProcedure, svc.GetBeats, opts...))
	mux.Handle(CatalogServiceListGenresProcedure, connect.NewUnaryHandler(CatalogServiceListGenresProcedure, svc.ListGenres, opts...))
	return "/" + CatalogServiceName + "/", mux
}

// NewAdminServiceHandler builds an HTTP handler from the service implementation.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AdminServiceSetBeatActiveProcedure, connect.NewUnaryHandler(AdminServiceSetBeatActiveProcedure, svc.SetBeatActive, opts...))
	mux.Handle(AdminServiceListBeatsProcedure, connect.NewUnaryHandler(AdminServiceListBeatsProcedure, svc.ListBeats, opts...))
	mux.Handle(AdminServiceListFiltersProcedure, connect.NewUnaryHandler(AdminServiceListFiltersProcedure, svc.ListFilters, opts...))
	mux.Handle(AdminServiceCreateBeatProcedure, connect.NewUnaryHandler(AdminServiceCreateBeatProcedure, svc.CreateBeat, opts...))
	mux.Handle(AdminServiceUpdateBeatProcedure, connect.NewUnaryHandler(AdminServiceUpdateBeatProcedure, svc.UpdateBeat, opts...))
	mux.Handle(AdminServiceDeleteBeatProcedure, connect.NewUnaryHandler(AdminServiceDeleteBeatProcedure, svc.DeleteBeat, opts...))
	return "/" + AdminServiceName + "/", mux
}

// PlayerServiceClient is a client for the beat.v1.PlayerService service.
type PlayerServiceClient struct {
	play       *connect.Client[PlayRequest, StateResponse]
	pause      *connect.Client[PauseRequest, StateResponse]
	togglePlay *connect.Client[TogglePlayRequest, StateResponse]
	seek       *connect.Client[SeekRequest, StateResponse]
	close      *connect.Client[CloseRequest, StateResponse]
	relinquish *connect.Client[RelinquishRequest, RelinquishResponse]
	getState   *connect.Client[GetStateRequest, StateResponse]
	subscribe  *connect.Client[SubscribeRequest, Notification]
}

// NewPlayerServiceClient constructs a client for the beat.v1.PlayerService service.
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &PlayerServiceClient{
		play:       connect.NewClient[PlayRequest, StateResponse](httpClient, baseURL+PlayerServicePlayProcedure, opts...),
		pause:      connect.NewClient[PauseRequest, StateResponse](httpClient, baseURL+PlayerServicePauseProcedure, opts...),
		togglePlay: connect.NewClient[TogglePlayRequest, StateResponse](httpClient, baseURL+PlayerServiceTogglePlayProcedure, opts...),
		seek:       connect.NewClient[SeekRequest, StateResponse](httpClient, baseURL+PlayerServiceSeekProcedure, opts...),
		close:      connect.NewClient[CloseRequest, StateResponse](httpClient, baseURL+PlayerServiceCloseProcedure, opts...),
		relinquish: connect.NewClient[RelinquishRequest, RelinquishResponse](httpClient, baseURL+PlayerServiceRelinquishProcedure, opts...),
		getState:   connect.NewClient[GetStateRequest, StateResponse](httpClient, baseURL+PlayerServiceGetStateProcedure, opts...),
		subscribe:  connect.NewClient[SubscribeRequest, Notification](httpClient, baseURL+PlayerServiceSubscribeProcedure, opts...),
	}
}

func (c *PlayerServiceClient) Play(ctx context.Context, req *connect.Request[PlayRequest]) (*connect.Response[StateResponse], error) {
	return c.play.CallUnary(ctx, req)
}

func (c *PlayerServiceClient) Pause(ctx context.Context, req *connect.Request[PauseRequest]) (*connect.Response[StateResponse], error) {
	return c.pause.CallUnary(ctx, req)
}

func (c *PlayerServiceClient) TogglePlay(ctx context.Context, req *connect.Request[TogglePlayRequest]) (*connect.Response[StateResponse], error) {
	return c.togglePlay.CallUnary(ctx, req)
}

func (c *PlayerServiceClient) Seek(ctx context.Context, req *connect.Request[SeekRequest]) (*connect.Response[StateResponse], error) {
	return c.seek.CallUnary(ctx, req)
}

func (c *PlayerServiceClient) Close(ctx context.Context, req *connect.Request[CloseRequest]) (*connect.Response[StateResponse], error) {
	return c.close.CallUnary(ctx, req)
}

func (c *PlayerServiceClient) Relinquish(ctx context.Context, req *connect.Request[RelinquishRequest]) (*connect.Response[RelinquishResponse], error) {
	return c.relinquish.CallUnary(ctx, req)
}

func (c *PlayerServiceClient) GetState(ctx context.Context, req *connect.Request[GetStateRequest]) (*connect.Response[StateResponse], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *PlayerServiceClient) Subscribe(ctx context.Context, req *connect.Request[SubscribeRequest]) (*connect.ServerStreamForClient[Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}

// CatalogServiceClient is a client for the beat.v1.CatalogService service.
type CatalogServiceClient struct {
	searchBeats *connect.Client[SearchBeatsRequest, SearchBeatsResponse]
	getBeat     *connect.Client[GetBeatRequest, GetBeatResponse]
	getBeats    *connect.Client[GetBeatsRequest, GetBeatsResponse]
	listGenres  *connect.Client[ListGenresRequest, ListGenresResponse]
}

// NewCatalogServiceClient constructs a client for the beat.v1.CatalogService service.
func NewCatalogServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CatalogServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &CatalogServiceClient{
		searchBeats: connect.NewClient[SearchBeatsRequest, SearchBeatsResponse](httpClient, baseURL+CatalogServiceSearchBeatsProcedure, opts...),
		getBeat:     connect.NewClient[GetBeatRequest, GetBeatResponse](httpClient, baseURL+CatalogServiceGetBeatProcedure, opts...),
		getBeats:    connect.NewClient[GetBeatsRequest, GetBeatsResponse](httpClient, baseURL+CatalogServiceGetBeatsProcedure, opts...),
		listGenres:  connect.NewClient[ListGenresRequest, ListGenresResponse](httpClient, baseURL+CatalogServiceListGenresProcedure, opts...),
	}
}

func (c *CatalogServiceClient) SearchBeats(ctx context.Context, req *connect.Request[SearchBeatsRequest]) (*connect.Response[SearchBeatsResponse], error) {
	return c.searchBeats.CallUnary(ctx, req)
}

func (c *CatalogServiceClient) GetBeat(ctx context.Context, req *connect.Request[GetBeatRequest]) (*connect.Response[GetBeatResponse], error) {
	return c.getBeat.CallUnary(ctx, req)
}

func (c *CatalogServiceClient) GetBeats(ctx context.Context, req *connect.Request[GetBeatsRequest]) (*connect.Response[GetBeatsResponse], error) {
	return c.getBeats.CallUnary(ctx, req)
}

func (c *CatalogServiceClient) ListGenres(ctx context.Context, req *connect.Request[ListGenresRequest]) (*connect.Response[ListGenresResponse], error) {
	return c.listGenres.CallUnary(ctx, req)
}

// AdminServiceClient is a client for the beat.v1.AdminService service.
type AdminServiceClient struct {
	setBeatActive *connect.Client[SetBeatActiveRequest, SetBeatActiveResponse]
	listBeats     *connect.Client[ListBeatsRequest, ListBeatsResponse]
	listFilters   *connect.Client[ListFiltersRequest, ListFiltersResponse]
	createBeat    *connect.Client[CreateBeatRequest, CreateBeatResponse]
	updateBeat    *connect.Client[UpdateBeatRequest, UpdateBeatResponse]
	deleteBeat    *connect.Client[DeleteBeatRequest, DeleteBeatResponse]
}

// NewAdminServiceClient constructs a client for the beat.v1.AdminService service.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &AdminServiceClient{
		setBeatActive: connect.NewClient[SetBeatActiveRequest, SetBeatActiveResponse](httpClient, baseURL+AdminServiceSetBeatActiveProcedure, opts...),
		listBeats:     connect.NewClient[ListBeatsRequest, ListBeatsResponse](httpClient, baseURL+AdminServiceListBeatsProcedure, opts...),
		listFilters:   connect.NewClient[ListFiltersRequest, ListFiltersResponse](httpClient, baseURL+AdminServiceListFiltersProcedure, opts...),
		createBeat:    connect.NewClient[CreateBeatRequest, CreateBeatResponse](httpClient, baseURL+AdminServiceCreateBeatProcedure, opts...),
		updateBeat:    connect.NewClient[UpdateBeatRequest, UpdateBeatResponse](httpClient, baseURL+AdminServiceUpdateBeatProcedure, opts...),
		deleteBeat:    connect.NewClient[DeleteBeatRequest, DeleteBeatResponse](httpClient, baseURL+AdminServiceDeleteBeatProcedure, opts...),
	}
}

func (c *AdminServiceClient) SetBeatActive(ctx context.Context, req *connect.Request[SetBeatActiveRequest]) (*connect.Response[SetBeatActiveResponse], error) {
	return c.setBeatActive.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ListBeats(ctx context.Context, req *connect.Request[ListBeatsRequest]) (*connect.Response[ListBeatsResponse], error) {
	return c.listBeats.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ListFilters(ctx context.Context, req *connect.Request[ListFiltersRequest]) (*connect.Response[ListFiltersResponse], error) {
	return c.listFilters.CallUnary(ctx, req)
}

func (c *AdminServiceClient) CreateBeat(ctx context.Context, req *connect.Request[CreateBeatRequest]) (*connect.Response[CreateBeatResponse], error) {
	return c.createBeat.CallUnary(ctx, req)
}

func (c *AdminServiceClient) UpdateBeat(ctx context.Context, req *connect.Request[UpdateBeatRequest]) (*connect.Response[UpdateBeatResponse], error) {
	return c.updateBeat.CallUnary(ctx, req)
}

func (c *AdminServiceClient) DeleteBeat(ctx context.Context, req *connect.Request[DeleteBeatRequest]) (*connect.Response[DeleteBeatResponse], error) {
	return c.deleteBeat.CallUnary(ctx, req)
}
