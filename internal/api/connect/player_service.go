package connect

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/app/notification"
	"github.com/osa030/beatbox/internal/app/session"
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session *session.Manager
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager) *PlayerService {
	return &PlayerService{
		session: session,
	}
}

// Ensure PlayerService implements the interface.
var _ beatv1.PlayerServiceHandler = (*PlayerService)(nil)

// Play plays the preview of a beat.
func (s *PlayerService) Play(
	ctx context.Context,
	req *connect.Request[beatv1.PlayRequest],
) (*connect.Response[beatv1.StateResponse], error) {
	if req.Msg.BeatID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("beat_id is required"))
	}
	snap, err := s.session.PlayBeat(ctx, req.Msg.BeatID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.StateResponse{State: session.StateMessage(snap)}), nil
}

// Pause pauses the current track.
func (s *PlayerService) Pause(
	ctx context.Context,
	req *connect.Request[beatv1.PauseRequest],
) (*connect.Response[beatv1.StateResponse], error) {
	snap, err := s.session.Pause()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.StateResponse{State: session.StateMessage(snap)}), nil
}

// TogglePlay toggles between playing and paused.
func (s *PlayerService) TogglePlay(
	ctx context.Context,
	req *connect.Request[beatv1.TogglePlayRequest],
) (*connect.Response[beatv1.StateResponse], error) {
	snap, err := s.session.TogglePlay()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.StateResponse{State: session.StateMessage(snap)}), nil
}

// Seek moves the current track; out-of-range positions are clamped.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *connect.Request[beatv1.SeekRequest],
) (*connect.Response[beatv1.StateResponse], error) {
	snap, err := s.session.Seek(seekPosition(req.Msg.PositionMs, s.session.PreviewLimit()))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.StateResponse{State: session.StateMessage(snap)}), nil
}

// Close unloads the current track.
func (s *PlayerService) Close(
	ctx context.Context,
	req *connect.Request[beatv1.CloseRequest],
) (*connect.Response[beatv1.StateResponse], error) {
	snap, err := s.session.ClosePlayer()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.StateResponse{State: session.StateMessage(snap)}), nil
}

// Relinquish pauses the shared player so a local player can take over.
func (s *PlayerService) Relinquish(
	ctx context.Context,
	req *connect.Request[beatv1.RelinquishRequest],
) (*connect.Response[beatv1.RelinquishResponse], error) {
	was, snap, err := s.session.Relinquish()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&beatv1.RelinquishResponse{
		WasPlaying: was,
		State:      session.StateMessage(snap),
	}), nil
}

// GetState returns the current playback state.
func (s *PlayerService) GetState(
	ctx context.Context,
	req *connect.Request[beatv1.GetStateRequest],
) (*connect.Response[beatv1.StateResponse], error) {
	return connect.NewResponse(&beatv1.StateResponse{
		State: session.StateMessage(s.session.Status()),
	}), nil
}

// Subscribe streams playback notifications, starting with the current state.
func (s *PlayerService) Subscribe(
	ctx context.Context,
	req *connect.Request[beatv1.SubscribeRequest],
	stream *connect.ServerStream[beatv1.Notification],
) error {
	notifManager := s.session.GetNotificationManager()

	adapter := &notificationStreamAdapter{stream: stream}

	// Send the initial state before joining the broadcast so the client
	// always starts from a complete snapshot.
	adapter.mu.Lock()
	err := stream.Send(&beatv1.Notification{
		Type:       beatv1.NotificationTypeState,
		SequenceNo: notifManager.NextSequenceNo(),
		State:      session.StateMessage(s.session.Status()),
	})
	adapter.mu.Unlock()
	if err != nil {
		return err
	}

	id, unsubscribe := s.session.Subscribe(adapter, notification.Options{
		LocalPlayer: req.Msg.LocalPlayer,
		TrackID:     req.Msg.TrackID,
	})
	defer unsubscribe()
	zlog.Info().Msgf("subscriber joined: id=%s local_player=%v track_id=%s", id, req.Msg.LocalPlayer, req.Msg.TrackID)

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}

	zlog.Info().Msgf("subscriber left: id=%s", id)
	return nil
}

// seekPosition converts a requested position to a duration within
// [0, limit]. Clamping happens in milliseconds so huge values cannot
// overflow time.Duration.
func seekPosition(positionMs int64, limit time.Duration) time.Duration {
	ms := min(max(positionMs, 0), limit.Milliseconds())
	return time.Duration(ms) * time.Millisecond
}
