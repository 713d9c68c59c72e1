package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/beatbox/internal/app/catalog"
	"github.com/osa030/beatbox/internal/app/playback"
	"github.com/osa030/beatbox/internal/app/session"
)

// toConnectError maps application errors to RPC status codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, catalog.ErrBeatNotFound), errors.Is(err, catalog.ErrBeatInactive):
		// Withdrawn beats look the same as unknown ones to listeners.
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, catalog.ErrInvalidQuery), errors.Is(err, catalog.ErrInvalidBeat),
		errors.Is(err, playback.ErrInvalidTrack):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, catalog.ErrDuplicateBeat):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, session.ErrSessionNotRunning), errors.Is(err, playback.ErrShutdown):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		zlog.Error().Msgf("internal error: %+v", err)
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}
