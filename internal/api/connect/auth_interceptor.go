// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// AdminTokenHeader carries the admin token on AdminService calls.
const AdminTokenHeader = "X-Admin-Token"

var (
	errMissingToken = errors.New("missing admin token")
	errInvalidToken = errors.New("invalid admin token")
)

// AdminAuthInterceptor rejects admin calls that do not present the configured
// token. It guards both unary and streaming handlers.
type AdminAuthInterceptor struct {
	token []byte
}

var _ connect.Interceptor = (*AdminAuthInterceptor)(nil)

// NewAdminAuthInterceptor creates an interceptor accepting token.
func NewAdminAuthInterceptor(token string) *AdminAuthInterceptor {
	return &AdminAuthInterceptor{token: []byte(token)}
}

// WrapUnary implements connect.Interceptor.
func (i *AdminAuthInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		if err := i.check(req.Header().Get(AdminTokenHeader), req.Spec().Procedure, req.Peer().Addr); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *AdminAuthInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *AdminAuthInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		if err := i.check(conn.RequestHeader().Get(AdminTokenHeader), conn.Spec().Procedure, conn.Peer().Addr); err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

func (i *AdminAuthInterceptor) check(token, procedure, peer string) error {
	if token == "" {
		return connect.NewError(connect.CodeUnauthenticated, errMissingToken)
	}
	if subtle.ConstantTimeCompare([]byte(token), i.token) != 1 {
		zlog.Warn().Msgf("admin auth failed: procedure=%s peer=%s", procedure, peer)
		return connect.NewError(connect.CodeUnauthenticated, errInvalidToken)
	}
	return nil
}
