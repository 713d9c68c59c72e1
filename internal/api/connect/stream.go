package connect

import (
	"sync"

	"connectrpc.com/connect"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
)

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[beatv1.Notification]
}

func (a *notificationStreamAdapter) Send(notification *beatv1.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream.Send(notification)
}
