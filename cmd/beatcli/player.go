package main

import (
	"context"

	"connectrpc.com/connect"
	tea "github.com/charmbracelet/bubbletea"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	"github.com/osa030/beatbox/internal/ui/miniplayer"
)

// runPlayer subscribes to notifications and runs the mini-player until quit.
func runPlayer(ctx context.Context, client *beatv1.PlayerServiceClient, beatID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := client.Subscribe(ctx, connect.NewRequest(&beatv1.SubscribeRequest{}))
	if err != nil {
		return err
	}

	notifications := make(chan *beatv1.Notification, 16)
	go func() {
		defer close(notifications)
		defer stream.Close()
		for stream.Receive() {
			select {
			case notifications <- stream.Msg():
			case <-ctx.Done():
				return
			}
		}
	}()

	if beatID != "" {
		if _, err := client.Play(ctx, connect.NewRequest(&beatv1.PlayRequest{BeatID: beatID})); err != nil {
			return err
		}
	}

	_, err = tea.NewProgram(miniplayer.New(ctx, client, notifications), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
