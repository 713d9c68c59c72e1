// Package miniplayer implements the terminal mini-player for the shared
// playback coordinator.
package miniplayer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
)

// SeekStep is the distance moved by the arrow keys.
const SeekStep = 5 * time.Second

// Controller issues playback commands. *beatv1.PlayerServiceClient satisfies it.
type Controller interface {
	TogglePlay(context.Context, *connect.Request[beatv1.TogglePlayRequest]) (*connect.Response[beatv1.StateResponse], error)
	Seek(context.Context, *connect.Request[beatv1.SeekRequest]) (*connect.Response[beatv1.StateResponse], error)
	Close(context.Context, *connect.Request[beatv1.CloseRequest]) (*connect.Response[beatv1.StateResponse], error)
}

// NotificationMsg carries a streamed notification into the model.
type NotificationMsg struct {
	Notification *beatv1.Notification
}

// StateMsg carries the state returned by a command.
type StateMsg struct {
	State *beatv1.PlaybackState
}

// ErrMsg reports a failed command.
type ErrMsg struct {
	Err error
}

// StreamClosedMsg is sent when the notification stream ends.
type StreamClosedMsg struct{}

// Model is the bubbletea model of the mini-player.
type Model struct {
	ctx           context.Context
	ctrl          Controller
	notifications <-chan *beatv1.Notification

	width   int
	state   *beatv1.PlaybackState
	status  string
	err     error
	closed  bool
	lastSeq uint64

	titleStyle    lipgloss.Style
	statusStyle   lipgloss.Style
	filledStyle   lipgloss.Style
	emptyStyle    lipgloss.Style
	noticeStyle   lipgloss.Style
	errorStyle    lipgloss.Style
	controlsStyle lipgloss.Style
	borderStyle   lipgloss.Style
}

// New creates a mini-player reading notifications from ch.
func New(ctx context.Context, ctrl Controller, ch <-chan *beatv1.Notification) Model {
	return Model{
		ctx:           ctx,
		ctrl:          ctrl,
		notifications: ch,
		width:         60,
		state:         &beatv1.PlaybackState{Status: beatv1.PlaybackStatusIdle},
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		filledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		emptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		noticeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Italic(true),
		errorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		controlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
}

// State returns the last known playback state.
func (m Model) State() *beatv1.PlaybackState {
	return m.state
}

// Init starts listening for notifications.
func (m Model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next notification.
func (m Model) listen() tea.Cmd {
	ch := m.notifications
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case n, ok := <-ch:
			if !ok {
				return StreamClosedMsg{}
			}
			return NotificationMsg{Notification: n}
		case <-ctx.Done():
			return StreamClosedMsg{}
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 30)

	case NotificationMsg:
		m.applyNotification(msg.Notification)
		return m, m.listen()

	case StateMsg:
		if msg.State != nil {
			m.state = msg.State
		}
		m.err = nil

	case ErrMsg:
		m.err = msg.Err

	case StreamClosedMsg:
		m.closed = true
		m.status = "disconnected"

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			return m, m.togglePlay()
		case "left", "h":
			return m, m.seek(m.position() - SeekStep)
		case "right", "l":
			return m, m.seek(m.position() + SeekStep)
		case "x":
			return m, m.closePlayer()
		}
	}
	return m, nil
}

func (m *Model) applyNotification(n *beatv1.Notification) {
	if n == nil {
		return
	}
	// Notifications older than the last applied one are ignored.
	if n.SequenceNo != 0 && n.SequenceNo < m.lastSeq {
		return
	}
	m.lastSeq = n.SequenceNo

	if n.State != nil {
		m.state = n.State
	}

	switch n.Type {
	case beatv1.NotificationTypeTrackLoaded:
		m.status = ""
		m.err = nil
	case beatv1.NotificationTypePreviewLimit:
		m.status = "preview limit reached"
	case beatv1.NotificationTypeTrackEnded:
		m.status = "track ended"
	case beatv1.NotificationTypeLoadFailed:
		m.status = "load failed: " + n.Error
	case beatv1.NotificationTypeClosed:
		m.status = "player closed"
	}
}

func (m Model) position() time.Duration {
	return time.Duration(m.state.PositionMs) * time.Millisecond
}

func (m Model) togglePlay() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		resp, err := ctrl.TogglePlay(ctx, connect.NewRequest(&beatv1.TogglePlayRequest{}))
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StateMsg{State: resp.Msg.State}
	}
}

func (m Model) seek(pos time.Duration) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	pos = max(pos, 0)
	return func() tea.Msg {
		resp, err := ctrl.Seek(ctx, connect.NewRequest(&beatv1.SeekRequest{PositionMs: pos.Milliseconds()}))
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StateMsg{State: resp.Msg.State}
	}
}

func (m Model) closePlayer() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		resp, err := ctrl.Close(ctx, connect.NewRequest(&beatv1.CloseRequest{}))
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StateMsg{State: resp.Msg.State}
	}
}

// View renders the mini-player.
func (m Model) View() string {
	var sb strings.Builder

	s := m.state
	if s.Status == beatv1.PlaybackStatusIdle {
		sb.WriteString(m.titleStyle.Render("♪ Nothing loaded"))
	} else {
		icon := "⏸"
		if s.Playing {
			icon = "▶"
		}
		sb.WriteString(m.statusStyle.Render(icon + " "))
		sb.WriteString(m.titleStyle.Render(s.Title))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderProgress())
	}

	if m.status != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.noticeStyle.Render(m.status))
	}
	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(m.errorStyle.Render("error: " + m.err.Error()))
	}

	sb.WriteString("\n")
	sb.WriteString(m.controlsStyle.Render("[Space] Play/Pause  [←/→] Seek  [x] Close  [q] Quit"))

	return m.borderStyle.Width(m.width - 4).Render(sb.String())
}

// renderProgress draws the playhead against the playable span, which is the
// shorter of the native duration and the preview limit.
func (m Model) renderProgress() string {
	s := m.state
	total := time.Duration(s.PreviewLimitMs) * time.Millisecond
	if s.DurationMs > 0 {
		total = min(total, time.Duration(s.DurationMs)*time.Millisecond)
	}
	current := m.position()

	var percent float64
	if total > 0 {
		percent = min(float64(current)/float64(total), 1)
	}

	barWidth := max(m.width-22, 10)
	filled := int(float64(barWidth) * percent)

	return m.filledStyle.Render(strings.Repeat("█", filled)) +
		m.emptyStyle.Render(strings.Repeat("░", barWidth-filled)) +
		" " + formatDuration(current) + "/" + formatDuration(total)
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", d/time.Minute, (d%time.Minute)/time.Second)
}
