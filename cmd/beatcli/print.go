package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
)

func formatStatus(s beatv1.PlaybackStatus) string {
	switch s {
	case beatv1.PlaybackStatusIdle:
		return "⏹  Idle"
	case beatv1.PlaybackStatusPaused:
		return "⏸  Paused"
	case beatv1.PlaybackStatusPlaying:
		return "▶️  Playing"
	default:
		return "❓ Unknown"
	}
}

func formatMs(ms int64) string {
	d := (time.Duration(ms) * time.Millisecond).Round(time.Second)
	return fmt.Sprintf("%02d:%02d", d/time.Minute, (d%time.Minute)/time.Second)
}

func printState(w io.Writer, s *beatv1.PlaybackState) {
	if s == nil {
		fmt.Fprintln(w, "State: unknown")
		return
	}
	fmt.Fprintf(w, "State: %s\n", formatStatus(s.Status))
	if s.TrackID == "" {
		return
	}
	fmt.Fprintf(w, "  Track: %s (%s)\n", s.Title, s.TrackID)
	duration := "--:--"
	if s.DurationMs > 0 {
		duration = formatMs(s.DurationMs)
	}
	fmt.Fprintf(w, "  Position: %s / %s (preview limit %s)\n",
		formatMs(s.PositionMs), duration, formatMs(s.PreviewLimitMs))
	if s.CoverArtURL != "" {
		fmt.Fprintf(w, "  Cover: %s\n", s.CoverArtURL)
	}
}

func printNotification(w io.Writer, n *beatv1.Notification, at time.Time) {
	fmt.Fprintf(w, "\n[%s #%d] === %s ===\n", at.Format(time.TimeOnly), n.SequenceNo, n.Type)
	if n.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", n.Reason)
	}
	if n.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", n.Error)
	}
	if n.State != nil && n.Type != beatv1.NotificationTypePauseLocal {
		printState(w, n.State)
	}
}

func printBeat(w io.Writer, b *beatv1.Beat) {
	if b == nil {
		return
	}
	status := "active"
	if !b.Active {
		status = "inactive"
	}
	fmt.Fprintf(w, "%s  %s\n", b.ID, b.Title)
	fmt.Fprintf(w, "  BPM: %d  Status: %s\n", b.BPM, status)
	fmt.Fprintf(w, "  Genres: %s\n", strings.Join(b.Genres, ", "))
	fmt.Fprintf(w, "  Moods: %s\n", strings.Join(b.Moods, ", "))
	fmt.Fprintf(w, "  Preview: %s\n", b.PreviewAudioURL)
	if b.FullAudioURL != "" {
		fmt.Fprintf(w, "  Full: %s\n", b.FullAudioURL)
	}
	if b.CreatedAt != "" {
		fmt.Fprintf(w, "  Created: %s\n", b.CreatedAt)
	}
}

func printBeats(w io.Writer, beats []*beatv1.Beat) {
	if len(beats) == 0 {
		fmt.Fprintln(w, "No beats.")
		return
	}
	for _, b := range beats {
		active := " "
		if !b.Active {
			active = "x"
		}
		fmt.Fprintf(w, "[%s] %-36s  %3d BPM  %-30s  %s\n",
			active, b.ID, b.BPM, b.Title, strings.Join(b.Genres, "/"))
	}
}

func printFilters(w io.Writer, filters []*beatv1.FilterInfo) {
	fmt.Fprintln(w, "Available Filters:")
	for _, f := range filters {
		fmt.Fprintf(w, "  %-20s - %s [codes: %s]\n", f.Name, f.Description, strings.Join(f.ReturnCodes, ", "))
	}
}
