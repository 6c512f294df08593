// ABOUTME: Output formatting for mopidy-ctl
// ABOUTME: Renders tracks, refs and durations with lipgloss styles
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/mopidy-go/pkg/models"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#32CD32"))
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5E5E"))
)

// formatTrack renders "Artist - Name (Album)"
func formatTrack(t models.Track) string {
	name := t.Name
	if name == "" {
		name = t.URI
	}

	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	s := name
	if len(artists) > 0 {
		s = strings.Join(artists, ", ") + " - " + name
	}
	if t.Album != nil && t.Album.Name != "" {
		s += " (" + t.Album.Name + ")"
	}
	return s
}

// formatRef renders a browse or playlist entry
func formatRef(r models.Ref) string {
	kind := r.Type
	if kind == models.RefDirectory {
		kind = "dir"
	}
	return fmt.Sprintf("%-8s %s  %s", kind, r.Name, dimStyle.Render(r.URI))
}

// formatDuration renders milliseconds as m:ss
func formatDuration(ms int) string {
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// parsePosition accepts milliseconds ("90000") or m:ss ("1:30")
func parsePosition(s string) (int, error) {
	if mins, secs, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(mins)
		if err != nil || m < 0 {
			return 0, fmt.Errorf("invalid minutes in %q", s)
		}
		sec, err := strconv.Atoi(secs)
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
		return (m*60 + sec) * 1000, nil
	}

	ms, err := strconv.Atoi(s)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return ms, nil
}

// parseOnOff accepts on/off and the usual boolean spellings
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
