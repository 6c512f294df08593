// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling, and rendering helpers
package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model := NewModel("ws://localhost:6680/mopidy/ws", nil) // Controls are optional for testing

	if model.connection != "connecting" {
		t.Errorf("expected connection 'connecting', got '%s'", model.connection)
	}

	if model.state != "stopped" {
		t.Errorf("expected state 'stopped', got '%s'", model.state)
	}

	if model.server != "ws://localhost:6680/mopidy/ws" {
		t.Errorf("expected server URL, got '%s'", model.server)
	}
}

func TestStatusMsgConnection(t *testing.T) {
	model := NewModel("", nil)

	model.applyStatus(StatusMsg{Connection: "reconnect-pending", RetryIn: 4 * time.Second})

	if model.connection != "reconnect-pending" {
		t.Errorf("expected connection 'reconnect-pending', got '%s'", model.connection)
	}
	if model.retryIn != 4*time.Second {
		t.Errorf("expected retryIn 4s, got %s", model.retryIn)
	}
	if !strings.Contains(model.renderConnection(), "reconnecting in 4s") {
		t.Errorf("expected retry countdown in %q", model.renderConnection())
	}

	model.applyStatus(StatusMsg{Connection: "online"})
	if model.retryIn != 0 {
		t.Errorf("expected retryIn cleared, got %s", model.retryIn)
	}
}

func TestStatusMsgTrack(t *testing.T) {
	model := NewModel("", nil)
	model.applyStatus(StatusMsg{ArtworkPath: "/tmp/old.jpg", Position: intPtr(5000)})

	model.applyStatus(StatusMsg{Track: &TrackInfo{
		Title:  "Test Song",
		Artist: "Test Artist",
		Album:  "Test Album",
		Length: 180000,
	}})

	if model.title != "Test Song" || model.artist != "Test Artist" || model.album != "Test Album" {
		t.Errorf("unexpected track %q/%q/%q", model.title, model.artist, model.album)
	}
	if model.length != 180000 {
		t.Errorf("expected length 180000, got %d", model.length)
	}
	if model.position != 0 {
		t.Errorf("expected position reset, got %d", model.position)
	}
	if model.artworkPath != "" {
		t.Errorf("expected artwork cleared for new track, got %s", model.artworkPath)
	}
}

func TestStatusMsgPartialUpdates(t *testing.T) {
	model := NewModel("", nil)

	model.applyStatus(StatusMsg{Volume: intPtr(75), Muted: boolPtr(true), State: "playing"})
	model.applyStatus(StatusMsg{Volume: intPtr(0)})

	if model.volume != 0 {
		t.Errorf("expected volume 0, got %d", model.volume)
	}
	if !model.muted {
		t.Error("muted should be retained")
	}
	if model.state != "playing" {
		t.Errorf("state should be retained, got %s", model.state)
	}

	model.applyStatus(StatusMsg{Track: &TrackInfo{Title: "Song"}})
	model.applyStatus(StatusMsg{Err: "boom"})
	if model.title != "Song" {
		t.Error("title should not be cleared by unrelated update")
	}
	if model.lastErr != "boom" {
		t.Errorf("expected lastErr boom, got %s", model.lastErr)
	}
}

func TestTickAdvancesPosition(t *testing.T) {
	model := NewModel("", nil)
	model.applyStatus(StatusMsg{Track: &TrackInfo{Title: "Song", Length: 1500}, State: "playing"})

	next, cmd := model.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("expected tick to reschedule")
	}
	m := next.(Model)
	if m.position != 1000 {
		t.Errorf("expected position 1000, got %d", m.position)
	}

	next, _ = m.Update(tickMsg(time.Now()))
	if m = next.(Model); m.position != 1500 {
		t.Errorf("expected position capped at length, got %d", m.position)
	}

	m.applyStatus(StatusMsg{State: "paused", Position: intPtr(200)})
	next, _ = m.Update(tickMsg(time.Now()))
	if m = next.(Model); m.position != 200 {
		t.Errorf("expected paused position unchanged, got %d", m.position)
	}
}

func TestKeyCommands(t *testing.T) {
	controls := NewControls()
	model := NewModel("", controls)
	model.applyStatus(StatusMsg{Volume: intPtr(50)})

	tests := []struct {
		key  tea.KeyMsg
		want Command
	}{
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, Command{Action: ActionToggle}},
		{runeKey("n"), Command{Action: ActionNext}},
		{runeKey("p"), Command{Action: ActionPrevious}},
		{runeKey("+"), Command{Action: ActionVolume, Volume: 55}},
		{runeKey("-"), Command{Action: ActionVolume, Volume: 50}},
		{runeKey("m"), Command{Action: ActionMute, Mute: true}},
	}

	var m tea.Model = model
	for _, tt := range tests {
		m, _ = m.Update(tt.key)
		select {
		case got := <-controls.Commands:
			if got != tt.want {
				t.Errorf("key %q: expected %+v, got %+v", tt.key.String(), tt.want, got)
			}
		default:
			t.Errorf("key %q: no command sent", tt.key.String())
		}
	}

	if final := m.(Model); !final.muted || final.volume != 50 {
		t.Errorf("expected optimistic muted=true volume=50, got %v/%d", final.muted, final.volume)
	}
}

func TestVolumeClamped(t *testing.T) {
	controls := NewControls()
	model := NewModel("", controls)
	model.applyStatus(StatusMsg{Volume: intPtr(98)})

	next, _ := model.Update(runeKey("+"))
	if got := (<-controls.Commands).Volume; got != 100 {
		t.Errorf("expected volume clamped to 100, got %d", got)
	}

	m := next.(Model)
	m.applyStatus(StatusMsg{Volume: intPtr(2)})
	m.Update(runeKey("-"))
	if got := (<-controls.Commands).Volume; got != 0 {
		t.Errorf("expected volume clamped to 0, got %d", got)
	}
}

func TestQuitSignalsApp(t *testing.T) {
	controls := NewControls()
	model := NewModel("", controls)

	next, cmd := model.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting to be set")
	}

	select {
	case <-controls.Quit:
	default:
		t.Error("expected quit signal")
	}
}

func TestKeysWithoutControls(t *testing.T) {
	model := NewModel("", nil)
	// Must not block or panic
	model.Update(runeKey("n"))
	model.Update(runeKey("m"))
}

func TestViewContents(t *testing.T) {
	model := NewModel("ws://host:6680/mopidy/ws", nil)
	if !strings.Contains(model.View(), "Nothing playing") {
		t.Error("expected idle view")
	}

	model.applyStatus(StatusMsg{
		Connection:  "online",
		Track:       &TrackInfo{Title: "Song", Artist: "Artist", Length: 65000},
		ArtworkPath: "/tmp/a.jpg",
		Volume:      intPtr(40),
		Muted:       boolPtr(true),
	})
	view := model.View()
	for _, want := range []string{"Song", "Artist", "1:05", "/tmp/a.jpg", "40%", "muted", "online"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(50, 100, 10); got != "█████░░░░░" {
		t.Errorf("unexpected bar %q", got)
	}
	if got := renderBar(200, 100, 4); got != "████" {
		t.Errorf("expected full bar when over max, got %q", got)
	}
	if got := renderBar(1, 0, 3); got != "░░░" {
		t.Errorf("expected empty bar for zero max, got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{0: "0:00", 59999: "0:59", 61000: "1:01", 3600000: "60:00"}
	for ms, want := range tests {
		if got := formatDuration(ms); got != want {
			t.Errorf("formatDuration(%d) = %s, expected %s", ms, got, want)
		}
	}
}
