// ABOUTME: Bubbletea model for the now-playing TUI
// ABOUTME: Defines display state, key handling and status updates
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const volumeStep = 5

// Model represents the TUI state
type Model struct {
	// Connection
	server     string
	connection string
	retryIn    time.Duration

	// Track
	title  string
	artist string
	album  string
	length int

	// Playback
	state    string
	position int
	volume   int
	muted    bool

	artworkPath string
	lastErr     string

	controls *Controls
	quitting bool

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		// The server only reports position on seek and pause, so advance locally
		if m.state == "playing" {
			m.position += 1000
			if m.length > 0 && m.position > m.length {
				m.position = m.length
			}
		}
		return m, tickEvery()
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	trackStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Disconnecting...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Mopidy Remote"))
	b.WriteString("\n\n")

	b.WriteString(m.renderConnection())
	b.WriteString(m.renderTrack())
	b.WriteString(m.renderControls())

	if m.lastErr != "" {
		b.WriteString(errorStyle.Render("Error: " + truncate(m.lastErr, 60)))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("space:Play/Pause  n:Next  p:Prev  +/-:Volume  m:Mute  q:Quit"))
	return b.String()
}

// renderConnection renders the server and socket state
func (m Model) renderConnection() string {
	status := m.connection
	if status == "" {
		status = "disconnected"
	}
	if status == "reconnect-pending" && m.retryIn > 0 {
		status = fmt.Sprintf("reconnecting in %s", m.retryIn)
	}

	s := headerStyle.Render("Server: ") + valueStyle.Render(m.server) + "\n"
	s += headerStyle.Render("Status: ") + valueStyle.Render(status) + "\n\n"
	return s
}

// renderTrack renders the current track and its progress
func (m Model) renderTrack() string {
	if m.title == "" {
		return valueStyle.Render("Nothing playing") + "\n\n"
	}

	s := trackStyle.Render(truncate(m.title, 50)) + "\n"
	if m.artist != "" {
		s += valueStyle.Render(truncate(m.artist, 50)) + "\n"
	}
	if m.album != "" {
		s += valueStyle.Render(truncate(m.album, 50)) + "\n"
	}

	progress := formatDuration(m.position)
	if m.length > 0 {
		progress = fmt.Sprintf("[%s] %s / %s",
			renderBar(m.position, m.length, 30), formatDuration(m.position), formatDuration(m.length))
	}
	s += "\n" + valueStyle.Render(progress) + "\n"

	if m.artworkPath != "" {
		s += headerStyle.Render("Art: ") + valueStyle.Render(m.artworkPath) + "\n"
	}
	return s + "\n"
}

// renderControls renders playback state and volume
func (m Model) renderControls() string {
	state := m.state
	if state == "" {
		state = "stopped"
	}

	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	s := headerStyle.Render("State:  ") + valueStyle.Render(state) + "\n"
	s += headerStyle.Render("Volume: ") +
		valueStyle.Render(fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 10), m.volume, muteIcon)) + "\n\n"
	return s
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.controls != nil {
			select {
			case m.controls.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case " ":
		m.send(Command{Action: ActionToggle})
	case "n":
		m.send(Command{Action: ActionNext})
	case "p":
		m.send(Command{Action: ActionPrevious})
	case "+", "=", "up":
		m.volume = clampVolume(m.volume + volumeStep)
		m.send(Command{Action: ActionVolume, Volume: m.volume})
	case "-", "down":
		m.volume = clampVolume(m.volume - volumeStep)
		m.send(Command{Action: ActionVolume, Volume: m.volume})
	case "m":
		m.muted = !m.muted
		m.send(Command{Action: ActionMute, Mute: m.muted})
	}

	return m, nil
}

// send queues a command without blocking the UI
func (m Model) send(cmd Command) {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Commands <- cmd:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Server != "" {
		m.server = msg.Server
	}
	if msg.Connection != "" {
		m.connection = msg.Connection
		m.retryIn = msg.RetryIn
	}
	if msg.Track != nil {
		m.title = msg.Track.Title
		m.artist = msg.Track.Artist
		m.album = msg.Track.Album
		m.length = msg.Track.Length
		m.position = 0
		m.artworkPath = ""
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Position != nil {
		m.position = *msg.Position
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
	if msg.Muted != nil {
		m.muted = *msg.Muted
	}
	if msg.ArtworkPath != "" {
		m.artworkPath = msg.ArtworkPath
	}
	if msg.Err != "" {
		m.lastErr = msg.Err
	}
}

// TrackInfo is the display form of a track
type TrackInfo struct {
	Title  string
	Artist string
	Album  string
	Length int
}

// StatusMsg updates TUI state. Empty and nil fields leave state unchanged.
type StatusMsg struct {
	Server      string
	Connection  string
	RetryIn     time.Duration
	Track       *TrackInfo
	State       string
	Position    *int
	Volume      *int
	Muted       *bool
	ArtworkPath string
	Err         string
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatDuration(ms int) string {
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
