// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the command channel back to the app
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Action is a user request from the TUI
type Action string

const (
	ActionToggle   Action = "toggle"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionVolume   Action = "volume"
	ActionMute     Action = "mute"
)

// Command is sent to the app when a key is pressed
type Command struct {
	Action Action
	Volume int
	Mute   bool
}

// Controls holds channels for UI to app communication
type Controls struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(server string, controls *Controls) Model {
	return Model{
		server:     server,
		connection: "connecting",
		state:      "stopped",
		controls:   controls,
	}
}

// Run creates the TUI program. The caller starts it with Run.
func Run(server string, controls *Controls) *tea.Program {
	return tea.NewProgram(NewModel(server, controls), tea.WithAltScreen())
}
