// ABOUTME: High-level Mopidy client combining the engine and method groups
// ABOUTME: Entry point for applications: connect, call core APIs, listen for events
package mopidy

import (
	"context"

	"github.com/harperreed/mopidy-go/pkg/events"
	"github.com/harperreed/mopidy-go/pkg/protocol"
)

// Caller is the single primitive the method groups use to reach the server
type Caller interface {
	Call(ctx context.Context, method string, params map[string]any) (any, error)
}

// Client is a Mopidy client with one method group per core controller
type Client struct {
	*protocol.Client

	Playback  *Playback
	Tracklist *Tracklist
	Library   *Library
	Playlists *Playlists
	Mixer     *Mixer
	History   *History
}

// New creates a client. Call Connect to start it.
func New(config protocol.Config) *Client {
	engine := protocol.NewClient(config)
	return &Client{
		Client:    engine,
		Playback:  &Playback{call: engine},
		Tracklist: &Tracklist{call: engine},
		Library:   &Library{call: engine},
		Playlists: &Playlists{call: engine},
		Mixer:     &Mixer{call: engine},
		History:   &History{call: engine},
	}
}

// Off removes a listener registered through one of the On helpers
func (c *Client) Off(h events.Handle) {
	c.Events().Off(h)
}
