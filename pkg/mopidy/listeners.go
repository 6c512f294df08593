// ABOUTME: Typed listener helpers over the raw event hub
// ABOUTME: Adapts connection and server events into typed callbacks
package mopidy

import (
	"time"

	"github.com/harperreed/mopidy-go/pkg/events"
	"github.com/harperreed/mopidy-go/pkg/models"
	"github.com/harperreed/mopidy-go/pkg/protocol"
)

// ConnectionState is a connection transition. Delay is only set while a
// reconnect is pending.
type ConnectionState struct {
	State protocol.State
	Delay time.Duration
}

// Phase is a track playback transition
type Phase string

const (
	PhaseStarted Phase = "started"
	PhasePaused  Phase = "paused"
	PhaseResumed Phase = "resumed"
	PhaseEnded   Phase = "ended"
)

var playbackPhases = map[string]Phase{
	"event:trackPlaybackStarted": PhaseStarted,
	"event:trackPlaybackPaused":  PhasePaused,
	"event:trackPlaybackResumed": PhaseResumed,
	"event:trackPlaybackEnded":   PhaseEnded,
}

// TrackPlayback is a track playback transition. TimePosition is in
// milliseconds and is zero for PhaseStarted.
type TrackPlayback struct {
	Phase        Phase
	TlTrack      models.TlTrack
	TimePosition int
}

// OnConnectionState calls fn on every connection transition
func (c *Client) OnConnectionState(fn func(ConnectionState)) events.Handle {
	return c.Events().Any(c, func(e events.Event) {
		switch e.Name {
		case protocol.EventStateOnline:
			fn(ConnectionState{State: protocol.StateOnline})
		case protocol.EventStateOffline:
			state := c.State()
			if state != protocol.StateStopped {
				state = protocol.StateDisconnected
			}
			fn(ConnectionState{State: state})
		case protocol.EventReconnecting:
			fn(ConnectionState{State: protocol.StateConnecting})
		case protocol.EventReconnectionPending:
			r := e.Data.(protocol.Reconnection)
			fn(ConnectionState{State: protocol.StateReconnectPending, Delay: r.Delay})
		}
	})
}

// OnTrackPlayback calls fn when a track starts, pauses, resumes or ends
func (c *Client) OnTrackPlayback(fn func(TrackPlayback)) events.Handle {
	return c.onServerEvent(func(name string, data map[string]any) {
		phase, ok := playbackPhases[name]
		if !ok {
			return
		}
		tl, err := models.As[models.TlTrack](data["tl_track"])
		if err != nil {
			panic(err)
		}
		tp := TrackPlayback{Phase: phase, TlTrack: tl}
		if phase != PhaseStarted {
			tp.TimePosition = int(data["time_position"].(float64))
		}
		fn(tp)
	})
}

// OnPlaybackStateChanged calls fn with the previous and new playback state
func (c *Client) OnPlaybackStateChanged(fn func(oldState, newState models.PlaybackState)) events.Handle {
	return c.on("event:playbackStateChanged", func(data map[string]any) {
		fn(models.PlaybackState(data["old_state"].(string)), models.PlaybackState(data["new_state"].(string)))
	})
}

// OnVolumeChanged calls fn with the new volume in 0..100
func (c *Client) OnVolumeChanged(fn func(volume int)) events.Handle {
	return c.on("event:volumeChanged", func(data map[string]any) {
		fn(int(data["volume"].(float64)))
	})
}

func (c *Client) OnMuteChanged(fn func(mute bool)) events.Handle {
	return c.on("event:muteChanged", func(data map[string]any) {
		fn(data["mute"].(bool))
	})
}

// OnSeeked calls fn with the new position in milliseconds
func (c *Client) OnSeeked(fn func(timePosition int)) events.Handle {
	return c.on("event:seeked", func(data map[string]any) {
		fn(int(data["time_position"].(float64)))
	})
}

func (c *Client) OnStreamTitleChanged(fn func(title string)) events.Handle {
	return c.on("event:streamTitleChanged", func(data map[string]any) {
		fn(data["title"].(string))
	})
}

func (c *Client) OnTracklistChanged(fn func()) events.Handle {
	return c.on("event:tracklistChanged", func(map[string]any) { fn() })
}

// OnOptionsChanged fires when consume, random, repeat or single changes
func (c *Client) OnOptionsChanged(fn func()) events.Handle {
	return c.on("event:optionsChanged", func(map[string]any) { fn() })
}

func (c *Client) OnPlaylistsLoaded(fn func()) events.Handle {
	return c.on("event:playlistsLoaded", func(map[string]any) { fn() })
}

func (c *Client) OnPlaylistChanged(fn func(models.Playlist)) events.Handle {
	return c.on("event:playlistChanged", func(data map[string]any) {
		p, err := models.As[models.Playlist](data["playlist"])
		if err != nil {
			panic(err)
		}
		fn(p)
	})
}

func (c *Client) OnPlaylistDeleted(fn func(uri string)) events.Handle {
	return c.on("event:playlistDeleted", func(data map[string]any) {
		fn(data["uri"].(string))
	})
}

// on adapts a single named server event. A payload without the expected
// fields panics; the hub recovers and logs it.
func (c *Client) on(name string, fn func(data map[string]any)) events.Handle {
	return c.Events().On(name, c, func(e events.Event) {
		fn(e.Data.(map[string]any))
	})
}

// onServerEvent sees every server event under its normalized name
func (c *Client) onServerEvent(fn func(name string, data map[string]any)) events.Handle {
	return c.Events().On(protocol.EventServer, c, func(e events.Event) {
		ev := e.Data.(protocol.EventData)
		fn(ev.Name, ev.Data)
	})
}

// RemoveListeners removes every listener registered through the On helpers
func (c *Client) RemoveListeners() int {
	return c.Events().OffOwner(c)
}
