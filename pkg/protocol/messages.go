// ABOUTME: Mopidy JSON-RPC wire message definitions
// ABOUTME: Request envelope, server error payload and event naming
package protocol

import (
	"strings"
	"time"
)

// JSONRPCVersion is sent in every request envelope
const JSONRPCVersion = "2.0"

// Names emitted on the client's event hub
const (
	EventStateOnline         = "state:online"
	EventStateOffline        = "state:offline"
	EventReconnecting        = "reconnecting"
	EventReconnectionPending = "reconnectionPending"
	EventIncomingMessage     = "websocket:incomingMessage"
	EventOutgoingMessage     = "websocket:outgoingMessage"

	// EventServer carries every server event as EventData
	EventServer = "event"

	// EventPrefix starts the name each server event is also emitted under
	EventPrefix = "event:"
)

// Request describes a single RPC call
type Request struct {
	Method string
	Params map[string]any
}

// envelope is the outbound wire form of a Request
type envelope struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// ServerError is the error object of a failed JSON-RPC response.
// Mopidy puts the Python exception type, message and traceback in Data.
type ServerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// EventData is the payload of EventServer
type EventData struct {
	// Name is the normalized name, e.g. "event:trackPlaybackStarted"
	Name string
	// Data holds the event fields with the "event" key removed
	Data map[string]any
}

// Reconnection is the payload of EventReconnectionPending and EventReconnecting
type Reconnection struct {
	Delay   time.Duration
	Attempt int
}

// NormalizeEventName maps a Mopidy event name such as
// "track_playback_started" to "event:trackPlaybackStarted"
func NormalizeEventName(raw string) string {
	parts := strings.Split(raw, "_")
	var b strings.Builder
	b.WriteString(EventPrefix)
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(strings.ToLower(p[:1]) + p[1:])
			first = false
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}
