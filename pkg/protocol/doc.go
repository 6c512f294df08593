// ABOUTME: Mopidy JSON-RPC protocol package
// ABOUTME: Connection engine, request correlation and server event routing
// Package protocol implements a reconnecting JSON-RPC 2.0 client for
// Mopidy's WebSocket endpoint.
//
// Requests are correlated to responses by id, results are decoded with
// pkg/models, and server events are emitted twice on the client's hub:
// once as "event" carrying EventData and once under the normalized name.
//
// Example:
//
//	client := protocol.NewClient(protocol.Config{URL: "ws://mopidy:6680/mopidy/ws"})
//	if err := client.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	state, err := client.Call(ctx, "core.playback.get_state", nil)
package protocol
