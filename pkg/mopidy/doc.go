// ABOUTME: Mopidy client package
// ABOUTME: Typed method groups and event listeners on top of pkg/protocol
// Package mopidy is the high-level client for Mopidy servers.
//
// A Client wraps the protocol engine with one method group per core
// controller (Playback, Tracklist, Library, Playlists, Mixer, History) and
// typed listener helpers for server events.
//
// Listeners run on the client's read goroutine. Start a goroutine before
// making calls from inside a listener.
//
// Example:
//
//	client := mopidy.New(protocol.Config{URL: "ws://localhost:6680/mopidy/ws"})
//	client.OnTrackPlayback(func(tp mopidy.TrackPlayback) {
//		log.Printf("%s: %s", tp.Phase, tp.TlTrack.Track.Name)
//	})
//	if err := client.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	err := client.Playback.Play(ctx, nil)
package mopidy
