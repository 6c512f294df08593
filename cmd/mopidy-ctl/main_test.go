// ABOUTME: Tests for mopidy-ctl commands and formatting helpers
// ABOUTME: Runs the command tree against an httptest JSON-RPC server
package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/harperreed/mopidy-go/pkg/events"
	"github.com/harperreed/mopidy-go/pkg/models"
	"github.com/harperreed/mopidy-go/pkg/protocol"
)

type call struct {
	Method string
	Params map[string]any
}

// fakeServer answers from a fixed result table and records every call
type fakeServer struct {
	t        *testing.T
	upgrader websocket.Upgrader
	results  map[string]any
	greeting map[string]any

	mu    sync.Mutex
	calls []call
}

func newFakeServer(t *testing.T, results map[string]any) (*fakeServer, string) {
	f := &fakeServer{t: t, results: results}
	mux := http.NewServeMux()
	mux.HandleFunc("/mopidy/ws", f.handle)
	mux.HandleFunc("/local/cover.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return f, "ws" + strings.TrimPrefix(server.URL, "http") + "/mopidy/ws"
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if f.greeting != nil {
		conn.WriteJSON(f.greeting)
	}

	for {
		var req struct {
			ID     int64          `json:"id"`
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		f.mu.Lock()
		f.calls = append(f.calls, call{Method: req.Method, Params: req.Params})
		f.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := f.results[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (f *fakeServer) find(method string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Method == method {
			return c, true
		}
	}
	return call{}, false
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--url", url, "--timeout", "5s"}, args...))
	err := root.Execute()
	return out.String(), err
}

var testTrack = map[string]any{
	"__model__": "Track",
	"uri":       "local:track:a",
	"name":      "Song",
	"length":    200000,
	"artists":   []any{map[string]any{"__model__": "Artist", "name": "Band"}},
	"album":     map[string]any{"__model__": "Album", "name": "Record"},
}

func TestStatus(t *testing.T) {
	_, url := newFakeServer(t, map[string]any{
		"core.playback.get_state":          "playing",
		"core.playback.get_current_track":  testTrack,
		"core.playback.get_time_position":  65000,
		"core.playback.get_stream_title":   nil,
		"core.mixer.get_volume":            80,
		"core.mixer.get_mute":              false,
		"core.tracklist.get_random":        true,
		"core.tracklist.get_repeat":        false,
		"core.tracklist.get_single":        false,
		"core.tracklist.get_consume":       false,
	})

	out, err := run(t, url, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{"Band - Song (Record)", "playing", "1:05 / 3:20", "80%", "random: on"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestStatusNothingPlaying(t *testing.T) {
	_, url := newFakeServer(t, map[string]any{
		"core.playback.get_state":          "stopped",
		"core.playback.get_current_track":  nil,
		"core.playback.get_time_position":  0,
		"core.playback.get_stream_title":   nil,
		"core.mixer.get_volume":            nil,
		"core.mixer.get_mute":              false,
	})

	out, err := run(t, url, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Nothing playing") || !strings.Contains(out, "n/a") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestPlaybackCommands(t *testing.T) {
	f, url := newFakeServer(t, map[string]any{
		"core.playback.play":     nil,
		"core.playback.pause":    nil,
		"core.playback.resume":   nil,
		"core.playback.stop":     nil,
		"core.playback.next":     nil,
		"core.playback.previous": nil,
		"core.tracklist.clear":   nil,
	})

	for _, name := range []string{"pause", "resume", "stop", "next", "previous", "clear"} {
		if _, err := run(t, url, name); err != nil {
			t.Errorf("%s failed: %v", name, err)
		}
	}
	for _, method := range []string{"core.playback.pause", "core.playback.resume", "core.playback.stop",
		"core.playback.next", "core.playback.previous", "core.tracklist.clear"} {
		if _, ok := f.find(method); !ok {
			t.Errorf("Expected %s to be called", method)
		}
	}

	if _, err := run(t, url, "play", "7"); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	c, _ := f.find("core.playback.play")
	if c.Params["tlid"] != float64(7) {
		t.Errorf("Expected tlid 7, got %v", c.Params)
	}

	if _, err := run(t, url, "play", "seven"); err == nil {
		t.Error("Expected error for non-numeric tlid")
	}
}

func TestVolumeAndMute(t *testing.T) {
	f, url := newFakeServer(t, map[string]any{
		"core.mixer.get_volume": 35,
		"core.mixer.set_volume": true,
		"core.mixer.get_mute":   false,
		"core.mixer.set_mute":   true,
	})

	out, err := run(t, url, "volume")
	if err != nil || strings.TrimSpace(out) != "35" {
		t.Errorf("Expected 35, got %q (%v)", out, err)
	}

	if _, err := run(t, url, "volume", "60"); err != nil {
		t.Fatalf("set volume failed: %v", err)
	}
	c, _ := f.find("core.mixer.set_volume")
	if c.Params["volume"] != float64(60) {
		t.Errorf("Expected volume 60, got %v", c.Params)
	}

	if _, err := run(t, url, "volume", "150"); err == nil {
		t.Error("Expected error for volume out of range")
	}

	out, err = run(t, url, "mute")
	if err != nil || !strings.Contains(out, "mute: on") {
		t.Errorf("Expected toggle to on, got %q (%v)", out, err)
	}

	if _, err := run(t, url, "mute", "maybe"); err == nil {
		t.Error("Expected error for bad mute value")
	}
}

func TestSeek(t *testing.T) {
	f, url := newFakeServer(t, map[string]any{"core.playback.seek": true})

	if _, err := run(t, url, "seek", "1:30"); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	c, _ := f.find("core.playback.seek")
	if c.Params["time_position"] != float64(90000) {
		t.Errorf("Expected 90000, got %v", c.Params)
	}
}

func TestSeekRejected(t *testing.T) {
	_, url := newFakeServer(t, map[string]any{"core.playback.seek": false})
	if _, err := run(t, url, "seek", "5000"); err == nil {
		t.Error("Expected error when the server rejects the seek")
	}
}

func TestQueueAndAdd(t *testing.T) {
	f, url := newFakeServer(t, map[string]any{
		"core.tracklist.get_tl_tracks": []any{
			map[string]any{"__model__": "TlTrack", "tlid": 1, "track": testTrack},
			map[string]any{"__model__": "TlTrack", "tlid": 2, "track": map[string]any{"__model__": "Track", "uri": "local:track:b", "name": "Other"}},
		},
		"core.playback.get_current_tlid": 2,
		"core.tracklist.add": []any{
			map[string]any{"__model__": "TlTrack", "tlid": 9, "track": testTrack},
		},
		"core.playback.play": nil,
	})

	out, err := run(t, url, "queue")
	if err != nil {
		t.Fatalf("queue failed: %v", err)
	}
	if !strings.Contains(out, "Band - Song (Record)") || !strings.Contains(out, "Other") {
		t.Errorf("Unexpected queue output:\n%s", out)
	}

	out, err = run(t, url, "add", "--play", "local:track:a")
	if err != nil || !strings.Contains(out, "Added 1 tracks") {
		t.Fatalf("Unexpected add result %q (%v)", out, err)
	}
	c, _ := f.find("core.tracklist.add")
	if uris, _ := c.Params["uris"].([]any); len(uris) != 1 || uris[0] != "local:track:a" {
		t.Errorf("Unexpected add params %v", c.Params)
	}
	c, _ = f.find("core.playback.play")
	if c.Params["tlid"] != float64(9) {
		t.Errorf("Expected play of tlid 9, got %v", c.Params)
	}
}

func TestSearch(t *testing.T) {
	f, url := newFakeServer(t, map[string]any{
		"core.library.search": []any{
			map[string]any{"__model__": "SearchResult", "uri": "local:search", "tracks": []any{testTrack}},
		},
	})

	out, err := run(t, url, "search", "--field", "artist", "the", "band")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "Band - Song") {
		t.Errorf("Unexpected search output:\n%s", out)
	}

	c, _ := f.find("core.library.search")
	query, _ := c.Params["query"].(map[string]any)
	values, _ := query["artist"].([]any)
	if len(values) != 1 || values[0] != "the band" {
		t.Errorf("Unexpected query %v", c.Params)
	}
}

func TestBrowsePlaylistsHistory(t *testing.T) {
	_, url := newFakeServer(t, map[string]any{
		"core.library.browse": []any{
			map[string]any{"__model__": "Ref", "type": "directory", "uri": "local:directory", "name": "Local media"},
		},
		"core.playlists.as_list": []any{
			map[string]any{"__model__": "Ref", "type": "playlist", "uri": "m3u:road.m3u8", "name": "Road trip"},
		},
		"core.history.get_history": []any{
			[]any{1700000000000, map[string]any{"__model__": "Ref", "type": "track", "uri": "local:track:a", "name": "Song"}},
		},
	})

	out, err := run(t, url, "browse")
	if err != nil || !strings.Contains(out, "Local media") || !strings.Contains(out, "dir") {
		t.Errorf("Unexpected browse output %q (%v)", out, err)
	}

	out, err = run(t, url, "playlists")
	if err != nil || !strings.Contains(out, "Road trip") {
		t.Errorf("Unexpected playlists output %q (%v)", out, err)
	}

	out, err = run(t, url, "history")
	if err != nil || !strings.Contains(out, "Song") {
		t.Errorf("Unexpected history output %q (%v)", out, err)
	}
}

func TestArt(t *testing.T) {
	_, url := newFakeServer(t, map[string]any{
		"core.library.get_images": map[string]any{
			"local:track:a": []any{map[string]any{"__model__": "Image", "uri": "/local/cover.png", "width": 300, "height": 300}},
		},
	})

	out, err := run(t, url, "art", "--cache-dir", t.TempDir(), "local:track:a")
	if err != nil {
		t.Fatalf("art failed: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ".png") {
		t.Errorf("Expected png path, got %q", out)
	}

	if _, err := run(t, url, "art", "--cache-dir", t.TempDir(), "local:track:none"); err == nil {
		t.Error("Expected error for a track without artwork")
	}
}

func TestWatchPrintsEvents(t *testing.T) {
	f, url := newFakeServer(t, map[string]any{})
	f.greeting = map[string]any{"event": "volume_changed", "volume": 7}

	out, err := run(t, url, "watch", "--duration", "500ms")
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	if !strings.Contains(out, "online") {
		t.Errorf("Expected online line in:\n%s", out)
	}
	if !strings.Contains(out, "event:volumeChanged volume=7") {
		t.Errorf("Expected volume event in:\n%s", out)
	}
}

func TestServerError(t *testing.T) {
	_, url := newFakeServer(t, map[string]any{})
	if _, err := run(t, url, "next"); err == nil {
		t.Error("Expected error from unknown method")
	}
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/mopidy/ws"
	server.Close()

	if _, err := run(t, url, "next"); err == nil || !strings.Contains(err.Error(), "connect to") {
		t.Errorf("Expected connect error, got %v", err)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"90000", 90000, false},
		{"1:30", 90000, false},
		{"0:05", 5000, false},
		{"1:75", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestParseOnOff(t *testing.T) {
	for _, in := range []string{"on", "TRUE", "yes", "1"} {
		if v, err := parseOnOff(in); err != nil || !v {
			t.Errorf("%s: expected true", in)
		}
	}
	for _, in := range []string{"off", "false", "no", "0"} {
		if v, err := parseOnOff(in); err != nil || v {
			t.Errorf("%s: expected false", in)
		}
	}
}

func TestFormatTrack(t *testing.T) {
	tests := []struct {
		track models.Track
		want  string
	}{
		{models.Track{Name: "Song"}, "Song"},
		{models.Track{URI: "http://radio"}, "http://radio"},
		{models.Track{Name: "Song", Artists: []models.Artist{{Name: "A"}, {Name: "B"}}}, "A, B - Song"},
		{models.Track{Name: "Song", Album: &models.Album{Name: "LP"}}, "Song (LP)"},
	}
	for _, tt := range tests {
		if got := formatTrack(tt.track); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestPrinterConcurrentEmits(t *testing.T) {
	var out bytes.Buffer
	listener := printer(&out, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listener(events.Event{Name: protocol.EventStateOffline})
		}()
	}
	wg.Wait()

	if n := strings.Count(out.String(), "offline"); n != 20 {
		t.Errorf("Expected 20 offline lines, got %d", n)
	}
}

func TestFormatFields(t *testing.T) {
	got := formatFields(map[string]any{"volume": 7.0, "mute": false})
	if got != "mute=false volume=7" {
		t.Errorf("Unexpected fields %q", got)
	}

	raw, _ := json.Marshal(map[string]any{"b": []any{"x"}})
	var data map[string]any
	json.Unmarshal(raw, &data)
	if got := formatFields(data); got != `b=["x"]` {
		t.Errorf("Unexpected fields %q", got)
	}
}
