// ABOUTME: Remote control application orchestration
// ABOUTME: Coordinates discovery, the Mopidy connection, artwork and the TUI
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/mopidy-go/internal/artwork"
	"github.com/harperreed/mopidy-go/internal/ui"
	"github.com/harperreed/mopidy-go/pkg/discovery"
	"github.com/harperreed/mopidy-go/pkg/models"
	"github.com/harperreed/mopidy-go/pkg/mopidy"
	"github.com/harperreed/mopidy-go/pkg/protocol"
	tea "github.com/charmbracelet/bubbletea"
)

const DefaultDiscoveryTimeout = 10 * time.Second

// Config holds application configuration
type Config struct {
	// URL of the server's WebSocket endpoint. Empty means discover one.
	URL              string
	Discovery        discovery.Config
	DiscoveryTimeout time.Duration
	UseTUI           bool
	ArtworkDir       string
	// MaxRetries bounds reconnect attempts, 0 retries forever
	MaxRetries int
}

// App is a now-playing remote for one Mopidy server
type App struct {
	config   Config
	client   *mopidy.Client
	art      *artwork.Downloader
	controls *ui.Controls
	tuiProg  *tea.Program
	status   func(ui.StatusMsg)
	discover func(ctx context.Context) (discovery.ServerInfo, error)

	mu    sync.Mutex
	track ui.TrackInfo

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new app
func New(config Config) *App {
	if config.DiscoveryTimeout <= 0 {
		config.DiscoveryTimeout = DefaultDiscoveryTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		config:   config,
		controls: ui.NewControls(),
		status:   logStatus,
		ctx:      ctx,
		cancel:   cancel,
	}
	a.discover = a.discoverServer
	return a
}

// Run resolves the server, connects and blocks until Stop is called or
// the user quits the TUI
func (a *App) Run() error {
	wsURL, err := a.resolveURL()
	if err != nil {
		return err
	}

	base, err := artwork.HTTPBase(wsURL)
	if err != nil {
		return err
	}
	a.art, err = artwork.NewDownloader(artwork.Config{BaseURL: base, CacheDir: a.config.ArtworkDir})
	if err != nil {
		return fmt.Errorf("failed to create artwork cache: %w", err)
	}

	client := mopidy.New(protocol.Config{URL: wsURL, MaxRetries: a.config.MaxRetries})
	var tuiDone chan error
	var prog *tea.Program
	if a.config.UseTUI {
		prog = ui.Run(wsURL, a.controls)
		a.status = func(msg ui.StatusMsg) { prog.Send(msg) }
	}

	a.mu.Lock()
	if a.ctx.Err() != nil {
		a.mu.Unlock()
		return nil
	}
	a.client = client
	a.tuiProg = prog
	a.mu.Unlock()
	a.attach()

	if prog != nil {
		tuiDone = make(chan error, 1)
		go func() {
			_, err := prog.Run()
			tuiDone <- err
		}()
	}
	a.status(ui.StatusMsg{Server: wsURL, Connection: protocol.StateConnecting.String()})

	go a.handleControls()
	go func() {
		if err := a.client.Connect(a.ctx); err != nil {
			log.Printf("Connection failed: %v", err)
			a.status(ui.StatusMsg{Connection: a.client.State().String(), Err: err.Error()})
		}
	}()

	select {
	case <-a.ctx.Done():
	case <-a.controls.Quit:
		log.Printf("Received quit signal from TUI")
	case err := <-tuiDone:
		if err != nil {
			log.Printf("TUI exited: %v", err)
		}
	}

	a.Stop()
	return nil
}

// resolveURL returns the configured URL or the first discovered server
func (a *App) resolveURL() (string, error) {
	if a.config.URL != "" {
		return a.config.URL, nil
	}

	log.Printf("Starting server discovery...")
	ctx, cancel := context.WithTimeout(a.ctx, a.config.DiscoveryTimeout)
	defer cancel()

	server, err := a.discover(ctx)
	if err != nil {
		return "", fmt.Errorf("no server found: %w", err)
	}
	log.Printf("Discovered %s at %s", server.Name, server.Addr())
	return server.WebSocketURL(), nil
}

// discoverServer browses until the first server answers
func (a *App) discoverServer(ctx context.Context) (discovery.ServerInfo, error) {
	disc := discovery.NewManager(a.config.Discovery)
	disc.Browse()
	defer disc.Stop()

	select {
	case server := <-disc.Servers():
		return *server, nil
	case <-ctx.Done():
		return discovery.ServerInfo{}, ctx.Err()
	}
}

// attach subscribes the app to the client's events. Listeners run on the
// read goroutine, so anything that calls the server is started in its own.
func (a *App) attach() {
	a.client.OnConnectionState(func(cs mopidy.ConnectionState) {
		a.status(ui.StatusMsg{Connection: cs.State.String(), RetryIn: cs.Delay})
		if cs.State == protocol.StateOnline {
			go a.refresh()
		}
	})

	a.client.OnTrackPlayback(func(tp mopidy.TrackPlayback) {
		switch tp.Phase {
		case mopidy.PhaseStarted:
			a.showTrack(tp.TlTrack.Track)
			a.status(ui.StatusMsg{State: string(models.StatePlaying)})
		case mopidy.PhasePaused:
			pos := tp.TimePosition
			a.status(ui.StatusMsg{State: string(models.StatePaused), Position: &pos})
		case mopidy.PhaseResumed:
			pos := tp.TimePosition
			a.status(ui.StatusMsg{State: string(models.StatePlaying), Position: &pos})
		}
	})

	a.client.OnPlaybackStateChanged(func(_, newState models.PlaybackState) {
		a.status(ui.StatusMsg{State: string(newState)})
	})

	a.client.OnVolumeChanged(func(volume int) {
		a.status(ui.StatusMsg{Volume: &volume})
	})

	a.client.OnMuteChanged(func(mute bool) {
		a.status(ui.StatusMsg{Muted: &mute})
	})

	a.client.OnSeeked(func(timePosition int) {
		a.status(ui.StatusMsg{Position: &timePosition})
	})

	a.client.OnStreamTitleChanged(func(title string) {
		a.mu.Lock()
		info := a.track
		a.mu.Unlock()
		info.Title = title
		a.status(ui.StatusMsg{Track: &info})
	})
}

// refresh pulls the full player state after (re)connecting
func (a *App) refresh() {
	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()

	pb := a.client.Playback
	track, err := pb.GetCurrentTrack(ctx)
	if err != nil {
		a.reportError("get current track", err)
		return
	}
	if track != nil {
		a.showTrack(*track)
	}

	msg := ui.StatusMsg{}
	if state, err := pb.GetState(ctx); err == nil {
		msg.State = string(state)
	} else {
		a.reportError("get state", err)
	}
	if pos, err := pb.GetTimePosition(ctx); err == nil {
		msg.Position = &pos
	}
	if vol, err := a.client.Mixer.GetVolume(ctx); err == nil && vol != nil {
		msg.Volume = vol
	}
	if mute, err := a.client.Mixer.GetMute(ctx); err == nil {
		msg.Muted = &mute
	}
	a.status(msg)
}

// showTrack displays a track and starts fetching its artwork
func (a *App) showTrack(track models.Track) {
	info := TrackInfo(track)
	a.mu.Lock()
	a.track = info
	a.mu.Unlock()

	a.status(ui.StatusMsg{Track: &info})
	if track.URI != "" {
		go a.loadArtwork(track.URI)
	}
}

func (a *App) loadArtwork(uri string) {
	ctx, cancel := context.WithTimeout(a.ctx, 30*time.Second)
	defer cancel()

	path, err := a.art.ForTrack(ctx, a.client.Library, uri)
	if err != nil {
		log.Printf("Artwork for %s: %v", uri, err)
		return
	}
	if path != "" {
		a.status(ui.StatusMsg{ArtworkPath: path})
	}
}

// handleControls processes commands from the TUI
func (a *App) handleControls() {
	for {
		select {
		case cmd := <-a.controls.Commands:
			if err := a.handleCommand(a.ctx, cmd); err != nil {
				a.reportError(string(cmd.Action), err)
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// handleCommand maps a TUI command onto the core API
func (a *App) handleCommand(ctx context.Context, cmd ui.Command) error {
	pb := a.client.Playback
	switch cmd.Action {
	case ui.ActionToggle:
		state, err := pb.GetState(ctx)
		if err != nil {
			return err
		}
		switch state {
		case models.StatePlaying:
			return pb.Pause(ctx)
		case models.StatePaused:
			return pb.Resume(ctx)
		default:
			return pb.Play(ctx, nil)
		}
	case ui.ActionNext:
		return pb.Next(ctx)
	case ui.ActionPrevious:
		return pb.Previous(ctx)
	case ui.ActionVolume:
		_, err := a.client.Mixer.SetVolume(ctx, cmd.Volume)
		return err
	case ui.ActionMute:
		_, err := a.client.Mixer.SetMute(ctx, cmd.Mute)
		return err
	}
	return fmt.Errorf("unknown action %q", cmd.Action)
}

func (a *App) reportError(op string, err error) {
	log.Printf("%s: %v", op, err)
	a.status(ui.StatusMsg{Err: fmt.Sprintf("%s: %v", op, err)})
}

// Stop stops the app
func (a *App) Stop() {
	a.mu.Lock()
	a.cancel()
	client, prog := a.client, a.tuiProg
	a.mu.Unlock()

	if client != nil {
		client.RemoveListeners()
		client.Close()
	}

	if prog != nil {
		prog.Quit()
	}
}

// TrackInfo converts a track to its display form
func TrackInfo(track models.Track) ui.TrackInfo {
	info := ui.TrackInfo{Title: track.Name}
	if info.Title == "" {
		info.Title = track.URI
	}

	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	info.Artist = strings.Join(names, ", ")

	if track.Album != nil {
		info.Album = track.Album.Name
	}
	if track.Length != nil {
		info.Length = *track.Length
	}
	return info
}

// logStatus is the status sink when no TUI is running
func logStatus(msg ui.StatusMsg) {
	switch {
	case msg.Track != nil:
		log.Printf("Now playing: %s - %s (%s)", msg.Track.Artist, msg.Track.Title, msg.Track.Album)
	case msg.Connection != "":
		if msg.RetryIn > 0 {
			log.Printf("Connection: %s (retry in %s)", msg.Connection, msg.RetryIn)
		} else {
			log.Printf("Connection: %s", msg.Connection)
		}
	case msg.State != "":
		log.Printf("Playback: %s", msg.State)
	case msg.Volume != nil:
		log.Printf("Volume: %d%%", *msg.Volume)
	case msg.Muted != nil:
		log.Printf("Muted: %v", *msg.Muted)
	case msg.ArtworkPath != "":
		log.Printf("Artwork: %s", msg.ArtworkPath)
	}
}
