// ABOUTME: Entry point for the Mopidy now-playing remote
// ABOUTME: Parses CLI flags and starts the remote application
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/mopidy-go/internal/app"
	"github.com/harperreed/mopidy-go/internal/version"
	"github.com/harperreed/mopidy-go/pkg/discovery"
)

var (
	serverURL   = flag.String("url", "", "Server WebSocket URL, e.g. ws://localhost:6680/mopidy/ws (skip mDNS)")
	server      = flag.String("server", "", "Alias for -url")
	discoverFor = flag.Duration("discover-timeout", app.DefaultDiscoveryTimeout, "How long to browse mDNS for a server")
	maxRetries  = flag.Int("max-retries", 0, "Reconnect attempts before giving up (0 retries forever)")
	artworkDir  = flag.String("artwork-dir", "", "Album art cache directory (default: <tmp>/mopidy-artwork)")
	logFile     = flag.String("log-file", "mopidy-remote.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.UserAgent())
		return
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	url := *serverURL
	if url == "" {
		url = *server
	}

	log.Printf("Starting %s", version.UserAgent())

	remote := app.New(app.Config{
		URL:              url,
		Discovery:        discovery.Config{Timeout: 3 * time.Second},
		DiscoveryTimeout: *discoverFor,
		UseTUI:           useTUI,
		ArtworkDir:       *artworkDir,
		MaxRetries:       *maxRetries,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Shutdown signal received")
		remote.Stop()
	}()

	if err := remote.Run(); err != nil {
		log.Printf("Remote failed: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log.Printf("Remote stopped")
}
