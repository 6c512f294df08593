// ABOUTME: Root command, persistent flags and connection helper
// ABOUTME: Every subcommand reaches the server through withClient
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/harperreed/mopidy-go/internal/version"
	"github.com/harperreed/mopidy-go/pkg/discovery"
	"github.com/harperreed/mopidy-go/pkg/mopidy"
	"github.com/harperreed/mopidy-go/pkg/protocol"
	"github.com/spf13/cobra"
)

const urlEnv = "MOPIDY_URL"

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mopidy-ctl",
		Short:         "Control a Mopidy music server from the command line.",
		Long:          `Talks JSON-RPC over WebSocket to a Mopidy server to control playback, browse the library and watch events.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if !verbose {
				log.SetOutput(io.Discard)
			}
		},
	}

	defaultURL := os.Getenv(urlEnv)
	if defaultURL == "" {
		defaultURL = protocol.DefaultURL
	}

	root.PersistentFlags().String("url", defaultURL, "Server WebSocket URL (env "+urlEnv+")")
	root.PersistentFlags().Bool("discover", false, "Find the server over mDNS instead of using --url")
	root.PersistentFlags().Duration("timeout", 10*time.Second, "Timeout for connecting and each command")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log connection diagnostics to stderr")

	root.AddCommand(
		newStatusCmd(),
		newPlayCmd(),
		simpleCmd("pause", "Pause playback", func(ctx context.Context, c *mopidy.Client) error { return c.Playback.Pause(ctx) }),
		simpleCmd("resume", "Resume playback", func(ctx context.Context, c *mopidy.Client) error { return c.Playback.Resume(ctx) }),
		simpleCmd("stop", "Stop playback", func(ctx context.Context, c *mopidy.Client) error { return c.Playback.Stop(ctx) }),
		simpleCmd("next", "Skip to the next track", func(ctx context.Context, c *mopidy.Client) error { return c.Playback.Next(ctx) }),
		simpleCmd("previous", "Go back to the previous track", func(ctx context.Context, c *mopidy.Client) error { return c.Playback.Previous(ctx) }),
		newVolumeCmd(),
		newMuteCmd(),
		newSeekCmd(),
		newSearchCmd(),
		newBrowseCmd(),
		newQueueCmd(),
		newAddCmd(),
		simpleCmd("clear", "Clear the tracklist", func(ctx context.Context, c *mopidy.Client) error { return c.Tracklist.Clear(ctx) }),
		newPlaylistsCmd(),
		newHistoryCmd(),
		newArtCmd(),
		newDiscoverCmd(),
		newWatchCmd(),
	)
	return root
}

// serverURL returns --url, or the first mDNS result when --discover is set
func serverURL(cmd *cobra.Command) (string, error) {
	discover, _ := cmd.Flags().GetBool("discover")
	if !discover {
		return cmd.Flags().GetString("url")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	server, err := discovery.First(ctx, discovery.Config{})
	if err != nil {
		return "", err
	}
	return server.WebSocketURL(), nil
}

// withClient connects, runs fn under the command timeout and disconnects
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *mopidy.Client) error) error {
	url, err := serverURL(cmd)
	if err != nil {
		return err
	}
	return connect(cmd, url, fn)
}

func connect(cmd *cobra.Command, url string, fn func(ctx context.Context, c *mopidy.Client) error) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := mopidy.New(protocol.Config{
		URL:        url,
		MinDelay:   250 * time.Millisecond,
		MaxRetries: 2,
	})
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect to %s: %w", url, err)
	}
	return fn(ctx, client)
}

// simpleCmd builds a command that takes no arguments and prints nothing
func simpleCmd(use, short string, fn func(ctx context.Context, c *mopidy.Client) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, fn)
		},
	}
}
