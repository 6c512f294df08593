// ABOUTME: Library, tracklist, playlist and history subcommands
// ABOUTME: search, browse, queue, add, playlists, history and art
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/mopidy-go/internal/artwork"
	"github.com/harperreed/mopidy-go/pkg/models"
	"github.com/harperreed/mopidy-go/pkg/mopidy"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, _ := cmd.Flags().GetString("field")
			exact, _ := cmd.Flags().GetBool("exact")
			uris, _ := cmd.Flags().GetStringSlice("uri")
			limit, _ := cmd.Flags().GetInt("limit")

			query := mopidy.Query{field: {strings.Join(args, " ")}}
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				results, err := c.Library.Search(ctx, query, uris, exact)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				shown := 0
				for _, r := range results {
					for _, t := range r.Tracks {
						if limit > 0 && shown >= limit {
							return nil
						}
						fmt.Fprintf(out, "%s  %s\n", formatTrack(t), dimStyle.Render(t.URI))
						shown++
					}
				}
				if shown == 0 {
					fmt.Fprintln(out, "No tracks found")
				}
				return nil
			})
		},
	}
	cmd.Flags().String("field", "any", "Field to search: any, artist, album, track_name, genre, ...")
	cmd.Flags().Bool("exact", false, "Match exactly instead of by substring")
	cmd.Flags().StringSlice("uri", nil, "Restrict the search to these URI roots")
	cmd.Flags().Int("limit", 50, "Maximum tracks to print, 0 for all")
	return cmd
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [uri]",
		Short: "Browse the library, starting at the root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uri := ""
			if len(args) == 1 {
				uri = args[0]
			}
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				refs, err := c.Library.Browse(ctx, uri)
				if err != nil {
					return err
				}
				for _, r := range refs {
					fmt.Fprintln(cmd.OutOrStdout(), formatRef(r))
				}
				return nil
			})
		},
	}
}

func newQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List the tracklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				tracks, err := c.Tracklist.GetTlTracks(ctx)
				if err != nil {
					return err
				}
				current, err := c.Playback.GetCurrentTlid(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(tracks) == 0 {
					fmt.Fprintln(out, "Tracklist is empty")
					return nil
				}
				for _, tl := range tracks {
					marker := " "
					if current != nil && *current == tl.TLID {
						marker = okStyle.Render(">")
					}
					fmt.Fprintf(out, "%s %4d  %s\n", marker, tl.TLID, formatTrack(tl.Track))
				}
				return nil
			})
		},
	}
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <uri...>",
		Short: "Add tracks to the tracklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			play, _ := cmd.Flags().GetBool("play")
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				added, err := c.Tracklist.Add(ctx, args, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d tracks\n", len(added))
				if play && len(added) > 0 {
					tlid := added[0].TLID
					return c.Playback.Play(ctx, &tlid)
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("play", false, "Start playing the first added track")
	return cmd
}

func newPlaylistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "playlists [uri]",
		Short: "List playlists, or the items of one playlist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				var (
					refs []models.Ref
					err  error
				)
				if len(args) == 1 {
					refs, err = c.Playlists.GetItems(ctx, args[0])
				} else {
					refs, err = c.Playlists.AsList(ctx)
				}
				if err != nil {
					return err
				}
				for _, r := range refs {
					fmt.Fprintln(cmd.OutOrStdout(), formatRef(r))
				}
				return nil
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recently played tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				entries, err := c.History.GetHistory(ctx)
				if err != nil {
					return err
				}
				for _, e := range entries {
					when := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05")
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", dimStyle.Render(when), e.Ref.Name, dimStyle.Render(e.Ref.URI))
				}
				return nil
			})
		},
	}
}

func newArtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "art <track-uri>",
		Short: "Download the album art for a track and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			url, err := serverURL(cmd)
			if err != nil {
				return err
			}
			base, err := artwork.HTTPBase(url)
			if err != nil {
				return err
			}
			dl, err := artwork.NewDownloader(artwork.Config{BaseURL: base, CacheDir: cacheDir})
			if err != nil {
				return err
			}
			return connect(cmd, url, func(ctx context.Context, c *mopidy.Client) error {
				path, err := dl.ForTrack(ctx, c.Library, args[0])
				if err != nil {
					return err
				}
				if path == "" {
					return fmt.Errorf("no artwork for %s", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().String("cache-dir", "", "Artwork cache directory (default: <tmp>/mopidy-artwork)")
	return cmd
}
