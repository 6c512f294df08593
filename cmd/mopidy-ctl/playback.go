// ABOUTME: Playback and mixer subcommands
// ABOUTME: status, play, volume, mute and seek
package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/harperreed/mopidy-go/pkg/mopidy"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current track, playback state and mixer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				out := cmd.OutOrStdout()

				state, err := c.Playback.GetState(ctx)
				if err != nil {
					return err
				}
				track, err := c.Playback.GetCurrentTrack(ctx)
				if err != nil {
					return err
				}
				pos, err := c.Playback.GetTimePosition(ctx)
				if err != nil {
					return err
				}

				if track == nil {
					fmt.Fprintln(out, titleStyle.Render("Nothing playing"))
				} else {
					fmt.Fprintln(out, titleStyle.Render(formatTrack(*track)))
					progress := formatDuration(pos)
					if track.Length != nil {
						progress += " / " + formatDuration(*track.Length)
					}
					fmt.Fprintf(out, "%s %s [%s]\n", labelStyle.Render("State:"), state, progress)
				}
				if title, err := c.Playback.GetStreamTitle(ctx); err == nil && title != "" {
					fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Stream:"), title)
				}

				volume, err := c.Mixer.GetVolume(ctx)
				if err != nil {
					return err
				}
				mute, err := c.Mixer.GetMute(ctx)
				if err != nil {
					return err
				}
				vol := "n/a"
				if volume != nil {
					vol = fmt.Sprintf("%d%%", *volume)
				}
				fmt.Fprintf(out, "%s %s  mute: %s\n", labelStyle.Render("Volume:"), vol, onOff(mute))

				random, _ := c.Tracklist.GetRandom(ctx)
				repeat, _ := c.Tracklist.GetRepeat(ctx)
				single, _ := c.Tracklist.GetSingle(ctx)
				consume, _ := c.Tracklist.GetConsume(ctx)
				fmt.Fprintf(out, "%s random: %s  repeat: %s  single: %s  consume: %s\n",
					labelStyle.Render("Options:"), onOff(random), onOff(repeat), onOff(single), onOff(consume))
				return nil
			})
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play [tlid]",
		Short: "Start playback, optionally at a tracklist id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tlid *int
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid tlid %q", args[0])
				}
				tlid = &n
			}
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				return c.Playback.Play(ctx, tlid)
			})
		},
	}
}

func newVolumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volume [0-100]",
		Short: "Show or set the mixer volume",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				level, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid volume %q", args[0])
				}
				return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
					ok, err := c.Mixer.SetVolume(ctx, level)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("server rejected volume %d", level)
					}
					return nil
				})
			}
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				volume, err := c.Mixer.GetVolume(ctx)
				if err != nil {
					return err
				}
				if volume == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "n/a")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", *volume)
				return nil
			})
		},
	}
}

func newMuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mute [on|off]",
		Short: "Set or toggle mute",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var want *bool
			if len(args) == 1 {
				b, err := parseOnOff(args[0])
				if err != nil {
					return err
				}
				want = &b
			}
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				if want == nil {
					current, err := c.Mixer.GetMute(ctx)
					if err != nil {
						return err
					}
					toggled := !current
					want = &toggled
				}
				if _, err := c.Mixer.SetMute(ctx, *want); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "mute: %s\n", onOff(*want))
				return nil
			})
		},
	}
}

func newSeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seek <ms|m:ss>",
		Short: "Seek within the current track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *mopidy.Client) error {
				ok, err := c.Playback.Seek(ctx, pos)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("seek to %s failed", formatDuration(pos))
				}
				return nil
			})
		},
	}
}
