// ABOUTME: Long-running subcommands: watch and discover
// ABOUTME: Streams server events, optionally exporting Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/harperreed/mopidy-go/internal/metrics"
	"github.com/harperreed/mopidy-go/pkg/discovery"
	"github.com/harperreed/mopidy-go/pkg/events"
	"github.com/harperreed/mopidy-go/pkg/mopidy"
	"github.com/harperreed/mopidy-go/pkg/protocol"
	"github.com/spf13/cobra"
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List Mopidy servers announced over mDNS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, _ := cmd.Flags().GetDuration("wait")

			servers, err := discovery.Discover(cmd.Context(), discovery.Config{Timeout: wait})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(servers) == 0 {
				fmt.Fprintln(out, "No Mopidy servers found")
				return nil
			}
			for _, s := range servers {
				fmt.Fprintf(out, "%s  %s\n", titleStyle.Render(s.Name), s.WebSocketURL())
			}
			return nil
		},
	}
	cmd.Flags().Duration("wait", discovery.DefaultTimeout, "How long to listen for answers")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream connection changes and server events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			raw, _ := cmd.Flags().GetBool("raw")
			duration, _ := cmd.Flags().GetDuration("duration")

			url, err := serverURL(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			// Reconnect forever; watching is meant to survive server restarts
			client := mopidy.New(protocol.Config{URL: url})
			defer client.Close()

			client.Events().Any(cmd, printer(cmd.OutOrStdout(), raw))

			if metricsAddr != "" {
				collector := metrics.New(client.Pending)
				collector.Attach(client.Events())
				go func() {
					if err := collector.Serve(ctx, metricsAddr); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "metrics: %v\n", err)
					}
				}()
			}

			if err := client.Connect(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("connect to %s: %w", url, err)
			}

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().Bool("raw", false, "Also print raw JSON frames")
	cmd.Flags().Duration("duration", 0, "Stop after this long, 0 runs until interrupted")
	return cmd
}

// printer returns a listener that writes one line per interesting event.
// Disconnect and Send emit on their caller's goroutine, so writes are locked.
func printer(out io.Writer, raw bool) func(events.Event) {
	var mu sync.Mutex
	return func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()

		stamp := dimStyle.Render(time.Now().Format("15:04:05"))
		switch e.Name {
		case protocol.EventStateOnline:
			fmt.Fprintf(out, "%s %s\n", stamp, okStyle.Render("online"))
		case protocol.EventStateOffline:
			fmt.Fprintf(out, "%s %s\n", stamp, badStyle.Render("offline"))
		case protocol.EventReconnectionPending:
			if r, ok := e.Data.(protocol.Reconnection); ok {
				fmt.Fprintf(out, "%s reconnecting in %s (attempt %d)\n", stamp, r.Delay, r.Attempt)
			}
		case protocol.EventServer:
			if ev, ok := e.Data.(protocol.EventData); ok {
				fmt.Fprintf(out, "%s %s %s\n", stamp, labelStyle.Render(ev.Name), formatFields(ev.Data))
			}
		case protocol.EventIncomingMessage, protocol.EventOutgoingMessage:
			if raw {
				fmt.Fprintf(out, "%s %s %v\n", stamp, dimStyle.Render(e.Name), e.Data)
			}
		}
	}
}

// formatFields renders event data as sorted key=value pairs
func formatFields(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := ""
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		v, err := json.Marshal(data[k])
		if err != nil {
			v = []byte(fmt.Sprint(data[k]))
		}
		s += k + "=" + string(v)
	}
	return s
}
