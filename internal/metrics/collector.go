// ABOUTME: Prometheus metrics for a Mopidy client connection
// ABOUTME: Counts traffic and events from the event hub and serves /metrics
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harperreed/mopidy-go/pkg/events"
	"github.com/harperreed/mopidy-go/pkg/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mopidy_client"

// Collector turns hub traffic into Prometheus metrics
type Collector struct {
	registry *prometheus.Registry

	requests   prometheus.Counter
	messages   prometheus.Counter
	events     *prometheus.CounterVec
	reconnects prometheus.Counter
	online     prometheus.Gauge
}

// New creates a collector on its own registry. pending reports outstanding
// requests and may be nil.
func New(pending func() int) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_sent_total",
			Help:      "JSON-RPC requests written to the socket",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Frames read from the socket",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_events_total",
			Help:      "Server events by normalized name",
		}, []string{"event"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts_total",
			Help:      "Reconnect attempts after backoff",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while the socket is online",
		}),
	}

	c.registry.MustRegister(c.requests, c.messages, c.events, c.reconnects, c.online)
	if pending != nil {
		c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_requests",
			Help:      "Requests waiting for a response",
		}, func() float64 { return float64(pending()) }))
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying Prometheus registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Attach subscribes the collector to every event on em
func (c *Collector) Attach(em *events.Emitter) events.Handle {
	return em.Any(c, c.observe)
}

// Detach removes the collector's subscriptions from em
func (c *Collector) Detach(em *events.Emitter) {
	em.OffOwner(c)
}

func (c *Collector) observe(e events.Event) {
	switch e.Name {
	case protocol.EventOutgoingMessage:
		c.requests.Inc()
	case protocol.EventIncomingMessage:
		c.messages.Inc()
	case protocol.EventReconnecting:
		c.reconnects.Inc()
	case protocol.EventStateOnline:
		c.online.Set(1)
	case protocol.EventStateOffline:
		c.online.Set(0)
	case protocol.EventServer:
		if ev, ok := e.Data.(protocol.EventData); ok {
			c.events.WithLabelValues(ev.Name).Inc()
		}
	}
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Serve exposes /metrics and /health on addr until ctx is done
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving metrics on %s/metrics", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
