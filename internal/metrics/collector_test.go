// ABOUTME: Tests for the Prometheus collector
// ABOUTME: Emits hub events and inspects the gathered metric families
package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harperreed/mopidy-go/pkg/events"
	"github.com/harperreed/mopidy-go/pkg/protocol"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, c *Collector) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func value(mf *dto.MetricFamily) float64 {
	m := mf.GetMetric()[0]
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	}
	return 0
}

func TestCollectorCountsTraffic(t *testing.T) {
	em := events.NewEmitter()
	c := New(func() int { return 3 })
	c.Attach(em)

	em.Emit(protocol.EventStateOnline, nil, nil)
	em.Emit(protocol.EventOutgoingMessage, nil, "{}")
	em.Emit(protocol.EventOutgoingMessage, nil, "{}")
	em.Emit(protocol.EventIncomingMessage, nil, "{}")
	em.Emit(protocol.EventReconnecting, nil, protocol.Reconnection{})
	em.Emit(protocol.EventServer, nil, protocol.EventData{Name: "event:volumeChanged"})
	em.Emit(protocol.EventServer, nil, protocol.EventData{Name: "event:volumeChanged"})
	em.Emit(protocol.EventServer, nil, protocol.EventData{Name: "event:seeked"})

	families := gather(t, c)
	assert.Equal(t, 2.0, value(families["mopidy_client_requests_sent_total"]))
	assert.Equal(t, 1.0, value(families["mopidy_client_messages_received_total"]))
	assert.Equal(t, 1.0, value(families["mopidy_client_reconnect_attempts_total"]))
	assert.Equal(t, 1.0, value(families["mopidy_client_connected"]))
	assert.Equal(t, 3.0, value(families["mopidy_client_pending_requests"]))

	byEvent := map[string]float64{}
	for _, m := range families["mopidy_client_server_events_total"].GetMetric() {
		byEvent[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"event:volumeChanged": 2, "event:seeked": 1}, byEvent)

	em.Emit(protocol.EventStateOffline, nil, nil)
	assert.Equal(t, 0.0, value(gather(t, c)["mopidy_client_connected"]))
}

func TestCollectorDetach(t *testing.T) {
	em := events.NewEmitter()
	c := New(nil)
	c.Attach(em)
	c.Detach(em)

	em.Emit(protocol.EventOutgoingMessage, nil, "{}")

	families := gather(t, c)
	assert.Equal(t, 0.0, value(families["mopidy_client_requests_sent_total"]))
	_, ok := families["mopidy_client_pending_requests"]
	assert.False(t, ok, "pending gauge should not exist without a source")
}

func TestCollectorHandler(t *testing.T) {
	em := events.NewEmitter()
	c := New(nil)
	c.Attach(em)
	em.Emit(protocol.EventOutgoingMessage, nil, "{}")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), "mopidy_client_requests_sent_total 1"))
}
