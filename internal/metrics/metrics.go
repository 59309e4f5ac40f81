// Package metrics exposes Prometheus instruments for the room supervisor and the status server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the room synchronization client.
type Metrics struct {
	registry         *prometheus.Registry
	roomsSpawned     prometheus.Counter
	roomsTornDown    prometheus.Counter
	activeRooms      prometheus.Gauge
	mutationsStarted *prometheus.CounterVec
	mutationsFailed  *prometheus.CounterVec
	commandsEmitted  *prometheus.CounterVec
	emitErrors       prometheus.Counter
	eventsReceived   *prometheus.CounterVec
	eventsDropped    *prometheus.CounterVec
	statusRequests   *prometheus.CounterVec
}

// New creates and registers the client metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		roomsSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomsync_rooms_spawned_total",
			Help: "Total number of room actors spawned",
		}),
		roomsTornDown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomsync_rooms_torn_down_total",
			Help: "Total number of room actors torn down",
		}),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roomsync_active_rooms",
			Help: "Number of room actors currently registered",
		}),
		mutationsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomsync_mutations_started_total",
			Help: "Mutations accepted by a room actor, by kind",
		}, []string{"kind"}),
		mutationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomsync_mutations_failed_total",
			Help: "Mutations rejected by the server or never acknowledged, by kind",
		}, []string{"kind"}),
		commandsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomsync_commands_emitted_total",
			Help: "Commands handed to the transport, by type",
		}, []string{"type"}),
		emitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomsync_emit_errors_total",
			Help: "Commands the transport refused",
		}),
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomsync_events_received_total",
			Help: "Server events consumed, by type",
		}, []string{"type"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomsync_events_dropped_total",
			Help: "Server events dropped, by reason",
		}, []string{"reason"}),
		statusRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomsync_status_requests_total",
			Help: "Requests served by the status server, by status code",
		}, []string{"code"}),
	}

	registry.MustRegister(
		m.roomsSpawned,
		m.roomsTornDown,
		m.activeRooms,
		m.mutationsStarted,
		m.mutationsFailed,
		m.commandsEmitted,
		m.emitErrors,
		m.eventsReceived,
		m.eventsDropped,
		m.statusRequests,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncRoomsSpawned() { m.roomsSpawned.Inc() }
func (m *Metrics) IncRoomsTornDown() { m.roomsTornDown.Inc() }

// SetActiveRooms sets the active rooms gauge.
func (m *Metrics) SetActiveRooms(n int) {
	m.activeRooms.Set(float64(n))
}

func (m *Metrics) IncMutationsStarted(kind string) { m.mutationsStarted.WithLabelValues(kind).Inc() }
func (m *Metrics) IncMutationsFailed(kind string) { m.mutationsFailed.WithLabelValues(kind).Inc() }
func (m *Metrics) IncCommandsEmitted(typ string) { m.commandsEmitted.WithLabelValues(typ).Inc() }
func (m *Metrics) IncEmitErrors() { m.emitErrors.Inc() }
func (m *Metrics) IncEventsReceived(typ string) { m.eventsReceived.WithLabelValues(typ).Inc() }
func (m *Metrics) IncEventsDropped(reason string) { m.eventsDropped.WithLabelValues(reason).Inc() }

// IncStatusRequests counts a status server response with the given HTTP status code.
func (m *Metrics) IncStatusRequests(code int) {
	m.statusRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
