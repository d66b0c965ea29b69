package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the viewer's playback core.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	commandsTotal     prometheus.Counter
	keyEventsTotal    prometheus.Counter
	eventsLoadedTotal prometheus.Counter
	seeksTotal        prometheus.Counter
	clipAdvancesTotal prometheus.Counter
	sessionsTotal     prometheus.Counter
	activeSessions    prometheus.Gauge
	errorsTotal       prometheus.Counter
}

// New creates and registers Prometheus metrics for the viewer.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_requests_total",
		Help: "Total number of HTTP requests received",
	})
	commandsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_commands_total",
		Help: "Total number of session commands applied",
	})
	keyEventsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_key_events_total",
		Help: "Total number of key events dispatched to timeline operations",
	})
	eventsLoadedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_events_loaded_total",
		Help: "Total number of dashcam events loaded into a session",
	})
	seeksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_seeks_total",
		Help: "Total number of seek commands applied",
	})
	clipAdvancesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_clip_advances_total",
		Help: "Total number of clip navigation commands applied",
	})
	sessionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_sessions_total",
		Help: "Total number of viewing sessions opened",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "viewer_active_sessions",
		Help: "Number of currently connected viewing sessions",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		commandsTotal,
		keyEventsTotal,
		eventsLoadedTotal,
		seeksTotal,
		clipAdvancesTotal,
		sessionsTotal,
		activeSessions,
		errorsTotal,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		commandsTotal:     commandsTotal,
		keyEventsTotal:    keyEventsTotal,
		eventsLoadedTotal: eventsLoadedTotal,
		seeksTotal:        seeksTotal,
		clipAdvancesTotal: clipAdvancesTotal,
		sessionsTotal:     sessionsTotal,
		activeSessions:    activeSessions,
		errorsTotal:       errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncCommands increments the applied-commands counter.
func (m *Metrics) IncCommands() {
	m.commandsTotal.Inc()
}

// IncKeyEvents increments the dispatched-key-events counter.
func (m *Metrics) IncKeyEvents() {
	m.keyEventsTotal.Inc()
}

// IncEventsLoaded increments the events-loaded counter.
func (m *Metrics) IncEventsLoaded() {
	m.eventsLoadedTotal.Inc()
}

// IncSeeks increments the applied-seeks counter.
func (m *Metrics) IncSeeks() {
	m.seeksTotal.Inc()
}

// IncClipAdvances increments the clip-navigation counter.
func (m *Metrics) IncClipAdvances() {
	m.clipAdvancesTotal.Inc()
}

// IncSessions increments the sessions-opened counter.
func (m *Metrics) IncSessions() {
	m.sessionsTotal.Inc()
}

// SetActiveSessions sets the active sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g.
// active sessions).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
