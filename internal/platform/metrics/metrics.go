package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the VOD-to-live engine.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        prometheus.Counter
	sessionsStartedTotal prometheus.Counter
	masterManifestsTotal prometheus.Counter
	mediaManifestsTotal  prometheus.Counter
	vodLoadFailuresTotal prometheus.Counter
	activeSessions       prometheus.Gauge
	errorsTotal          prometheus.Counter
}

// New creates and registers Prometheus metrics for the engine.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod2live_requests_total",
		Help: "Total number of HTTP requests received",
	})
	sessionsStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod2live_sessions_started_total",
		Help: "Total number of viewer sessions started",
	})
	masterManifestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod2live_master_manifests_total",
		Help: "Total number of master manifests served",
	})
	mediaManifestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod2live_media_manifests_total",
		Help: "Total number of live media manifests served",
	})
	vodLoadFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod2live_vod_load_failures_total",
		Help: "Total number of VOD loads that failed",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vod2live_active_sessions",
		Help: "Number of sessions currently in the session table",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod2live_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		sessionsStartedTotal,
		masterManifestsTotal,
		mediaManifestsTotal,
		vodLoadFailuresTotal,
		activeSessions,
		errorsTotal,
	)

	return &Metrics{
		registry:             registry,
		requestsTotal:        requestsTotal,
		sessionsStartedTotal: sessionsStartedTotal,
		masterManifestsTotal: masterManifestsTotal,
		mediaManifestsTotal:  mediaManifestsTotal,
		vodLoadFailuresTotal: vodLoadFailuresTotal,
		activeSessions:       activeSessions,
		errorsTotal:          errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncSessionsStarted increments the sessions started counter.
func (m *Metrics) IncSessionsStarted() {
	m.sessionsStartedTotal.Inc()
}

// IncMasterManifests increments the master manifests served counter.
func (m *Metrics) IncMasterManifests() {
	m.masterManifestsTotal.Inc()
}

// IncMediaManifests increments the media manifests served counter.
func (m *Metrics) IncMediaManifests() {
	m.mediaManifestsTotal.Inc()
}

// IncVodLoadFailures increments the VOD load failure counter.
func (m *Metrics) IncVodLoadFailures() {
	m.vodLoadFailuresTotal.Inc()
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
// updateGauges is called before each scrape to refresh gauge values (e.g. the
// active session count).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
