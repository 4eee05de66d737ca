// Package metrics exposes Prometheus counters/histograms for the probe
// server and the HTTP handlers that serve them, grounded on the
// teacher's internal/monitoring Prometheus client and
// internal/monitoring/health.PrometheusExporter (a registry plus a
// pair of plain HTTP handlers, kept separate from the main protocol
// listener).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the process-wide Prometheus registry and the named
// collectors the session driver reports into through the
// session.Metrics interface.
type Collector struct {
	registry *prometheus.Registry

	challengeTotal    *prometheus.CounterVec
	challengeDuration *prometheus.HistogramVec
	sessionScore      prometheus.Histogram
	sessionsActive    prometheus.Gauge
}

// New builds a Collector with its own private registry, matching the
// teacher's PrometheusClientImpl.NewPrometheusClient (one registry per
// process, not the global default one).
func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		challengeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "probeserver_challenge_total",
			Help: "Total CPU and network challenges issued, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		challengeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "probeserver_challenge_duration_ms",
			Help:    "Observed challenge round-trip time in milliseconds, by kind.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 14),
		}, []string{"kind"}),
		sessionScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "probeserver_session_score",
			Help:    "Final 0-100 score of completed sessions.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "probeserver_sessions_active",
			Help: "Number of measurement sessions currently in progress.",
		}),
	}

	registry.MustRegister(c.challengeTotal, c.challengeDuration, c.sessionScore, c.sessionsActive)
	return c
}

// ObserveChallenge satisfies session.Metrics.
func (c *Collector) ObserveChallenge(kind string, elapsedMS int64, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.challengeTotal.WithLabelValues(kind, outcome).Inc()
	if success {
		c.challengeDuration.WithLabelValues(kind).Observe(float64(elapsedMS))
	}
}

// ObserveSession satisfies session.Metrics.
func (c *Collector) ObserveSession(score int) {
	c.sessionScore.Observe(float64(score))
}

// SessionStarted increments the active-session gauge; pair with
// SessionFinished via defer at the call site.
func (c *Collector) SessionStarted() {
	c.sessionsActive.Inc()
}

// SessionFinished decrements the active-session gauge.
func (c *Collector) SessionFinished() {
	c.sessionsActive.Dec()
}

// Handler returns the HTTP handler serving /metrics in Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// HealthHandler returns a trivial liveness handler, mirroring the
// teacher's separate /health endpoint alongside /metrics.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
