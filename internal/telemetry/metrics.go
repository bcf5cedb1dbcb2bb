package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors served on the dev server's /metrics
// endpoint. Each Metrics instance owns a private registry, so tests can
// create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	queueLength        prometheus.Gauge
	ambiguities        prometheus.Gauge
	rebuildsTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layermake_resolutions_total",
				Help: "Number of resolution runs by outcome.",
			},
			[]string{"status"},
		),
		resolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "layermake_resolution_duration_seconds",
				Help:    "Time taken to resolve the build queue.",
				Buckets: prometheus.DefBuckets,
			},
		),
		queueLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "layermake_queue_length",
				Help: "Queue length of the last resolution run.",
			},
		),
		ambiguities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "layermake_ambiguities",
				Help: "Unresolved capabilities observed in the last resolution run.",
			},
		),
		rebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layermake_watch_rebuilds_total",
				Help: "Number of dev-server re-resolutions by trigger.",
			},
			[]string{"trigger"},
		),
	}
	m.registry.MustRegister(
		m.resolutionsTotal,
		m.resolutionDuration,
		m.queueLength,
		m.ambiguities,
		m.rebuildsTotal,
	)
	return m
}

// Resolution outcome labels.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFatal   = "fatal"
)

// ObserveResolution records one resolution run.
func (m *Metrics) ObserveResolution(status string, d time.Duration, queueLen, ambiguities int) {
	m.resolutionsTotal.WithLabelValues(status).Inc()
	m.resolutionDuration.Observe(d.Seconds())
	m.queueLength.Set(float64(queueLen))
	m.ambiguities.Set(float64(ambiguities))
}

// IncRebuild counts a dev-server re-resolution by trigger
// ("fs", "schedule", "manual").
func (m *Metrics) IncRebuild(trigger string) {
	m.rebuildsTotal.WithLabelValues(trigger).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
