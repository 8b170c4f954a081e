// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/tipscan/pkg/observability"
)

// Metrics holds the tipscan metrics and the registry they live in.
type Metrics struct {
	SweepsTotal        *prometheus.CounterVec
	SweepDuration      prometheus.Histogram
	PointsTotal        *prometheus.CounterVec
	PointDuration      prometheus.Histogram
	SweepsInFlight     prometheus.Gauge
	CacheEventsTotal   *prometheus.CounterVec
	CacheBytesWritten  prometheus.Counter
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a fresh registry with all metrics registered.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.initSweepMetrics()
	m.initCacheMetrics()
	m.initHTTPMetrics()
	return m
}

func (m *Metrics) initSweepMetrics() {
	m.SweepsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tipscan_sweeps_total",
			Help: "Total number of sweep runs by outcome",
		},
		[]string{"outcome"},
	)

	m.SweepDuration = promauto.With(m.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tipscan_sweep_duration_seconds",
			Help:    "Wall time of sweep runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)

	m.PointsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tipscan_points_total",
			Help: "Transport queries by status (solved, cached, failed)",
		},
		[]string{"status"},
	)

	m.PointDuration = promauto.With(m.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tipscan_point_duration_seconds",
			Help:    "Latency of a single transport query in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.SweepsInFlight = promauto.With(m.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tipscan_sweeps_in_flight",
			Help: "Number of sweeps currently running",
		},
	)
}

func (m *Metrics) initCacheMetrics() {
	m.CacheEventsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tipscan_cache_events_total",
			Help: "Cache lookups and writes by key type and event",
		},
		[]string{"key_type", "event"},
	)

	m.CacheBytesWritten = promauto.With(m.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tipscan_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		},
	)
}

func (m *Metrics) initHTTPMetrics() {
	m.HTTPRequestsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tipscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestLatency = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tipscan_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Register installs m as sweep, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetSweepHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// OnSweepStart implements observability.SweepHooks.
func (m *Metrics) OnSweepStart(context.Context, int, int) {
	m.SweepsInFlight.Inc()
}

// OnPointComplete implements observability.SweepHooks.
func (m *Metrics) OnPointComplete(_ context.Context, _ string, cached bool, d time.Duration, err error) {
	switch {
	case err != nil:
		m.PointsTotal.WithLabelValues("failed").Inc()
	case cached:
		m.PointsTotal.WithLabelValues("cached").Inc()
	default:
		m.PointsTotal.WithLabelValues("solved").Inc()
	}
	if !cached {
		m.PointDuration.Observe(d.Seconds())
	}
}

// OnSweepComplete implements observability.SweepHooks.
func (m *Metrics) OnSweepComplete(_ context.Context, _, failed int, d time.Duration, interrupted bool) {
	m.SweepsInFlight.Dec()
	outcome := "complete"
	if interrupted {
		outcome = "interrupted"
	} else if failed > 0 {
		outcome = "failed"
	}
	m.SweepsTotal.WithLabelValues(outcome).Inc()
	m.SweepDuration.Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEventsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEventsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEventsTotal.WithLabelValues(keyType, "set").Inc()
	m.CacheBytesWritten.Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.SweepHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
