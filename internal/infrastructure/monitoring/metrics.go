package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "media"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Frame loop
	Sessions     prometheus.Gauge
	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	TickPanics   prometheus.Counter

	// Renderers
	Launches       *prometheus.CounterVec
	PluginFailures *prometheus.CounterVec

	// Discovery
	Discoveries       *prometheus.CounterVec
	DiscoveryDuration prometheus.Histogram

	// Debug API
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	Sessions        int     `json:"sessions"`
	Ticks           int64   `json:"ticks"`
	Panics          int64   `json:"panics"`
	Launches        int64   `json:"launches"`
	LaunchFailures  int64   `json:"launch_failures"`
	PluginFailures  int64   `json:"plugin_failures"`
	Discoveries     int64   `json:"discoveries"`
	DiscoveryErrors int64   `json:"discovery_errors"`
	LastTickMillis  float64 `json:"last_tick_ms"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// NewMetrics creates the collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	m.Sessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Number of live media sessions",
	})
	m.Ticks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "Total number of registry ticks",
	})
	m.TickDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Registry tick duration in seconds",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .016, .033, .05, .1, .25},
	})
	m.TickPanics = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tick_panics_total",
		Help:      "Total number of recovered panics during ticks",
	})

	m.Launches = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "launches_total",
		Help:      "Total number of renderer launches",
	}, []string{"backend", "outcome"})
	m.PluginFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plugin_failures_total",
		Help:      "Total number of renderer crashes",
	}, []string{"backend"})

	m.Discoveries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discoveries_total",
		Help:      "Total number of content type probes",
	}, []string{"outcome"})
	m.DiscoveryDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "discovery_duration_seconds",
		Help:      "Content type probe duration in seconds",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	m.RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of debug API requests",
	}, []string{"method", "path", "status"})
	m.RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Debug API request duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method", "path"})

	m.Uptime = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Media host uptime in seconds",
	}, func() float64 {
		return time.Since(m.startTime).Seconds()
	})

	return m
}

// ObserveTick records one registry tick
func (m *Metrics) ObserveTick(elapsed time.Duration, sessions int) {
	m.Ticks.Inc()
	m.TickDuration.Observe(elapsed.Seconds())
	m.Sessions.Set(float64(sessions))

	m.mu.Lock()
	m.snapshot.Ticks++
	m.snapshot.Sessions = sessions
	m.snapshot.LastTickMillis = float64(elapsed) / float64(time.Millisecond)
	m.mu.Unlock()
}

// ObservePanic records a recovered panic
func (m *Metrics) ObservePanic() {
	m.TickPanics.Inc()
	m.mu.Lock()
	m.snapshot.Panics++
	m.mu.Unlock()
}

// ObserveLaunch records a renderer launch attempt
func (m *Metrics) ObserveLaunch(backend, outcome string) {
	m.Launches.WithLabelValues(backend, outcome).Inc()
	m.mu.Lock()
	m.snapshot.Launches++
	if outcome != "ok" {
		m.snapshot.LaunchFailures++
	}
	m.mu.Unlock()
}

// ObservePluginFailure records a renderer crash
func (m *Metrics) ObservePluginFailure(backend string) {
	m.PluginFailures.WithLabelValues(backend).Inc()
	m.mu.Lock()
	m.snapshot.PluginFailures++
	m.mu.Unlock()
}

// ObserveDiscovery records a finished content type probe
func (m *Metrics) ObserveDiscovery(outcome string, elapsed time.Duration) {
	m.Discoveries.WithLabelValues(outcome).Inc()
	m.DiscoveryDuration.Observe(elapsed.Seconds())
	m.mu.Lock()
	m.snapshot.Discoveries++
	if outcome == "error" {
		m.snapshot.DiscoveryErrors++
	}
	m.mu.Unlock()
}

// RecordHTTPRequest records a debug API request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
