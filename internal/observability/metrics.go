package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors exported by the service.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	failuresTotal   *prometheus.CounterVec
	syncRuns        *prometheus.CounterVec
	syncRecords     *prometheus.CounterVec
	syncDuration    prometheus.Histogram
	breakerState    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		failuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_failures_total",
			Help: "Classified failures rendered to callers.",
		}, []string{"method", "route", "code"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Synchronization runs by outcome.",
		}, []string{"outcome"}),
		syncRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_sync_records_total",
			Help: "Records reconciled by action.",
		}, []string{"action"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Wall time of synchronization runs.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
	}
	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.requestDuration, m.failuresTotal,
			m.syncRuns, m.syncRecords, m.syncDuration, m.breakerState)
	}
	return m
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts a rendered failure.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(method, route, code).Inc()
}

// RecordSync records the outcome of one synchronization run.
func (m *Metrics) RecordSync(outcome string, inserted, updated int, duration time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(outcome).Inc()
	if inserted > 0 {
		m.syncRecords.WithLabelValues("inserted").Add(float64(inserted))
	}
	if updated > 0 {
		m.syncRecords.WithLabelValues("updated").Add(float64(updated))
	}
	m.syncDuration.Observe(duration.Seconds())
}

// SetBreakerState publishes a circuit breaker state.
func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}
