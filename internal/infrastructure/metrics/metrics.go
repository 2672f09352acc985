// Package metrics exposes Prometheus instrumentation for the triage desk.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lorrc/triage-desk/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "triage"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	mutations   *prometheus.CounterVec
	tickets     prometheus.Gauge
	overrides   prometheus.Gauge
	loadErrors  prometheus.Counter
	httpTotal   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// New builds and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Operator mutations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		tickets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tickets",
			Help:      "Tickets in the current working set.",
		}),
		overrides: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overrides",
			Help:      "Persisted override entries.",
		}),
		loadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Ticket feed loads that failed.",
		}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.mutations, m.tickets, m.overrides, m.loadErrors, m.httpTotal, m.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// MutationRecorded counts one operator mutation.
func (m *Metrics) MutationRecorded(kind string, outcome domain.Outcome) {
	m.mutations.WithLabelValues(kind, string(outcome)).Inc()
}

// WorkingSetChanged updates the ticket and override gauges.
func (m *Metrics) WorkingSetChanged(tickets, overrides int) {
	m.tickets.Set(float64(tickets))
	m.overrides.Set(float64(overrides))
}

// LoadFailed counts a failed feed load.
func (m *Metrics) LoadFailed() {
	m.loadErrors.Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
