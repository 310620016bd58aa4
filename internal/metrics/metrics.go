// Package metrics exposes Prometheus counters for the lookup endpoints.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service's Prometheus registry and collectors.
type Metrics struct {
	registry *prometheus.Registry

	lookups *prometheus.CounterVec
}

// New creates a Metrics with its own registry, so tests never collide on the
// default global one.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_render_lookups_total",
		Help: "Lookup operations by endpoint and outcome.",
	}, []string{"operation", "outcome"})
	registry.MustRegister(lookups)

	return &Metrics{registry: registry, lookups: lookups}
}

// ObserveLookup records one lookup. Safe on a nil receiver so handlers can be
// exercised without metrics in tests.
func (m *Metrics) ObserveLookup(operation, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(operation, outcome).Inc()
}

// Handler returns the exposition handler for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
