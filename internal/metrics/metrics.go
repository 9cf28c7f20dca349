// Package metrics exposes prometheus instrumentation for trie operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one server instance. Each instance owns
// its registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// operationsTotal counts operations by name and outcome status
	operationsTotal *prometheus.CounterVec

	// operationDuration tracks time spent inside the trie per operation
	operationDuration *prometheus.HistogramVec

	words       prometheus.Gauge
	nodes       prometheus.Gauge
	rateLimited prometheus.Counter
}

// New creates a Metrics instance with a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trie_operations_total",
			Help: "Total trie operations by operation and outcome status",
		}, []string{"operation", "status"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trie_operation_duration_seconds",
			Help:    "Trie operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"operation"}),
		words: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trie_words",
			Help: "Number of words currently stored",
		}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trie_nodes",
			Help: "Number of nodes below the root",
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "trie_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// ObserveOperation records one completed operation
func (m *Metrics) ObserveOperation(operation, status string, elapsed time.Duration) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetSize records the current size of the trie
func (m *Metrics) SetSize(words, nodes int) {
	m.words.Set(float64(words))
	m.nodes.Set(float64(nodes))
}

// IncRateLimited counts a request rejected by the rate limiter
func (m *Metrics) IncRateLimited() {
	m.rateLimited.Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
