// Package metrics exposes Prometheus collectors for the research pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for backend calls.
const (
	OutcomeSuccess = "success"
	OutcomeBlocked = "blocked"
	OutcomeNetwork = "network_error"
	OutcomeParse   = "parse_error"
	OutcomeRefused = "refused"
)

// Metrics bundles every collector behind one registry.
type Metrics struct {
	registry *prometheus.Registry

	BackendCalls        *prometheus.CounterVec
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	SyntheticFallbacks  prometheus.Counter
	ValidationDecisions *prometheus.CounterVec
	EntitiesProcessed   prometheus.Counter
	EntityDuration      prometheus.Histogram
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BackendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goveille_backend_calls_total",
			Help: "Search backend calls by backend and outcome.",
		}, []string{"backend", "outcome"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goveille_cache_hits_total",
			Help: "Response cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goveille_cache_misses_total",
			Help: "Response cache misses.",
		}),
		SyntheticFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goveille_synthetic_fallbacks_total",
			Help: "Queries answered by the synthetic fallback generator.",
		}),
		ValidationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goveille_validation_decisions_total",
			Help: "Relevance validation decisions by outcome or reject reason.",
		}, []string{"decision"}),
		EntitiesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goveille_entities_processed_total",
			Help: "Entities fully processed by the pipeline.",
		}),
		EntityDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "goveille_entity_duration_seconds",
			Help:    "Wall-clock processing time per entity.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.BackendCalls,
		m.CacheHits,
		m.CacheMisses,
		m.SyntheticFallbacks,
		m.ValidationDecisions,
		m.EntitiesProcessed,
		m.EntityDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
