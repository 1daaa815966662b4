package graphql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the compiler and client collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CompileFailures *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "graphql_request",
				Subsystem: "statement_cache",
				Name:      "hits_total",
				Help:      "Compiles served from the statement cache",
			},
		),

		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "graphql_request",
				Subsystem: "statement_cache",
				Name:      "misses_total",
				Help:      "Compiles that had to parse and assemble a document",
			},
		),

		CompileFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphql_request",
				Subsystem: "compiler",
				Name:      "failures_total",
				Help:      "Rejected shorthand batches by error kind",
			},
			[]string{"kind"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "graphql_request",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "GraphQL request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.CacheHits, m.CacheMisses, m.CompileFailures, m.RequestDuration)
	}
	return m
}

func (m *Metrics) recordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) recordCompileFailure(kind string) {
	if m == nil {
		return
	}
	m.CompileFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeRequest(op OperationType, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(op.String(), outcome).Observe(time.Since(started).Seconds())
}
