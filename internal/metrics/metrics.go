// Package metrics exposes Prometheus collectors for ingestion,
// classification, oracle and HTTP activity.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/notesift/internal/oracle"
)

const namespace = "notesift"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	ingestRuns      *prometheus.CounterVec
	documents       *prometheus.CounterVec
	newRecords      prometheus.Counter
	classifications *prometheus.CounterVec
	oracleCalls     *prometheus.CounterVec
	oracleDuration  prometheus.Histogram
	httpRequests    *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Ingestion runs by result.",
		}, []string{"result"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Listed documents by outcome.",
		}, []string{"outcome"}),
		newRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "new_records_total",
			Help:      "Records fetched or segmented before deduplication.",
		}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "results_total",
			Help:      "Classification results by terminal state.",
		}, []string{"state"}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Oracle calls by result.",
		}, []string{"result"}),
		oracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Oracle call latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.ingestRuns, m.documents, m.newRecords, m.classifications,
		m.oracleCalls, m.oracleDuration, m.httpRequests,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IngestRun counts one ingestion run.
func (m *Metrics) IngestRun(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ingestRuns.WithLabelValues(result).Inc()
}

// Document counts one listed document by outcome (processed, skipped, failed, deferred).
func (m *Metrics) Document(outcome string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(outcome).Inc()
}

// NewRecords adds n fetched records.
func (m *Metrics) NewRecords(n int) {
	if m == nil {
		return
	}
	m.newRecords.Add(float64(n))
}

// Classification counts one terminal pipeline state.
func (m *Metrics) Classification(state string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(state).Inc()
}

// HTTPRequest counts one served request.
func (m *Metrics) HTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Oracle wraps o so every call is counted and timed.
func (m *Metrics) Oracle(o oracle.Oracle) oracle.Oracle {
	if m == nil {
		return o
	}
	return oracle.Func(func(ctx context.Context, system, user string) (string, error) {
		start := time.Now()
		answer, err := o.Ask(ctx, system, user)
		m.oracleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			m.oracleCalls.WithLabelValues("error").Inc()
			return "", err
		}
		m.oracleCalls.WithLabelValues("ok").Inc()
		return answer, nil
	})
}
