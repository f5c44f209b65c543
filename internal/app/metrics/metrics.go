// Package metrics holds the Prometheus instruments recorded by the capture pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interview_capture"

// Metrics groups every instrument. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ChunksIngested     *prometheus.CounterVec // kind
	FragmentsWritten   prometheus.Counter
	ProviderCalls      *prometheus.CounterVec   // provider, operation, status
	ProviderLatency    *prometheus.HistogramVec // provider, operation
	MergeDuration      *prometheus.HistogramVec // kind, status
	Evaluations        *prometheus.CounterVec   // outcome
	BackgroundTasks    *prometheus.GaugeVec     // state
	HTTPRequests       *prometheus.CounterVec   // method, route, status
	HTTPRequestLatency *prometheus.HistogramVec // method, route
}

// New creates the instruments and registers them on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ChunksIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_ingested_total",
			Help:      "Raw chunks persisted, by kind.",
		}, []string{"kind"}),
		FragmentsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_written_total",
			Help:      "Transcript fragments recorded in the chunk index.",
		}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "External provider calls by outcome.",
		}, []string{"provider", "operation", "status"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "External provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		MergeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Encoder run time per merge.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"kind", "status"}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Evaluate calls by outcome (created, existing, not_eligible, error).",
		}, []string{"outcome"}),
		BackgroundTasks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "background_tasks",
			Help:      "Background tasks currently in each state.",
		}, []string{"state"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.ChunksIngested,
		m.FragmentsWritten,
		m.ProviderCalls,
		m.ProviderLatency,
		m.MergeDuration,
		m.Evaluations,
		m.BackgroundTasks,
		m.HTTPRequests,
		m.HTTPRequestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ChunkIngested(kind string) {
	if m == nil {
		return
	}
	m.ChunksIngested.WithLabelValues(kind).Inc()
}

func (m *Metrics) FragmentWritten() {
	if m == nil {
		return
	}
	m.FragmentsWritten.Inc()
}

// ProviderCall records one provider call; status is "ok", "empty", "error" or "timeout"
func (m *Metrics) ProviderCall(provider, operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.ProviderCalls.WithLabelValues(provider, operation, status).Inc()
	m.ProviderLatency.WithLabelValues(provider, operation).Observe(seconds)
}

func (m *Metrics) MergeObserved(kind, status string, seconds float64) {
	if m == nil {
		return
	}
	m.MergeDuration.WithLabelValues(kind, status).Observe(seconds)
}

func (m *Metrics) EvaluationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(outcome).Inc()
}

// TaskTransition moves one task between state gauges. from may be empty for a new task.
func (m *Metrics) TaskTransition(from, to string) {
	if m == nil {
		return
	}
	if from != "" {
		m.BackgroundTasks.WithLabelValues(from).Dec()
	}
	m.BackgroundTasks.WithLabelValues(to).Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(seconds)
}
