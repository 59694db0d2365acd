// Package metrics exposes Prometheus counters for squad building, ballots and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "matchday"

// gap buckets are rating points between the two sides.
var ratingGapBuckets = []float64{0, 1, 2, 5, 10, 20, 40, 80}

type Manager struct {
	namespace      string
	latencyBuckets []float64
	enabled        bool
	registry       *prometheus.Registry

	squadsBuilt         prometheus.Counter
	squadRatingGap      prometheus.Histogram
	ballotsSubmitted    prometheus.Counter
	aggregations        *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      defaultNamespace,
		latencyBuckets: prometheus.DefBuckets,
		enabled:        true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

// NewNop returns a disabled manager backed by a private registry.
func NewNop() *Manager {
	return NewManager(WithMetricsEnabled(false))
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.squadsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "squads_built_total",
		Help:      "Total number of squads built and saved.",
	})
	m.squadRatingGap = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "squad_rating_gap",
		Help:      "Absolute rating difference between the two sides of a built squad.",
		Buckets:   ratingGapBuckets,
	})
	m.ballotsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "ballots_submitted_total",
		Help:      "Total number of accepted post-match ballots.",
	})
	m.aggregations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "aggregations_total",
		Help:      "Rating aggregations by mode and outcome.",
	}, []string{"mode", "outcome"})
	m.eventsPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "events_published_total",
		Help:      "Domain events handed to the broker by subject and outcome.",
	}, []string{"subject", "outcome"})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   m.latencyBuckets,
	}, []string{"method", "route"})
}

func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Manager) RecordSquadBuilt(gap int) {
	if !m.Enabled() {
		return
	}
	m.squadsBuilt.Inc()
	if gap < 0 {
		gap = -gap
	}
	m.squadRatingGap.Observe(float64(gap))
}

func (m *Manager) RecordBallot() {
	if !m.Enabled() {
		return
	}
	m.ballotsSubmitted.Inc()
}

func (m *Manager) RecordAggregation(mode, outcome string) {
	if !m.Enabled() {
		return
	}
	m.aggregations.WithLabelValues(mode, outcome).Inc()
}

func (m *Manager) RecordPublish(subject string, err error) {
	if !m.Enabled() {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventsPublished.WithLabelValues(subject, outcome).Inc()
}

func (m *Manager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if !m.Enabled() {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
