// Package metrics holds the Prometheus collectors the server exports on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the server's collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	interests       *prometheus.CounterVec
	matchesCreated  prometheus.Counter
	matchesRemoved  *prometheus.CounterVec
	messagesSent    prometheus.Counter
	liveSubscribers *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventfriend",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventfriend",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		interests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventfriend",
			Name:      "interests_total",
			Help:      "Interest declarations by outcome.",
		}, []string{"outcome"}),
		matchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventfriend",
			Name:      "matches_created_total",
			Help:      "Match records created.",
		}),
		matchesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventfriend",
			Name:      "matches_removed_total",
			Help:      "Match records deleted by reason.",
		}, []string{"reason"}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventfriend",
			Name:      "messages_sent_total",
			Help:      "Chat messages stored.",
		}),
		liveSubscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "eventfriend",
			Name:      "live_subscribers",
			Help:      "Open live feed connections by transport.",
		}, []string{"transport"}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.interests,
		m.matchesCreated,
		m.matchesRemoved,
		m.messagesSent,
		m.liveSubscribers,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// InterestDeclared records a declaration outcome: "created", "duplicate" or "matched".
func (m *Metrics) InterestDeclared(outcome string) {
	if m == nil {
		return
	}
	m.interests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) MatchCreated() {
	if m == nil {
		return
	}
	m.matchesCreated.Inc()
}

func (m *Metrics) MatchRemoved(reason string) {
	if m == nil {
		return
	}
	m.matchesRemoved.WithLabelValues(reason).Inc()
}

func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

// SubscriberDelta adjusts the open live connection gauge.
func (m *Metrics) SubscriberDelta(transport string, delta float64) {
	if m == nil {
		return
	}
	m.liveSubscribers.WithLabelValues(transport).Add(delta)
}
