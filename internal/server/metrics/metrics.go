// Package metrics holds the Prometheus collectors of the server on a
// dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	tokensIssued  prometheus.Counter
	tokensRevoked *prometheus.CounterVec
	tokensEvicted prometheus.Counter
	tokensPurged  prometheus.Counter
}

// New registers every collector under namespace, plus the Go runtime and
// process collectors.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh_tokens",
			Name:      "issued_total",
			Help:      "Refresh tokens issued",
		}),
		tokensRevoked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "refresh_tokens",
				Name:      "revoked_total",
				Help:      "Refresh tokens revoked, by reason",
			},
			[]string{"reason"},
		),
		tokensEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh_tokens",
			Name:      "evicted_total",
			Help:      "Refresh tokens evicted to honour the per-user cap",
		}),
		tokensPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh_tokens",
			Name:      "purged_total",
			Help:      "Expired or revoked refresh tokens deleted",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.tokensIssued,
		m.tokensRevoked,
		m.tokensEvicted,
		m.tokensPurged,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) TokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

func (m *Metrics) TokensRevoked(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tokensRevoked.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) TokenEvicted() {
	if m == nil {
		return
	}
	m.tokensEvicted.Inc()
}

func (m *Metrics) TokensPurged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tokensPurged.Add(float64(n))
}
