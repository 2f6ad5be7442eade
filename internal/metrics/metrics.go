// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "news_notes"

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	AccessDenied *prometheus.CounterVec
	FormRejected *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AccessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Requests by non-owners answered as not found, by resource and operation.",
		}, []string{"resource", "operation"}),
		FormRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_rejected_total",
			Help:      "Submitted forms rejected by validation, by form and field.",
		}, []string{"form", "field"}),
	}
	reg.MustRegister(m.Requests, m.Duration, m.AccessDenied, m.FormRejected)
	return m
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, status).Inc()
	m.Duration.WithLabelValues(method, route).Observe(seconds)
}

// Denied records an ownership denial
func (m *Metrics) Denied(resource, operation string) {
	if m == nil {
		return
	}
	m.AccessDenied.WithLabelValues(resource, operation).Inc()
}

// Rejected records a form rejection for each failing field
func (m *Metrics) Rejected(form string, fields ...string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.FormRejected.WithLabelValues(form, f).Inc()
	}
}
