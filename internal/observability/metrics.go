// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "ciphershield"

// Metrics holds the Prometheus collectors for the transform pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	redactions *prometheus.CounterVec
	fallbacks  prometheus.Counter
}

// NewMetrics creates collectors on a private registry so several pipelines can coexist in one process
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Transform requests by action, format and outcome.",
		}, []string{"action", "format", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end transform latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action", "format"}),
		redactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "redactions_total",
			Help:      "Spans replaced by a placeholder, by entity type.",
		}, []string{"entity_type"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "confidence_fallbacks_total",
			Help:      "Mapping items whose span matched no detection and were given confidence 0.",
		}),
	}
}

// ObserveRequest records one finished request. outcome is "ok" or an error kind name.
func (m *Metrics) ObserveRequest(action, format, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(action, format, outcome).Inc()
	m.duration.WithLabelValues(action, format).Observe(elapsed.Seconds())
}

// AddRedaction counts one replaced span
func (m *Metrics) AddRedaction(entityType string) {
	if m == nil {
		return
	}
	m.redactions.WithLabelValues(entityType).Inc()
}

// AddConfidenceFallbacks counts mapping items that fell back to confidence 0
func (m *Metrics) AddConfidenceFallbacks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fallbacks.Add(float64(n))
}

// Registry exposes the underlying registry for tests and custom exporters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
