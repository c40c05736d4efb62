// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	accessEvents      *prometheus.CounterVec
	eligibilityChecks *prometheus.CounterVec
	refundTransitions *prometheus.CounterVec
	processorRefunds  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),

		accessEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_events_total",
			Help:      "Access events reported, by type and whether it was the first of its type.",
		}, []string{"type", "first"}),
		eligibilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_checks_total",
			Help:      "Refund eligibility verdicts.",
		}, []string{"eligible"}),
		refundTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refund_transitions_total",
			Help:      "Refund request status changes.",
		}, []string{"status"}),
		processorRefunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processor_refunds_total",
			Help:      "Refunds issued through a payment processor.",
		}, []string{"processor", "outcome"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.accessEvents,
		m.eligibilityChecks,
		m.refundTransitions,
		m.processorRefunds,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequestStarted() { m.httpInFlight.Inc() }

func (m *Metrics) RequestFinished(method, path string, status int, seconds float64) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) AccessRecorded(accessType string, first bool) {
	m.accessEvents.WithLabelValues(accessType, strconv.FormatBool(first)).Inc()
}

func (m *Metrics) EligibilityChecked(eligible bool) {
	m.eligibilityChecks.WithLabelValues(strconv.FormatBool(eligible)).Inc()
}

func (m *Metrics) RefundTransitioned(status string) {
	m.refundTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ProcessorRefund(processor, outcome string) {
	m.processorRefunds.WithLabelValues(processor, outcome).Inc()
}
