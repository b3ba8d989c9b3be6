// Package metrics exposes prometheus instrumentation for upstream calls and the OAuth flow.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "etsy_receipts"

// Metrics holds the collectors registered for this process
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	flowTransitions  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total Etsy API requests by operation and status code",
			},
			[]string{"op", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Duration of Etsy API requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"op"},
		),
		flowTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oauth_flow_transitions_total",
				Help:      "OAuth flow state transitions by target state",
			},
			[]string{"state"},
		),
	}

	reg.MustRegister(m.upstreamRequests, m.upstreamDuration, m.flowTransitions)
	return m
}

// ObserveUpstream records one Etsy call. status 0 means no response was received.
func (m *Metrics) ObserveUpstream(op string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(op, label).Inc()
	m.upstreamDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveTransition records the flow entering state
func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.flowTransitions.WithLabelValues(state).Inc()
}
