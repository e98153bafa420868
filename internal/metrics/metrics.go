// Package metrics exposes router counters and latencies to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forgecore"

// Metrics holds the router collectors.
type Metrics struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	hostCalls     prometheus.Counter
	journalErrors prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Routed prompts, partitioned by category and status.",
		}, []string{"category", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_duration_seconds",
			Help:      "Time spent routing a prompt, from extraction to journaling.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"category"}),
		hostCalls: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_calls_total",
			Help:      "Host calls that completed, the failing call excluded.",
		}),
		journalErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_errors_total",
			Help:      "Failed journal writes.",
		}),
	}
}

// ObserveRoute records one routed prompt.
func (m *Metrics) ObserveRoute(category, status string, d time.Duration, calls int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(category, status).Inc()
	m.duration.WithLabelValues(category).Observe(d.Seconds())
	m.hostCalls.Add(float64(calls))
}

// JournalError counts a failed journal write.
func (m *Metrics) JournalError() {
	if m == nil {
		return
	}
	m.journalErrors.Inc()
}
