// Package metrics holds the prometheus collectors for conversions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "statement_extractor"

// Metrics is a set of collectors registered on their own registry. A nil
// *Metrics records nothing.
type Metrics struct {
	Registry     *prometheus.Registry
	Conversions  *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Duration     prometheus.Histogram
	Transactions prometheus.Histogram
	Rejected     prometheus.Counter
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Statements converted, by parse strategy.",
		}, []string{"strategy"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_failures_total",
			Help:      "Conversions that returned an error, by stage.",
		}, []string{"stage"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Wall time of one conversion.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		Transactions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transactions_per_statement",
			Help:      "Transactions extracted from one statement.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_rate_limited_total",
			Help:      "Uploads refused by the rate limiter.",
		}),
	}
	m.Registry.MustRegister(
		m.Conversions, m.Failures, m.Duration, m.Transactions, m.Rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records a finished conversion.
func (m *Metrics) Observe(strategy string, transactions int, d time.Duration) {
	if m == nil {
		return
	}
	m.Conversions.WithLabelValues(strategy).Inc()
	m.Transactions.Observe(float64(transactions))
	m.Duration.Observe(d.Seconds())
}

// Failed records a conversion error at stage.
func (m *Metrics) Failed(stage string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(stage).Inc()
}

// RateLimited records a refused upload.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.Rejected.Inc()
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
