// Package metrics exposes Prometheus counters for scrape cycles and deliveries.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timus_feed"

// Cycle results
const (
	ResultSuccess    = "success"
	ResultFetchError = "fetch_error"
	ResultStoreError = "store_error"
)

// Metrics holds the collectors for one registry
type Metrics struct {
	registry *prometheus.Registry

	Cycles            *prometheus.CounterVec
	CycleDuration     prometheus.Histogram
	AttemptsParsed    prometheus.Counter
	NotificationsSent prometheus.Counter
	DeliveryFailures  prometheus.Counter
	LastSuccess       prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scrape cycles run, by result",
		}, []string{"result"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one scrape cycle",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		AttemptsParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_parsed_total",
			Help:      "Submission rows parsed from the status page",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_posted_total",
			Help:      "New submissions announced",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Notifications the chat endpoint did not accept",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that completed",
		}),
	}
}

// ObserveCycle records the outcome of one cycle
func (m *Metrics) ObserveCycle(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(result).Inc()
	m.CycleDuration.Observe(duration.Seconds())
	if result == ResultSuccess {
		m.LastSuccess.SetToCurrentTime()
	}
}

// AddParsed counts parsed rows
func (m *Metrics) AddParsed(n int) {
	if m == nil {
		return
	}
	m.AttemptsParsed.Add(float64(n))
}

// IncPosted counts one announced submission
func (m *Metrics) IncPosted() {
	if m == nil {
		return
	}
	m.NotificationsSent.Inc()
}

// IncDeliveryFailure counts one failed delivery
func (m *Metrics) IncDeliveryFailure() {
	if m == nil {
		return
	}
	m.DeliveryFailures.Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
