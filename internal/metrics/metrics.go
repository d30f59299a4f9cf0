package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "buybot"

// Upstream sources reported by UpstreamErrors.
const (
	SourceBasePrice    = "base_price"
	SourceTokenPrice   = "token_price"
	SourceCounterPrice = "counter_price"
	SourceOrders       = "orders"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Cycle metrics
	CyclesTotal   prometheus.Counter
	CyclePanics   prometheus.Counter
	CycleDuration prometheus.Histogram
	Priming       prometheus.Gauge

	// Upstream metrics
	UpstreamErrors *prometheus.CounterVec
	OrdersFetched  *prometheus.CounterVec

	// Pipeline metrics
	BuysDetected       *prometheus.CounterVec
	NotificationsSent  *prometheus.CounterVec
	NotificationErrors *prometheus.CounterVec
	SeenSetSize        prometheus.Gauge
	SeenEvicted        prometheus.Counter

	// Archive metrics
	ArchiveInserted prometheus.Counter
	ArchiveErrors   prometheus.Counter
	ArchiveDropped  prometheus.Counter

	// Feed metrics
	FeedClients prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance registered on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		CyclesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "cycles_total",
			Help:      "Total number of poll cycles run",
		}),
		CyclePanics: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "cycle_panics_total",
			Help:      "Total number of poll cycles that ended in a recovered panic",
		}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "cycle_duration_seconds",
			Help:      "Poll cycle duration including dispatch",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		Priming: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "priming",
			Help:      "1 until the first poll cycle has completed",
		}),

		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Total number of failed upstream reads by source",
		}, []string{"source"}),
		OrdersFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "orders_fetched_total",
			Help:      "Total number of buy orders returned per pair",
		}, []string{"pair"}),

		BuysDetected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "buys_detected_total",
			Help:      "Total number of newly seen buys per pair",
		}, []string{"pair"}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications delivered per pair",
		}, []string{"pair"}),
		NotificationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "notification_errors_total",
			Help:      "Total number of failed notification deliveries per pair",
		}, []string{"pair"}),
		SeenSetSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "seen_set_size",
			Help:      "Number of transaction hashes in the seen set",
		}),
		SeenEvicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "seen_evicted_total",
			Help:      "Total number of hashes evicted from the seen set",
		}),

		ArchiveInserted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "inserted_total",
			Help:      "Total number of buys written to the archive",
		}),
		ArchiveErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "errors_total",
			Help:      "Total number of failed archive flushes",
		}),
		ArchiveDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "dropped_total",
			Help:      "Total number of buys dropped because the archive buffer was full",
		}),

		FeedClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "clients",
			Help:      "Number of connected live feed clients",
		}),

		registry: reg,
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCycle records a completed poll cycle.
func (m *Metrics) RecordCycle(seconds float64, panicked bool) {
	if m == nil {
		return
	}
	m.CyclesTotal.Inc()
	m.CycleDuration.Observe(seconds)
	if panicked {
		m.CyclePanics.Inc()
	}
}

// SetPriming records the run mode.
func (m *Metrics) SetPriming(priming bool) {
	if m == nil {
		return
	}
	if priming {
		m.Priming.Set(1)
	} else {
		m.Priming.Set(0)
	}
}

// RecordUpstreamError records a failed upstream read.
func (m *Metrics) RecordUpstreamError(source string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(source).Inc()
}

// RecordOrdersFetched records the buy orders returned for a pair.
func (m *Metrics) RecordOrdersFetched(pair string, n int) {
	if m == nil {
		return
	}
	m.OrdersFetched.WithLabelValues(pair).Add(float64(n))
}

// RecordBuyDetected records a newly seen buy.
func (m *Metrics) RecordBuyDetected(pair string) {
	if m == nil {
		return
	}
	m.BuysDetected.WithLabelValues(pair).Inc()
}

// RecordNotification records a notification delivery attempt.
func (m *Metrics) RecordNotification(pair string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.NotificationErrors.WithLabelValues(pair).Inc()
		return
	}
	m.NotificationsSent.WithLabelValues(pair).Inc()
}

// UpdateSeenSet records the seen-set size after eviction.
func (m *Metrics) UpdateSeenSet(size, evicted int) {
	if m == nil {
		return
	}
	m.SeenSetSize.Set(float64(size))
	m.SeenEvicted.Add(float64(evicted))
}

// RecordArchiveFlush records the outcome of an archive batch flush.
func (m *Metrics) RecordArchiveFlush(inserted int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ArchiveErrors.Inc()
		return
	}
	m.ArchiveInserted.Add(float64(inserted))
}

// RecordArchiveDrop records a buy dropped by the archive writer.
func (m *Metrics) RecordArchiveDrop() {
	if m == nil {
		return
	}
	m.ArchiveDropped.Inc()
}

// SetFeedClients records the number of connected feed clients.
func (m *Metrics) SetFeedClients(n int) {
	if m == nil {
		return
	}
	m.FeedClients.Set(float64(n))
}
