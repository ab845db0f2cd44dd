package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Harbormaster
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Change feed metrics
	ChangeEventsTotal  prometheus.CounterVec
	ChangeFeedLag      prometheus.GaugeVec
	ChangeEventsFailed prometheus.CounterVec

	// Business Metrics
	ChargesBridgedTotal    prometheus.CounterVec
	TripsFabricatedTotal   prometheus.Counter
	FanoutWritesTotal      prometheus.Counter
	AuditEntriesTotal      prometheus.CounterVec
	GhostSavesTotal        prometheus.Counter
	BackfillDuration       prometheus.Histogram
	ReconciliationDuration prometheus.Histogram
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harbormaster_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harbormaster_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harbormaster_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Change feed metrics
		ChangeEventsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harbormaster_change_events_total",
				Help: "Total change events processed by stream and consumer group",
			},
			[]string{"stream", "group"},
		),
		ChangeFeedLag: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harbormaster_change_feed_pending",
				Help: "Unacknowledged change events per stream and consumer group",
			},
			[]string{"stream", "group"},
		),
		ChangeEventsFailed: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harbormaster_change_events_failed_total",
				Help: "Change events whose handler returned an error",
			},
			[]string{"stream", "group"},
		),

		// Business Metrics
		ChargesBridgedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harbormaster_charges_bridged_total",
				Help: "Legacy charges bridged onto trips, by outcome",
			},
			[]string{"action"},
		),
		TripsFabricatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harbormaster_trips_fabricated_total",
				Help: "Standalone trips fabricated for unmatched charges",
			},
		),
		FanoutWritesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harbormaster_fanout_writes_total",
				Help: "Dependent records rewritten by the ship fan-out",
			},
		),
		AuditEntriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harbormaster_audit_entries_total",
				Help: "Audit entries written, by collection and action",
			},
			[]string{"collection", "action"},
		),
		GhostSavesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harbormaster_ghost_saves_total",
				Help: "Updates suppressed because no meaningful field changed",
			},
		),
		BackfillDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harbormaster_backfill_duration_seconds",
				Help:    "Charge backfill run time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		ReconciliationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harbormaster_reconciliation_duration_seconds",
				Help:    "Reconciliation view computation time in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
	}
}
