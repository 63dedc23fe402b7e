package observability

import (
	"time"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Aggregation kinds tracked by IncrAggregation.
const (
	AggPaymentStatus = "payment_status"
	AggPending       = "pending_scan"
	AggLedger        = "ledger"
	AggDashboard     = "dashboard"
	AggBalance       = "balance"
)

// Store tables tracked by the store counters.
var storeTables = []string{"members", "contributions", "expenses", "settings", "views"}

// Metrics holds all Prometheus metrics for the fund BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeRequests   *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	aggregations    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fund_request_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_store_requests_total",
				Help: "Total reads issued to the data store.",
			},
			[]string{"table"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_store_errors_total",
				Help: "Total failed reads from the data store.",
			},
			[]string{"table"},
		),
		aggregations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_aggregations_total",
				Help: "Total aggregations computed.",
			},
			[]string{"kind"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreRequest counts a read against table.
func (m *Metrics) IncrStoreRequest(table string) {
	m.storeRequests.WithLabelValues(table).Inc()
}

// IncrStoreError counts a failed read against table.
func (m *Metrics) IncrStoreError(table string) {
	m.storeErrors.WithLabelValues(table).Inc()
}

// IncrAggregation counts a computed aggregation.
func (m *Metrics) IncrAggregation(kind string) {
	m.aggregations.WithLabelValues(kind).Inc()
}

// Snapshot returns the counters in a JSON-friendly shape for
// GET /v1/metrics/summary.
func (m *Metrics) Snapshot() *domain.MetricsSummary {
	var requests, errs float64
	for _, table := range storeTables {
		requests += getCounterValue(m.storeRequests, table)
		errs += getCounterValue(m.storeErrors, table)
	}

	errorRate := float64(0)
	if requests > 0 {
		errorRate = errs / requests
	}

	aggs := make(map[string]int64)
	for _, kind := range []string{AggPaymentStatus, AggPending, AggLedger, AggDashboard, AggBalance} {
		aggs[kind] = int64(getCounterValue(m.aggregations, kind))
	}

	return &domain.MetricsSummary{
		StoreRequests:  int64(requests),
		StoreErrors:    int64(errs),
		StoreErrorRate: errorRate,
		Aggregations:   aggs,
		Period:         "since_start",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
