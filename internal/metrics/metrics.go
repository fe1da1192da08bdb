// Package metrics exposes Prometheus collectors for source fetches and
// budget snapshots, and the small ops HTTP server that serves them.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mifi/internal/core"
)

const namespace = "mifi"

// Metrics implements dashboard.Observer, worker.Recorder,
// worker.SummaryRecorder and services.RowsRecorder.
type Metrics struct {
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	snapshots     prometheus.Counter
	overAllocated *prometheus.GaugeVec
	importedRows  *prometheus.CounterVec
	summary       *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of fetches from the data backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		fetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_errors_total",
			Help:      "Failed fetches from the data backend.",
		}, []string{"source"}),
		snapshots: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "budget",
			Name:      "snapshots_total",
			Help:      "Budget snapshots stored by the worker.",
		}),
		overAllocated: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "budget",
			Name:      "over_allocated_envelopes",
			Help:      "Envelopes whose splits exceed the limit in the last snapshot of a month.",
		}, []string{"month"}),
		importedRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transactions",
			Name:      "imported_total",
			Help:      "Transactions written by imports and syncs, by outcome.",
		}, []string{"outcome"}),
		summary: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "summary",
			Help:      "Headline figures of the trailing window, by figure.",
		}, []string{"window", "figure"}),
	}
}

func (m *Metrics) FetchFinished(source string, d time.Duration, err error) {
	m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.fetchErrors.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) SnapshotStored(month core.MonthKey, overAllocated int) {
	m.snapshots.Inc()
	m.overAllocated.WithLabelValues(month.String()).Set(float64(overAllocated))
}

// RowsWritten counts the outcome of one import or sync pull.
func (m *Metrics) RowsWritten(inserted, skipped int) {
	m.importedRows.WithLabelValues("inserted").Add(float64(inserted))
	m.importedRows.WithLabelValues("skipped").Add(float64(skipped))
}

// SummaryUpdated publishes the figures of the window f covers.
func (m *Metrics) SummaryUpdated(f core.Filters, s core.Summary) {
	window := fmt.Sprintf("%s_%d", f.Mode, f.Periods)
	set := func(figure string, v float64) {
		m.summary.WithLabelValues(window, figure).Set(v)
	}
	set("income", s.TotalIncome.Decimal().InexactFloat64())
	set("expenses", s.TotalExpenses.Decimal().InexactFloat64())
	set("net_savings", s.NetSavings.Decimal().InexactFloat64())
	set("avg_monthly_expenses", s.AvgMonthlyExpenses.Decimal().InexactFloat64())
	set("savings_rate", s.SavingsRate)
}
