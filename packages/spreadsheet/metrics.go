package spreadsheet

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of a Sheet. a nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// write metrics
	WritesTotal         *prometheus.CounterVec
	RejectedWritesTotal *prometheus.CounterVec

	// evaluation metrics
	EvaluationsTotal prometheus.Counter
	MemoHitsTotal    prometheus.Counter

	// invalidation metrics
	InvalidatedCellsTotal prometheus.Counter
	InvalidationSize      prometheus.Histogram

	// shape
	PrintableRows prometheus.Gauge
	PrintableCols prometheus.Gauge
}

// NewMetrics creates and registers the sheet metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		WritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spreadsheet_writes_total",
				Help: "Total number of committed sheet writes",
			},
			[]string{"operation"},
		),
		RejectedWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spreadsheet_rejected_writes_total",
				Help: "Total number of sheet writes rejected before commit",
			},
			[]string{"reason"},
		),
		EvaluationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spreadsheet_formula_evaluations_total",
				Help: "Total number of formula evaluations",
			},
		),
		MemoHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spreadsheet_formula_memo_hits_total",
				Help: "Total number of formula reads served from the memoized result",
			},
		),
		InvalidatedCellsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spreadsheet_invalidated_cells_total",
				Help: "Total number of cells visited by cache invalidation",
			},
		),
		InvalidationSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spreadsheet_invalidation_size_cells",
				Help:    "Number of cells visited per invalidation",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		PrintableRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spreadsheet_printable_rows",
				Help: "Rows in the printable area",
			},
		),
		PrintableCols: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spreadsheet_printable_cols",
				Help: "Columns in the printable area",
			},
		),
	}

	registry.MustRegister(
		m.WritesTotal,
		m.RejectedWritesTotal,
		m.EvaluationsTotal,
		m.MemoHitsTotal,
		m.InvalidatedCellsTotal,
		m.InvalidationSize,
		m.PrintableRows,
		m.PrintableCols,
	)

	return m
}

func (m *Metrics) observeWrite(op string) {
	if m == nil {
		return
	}
	m.WritesTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) observeRejected(code AppErrorCode) {
	if m == nil {
		return
	}
	m.RejectedWritesTotal.WithLabelValues(rejectReason(code)).Inc()
}

func (m *Metrics) observeEvaluation() {
	if m == nil {
		return
	}
	m.EvaluationsTotal.Inc()
}

func (m *Metrics) observeMemoHit() {
	if m == nil {
		return
	}
	m.MemoHitsTotal.Inc()
}

func (m *Metrics) observeInvalidation(cells int) {
	if m == nil {
		return
	}
	m.InvalidatedCellsTotal.Add(float64(cells))
	m.InvalidationSize.Observe(float64(cells))
}

func (m *Metrics) observeSize(size Size) {
	if m == nil {
		return
	}
	m.PrintableRows.Set(float64(size.Rows))
	m.PrintableCols.Set(float64(size.Cols))
}

func rejectReason(code AppErrorCode) string {
	switch code {
	case InvalidPosition:
		return "invalid_position"
	case FormulaParse:
		return "formula_parse"
	case CircularDependency:
		return "circular_dependency"
	default:
		return "unknown"
	}
}
