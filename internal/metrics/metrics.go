// Package metrics exposes Prometheus collectors for optimizer runs and
// reference-data fetches.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	RunKindGrid     = "grid"
	RunKindSingle   = "single"
	RunKindWeighted = "weighted"
	RunKindStrategy = "strategy"
	RunKindRanked   = "ranked"

	OutcomeOK        = "ok"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	cells        prometheus.Counter
	shortcutHits prometheus.Counter
	fetches      *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide collectors registered on prometheus.DefaultRegisterer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates collectors and registers them on registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssopt_optimizer_runs_total",
			Help: "Optimizer runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ssopt_optimizer_run_duration_seconds",
			Help:    "Optimizer wall-clock time by kind.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		cells: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ssopt_grid_cells_total",
			Help: "Final-age grid cells evaluated.",
		}),
		shortcutHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ssopt_grid_shortcut_hits_total",
			Help: "Grid cells resolved by reusing an age-70 filing pair.",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssopt_reference_fetches_total",
			Help: "Reference data fetches by source and outcome.",
		}, []string{"source", "outcome"}),
	}
	registerer.MustRegister(m.runs, m.runDuration, m.cells, m.shortcutHits, m.fetches)
	return m
}

// ObserveRun records one finished optimizer run.
func (m *Metrics) ObserveRun(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(kind, outcome).Inc()
	m.runDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// AddCells counts evaluated grid cells.
func (m *Metrics) AddCells(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cells.Add(float64(n))
}

// AddShortcutHits counts cells filled by the age-70 shortcut.
func (m *Metrics) AddShortcutHits(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.shortcutHits.Add(float64(n))
}

// ObserveFetch records a fetch attempt against a named source.
func (m *Metrics) ObserveFetch(source string, ok bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeError
	}
	m.fetches.WithLabelValues(source, outcome).Inc()
}
