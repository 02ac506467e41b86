// Package metrics defines the Prometheus collectors exported by the tape
// engine. Collectors register with the default registry on package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TapesRecorded counts functions built from a finished recording.
	TapesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtape_tapes_recorded_total",
		Help: "Number of tapes turned into replayable functions",
	})

	// OperatorsRecorded counts operators appended to any tape.
	OperatorsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtape_operators_recorded_total",
		Help: "Number of operators appended while recording",
	})

	// ForwardSweeps counts forward sweeps by kind ("zero" or "higher").
	ForwardSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adtape_forward_sweeps_total",
		Help: "Number of forward sweeps by lowest order computed",
	}, []string{"kind"})

	// ReverseSweeps counts reverse sweeps.
	ReverseSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtape_reverse_sweeps_total",
		Help: "Number of reverse sweeps",
	})

	// CompareChanges counts recorded comparisons that replayed differently.
	CompareChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtape_compare_changes_total",
		Help: "Number of recorded comparisons whose outcome changed on replay",
	})

	// OperatorsRemoved counts operators dropped by the optimizer.
	OperatorsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtape_optimizer_operators_removed_total",
		Help: "Number of operators removed by tape optimization",
	})

	// OptimizeDuration tracks time spent in the optimizer.
	OptimizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adtape_optimize_duration_seconds",
		Help:    "Time spent optimizing a tape",
		Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
	})

	// ArenaBytesInUse reports bytes handed out per arena.
	ArenaBytesInUse = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "adtape_arena_bytes_in_use",
		Help: "Bytes currently handed out by each arena",
	}, []string{"arena"})
)
