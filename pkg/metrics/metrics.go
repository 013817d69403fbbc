// Package metrics exposes Prometheus instrumentation for the arena
// allocator and the graph it serves, in the style of
// 23skdu-longbow-quarrel/internal/metrics: package-level,
// promauto-registered collectors that library code updates as a side
// effect of its normal work.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PoolUsedBytes is the live-byte count of whichever allocator
	// most recently ran Alloc or Free; each one overwrites the gauge.
	PoolUsedBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tengraph_pool_used_bytes",
		Help: "Live bytes currently allocated from the tensor pool.",
	})

	// PoolPeakBytes is the high-water mark of the tensor pool — the
	// size ultimately requested from the runtime at materialization.
	PoolPeakBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tengraph_pool_peak_bytes",
		Help: "High-water mark of the tensor pool.",
	})

	// GraphTensorsTotal is the number of tensors currently owned by
	// the most recently mutated graph.
	GraphTensorsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tengraph_graph_tensors",
		Help: "Number of tensors in the graph.",
	})

	// GraphOperatorsTotal is the number of operators currently owned
	// by the most recently mutated graph.
	GraphOperatorsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tengraph_graph_operators",
		Help: "Number of operators in the graph.",
	})

	// OptimizeRewritesTotal counts successful rewrites, by rule.
	OptimizeRewritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tengraph_optimize_rewrites_total",
		Help: "Total number of rewrites applied by Optimize, by rule.",
	}, []string{"rule"})

	// PlanAllocationsTotal counts Allocator.Alloc calls made by
	// DataMalloc while planning tensor offsets.
	PlanAllocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tengraph_plan_allocations_total",
		Help: "Total number of arena allocations made while planning a graph.",
	})
)
