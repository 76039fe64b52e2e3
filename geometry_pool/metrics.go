package geometry_pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

const (
	categoryLabel = "category"
	outcomeLabel  = "outcome"

	outcomeHit  = "hit"
	outcomeMiss = "miss"
)

var (
	poolAllocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geometry_pool_allocations_total",
		Help: "Pool allocations served, partitioned by category and hit/miss outcome.",
	}, []string{categoryLabel, outcomeLabel})

	poolFailedAllocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geometry_pool_failed_allocations_total",
		Help: "Pool allocations refused at capacity, partitioned by category.",
	}, []string{categoryLabel})

	poolObjectsFreedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geometry_pool_objects_freed_total",
		Help: "Pooled objects permanently freed by cleanup, partitioned by category.",
	}, []string{categoryLabel})

	poolBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "geometry_pool_bytes",
		Help: "Current pooled payload bytes, partitioned by category.",
	}, []string{categoryLabel})

	poolGCRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geometry_pool_gc_runs_total",
		Help: "Garbage-collection passes executed by Maintain.",
	})
)

func instrumentAllocation(category common.ObjectCategory, hit bool) {
	outcome := outcomeMiss
	if hit {
		outcome = outcomeHit
	}
	poolAllocationsTotal.With(prometheus.Labels{
		categoryLabel: category.String(),
		outcomeLabel:  outcome,
	}).Inc()
}

func instrumentFailure(category common.ObjectCategory) {
	poolFailedAllocationsTotal.With(prometheus.Labels{
		categoryLabel: category.String(),
	}).Inc()
}

func instrumentFreed(category common.ObjectCategory, count int) {
	poolObjectsFreedTotal.With(prometheus.Labels{
		categoryLabel: category.String(),
	}).Add(float64(count))
}

func instrumentBytes(category common.ObjectCategory, bytes int) {
	poolBytes.With(prometheus.Labels{
		categoryLabel: category.String(),
	}).Set(float64(bytes))
}

func instrumentGCRun() {
	poolGCRunsTotal.Inc()
}
