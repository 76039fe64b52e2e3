package view

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	viewFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "view_frames_total",
		Help: "The total number of frames processed by the view pipeline.",
	})

	viewRejectedFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "view_rejected_frames_total",
		Help: "The total number of frames skipped due to invalid camera state.",
	})

	viewPoolFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "view_pool_fallbacks_total",
		Help: "The total number of level downgrades caused by staging pool exhaustion.",
	})

	viewVisibleObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "view_visible_objects",
		Help: "Objects that passed visibility testing in the latest frame.",
	})

	viewCulledObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "view_culled_objects",
		Help: "Objects rejected by visibility testing in the latest frame.",
	})

	viewResolutionScale = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "view_resolution_scale",
		Help: "The applied render resolution scale after ramp smoothing.",
	})
)

func instrumentFrame(visible, culled int, appliedScale float64) {
	viewFramesTotal.Inc()
	viewVisibleObjects.Set(float64(visible))
	viewCulledObjects.Set(float64(culled))
	viewResolutionScale.Set(appliedScale)
}

func instrumentRejectedFrame() {
	viewRejectedFramesTotal.Inc()
}

func instrumentPoolFallback() {
	viewPoolFallbacksTotal.Inc()
}
