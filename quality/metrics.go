package quality

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonLabel = "reason"
)

var (
	qualityLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quality_level",
		Help: "The active quality level index (0=performance, 4=ultra).",
	})

	qualityAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quality_adjustments_total",
		Help: "The total number of quality transitions by cause.",
	}, []string{reasonLabel})
)

func instrumentLevel(level Level) {
	qualityLevel.Set(float64(level))
}

func instrumentAdjustment(reason Reason) {
	qualityAdjustmentsTotal.
		With(prometheus.Labels{reasonLabel: reason.String()}).
		Inc()
}
