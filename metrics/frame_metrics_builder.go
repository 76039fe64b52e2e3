package metrics

import (
	"time"
)

// FrameMetricsOption is a functional option for configuring FrameMetrics.
type FrameMetricsOption func(*FrameMetrics)

// WithWindowSize sets the rolling window length in frames.
//
// Parameters:
//   - size: number of frames to average over (minimum 1)
//
// Returns:
//   - FrameMetricsOption: functional option to set the window size
func WithWindowSize(size int) FrameMetricsOption {
	return func(m *FrameMetrics) {
		if size < 1 {
			size = 1
		}
		m.window = make([]time.Duration, size)
	}
}

// WithReportInterval sets how often statistics are logged.
//
// Parameters:
//   - interval: minimum time between log lines
//
// Returns:
//   - FrameMetricsOption: functional option to set the report interval
func WithReportInterval(interval time.Duration) FrameMetricsOption {
	return func(m *FrameMetrics) {
		m.reportInterval = interval
	}
}

// WithClock overrides the tracker's time source. Tests use this to control
// report timing deterministically.
//
// Parameters:
//   - now: the replacement time source
//
// Returns:
//   - FrameMetricsOption: functional option to set the clock
func WithClock(now func() time.Time) FrameMetricsOption {
	return func(m *FrameMetrics) {
		m.now = now
	}
}
