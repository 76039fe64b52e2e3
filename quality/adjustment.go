package quality

import (
	"time"
)

// Reason is the enumerated cause of a quality adjustment.
type Reason int

const (
	// ReasonLowFrameRate means the measured FPS fell below target.
	ReasonLowFrameRate Reason = iota
	// ReasonHighFrameTime means frame times exceeded the target budget.
	ReasonHighFrameTime
	// ReasonPerformanceImproved means sustained headroom allowed a step up.
	ReasonPerformanceImproved
	// ReasonManual means the host explicitly set a level.
	ReasonManual
)

// String returns a human-readable name for the reason.
//
// Returns:
//   - string: the reason name, or "unknown"
func (r Reason) String() string {
	switch r {
	case ReasonLowFrameRate:
		return "low_frame_rate"
	case ReasonHighFrameTime:
		return "high_frame_time"
	case ReasonPerformanceImproved:
		return "performance_improved"
	case ReasonManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Sample is one frame's performance measurement, fed to the controller once
// per frame. The view layer derives samples from its rolling frame metrics.
type Sample struct {
	// FPS is the smoothed frames-per-second measurement.
	FPS float64
	// FrameTime is the smoothed per-frame duration.
	FrameTime time.Duration
}

// Adjustment is one audit record of a quality transition. History is
// append-only and bounded; the oldest records are dropped past the cap.
type Adjustment struct {
	// Timestamp is when the transition occurred.
	Timestamp time.Time
	// From is the level before the transition.
	From Level
	// To is the level after the transition.
	To Level
	// Reason is the enumerated cause.
	Reason Reason
	// Ratio is the performance ratio that triggered the transition.
	// Zero for manual overrides.
	Ratio float64
	// Metrics is a snapshot of the sample that triggered the transition.
	Metrics Sample
}
