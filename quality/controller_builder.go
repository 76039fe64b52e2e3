package quality

import (
	"time"
)

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*controllerImpl)

// WithInitialLevel sets the starting quality level. It is clamped to the
// configured level range at construction.
//
// Parameters:
//   - level: the starting level
//
// Returns:
//   - ControllerOption: functional option to set the initial level
func WithInitialLevel(level Level) ControllerOption {
	return func(c *controllerImpl) {
		c.current = PresetFor(level)
	}
}

// WithLevelRange sets the [min, max] clamp for both automatic and manual
// transitions.
//
// Parameters:
//   - minLevel: the cheapest level the controller may select
//   - maxLevel: the most expensive level the controller may select
//
// Returns:
//   - ControllerOption: functional option to set the level range
func WithLevelRange(minLevel, maxLevel Level) ControllerOption {
	return func(c *controllerImpl) {
		c.minLevel = minLevel
		c.maxLevel = maxLevel
	}
}

// WithTargetFPS sets the frame rate target. The frame time target defaults to
// its reciprocal unless set explicitly.
//
// Parameters:
//   - fps: the target frame rate
//
// Returns:
//   - ControllerOption: functional option to set the FPS target
func WithTargetFPS(fps float64) ControllerOption {
	return func(c *controllerImpl) {
		c.targetFPS = fps
	}
}

// WithTargetFrameTime sets the frame time budget independently of the FPS
// target.
//
// Parameters:
//   - frameTime: the per-frame budget
//
// Returns:
//   - ControllerOption: functional option to set the frame time target
func WithTargetFrameTime(frameTime time.Duration) ControllerOption {
	return func(c *controllerImpl) {
		c.targetFrameTime = frameTime
	}
}

// WithThresholds sets the raw step-down and step-up ratio thresholds before
// hysteresis widening.
//
// Parameters:
//   - lower: ratio below which a step down is requested
//   - upper: ratio above which a step up is requested
//
// Returns:
//   - ControllerOption: functional option to set the thresholds
func WithThresholds(lower, upper float64) ControllerOption {
	return func(c *controllerImpl) {
		c.lowerThreshold = lower
		c.upperThreshold = upper
	}
}

// WithHysteresis sets the fraction by which both thresholds are widened away
// from 1.0.
//
// Parameters:
//   - hysteresis: the widening fraction, typically 0.1
//
// Returns:
//   - ControllerOption: functional option to set the hysteresis
func WithHysteresis(hysteresis float64) ControllerOption {
	return func(c *controllerImpl) {
		c.hysteresis = hysteresis
	}
}

// WithCooldown sets the minimum time between automatic transitions.
//
// Parameters:
//   - cooldown: the cooldown window
//
// Returns:
//   - ControllerOption: functional option to set the cooldown
func WithCooldown(cooldown time.Duration) ControllerOption {
	return func(c *controllerImpl) {
		c.cooldown = cooldown
	}
}

// WithHistoryCap sets the maximum number of retained adjustment records.
//
// Parameters:
//   - cap: the history bound
//
// Returns:
//   - ControllerOption: functional option to set the history cap
func WithHistoryCap(cap int) ControllerOption {
	return func(c *controllerImpl) {
		c.historyCap = cap
	}
}

// WithClock overrides the controller's time source. Tests use this to step
// through cooldown windows deterministically.
//
// Parameters:
//   - now: the replacement time source
//
// Returns:
//   - ControllerOption: functional option to set the clock
func WithClock(now func() time.Time) ControllerOption {
	return func(c *controllerImpl) {
		c.now = now
	}
}
