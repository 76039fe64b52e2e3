package quality

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// Default controller tuning. Thresholds are ratios of measured performance to
// target performance; hysteresis widens the dead band around them.
const (
	// DefaultTargetFPS is the frame rate the controller steers toward.
	DefaultTargetFPS float64 = 60.0
	// DefaultLowerThreshold requests a step down when the ratio falls below it.
	DefaultLowerThreshold float64 = 0.85
	// DefaultUpperThreshold requests a step up when the ratio rises above it.
	DefaultUpperThreshold float64 = 1.15
	// DefaultHysteresis widens both thresholds away from 1.0 by this fraction.
	DefaultHysteresis float64 = 0.1
	// DefaultCooldown is the minimum time between automatic transitions.
	DefaultCooldown = 3 * time.Second
	// DefaultHistoryCap bounds the adjustment audit history.
	DefaultHistoryCap = 64
)

// Controller is the adaptive quality state machine. It is fed one metrics
// sample per frame and decides, at most once per cooldown window, whether to
// step the quality level up or down. Hysteresis and the cooldown are the
// anti-oscillation mechanism: a controller that reacts to instantaneous noise
// every frame is worse than no controller at all.
type Controller interface {
	// Update feeds one frame's metrics sample. Decisions are throttled by the
	// cooldown timer; most calls return without any transition.
	//
	// Parameters:
	//   - sample: the frame's performance measurement
	//
	// Returns:
	//   - bool: true if a quality transition occurred
	Update(sample Sample) bool

	// CurrentQuality returns the active preset. The returned struct is a copy;
	// dependents hold it for the frame without further locking.
	//
	// Returns:
	//   - RenderQuality: the active preset
	CurrentQuality() RenderQuality

	// CurrentLevel returns the active quality level.
	//
	// Returns:
	//   - Level: the active level
	CurrentLevel() Level

	// SetQualityLevel applies a manual override. It bypasses thresholds and
	// the cooldown but still clamps to the configured level range and still
	// records history.
	//
	// Parameters:
	//   - level: the requested level
	//
	// Returns:
	//   - bool: true if the level changed
	SetQualityLevel(level Level) bool

	// History returns a copy of the adjustment audit records, oldest first.
	//
	// Returns:
	//   - []Adjustment: the recorded transitions
	History() []Adjustment

	// TargetFPS returns the frame rate the controller steers toward.
	//
	// Returns:
	//   - float64: the target frame rate
	TargetFPS() float64

	// Cooldown returns the minimum time between automatic transitions.
	//
	// Returns:
	//   - time.Duration: the cooldown window
	Cooldown() time.Duration

	// LevelRange returns the configured [min, max] level clamp.
	//
	// Returns:
	//   - Level: the cheapest level the controller may select
	//   - Level: the most expensive level the controller may select
	LevelRange() (Level, Level)
}

type controllerImpl struct {
	mu *sync.Mutex

	current  RenderQuality
	minLevel Level
	maxLevel Level

	targetFPS       float64
	targetFrameTime time.Duration
	lowerThreshold  float64
	upperThreshold  float64
	hysteresis      float64

	cooldown       time.Duration
	lastAdjustment time.Time

	history    []Adjustment
	historyCap int

	now func() time.Time
}

// Compile-time interface compliance check
var _ Controller = &controllerImpl{}

// NewController creates a quality controller starting at the High preset with
// default 60 FPS targets and a 3 second cooldown. The first automatic
// transition is possible only after one full cooldown from construction.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerOption) Controller {
	c := &controllerImpl{
		mu:             &sync.Mutex{},
		current:        PresetFor(LevelHigh),
		minLevel:       LevelPerformance,
		maxLevel:       LevelUltra,
		targetFPS:      DefaultTargetFPS,
		lowerThreshold: DefaultLowerThreshold,
		upperThreshold: DefaultUpperThreshold,
		hysteresis:     DefaultHysteresis,
		cooldown:       DefaultCooldown,
		historyCap:     DefaultHistoryCap,
		now:            time.Now,
	}

	for _, option := range options {
		option(c)
	}

	if c.targetFrameTime == 0 && c.targetFPS > 0 {
		c.targetFrameTime = time.Duration(float64(time.Second) / c.targetFPS)
	}
	c.current = PresetFor(common.Clamp(c.current.Level, c.minLevel, c.maxLevel))
	c.lastAdjustment = c.now()

	return c
}

func (c *controllerImpl) Update(sample Sample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastAdjustment) < c.cooldown {
		return false
	}

	ratio, fpsLimited := c.performanceRatio(sample)

	var next Level
	var reason Reason
	switch {
	case ratio < c.lowerThreshold*(1-c.hysteresis):
		next = c.current.Level - 1
		if fpsLimited {
			reason = ReasonLowFrameRate
		} else {
			reason = ReasonHighFrameTime
		}
	case ratio > c.upperThreshold*(1+c.hysteresis):
		next = c.current.Level + 1
		reason = ReasonPerformanceImproved
	default:
		return false
	}

	// A step that would leave the configured range is ignored entirely: no
	// transition, no history, and the cooldown timer keeps running.
	if next < c.minLevel || next > c.maxLevel {
		return false
	}

	c.apply(next, reason, ratio, sample, now)
	return true
}

// performanceRatio computes min(fps/target_fps, target_frame_time/frame_time)
// and reports whether the FPS term was the limiting factor. Missing sample
// components drop their term from the min instead of dividing by zero.
// Caller must hold the mutex.
func (c *controllerImpl) performanceRatio(sample Sample) (float64, bool) {
	fpsRatio := math.Inf(1)
	if c.targetFPS > 0 {
		fpsRatio = sample.FPS / c.targetFPS
	}

	timeRatio := math.Inf(1)
	if sample.FrameTime > 0 && c.targetFrameTime > 0 {
		timeRatio = float64(c.targetFrameTime) / float64(sample.FrameTime)
	}

	if fpsRatio <= timeRatio {
		return fpsRatio, true
	}
	return timeRatio, false
}

// apply swaps in the preset for the next level, records the audit entry, and
// restarts the cooldown. Caller must hold the mutex.
func (c *controllerImpl) apply(next Level, reason Reason, ratio float64, sample Sample, now time.Time) {
	from := c.current.Level
	c.current = PresetFor(next)
	c.lastAdjustment = now

	c.history = append(c.history, Adjustment{
		Timestamp: now,
		From:      from,
		To:        next,
		Reason:    reason,
		Ratio:     ratio,
		Metrics:   sample,
	})
	if len(c.history) > c.historyCap {
		c.history = c.history[len(c.history)-c.historyCap:]
	}

	log.Printf("[Quality] %s -> %s (%s, ratio %.2f)", from, next, reason, ratio)
	instrumentAdjustment(reason)
	instrumentLevel(next)
}

func (c *controllerImpl) CurrentQuality() RenderQuality {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *controllerImpl) CurrentLevel() Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Level
}

func (c *controllerImpl) SetQualityLevel(level Level) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	level = common.Clamp(level, c.minLevel, c.maxLevel)
	if level == c.current.Level {
		return false
	}

	c.apply(level, ReasonManual, 0, Sample{}, c.now())
	return true
}

func (c *controllerImpl) History() []Adjustment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Adjustment, len(c.history))
	copy(out, c.history)
	return out
}

func (c *controllerImpl) TargetFPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetFPS
}

func (c *controllerImpl) Cooldown() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cooldown
}

func (c *controllerImpl) LevelRange() (Level, Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minLevel, c.maxLevel
}
