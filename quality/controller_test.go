package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source for stepping through cooldown
// windows without sleeping.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

// sampleWithRatio builds a sample whose performance ratio equals r against the
// default 60 FPS target. Frame time is kept tiny so the FPS term limits.
func sampleWithRatio(r float64) Sample {
	return Sample{
		FPS:       r * DefaultTargetFPS,
		FrameTime: time.Millisecond,
	}
}

func TestUpdateIgnoresNarrowOscillation(t *testing.T) {
	clock := newFakeClock()
	c := NewController(
		WithClock(clock.Now),
		WithInitialLevel(LevelMedium),
	)

	// Ratios bouncing around 1.0 sit inside the hysteresis dead band, so the
	// level must not flip back and forth across eligible calls.
	changes := 0
	for _, r := range []float64{0.95, 1.05, 0.95, 1.05, 0.95, 1.05} {
		clock.advance(DefaultCooldown + time.Second)
		if c.Update(sampleWithRatio(r)) {
			changes++
		}
	}

	require.LessOrEqual(t, changes, 1)
	require.Equal(t, LevelMedium, c.CurrentLevel())
	require.Empty(t, c.History())
}

func TestUpdateStepsDownThenBackUp(t *testing.T) {
	clock := newFakeClock()
	c := NewController(
		WithClock(clock.Now),
		WithInitialLevel(LevelHigh),
	)

	clock.advance(DefaultCooldown + time.Second)
	require.True(t, c.Update(sampleWithRatio(0.7)))
	require.Equal(t, LevelMedium, c.CurrentLevel())

	clock.advance(DefaultCooldown + time.Second)
	require.True(t, c.Update(sampleWithRatio(1.3)))
	require.Equal(t, LevelHigh, c.CurrentLevel())

	history := c.History()
	require.Len(t, history, 2)

	require.Equal(t, LevelHigh, history[0].From)
	require.Equal(t, LevelMedium, history[0].To)
	require.Equal(t, ReasonLowFrameRate, history[0].Reason)
	require.InDelta(t, 0.7, history[0].Ratio, 1e-9)

	require.Equal(t, LevelMedium, history[1].From)
	require.Equal(t, LevelHigh, history[1].To)
	require.Equal(t, ReasonPerformanceImproved, history[1].Reason)
	require.InDelta(t, 1.3, history[1].Ratio, 1e-9)

	require.True(t, history[1].Timestamp.After(history[0].Timestamp))
}

func TestCooldownThrottlesDecisions(t *testing.T) {
	clock := newFakeClock()
	c := NewController(
		WithClock(clock.Now),
		WithInitialLevel(LevelHigh),
	)

	// Construction starts the cooldown: an immediate terrible sample is held.
	require.False(t, c.Update(sampleWithRatio(0.1)))
	require.Equal(t, LevelHigh, c.CurrentLevel())

	clock.advance(DefaultCooldown + time.Second)
	require.True(t, c.Update(sampleWithRatio(0.1)))
	require.Equal(t, LevelMedium, c.CurrentLevel())

	// The transition restarted the cooldown.
	clock.advance(time.Second)
	require.False(t, c.Update(sampleWithRatio(0.1)))
	require.Equal(t, LevelMedium, c.CurrentLevel())

	clock.advance(DefaultCooldown)
	require.True(t, c.Update(sampleWithRatio(0.1)))
	require.Equal(t, LevelLow, c.CurrentLevel())
}

func TestHighFrameTimeReason(t *testing.T) {
	clock := newFakeClock()
	c := NewController(
		WithClock(clock.Now),
		WithInitialLevel(LevelHigh),
	)

	// FPS on target but frame times double the budget: the frame-time term
	// limits the ratio.
	clock.advance(DefaultCooldown + time.Second)
	require.True(t, c.Update(Sample{FPS: 60, FrameTime: 34 * time.Millisecond}))

	history := c.History()
	require.Len(t, history, 1)
	require.Equal(t, ReasonHighFrameTime, history[0].Reason)
	require.Equal(t, 34*time.Millisecond, history[0].Metrics.FrameTime)
}

func TestStepOutsideRangeIsIgnored(t *testing.T) {
	clock := newFakeClock()
	c := NewController(
		WithClock(clock.Now),
		WithLevelRange(LevelLow, LevelHigh),
		WithInitialLevel(LevelHigh),
	)

	// Headroom at the top of the range: the step up is dropped entirely.
	clock.advance(DefaultCooldown + time.Second)
	require.False(t, c.Update(sampleWithRatio(2.0)))
	require.Equal(t, LevelHigh, c.CurrentLevel())
	require.Empty(t, c.History())

	// Walk down to the bottom of the range.
	for range 2 {
		clock.advance(DefaultCooldown + time.Second)
		require.True(t, c.Update(sampleWithRatio(0.1)))
	}
	require.Equal(t, LevelLow, c.CurrentLevel())

	// Pressure at the bottom of the range: the step down is dropped.
	clock.advance(DefaultCooldown + time.Second)
	require.False(t, c.Update(sampleWithRatio(0.1)))
	require.Equal(t, LevelLow, c.CurrentLevel())
	require.Len(t, c.History(), 2)
}

func TestManualOverride(t *testing.T) {
	clock := newFakeClock()
	c := NewController(
		WithClock(clock.Now),
		WithLevelRange(LevelLow, LevelUltra),
		WithInitialLevel(LevelHigh),
	)

	// Manual set ignores the cooldown, which is still running from
	// construction, but clamps to the configured range.
	require.True(t, c.SetQualityLevel(LevelPerformance))
	require.Equal(t, LevelLow, c.CurrentLevel())

	history := c.History()
	require.Len(t, history, 1)
	require.Equal(t, ReasonManual, history[0].Reason)
	require.Equal(t, LevelHigh, history[0].From)
	require.Equal(t, LevelLow, history[0].To)

	// Setting the current level again is a no-op with no history entry.
	require.False(t, c.SetQualityLevel(LevelLow))
	require.Len(t, c.History(), 1)

	require.True(t, c.SetQualityLevel(LevelUltra))
	require.Equal(t, LevelUltra, c.CurrentLevel())
}

func TestHistoryBounded(t *testing.T) {
	clock := newFakeClock()
	c := NewController(
		WithClock(clock.Now),
		WithHistoryCap(4),
		WithInitialLevel(LevelMedium),
	)

	levels := []Level{LevelLow, LevelMedium, LevelHigh, LevelMedium, LevelLow, LevelHigh}
	for _, l := range levels {
		require.True(t, c.SetQualityLevel(l))
	}

	history := c.History()
	require.Len(t, history, 4)

	// Oldest entries were dropped: the retained window is the last four sets.
	require.Equal(t, LevelHigh, history[0].To)
	require.Equal(t, LevelMedium, history[1].To)
	require.Equal(t, LevelLow, history[2].To)
	require.Equal(t, LevelHigh, history[3].To)
}

func TestCurrentQualityMatchesPreset(t *testing.T) {
	c := NewController(WithInitialLevel(LevelLow))

	q := c.CurrentQuality()
	require.Equal(t, PresetFor(LevelLow), q)
	require.Equal(t, float32(0.5), q.PerformanceScaling)
	require.False(t, q.ShadowsEnabled)
}

func TestInitialLevelClampedToRange(t *testing.T) {
	c := NewController(
		WithLevelRange(LevelMedium, LevelHigh),
		WithInitialLevel(LevelUltra),
	)
	require.Equal(t, LevelHigh, c.CurrentLevel())

	minLevel, maxLevel := c.LevelRange()
	require.Equal(t, LevelMedium, minLevel)
	require.Equal(t, LevelHigh, maxLevel)
}

func TestAccessors(t *testing.T) {
	c := NewController(
		WithTargetFPS(120),
		WithCooldown(5*time.Second),
	)
	require.Equal(t, float64(120), c.TargetFPS())
	require.Equal(t, 5*time.Second, c.Cooldown())
}
