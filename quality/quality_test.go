package quality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresetTableOrdering(t *testing.T) {
	// Every knob is monotone in expense: a higher level never renders less.
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		cheaper := PresetFor(levels[i-1])
		richer := PresetFor(levels[i])

		require.Equal(t, levels[i-1], cheaper.Level)
		require.LessOrEqual(t, cheaper.ResolutionScale, richer.ResolutionScale)
		require.LessOrEqual(t, cheaper.ParticleDensity, richer.ParticleDensity)
		require.LessOrEqual(t, cheaper.AnimationQuality, richer.AnimationQuality)
		require.LessOrEqual(t, cheaper.MSAASampleCount, richer.MSAASampleCount)
		require.LessOrEqual(t, cheaper.PerformanceScaling, richer.PerformanceScaling)
	}

	ultra := PresetFor(LevelUltra)
	require.Equal(t, float32(1.0), ultra.ResolutionScale)
	require.Equal(t, float32(1.0), ultra.PerformanceScaling)
	require.True(t, ultra.ShadowsEnabled)

	perf := PresetFor(LevelPerformance)
	require.False(t, perf.ShadowsEnabled)
	require.False(t, perf.PostProcessingEnabled)
	require.Equal(t, float32(0.25), perf.PerformanceScaling)
}

func TestPresetForOutOfRange(t *testing.T) {
	require.Equal(t, PresetFor(LevelMedium), PresetFor(Level(-1)))
	require.Equal(t, PresetFor(LevelMedium), PresetFor(Level(99)))
}

func TestLevelNames(t *testing.T) {
	for _, l := range Levels() {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		require.Equal(t, l, parsed)
	}

	_, err := ParseLevel("extreme")
	require.Error(t, err)
	require.Equal(t, "unknown", Level(42).String())
}

func TestLevelTextMarshalling(t *testing.T) {
	text, err := LevelHigh.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "high", string(text))

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("performance")))
	require.Equal(t, LevelPerformance, l)

	require.Error(t, l.UnmarshalText([]byte("nope")))
	require.Equal(t, LevelPerformance, l)
}
