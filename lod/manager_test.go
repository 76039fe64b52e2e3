package lod

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/stretchr/testify/require"
)

// testCamera returns a camera at the origin looking down -Z with a 90 degree
// field of view. Level selection only reads position and fov.
func testCamera() common.CameraState {
	return common.CameraState{
		Position: [3]float32{0, 0, 0},
		Forward:  [3]float32{0, 0, -1},
		Up:       [3]float32{0, 1, 0},
		Right:    [3]float32{1, 0, 0},
		Fov:      float32(math.Pi / 2),
		Aspect:   1.0,
		Near:     0.1,
		Far:      10000,
	}
}

func TestLevelOrdering(t *testing.T) {
	require.Equal(t, LevelMedium, Cheaper(LevelHigh, LevelMedium))
	require.Equal(t, LevelCulled, Cheaper(LevelCulled, LevelLow))
	require.Equal(t, LevelLow, Cheaper(LevelLow, LevelLow))

	require.Equal(t, LevelMedium, LevelHigh.Downgrade())
	require.Equal(t, LevelLow, LevelMedium.Downgrade())
	require.Equal(t, LevelLow, LevelLow.Downgrade())
	require.Equal(t, LevelCulled, LevelCulled.Downgrade())

	require.True(t, LevelHigh.Rendered())
	require.True(t, LevelLow.Rendered())
	require.False(t, LevelCulled.Rendered())

	require.Equal(t, float32(1.0), LevelHigh.Multiplier())
	require.Equal(t, float32(0.0), LevelCulled.Multiplier())
	require.Greater(t, LevelMedium.Multiplier(), LevelLow.Multiplier())

	require.Equal(t, "high", LevelHigh.String())
	require.Equal(t, "culled", LevelCulled.String())
	require.Equal(t, "unknown", Level(42).String())

	require.Equal(t, [4]Level{LevelHigh, LevelMedium, LevelLow, LevelCulled}, Levels())
	require.Equal(t, [3]Level{LevelHigh, LevelMedium, LevelLow}, RenderedLevels())
}

func TestLevelForNodeDistanceBands(t *testing.T) {
	m := NewManager()
	cam := testCamera()

	tests := []struct {
		name     string
		distance float32
		want     Level
	}{
		{name: "close object", distance: 40, want: LevelHigh},
		{name: "exactly on first threshold", distance: 50, want: LevelHigh},
		{name: "mid range", distance: 150, want: LevelMedium},
		{name: "far", distance: 300, want: LevelLow},
		{name: "beyond cull distance", distance: 600, want: LevelCulled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.LevelForNode([3]float32{0, 0, -tt.distance}, cam)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPerformanceScalingAdjustments(t *testing.T) {
	m := NewManager()
	cam := testCamera()
	near := [3]float32{0, 0, -40}
	far := [3]float32{0, 0, -300}
	gone := [3]float32{0, 0, -600}

	// Moderate pressure downgrades by exactly one level.
	m.SetPerformanceScaling(0.5)
	require.Equal(t, LevelMedium, m.LevelForNode(near, cam))
	require.Equal(t, LevelLow, m.LevelForNode(far, cam))
	require.Equal(t, LevelCulled, m.LevelForNode(gone, cam))

	// Heavy pressure clamps detail to Low but never hides or reveals objects.
	m.SetPerformanceScaling(0.25)
	require.Equal(t, LevelLow, m.LevelForNode(near, cam))
	require.Equal(t, LevelLow, m.LevelForNode(far, cam))
	require.Equal(t, LevelCulled, m.LevelForNode(gone, cam))

	// Back to full scaling restores full detail.
	m.SetPerformanceScaling(1.0)
	require.Equal(t, LevelHigh, m.LevelForNode(near, cam))
}

func TestLevelMonotonicWithDistance(t *testing.T) {
	cam := testCamera()

	for _, scaling := range []float32{1.0, 0.5, 0.25} {
		m := NewManager(WithPerformanceScaling(scaling))

		prev := LevelHigh
		for d := float32(1); d <= 1000; d += 1 {
			level := m.LevelForDistance(d, DefaultNodeRadius, cam)
			require.GreaterOrEqual(t, level, prev,
				"scaling %.2f: level regressed to more detail at distance %.0f", scaling, d)
			prev = level
		}
	}
}

func TestScreenSizeCullsTinyObjects(t *testing.T) {
	// A hundredth-unit node is sub-pixel even at close range, so the screen
	// band culls it while the distance band alone would keep it at High.
	m := NewManager(WithNodeRadius(0.01))
	cam := testCamera()

	require.Equal(t, LevelCulled, m.LevelForNode([3]float32{0, 0, -40}, cam))

	// A long edge through the same region has a large radius and stays High.
	level := m.LevelForEdge([3]float32{-10, 0, -40}, [3]float32{10, 0, -40}, cam)
	require.Equal(t, LevelHigh, level)
}

func TestLevelForEdgeUsesMidpoint(t *testing.T) {
	m := NewManager()
	cam := testCamera()

	// Endpoints at 100 and 200 put the midpoint at 150: the Medium band.
	level := m.LevelForEdge([3]float32{0, 0, -100}, [3]float32{0, 0, -200}, cam)
	require.Equal(t, LevelMedium, level)

	// A zero-length edge floors its radius at the node radius.
	level = m.LevelForEdge([3]float32{0, 0, -150}, [3]float32{0, 0, -150}, cam)
	require.Equal(t, LevelMedium, level)
}

func TestZeroDistanceClamped(t *testing.T) {
	m := NewManager()
	cam := testCamera()

	// Camera exactly on the object must not divide by zero.
	level := m.LevelForNode(cam.Position, cam)
	require.Equal(t, LevelHigh, level)
}

func TestGeometryHandles(t *testing.T) {
	m := NewManager()

	_, ok := m.GeometryHandle(common.CategoryNode, LevelHigh)
	require.False(t, ok)

	require.NoError(t, m.SetGeometryHandle(common.CategoryNode, LevelHigh, 77))
	handle, ok := m.GeometryHandle(common.CategoryNode, LevelHigh)
	require.True(t, ok)
	require.Equal(t, uint64(77), handle)

	// The same level in a different category is a separate slot.
	_, ok = m.GeometryHandle(common.CategoryEdge, LevelHigh)
	require.False(t, ok)

	require.ErrorIs(t, m.SetGeometryHandle(common.CategoryNode, LevelCulled, 5), ErrNoGeometryForLevel)
}

func TestScalingClampedToUnitRange(t *testing.T) {
	m := NewManager()

	m.SetPerformanceScaling(-0.5)
	require.Equal(t, float32(0), m.PerformanceScaling())

	m.SetPerformanceScaling(1.5)
	require.Equal(t, float32(1), m.PerformanceScaling())
}

func TestCustomThresholds(t *testing.T) {
	m := NewManager(
		WithDistanceThresholds([3]float32{10, 20, 30}),
		WithScreenThresholds([3]float32{64, 16, 4}),
		WithViewportWidth(1280),
	)
	cam := testCamera()

	require.Equal(t, [3]float32{10, 20, 30}, m.DistanceThresholds())
	require.Equal(t, [3]float32{64, 16, 4}, m.ScreenThresholds())
	require.Equal(t, LevelCulled, m.LevelForNode([3]float32{0, 0, -40}, cam))
}
