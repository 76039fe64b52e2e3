package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmptyMetrics(t *testing.T) {
	m := NewFrameMetrics()
	require.Equal(t, time.Duration(0), m.AverageFrameTime())
	require.Equal(t, float64(0), m.FPS())
	require.Equal(t, uint64(0), m.FrameCount())
	require.Equal(t, 0, m.WindowFill())
}

func TestWindowAverage(t *testing.T) {
	m := NewFrameMetrics(WithWindowSize(4))

	m.Record(10 * time.Millisecond)
	m.Record(20 * time.Millisecond)
	require.Equal(t, 15*time.Millisecond, m.AverageFrameTime())
	require.Equal(t, 2, m.WindowFill())

	m.Record(30 * time.Millisecond)
	m.Record(40 * time.Millisecond)
	require.Equal(t, 25*time.Millisecond, m.AverageFrameTime())
	require.Equal(t, 4, m.WindowFill())

	// A fifth frame evicts the oldest: (20+30+40+50)/4.
	m.Record(50 * time.Millisecond)
	require.Equal(t, 35*time.Millisecond, m.AverageFrameTime())
	require.Equal(t, 4, m.WindowFill())
	require.Equal(t, uint64(5), m.FrameCount())
}

func TestFPSFromAverage(t *testing.T) {
	m := NewFrameMetrics(WithWindowSize(8))

	for range 8 {
		m.Record(time.Second / 60)
	}
	require.InDelta(t, 60.0, m.FPS(), 0.1)

	for range 8 {
		m.Record(time.Second / 30)
	}
	require.InDelta(t, 30.0, m.FPS(), 0.1)
}

func TestReportInterval(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewFrameMetrics(
		WithReportInterval(time.Second),
		WithClock(func() time.Time { return now }),
	)

	require.False(t, m.Record(16*time.Millisecond))
	require.False(t, m.Record(16*time.Millisecond))

	// Crossing the interval triggers exactly one report, then re-arms.
	now = now.Add(1100 * time.Millisecond)
	require.True(t, m.Record(16*time.Millisecond))
	require.False(t, m.Record(16*time.Millisecond))

	now = now.Add(1100 * time.Millisecond)
	require.True(t, m.Record(16*time.Millisecond))
}

func TestTinyWindowClamped(t *testing.T) {
	m := NewFrameMetrics(WithWindowSize(0))
	m.Record(5 * time.Millisecond)
	require.Equal(t, 5*time.Millisecond, m.AverageFrameTime())

	m.Record(9 * time.Millisecond)
	require.Equal(t, 9*time.Millisecond, m.AverageFrameTime())
}
