package upload

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/stretchr/testify/require"
)

func TestNullSinkIssuesDistinctHandles(t *testing.T) {
	sink := NewNullSink()

	first, err := sink.Acquire(lod.LevelHigh, common.CategoryNode)
	require.NoError(t, err)
	require.NotEqual(t, NilBufferHandle, first)

	second, err := sink.Acquire(lod.LevelHigh, common.CategoryNode)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.Equal(t, 2, sink.Acquired())
	require.Equal(t, 2, sink.Active())
}

func TestNullSinkReleaseTracksOutstanding(t *testing.T) {
	sink := NewNullSink()
	handle, err := sink.Acquire(lod.LevelLow, common.CategoryEdge)
	require.NoError(t, err)

	sink.Release(handle)
	require.Equal(t, 1, sink.Released())
	require.Equal(t, 0, sink.Active())

	// Double release and unknown handles are no-ops.
	sink.Release(handle)
	sink.Release(BufferHandle(999))
	require.Equal(t, 1, sink.Released())
}

func TestNullSinkRejectsCulledLevel(t *testing.T) {
	sink := NewNullSink()
	handle, err := sink.Acquire(lod.LevelCulled, common.CategoryNode)
	require.ErrorIs(t, err, ErrNoGeometry)
	require.Equal(t, NilBufferHandle, handle)
	require.Equal(t, 0, sink.Acquired())
}
