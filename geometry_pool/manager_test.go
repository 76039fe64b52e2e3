package geometry_pool

import (
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/Carmen-Shannon/oxy-vis/upload"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestAllocateReuseIsCacheHit(t *testing.T) {
	manager := NewManager()

	obj, ok := manager.Allocate(common.CategoryNode, 256)
	require.True(t, ok)
	require.Len(t, obj.Payload, 256)
	require.Equal(t, uint64(1), obj.UseCount)

	stats := manager.Stats()
	require.Equal(t, uint64(1), stats.CacheMisses)
	require.Equal(t, uint64(1), stats.TotalAllocations)
	require.Equal(t, uint64(0), stats.CacheHits)

	require.True(t, manager.Deallocate(common.CategoryNode, obj.ID))

	reused, ok := manager.Allocate(common.CategoryNode, 256)
	require.True(t, ok)
	require.Equal(t, obj.ID, reused.ID)
	require.Equal(t, uint64(2), reused.UseCount)

	stats = manager.Stats()
	require.Equal(t, uint64(1), stats.CacheHits)
	require.Equal(t, uint64(1), stats.TotalAllocations, "reuse constructs nothing")
}

func TestAllocateGrowsReusedObject(t *testing.T) {
	manager := NewManager()

	obj, ok := manager.Allocate(common.CategoryNode, 100)
	require.True(t, ok)
	manager.Deallocate(common.CategoryNode, obj.ID)

	grown, ok := manager.Allocate(common.CategoryNode, 300)
	require.True(t, ok)
	require.Equal(t, obj.ID, grown.ID)
	require.Equal(t, 300, grown.Size)
	require.Len(t, grown.Payload, 300)
	require.Equal(t, 300, manager.Info().TotalBytes)
	require.Equal(t, uint64(1), manager.Stats().CacheHits)
}

func TestAllocateSmallerKeepsCapacity(t *testing.T) {
	manager := NewManager()

	obj, ok := manager.Allocate(common.CategoryNode, 300)
	require.True(t, ok)
	manager.Deallocate(common.CategoryNode, obj.ID)

	reused, ok := manager.Allocate(common.CategoryNode, 100)
	require.True(t, ok)
	require.Equal(t, 300, reused.Size, "payloads never shrink on reuse")
}

func TestObjectCeilingRefuses(t *testing.T) {
	manager := NewManager(WithLimits(2, 1<<20))

	_, ok := manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)
	_, ok = manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)

	obj, ok := manager.Allocate(common.CategoryNode, 64)
	require.False(t, ok)
	require.Nil(t, obj)
	require.Equal(t, uint64(1), manager.Stats().FailedAllocations)
}

func TestByteCeilingRefuses(t *testing.T) {
	manager := NewManager(WithLimits(10, 512))

	_, ok := manager.Allocate(common.CategoryNode, 300)
	require.True(t, ok)

	_, ok = manager.Allocate(common.CategoryNode, 300)
	require.False(t, ok)
	require.Equal(t, uint64(1), manager.Stats().FailedAllocations)
}

func TestGrowthRespectsByteCeiling(t *testing.T) {
	manager := NewManager(WithLimits(10, 512))

	obj, ok := manager.Allocate(common.CategoryNode, 400)
	require.True(t, ok)
	manager.Deallocate(common.CategoryNode, obj.ID)

	grown, ok := manager.Allocate(common.CategoryNode, 500)
	require.True(t, ok, "growth within the ceiling succeeds")
	manager.Deallocate(common.CategoryNode, grown.ID)

	_, ok = manager.Allocate(common.CategoryNode, 600)
	require.False(t, ok, "growth past the ceiling is refused")
	require.Equal(t, uint64(1), manager.Stats().FailedAllocations)

	// The refused object stays available for requests that fit.
	again, ok := manager.Allocate(common.CategoryNode, 500)
	require.True(t, ok)
	require.Equal(t, obj.ID, again.ID)
}

func TestCleanupOldObjectsFreesIdle(t *testing.T) {
	clock := newFakeClock()
	manager := NewManager(WithClock(clock.Now))

	stale, ok := manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)
	fresh, ok := manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)

	manager.Deallocate(common.CategoryNode, stale.ID)
	clock.advance(31 * time.Second)
	manager.Deallocate(common.CategoryNode, fresh.ID)

	freed := manager.CleanupOldObjects(30 * time.Second)
	require.Equal(t, 1, freed)
	require.Equal(t, uint64(1), manager.Stats().TotalFreed)

	info := manager.Info().Pools[common.CategoryNode]
	require.Equal(t, 1, info.ObjectCount)
	require.Equal(t, 64, info.Bytes)

	reused, ok := manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)
	require.Equal(t, fresh.ID, reused.ID, "the surviving object is reused")
}

func TestMaintainRunsOnInterval(t *testing.T) {
	clock := newFakeClock()
	manager := NewManager(WithClock(clock.Now), WithGCInterval(10*time.Second))

	obj, ok := manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)
	manager.Deallocate(common.CategoryNode, obj.ID)

	clock.advance(31 * time.Second)
	require.Equal(t, 1, manager.Maintain())

	// A pass just ran, so the next call is inside the interval.
	require.Equal(t, 0, manager.Maintain())
}

func TestMaintainPressureOverridesInterval(t *testing.T) {
	clock := newFakeClock()
	manager := NewManager(
		WithClock(clock.Now),
		WithWarnBytes(1000),
		WithGCInterval(time.Hour),
	)

	obj, ok := manager.Allocate(common.CategoryNode, 900)
	require.True(t, ok)
	require.InDelta(t, 0.9, manager.PressureRatio(), 1e-9)

	manager.Deallocate(common.CategoryNode, obj.ID)
	clock.advance(time.Second)

	freed := manager.Maintain()
	require.Equal(t, 1, freed, "pressure collects without waiting for the interval")
	require.InDelta(t, 0, manager.PressureRatio(), 1e-9)
}

func TestPoolsIsolatedPerCategory(t *testing.T) {
	manager := NewManager(WithPoolLimits(common.CategoryNode, 1, 1<<20))

	_, ok := manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)
	_, ok = manager.Allocate(common.CategoryNode, 64)
	require.False(t, ok, "the node pool is at its ceiling")

	for i := 0; i < 4; i++ {
		_, ok := manager.Allocate(common.CategoryEdge, 64)
		require.True(t, ok, "edge pool capacity is independent")
	}

	require.Equal(t, uint64(1), manager.StatsFor(common.CategoryNode).FailedAllocations)
	require.Equal(t, uint64(0), manager.StatsFor(common.CategoryEdge).FailedAllocations)
}

func TestHandleBrokeringCachesPerSlot(t *testing.T) {
	sink := upload.NewNullSink()
	manager := NewManager(WithSink(sink))

	first, err := manager.HandleFor(lod.LevelHigh, common.CategoryNode)
	require.NoError(t, err)
	require.NotEqual(t, upload.NilBufferHandle, first)

	again, err := manager.HandleFor(lod.LevelHigh, common.CategoryNode)
	require.NoError(t, err)
	require.Equal(t, first, again)
	require.Equal(t, 1, sink.Acquired(), "repeat requests reuse the cached handle")

	other, err := manager.HandleFor(lod.LevelLow, common.CategoryEdge)
	require.NoError(t, err)
	require.NotEqual(t, first, other)
	require.Equal(t, 2, sink.Acquired())

	_, err = manager.HandleFor(lod.LevelCulled, common.CategoryNode)
	require.ErrorIs(t, err, upload.ErrNoGeometry)

	manager.ReleaseHandles()
	require.Equal(t, 2, sink.Released())

	_, err = manager.HandleFor(lod.LevelHigh, common.CategoryNode)
	require.NoError(t, err)
	require.Equal(t, 3, sink.Acquired(), "released slots are re-acquired on demand")
}

func TestInfoSnapshot(t *testing.T) {
	manager := NewManager(WithWarnBytes(1000))

	manager.Allocate(common.CategoryNode, 100)
	obj, _ := manager.Allocate(common.CategoryEdge, 200)
	manager.Deallocate(common.CategoryEdge, obj.ID)

	info := manager.Info()
	require.Len(t, info.Pools, 3)
	require.Equal(t, 300, info.TotalBytes)
	require.Equal(t, 1000, info.WarnBytes)
	require.InDelta(t, 0.3, info.PressureRatio, 1e-9)

	node := info.Pools[common.CategoryNode]
	require.Equal(t, 1, node.InUseCount)
	require.Equal(t, 0, node.AvailableCount)

	edge := info.Pools[common.CategoryEdge]
	require.Equal(t, 0, edge.InUseCount)
	require.Equal(t, 1, edge.AvailableCount)
}

func TestDeallocateUnknownIsRejected(t *testing.T) {
	manager := NewManager()

	require.False(t, manager.Deallocate(common.CategoryNode, 42))

	obj, ok := manager.Allocate(common.CategoryNode, 64)
	require.True(t, ok)
	require.True(t, manager.Deallocate(common.CategoryNode, obj.ID))
	require.False(t, manager.Deallocate(common.CategoryNode, obj.ID), "double deallocate")
}

func TestAllocateRejectsInvalidRequests(t *testing.T) {
	manager := NewManager()

	_, ok := manager.Allocate(common.ObjectCategory(99), 64)
	require.False(t, ok)

	_, ok = manager.Allocate(common.CategoryNode, -1)
	require.False(t, ok)
}
