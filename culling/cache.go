package culling

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultStaleFrames is how many frames a cached verdict survives before
	// it stops being trusted.
	DefaultStaleFrames = 10

	// positionQuantum is the world-space cell size used when hashing the
	// camera position. Movement smaller than this does not change the pose
	// hash, so sub-cell jitter keeps the cache warm.
	positionQuantum = 0.1

	// directionScale converts unit-vector components and angles to integer
	// steps for hashing, roughly a quarter of a degree per step.
	directionScale = 256
)

// PoseHash condenses a camera pose into a single comparable value. Position
// is quantized to positionQuantum-sized cells and the forward vector, field
// of view, and aspect ratio to 1/directionScale steps before hashing, so
// floating-point jitter between frames maps to the same hash while any
// meaningful movement, rotation, or zoom produces a new one.
//
// Parameters:
//   - cam: the camera snapshot to hash.
//
// Returns:
//   - uint64: the quantized pose hash.
func PoseHash(cam common.CameraState) uint64 {
	var buf [32]byte
	put := func(offset int, v float32, scale float64) {
		q := int32(math.Round(float64(v) * scale))
		binary.LittleEndian.PutUint32(buf[offset:], uint32(q))
	}
	for i, p := range cam.Position {
		put(i*4, p, 1/positionQuantum)
	}
	for i, f := range cam.Forward {
		put(12+i*4, f, directionScale)
	}
	put(24, cam.Fov, directionScale)
	put(28, cam.Aspect, directionScale)
	return xxhash.Sum64(buf[:])
}

// CacheStats counts cache traffic since construction or the last Clear.
type CacheStats struct {
	// Hits is the number of lookups answered from a stored verdict.
	Hits uint64
	// Misses is the number of lookups that forced recomputation, whether
	// because the entry was absent, recorded under a different pose, or
	// stale.
	Misses uint64
	// Evictions is the number of entries dropped by Prune.
	Evictions uint64
}

type cacheEntry struct {
	poseHash uint64
	frame    uint64
	visible  bool
}

// VisibilityCache memoizes per-object visibility verdicts keyed by the
// camera pose that produced them. A stored verdict is only returned while
// the querying pose hashes to the same value and the entry is no more than
// staleAfter frames old; anything else reads as unknown and the caller
// recomputes. The cache is a pure optimization: verdicts must be identical
// whether it is empty or full.
type VisibilityCache struct {
	mu         *sync.Mutex
	entries    map[uint64]cacheEntry
	staleAfter uint64
	stats      CacheStats
}

// NewVisibilityCache builds an empty cache.
//
// Parameters:
//   - staleAfter: frames before an entry stops being trusted, 0 for
//     DefaultStaleFrames.
//
// Returns:
//   - *VisibilityCache: the new cache.
func NewVisibilityCache(staleAfter uint64) *VisibilityCache {
	if staleAfter == 0 {
		staleAfter = DefaultStaleFrames
	}
	return &VisibilityCache{
		mu:         &sync.Mutex{},
		entries:    make(map[uint64]cacheEntry),
		staleAfter: staleAfter,
	}
}

// Get looks up a memoized verdict for an object under the given pose.
//
// Parameters:
//   - objectID: the object whose verdict is wanted.
//   - poseHash: the current camera pose hash.
//   - frame: the current frame counter.
//
// Returns:
//   - bool: the stored verdict, meaningful only when ok is true.
//   - bool: ok, true when a fresh verdict for this pose was found.
func (c *VisibilityCache) Get(objectID, poseHash, frame uint64) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, exists := c.entries[objectID]
	if !exists || entry.poseHash != poseHash || frame-entry.frame > c.staleAfter {
		c.stats.Misses++
		return false, false
	}
	c.stats.Hits++
	return entry.visible, true
}

// Put stores a verdict for an object under the given pose, replacing any
// prior entry for the object. Last writer wins, which is safe because
// verdicts for the same pose are identical.
//
// Parameters:
//   - objectID: the object the verdict belongs to.
//   - poseHash: the camera pose hash the verdict was computed under.
//   - frame: the frame the verdict was computed on.
//   - visible: the verdict.
func (c *VisibilityCache) Put(objectID, poseHash, frame uint64, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[objectID] = cacheEntry{poseHash: poseHash, frame: frame, visible: visible}
}

// Prune drops every entry more than staleAfter frames old.
//
// Parameters:
//   - frame: the current frame counter.
//
// Returns:
//   - int: how many entries were dropped.
func (c *VisibilityCache) Prune(frame uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for id, entry := range c.entries {
		if frame-entry.frame > c.staleAfter {
			delete(c.entries, id)
			dropped++
		}
	}
	c.stats.Evictions += uint64(dropped)
	return dropped
}

// Len reports how many entries the cache currently holds.
//
// Returns:
//   - int: the entry count.
func (c *VisibilityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear discards all entries and resets the counters.
func (c *VisibilityCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]cacheEntry)
	c.stats = CacheStats{}
}

// Stats returns a snapshot of the traffic counters.
//
// Returns:
//   - CacheStats: hit, miss, and eviction counts.
func (c *VisibilityCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
