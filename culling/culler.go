// package culling implements the per-frame visibility pipeline: frustum
// plane tests against object bounds, an optional conservative occlusion
// stage, and a pose-keyed cache that memoizes verdicts while the camera
// holds still.
package culling

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// DefaultPruneInterval is how many frames pass between visibility cache
// sweeps.
const DefaultPruneInterval = 60

// Culler combines the frustum test, the optional occlusion stage, and the
// visibility cache behind a single per-frame surface. Update must run once
// per frame before any visibility query; queries between Updates may run
// concurrently.
//
// IsVisible is the serial one-call path. Hosts fanning culling out across
// workers use the split path instead: Cached for the serial cache sweep,
// Test from workers (it never touches the cache), then Store for each
// computed verdict.
type Culler interface {
	// Update advances the frame counter, re-extracts the frustum planes and
	// pose hash from the camera, rebuilds the occlusion grid when that stage
	// is enabled, and prunes the cache on its cadence.
	//
	// Parameters:
	//   - cam: the validated camera snapshot for this frame.
	Update(cam common.CameraState)

	// IsVisible resolves one object's visibility for the current frame,
	// consulting the cache first and storing the verdict on a miss.
	//
	// Parameters:
	//   - objectID: stable identifier of the object, used as the cache key.
	//   - bounds: the object's world-space bounds.
	//
	// Returns:
	//   - bool: true when the object should be rendered.
	IsVisible(objectID uint64, bounds common.BoundingBox) bool

	// Cached returns a memoized verdict for the current pose, if one is
	// fresh.
	//
	// Parameters:
	//   - objectID: stable identifier of the object.
	//
	// Returns:
	//   - bool: the stored verdict, meaningful only when ok is true.
	//   - bool: ok, true when a fresh verdict was found.
	Cached(objectID uint64) (bool, bool)

	// Test computes a visibility verdict without touching the cache. Safe to
	// call from multiple goroutines between Updates.
	//
	// Parameters:
	//   - bounds: the world-space bounds to test.
	//
	// Returns:
	//   - bool: true when the bounds survive frustum and occlusion tests.
	Test(bounds common.BoundingBox) bool

	// Store records a verdict computed via Test under the current pose.
	//
	// Parameters:
	//   - objectID: stable identifier of the object.
	//   - visible: the verdict to memoize.
	Store(objectID uint64, visible bool)

	// SetOccluders replaces the occluder set consumed by the next Update.
	// Changing the set discards verdicts memoized against the old one.
	//
	// Parameters:
	//   - occluders: world-space boxes treated as fully opaque.
	SetOccluders(occluders []common.BoundingBox)

	// SetOcclusionEnabled toggles the occlusion stage. Disabled, every
	// object passes through it as visible. Toggling discards memoized
	// verdicts.
	//
	// Parameters:
	//   - enabled: whether the occlusion stage runs.
	SetOcclusionEnabled(enabled bool)

	// OcclusionEnabled reports whether the occlusion stage runs.
	//
	// Returns:
	//   - bool: true when enabled.
	OcclusionEnabled() bool

	// Frame returns the current frame counter. It is zero until the first
	// Update.
	//
	// Returns:
	//   - uint64: frames elapsed since construction.
	Frame() uint64

	// Frustum returns the planes extracted by the last Update.
	//
	// Returns:
	//   - common.Frustum: the current frustum.
	Frustum() common.Frustum

	// CacheStats returns the visibility cache traffic counters.
	//
	// Returns:
	//   - CacheStats: hit, miss, and eviction counts.
	CacheStats() CacheStats

	// CacheSize reports how many verdicts the cache holds.
	//
	// Returns:
	//   - int: the entry count.
	CacheSize() int

	// ClearCache discards all memoized verdicts. Verdicts are unaffected;
	// only the work to recompute them returns.
	ClearCache()
}

type cullerImpl struct {
	mu               *sync.RWMutex
	frustum          common.Frustum
	poseHash         uint64
	frame            uint64
	frustumReady     bool
	cache            *VisibilityCache
	occlusion        *OcclusionCuller
	occlusionEnabled bool
	occluders        []common.BoundingBox
	pruneInterval    uint64
}

var _ Culler = &cullerImpl{}

// NewCuller builds a culler with an empty cache, occlusion disabled, and
// the default prune cadence.
//
// Parameters:
//   - options: optional settings applied in order.
//
// Returns:
//   - Culler: the new culler.
func NewCuller(options ...CullerOption) Culler {
	c := &cullerImpl{
		mu:            &sync.RWMutex{},
		cache:         NewVisibilityCache(DefaultStaleFrames),
		occlusion:     NewOcclusionCuller(0, 0),
		pruneInterval: DefaultPruneInterval,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cullerImpl) Update(cam common.CameraState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame++
	c.frustum = common.ExtractFrustumFromMatrix(cam.ViewProj[:])
	c.poseHash = PoseHash(cam)
	c.frustumReady = true
	if c.occlusionEnabled {
		c.occlusion.Update(cam, c.occluders)
	}
	if c.pruneInterval > 0 && c.frame%c.pruneInterval == 0 {
		c.cache.Prune(c.frame)
	}
}

func (c *cullerImpl) IsVisible(objectID uint64, bounds common.BoundingBox) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.frustumReady {
		return true
	}
	if visible, ok := c.cache.Get(objectID, c.poseHash, c.frame); ok {
		return visible
	}
	visible := c.testLocked(bounds)
	c.cache.Put(objectID, c.poseHash, c.frame, visible)
	return visible
}

func (c *cullerImpl) Cached(objectID uint64) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.frustumReady {
		return false, false
	}
	return c.cache.Get(objectID, c.poseHash, c.frame)
}

func (c *cullerImpl) Test(bounds common.BoundingBox) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.frustumReady {
		return true
	}
	return c.testLocked(bounds)
}

func (c *cullerImpl) Store(objectID uint64, visible bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.frustumReady {
		return
	}
	c.cache.Put(objectID, c.poseHash, c.frame, visible)
}

// testLocked runs the frustum and occlusion stages. Callers hold at least a
// read lock.
func (c *cullerImpl) testLocked(bounds common.BoundingBox) bool {
	if !c.frustum.IntersectsBox(bounds) {
		return false
	}
	if c.occlusionEnabled && c.occlusion.Occluded(bounds) {
		return false
	}
	return true
}

func (c *cullerImpl) SetOccluders(occluders []common.BoundingBox) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sameOccluders(c.occluders, occluders) {
		return
	}
	c.occluders = c.occluders[:0]
	c.occluders = append(c.occluders, occluders...)
	// Cached verdicts do not record the occluder set, so a change makes
	// them unsafe to trust.
	if c.occlusionEnabled {
		c.cache.Clear()
	}
}

func (c *cullerImpl) SetOcclusionEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.occlusionEnabled == enabled {
		return
	}
	c.occlusionEnabled = enabled
	c.cache.Clear()
}

func sameOccluders(a, b []common.BoundingBox) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *cullerImpl) OcclusionEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.occlusionEnabled
}

func (c *cullerImpl) Frame() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

func (c *cullerImpl) Frustum() common.Frustum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frustum
}

func (c *cullerImpl) CacheStats() CacheStats {
	return c.cache.Stats()
}

func (c *cullerImpl) CacheSize() int {
	return c.cache.Len()
}

func (c *cullerImpl) ClearCache() {
	c.cache.Clear()
}
