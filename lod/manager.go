package lod

import (
	"errors"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// Default selection parameters. Distance thresholds are ascending world-space
// distances; screen thresholds are descending pixel sizes.
var (
	// DefaultDistanceThresholds are the high/medium/low cutoff distances.
	DefaultDistanceThresholds = [3]float32{50, 200, 500}
	// DefaultScreenThresholds are the high/medium/low minimum pixel sizes.
	DefaultScreenThresholds = [3]float32{32, 8, 2}
)

const (
	// DefaultNodeRadius is the assumed render radius of a graph node.
	DefaultNodeRadius float32 = 1.0
	// DefaultViewportWidth is the assumed viewport pixel width for screen-size
	// estimation when the host does not supply one.
	DefaultViewportWidth float32 = 1920

	// distanceEpsilon is the smallest distance used in screen-size division.
	// A camera sitting exactly on an object would otherwise divide by zero.
	distanceEpsilon float32 = 1e-4

	// clampScalingThreshold forces everything to at most Low detail.
	clampScalingThreshold float32 = 0.3
	// downgradeScalingThreshold downgrades selections by exactly one level.
	downgradeScalingThreshold float32 = 0.7
)

// ErrNoGeometryForLevel indicates an attempt to bind a geometry handle to the
// Culled level, which never renders.
var ErrNoGeometryForLevel = errors.New("level has no geometry variant")

// Manager selects detail levels for nodes and edges. Selection combines a
// distance band, an estimated on-screen size, and the adaptive quality
// controller's current performance scaling; the cheapest of the three wins.
// The manager also owns the mapping from (category, level) to the opaque
// geometry handle brokered by the geometry pool, but not the buffers behind
// those handles.
type Manager interface {
	// LevelForNode selects the detail level for a node at a world position.
	//
	// Parameters:
	//   - position: the node's world-space position
	//   - cam: the frame's camera snapshot
	//
	// Returns:
	//   - Level: the selected level
	LevelForNode(position [3]float32, cam common.CameraState) Level

	// LevelForEdge selects the detail level for an edge between two endpoints.
	// Distance is measured to the edge midpoint and the radius is half the
	// endpoint separation, floored at the node radius.
	//
	// Parameters:
	//   - p0: first endpoint in world space
	//   - p1: second endpoint in world space
	//   - cam: the frame's camera snapshot
	//
	// Returns:
	//   - Level: the selected level
	LevelForEdge(p0, p1 [3]float32, cam common.CameraState) Level

	// LevelForDistance selects the detail level for an arbitrary object given
	// its distance from the camera and render radius. LevelForNode and
	// LevelForEdge reduce to this.
	//
	// Parameters:
	//   - distance: world-space distance from the camera
	//   - radius: the object's render radius
	//   - cam: the frame's camera snapshot
	//
	// Returns:
	//   - Level: the selected level
	LevelForDistance(distance, radius float32, cam common.CameraState) Level

	// SetPerformanceScaling updates the scaling factor applied to every
	// subsequent selection. The view layer pushes the active quality preset's
	// factor here once per frame.
	//
	// Parameters:
	//   - scaling: the factor, clamped to [0, 1]
	SetPerformanceScaling(scaling float32)

	// PerformanceScaling returns the currently applied scaling factor.
	//
	// Returns:
	//   - float32: the factor in [0, 1]
	PerformanceScaling() float32

	// SetGeometryHandle binds an opaque geometry handle to a (category, level)
	// slot. Binding the Culled level is rejected.
	//
	// Parameters:
	//   - cat: the object category
	//   - level: the detail level
	//   - handle: the opaque handle obtained from the geometry pool
	//
	// Returns:
	//   - error: ErrNoGeometryForLevel if level is Culled or out of range
	SetGeometryHandle(cat common.ObjectCategory, level Level, handle uint64) error

	// GeometryHandle returns the handle bound to a (category, level) slot.
	//
	// Parameters:
	//   - cat: the object category
	//   - level: the detail level
	//
	// Returns:
	//   - uint64: the bound handle
	//   - bool: false if no handle is bound
	GeometryHandle(cat common.ObjectCategory, level Level) (uint64, bool)

	// DistanceThresholds returns the ascending distance cutoffs.
	//
	// Returns:
	//   - [3]float32: high/medium/low cutoff distances
	DistanceThresholds() [3]float32

	// ScreenThresholds returns the descending pixel-size cutoffs.
	//
	// Returns:
	//   - [3]float32: high/medium/low minimum pixel sizes
	ScreenThresholds() [3]float32
}

type handleKey struct {
	cat   common.ObjectCategory
	level Level
}

type managerImpl struct {
	mu *sync.RWMutex

	distanceThresholds [3]float32
	screenThresholds   [3]float32
	viewportWidth      float32
	nodeRadius         float32
	performanceScaling float32

	handles map[handleKey]uint64
}

// Compile-time interface compliance check
var _ Manager = &managerImpl{}

// NewManager creates a LOD manager with default thresholds. Defaults assume a
// graph scene with unit-radius nodes viewed on a 1920-pixel-wide viewport.
//
// Parameters:
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the newly created manager
func NewManager(options ...ManagerOption) Manager {
	m := &managerImpl{
		mu:                 &sync.RWMutex{},
		distanceThresholds: DefaultDistanceThresholds,
		screenThresholds:   DefaultScreenThresholds,
		viewportWidth:      DefaultViewportWidth,
		nodeRadius:         DefaultNodeRadius,
		performanceScaling: 1.0,
		handles:            make(map[handleKey]uint64),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

func (m *managerImpl) LevelForNode(position [3]float32, cam common.CameraState) Level {
	distance := common.Distance3(cam.Position, position)
	return m.LevelForDistance(distance, m.nodeRadius, cam)
}

func (m *managerImpl) LevelForEdge(p0, p1 [3]float32, cam common.CameraState) Level {
	mid := common.Midpoint3(p0, p1)
	distance := common.Distance3(cam.Position, mid)
	radius := common.Distance3(p0, p1) * 0.5
	if radius < m.nodeRadius {
		radius = m.nodeRadius
	}
	return m.LevelForDistance(distance, radius, cam)
}

func (m *managerImpl) LevelForDistance(distance, radius float32, cam common.CameraState) Level {
	if distance < distanceEpsilon {
		distance = distanceEpsilon
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	level := Cheaper(m.distanceLevel(distance), m.screenLevel(distance, radius, cam.Fov))

	// Performance scaling never hides objects, it only reduces detail.
	switch {
	case m.performanceScaling < clampScalingThreshold:
		if level < LevelLow {
			level = LevelLow
		}
	case m.performanceScaling < downgradeScalingThreshold:
		level = level.Downgrade()
	}

	return level
}

// distanceLevel maps a distance against the ascending thresholds.
// Caller must hold the read lock.
func (m *managerImpl) distanceLevel(distance float32) Level {
	switch {
	case distance <= m.distanceThresholds[0]:
		return LevelHigh
	case distance <= m.distanceThresholds[1]:
		return LevelMedium
	case distance <= m.distanceThresholds[2]:
		return LevelLow
	default:
		return LevelCulled
	}
}

// screenLevel maps an estimated on-screen pixel size against the descending
// thresholds. The estimate projects the object's angular size onto the
// configured viewport width. Caller must hold the read lock.
func (m *managerImpl) screenLevel(distance, radius, fov float32) Level {
	size := 2 * radius * float32(math.Tan(float64(fov)/2)) / distance * m.viewportWidth
	switch {
	case size >= m.screenThresholds[0]:
		return LevelHigh
	case size >= m.screenThresholds[1]:
		return LevelMedium
	case size >= m.screenThresholds[2]:
		return LevelLow
	default:
		return LevelCulled
	}
}

func (m *managerImpl) SetPerformanceScaling(scaling float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.performanceScaling = common.Clamp(scaling, 0, 1)
}

func (m *managerImpl) PerformanceScaling() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.performanceScaling
}

func (m *managerImpl) SetGeometryHandle(cat common.ObjectCategory, level Level, handle uint64) error {
	if !level.Rendered() || level < LevelHigh {
		return ErrNoGeometryForLevel
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[handleKey{cat: cat, level: level}] = handle
	return nil
}

func (m *managerImpl) GeometryHandle(cat common.ObjectCategory, level Level) (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	handle, ok := m.handles[handleKey{cat: cat, level: level}]
	return handle, ok
}

func (m *managerImpl) DistanceThresholds() [3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.distanceThresholds
}

func (m *managerImpl) ScreenThresholds() [3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.screenThresholds
}
