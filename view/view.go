// Package view coordinates the per-frame visibility pipeline. A View consumes
// a Scene (graph nodes and edges), runs quality adaptation, frustum and
// occlusion culling, level-of-detail selection, and staging-pool upkeep in a
// fixed order, and exposes the results to the render layer as a visible-object
// set plus per-object detail levels.
package view

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/culling"
	"github.com/Carmen-Shannon/oxy-vis/geometry"
	"github.com/Carmen-Shannon/oxy-vis/geometry_pool"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/Carmen-Shannon/oxy-vis/metrics"
	"github.com/Carmen-Shannon/oxy-vis/quality"
)

const (
	// parallelCullThreshold is the minimum number of uncached objects before
	// the visibility tests fan out across the worker pool. Below this the
	// dispatch overhead outweighs the parallelism.
	parallelCullThreshold = 64

	// cullBatchSize is the number of objects each worker task tests.
	cullBatchSize = 64
)

// NodeInfo describes one graph node for visibility processing.
type NodeInfo struct {
	// ID is the node's stable identifier. Identifiers must be unique across
	// nodes and edges; results are keyed by them between frames.
	ID uint64
	// Position is the node's world-space center.
	Position [3]float32
	// Bounds is the node's world-space bounding box. A zero-valued bounds
	// falls back to a box of the view's configured node radius around
	// Position.
	Bounds common.BoundingBox
}

// EdgeInfo describes one graph edge for visibility processing. The edge's
// bounds are derived from its endpoints padded by the view's edge radius.
type EdgeInfo struct {
	// ID is the edge's stable identifier. Identifiers must be unique across
	// nodes and edges.
	ID uint64
	// Source is the world-space start point.
	Source [3]float32
	// Target is the world-space end point.
	Target [3]float32
}

// Scene is the read-only scene query a View consumes each frame. The returned
// slices are read during BeginFrame only and are not retained.
type Scene interface {
	// Nodes returns the graph nodes to consider this frame.
	Nodes() []NodeInfo
	// Edges returns the graph edges to consider this frame.
	Edges() []EdgeInfo
}

// OccluderScene is implemented by scenes that publish occluder geometry. When
// the scene implements it and occlusion culling is enabled, the boxes it
// returns are registered with the culler before each frame's visibility pass.
type OccluderScene interface {
	// Occluders returns world-space boxes treated as solid occluders.
	Occluders() []common.BoundingBox
}

// View is the frame-granular entry point of the visibility subsystem.
//
// BeginFrame drives one pipeline iteration; the query methods read its
// results. Queries carry the camera pose they are asked about: when the pose
// matches the last processed frame they serve memoized results, otherwise
// they recompute against the requested pose without disturbing frame state.
type View interface {
	// BeginFrame runs one visibility pipeline iteration: quality adaptation,
	// culling, level-of-detail assignment, and staging-pool upkeep, in that
	// order.
	//
	// Parameters:
	//   - cam: common.CameraState, the camera pose for this frame
	//   - frameTime: time.Duration, the duration of the previous frame
	//
	// Returns:
	//   - error: non-nil if the camera state fails validation, in which case
	//     the frame is skipped and prior results remain in place
	BeginFrame(cam common.CameraState, frameTime time.Duration) error

	// VisibleObjects returns the identifiers of objects visible from the
	// given pose. For the pose processed by the last BeginFrame this is the
	// memoized visible set; for any other pose it is a frustum-only
	// recomputation that leaves frame state and the visibility cache
	// untouched.
	//
	// Parameters:
	//   - cam: common.CameraState, the pose to query
	//
	// Returns:
	//   - []uint64: visible object identifiers, in scene order
	VisibleObjects(cam common.CameraState) []uint64

	// LevelFor returns the detail level selected for an object under the
	// given pose. Objects that are culled, unknown, or starved of staging
	// memory report lod.LevelCulled.
	//
	// Parameters:
	//   - objectID: uint64, the object to query
	//   - cam: common.CameraState, the pose to query
	//
	// Returns:
	//   - lod.Level: the selected detail level
	LevelFor(objectID uint64, cam common.CameraState) lod.Level

	// CurrentQuality returns the active quality preset.
	//
	// Returns:
	//   - quality.RenderQuality: the preset for the current quality level
	CurrentQuality() quality.RenderQuality

	// AppliedResolutionScale returns the resolution scale after ramp
	// smoothing, which trails the preset's target during transitions.
	//
	// Returns:
	//   - float32: the scale factor the render target should use now
	AppliedResolutionScale() float32

	// Quality returns the quality controller, for manual overrides and
	// adjustment history.
	//
	// Returns:
	//   - quality.Controller: the controller driving quality transitions
	Quality() quality.Controller

	// Detail returns the level-of-detail manager, for geometry handle
	// lookups by the render layer.
	//
	// Returns:
	//   - lod.Manager: the manager assigning detail levels
	Detail() lod.Manager

	// Culler returns the visibility culler, for cache statistics and
	// occlusion toggling.
	//
	// Returns:
	//   - culling.Culler: the culler producing visibility verdicts
	Culler() culling.Culler

	// Pools returns the geometry staging-pool manager.
	//
	// Returns:
	//   - geometry_pool.Manager: the manager backing staging allocations
	Pools() geometry_pool.Manager

	// FrameMetrics returns the frame-time tracker fed by BeginFrame.
	//
	// Returns:
	//   - *metrics.FrameMetrics: the rolling frame-time window
	FrameMetrics() *metrics.FrameMetrics

	// Info returns a point-in-time summary of staging memory usage.
	//
	// Returns:
	//   - geometry_pool.MemoryInfo: per-category and aggregate pool state
	Info() geometry_pool.MemoryInfo

	// PoolStats returns aggregate staging-pool counters.
	//
	// Returns:
	//   - geometry_pool.PoolStats: allocation and reuse counters
	PoolStats() geometry_pool.PoolStats

	// Frame returns the visibility frame counter, which increments once per
	// accepted BeginFrame.
	//
	// Returns:
	//   - uint64: the current frame ordinal
	Frame() uint64

	// Close releases all staging allocations and destroys the GPU buffers
	// backing the pools. The view must not be used afterward.
	Close()
}

// frameObject is the per-frame working record for one scene object.
type frameObject struct {
	id       uint64
	category common.ObjectCategory
	position [3]float32
	source   [3]float32
	target   [3]float32
	bounds   common.BoundingBox
	visible  bool
	level    lod.Level
}

// stagingSlot tracks the pooled allocation backing one rendered object.
type stagingSlot struct {
	pooledID uint64
	size     int
	level    lod.Level
	category common.ObjectCategory
}

// geometrySlot keys the warn-once set for missing geometry handles.
type geometrySlot struct {
	category common.ObjectCategory
	level    lod.Level
}

type viewImpl struct {
	mu *sync.Mutex

	scene      Scene
	controller quality.Controller
	ramp       *quality.ResolutionRamp
	culler     culling.Culler
	lodMgr     lod.Manager
	pools      geometry_pool.Manager
	frames     *metrics.FrameMetrics
	library    *geometry.Library

	nodeRadius float32
	edgeRadius float32
	rampFPS    int

	// cullPool runs the parallel visibility phase. Workers are spawned on
	// demand and exit after one second idle, so the pool needs no explicit
	// shutdown.
	cullPool worker.DynamicWorkerPool
	workers  int

	// Reused frame storage. Slices are truncated, not reallocated, between
	// frames.
	objects     []frameObject
	objectIndex map[uint64]int
	pending     []int
	visibleIDs  []uint64

	slots       map[uint64]stagingSlot
	warnedSlots map[geometrySlot]bool

	poseHash   uint64
	frameReady bool

	// Option staging consumed once by NewView.
	controllerOptions []quality.ControllerOption
	lodOptions        []lod.ManagerOption
	cullerOptions     []culling.CullerOption
	poolOptions       []geometry_pool.ManagerOption
}

var _ View = &viewImpl{}

// NewView creates a view over the given scene. Collaborators not injected
// through options are constructed with defaults, folding in any option
// bundles supplied via WithConfig. The worker pool backing the parallel
// visibility phase is created last, after options have settled the worker
// count.
//
// Parameters:
//   - scene: Scene, the graph source to process each frame (required)
//   - options: ...ViewBuilderOption, optional configuration
//
// Returns:
//   - View: the configured view
func NewView(scene Scene, options ...ViewBuilderOption) View {
	if scene == nil {
		panic("view: scene is required")
	}

	v := &viewImpl{
		mu:          &sync.Mutex{},
		scene:       scene,
		nodeRadius:  lod.DefaultNodeRadius,
		edgeRadius:  lod.DefaultNodeRadius,
		rampFPS:     int(quality.DefaultTargetFPS),
		workers:     max(runtime.NumCPU()-1, 1),
		objectIndex: make(map[uint64]int),
		slots:       make(map[uint64]stagingSlot),
		warnedSlots: make(map[geometrySlot]bool),
	}
	for _, option := range options {
		option(v)
	}

	if v.controller == nil {
		v.controller = quality.NewController(v.controllerOptions...)
	}
	if v.lodMgr == nil {
		v.lodMgr = lod.NewManager(v.lodOptions...)
	}
	if v.culler == nil {
		v.culler = culling.NewCuller(v.cullerOptions...)
	}
	if v.pools == nil {
		v.pools = geometry_pool.NewManager(v.poolOptions...)
	}
	if v.frames == nil {
		v.frames = metrics.NewFrameMetrics()
	}
	if v.library == nil {
		v.library = geometry.NewLibrary()
	}
	if v.ramp == nil {
		v.ramp = quality.NewResolutionRamp(v.rampFPS)
	}
	v.ramp.SetTarget(v.controller.CurrentQuality().ResolutionScale)

	v.cullPool = worker.NewDynamicWorkerPool(v.workers, 256, 1*time.Second)
	return v
}

func (v *viewImpl) BeginFrame(cam common.CameraState, frameTime time.Duration) error {
	if err := cam.Validate(); err != nil {
		instrumentRejectedFrame()
		return fmt.Errorf("begin frame: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Quality decides first; its scaling factors modulate the level
	// selection below.
	v.frames.Record(frameTime)
	v.controller.Update(quality.Sample{
		FPS:       v.frames.FPS(),
		FrameTime: v.frames.AverageFrameTime(),
	})
	preset := v.controller.CurrentQuality()
	v.lodMgr.SetPerformanceScaling(preset.PerformanceScaling)
	v.ramp.SetTarget(preset.ResolutionScale)
	v.ramp.Step()

	if oc, ok := v.scene.(OccluderScene); ok && v.culler.OcclusionEnabled() {
		v.culler.SetOccluders(oc.Occluders())
	}
	v.culler.Update(cam)

	v.gatherObjects()
	v.resolveVisibility()
	v.assignLevels(cam)
	v.updateStagingSlots()
	v.pools.Maintain()
	v.publishGeometryHandles()

	v.poseHash = culling.PoseHash(cam)
	v.frameReady = true

	visible := len(v.visibleIDs)
	instrumentFrame(visible, len(v.objects)-visible, float64(v.ramp.Applied()))
	return nil
}

// gatherObjects snapshots the scene into the reusable frame records. Nodes
// without explicit bounds get a box of the configured node radius; edge
// bounds wrap the segment between the endpoints padded by the edge radius.
func (v *viewImpl) gatherObjects() {
	v.objects = v.objects[:0]
	clear(v.objectIndex)

	for _, n := range v.scene.Nodes() {
		bounds := n.Bounds
		if bounds == (common.BoundingBox{}) {
			bounds = common.BoxAroundPoint(n.Position, v.nodeRadius)
		}
		v.objectIndex[n.ID] = len(v.objects)
		v.objects = append(v.objects, frameObject{
			id:       n.ID,
			category: common.CategoryNode,
			position: n.Position,
			bounds:   bounds,
		})
	}
	for _, e := range v.scene.Edges() {
		v.objectIndex[e.ID] = len(v.objects)
		v.objects = append(v.objects, frameObject{
			id:       e.ID,
			category: common.CategoryEdge,
			position: common.Midpoint3(e.Source, e.Target),
			source:   e.Source,
			target:   e.Target,
			bounds:   common.BoxAroundSegment(e.Source, e.Target, v.edgeRadius),
		})
	}
}

// resolveVisibility fills in the visible flag for every frame object.
//
// Pre-pass (serial): serve memoized verdicts from the pose cache and collect
// the misses. Phase 1 (parallel when large enough): run frustum and occlusion
// tests for the misses; workers write disjoint indices. Phase 2 (serial):
// store the fresh verdicts back into the cache on the frame goroutine.
func (v *viewImpl) resolveVisibility() {
	v.pending = v.pending[:0]
	for i := range v.objects {
		obj := &v.objects[i]
		if visible, ok := v.culler.Cached(obj.id); ok {
			obj.visible = visible
			continue
		}
		v.pending = append(v.pending, i)
	}

	if len(v.pending) >= parallelCullThreshold && v.workers > 1 {
		v.testPending()
	} else {
		for _, i := range v.pending {
			obj := &v.objects[i]
			obj.visible = v.culler.Test(obj.bounds)
		}
	}

	for _, i := range v.pending {
		obj := &v.objects[i]
		v.culler.Store(obj.id, obj.visible)
	}
}

// testPending fans the pending visibility tests out across the worker pool in
// fixed-size batches and blocks until all of them land. A WaitGroup provides
// the frame barrier; the pool's own Wait would block until workers idle-exit.
func (v *viewImpl) testPending() {
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(v.pending); start += cullBatchSize {
		end := min(start+cullBatchSize, len(v.pending))
		batch := v.pending[start:end]

		wg.Add(1)
		id := taskID
		taskID++
		v.cullPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, i := range batch {
					obj := &v.objects[i]
					obj.visible = v.culler.Test(obj.bounds)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// assignLevels selects a detail level for every visible object and rebuilds
// the visible identifier list. Invisible objects report lod.LevelCulled.
func (v *viewImpl) assignLevels(cam common.CameraState) {
	v.visibleIDs = v.visibleIDs[:0]
	for i := range v.objects {
		obj := &v.objects[i]
		if !obj.visible {
			obj.level = lod.LevelCulled
			continue
		}
		obj.level = v.levelForObject(obj, cam)
		v.visibleIDs = append(v.visibleIDs, obj.id)
	}
}

func (v *viewImpl) levelForObject(obj *frameObject, cam common.CameraState) lod.Level {
	if obj.category == common.CategoryEdge {
		return v.lodMgr.LevelForEdge(obj.source, obj.target, cam)
	}
	return v.lodMgr.LevelForNode(obj.position, cam)
}

// updateStagingSlots reconciles pooled staging memory with this frame's level
// assignments. Slots grow by allocating the larger block before releasing the
// old one, so a refused allocation degrades the object to its previous level
// instead of dropping it. Objects with no slot and no available memory fall
// back to lod.LevelCulled for the frame.
func (v *viewImpl) updateStagingSlots() {
	for i := range v.objects {
		obj := &v.objects[i]
		slot, exists := v.slots[obj.id]

		if !obj.level.Rendered() {
			if exists {
				v.pools.Deallocate(slot.category, slot.pooledID)
				delete(v.slots, obj.id)
			}
			continue
		}

		want := v.variantSize(obj.category, obj.level)
		if want <= 0 {
			// No variant registered for this level, so nothing to stage.
			continue
		}
		if exists && slot.size >= want {
			slot.level = obj.level
			v.slots[obj.id] = slot
			continue
		}

		pooled, ok := v.pools.Allocate(obj.category, want)
		if !ok {
			if exists {
				obj.level = slot.level
			} else {
				obj.level = lod.LevelCulled
			}
			instrumentPoolFallback()
			continue
		}
		if exists {
			v.pools.Deallocate(slot.category, slot.pooledID)
		}
		v.slots[obj.id] = stagingSlot{
			pooledID: pooled.ID,
			size:     want,
			level:    obj.level,
			category: obj.category,
		}
	}

	// Objects that left the scene release their slots.
	for id, slot := range v.slots {
		if _, ok := v.objectIndex[id]; !ok {
			v.pools.Deallocate(slot.category, slot.pooledID)
			delete(v.slots, id)
		}
	}
}

// variantSize reports the upload footprint of the mesh variant for a category
// and level, or zero when the library has no variant registered.
func (v *viewImpl) variantSize(category common.ObjectCategory, level lod.Level) int {
	mesh, ok := v.library.Variant(category, level)
	if !ok {
		return 0
	}
	return mesh.ByteSize()
}

// publishGeometryHandles pushes the pools' shared buffer handles into the
// level-of-detail manager so the render layer can resolve category and level
// to GPU geometry. Missing handles are logged once per slot.
func (v *viewImpl) publishGeometryHandles() {
	for _, category := range common.Categories() {
		for _, level := range lod.RenderedLevels() {
			handle, err := v.pools.HandleFor(level, category)
			if err != nil {
				key := geometrySlot{category: category, level: level}
				if !v.warnedSlots[key] {
					v.warnedSlots[key] = true
					log.Printf("[View] no geometry handle for %s %s: %v", category, level, err)
				}
				continue
			}
			if err := v.lodMgr.SetGeometryHandle(category, level, uint64(handle)); err != nil {
				log.Printf("[View] rejected geometry handle for %s %s: %v", category, level, err)
			}
		}
	}
}

func (v *viewImpl) VisibleObjects(cam common.CameraState) []uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.frameReady && culling.PoseHash(cam) == v.poseHash {
		out := make([]uint64, len(v.visibleIDs))
		copy(out, v.visibleIDs)
		return out
	}

	// Off-pose query: frustum-only tests against the requested pose, leaving
	// frame state and the visibility cache untouched. Skipping occlusion
	// keeps the answer conservative.
	frustum := common.ExtractFrustumFromMatrix(cam.ViewProj[:])
	out := make([]uint64, 0, len(v.objects))
	for i := range v.objects {
		if frustum.IntersectsBox(v.objects[i].bounds) {
			out = append(out, v.objects[i].id)
		}
	}
	return out
}

func (v *viewImpl) LevelFor(objectID uint64, cam common.CameraState) lod.Level {
	v.mu.Lock()
	defer v.mu.Unlock()

	i, ok := v.objectIndex[objectID]
	if !ok {
		return lod.LevelCulled
	}
	obj := &v.objects[i]

	if v.frameReady && culling.PoseHash(cam) == v.poseHash {
		return obj.level
	}

	frustum := common.ExtractFrustumFromMatrix(cam.ViewProj[:])
	if !frustum.IntersectsBox(obj.bounds) {
		return lod.LevelCulled
	}
	return v.levelForObject(obj, cam)
}

func (v *viewImpl) CurrentQuality() quality.RenderQuality {
	return v.controller.CurrentQuality()
}

func (v *viewImpl) AppliedResolutionScale() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ramp.Applied()
}

func (v *viewImpl) Quality() quality.Controller {
	return v.controller
}

func (v *viewImpl) Detail() lod.Manager {
	return v.lodMgr
}

func (v *viewImpl) Culler() culling.Culler {
	return v.culler
}

func (v *viewImpl) Pools() geometry_pool.Manager {
	return v.pools
}

func (v *viewImpl) FrameMetrics() *metrics.FrameMetrics {
	return v.frames
}

func (v *viewImpl) Info() geometry_pool.MemoryInfo {
	return v.pools.Info()
}

func (v *viewImpl) PoolStats() geometry_pool.PoolStats {
	return v.pools.Stats()
}

func (v *viewImpl) Frame() uint64 {
	return v.culler.Frame()
}

func (v *viewImpl) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for id, slot := range v.slots {
		v.pools.Deallocate(slot.category, slot.pooledID)
		delete(v.slots, id)
	}
	v.pools.ReleaseHandles()
	v.frameReady = false
}
