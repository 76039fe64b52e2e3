package culling

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

const (
	// DefaultOcclusionGridWidth is the horizontal cell count of the depth grid.
	DefaultOcclusionGridWidth = 16
	// DefaultOcclusionGridHeight is the vertical cell count of the depth grid.
	DefaultOcclusionGridHeight = 16

	// projectionEpsilon is the minimum clip-space w accepted when projecting
	// a corner. Anything at or behind the camera plane fails projection.
	projectionEpsilon = 1e-5

	// depthMargin pads the depth comparison so near-coincident surfaces
	// read as visible.
	depthMargin = 1e-3
)

// OcclusionCuller maintains a coarse screen-space depth grid built from a
// set of large occluder volumes and answers whether a bounding box is
// provably hidden behind them.
//
// The estimate is conservative and that is this stage's whole contract:
// Occluded returns true only when every grid cell touched by the box's
// projection is fully covered by an occluder nearer than the box's closest
// point. Every approximation errs toward "visible": occluder footprints are
// shrunk by one cell on each side before marking coverage while box
// footprints are expanded to every touched cell, and an occluder with any
// corner at or behind the camera plane is discarded outright. A box wrongly
// reported visible costs fill rate, never correctness.
type OcclusionCuller struct {
	mu       *sync.RWMutex
	gridW    int
	gridH    int
	covered  []bool
	depth    []float32
	viewProj [16]float32
	active   bool
}

// NewOcclusionCuller builds a depth grid of the given resolution.
//
// Parameters:
//   - gridWidth: horizontal cell count, 0 for DefaultOcclusionGridWidth.
//   - gridHeight: vertical cell count, 0 for DefaultOcclusionGridHeight.
//
// Returns:
//   - *OcclusionCuller: the new culler with an empty grid.
func NewOcclusionCuller(gridWidth, gridHeight int) *OcclusionCuller {
	if gridWidth <= 0 {
		gridWidth = DefaultOcclusionGridWidth
	}
	if gridHeight <= 0 {
		gridHeight = DefaultOcclusionGridHeight
	}
	return &OcclusionCuller{
		mu:      &sync.RWMutex{},
		gridW:   gridWidth,
		gridH:   gridHeight,
		covered: make([]bool, gridWidth*gridHeight),
		depth:   make([]float32, gridWidth*gridHeight),
	}
}

// Update rebuilds the depth grid from the camera and the current occluder
// set. Cells keep the nearest far-depth of the occluders covering them, so
// overlapping occluders only ever make the test stricter to pass, never
// looser.
//
// Parameters:
//   - cam: the camera snapshot for this frame.
//   - occluders: world-space boxes treated as fully opaque.
func (o *OcclusionCuller) Update(cam common.CameraState, occluders []common.BoundingBox) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.viewProj = cam.ViewProj
	o.active = false
	for i := range o.covered {
		o.covered[i] = false
		o.depth[i] = math.MaxFloat32
	}
	for _, box := range occluders {
		rect, ok := o.projectLocked(box)
		if !ok {
			continue
		}
		// Shrink the footprint one cell per side so partially covered
		// border cells never count as blocked.
		minX := cellIndex(rect.minX, o.gridW) + 1
		maxX := cellIndex(rect.maxX, o.gridW) - 1
		minY := cellIndex(rect.minY, o.gridH) + 1
		maxY := cellIndex(rect.maxY, o.gridH) - 1
		minX = common.Clamp(minX, 0, o.gridW-1)
		maxX = common.Clamp(maxX, 0, o.gridW-1)
		minY = common.Clamp(minY, 0, o.gridH-1)
		maxY = common.Clamp(maxY, 0, o.gridH-1)
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				idx := y*o.gridW + x
				o.covered[idx] = true
				if rect.farDepth < o.depth[idx] {
					o.depth[idx] = rect.farDepth
				}
				o.active = true
			}
		}
	}
}

// Occluded reports whether a box is provably hidden behind the occluder set
// captured by the last Update. False means "possibly visible", never more.
//
// Parameters:
//   - box: the world-space bounds to test.
//
// Returns:
//   - bool: true only when the box is certainly hidden.
func (o *OcclusionCuller) Occluded(box common.BoundingBox) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.active {
		return false
	}
	rect, ok := o.projectLocked(box)
	if !ok {
		return false
	}
	minX := common.Clamp(cellIndex(rect.minX, o.gridW), 0, o.gridW-1)
	maxX := common.Clamp(cellIndex(rect.maxX, o.gridW), 0, o.gridW-1)
	minY := common.Clamp(cellIndex(rect.minY, o.gridH), 0, o.gridH-1)
	maxY := common.Clamp(cellIndex(rect.maxY, o.gridH), 0, o.gridH-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			idx := y*o.gridW + x
			if !o.covered[idx] {
				return false
			}
			if rect.nearDepth <= o.depth[idx]+depthMargin {
				return false
			}
		}
	}
	return true
}

// GridSize reports the grid resolution.
//
// Returns:
//   - int: horizontal cell count.
//   - int: vertical cell count.
func (o *OcclusionCuller) GridSize() (int, int) {
	return o.gridW, o.gridH
}

// screenRect is the normalized-device-coordinate footprint of a projected
// box plus its depth extremes.
type screenRect struct {
	minX, minY float32
	maxX, maxY float32
	nearDepth  float32
	farDepth   float32
}

func (o *OcclusionCuller) projectLocked(box common.BoundingBox) (screenRect, bool) {
	rect := screenRect{
		minX:      math.MaxFloat32,
		minY:      math.MaxFloat32,
		maxX:      -math.MaxFloat32,
		maxY:      -math.MaxFloat32,
		nearDepth: math.MaxFloat32,
		farDepth:  -math.MaxFloat32,
	}
	for _, corner := range box.Corners() {
		clip := common.TransformPoint(o.viewProj[:], corner)
		if clip[3] <= projectionEpsilon {
			return screenRect{}, false
		}
		x := clip[0] / clip[3]
		y := clip[1] / clip[3]
		z := clip[2] / clip[3]
		rect.minX = min(rect.minX, x)
		rect.maxX = max(rect.maxX, x)
		rect.minY = min(rect.minY, y)
		rect.maxY = max(rect.maxY, y)
		rect.nearDepth = min(rect.nearDepth, z)
		rect.farDepth = max(rect.farDepth, z)
	}
	return rect, true
}

// cellIndex maps a normalized device coordinate in [-1, 1] to a cell index.
// Values outside the range map outside the grid and callers clamp.
func cellIndex(ndc float32, cells int) int {
	return int(math.Floor((float64(ndc) + 1) / 2 * float64(cells)))
}
