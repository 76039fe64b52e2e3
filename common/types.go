// package common contains common types that are used throughout the visibility
// subsystem. They are not interface-wrapped structs, just plain structs that
// express commonly used data-types.
package common

import (
	"errors"
	"math"
)

// ObjectCategory classifies renderable scene objects by usage. Geometry pools,
// LOD variant tables, and upload handles are all keyed by category.
type ObjectCategory int

const (
	// CategoryNode is a graph node, rendered as a sphere variant.
	CategoryNode ObjectCategory = iota
	// CategoryEdge is a graph edge, rendered as a ribbon variant between two endpoints.
	CategoryEdge
	// CategoryEffect is transient effect geometry such as selection highlights.
	CategoryEffect
)

// Categories returns all object categories in declaration order.
// Useful for iterating pools and variant tables.
//
// Returns:
//   - [3]ObjectCategory: node, edge, effect
func Categories() [3]ObjectCategory {
	return [3]ObjectCategory{CategoryNode, CategoryEdge, CategoryEffect}
}

// String returns a human-readable name for the category.
//
// Returns:
//   - string: "node", "edge", "effect", or "unknown"
func (c ObjectCategory) String() string {
	switch c {
	case CategoryNode:
		return "node"
	case CategoryEdge:
		return "edge"
	case CategoryEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Camera state validation errors. Producers wrap these with their own context.
var (
	// ErrNonFiniteCamera indicates a position or orientation component is NaN or Inf.
	ErrNonFiniteCamera = errors.New("camera state contains non-finite values")
	// ErrDegenerateProjection indicates projection parameters that cannot form a valid frustum.
	ErrDegenerateProjection = errors.New("camera projection parameters are degenerate")
	// ErrSingularProjection indicates a view-projection matrix with no inverse.
	ErrSingularProjection = errors.New("camera view-projection matrix is singular")
)

// CameraState is an immutable snapshot of the camera for one frame. All culling,
// LOD selection, and cache keying read from a snapshot rather than live camera
// state, so a frame sees one consistent pose.
type CameraState struct {
	// Position is the camera's world-space position.
	Position [3]float32
	// Forward is the unit view direction.
	Forward [3]float32
	// Up is the unit up vector.
	Up [3]float32
	// Right is the unit right vector, cross(Forward, Up).
	Right [3]float32

	// Fov is the vertical field of view in radians.
	Fov float32
	// Aspect is the viewport aspect ratio (width/height).
	Aspect float32
	// Near is the near clipping plane distance.
	Near float32
	// Far is the far clipping plane distance.
	Far float32

	// ViewProj is the derived View * Projection matrix in column-major order.
	ViewProj [16]float32
}

// Validate checks that the snapshot describes a usable camera: finite values,
// a non-degenerate projection, and an invertible view-projection matrix.
// Frame processing rejects snapshots that fail validation instead of
// propagating NaNs through culling and LOD math.
//
// Returns:
//   - error: nil if valid, otherwise one of the camera state validation errors
func (cs CameraState) Validate() error {
	for i := 0; i < 3; i++ {
		if !isFinite(cs.Position[i]) || !isFinite(cs.Forward[i]) || !isFinite(cs.Up[i]) {
			return ErrNonFiniteCamera
		}
	}
	if Length3(cs.Forward) < 1e-6 {
		return ErrNonFiniteCamera
	}
	if cs.Fov <= 0 || cs.Fov >= math.Pi {
		return ErrDegenerateProjection
	}
	if cs.Aspect <= 0 || cs.Near <= 0 || cs.Far <= cs.Near {
		return ErrDegenerateProjection
	}
	for i := range cs.ViewProj {
		if !isFinite(cs.ViewProj[i]) {
			return ErrNonFiniteCamera
		}
	}
	var inv [16]float32
	if !Invert4(inv[:], cs.ViewProj[:]) {
		return ErrSingularProjection
	}
	return nil
}

// isFinite reports whether f is neither NaN nor an infinity.
func isFinite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}
