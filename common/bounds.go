package common

import (
	"math"
)

// BoundingBox is an axis-aligned bounding box in world space. A box with
// Min == Max is a degenerate point box, which is still a valid culling volume.
type BoundingBox struct {
	Min [3]float32
	Max [3]float32
}

// NewBoundingBox creates a bounding box from two corner points. The corners do
// not need to be ordered; the box spans the component-wise min and max.
//
// Parameters:
//   - a: first corner
//   - b: second corner
//
// Returns:
//   - BoundingBox: the normalized box spanning both corners
func NewBoundingBox(a, b [3]float32) BoundingBox {
	var box BoundingBox
	for i := 0; i < 3; i++ {
		box.Min[i] = min(a[i], b[i])
		box.Max[i] = max(a[i], b[i])
	}
	return box
}

// BoxAroundPoint creates a cube-shaped bounding box centered on a point.
// Used for graph nodes, which are positioned points with a render radius.
//
// Parameters:
//   - center: the box center
//   - radius: half the box edge length
//
// Returns:
//   - BoundingBox: the centered box
func BoxAroundPoint(center [3]float32, radius float32) BoundingBox {
	var box BoundingBox
	for i := 0; i < 3; i++ {
		box.Min[i] = center[i] - radius
		box.Max[i] = center[i] + radius
	}
	return box
}

// BoxAroundSegment creates a bounding box enclosing a line segment, padded
// outward on every axis. Used for graph edges, whose ribbon geometry extends
// slightly beyond the endpoint line.
//
// Parameters:
//   - a: first endpoint
//   - b: second endpoint
//   - pad: padding added on every axis (ribbon half-width)
//
// Returns:
//   - BoundingBox: the padded segment box
func BoxAroundSegment(a, b [3]float32, pad float32) BoundingBox {
	box := NewBoundingBox(a, b)
	for i := 0; i < 3; i++ {
		box.Min[i] -= pad
		box.Max[i] += pad
	}
	return box
}

// Center returns the box's center point.
//
// Returns:
//   - [3]float32: midpoint of Min and Max
func (b BoundingBox) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// Radius returns the radius of the box's bounding sphere, measured from the
// center to a corner. A point box has radius zero.
//
// Returns:
//   - float32: half the diagonal length
func (b BoundingBox) Radius() float32 {
	dx := (b.Max[0] - b.Min[0]) * 0.5
	dy := (b.Max[1] - b.Min[1]) * 0.5
	dz := (b.Max[2] - b.Min[2]) * 0.5
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

// Corners returns the eight corner points of the box. For a point box all
// eight corners coincide.
//
// Returns:
//   - [8][3]float32: corners in Min-to-Max bit order (x varies fastest)
func (b BoundingBox) Corners() [8][3]float32 {
	var c [8][3]float32
	for i := 0; i < 8; i++ {
		c[i][0] = b.pick(i&1 != 0, 0)
		c[i][1] = b.pick(i&2 != 0, 1)
		c[i][2] = b.pick(i&4 != 0, 2)
	}
	return c
}

// pick returns Max[axis] when hi is set, otherwise Min[axis].
func (b BoundingBox) pick(hi bool, axis int) float32 {
	if hi {
		return b.Max[axis]
	}
	return b.Min[axis]
}

// ContainsPoint reports whether a point lies inside or on the box boundary.
//
// Parameters:
//   - p: the point to test
//
// Returns:
//   - bool: true if the point is inside or on the boundary
func (b BoundingBox) ContainsPoint(p [3]float32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Union returns the smallest box containing both boxes.
//
// Parameters:
//   - other: the box to merge with
//
// Returns:
//   - BoundingBox: the merged box
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	var out BoundingBox
	for i := 0; i < 3; i++ {
		out.Min[i] = min(b.Min[i], other.Min[i])
		out.Max[i] = max(b.Max[i], other.Max[i])
	}
	return out
}
