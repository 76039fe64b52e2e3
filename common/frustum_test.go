package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// testViewProj builds a combined view-projection matrix for a camera at eye
// looking at center, with a 90 degree vertical field of view.
func testViewProj(eye, center [3]float32, near, far float32) []float32 {
	view := make([]float32, 16)
	proj := make([]float32, 16)
	out := make([]float32, 16)
	LookAt(view, eye[0], eye[1], eye[2], center[0], center[1], center[2], 0, 1, 0)
	Perspective(proj, float32(math.Pi/2), 1.0, near, far)
	Mul4(out, proj, view)
	return out
}

func TestExtractFrustumNormalizesPlanes(t *testing.T) {
	vp := testViewProj([3]float32{0, 0, 0}, [3]float32{0, 0, -1}, 0.1, 1000)
	f := ExtractFrustumFromMatrix(vp)

	for i, p := range f.Planes {
		length := Length3(p.Normal)
		require.InDelta(t, 1.0, length, 1e-4, "plane %d normal should be unit length", i)
	}
}

func TestFrustumIntersectsBox(t *testing.T) {
	// Camera at origin looking down -Z.
	vp := testViewProj([3]float32{0, 0, 0}, [3]float32{0, 0, -1}, 0.1, 1000)
	f := ExtractFrustumFromMatrix(vp)

	tests := []struct {
		name    string
		box     BoundingBox
		visible bool
	}{
		{
			name:    "box directly ahead",
			box:     BoxAroundPoint([3]float32{0, 0, -10}, 1),
			visible: true,
		},
		{
			name:    "box behind camera",
			box:     BoxAroundPoint([3]float32{0, 0, 10}, 1),
			visible: false,
		},
		{
			name:    "box beyond far plane",
			box:     BoxAroundPoint([3]float32{0, 0, -2000}, 1),
			visible: false,
		},
		{
			name:    "box far outside right plane",
			box:     BoxAroundPoint([3]float32{500, 0, -10}, 1),
			visible: false,
		},
		{
			name:    "box far outside top plane",
			box:     BoxAroundPoint([3]float32{0, 500, -10}, 1),
			visible: false,
		},
		{
			name:    "huge box straddling the whole frustum",
			box:     NewBoundingBox([3]float32{-100, -100, -100}, [3]float32{100, 100, 100}),
			visible: true,
		},
		{
			name:    "box straddling the left plane",
			box:     BoxAroundPoint([3]float32{-10, 0, -10}, 3),
			visible: true,
		},
		{
			name:    "point box ahead",
			box:     BoxAroundPoint([3]float32{0, 0, -10}, 0),
			visible: true,
		},
		{
			name:    "point box behind",
			box:     BoxAroundPoint([3]float32{0, 0, 10}, 0),
			visible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.visible, f.IntersectsBox(tt.box))
		})
	}
}

func TestFrustumPointBoxMatchesPointSemantics(t *testing.T) {
	vp := testViewProj([3]float32{0, 0, 0}, [3]float32{0, 0, -1}, 0.1, 1000)
	f := ExtractFrustumFromMatrix(vp)

	// Degenerate boxes must cull exactly like the point they collapse to.
	points := [][3]float32{
		{0, 0, -10},
		{0, 0, 10},
		{50, 0, -10},
		{-5, 5, -20},
		{0, 0, -999},
		{0, 0, -1001},
	}
	for _, p := range points {
		box := BoundingBox{Min: p, Max: p}
		require.Equal(t, f.ContainsPoint(p), f.IntersectsBox(box), "point %v", p)
	}
}

func TestFrustumNeverCullsBoxContainingVisiblePoint(t *testing.T) {
	vp := testViewProj([3]float32{0, 0, 0}, [3]float32{0, 0, -1}, 0.1, 1000)
	f := ExtractFrustumFromMatrix(vp)

	// Conservative test: any box around a visible point must stay visible.
	for x := float32(-20); x <= 20; x += 10 {
		for y := float32(-20); y <= 20; y += 10 {
			for z := float32(-40); z <= 0; z += 10 {
				p := [3]float32{x, y, z}
				if !f.ContainsPoint(p) {
					continue
				}
				require.True(t, f.IntersectsBox(BoxAroundPoint(p, 1.5)), "box around visible point %v", p)
			}
		}
	}
}

func TestFrustumOffsetCamera(t *testing.T) {
	// Camera away from the origin looking back at it. The origin is visible,
	// things behind the camera are not.
	vp := testViewProj([3]float32{100, 50, 100}, [3]float32{0, 0, 0}, 0.1, 1000)
	f := ExtractFrustumFromMatrix(vp)

	require.True(t, f.IntersectsBox(BoxAroundPoint([3]float32{0, 0, 0}, 2)))
	require.False(t, f.IntersectsBox(BoxAroundPoint([3]float32{200, 100, 200}, 2)))
}

func TestBoundingBoxHelpers(t *testing.T) {
	box := NewBoundingBox([3]float32{4, -2, 8}, [3]float32{-4, 2, 0})
	require.Equal(t, [3]float32{-4, -2, 0}, box.Min)
	require.Equal(t, [3]float32{4, 2, 8}, box.Max)
	require.Equal(t, [3]float32{0, 0, 4}, box.Center())
	require.InDelta(t, math.Sqrt(16+4+16), float64(box.Radius()), 1e-5)

	require.True(t, box.ContainsPoint([3]float32{0, 0, 4}))
	require.True(t, box.ContainsPoint([3]float32{4, 2, 8}))
	require.False(t, box.ContainsPoint([3]float32{5, 0, 4}))

	seg := BoxAroundSegment([3]float32{0, 0, 0}, [3]float32{10, 0, 0}, 0.5)
	require.Equal(t, [3]float32{-0.5, -0.5, -0.5}, seg.Min)
	require.Equal(t, [3]float32{10.5, 0.5, 0.5}, seg.Max)

	merged := box.Union(seg)
	require.Equal(t, [3]float32{-4, -2, -0.5}, merged.Min)
	require.Equal(t, [3]float32{10.5, 2, 8}, merged.Max)

	corners := BoxAroundPoint([3]float32{1, 1, 1}, 1).Corners()
	require.Len(t, corners, 8)
	require.Equal(t, [3]float32{0, 0, 0}, corners[0])
	require.Equal(t, [3]float32{2, 2, 2}, corners[7])
}

func BenchmarkFrustumIntersectsBox(b *testing.B) {
	vp := testViewProj([3]float32{0, 0, 0}, [3]float32{0, 0, -1}, 0.1, 1000)
	f := ExtractFrustumFromMatrix(vp)
	box := BoxAroundPoint([3]float32{5, -3, -50}, 2)

	for b.Loop() {
		f.IntersectsBox(box)
	}
}

func BenchmarkExtractFrustum(b *testing.B) {
	vp := testViewProj([3]float32{10, 20, 30}, [3]float32{0, 0, 0}, 0.1, 1000)

	for b.Loop() {
		ExtractFrustumFromMatrix(vp)
	}
}
