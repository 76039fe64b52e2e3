package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			require.Equal(t, want, m[i*4+j])
		}
	}
}

func TestMul4Identity(t *testing.T) {
	id := make([]float32, 16)
	Identity(id)

	a := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	out := make([]float32, 16)

	Mul4(out, a, id)
	require.Equal(t, a, out)

	Mul4(out, id, a)
	require.Equal(t, a, out)

	// In-place multiply must not corrupt the operands mid-computation.
	buf := append([]float32(nil), a...)
	Mul4(buf, buf, id)
	require.Equal(t, a, buf)
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := make([]float32, 16)
	near, far := float32(0.1), float32(1000.0)
	Perspective(proj, float32(math.Pi/3), 16.0/9.0, near, far)

	// Depth maps to [0, 1]: near plane at 0, far plane at 1.
	atNear := TransformPoint(proj, [3]float32{0, 0, -near})
	require.InDelta(t, 0.0, float64(atNear[2]/atNear[3]), 1e-5)

	atFar := TransformPoint(proj, [3]float32{0, 0, -far})
	require.InDelta(t, 1.0, float64(atFar[2]/atFar[3]), 1e-4)

	// Points behind the camera have non-positive w.
	behind := TransformPoint(proj, [3]float32{0, 0, 5})
	require.LessOrEqual(t, behind[3], float32(0))
}

func TestLookAtTransformsEyeToOrigin(t *testing.T) {
	view := make([]float32, 16)
	eye := [3]float32{10, 20, 30}
	LookAt(view, eye[0], eye[1], eye[2], 0, 0, 0, 0, 1, 0)

	at := TransformPoint(view, eye)
	require.InDelta(t, 0.0, float64(at[0]), 1e-4)
	require.InDelta(t, 0.0, float64(at[1]), 1e-4)
	require.InDelta(t, 0.0, float64(at[2]), 1e-4)

	// The look target lands on the negative Z axis at eye distance.
	target := TransformPoint(view, [3]float32{0, 0, 0})
	dist := Length3(eye)
	require.InDelta(t, 0.0, float64(target[0]), 1e-3)
	require.InDelta(t, 0.0, float64(target[1]), 1e-3)
	require.InDelta(t, float64(-dist), float64(target[2]), 1e-3)
}

func TestInvert4RoundTrip(t *testing.T) {
	vp := testViewProj([3]float32{5, 10, 15}, [3]float32{0, 0, 0}, 0.1, 500)

	inv := make([]float32, 16)
	require.True(t, Invert4(inv, vp))

	out := make([]float32, 16)
	Mul4(out, vp, inv)

	id := make([]float32, 16)
	Identity(id)
	for i := range out {
		require.InDelta(t, float64(id[i]), float64(out[i]), 1e-3, "element %d", i)
	}
}

func TestInvert4Singular(t *testing.T) {
	zero := make([]float32, 16)
	out := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	unchanged := append([]float32(nil), out...)

	require.False(t, Invert4(out, zero))
	require.Equal(t, unchanged, out)
}

func TestVectorHelpers(t *testing.T) {
	x := [3]float32{1, 0, 0}
	y := [3]float32{0, 1, 0}

	require.Equal(t, [3]float32{0, 0, 1}, Cross3(x, y))
	require.Equal(t, [3]float32{0, 0, -1}, Cross3(y, x))
	require.Equal(t, float32(0), Dot3(x, y))

	v := [3]float32{3, 4, 0}
	require.Equal(t, float32(5), Length3(v))

	n := Normalize3(v)
	require.InDelta(t, 1.0, float64(Length3(n)), 1e-6)
	require.InDelta(t, 0.6, float64(n[0]), 1e-6)
	require.InDelta(t, 0.8, float64(n[1]), 1e-6)

	// Zero vector normalizes to itself instead of producing NaNs.
	require.Equal(t, [3]float32{0, 0, 0}, Normalize3([3]float32{0, 0, 0}))

	a := [3]float32{1, 2, 3}
	b := [3]float32{5, 6, 7}
	require.Equal(t, [3]float32{-4, -4, -4}, Sub3(a, b))
	require.Equal(t, [3]float32{3, 4, 5}, Midpoint3(a, b))
	require.InDelta(t, math.Sqrt(48), float64(Distance3(a, b)), 1e-5)
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1.0, 2.0, 3.0}
	raw := SliceToBytes(data)
	require.Len(t, raw, 12)

	require.Nil(t, SliceToBytes([]float32(nil)))
	require.Nil(t, SliceToBytes([]float32{}))

	type vertex struct {
		Position [3]float32
		Normal   [3]float32
	}
	verts := make([]vertex, 4)
	require.Len(t, SliceToBytes(verts), 4*24)
}
