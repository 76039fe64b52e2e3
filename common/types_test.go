package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// testCameraState builds a valid snapshot for a camera at eye looking at center.
func testCameraState(eye, center [3]float32) CameraState {
	forward := Normalize3(Sub3(center, eye))
	right := Normalize3(Cross3(forward, [3]float32{0, 1, 0}))
	up := Cross3(right, forward)

	cs := CameraState{
		Position: eye,
		Forward:  forward,
		Right:    right,
		Up:       up,
		Fov:      float32(math.Pi / 2),
		Aspect:   1.0,
		Near:     0.1,
		Far:      1000,
	}
	copy(cs.ViewProj[:], testViewProj(eye, center, cs.Near, cs.Far))
	return cs
}

func TestObjectCategoryString(t *testing.T) {
	require.Equal(t, "node", CategoryNode.String())
	require.Equal(t, "edge", CategoryEdge.String())
	require.Equal(t, "effect", CategoryEffect.String())
	require.Equal(t, "unknown", ObjectCategory(99).String())

	cats := Categories()
	require.Equal(t, [3]ObjectCategory{CategoryNode, CategoryEdge, CategoryEffect}, cats)
}

func TestCameraStateValidate(t *testing.T) {
	valid := testCameraState([3]float32{0, 0, 10}, [3]float32{0, 0, 0})
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CameraState)
		err    error
	}{
		{
			name:   "NaN position",
			mutate: func(cs *CameraState) { cs.Position[0] = float32(math.NaN()) },
			err:    ErrNonFiniteCamera,
		},
		{
			name:   "infinite forward",
			mutate: func(cs *CameraState) { cs.Forward[2] = float32(math.Inf(1)) },
			err:    ErrNonFiniteCamera,
		},
		{
			name:   "zero forward",
			mutate: func(cs *CameraState) { cs.Forward = [3]float32{0, 0, 0} },
			err:    ErrNonFiniteCamera,
		},
		{
			name:   "zero fov",
			mutate: func(cs *CameraState) { cs.Fov = 0 },
			err:    ErrDegenerateProjection,
		},
		{
			name:   "fov past straight angle",
			mutate: func(cs *CameraState) { cs.Fov = float32(math.Pi) },
			err:    ErrDegenerateProjection,
		},
		{
			name:   "negative aspect",
			mutate: func(cs *CameraState) { cs.Aspect = -1 },
			err:    ErrDegenerateProjection,
		},
		{
			name:   "far before near",
			mutate: func(cs *CameraState) { cs.Far = cs.Near / 2 },
			err:    ErrDegenerateProjection,
		},
		{
			name:   "NaN view-projection",
			mutate: func(cs *CameraState) { cs.ViewProj[5] = float32(math.NaN()) },
			err:    ErrNonFiniteCamera,
		},
		{
			name:   "singular view-projection",
			mutate: func(cs *CameraState) { cs.ViewProj = [16]float32{} },
			err:    ErrSingularProjection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := valid
			tt.mutate(&cs)
			require.ErrorIs(t, cs.Validate(), tt.err)
		})
	}
}
