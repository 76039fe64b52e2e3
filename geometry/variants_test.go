package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/stretchr/testify/require"
)

func TestVariantNameRoundTrip(t *testing.T) {
	for _, category := range common.Categories() {
		for _, level := range lod.RenderedLevels() {
			name := VariantName(category, level)
			gotCategory, gotLevel, ok := ParseVariantName(name)
			require.True(t, ok, name)
			require.Equal(t, category, gotCategory)
			require.Equal(t, level, gotLevel)
		}
	}

	for _, name := range []string{"node", "node_culled", "wall_high", "", "node_high_extra"} {
		_, _, ok := ParseVariantName(name)
		require.False(t, ok, name)
	}
}

func TestLibraryCoversEveryRenderedSlot(t *testing.T) {
	library := NewLibrary()
	for _, category := range common.Categories() {
		for _, level := range lod.RenderedLevels() {
			mesh, ok := library.Variant(category, level)
			require.True(t, ok, "%s %s", category, level)
			require.NotEmpty(t, mesh.Vertices)
			require.NotEmpty(t, mesh.Indices)
			require.Equal(t, VariantName(category, level), mesh.Name)
		}

		_, ok := library.Variant(category, lod.LevelCulled)
		require.False(t, ok, "culled objects have no geometry")
	}
}

func TestVariantDetailDescendsWithLevel(t *testing.T) {
	library := NewLibrary()
	for _, category := range common.Categories() {
		high, _ := library.Variant(category, lod.LevelHigh)
		medium, _ := library.Variant(category, lod.LevelMedium)
		low, _ := library.Variant(category, lod.LevelLow)

		require.Greater(t, high.TriangleCount(), medium.TriangleCount(), category.String())
		require.GreaterOrEqual(t, medium.TriangleCount(), low.TriangleCount(), category.String())
		require.Greater(t, high.ByteSize(), low.ByteSize(), category.String())
	}
}

func TestNodeSphereLiesOnUnitSphere(t *testing.T) {
	sphere := NodeSphere(lod.LevelMedium)
	require.NotNil(t, sphere)
	for _, v := range sphere.Vertices {
		require.InDelta(t, 1.0, common.Length3(v.Position), 1e-5)
		require.InDelta(t, 1.0, common.Length3(v.Normal), 1e-5)
	}

	bounds := sphere.Bounds
	for axis := 0; axis < 3; axis++ {
		require.InDelta(t, -1.0, bounds.Min[axis], 1e-5)
		require.InDelta(t, 1.0, bounds.Max[axis], 1e-5)
	}
}

func TestEdgeTubeSpansUnitLength(t *testing.T) {
	tube := EdgeTube(lod.LevelHigh)
	require.NotNil(t, tube)
	require.InDelta(t, -0.5, tube.Bounds.Min[1], 1e-5)
	require.InDelta(t, 0.5, tube.Bounds.Max[1], 1e-5)
	for _, v := range tube.Vertices {
		require.Zero(t, v.Normal[1], "tube side normals stay radial")
	}
}

func TestGeneratorsRejectNonRenderedLevels(t *testing.T) {
	require.Nil(t, NodeSphere(lod.LevelCulled))
	require.Nil(t, EdgeTube(lod.LevelCulled))
	require.Nil(t, EffectImpostor(lod.LevelCulled))
}

func TestMeshUploadSizes(t *testing.T) {
	mesh := EffectImpostor(lod.LevelLow)
	require.Len(t, mesh.Vertices, 4)
	require.Len(t, mesh.Indices, 6)
	require.Len(t, mesh.VertexBytes(), 4*VertexStride)
	require.Len(t, mesh.IndexBytes(), 6*IndexStride)
	require.Equal(t, 4*VertexStride+6*IndexStride, mesh.ByteSize())
	require.Equal(t, 2, mesh.TriangleCount())
}

func TestCalculateSmoothNormals(t *testing.T) {
	mesh := &Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{1, 1, 0}},
			{Position: [3]float32{0, 1, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	mesh.CalculateSmoothNormals()
	for _, v := range mesh.Vertices {
		require.InDelta(t, 0, v.Normal[0], 1e-6)
		require.InDelta(t, 0, v.Normal[1], 1e-6)
		require.InDelta(t, 1, v.Normal[2], 1e-6)
	}
}

func TestSetVariantIgnoresInvalid(t *testing.T) {
	library := NewLibrary()
	original, _ := library.Variant(common.CategoryNode, lod.LevelHigh)

	library.SetVariant(common.CategoryNode, lod.LevelHigh, nil)
	current, _ := library.Variant(common.CategoryNode, lod.LevelHigh)
	require.Same(t, original, current)

	library.SetVariant(common.CategoryNode, lod.LevelCulled, &Mesh{Name: "stray"})
	_, ok := library.Variant(common.CategoryNode, lod.LevelCulled)
	require.False(t, ok)

	replacement := &Mesh{Name: "node_high"}
	library.SetVariant(common.CategoryNode, lod.LevelHigh, replacement)
	current, _ = library.Variant(common.CategoryNode, lod.LevelHigh)
	require.Same(t, replacement, current)
}
