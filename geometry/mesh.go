// package geometry provides the CPU-side mesh variants rendered at each
// detail level: procedurally generated node spheres, edge tubes, and effect
// impostors, optionally overridden by art-authored glTF meshes.
package geometry

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// Vertex is the GPU-aligned representation of a single mesh vertex.
// Size: 24 bytes (two tightly packed vec3<f32> attributes, no padding).
type Vertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: outward unit normal for lighting (12 bytes)
}

// VertexStride is the byte size of one Vertex as uploaded.
const VertexStride = int(unsafe.Sizeof(Vertex{}))

// IndexStride is the byte size of one index as uploaded.
const IndexStride = 4

// Mesh is an indexed triangle list plus its object-space bounds.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Bounds   common.BoundingBox
}

// VertexBytes returns the vertex data as a byte slice ready for GPU upload.
//
// Returns:
//   - []byte: the raw little-endian vertex buffer contents.
func (m *Mesh) VertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

// IndexBytes returns the index data as a byte slice ready for GPU upload.
//
// Returns:
//   - []byte: the raw little-endian index buffer contents.
func (m *Mesh) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}

// TriangleCount reports how many triangles the index list describes.
//
// Returns:
//   - int: the triangle count.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ByteSize reports the total upload footprint of the mesh.
//
// Returns:
//   - int: vertex bytes plus index bytes.
func (m *Mesh) ByteSize() int {
	return len(m.Vertices)*VertexStride + len(m.Indices)*IndexStride
}

// ComputeBounds recalculates Bounds from the current vertex positions. An
// empty mesh keeps a zero box.
func (m *Mesh) ComputeBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = common.BoundingBox{}
		return
	}
	box := common.BoundingBox{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		box = box.Union(common.BoundingBox{Min: v.Position, Max: v.Position})
	}
	m.Bounds = box
}

// CalculateSmoothNormals rebuilds per-vertex normals by averaging the
// area-weighted normals of every face touching each vertex. Used when a
// loaded mesh carries no normals of its own.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = [3]float32{}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		edge1 := common.Sub3(m.Vertices[b].Position, m.Vertices[a].Position)
		edge2 := common.Sub3(m.Vertices[c].Position, m.Vertices[a].Position)
		face := common.Cross3(edge1, edge2)
		for _, idx := range [3]uint32{a, b, c} {
			n := &m.Vertices[idx].Normal
			n[0] += face[0]
			n[1] += face[1]
			n[2] += face[2]
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = common.Normalize3(m.Vertices[i].Normal)
	}
}
