package geometry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
)

// Errors returned while extracting variant meshes.
var (
	errMissingPositions = errors.New("primitive has no POSITION attribute")
	errNoBufferView     = errors.New("accessor has no buffer view")
	errEmptyBuffer      = errors.New("buffer has no data")
)

// LoadLibrary reads art-authored detail variants from a glTF or GLB file.
// Any mesh named after a variant slot (see VariantName, e.g. "node_high" or
// "edge_low") replaces the procedural default for that slot; meshes with
// other names are ignored, and slots the file does not name keep their
// procedural mesh. Loaded meshes without normals get smooth normals
// computed.
//
// Parameters:
//   - path: path to the .gltf or .glb file.
//
// Returns:
//   - *Library: the library with overrides applied.
//   - error: error if the file cannot be opened or a named variant mesh is
//     malformed.
func LoadLibrary(path string) (*Library, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	library := NewLibrary()
	for _, m := range doc.Meshes {
		category, level, ok := ParseVariantName(m.Name)
		if !ok {
			continue
		}
		mesh, err := extractMesh(doc, m)
		if err != nil {
			return nil, fmt.Errorf("extract mesh %q: %w", m.Name, err)
		}
		library.SetVariant(category, level, mesh)
	}
	return library, nil
}

// extractMesh flattens a glTF mesh's triangle primitives into a single
// indexed Mesh.
func extractMesh(doc *gltf.Document, m *gltf.Mesh) (*Mesh, error) {
	mesh := &Mesh{Name: m.Name}
	hasNormals := false
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, errMissingPositions
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
			hasNormals = true
		}

		baseVertex := uint32(len(mesh.Vertices))
		for i, p := range positions {
			v := Vertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
			for _, idx := range indices {
				mesh.Indices = append(mesh.Indices, baseVertex+idx)
			}
		} else {
			for i := range positions {
				mesh.Indices = append(mesh.Indices, baseVertex+uint32(i))
			}
		}
	}
	if !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.ComputeBounds()
	return mesh, nil
}

// readVec3Accessor reads a VEC3 float accessor into [3]float32 triples.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([][3]float32, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("accessor %d: expected VEC3, got %v", accessorIdx, accessor.Type)
	}
	data, start, stride, err := accessorView(doc, accessor)
	if err != nil {
		return nil, err
	}
	if stride == 0 {
		stride = 12
	}
	result := make([][3]float32, accessor.Count)
	for i := range result {
		offset := start + i*stride
		for j := range 3 {
			result[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+j*4:]))
		}
	}
	return result, nil
}

// readIndices reads a scalar index accessor, widening to uint32.
func readIndices(doc *gltf.Document, accessorIdx int) ([]uint32, error) {
	accessor := doc.Accessors[accessorIdx]
	data, start, stride, err := accessorView(doc, accessor)
	if err != nil {
		return nil, err
	}
	result := make([]uint32, accessor.Count)
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		if stride == 0 {
			stride = 1
		}
		for i := range result {
			result[i] = uint32(data[start+i*stride])
		}
	case gltf.ComponentUshort:
		if stride == 0 {
			stride = 2
		}
		for i := range result {
			result[i] = uint32(binary.LittleEndian.Uint16(data[start+i*stride:]))
		}
	case gltf.ComponentUint:
		if stride == 0 {
			stride = 4
		}
		for i := range result {
			result[i] = binary.LittleEndian.Uint32(data[start+i*stride:])
		}
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}
	return result, nil
}

// accessorView resolves an accessor to its backing bytes. The returned
// stride is 0 when elements are tightly packed.
func accessorView(doc *gltf.Document, accessor *gltf.Accessor) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, errNoBufferView
	}
	view := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[view.Buffer]
	if len(buffer.Data) == 0 {
		return nil, 0, 0, errEmptyBuffer
	}
	return buffer.Data, view.ByteOffset + accessor.ByteOffset, view.ByteStride, nil
}
