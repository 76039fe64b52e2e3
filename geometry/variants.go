package geometry

import (
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/lod"
)

// sphereDetail maps a detail level to UV-sphere segment and ring counts.
var sphereDetail = map[lod.Level][2]int{
	lod.LevelHigh:   {32, 16},
	lod.LevelMedium: {16, 8},
	lod.LevelLow:    {8, 4},
}

// tubeDetail maps a detail level to the radial segment count of the edge
// tube.
var tubeDetail = map[lod.Level]int{
	lod.LevelHigh:   12,
	lod.LevelMedium: 6,
	lod.LevelLow:    3,
}

// impostorDetail maps a detail level to the number of crossed quads in the
// effect impostor.
var impostorDetail = map[lod.Level]int{
	lod.LevelHigh:   3,
	lod.LevelMedium: 2,
	lod.LevelLow:    1,
}

// VariantName returns the mesh name identifying a variant slot, the same
// naming art-authored glTF files use to override the procedural defaults.
//
// Parameters:
//   - category: the object category.
//   - level: the detail level.
//
// Returns:
//   - string: a name like "node_high" or "edge_low".
func VariantName(category common.ObjectCategory, level lod.Level) string {
	return category.String() + "_" + level.String()
}

// ParseVariantName resolves a mesh name back to its variant slot.
//
// Parameters:
//   - name: a mesh name such as "node_high".
//
// Returns:
//   - common.ObjectCategory: the category the name addresses.
//   - lod.Level: the rendered detail level the name addresses.
//   - bool: false when the name matches no variant slot.
func ParseVariantName(name string) (common.ObjectCategory, lod.Level, bool) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	for _, category := range common.Categories() {
		if category.String() != parts[0] {
			continue
		}
		for _, level := range lod.RenderedLevels() {
			if level.String() == parts[1] {
				return category, level, true
			}
		}
	}
	return 0, 0, false
}

// Library holds one mesh per (category, rendered level) variant slot. A new
// Library starts fully populated with procedural meshes; loaders may
// replace individual slots before the Library is shared. After that it is
// read-only and safe for concurrent readers.
type Library struct {
	variants map[variantKey]*Mesh
}

type variantKey struct {
	category common.ObjectCategory
	level    lod.Level
}

// NewLibrary builds a Library holding the procedural default for every
// variant slot.
//
// Returns:
//   - *Library: the populated library.
func NewLibrary() *Library {
	l := &Library{variants: make(map[variantKey]*Mesh)}
	for _, level := range lod.RenderedLevels() {
		l.variants[variantKey{common.CategoryNode, level}] = NodeSphere(level)
		l.variants[variantKey{common.CategoryEdge, level}] = EdgeTube(level)
		l.variants[variantKey{common.CategoryEffect, level}] = EffectImpostor(level)
	}
	return l
}

// Variant returns the mesh for a variant slot.
//
// Parameters:
//   - category: the object category.
//   - level: the detail level.
//
// Returns:
//   - *Mesh: the mesh, nil when ok is false.
//   - bool: ok, false for culled or unknown slots.
func (l *Library) Variant(category common.ObjectCategory, level lod.Level) (*Mesh, bool) {
	mesh, ok := l.variants[variantKey{category, level}]
	return mesh, ok
}

// SetVariant replaces the mesh in a variant slot. Nil meshes and
// non-rendered levels are ignored. Not safe to call once the Library is
// shared with readers.
//
// Parameters:
//   - category: the object category.
//   - level: the detail level.
//   - mesh: the replacement mesh.
func (l *Library) SetVariant(category common.ObjectCategory, level lod.Level, mesh *Mesh) {
	if mesh == nil || !level.Rendered() {
		return
	}
	l.variants[variantKey{category, level}] = mesh
}

// NodeSphere generates the unit-radius UV sphere used for graph nodes at a
// detail level.
//
// Parameters:
//   - level: the rendered detail level.
//
// Returns:
//   - *Mesh: the sphere mesh, nil for non-rendered levels.
func NodeSphere(level lod.Level) *Mesh {
	detail, ok := sphereDetail[level]
	if !ok {
		return nil
	}
	return uvSphere(VariantName(common.CategoryNode, level), detail[0], detail[1])
}

// EdgeTube generates the unit edge cylinder used for graph edges at a
// detail level. The tube has unit radius and unit length along Y, centered
// at the origin, and is scaled into place per edge by the host.
//
// Parameters:
//   - level: the rendered detail level.
//
// Returns:
//   - *Mesh: the tube mesh, nil for non-rendered levels.
func EdgeTube(level lod.Level) *Mesh {
	radial, ok := tubeDetail[level]
	if !ok {
		return nil
	}
	return unitTube(VariantName(common.CategoryEdge, level), radial)
}

// EffectImpostor generates the crossed-quad impostor used for effects at a
// detail level.
//
// Parameters:
//   - level: the rendered detail level.
//
// Returns:
//   - *Mesh: the impostor mesh, nil for non-rendered levels.
func EffectImpostor(level lod.Level) *Mesh {
	planes, ok := impostorDetail[level]
	if !ok {
		return nil
	}
	return crossedQuads(VariantName(common.CategoryEffect, level), planes)
}

func uvSphere(name string, segments, rings int) *Mesh {
	mesh := &Mesh{Name: name}
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		sinTheta, cosTheta := math.Sincos(theta)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			sinPhi, cosPhi := math.Sincos(phi)
			p := [3]float32{
				float32(sinTheta * cosPhi),
				float32(cosTheta),
				float32(sinTheta * sinPhi),
			}
			mesh.Vertices = append(mesh.Vertices, Vertex{Position: p, Normal: p})
		}
	}
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			mesh.Indices = append(mesh.Indices,
				a, b, a+1,
				a+1, b, b+1,
			)
		}
	}
	mesh.ComputeBounds()
	return mesh
}

func unitTube(name string, radial int) *Mesh {
	mesh := &Mesh{Name: name}
	for _, y := range [2]float32{-0.5, 0.5} {
		for s := 0; s <= radial; s++ {
			phi := 2 * math.Pi * float64(s) / float64(radial)
			sinPhi, cosPhi := math.Sincos(phi)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{float32(cosPhi), y, float32(sinPhi)},
				Normal:   [3]float32{float32(cosPhi), 0, float32(sinPhi)},
			})
		}
	}
	top := uint32(radial + 1)
	for s := 0; s < radial; s++ {
		a := uint32(s)
		b := top + uint32(s)
		mesh.Indices = append(mesh.Indices,
			a, b, a+1,
			a+1, b, b+1,
		)
	}
	mesh.ComputeBounds()
	return mesh
}

func crossedQuads(name string, planes int) *Mesh {
	mesh := &Mesh{Name: name}
	quads := [3][5][3]float32{
		// Each entry: four corners then the shared normal.
		{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0}, {0, 0, 1}},
		{{0, -0.5, 0.5}, {0, -0.5, -0.5}, {0, 0.5, -0.5}, {0, 0.5, 0.5}, {1, 0, 0}},
		{{-0.5, 0, -0.5}, {0.5, 0, -0.5}, {0.5, 0, 0.5}, {-0.5, 0, 0.5}, {0, 1, 0}},
	}
	if planes > len(quads) {
		planes = len(quads)
	}
	for q := 0; q < planes; q++ {
		base := uint32(len(mesh.Vertices))
		for corner := 0; corner < 4; corner++ {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: quads[q][corner],
				Normal:   quads[q][4],
			})
		}
		mesh.Indices = append(mesh.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	mesh.ComputeBounds()
	return mesh
}
