package formats

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh validation errors.
var (
	ErrNoVertices        = errors.New("mesh has no vertices")
	ErrElementOutOfRange = errors.New("triangle references vertex out of range")
	ErrUVCountMismatch   = errors.New("uv count does not match vertex count")
)

// TriangleMesh is an indexed triangle mesh ready to be handed to a renderer.
type TriangleMesh struct {
	Name     string
	Vertices []mgl32.Vec3
	Elements [][3]int
	UVs      []mgl32.Vec2 // optional, one per vertex
	Normals  []mgl32.Vec3 // optional, one per vertex
}

// VertexCount returns the number of vertices.
func (m *TriangleMesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *TriangleMesh) TriangleCount() int {
	return len(m.Elements)
}

// HasUVs reports whether the mesh carries one UV per vertex.
func (m *TriangleMesh) HasUVs() bool {
	return len(m.UVs) > 0 && len(m.UVs) == len(m.Vertices)
}

// HasNormals reports whether the mesh carries one normal per vertex.
func (m *TriangleMesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)
}

// Validate checks that every element indexes an existing vertex and that
// optional per-vertex attributes match the vertex count.
func (m *TriangleMesh) Validate() error {
	if len(m.Vertices) == 0 {
		return ErrNoVertices
	}
	n := len(m.Vertices)
	for i, tri := range m.Elements {
		for _, idx := range tri {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: triangle %d index %d (vertices: %d)", ErrElementOutOfRange, i, idx, n)
			}
		}
	}
	if len(m.UVs) > 0 && len(m.UVs) != n {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrUVCountMismatch, len(m.UVs), n)
	}
	return nil
}

// ComputeNormals fills Normals with area-weighted vertex normals.
// Existing normals are replaced.
func (m *TriangleMesh) ComputeNormals() {
	normals := make([]mgl32.Vec3, len(m.Vertices))
	for _, tri := range m.Elements {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		// Cross product length is twice the triangle area, which weights the sum.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range tri {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i, n := range normals {
		if n.Len() > 1e-8 {
			normals[i] = n.Normalize()
		}
	}
	m.Normals = normals
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
func (m *TriangleMesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max
}

// Clone returns a deep copy of the mesh.
func (m *TriangleMesh) Clone() TriangleMesh {
	c := TriangleMesh{Name: m.Name}
	c.Vertices = append([]mgl32.Vec3(nil), m.Vertices...)
	c.Elements = append([][3]int(nil), m.Elements...)
	if m.UVs != nil {
		c.UVs = append([]mgl32.Vec2(nil), m.UVs...)
	}
	if m.Normals != nil {
		c.Normals = append([]mgl32.Vec3(nil), m.Normals...)
	}
	return c
}

// VertexStride is the number of floats per vertex produced by Interleave:
// position (3), normal (3), uv (2).
const VertexStride = 8

// Interleave packs the mesh into position/normal/uv vertex data. Missing
// normals are computed on a copy and missing UVs are zero.
func (m *TriangleMesh) Interleave() []float32 {
	normals := m.Normals
	if !m.HasNormals() {
		c := TriangleMesh{Vertices: m.Vertices, Elements: m.Elements}
		c.ComputeNormals()
		normals = c.Normals
	}
	hasUVs := m.HasUVs()

	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for i, v := range m.Vertices {
		n := normals[i]
		var uv mgl32.Vec2
		if hasUVs {
			uv = m.UVs[i]
		}
		out = append(out, v[0], v[1], v[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// Indices flattens the triangle elements for an element buffer.
func (m *TriangleMesh) Indices() []uint32 {
	out := make([]uint32, 0, len(m.Elements)*3)
	for _, tri := range m.Elements {
		out = append(out, uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}
	return out
}
