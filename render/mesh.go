package render

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Mesh is an indexed triangle mesh stored in flat buffers ready for upload
// to a GPU or export.
type Mesh struct {
	// Vertices holds 3 coordinates per vertex.
	Vertices []float32
	// Indices holds 3 vertex indices per triangle.
	Indices []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool { return len(m.Indices) == 0 }

// Vertex returns the i'th vertex.
func (m *Mesh) Vertex(i int) ms3.Vec {
	return ms3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
}

// Triangle returns the i'th triangle.
func (m *Mesh) Triangle(i int) ms3.Triangle {
	idx := m.Indices[3*i : 3*i+3]
	return ms3.Triangle{m.Vertex(int(idx[0])), m.Vertex(int(idx[1])), m.Vertex(int(idx[2]))}
}

// Triangles returns the triangles of the mesh in index order.
func (m *Mesh) Triangles() []ms3.Triangle {
	tris := make([]ms3.Triangle, m.TriangleCount())
	for i := range tris {
		tris[i] = m.Triangle(i)
	}
	return tris
}

// Bounds returns the bounding box of all vertices referenced by triangles.
// The box of an empty mesh is the zero box.
func (m *Mesh) Bounds() ms3.Box {
	if m.IsEmpty() {
		return ms3.Box{}
	}
	inf := math32.Inf(1)
	bb := ms3.Box{Min: ms3.Vec{X: inf, Y: inf, Z: inf}, Max: ms3.Vec{X: -inf, Y: -inf, Z: -inf}}
	for _, idx := range m.Indices {
		v := m.Vertex(int(idx))
		bb.Min = ms3.MinElem(bb.Min, v)
		bb.Max = ms3.MaxElem(bb.Max, v)
	}
	return bb
}
