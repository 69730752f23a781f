package render

import (
	"math"

	"github.com/soypat/fncad/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface = kdVertices{}
	_ kdtree.Bounder   = kdVertices{}
)

// Weld returns a copy of m where vertices closer than tol are merged into
// one and vertices not referenced by any triangle are dropped. Merged
// vertices take the position of the first vertex of their cluster in index
// order.
func (m *Mesh) Weld(tol float64) *Mesh {
	remap := make([]int, m.VertexCount())
	for i := range remap {
		remap[i] = -1
	}
	var used kdVertices
	for _, idx := range m.Indices {
		if remap[idx] == -1 {
			remap[idx] = len(used)
			v := m.Vertex(int(idx))
			used = append(used, kdVertex{
				pos: r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)},
				idx: len(used),
			})
		}
	}
	if len(used) == 0 {
		return &Mesh{}
	}
	// The tree reorders its argument, keep used in insertion order.
	tree := kdtree.New(append(kdVertices(nil), used...), false)
	cluster := make([]int, len(used))
	for i := range cluster {
		cluster[i] = -1
	}
	out := &Mesh{Indices: make([]uint32, len(m.Indices))}
	nout := 0
	for i, v := range used {
		if cluster[i] != -1 {
			continue
		}
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, v)
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			if j := c.Comparable.(kdVertex).idx; cluster[j] == -1 {
				cluster[j] = nout
			}
		}
		cluster[i] = nout
		out.Vertices = append(out.Vertices, float32(v.pos.X), float32(v.pos.Y), float32(v.pos.Z))
		nout++
	}
	for i, idx := range m.Indices {
		out.Indices[i] = uint32(cluster[remap[idx]])
	}
	return out
}

type kdVertex struct {
	pos r3.Vec
	idx int
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return d3.Comp(a.pos, int(d)) - d3.Comp(b.(kdVertex).pos, int(d))
}

func (kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.pos, b.(kdVertex).pos))
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

func (k kdVertices) Len() int { return len(k) }

func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (k kdVertices) Slice(start, end int) kdtree.Interface { return k[start:end] }

func (k kdVertices) Bounds() *kdtree.Bounding {
	min := d3.Elem(math.Inf(1))
	max := d3.Elem(math.Inf(-1))
	for _, v := range k {
		min = d3.MinElem(min, v.pos)
		max = d3.MaxElem(max, v.pos)
	}
	return &kdtree.Bounding{Min: kdVertex{pos: min}, Max: kdVertex{pos: max}}
}

type kdPlane struct {
	dim      int
	vertices kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return d3.Comp(p.vertices[i].pos, p.dim) < d3.Comp(p.vertices[j].pos, p.dim)
}

func (p kdPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}

func (p kdPlane) Len() int { return len(p.vertices) }

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
