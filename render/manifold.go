package render

import (
	"errors"
	"fmt"
)

// ErrNotManifold is returned by CheckManifold.
var ErrNotManifold = errors.New("render: mesh is not manifold")

type edge struct{ a, b uint32 }

// CheckManifold welds vertices within tol and verifies every edge is shared
// by exactly two triangles traversing it in opposite directions. The error
// describes the first offending edge in triangle order.
func (m *Mesh) CheckManifold(tol float64) error {
	w := m.Weld(tol)
	directed := make(map[edge]int, len(w.Indices))
	for t := 0; t < w.TriangleCount(); t++ {
		tri := w.Indices[3*t : 3*t+3]
		for i := 0; i < 3; i++ {
			e := edge{tri[i], tri[(i+1)%3]}
			if e.a == e.b {
				return fmt.Errorf("%w: triangle %d is degenerate", ErrNotManifold, t)
			}
			directed[e]++
		}
	}
	for t := 0; t < w.TriangleCount(); t++ {
		tri := w.Indices[3*t : 3*t+3]
		for i := 0; i < 3; i++ {
			e := edge{tri[i], tri[(i+1)%3]}
			fwd, rev := directed[e], directed[edge{e.b, e.a}]
			if fwd != 1 || rev != 1 {
				return fmt.Errorf("%w: edge %v-%v of triangle %d traversed %d times forward and %d times backward",
					ErrNotManifold, w.Vertex(int(e.a)), w.Vertex(int(e.b)), t, fwd, rev)
			}
		}
	}
	return nil
}
