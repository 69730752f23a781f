// Package render turns the boundary cells of an octree into a closed
// triangle mesh and exports it.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/soypat/fncad"
	"github.com/soypat/fncad/octree"
	"gonum.org/v1/gonum/spatial/r3"
)

// ExtractConfig controls Extract.
type ExtractConfig struct {
	// Optimize relaxes vertices onto the surface after extraction.
	Optimize bool
	// Progress, if not nil, receives the completed fraction in [0,1].
	Progress func(fraction float64)
}

func (cfg ExtractConfig) report(fraction float64) {
	if cfg.Progress != nil {
		cfg.Progress(min(1, max(0, fraction)))
	}
}

// cancelCheckInterval is the number of cells or vertices processed between
// context checks.
const cancelCheckInterval = 256

// faceQuads lists for each octree.Direction the 4 cell corners of that face
// ordered counter-clockwise when seen from outside the cell. Corner i has
// bit 0 set for +x, bit 1 for +y and bit 2 for +z.
var faceQuads = [6][4]uint32{
	octree.PosX: {1, 3, 7, 5},
	octree.NegX: {0, 4, 6, 2},
	octree.PosY: {2, 6, 7, 3},
	octree.NegY: {0, 1, 5, 4},
	octree.PosZ: {4, 5, 7, 6},
	octree.NegZ: {0, 2, 3, 1},
}

// Extract builds a triangle mesh from the boundary leaves of t. Every
// boundary cell contributes its 8 corners and two triangles for each face
// whose neighbor is outside the solid. Triangles are wound counter-clockwise
// seen from outside the solid.
//
// If cfg.Optimize is set vertices are then moved onto the surface of the
// tree's field, see relax. Connectivity is not altered by relaxation.
//
// ctx is polled while emitting faces and between relaxation batches. A
// cancelled context aborts extraction with ctx.Err().
func Extract(ctx context.Context, t *octree.Tree, cfg ExtractConfig) (*Mesh, error) {
	cfg.report(0)
	var cells []octree.NodeID
	t.Walk(func(id octree.NodeID, n *octree.Node) bool {
		if n.State == octree.Boundary {
			cells = append(cells, id)
		}
		return true
	})
	cfg.report(0.4)

	verts := make([]r3.Vec, 0, 8*len(cells))
	var indices []uint32
	for i, id := range cells {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		n := t.Node(id)
		base := uint32(len(verts))
		for c := 0; c < 8; c++ {
			verts = append(verts, n.Corner(c))
		}
		for _, d := range octree.Directions {
			nb, err := t.Neighbor(id, d)
			if err != nil {
				if errors.Is(err, octree.ErrMissingNeighbor) {
					fncad.Logger().Error("octree neighbor missing", "center", n.Center, "size", n.Size, "dir", d.String())
				}
				return nil, fmt.Errorf("extracting cell %d: %w", id, err)
			}
			if nb.State != octree.Outside {
				continue
			}
			q := faceQuads[d]
			indices = append(indices,
				base+q[0], base+q[1], base+q[2],
				base+q[0], base+q[2], base+q[3],
			)
		}
	}
	fncad.Logger().Debug("mesh extracted", "cells", len(cells), "vertices", len(verts), "triangles", len(indices)/3)
	cfg.report(0.6)

	if cfg.Optimize && len(indices) > 0 {
		err := relax(ctx, t.Field(), verts, func(pass int) {
			cfg.report(0.6 + 0.4*float64(pass)/maxRelaxPasses)
		})
		if err != nil {
			return nil, err
		}
	}
	m := &Mesh{
		Vertices: make([]float32, 0, 3*len(verts)),
		Indices:  indices,
	}
	for _, v := range verts {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
	}
	cfg.report(1)
	return m, nil
}
