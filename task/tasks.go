package task

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/soypat/fncad"
	"github.com/soypat/fncad/octree"
	"github.com/soypat/fncad/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// OctreeTask subdivides a cubic domain against a field. On success the
// task result is an OctreeResult.
type OctreeTask struct {
	Field   fncad.Field
	Center  r3.Vec
	Size    float64
	MinSize float64
	Budget  int
}

// OctreeResult is the result of an OctreeTask.
type OctreeResult struct {
	// Encoded is the tree encoded with octree.(*Tree).MarshalBinary.
	Encoded []byte
	Cells   int
}

func (OctreeTask) Kind() string { return "octree" }

// Run reports the consumed fraction of the cell budget as progress, capped
// below 1 until the tree is encoded.
func (t OctreeTask) Run(ctx context.Context, progress func(float64)) (any, error) {
	tree, err := octree.New(t.Field, t.Center, t.Size)
	if err != nil {
		return nil, err
	}
	cells, err := tree.Subdivide(ctx, octree.SubdivideConfig{
		MinSize: t.MinSize,
		Budget:  t.Budget,
		Progress: func(cells int) {
			progress(min(float64(cells)/float64(t.Budget), 0.99))
		},
	})
	if err != nil {
		return nil, err
	}
	b, err := tree.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding octree: %w", err)
	}
	fncad.Logger().Debug("octree task done", "cells", humanize.Comma(int64(cells)), "encoded", humanize.Bytes(uint64(len(b))))
	return OctreeResult{Encoded: b, Cells: cells}, nil
}

// MeshTask extracts a mesh from an encoded octree. On success the task
// result is a *render.Mesh.
type MeshTask struct {
	Field    fncad.Field
	Octree   []byte
	Optimize bool
}

func (MeshTask) Kind() string { return "mesh" }

func (t MeshTask) Run(ctx context.Context, progress func(float64)) (any, error) {
	tree, err := octree.Decode(t.Octree, t.Field)
	if err != nil {
		return nil, err
	}
	m, err := render.Extract(ctx, tree, render.ExtractConfig{Optimize: t.Optimize, Progress: progress})
	if err != nil {
		return nil, err
	}
	fncad.Logger().Debug("mesh task done", "triangles", humanize.Comma(int64(m.TriangleCount())))
	return m, nil
}
