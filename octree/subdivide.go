package octree

import (
	"context"
	"errors"
	"fmt"

	"github.com/soypat/fncad"
	"github.com/soypat/fncad/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SubdivideConfig controls Subdivide.
type SubdivideConfig struct {
	// MinSize is the smallest allowed cell edge length. A boundary cell
	// whose children would be smaller stays a boundary leaf.
	MinSize float64
	// Budget gates splitting. A boundary cell is split only while more
	// than one unit of budget remains, and the budget left for its children
	// shrinks by the cells consumed by earlier siblings. Leaves created by
	// the last allowed split are still counted, so the returned cell count
	// may exceed Budget.
	Budget int
	// Progress, if not nil, is called after every split with the number of
	// cells in the tree so far.
	Progress func(cells int)
}

func (cfg SubdivideConfig) validate() error {
	switch {
	case !(cfg.MinSize > 0):
		return fmt.Errorf("%w: minimum cell size must be positive, got %g", ErrInvalidConfig, cfg.MinSize)
	case cfg.Budget < 1:
		return fmt.Errorf("%w: cell budget must be at least 1, got %d", ErrInvalidConfig, cfg.Budget)
	}
	return nil
}

// Subdivide recursively splits boundary cells of a freshly created tree
// and returns the number of cells consumed, which equals the number of
// nodes in the tree.
//
// Each split consumes one unit of the budget and every visited cell counts
// as one consumed cell. When a boundary cell needs splitting and at most
// one unit of budget remains Subdivide fails with ErrCellBudgetExhausted.
// The failure aborts the whole subdivision and the tree must be discarded.
// The context is checked before every split.
func (t *Tree) Subdivide(ctx context.Context, cfg SubdivideConfig) (int, error) {
	if err := cfg.validate(); err != nil {
		return 0, err
	}
	if len(t.nodes) != 1 {
		return 0, fmt.Errorf("%w: tree already subdivided", ErrInvalidConfig)
	}
	log := fncad.Logger()
	log.Debug("octree subdivide start", "center", t.nodes[Root].Center, "size", t.nodes[Root].Size,
		"minSize", cfg.MinSize, "budget", cfg.Budget)
	s := subdivider{ctx: ctx, tree: t, cfg: cfg}
	n, err := s.subdivide(Root, cfg.Budget)
	if err != nil {
		if errors.Is(err, ErrCellBudgetExhausted) {
			log.Warn("octree cell budget exhausted", "budget", cfg.Budget, "cells", len(t.nodes))
		}
		return 0, err
	}
	log.Debug("octree subdivide done", "cells", n)
	return n, nil
}

type subdivider struct {
	ctx  context.Context
	tree *Tree
	cfg  SubdivideConfig
}

// subdivide processes node id with the given remaining budget and returns
// how much of it was consumed.
func (s *subdivider) subdivide(id NodeID, budget int) (int, error) {
	n := &s.tree.nodes[id]
	if n.State != Boundary {
		return 1, nil
	}
	if n.Size/2 < s.cfg.MinSize {
		return 1, nil
	}
	if budget <= 1 {
		return 0, ErrCellBudgetExhausted
	}
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	start := budget
	budget--
	if err := s.split(id); err != nil {
		return 0, err
	}
	if s.cfg.Progress != nil {
		s.cfg.Progress(len(s.tree.nodes))
	}
	children := s.tree.nodes[id].Children
	for _, c := range children {
		consumed, err := s.subdivide(c, budget)
		if err != nil {
			return 0, err
		}
		budget -= consumed
	}
	return start - budget, nil
}

// split flips node id to BoundarySubdivided and appends its 8 classified
// children to the arena.
func (s *subdivider) split(id NodeID) error {
	t := s.tree
	parent := t.nodes[id]
	half := parent.Size / 2
	var children [8]NodeID
	for i := range children {
		center := r3.Add(parent.Center, r3.Scale(parent.Size/4, d3.OctantSign(i)))
		state, err := Classify(t.field, center, half)
		if err != nil {
			return fmt.Errorf("classifying cell at %v size %g: %w", center, half, err)
		}
		children[i] = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, newNode(center, half, state, id, uint8(i)))
	}
	n := &t.nodes[id]
	n.State = BoundarySubdivided
	n.Children = children
	return nil
}
