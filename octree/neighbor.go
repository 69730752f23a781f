package octree

import "gonum.org/v1/gonum/spatial/r3"

// Neighbor is the result of a neighbor query. It refers either to a node of
// the tree or, past the root boundary, to a synthesized outside cell that is
// not part of the tree.
type Neighbor struct {
	// ID is the neighbor node or None when synthesized.
	ID     NodeID
	Center r3.Vec
	Size   float64
	State  State
}

// Synthesized reports whether the neighbor lies outside the tree's domain.
func (nb Neighbor) Synthesized() bool { return nb.ID == None }

func (t *Tree) neighborOf(id NodeID) Neighbor {
	n := &t.nodes[id]
	return Neighbor{ID: id, Center: n.Center, Size: n.Size, State: n.State}
}

// Neighbor returns the cell adjacent to id across the face in direction d.
// The result has the same size as id when the tree is split that far and
// is a larger leaf otherwise. Past the domain boundary an Outside cell the
// size of the root is synthesized.
//
// Neighbor only follows parent links and octant bits. If a split cell lacks
// the child the query descends into a *MissingNeighborError is returned.
func (t *Tree) Neighbor(id NodeID, d Direction) (Neighbor, error) {
	n := t.node(id)
	if n.Parent == None {
		return Neighbor{
			ID:     None,
			Center: r3.Add(n.Center, r3.Scale(d.Sign()*n.Size, axisVec(d.Axis()))),
			Size:   n.Size,
			State:  Outside,
		}, nil
	}
	bit := uint8(1) << d.Axis()
	mirrored := n.Octant ^ bit
	onNegativeSide := n.Octant&bit == 0
	if onNegativeSide == d.Positive() {
		// Step stays within the parent.
		sib := t.nodes[n.Parent].Children[mirrored]
		if sib == None {
			return Neighbor{}, t.missing(id, d)
		}
		return t.neighborOf(sib), nil
	}
	pn, err := t.Neighbor(n.Parent, d)
	if err != nil {
		return Neighbor{}, err
	}
	if pn.Synthesized() {
		return pn, nil
	}
	p := &t.nodes[pn.ID]
	if p.IsLeaf() {
		return pn, nil
	}
	c := p.Children[mirrored]
	if c == None {
		return Neighbor{}, t.missing(id, d)
	}
	return t.neighborOf(c), nil
}

func (t *Tree) missing(id NodeID, d Direction) error {
	n := &t.nodes[id]
	return &MissingNeighborError{Center: n.Center, Size: n.Size, Dir: d}
}

func axisVec(axis int) r3.Vec {
	switch axis {
	case 0:
		return r3.Vec{X: 1}
	case 1:
		return r3.Vec{Y: 1}
	}
	return r3.Vec{Z: 1}
}
