// Package octree partitions space into cubic cells classified against an
// implicit field. Boundary cells are split recursively down to a minimum
// size under a hard cell budget, and any cell can locate its adjacent cell
// in each axis direction using only parent links and octant indices.
package octree

import (
	"fmt"

	"github.com/soypat/fncad"
	"github.com/soypat/fncad/internal/d3"
	"github.com/soypat/fncad/interval"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeID indexes a node in a Tree's arena.
type NodeID int32

const (
	// None is the absent node id.
	None NodeID = -1
	// Root is the id of the root node of every Tree.
	Root NodeID = 0
)

// Node is a cubic cell of the octree. A node has either no children or all
// eight, stored in octant order.
type Node struct {
	Center   r3.Vec
	Size     float64
	State    State
	Parent   NodeID
	Octant   uint8
	Children [8]NodeID
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return n.Children[0] == None }

// Box returns the axis aligned extent of the cell.
func (n *Node) Box() r3.Box {
	return r3.Box(d3.Cube(n.Center, n.Size))
}

// Corner returns the corner of the cell in octant i. Set bits select the
// positive side of the corresponding axis.
func (n *Node) Corner(i int) r3.Vec {
	return d3.Cube(n.Center, n.Size).Corner(i)
}

// Tree is an arena backed octree bound to a field. Nodes refer to each
// other by NodeID so the whole tree is released together.
type Tree struct {
	field fncad.Field
	nodes []Node
}

// New creates a tree with a single root cell centered at center with edge
// length size, classified against f.
func New(f fncad.Field, center r3.Vec, size float64) (*Tree, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil field", ErrInvalidConfig)
	}
	if !(size > 0) {
		return nil, fmt.Errorf("%w: root size must be positive, got %g", ErrInvalidConfig, size)
	}
	t := &Tree{field: f}
	state, err := Classify(f, center, size)
	if err != nil {
		return nil, fmt.Errorf("classifying root: %w", err)
	}
	t.nodes = append(t.nodes, newNode(center, size, state, None, 0))
	return t, nil
}

func newNode(center r3.Vec, size float64, state State, parent NodeID, octant uint8) Node {
	n := Node{Center: center, Size: size, State: state, Parent: parent, Octant: octant}
	for i := range n.Children {
		n.Children[i] = None
	}
	return n
}

// Classify resolves the state of the cube centered at center with edge
// length size. Content classification takes precedence and interval
// evaluation is the fallback.
func Classify(f fncad.Field, center r3.Vec, size float64) (State, error) {
	box := interval.CubeBox(center, size)
	if s, ok := stateOfContent(f.EvaluateContent(box)); ok {
		return s, nil
	}
	iv, err := f.EvaluateInterval(box)
	if err != nil {
		return 0, err
	}
	switch {
	case iv.Max < 0:
		return Inside, nil
	case iv.Min > 0:
		return Outside, nil
	}
	return Boundary, nil
}

// Field returns the field the tree was built against.
func (t *Tree) Field() fncad.Field { return t.field }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given id. It panics if id is out of range.
func (t *Tree) Node(id NodeID) Node {
	return *t.node(id)
}

func (t *Tree) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("bug: node id %d out of range [0,%d)", id, len(t.nodes)))
	}
	return &t.nodes[id]
}

// Walk calls fn for every node in depth first order, visiting children in
// octant order. Walk stops early if fn returns false.
func (t *Tree) Walk(fn func(id NodeID, n *Node) bool) {
	t.walk(Root, fn)
}

func (t *Tree) walk(id NodeID, fn func(NodeID, *Node) bool) bool {
	n := &t.nodes[id]
	if !fn(id, n) {
		return false
	}
	if n.IsLeaf() {
		return true
	}
	for _, c := range n.Children {
		if !t.walk(c, fn) {
			return false
		}
	}
	return true
}

// Stats summarizes the cells of a tree.
type Stats struct {
	Cells              int
	Leaves             int
	Inside             int
	Outside            int
	Boundary           int
	BoundarySubdivided int
	// Depth is the number of levels below the root.
	Depth       int
	MinLeafSize float64
	MaxLeafSize float64
}

func (s Stats) String() string {
	return fmt.Sprintf("cells=%d leaves=%d inside=%d outside=%d boundary=%d depth=%d leaf size=[%g,%g]",
		s.Cells, s.Leaves, s.Inside, s.Outside, s.Boundary, s.Depth, s.MinLeafSize, s.MaxLeafSize)
}

// Stats counts cells per state and measures leaf sizes.
func (t *Tree) Stats() Stats {
	rootSize := t.nodes[Root].Size
	st := Stats{Cells: len(t.nodes), MinLeafSize: rootSize, MaxLeafSize: 0}
	t.Walk(func(_ NodeID, n *Node) bool {
		switch n.State {
		case Inside:
			st.Inside++
		case Outside:
			st.Outside++
		case Boundary:
			st.Boundary++
		case BoundarySubdivided:
			st.BoundarySubdivided++
		}
		if n.IsLeaf() {
			st.Leaves++
			st.MinLeafSize = min(st.MinLeafSize, n.Size)
			st.MaxLeafSize = max(st.MaxLeafSize, n.Size)
			depth := 0
			for sz := n.Size; sz < rootSize; sz *= 2 {
				depth++
			}
			st.Depth = max(st.Depth, depth)
		}
		return true
	})
	return st
}
