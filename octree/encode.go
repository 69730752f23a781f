package octree

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/soypat/fncad"
	"github.com/soypat/fncad/internal/d3"
	"github.com/tinylib/msgp/msgp"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	encodingVersion = "fncad-octree/1"
	maxDecodeDepth  = 64
)

// MarshalBinary encodes the tree as a msgpack array holding a version
// string, the root center and size, and the snappy compressed node states
// in depth first order. Child geometry and octants follow from the order
// and are not stored.
func (t *Tree) MarshalBinary() ([]byte, error) {
	states := make([]byte, 0, len(t.nodes))
	t.Walk(func(_ NodeID, n *Node) bool {
		states = append(states, byte(n.State))
		return true
	})
	root := &t.nodes[Root]
	b := make([]byte, 0, 64+len(states)/4)
	b = msgp.AppendArrayHeader(b, 6)
	b = msgp.AppendString(b, encodingVersion)
	b = msgp.AppendFloat64(b, root.Center.X)
	b = msgp.AppendFloat64(b, root.Center.Y)
	b = msgp.AppendFloat64(b, root.Center.Z)
	b = msgp.AppendFloat64(b, root.Size)
	b = msgp.AppendBytes(b, snappy.Encode(nil, states))
	return b, nil
}

// Decode rebuilds a tree encoded with MarshalBinary and binds it to f.
// Node states are taken from the encoding, f is not evaluated.
func Decode(b []byte, f fncad.Field) (*Tree, error) {
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEncoding, err)
	}
	if sz != 6 {
		return nil, fmt.Errorf("%w: want 6 fields, got %d", ErrCorruptEncoding, sz)
	}
	version, b, err := msgp.ReadStringBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEncoding, err)
	}
	if version != encodingVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrCorruptEncoding, version)
	}
	var geom [4]float64
	for i := range geom {
		geom[i], b, err = msgp.ReadFloat64Bytes(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptEncoding, err)
		}
	}
	compressed, b, err := msgp.ReadBytesZC(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEncoding, err)
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptEncoding, len(b))
	}
	states, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEncoding, err)
	}
	size := geom[3]
	if !(size > 0) {
		return nil, fmt.Errorf("%w: root size %g", ErrCorruptEncoding, size)
	}
	d := decoder{
		t:      &Tree{field: f, nodes: make([]Node, 0, len(states))},
		states: states,
	}
	center := r3.Vec{X: geom[0], Y: geom[1], Z: geom[2]}
	if err := d.decode(center, size, None, 0, 0); err != nil {
		return nil, err
	}
	if d.pos != len(states) {
		return nil, fmt.Errorf("%w: %d unused node states", ErrCorruptEncoding, len(states)-d.pos)
	}
	return d.t, nil
}

type decoder struct {
	t      *Tree
	states []byte
	pos    int
}

func (d *decoder) decode(center r3.Vec, size float64, parent NodeID, octant uint8, depth int) error {
	if depth > maxDecodeDepth {
		return fmt.Errorf("%w: tree deeper than %d levels", ErrCorruptEncoding, maxDecodeDepth)
	}
	if d.pos >= len(d.states) {
		return fmt.Errorf("%w: truncated node states", ErrCorruptEncoding)
	}
	state := State(d.states[d.pos])
	d.pos++
	if !state.valid() {
		return fmt.Errorf("%w: invalid state %d", ErrCorruptEncoding, state)
	}
	id := NodeID(len(d.t.nodes))
	d.t.nodes = append(d.t.nodes, newNode(center, size, state, parent, octant))
	if parent != None {
		d.t.nodes[parent].Children[octant] = id
	}
	if state != BoundarySubdivided {
		return nil
	}
	half := size / 2
	for i := 0; i < 8; i++ {
		childCenter := r3.Add(center, r3.Scale(size/4, d3.OctantSign(i)))
		if err := d.decode(childCenter, half, id, uint8(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}
