package octree

import "github.com/soypat/fncad"

// State is the classification of an octree cell against a field.
type State uint8

const (
	// Inside cells lie entirely within the solid.
	Inside State = iota
	// Outside cells lie entirely outside the solid.
	Outside
	// Boundary cells may contain the surface. Boundary leaves produce triangles.
	Boundary
	// BoundarySubdivided marks a boundary cell that has been split into 8 children.
	BoundarySubdivided
)

func (s State) String() string {
	switch s {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Boundary:
		return "boundary"
	case BoundarySubdivided:
		return "boundary-subdivided"
	}
	return "State(?)"
}

func (s State) valid() bool { return s <= BoundarySubdivided }

func stateOfContent(c fncad.Content) (State, bool) {
	switch c {
	case fncad.ContentInside:
		return Inside, true
	case fncad.ContentOutside:
		return Outside, true
	case fncad.ContentFace, fncad.ContentEdge:
		return Boundary, true
	}
	return 0, false
}

// Direction is one of the six axis aligned steps between adjacent cells.
type Direction uint8

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// Directions lists all six directions in face order.
var Directions = [6]Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}

// Axis returns 0, 1 or 2 for the x, y and z axis.
func (d Direction) Axis() int { return int(d) / 2 }

// Positive reports whether d steps toward increasing coordinates.
func (d Direction) Positive() bool { return d%2 == 0 }

// Opposite returns the direction pointing the other way along the same axis.
func (d Direction) Opposite() Direction { return d ^ 1 }

// Sign returns +1 or -1.
func (d Direction) Sign() float64 {
	if d.Positive() {
		return 1
	}
	return -1
}

func (d Direction) String() string {
	if d > NegZ {
		return "Direction(?)"
	}
	return [...]string{"+x", "-x", "+y", "-y", "+z", "-z"}[d]
}
