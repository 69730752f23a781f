package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d axis aligned bounding box.
type Box r3.Box

// CenteredBox creates a Box with a given center and size.
// Negative components of size will be interpreted as zero.
func CenteredBox(center, size r3.Vec) Box {
	size = MaxElem(size, r3.Vec{}) // set negative values to zero.
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Cube returns the box of a cube centered at center with edge length size.
func Cube(center r3.Vec, size float64) Box {
	return CenteredBox(center, Elem(size))
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// Corner returns the corner vertex of the box in octant i. Bit 0 of i
// selects max x, bit 1 max y and bit 2 max z.
func (a Box) Corner(i int) r3.Vec {
	c := a.Min
	if i&1 != 0 {
		c.X = a.Max.X
	}
	if i&2 != 0 {
		c.Y = a.Max.Y
	}
	if i&4 != 0 {
		c.Z = a.Max.Z
	}
	return c
}
