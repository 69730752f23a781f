package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers shared by the octree and render packages.

// Elem returns a vector with all components set to v.
func Elem(v float64) r3.Vec {
	return r3.Vec{X: v, Y: v, Z: v}
}

// EqualWithin reports whether a and b are equal component-wise within tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Comp returns the component of a along axis (0=x, 1=y, 2=z).
func Comp(a r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return a.X
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	panic("bad axis")
}

// OctantSign returns the (±1, ±1, ±1) direction of octant i where
// bit 0 selects x, bit 1 selects y and bit 2 selects z. A set bit is positive.
func OctantSign(i int) r3.Vec {
	if i < 0 || i > 7 {
		panic("octant out of range")
	}
	v := Elem(-1)
	if i&1 != 0 {
		v.X = 1
	}
	if i&2 != 0 {
		v.Y = 1
	}
	if i&4 != 0 {
		v.Z = 1
	}
	return v
}
