package interval

import "gonum.org/v1/gonum/spatial/r3"

// Box is an axis aligned box expressed as one interval per axis.
// It is the argument fields are bounded over.
type Box struct {
	X, Y, Z Interval
}

// CubeBox returns the box of a cube with the given center and edge length.
func CubeBox(center r3.Vec, size float64) Box {
	h := size / 2
	return Box{
		X: Interval{Min: center.X - h, Max: center.X + h},
		Y: Interval{Min: center.Y - h, Max: center.Y + h},
		Z: Interval{Min: center.Z - h, Max: center.Z + h},
	}
}

// FromR3 converts a gonum box to an interval Box. The box must be well formed.
func FromR3(b r3.Box) Box {
	return Box{
		X: Interval{Min: b.Min.X, Max: b.Max.X},
		Y: Interval{Min: b.Min.Y, Max: b.Max.Y},
		Z: Interval{Min: b.Min.Z, Max: b.Max.Z},
	}
}

// R3 returns the box as a gonum r3.Box.
func (b Box) R3() r3.Box {
	return r3.Box{
		Min: r3.Vec{X: b.X.Min, Y: b.Y.Min, Z: b.Z.Min},
		Max: r3.Vec{X: b.X.Max, Y: b.Y.Max, Z: b.Z.Max},
	}
}

// Center returns the center point of the box.
func (b Box) Center() r3.Vec {
	return r3.Vec{X: b.X.Mid(), Y: b.Y.Mid(), Z: b.Z.Mid()}
}

// Contains reports whether p lies within the closed box.
func (b Box) Contains(p r3.Vec) bool {
	return b.X.Contains(p.X) && b.Y.Contains(p.Y) && b.Z.Contains(p.Z)
}

func (b Box) String() string {
	return "{x:" + b.X.String() + " y:" + b.Y.String() + " z:" + b.Z.String() + "}"
}
