package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestOctantSignMatchesCorner(t *testing.T) {
	b := Cube(r3.Vec{X: 1, Y: -2, Z: 3}, 2)
	for i := 0; i < 8; i++ {
		want := r3.Add(b.Center(), OctantSign(i))
		if got := b.Corner(i); !EqualWithin(got, want, 1e-12) {
			t.Errorf("octant %d: got corner %v. want %v", i, got, want)
		}
	}
	if !b.Contains(b.Center()) || b.Contains(r3.Add(b.Max, Elem(1e-9))) {
		t.Errorf("containment of %v is wrong", b)
	}
}

func TestComp(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	for axis, want := range []float64{1, 2, 3} {
		if got := Comp(v, axis); got != want {
			t.Errorf("axis %d: got %g. want %g", axis, got, want)
		}
	}
}
