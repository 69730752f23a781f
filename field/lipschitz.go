package field

import (
	"math"

	sdfx "github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/fncad"
	"github.com/soypat/fncad/interval"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is a signed distance function over gonum vectors with a bounding box
// that contains the whole solid.
type SDF3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() r3.Box
}

// FromSDF3 adapts a signed distance function to a Field. Since a distance
// function changes at most as fast as the distance travelled, the field over
// a box is bounded by its value at the center plus or minus the half
// diagonal of the box.
func FromSDF3(s SDF3) fncad.Field {
	return &lipschitz{eval: s.Evaluate, bounds: s.Bounds(), k: 1}
}

// FromSDFX adapts a github.com/deadsy/sdfx solid to a Field. See FromSDF3
// for how interval bounds are obtained.
func FromSDFX(s sdfx.SDF3) fncad.Field {
	bb := s.BoundingBox()
	return &lipschitz{
		eval: func(p r3.Vec) float64 {
			return s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
		},
		bounds: r3.Box{
			Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
			Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
		},
		k: 1,
	}
}

type lipschitz struct {
	eval   func(r3.Vec) float64
	bounds r3.Box
	// k is the Lipschitz constant of eval.
	k float64
}

func (l *lipschitz) Evaluate(p r3.Vec) float64 { return l.eval(p) }

func (l *lipschitz) EvaluateInterval(b interval.Box) (interval.Interval, error) {
	d := l.eval(b.Center())
	hdiag := 0.5 * math.Sqrt(b.X.Width()*b.X.Width()+b.Y.Width()*b.Y.Width()+b.Z.Width()*b.Z.Width())
	return interval.New(d-l.k*hdiag, d+l.k*hdiag)
}

// EvaluateContent reports boxes disjoint from the bounding box as outside.
func (l *lipschitz) EvaluateContent(b interval.Box) fncad.Content {
	bb := l.bounds
	if b.X.Max < bb.Min.X || b.X.Min > bb.Max.X ||
		b.Y.Max < bb.Min.Y || b.Y.Min > bb.Max.Y ||
		b.Z.Max < bb.Min.Z || b.Z.Min > bb.Max.Z {
		return fncad.ContentOutside
	}
	return fncad.ContentUnknown
}
