package field

import (
	"math"

	"github.com/soypat/fncad"
	"github.com/soypat/fncad/interval"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ fncad.Field = (*box)(nil)
	_ fncad.Field = (*translate)(nil)
)

// Sphere returns the exact distance field of a sphere of radius r centered
// at the origin: sqrt(x²+y²+z²) - r.
func Sphere(r float64) fncad.Field {
	return Sub(Sqrt(Add(Add(Square(X()), Square(Y())), Square(Z()))), Const(r))
}

// Gyroid returns the implicit gyroid sin(kx)cos(ky) + sin(ky)cos(kz) + sin(kz)cos(kx)
// offset by thickness. Its interval bounds rely on sampled trigonometry.
func Gyroid(k, thickness float64) fncad.Field {
	kx, ky, kz := Mul(Const(k), X()), Mul(Const(k), Y()), Mul(Const(k), Z())
	g := Add(Add(
		Mul(Sin(kx), Cos(ky)),
		Mul(Sin(ky), Cos(kz))),
		Mul(Sin(kz), Cos(kx)))
	return Sub(Abs(g), Const(thickness))
}

// Union returns the union of solids a and b.
func Union(a, b fncad.Field) fncad.Field { return Min(a, b) }

// Intersection returns the intersection of solids a and b.
func Intersection(a, b fncad.Field) fncad.Field { return Max(a, b) }

// Difference returns solid a with solid b removed.
func Difference(a, b fncad.Field) fncad.Field { return Max(a, Neg(b)) }

// Box returns the exact distance field of an axis aligned box with the given
// size centered at the origin. Box classifies cells without interval
// arithmetic when possible.
func Box(size r3.Vec) fncad.Field {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		panic("box size must be positive")
	}
	return &box{half: r3.Scale(0.5, size)}
}

type box struct {
	half r3.Vec
}

func (s *box) Evaluate(p r3.Vec) float64 {
	q := r3.Vec{X: math.Abs(p.X) - s.half.X, Y: math.Abs(p.Y) - s.half.Y, Z: math.Abs(p.Z) - s.half.Z}
	outside := r3.Norm(r3.Vec{X: math.Max(q.X, 0), Y: math.Max(q.Y, 0), Z: math.Max(q.Z, 0)})
	return outside + math.Min(math.Max(q.X, math.Max(q.Y, q.Z)), 0)
}

func (s *box) EvaluateInterval(b interval.Box) (interval.Interval, error) {
	zero := interval.Point(0)
	qx := b.X.Abs().Sub(interval.Point(s.half.X))
	qy := b.Y.Abs().Sub(interval.Point(s.half.Y))
	qz := b.Z.Abs().Sub(interval.Point(s.half.Z))
	outside := qx.MaxOf(zero).Square().Add(qy.MaxOf(zero).Square()).Add(qz.MaxOf(zero).Square()).Sqrt()
	inside := qx.MaxOf(qy).MaxOf(qz).MinOf(zero)
	return outside.Add(inside), nil
}

// EvaluateContent classifies b exactly: inside when b lies strictly within
// the solid, outside when disjoint, face or edge depending on how many
// face planes of the solid cross b.
func (s *box) EvaluateContent(b interval.Box) fncad.Content {
	axes := [3]struct {
		iv   interval.Interval
		half float64
	}{{b.X, s.half.X}, {b.Y, s.half.Y}, {b.Z, s.half.Z}}
	strictlyInside := true
	crossings := 0
	for _, ax := range axes {
		lo, hi := -ax.half, ax.half
		if ax.iv.Max < lo || ax.iv.Min > hi {
			return fncad.ContentOutside
		}
		if ax.iv.Min <= lo || ax.iv.Max >= hi {
			strictlyInside = false
		}
		if ax.iv.Contains(lo) {
			crossings++
		}
		if ax.iv.Contains(hi) {
			crossings++
		}
	}
	switch {
	case strictlyInside:
		return fncad.ContentInside
	case crossings <= 1:
		return fncad.ContentFace
	}
	return fncad.ContentEdge
}

// Translate moves field f by offset.
func Translate(f fncad.Field, offset r3.Vec) fncad.Field {
	return &translate{f: f, offset: offset}
}

type translate struct {
	f      fncad.Field
	offset r3.Vec
}

func (t *translate) Evaluate(p r3.Vec) float64 {
	return t.f.Evaluate(r3.Sub(p, t.offset))
}

func (t *translate) shift(b interval.Box) interval.Box {
	return interval.Box{
		X: b.X.Sub(interval.Point(t.offset.X)),
		Y: b.Y.Sub(interval.Point(t.offset.Y)),
		Z: b.Z.Sub(interval.Point(t.offset.Z)),
	}
}

func (t *translate) EvaluateInterval(b interval.Box) (interval.Interval, error) {
	return t.f.EvaluateInterval(t.shift(b))
}

func (t *translate) EvaluateContent(b interval.Box) fncad.Content {
	return t.f.EvaluateContent(t.shift(b))
}

func sqrt(v float64) float64 { return math.Sqrt(math.Max(0, v)) }
func abs(v float64) float64  { return math.Abs(v) }
func sin(v float64) float64  { return math.Sin(v) }
func cos(v float64) float64  { return math.Cos(v) }
