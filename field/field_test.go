package field_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	sdfx "github.com/deadsy/sdfx/sdf"
	"github.com/soypat/fncad"
	"github.com/soypat/fncad/field"
	"github.com/soypat/fncad/interval"
	"gonum.org/v1/gonum/spatial/r3"
)

type sphereSDF struct{ r float64 }

func (s sphereSDF) Evaluate(p r3.Vec) float64 { return r3.Norm(p) - s.r }
func (s sphereSDF) Bounds() r3.Box {
	return r3.Box{Min: r3.Vec{X: -s.r, Y: -s.r, Z: -s.r}, Max: r3.Vec{X: s.r, Y: s.r, Z: s.r}}
}

func testFields(t *testing.T) map[string]fncad.Field {
	sx, err := sdfx.Sphere3D(1)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]fncad.Field{
		"sphere":     field.Sphere(1),
		"box":        field.Box(r3.Vec{X: 1, Y: 2, Z: 0.5}),
		"translated": field.Translate(field.Sphere(0.5), r3.Vec{X: 0.3, Y: -0.2, Z: 0.1}),
		"union":      field.Union(field.Sphere(0.7), field.Translate(field.Box(r3.Vec{X: 1, Y: 1, Z: 1}), r3.Vec{X: 0.6})),
		"difference": field.Difference(field.Box(r3.Vec{X: 1.5, Y: 1.5, Z: 1.5}), field.Sphere(0.9)),
		"intersect":  field.Intersection(field.Sphere(1), field.Box(r3.Vec{X: 1.5, Y: 1.5, Z: 1.5})),
		"sdf3":       field.FromSDF3(sphereSDF{r: 1}),
		"sdfx":       field.FromSDFX(sx),
	}
}

func randBox(rng *rand.Rand, maxSize float64) interval.Box {
	c := r3.Vec{X: 3*rng.Float64() - 1.5, Y: 3*rng.Float64() - 1.5, Z: 3*rng.Float64() - 1.5}
	return interval.CubeBox(c, maxSize*rng.Float64())
}

func randPoint(rng *rand.Rand, b interval.Box) r3.Vec {
	return r3.Vec{
		X: b.X.Min + rng.Float64()*b.X.Width(),
		Y: b.Y.Min + rng.Float64()*b.Y.Width(),
		Z: b.Z.Min + rng.Float64()*b.Z.Width(),
	}
}

func TestIntervalContainsSamples(t *testing.T) {
	const tol = 1e-9
	rng := rand.New(rand.NewSource(1))
	for name, f := range testFields(t) {
		for i := 0; i < 300; i++ {
			b := randBox(rng, 1)
			iv, err := f.EvaluateInterval(b)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			for j := 0; j < 20; j++ {
				p := randPoint(rng, b)
				v := f.Evaluate(p)
				if v < iv.Min-tol || v > iv.Max+tol {
					t.Fatalf("%s: value %g at %v outside bound %v over %v", name, v, p, iv, b)
				}
			}
		}
	}
}

func TestContentAgreesWithValues(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for name, f := range testFields(t) {
		for i := 0; i < 500; i++ {
			b := randBox(rng, 1.5)
			c := f.EvaluateContent(b)
			if c != fncad.ContentInside && c != fncad.ContentOutside {
				continue
			}
			for j := 0; j < 20; j++ {
				p := randPoint(rng, b)
				v := f.Evaluate(p)
				if c == fncad.ContentInside && v >= 0 || c == fncad.ContentOutside && v <= 0 {
					t.Fatalf("%s: content %v over %v but f(%v)=%g", name, c, b, p, v)
				}
			}
		}
	}
}

func TestBoxContent(t *testing.T) {
	f := field.Box(r3.Vec{X: 2, Y: 2, Z: 2})
	for _, test := range []struct {
		b    interval.Box
		want fncad.Content
	}{
		{interval.CubeBox(r3.Vec{}, 1), fncad.ContentInside},
		{interval.CubeBox(r3.Vec{X: 3}, 1), fncad.ContentOutside},
		{interval.CubeBox(r3.Vec{X: 1}, 1), fncad.ContentFace},
		{interval.CubeBox(r3.Vec{X: 1, Y: 1}, 1), fncad.ContentEdge},
		{interval.CubeBox(r3.Vec{}, 4), fncad.ContentEdge},
	} {
		if got := f.EvaluateContent(test.b); got != test.want {
			t.Errorf("box content over %v: got %v. want %v", test.b, got, test.want)
		}
	}
}

func TestDivisionByZeroPropagates(t *testing.T) {
	f := field.Div(field.X(), field.Y())
	_, err := f.EvaluateInterval(interval.CubeBox(r3.Vec{}, 1))
	if !errors.Is(err, interval.ErrDivisionByZero) {
		t.Fatalf("got %v. want ErrDivisionByZero", err)
	}
	iv, err := f.EvaluateInterval(interval.CubeBox(r3.Vec{X: 1, Y: 2}, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !iv.Contains(0.5) {
		t.Errorf("x/y bound %v should contain 1/2", iv)
	}
}

func TestGyroidBoundApproximate(t *testing.T) {
	// Sampled trigonometry is not strictly conservative, allow for a small slack.
	const slack = 1e-6
	f := field.Gyroid(2, 0.2)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		b := randBox(rng, 0.2)
		iv, err := f.EvaluateInterval(b)
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < 10; j++ {
			p := randPoint(rng, b)
			if v := f.Evaluate(p); v < iv.Min-slack || v > iv.Max+slack {
				t.Fatalf("gyroid value %g outside %v", v, iv)
			}
		}
	}
}

func TestSphereExactDistance(t *testing.T) {
	f := field.Sphere(1)
	for _, p := range []r3.Vec{{X: 2}, {Y: -0.5}, {X: 1, Y: 1, Z: 1}} {
		want := r3.Norm(p) - 1
		if got := f.Evaluate(p); math.Abs(got-want) > 1e-12 {
			t.Errorf("sphere(%v): got %g. want %g", p, got, want)
		}
	}
}
