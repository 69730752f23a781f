package render

import (
	"context"

	"github.com/soypat/fncad"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	maxRelaxPasses = 10
	// gradientStep is the central difference step.
	gradientStep = 1e-4
	// relaxTolerance stops relaxation once no vertex moved farther.
	relaxTolerance = 1e-4
)

// relax moves every vertex toward the zero level set of f along the
// normalized field gradient, stepping by the field value at the vertex.
// Vertices where the gradient vanishes stay in place. passDone is called
// with the 1-based pass number after each pass. relax returns ctx.Err() if
// ctx is cancelled partway, leaving verts partially moved.
func relax(ctx context.Context, f fncad.Field, verts []r3.Vec, passDone func(pass int)) error {
	log := fncad.Logger()
	for pass := 1; pass <= maxRelaxPasses; pass++ {
		var maxMove float64
		for i, v := range verts {
			if i%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			g := gradient(f, v)
			gn := r3.Norm(g)
			if gn == 0 {
				continue
			}
			step := r3.Scale(-f.Evaluate(v)/gn, g)
			verts[i] = r3.Add(v, step)
			maxMove = max(maxMove, r3.Norm(step))
		}
		log.Debug("relaxation pass", "pass", pass, "maxMove", maxMove)
		passDone(pass)
		if maxMove < relaxTolerance {
			break
		}
	}
	return nil
}

// gradient estimates the gradient of f at p with central differences.
func gradient(f fncad.Field, p r3.Vec) r3.Vec {
	const h = gradientStep
	dx := r3.Vec{X: h}
	dy := r3.Vec{Y: h}
	dz := r3.Vec{Z: h}
	return r3.Scale(1/(2*h), r3.Vec{
		X: f.Evaluate(r3.Add(p, dx)) - f.Evaluate(r3.Sub(p, dx)),
		Y: f.Evaluate(r3.Add(p, dy)) - f.Evaluate(r3.Sub(p, dy)),
		Z: f.Evaluate(r3.Add(p, dz)) - f.Evaluate(r3.Sub(p, dz)),
	})
}
