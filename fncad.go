// Package fncad converts implicit surfaces into triangle meshes.
//
// A scalar field, negative inside the modeled solid and positive outside,
// is bounded over axis aligned boxes with interval arithmetic. The octree
// package uses those bounds to partition space into inside, outside and
// boundary cells and the render package turns the boundary cells into a
// closed manifold mesh.
package fncad

import (
	"github.com/soypat/fncad/interval"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a scalar function of 3D position. Implementations are
// typically compiled from a user expression.
type Field interface {
	// Evaluate returns the field value at p. It is negative inside the
	// solid, positive outside and zero on the surface.
	Evaluate(p r3.Vec) float64
	// EvaluateInterval returns a conservative bound of the field over b.
	EvaluateInterval(b interval.Box) (interval.Interval, error)
	// EvaluateContent returns a classification of b that may avoid interval
	// evaluation. ContentUnknown means the caller should fall back to
	// EvaluateInterval.
	EvaluateContent(b interval.Box) Content
}

// Content is a coarse classification of a box against a field.
type Content uint8

const (
	// ContentUnknown means no classification is available.
	ContentUnknown Content = iota
	// ContentInside means the box lies entirely within the solid.
	ContentInside
	// ContentOutside means the box lies entirely outside the solid.
	ContentOutside
	// ContentFace means the box is crossed by a single face of the surface.
	ContentFace
	// ContentEdge means the box is crossed by two or more faces of the surface.
	ContentEdge
)

func (c Content) String() string {
	switch c {
	case ContentUnknown:
		return "unknown"
	case ContentInside:
		return "inside"
	case ContentOutside:
		return "outside"
	case ContentFace:
		return "face"
	case ContentEdge:
		return "edge"
	}
	return "Content(?)"
}
