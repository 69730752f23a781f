package octree

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrCellBudgetExhausted is returned by Subdivide when a boundary cell
	// needs splitting but the remaining budget does not allow it.
	ErrCellBudgetExhausted = errors.New("octree: cell budget exhausted")
	// ErrMissingNeighbor signals an inconsistent tree where a split cell
	// lacks the child a neighbor query descends into.
	ErrMissingNeighbor = errors.New("octree: missing neighbor")
	ErrInvalidConfig   = errors.New("octree: invalid config")
	ErrCorruptEncoding = errors.New("octree: corrupt encoding")
)

// MissingNeighborError carries the cell whose neighbor could not be resolved.
type MissingNeighborError struct {
	Center r3.Vec
	Size   float64
	Dir    Direction
}

func (e *MissingNeighborError) Error() string {
	return fmt.Sprintf("%v: cell at %v of size %g toward %v", ErrMissingNeighbor, e.Center, e.Size, e.Dir)
}

func (e *MissingNeighborError) Is(target error) bool { return target == ErrMissingNeighbor }
