package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	stlHeaderText = "Binary STL file exported from fnCAD"
	stlHeaderSize = 84
	stlFacetSize  = 50
)

var (
	errSTLNormalMismatch = errors.New("stored normal does not match normal calculated from vertices")
	errSTLNotFinite      = errors.New("inf/NaN STL facet component")
	errSTLDegenerate     = errors.New("facet is degenerate")
)

// WriteSTL writes the triangles of m to w in binary STL format with every
// coordinate multiplied by scale. It returns the number of bytes written.
func WriteSTL(w io.Writer, m *Mesh, scale float32) (int, error) {
	if m.IsEmpty() {
		return 0, errors.New("empty mesh")
	}
	nt := int64(m.TriangleCount())
	if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	var buf [stlHeaderSize]byte
	copy(buf[:80], stlHeaderText)
	binary.LittleEndian.PutUint32(buf[80:], uint32(nt))
	n, err := writeFull(w, buf[:])
	if err != nil {
		return n, err
	}
	for i := 0; i < int(nt); i++ {
		tri := m.Triangle(i)
		for j := range tri {
			tri[j] = ms3.Scale(scale, tri[j])
		}
		facet := stlFacet{tri: tri}
		if norm := tri.Normal(); ms3.Norm(norm) > 0 {
			facet.normal = ms3.Unit(norm)
		}
		facet.put(buf[:stlFacetSize])
		ngot, err := writeFull(w, buf[:stlFacetSize])
		n += ngot
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func writeFull(w io.Writer, b []byte) (int, error) {
	n, err := w.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	return n, err
}

// ReadSTL reads a binary STL stream. Each facet is validated: vertices
// and normals must be finite, triangles must not be degenerate and the
// stored normal must agree with the counter-clockwise winding of the
// vertices.
func ReadSTL(r io.Reader) ([]ms3.Triangle, error) {
	var buf [stlHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(buf[80:])
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	// count is untrusted, grow past the initial capacity as facets arrive.
	output := make([]ms3.Triangle, 0, min(count, 1<<16))
	var facet stlFacet
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf[:stlFacetSize]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		facet.get(buf[:stlFacetSize])
		if err := facet.validate(); err != nil {
			return nil, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		output = append(output, facet.tri)
	}
	return output, nil
}

// stlFacet is one 50 byte STL record: normal, three vertices and an unused
// attribute byte count.
type stlFacet struct {
	normal ms3.Vec
	tri    ms3.Triangle
}

func (f *stlFacet) put(b []byte) {
	_ = b[stlFacetSize-1] // early bounds check
	putVec(b, f.normal)
	for i, v := range f.tri {
		putVec(b[12*(i+1):], v)
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (f *stlFacet) get(b []byte) {
	_ = b[stlFacetSize-1] // early bounds check
	f.normal = getVec(b)
	for i := range f.tri {
		f.tri[i] = getVec(b[12*(i+1):])
	}
}

func (f *stlFacet) validate() error {
	const (
		degenerateTol = 1e-12
		normalTol     = 5e-2
	)
	if !finite(f.normal) || !finite(f.tri[0]) || !finite(f.tri[1]) || !finite(f.tri[2]) {
		return errSTLNotFinite
	}
	if f.tri.IsDegenerate(degenerateTol) {
		return errSTLDegenerate
	}
	if !equalWithin(ms3.Unit(f.tri.Normal()), f.normal, normalTol) {
		return errSTLNormalMismatch
	}
	return nil
}

func putVec(b []byte, v ms3.Vec) {
	_ = b[11]
	binary.LittleEndian.PutUint32(b, math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	_ = b[11]
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

// equalWithin reports whether a and b differ by at most tol in every component.
func equalWithin(a, b ms3.Vec, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol &&
		math32.Abs(a.Y-b.Y) <= tol &&
		math32.Abs(a.Z-b.Z) <= tol
}

func finite(v ms3.Vec) bool {
	return !(math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0))
}
