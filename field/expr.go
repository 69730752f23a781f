// Package field provides scalar field evaluators satisfying [fncad.Field].
//
// Fields are built as expression trees over the coordinates X, Y and Z so
// that the same tree can be evaluated at a point and bounded over a box.
package field

import (
	"fmt"

	"github.com/soypat/fncad"
	"github.com/soypat/fncad/interval"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ fncad.Field = coord(0)
	_ fncad.Field = constant(0)
	_ fncad.Field = (*unary)(nil)
	_ fncad.Field = (*binary)(nil)
)

// X returns the field f(p) = p.X.
func X() fncad.Field { return coord(0) }

// Y returns the field f(p) = p.Y.
func Y() fncad.Field { return coord(1) }

// Z returns the field f(p) = p.Z.
func Z() fncad.Field { return coord(2) }

type coord int

func (c coord) Evaluate(p r3.Vec) float64 {
	switch c {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}

func (c coord) EvaluateInterval(b interval.Box) (interval.Interval, error) {
	switch c {
	case 0:
		return b.X, nil
	case 1:
		return b.Y, nil
	}
	return b.Z, nil
}

func (coord) EvaluateContent(interval.Box) fncad.Content { return fncad.ContentUnknown }

func (c coord) String() string { return string("xyz"[c]) }

// Const returns the constant field f(p) = v.
func Const(v float64) fncad.Field { return constant(v) }

type constant float64

func (c constant) Evaluate(r3.Vec) float64 { return float64(c) }

func (c constant) EvaluateInterval(interval.Box) (interval.Interval, error) {
	return interval.Point(float64(c)), nil
}

func (c constant) EvaluateContent(interval.Box) fncad.Content {
	switch {
	case c < 0:
		return fncad.ContentInside
	case c > 0:
		return fncad.ContentOutside
	}
	return fncad.ContentUnknown
}

func (c constant) String() string { return fmt.Sprint(float64(c)) }

type unaryOp uint8

const (
	opNeg unaryOp = iota
	opSqrt
	opSquare
	opAbs
	opSin
	opCos
)

var unaryNames = [...]string{opNeg: "neg", opSqrt: "sqrt", opSquare: "square", opAbs: "abs", opSin: "sin", opCos: "cos"}

type unary struct {
	op unaryOp
	a  fncad.Field
}

// Neg returns -a.
func Neg(a fncad.Field) fncad.Field { return &unary{op: opNeg, a: a} }

// Sqrt returns sqrt(a). Negative values are clamped to zero.
func Sqrt(a fncad.Field) fncad.Field { return &unary{op: opSqrt, a: a} }

// Square returns a*a.
func Square(a fncad.Field) fncad.Field { return &unary{op: opSquare, a: a} }

// Abs returns |a|.
func Abs(a fncad.Field) fncad.Field { return &unary{op: opAbs, a: a} }

// Sin returns sin(a). Its interval bound is sampled, see [interval.Interval.Sin].
func Sin(a fncad.Field) fncad.Field { return &unary{op: opSin, a: a} }

// Cos returns cos(a). Its interval bound is sampled.
func Cos(a fncad.Field) fncad.Field { return &unary{op: opCos, a: a} }

func (u *unary) Evaluate(p r3.Vec) float64 {
	v := u.a.Evaluate(p)
	switch u.op {
	case opNeg:
		return -v
	case opSqrt:
		return sqrt(v)
	case opSquare:
		return v * v
	case opAbs:
		return abs(v)
	case opSin:
		return sin(v)
	case opCos:
		return cos(v)
	}
	panic("bug: unknown unary op")
}

func (u *unary) EvaluateInterval(b interval.Box) (interval.Interval, error) {
	iv, err := u.a.EvaluateInterval(b)
	if err != nil {
		return iv, err
	}
	switch u.op {
	case opNeg:
		return iv.Neg(), nil
	case opSqrt:
		return iv.Sqrt(), nil
	case opSquare:
		return iv.Square(), nil
	case opAbs:
		return iv.Abs(), nil
	case opSin:
		return iv.Sin(), nil
	case opCos:
		return iv.Cos(), nil
	}
	panic("bug: unknown unary op")
}

func (u *unary) EvaluateContent(b interval.Box) fncad.Content {
	if u.op == opNeg {
		switch u.a.EvaluateContent(b) {
		case fncad.ContentInside:
			return fncad.ContentOutside
		case fncad.ContentOutside:
			return fncad.ContentInside
		}
	}
	return fncad.ContentUnknown
}

func (u *unary) String() string { return fmt.Sprintf("%s(%v)", unaryNames[u.op], u.a) }

type binaryOp uint8

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
	opMin
	opMax
)

var binaryNames = [...]string{opAdd: "add", opSub: "sub", opMul: "mul", opDiv: "div", opMin: "min", opMax: "max"}

type binary struct {
	op   binaryOp
	a, b fncad.Field
}

// Add returns a+b.
func Add(a, b fncad.Field) fncad.Field { return &binary{op: opAdd, a: a, b: b} }

// Sub returns a-b.
func Sub(a, b fncad.Field) fncad.Field { return &binary{op: opSub, a: a, b: b} }

// Mul returns a*b.
func Mul(a, b fncad.Field) fncad.Field { return &binary{op: opMul, a: a, b: b} }

// Div returns a/b. Interval evaluation fails with [interval.ErrDivisionByZero]
// over boxes where b may be zero.
func Div(a, b fncad.Field) fncad.Field { return &binary{op: opDiv, a: a, b: b} }

// Min returns min(a, b), the union of two solids.
func Min(a, b fncad.Field) fncad.Field { return &binary{op: opMin, a: a, b: b} }

// Max returns max(a, b), the intersection of two solids.
func Max(a, b fncad.Field) fncad.Field { return &binary{op: opMax, a: a, b: b} }

func (n *binary) Evaluate(p r3.Vec) float64 {
	a, b := n.a.Evaluate(p), n.b.Evaluate(p)
	switch n.op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	case opDiv:
		return a / b
	case opMin:
		return min(a, b)
	case opMax:
		return max(a, b)
	}
	panic("bug: unknown binary op")
}

func (n *binary) EvaluateInterval(bx interval.Box) (interval.Interval, error) {
	a, err := n.a.EvaluateInterval(bx)
	if err != nil {
		return a, err
	}
	b, err := n.b.EvaluateInterval(bx)
	if err != nil {
		return b, err
	}
	switch n.op {
	case opAdd:
		return a.Add(b), nil
	case opSub:
		return a.Sub(b), nil
	case opMul:
		return a.Mul(b), nil
	case opDiv:
		return a.Div(b)
	case opMin:
		return a.MinOf(b), nil
	case opMax:
		return a.MaxOf(b), nil
	}
	panic("bug: unknown binary op")
}

func (n *binary) EvaluateContent(bx interval.Box) fncad.Content {
	switch n.op {
	case opMin:
		return unionContent(n.a.EvaluateContent(bx), n.b.EvaluateContent(bx))
	case opMax:
		return intersectContent(n.a.EvaluateContent(bx), n.b.EvaluateContent(bx))
	}
	return fncad.ContentUnknown
}

func (n *binary) String() string { return fmt.Sprintf("%s(%v, %v)", binaryNames[n.op], n.a, n.b) }

func isSurface(c fncad.Content) bool {
	return c == fncad.ContentFace || c == fncad.ContentEdge
}

// unionContent combines classifications of two solids under min(a, b).
func unionContent(a, b fncad.Content) fncad.Content {
	switch {
	case a == fncad.ContentInside || b == fncad.ContentInside:
		return fncad.ContentInside
	case a == fncad.ContentOutside && b == fncad.ContentOutside:
		return fncad.ContentOutside
	case a == fncad.ContentOutside && isSurface(b):
		return b
	case b == fncad.ContentOutside && isSurface(a):
		return a
	}
	return fncad.ContentUnknown
}

// intersectContent combines classifications of two solids under max(a, b).
func intersectContent(a, b fncad.Content) fncad.Content {
	switch {
	case a == fncad.ContentOutside || b == fncad.ContentOutside:
		return fncad.ContentOutside
	case a == fncad.ContentInside && b == fncad.ContentInside:
		return fncad.ContentInside
	case a == fncad.ContentInside && isSurface(b):
		return b
	case b == fncad.ContentInside && isSurface(a):
		return a
	}
	return fncad.ContentUnknown
}
