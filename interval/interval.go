// Package interval implements closed real intervals with conservative
// arithmetic. It is used to bound a scalar field over an axis aligned box.
package interval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrInvalidInterval is returned when constructing an interval with min > max.
	ErrInvalidInterval = errors.New("interval: invalid interval")
	// ErrDivisionByZero is returned by Div when the divisor interval contains zero.
	ErrDivisionByZero = errors.New("interval: division by interval containing zero")
)

// trigSamples is the number of steps used to bound Sin and Cos.
const trigSamples = 100

// Interval is the closed range [Min, Max] on the real number line.
// The zero value is the degenerate interval [0, 0].
type Interval struct {
	Min, Max float64
}

// New returns the interval [min, max]. It fails with ErrInvalidInterval
// if min > max or either bound is NaN.
func New(min, max float64) (Interval, error) {
	if min > max || math.IsNaN(min) || math.IsNaN(max) {
		return Interval{}, fmt.Errorf("%w: min (%g) must be <= max (%g)", ErrInvalidInterval, min, max)
	}
	return Interval{Min: min, Max: max}, nil
}

// MustNew is like New but panics on error. Intended for literals.
func MustNew(min, max float64) Interval {
	iv, err := New(min, max)
	if err != nil {
		panic(err)
	}
	return iv
}

// Point returns the degenerate interval [v, v].
func Point(v float64) Interval {
	return Interval{Min: v, Max: v}
}

// Bound returns the smallest interval containing all values.
func Bound(values ...float64) (Interval, error) {
	if len(values) == 0 {
		return Interval{}, errors.New("interval: cannot bound empty set")
	}
	return boundOf(values...), nil
}

func boundOf(values ...float64) Interval {
	iv := Interval{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		iv.Min = math.Min(iv.Min, v)
		iv.Max = math.Max(iv.Max, v)
	}
	return iv
}

// Contains reports whether v lies within the closed interval.
func (a Interval) Contains(v float64) bool {
	return v >= a.Min && v <= a.Max
}

// Intersects reports whether a and b share at least one point.
func (a Interval) Intersects(b Interval) bool {
	return a.Max >= b.Min && b.Max >= a.Min
}

// Width returns Max-Min.
func (a Interval) Width() float64 { return a.Max - a.Min }

// Mid returns the midpoint of the interval.
func (a Interval) Mid() float64 { return a.Min + 0.5*(a.Max-a.Min) }

// Add returns a+b.
func (a Interval) Add(b Interval) Interval {
	return Interval{Min: a.Min + b.Min, Max: a.Max + b.Max}
}

// Sub returns a-b.
func (a Interval) Sub(b Interval) Interval {
	return Interval{Min: a.Min - b.Max, Max: a.Max - b.Min}
}

// Mul returns a*b. The bounds are the extremes of the four bound products
// since the sign of either operand is not known in advance.
func (a Interval) Mul(b Interval) Interval {
	return boundOf(a.Min*b.Min, a.Min*b.Max, a.Max*b.Min, a.Max*b.Max)
}

// Div returns a/b. It fails with ErrDivisionByZero if b contains zero.
func (a Interval) Div(b Interval) (Interval, error) {
	if b.Contains(0) {
		return Interval{}, fmt.Errorf("%w: divisor %s", ErrDivisionByZero, b)
	}
	return boundOf(a.Min/b.Min, a.Min/b.Max, a.Max/b.Min, a.Max/b.Max), nil
}

// Neg returns -a.
func (a Interval) Neg() Interval {
	return Interval{Min: -a.Max, Max: -a.Min}
}

// Sqrt returns the square root of a. Negative bounds are clamped to zero,
// which suits distance fields but is not a general purpose definition.
func (a Interval) Sqrt() Interval {
	return Interval{
		Min: math.Sqrt(math.Max(0, a.Min)),
		Max: math.Sqrt(math.Max(0, a.Max)),
	}
}

// Square returns a*a. Unlike a.Mul(a) the result never goes negative.
func (a Interval) Square() Interval {
	lo, hi := a.Min*a.Min, a.Max*a.Max
	if a.Contains(0) {
		return Interval{Min: 0, Max: math.Max(lo, hi)}
	}
	return Interval{Min: math.Min(lo, hi), Max: math.Max(lo, hi)}
}

// Abs returns |a|.
func (a Interval) Abs() Interval {
	switch {
	case a.Min >= 0:
		return a
	case a.Max <= 0:
		return a.Neg()
	}
	return Interval{Min: 0, Max: math.Max(-a.Min, a.Max)}
}

// MinOf returns the range of min(x, y) for x in a and y in b.
func (a Interval) MinOf(b Interval) Interval {
	return Interval{Min: math.Min(a.Min, b.Min), Max: math.Min(a.Max, b.Max)}
}

// MaxOf returns the range of max(x, y) for x in a and y in b.
func (a Interval) MaxOf(b Interval) Interval {
	return Interval{Min: math.Max(a.Min, b.Min), Max: math.Max(a.Max, b.Max)}
}

// Sin bounds sin over a by dense sampling. The result is an approximation:
// extrema falling between samples are missed, so wide intervals may be
// under-estimated.
func (a Interval) Sin() Interval { return a.sample(math.Sin) }

// Cos bounds cos over a by dense sampling. See Sin for caveats.
func (a Interval) Cos() Interval { return a.sample(math.Cos) }

func (a Interval) sample(f func(float64) float64) Interval {
	step := (a.Max - a.Min) / trigSamples
	iv := Interval{Min: math.Inf(1), Max: math.Inf(-1)}
	for i := 0; i <= trigSamples; i++ {
		v := f(a.Min + float64(i)*step)
		iv.Min = math.Min(iv.Min, v)
		iv.Max = math.Max(iv.Max, v)
	}
	return iv
}

func (a Interval) String() string {
	return "[" + strconv.FormatFloat(a.Min, 'g', -1, 64) + ", " + strconv.FormatFloat(a.Max, 'g', -1, 64) + "]"
}
