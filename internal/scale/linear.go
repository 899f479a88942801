// Package scale maps data domains onto pixel ranges.
//
// Three scale kinds are provided, all immutable values:
//
//   - Linear: continuous numeric domain, optionally "niced" to round bounds
//   - Time: the same math over UTC millisecond timestamps
//   - Band: one fixed-width slot per ordinal index
//
// A degenerate continuous domain (min == max) never divides by zero: every
// value maps to the midpoint of the range.
package scale

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultTicks is the tick count hint used by Nice and by axes that do not
// ask for a specific density.
const DefaultTicks = 10

// ─── Linear ───────────────────────────────────────────────────────────────────

// Linear is a continuous scale from [d0, d1] onto [r0, r1].
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear builds a linear scale without any rounding of the domain.
func NewLinear(domain, rng [2]float64) Linear {
	return Linear{d0: domain[0], d1: domain[1], r0: rng[0], r1: rng[1]}
}

// Continuous builds a scale over a dataset extent. When nice is set the
// domain is extended outward to round tick boundaries first.
func Continuous(extent, rng [2]float64, nice bool) Linear {
	s := NewLinear(extent, rng)
	if nice {
		s = s.Nice(DefaultTicks)
	}
	return s
}

// Domain returns the (possibly niced) domain bounds.
func (s Linear) Domain() [2]float64 { return [2]float64{s.d0, s.d1} }

// Range returns the pixel range.
func (s Linear) Range() [2]float64 { return [2]float64{s.r0, s.r1} }

// Degenerate reports whether the domain has zero width.
func (s Linear) Degenerate() bool { return s.d0 == s.d1 }

// Map returns the pixel position of v. The endpoints are reproduced
// exactly: Map(d0) == r0 and Map(d1) == r1.
func (s Linear) Map(v float64) float64 {
	if s.Degenerate() {
		return (s.r0 + s.r1) / 2
	}
	t := (v - s.d0) / (s.d1 - s.d0)
	return s.r0*(1-t) + s.r1*t
}

// Invert returns the domain value at pixel px.
func (s Linear) Invert(px float64) float64 {
	if s.r0 == s.r1 {
		return s.d0
	}
	t := (px - s.r0) / (s.r1 - s.r0)
	return s.d0*(1-t) + s.d1*t
}

// Nice extends the domain so both ends fall on multiples of the tick step
// chosen for count ticks. Degenerate and non-finite domains are returned
// unchanged.
func (s Linear) Nice(count int) Linear {
	start, stop := s.d0, s.d1
	if start == stop || !finite(start) || !finite(stop) || count <= 0 {
		return s
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	var prestep float64
refine:
	for iter := 0; iter < 10; iter++ {
		step := tickIncrement(start, stop, float64(count))
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			break refine
		}
		prestep = step
	}

	if reverse {
		start, stop = stop, start
	}
	s.d0, s.d1 = start, stop
	return s
}

// Ticks returns roughly count round values spanning the domain, in
// ascending order. A degenerate domain yields its single value.
func (s Linear) Ticks(count int) []float64 {
	lo, hi := s.d0, s.d1
	if hi < lo {
		lo, hi = hi, lo
	}
	return ticks(lo, hi, float64(count))
}

// TickFormat returns a label formatter with enough decimals for the tick
// step chosen for count ticks.
func (s Linear) TickFormat(count int) func(float64) string {
	lo, hi := s.d0, s.d1
	if hi < lo {
		lo, hi = hi, lo
	}
	step := math.Abs(tickStep(lo, hi, float64(count)))
	return fixedFormatter(step)
}

// ─── Extents ──────────────────────────────────────────────────────────────────

// Extent returns the minimum and maximum of values. ok is false when values
// is empty, in which case the zero extent [0, 0] is returned.
func Extent(values []float64) (ext [2]float64, ok bool) {
	if len(values) == 0 {
		return ext, false
	}
	return [2]float64{floats.Min(values), floats.Max(values)}, true
}

// Max returns the largest of values, or 0 when values is empty.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
