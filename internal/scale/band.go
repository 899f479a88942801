package scale

import "math"

// ─── Band ─────────────────────────────────────────────────────────────────────

// maxPadding keeps bandwidth strictly positive.
var maxPadding = math.Nextafter(1, 0)

// Band splits a pixel range into n equal slots. Each slot is inset by the
// padding fraction of a step on both sides, and the outer padding matches
// the inner padding, so the slots are centred in the range.
type Band struct {
	n         int
	r0, r1    float64
	padding   float64
	start     float64
	step      float64
	bandwidth float64
	reverse   bool
}

// NewBand builds a band scale with n slots over rng. padding is
// clamped to [0, 1).
func NewBand(n int, rng [2]float64, padding float64) Band {
	if n < 0 {
		n = 0
	}
	padding = math.Min(math.Max(padding, 0), maxPadding)

	start, stop := rng[0], rng[1]
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	fn := float64(n)
	step := (stop - start) / math.Max(1, fn-padding+padding*2)
	start += (stop - start - step*(fn-padding)) * 0.5

	return Band{
		n:         n,
		r0:        rng[0],
		r1:        rng[1],
		padding:   padding,
		start:     start,
		step:      step,
		bandwidth: step * (1 - padding),
		reverse:   reverse,
	}
}

// Len returns the slot count.
func (b Band) Len() int { return b.n }

// Range returns the pixel range.
func (b Band) Range() [2]float64 { return [2]float64{b.r0, b.r1} }

// Step returns the distance between the starts of adjacent slots.
func (b Band) Step() float64 { return b.step }

// Bandwidth returns the width shared by every slot.
func (b Band) Bandwidth() float64 { return b.bandwidth }

// Lookup returns the start of slot i. ok is false when i is outside [0, n).
func (b Band) Lookup(i int) (float64, bool) {
	if i < 0 || i >= b.n {
		return b.start, false
	}
	if b.reverse {
		i = b.n - 1 - i
	}
	return b.start + b.step*float64(i), true
}

// Map returns the start of slot i, clamping out-of-range indexes to the
// nearest slot.
func (b Band) Map(i int) float64 {
	if b.n == 0 {
		return b.start
	}
	if i < 0 {
		i = 0
	}
	if i >= b.n {
		i = b.n - 1
	}
	px, _ := b.Lookup(i)
	return px
}

// Center returns the midpoint of slot i.
func (b Band) Center(i int) float64 {
	return b.Map(i) + b.bandwidth/2
}
