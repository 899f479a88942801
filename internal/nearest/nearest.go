// Package nearest finds the two points closest to a pointer position along
// the horizontal axis. It runs on every pointer move, so it makes a single
// pass and allocates nothing beyond the result.
package nearest

import "math"

// Result holds the closest point (Left) and the runner-up (Right). Both
// point into the searched slice. Both are nil only for an empty dataset.
type Result[P any] struct {
	Left  *P
	Right *P
}

// Found reports whether any point was found.
func (r Result[P]) Found() bool { return r.Left != nil || r.Right != nil }

// Nearest scans data once, comparing |x(p) - pointerPx|. A point strictly
// closer than Left demotes Left to Right and takes its place; otherwise a
// point strictly closer than Right takes Right. Ties keep the earlier point.
func Nearest[P any](data []P, x func(P) float64, pointerPx float64) Result[P] {
	var r Result[P]
	var dl, dr float64
	for i := range data {
		d := math.Abs(x(data[i]) - pointerPx)
		switch {
		case r.Left == nil || d < dl:
			r.Right, dr = r.Left, dl
			r.Left, dl = &data[i], d
		case r.Right == nil || d < dr:
			r.Right, dr = &data[i], d
		}
	}
	return r
}
