package geometry

// ─── Area band ────────────────────────────────────────────────────────────────

// Band is the pair of filled regions drawn by the area chart. Lower spans
// the baseline up to the open values, Upper spans open up to close.
type Band struct {
	Lower Path `json:"lower"`
	Upper Path `json:"upper"`
}

// AreaBand builds the two region outlines from pixel coordinates. xs, open
// and close are parallel; baseline is the pixel row of the value 0. Fewer
// than two points yields empty paths. Close rows above or below open rows
// are kept as given, so the upper region may cross the lower one.
func AreaBand(xs []float64, baseline float64, open, close []float64) Band {
	n := min(len(xs), len(open), len(close))
	if n < 2 {
		return Band{}
	}
	bottom := make([]float64, n)
	for i := range bottom {
		bottom[i] = baseline
	}
	return Band{
		Lower: area(xs[:n], open[:n], bottom),
		Upper: area(xs[:n], close[:n], open[:n]),
	}
}

// area traces top left to right, then bottom right to left, and closes.
func area(xs, top, bottom []float64) Path {
	var p Path
	p.Cmds = make([]Cmd, 0, 2*len(xs)+1)
	for i, x := range xs {
		if i == 0 {
			p.MoveTo(x, top[i])
			continue
		}
		p.LineTo(x, top[i])
	}
	for i := len(xs) - 1; i >= 0; i-- {
		p.LineTo(xs[i], bottom[i])
	}
	p.Close()
	return p
}
