package geometry

import (
	"math"

	"github.com/derickschaefer/chartline/internal/model"
)

// ─── Stacking ─────────────────────────────────────────────────────────────────

// Layer keys, bottom first.
const (
	KeyOpen  = "open"
	KeyClose = "close"
)

// Segment is one point's slice of a layer, in data units.
type Segment struct {
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// Layer is one stacked series.
type Layer struct {
	Key      string    `json:"key"`
	Segments []Segment `json:"segments"`
}

// Top returns the largest segment top across layers, or 0 when there are
// no segments.
func Top(layers []Layer) float64 {
	top := 0.0
	seen := false
	for _, l := range layers {
		for _, s := range l.Segments {
			if !seen || s.Top > top {
				top, seen = s.Top, true
			}
		}
	}
	return top
}

// Stack accumulates points into an open layer [0, open] and a close layer
// [open, open+close], in that order. points are used in the order given.
func Stack(points []model.TemporalPoint) []Layer {
	open := Layer{Key: KeyOpen, Segments: make([]Segment, len(points))}
	cls := Layer{Key: KeyClose, Segments: make([]Segment, len(points))}
	for i, p := range points {
		open.Segments[i] = Segment{Bottom: 0, Top: p.Open}
		cls.Segments[i] = Segment{Bottom: p.Open, Top: p.Open + p.Close}
	}
	return []Layer{open, cls}
}

// ─── Bars ─────────────────────────────────────────────────────────────────────

// Bar is a stacked-bar rectangle in pixels.
type Bar struct {
	Layer  string  `json:"layer"`
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// StackedBars lays out one rectangle per layer segment. xAt and widthAt
// give the left edge and width of point i; y maps data values to pixel
// rows. Heights are clamped at zero.
func StackedBars(layers []Layer, xAt, widthAt func(i int) float64, y func(float64) float64) []Bar {
	var bars []Bar
	for _, l := range layers {
		for i, s := range l.Segments {
			top := y(s.Top)
			bars = append(bars, Bar{
				Layer:  l.Key,
				Index:  i,
				X:      xAt(i),
				Y:      top,
				Width:  widthAt(i),
				Height: math.Max(0, y(s.Bottom)-top),
			})
		}
	}
	return bars
}

// GapWidths sizes each bar to reach the next point's position. The last
// bar has no next point and gets width 0.
func GapWidths(xs []float64) func(i int) float64 {
	return func(i int) float64 {
		if i < 0 || i+1 >= len(xs) {
			return 0
		}
		return xs[i+1] - xs[i]
	}
}

// FixedWidth sizes every bar to w, typically a band scale's bandwidth.
func FixedWidth(w float64) func(i int) float64 {
	return func(int) float64 { return w }
}
