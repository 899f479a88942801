// Package chart builds the five chart surfaces: area, stacked bar, scatter,
// arrow scatter and timeline.
//
// Each chart is a pure Render function from (data, viewport, style) to a
// Frame: the scene to draw plus the pixel positions used for hit-testing.
// A Surface wraps one Render function in the Idle / Ready / Empty state
// machine that a host drives with resize, data and pointer events.
package chart

import (
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/nearest"
	"github.com/derickschaefer/chartline/internal/scene"
)

// State is the surface state a frame was built in.
type State int

const (
	// StateIdle means no viewport is known yet; nothing is drawn.
	StateIdle State = iota
	// StateReady means scales and marks are drawn.
	StateReady
	// StateEmpty means the viewport is known but there is no data; only
	// grid and axis furniture are drawn.
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	default:
		return "idle"
	}
}

// Frame is the output of one render pass.
type Frame[P any] struct {
	Scene scene.Scene
	State State
	hits  []hit[P]
}

// hit pairs a point with its pixel column.
type hit[P any] struct {
	p *P
	x float64
}

func hitX[P any](h hit[P]) float64 { return h.x }

// Nearest returns the two points whose pixel columns are closest to px.
func (f Frame[P]) Nearest(px float64) nearest.Result[P] {
	r := nearest.Nearest(f.hits, hitX[P], px)
	var out nearest.Result[P]
	if r.Left != nil {
		out.Left = r.Left.p
	}
	if r.Right != nil {
		out.Right = r.Right.p
	}
	return out
}

// Positions returns the hit-test pixel column of each point, in the order
// the frame laid them out.
func (f Frame[P]) Positions() []float64 {
	out := make([]float64, len(f.hits))
	for i, h := range f.hits {
		out[i] = h.x
	}
	return out
}

// RenderFunc is the signature shared by the Render functions.
type RenderFunc[P any] func(data []P, vp model.Viewport, st Style) Frame[P]

func newFrame[P any](k scene.Kind, vp model.Viewport, st Style) Frame[P] {
	f := Frame[P]{Scene: scene.Scene{Kind: k}}
	if vp.IsZero() {
		f.State = StateIdle
		return f
	}
	f.Scene.Viewport = vp
	f.Scene.Margins = st.Margins
	f.State = StateEmpty
	return f
}

func (f *Frame[P]) setHits(data []P, xs []float64) {
	f.hits = make([]hit[P], len(data))
	for i := range data {
		f.hits[i] = hit[P]{p: &data[i], x: xs[i]}
	}
	f.State = StateReady
}
