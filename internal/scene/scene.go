// Package scene describes everything a render pass draws, in absolute pixel
// coordinates: grid lines, filled regions, bars, glyphs and axes. A Scene
// is a plain value; encoders in internal/render turn it into SVG, PNG or
// JSON without knowing which chart produced it.
package scene

import (
	"fmt"
	"strings"

	"github.com/derickschaefer/chartline/internal/geometry"
	"github.com/derickschaefer/chartline/internal/model"
)

// Kind names the chart that produced a scene.
type Kind string

const (
	KindArea         Kind = "area"
	KindStackedBar   Kind = "stacked"
	KindScatter      Kind = "scatter"
	KindArrowScatter Kind = "arrows"
	KindTimeline     Kind = "timeline"
)

// Kinds lists every chart kind in display order.
var Kinds = []Kind{KindArea, KindStackedBar, KindScatter, KindArrowScatter, KindTimeline}

// ParseKind resolves a chart name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("unknown chart %q (valid: %s)", s, strings.Join(names, ", "))
}

// Temporal reports whether the chart kind plots temporal points.
func (k Kind) Temporal() bool {
	return k == KindArea || k == KindStackedBar || k == KindTimeline
}

// ─── Primitives ───────────────────────────────────────────────────────────────

// Line is a straight stroke, used for grid lines.
type Line struct {
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Stroke  string  `json:"stroke"`
	Opacity float64 `json:"opacity"`
}

// Region is a filled outline.
type Region struct {
	Name string        `json:"name"`
	Fill string        `json:"fill"`
	Path geometry.Path `json:"path"`
}

// Rect is a filled bar.
type Rect struct {
	geometry.Bar
	Fill string `json:"fill"`
}

// ─── Axes ─────────────────────────────────────────────────────────────────────

// Orient is the side an axis is drawn on.
type Orient string

const (
	OrientBottom Orient = "bottom"
	OrientLeft   Orient = "left"
)

// Tick is one labelled axis position.
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Axis is a ruler along one edge of the plot. Offset is the pixel row
// (bottom) or column (left) of the axis line. When LabelsOnly is set the
// domain line and tick marks are not drawn.
type Axis struct {
	Orient        Orient     `json:"orient"`
	Offset        float64    `json:"offset"`
	Range         [2]float64 `json:"range"`
	Ticks         []Tick     `json:"ticks"`
	TickSizeInner float64    `json:"tick_size_inner"`
	TickSizeOuter float64    `json:"tick_size_outer"`
	TickPadding   float64    `json:"tick_padding"`
	LabelsOnly    bool       `json:"labels_only,omitempty"`
	Color         string     `json:"color"`
}

// Default axis metrics, in pixels.
const (
	TickSize    = 6.0
	TickPadding = 3.0
	FontSize    = 10.0
)

// NewAxis returns an axis with the default tick metrics.
func NewAxis(o Orient, offset float64, rng [2]float64, ticks []Tick) Axis {
	return Axis{
		Orient:        o,
		Offset:        offset,
		Range:         rng,
		Ticks:         ticks,
		TickSizeInner: TickSize,
		TickSizeOuter: TickSize,
		TickPadding:   TickPadding,
		Color:         "#000000",
	}
}

// ─── Scene ────────────────────────────────────────────────────────────────────

// Scene is the complete drawing of one render pass.
type Scene struct {
	Kind     Kind             `json:"kind"`
	Viewport model.Viewport   `json:"viewport"`
	Margins  model.Margins    `json:"margins"`
	Grid     []Line           `json:"grid,omitempty"`
	Regions  []Region         `json:"regions,omitempty"`
	Bars     []Rect           `json:"bars,omitempty"`
	Glyphs   []geometry.Glyph `json:"glyphs,omitempty"`
	Axes     []Axis           `json:"axes,omitempty"`
}

// Blank reports whether nothing at all is drawn.
func (s Scene) Blank() bool {
	return len(s.Grid) == 0 && s.Marks() == 0 && len(s.Axes) == 0
}

// Marks counts the data-bearing primitives: regions, bars and glyphs.
func (s Scene) Marks() int {
	n := len(s.Bars) + len(s.Glyphs)
	for _, r := range s.Regions {
		if !r.Path.Empty() {
			n++
		}
	}
	return n
}

// TickCount totals the ticks over every axis.
func (s Scene) TickCount() int {
	n := 0
	for _, a := range s.Axes {
		n += len(a.Ticks)
	}
	return n
}
