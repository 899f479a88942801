// Package model defines the canonical data types used throughout chartline.
// Points, viewports and tooltip state are plain values: the engine never
// mutates a dataset it is handed and never retains a viewport beyond the
// render pass that consumed it.
package model

import (
	"time"
)

// ─── Data Points ──────────────────────────────────────────────────────────────

// TemporalPoint is a time-indexed sample with two non-negative magnitudes.
// Used by the area, stacked-bar and timeline charts.
type TemporalPoint struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	Close float64   `json:"close"`
}

// Direction selects the arrow glyph of an ordinal point.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// SymbolKind names a glyph shape.
type SymbolKind string

const (
	SymbolCircle  SymbolKind = "circle"
	SymbolDiamond SymbolKind = "diamond"
	SymbolArrow   SymbolKind = "arrow"
)

// OrdinalPoint is a marker positioned by a dimensionless offset X.
// Color and Symbol are per-point overrides; empty means "use the chart
// default". Arrow is only consulted by the arrow-scatter chart.
type OrdinalPoint struct {
	X      float64    `json:"x"`
	Color  string     `json:"color,omitempty"`
	Arrow  Direction  `json:"arrow,omitempty"`
	Symbol SymbolKind `json:"symbol,omitempty"`
}

// ─── Layout ───────────────────────────────────────────────────────────────────

// Viewport is the size of the hosting mount in device-independent pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the viewport has no measurable area.
func (v Viewport) IsZero() bool {
	return v.Width <= 0 && v.Height <= 0
}

// Margins are pixel insets reserved for axes.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// InnerX returns the horizontal pixel range left after margins.
func (m Margins) InnerX(vp Viewport) [2]float64 {
	return [2]float64{m.Left, vp.Width - m.Right}
}

// InnerY returns the vertical pixel range left after margins, bottom first
// so that larger values land higher on screen.
func (m Margins) InnerY(vp Viewport) [2]float64 {
	return [2]float64{vp.Height - m.Bottom, m.Top}
}

// ─── Tooltip ──────────────────────────────────────────────────────────────────

// TooltipState is the overlay a host draws next to the pointer. Left is the
// closest point to the pointer, Right the runner-up.
type TooltipState[P any] struct {
	Visible bool    `json:"visible"`
	AnchorX float64 `json:"anchor_x"`
	AnchorY float64 `json:"anchor_y"`
	Left    *P      `json:"left"`
	Right   *P      `json:"right"`
}

// Hidden returns the reset tooltip.
func Hidden[P any]() TooltipState[P] {
	return TooltipState[P]{}
}

// ─── Dataset kinds ────────────────────────────────────────────────────────────

// Kind identifies which point type a stored or streamed dataset carries.
type Kind string

const (
	KindTemporal Kind = "temporal"
	KindOrdinal  Kind = "ordinal"
)

// Dataset bundles a named dataset of either kind for storage and transport.
// Exactly one of Temporal or Ordinal is populated, according to Kind.
type Dataset struct {
	Name     string          `json:"name"`
	Kind     Kind            `json:"kind"`
	Temporal []TemporalPoint `json:"temporal,omitempty"`
	Ordinal  []OrdinalPoint  `json:"ordinal,omitempty"`
}

// Len returns the number of points in the populated series.
func (d Dataset) Len() int {
	if d.Kind == KindOrdinal {
		return len(d.Ordinal)
	}
	return len(d.Temporal)
}
