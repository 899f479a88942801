package chart

import (
	"fmt"

	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/scene"
	"github.com/derickschaefer/chartline/internal/util"
)

// ─── Style ────────────────────────────────────────────────────────────────────

// XScale selects the horizontal scale of the stacked-bar chart.
type XScale string

const (
	XScaleTime XScale = "time"
	XScaleBand XScale = "band"
)

// Style holds the presentation knobs of a chart. Use DefaultStyle to get
// the defaults for a chart kind and override fields from there.
type Style struct {
	Margins model.Margins `json:"margins"`
	// Nice rounds value domains, and ordinal x domains, outward to round
	// ticks. Temporal x domains always span the data exactly.
	Nice bool `json:"nice"`
	// Color fills scatter symbols that carry no colour of their own.
	Color string `json:"color,omitempty"`
	// Symbol is the default scatter shape: circle or diamond.
	Symbol    model.SymbolKind `json:"symbol,omitempty"`
	ColorUp   string           `json:"palette_up,omitempty"`
	ColorDown string           `json:"palette_down,omitempty"`
	// XScale is only consulted by the stacked-bar chart.
	XScale      XScale  `json:"x_scale,omitempty"`
	BandPadding float64 `json:"band_padding,omitempty"`
	// Fills are the region or layer colours, bottom first.
	Fills     []string `json:"fills,omitempty"`
	AxisColor string   `json:"axis_color,omitempty"`
	GridColor string   `json:"grid_color,omitempty"`
	// TooltipDX and TooltipDY place the tooltip relative to the pointer
	// column and the top of the mount.
	TooltipDX float64 `json:"tooltip_dx"`
	TooltipDY float64 `json:"tooltip_dy"`
}

const gridOpacity = 0.1

// DefaultStyle returns the built-in style of a chart kind.
func DefaultStyle(k scene.Kind) Style {
	st := Style{
		AxisColor: "#000000",
		GridColor: "#000000",
		TooltipDX: 10,
		TooltipDY: 10,
	}
	switch k {
	case scene.KindArea:
		st.Margins = model.Margins{Top: 20, Right: 30, Bottom: 30, Left: 40}
		st.Fills = []string{"#d0f5ec", "#faba82"}
	case scene.KindStackedBar:
		st.Margins = model.Margins{Top: 20, Right: 30, Bottom: 40, Left: 40}
		st.Nice = true
		st.Fills = []string{"#ff6384", "#36a2eb"}
		st.XScale = XScaleTime
		st.BandPadding = 0.1
	case scene.KindScatter:
		st.Margins = model.Margins{Top: 25, Right: 20, Bottom: 35, Left: 40}
		st.Nice = true
		st.Color = "#3B82F6"
		st.Symbol = model.SymbolCircle
	case scene.KindArrowScatter:
		st.Margins = model.Margins{Top: 0, Right: 20, Bottom: 0, Left: 20}
		st.Nice = true
		st.ColorUp = "#059669"
		st.ColorDown = "#F87171"
		st.TooltipDY = 0
	case scene.KindTimeline:
		st.Margins = model.Margins{Top: 0, Right: 40, Bottom: 30, Left: 40}
		st.AxisColor = "#6F8EBD"
	}
	return st
}

// Validate checks colours, the symbol, the x scale and padding, reporting
// every problem at once.
func (st Style) Validate() error {
	var errs util.MultiError
	for _, c := range []struct{ name, value string }{
		{"color", st.Color},
		{"palette_up", st.ColorUp},
		{"palette_down", st.ColorDown},
		{"axis_color", st.AxisColor},
		{"grid_color", st.GridColor},
	} {
		if c.value != "" && !util.ValidColor(c.value) {
			errs.Addf("%s: invalid colour %q", c.name, c.value)
		}
	}
	for i, c := range st.Fills {
		if !util.ValidColor(c) {
			errs.Addf("fills[%d]: invalid colour %q", i, c)
		}
	}
	switch st.Symbol {
	case "", model.SymbolCircle, model.SymbolDiamond:
	default:
		errs.Addf("symbol: %q is not circle or diamond", st.Symbol)
	}
	switch st.XScale {
	case "", XScaleTime, XScaleBand:
	default:
		errs.Addf("x_scale: %q is not time or band", st.XScale)
	}
	if st.BandPadding < 0 || st.BandPadding >= 1 {
		errs.Addf("band_padding: %g outside [0, 1)", st.BandPadding)
	}
	m := st.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		errs.Add(fmt.Errorf("margins: negative inset in %+v", m))
	}
	return errs.Err()
}

// fill returns Fills[i], or def when the style has fewer fills.
func (st Style) fill(i int, def string) string {
	if i < len(st.Fills) && st.Fills[i] != "" {
		return st.Fills[i]
	}
	return def
}
