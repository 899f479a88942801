package chart

import (
	"time"

	"github.com/samber/lo"

	"github.com/derickschaefer/chartline/internal/geometry"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/scale"
	"github.com/derickschaefer/chartline/internal/scene"
	"github.com/derickschaefer/chartline/internal/transform"
)

// Tick densities, in pixels per tick.
const (
	stackedTickSpacing  = 40
	timelineTickSpacing = 100
)

// ─── Area ─────────────────────────────────────────────────────────────────────

// RenderArea draws two stacked regions: baseline to open, then open to
// close. The y domain is [0, max(open, close)].
func RenderArea(data []model.TemporalPoint, vp model.Viewport, st Style) Frame[model.TemporalPoint] {
	f := newFrame[model.TemporalPoint](scene.KindArea, vp, st)
	if f.State == StateIdle || len(data) == 0 {
		return f
	}
	x := timeScale(data, st.Margins.InnerX(vp))
	top := max(
		scale.Max(lo.Map(data, func(p model.TemporalPoint, _ int) float64 { return p.Open })),
		scale.Max(lo.Map(data, func(p model.TemporalPoint, _ int) float64 { return p.Close })),
	)
	y := scale.Continuous([2]float64{0, top}, st.Margins.InnerY(vp), st.Nice)

	xs := make([]float64, len(data))
	open := make([]float64, len(data))
	cls := make([]float64, len(data))
	for i, p := range data {
		xs[i], open[i], cls[i] = x.Map(p.Date), y.Map(p.Open), y.Map(p.Close)
	}
	band := geometry.AreaBand(xs, y.Map(0), open, cls)
	f.Scene.Regions = []scene.Region{
		{Name: geometry.KeyOpen, Fill: st.fill(0, "#d0f5ec"), Path: band.Lower},
		{Name: geometry.KeyClose, Fill: st.fill(1, "#faba82"), Path: band.Upper},
	}
	f.setHits(data, xs)
	return f
}

// ─── Stacked bar ──────────────────────────────────────────────────────────────

// RenderStackedBar stacks close on top of open for each point, sorted by
// date. On a time x scale each bar reaches the next point, so the last bar
// has zero width; on a band scale every bar gets the bandwidth.
func RenderStackedBar(data []model.TemporalPoint, vp model.Viewport, st Style) Frame[model.TemporalPoint] {
	f := newFrame[model.TemporalPoint](scene.KindStackedBar, vp, st)
	if f.State == StateIdle {
		return f
	}
	m := st.Margins
	innerX, innerY := m.InnerX(vp), m.InnerY(vp)
	bottom := scene.NewAxis(scene.OrientBottom, vp.Height-m.Bottom, innerX, nil)
	bottom.TickSizeOuter = 0
	bottom.Color = st.AxisColor
	left := scene.NewAxis(scene.OrientLeft, m.Left, innerY, nil)
	left.Color = st.AxisColor
	if len(data) == 0 {
		f.Scene.Axes = []scene.Axis{bottom, left}
		return f
	}

	sorted := transform.SortByDate(data)
	layers := geometry.Stack(sorted)
	y := scale.Continuous([2]float64{0, geometry.Top(layers)}, innerY, st.Nice)

	xs := make([]float64, len(sorted))
	var widthAt func(int) float64
	count := max(1, int((innerX[1]-innerX[0])/stackedTickSpacing))
	if st.XScale == XScaleBand {
		b := scale.NewBand(len(sorted), innerX, st.BandPadding)
		for i := range sorted {
			xs[i] = b.Map(i)
			bottom.Ticks = append(bottom.Ticks, scene.Tick{Pos: b.Center(i), Label: sorted[i].Date.Format("Jan 02")})
		}
		widthAt = geometry.FixedWidth(b.Bandwidth())
	} else {
		x := timeScale(sorted, innerX)
		for i, p := range sorted {
			xs[i] = x.Map(p.Date)
		}
		for _, t := range x.Ticks(count) {
			bottom.Ticks = append(bottom.Ticks, scene.Tick{Pos: x.Map(t), Label: x.TickFormat(t)})
		}
		widthAt = geometry.GapWidths(xs)
	}

	fills := map[string]string{
		geometry.KeyOpen:  st.fill(0, "#ff6384"),
		geometry.KeyClose: st.fill(1, "#36a2eb"),
	}
	for _, b := range geometry.StackedBars(layers, func(i int) float64 { return xs[i] }, widthAt, y.Map) {
		f.Scene.Bars = append(f.Scene.Bars, scene.Rect{Bar: b, Fill: fills[b.Layer]})
	}
	left.Ticks = valueTicks(y)
	f.Scene.Axes = []scene.Axis{bottom, left}
	f.setHits(sorted, xs)
	return f
}

// ─── Scatter ──────────────────────────────────────────────────────────────────

// RenderScatter draws one symbol per point along the baseline, over
// horizontal grid lines at the y ticks.
func RenderScatter(data []model.OrdinalPoint, vp model.Viewport, st Style) Frame[model.OrdinalPoint] {
	f := newFrame[model.OrdinalPoint](scene.KindScatter, vp, st)
	if f.State == StateIdle {
		return f
	}
	x, y := ordinalScales(data, vp, st)
	f.Scene.Grid = horizontalGrid(y, vp, st)
	if len(data) == 0 {
		return f
	}
	f.Scene.Glyphs = geometry.Marks(data, x.Map, y.Map(0), geometry.MarkStyle{
		Color:  st.Color,
		Symbol: st.Symbol,
	})
	f.setHits(data, glyphXs(f.Scene.Glyphs))
	return f
}

// RenderArrowScatter draws an up or down arrow disc per point along the
// baseline, over a grid at both the x and the y ticks.
func RenderArrowScatter(data []model.OrdinalPoint, vp model.Viewport, st Style) Frame[model.OrdinalPoint] {
	f := newFrame[model.OrdinalPoint](scene.KindArrowScatter, vp, st)
	if f.State == StateIdle {
		return f
	}
	m := st.Margins
	x, y := ordinalScales(data, vp, st)
	for _, v := range x.Ticks(scale.DefaultTicks) {
		px := x.Map(v)
		f.Scene.Grid = append(f.Scene.Grid, scene.Line{
			X1: px, Y1: m.Top, X2: px, Y2: vp.Height - m.Bottom,
			Stroke: st.GridColor, Opacity: gridOpacity,
		})
	}
	f.Scene.Grid = append(f.Scene.Grid, horizontalGrid(y, vp, st)...)
	if len(data) == 0 {
		return f
	}
	f.Scene.Glyphs = geometry.Marks(data, x.Map, y.Map(0), geometry.MarkStyle{
		Arrows:    true,
		ColorUp:   st.ColorUp,
		ColorDown: st.ColorDown,
	})
	f.setHits(data, glyphXs(f.Scene.Glyphs))
	return f
}

// ─── Timeline ─────────────────────────────────────────────────────────────────

// RenderTimeline draws a bottom time axis of tick labels only.
func RenderTimeline(data []model.TemporalPoint, vp model.Viewport, st Style) Frame[model.TemporalPoint] {
	f := newFrame[model.TemporalPoint](scene.KindTimeline, vp, st)
	if f.State == StateIdle {
		return f
	}
	m := st.Margins
	innerX := m.InnerX(vp)
	axis := scene.NewAxis(scene.OrientBottom, vp.Height-m.Bottom, innerX, nil)
	axis.TickSizeOuter = 0
	axis.LabelsOnly = true
	axis.Color = st.AxisColor
	if len(data) == 0 {
		f.Scene.Axes = []scene.Axis{axis}
		return f
	}

	x := timeScale(data, innerX)
	for _, t := range x.Ticks(max(1, int(vp.Width/timelineTickSpacing))) {
		axis.Ticks = append(axis.Ticks, scene.Tick{Pos: x.Map(t), Label: x.TickFormat(t)})
	}
	f.Scene.Axes = []scene.Axis{axis}

	xs := make([]float64, len(data))
	for i, p := range data {
		xs[i] = x.Map(p.Date)
	}
	f.setHits(data, xs)
	return f
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func timeScale(data []model.TemporalPoint, rng [2]float64) scale.Time {
	ext, _ := scale.TimeExtent(lo.Map(data, func(p model.TemporalPoint, _ int) time.Time { return p.Date }))
	return scale.NewTime(ext, rng, false)
}

// ordinalScales derives x from the extent of the points' X and y from the
// degenerate domain [0, 0], so that y(0) is the middle of the plot.
func ordinalScales(data []model.OrdinalPoint, vp model.Viewport, st Style) (x, y scale.Linear) {
	ext, _ := scale.Extent(lo.Map(data, func(p model.OrdinalPoint, _ int) float64 { return p.X }))
	x = scale.Continuous(ext, st.Margins.InnerX(vp), st.Nice)
	y = scale.Continuous([2]float64{0, 0}, st.Margins.InnerY(vp), st.Nice)
	return x, y
}

func horizontalGrid(y scale.Linear, vp model.Viewport, st Style) []scene.Line {
	m := st.Margins
	var lines []scene.Line
	for _, v := range y.Ticks(scale.DefaultTicks) {
		py := y.Map(v)
		lines = append(lines, scene.Line{
			X1: m.Left, Y1: py, X2: vp.Width - m.Right, Y2: py,
			Stroke: st.GridColor, Opacity: gridOpacity,
		})
	}
	return lines
}

func valueTicks(y scale.Linear) []scene.Tick {
	format := y.TickFormat(scale.DefaultTicks)
	return lo.Map(y.Ticks(scale.DefaultTicks), func(v float64, _ int) scene.Tick {
		return scene.Tick{Pos: y.Map(v), Label: format(v)}
	})
}

func glyphXs(glyphs []geometry.Glyph) []float64 {
	return lo.Map(glyphs, func(g geometry.Glyph, _ int) float64 { return g.X })
}
