package geometry_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/chartline/internal/geometry"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/scale"
)

// ─── Path ─────────────────────────────────────────────────────────────────────

func TestPathString(t *testing.T) {
	var p geometry.Path
	assert.True(t, p.Empty())
	assert.Equal(t, "", p.String())

	p.MoveTo(40, 80)
	p.LineTo(60.5, 20)
	p.LineTo(-0.0, 3)
	p.Close()
	assert.Equal(t, "M40,80L60.5,20L0,3Z", p.String())
	assert.Equal(t, []geometry.Point{{X: 40, Y: 80}, {X: 60.5, Y: 20}, {X: 0, Y: 3}}, p.Points())
}

func TestPathTranslate(t *testing.T) {
	moved := geometry.ArrowPath(model.DirectionDown).Translate(100, 50)
	assert.Equal(t, "M100,55L104,50L102,50L102,45L98,45L98,50L96,50Z", moved.String())
}

// ─── Area ─────────────────────────────────────────────────────────────────────

func TestAreaBandTwoPoints(t *testing.T) {
	// Points {x:0, open:1, close:2} and {x:1, open:3, close:1}.
	x := scale.NewLinear([2]float64{0, 1}, [2]float64{40, 470})
	y := scale.Continuous([2]float64{0, 3}, [2]float64{270, 20}, false)

	xs := []float64{x.Map(0), x.Map(1)}
	open := []float64{y.Map(1), y.Map(3)}
	cls := []float64{y.Map(2), y.Map(1)}
	band := geometry.AreaBand(xs, y.Map(0), open, cls)

	lower := band.Lower.Points()
	require.Len(t, lower, 4)
	assert.Equal(t, geometry.Point{X: x.Map(0), Y: y.Map(1)}, lower[0])
	assert.Equal(t, geometry.Point{X: x.Map(1), Y: y.Map(3)}, lower[1])
	assert.Equal(t, geometry.Point{X: x.Map(1), Y: y.Map(0)}, lower[2])
	assert.Equal(t, geometry.Point{X: x.Map(0), Y: y.Map(0)}, lower[3])

	upper := band.Upper.Points()
	require.Len(t, upper, 4)
	// The close value at x=1 sits below open; it is drawn as given.
	assert.Equal(t, y.Map(1), upper[1].Y)
	assert.Greater(t, upper[1].Y, upper[2].Y)
	assert.Equal(t, geometry.Point{X: x.Map(0), Y: y.Map(1)}, upper[3])

	cmds := band.Lower.Cmds
	assert.Equal(t, geometry.OpMove, cmds[0].Op)
	assert.Equal(t, geometry.OpClose, cmds[len(cmds)-1].Op)
}

func TestAreaBandTooFewPoints(t *testing.T) {
	for _, n := range []int{0, 1} {
		xs := make([]float64, n)
		band := geometry.AreaBand(xs, 100, xs, xs)
		assert.True(t, band.Lower.Empty(), "n=%d", n)
		assert.True(t, band.Upper.Empty(), "n=%d", n)
	}
}

// ─── Stack ────────────────────────────────────────────────────────────────────

func points(values ...float64) []model.TemporalPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.TemporalPoint, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		out = append(out, model.TemporalPoint{
			Date:  start.AddDate(0, 0, i/2),
			Open:  values[i],
			Close: values[i+1],
		})
	}
	return out
}

func TestStackLayers(t *testing.T) {
	layers := geometry.Stack(points(1, 2, 3, 0.5))
	require.Len(t, layers, 2)
	assert.Equal(t, geometry.KeyOpen, layers[0].Key)
	assert.Equal(t, geometry.KeyClose, layers[1].Key)
	assert.Equal(t, []geometry.Segment{{Bottom: 0, Top: 1}, {Bottom: 0, Top: 3}}, layers[0].Segments)
	assert.Equal(t, []geometry.Segment{{Bottom: 1, Top: 3}, {Bottom: 3, Top: 3.5}}, layers[1].Segments)
	assert.Equal(t, 3.5, geometry.Top(layers))
	assert.Equal(t, 0.0, geometry.Top(geometry.Stack(nil)))
}

func TestStackedBarHeightsNeverNegative(t *testing.T) {
	// close < open, zero magnitudes and a flat dataset.
	layers := geometry.Stack(points(5, 1, 0, 0, 2, 7, 9, 0))
	y := scale.Continuous([2]float64{0, geometry.Top(layers)}, [2]float64{260, 20}, true)
	xs := []float64{40, 80, 120, 160}
	bars := geometry.StackedBars(layers, func(i int) float64 { return xs[i] }, geometry.GapWidths(xs), y.Map)

	require.Len(t, bars, 8)
	for _, b := range bars {
		assert.GreaterOrEqual(t, b.Height, 0.0, "%s[%d]", b.Layer, b.Index)
	}
	// Bars in the close layer start where the open layer ends.
	assert.InDelta(t, bars[0].Y, bars[4].Y+bars[4].Height, 1e-9)

	// Inverted y still never yields negative heights.
	inv := scale.NewLinear([2]float64{0, 10}, [2]float64{20, 260})
	for _, b := range geometry.StackedBars(layers, func(int) float64 { return 0 }, geometry.FixedWidth(5), inv.Map) {
		assert.Equal(t, 0.0, b.Height)
	}
}

func TestBarWidths(t *testing.T) {
	gap := geometry.GapWidths([]float64{40, 70, 130})
	assert.Equal(t, 30.0, gap(0))
	assert.Equal(t, 60.0, gap(1))
	assert.Equal(t, 0.0, gap(2), "last bar has no next point")
	assert.Equal(t, 0.0, gap(-1))

	assert.Equal(t, 12.5, geometry.FixedWidth(12.5)(3))
}

// ─── Marks ────────────────────────────────────────────────────────────────────

func TestSymbolSizes(t *testing.T) {
	r := geometry.CircleRadius(geometry.SymbolArea)
	assert.InDelta(t, geometry.SymbolArea, math.Pi*r*r, 1e-9)

	// A diamond's area is half the product of its diagonals.
	pts := geometry.DiamondPath(geometry.SymbolArea).Points()
	require.Len(t, pts, 4)
	w := pts[1].X - pts[3].X
	h := pts[2].Y - pts[0].Y
	assert.InDelta(t, geometry.SymbolArea, w*h/2, 1e-9)
}

func TestMarksAnchorAtBaseline(t *testing.T) {
	data := []model.OrdinalPoint{
		{X: 1},
		{X: 2, Color: "#ff0000"},
		{X: 3, Symbol: model.SymbolDiamond},
	}
	x := func(v float64) float64 { return v * 100 }
	glyphs := geometry.Marks(data, x, 42, geometry.MarkStyle{Color: "#3B82F6"})

	require.Len(t, glyphs, 3)
	for i, g := range glyphs {
		assert.Equal(t, x(data[i].X), g.X)
		assert.Equal(t, 42.0, g.Y)
	}
	assert.Equal(t, model.SymbolCircle, glyphs[0].Kind)
	assert.Equal(t, "#3B82F6", glyphs[0].Fill)
	assert.Equal(t, "#ff0000", glyphs[1].Fill)
	assert.Equal(t, model.SymbolDiamond, glyphs[2].Kind)
	assert.False(t, glyphs[2].Outline.Empty())
	assert.True(t, glyphs[0].Outline.Empty())
}

func TestMarksDefaultDiamond(t *testing.T) {
	data := []model.OrdinalPoint{{X: 0}, {X: 1, Symbol: model.SymbolCircle}}
	glyphs := geometry.Marks(data, func(v float64) float64 { return v }, 0, geometry.MarkStyle{Symbol: model.SymbolDiamond})
	assert.Equal(t, model.SymbolDiamond, glyphs[0].Kind)
	assert.Equal(t, model.SymbolCircle, glyphs[1].Kind)
}

func TestMarksArrows(t *testing.T) {
	data := []model.OrdinalPoint{
		{X: 0, Arrow: model.DirectionUp},
		{X: 1, Arrow: model.DirectionDown},
		{X: 2, Arrow: model.DirectionDown, Color: "#000000"},
		{X: 3},
	}
	st := geometry.MarkStyle{Arrows: true, ColorUp: "#059669", ColorDown: "#F87171"}
	glyphs := geometry.Marks(data, func(v float64) float64 { return v * 10 }, 7, st)

	require.Len(t, glyphs, 4)
	assert.Equal(t, "#059669", glyphs[0].Fill)
	assert.Equal(t, "#F87171", glyphs[1].Fill)
	assert.Equal(t, "#000000", glyphs[2].Fill)
	assert.Equal(t, model.DirectionUp, glyphs[3].Direction)
	for _, g := range glyphs {
		assert.Equal(t, model.SymbolArrow, g.Kind)
		assert.Equal(t, geometry.ArrowRadius, g.Radius)
		assert.Equal(t, geometry.ArrowFill, g.OutlineFill)
	}
	assert.Equal(t, geometry.ArrowPath(model.DirectionDown).Translate(10, 7), glyphs[1].Outline)
}
