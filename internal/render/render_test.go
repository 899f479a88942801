package render_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/chartline/internal/analyze"
	"github.com/derickschaefer/chartline/internal/chart"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/scene"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

var vp = model.Viewport{Width: 400, Height: 200}

func days(pairs ...float64) []model.TemporalPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []model.TemporalPoint
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.TemporalPoint{Date: start.AddDate(0, 0, i/2), Open: pairs[i], Close: pairs[i+1]})
	}
	return out
}

func areaScene() scene.Scene {
	return chart.RenderArea(days(1, 2, 3, 1, 2, 2), vp, chart.DefaultStyle(scene.KindArea)).Scene
}

func scatterScene() scene.Scene {
	pts := []model.OrdinalPoint{{X: 1}, {X: 5, Symbol: model.SymbolDiamond}, {X: 9, Color: "#f00"}}
	return chart.RenderScatter(pts, vp, chart.DefaultStyle(scene.KindScatter)).Scene
}

// ─── SVG / PNG ────────────────────────────────────────────────────────────────

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Scene(&buf, areaScene(), render.FormatSVG))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, "<path")
	assert.Contains(t, out, "2024", "bottom axis labels are drawn as text")
}

func TestSVGDrawsMoreWithData(t *testing.T) {
	var blank, full bytes.Buffer
	empty := chart.RenderScatter(nil, vp, chart.DefaultStyle(scene.KindScatter)).Scene
	require.NoError(t, render.SVG(&blank, empty))
	require.NoError(t, render.SVG(&full, scatterScene()))
	assert.Greater(t, full.Len(), blank.Len())
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.PNG(&buf, scatterScene()))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestDrawIdleSceneFails(t *testing.T) {
	idle := chart.RenderArea(nil, model.Viewport{}, chart.DefaultStyle(scene.KindArea)).Scene
	assert.Error(t, render.SVG(&bytes.Buffer{}, idle))
	assert.Error(t, render.PNG(&bytes.Buffer{}, idle))
}

func TestUnknownSceneFormat(t *testing.T) {
	err := render.Scene(&bytes.Buffer{}, areaScene(), "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gif")
}

// ─── JSON / Table / ASCII ─────────────────────────────────────────────────────

func TestSceneJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Scene(&buf, areaScene(), render.FormatJSON))

	var got scene.Scene
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, scene.KindArea, got.Kind)
	assert.Len(t, got.Regions, 2)
	assert.Equal(t, areaScene().Regions[0].Path.String(), got.Regions[0].Path.String())
}

func TestSceneTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Scene(&buf, scatterScene(), render.FormatTable))
	out := buf.String()
	assert.Contains(t, out, "scatter")
	assert.Contains(t, out, "400x200")
	assert.Contains(t, out, "LABEL")
}

func TestASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.ASCII(&buf, scatterScene(), render.ASCIIOptions{Width: 60, Height: 10}))
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "scatter  400x200  3 marks"))
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "◆")
	assert.GreaterOrEqual(t, len(lines), 11)
}

func TestASCIIArrowsAndIdle(t *testing.T) {
	pts := []model.OrdinalPoint{{X: 1, Arrow: model.DirectionUp}, {X: 2, Arrow: model.DirectionDown}}
	sc := chart.RenderArrowScatter(pts, vp, chart.DefaultStyle(scene.KindArrowScatter)).Scene

	var buf bytes.Buffer
	require.NoError(t, render.ASCII(&buf, sc, render.ASCIIOptions{Width: 40}))
	assert.Contains(t, buf.String(), "▲")
	assert.Contains(t, buf.String(), "▼")

	buf.Reset()
	idle := chart.RenderTimeline(nil, model.Viewport{}, chart.DefaultStyle(scene.KindTimeline)).Scene
	require.NoError(t, render.ASCII(&buf, idle, render.ASCIIOptions{}))
	assert.Contains(t, buf.String(), "idle")
}

func TestASCIIStackedBars(t *testing.T) {
	st := chart.DefaultStyle(scene.KindStackedBar)
	st.XScale = chart.XScaleBand
	sc := chart.RenderStackedBar(days(2, 2, 4, 4), vp, st).Scene

	var buf bytes.Buffer
	require.NoError(t, render.ASCII(&buf, sc, render.ASCIIOptions{Width: 60, Height: 12}))
	assert.Contains(t, buf.String(), "▓")
	assert.Contains(t, buf.String(), "█")
	assert.Contains(t, buf.String(), "└")
}

// ─── Tooltips ─────────────────────────────────────────────────────────────────

func TestTooltipsTable(t *testing.T) {
	a, b := model.OrdinalPoint{X: 5, Arrow: model.DirectionUp}, model.OrdinalPoint{X: 10}
	probes := []render.Probe[model.OrdinalPoint]{
		{Pointer: 120, TooltipState: model.TooltipState[model.OrdinalPoint]{Visible: true, AnchorX: 130, AnchorY: 10, Left: &a, Right: &b}},
		{Pointer: -1, TooltipState: model.Hidden[model.OrdinalPoint]()},
	}

	var buf bytes.Buffer
	require.NoError(t, render.Tooltips(&buf, probes, render.FormatTable, render.DescribeOrdinal))
	out := buf.String()
	assert.Contains(t, out, "x=5 up")
	assert.Contains(t, out, "x=10")
	assert.Contains(t, out, "130.0,10.0")

	buf.Reset()
	require.NoError(t, render.Tooltips(&buf, probes, render.FormatJSON, render.DescribeOrdinal))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, 120.0, decoded[0]["pointer"])
	assert.Equal(t, true, decoded[0]["visible"])
	assert.Nil(t, decoded[1]["left"])
}

func TestDescribeTemporal(t *testing.T) {
	p := days(1.5, 2)[0]
	assert.Equal(t, "2024-01-01 open=1.5 close=2", render.DescribeTemporal(p))
}

// ─── Datasets ─────────────────────────────────────────────────────────────────

func TestDatasetJSONLRoundTrip(t *testing.T) {
	ds := model.Dataset{Name: "d", Kind: model.KindTemporal, Temporal: days(1, 2, 3, 4)}
	var buf bytes.Buffer
	require.NoError(t, render.Dataset(&buf, ds, render.FormatJSONL))

	got, err := pipeline.ReadDataset(&buf, "")
	require.NoError(t, err)
	require.Equal(t, model.KindTemporal, got.Kind)
	require.Len(t, got.Temporal, 2)
	assert.True(t, got.Temporal[1].Date.Equal(ds.Temporal[1].Date))
	assert.Equal(t, 4.0, got.Temporal[1].Close)
}

func TestDatasetOrdinalJSONLRoundTrip(t *testing.T) {
	ds := model.Dataset{Kind: model.KindOrdinal, Ordinal: []model.OrdinalPoint{{X: 1, Arrow: model.DirectionDown}, {X: 2, Color: "#00ff00"}}}
	var buf bytes.Buffer
	require.NoError(t, render.Dataset(&buf, ds, render.FormatJSONL))

	got, err := pipeline.ReadDataset(&buf, "")
	require.NoError(t, err)
	assert.Equal(t, ds.Ordinal, got.Ordinal)
}

func TestDatasetDelimited(t *testing.T) {
	ds := model.Dataset{Kind: model.KindTemporal, Temporal: days(1, 2)}
	var buf bytes.Buffer
	require.NoError(t, render.Dataset(&buf, ds, render.FormatCSV))
	assert.Equal(t, "date,open,close\n2024-01-01,1,2\n", buf.String())

	buf.Reset()
	require.NoError(t, render.Dataset(&buf, ds, render.FormatTSV))
	assert.Equal(t, "date\topen\tclose\n2024-01-01\t1\t2\n", buf.String())
}

func TestDatasetMarkdownAndTable(t *testing.T) {
	ds := model.Dataset{Kind: model.KindOrdinal, Ordinal: []model.OrdinalPoint{{X: 3, Color: "#abc"}}}
	var buf bytes.Buffer
	require.NoError(t, render.Dataset(&buf, ds, render.FormatMD))
	assert.Contains(t, buf.String(), "| X | COLOR | ARROW | SYMBOL |")
	assert.Contains(t, buf.String(), "| 3 | #abc |")

	buf.Reset()
	require.NoError(t, render.Dataset(&buf, ds, render.FormatTable))
	assert.Contains(t, buf.String(), "#abc")

	assert.Error(t, render.Dataset(&buf, ds, "xml"))
}

// ─── Analysis ─────────────────────────────────────────────────────────────────

func TestSummaryAndTrend(t *testing.T) {
	ds := model.Dataset{Name: "prices", Kind: model.KindTemporal, Temporal: days(1, 2, 2, 4, 3, 6)}
	var buf bytes.Buffer
	require.NoError(t, render.Summary(&buf, analyze.Summarize(ds), render.FormatTable))
	out := buf.String()
	assert.Contains(t, out, "prices")
	assert.Contains(t, out, "2024-01-01 – 2024-01-03")
	assert.Contains(t, out, "MEDIAN")

	tr, err := analyze.Trend("prices", ds.Temporal, analyze.FieldClose)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, render.Trend(&buf, tr, render.FormatJSON))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "up", decoded["direction"])
}
