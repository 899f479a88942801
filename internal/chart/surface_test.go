package chart_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/chartline/internal/chart"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/resize"
	"github.com/derickschaefer/chartline/internal/scene"
)

func TestSurfaceStateMachine(t *testing.T) {
	s := chart.NewScatter()
	assert.Equal(t, chart.StateIdle, s.State())
	assert.True(t, s.Scene().Blank())
	assert.False(t, s.OnPointerMove(100).Visible, "idle surfaces show no tooltip")

	s.SetData(ordinals(1, 2, 3))
	assert.Equal(t, chart.StateIdle, s.State(), "data alone is not enough to draw")

	require.True(t, s.OnResize(vp))
	assert.Equal(t, chart.StateReady, s.State())
	assert.Len(t, s.Scene().Glyphs, 3)

	s.SetData(nil)
	assert.Equal(t, chart.StateEmpty, s.State())
	assert.Empty(t, s.Scene().Glyphs)
	assert.NotEmpty(t, s.Scene().Grid)
	assert.False(t, s.OnPointerMove(100).Visible, "empty surfaces show no tooltip")
}

func TestSurfaceResizeDeduplicates(t *testing.T) {
	s := chart.NewArea()
	s.SetData(days(1, 2, 3, 1))
	require.True(t, s.OnResize(vp))
	before := s.Scene()
	builds := s.Builds()

	assert.False(t, s.OnResize(model.Viewport{Width: 500, Height: 300}))
	assert.Equal(t, builds, s.Builds())
	assert.Equal(t, before, s.Scene())

	assert.True(t, s.OnResize(model.Viewport{Width: 800, Height: 300}))
	assert.Equal(t, builds+1, s.Builds())
	assert.NotEqual(t, before, s.Scene())
}

func TestSurfaceSetDataAlwaysRebuilds(t *testing.T) {
	s := chart.NewStackedBar()
	s.OnResize(vp)
	data := days(1, 2, 3, 4)
	s.SetData(data)
	n := s.Builds()
	s.SetData(data)
	assert.Equal(t, n+1, s.Builds())

	// The surface keeps its own copy.
	data[0].Open = 1000
	assert.Equal(t, chart.RenderStackedBar(days(1, 2, 3, 4), vp, s.Style()).Scene, s.Scene())
}

func TestSurfaceTooltip(t *testing.T) {
	s := chart.NewScatter()
	s.OnResize(vp)
	s.SetData(ordinals(0, 5, 10))

	pos := s.Frame().Positions()
	tip := s.OnPointerMove(pos[1] + 3)
	require.True(t, tip.Visible)
	assert.Equal(t, pos[1]+3+10, tip.AnchorX)
	assert.Equal(t, 10.0, tip.AnchorY)
	require.NotNil(t, tip.Left)
	require.NotNil(t, tip.Right)
	assert.Equal(t, 5.0, tip.Left.X)
	assert.Equal(t, 10.0, tip.Right.X)
	assert.Equal(t, tip, s.Tooltip())

	left := s.OnPointerLeave()
	assert.False(t, left.Visible)
	assert.Nil(t, left.Left)
	assert.False(t, s.Tooltip().Visible)
}

func TestSurfaceTooltipSinglePoint(t *testing.T) {
	s := chart.NewArrowScatter()
	s.OnResize(vp)
	s.SetData([]model.OrdinalPoint{{X: 4, Arrow: model.DirectionDown}})

	tip := s.OnPointerMove(0)
	require.True(t, tip.Visible)
	assert.Equal(t, 0.0, tip.AnchorY, "arrow tooltips sit at the top")
	assert.Equal(t, 10.0, tip.AnchorX)
	require.NotNil(t, tip.Left)
	assert.Nil(t, tip.Right)
}

func TestSurfaceSetDataResetsTooltip(t *testing.T) {
	s := chart.NewArea()
	s.OnResize(vp)
	s.SetData(days(1, 2, 3, 1))
	require.True(t, s.OnPointerMove(60).Visible)

	s.SetData(days(2, 2, 2, 2))
	assert.False(t, s.Tooltip().Visible)
}

func TestSurfaceAttach(t *testing.T) {
	obs := resize.NewObserver()
	el := &mount{vp: vp, attached: true}
	s := chart.NewTimeline()
	s.SetData(days(1, 1, 1, 1))

	s.Attach(obs, el)
	got, ok := s.Viewport()
	require.True(t, ok)
	assert.Equal(t, vp, got)
	assert.Equal(t, chart.StateReady, s.State())

	el.vp = model.Viewport{Width: 900, Height: 80}
	obs.Notify(el)
	got, _ = s.Viewport()
	assert.Equal(t, 900.0, got.Width)

	s.Detach()
	s.Detach()
	assert.Equal(t, 0, obs.Len(el))
	builds := s.Builds()
	el.vp = model.Viewport{Width: 100, Height: 80}
	obs.Notify(el)
	assert.Equal(t, builds, s.Builds(), "detached surfaces ignore resizes")
}

func TestSurfaceAttachFallback(t *testing.T) {
	obs := resize.NewObserver()
	el := &mount{}
	fallback := model.Viewport{Width: 928, Height: 100}
	s := chart.NewArea(chart.WithFallback(fallback))
	s.Attach(obs, el)

	got, ok := s.Viewport()
	require.True(t, ok, "fallback lays out the first paint")
	assert.Equal(t, fallback, got)

	el.vp, el.attached = model.Viewport{Width: 640, Height: 100}, true
	obs.Notify(el)
	got, _ = s.Viewport()
	assert.Equal(t, 640.0, got.Width)
	s.Detach()
}

func TestSurfaceWithStyleAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	st := chart.DefaultStyle(scene.KindScatter)
	st.Color = "#000000"
	s := chart.NewScatter(chart.WithStyle(st), chart.WithLogger(log))
	s.OnResize(vp)
	s.SetData(ordinals(1))

	assert.Equal(t, "#000000", s.Scene().Glyphs[0].Fill)
	assert.Contains(t, buf.String(), `"chart":"scatter"`)
	assert.Contains(t, buf.String(), `"state":"ready"`)
	assert.Contains(t, buf.String(), "scene rebuilt")
}

func TestStyleValidate(t *testing.T) {
	for _, k := range scene.Kinds {
		assert.NoError(t, chart.DefaultStyle(k).Validate(), "default style for %s", k)
	}

	st := chart.DefaultStyle(scene.KindScatter)
	st.Color = "blue"
	st.Symbol = "star"
	st.BandPadding = 1
	st.Fills = []string{"#fff", "nope"}
	err := st.Validate()
	require.Error(t, err)
	for _, want := range []string{"color", "symbol", "band_padding", "fills[1]"} {
		assert.Contains(t, err.Error(), want)
	}
}
