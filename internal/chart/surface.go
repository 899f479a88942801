package chart

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/resize"
	"github.com/derickschaefer/chartline/internal/scene"
)

// ─── Options ──────────────────────────────────────────────────────────────────

type options struct {
	style    *Style
	log      zerolog.Logger
	fallback model.Viewport
}

// Option configures a Surface.
type Option func(*options)

// WithStyle replaces the chart kind's default style.
func WithStyle(st Style) Option {
	return func(o *options) { o.style = &st }
}

// WithLogger sets the logger rebuilds are reported to. The default
// discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithFallback sets the viewport Attach uses when the mount cannot be
// measured yet.
func WithFallback(vp model.Viewport) Option {
	return func(o *options) { o.fallback = vp }
}

// ─── Surface ──────────────────────────────────────────────────────────────────

// Surface holds the latest frame and tooltip of one chart. All methods are
// safe for concurrent use; each event completes its rebuild before the
// next event observes the frame.
type Surface[P any] struct {
	mu       sync.Mutex
	kind     scene.Kind
	render   RenderFunc[P]
	style    Style
	log      zerolog.Logger
	fallback model.Viewport

	data    []P
	vp      model.Viewport
	hasVP   bool
	frame   Frame[P]
	tooltip model.TooltipState[P]
	builds  int

	sub *resize.Subscription
}

// NewSurface wraps render in a surface that starts Idle with no data.
func NewSurface[P any](kind scene.Kind, render RenderFunc[P], opts ...Option) *Surface[P] {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	st := DefaultStyle(kind)
	if o.style != nil {
		st = *o.style
	}
	s := &Surface[P]{
		kind:     kind,
		render:   render,
		style:    st,
		log:      o.log.With().Str("chart", string(kind)).Logger(),
		fallback: o.fallback,
	}
	s.rebuild()
	return s
}

// NewArea returns an area chart surface.
func NewArea(opts ...Option) *Surface[model.TemporalPoint] {
	return NewSurface(scene.KindArea, RenderArea, opts...)
}

// NewStackedBar returns a stacked-bar chart surface.
func NewStackedBar(opts ...Option) *Surface[model.TemporalPoint] {
	return NewSurface(scene.KindStackedBar, RenderStackedBar, opts...)
}

// NewScatter returns a scatter chart surface.
func NewScatter(opts ...Option) *Surface[model.OrdinalPoint] {
	return NewSurface(scene.KindScatter, RenderScatter, opts...)
}

// NewArrowScatter returns an arrow-scatter chart surface.
func NewArrowScatter(opts ...Option) *Surface[model.OrdinalPoint] {
	return NewSurface(scene.KindArrowScatter, RenderArrowScatter, opts...)
}

// NewTimeline returns a timeline axis surface.
func NewTimeline(opts ...Option) *Surface[model.TemporalPoint] {
	return NewSurface(scene.KindTimeline, RenderTimeline, opts...)
}

// Kind returns the chart kind.
func (s *Surface[P]) Kind() scene.Kind { return s.kind }

// Style returns the style the surface renders with.
func (s *Surface[P]) Style() Style { return s.style }

// OnResize rebuilds the scene for vp. A viewport equal to the current one
// is ignored and OnResize reports false.
func (s *Surface[P]) OnResize(vp model.Viewport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasVP && vp == s.vp {
		return false
	}
	s.vp, s.hasVP = vp, true
	s.rebuild()
	return true
}

// SetData replaces the dataset and rebuilds. The slice is copied. The
// tooltip is reset since it referred to the previous dataset.
func (s *Surface[P]) SetData(data []P) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
	s.tooltip = model.Hidden[P]()
	s.rebuild()
}

// OnPointerMove answers a pointer at column px against the current frame.
// The tooltip is hidden unless the surface is Ready.
func (s *Surface[P]) OnPointerMove(px float64) model.TooltipState[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame.State != StateReady {
		s.tooltip = model.Hidden[P]()
		return s.tooltip
	}
	r := s.frame.Nearest(px)
	s.tooltip = model.TooltipState[P]{
		Visible: r.Found(),
		AnchorX: px + s.style.TooltipDX,
		AnchorY: s.style.TooltipDY,
		Left:    r.Left,
		Right:   r.Right,
	}
	return s.tooltip
}

// OnPointerLeave hides the tooltip.
func (s *Surface[P]) OnPointerLeave() model.TooltipState[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tooltip = model.Hidden[P]()
	return s.tooltip
}

// Scene returns the scene of the current frame.
func (s *Surface[P]) Scene() scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame.Scene
}

// Frame returns the current frame.
func (s *Surface[P]) Frame() Frame[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// State returns the state of the current frame.
func (s *Surface[P]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame.State
}

// Tooltip returns the last tooltip state.
func (s *Surface[P]) Tooltip() model.TooltipState[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

// Viewport returns the current viewport; ok is false while Idle.
func (s *Surface[P]) Viewport() (model.Viewport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp, s.hasVP
}

// Builds counts render passes since the surface was created.
func (s *Surface[P]) Builds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builds
}

// rebuild must be called with mu held.
func (s *Surface[P]) rebuild() {
	vp := model.Viewport{}
	if s.hasVP {
		vp = s.vp
	}
	s.frame = s.render(s.data, vp, s.style)
	s.builds++
	if s.frame.State != StateReady {
		s.tooltip = model.Hidden[P]()
	}
	s.log.Debug().
		Str("state", s.frame.State.String()).
		Float64("width", vp.Width).
		Float64("height", vp.Height).
		Int("points", len(s.data)).
		Int("marks", s.frame.Scene.Marks()).
		Int("build", s.builds).
		Msg("scene rebuilt")
}

// ─── Resize wiring ────────────────────────────────────────────────────────────

// Attach subscribes the surface to size changes of el. When el cannot be
// measured yet the surface is laid out once from resize.Measure, using the
// WithFallback viewport if el reports nothing at all. Attaching again
// replaces the previous subscription.
func (s *Surface[P]) Attach(obs *resize.Observer, el resize.Element) {
	s.Detach()
	sub := obs.Observe(el, func(vp model.Viewport) { s.OnResize(vp) })

	s.mu.Lock()
	s.sub = sub
	idle := !s.hasVP
	s.mu.Unlock()

	if idle {
		if vp := resize.Measure(el, s.fallback); !vp.IsZero() {
			s.OnResize(vp)
		}
	}
}

// Detach removes the resize subscription. The surface keeps its last frame.
func (s *Surface[P]) Detach() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	sub.Unobserve()
}
