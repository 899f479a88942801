package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/derickschaefer/chartline/internal/chart"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/resize"
	"github.com/derickschaefer/chartline/internal/scene"
)

// ─── Mount ────────────────────────────────────────────────────────────────────

// pane is the CLI's stand-in for a layout element: a box whose size the
// command sets from flags or from session resize events.
type pane struct {
	mu       sync.Mutex
	vp       model.Viewport
	attached bool
}

func (p *pane) ContentBox() (model.Viewport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vp, p.attached
}

func (p *pane) set(vp model.Viewport) {
	p.mu.Lock()
	p.vp, p.attached = vp, true
	p.mu.Unlock()
}

// ─── Host ─────────────────────────────────────────────────────────────────────

// tipView is a tooltip with its points already described, so commands can
// print it without knowing the point type.
type tipView struct {
	Visible  bool    `json:"visible"`
	AnchorX  float64 `json:"anchor_x"`
	AnchorY  float64 `json:"anchor_y"`
	Nearest  string  `json:"nearest,omitempty"`
	RunnerUp string  `json:"runner_up,omitempty"`
}

// surface is the point-type independent part of chart.Surface.
type surface interface {
	Attach(obs *resize.Observer, el resize.Element)
	Detach()
	Scene() scene.Scene
	State() chart.State
	Builds() int
	Viewport() (model.Viewport, bool)
}

// host owns one chart surface mounted on a pane, the way a page hosts a
// chart component: it feeds data, relays resizes and forwards pointer
// events.
type host struct {
	kind scene.Kind
	obs  *resize.Observer
	pane *pane
	surface

	setData func(model.Dataset) error
	move    func(px float64) tipView
	leave   func() tipView
	probe   func(w io.Writer, xs []float64, format string) error
}

// newHost builds the surface for kind with the given style and mounts it.
// The surface stays Idle until the first resize.
func newHost(kind scene.Kind, st chart.Style, log zerolog.Logger) (*host, error) {
	opts := []chart.Option{chart.WithStyle(st), chart.WithLogger(log)}
	var h *host
	switch kind {
	case scene.KindArea:
		h = bindTemporal(chart.NewArea(opts...))
	case scene.KindStackedBar:
		h = bindTemporal(chart.NewStackedBar(opts...))
	case scene.KindTimeline:
		h = bindTemporal(chart.NewTimeline(opts...))
	case scene.KindScatter:
		h = bindOrdinal(chart.NewScatter(opts...))
	case scene.KindArrowScatter:
		h = bindOrdinal(chart.NewArrowScatter(opts...))
	default:
		return nil, fmt.Errorf("unknown chart %q", kind)
	}
	h.kind = kind
	h.obs = resize.NewObserver()
	h.pane = &pane{}
	h.Attach(h.obs, h.pane)
	return h, nil
}

// resize lays the pane out at vp and notifies the observer. It reports
// whether the surface rebuilt.
func (h *host) resize(vp model.Viewport) bool {
	before := h.Builds()
	h.pane.set(vp)
	h.obs.Notify(h.pane)
	return h.Builds() != before
}

// pointKind is the dataset kind the hosted chart accepts.
func (h *host) pointKind() model.Kind {
	if h.kind.Temporal() {
		return model.KindTemporal
	}
	return model.KindOrdinal
}

func (h *host) close() {
	h.Detach()
}

func bindTemporal(s *chart.Surface[model.TemporalPoint]) *host {
	return bind(s, func(ds model.Dataset) ([]model.TemporalPoint, error) {
		if ds.Kind != model.KindTemporal {
			return nil, fmt.Errorf("%s chart needs temporal points, got %s", s.Kind(), ds.Kind)
		}
		return ds.Temporal, nil
	}, render.DescribeTemporal)
}

func bindOrdinal(s *chart.Surface[model.OrdinalPoint]) *host {
	return bind(s, func(ds model.Dataset) ([]model.OrdinalPoint, error) {
		if ds.Kind != model.KindOrdinal {
			return nil, fmt.Errorf("%s chart needs ordinal points, got %s", s.Kind(), ds.Kind)
		}
		return ds.Ordinal, nil
	}, render.DescribeOrdinal)
}

func bind[P any](s *chart.Surface[P], points func(model.Dataset) ([]P, error), describe func(P) string) *host {
	view := func(t model.TooltipState[P]) tipView {
		v := tipView{Visible: t.Visible, AnchorX: t.AnchorX, AnchorY: t.AnchorY}
		if t.Left != nil {
			v.Nearest = describe(*t.Left)
		}
		if t.Right != nil {
			v.RunnerUp = describe(*t.Right)
		}
		return v
	}
	return &host{
		surface: s,
		setData: func(ds model.Dataset) error {
			p, err := points(ds)
			if err != nil {
				return err
			}
			s.SetData(p)
			return nil
		},
		move:  func(px float64) tipView { return view(s.OnPointerMove(px)) },
		leave: func() tipView { return view(s.OnPointerLeave()) },
		probe: func(w io.Writer, xs []float64, format string) error {
			probes := make([]render.Probe[P], 0, len(xs))
			for _, x := range xs {
				probes = append(probes, render.Probe[P]{Pointer: x, TooltipState: s.OnPointerMove(x)})
			}
			s.OnPointerLeave()
			return render.Tooltips(w, probes, format, describe)
		},
	}
}
