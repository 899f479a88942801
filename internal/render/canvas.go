package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/derickschaefer/chartline/internal/geometry"
	"github.com/derickschaefer/chartline/internal/scene"
)

// circleSteps is the number of segments used to approximate a disc.
const circleSteps = 32

// SVG draws sc as an SVG document.
func SVG(w io.Writer, sc scene.Scene) error {
	return draw(w, sc, chart.SVG)
}

// PNG draws sc as a PNG image.
func PNG(w io.Writer, sc scene.Scene) error {
	return draw(w, sc, chart.PNG)
}

func draw(w io.Writer, sc scene.Scene, provider chart.RendererProvider) error {
	width, height := px(sc.Viewport.Width), px(sc.Viewport.Height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("nothing to draw: viewport %gx%g has no area", sc.Viewport.Width, sc.Viewport.Height)
	}
	r, err := provider(width, height)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("loading font: %w", err)
	}
	r.SetFont(font)

	c := &canvas{r: r, fontSize: scene.FontSize * 72 / r.GetDPI()}
	c.background(width, height)
	for _, l := range sc.Grid {
		c.line(l)
	}
	for _, reg := range sc.Regions {
		c.fillPath(reg.Path, reg.Fill)
	}
	for _, b := range sc.Bars {
		c.rect(b)
	}
	for _, g := range sc.Glyphs {
		c.glyph(g)
	}
	for _, a := range sc.Axes {
		c.axis(a)
	}
	return r.Save(w)
}

// canvas wraps a go-chart renderer with the scene primitives.
type canvas struct {
	r        chart.Renderer
	fontSize float64
}

func (c *canvas) background(width, height int) {
	c.r.ResetStyle()
	c.r.SetFillColor(drawing.ColorWhite)
	c.r.MoveTo(0, 0)
	c.r.LineTo(width, 0)
	c.r.LineTo(width, height)
	c.r.LineTo(0, height)
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) line(l scene.Line) {
	c.r.ResetStyle()
	c.r.SetStrokeColor(color(l.Stroke, l.Opacity))
	c.r.SetStrokeWidth(1)
	c.r.MoveTo(px(l.X1), px(l.Y1))
	c.r.LineTo(px(l.X2), px(l.Y2))
	c.r.Stroke()
}

func (c *canvas) fillPath(p geometry.Path, fill string) {
	if p.Empty() {
		return
	}
	c.r.ResetStyle()
	c.r.SetFillColor(color(fill, 1))
	for _, cmd := range p.Cmds {
		switch cmd.Op {
		case geometry.OpMove:
			c.r.MoveTo(px(cmd.X), px(cmd.Y))
		case geometry.OpLine:
			c.r.LineTo(px(cmd.X), px(cmd.Y))
		case geometry.OpClose:
			c.r.Close()
		}
	}
	c.r.Fill()
}

func (c *canvas) rect(b scene.Rect) {
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	var p geometry.Path
	p.MoveTo(b.X, b.Y)
	p.LineTo(b.X+b.Width, b.Y)
	p.LineTo(b.X+b.Width, b.Y+b.Height)
	p.LineTo(b.X, b.Y+b.Height)
	p.Close()
	c.fillPath(p, b.Fill)
}

// disc approximates a circle with a closed polygon so both renderers fill
// it the same way.
func disc(x, y, radius float64) geometry.Path {
	var p geometry.Path
	for i := 0; i < circleSteps; i++ {
		a := 2 * math.Pi * float64(i) / circleSteps
		vx, vy := x+radius*math.Cos(a), y+radius*math.Sin(a)
		if i == 0 {
			p.MoveTo(vx, vy)
		} else {
			p.LineTo(vx, vy)
		}
	}
	p.Close()
	return p
}

func (c *canvas) glyph(g geometry.Glyph) {
	if g.Radius > 0 {
		c.fillPath(disc(g.X, g.Y, g.Radius), g.Fill)
	}
	if !g.Outline.Empty() {
		c.fillPath(g.Outline, g.OutlineFill)
	}
}

func (c *canvas) axis(a scene.Axis) {
	stroke := color(a.Color, 1)
	if !a.LabelsOnly {
		c.r.ResetStyle()
		c.r.SetStrokeColor(stroke)
		c.r.SetStrokeWidth(1)
		r0, r1, off := px(a.Range[0]), px(a.Range[1]), px(a.Offset)
		outer := px(a.TickSizeOuter)
		if a.Orient == scene.OrientLeft {
			c.r.MoveTo(off-outer, r0)
			c.r.LineTo(off, r0)
			c.r.LineTo(off, r1)
			c.r.LineTo(off-outer, r1)
		} else {
			c.r.MoveTo(r0, off+outer)
			c.r.LineTo(r0, off)
			c.r.LineTo(r1, off)
			c.r.LineTo(r1, off+outer)
		}
		c.r.Stroke()

		for _, t := range a.Ticks {
			c.r.MoveTo(tickStart(a, t))
			c.r.LineTo(tickEnd(a, t))
		}
		if len(a.Ticks) > 0 {
			c.r.Stroke()
		}
	}

	c.r.ResetStyle()
	c.r.SetFontColor(stroke)
	c.r.SetFontSize(c.fontSize)
	for _, t := range a.Ticks {
		if t.Label == "" {
			continue
		}
		width := c.r.MeasureText(t.Label).Width()
		if a.Orient == scene.OrientLeft {
			x := a.Offset - a.TickSizeInner - a.TickPadding - float64(width)
			c.r.Text(t.Label, px(x), px(t.Pos+0.32*scene.FontSize))
		} else {
			y := a.Offset + a.TickSizeInner + a.TickPadding + 0.71*scene.FontSize
			c.r.Text(t.Label, px(t.Pos)-width/2, px(y))
		}
	}
}

func tickStart(a scene.Axis, t scene.Tick) (int, int) {
	if a.Orient == scene.OrientLeft {
		return px(a.Offset), px(t.Pos)
	}
	return px(t.Pos), px(a.Offset)
}

func tickEnd(a scene.Axis, t scene.Tick) (int, int) {
	if a.Orient == scene.OrientLeft {
		return px(a.Offset - a.TickSizeInner), px(t.Pos)
	}
	return px(t.Pos), px(a.Offset + a.TickSizeInner)
}

// px rounds a scene coordinate to the renderer's integer grid.
func px(v float64) int {
	return int(math.Round(v))
}

// color parses "#rgb" or "#rrggbb" with the given opacity. Unparseable
// colours draw black.
func color(hex string, opacity float64) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	c := drawing.ColorBlack
	if len(hex) == 6 {
		c = drawing.ColorFromHex(hex)
	}
	opacity = math.Min(math.Max(opacity, 0), 1)
	return c.WithAlpha(uint8(math.Round(opacity * 255)))
}
