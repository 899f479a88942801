// Package geometry turns scaled data into drawable primitives: area-band
// outlines, stacked-bar rectangles and symbol glyphs. Every builder is a
// pure function of pixel coordinates; scales are applied by the caller.
package geometry

import (
	"strconv"
	"strings"
)

// ─── Path ─────────────────────────────────────────────────────────────────────

// Op is a path command.
type Op byte

const (
	OpMove  Op = 'M'
	OpLine  Op = 'L'
	OpClose Op = 'Z'
)

// Point is an absolute pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cmd is one path command. X and Y are ignored for OpClose.
type Cmd struct {
	Op Op      `json:"op"`
	X  float64 `json:"x,omitempty"`
	Y  float64 `json:"y,omitempty"`
}

// Path is an ordered list of move, line and close commands in absolute
// pixel coordinates. The zero value is an empty path.
type Path struct {
	Cmds []Cmd `json:"cmds"`
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) { p.Cmds = append(p.Cmds, Cmd{Op: OpMove, X: x, Y: y}) }

// LineTo draws a straight segment to (x, y).
func (p *Path) LineTo(x, y float64) { p.Cmds = append(p.Cmds, Cmd{Op: OpLine, X: x, Y: y}) }

// Close closes the current subpath.
func (p *Path) Close() { p.Cmds = append(p.Cmds, Cmd{Op: OpClose}) }

// Empty reports whether the path has no commands.
func (p Path) Empty() bool { return len(p.Cmds) == 0 }

// Points returns the coordinates of every move and line command in order.
func (p Path) Points() []Point {
	out := make([]Point, 0, len(p.Cmds))
	for _, c := range p.Cmds {
		if c.Op != OpClose {
			out = append(out, Point{X: c.X, Y: c.Y})
		}
	}
	return out
}

// Translate returns a copy of p shifted by (dx, dy).
func (p Path) Translate(dx, dy float64) Path {
	out := Path{Cmds: make([]Cmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		if c.Op != OpClose {
			c.X += dx
			c.Y += dy
		}
		out.Cmds[i] = c
	}
	return out
}

// String renders SVG path data, e.g. "M40,80L60,20Z".
func (p Path) String() string {
	var b strings.Builder
	for _, c := range p.Cmds {
		b.WriteByte(byte(c.Op))
		if c.Op == OpClose {
			continue
		}
		b.WriteString(num(c.X))
		b.WriteByte(',')
		b.WriteString(num(c.Y))
	}
	return b.String()
}

func num(v float64) string {
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
