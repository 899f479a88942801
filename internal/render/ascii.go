package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/goterm/term"

	"github.com/derickschaefer/chartline/internal/geometry"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/scene"
)

// ASCIIOptions controls the terminal preview.
type ASCIIOptions struct {
	// Width is the total character width, including the left label gutter.
	// If 0, auto-detects from $COLUMNS or the terminal, falls back to 80.
	Width int
	// Height is the number of rows in the chart body. If 0, it follows the
	// viewport's aspect ratio, clamped to [8, 40].
	Height int
}

var regionRunes = []rune{'░', '▒'}

// ASCII draws a coarse character-cell preview of sc. Every primitive is
// sampled at cell centres, so thin marks may vanish at small sizes.
//
// Output example:
//
//	area  960x500  2 marks
//	 1.0│          ▒▒▒▒
//	    │   ░░░░░░░▒▒▒▒▒▒
//	 0.0│░░░░░░░░░░░░░░░░░░
//	    └──────────────────
//	     Jan 01     Jan 08
func ASCII(w io.Writer, sc scene.Scene, opts ASCIIOptions) error {
	vp := sc.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		fmt.Fprintf(w, "%s  (idle: no viewport)\n", sc.Kind)
		return nil
	}

	left, bottom := axisOf(sc, scene.OrientLeft), axisOf(sc, scene.OrientBottom)
	gutter := 0
	if left != nil {
		for _, t := range left.Ticks {
			gutter = max(gutter, len([]rune(t.Label)))
		}
	}

	width := opts.Width
	if width <= 0 {
		width = termWidth()
	}
	cols := max(width-gutter-1, 10)
	rows := opts.Height
	if rows <= 0 {
		rows = int(math.Round(float64(cols) * vp.Height / vp.Width / 2))
		rows = min(max(rows, 8), 40)
	}

	g := newCellGrid(cols, rows, vp)
	for i, reg := range sc.Regions {
		g.fillPolygon(reg.Path.Points(), regionRunes[i%len(regionRunes)])
	}
	for _, b := range sc.Bars {
		ch := '█'
		if b.Layer == geometry.KeyOpen {
			ch = '▓'
		}
		g.fillRect(b.X, b.Y, b.Width, b.Height, ch)
	}
	for _, gl := range sc.Glyphs {
		g.set(gl.X, gl.Y, glyphRune(gl))
	}

	fmt.Fprintf(w, "%s  %gx%g  %d marks\n", sc.Kind, vp.Width, vp.Height, sc.Marks())

	rowLabels := make(map[int]string)
	if left != nil {
		for _, t := range left.Ticks {
			rowLabels[g.row(t.Pos)] = t.Label
		}
	}
	edge := ' '
	if left != nil && !left.LabelsOnly {
		edge = '│'
	}
	for r := 0; r < rows; r++ {
		fmt.Fprintf(w, "%*s%c%s\n", gutter, rowLabels[r], edge, string(g.cells[r]))
	}

	if bottom != nil {
		if !bottom.LabelsOnly {
			corner := '─'
			if left != nil && !left.LabelsOnly {
				corner = '└'
			}
			fmt.Fprintf(w, "%s%c%s\n", strings.Repeat(" ", gutter), corner, strings.Repeat("─", cols))
		}
		fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", gutter), g.labelLine(bottom.Ticks))
	}
	return nil
}

func axisOf(sc scene.Scene, o scene.Orient) *scene.Axis {
	for i := range sc.Axes {
		if sc.Axes[i].Orient == o {
			return &sc.Axes[i]
		}
	}
	return nil
}

func glyphRune(g geometry.Glyph) rune {
	switch {
	case g.Kind == model.SymbolArrow && g.Direction == model.DirectionDown:
		return '▼'
	case g.Kind == model.SymbolArrow:
		return '▲'
	case g.Kind == model.SymbolDiamond:
		return '◆'
	default:
		return '●'
	}
}

// ─── Cell grid ────────────────────────────────────────────────────────────────

// cellGrid maps viewport pixels onto a cols×rows rune matrix.
type cellGrid struct {
	cols, rows int
	vp         model.Viewport
	cells      [][]rune
}

func newCellGrid(cols, rows int, vp model.Viewport) *cellGrid {
	cells := make([][]rune, rows)
	for r := range cells {
		cells[r] = []rune(strings.Repeat(" ", cols))
	}
	return &cellGrid{cols: cols, rows: rows, vp: vp, cells: cells}
}

func (g *cellGrid) col(x float64) int {
	return clampInt(int(x/g.vp.Width*float64(g.cols)), 0, g.cols-1)
}

func (g *cellGrid) row(y float64) int {
	return clampInt(int(y/g.vp.Height*float64(g.rows)), 0, g.rows-1)
}

// centre returns the pixel position of the middle of cell (c, r).
func (g *cellGrid) centre(c, r int) (float64, float64) {
	return (float64(c) + 0.5) * g.vp.Width / float64(g.cols),
		(float64(r) + 0.5) * g.vp.Height / float64(g.rows)
}

func (g *cellGrid) set(x, y float64, ch rune) {
	if x < 0 || y < 0 || x > g.vp.Width || y > g.vp.Height {
		return
	}
	g.cells[g.row(y)][g.col(x)] = ch
}

func (g *cellGrid) fillRect(x, y, w, h float64, ch rune) {
	if w <= 0 || h <= 0 {
		return
	}
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			cx, cy := g.centre(c, r)
			if cx >= x && cx < x+w && cy >= y && cy < y+h {
				g.cells[r][c] = ch
			}
		}
	}
}

// fillPolygon fills the cells whose centres fall inside pts, by the
// even-odd rule.
func (g *cellGrid) fillPolygon(pts []geometry.Point, ch rune) {
	if len(pts) < 3 {
		return
	}
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			cx, cy := g.centre(c, r)
			if inside(pts, cx, cy) {
				g.cells[r][c] = ch
			}
		}
	}
}

func inside(pts []geometry.Point, x, y float64) bool {
	in := false
	j := len(pts) - 1
	for i := range pts {
		pi, pj := pts[i], pts[j]
		if (pi.Y > y) != (pj.Y > y) && x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			in = !in
		}
		j = i
	}
	return in
}

// labelLine places tick labels at their columns, dropping any that would
// overlap an earlier one.
func (g *cellGrid) labelLine(ticks []scene.Tick) string {
	line := []rune(strings.Repeat(" ", g.cols))
	next := 0
	for _, t := range ticks {
		label := []rune(t.Label)
		start := g.col(t.Pos) - len(label)/2
		if start < next || start < 0 || start+len(label) > g.cols {
			continue
		}
		copy(line[start:], label)
		next = start + len(label) + 1
	}
	return strings.TrimRight(string(line), " ")
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// termWidth returns the terminal width from $COLUMNS or the tty, defaulting
// to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	if pipeline.IsTTY() {
		var t term.Termios
		if err := t.Winsz(os.Stdout); err == nil {
			if n := int(t.Wz.WsCol); n > 20 {
				return n
			}
		}
	}
	return 80
}
