package geometry

import (
	"math"

	"github.com/derickschaefer/chartline/internal/model"
)

// ─── Symbols ──────────────────────────────────────────────────────────────────

// SymbolArea is the glyph area, in square pixels, of circles and diamonds.
const SymbolArea = 64.0

// ArrowRadius is the disc radius behind an arrow glyph.
const ArrowRadius = 10.0

// ArrowFill is the colour of the arrow drawn over its disc.
const ArrowFill = "#ffffff"

var tan30 = math.Sqrt(1.0 / 3)

// CircleRadius returns the radius of a circle of the given area.
func CircleRadius(area float64) float64 {
	return math.Sqrt(area / math.Pi)
}

// DiamondPath returns a diamond of the given area centred on the origin.
func DiamondPath(area float64) Path {
	y := math.Sqrt(area / (tan30 * 2))
	x := y * tan30
	var p Path
	p.MoveTo(0, -y)
	p.LineTo(x, 0)
	p.LineTo(0, y)
	p.LineTo(-x, 0)
	p.Close()
	return p
}

// ArrowPath returns the arrow outline for dir centred on the origin.
// Anything other than DirectionDown points up.
func ArrowPath(dir model.Direction) Path {
	var p Path
	if dir == model.DirectionDown {
		p.MoveTo(0, 5)
		p.LineTo(4, 0)
		p.LineTo(2, 0)
		p.LineTo(2, -5)
		p.LineTo(-2, -5)
		p.LineTo(-2, 0)
		p.LineTo(-4, 0)
	} else {
		p.MoveTo(0, -5)
		p.LineTo(-4, 0)
		p.LineTo(-2, 0)
		p.LineTo(-2, 5)
		p.LineTo(2, 5)
		p.LineTo(2, 0)
		p.LineTo(4, 0)
	}
	p.Close()
	return p
}

// ─── Marks ────────────────────────────────────────────────────────────────────

// Glyph is one positioned symbol. Circles and arrow discs are drawn from
// Radius; Outline holds the absolute diamond or arrow path, filled with
// OutlineFill.
type Glyph struct {
	Index       int              `json:"index"`
	Kind        model.SymbolKind `json:"kind"`
	Direction   model.Direction  `json:"direction,omitempty"`
	X           float64          `json:"x"`
	Y           float64          `json:"y"`
	Fill        string           `json:"fill"`
	Radius      float64          `json:"radius,omitempty"`
	Outline     Path             `json:"outline"`
	OutlineFill string           `json:"outline_fill,omitempty"`
}

// MarkStyle selects glyph shapes and colours.
type MarkStyle struct {
	// Color fills plain symbols without a per-point colour.
	Color string
	// Symbol is the default plain shape; empty means circle.
	Symbol model.SymbolKind
	// Arrows draws every point as an arrow glyph.
	Arrows    bool
	ColorUp   string
	ColorDown string
}

// Marks positions one glyph per point at (xAt(p.X), baselineY). Per-point
// colours and symbols override the style defaults.
func Marks(points []model.OrdinalPoint, xAt func(float64) float64, baselineY float64, st MarkStyle) []Glyph {
	glyphs := make([]Glyph, 0, len(points))
	for i, p := range points {
		g := Glyph{Index: i, X: xAt(p.X), Y: baselineY}
		if st.Arrows {
			g.Kind = model.SymbolArrow
			g.Direction = p.Arrow
			if g.Direction != model.DirectionDown {
				g.Direction = model.DirectionUp
			}
			g.Fill = st.ColorUp
			if g.Direction == model.DirectionDown {
				g.Fill = st.ColorDown
			}
			g.Radius = ArrowRadius
			g.Outline = ArrowPath(g.Direction).Translate(g.X, g.Y)
			g.OutlineFill = ArrowFill
		} else {
			g.Kind = symbolFor(p, st)
			g.Fill = st.Color
			switch g.Kind {
			case model.SymbolDiamond:
				g.Outline = DiamondPath(SymbolArea).Translate(g.X, g.Y)
			default:
				g.Kind = model.SymbolCircle
				g.Radius = CircleRadius(SymbolArea)
			}
		}
		if p.Color != "" {
			g.Fill = p.Color
		}
		if g.Kind == model.SymbolDiamond {
			g.OutlineFill = g.Fill
		}
		glyphs = append(glyphs, g)
	}
	return glyphs
}

func symbolFor(p model.OrdinalPoint, st MarkStyle) model.SymbolKind {
	if p.Symbol == model.SymbolCircle || p.Symbol == model.SymbolDiamond {
		return p.Symbol
	}
	if st.Symbol == model.SymbolDiamond {
		return model.SymbolDiamond
	}
	return model.SymbolCircle
}
