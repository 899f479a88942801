// Package analyze computes descriptive summaries and trends over datasets.
// All functions are pure; no I/O.
package analyze

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/derickschaefer/chartline/internal/model"
)

// ─── Fields ───────────────────────────────────────────────────────────────────

// Field names a numeric column of a dataset.
type Field string

const (
	FieldOpen  Field = "open"
	FieldClose Field = "close"
	FieldTotal Field = "total" // open + close, the stacked-bar top
	FieldX     Field = "x"
)

// Values extracts field from temporal points.
func Values(points []model.TemporalPoint, field Field) ([]float64, error) {
	var get func(model.TemporalPoint) float64
	switch field {
	case FieldOpen:
		get = func(p model.TemporalPoint) float64 { return p.Open }
	case FieldClose:
		get = func(p model.TemporalPoint) float64 { return p.Close }
	case FieldTotal:
		get = func(p model.TemporalPoint) float64 { return p.Open + p.Close }
	default:
		return nil, fmt.Errorf("unknown field %q (use open, close, total)", field)
	}
	return lo.Map(points, func(p model.TemporalPoint, _ int) float64 { return get(p) }), nil
}

// ─── Summary ──────────────────────────────────────────────────────────────────

// FieldStats holds descriptive statistics for one column.
type FieldStats struct {
	Field  Field   `json:"field"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`    // sample standard deviation
	Median float64 `json:"median"` // empirical
}

// Summary describes a dataset.
type Summary struct {
	Name    string         `json:"name"`
	Kind    model.Kind     `json:"kind"`
	Count   int            `json:"count"`
	From    *time.Time     `json:"from,omitempty"` // earliest date (temporal)
	To      *time.Time     `json:"to,omitempty"`   // latest date (temporal)
	Fields  []FieldStats   `json:"fields"`
	Arrows  map[string]int `json:"arrows,omitempty"`  // ordinal: count per direction
	Symbols map[string]int `json:"symbols,omitempty"` // ordinal: count per symbol
}

// Summarize computes a Summary. Empty datasets yield counts only.
func Summarize(ds model.Dataset) Summary {
	s := Summary{Name: ds.Name, Kind: ds.Kind, Count: ds.Len()}
	if s.Count == 0 {
		return s
	}
	if ds.Kind == model.KindOrdinal {
		xs := lo.Map(ds.Ordinal, func(p model.OrdinalPoint, _ int) float64 { return p.X })
		s.Fields = []FieldStats{describe(FieldX, xs)}
		s.Arrows = lo.CountValuesBy(ds.Ordinal, func(p model.OrdinalPoint) string {
			return string(lo.Ternary(p.Arrow == model.DirectionNone, "unset", p.Arrow))
		})
		s.Symbols = lo.CountValuesBy(ds.Ordinal, func(p model.OrdinalPoint) string {
			return string(lo.Ternary(p.Symbol == "", "default", p.Symbol))
		})
		return s
	}

	first := lo.MinBy(ds.Temporal, func(a, b model.TemporalPoint) bool { return a.Date.Before(b.Date) }).Date
	last := lo.MaxBy(ds.Temporal, func(a, b model.TemporalPoint) bool { return a.Date.After(b.Date) }).Date
	s.From, s.To = &first, &last
	for _, f := range []Field{FieldOpen, FieldClose, FieldTotal} {
		vals, _ := Values(ds.Temporal, f)
		s.Fields = append(s.Fields, describe(f, vals))
	}
	return s
}

func describe(field Field, vals []float64) FieldStats {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	fs := FieldStats{
		Field:  field,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(vals) > 1 {
		fs.Mean, fs.Std = stat.MeanStdDev(vals, nil)
	} else {
		fs.Mean = vals[0]
	}
	return fs
}

// ─── Trend ────────────────────────────────────────────────────────────────────

// TrendResult holds a least-squares fit of a field against time.
type TrendResult struct {
	Dataset      string  `json:"dataset"`
	Field        Field   `json:"field"`
	Slope        float64 `json:"slope"` // units per day
	Intercept    float64 `json:"intercept"`
	R2           float64 `json:"r2"`
	Direction    string  `json:"direction"`      // "up", "down", "flat"
	SlopePerYear float64 `json:"slope_per_year"` // slope * 365.25
}

// Trend fits field linearly against days since the earliest point.
func Trend(name string, points []model.TemporalPoint, field Field) (TrendResult, error) {
	tr := TrendResult{Dataset: name, Field: field}
	if len(points) < 2 {
		return tr, fmt.Errorf("trend: need at least 2 points, got %d", len(points))
	}
	ys, err := Values(points, field)
	if err != nil {
		return tr, fmt.Errorf("trend: %w", err)
	}
	t0 := lo.MinBy(points, func(a, b model.TemporalPoint) bool { return a.Date.Before(b.Date) }).Date
	xs := lo.Map(points, func(p model.TemporalPoint, _ int) float64 {
		return p.Date.Sub(t0).Hours() / 24
	})
	if floats.Max(xs) == 0 {
		return tr, fmt.Errorf("trend: all points share one date")
	}

	tr.Intercept, tr.Slope = stat.LinearRegression(xs, ys, nil, false)
	if floats.Min(ys) == floats.Max(ys) {
		tr.R2 = 1 // a flat series is fitted exactly
	} else {
		tr.R2 = stat.RSquared(xs, ys, nil, tr.Intercept, tr.Slope)
	}
	tr.SlopePerYear = tr.Slope * 365.25
	switch {
	case tr.SlopePerYear > 0.01:
		tr.Direction = "up"
	case tr.SlopePerYear < -0.01:
		tr.Direction = "down"
	default:
		tr.Direction = "flat"
	}
	return tr, nil
}
