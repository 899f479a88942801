// Package transform implements stateless dataset operators. Each takes a
// slice of points and returns a new slice; inputs are never modified.
package transform

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/derickschaefer/chartline/internal/model"
)

// ─── Sort ─────────────────────────────────────────────────────────────────────

// SortByDate returns a copy of points in ascending date order. Points with
// equal dates keep their input order.
func SortByDate(points []model.TemporalPoint) []model.TemporalPoint {
	out := slices.Clone(points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SortByX returns a copy of points in ascending X order, stable.
func SortByX(points []model.OrdinalPoint) []model.OrdinalPoint {
	out := slices.Clone(points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// ─── Slice ────────────────────────────────────────────────────────────────────

// Slice returns a copy of points[from:to] with both bounds clamped to the
// slice. Negative bounds count back from the end.
func Slice[P any](points []P, from, to int) []P {
	n := len(points)
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	from, to = clamp(from), clamp(to)
	if from >= to {
		return []P{}
	}
	return slices.Clone(points[from:to])
}

// Last returns a copy of the final n points.
func Last[P any](points []P, n int) []P {
	if n <= 0 {
		return []P{}
	}
	return Slice(points, max(len(points)-n, 0), len(points))
}

// ─── Filter ───────────────────────────────────────────────────────────────────

// FilterOptions describes a date range. A zero bound is open.
type FilterOptions struct {
	After  time.Time // keep points with date > After
	Before time.Time // keep points with date < Before
}

// Filter returns the points inside the date range in opts.
func Filter(points []model.TemporalPoint, opts FilterOptions) []model.TemporalPoint {
	return lo.Filter(points, func(p model.TemporalPoint, _ int) bool {
		if !opts.After.IsZero() && !p.Date.After(opts.After) {
			return false
		}
		if !opts.Before.IsZero() && !p.Date.Before(opts.Before) {
			return false
		}
		return true
	})
}

// FilterX keeps ordinal points with minX <= X <= maxX.
func FilterX(points []model.OrdinalPoint, minX, maxX float64) []model.OrdinalPoint {
	return lo.Filter(points, func(p model.OrdinalPoint, _ int) bool {
		return p.X >= minX && p.X <= maxX
	})
}

// ─── Resample ─────────────────────────────────────────────────────────────────

// ResampleFreq is the target frequency for resampling.
type ResampleFreq string

const (
	ResampleWeekly    ResampleFreq = "weekly"
	ResampleMonthly   ResampleFreq = "monthly"
	ResampleQuarterly ResampleFreq = "quarterly"
	ResampleAnnual    ResampleFreq = "annual"
)

// ResampleMethod is the aggregation method for resampling.
type ResampleMethod string

const (
	ResampleMean ResampleMethod = "mean"
	ResampleLast ResampleMethod = "last"
	ResampleSum  ResampleMethod = "sum"
)

// Resample aggregates open and close independently per period. Each output
// point is dated at the start of its period; periods come out in order.
func Resample(points []model.TemporalPoint, freq ResampleFreq, method ResampleMethod) ([]model.TemporalPoint, error) {
	switch freq {
	case ResampleWeekly, ResampleMonthly, ResampleQuarterly, ResampleAnnual:
	default:
		return nil, fmt.Errorf("resample: unknown frequency %q (use weekly, monthly, quarterly, annual)", freq)
	}
	var agg func([]float64) float64
	switch method {
	case ResampleMean:
		agg = func(v []float64) float64 { return stat.Mean(v, nil) }
	case ResampleLast:
		agg = func(v []float64) float64 { return v[len(v)-1] }
	case ResampleSum:
		agg = lo.Sum[float64]
	default:
		return nil, fmt.Errorf("resample: unknown method %q (use mean, last, sum)", method)
	}
	if len(points) == 0 {
		return []model.TemporalPoint{}, nil
	}

	type bucket struct {
		start       time.Time
		open, close []float64
	}
	groups := make(map[string]*bucket)
	for _, p := range SortByDate(points) {
		key, start := periodKey(p.Date, freq)
		b, ok := groups[key]
		if !ok {
			b = &bucket{start: start}
			groups[key] = b
		}
		b.open = append(b.open, p.Open)
		b.close = append(b.close, p.Close)
	}

	keys := lo.Keys(groups)
	sort.Strings(keys)
	out := make([]model.TemporalPoint, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		out = append(out, model.TemporalPoint{Date: b.start, Open: agg(b.open), Close: agg(b.close)})
	}
	return out, nil
}

// periodKey returns a sortable string key and canonical start date for a period.
func periodKey(t time.Time, freq ResampleFreq) (string, time.Time) {
	t = t.UTC()
	switch freq {
	case ResampleWeekly:
		start := time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01-02"), start
	case ResampleQuarterly:
		q := (t.Month()-1)/3 + 1
		start := time.Date(t.Year(), time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%04d-Q%d", t.Year(), q), start
	case ResampleAnnual:
		start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%04d", t.Year()), start
	default: // monthly
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%04d-%02d", t.Year(), t.Month()), start
	}
}
