package analyze_test

import (
	"math"
	"testing"
	"time"

	"github.com/derickschaefer/chartline/internal/analyze"
	"github.com/derickschaefer/chartline/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// makeDaily builds daily points from start with the given opens; close is
// twice the open.
func makeDaily(start time.Time, opens ...float64) []model.TemporalPoint {
	out := make([]model.TemporalPoint, len(opens))
	for i, v := range opens {
		out[i] = model.TemporalPoint{Date: start.AddDate(0, 0, i), Open: v, Close: 2 * v}
	}
	return out
}

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func field(s analyze.Summary, f analyze.Field) analyze.FieldStats {
	for _, fs := range s.Fields {
		if fs.Field == f {
			return fs
		}
	}
	return analyze.FieldStats{}
}

// ─── Summarize ────────────────────────────────────────────────────────────────

func TestSummarizeTemporal(t *testing.T) {
	pts := makeDaily(jan1, 3, 1, 2, 5, 4)
	pts[0], pts[4] = pts[4], pts[0] // dates out of order
	s := analyze.Summarize(model.Dataset{Name: "prices", Kind: model.KindTemporal, Temporal: pts})

	if s.Count != 5 {
		t.Errorf("Count: expected 5, got %d", s.Count)
	}
	if s.From == nil || !s.From.Equal(jan1) {
		t.Errorf("From: expected %s, got %v", jan1, s.From)
	}
	if s.To == nil || !s.To.Equal(jan1.AddDate(0, 0, 4)) {
		t.Errorf("To: unexpected %v", s.To)
	}
	if len(s.Fields) != 3 {
		t.Fatalf("expected open, close and total fields, got %d", len(s.Fields))
	}

	open := field(s, analyze.FieldOpen)
	if open.Min != 1 || open.Max != 5 {
		t.Errorf("open range: got [%g, %g]", open.Min, open.Max)
	}
	if !approxEqual(open.Mean, 3, 1e-9) {
		t.Errorf("open mean: expected 3, got %g", open.Mean)
	}
	if !approxEqual(open.Std, math.Sqrt(2.5), 1e-9) {
		t.Errorf("open std: expected sqrt(2.5), got %g", open.Std)
	}
	if open.Median != 3 {
		t.Errorf("open median: expected 3, got %g", open.Median)
	}

	total := field(s, analyze.FieldTotal)
	if total.Max != 15 {
		t.Errorf("total max: expected 15, got %g", total.Max)
	}
}

func TestSummarizeOrdinal(t *testing.T) {
	ds := model.Dataset{Kind: model.KindOrdinal, Ordinal: []model.OrdinalPoint{
		{X: 1, Arrow: model.DirectionUp},
		{X: 2, Arrow: model.DirectionDown, Symbol: model.SymbolDiamond},
		{X: 6, Arrow: model.DirectionUp},
		{X: 7},
	}}
	s := analyze.Summarize(ds)
	x := field(s, analyze.FieldX)
	if x.Min != 1 || x.Max != 7 || x.Mean != 4 {
		t.Errorf("x stats: unexpected %+v", x)
	}
	if s.Arrows["up"] != 2 || s.Arrows["down"] != 1 || s.Arrows["unset"] != 1 {
		t.Errorf("arrows: unexpected %v", s.Arrows)
	}
	if s.Symbols["diamond"] != 1 || s.Symbols["default"] != 3 {
		t.Errorf("symbols: unexpected %v", s.Symbols)
	}
	if s.From != nil {
		t.Error("ordinal summaries carry no dates")
	}
}

func TestSummarizeEmptyAndSingle(t *testing.T) {
	s := analyze.Summarize(model.Dataset{Name: "none", Kind: model.KindTemporal})
	if s.Count != 0 || len(s.Fields) != 0 {
		t.Errorf("empty: unexpected %+v", s)
	}

	s = analyze.Summarize(model.Dataset{Kind: model.KindTemporal, Temporal: makeDaily(jan1, 4)})
	open := field(s, analyze.FieldOpen)
	if open.Mean != 4 || open.Std != 0 || open.Median != 4 {
		t.Errorf("single point: unexpected %+v", open)
	}
}

// ─── Trend ────────────────────────────────────────────────────────────────────

func TestTrendLinear(t *testing.T) {
	pts := makeDaily(jan1, 1, 2, 3, 4, 5)
	tr, err := analyze.Trend("prices", pts, analyze.FieldClose)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(tr.Slope, 2, 1e-9) {
		t.Errorf("slope: expected 2/day, got %g", tr.Slope)
	}
	if !approxEqual(tr.Intercept, 2, 1e-9) {
		t.Errorf("intercept: expected 2, got %g", tr.Intercept)
	}
	if !approxEqual(tr.R2, 1, 1e-9) {
		t.Errorf("R2: expected 1, got %g", tr.R2)
	}
	if tr.Direction != "up" {
		t.Errorf("direction: expected up, got %q", tr.Direction)
	}
}

func TestTrendFlatAndDown(t *testing.T) {
	tr, err := analyze.Trend("", makeDaily(jan1, 2, 2, 2), analyze.FieldOpen)
	if err != nil {
		t.Fatalf("flat: %v", err)
	}
	if tr.Direction != "flat" || tr.R2 != 1 {
		t.Errorf("flat: unexpected %+v", tr)
	}

	tr, err = analyze.Trend("", makeDaily(jan1, 9, 6, 3), analyze.FieldTotal)
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if tr.Direction != "down" || !approxEqual(tr.Slope, -9, 1e-9) {
		t.Errorf("down: unexpected %+v", tr)
	}
}

func TestTrendErrors(t *testing.T) {
	if _, err := analyze.Trend("", makeDaily(jan1, 1), analyze.FieldOpen); err == nil {
		t.Error("expected error for a single point")
	}
	if _, err := analyze.Trend("", makeDaily(jan1, 1, 2), "volume"); err == nil {
		t.Error("expected error for an unknown field")
	}
	same := []model.TemporalPoint{{Date: jan1, Open: 1}, {Date: jan1, Open: 2}}
	if _, err := analyze.Trend("", same, analyze.FieldOpen); err == nil {
		t.Error("expected error when every point shares a date")
	}
}
