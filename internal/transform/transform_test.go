package transform_test

import (
	"math"
	"testing"
	"time"

	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/transform"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// date parses "YYYY-MM-DD" and panics on error. Test use only.
func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic("date: " + err.Error())
	}
	return t
}

// pt builds a temporal point.
func pt(d string, open, close float64) model.TemporalPoint {
	return model.TemporalPoint{Date: date(d), Open: open, Close: close}
}

// daily builds consecutive daily points starting at start, open = i, close = 2i.
func daily(start string, n int) []model.TemporalPoint {
	out := make([]model.TemporalPoint, n)
	for i := range out {
		out[i] = model.TemporalPoint{Date: date(start).AddDate(0, 0, i), Open: float64(i), Close: float64(2 * i)}
	}
	return out
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// ─── Sort ─────────────────────────────────────────────────────────────────────

func TestSortByDateStableCopy(t *testing.T) {
	in := []model.TemporalPoint{
		pt("2024-01-03", 1, 0),
		pt("2024-01-01", 2, 0),
		pt("2024-01-03", 3, 0),
		pt("2024-01-02", 4, 0),
	}
	out := transform.SortByDate(in)

	wantOpen := []float64{2, 4, 1, 3}
	for i, w := range wantOpen {
		if out[i].Open != w {
			t.Errorf("out[%d].Open = %g, want %g", i, out[i].Open, w)
		}
	}
	if in[0].Open != 1 || in[1].Open != 2 {
		t.Error("input slice was modified")
	}
}

func TestSortByX(t *testing.T) {
	in := []model.OrdinalPoint{{X: 3}, {X: 1, Color: "#a"}, {X: 1, Color: "#b"}}
	out := transform.SortByX(in)
	if out[0].Color != "#a" || out[1].Color != "#b" || out[2].X != 3 {
		t.Errorf("unexpected order: %+v", out)
	}
}

// ─── Slice ────────────────────────────────────────────────────────────────────

func TestSlice(t *testing.T) {
	in := []int{0, 1, 2, 3, 4}
	cases := []struct {
		from, to int
		want     []int
	}{
		{1, 3, []int{1, 2}},
		{-2, 5, []int{3, 4}},
		{0, 99, []int{0, 1, 2, 3, 4}},
		{4, 2, []int{}},
		{-99, 1, []int{0}},
	}
	for _, c := range cases {
		got := transform.Slice(in, c.from, c.to)
		if len(got) != len(c.want) {
			t.Errorf("Slice(%d, %d) = %v, want %v", c.from, c.to, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Slice(%d, %d) = %v, want %v", c.from, c.to, got, c.want)
				break
			}
		}
	}
}

func TestLast(t *testing.T) {
	in := daily("2024-01-01", 10)
	out := transform.Last(in, 3)
	if len(out) != 3 || !out[0].Date.Equal(date("2024-01-08")) {
		t.Errorf("Last(3): unexpected %+v", out)
	}
	if got := transform.Last(in, 50); len(got) != 10 {
		t.Errorf("Last(50): expected all 10, got %d", len(got))
	}
	if got := transform.Last(in, 0); len(got) != 0 {
		t.Errorf("Last(0): expected none, got %d", len(got))
	}
}

// ─── Filter ───────────────────────────────────────────────────────────────────

func TestFilterDateRange(t *testing.T) {
	in := daily("2024-01-01", 10)
	out := transform.Filter(in, transform.FilterOptions{
		After:  date("2024-01-03"),
		Before: date("2024-01-07"),
	})
	if len(out) != 3 {
		t.Fatalf("expected 3 points strictly inside the range, got %d", len(out))
	}
	if !out[0].Date.Equal(date("2024-01-04")) || !out[2].Date.Equal(date("2024-01-06")) {
		t.Errorf("unexpected bounds: %s .. %s", out[0].Date, out[2].Date)
	}

	if got := transform.Filter(in, transform.FilterOptions{}); len(got) != 10 {
		t.Errorf("open range: expected 10, got %d", len(got))
	}
}

func TestFilterX(t *testing.T) {
	in := []model.OrdinalPoint{{X: -1}, {X: 0}, {X: 5}, {X: 10}, {X: 11}}
	if got := transform.FilterX(in, 0, 10); len(got) != 3 {
		t.Errorf("expected 3 points in [0, 10], got %d", len(got))
	}
}

// ─── Resample ─────────────────────────────────────────────────────────────────

func TestResampleMonthlyMean(t *testing.T) {
	in := []model.TemporalPoint{
		pt("2024-02-10", 4, 40),
		pt("2024-01-05", 1, 10),
		pt("2024-01-20", 3, 30),
	}
	out, err := transform.Resample(in, transform.ResampleMonthly, transform.ResampleMean)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(out))
	}
	if !out[0].Date.Equal(date("2024-01-01")) || !out[1].Date.Equal(date("2024-02-01")) {
		t.Errorf("period starts: %s, %s", out[0].Date, out[1].Date)
	}
	if !approxEqual(out[0].Open, 2, 1e-9) || !approxEqual(out[0].Close, 20, 1e-9) {
		t.Errorf("January mean: got open=%g close=%g", out[0].Open, out[0].Close)
	}
}

func TestResampleMethods(t *testing.T) {
	in := daily("2024-01-01", 14) // Jan 1 (Mon) .. Jan 14 (Sun)

	sum, err := transform.Resample(in, transform.ResampleAnnual, transform.ResampleSum)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if len(sum) != 1 || sum[0].Open != 91 {
		t.Errorf("annual sum: got %+v, want open 91", sum)
	}

	last, err := transform.Resample(in, transform.ResampleWeekly, transform.ResampleLast)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	// Weeks start on Sunday: Dec 31, Jan 7, Jan 14.
	if len(last) != 3 {
		t.Fatalf("weekly: expected 3 weeks, got %d", len(last))
	}
	if last[0].Open != 5 || last[1].Open != 12 || last[2].Open != 13 {
		t.Errorf("weekly last: got %g %g %g", last[0].Open, last[1].Open, last[2].Open)
	}

	q, err := transform.Resample(in, transform.ResampleQuarterly, transform.ResampleLast)
	if err != nil || len(q) != 1 || !q[0].Date.Equal(date("2024-01-01")) {
		t.Errorf("quarterly: got %+v, %v", q, err)
	}
}

func TestResampleErrors(t *testing.T) {
	if _, err := transform.Resample(nil, "hourly", transform.ResampleMean); err == nil {
		t.Error("expected error for unknown frequency")
	}
	if _, err := transform.Resample(nil, transform.ResampleMonthly, "median"); err == nil {
		t.Error("expected error for unknown method")
	}
	out, err := transform.Resample(nil, transform.ResampleMonthly, transform.ResampleMean)
	if err != nil || len(out) != 0 {
		t.Errorf("empty input: got %v, %v", out, err)
	}
}
