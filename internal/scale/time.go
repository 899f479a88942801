package scale

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
)

// ─── Time ─────────────────────────────────────────────────────────────────────

// Time is a continuous scale over UTC instants. Positions are computed from
// millisecond timestamps with the same math as Linear.
type Time struct {
	lin Linear
}

// NewTime builds a time scale over extent. When nice is set the bounds are
// floored and ceiled to the tick interval chosen for DefaultTicks.
func NewTime(extent [2]time.Time, rng [2]float64, nice bool) Time {
	s := Time{lin: NewLinear([2]float64{millis(extent[0]), millis(extent[1])}, rng)}
	if nice {
		s = s.Nice(DefaultTicks)
	}
	return s
}

// Map returns the pixel position of t.
func (s Time) Map(t time.Time) float64 { return s.lin.Map(millis(t)) }

// Invert returns the instant at pixel px.
func (s Time) Invert(px float64) time.Time { return fromMillis(s.lin.Invert(px)) }

// Domain returns the domain bounds.
func (s Time) Domain() [2]time.Time {
	d := s.lin.Domain()
	return [2]time.Time{fromMillis(d[0]), fromMillis(d[1])}
}

// Range returns the pixel range.
func (s Time) Range() [2]float64 { return s.lin.Range() }

// Degenerate reports whether the domain is a single instant.
func (s Time) Degenerate() bool { return s.lin.Degenerate() }

// Nice rounds the domain outward to the tick interval for count ticks.
func (s Time) Nice(count int) Time {
	d := s.Domain()
	start, stop := d[0], d[1]
	reverse := stop.Before(start)
	if reverse {
		start, stop = stop, start
	}
	iv, ok := chooseInterval(start, stop, count)
	if !ok || !iv.calendar() {
		s.lin = s.lin.Nice(count)
		return s
	}
	start = iv.floor(start)
	if c := iv.floor(stop); c.Before(stop) {
		stop = iv.offset(c, iv.step)
	}
	if reverse {
		start, stop = stop, start
	}
	s.lin.d0, s.lin.d1 = millis(start), millis(stop)
	return s
}

// Ticks returns aligned UTC instants spanning the domain, ascending.
func (s Time) Ticks(count int) []time.Time {
	if count <= 0 {
		return nil
	}
	d := s.Domain()
	start, stop := d[0], d[1]
	if stop.Before(start) {
		start, stop = stop, start
	}
	if start.Equal(stop) {
		return []time.Time{start}
	}
	iv, ok := chooseInterval(start, stop, count)
	if !ok {
		return nil
	}
	if !iv.calendar() {
		return lo.Map(ticks(millis(start), millis(stop), float64(count)), func(ms float64, _ int) time.Time {
			return fromMillis(ms)
		})
	}
	return iv.rangeIncl(start, stop)
}

// TickFormat labels an instant with the coarsest unit that still
// distinguishes it: ".500", ":30", "03:15", "03 PM", "Mon 02", "Jan 02",
// "January" or "2024".
func (s Time) TickFormat(t time.Time) string {
	return MultiFormat(t)
}

// MultiFormat is the default time tick formatter.
func MultiFormat(t time.Time) string {
	t = t.UTC()
	switch {
	case unitSecond.floor(t).Before(t):
		return fmt.Sprintf(".%03d", t.Nanosecond()/int(time.Millisecond))
	case unitMinute.floor(t).Before(t):
		return t.Format(":05")
	case unitHour.floor(t).Before(t):
		return t.Format("03:04")
	case unitDay.floor(t).Before(t):
		return t.Format("03 PM")
	case unitMonth.floor(t).Before(t):
		if unitWeek.floor(t).Before(t) {
			return t.Format("Mon 02")
		}
		return t.Format("Jan 02")
	case unitYear.floor(t).Before(t):
		return t.Format("January")
	default:
		return t.Format("2006")
	}
}

// TimeExtent returns the earliest and latest instants. ok is false when
// times is empty.
func TimeExtent(times []time.Time) (ext [2]time.Time, ok bool) {
	if len(times) == 0 {
		return ext, false
	}
	first := lo.MinBy(times, func(a, b time.Time) bool { return a.Before(b) })
	last := lo.MaxBy(times, func(a, b time.Time) bool { return a.After(b) })
	return [2]time.Time{first, last}, true
}

// ─── Calendar intervals ───────────────────────────────────────────────────────

type unit int

const (
	unitMilli unit = iota
	unitSecond
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

const (
	msSecond = 1e3
	msMinute = msSecond * 60
	msHour   = msMinute * 60
	msDay    = msHour * 24
	msWeek   = msDay * 7
	msMonth  = msDay * 30
	msYear   = msDay * 365
)

func (u unit) floor(t time.Time) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch u {
	case unitSecond:
		return t.Truncate(time.Second)
	case unitMinute:
		return t.Truncate(time.Minute)
	case unitHour:
		return t.Truncate(time.Hour)
	case unitDay:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case unitWeek:
		return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, time.UTC)
	case unitMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case unitYear:
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(time.Millisecond)
	}
}

func (u unit) offset(t time.Time, n int) time.Time {
	switch u {
	case unitSecond:
		return t.Add(time.Duration(n) * time.Second)
	case unitMinute:
		return t.Add(time.Duration(n) * time.Minute)
	case unitHour:
		return t.Add(time.Duration(n) * time.Hour)
	case unitDay:
		return t.AddDate(0, 0, n)
	case unitWeek:
		return t.AddDate(0, 0, 7*n)
	case unitMonth:
		return t.AddDate(0, n, 0)
	case unitYear:
		return t.AddDate(n, 0, 0)
	default:
		return t.Add(time.Duration(n) * time.Millisecond)
	}
}

// field is the calendar field that every(step) filters on.
func (u unit) field(t time.Time) int {
	switch u {
	case unitSecond:
		return t.Second()
	case unitMinute:
		return t.Minute()
	case unitHour:
		return t.Hour()
	case unitDay:
		return t.Day() - 1
	case unitMonth:
		return int(t.Month()) - 1
	case unitYear:
		return t.Year()
	default:
		return 0
	}
}

// interval is a calendar unit taken every step fields.
type interval struct {
	unit     unit
	step     int
	duration float64
}

func (iv interval) calendar() bool { return iv.unit != unitMilli }

func (iv interval) floor(t time.Time) time.Time {
	f := iv.unit.floor(t)
	for iv.step > 1 && iv.unit.field(f)%iv.step != 0 {
		f = iv.unit.offset(f, -1)
	}
	return f
}

func (iv interval) offset(t time.Time, n int) time.Time {
	return iv.unit.offset(t, n)
}

// rangeIncl lists every aligned instant in [start, stop].
func (iv interval) rangeIncl(start, stop time.Time) []time.Time {
	t := iv.unit.floor(start)
	if t.Before(start) {
		t = iv.unit.offset(t, 1)
	}
	var out []time.Time
	for !t.After(stop) {
		if iv.step <= 1 || iv.unit.field(t)%iv.step == 0 {
			out = append(out, t)
		}
		t = iv.unit.offset(t, 1)
	}
	return out
}

var tickIntervals = []interval{
	{unitSecond, 1, msSecond},
	{unitSecond, 5, 5 * msSecond},
	{unitSecond, 15, 15 * msSecond},
	{unitSecond, 30, 30 * msSecond},
	{unitMinute, 1, msMinute},
	{unitMinute, 5, 5 * msMinute},
	{unitMinute, 15, 15 * msMinute},
	{unitMinute, 30, 30 * msMinute},
	{unitHour, 1, msHour},
	{unitHour, 3, 3 * msHour},
	{unitHour, 6, 6 * msHour},
	{unitHour, 12, 12 * msHour},
	{unitDay, 1, msDay},
	{unitDay, 2, 2 * msDay},
	{unitWeek, 1, msWeek},
	{unitMonth, 1, msMonth},
	{unitMonth, 3, 3 * msMonth},
	{unitYear, 1, msYear},
}

// chooseInterval picks the interval whose duration is closest to the span
// divided by count.
func chooseInterval(start, stop time.Time, count int) (interval, bool) {
	if count <= 0 {
		return interval{}, false
	}
	target := math.Abs(millis(stop)-millis(start)) / float64(count)
	i := sort.Search(len(tickIntervals), func(i int) bool {
		return tickIntervals[i].duration > target
	})
	switch {
	case i == len(tickIntervals):
		k := tickStep(millis(start)/msYear, millis(stop)/msYear, float64(count))
		return interval{unit: unitYear, step: int(math.Max(1, math.Round(k))), duration: msYear}, true
	case i == 0:
		return interval{unit: unitMilli, step: 1, duration: 1}, true
	}
	if target/tickIntervals[i-1].duration < tickIntervals[i].duration/target {
		return tickIntervals[i-1], true
	}
	return tickIntervals[i], true
}

func millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func fromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(math.Round(ms))).UTC()
}
