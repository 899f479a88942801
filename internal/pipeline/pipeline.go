// Package pipeline reads and writes datasets and event scripts as JSONL,
// the canonical pipe format: one JSON object per line, blank lines and
// "//" comment lines ignored.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/util"
)

const maxLine = 1024 * 1024

// scanLines calls fn with each non-blank, non-comment line and its 1-based
// line number.
func scanLines(r io.Reader, fn func(n int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if err := fn(lineNum, []byte(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// ─── Datasets ─────────────────────────────────────────────────────────────────

// record is the union of the temporal and ordinal line shapes.
type record struct {
	Dataset string   `json:"dataset,omitempty"`
	Date    string   `json:"date,omitempty"`
	Open    *float64 `json:"open,omitempty"`
	Close   *float64 `json:"close,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Color   string   `json:"color,omitempty"`
	Arrow   string   `json:"arrow,omitempty"`
	Symbol  string   `json:"symbol,omitempty"`
}

func (r record) kind() model.Kind {
	if r.X != nil && r.Date == "" {
		return model.KindOrdinal
	}
	return model.KindTemporal
}

// ReadDataset reads a JSONL dataset from r. When kind is empty it is taken
// from the first record: a line with "x" and no "date" is ordinal. An empty
// input yields an empty dataset of the requested (or temporal) kind.
func ReadDataset(r io.Reader, kind model.Kind) (model.Dataset, error) {
	ds := model.Dataset{Kind: kind}
	err := scanLines(r, func(n int, line []byte) error {
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("line %d: invalid JSON: %w", n, err)
		}
		if ds.Kind == "" {
			ds.Kind = rec.kind()
		}
		if ds.Name == "" && rec.Dataset != "" {
			ds.Name = rec.Dataset
		}
		switch ds.Kind {
		case model.KindOrdinal:
			p, err := rec.ordinal()
			if err != nil {
				return fmt.Errorf("line %d: %w", n, err)
			}
			ds.Ordinal = append(ds.Ordinal, p)
		default:
			p, err := rec.temporal()
			if err != nil {
				return fmt.Errorf("line %d: %w", n, err)
			}
			ds.Temporal = append(ds.Temporal, p)
		}
		return nil
	})
	if err != nil {
		return model.Dataset{}, err
	}
	if ds.Kind == "" {
		ds.Kind = model.KindTemporal
	}
	return ds, nil
}

// ReadTemporal reads temporal points ({"date", "open", "close"}) from r.
func ReadTemporal(r io.Reader) (string, []model.TemporalPoint, error) {
	ds, err := ReadDataset(r, model.KindTemporal)
	return ds.Name, ds.Temporal, err
}

// ReadOrdinal reads ordinal points ({"x", "color", "arrow", "symbol"}) from r.
func ReadOrdinal(r io.Reader) (string, []model.OrdinalPoint, error) {
	ds, err := ReadDataset(r, model.KindOrdinal)
	return ds.Name, ds.Ordinal, err
}

func (r record) temporal() (model.TemporalPoint, error) {
	if r.Date == "" {
		return model.TemporalPoint{}, fmt.Errorf("missing date")
	}
	date, err := util.ParseDate(r.Date)
	if err != nil {
		return model.TemporalPoint{}, err
	}
	p := model.TemporalPoint{Date: date}
	if r.Open != nil {
		p.Open = *r.Open
	}
	if r.Close != nil {
		p.Close = *r.Close
	}
	if p.Open < 0 || p.Close < 0 {
		return model.TemporalPoint{}, fmt.Errorf("open and close must be non-negative, got open=%g close=%g", p.Open, p.Close)
	}
	return p, nil
}

func (r record) ordinal() (model.OrdinalPoint, error) {
	if r.X == nil {
		return model.OrdinalPoint{}, fmt.Errorf("missing x")
	}
	p := model.OrdinalPoint{
		X:      *r.X,
		Color:  r.Color,
		Arrow:  model.Direction(r.Arrow),
		Symbol: model.SymbolKind(r.Symbol),
	}
	if p.Color != "" && !util.ValidColor(p.Color) {
		return model.OrdinalPoint{}, fmt.Errorf("invalid color %q: expected #rgb or #rrggbb", p.Color)
	}
	switch p.Arrow {
	case model.DirectionNone, model.DirectionUp, model.DirectionDown:
	default:
		return model.OrdinalPoint{}, fmt.Errorf("invalid arrow %q: expected up or down", p.Arrow)
	}
	switch p.Symbol {
	case "", model.SymbolCircle, model.SymbolDiamond:
	default:
		return model.OrdinalPoint{}, fmt.Errorf("invalid symbol %q: expected circle or diamond", p.Symbol)
	}
	return p, nil
}

// WriteDataset writes ds as JSONL to w, one point per line.
func WriteDataset(w io.Writer, ds model.Dataset) error {
	enc := json.NewEncoder(w)
	if ds.Kind == model.KindOrdinal {
		for _, p := range ds.Ordinal {
			x := p.X
			rec := record{Dataset: ds.Name, X: &x, Color: p.Color, Arrow: string(p.Arrow), Symbol: string(p.Symbol)}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}
	for _, p := range ds.Temporal {
		open, cls := p.Open, p.Close
		rec := record{Dataset: ds.Name, Date: util.FormatDate(p.Date), Open: &open, Close: &cls}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// ─── Event scripts ────────────────────────────────────────────────────────────

// EventKind names a host event.
type EventKind string

const (
	EventResize EventKind = "resize"
	EventData   EventKind = "data"
	EventMove   EventKind = "move"
	EventLeave  EventKind = "leave"
)

// Event is one line of a session script. Width and Height apply to
// resize, X to move, Dataset to data (a stored dataset name).
type Event struct {
	Event   EventKind `json:"event"`
	Width   float64   `json:"width,omitempty"`
	Height  float64   `json:"height,omitempty"`
	X       float64   `json:"x,omitempty"`
	Dataset string    `json:"dataset,omitempty"`
}

// ReadEvents reads a session script from r.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	err := scanLines(r, func(n int, line []byte) error {
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("line %d: invalid JSON: %w", n, err)
		}
		switch ev.Event {
		case EventResize:
			if ev.Width < 0 || ev.Height < 0 {
				return fmt.Errorf("line %d: resize needs non-negative width and height", n)
			}
		case EventData:
			if ev.Dataset == "" {
				return fmt.Errorf("line %d: data event needs a dataset name", n)
			}
		case EventMove, EventLeave:
		default:
			return fmt.Errorf("line %d: unknown event %q (use resize, data, move, leave)", n, ev.Event)
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// WriteEvents writes events as JSONL to w.
func WriteEvents(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if stdout is a terminal (not a pipe).
func IsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
