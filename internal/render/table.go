package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/derickschaefer/chartline/internal/analyze"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/scene"
	"github.com/derickschaefer/chartline/internal/util"
)

// ─── Generic tables ───────────────────────────────────────────────────────────

// Table writes a bordered, left-aligned table.
func Table(w io.Writer, header []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(rows)
	tw.Render()
}

// KV writes a two-column FIELD/VALUE table.
func KV(w io.Writer, rows [][]string) {
	Table(w, []string{"FIELD", "VALUE"}, rows)
}

// ─── Scene ────────────────────────────────────────────────────────────────────

// SceneTable summarises what a scene draws, followed by its axis ticks.
func SceneTable(w io.Writer, sc scene.Scene) error {
	m := sc.Margins
	KV(w, [][]string{
		{"Chart", string(sc.Kind)},
		{"Viewport", fmt.Sprintf("%gx%g", sc.Viewport.Width, sc.Viewport.Height)},
		{"Margins", fmt.Sprintf("%g %g %g %g", m.Top, m.Right, m.Bottom, m.Left)},
		{"Grid lines", fmt.Sprintf("%d", len(sc.Grid))},
		{"Regions", fmt.Sprintf("%d", len(sc.Regions))},
		{"Bars", fmt.Sprintf("%d", len(sc.Bars))},
		{"Glyphs", fmt.Sprintf("%d", len(sc.Glyphs))},
		{"Ticks", fmt.Sprintf("%d", sc.TickCount())},
	})
	if sc.TickCount() == 0 {
		return nil
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"AXIS", "POS", "LABEL"})
	tw.SetBorder(true)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})
	tw.SetAutoWrapText(false)
	for _, a := range sc.Axes {
		for _, t := range a.Ticks {
			tw.Append([]string{string(a.Orient), fmt.Sprintf("%.1f", t.Pos), t.Label})
		}
	}
	tw.Render()
	return nil
}

// ─── Tooltips ─────────────────────────────────────────────────────────────────

// Probe is the tooltip observed for one pointer position.
type Probe[P any] struct {
	Pointer float64 `json:"pointer"`
	model.TooltipState[P]
}

// Tooltips writes probes as a table or, for json, as a JSON array. describe
// formats one point for the table.
func Tooltips[P any](w io.Writer, probes []Probe[P], format string, describe func(P) string) error {
	if format == FormatJSON {
		return renderJSON(w, probes)
	}
	cell := func(p *P) string {
		if p == nil {
			return "-"
		}
		return describe(*p)
	}
	rows := make([][]string, len(probes))
	for i, pr := range probes {
		anchor := "-"
		if pr.Visible {
			anchor = fmt.Sprintf("%.1f,%.1f", pr.AnchorX, pr.AnchorY)
		}
		rows[i] = []string{
			util.FormatValue(pr.Pointer),
			fmt.Sprintf("%t", pr.Visible),
			anchor,
			cell(pr.Left),
			cell(pr.Right),
		}
	}
	Table(w, []string{"POINTER", "VISIBLE", "ANCHOR", "NEAREST", "RUNNER-UP"}, rows)
	return nil
}

// DescribeTemporal formats a temporal point as "2024-01-02 open=1 close=2".
func DescribeTemporal(p model.TemporalPoint) string {
	return fmt.Sprintf("%s open=%s close=%s", util.FormatDate(p.Date), util.FormatValue(p.Open), util.FormatValue(p.Close))
}

// DescribeOrdinal formats an ordinal point as "x=3 up".
func DescribeOrdinal(p model.OrdinalPoint) string {
	parts := []string{"x=" + util.FormatValue(p.X)}
	for _, s := range []string{string(p.Arrow), string(p.Symbol), p.Color} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// ─── Datasets ─────────────────────────────────────────────────────────────────

// Dataset writes the points of ds in the specified format.
func Dataset(w io.Writer, ds model.Dataset, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, ds)
	case FormatJSONL:
		return pipeline.WriteDataset(w, ds)
	case FormatCSV:
		return datasetDelimited(w, ds, ',')
	case FormatTSV:
		return datasetDelimited(w, ds, '\t')
	case FormatMD:
		return datasetMarkdown(w, ds)
	case FormatTable, "":
		header, rows := datasetRows(ds)
		Table(w, header, rows)
		return nil
	default:
		return fmt.Errorf("unknown dataset format %q (valid: %s)", format, strings.Join(DatasetFormats, ", "))
	}
}

// DatasetTo writes to stdout by default; if path is non-empty, writes to file.
func DatasetTo(path string, ds model.Dataset, format string) error {
	return to(path, func(w io.Writer) error { return Dataset(w, ds, format) })
}

func datasetRows(ds model.Dataset) ([]string, [][]string) {
	if ds.Kind == model.KindOrdinal {
		rows := make([][]string, len(ds.Ordinal))
		for i, p := range ds.Ordinal {
			rows[i] = []string{util.FormatValue(p.X), p.Color, string(p.Arrow), string(p.Symbol)}
		}
		return []string{"X", "COLOR", "ARROW", "SYMBOL"}, rows
	}
	rows := make([][]string, len(ds.Temporal))
	for i, p := range ds.Temporal {
		rows[i] = []string{util.FormatDate(p.Date), util.FormatValue(p.Open), util.FormatValue(p.Close)}
	}
	return []string{"DATE", "OPEN", "CLOSE"}, rows
}

func datasetDelimited(w io.Writer, ds model.Dataset, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	header, rows := datasetRows(ds)
	_ = cw.Write(lower(header))
	_ = cw.WriteAll(rows)
	cw.Flush()
	return cw.Error()
}

func datasetMarkdown(w io.Writer, ds model.Dataset) error {
	header, rows := datasetRows(ds)
	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat("----|", len(header)))
	for _, r := range rows {
		for i := range r {
			r[i] = mdEscape(r[i])
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(r, " | "))
	}
	return nil
}

// ─── Analysis ─────────────────────────────────────────────────────────────────

// Summary writes a dataset summary as a table or JSON.
func Summary(w io.Writer, s analyze.Summary, format string) error {
	if format == FormatJSON {
		return renderJSON(w, s)
	}
	rows := [][]string{
		{"Name", s.Name},
		{"Kind", string(s.Kind)},
		{"Points", fmt.Sprintf("%d", s.Count)},
	}
	if s.From != nil && s.To != nil {
		rows = append(rows, []string{"Span", util.FormatDate(*s.From) + " – " + util.FormatDate(*s.To)})
	}
	for _, k := range sortedCounts(s.Arrows) {
		rows = append(rows, []string{"Arrow " + k, fmt.Sprintf("%d", s.Arrows[k])})
	}
	for _, k := range sortedCounts(s.Symbols) {
		rows = append(rows, []string{"Symbol " + k, fmt.Sprintf("%d", s.Symbols[k])})
	}
	KV(w, rows)
	if len(s.Fields) == 0 {
		return nil
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"FIELD", "MIN", "MAX", "MEAN", "STD", "MEDIAN"})
	tw.SetBorder(true)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, f := range s.Fields {
		tw.Append([]string{
			string(f.Field),
			util.FormatValue(f.Min),
			util.FormatValue(f.Max),
			util.FormatValue(f.Mean),
			util.FormatValue(f.Std),
			util.FormatValue(f.Median),
		})
	}
	tw.Render()
	return nil
}

// Trend writes a trend fit as a table or JSON.
func Trend(w io.Writer, t analyze.TrendResult, format string) error {
	if format == FormatJSON {
		return renderJSON(w, t)
	}
	KV(w, [][]string{
		{"Dataset", t.Dataset},
		{"Field", string(t.Field)},
		{"Direction", t.Direction},
		{"Slope / day", util.FormatValue(t.Slope)},
		{"Slope / year", util.FormatValue(t.SlopePerYear)},
		{"Intercept", util.FormatValue(t.Intercept)},
		{"R²", util.FormatValue(t.R2)},
	})
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func lower(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func sortedCounts(m map[string]int) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
