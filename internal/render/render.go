// Package render encodes scenes, tooltips and datasets for output. Scenes are
// drawn as SVG or PNG through go-chart's renderers, or dumped as JSON, a
// summary table or a terminal preview; datasets are written as tables,
// JSON, JSONL, CSV, TSV or Markdown.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/derickschaefer/chartline/internal/scene"
)

// Format constants matching --format flag values.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatTable = "table"
	FormatASCII = "ascii"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// SceneFormats lists the formats accepted by Scene.
var SceneFormats = []string{FormatSVG, FormatPNG, FormatJSON, FormatTable, FormatASCII}

// DatasetFormats lists the formats accepted by Dataset.
var DatasetFormats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// Scene writes sc to w in the specified format.
func Scene(w io.Writer, sc scene.Scene, format string) error {
	switch format {
	case FormatSVG:
		return SVG(w, sc)
	case FormatPNG:
		return PNG(w, sc)
	case FormatJSON:
		return renderJSON(w, sc)
	case FormatTable:
		return SceneTable(w, sc)
	case FormatASCII:
		return ASCII(w, sc, ASCIIOptions{})
	default:
		return fmt.Errorf("unknown scene format %q (valid: svg, png, json, table, ascii)", format)
	}
}

// SceneTo writes to stdout by default; if path is non-empty, writes to file.
func SceneTo(path string, sc scene.Scene, format string) error {
	return to(path, func(w io.Writer) error { return Scene(w, sc, format) })
}

// to runs fn against stdout, or against a freshly created file at path.
func to(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	return renderJSON(w, v)
}

// JSONLine writes v as a single compact JSON line.
func JSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
