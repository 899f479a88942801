package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/app"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/store"
	"github.com/derickschaefer/chartline/internal/transform"
	"github.com/derickschaefer/chartline/internal/util"
)

// resolveFormat returns the effective format: the --format flag when set,
// then the first candidate that is allowed, then def.
func resolveFormat(allowed []string, def string, candidates ...string) (string, error) {
	if f := globalFlags.Format; f != "" {
		if !slices.Contains(allowed, f) {
			return "", fmt.Errorf("unsupported format %q (use %s)", f, strings.Join(allowed, "|"))
		}
		return f, nil
	}
	for _, c := range candidates {
		if slices.Contains(allowed, c) {
			return c, nil
		}
	}
	return def, nil
}

// outputWriter returns the writer for command output: the --out file when
// set, otherwise def. The returned close func must always be called.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// ─── Dataset input ────────────────────────────────────────────────────────────

// inputFlags selects where a command's dataset comes from and which
// transforms are applied before it is used.
type inputFlags struct {
	Dataset  string
	After    string
	Before   string
	Last     int
	Resample string
	Method   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Dataset, "dataset", "", "read the named dataset from the local store instead of stdin")
	f.registerTransforms(cmd)
}

// registerTransforms adds the transform flags without --dataset.
func (f *inputFlags) registerTransforms(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.After, "after", "", "keep temporal points dated after YYYY-MM-DD")
	fl.StringVar(&f.Before, "before", "", "keep temporal points dated before YYYY-MM-DD")
	fl.IntVar(&f.Last, "last", 0, "keep only the final N points")
	fl.StringVar(&f.Resample, "resample", "", "aggregate temporal points: weekly|monthly|quarterly|annual")
	fl.StringVar(&f.Method, "method", string(transform.ResampleMean), "resample aggregation: mean|last|sum")
}

// load reads the dataset from the store or from in, expecting kind when
// it is set, and applies the transform flags.
func (f *inputFlags) load(deps *app.Deps, in io.Reader, kind model.Kind) (model.Dataset, error) {
	var ds model.Dataset
	if f.Dataset != "" {
		s, err := deps.Store()
		if err != nil {
			return ds, err
		}
		got, ok, err := s.GetDataset(f.Dataset)
		if err != nil {
			return ds, fmt.Errorf("reading dataset: %w", err)
		}
		if !ok {
			return ds, fmt.Errorf("dataset %q not found\n\n  Use: chartline dataset put %s < data.jsonl", f.Dataset, f.Dataset)
		}
		ds = got
	} else {
		if pipeline.IsTTY() && in == os.Stdin {
			deps.Logger.Warn().Msg("reading dataset from terminal; pipe JSONL or use --dataset")
		}
		got, err := pipeline.ReadDataset(in, kind)
		if err != nil {
			return ds, fmt.Errorf("reading stdin: %w", err)
		}
		ds = got
	}
	if kind != "" && ds.Kind != kind {
		return ds, fmt.Errorf("dataset %q is %s, this chart needs %s points", ds.Name, ds.Kind, kind)
	}
	return f.apply(ds)
}

// apply runs the filter, resample and last transforms in that order.
func (f *inputFlags) apply(ds model.Dataset) (model.Dataset, error) {
	if ds.Kind == model.KindTemporal {
		var opts transform.FilterOptions
		var errs util.MultiError
		if f.After != "" {
			t, err := util.ParseDate(f.After)
			if err != nil {
				errs.Add(fmt.Errorf("--after: %w", err))
			}
			opts.After = t
		}
		if f.Before != "" {
			t, err := util.ParseDate(f.Before)
			if err != nil {
				errs.Add(fmt.Errorf("--before: %w", err))
			}
			opts.Before = t
		}
		if err := errs.Err(); err != nil {
			return ds, err
		}
		points := transform.Filter(ds.Temporal, opts)
		if f.Resample != "" {
			out, err := transform.Resample(points, transform.ResampleFreq(f.Resample), transform.ResampleMethod(f.Method))
			if err != nil {
				return ds, err
			}
			points = out
		}
		if f.Last > 0 {
			points = transform.Last(points, f.Last)
		}
		ds.Temporal = points
		return ds, nil
	}

	if f.After != "" || f.Before != "" || f.Resample != "" {
		return ds, fmt.Errorf("--after, --before and --resample apply to temporal datasets only")
	}
	if f.Last > 0 {
		ds.Ordinal = transform.Last(ds.Ordinal, f.Last)
	}
	return ds, nil
}

// ─── Store lookups ────────────────────────────────────────────────────────────

// requireDataset fetches name from the store or returns a not-found error.
func requireDataset(s *store.Store, name string) (model.Dataset, error) {
	ds, ok, err := s.GetDataset(name)
	if err != nil {
		return ds, fmt.Errorf("reading dataset: %w", err)
	}
	if !ok {
		return ds, fmt.Errorf("dataset %q not found", name)
	}
	return ds, nil
}

// printSimpleTable renders a bordered table through render.Table.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	var rows [][]string
	fill(func(cols ...string) {
		rows = append(rows, cols)
	})
	render.Table(w, headers, rows)
}

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
