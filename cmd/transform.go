package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/transform"
	"github.com/derickschaefer/chartline/internal/util"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform a dataset (reads JSONL from stdin)",
	Long: `Transform operators read a JSONL dataset from stdin and write it to stdout,
as JSONL when piped and as a table on a terminal.

Pipeline example:
  chartline dataset get prices --format jsonl | chartline transform filter --after 2024-01-01
  cat prices.jsonl | chartline transform resample --freq monthly | chartline render stacked`,
}

// readStdinDataset reads a dataset of either kind from the command's stdin.
func readStdinDataset(cmd *cobra.Command) (model.Dataset, error) {
	ds, err := pipeline.ReadDataset(cmd.InOrStdin(), "")
	if err != nil {
		return ds, fmt.Errorf("reading stdin: %w", err)
	}
	return ds, nil
}

// ─── sort ─────────────────────────────────────────────────────────────────────

var transformSortCmd = &cobra.Command{
	Use:     "sort",
	Short:   "Sort points by date (temporal) or x (ordinal), keeping ties in order",
	Example: `  cat prices.jsonl | chartline transform sort`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := readStdinDataset(cmd)
		if err != nil {
			return err
		}
		if ds.Kind == model.KindOrdinal {
			ds.Ordinal = transform.SortByX(ds.Ordinal)
		} else {
			ds.Temporal = transform.SortByDate(ds.Temporal)
		}
		return writeTransformOutput(cmd, ds)
	},
}

// ─── slice / last ─────────────────────────────────────────────────────────────

var (
	transformSliceFrom int
	transformSliceTo   int
	transformLastN     int
)

var transformSliceCmd = &cobra.Command{
	Use:   "slice",
	Short: "Keep points [from, to); negative bounds count from the end",
	Example: `  cat prices.jsonl | chartline transform slice --from 10 --to 20
  cat prices.jsonl | chartline transform slice --from -5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := readStdinDataset(cmd)
		if err != nil {
			return err
		}
		to := transformSliceTo
		if !cmd.Flags().Changed("to") {
			to = ds.Len()
		}
		ds.Temporal = transform.Slice(ds.Temporal, transformSliceFrom, to)
		ds.Ordinal = transform.Slice(ds.Ordinal, transformSliceFrom, to)
		return writeTransformOutput(cmd, ds)
	},
}

var transformLastCmd = &cobra.Command{
	Use:     "last",
	Short:   "Keep the final N points",
	Example: `  cat prices.jsonl | chartline transform last --n 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := readStdinDataset(cmd)
		if err != nil {
			return err
		}
		ds.Temporal = transform.Last(ds.Temporal, transformLastN)
		ds.Ordinal = transform.Last(ds.Ordinal, transformLastN)
		return writeTransformOutput(cmd, ds)
	},
}

// ─── filter ───────────────────────────────────────────────────────────────────

var (
	transformFilterAfter  string
	transformFilterBefore string
	transformFilterMinX   float64
	transformFilterMaxX   float64
)

var transformFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter temporal points by date range or ordinal points by x bounds",
	Example: `  cat prices.jsonl | chartline transform filter --after 2024-01-01 --before 2024-04-01
  cat moves.jsonl | chartline transform filter --min-x 0 --max-x 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := readStdinDataset(cmd)
		if err != nil {
			return err
		}

		if ds.Kind == model.KindOrdinal {
			if transformFilterAfter != "" || transformFilterBefore != "" {
				return fmt.Errorf("--after and --before apply to temporal datasets; use --min-x/--max-x")
			}
			ds.Ordinal = transform.FilterX(ds.Ordinal, transformFilterMinX, transformFilterMaxX)
			return writeTransformOutput(cmd, ds)
		}

		var opts transform.FilterOptions
		if transformFilterAfter != "" {
			if opts.After, err = util.ParseDate(transformFilterAfter); err != nil {
				return fmt.Errorf("--after: %w", err)
			}
		}
		if transformFilterBefore != "" {
			if opts.Before, err = util.ParseDate(transformFilterBefore); err != nil {
				return fmt.Errorf("--before: %w", err)
			}
		}
		ds.Temporal = transform.Filter(ds.Temporal, opts)
		return writeTransformOutput(cmd, ds)
	},
}

// ─── resample ─────────────────────────────────────────────────────────────────

var (
	transformResampleFreq   string
	transformResampleMethod string
)

var transformResampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Aggregate temporal points to weekly, monthly, quarterly or annual periods",
	Example: `  cat daily.jsonl | chartline transform resample --freq monthly --method mean
  cat daily.jsonl | chartline transform resample --freq annual --method sum`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := readStdinDataset(cmd)
		if err != nil {
			return err
		}
		if ds.Kind != model.KindTemporal {
			return fmt.Errorf("resample needs a temporal dataset, got %s", ds.Kind)
		}
		out, err := transform.Resample(ds.Temporal,
			transform.ResampleFreq(transformResampleFreq),
			transform.ResampleMethod(transformResampleMethod),
		)
		if err != nil {
			return err
		}
		ds.Temporal = out
		return writeTransformOutput(cmd, ds)
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.AddCommand(transformSortCmd)
	transformCmd.AddCommand(transformSliceCmd)
	transformCmd.AddCommand(transformLastCmd)
	transformCmd.AddCommand(transformFilterCmd)
	transformCmd.AddCommand(transformResampleCmd)

	// slice / last flags
	transformSliceCmd.Flags().IntVar(&transformSliceFrom, "from", 0, "first index to keep")
	transformSliceCmd.Flags().IntVar(&transformSliceTo, "to", 0, "index to stop before (default: end)")
	transformLastCmd.Flags().IntVar(&transformLastN, "n", 10, "number of points to keep")

	// filter flags
	transformFilterCmd.Flags().StringVar(&transformFilterAfter, "after", "", "keep points with date > YYYY-MM-DD")
	transformFilterCmd.Flags().StringVar(&transformFilterBefore, "before", "", "keep points with date < YYYY-MM-DD")
	transformFilterCmd.Flags().Float64Var(&transformFilterMinX, "min-x", math.Inf(-1), "keep ordinal points with x >= min-x")
	transformFilterCmd.Flags().Float64Var(&transformFilterMaxX, "max-x", math.Inf(1), "keep ordinal points with x <= max-x")

	// resample flags
	transformResampleCmd.Flags().StringVar(&transformResampleFreq, "freq", string(transform.ResampleMonthly), "target frequency: weekly|monthly|quarterly|annual")
	transformResampleCmd.Flags().StringVar(&transformResampleMethod, "method", string(transform.ResampleMean), "aggregation method: mean|last|sum")
}

// ─── Output helper ────────────────────────────────────────────────────────────

// writeTransformOutput writes ds as JSONL (pipeline) or a table (terminal).
func writeTransformOutput(cmd *cobra.Command, ds model.Dataset) error {
	format := render.FormatJSONL
	if pipeline.IsTTY() {
		format = render.FormatTable
	}
	format, err := resolveFormat(render.DatasetFormats, format)
	if err != nil {
		return err
	}
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()
	return render.Dataset(w, ds, format)
}
