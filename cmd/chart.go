package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/app"
	"github.com/derickschaefer/chartline/internal/chart"
	"github.com/derickschaefer/chartline/internal/logger"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/scene"
)

// chartArgs validates the single <chart> positional argument.
func chartArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	_, err := scene.ParseKind(args[0])
	return err
}

var chartNames = func() []string {
	names := make([]string, len(scene.Kinds))
	for i, k := range scene.Kinds {
		names[i] = string(k)
	}
	return names
}()

// mountChart resolves the chart's style from config, mounts a surface and
// loads its dataset. The caller must close the returned host.
func mountChart(cmd *cobra.Command, deps *app.Deps, name string, in *inputFlags) (*host, error) {
	h, err := mountEmpty(deps, name)
	if err != nil {
		return nil, err
	}
	ds, err := in.load(deps, cmd.InOrStdin(), h.pointKind())
	if err != nil {
		h.close()
		return nil, err
	}
	if err := h.setData(ds); err != nil {
		h.close()
		return nil, err
	}
	deps.Logger.Debug().Str("chart", string(h.kind)).Str("dataset", ds.Name).Int("points", ds.Len()).Msg("data loaded")
	return h, nil
}

// mountEmpty mounts a chart with no data.
func mountEmpty(deps *app.Deps, name string) (*host, error) {
	kind, err := scene.ParseKind(name)
	if err != nil {
		return nil, err
	}
	st := deps.Config.Style(kind)
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%s style: %w", kind, err)
	}
	return newHost(kind, st, deps.Logger)
}

// ─── render ───────────────────────────────────────────────────────────────────

var renderInput inputFlags

var renderCmd = &cobra.Command{
	Use:   "render <" + strings.Join(chartNames, "|") + ">",
	Short: "Render a chart scene for the configured viewport",
	Long: `Render reads a JSONL dataset from stdin (or --dataset from the local store),
lays the chart out at --width x --height and writes the scene.

Temporal charts (area, stacked, timeline) read {"date","open","close"} lines;
ordinal charts (scatter, arrows) read {"x","color","arrow","symbol"} lines.

Formats: svg (default), png, json, table, ascii.`,
	Example: `  cat prices.jsonl | chartline render area --out area.svg
  chartline render stacked --dataset prices --resample monthly --format png --out bars.png
  chartline render arrows --dataset moves --format ascii
  chartline render timeline --dataset prices --width 1200 --height 320 --format json`,
	Args:      chartArgs,
	ValidArgs: chartNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat(render.SceneFormats, render.FormatSVG, deps.Config.Format)
		if err != nil {
			return err
		}

		h, err := mountChart(cmd, deps, args[0], &renderInput)
		if err != nil {
			return err
		}
		defer h.close()

		sw := logger.Start(deps.Logger, "render")
		h.resize(deps.Config.Viewport())
		if h.State() == chart.StateIdle && format != render.FormatJSON && format != render.FormatTable {
			return fmt.Errorf("viewport %gx%g has no area to draw on", deps.Config.Width, deps.Config.Height)
		}
		if format == render.FormatPNG && globalFlags.Out == "" && pipeline.IsTTY() {
			return fmt.Errorf("refusing to write PNG to a terminal; use --out or redirect stdout")
		}

		sc := h.Scene()
		if err := render.SceneTo(globalFlags.Out, sc, format); err != nil {
			return err
		}
		elapsed := sw.Stop()

		if globalFlags.Out != "" && !deps.Config.Quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s  (%s, %d marks, %s)\n",
				globalFlags.Out, h.State(), sc.Marks(), elapsed.Round(time.Microsecond))
		}
		return nil
	},
}

// ─── tooltip ──────────────────────────────────────────────────────────────────

var (
	tooltipInput inputFlags
	tooltipXs    []float64
)

var tooltipCmd = &cobra.Command{
	Use:   "tooltip <" + strings.Join(chartNames, "|") + ">",
	Short: "Print the tooltip shown for pointer columns",
	Long: `Tooltip lays the chart out like render does, then moves the pointer to each
--x column and prints the nearest point, the runner-up and the anchor.

A tooltip is only visible once the chart is drawn with data.`,
	Example: `  chartline tooltip area --dataset prices --x 120 --x 480
  cat moves.jsonl | chartline tooltip scatter --x 300 --format json`,
	Args:      chartArgs,
	ValidArgs: chartNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(tooltipXs) == 0 {
			return fmt.Errorf("at least one --x pointer column is required")
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat([]string{render.FormatTable, render.FormatJSON}, render.FormatTable, deps.Config.Format)
		if err != nil {
			return err
		}

		h, err := mountChart(cmd, deps, args[0], &tooltipInput)
		if err != nil {
			return err
		}
		defer h.close()
		h.resize(deps.Config.Viewport())

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		return h.probe(w, tooltipXs, format)
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(tooltipCmd)

	renderInput.register(renderCmd)
	tooltipInput.register(tooltipCmd)
	tooltipCmd.Flags().Float64SliceVar(&tooltipXs, "x", nil, "pointer column in pixels (repeatable)")
}
