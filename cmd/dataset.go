package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/analyze"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/store"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage named datasets in the local database",
	Long: `Datasets are JSONL point lists kept in the local bbolt database so that
render, tooltip and session can refer to them with --dataset NAME.

  cat prices.jsonl | chartline dataset put prices
  chartline dataset list
  chartline dataset info prices`,
}

// ─── dataset put ──────────────────────────────────────────────────────────────

var (
	datasetPutKind  string
	datasetPutInput inputFlags
)

var datasetPutCmd = &cobra.Command{
	Use:   "put <NAME>",
	Short: "Store a JSONL dataset read from stdin",
	Example: `  cat prices.jsonl | chartline dataset put prices
  cat moves.jsonl | chartline dataset put moves --kind ordinal
  cat daily.jsonl | chartline dataset put monthly --resample monthly --method last`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := store.ValidName(name); err != nil {
			return err
		}
		kind := model.Kind(datasetPutKind)
		switch kind {
		case "", model.KindTemporal, model.KindOrdinal:
		default:
			return fmt.Errorf("--kind must be temporal or ordinal, got %q", datasetPutKind)
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		ds, err := pipeline.ReadDataset(cmd.InOrStdin(), kind)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		if ds, err = datasetPutInput.apply(ds); err != nil {
			return err
		}
		ds.Name = name

		s, err := deps.Store()
		if err != nil {
			return err
		}
		if err := s.PutDataset(ds); err != nil {
			return fmt.Errorf("saving dataset: %w", err)
		}
		if !deps.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %s  (%d %s points)\n", name, ds.Len(), ds.Kind)
		}
		return nil
	},
}

// ─── dataset get ──────────────────────────────────────────────────────────────

var datasetGetInput inputFlags

var datasetGetCmd = &cobra.Command{
	Use:   "get <NAME>",
	Short: "Print the points of a stored dataset",
	Example: `  chartline dataset get prices
  chartline dataset get prices --format jsonl | chartline render area
  chartline dataset get prices --after 2024-01-01 --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat(render.DatasetFormats, render.FormatTable, deps.Config.Format)
		if err != nil {
			return err
		}
		if globalFlags.Format == "" && !pipeline.IsTTY() {
			format = render.FormatJSONL
		}

		s, err := deps.Store()
		if err != nil {
			return err
		}
		ds, err := requireDataset(s, args[0])
		if err != nil {
			return err
		}
		if ds, err = datasetGetInput.apply(ds); err != nil {
			return err
		}
		return render.DatasetTo(globalFlags.Out, ds, format)
	},
}

// ─── dataset list ─────────────────────────────────────────────────────────────

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored datasets",
	Example: `  chartline dataset list
  chartline dataset list --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat([]string{render.FormatTable, render.FormatJSON}, render.FormatTable, deps.Config.Format)
		if err != nil {
			return err
		}

		s, err := deps.Store()
		if err != nil {
			return err
		}
		infos, err := s.ListDatasets()
		if err != nil {
			return fmt.Errorf("reading store: %w", err)
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()

		if format == render.FormatJSON {
			return render.JSON(w, infos)
		}
		if len(infos) == 0 {
			fmt.Fprintln(w, "No datasets in local database.")
			fmt.Fprintln(w, "  Use: chartline dataset put <NAME> < data.jsonl")
			return nil
		}
		printSimpleTable(w, []string{"NAME", "KIND", "POINTS", "SAVED AT"}, func(add func(...string)) {
			for _, d := range infos {
				add(truncate(d.Name, 40), string(d.Kind), fmt.Sprintf("%d", d.Count), d.SavedAt.Format("2006-01-02 15:04"))
			}
		})
		fmt.Fprintf(w, "\n%d datasets  •  %s\n", len(infos), s.Path())
		return nil
	},
}

// ─── dataset info ─────────────────────────────────────────────────────────────

var datasetInfoCmd = &cobra.Command{
	Use:     "info <NAME>",
	Short:   "Describe a stored dataset: span, field statistics, glyph counts",
	Example: `  chartline dataset info prices`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat([]string{render.FormatTable, render.FormatJSON}, render.FormatTable, deps.Config.Format)
		if err != nil {
			return err
		}

		s, err := deps.Store()
		if err != nil {
			return err
		}
		ds, err := requireDataset(s, args[0])
		if err != nil {
			return err
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		return render.Summary(w, analyze.Summarize(ds), format)
	},
}

// ─── dataset delete ───────────────────────────────────────────────────────────

var datasetDeleteCmd = &cobra.Command{
	Use:     "delete <NAME>",
	Short:   "Delete a stored dataset",
	Example: `  chartline dataset delete prices`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		s, err := deps.Store()
		if err != nil {
			return err
		}
		found, err := s.DeleteDataset(args[0])
		if err != nil {
			return fmt.Errorf("deleting dataset: %w", err)
		}
		if !found {
			return fmt.Errorf("dataset %q not found", args[0])
		}
		if !deps.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted dataset %s\n", args[0])
		}
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetPutCmd)
	datasetCmd.AddCommand(datasetGetCmd)
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetInfoCmd)
	datasetCmd.AddCommand(datasetDeleteCmd)

	datasetPutCmd.Flags().StringVar(&datasetPutKind, "kind", "", "point kind: temporal|ordinal (default: detect from the first line)")
	datasetPutInput.registerTransforms(datasetPutCmd)
	datasetGetInput.registerTransforms(datasetGetCmd)
}
