package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/analyze"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a dataset (reads JSONL from stdin or --dataset)",
	Long: `Analyze operators read a dataset and print results.

Examples:
  cat prices.jsonl | chartline analyze summary
  chartline analyze trend --dataset prices --field total
  cat daily.jsonl | chartline transform resample --freq monthly | chartline analyze trend`,
}

// ─── analyze summary ─────────────────────────────────────────────────────────

var analyzeSummaryInput inputFlags

var analyzeSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Descriptive statistics: span, min, max, mean, std, median per field",
	Example: `  cat prices.jsonl | chartline analyze summary
  chartline analyze summary --dataset moves --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat([]string{render.FormatTable, render.FormatJSON}, render.FormatTable)
		if err != nil {
			return err
		}
		ds, err := analyzeSummaryInput.load(deps, cmd.InOrStdin(), "")
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

// ─── analyze trend ────────────────────────────────────────────────────────────

var (
	analyzeTrendInput inputFlags
	analyzeTrendField string
)

var analyzeTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Fit a linear trend of one field against time: slope, intercept, R², direction",
	Example: `  cat prices.jsonl | chartline analyze trend
  chartline analyze trend --dataset prices --field open --after 2024-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat([]string{render.FormatTable, render.FormatJSON}, render.FormatTable)
		if err != nil {
			return err
		}
		ds, err := analyzeTrendInput.load(deps, cmd.InOrStdin(), model.KindTemporal)
		if err != nil {
			return err
		}
		name := ds.Name
		if name == "" {
			name = "stdin"
		}
		tr, err := analyze.Trend(name, ds.Temporal, analyze.Field(analyzeTrendField))
		if err != nil {
			return err
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		return render.Trend(w, tr, format)
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeSummaryCmd)
	analyzeCmd.AddCommand(analyzeTrendCmd)

	analyzeSummaryInput.register(analyzeSummaryCmd)
	analyzeTrendInput.register(analyzeTrendCmd)
	analyzeTrendCmd.Flags().StringVar(&analyzeTrendField, "field", string(analyze.FieldClose),
		fmt.Sprintf("field to fit: %s|%s|%s", analyze.FieldOpen, analyze.FieldClose, analyze.FieldTotal))
}
