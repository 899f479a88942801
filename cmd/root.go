// Package cmd implements the chartline CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/app"
	"github.com/derickschaefer/chartline/internal/config"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	Format   string
	Out      string
	DBPath   string
	LogLevel string
	Width    float64
	Height   float64
	Quiet    bool
	Verbose  bool
	JSONLog  bool
}

// rootCmd is the base command. Running `chartline` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "chartline",
	Short: "chartline: responsive chart scenes from JSONL datasets",
	Long: `chartline builds chart scenes (area bands, stacked bars, scatter,
arrow scatter and timelines) for a viewport, answers pointer queries with
nearest-point tooltips, and writes the result as SVG, PNG, JSON, a table
or a terminal preview.

Quick start:
  chartline config init                                  # create chartline.json
  cat prices.jsonl | chartline render area --out area.svg
  cat prices.jsonl | chartline dataset put prices        # keep it in the local store
  chartline render stacked --dataset prices --format ascii
  chartline tooltip area --dataset prices --x 120 --x 480`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load(config.Flags{
		Format:   globalFlags.Format,
		DBPath:   globalFlags.DBPath,
		LogLevel: globalFlags.LogLevel,
		Width:    globalFlags.Width,
		Height:   globalFlags.Height,
	})
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.JSONLog = globalFlags.JSONLog
	if cfg.Verbose && globalFlags.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return app.New(cfg), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: svg|png|json|table|ascii for scenes, table|json|jsonl|csv|tsv|md for datasets")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.DBPath, "db-path", "",
		"local store path (overrides env CHARTLINE_DB_PATH and chartline.json)")
	pf.StringVar(&globalFlags.LogLevel, "log-level", "",
		"log level: trace|debug|info|warn|error (default: warn)")
	pf.Float64Var(&globalFlags.Width, "width", 0,
		"viewport width in pixels (default: 960)")
	pf.Float64Var(&globalFlags.Height, "height", 0,
		"viewport height in pixels (default: 500)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"log rebuilds and timings at debug level")
	pf.BoolVar(&globalFlags.JSONLog, "json-log", false,
		"emit logs as JSON lines instead of console text")
}
