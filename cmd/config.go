package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/chart"
	"github.com/derickschaefer/chartline/internal/config"
	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/scene"
	"github.com/derickschaefer/chartline/internal/util"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage chartline configuration",
	Long:  `Read and write chartline configuration stored in chartline.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template chartline.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  Override chart styles with: chartline config set area.margin_left 60")
		return nil
	},
}

var configGetChart string

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	Example: `  chartline config get
  chartline config get --chart stacked
  chartline config get --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Flags{
			Format:   globalFlags.Format,
			DBPath:   globalFlags.DBPath,
			LogLevel: globalFlags.LogLevel,
			Width:    globalFlags.Width,
			Height:   globalFlags.Height,
		})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		if configGetChart != "" {
			kind, err := scene.ParseKind(configGetChart)
			if err != nil {
				return err
			}
			st := cfg.Style(kind)
			if globalFlags.Format == render.FormatJSON {
				return render.JSON(w, st)
			}
			render.KV(w, styleRows(st))
			return nil
		}

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		if globalFlags.Format == render.FormatJSON {
			type configOut struct {
				Format     string                           `json:"default_format"`
				DBPath     string                           `json:"db_path"`
				LogLevel   string                           `json:"log_level"`
				Width      float64                          `json:"width"`
				Height     float64                          `json:"height"`
				Charts     map[string]config.ChartOverrides `json:"charts,omitempty"`
				ConfigFile string                           `json:"config_file"`
			}
			return render.JSON(w, configOut{
				Format:     cfg.Format,
				DBPath:     cfg.DBPath,
				LogLevel:   cfg.LogLevel,
				Width:      cfg.Width,
				Height:     cfg.Height,
				Charts:     cfg.Charts,
				ConfigFile: src,
			})
		}

		rows := [][]string{
			{"default_format", cfg.Format},
			{"db_path", cfg.DBPath},
			{"log_level", cfg.LogLevel},
			{"width", util.FormatValue(cfg.Width)},
			{"height", util.FormatValue(cfg.Height)},
			{"config_file", src},
		}
		for _, k := range scene.Kinds {
			if _, ok := cfg.Charts[string(k)]; ok {
				rows = append(rows, []string{"charts", string(k) + " (overridden; see --chart " + string(k) + ")"})
			}
		}
		render.KV(w, rows)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "\n⚠  configuration problems:\n%v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in chartline.json",
	Long: `Set a top-level key or a per-chart style override in chartline.json.

Top-level keys: ` + strings.Join(config.Keys, ", ") + `
Chart options (as <chart>.<option>): ` + strings.Join(config.ChartKeys, ", "),
	Example: `  chartline config set default_format png
  chartline config set stacked.x_scale band
  chartline config set area.fills "#d0f5ec,#faba82"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]

		// Load existing file or start from template
		path := config.DefaultConfigFile
		var f config.File
		existing, err := config.ReadFile(path)
		switch {
		case err == nil:
			f = *existing
		case os.IsNotExist(err):
			f = config.Template()
		default:
			return err
		}

		if err := f.Set(key, val); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", strings.ToLower(key), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configGetCmd.Flags().StringVar(&configGetChart, "chart", "", "show the resolved style of one chart instead")
}

// styleRows lists a resolved style as key/value rows.
func styleRows(st chart.Style) [][]string {
	m := st.Margins
	return [][]string{
		{"margins", fmt.Sprintf("top=%g right=%g bottom=%g left=%g", m.Top, m.Right, m.Bottom, m.Left)},
		{"nice", fmt.Sprintf("%t", st.Nice)},
		{"color", st.Color},
		{"symbol", string(st.Symbol)},
		{"palette_up", st.ColorUp},
		{"palette_down", st.ColorDown},
		{"x_scale", string(st.XScale)},
		{"band_padding", util.FormatValue(st.BandPadding)},
		{"fills", strings.Join(st.Fills, ",")},
		{"axis_color", st.AxisColor},
		{"grid_color", st.GridColor},
		{"tooltip_offset", fmt.Sprintf("dx=%g dy=%g", st.TooltipDX, st.TooltipDY)},
	}
}
