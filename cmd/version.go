package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/render"
)

// Version is the canonical release string. The default here is the fallback
// for `go run` and untagged builds. Production builds overwrite this via:
//
//	go build -ldflags "-X github.com/derickschaefer/chartline/cmd.Version=v0.2.0"
var Version = "v0.1.0"

// BuildTime is optionally injected at build time alongside Version:
//
//	-ldflags "-X github.com/derickschaefer/chartline/cmd.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var BuildTime = ""

// versionInfo is the structured payload for --format json output.
type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	BuildTime string `json:"build_time,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the chartline version and build information",
	Long: `Print the chartline version string and build metadata.

Default output is plain text, suitable for shell scripts and pipelines.
Use --format json for structured output.

Examples:
  chartline version
  chartline version --format json
  chartline version --format json | jq .version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   Version,
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			BuildTime: BuildTime,
		}

		w := cmd.OutOrStdout()
		switch globalFlags.Format {
		case render.FormatJSON:
			return render.JSON(w, info)

		case render.FormatJSONL:
			// Single object, one line; mixes into a JSONL pipeline.
			return render.JSONLine(w, info)

		default:
			// Plain text, one value per line, grep/awk friendly.
			fmt.Fprintf(w, "chartline %s\n", info.Version)
			fmt.Fprintf(w, "go        %s\n", info.GoVersion)
			fmt.Fprintf(w, "os        %s/%s\n", info.GOOS, info.GOARCH)
			if info.BuildTime != "" {
				fmt.Fprintf(w, "built     %s\n", info.BuildTime)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
