package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/derickschaefer/chartline/internal/app"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/pipeline"
	"github.com/derickschaefer/chartline/internal/render"
)

// transition is what one replayed event did to the surface.
type transition struct {
	Step    int                `json:"step"`
	Event   pipeline.EventKind `json:"event"`
	State   string             `json:"state"`
	Rebuilt bool               `json:"rebuilt"`
	Builds  int                `json:"builds"`
	Marks   int                `json:"marks"`
	Tooltip *tipView           `json:"tooltip,omitempty"`
}

var (
	sessionDataset string
	sessionScript  string
	sessionRate    float64
)

var sessionCmd = &cobra.Command{
	Use:   "session <" + strings.Join(chartNames, "|") + ">",
	Short: "Replay a host event script against a chart surface",
	Long: `Session mounts a chart and replays host events read as JSONL from --script
(or stdin), printing the surface state after each one:

  {"event":"resize","width":800,"height":400}
  {"event":"data","dataset":"prices"}
  {"event":"move","x":312}
  {"event":"leave"}

The chart starts Idle with the --dataset points (or none). A resize to the
current size is ignored; data events load a stored dataset and always rebuild.
--rate paces the replay in events per second.`,
	Example: `  chartline session area --dataset prices --script events.jsonl
  chartline session scatter --script events.jsonl --rate 4 --format jsonl`,
	Args:      chartArgs,
	ValidArgs: chartNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessionRate < 0 {
			return fmt.Errorf("--rate must not be negative")
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format, err := resolveFormat([]string{render.FormatTable, render.FormatJSONL, render.FormatJSON}, render.FormatTable, deps.Config.Format)
		if err != nil {
			return err
		}

		var script io.Reader = cmd.InOrStdin()
		if sessionScript != "" {
			f, err := os.Open(sessionScript)
			if err != nil {
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			script = f
		}
		events, err := pipeline.ReadEvents(script)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}

		// The initial dataset comes from the store only; stdin carries the script.
		in := inputFlags{Dataset: sessionDataset}
		var h *host
		if sessionDataset != "" {
			h, err = mountChart(cmd, deps, args[0], &in)
		} else {
			h, err = mountEmpty(deps, args[0])
		}
		if err != nil {
			return err
		}
		defer h.close()

		limit := rate.Inf
		if sessionRate > 0 {
			limit = rate.Limit(sessionRate)
		}
		limiter := rate.NewLimiter(limit, 1)

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()

		steps := make([]transition, 0, len(events))
		for i, ev := range events {
			if err := limiter.Wait(cmd.Context()); err != nil {
				return err
			}
			t, err := replay(deps, h, ev)
			if err != nil {
				return fmt.Errorf("event %d (%s): %w", i+1, ev.Event, err)
			}
			t.Step = i + 1
			deps.Logger.Debug().Int("step", t.Step).Str("event", string(ev.Event)).Str("state", t.State).Bool("rebuilt", t.Rebuilt).Msg("event replayed")
			if format == render.FormatJSONL {
				// Streamed so paced sessions show progress.
				if err := render.JSONLine(w, t); err != nil {
					return err
				}
				continue
			}
			steps = append(steps, t)
		}

		switch format {
		case render.FormatJSONL:
			return nil
		case render.FormatJSON:
			return render.JSON(w, steps)
		}
		printSimpleTable(w, []string{"STEP", "EVENT", "STATE", "BUILDS", "MARKS", "TOOLTIP"}, func(add func(...string)) {
			for _, t := range steps {
				add(fmt.Sprintf("%d", t.Step), string(t.Event), t.State,
					fmt.Sprintf("%d", t.Builds), fmt.Sprintf("%d", t.Marks), describeTip(t.Tooltip))
			}
		})
		return nil
	},
}

// replay applies one event to h.
func replay(deps *app.Deps, h *host, ev pipeline.Event) (transition, error) {
	before := h.Builds()
	t := transition{Event: ev.Event}
	switch ev.Event {
	case pipeline.EventResize:
		h.resize(model.Viewport{Width: ev.Width, Height: ev.Height})
	case pipeline.EventData:
		s, err := deps.Store()
		if err != nil {
			return t, err
		}
		ds, err := requireDataset(s, ev.Dataset)
		if err != nil {
			return t, err
		}
		if err := h.setData(ds); err != nil {
			return t, err
		}
	case pipeline.EventMove:
		tip := h.move(ev.X)
		t.Tooltip = &tip
	case pipeline.EventLeave:
		tip := h.leave()
		t.Tooltip = &tip
	}
	t.State = h.State().String()
	t.Builds = h.Builds()
	t.Rebuilt = t.Builds != before
	t.Marks = h.Scene().Marks()
	return t, nil
}

// describeTip summarises a tooltip for the session table.
func describeTip(t *tipView) string {
	switch {
	case t == nil:
		return ""
	case !t.Visible:
		return "hidden"
	case t.RunnerUp == "":
		return fmt.Sprintf("@%.1f %s", t.AnchorX, t.Nearest)
	default:
		return fmt.Sprintf("@%.1f %s | %s", t.AnchorX, t.Nearest, t.RunnerUp)
	}
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringVar(&sessionDataset, "dataset", "", "stored dataset the chart starts with (default: none)")
	sessionCmd.Flags().StringVar(&sessionScript, "script", "", "event script file (default: stdin)")
	sessionCmd.Flags().Float64Var(&sessionRate, "rate", 0, "replay pace in events per second (0 = as fast as possible)")
}
