// Package logger builds the zerolog logger shared by the CLI and the chart
// surfaces. Output goes to stderr so that rendered scenes on stdout stay
// clean.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// TimeLayout is the console timestamp format.
const TimeLayout = "15:04:05.000"

// Options selects the logger's output.
type Options struct {
	Level zerolog.Level
	// JSON writes one JSON object per line instead of console text.
	JSON bool
	// Out defaults to os.Stderr.
	Out io.Writer
	// Color forces coloured console output. It is enabled automatically
	// when Out is a terminal.
	Color bool
}

// New returns a logger for opts.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.JSON {
		return zerolog.New(out).Level(opts.Level).With().Timestamp().Logger()
	}

	colored := opts.Color || isTerminal(out)
	cw := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !colored,
		TimeFormat: TimeLayout,
	}
	cw.FormatLevel = func(i any) string { return formatLevel(i, colored) }
	cw.FormatMessage = formatMessage
	return zerolog.New(cw).Level(opts.Level).With().Timestamp().Logger()
}

// ParseLevel resolves a level name, treating an empty name as warn.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(s))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func formatLevel(i any, colored bool) string {
	lvl, _ := i.(string)
	tag, paint := "[UNK]", term.Whitef
	switch lvl {
	case zerolog.LevelTraceValue:
		tag, paint = "[TRC]", term.Cyanf
	case zerolog.LevelDebugValue:
		tag, paint = "[DBG]", term.Cyanf
	case zerolog.LevelInfoValue:
		tag, paint = "[INF]", term.Greenf
	case zerolog.LevelWarnValue:
		tag, paint = "[WRN]", term.Yellowf
	case zerolog.LevelErrorValue:
		tag, paint = "[ERR]", term.Redf
	case zerolog.LevelFatalValue:
		tag, paint = "[FTL]", term.Redf
	case zerolog.LevelPanicValue:
		tag, paint = "[PAN]", term.Redf
	}
	if !colored {
		return tag
	}
	return paint("%s", tag)
}

func formatMessage(i any) string {
	msg, _ := i.(string)
	if msg == "" {
		return ">"
	}
	return "> " + msg
}

// Stopwatch logs the duration of an operation at debug level when stopped.
type Stopwatch struct {
	log   zerolog.Logger
	what  string
	start time.Time
}

// Start begins timing what.
func Start(log zerolog.Logger, what string) Stopwatch {
	return Stopwatch{log: log, what: what, start: time.Now()}
}

// Stop logs the elapsed time and returns it.
func (s Stopwatch) Stop() time.Duration {
	d := time.Since(s.start)
	s.log.Debug().Str("op", s.what).Dur("elapsed", d).Msg("done")
	return d
}
