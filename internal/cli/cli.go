package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/stitchgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("stitchgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
stitchgrid - A headless runtime for patch graphs.

Usage:
  stitchgrid [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a single .hcl graph document or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the graph document or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph document or directory (shorthand).")
	exportFlag := flagSet.String("export", "", "Write the loaded graph as a normalized document to this path and exit. '-' writes to stdout.")
	fpsFlag := flagSet.Float64("fps", 60, "Ticks per second.")
	framesFlag := flagSet.Int("frames", 0, "Stop after this many ticks. 0 runs until interrupted.")
	durationFlag := flagSet.Duration("duration", 0, "Stop after this long. 0 runs until interrupted.")
	debugFlag := flagSet.Bool("debug", false, "Panic on authoring problems inside node evaluation instead of logging them.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the health, metrics and nodes HTTP server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	previewURLFlag := flagSet.String("preview-url", "", "socket.io endpoint of a preview runtime, e.g. http://localhost:3000/socket.io/.")
	previewNSFlag := flagSet.String("preview-namespace", "/", "socket.io namespace used by the preview relay.")
	workersFlag := flagSet.Int("effect-workers", 4, "Maximum number of effects running concurrently.")
	retriesFlag := flagSet.Int("http-retries", 2, "Retries for failed network requests.")
	timeoutFlag := flagSet.Duration("http-timeout", 30*time.Second, "Timeout for a single network request.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		GraphPath:        path,
		ExportPath:       *exportFlag,
		FPS:              *fpsFlag,
		MaxFrames:        *framesFlag,
		Duration:         *durationFlag,
		Debug:            *debugFlag,
		LogFormat:        strings.ToLower(*logFormatFlag),
		LogLevel:         strings.ToLower(*logLevelFlag),
		HealthcheckPort:  *healthPortFlag,
		PreviewURL:       *previewURLFlag,
		PreviewNamespace: *previewNSFlag,
		EffectWorkers:    *workersFlag,
		HTTPRetries:      *retriesFlag,
		HTTPTimeout:      *timeoutFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
