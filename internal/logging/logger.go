// Package logging builds the zap loggers used by the CLI and batch runner.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/InVictorLopes/eps-to-png-converter/internal/config"
)

// Structured field names shared by every log site.
const (
	FieldRunID    = "run_id"
	FieldInput    = "input"
	FieldOutput   = "output"
	FieldStage    = "stage"
	FieldDuration = "duration"
	FieldWorkers  = "workers"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Output defaults to stderr.
	Output io.Writer
	// Color forces coloured console levels; nil detects a terminal.
	Color *bool
}

// New constructs a zap logger using the provided options.
func New(opts Options) (*zap.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if useColor(out, opts.Color) {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encCfg.ConsoleSeparator = "  "
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), parseLevel(opts.Level))
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

// NewFromConfig creates a logger from the [logging] section.
func NewFromConfig(cfg *config.Config) (*zap.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	return New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func useColor(out io.Writer, force *bool) bool {
	if force != nil {
		return *force
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
