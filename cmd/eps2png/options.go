package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/InVictorLopes/eps-to-png-converter/internal/config"
	"github.com/InVictorLopes/eps-to-png-converter/internal/pipeline"
	"github.com/InVictorLopes/eps-to-png-converter/internal/rasterize"
)

func addCanvasFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("mode", "", "Canvas mode: pad (content plus padding) or fit (fixed size canvas)")
	f.Int("padding", 0, "Transparent border around the content in pixels (pad mode)")
	f.Int("target-size", 0, "Canvas side in pixels (fit mode)")
	f.Float64("margin", 0, "Fraction of the canvas the content may span (fit mode)")
	f.Bool("no-isolate", false, "Keep every shape instead of only the one nearest the center")
}

func addGhostscriptFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("gs", "", "Ghostscript binary")
	f.Int("resolution", 0, "Rasterization resolution in DPI")
	f.Bool("eps-crop", false, "Crop to the EPS bounding box")
}

// loadConfig reads the config file named by --config with any flags the
// user set on cmd applied on top, before normalization.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, _, _, err := config.Load(path, func(c *config.Config) error {
		return applyOverrides(cmd, c)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides copies explicitly set flags into cfg. Flags not defined on
// cmd are ignored.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	changed := func(name string) bool {
		return f.Lookup(name) != nil && f.Changed(name)
	}

	var err error
	if changed("mode") {
		cfg.Canvas.Mode, err = f.GetString("mode")
	}
	if err == nil && changed("padding") {
		cfg.Canvas.Padding, err = f.GetInt("padding")
	}
	if err == nil && changed("target-size") {
		cfg.Canvas.TargetSize, err = f.GetInt("target-size")
	}
	if err == nil && changed("margin") {
		cfg.Canvas.Margin, err = f.GetFloat64("margin")
	}
	if err == nil && changed("no-isolate") {
		var off bool
		off, err = f.GetBool("no-isolate")
		cfg.Isolation.Enabled = !off
	}
	if err == nil && changed("gs") {
		cfg.Ghostscript.Binary, err = f.GetString("gs")
	}
	if err == nil && changed("resolution") {
		cfg.Ghostscript.Resolution, err = f.GetInt("resolution")
	}
	if err == nil && changed("eps-crop") {
		cfg.Ghostscript.EPSCrop, err = f.GetBool("eps-crop")
	}
	if err == nil && changed("input-dir") {
		cfg.Paths.InputDir, err = f.GetString("input-dir")
	}
	if err == nil && changed("output-dir") {
		cfg.Paths.OutputDir, err = f.GetString("output-dir")
	}
	if err == nil && changed("workers") {
		cfg.Workers.Count, err = f.GetInt("workers")
	}
	if err == nil && changed("stop-on-error") {
		cfg.Workers.StopOnError, err = f.GetBool("stop-on-error")
	}
	if err == nil && changed("log-level") {
		cfg.Logging.Level, err = f.GetString("log-level")
	}
	if err != nil {
		return fmt.Errorf("reading flags: %w", err)
	}
	return nil
}

func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	compose, err := cfg.ComposeOptions()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Compose: compose, Isolate: cfg.Isolation.Enabled}, nil
}

// rasterizerFor sends the configured input extensions to Ghostscript and
// lets everything else be decoded by file type.
func rasterizerFor(cfg *config.Config, path string) rasterize.Rasterizer {
	gs := rasterize.NewGhostscript(cfg.Ghostscript)
	if cfg.HasExtension(path) {
		return gs
	}
	return rasterize.Auto{Vector: gs}
}
