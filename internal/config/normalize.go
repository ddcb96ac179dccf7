package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGhostscript()
	c.normalizeCanvas()
	if c.Workers.Count <= 0 {
		c.Workers.Count = runtime.NumCPU()
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	exts := make([]string, 0, len(c.Paths.Extensions))
	for _, ext := range c.Paths.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Paths.Extensions = exts
	return nil
}

// applyEnv lets GHOSTSCRIPT replace the configured binary.
func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv("GHOSTSCRIPT"); ok && strings.TrimSpace(value) != "" {
		c.Ghostscript.Binary = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeGhostscript() {
	c.Ghostscript.Binary = strings.TrimSpace(c.Ghostscript.Binary)
	if c.Ghostscript.Binary == "" {
		c.Ghostscript.Binary = defaultGhostscriptBinary()
	}
}

func (c *Config) normalizeCanvas() {
	c.Canvas.Mode = strings.ToLower(strings.TrimSpace(c.Canvas.Mode))
	if c.Canvas.Mode == "" {
		c.Canvas.Mode = defaultCanvasMode
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console", "text":
		c.Logging.Format = "console"
	default:
		c.Logging.Format = format
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
