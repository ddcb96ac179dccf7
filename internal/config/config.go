package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/InVictorLopes/eps-to-png-converter/internal/transform"
)

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns the commented sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// Paths contains input and output locations for batch runs.
type Paths struct {
	InputDir   string   `toml:"input_dir"`
	OutputDir  string   `toml:"output_dir"`
	Extensions []string `toml:"extensions"`
}

// Ghostscript contains rasterizer settings.
type Ghostscript struct {
	Binary         string `toml:"binary"`
	Resolution     int    `toml:"resolution"`
	EPSCrop        bool   `toml:"eps_crop"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Canvas selects the output canvas policy.
type Canvas struct {
	Mode       string  `toml:"mode"` // "pad" or "fit"
	Padding    int     `toml:"padding"`
	TargetSize int     `toml:"target_size"`
	Margin     float64 `toml:"margin"`
}

// Isolation toggles removal of shapes away from the image center.
type Isolation struct {
	Enabled bool `toml:"enabled"`
}

// Workers controls batch concurrency.
type Workers struct {
	Count       int  `toml:"count"` // 0 means one per CPU
	StopOnError bool `toml:"stop_on_error"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for eps2png.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Ghostscript Ghostscript `toml:"ghostscript"`
	Canvas      Canvas      `toml:"canvas"`
	Isolation   Isolation   `toml:"isolation"`
	Workers     Workers     `toml:"workers"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/eps2png/config.toml")
}

// Override adjusts a loaded configuration before it is normalized, so
// values set from the command line get the same treatment as file values.
type Override func(*Config) error

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults. Environment variables are applied next, then the
// overrides in order. The returned bool reports whether a file was read.
func Load(path string, overrides ...Override) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	cfg.applyEnv()
	for _, override := range overrides {
		if err := override(&cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Marshal renders c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// ComposeOptions converts the canvas section into transform options.
func (c *Config) ComposeOptions() (transform.ComposeOptions, error) {
	mode, err := transform.ParseMode(c.Canvas.Mode)
	if err != nil {
		return transform.ComposeOptions{}, fmt.Errorf("canvas.mode: %w", err)
	}
	opts := transform.ComposeOptions{
		Mode:       mode,
		Padding:    c.Canvas.Padding,
		TargetSize: c.Canvas.TargetSize,
		Margin:     c.Canvas.Margin,
	}
	if err := opts.Validate(); err != nil {
		return transform.ComposeOptions{}, fmt.Errorf("canvas: %w", err)
	}
	return opts, nil
}

// HasExtension reports whether name carries one of the configured input
// extensions, ignoring case.
func (c *Config) HasExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range c.Paths.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// resolveConfigPath picks the file Load reads. An explicit path is used as
// given; otherwise ./eps2png.toml wins over the per-user file. When nothing
// exists the last candidate is reported so callers can say where defaults
// would be written.
func resolveConfigPath(path string) (string, bool, error) {
	candidates := []string{path}
	if path == "" {
		user, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidates = []string{"eps2png.toml", user}
	}

	var resolved string
	for _, candidate := range candidates {
		var err error
		if resolved, err = expandPath(candidate); err != nil {
			return "", false, err
		}
		info, err := os.Stat(resolved)
		switch {
		case err == nil && info.IsDir():
			return "", false, fmt.Errorf("config path %s is a directory", resolved)
		case err == nil:
			return resolved, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return resolved, false, nil
}

// expandPath resolves a leading ~ against the home directory and makes the
// result absolute. Empty stays empty.
func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	return abs, nil
}
