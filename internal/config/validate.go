package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGhostscript(); err != nil {
		return err
	}
	if _, err := c.ComposeOptions(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if len(c.Paths.Extensions) == 0 {
		return errors.New("paths.extensions must list at least one extension")
	}
	if c.Paths.InputDir != "" && c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.input_dir")
	}
	return nil
}

func (c *Config) validateGhostscript() error {
	if c.Ghostscript.Resolution <= 0 {
		return fmt.Errorf("ghostscript.resolution must be positive, got %d", c.Ghostscript.Resolution)
	}
	if c.Ghostscript.TimeoutSeconds < 0 {
		return fmt.Errorf("ghostscript.timeout_seconds must not be negative, got %d", c.Ghostscript.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
