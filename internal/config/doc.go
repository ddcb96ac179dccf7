// Package config loads, normalizes, and validates eps2png configuration.
//
// It supplies defaults matching the historical batch scripts (300 dpi
// Ghostscript rendering, 40 px padding, 1080 px fit canvas at 85%), expands
// user paths, reads TOML files and honours the GHOSTSCRIPT environment
// variable for the rasterizer binary. Command-line flags are applied on top
// of the loaded Config by the CLI.
package config
