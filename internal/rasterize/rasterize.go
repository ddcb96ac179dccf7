// Package rasterize turns input files into RGBA rasters. Vector input is
// rendered by an external Ghostscript process; raster input is decoded in
// process.
package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/InVictorLopes/eps-to-png-converter/internal/codec"
	"github.com/InVictorLopes/eps-to-png-converter/internal/config"
	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
)

// ErrGhostscriptNotFound is returned when the Ghostscript binary cannot be
// resolved.
var ErrGhostscriptNotFound = errors.New("ghostscript not found")

// Rasterizer produces an RGBA raster for the file at path.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string) (*ir.Raster, error)
}

// Ghostscript renders PostScript and EPS files with the pngalpha device.
type Ghostscript struct {
	Binary     string
	Resolution int
	EPSCrop    bool
	Timeout    time.Duration
	// TempDir receives the intermediate PNG; empty uses os.TempDir.
	TempDir string
}

// NewGhostscript builds a rasterizer from the [ghostscript] config section.
func NewGhostscript(cfg config.Ghostscript) *Ghostscript {
	return &Ghostscript{
		Binary:     cfg.Binary,
		Resolution: cfg.Resolution,
		EPSCrop:    cfg.EPSCrop,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Check resolves the binary on PATH.
func (g *Ghostscript) Check() (string, error) {
	bin := strings.TrimSpace(g.Binary)
	if bin == "" {
		return "", fmt.Errorf("%w: binary not configured", ErrGhostscriptNotFound)
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrGhostscriptNotFound, bin, err)
	}
	return resolved, nil
}

// Args returns the Ghostscript command line that renders input to output.
func (g *Ghostscript) Args(input, output string) []string {
	args := []string{"-dNOPAUSE", "-dBATCH", "-dSAFER", "-dQUIET", "-sDEVICE=pngalpha"}
	if g.EPSCrop {
		args = append(args, "-dEPSCrop")
	}
	args = append(args,
		"-r"+strconv.Itoa(g.Resolution),
		"-sOutputFile="+output,
		input,
	)
	return args
}

// Rasterize renders path through Ghostscript into a temporary PNG, decodes
// it and removes the temporary file.
func (g *Ghostscript) Rasterize(ctx context.Context, path string) (*ir.Raster, error) {
	bin, err := g.Check()
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(g.TempDir, "eps2png-*.png")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, g.Args(path, tmpPath)...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ghostscript %s: %w", filepath.Base(path), ctxErr)
		}
		msg := strings.TrimSpace(output.String())
		if msg == "" {
			return nil, fmt.Errorf("ghostscript %s: %w", filepath.Base(path), err)
		}
		return nil, fmt.Errorf("ghostscript %s: %w: %s", filepath.Base(path), err, msg)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reading rendered PNG: %w", err)
	}
	r, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding rendered PNG: %w", err)
	}
	return r, nil
}

// ImageFile decodes files that are already rasters (PNG, JPEG, TIFF, ...).
type ImageFile struct{}

// Rasterize reads and decodes path.
func (ImageFile) Rasterize(ctx context.Context, path string) (*ir.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return r, nil
}

// vectorExtensions are rendered with Ghostscript by Auto.
var vectorExtensions = map[string]bool{".eps": true, ".epsf": true, ".epsi": true, ".ps": true, ".pdf": true, ".ai": true}

// Auto dispatches on file extension: PostScript-family files go to Vector,
// everything else is decoded as an image.
type Auto struct {
	Vector Rasterizer
}

// Rasterize picks the rasterizer for path and runs it.
func (a Auto) Rasterize(ctx context.Context, path string) (*ir.Raster, error) {
	if vectorExtensions[strings.ToLower(filepath.Ext(path))] {
		if a.Vector == nil {
			return nil, fmt.Errorf("%w: no vector rasterizer for %s", ErrGhostscriptNotFound, filepath.Base(path))
		}
		return a.Vector.Rasterize(ctx, path)
	}
	return ImageFile{}.Rasterize(ctx, path)
}
