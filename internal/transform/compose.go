package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
)

// Mode selects how content is placed on the output canvas.
type Mode int

const (
	// ModePad crops to content and adds a fixed border on a square canvas
	// sized to the content.
	ModePad Mode = iota
	// ModeFit scales content into a fixed-size square canvas.
	ModeFit
)

func (m Mode) String() string {
	switch m {
	case ModePad:
		return "pad"
	case ModeFit:
		return "fit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pad", "pad-to-content":
		return ModePad, nil
	case "fit", "fit-to-canvas":
		return ModeFit, nil
	default:
		return 0, fmt.Errorf("%w: unknown canvas mode %q", ErrInvalidOptions, s)
	}
}

// ComposeOptions controls Compose.
type ComposeOptions struct {
	Mode       Mode
	Padding    int     // ModePad: border in pixels around the content
	TargetSize int     // ModeFit: side of the output canvas
	Margin     float64 // ModeFit: fraction of TargetSize the content may span, in (0,1]
}

// Validate reports options that Compose cannot honour.
func (o ComposeOptions) Validate() error {
	switch o.Mode {
	case ModePad:
		if o.Padding < 0 {
			return fmt.Errorf("%w: padding %d is negative", ErrInvalidOptions, o.Padding)
		}
	case ModeFit:
		if o.TargetSize <= 0 {
			return fmt.Errorf("%w: target size %d must be positive", ErrInvalidOptions, o.TargetSize)
		}
		if !(o.Margin > 0 && o.Margin <= 1) {
			return fmt.Errorf("%w: margin %v must be in (0,1]", ErrInvalidOptions, o.Margin)
		}
	default:
		return fmt.Errorf("%w: unknown mode %v", ErrInvalidOptions, o.Mode)
	}
	return nil
}

// Compose crops r to its content and centers it on a new square canvas.
// RGB and grayscale input is upgraded to RGBA in both modes, so it is all
// content. A fully transparent raster fails with ErrEmptyContent.
func Compose(r *ir.Raster, opts ComposeOptions) (*ir.Raster, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if r != nil && (r.Channels == 3 || r.Channels == 1) {
		up, err := ir.Upgrade(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidChannelLayout, err)
		}
		r = up
	}

	box, ok, err := Locate(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmptyContent
	}
	content, err := crop(r, box)
	if err != nil {
		return nil, err
	}

	if opts.Mode == ModeFit {
		return fitCanvas(content, opts.TargetSize, opts.Margin)
	}
	return padCanvas(content, opts.Padding)
}

func padCanvas(content *ir.Raster, padding int) (*ir.Raster, error) {
	side := max(content.Width, content.Height) + 2*padding
	out := ir.New(side, side)
	if err := paste(out, content, centered(side, side, content.Width, content.Height)); err != nil {
		return nil, err
	}
	return out, nil
}

// FitSize returns the dimensions a w x h block is scaled to so that it spans
// at most target*margin pixels on its longer side, keeping the aspect ratio.
func FitSize(w, h, target int, margin float64) (int, int) {
	limit := float64(target) * margin
	s := math.Min(limit/float64(w), limit/float64(h))
	nw := int(math.Round(float64(w) * s))
	nh := int(math.Round(float64(h) * s))
	return max(nw, 1), max(nh, 1)
}

func fitCanvas(content *ir.Raster, target int, margin float64) (*ir.Raster, error) {
	nw, nh := FitSize(content.Width, content.Height, target, margin)
	src, err := content.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChannelLayout, err)
	}
	resized := ir.FromImage(imaging.Resize(src, nw, nh, imaging.Lanczos))

	out := ir.New(target, target)
	if err := paste(out, resized, centered(target, target, nw, nh)); err != nil {
		return nil, err
	}
	return out, nil
}
