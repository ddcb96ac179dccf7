// Package pipeline chains the raster transforms into the full normalization:
// recenter, optionally isolate the central object, then compose the square
// canvas.
package pipeline

import (
	"fmt"

	"github.com/InVictorLopes/eps-to-png-converter/internal/codec"
	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
	"github.com/InVictorLopes/eps-to-png-converter/internal/transform"
)

// Stage names, used in error messages and log fields.
const (
	StageDecode   = "decode"
	StageRecenter = "recenter"
	StageIsolate  = "isolate"
	StageCompose  = "compose"
	StageEncode   = "encode"
)

// Options controls one normalization run.
type Options struct {
	Compose transform.ComposeOptions
	Isolate bool // drop everything except the object nearest the center
}

// Result holds the output of Run.
type Result struct {
	Data      []byte // encoded PNG
	SrcWidth  int
	SrcHeight int
	Width     int
	Height    int
}

// StageError records which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Process normalizes an in-memory raster. RGB and grayscale input is
// upgraded to RGBA first.
func Process(r *ir.Raster, opts Options) (*ir.Raster, error) {
	if err := opts.Compose.Validate(); err != nil {
		return nil, err
	}
	rgba, err := ir.Upgrade(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transform.ErrInvalidChannelLayout, err)
	}

	out, err := transform.Recenter(rgba)
	if err != nil {
		return nil, &StageError{Stage: StageRecenter, Err: err}
	}
	if opts.Isolate {
		out, err = transform.Isolate(out)
		if err != nil {
			return nil, &StageError{Stage: StageIsolate, Err: err}
		}
	}
	out, err = transform.Compose(out, opts.Compose)
	if err != nil {
		return nil, &StageError{Stage: StageCompose, Err: err}
	}
	return out, nil
}

// Run executes the full pipeline on an encoded image: decode → normalize →
// encode PNG.
func Run(data []byte, opts Options) (*Result, error) {
	src, err := codec.Decode(data)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: err}
	}

	out, err := Process(src, opts)
	if err != nil {
		return nil, err
	}

	encoded, err := codec.EncodePNG(out)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}

	return &Result{
		Data:      encoded,
		SrcWidth:  src.Width,
		SrcHeight: src.Height,
		Width:     out.Width,
		Height:    out.Height,
	}, nil
}
