package transform

import (
	"fmt"

	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
)

// Locate returns the tight bounding box of every pixel with non-zero alpha.
// ok is false when the raster is fully transparent.
func Locate(r *ir.Raster) (box ir.Box, ok bool, err error) {
	if err := requireRGBA(r); err != nil {
		return ir.Box{}, false, err
	}

	minX, minY := r.Width, r.Height
	maxX, maxY := -1, -1
	stride := r.Stride()
	for y := 0; y < r.Height; y++ {
		row := r.Pix[y*stride : (y+1)*stride]
		for x := 0; x < r.Width; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < 0 {
		return ir.Box{}, false, nil
	}
	return ir.Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true, nil
}

func requireRGBA(r *ir.Raster) error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidChannelLayout)
	}
	if r.Channels != 4 {
		return fmt.Errorf("%w: need 4 channels, have %d", ErrInvalidChannelLayout, r.Channels)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChannelLayout, err)
	}
	return nil
}
