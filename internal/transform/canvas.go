package transform

import (
	"fmt"
	"image"

	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
)

// crop copies box out of r into a new raster.
func crop(r *ir.Raster, box ir.Box) (*ir.Raster, error) {
	if !box.Rect().In(r.Bounds()) || box.W <= 0 || box.H <= 0 {
		return nil, fmt.Errorf("%w: crop %v outside %dx%d raster",
			ErrInternalConsistency, box.Rect(), r.Width, r.Height)
	}
	out := ir.New(box.W, box.H)
	srcStride, dstStride := r.Stride(), out.Stride()
	for y := 0; y < box.H; y++ {
		off := (box.Y+y)*srcStride + box.X*4
		copy(out.Pix[y*dstStride:(y+1)*dstStride], r.Pix[off:off+dstStride])
	}
	return out, nil
}

// paste copies src into dst with its top-left corner at at. The whole of
// src must fit; nothing is clipped.
func paste(dst, src *ir.Raster, at image.Point) error {
	rect := src.Bounds().Add(at)
	if !rect.In(dst.Bounds()) {
		return fmt.Errorf("%w: paste %v outside %dx%d canvas",
			ErrInternalConsistency, rect, dst.Width, dst.Height)
	}
	srcStride, dstStride := src.Stride(), dst.Stride()
	for y := 0; y < src.Height; y++ {
		off := (at.Y+y)*dstStride + at.X*4
		copy(dst.Pix[off:off+srcStride], src.Pix[y*srcStride:(y+1)*srcStride])
	}
	return nil
}

// centered returns the top-left offset that centers a w x h block in a
// cw x ch canvas, rounding down.
func centered(cw, ch, w, h int) image.Point {
	return image.Pt(floorDiv(cw-w, 2), floorDiv(ch-h, 2))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
