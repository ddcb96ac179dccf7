package transform

import (
	"math"

	"github.com/InVictorLopes/eps-to-png-converter/internal/contour"
	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
)

// Isolate keeps the top-level shape whose bounding-box center lies nearest
// the image center and clears everything else: other top-level shapes, and
// whatever sits inside the kept shape's holes. Holes stay transparent.
// Rasters without any shape are returned as is.
func Isolate(r *ir.Raster) (*ir.Raster, error) {
	if err := requireRGBA(r); err != nil {
		return nil, err
	}

	mask := alphaMask(r)
	forest := contour.Trace(mask)
	sel := Central(forest, r.Width, r.Height)
	if sel < 0 {
		return r, nil
	}
	keep := forest.Component(mask, sel)

	out := ir.New(r.Width, r.Height)
	for i, on := range keep.Bits {
		if on {
			copy(out.Pix[i*4:i*4+4], r.Pix[i*4:i*4+4])
		}
	}
	return out, nil
}

// Central returns the index of the top-level node whose bounding-box center
// is nearest (width/2, height/2), or -1 when there is none. Ties go to the
// node traced first.
func Central(forest contour.Forest, width, height int) int {
	cx, cy := float64(width)/2, float64(height)/2
	best, bestDist := -1, math.Inf(1)
	for _, i := range forest.Roots() {
		b := forest[i].Bounds()
		x := float64(b.Min.X) + float64(b.Dx())/2
		y := float64(b.Min.Y) + float64(b.Dy())/2
		if d := math.Hypot(x-cx, y-cy); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Shapes traces the borders of the non-transparent pixels of r.
func Shapes(r *ir.Raster) (contour.Forest, error) {
	if err := requireRGBA(r); err != nil {
		return nil, err
	}
	return contour.Trace(alphaMask(r)), nil
}

func alphaMask(r *ir.Raster) *contour.Mask {
	m := contour.NewMask(r.Width, r.Height)
	for i := range m.Bits {
		m.Bits[i] = r.Pix[i*4+3] > 0
	}
	return m
}
