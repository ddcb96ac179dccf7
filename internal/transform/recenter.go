package transform

import "github.com/InVictorLopes/eps-to-png-converter/internal/ir"

// Recenter moves the occupied region of r to the middle of a canvas of the
// same size. Content is translated, never scaled. A fully transparent
// raster is returned as is.
func Recenter(r *ir.Raster) (*ir.Raster, error) {
	box, ok, err := Locate(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r, nil
	}

	content, err := crop(r, box)
	if err != nil {
		return nil, err
	}
	out := ir.New(r.Width, r.Height)
	if err := paste(out, content, centered(r.Width, r.Height, box.W, box.H)); err != nil {
		return nil, err
	}
	return out, nil
}
