package ir

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// ErrChannels is returned when a pixel buffer cannot be interpreted as, or
// upgraded to, interleaved RGBA.
var ErrChannels = errors.New("unsupported channel layout")

// Raster is the intermediate representation passed between pipeline stages.
// Pixels are stored as interleaved bytes (Channels bytes per pixel, row-major
// order). Channels is 4 (R,G,B,A, non-premultiplied) everywhere inside the
// transforms; 3 (RGB) and 1 (gray) only appear before Upgrade.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte // len = Width * Height * Channels
}

// Box is an axis-aligned pixel rectangle.
type Box struct {
	X, Y int
	W, H int
}

// Rect returns b as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// New allocates a fully transparent RGBA raster.
func New(width, height int) *Raster {
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: 4,
		Pix:      make([]byte, width*height*4),
	}
}

// Validate checks that Pix matches the declared geometry.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("nil raster")
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("negative dimensions %dx%d", r.Width, r.Height)
	}
	if r.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrChannels, r.Channels)
	}
	if want := r.Width * r.Height * r.Channels; len(r.Pix) != want {
		return fmt.Errorf("expected %d bytes for %dx%dx%d, got %d",
			want, r.Width, r.Height, r.Channels, len(r.Pix))
	}
	return nil
}

// Bounds returns the raster extent.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// Stride is the number of bytes per row.
func (r *Raster) Stride() int {
	return r.Width * r.Channels
}

// Clone returns a deep copy of r.
func (r *Raster) Clone() *Raster {
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Channels: r.Channels, Pix: pix}
}

// NRGBA exposes an RGBA raster as an *image.NRGBA sharing the same buffer.
func (r *Raster) NRGBA() (*image.NRGBA, error) {
	if r.Channels != 4 {
		return nil, fmt.Errorf("%w: NRGBA view needs 4 channels, have %d", ErrChannels, r.Channels)
	}
	return &image.NRGBA{Pix: r.Pix, Stride: r.Width * 4, Rect: r.Bounds()}, nil
}

// Upgrade returns an RGBA copy of r. RGB and gray input get an opaque alpha
// channel; RGBA input is copied unchanged.
func Upgrade(r *Raster) (*Raster, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	switch r.Channels {
	case 4:
		return r.Clone(), nil
	case 3, 1:
	default:
		return nil, fmt.Errorf("%w: cannot upgrade %d channels to RGBA", ErrChannels, r.Channels)
	}

	out := New(r.Width, r.Height)
	n := r.Width * r.Height
	for i := 0; i < n; i++ {
		d := out.Pix[i*4 : i*4+4]
		if r.Channels == 3 {
			s := r.Pix[i*3 : i*3+3]
			d[0], d[1], d[2] = s[0], s[1], s[2]
		} else {
			g := r.Pix[i]
			d[0], d[1], d[2] = g, g, g
		}
		d[3] = 0xff
	}
	return out, nil
}

// FromImage converts a decoded image to an RGBA raster with straight
// (non-premultiplied) alpha. The result never aliases img.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	out := New(b.Dx(), b.Dy())
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < out.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride():(y+1)*out.Stride()], src.Pix[off:off+out.Stride()])
		}
		return out
	}
	dst := &image.NRGBA{Pix: out.Pix, Stride: out.Stride(), Rect: out.Bounds()}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return out
}

// At returns the pixel at (x, y) of an RGBA raster.
func (r *Raster) At(x, y int) color.NRGBA {
	i := (y*r.Width + x) * 4
	return color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// Set writes the pixel at (x, y) of an RGBA raster.
func (r *Raster) Set(x, y int, c color.NRGBA) {
	i := (y*r.Width + x) * 4
	r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3] = c.R, c.G, c.B, c.A
}
