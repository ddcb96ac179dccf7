// Package codec decodes images into rasters and encodes rasters as PNG.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
)

// ImageInfo contains metadata about an encoded image.
type ImageInfo struct {
	Format        string
	Width         int
	Height        int
	NumComponents int
	ColorModel    string
}

// GetInfo reads image metadata without decoding pixel data.
func GetInfo(data []byte) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	n, name := describeModel(cfg.ColorModel)
	return &ImageInfo{
		Format:        format,
		Width:         cfg.Width,
		Height:        cfg.Height,
		NumComponents: n,
		ColorModel:    name,
	}, nil
}

// Decode decodes PNG, JPEG, GIF, BMP, TIFF or WebP data into an RGBA raster.
// Images without an alpha channel come back fully opaque.
func Decode(data []byte) (*ir.Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return ir.FromImage(img), nil
}

// EncodePNG encodes an RGBA raster as a PNG with straight alpha.
func EncodePNG(r *ir.Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG streams r to w as PNG.
func WritePNG(w io.Writer, r *ir.Raster) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	img, err := r.NRGBA()
	if err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func describeModel(m color.Model) (int, string) {
	switch m {
	case color.NRGBAModel, color.RGBAModel:
		return 4, "RGBA"
	case color.NRGBA64Model, color.RGBA64Model:
		return 4, "RGBA64"
	case color.GrayModel:
		return 1, "Gray"
	case color.Gray16Model:
		return 1, "Gray16"
	case color.YCbCrModel:
		return 3, "YCbCr"
	case color.NYCbCrAModel:
		return 4, "YCbCrA"
	case color.CMYKModel:
		return 4, "CMYK"
	}
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4, fmt.Sprintf("Paletted(%d, alpha)", len(p))
			}
		}
		return 3, fmt.Sprintf("Paletted(%d)", len(p))
	}
	return 0, "Unknown"
}
