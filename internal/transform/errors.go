package transform

import "errors"

var (
	// ErrInvalidChannelLayout is returned for rasters that are not RGBA.
	ErrInvalidChannelLayout = errors.New("invalid channel layout")
	// ErrEmptyContent is returned when content is required but every pixel
	// is fully transparent.
	ErrEmptyContent = errors.New("empty image")
	// ErrInternalConsistency is returned when derived geometry falls outside
	// the canvas it was derived for.
	ErrInternalConsistency = errors.New("internal consistency")
	// ErrInvalidOptions is returned for compose options out of range.
	ErrInvalidOptions = errors.New("invalid options")
)
