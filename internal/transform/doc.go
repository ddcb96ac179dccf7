// Package transform holds the raster normalization stages: locating the
// occupied region of a raster, recentering it, isolating the shape nearest
// the image center and composing the result onto a square canvas.
//
// Every function takes an RGBA ir.Raster and returns a new one. Nothing in
// this package performs I/O, logs or keeps state between calls, so the
// functions are safe to call from any number of goroutines as long as each
// raster is owned by one of them.
package transform
