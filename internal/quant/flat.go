// Package quant holds the quantizers that collapse a luminance buffer
// into the tonal classes an e-paper panel can show: a flat 4-level
// mapper, a histogram-driven adaptive threshold, Bayer 8×8 ordered
// dithering, and Floyd–Steinberg error diffusion to a color palette.
//
// Binary outputs use 0 for black and 1 for white, matching 1-bit
// grayscale PNG semantics.
package quant

import "github.com/AnyUserName/epdimg/internal/raster"

// Flat4 maps luminance into four fixed bands: [0,64)→0, [64,128)→85,
// [128,192)→170, [192,256)→255.  No dithering; the banding is the
// point.  The output values are fixed points, so applying Flat4 twice
// equals applying it once.
func Flat4(src *raster.Gray) *raster.Gray {
	out := raster.NewGray(src.W, src.H)
	for i, p := range src.Pix {
		out.Pix[i] = byte(p>>6) * 85
	}
	return out
}
