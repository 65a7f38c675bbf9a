// Package tone applies the contrast/gamma curve that precedes
// quantization.
package tone

import (
	"math"

	"github.com/AnyUserName/epdimg/internal/raster"
)

// Apply maps every pixel through the curve
//
//	v   = clamp((in−128)·contrast + 128, 0, 255)
//	out = round(255 · (v/255)^gamma)
//
// and returns a new buffer.  The source is left untouched.
func Apply(src *raster.Gray, contrast, gamma float64) *raster.Gray {
	out := src.Clone()
	ApplyInPlace(out, contrast, gamma)
	return out
}

// ApplyInPlace runs the same curve directly on buf.  The 256-entry
// mapping is precomputed once per call; pixels then go through a table
// lookup.
func ApplyInPlace(buf *raster.Gray, contrast, gamma float64) {
	var lut [256]byte
	for i := 0; i < 256; i++ {
		v := (float64(i)-128)*contrast + 128
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		g := 255 * math.Pow(v/255, gamma)
		r := math.Round(g)
		if r < 0 {
			r = 0
		} else if r > 255 {
			r = 255
		}
		lut[i] = byte(r)
	}
	for i, p := range buf.Pix {
		buf.Pix[i] = lut[p]
	}
}
