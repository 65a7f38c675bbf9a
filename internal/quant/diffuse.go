package quant

import "github.com/AnyUserName/epdimg/internal/raster"

// Diffuse runs Floyd–Steinberg error diffusion against an arbitrary
// palette and returns a buffer of palette indexes.  Pixels are visited
// in strict row-major, left-to-right, top-to-bottom order; for each
// pixel the nearest palette entry by squared RGB distance is emitted
// and the per-channel error spreads into a float working buffer:
// 7/16 right, 3/16 down-left, 5/16 down, 1/16 down-right.  Order and
// weights are load-bearing for deterministic output.
func Diffuse(src *raster.RGB, pal raster.Palette) *raster.Gray {
	w, h := src.W, src.H
	work := make([]float64, w*h*3)
	for i, p := range src.Pix {
		work[i] = float64(p)
	}

	out := raster.NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			r, g, b := work[i], work[i+1], work[i+2]

			idx := nearest(pal, r, g, b)
			out.Pix[y*w+x] = byte(idx)

			c := pal[idx]
			er := r - float64(c.R)
			eg := g - float64(c.G)
			eb := b - float64(c.B)

			spread := func(xx, yy int, f float64) {
				if xx < 0 || xx >= w || yy >= h {
					return
				}
				j := (yy*w + xx) * 3
				work[j] += er * f
				work[j+1] += eg * f
				work[j+2] += eb * f
			}
			spread(x+1, y, 7.0/16.0)
			spread(x-1, y+1, 3.0/16.0)
			spread(x, y+1, 5.0/16.0)
			spread(x+1, y+1, 1.0/16.0)
		}
	}
	return out
}

// nearest returns the palette index with the smallest squared Euclidean
// RGB distance to (r, g, b).  Ties keep the lower index.
func nearest(pal raster.Palette, r, g, b float64) int {
	best := 0
	bestDist := -1.0
	for i, c := range pal {
		dr := r - float64(c.R)
		dg := g - float64(c.G)
		db := b - float64(c.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// DiffuseGray dithers a luminance buffer to black/white by running
// Diffuse against a two-entry palette, returning a 0/1 buffer
// (index 0 is black, 1 is white).
func DiffuseGray(src *raster.Gray) *raster.Gray {
	rgb := raster.NewRGB(src.W, src.H)
	for i, p := range src.Pix {
		rgb.Pix[i*3] = p
		rgb.Pix[i*3+1] = p
		rgb.Pix[i*3+2] = p
	}
	return Diffuse(rgb, raster.Palette{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}})
}
