// Package resample fits a source buffer to the device geometry:
// center-crop to the target aspect ratio, then bilinear resize.
// Grayscale and RGB buffers go through the same per-channel math so the
// two paths cannot drift apart.
package resample

import (
	"github.com/AnyUserName/epdimg/internal/raster"
)

// FitGray center-crops and bilinearly resizes a luminance buffer to
// exactly dstW×dstH.  The source is never modified.
func FitGray(src *raster.Gray, dstW, dstH int) *raster.Gray {
	cx, cy, cw, ch := cropRect(src.W, src.H, dstW, dstH)
	cropped := src
	if cw != src.W || ch != src.H {
		cropped = raster.NewGray(cw, ch)
		for y := 0; y < ch; y++ {
			copy(cropped.Pix[y*cw:(y+1)*cw], src.Pix[(cy+y)*src.W+cx:(cy+y)*src.W+cx+cw])
		}
	}
	if cw == dstW && ch == dstH {
		if cropped == src {
			return src.Clone()
		}
		return cropped
	}
	out := raster.NewGray(dstW, dstH)
	bilinear(cropped.Pix, cw, ch, out.Pix, dstW, dstH, 1)
	return out
}

// FitRGB is FitGray for three-channel buffers, channel by channel.
func FitRGB(src *raster.RGB, dstW, dstH int) *raster.RGB {
	cx, cy, cw, ch := cropRect(src.W, src.H, dstW, dstH)
	cropped := src
	if cw != src.W || ch != src.H {
		cropped = raster.NewRGB(cw, ch)
		for y := 0; y < ch; y++ {
			copy(cropped.Pix[y*cw*3:(y+1)*cw*3], src.Pix[((cy+y)*src.W+cx)*3:((cy+y)*src.W+cx+cw)*3])
		}
	}
	if cw == dstW && ch == dstH {
		if cropped == src {
			return src.Clone()
		}
		return cropped
	}
	out := raster.NewRGB(dstW, dstH)
	bilinear(cropped.Pix, cw, ch, out.Pix, dstW, dstH, 3)
	return out
}

// cropRect returns the centered source window matching the target
// aspect ratio: full height with a horizontal crop when the source is
// wider than the target, full width with a vertical crop when taller.
func cropRect(srcW, srcH, dstW, dstH int) (x, y, w, h int) {
	// Compare srcW/srcH against dstW/dstH without float division.
	if srcW*dstH > dstW*srcH {
		w = srcH * dstW / dstH
		if w < 1 {
			w = 1
		}
		return (srcW - w) / 2, 0, w, srcH
	}
	h = srcW * dstH / dstW
	if h < 1 {
		h = 1
	}
	return 0, (srcH - h) / 2, srcW, h
}

// bilinear maps each destination pixel to (x·srcW/dstW, y·srcH/dstH),
// gathers the four neighboring source pixels clamped at the image
// bounds, and blends by the fractional offsets.
func bilinear(src []byte, srcW, srcH int, dst []byte, dstW, dstH, channels int) {
	xRatio := float64(srcW) / float64(dstW)
	yRatio := float64(srcH) / float64(dstH)

	for y := 0; y < dstH; y++ {
		sy := float64(y) * yRatio
		y0 := int(sy)
		if y0 > srcH-1 {
			y0 = srcH - 1
		}
		y1 := y0 + 1
		if y1 > srcH-1 {
			y1 = srcH - 1
		}
		fy := sy - float64(y0)

		for x := 0; x < dstW; x++ {
			sx := float64(x) * xRatio
			x0 := int(sx)
			if x0 > srcW-1 {
				x0 = srcW - 1
			}
			x1 := x0 + 1
			if x1 > srcW-1 {
				x1 = srcW - 1
			}
			fx := sx - float64(x0)

			for c := 0; c < channels; c++ {
				p00 := float64(src[(y0*srcW+x0)*channels+c])
				p10 := float64(src[(y0*srcW+x1)*channels+c])
				p01 := float64(src[(y1*srcW+x0)*channels+c])
				p11 := float64(src[(y1*srcW+x1)*channels+c])

				top := p00 + (p10-p00)*fx
				bot := p01 + (p11-p01)*fx
				v := top + (bot-top)*fy
				dst[(y*dstW+x)*channels+c] = byte(v + 0.5)
			}
		}
	}
}
