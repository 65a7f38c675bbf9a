package quant

import "github.com/AnyUserName/epdimg/internal/raster"

// Canonical 8×8 Bayer matrix, values 0–63.
var bayer8 = [8][8]uint8{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// bayerThresh is the matrix normalized to [0,255), built once at init
// and immutable afterwards.
var bayerThresh [8][8]int

func init() {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			bayerThresh[y][x] = int(bayer8[y][x]) * 4
		}
	}
}

// OrderedDither applies the 8×8 Bayer matrix: luminance above the
// matrix cell at (y mod 8, x mod 8) goes white, the rest black.  Fully
// deterministic and spatially stable, so repeated renders of the same
// frame do not shimmer between slow e-paper refreshes.
func OrderedDither(src *raster.Gray) *raster.Gray {
	out := raster.NewGray(src.W, src.H)
	for y := 0; y < src.H; y++ {
		row := bayerThresh[y&7]
		for x := 0; x < src.W; x++ {
			if int(src.Pix[y*src.W+x]) > row[x&7] {
				out.Pix[y*src.W+x] = 1
			}
		}
	}
	return out
}
