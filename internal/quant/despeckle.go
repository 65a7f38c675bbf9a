package quant

import "github.com/AnyUserName/epdimg/internal/raster"

// Despeckle cleans a binary (0/1) buffer in place with one symmetric
// morphological pass: an interior black pixel with at most one black
// 8-neighbor flips to white, an interior white pixel with at least
// seven black 8-neighbors fills to black.  Neighbor counts come from an
// unmutated snapshot, so flips never cascade within a pass.  Returns
// the number of pixels changed.
func Despeckle(bits *raster.Gray) int {
	w, h := bits.W, bits.H
	if w < 3 || h < 3 {
		return 0
	}
	snap := bits.Clone()

	flips := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			black := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if snap.Pix[(y+dy)*w+(x+dx)] == 0 {
						black++
					}
				}
			}
			switch {
			case snap.Pix[y*w+x] == 0 && black <= 1:
				bits.Pix[y*w+x] = 1
				flips++
			case snap.Pix[y*w+x] == 1 && black >= 7:
				bits.Pix[y*w+x] = 0
				flips++
			}
		}
	}
	return flips
}
