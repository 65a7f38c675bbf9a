package quant

import (
	"math"

	"github.com/AnyUserName/epdimg/internal/raster"
)

// Hard bounds on the adaptive threshold.  Whatever the histogram walk
// returns, T stays inside [100, 220] so a pathological input (all-black
// scan, blown-out photo) cannot push the whole frame to one class.
const (
	ThresholdMin = 100
	ThresholdMax = 220
)

// selfCheckTolerance is how far the ramp-model black fraction at T may
// drift from the requested target before a warning is logged.
const selfCheckTolerance = 0.02

// PickThreshold builds a 256-bin histogram of src and walks from the
// darkest bin upward, accumulating counts until the total reaches
// floor(len·targetBlackPct).  That bin, clamped to [ThresholdMin,
// ThresholdMax], is the threshold.  For a fixed buffer the result is
// monotone in targetBlackPct.
func PickThreshold(src *raster.Gray, targetBlackPct float64) int {
	var hist [256]int
	for _, p := range src.Pix {
		hist[p]++
	}

	want := int(math.Floor(float64(len(src.Pix)) * targetBlackPct))
	t := 255
	acc := 0
	for i := 0; i < 256; i++ {
		acc += hist[i]
		if acc >= want {
			t = i
			break
		}
	}

	if t < ThresholdMin {
		t = ThresholdMin
	} else if t > ThresholdMax {
		t = ThresholdMax
	}
	return t
}

// ApplyThreshold classifies pixels with luminance ≤ t as black (0) and
// the rest as white (1), into a new buffer.
func ApplyThreshold(src *raster.Gray, t int) *raster.Gray {
	out := raster.NewGray(src.W, src.H)
	for i, p := range src.Pix {
		if int(p) > t {
			out.Pix[i] = 1
		}
	}
	return out
}

// AdaptiveThreshold runs PickThreshold and ApplyThreshold, then
// self-checks the chosen threshold against a uniform-ramp model: on a
// flat 0–255 ramp, threshold t yields a black fraction of (t+1)/256.
// A drift beyond selfCheckTolerance is logged through warnf and
// otherwise ignored; the clamp already bounds the damage.
func AdaptiveThreshold(src *raster.Gray, targetBlackPct float64, warnf func(format string, args ...any)) (*raster.Gray, int) {
	t := PickThreshold(src, targetBlackPct)

	rampFrac := float64(t+1) / 256
	if diff := math.Abs(rampFrac - targetBlackPct); diff > selfCheckTolerance && warnf != nil {
		warnf("threshold self-check: T=%d implies ramp black fraction %.3f, target %.3f (Δ %.3f)",
			t, rampFrac, targetBlackPct, diff)
	}

	return ApplyThreshold(src, t), t
}
