// Package convert drives a luminance buffer through tone mapping and
// quantization toward a style's target tonal band.  The control flow is
// a strictly bounded three-stage machine — first attempt, one derived
// retry, then guardrail-or-best — so a conversion performs at most two
// quantization attempts plus one guardrail attempt, never more.
package convert

import (
	"github.com/AnyUserName/epdimg/internal/quant"
	"github.com/AnyUserName/epdimg/internal/raster"
	"github.com/AnyUserName/epdimg/internal/style"
	"github.com/AnyUserName/epdimg/internal/tone"
)

// Retry derivation and guardrail constants.
const (
	// targetStep shifts the adaptive-threshold black target toward
	// correcting the measured deficiency on retry.
	targetStep = 0.04
	targetMin  = 0.06
	targetMax  = 0.40

	// gammaStep lightens or darkens an ordered-dither retry.
	gammaStep = 0.06

	// guardrailDistance is the maximum distance from the band the best
	// of the two attempts may have before both are discarded for the
	// safe preset.
	guardrailDistance = 0.10
)

// Result is the terminal output of a conversion.
type Result struct {
	// Bits is the quantized buffer, 0 = black, 1 = white.
	Bits *raster.Gray
	// BlackRatio is the measured fraction of black pixels in Bits.
	BlackRatio float64
	// StyleName is the style actually used.  When the guardrail fired
	// it is a composed chain, e.g. "photo→safe".
	StyleName string
	// Threshold is the histogram threshold of the final attempt, or -1
	// for ordered-dither output.
	Threshold int
	// Attempts counts quantization attempts, guardrail included.
	Attempts int
}

// WarnFunc receives quantization-quality diagnostics.  Never fatal.
type WarnFunc func(format string, args ...any)

// Run converts src under the given style.  src is never modified; every
// attempt works on a fresh copy of the original, unadjusted source.
// For valid input Run always produces a usable result — quantization
// quality concerns are absorbed here and surfaced only through warnf
// and the composed style name.
func Run(src *raster.Gray, spec style.Spec, warnf WarnFunc) *Result {
	warn := warnf
	if warn == nil {
		warn = func(string, ...any) {}
	}

	first := attempt(src, spec, warn)
	if inBand(first.BlackRatio, spec) {
		first.Attempts = 1
		return first
	}

	// One retry, derived from the original spec, run against the
	// original source.
	adjusted := deriveRetry(spec, first.BlackRatio)
	second := attempt(src, adjusted, warn)
	if inBand(second.BlackRatio, spec) {
		second.Attempts = 2
		return second
	}

	// Neither attempt landed in the band: keep whichever came closer,
	// unless both are so far off that only the safe preset remains.
	best := first
	if bandDistance(second.BlackRatio, spec) < bandDistance(first.BlackRatio, spec) {
		best = second
	}

	if bandDistance(best.BlackRatio, spec) > guardrailDistance {
		warn("style %q: best ratio %.3f is %.3f from band [%.2f, %.2f], falling back to %q",
			spec.Name, best.BlackRatio, bandDistance(best.BlackRatio, spec),
			spec.BlackMin, spec.BlackMax, style.Safe.Name)
		guard := attempt(src, style.Safe, warn)
		guard.StyleName = spec.Name + "→" + style.Safe.Name
		guard.Attempts = 3
		return guard
	}

	warn("style %q: ratio %.3f outside band [%.2f, %.2f], keeping best of two attempts",
		spec.Name, best.BlackRatio, spec.BlackMin, spec.BlackMax)
	best.Attempts = 2
	return best
}

// attempt copies the source, applies the style's tone curve, quantizes
// per its mode, and measures the black ratio.
func attempt(src *raster.Gray, spec style.Spec, warn WarnFunc) *Result {
	toned := tone.Apply(src, spec.Contrast, spec.Gamma)

	var bits *raster.Gray
	threshold := -1
	switch spec.Mode {
	case style.AdaptiveThreshold:
		bits, threshold = quant.AdaptiveThreshold(toned, spec.TargetBlackPct, warn)
	default:
		bits = quant.OrderedDither(toned)
	}

	return &Result{
		Bits:       bits,
		BlackRatio: BlackRatio(bits),
		StyleName:  spec.Name,
		Threshold:  threshold,
	}
}

// deriveRetry produces the single adjusted configuration for the retry
// stage.  Adaptive-threshold styles shift the black target one step
// toward correcting the deficiency, clamped to [targetMin, targetMax];
// ordered-dither styles shift gamma one step, lightening a too-dark
// result and darkening a too-light one.  Always derived from the
// original spec, never from an already-adjusted one.
func deriveRetry(spec style.Spec, measured float64) style.Spec {
	switch spec.Mode {
	case style.AdaptiveThreshold:
		target := spec.TargetBlackPct
		if measured < spec.BlackMin {
			target += targetStep // too white: aim for more black
		} else {
			target -= targetStep // too black: aim for less
		}
		if target < targetMin {
			target = targetMin
		} else if target > targetMax {
			target = targetMax
		}
		return spec.WithTargetBlackPct(target)
	default:
		gamma := spec.Gamma
		if measured > spec.BlackMax {
			gamma -= gammaStep // too dark: lift midtones
		} else {
			gamma += gammaStep // too light: push midtones down
		}
		return spec.WithGamma(gamma)
	}
}

// BlackRatio counts black (zero) pixels as a fraction of the buffer.
func BlackRatio(bits *raster.Gray) float64 {
	if len(bits.Pix) == 0 {
		return 0
	}
	black := 0
	for _, p := range bits.Pix {
		if p == 0 {
			black++
		}
	}
	return float64(black) / float64(len(bits.Pix))
}

func inBand(ratio float64, spec style.Spec) bool {
	return ratio >= spec.BlackMin && ratio <= spec.BlackMax
}

// bandDistance is zero inside the band, otherwise the distance to the
// nearer edge.
func bandDistance(ratio float64, spec style.Spec) float64 {
	switch {
	case ratio < spec.BlackMin:
		return spec.BlackMin - ratio
	case ratio > spec.BlackMax:
		return ratio - spec.BlackMax
	default:
		return 0
	}
}
