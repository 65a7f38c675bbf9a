package convert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AnyUserName/epdimg/internal/raster"
	"github.com/AnyUserName/epdimg/internal/style"
)

func mustOrdered(t *testing.T, name string, contrast, gamma, min, max float64) style.Spec {
	t.Helper()
	s, err := style.NewOrderedDither(name, contrast, gamma, min, max)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustAdaptive(t *testing.T, name string, contrast, gamma, min, max, target float64) style.Spec {
	t.Helper()
	s, err := style.NewAdaptiveThreshold(name, contrast, gamma, min, max, target)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func noise(w, h int) *raster.Gray {
	g := raster.NewGray(w, h)
	seed := uint32(12345)
	for i := range g.Pix {
		seed = seed*1664525 + 1013904223
		g.Pix[i] = byte(seed >> 24)
	}
	return g
}

func TestFirstAttemptSuccess(t *testing.T) {
	// Uniform noise dithers to roughly half black; a wide band accepts
	// the first attempt.
	spec := mustOrdered(t, "wide", 1.0, 1.0, 0.2, 0.8)
	res := Run(noise(64, 64), spec, nil)
	if res.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", res.Attempts)
	}
	if res.StyleName != "wide" {
		t.Errorf("style name = %q", res.StyleName)
	}
	if res.BlackRatio < 0.2 || res.BlackRatio > 0.8 {
		t.Errorf("ratio %.3f outside accepted band", res.BlackRatio)
	}
	if res.Threshold != -1 {
		t.Errorf("ordered dither should report threshold -1, got %d", res.Threshold)
	}
}

func TestGuardrailFires(t *testing.T) {
	// An all-black source can never reach a near-zero black band; both
	// attempts miss by far more than the guardrail distance.
	src := raster.NewGray(32, 32)
	spec := mustOrdered(t, "impossible", 1.0, 1.0, 0.0, 0.01)

	var warnings []string
	res := Run(src, spec, func(format string, args ...any) {
		warnings = append(warnings, format)
	})

	if res.Attempts != 3 {
		t.Errorf("attempts = %d, want 3 (two quantization + one guardrail)", res.Attempts)
	}
	if res.StyleName != "impossible→safe" {
		t.Errorf("style name = %q, want composed chain", res.StyleName)
	}
	if len(warnings) == 0 {
		t.Error("guardrail fallback produced no warning")
	}
}

func TestBestOfTwoKeptWhenClose(t *testing.T) {
	// Noise lands near 0.5 black; a band just out of reach but within
	// the guardrail distance keeps the best attempt under its own name.
	src := noise(64, 64)
	spec := mustOrdered(t, "close", 1.0, 1.0, 0.55, 0.60)
	res := Run(src, spec, nil)

	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", res.Attempts)
	}
	if strings.Contains(res.StyleName, "→") {
		t.Errorf("guardrail fired unexpectedly: %q", res.StyleName)
	}
	if res.StyleName != "close" {
		t.Errorf("style name = %q, want \"close\"", res.StyleName)
	}
}

func TestAttemptsAlwaysBounded(t *testing.T) {
	sources := []*raster.Gray{
		raster.NewGray(16, 16), // all black
		noise(16, 16),
	}
	white := raster.NewGray(16, 16)
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	sources = append(sources, white)

	specs := []style.Spec{
		mustOrdered(t, "o-narrow", 1.0, 1.0, 0.49, 0.50),
		mustOrdered(t, "o-wide", 1.0, 1.0, 0.0, 1.0),
		mustAdaptive(t, "a-narrow", 1.0, 1.0, 0.29, 0.30, 0.30),
		mustAdaptive(t, "a-wide", 1.0, 1.0, 0.0, 1.0, 0.20),
	}
	for _, src := range sources {
		for _, spec := range specs {
			res := Run(src, spec, nil)
			if res.Attempts < 1 || res.Attempts > 3 {
				t.Errorf("style %q: attempts = %d, want 1..3", spec.Name, res.Attempts)
			}
		}
	}
}

func TestSourceNeverMutated(t *testing.T) {
	src := noise(32, 32)
	orig := append([]byte(nil), src.Pix...)
	_ = Run(src, style.Get("text"), nil)
	_ = Run(src, style.Get("photo"), nil)
	if !bytes.Equal(src.Pix, orig) {
		t.Error("Run mutated the caller's source buffer")
	}
}

func TestDeriveRetryAdaptive(t *testing.T) {
	spec := mustAdaptive(t, "a", 1.0, 1.0, 0.20, 0.40, 0.30)
	tests := []struct {
		name     string
		measured float64
		want     float64
	}{
		{"too white raises target", 0.10, 0.34},
		{"too black lowers target", 0.60, 0.26},
	}
	for _, tt := range tests {
		got := deriveRetry(spec, tt.measured)
		if !almostEqual(got.TargetBlackPct, tt.want) {
			t.Errorf("%s: target %.3f, want %.3f", tt.name, got.TargetBlackPct, tt.want)
		}
		if got.Gamma != spec.Gamma || got.Contrast != spec.Contrast {
			t.Errorf("%s: adaptive retry must not touch the tone curve", tt.name)
		}
	}

	// Clamping at both ends.
	low := mustAdaptive(t, "low", 1.0, 1.0, 0.0, 1.0, 0.07)
	if got := deriveRetry(low, 0.9); !almostEqual(got.TargetBlackPct, 0.06) {
		t.Errorf("low clamp: got %.3f, want 0.06", got.TargetBlackPct)
	}
	high := mustAdaptive(t, "high", 1.0, 1.0, 0.5, 1.0, 0.39)
	if got := deriveRetry(high, 0.0); !almostEqual(got.TargetBlackPct, 0.40) {
		t.Errorf("high clamp: got %.3f, want 0.40", got.TargetBlackPct)
	}
}

func TestDeriveRetryOrdered(t *testing.T) {
	spec := mustOrdered(t, "o", 1.0, 1.0, 0.20, 0.40)
	if got := deriveRetry(spec, 0.90); !almostEqual(got.Gamma, 0.94) {
		t.Errorf("too dark: gamma %.3f, want 0.94", got.Gamma)
	}
	if got := deriveRetry(spec, 0.05); !almostEqual(got.Gamma, 1.06) {
		t.Errorf("too light: gamma %.3f, want 1.06", got.Gamma)
	}
	if got := deriveRetry(spec, 0.90); got.TargetBlackPct != spec.TargetBlackPct {
		t.Error("ordered retry must not touch the threshold target")
	}
}

func TestBlackRatio(t *testing.T) {
	bits := raster.NewGray(4, 4)
	for i := 0; i < 4; i++ {
		bits.Pix[i] = 1
	}
	if got := BlackRatio(bits); !almostEqual(got, 0.75) {
		t.Errorf("ratio = %.3f, want 0.75", got)
	}
}

func TestBandDistance(t *testing.T) {
	spec := mustOrdered(t, "b", 1.0, 1.0, 0.20, 0.40)
	tests := []struct {
		ratio float64
		want  float64
	}{
		{0.30, 0},
		{0.20, 0},
		{0.40, 0},
		{0.10, 0.10},
		{0.55, 0.15},
	}
	for _, tt := range tests {
		if got := bandDistance(tt.ratio, spec); !almostEqual(got, tt.want) {
			t.Errorf("bandDistance(%.2f) = %.3f, want %.3f", tt.ratio, got, tt.want)
		}
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
