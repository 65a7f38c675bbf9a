package tone

import (
	"bytes"
	"math"
	"testing"

	"github.com/AnyUserName/epdimg/internal/raster"
)

func TestApplyIdentity(t *testing.T) {
	src := raster.NewGray(16, 16)
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}
	out := Apply(src, 1.0, 1.0)
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Error("contrast 1.0 / gamma 1.0 is not the identity")
	}
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	src := raster.NewGray(8, 8)
	for i := range src.Pix {
		src.Pix[i] = 128
	}
	orig := append([]byte(nil), src.Pix...)
	_ = Apply(src, 1.5, 0.8)
	if !bytes.Equal(src.Pix, orig) {
		t.Error("Apply mutated the caller's buffer")
	}
}

func TestApplyCurve(t *testing.T) {
	tests := []struct {
		name     string
		in       byte
		contrast float64
		gamma    float64
		want     byte
	}{
		{"midpoint fixed under contrast", 128, 2.0, 1.0, 128},
		{"contrast clips dark", 0, 2.0, 1.0, 0},
		{"contrast clips bright", 255, 2.0, 1.0, 255},
		{"gamma lifts midtones", 64, 1.0, 0.5, 128},
		{"white fixed under gamma", 255, 1.0, 0.5, 255},
		{"black fixed under gamma", 0, 1.0, 2.0, 0},
	}
	for _, tt := range tests {
		src := raster.NewGray(1, 1)
		src.Pix[0] = tt.in
		got := Apply(src, tt.contrast, tt.gamma).Pix[0]

		// The table is exact math: recompute to guard rounding drift.
		v := (float64(tt.in)-128)*tt.contrast + 128
		v = math.Max(0, math.Min(255, v))
		want := byte(math.Round(255 * math.Pow(v/255, tt.gamma)))
		if want != tt.want {
			t.Fatalf("%s: test table wrong, formula gives %d", tt.name, want)
		}
		if got != tt.want {
			t.Errorf("%s: Apply(%d) = %d, want %d", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestApplyInPlace(t *testing.T) {
	buf := raster.NewGray(4, 4)
	for i := range buf.Pix {
		buf.Pix[i] = 200
	}
	ApplyInPlace(buf, 1.0, 2.0)
	want := byte(math.Round(255 * math.Pow(200.0/255, 2.0)))
	for i, p := range buf.Pix {
		if p != want {
			t.Fatalf("pixel %d: got %d, want %d", i, p, want)
		}
	}
}
