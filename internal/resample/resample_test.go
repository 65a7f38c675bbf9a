package resample

import (
	"bytes"
	"testing"

	"github.com/AnyUserName/epdimg/internal/raster"
)

func TestCropRect(t *testing.T) {
	tests := []struct {
		name                       string
		srcW, srcH, dstW, dstH     int
		wantX, wantY, wantW, wantH int
	}{
		{"same aspect", 800, 480, 400, 240, 0, 0, 800, 480},
		{"source wider", 1600, 480, 800, 480, 400, 0, 800, 480},
		{"source taller", 800, 960, 800, 480, 0, 240, 800, 480},
		{"square to landscape", 480, 480, 800, 480, 0, 96, 480, 288},
	}
	for _, tt := range tests {
		x, y, w, h := cropRect(tt.srcW, tt.srcH, tt.dstW, tt.dstH)
		if x != tt.wantX || y != tt.wantY || w != tt.wantW || h != tt.wantH {
			t.Errorf("%s: got (%d,%d %dx%d), want (%d,%d %dx%d)",
				tt.name, x, y, w, h, tt.wantX, tt.wantY, tt.wantW, tt.wantH)
		}
	}
}

func TestFitGraySameSizeIsCopy(t *testing.T) {
	src := raster.NewGray(8, 8)
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}
	out := FitGray(src, 8, 8)
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Error("same-size fit altered pixels")
	}
	out.Pix[0] = 99
	if src.Pix[0] == 99 {
		t.Error("same-size fit aliases the source buffer")
	}
}

func TestFitGrayUniformStaysUniform(t *testing.T) {
	src := raster.NewGray(100, 60)
	for i := range src.Pix {
		src.Pix[i] = 137
	}
	out := FitGray(src, 33, 47)
	if out.W != 33 || out.H != 47 {
		t.Fatalf("dimensions: got %dx%d", out.W, out.H)
	}
	for i, p := range out.Pix {
		if p != 137 {
			t.Fatalf("pixel %d: got %d, want 137", i, p)
		}
	}
}

func TestFitGrayCentersCrop(t *testing.T) {
	// Left half black, right half white, source twice as wide as the
	// target aspect: the crop window sits in the middle, so the output
	// keeps the black/white split at its center.
	src := raster.NewGray(40, 10)
	for y := 0; y < 10; y++ {
		for x := 20; x < 40; x++ {
			src.Set(x, y, 255)
		}
	}
	out := FitGray(src, 20, 10)
	if out.At(0, 5) != 0 {
		t.Errorf("left edge: got %d, want 0", out.At(0, 5))
	}
	if out.At(19, 5) != 255 {
		t.Errorf("right edge: got %d, want 255", out.At(19, 5))
	}
}

func TestFitRGBMatchesGrayPerChannel(t *testing.T) {
	// A gray-valued RGB buffer resized must agree channel-by-channel
	// with the single-channel path on the same data.
	const srcW, srcH, dstW, dstH = 31, 17, 12, 9
	gray := raster.NewGray(srcW, srcH)
	rgb := raster.NewRGB(srcW, srcH)
	for i := range gray.Pix {
		v := byte(i * 7)
		gray.Pix[i] = v
		rgb.Pix[i*3] = v
		rgb.Pix[i*3+1] = v
		rgb.Pix[i*3+2] = v
	}

	gOut := FitGray(gray, dstW, dstH)
	cOut := FitRGB(rgb, dstW, dstH)
	for i := range gOut.Pix {
		for c := 0; c < 3; c++ {
			if cOut.Pix[i*3+c] != gOut.Pix[i] {
				t.Fatalf("pixel %d channel %d: rgb %d != gray %d",
					i, c, cOut.Pix[i*3+c], gOut.Pix[i])
			}
		}
	}
}

func TestBilinearBlend(t *testing.T) {
	// 2x1 → 4x1: destination x maps to source x/2, so dst[1] blends
	// src[0] and src[1] at fraction 0.5.
	src := []byte{0, 200}
	dst := make([]byte, 4)
	bilinear(src, 2, 1, dst, 4, 1, 1)
	want := []byte{0, 100, 200, 200}
	if !bytes.Equal(dst, want) {
		t.Errorf("got %v, want %v", dst, want)
	}
}
