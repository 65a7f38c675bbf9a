// Package raster defines the pixel buffer types the conversion core
// operates on.  Buffers are plain row-major byte slices: one byte per
// pixel for luminance, three for RGB.  Every transform stage works on
// an explicit copy (or declares in-place mutation), so a buffer handed
// to a stage is never silently modified behind the caller's back.
package raster

import (
	"fmt"
	"image"
)

// Gray is a single-channel luminance buffer, one byte per pixel.
type Gray struct {
	W, H int
	Pix  []byte // len == W*H, row-major
}

// RGB is a three-channel buffer, three bytes per pixel (R, G, B).
type RGB struct {
	W, H int
	Pix  []byte // len == W*H*3, row-major
}

// NewGray allocates a zeroed luminance buffer.
func NewGray(w, h int) *Gray {
	return &Gray{W: w, H: h, Pix: make([]byte, w*h)}
}

// NewRGB allocates a zeroed RGB buffer.
func NewRGB(w, h int) *RGB {
	return &RGB{W: w, H: h, Pix: make([]byte, w*h*3)}
}

// Clone returns an independent copy of the buffer.
func (g *Gray) Clone() *Gray {
	out := &Gray{W: g.W, H: g.H, Pix: make([]byte, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// Clone returns an independent copy of the buffer.
func (c *RGB) Clone() *RGB {
	out := &RGB{W: c.W, H: c.H, Pix: make([]byte, len(c.Pix))}
	copy(out.Pix, c.Pix)
	return out
}

// At returns the luminance value at (x, y). No bounds check.
func (g *Gray) At(x, y int) byte { return g.Pix[y*g.W+x] }

// Set writes the luminance value at (x, y). No bounds check.
func (g *Gray) Set(x, y int, v byte) { g.Pix[y*g.W+x] = v }

// Luma converts an RGB triplet to luminance the way the PNG decode path
// does: R·77 + G·150 + B·29, shifted right 8 bits.  Integer weights sum
// to 256, so the result stays in [0,255].
func Luma(r, g, b byte) byte {
	return byte((int(r)*77 + int(g)*150 + int(b)*29) >> 8)
}

// Gray collapses the RGB buffer to luminance.
func (c *RGB) Gray() *Gray {
	out := NewGray(c.W, c.H)
	for i, j := 0, 0; i < len(out.Pix); i, j = i+1, j+3 {
		out.Pix[i] = Luma(c.Pix[j], c.Pix[j+1], c.Pix[j+2])
	}
	return out
}

// FromImage converts a decoded image.Image into an RGB buffer, dropping
// alpha.  Used at the CLI boundary for non-PNG sources; PNG inputs go
// through the restricted decoder instead.
func FromImage(img image.Image) *RGB {
	b := img.Bounds()
	out := NewRGB(b.Dx(), b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.Pix[i] = byte(r >> 8)
			out.Pix[i+1] = byte(g >> 8)
			out.Pix[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return out
}

// Color is one palette entry.
type Color struct {
	R, G, B byte
}

// Palette is an ordered, index-stable list of colors.  Indexes emitted
// by the error-diffusion quantizer refer to positions in this slice.
type Palette []Color

// ACeP6 is the 6-color palette of ACeP-class color e-paper panels.
var ACeP6 = Palette{
	{0x00, 0x00, 0x00}, // black
	{0xFF, 0xFF, 0xFF}, // white
	{0xFF, 0x00, 0x00}, // red
	{0xFF, 0xFF, 0x00}, // yellow
	{0x00, 0x00, 0xFF}, // blue
	{0x00, 0xFF, 0x00}, // green
}

// ParsePalette parses a comma-separated list of RRGGBB hex triplets.
func ParsePalette(s string) (Palette, error) {
	var p Palette
	start := 0
	for start <= len(s) {
		end := start
		for end < len(s) && s[end] != ',' {
			end++
		}
		tok := s[start:end]
		if len(tok) != 6 {
			return nil, fmt.Errorf("palette entry %q: want 6 hex digits", tok)
		}
		var c Color
		for i, dst := range []*byte{&c.R, &c.G, &c.B} {
			hi, ok1 := hexVal(tok[i*2])
			lo, ok2 := hexVal(tok[i*2+1])
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("palette entry %q: invalid hex", tok)
			}
			*dst = hi<<4 | lo
		}
		p = append(p, c)
		start = end + 1
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	return p, nil
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
