// Package epng implements the restricted PNG codec used for e-paper
// transfer images: 8-bit depth, non-interlaced, color types 0/2/4/6 on
// decode, and 1-bit mono / 8-bit gray / palette-indexed on encode.
// The wire format is built from first principles (chunk framing, zlib
// container, scanline filters); only the DEFLATE layer is delegated to
// a compression library.  Deliberately not a general PNG implementation:
// no interlacing, no 16-bit depth, no animation, no input palettes.
package epng

import (
	"encoding/binary"
	"fmt"

	"github.com/AnyUserName/epdimg/internal/raster"
)

// FormatError reports a malformed or unsupported input PNG.  Fatal:
// decoding produces no partial result.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "epng: " + e.Reason
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// PNG color types this decoder accepts.
const (
	ctGray      = 0
	ctTruecolor = 2
	ctIndexed   = 3
	ctGrayAlpha = 4
	ctTrueAlpha = 6
)

// Image is the decode result.  Lum is always present; RGB is non-nil
// only for color inputs (types 2 and 6), with alpha stripped.
type Image struct {
	Lum *raster.Gray
	RGB *raster.RGB
}

// ChunkInfo describes one chunk of a parsed PNG, for inspection.
type ChunkInfo struct {
	Type string
	Len  int
}

// Decode parses a restricted PNG and returns its luminance buffer plus,
// for color inputs, a parallel RGB buffer.  Chunk CRCs are not verified.
// Bit depth 1 is accepted only for plain grayscale, so that this
// package's own packed-mono output decodes back to a 0/1 buffer.
func Decode(data []byte) (*Image, error) {
	w, h, bitDepth, colorType, idat, _, err := parse(data)
	if err != nil {
		return nil, err
	}
	// Inspect tolerates indexed chunks (this package writes them), but
	// pixel decoding does not: palette decoding is out of scope.
	if colorType == ctIndexed {
		return nil, &FormatError{Reason: "indexed color decoding not supported"}
	}

	raw, err := zlibUnwrap(idat)
	if err != nil {
		return nil, err
	}

	if bitDepth == 1 {
		return decodeMono(raw, w, h)
	}

	channels := channelCount(colorType)
	stride := w * channels
	if len(raw) < h*(stride+1) {
		return nil, &FormatError{Reason: fmt.Sprintf(
			"pixel data short: have %d bytes, need %d", len(raw), h*(stride+1))}
	}

	pix, err := unfilter(raw, w, h, channels)
	if err != nil {
		return nil, err
	}

	img := &Image{Lum: raster.NewGray(w, h)}
	switch colorType {
	case ctGray:
		copy(img.Lum.Pix, pix)
	case ctGrayAlpha:
		for i := 0; i < w*h; i++ {
			img.Lum.Pix[i] = pix[i*2]
		}
	case ctTruecolor, ctTrueAlpha:
		img.RGB = raster.NewRGB(w, h)
		for i := 0; i < w*h; i++ {
			r := pix[i*channels]
			g := pix[i*channels+1]
			b := pix[i*channels+2]
			img.RGB.Pix[i*3] = r
			img.RGB.Pix[i*3+1] = g
			img.RGB.Pix[i*3+2] = b
			img.Lum.Pix[i] = raster.Luma(r, g, b)
		}
	}
	return img, nil
}

// decodeMono expands this package's own 1-bit grayscale format back to
// a 0/1 luminance buffer.
func decodeMono(raw []byte, w, h int) (*Image, error) {
	rowBytes := (w + 7) / 8
	if len(raw) < h*(rowBytes+1) {
		return nil, &FormatError{Reason: "1-bit pixel data short"}
	}
	packed, err := unfilter(raw, rowBytes, h, 1)
	if err != nil {
		return nil, err
	}
	img := &Image{Lum: raster.NewGray(w, h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b := packed[y*rowBytes+x/8]
			img.Lum.Pix[y*w+x] = (b >> uint(7-x%8)) & 1
		}
	}
	return img, nil
}

// Inspect parses the chunk layout without inflating pixel data.
func Inspect(data []byte) (w, h int, colorType byte, chunks []ChunkInfo, err error) {
	w, h, _, colorType, _, chunks, err = parse(data)
	return
}

// parse walks the chunk stream, validates the IHDR restrictions, and
// concatenates IDAT payloads.
func parse(data []byte) (w, h int, bitDepth, colorType byte, idat []byte, chunks []ChunkInfo, err error) {
	fail := func(reason string) (int, int, byte, byte, []byte, []ChunkInfo, error) {
		return 0, 0, 0, 0, nil, nil, &FormatError{Reason: reason}
	}
	if len(data) < len(pngSignature) || string(data[:8]) != string(pngSignature) {
		return fail("missing PNG signature")
	}

	pos := 8
	sawIHDR := false
	for pos+12 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		if pos+12+length > len(data) {
			return fail("chunk " + typ + " truncated")
		}
		payload := data[pos+8 : pos+8+length]
		chunks = append(chunks, ChunkInfo{Type: typ, Len: length})

		switch typ {
		case "IHDR":
			if length != 13 {
				return fail("bad IHDR length")
			}
			w = int(binary.BigEndian.Uint32(payload[0:4]))
			h = int(binary.BigEndian.Uint32(payload[4:8]))
			bitDepth = payload[8]
			colorType = payload[9]
			interlace := payload[12]
			if bitDepth != 8 && !(bitDepth == 1 && colorType == ctGray) {
				return fail(fmt.Sprintf("unsupported bit depth %d", bitDepth))
			}
			if interlace != 0 {
				return fail("interlaced PNG not supported")
			}
			switch colorType {
			case ctGray, ctTruecolor, ctIndexed, ctGrayAlpha, ctTrueAlpha:
			default:
				return fail(fmt.Sprintf("unsupported color type %d", colorType))
			}
			if w <= 0 || h <= 0 {
				return fail("zero image dimensions")
			}
			sawIHDR = true
		case "IDAT":
			idat = append(idat, payload...)
		case "IEND":
			if !sawIHDR {
				return fail("IEND before IHDR")
			}
			if len(idat) == 0 {
				return fail("no IDAT data")
			}
			return w, h, bitDepth, colorType, idat, chunks, nil
		}
		pos += 12 + length // skip CRC, not verified on read
	}
	return fail("missing IEND")
}

func channelCount(colorType byte) int {
	switch colorType {
	case ctGray:
		return 1
	case ctGrayAlpha:
		return 2
	case ctTruecolor:
		return 3
	default: // ctTrueAlpha
		return 4
	}
}

// Scanline filter types.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// unfilter reverses the per-row predictive filters.  Each row in raw is
// prefixed with a filter-type byte.
func unfilter(raw []byte, w, h, channels int) ([]byte, error) {
	stride := w * channels
	out := make([]byte, h*stride)
	prev := make([]byte, stride) // zero row above the first

	for y := 0; y < h; y++ {
		ft := raw[y*(stride+1)]
		row := raw[y*(stride+1)+1 : y*(stride+1)+1+stride]
		dst := out[y*stride : (y+1)*stride]

		switch ft {
		case ftNone:
			copy(dst, row)
		case ftSub:
			for x := 0; x < stride; x++ {
				var left byte
				if x >= channels {
					left = dst[x-channels]
				}
				dst[x] = row[x] + left
			}
		case ftUp:
			for x := 0; x < stride; x++ {
				dst[x] = row[x] + prev[x]
			}
		case ftAverage:
			for x := 0; x < stride; x++ {
				var left byte
				if x >= channels {
					left = dst[x-channels]
				}
				dst[x] = row[x] + byte((int(left)+int(prev[x]))/2)
			}
		case ftPaeth:
			for x := 0; x < stride; x++ {
				var left, upLeft byte
				if x >= channels {
					left = dst[x-channels]
					upLeft = prev[x-channels]
				}
				dst[x] = row[x] + paeth(left, prev[x], upLeft)
			}
		default:
			return nil, &FormatError{Reason: fmt.Sprintf("unknown filter type %d in row %d", ft, y)}
		}
		prev = dst
	}
	return out, nil
}

// paeth picks whichever of {left, above, upper-left} best predicts
// p = a + b − c, by smallest absolute difference.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
