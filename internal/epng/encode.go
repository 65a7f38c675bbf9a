package epng

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/AnyUserName/epdimg/internal/raster"
)

// EncodeMono packs a binary buffer (0 = black, 1 = white) into a 1-bit
// grayscale PNG, 8 pixels per byte, most-significant-bit first.
func EncodeMono(bits *raster.Gray) ([]byte, error) {
	w, h := bits.W, bits.H
	rowBytes := (w + 7) / 8
	raw := make([]byte, 0, h*(rowBytes+1))

	for y := 0; y < h; y++ {
		raw = append(raw, ftNone)
		var cur byte
		bit := 7
		for x := 0; x < w; x++ {
			if bits.Pix[y*w+x] != 0 {
				cur |= 1 << uint(bit)
			}
			bit--
			if bit < 0 {
				raw = append(raw, cur)
				cur = 0
				bit = 7
			}
		}
		if bit != 7 {
			raw = append(raw, cur)
		}
	}
	return assemble(w, h, 1, ctGray, nil, raw)
}

// EncodeGray emits an 8-bit grayscale PNG, one byte per pixel.
func EncodeGray(g *raster.Gray) ([]byte, error) {
	raw := make([]byte, 0, g.H*(g.W+1))
	for y := 0; y < g.H; y++ {
		raw = append(raw, ftNone)
		raw = append(raw, g.Pix[y*g.W:(y+1)*g.W]...)
	}
	return assemble(g.W, g.H, 8, ctGray, nil, raw)
}

// EncodeIndexed emits a palette-indexed PNG.  idx holds palette indexes,
// one byte per pixel; the palette chunk carries pal's triplets in index
// order.
func EncodeIndexed(idx *raster.Gray, pal raster.Palette) ([]byte, error) {
	if len(pal) == 0 || len(pal) > 256 {
		return nil, fmt.Errorf("epng: palette size %d out of range", len(pal))
	}
	for i, v := range idx.Pix {
		if int(v) >= len(pal) {
			return nil, fmt.Errorf("epng: index %d at pixel %d exceeds palette size %d", v, i, len(pal))
		}
	}
	raw := make([]byte, 0, idx.H*(idx.W+1))
	for y := 0; y < idx.H; y++ {
		raw = append(raw, ftNone)
		raw = append(raw, idx.Pix[y*idx.W:(y+1)*idx.W]...)
	}
	plte := make([]byte, 0, len(pal)*3)
	for _, c := range pal {
		plte = append(plte, c.R, c.G, c.B)
	}
	return assemble(idx.W, idx.H, 8, ctIndexed, plte, raw)
}

// assemble wraps the filtered row stream in zlib and frames the chunks.
func assemble(w, h int, bitDepth byte, colorType byte, plte, raw []byte) ([]byte, error) {
	idat, err := zlibWrap(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(idat) + 128)
	buf.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
	ihdr[8] = bitDepth
	ihdr[9] = colorType
	// compression, filter, interlace all zero
	writeChunk(&buf, "IHDR", ihdr)
	if plte != nil {
		writeChunk(&buf, "PLTE", plte)
	}
	writeChunk(&buf, "IDAT", idat)
	writeChunk(&buf, "IEND", nil)
	return buf.Bytes(), nil
}

// writeChunk frames one chunk: length, type, data, CRC32 over (type, data).
func writeChunk(buf *bytes.Buffer, typ string, data []byte) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(data)))
	copy(hdr[4:8], typ)
	buf.Write(hdr[:])
	buf.Write(data)

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32Sum(hdr[4:8], data))
	buf.Write(crc[:])
}
