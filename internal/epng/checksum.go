package epng

// CRC32 (reflected polynomial 0xEDB88320, as PNG chunk checksums use)
// and Adler32 (zlib trailer), implemented table-driven from first
// principles.  The table is built once at init and never mutated.

var crcTable [256]uint32

func init() {
	for n := 0; n < 256; n++ {
		c := uint32(n)
		for k := 0; k < 8; k++ {
			if c&1 != 0 {
				c = 0xEDB88320 ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		crcTable[n] = c
	}
}

// crc32Update folds data into a running CRC.  Callers start from
// 0xFFFFFFFF and complement the final value.
func crc32Update(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = crcTable[(crc^uint32(b))&0xFF] ^ (crc >> 8)
	}
	return crc
}

// crc32Sum computes the PNG chunk CRC over one or more byte slices
// (chunk type followed by chunk data).
func crc32Sum(parts ...[]byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, p := range parts {
		crc = crc32Update(crc, p)
	}
	return crc ^ 0xFFFFFFFF
}

const adlerMod = 65521

// adler32Sum computes the zlib Adler32 checksum of data.
func adler32Sum(data []byte) uint32 {
	a, b := uint32(1), uint32(0)
	for i, d := range data {
		a += uint32(d)
		b += a
		// Deferred modulo: 5552 is the largest n with no uint32 overflow.
		if i%5552 == 5551 {
			a %= adlerMod
			b %= adlerMod
		}
	}
	a %= adlerMod
	b %= adlerMod
	return b<<16 | a
}
