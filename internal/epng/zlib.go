package epng

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// zlib container built by hand around a DEFLATE stream: 2-byte header,
// raw deflate data, 4-byte big-endian Adler32 of the uncompressed
// payload.  The compressor itself comes from klauspost/compress.

// zlibWrap compresses raw and wraps it in a zlib container.  The
// Adler32 trailer is computed over the uncompressed stream.
func zlibWrap(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	// CMF 0x78 = deflate, 32K window; FLG 0x9C keeps (CMF<<8|FLG)%31 == 0.
	buf.Write([]byte{0x78, 0x9C})

	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("deflate init: %w", err)
	}
	if _, err := fw.Write(raw); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}

	sum := adler32Sum(raw)
	buf.Write([]byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)})
	return buf.Bytes(), nil
}

// zlibUnwrap strips the 2-byte zlib header and 4-byte trailing checksum
// and inflates the raw DEFLATE stream in between.  The trailer is not
// verified; decode trusts a well-formed upstream producer.
func zlibUnwrap(z []byte) ([]byte, error) {
	if len(z) < 6 {
		return nil, &FormatError{Reason: "zlib stream truncated"}
	}
	fr := flate.NewReader(bytes.NewReader(z[2 : len(z)-4]))
	defer fr.Close()

	raw, err := io.ReadAll(fr)
	if err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("inflate: %v", err)}
	}
	return raw, nil
}
