// Package pngencoder encodes RGBA images as truecolor-alpha PNG.
//
// Scanlines are written unfiltered: diff overlays compress poorly
// under PNG filtering anyway, and skipping the filter pass keeps the
// encode fast at low compression levels.
package pngencoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/zlib"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

// Encoder implements ports.ImageEncoder for PNG.
type Encoder struct{}

// New creates a PNG encoder.
func New() *Encoder {
	return &Encoder{}
}

// Encode serializes img as an 8-bit RGBA PNG. quality is the zlib
// compression level, clamped to 0-9 (0 = store, fastest).
func (e *Encoder) Encode(img *rawimage.Image, quality int) ([]byte, error) {
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("pngencoder: empty image %dx%d", img.Width, img.Height)
	}

	var buf bytes.Buffer
	buf.WriteString(pngHeader)

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], img.Width)
	binary.BigEndian.PutUint32(ihdr[4:8], img.Height)
	ihdr[8] = 8  // bit depth
	ihdr[9] = 6  // truecolor with alpha
	ihdr[10] = 0 // compression
	ihdr[11] = 0 // filter
	ihdr[12] = 0 // no interlace
	writeChunk(&buf, "IHDR", ihdr[:])

	level := quality
	if level < 0 {
		level = 0
	} else if level > 9 {
		level = 9
	}

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, level)
	if err != nil {
		return nil, fmt.Errorf("pngencoder: %w", err)
	}
	rowLen := int(img.Width) * rawimage.BytesPerPixel
	for y := 0; y < int(img.Height); y++ {
		// Filter byte 0 (None) before each scanline.
		if _, err := zw.Write([]byte{0}); err != nil {
			return nil, fmt.Errorf("pngencoder: %w", err)
		}
		if _, err := zw.Write(img.Pix[y*rowLen : (y+1)*rowLen]); err != nil {
			return nil, fmt.Errorf("pngencoder: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("pngencoder: %w", err)
	}
	writeChunk(&buf, "IDAT", idat.Bytes())
	writeChunk(&buf, "IEND", nil)

	return buf.Bytes(), nil
}

var _ ports.ImageEncoder = (*Encoder)(nil)

func writeChunk(buf *bytes.Buffer, typ string, data []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(data)))
	copy(header[4:8], typ)
	buf.Write(header[:])
	buf.Write(data)

	crc := crc32.NewIEEE()
	crc.Write(header[4:8])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])
}
