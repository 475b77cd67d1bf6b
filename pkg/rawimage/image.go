// Package rawimage provides the fixed-layout pixel buffer shared by the
// decode engines and the diff core: 4 bytes per pixel, row-major, no
// padding, non-premultiplied alpha with alpha last (RGBA).
package rawimage

import (
	"fmt"
	"image"
	"math"
)

// BytesPerPixel is the size of one pixel in the fixed RGBA layout.
const BytesPerPixel = 4

// Image is an RGBA pixel buffer with its geometry.
// Pix holds exactly Width*Height*4 bytes (or more, when bound over a
// larger caller-owned region; only the leading required bytes are used).
type Image struct {
	Pix    []byte
	Width  uint32
	Height uint32
}

// PixelBytes returns the number of bytes required to hold a
// width x height RGBA image. The second result is false when the
// computation would overflow uint64; width and height come from
// untrusted input so the multiplication must not silently wrap.
func PixelBytes(width, height uint32) (uint64, bool) {
	n := uint64(width) * uint64(height)
	if n > math.MaxUint64/BytesPerPixel {
		return 0, false
	}
	return n * BytesPerPixel, true
}

// New creates a zero-filled image of the given dimensions.
func New(width, height uint32) (*Image, error) {
	size, ok := PixelBytes(width, height)
	if !ok || size > math.MaxInt {
		return nil, fmt.Errorf("rawimage: dimensions %dx%d overflow", width, height)
	}
	return &Image{
		Pix:    make([]byte, size),
		Width:  width,
		Height: height,
	}, nil
}

// BindRGBA binds a caller-owned byte region as an RGBA pixel sink for
// the given geometry. It fails when the region is too small for the
// geometry or the required size is not representable. Ownership of pix
// stays with the caller; the bind never copies or reallocates.
func BindRGBA(pix []byte, width, height uint32) (*Image, error) {
	size, ok := PixelBytes(width, height)
	if !ok {
		return nil, fmt.Errorf("rawimage: dimensions %dx%d overflow", width, height)
	}
	if uint64(len(pix)) < size {
		return nil, fmt.Errorf("rawimage: buffer %d bytes, need %d for %dx%d", len(pix), size, width, height)
	}
	return &Image{
		Pix:    pix,
		Width:  width,
		Height: height,
	}, nil
}

// PixelOffset returns the byte offset of the pixel at (x, y).
func (m *Image) PixelOffset(x, y uint32) int {
	return int(uint64(y)*uint64(m.Width)+uint64(x)) * BytesPerPixel
}

// At returns the RGBA components of the pixel at (x, y).
func (m *Image) At(x, y uint32) (r, g, b, a uint8) {
	p := m.PixelOffset(x, y)
	return m.Pix[p], m.Pix[p+1], m.Pix[p+2], m.Pix[p+3]
}

// Set stores the RGBA components of the pixel at (x, y).
func (m *Image) Set(x, y uint32, r, g, b, a uint8) {
	p := m.PixelOffset(x, y)
	m.Pix[p] = r
	m.Pix[p+1] = g
	m.Pix[p+2] = b
	m.Pix[p+3] = a
}

// Packed returns the pixel at index i (row-major) packed as
// R | G<<8 | B<<16 | A<<24. The diff core compares pixels as packed
// words and unpacks only when a perceptual delta is needed.
func (m *Image) Packed(i int) uint32 {
	p := i * BytesPerPixel
	return uint32(m.Pix[p]) | uint32(m.Pix[p+1])<<8 | uint32(m.Pix[p+2])<<16 | uint32(m.Pix[p+3])<<24
}

// SetPacked stores a packed pixel at index i (row-major).
func (m *Image) SetPacked(i int, v uint32) {
	p := i * BytesPerPixel
	m.Pix[p] = uint8(v)
	m.Pix[p+1] = uint8(v >> 8)
	m.Pix[p+2] = uint8(v >> 16)
	m.Pix[p+3] = uint8(v >> 24)
}

// NumPixels returns Width*Height as an int.
func (m *Image) NumPixels() int {
	return int(uint64(m.Width) * uint64(m.Height))
}

// NRGBA wraps the pixel buffer as a standard library image without
// copying. The layout matches image.NRGBA exactly since the buffer is
// non-premultiplied. Mutating the returned image mutates this one.
func (m *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pix[:m.NumPixels()*BytesPerPixel],
		Stride: int(m.Width) * BytesPerPixel,
		Rect:   image.Rect(0, 0, int(m.Width), int(m.Height)),
	}
}
