// Package jpegencoder encodes RGBA images as baseline JPEG.
// The alpha channel is dropped; JPEG has no transparency.
package jpegencoder

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// DefaultQuality is used when the caller passes a non-positive quality.
const DefaultQuality = 90

// Encoder implements ports.ImageEncoder for JPEG.
type Encoder struct{}

// New creates a JPEG encoder.
func New() *Encoder {
	return &Encoder{}
}

// Encode serializes img as JPEG. quality is 1-100.
func (e *Encoder) Encode(img *rawimage.Image, quality int) ([]byte, error) {
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("jpegencoder: empty image")
	}
	if quality <= 0 {
		quality = DefaultQuality
	}
	if quality > 100 {
		quality = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img.NRGBA(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpegencoder: %w", err)
	}
	return buf.Bytes(), nil
}

var _ ports.ImageEncoder = (*Encoder)(nil)
