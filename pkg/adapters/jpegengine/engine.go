// Package jpegengine provides a JPEG decode engine backed by the
// pure-Go jpegn decoder.
package jpegengine

import (
	"bytes"
	"errors"
	"image"

	"github.com/gen2brain/jpegn"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

var errGeometry = errors.New("jpegengine: pixel sink geometry mismatch")

// Engine implements ports.DecodeEngine for baseline JPEG.
type Engine struct{}

// New creates a JPEG engine.
func New() *Engine {
	return &Engine{}
}

// Sniff reports whether src starts with the JPEG SOI marker.
func (e *Engine) Sniff(src []byte) bool {
	return len(src) >= 3 && src[0] == 0xff && src[1] == 0xd8 && src[2] == 0xff
}

// NewSession acquires a decode session over src.
func (e *Engine) NewSession(src []byte) (ports.DecodeSession, error) {
	return &session{src: src}, nil
}

var _ ports.DecodeEngine = (*Engine)(nil)

type session struct {
	src []byte
}

// DecodeConfig parses the JPEG headers for the frame dimensions.
func (s *session) DecodeConfig() (ports.ImageConfig, error) {
	cfg, err := jpegn.DecodeConfig(bytes.NewReader(s.src))
	if err != nil {
		return ports.ImageConfig{}, err
	}
	return ports.ImageConfig{Width: uint32(cfg.Width), Height: uint32(cfg.Height)}, nil
}

// WorkbufLen is always zero: jpegn manages its own pooled decoder
// state, so the orchestrator has no scratch to provide.
func (s *session) WorkbufLen() uint64 {
	return 0
}

// DecodeFrame decodes to RGBA and copies the rows into dst. JPEG has
// no alpha channel, so the output is trivially non-premultiplied.
func (s *session) DecodeFrame(dst *rawimage.Image, workbuf []byte) error {
	img, err := jpegn.Decode(bytes.NewReader(s.src), &jpegn.Options{ToRGBA: true})
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	if uint32(bounds.Dx()) != dst.Width || uint32(bounds.Dy()) != dst.Height {
		return errGeometry
	}

	if rgba, ok := img.(*image.RGBA); ok {
		rowLen := int(dst.Width) * rawimage.BytesPerPixel
		for y := 0; y < bounds.Dy(); y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+rowLen]
			copy(dst.Pix[y*rowLen:(y+1)*rowLen], src)
		}
		return nil
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			dst.Set(uint32(x-bounds.Min.X), uint32(y-bounds.Min.Y), uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
		}
	}
	return nil
}

// Close releases the session.
func (s *session) Close() {
	s.src = nil
}

var _ ports.DecodeSession = (*session)(nil)
