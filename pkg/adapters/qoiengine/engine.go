// Package qoiengine provides a QOI (Quite OK Image) decode engine.
//
// QOI is byte-aligned and has no entropy coding, so the only working
// memory decoding needs is the 64-entry previously-seen-pixel table;
// the engine keeps that table in the caller-provided workbuf. Unlike
// the reference decoder, zero-dimension images are accepted and decode
// to an empty frame.
package qoiengine

import (
	"encoding/binary"
	"errors"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

const (
	qoiMagic      = "qoif"
	qoiHeaderSize = 14

	opIndex = 0x00 // 2-bit tag 00
	opDiff  = 0x40 // 2-bit tag 01
	opLuma  = 0x80 // 2-bit tag 10
	opRun   = 0xc0 // 2-bit tag 11
	opRGB   = 0xfe
	opRGBA  = 0xff

	indexTableEntries = 64
	indexTableBytes   = indexTableEntries * 4
)

var (
	errNotQOI    = errors.New("qoiengine: not a QOI file")
	errBadHeader = errors.New("qoiengine: bad header")
	errTruncated = errors.New("qoiengine: truncated pixel stream")
)

// Engine implements ports.DecodeEngine for QOI.
type Engine struct{}

// New creates a QOI engine.
func New() *Engine {
	return &Engine{}
}

// Sniff reports whether src starts with the QOI magic.
func (e *Engine) Sniff(src []byte) bool {
	return len(src) >= len(qoiMagic) && string(src[:len(qoiMagic)]) == qoiMagic
}

// NewSession acquires a decode session over src.
func (e *Engine) NewSession(src []byte) (ports.DecodeSession, error) {
	return &session{src: src}, nil
}

var _ ports.DecodeEngine = (*Engine)(nil)

type session struct {
	src        []byte
	width      uint32
	height     uint32
	channels   uint8
	configDone bool
}

// DecodeConfig parses the 14-byte QOI header.
func (s *session) DecodeConfig() (ports.ImageConfig, error) {
	if len(s.src) < qoiHeaderSize {
		return ports.ImageConfig{}, errNotQOI
	}
	if string(s.src[:4]) != qoiMagic {
		return ports.ImageConfig{}, errNotQOI
	}
	s.width = binary.BigEndian.Uint32(s.src[4:8])
	s.height = binary.BigEndian.Uint32(s.src[8:12])
	s.channels = s.src[12]
	colorspace := s.src[13]
	if (s.channels != 3 && s.channels != 4) || colorspace > 1 {
		return ports.ImageConfig{}, errBadHeader
	}
	s.configDone = true
	return ports.ImageConfig{Width: s.width, Height: s.height}, nil
}

// WorkbufLen reports the scratch needed for the pixel index table.
// Empty images need none.
func (s *session) WorkbufLen() uint64 {
	if !s.configDone || s.width == 0 || s.height == 0 {
		return 0
	}
	return indexTableBytes
}

// DecodeFrame walks the op stream into dst, tracking the running
// pixel and the 64-entry index table in workbuf.
func (s *session) DecodeFrame(dst *rawimage.Image, workbuf []byte) error {
	if !s.configDone {
		return errBadHeader
	}
	if dst.Width != s.width || dst.Height != s.height {
		return errBadHeader
	}
	numPixels := dst.NumPixels()
	if numPixels == 0 {
		return nil
	}
	if len(workbuf) < indexTableBytes {
		return errors.New("qoiengine: bad workbuf length")
	}
	index := workbuf[:indexTableBytes]
	for i := range index {
		index[i] = 0
	}

	data := s.src[qoiHeaderSize:]
	pos := 0
	r, g, b, a := uint8(0), uint8(0), uint8(0), uint8(255)
	run := 0

	for px := 0; px < numPixels; px++ {
		if run > 0 {
			run--
		} else {
			if pos >= len(data) {
				return errTruncated
			}
			op := data[pos]
			pos++
			switch {
			case op == opRGB:
				if pos+3 > len(data) {
					return errTruncated
				}
				r, g, b = data[pos], data[pos+1], data[pos+2]
				pos += 3
			case op == opRGBA:
				if pos+4 > len(data) {
					return errTruncated
				}
				r, g, b, a = data[pos], data[pos+1], data[pos+2], data[pos+3]
				pos += 4
			case op&0xc0 == opIndex:
				i := int(op&0x3f) * 4
				r, g, b, a = index[i], index[i+1], index[i+2], index[i+3]
			case op&0xc0 == opDiff:
				r += uint8(op>>4&0x03) - 2
				g += uint8(op>>2&0x03) - 2
				b += uint8(op&0x03) - 2
			case op&0xc0 == opLuma:
				if pos >= len(data) {
					return errTruncated
				}
				vg := uint8(op&0x3f) - 32
				r += vg - 8 + uint8(data[pos]>>4&0x0f)
				g += vg
				b += vg - 8 + uint8(data[pos]&0x0f)
				pos++
			default: // opRun
				run = int(op & 0x3f)
			}
			h := (int(r)*3 + int(g)*5 + int(b)*7 + int(a)*11) % indexTableEntries * 4
			index[h], index[h+1], index[h+2], index[h+3] = r, g, b, a
		}
		dst.SetPacked(px, uint32(r)|uint32(g)<<8|uint32(b)<<16|uint32(a)<<24)
	}
	return nil
}

// Close releases the session.
func (s *session) Close() {
	s.src = nil
}

var _ ports.DecodeSession = (*session)(nil)
