// Package pngengine provides a pure-Go PNG decode engine.
//
// The engine decodes every PNG color type and bit depth to the fixed
// RGBA layout, including Adam7 interlacing and tRNS transparency.
// Chunk CRCs are ignored by default: structural validity is checked
// independently, and integrity verification is a policy the caller
// opts into, not something the decode path pays for.
package pngengine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/user/pixdiff/pkg/ports"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

// Color types, as per the PNG spec.
const (
	ctGrayscale      = 0
	ctTrueColor      = 2
	ctPaletted       = 3
	ctGrayscaleAlpha = 4
	ctTrueColorAlpha = 6
)

// Filter types, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// Interlace methods.
const (
	itNone  = 0
	itAdam7 = 1
)

// Options configures the engine.
type Options struct {
	// VerifyChecksums enables per-chunk CRC32 verification. Off by
	// default: a flipped CRC byte is an integrity problem, not a
	// structural one, and callers that want integrity checks can
	// opt in.
	VerifyChecksums bool
}

// Engine implements ports.DecodeEngine for PNG.
type Engine struct {
	opts Options
}

// New creates a PNG engine with default options.
func New() *Engine {
	return &Engine{}
}

// NewWithOptions creates a PNG engine with the given options.
func NewWithOptions(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Sniff reports whether src starts with the PNG signature.
func (e *Engine) Sniff(src []byte) bool {
	return len(src) >= len(pngHeader) && string(src[:len(pngHeader)]) == pngHeader
}

// NewSession acquires a decode session over src.
func (e *Engine) NewSession(src []byte) (ports.DecodeSession, error) {
	return &session{src: src, verify: e.opts.VerifyChecksums}, nil
}

var _ ports.DecodeEngine = (*Engine)(nil)

// A FormatError reports that the input is not a valid PNG.
type FormatError string

func (e FormatError) Error() string { return "pngengine: invalid format: " + string(e) }

// An UnsupportedError reports a valid but unimplemented PNG feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "pngengine: unsupported feature: " + string(e) }

var errTruncated = FormatError("unexpected end of input")

type session struct {
	src    []byte
	verify bool

	// Position of the next chunk after DecodeConfig.
	pos int

	width     uint32
	height    uint32
	depth     uint8
	colorType uint8
	interlace uint8

	configDone bool

	// Palette entries expanded to RGBA, populated from PLTE and tRNS
	// during the frame walk.
	palette    [256][4]uint8
	paletteLen int

	// Transparent key for grayscale and truecolor images, at source
	// bit depth. Valid when useTransparent is set.
	useTransparent bool
	transparent    [3]uint16
}

// DecodeConfig parses the signature and IHDR chunk only. It never
// touches the compressed pixel payload.
func (s *session) DecodeConfig() (ports.ImageConfig, error) {
	if len(s.src) < len(pngHeader) || string(s.src[:len(pngHeader)]) != pngHeader {
		return ports.ImageConfig{}, FormatError("not a PNG file")
	}
	s.pos = len(pngHeader)

	length, typ, data, err := s.nextChunk()
	if err != nil {
		return ports.ImageConfig{}, err
	}
	if typ != "IHDR" {
		return ports.ImageConfig{}, FormatError("missing IHDR")
	}
	if length != 13 {
		return ports.ImageConfig{}, FormatError("bad IHDR length")
	}

	w := binary.BigEndian.Uint32(data[0:4])
	h := binary.BigEndian.Uint32(data[4:8])
	if w == 0 || h == 0 || w > 1<<31-1 || h > 1<<31-1 {
		return ports.ImageConfig{}, FormatError("bad dimensions")
	}
	s.depth = data[8]
	s.colorType = data[9]
	if !validColorDepth(s.colorType, s.depth) {
		return ports.ImageConfig{}, FormatError(fmt.Sprintf("bit depth %d, color type %d", s.depth, s.colorType))
	}
	if data[10] != 0 {
		return ports.ImageConfig{}, UnsupportedError("compression method")
	}
	if data[11] != 0 {
		return ports.ImageConfig{}, UnsupportedError("filter method")
	}
	s.interlace = data[12]
	if s.interlace != itNone && s.interlace != itAdam7 {
		return ports.ImageConfig{}, FormatError("bad interlace method")
	}

	s.width, s.height = w, h
	s.configDone = true
	return ports.ImageConfig{Width: w, Height: h}, nil
}

// WorkbufLen reports the scratch needed to unfilter this image: one
// current and one previous raw scanline, each prefixed by its filter
// byte. Interlaced pass rows never exceed the full-image row, so the
// same bound covers both layouts.
func (s *session) WorkbufLen() uint64 {
	if !s.configDone {
		return 0
	}
	return 2 * (1 + rowBytes(uint64(s.width), s.colorType, s.depth))
}

// Close releases the session. The source buffer is borrowed, so there
// is nothing to free; Close exists for the session lifecycle contract.
func (s *session) Close() {
	s.src = nil
}

var _ ports.DecodeSession = (*session)(nil)

// nextChunk reads the chunk header at s.pos and returns the chunk
// length, type and payload, advancing past the trailing CRC.
func (s *session) nextChunk() (uint32, string, []byte, error) {
	if len(s.src)-s.pos < 8 {
		return 0, "", nil, errTruncated
	}
	length := binary.BigEndian.Uint32(s.src[s.pos : s.pos+4])
	if length > 1<<31-1 {
		return 0, "", nil, FormatError("bad chunk length")
	}
	typ := string(s.src[s.pos+4 : s.pos+8])
	body := s.pos + 8
	if uint64(len(s.src)-body) < uint64(length)+4 {
		return 0, "", nil, errTruncated
	}
	data := s.src[body : body+int(length)]
	if s.verify {
		crc := crc32.NewIEEE()
		crc.Write(s.src[s.pos+4 : body+int(length)])
		want := binary.BigEndian.Uint32(s.src[body+int(length) : body+int(length)+4])
		if crc.Sum32() != want {
			return 0, "", nil, FormatError("invalid checksum")
		}
	}
	s.pos = body + int(length) + 4
	return length, typ, data, nil
}

func (s *session) parsePLTE(data []byte) error {
	n := len(data) / 3
	if len(data)%3 != 0 || n == 0 || n > 256 {
		return FormatError("bad PLTE length")
	}
	for i := 0; i < n; i++ {
		s.palette[i] = [4]uint8{data[3*i], data[3*i+1], data[3*i+2], 0xff}
	}
	s.paletteLen = n
	return nil
}

func (s *session) parseTRNS(data []byte) error {
	switch s.colorType {
	case ctGrayscale:
		if len(data) != 2 {
			return FormatError("bad tRNS length")
		}
		s.transparent[0] = binary.BigEndian.Uint16(data[0:2])
		s.useTransparent = true
	case ctTrueColor:
		if len(data) != 6 {
			return FormatError("bad tRNS length")
		}
		for i := 0; i < 3; i++ {
			s.transparent[i] = binary.BigEndian.Uint16(data[2*i : 2*i+2])
		}
		s.useTransparent = true
	case ctPaletted:
		if len(data) > s.paletteLen {
			return FormatError("bad tRNS length")
		}
		for i, a := range data {
			s.palette[i][3] = a
		}
	default:
		return FormatError("tRNS not allowed for color type")
	}
	return nil
}

// collectIDAT walks the chunks after IHDR, populating palette state
// and gathering the IDAT payload segments. It stops at IEND.
func (s *session) collectIDAT() ([][]byte, error) {
	var segments [][]byte
	seenIDAT := false
	for {
		_, typ, data, err := s.nextChunk()
		if err != nil {
			if errors.Is(err, errTruncated) && seenIDAT {
				// A stream cut off after some pixel data still has
				// everything collected so far; the inflate step
				// reports the shortfall.
				return segments, nil
			}
			return nil, err
		}
		switch typ {
		case "PLTE":
			if seenIDAT || s.paletteLen > 0 {
				return nil, FormatError("chunk out of order")
			}
			if err := s.parsePLTE(data); err != nil {
				return nil, err
			}
		case "tRNS":
			if seenIDAT {
				return nil, FormatError("chunk out of order")
			}
			if err := s.parseTRNS(data); err != nil {
				return nil, err
			}
		case "IDAT":
			seenIDAT = true
			segments = append(segments, data)
		case "IEND":
			if !seenIDAT {
				return nil, FormatError("missing IDAT")
			}
			return segments, nil
		case "IHDR":
			return nil, FormatError("chunk out of order")
		default:
			// Ancillary chunks (and APNG frames beyond the first)
			// are skipped.
		}
	}
}

func validColorDepth(colorType, depth uint8) bool {
	switch colorType {
	case ctGrayscale:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case ctTrueColor, ctGrayscaleAlpha, ctTrueColorAlpha:
		return depth == 8 || depth == 16
	case ctPaletted:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	default:
		return false
	}
}

// channels returns the number of samples per pixel for a color type.
func channels(colorType uint8) uint64 {
	switch colorType {
	case ctGrayscale, ctPaletted:
		return 1
	case ctGrayscaleAlpha:
		return 2
	case ctTrueColor:
		return 3
	case ctTrueColorAlpha:
		return 4
	default:
		return 0
	}
}

// rowBytes returns the raw (filtered) byte length of one scanline of
// the given pixel width, excluding the filter byte.
func rowBytes(width uint64, colorType, depth uint8) uint64 {
	return (width*channels(colorType)*uint64(depth) + 7) / 8
}
