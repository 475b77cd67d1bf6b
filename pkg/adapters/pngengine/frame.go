package pngengine

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/user/pixdiff/pkg/rawimage"
)

// interlacePass describes one Adam7 pass: the origin of the first
// pixel and the stride between pixels.
type interlacePass struct {
	xOffset, yOffset int
	xFactor, yFactor int
}

var interlacing = []interlacePass{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

// DecodeFrame reconstructs the image into dst. workbuf holds the
// current and previous raw scanlines used to reverse the per-row
// filters; it must be at least WorkbufLen bytes.
func (s *session) DecodeFrame(dst *rawimage.Image, workbuf []byte) error {
	if !s.configDone {
		return FormatError("decode before config")
	}
	if dst.Width != s.width || dst.Height != s.height {
		return FormatError("pixel sink geometry mismatch")
	}
	need := s.WorkbufLen()
	if uint64(len(workbuf)) < need {
		return FormatError("bad workbuf length")
	}

	segments, err := s.collectIDAT()
	if err != nil {
		return err
	}
	readers := make([]io.Reader, len(segments))
	for i, seg := range segments {
		readers[i] = bytes.NewReader(seg)
	}
	zr, err := zlib.NewReader(io.MultiReader(readers...))
	if err != nil {
		return FormatError("bad zlib header: " + err.Error())
	}
	// The reader is not drained to its end, so the trailing Adler-32
	// is never verified. That is intentional: checksums are not this
	// layer's concern.
	defer zr.Close()

	if s.colorType == ctPaletted && s.paletteLen == 0 {
		return FormatError("missing PLTE")
	}

	full := int(1 + rowBytes(uint64(s.width), s.colorType, s.depth))
	cr := workbuf[:full]
	pr := workbuf[full : 2*full]

	if s.interlace == itAdam7 {
		for _, pass := range interlacing {
			pw := passSize(int(s.width), pass.xOffset, pass.xFactor)
			ph := passSize(int(s.height), pass.yOffset, pass.yFactor)
			if pw == 0 || ph == 0 {
				continue
			}
			if err := s.decodePass(dst, zr, cr, pr, pw, ph, pass); err != nil {
				return err
			}
		}
		return nil
	}
	return s.decodePass(dst, zr, cr, pr, int(s.width), int(s.height), interlacePass{0, 0, 1, 1})
}

func passSize(total, offset, factor int) int {
	if total <= offset {
		return 0
	}
	return (total - offset + factor - 1) / factor
}

// decodePass reads, unfilters and converts the scanlines of one pass.
func (s *session) decodePass(dst *rawimage.Image, zr io.Reader, cr, pr []byte, pw, ph int, pass interlacePass) error {
	n := int(rowBytes(uint64(pw), s.colorType, s.depth))
	bpp := filterBytesPerPixel(s.colorType, s.depth)

	// The filter of the first row references an implicit zero row.
	for i := range pr[:1+n] {
		pr[i] = 0
	}

	for y := 0; y < ph; y++ {
		if _, err := io.ReadFull(zr, cr[:1+n]); err != nil {
			return FormatError("not enough pixel data")
		}
		cdat := cr[1 : 1+n]
		pdat := pr[1 : 1+n]
		switch cr[0] {
		case ftNone:
			// No-op.
		case ftSub:
			for i := bpp; i < len(cdat); i++ {
				cdat[i] += cdat[i-bpp]
			}
		case ftUp:
			for i, p := range pdat {
				cdat[i] += p
			}
		case ftAverage:
			for i := 0; i < bpp; i++ {
				cdat[i] += pdat[i] / 2
			}
			for i := bpp; i < len(cdat); i++ {
				cdat[i] += uint8((int(cdat[i-bpp]) + int(pdat[i])) / 2)
			}
		case ftPaeth:
			filterPaeth(cdat, pdat, bpp)
		default:
			return FormatError("bad filter type")
		}

		if err := s.convertRow(dst, cdat, pw, pass.yOffset+y*pass.yFactor, pass.xOffset, pass.xFactor); err != nil {
			return err
		}

		// The row just decoded becomes the previous row of the next
		// iteration.
		cr, pr = pr, cr
	}
	return nil
}

// filterBytesPerPixel is the pixel stride used by the Sub, Average and
// Paeth filters; sub-byte depths filter on whole bytes.
func filterBytesPerPixel(colorType, depth uint8) int {
	bits := int(channels(colorType)) * int(depth)
	if bits < 8 {
		return 1
	}
	return bits / 8
}

// convertRow expands one unfiltered scanline into RGBA pixels of dst,
// scattered with the pass stride.
func (s *session) convertRow(dst *rawimage.Image, cdat []byte, pw, y, xOffset, xFactor int) error {
	switch s.colorType {
	case ctGrayscale:
		s.convertGrayRow(dst, cdat, pw, y, xOffset, xFactor)
	case ctPaletted:
		return s.convertPalettedRow(dst, cdat, pw, y, xOffset, xFactor)
	case ctGrayscaleAlpha:
		if s.depth == 16 {
			for x := 0; x < pw; x++ {
				v, a := cdat[4*x], cdat[4*x+2]
				dst.Set(uint32(xOffset+x*xFactor), uint32(y), v, v, v, a)
			}
		} else {
			for x := 0; x < pw; x++ {
				v, a := cdat[2*x], cdat[2*x+1]
				dst.Set(uint32(xOffset+x*xFactor), uint32(y), v, v, v, a)
			}
		}
	case ctTrueColor:
		s.convertTrueColorRow(dst, cdat, pw, y, xOffset, xFactor)
	case ctTrueColorAlpha:
		if s.depth == 16 {
			for x := 0; x < pw; x++ {
				dst.Set(uint32(xOffset+x*xFactor), uint32(y), cdat[8*x], cdat[8*x+2], cdat[8*x+4], cdat[8*x+6])
			}
		} else {
			for x := 0; x < pw; x++ {
				dst.Set(uint32(xOffset+x*xFactor), uint32(y), cdat[4*x], cdat[4*x+1], cdat[4*x+2], cdat[4*x+3])
			}
		}
	}
	return nil
}

func (s *session) convertGrayRow(dst *rawimage.Image, cdat []byte, pw, y, xOffset, xFactor int) {
	switch s.depth {
	case 16:
		for x := 0; x < pw; x++ {
			sample := uint16(cdat[2*x])<<8 | uint16(cdat[2*x+1])
			a := uint8(0xff)
			if s.useTransparent && sample == s.transparent[0] {
				a = 0
			}
			v := cdat[2*x]
			dst.Set(uint32(xOffset+x*xFactor), uint32(y), v, v, v, a)
		}
	case 8:
		for x := 0; x < pw; x++ {
			v := cdat[x]
			a := uint8(0xff)
			if s.useTransparent && uint16(v) == s.transparent[0] {
				a = 0
			}
			dst.Set(uint32(xOffset+x*xFactor), uint32(y), v, v, v, a)
		}
	default:
		// 1, 2 and 4 bit samples scale to 8 bits by repeating the
		// sample's bit pattern: max value maps to 255.
		scale := uint8(255 / ((1 << s.depth) - 1))
		mask := uint8(1<<s.depth - 1)
		perByte := 8 / int(s.depth)
		for x := 0; x < pw; x++ {
			shift := uint(8 - (x%perByte+1)*int(s.depth))
			sample := (cdat[x/perByte] >> shift) & mask
			a := uint8(0xff)
			if s.useTransparent && uint16(sample) == s.transparent[0] {
				a = 0
			}
			v := sample * scale
			dst.Set(uint32(xOffset+x*xFactor), uint32(y), v, v, v, a)
		}
	}
}

func (s *session) convertPalettedRow(dst *rawimage.Image, cdat []byte, pw, y, xOffset, xFactor int) error {
	mask := uint8(1<<s.depth - 1)
	perByte := 8 / int(s.depth)
	for x := 0; x < pw; x++ {
		var idx uint8
		if s.depth == 8 {
			idx = cdat[x]
		} else {
			shift := uint(8 - (x%perByte+1)*int(s.depth))
			idx = (cdat[x/perByte] >> shift) & mask
		}
		if int(idx) >= s.paletteLen {
			return FormatError("palette index out of range")
		}
		p := s.palette[idx]
		dst.Set(uint32(xOffset+x*xFactor), uint32(y), p[0], p[1], p[2], p[3])
	}
	return nil
}

func (s *session) convertTrueColorRow(dst *rawimage.Image, cdat []byte, pw, y, xOffset, xFactor int) {
	if s.depth == 16 {
		for x := 0; x < pw; x++ {
			r16 := uint16(cdat[6*x])<<8 | uint16(cdat[6*x+1])
			g16 := uint16(cdat[6*x+2])<<8 | uint16(cdat[6*x+3])
			b16 := uint16(cdat[6*x+4])<<8 | uint16(cdat[6*x+5])
			a := uint8(0xff)
			if s.useTransparent && r16 == s.transparent[0] && g16 == s.transparent[1] && b16 == s.transparent[2] {
				a = 0
			}
			dst.Set(uint32(xOffset+x*xFactor), uint32(y), cdat[6*x], cdat[6*x+2], cdat[6*x+4], a)
		}
		return
	}
	for x := 0; x < pw; x++ {
		r, g, b := cdat[3*x], cdat[3*x+1], cdat[3*x+2]
		a := uint8(0xff)
		if s.useTransparent && uint16(r) == s.transparent[0] && uint16(g) == s.transparent[1] && uint16(b) == s.transparent[2] {
			a = 0
		}
		dst.Set(uint32(xOffset+x*xFactor), uint32(y), r, g, b, a)
	}
}

// filterPaeth reverses the Paeth filter in place.
func filterPaeth(cdat, pdat []byte, bytesPerPixel int) {
	var a, c int
	for i := 0; i < bytesPerPixel; i++ {
		a, c = 0, 0
		for j := i; j < len(cdat); j += bytesPerPixel {
			b := int(pdat[j])
			pa := b - c
			pb := a - c
			pc := abs(pa + pb)
			pa = abs(pa)
			pb = abs(pb)
			if pa <= pb && pa <= pc {
				// a is the predictor
			} else if pb <= pc {
				a = b
			} else {
				a = c
			}
			a += int(cdat[j])
			a &= 0xff
			cdat[j] = uint8(a)
			c = b
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
