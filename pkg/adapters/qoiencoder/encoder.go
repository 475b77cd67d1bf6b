// Package qoiencoder encodes RGBA images in the QOI format.
package qoiencoder

import (
	"bytes"
	"encoding/binary"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

const (
	opIndex = 0x00
	opDiff  = 0x40
	opLuma  = 0x80
	opRun   = 0xc0
	opRGB   = 0xfe
	opRGBA  = 0xff
)

var endMarker = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

// Encoder implements ports.ImageEncoder for QOI.
type Encoder struct{}

// New creates a QOI encoder.
func New() *Encoder {
	return &Encoder{}
}

// Encode serializes img as QOI with 4 channels. quality is ignored:
// QOI has a single fixed encoding.
func (e *Encoder) Encode(img *rawimage.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("qoif")
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[0:4], img.Width)
	binary.BigEndian.PutUint32(dims[4:8], img.Height)
	buf.Write(dims[:])
	buf.WriteByte(4) // channels
	buf.WriteByte(0) // sRGB with linear alpha

	var index [64][4]uint8
	pr, pg, pb, pa := uint8(0), uint8(0), uint8(0), uint8(255)
	run := 0

	numPixels := img.NumPixels()
	for i := 0; i < numPixels; i++ {
		p := i * rawimage.BytesPerPixel
		r, g, b, a := img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3]

		if r == pr && g == pg && b == pb && a == pa {
			run++
			if run == 62 || i == numPixels-1 {
				buf.WriteByte(opRun | uint8(run-1))
				run = 0
			}
			continue
		}
		if run > 0 {
			buf.WriteByte(opRun | uint8(run-1))
			run = 0
		}

		h := (int(r)*3 + int(g)*5 + int(b)*7 + int(a)*11) % 64
		if index[h] == [4]uint8{r, g, b, a} {
			buf.WriteByte(opIndex | uint8(h))
		} else {
			index[h] = [4]uint8{r, g, b, a}
			switch {
			case a == pa && smallDiff(r, g, b, pr, pg, pb):
				dr := r - pr + 2
				dg := g - pg + 2
				db := b - pb + 2
				buf.WriteByte(opDiff | dr<<4 | dg<<2 | db)
			case a == pa && lumaDiff(r, g, b, pr, pg, pb):
				vg := g - pg
				buf.WriteByte(opLuma | (vg + 32))
				buf.WriteByte((r - pr - vg + 8) << 4 | (b - pb - vg + 8))
			case a == pa:
				buf.WriteByte(opRGB)
				buf.Write([]byte{r, g, b})
			default:
				buf.WriteByte(opRGBA)
				buf.Write([]byte{r, g, b, a})
			}
		}
		pr, pg, pb, pa = r, g, b, a
	}

	buf.Write(endMarker[:])
	return buf.Bytes(), nil
}

var _ ports.ImageEncoder = (*Encoder)(nil)

func smallDiff(r, g, b, pr, pg, pb uint8) bool {
	dr := int8(r - pr)
	dg := int8(g - pg)
	db := int8(b - pb)
	return dr >= -2 && dr <= 1 && dg >= -2 && dg <= 1 && db >= -2 && db <= 1
}

func lumaDiff(r, g, b, pr, pg, pb uint8) bool {
	vg := int8(g - pg)
	vgr := int8(r-pr) - vg
	vgb := int8(b-pb) - vg
	return vg >= -32 && vg <= 31 && vgr >= -8 && vgr <= 7 && vgb >= -8 && vgb <= 7
}
