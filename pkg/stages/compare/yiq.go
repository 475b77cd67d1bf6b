package compare

import (
	"github.com/user/pixdiff/pkg/rawimage"
)

// YIQ perceptual color difference.
// Reference: "Measuring perceived color difference using YIQ NTSC
// transmission color space", Kotsarenko & Ramos (2009).

var (
	yiqY = [3]float64{0.29889531, 0.58662247, 0.11448223}
	yiqI = [3]float64{0.59597799, -0.2741761, -0.32180189}
	yiqQ = [3]float64{0.21147017, -0.52261711, 0.31114694}

	yiqWeights = [3]float64{0.5053, 0.299, 0.1957}
)

// maxYIQDelta is the delta between opaque black and opaque white.
const maxYIQDelta = 35215.0

// thresholdToMaxDelta converts the 0..1 matching threshold into an
// absolute YIQ delta limit.
func thresholdToMaxDelta(threshold float64) float64 {
	return maxYIQDelta * threshold * threshold
}

// blendWhite composites a channel over a white background.
func blendWhite(c, a float64) float64 {
	return 255 + (c-255)*a/255
}

// colorDelta computes the weighted YIQ difference between two packed
// RGBA pixels. Semi-transparent pixels are blended over white first.
// The sign encodes direction: negative when pa is lighter than pb.
func colorDelta(pa, pb uint32) float64 {
	if pa == pb {
		return 0
	}

	r1 := float64(pa & 0xff)
	g1 := float64((pa >> 8) & 0xff)
	b1 := float64((pa >> 16) & 0xff)
	a1 := float64(pa >> 24)

	r2 := float64(pb & 0xff)
	g2 := float64((pb >> 8) & 0xff)
	b2 := float64((pb >> 16) & 0xff)
	a2 := float64(pb >> 24)

	var dr, dg, db float64
	if a1 >= 255 && a2 >= 255 {
		dr = r1 - r2
		dg = g1 - g2
		db = b1 - b2
	} else {
		dr = blendWhite(r1, a1) - blendWhite(r2, a2)
		dg = blendWhite(g1, a1) - blendWhite(g2, a2)
		db = blendWhite(b1, a1) - blendWhite(b2, a2)
	}

	y := dr*yiqY[0] + dg*yiqY[1] + db*yiqY[2]
	i := dr*yiqI[0] + dg*yiqI[1] + db*yiqI[2]
	q := dr*yiqQ[0] + dg*yiqQ[1] + db*yiqQ[2]

	delta := yiqWeights[0]*y*y + yiqWeights[1]*i*i + yiqWeights[2]*q*q

	if y > 0 {
		return -delta
	}
	return delta
}

// colorDeltaY computes only the luminance difference between two packed
// RGBA pixels, with the same white blending as colorDelta.
func colorDeltaY(pa, pb uint32) float64 {
	if pa == pb {
		return 0
	}

	r1 := float64(pa & 0xff)
	g1 := float64((pa >> 8) & 0xff)
	b1 := float64((pa >> 16) & 0xff)
	a1 := float64(pa >> 24)

	r2 := float64(pb & 0xff)
	g2 := float64((pb >> 8) & 0xff)
	b2 := float64((pb >> 16) & 0xff)
	a2 := float64(pb >> 24)

	var dr, dg, db float64
	if a1 >= 255 && a2 >= 255 {
		dr = r1 - r2
		dg = g1 - g2
		db = b1 - b2
	} else {
		dr = blendWhite(r1, a1) - blendWhite(r2, a2)
		dg = blendWhite(g1, a1) - blendWhite(g2, a2)
		db = blendWhite(b1, a1) - blendWhite(b2, a2)
	}

	return dr*yiqY[0] + dg*yiqY[1] + db*yiqY[2]
}

// grayValue computes the dimmed grayscale rendering of a source pixel
// for the diff background. alphaScaled is alpha/255.
func grayValue(p uint32, alphaScaled float64) uint8 {
	r := float64(p & 0xff)
	g := float64((p >> 8) & 0xff)
	b := float64((p >> 16) & 0xff)
	a := float64(p >> 24)

	lum := r*yiqY[0] + g*yiqY[1] + b*yiqY[2]
	v := 255 + (lum-255)*alphaScaled*a
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return uint8(v)
}

func packGray(g uint8) uint32 {
	v := uint32(g)
	return v | v<<8 | v<<16 | 0xff000000
}

func packColor(c [3]uint8) uint32 {
	return uint32(c[0]) | uint32(c[1])<<8 | uint32(c[2])<<16 | 0xff000000
}

// fillBlockGray renders the dimmed grayscale background for a block.
func fillBlockGray(src, out *rawimage.Image, alpha float64, startX, startY, endX, endY uint32) {
	alphaScaled := alpha / 255
	w := src.Width
	for y := startY; y < endY; y++ {
		for x := startX; x < endX; x++ {
			i := int(y*w + x)
			out.SetPacked(i, packGray(grayValue(src.Packed(i), alphaScaled)))
		}
	}
}
