package compare

import (
	"github.com/user/pixdiff/pkg/rawimage"
)

// Anti-aliasing detection after "Anti-aliased Pixel and Intensity Slope
// Detector", V. Vysniauskas (2009). A differing pixel that sits on a
// brightness gradient whose extreme neighbor is solid in both images is
// treated as anti-aliasing rather than a real change.

// hasManySiblings reports whether the pixel at (x, y) has more than two
// identical neighbors in its 3x3 neighborhood. Pixels on the image
// boundary count one implicit match.
func hasManySiblings(img *rawimage.Image, x, y uint32) bool {
	w, h := img.Width, img.Height
	pos := int(y*w + x)
	val := img.Packed(pos)

	x0, y0 := x, y
	if x > 0 {
		x0 = x - 1
	}
	if y > 0 {
		y0 = y - 1
	}
	x1 := min(x+1, w-1)
	y1 := min(y+1, h-1)

	count := 0
	if x == 0 || x == w-1 || y == 0 || y == h-1 {
		count = 1
	}

	for ny := y0; ny <= y1; ny++ {
		for nx := x0; nx <= x1; nx++ {
			if nx == x && ny == y {
				continue
			}
			if img.Packed(int(ny*w+nx)) == val {
				count++
				if count > 2 {
					return true
				}
			}
		}
	}
	return false
}

// isAntialiased reports whether the differing pixel at (x, y) of a looks
// like an anti-aliasing artifact when compared against b.
func isAntialiased(a, b *rawimage.Image, x, y uint32) bool {
	w, h := a.Width, a.Height

	x0, y0 := x, y
	if x > 0 {
		x0 = x - 1
	}
	if y > 0 {
		y0 = y - 1
	}
	x1 := min(x+1, w-1)
	y1 := min(y+1, h-1)

	pos := int(y*w + x)
	center := a.Packed(pos)

	zeroes := 0
	if x == x0 || x == x1 || y == y0 || y == y1 {
		zeroes = 1
	}

	var minDelta, maxDelta float64
	var minX, minY, maxX, maxY uint32

	for ny := y0; ny <= y1; ny++ {
		for nx := x0; nx <= x1; nx++ {
			if nx == x && ny == y {
				continue
			}

			adj := a.Packed(int(ny*w + nx))
			if adj == center {
				zeroes++
				// Three or more equal siblings rule out anti-aliasing.
				if zeroes > 2 {
					return false
				}
				continue
			}

			delta := colorDeltaY(center, adj)
			if delta < minDelta {
				minDelta = delta
				minX, minY = nx, ny
			} else if delta > maxDelta {
				maxDelta = delta
				maxX, maxY = nx, ny
			}
		}
	}

	// No gradient in both directions means no anti-aliasing.
	if minDelta == 0 || maxDelta == 0 {
		return false
	}

	// The darkest or brightest neighbor must be part of a solid region
	// in both images.
	return (hasManySiblings(a, minX, minY) && hasManySiblings(b, minX, minY)) ||
		(hasManySiblings(a, maxX, maxY) && hasManySiblings(b, maxX, maxY))
}
