package pipeline

import (
	"github.com/user/pixdiff/pkg/rawimage"
)

// =============================================================================
// Load Stage Types
// =============================================================================

// LoadInput contains the two image files to compare.
type LoadInput struct {
	BasePath   string
	TargetPath string
}

// LoadResult contains the decoded images.
type LoadResult struct {
	Base   *rawimage.Image
	Target *rawimage.Image

	// Format names as detected from the file contents (e.g. "png", "qoi").
	BaseFormat   string
	TargetFormat string
}

// =============================================================================
// Compare Stage Types
// =============================================================================

// CompareInput contains parameters for the pixel comparison.
type CompareInput struct {
	Base    *rawimage.Image
	Target  *rawimage.Image
	Options CompareOptions

	// Render enables producing the visual diff image. When false only
	// the counters are computed.
	Render bool
}

// CompareOptions controls the perceptual diff.
type CompareOptions struct {
	// Threshold is the matching sensitivity, 0 to 1. Smaller is more sensitive.
	Threshold float64

	// IncludeAA counts anti-aliased pixels as differences.
	IncludeAA bool

	// Alpha is the opacity of the grayed base image in the diff output.
	Alpha float64

	// AAColor marks detected anti-aliased pixels in the diff output.
	AAColor [3]uint8

	// DiffColor marks differing pixels in the diff output.
	DiffColor [3]uint8

	// DiffColorAlt, when set, marks pixels that got darker; DiffColor then
	// marks pixels that got lighter.
	DiffColorAlt *[3]uint8

	// DiffMask renders only the differing pixels on a transparent background.
	DiffMask bool

	// BlockSize overrides the computed block size for the two-pass scan.
	// Zero means derive it from the image area.
	BlockSize int

	// Workers is the number of goroutines for the per-pixel pass.
	// Zero means runtime.NumCPU.
	Workers int
}

// DefaultCompareOptions returns CompareOptions with default values.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		Threshold: 0.1,
		IncludeAA: true,
		Alpha:     0.1,
		AAColor:   [3]uint8{255, 255, 0},
		DiffColor: [3]uint8{255, 0, 0},
	}
}

// CompareResult contains the comparison outcome.
type CompareResult struct {
	// DiffCount is the number of differing pixels.
	DiffCount uint64

	// DiffPercentage is DiffCount over the total pixel count, 0 to 100.
	DiffPercentage float64

	// Identical is true when no pixel differs.
	Identical bool

	// DiffImage is the rendered diff, nil when rendering was disabled.
	DiffImage *rawimage.Image
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for serializing the diff image.
type EncodeInput struct {
	Image *rawimage.Image

	// Path determines the output format by extension.
	Path string

	// Quality is format dependent: zlib level for PNG, 1-100 for JPEG.
	Quality int
}

// EncodeResult contains the encoded image.
type EncodeResult struct {
	Data []byte
}
