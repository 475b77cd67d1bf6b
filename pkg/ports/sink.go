package ports

import (
	"github.com/user/pixdiff/pkg/rawimage"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing artifacts for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveDecodedInput saves a decoded input image (0 = base, 1 = candidate).
	SaveDecodedInput(index int, img *rawimage.Image) error

	// SaveDiffImage saves the rendered diff overlay.
	SaveDiffImage(img *rawimage.Image) error

	// SaveResultJSON saves the comparison result as JSON.
	SaveResultJSON(data []byte) error
}
