// Package enginedetect selects a decode engine by sniffing the format
// signature of a source buffer.
package enginedetect

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/user/pixdiff/pkg/adapters/jpegengine"
	"github.com/user/pixdiff/pkg/adapters/pngengine"
	"github.com/user/pixdiff/pkg/adapters/qoiengine"
	"github.com/user/pixdiff/pkg/ports"
)

// Format identifies an image container format.
type Format int

const (
	// FormatUnknown is an unrecognized format.
	FormatUnknown Format = iota
	// FormatPNG is Portable Network Graphics.
	FormatPNG
	// FormatQOI is the Quite OK Image format.
	FormatQOI
	// FormatJPEG is baseline JPEG.
	FormatJPEG
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatQOI:
		return "qoi"
	case FormatJPEG:
		return "jpeg"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat is returned when no engine recognizes the input.
var ErrUnknownFormat = errors.New("enginedetect: unknown image format")

type entry struct {
	format Format
	engine ports.DecodeEngine
}

func defaultEngines() []entry {
	return []entry{
		{FormatPNG, pngengine.New()},
		{FormatQOI, qoiengine.New()},
		{FormatJPEG, jpegengine.New()},
	}
}

// Detect sniffs src against the known engines and returns the first
// that recognizes it.
func Detect(src []byte) (ports.DecodeEngine, Format, error) {
	for _, e := range defaultEngines() {
		if e.engine.Sniff(src) {
			return e.engine, e.format, nil
		}
	}
	return nil, FormatUnknown, ErrUnknownFormat
}

// FromPath maps a file extension to a format. Used for choosing the
// output encoder, where there are no bytes to sniff yet.
func FromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".qoi":
		return FormatQOI
	case ".jpg", ".jpeg":
		return FormatJPEG
	default:
		return FormatUnknown
	}
}
