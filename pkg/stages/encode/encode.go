// Package encode implements the diff image serialization stage.
// The output format follows the file extension; unknown extensions
// fall back to PNG.
package encode

import (
	"context"
	"fmt"

	"github.com/user/pixdiff/pkg/adapters/enginedetect"
	"github.com/user/pixdiff/pkg/adapters/jpegencoder"
	"github.com/user/pixdiff/pkg/adapters/pngencoder"
	"github.com/user/pixdiff/pkg/adapters/qoiencoder"
	"github.com/user/pixdiff/pkg/pipeline"
	"github.com/user/pixdiff/pkg/ports"
)

// Stage serializes the diff image for writing.
type Stage struct {
	logger ports.Logger
}

// NewStage creates an encode stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{logger: logger}
}

// Execute encodes the image in the format implied by the output path.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.EncodeResult{}, err
	}
	if input.Image == nil {
		return pipeline.EncodeResult{}, fmt.Errorf("encode: no image to encode")
	}

	format := enginedetect.FromPath(input.Path)
	if format == enginedetect.FormatUnknown {
		if s.logger != nil {
			s.logger.Warn("Unknown output extension, defaulting to PNG")
		}
		format = enginedetect.FormatPNG
	}

	enc := encoderFor(format)
	data, err := enc.Encode(input.Image, input.Quality)
	if err != nil {
		return pipeline.EncodeResult{}, fmt.Errorf("encode: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("Diff image encoded: %d bytes", len(data))
	}
	return pipeline.EncodeResult{Data: data}, nil
}

func encoderFor(format enginedetect.Format) ports.ImageEncoder {
	switch format {
	case enginedetect.FormatQOI:
		return qoiencoder.New()
	case enginedetect.FormatJPEG:
		return jpegencoder.New()
	default:
		return pngencoder.New()
	}
}

var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = (*Stage)(nil)
