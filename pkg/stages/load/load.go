// Package load implements the image loading stage. It reads the two
// input files, detects their formats by signature, and decodes both
// concurrently through the bounded decode orchestrator.
package load

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/pixdiff/pkg/adapters/enginedetect"
	"github.com/user/pixdiff/pkg/decode"
	"github.com/user/pixdiff/pkg/pipeline"
	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// Stage loads and decodes the two images to compare.
type Stage struct {
	fs     ports.FileSystem
	logger ports.Logger
	opts   decode.Options
}

// NewStage creates a load stage with the given filesystem.
func NewStage(fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{fs: fs, logger: logger, opts: decode.Options{}}
}

// NewStageWithOptions creates a load stage with decode options.
func NewStageWithOptions(fs ports.FileSystem, logger ports.Logger, opts decode.Options) *Stage {
	return &Stage{fs: fs, logger: logger, opts: opts}
}

// Execute reads and decodes both images. The two files are decoded in
// parallel; the first failure wins.
func (s *Stage) Execute(ctx context.Context, input pipeline.LoadInput) (pipeline.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.LoadResult{}, err
	}

	type loaded struct {
		img    *rawimage.Image
		format enginedetect.Format
		err    error
	}

	paths := [2]string{input.BasePath, input.TargetPath}
	var results [2]loaded

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			img, format, err := s.loadOne(paths[i])
			results[i] = loaded{img: img, format: format, err: err}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r.err != nil {
			return pipeline.LoadResult{}, fmt.Errorf("load: %s: %w", paths[i], r.err)
		}
	}

	return pipeline.LoadResult{
		Base:         results[0].img,
		Target:       results[1].img,
		BaseFormat:   results[0].format.String(),
		TargetFormat: results[1].format.String(),
	}, nil
}

func (s *Stage) loadOne(path string) (*rawimage.Image, enginedetect.Format, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, enginedetect.FormatUnknown, err
	}

	engine, format, err := enginedetect.Detect(data)
	if err != nil {
		return nil, enginedetect.FormatUnknown, err
	}

	img, err := decode.New(engine, s.opts).Decode(data)
	if err != nil {
		return nil, format, err
	}

	if s.logger != nil {
		s.logger.Debug("decoded %s image %dx%d from %s", format, img.Width, img.Height, path)
	}
	return img, format, nil
}

var _ pipeline.Stage[pipeline.LoadInput, pipeline.LoadResult] = (*Stage)(nil)
