package juxtapose

import (
	"context"
	"errors"

	"github.com/user/pixdiff/pkg/adapters/ggrenderer"
	"github.com/user/pixdiff/pkg/adapters/osfilesystem"
	"github.com/user/pixdiff/pkg/pipeline"
	"github.com/user/pixdiff/pkg/rawimage"
	"github.com/user/pixdiff/pkg/stages/compare"
	"github.com/user/pixdiff/pkg/stages/load"
)

// CreateFromFiles loads the two image files, computes their diff, and
// writes the three-panel review sheet to outputPath.
// This is a convenience function wiring the default adapters; for
// custom dependencies build a Juxtaposer directly.
func CreateFromFiles(ctx context.Context, basePath, targetPath, outputPath string, opts Options) error {
	fs := osfilesystem.New()

	loaded, err := load.NewStage(fs, nil).Execute(ctx, pipeline.LoadInput{
		BasePath:   basePath,
		TargetPath: targetPath,
	})
	if err != nil {
		return err
	}

	// The diff panel is skipped when the images cannot be compared,
	// such as a size mismatch; the sheet is still useful then.
	var diff *rawimage.Image
	compared, err := compare.NewStage().Execute(ctx, pipeline.CompareInput{
		Base:    loaded.Base,
		Target:  loaded.Target,
		Options: pipeline.DefaultCompareOptions(),
		Render:  true,
	})
	if err != nil {
		var sizeErr *compare.SizeMismatchError
		if !errors.As(err, &sizeErr) {
			return err
		}
	} else {
		diff = compared.DiffImage
	}

	j := New(ggrenderer.New(), fs)
	return j.WriteFile(outputPath, loaded.Base, loaded.Target, diff, opts)
}
