package pixdiff

import (
	"context"

	"github.com/user/pixdiff/pkg/adapters/logger"
	"github.com/user/pixdiff/pkg/adapters/nullsink"
	"github.com/user/pixdiff/pkg/adapters/osfilesystem"
	"github.com/user/pixdiff/pkg/decode"
	"github.com/user/pixdiff/pkg/orchestrator"
	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/stages/compare"
	"github.com/user/pixdiff/pkg/stages/encode"
	"github.com/user/pixdiff/pkg/stages/load"
)

// Compare runs the full pipeline with default adapters. outputPath may
// be empty to skip writing the diff image. A nil log suppresses all
// output.
func Compare(ctx context.Context, basePath, targetPath, outputPath string, cfg Config, log ports.Logger) (orchestrator.RunResult, error) {
	if log == nil {
		log = logger.NewNoop()
	}

	fs := osfilesystem.New()

	orch := orchestrator.New(
		load.NewStageWithOptions(fs, log.WithComponent("load"), decode.Options{
			ScratchLimit: cfg.ScratchLimit,
		}),
		compare.NewStage(),
		encode.NewStage(log.WithComponent("encode")),
		fs,
		nullsink.New(),
		log,
	)

	return orch.Run(ctx, cfg.ToOrchestratorConfig(basePath, targetPath, outputPath))
}
