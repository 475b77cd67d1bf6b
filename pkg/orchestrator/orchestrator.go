// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/user/pixdiff/pkg/pipeline"
	"github.com/user/pixdiff/pkg/ports"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input
	BasePath   string
	TargetPath string

	// Output. Empty means no diff image is written.
	OutputPath string

	// Comparison
	Threshold    float64
	IncludeAA    bool
	Alpha        float64
	AAColor      [3]uint8
	DiffColor    [3]uint8
	DiffColorAlt *[3]uint8
	DiffMask     bool
	BlockSize    int
	Workers      int

	// Decoding
	ScratchLimit uint64

	// Encoding. Zlib level for PNG, 1-100 for JPEG.
	Quality int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	opts := pipeline.DefaultCompareOptions()
	return Config{
		Threshold: opts.Threshold,
		IncludeAA: opts.IncludeAA,
		Alpha:     opts.Alpha,
		AAColor:   opts.AAColor,
		DiffColor: opts.DiffColor,
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	loadStage    pipeline.Stage[pipeline.LoadInput, pipeline.LoadResult]
	compareStage pipeline.Stage[pipeline.CompareInput, pipeline.CompareResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	fs           ports.FileSystem
	sink         ports.DebugSink
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	loadStage pipeline.Stage[pipeline.LoadInput, pipeline.LoadResult],
	compareStage pipeline.Stage[pipeline.CompareInput, pipeline.CompareResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		loadStage:    loadStage,
		compareStage: compareStage,
		encodeStage:  encodeStage,
		fs:           fs,
		sink:         sink,
		logger:       logger,
	}
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info(l10n.T("Starting pipeline"))
	start := time.Now()

	// 1. Load and decode both images
	o.logger.Info(l10n.T("Loading images"))
	loaded, err := o.loadStage.Execute(ctx, pipeline.LoadInput{
		BasePath:   config.BasePath,
		TargetPath: config.TargetPath,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to load images: %s", err))
		return RunResult{}, fmt.Errorf("load stage: %w", err)
	}
	o.logger.Info(l10n.F("Images loaded: %dx%d (%s) and %dx%d (%s)",
		loaded.Base.Width, loaded.Base.Height, loaded.BaseFormat,
		loaded.Target.Width, loaded.Target.Height, loaded.TargetFormat))

	if o.sink.Enabled() {
		o.sink.SaveDecodedInput(0, loaded.Base)
		o.sink.SaveDecodedInput(1, loaded.Target)
	}

	// 2. Compare
	render := config.OutputPath != "" || o.sink.Enabled()
	o.logger.Info(l10n.F("Comparing %dx%d pixels", loaded.Base.Width, loaded.Base.Height))
	compared, err := o.compareStage.Execute(ctx, pipeline.CompareInput{
		Base:    loaded.Base,
		Target:  loaded.Target,
		Options: o.buildCompareOptions(config),
		Render:  render,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to compare images: %s", err))
		return RunResult{}, fmt.Errorf("compare stage: %w", err)
	}
	o.logger.Debug("Comparison completed in %d ms", time.Since(start).Milliseconds())

	if compared.Identical {
		o.logger.Info(l10n.T("Images are identical"))
	} else {
		o.logger.Info(l10n.F("Found %d differing pixels (%.4f%%)",
			compared.DiffCount, compared.DiffPercentage))
	}

	if o.sink.Enabled() && compared.DiffImage != nil {
		o.sink.SaveDiffImage(compared.DiffImage)
	}

	// 3. Encode and write the diff image. Identical images produce no
	// output file.
	var outputBytes int
	if config.OutputPath != "" && !compared.Identical {
		o.logger.Info(l10n.F("Encoding diff image as %s", config.OutputPath))
		encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
			Image:   compared.DiffImage,
			Path:    config.OutputPath,
			Quality: config.Quality,
		})
		if err != nil {
			return RunResult{}, fmt.Errorf("encode stage: %w", err)
		}

		if err := o.fs.WriteFile(config.OutputPath, encoded.Data); err != nil {
			o.logger.Error(l10n.F("Failed to write output: %s", err))
			return RunResult{}, fmt.Errorf("write output: %w", err)
		}
		outputBytes = len(encoded.Data)
		o.logger.Info(l10n.F("Output saved to %s", config.OutputPath))
	}

	o.logger.Info(l10n.T("Pipeline completed successfully"))

	result := RunResult{
		DiffCount:      compared.DiffCount,
		DiffPercentage: compared.DiffPercentage,
		Identical:      compared.Identical,
		Width:          loaded.Base.Width,
		Height:         loaded.Base.Height,
		BaseFormat:     loaded.BaseFormat,
		TargetFormat:   loaded.TargetFormat,
		OutputPath:     config.OutputPath,
		OutputBytes:    outputBytes,
		ElapsedMs:      time.Since(start).Milliseconds(),
	}

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(result, "", "  "); err == nil {
			o.sink.SaveResultJSON(data)
		}
	}

	return result, nil
}

func (o *Orchestrator) buildCompareOptions(config Config) pipeline.CompareOptions {
	return pipeline.CompareOptions{
		Threshold:    config.Threshold,
		IncludeAA:    config.IncludeAA,
		Alpha:        config.Alpha,
		AAColor:      config.AAColor,
		DiffColor:    config.DiffColor,
		DiffColorAlt: config.DiffColorAlt,
		DiffMask:     config.DiffMask,
		BlockSize:    config.BlockSize,
		Workers:      config.Workers,
	}
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	DiffCount      uint64
	DiffPercentage float64
	Identical      bool

	Width  uint32
	Height uint32

	BaseFormat   string
	TargetFormat string

	OutputPath  string
	OutputBytes int

	ElapsedMs int64
}
