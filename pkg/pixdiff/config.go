// Package pixdiff provides a high-level API for comparing images.
package pixdiff

import (
	"github.com/user/pixdiff/pkg/orchestrator"
)

// Config represents the configuration for an image comparison.
type Config struct {
	// Comparison
	Threshold    float64   // Matching threshold (0-1, smaller is more sensitive)
	IncludeAA    bool      // Count anti-aliased pixels as differences
	Alpha        float64   // Opacity of the grayed background in the diff output
	AAColor      [3]uint8  // Color for anti-aliased pixels
	DiffColor    [3]uint8  // Color for differing pixels
	DiffColorAlt *[3]uint8 // Color for darkened pixels (nil = same as DiffColor)
	DiffMask     bool      // Render only differing pixels on transparent background
	BlockSize    int       // Scan block size override (0 = derive from area)
	Workers      int       // Hot pass parallelism (0 = NumCPU)

	// Decoding
	ScratchLimit uint64 // Upper bound for decoder scratch memory (0 = default)

	// Output
	Quality int // Zlib level for PNG output, 1-100 for JPEG
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with default settings.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: defaults(),
	}
}

// NewStrictConfigBuilder creates a ConfigBuilder tuned for
// pixel-perfect comparisons: zero threshold and no anti-aliasing
// tolerance.
func NewStrictConfigBuilder() *ConfigBuilder {
	cfg := defaults()
	cfg.Threshold = 0
	cfg.IncludeAA = true
	return &ConfigBuilder{config: cfg}
}

func defaults() Config {
	return Config{
		Threshold: 0.1,
		IncludeAA: true,
		Alpha:     0.1,
		AAColor:   [3]uint8{255, 255, 0},
		DiffColor: [3]uint8{255, 0, 0},
	}
}

// WithThreshold sets the matching threshold.
func (b *ConfigBuilder) WithThreshold(threshold float64) *ConfigBuilder {
	b.config.Threshold = threshold
	return b
}

// WithAntialiasingDetection enables or disables treating anti-aliased
// pixels as matches.
func (b *ConfigBuilder) WithAntialiasingDetection(enabled bool) *ConfigBuilder {
	b.config.IncludeAA = !enabled
	return b
}

// WithAlpha sets the background dimming opacity.
func (b *ConfigBuilder) WithAlpha(alpha float64) *ConfigBuilder {
	b.config.Alpha = alpha
	return b
}

// WithAAColor sets the anti-aliasing marker color.
func (b *ConfigBuilder) WithAAColor(c [3]uint8) *ConfigBuilder {
	b.config.AAColor = c
	return b
}

// WithDiffColor sets the difference marker color.
func (b *ConfigBuilder) WithDiffColor(c [3]uint8) *ConfigBuilder {
	b.config.DiffColor = c
	return b
}

// WithDiffColorAlt sets a separate color for pixels that got darker.
func (b *ConfigBuilder) WithDiffColorAlt(c [3]uint8) *ConfigBuilder {
	b.config.DiffColorAlt = &c
	return b
}

// WithDiffMask renders only the differing pixels.
func (b *ConfigBuilder) WithDiffMask(enabled bool) *ConfigBuilder {
	b.config.DiffMask = enabled
	return b
}

// WithBlockSize overrides the derived scan block size.
func (b *ConfigBuilder) WithBlockSize(size int) *ConfigBuilder {
	b.config.BlockSize = size
	return b
}

// WithWorkers sets the hot pass parallelism.
func (b *ConfigBuilder) WithWorkers(workers int) *ConfigBuilder {
	b.config.Workers = workers
	return b
}

// WithScratchLimit bounds the decoder scratch allocation.
func (b *ConfigBuilder) WithScratchLimit(limit uint64) *ConfigBuilder {
	b.config.ScratchLimit = limit
	return b
}

// WithQuality sets the output encoding quality.
func (b *ConfigBuilder) WithQuality(quality int) *ConfigBuilder {
	b.config.Quality = quality
	return b
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.Threshold < 0 {
		cfg.Threshold = 0
	} else if cfg.Threshold > 1 {
		cfg.Threshold = 1
	}
	if cfg.Alpha < 0 {
		cfg.Alpha = 0
	} else if cfg.Alpha > 1 {
		cfg.Alpha = 1
	}
	if cfg.BlockSize < 0 {
		cfg.BlockSize = 0
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}

	return cfg
}

// ToOrchestratorConfig converts Config to orchestrator.Config for the
// given input and output paths.
func (c Config) ToOrchestratorConfig(basePath, targetPath, outputPath string) orchestrator.Config {
	return orchestrator.Config{
		BasePath:   basePath,
		TargetPath: targetPath,
		OutputPath: outputPath,

		Threshold:    c.Threshold,
		IncludeAA:    c.IncludeAA,
		Alpha:        c.Alpha,
		AAColor:      c.AAColor,
		DiffColor:    c.DiffColor,
		DiffColorAlt: c.DiffColorAlt,
		DiffMask:     c.DiffMask,
		BlockSize:    c.BlockSize,
		Workers:      c.Workers,

		ScratchLimit: c.ScratchLimit,

		Quality: c.Quality,
	}
}
