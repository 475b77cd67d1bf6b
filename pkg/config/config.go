// Package config provides configuration loading and management.
package config

import (
	"os"

	"github.com/user/pixdiff/pkg/orchestrator"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for pixdiff.
type Config struct {
	// Input/Output
	BasePath   string `yaml:"base"`
	TargetPath string `yaml:"target"`
	OutputPath string `yaml:"output"`

	// Comparison
	Threshold    float64 `yaml:"threshold"`
	IncludeAA    bool    `yaml:"include_aa"`
	Alpha        float64 `yaml:"alpha"`
	AAColor      string  `yaml:"aa_color"`
	DiffColor    string  `yaml:"diff_color"`
	DiffColorAlt string  `yaml:"diff_color_alt"`
	DiffMask     bool    `yaml:"diff_mask"`
	BlockSize    int     `yaml:"block_size"`
	Workers      int     `yaml:"workers"`

	// Decoding
	ScratchLimit uint64 `yaml:"scratch_limit"`

	// Encoding. Zlib level for PNG output, 1-100 for JPEG.
	Quality int `yaml:"quality"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Comparison
		Threshold: 0.1,
		IncludeAA: true,
		Alpha:     0.1,
		AAColor:   "#ffff00",
		DiffColor: "#ff0000",

		// Debug
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ParseColor parses a hex color string like "#ff8800" into RGB.
// Invalid strings parse as black.
func ParseColor(hex string) [3]uint8 {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return [3]uint8{}
	}

	var out [3]uint8
	for i := 0; i < 3; i++ {
		out[i] = hexValue(hex[2*i])<<4 | hexValue(hex[2*i+1])
	}
	return out
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	oc := orchestrator.Config{
		BasePath:   c.BasePath,
		TargetPath: c.TargetPath,
		OutputPath: c.OutputPath,

		Threshold: c.Threshold,
		IncludeAA: c.IncludeAA,
		Alpha:     c.Alpha,
		AAColor:   ParseColor(c.AAColor),
		DiffColor: ParseColor(c.DiffColor),
		DiffMask:  c.DiffMask,
		BlockSize: c.BlockSize,
		Workers:   c.Workers,

		ScratchLimit: c.ScratchLimit,

		Quality: c.Quality,
	}
	if c.DiffColorAlt != "" {
		alt := ParseColor(c.DiffColorAlt)
		oc.DiffColorAlt = &alt
	}
	return oc
}
