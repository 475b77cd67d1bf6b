// Package main provides the CLI entry point for pixdiff.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/pixdiff/pkg/adapters/enginedetect"
	"github.com/user/pixdiff/pkg/adapters/filesink"
	"github.com/user/pixdiff/pkg/adapters/logger"
	"github.com/user/pixdiff/pkg/adapters/nullsink"
	"github.com/user/pixdiff/pkg/adapters/osfilesystem"
	"github.com/user/pixdiff/pkg/adapters/pngencoder"
	"github.com/user/pixdiff/pkg/config"
	"github.com/user/pixdiff/pkg/decode"
	"github.com/user/pixdiff/pkg/juxtapose"
	"github.com/user/pixdiff/pkg/orchestrator"
	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/stages/compare"
	"github.com/user/pixdiff/pkg/stages/encode"
	"github.com/user/pixdiff/pkg/stages/load"
	"github.com/user/pixdiff/pkg/summarizer"
)

var version = "dev"

// Exit codes follow diff conventions: 0 identical, 1 differ, 2 error.
const (
	exitIdentical = 0
	exitDiffer    = 1
	exitError     = 2
)

func main() {
	app := &cli.App{
		Name:           "pixdiff",
		Usage:          l10n.T("Perceptual image comparison with block-based scanning"),
		Version:        version,
		DefaultCommand: "compare",
		Commands: []*cli.Command{
			compareCommand(),
			infoCommand(),
			juxtaposeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     l10n.T("Compare two images and report differing pixels"),
		ArgsUsage: "<base> <target> [output]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: l10n.T("Load settings from a YAML file")},
			&cli.Float64Flag{Name: "threshold", Aliases: []string{"t"}, Value: 0.1, Usage: l10n.T("Color difference threshold (0.0-1.0)")},
			&cli.BoolFlag{Name: "antialiasing", Aliases: []string{"a"}, Usage: l10n.T("Detect and ignore anti-aliased pixels")},
			&cli.BoolFlag{Name: "diff-mask", Usage: l10n.T("Render only differences on a transparent background")},
			&cli.Float64Flag{Name: "alpha", Value: 0.1, Usage: l10n.T("Opacity of the grayed background in the diff image")},
			&cli.StringFlag{Name: "aa-color", Value: "#ffff00", Usage: l10n.T("Color for anti-aliased pixels (hex)")},
			&cli.StringFlag{Name: "diff-color", Value: "#ff0000", Usage: l10n.T("Color for differing pixels (hex)")},
			&cli.StringFlag{Name: "diff-color-alt", Usage: l10n.T("Color for darkened pixels (hex)")},
			&cli.IntFlag{Name: "block-size", Usage: l10n.T("Scan block size override (power of two)")},
			&cli.IntFlag{Name: "workers", Usage: l10n.T("Worker count for the pixel pass (0 = all CPUs)")},
			&cli.Uint64Flag{Name: "scratch-limit", Usage: l10n.T("Decoder scratch memory limit in bytes")},
			&cli.IntFlag{Name: "compression", Aliases: []string{"c"}, Usage: l10n.T("PNG compression level (0-9)")},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Value: 90, Usage: l10n.T("JPEG quality (1-100)")},
			&cli.StringFlag{Name: "output-format", Value: "json", Usage: l10n.T("Result format: json, text or markdown")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Write the result to a file as well")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save intermediate artifacts")},
			&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: l10n.T("Directory for debug output")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "warn", Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
		},
		Action: runCompare,
	}
}

func runCompare(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit(l10n.T("compare requires <base> and <target> arguments"), exitError)
	}

	formatter := formatterFor(c.String("output-format"))

	cfg, err := buildConfig(c)
	if err != nil {
		return reportError(formatter, err)
	}

	log := buildLogger(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fs := osfilesystem.New()

	var sink ports.DebugSink
	if c.Bool("debug") {
		dir := c.String("debug-dir")
		if err := fs.MkdirAll(dir); err != nil {
			return reportError(formatter, fmt.Errorf("create debug directory: %w", err))
		}
		sink = filesink.New(dir, fs, pngencoder.New())
	} else {
		sink = nullsink.New()
	}

	orch := orchestrator.New(
		load.NewStageWithOptions(fs, log.WithComponent("load"), decode.Options{
			ScratchLimit: cfg.ScratchLimit,
		}),
		compare.NewStage(),
		encode.NewStage(log.WithComponent("encode")),
		fs,
		sink,
		log,
	)

	result, err := orch.Run(ctx, cfg)
	if err != nil {
		// A size mismatch still means the images differ.
		var sizeErr *compare.SizeMismatchError
		if errors.As(err, &sizeErr) {
			reportSummary(formatter, summarizer.FromError(sizeErr), os.Stderr)
			return cli.Exit("", exitDiffer)
		}
		return reportError(formatter, err)
	}

	summary := summarizer.FromRunResult(result)
	reportSummary(formatter, summary, os.Stdout)

	if path := c.String("summary"); path != "" {
		if err := summarizer.NewWriter(fs, formatter).Write(path, summary); err != nil {
			return reportError(formatter, err)
		}
	}

	if result.Identical {
		return nil
	}
	return cli.Exit("", exitDiffer)
}

// buildConfig merges the optional YAML file with flag overrides.
func buildConfig(c *cli.Context) (orchestrator.Config, error) {
	fileCfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return orchestrator.Config{}, fmt.Errorf("load config: %w", err)
		}
		fileCfg = loaded
	}

	cfg := fileCfg.ToOrchestratorConfig()
	cfg.BasePath = c.Args().Get(0)
	cfg.TargetPath = c.Args().Get(1)
	if c.NArg() > 2 {
		cfg.OutputPath = c.Args().Get(2)
	}

	if c.IsSet("threshold") {
		cfg.Threshold = c.Float64("threshold")
	}
	if c.IsSet("antialiasing") {
		cfg.IncludeAA = !c.Bool("antialiasing")
	}
	if c.IsSet("alpha") {
		cfg.Alpha = c.Float64("alpha")
	}
	if c.IsSet("aa-color") {
		cfg.AAColor = config.ParseColor(c.String("aa-color"))
	}
	if c.IsSet("diff-color") {
		cfg.DiffColor = config.ParseColor(c.String("diff-color"))
	}
	if c.IsSet("diff-color-alt") {
		alt := config.ParseColor(c.String("diff-color-alt"))
		cfg.DiffColorAlt = &alt
	}
	if c.IsSet("diff-mask") {
		cfg.DiffMask = c.Bool("diff-mask")
	}
	if c.IsSet("block-size") {
		cfg.BlockSize = c.Int("block-size")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("scratch-limit") {
		cfg.ScratchLimit = c.Uint64("scratch-limit")
	}

	// PNG output uses the compression flag, JPEG the quality flag.
	switch enginedetect.FromPath(cfg.OutputPath) {
	case enginedetect.FormatJPEG:
		cfg.Quality = c.Int("quality")
	default:
		cfg.Quality = c.Int("compression")
	}

	return cfg, nil
}

func buildLogger(c *cli.Context) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
}

func formatterFor(name string) summarizer.Formatter {
	switch name {
	case "text":
		return summarizer.NewTextFormatter()
	case "markdown":
		return summarizer.NewMarkdownFormatter()
	default:
		return summarizer.NewJSONFormatter()
	}
}

func reportSummary(formatter summarizer.Formatter, summary *summarizer.Summary, out *os.File) {
	fmt.Fprintln(out, formatter.Format(summary))
}

func reportError(formatter summarizer.Formatter, err error) error {
	reportSummary(formatter, summarizer.FromError(err), os.Stderr)
	return cli.Exit("", exitError)
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     l10n.T("Probe an image file and print its geometry"),
		ArgsUsage: "<image>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("info requires exactly one <image> argument"), exitError)
			}
			path := c.Args().Get(0)

			data, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(err.Error(), exitError)
			}

			engine, format, err := enginedetect.Detect(data)
			if err != nil {
				return cli.Exit(err.Error(), exitError)
			}

			orch := decode.New(engine, decode.Options{})
			cfg, err := orch.Probe(data)
			if err != nil {
				return cli.Exit(err.Error(), exitError)
			}

			fmt.Printf("%s: %s %dx%d\n", path, format, cfg.Width, cfg.Height)
			return nil
		},
	}
}

func juxtaposeCommand() *cli.Command {
	return &cli.Command{
		Name:      "juxtapose",
		Usage:     l10n.T("Render base, target and diff side by side"),
		ArgsUsage: "<base> <target>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output PNG file path")},
			&cli.IntFlag{Name: "gap", Value: 10, Usage: l10n.T("Gap between panels in pixels")},
			&cli.IntFlag{Name: "max-width", Value: 640, Usage: l10n.T("Maximum panel width before scaling down")},
			&cli.BoolFlag{Name: "no-labels", Usage: l10n.T("Hide panel captions")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit(l10n.T("juxtapose requires <base> and <target> arguments"), exitError)
			}

			opts := juxtapose.DefaultOptions()
			opts.Gap = c.Int("gap")
			opts.MaxPanelWidth = c.Int("max-width")
			opts.Labels = !c.Bool("no-labels")

			err := juxtapose.CreateFromFiles(
				context.Background(),
				c.Args().Get(0),
				c.Args().Get(1),
				c.String("output"),
				opts,
			)
			if err != nil {
				return cli.Exit(err.Error(), exitError)
			}

			fmt.Println(l10n.F("Output saved to %s", c.String("output")))
			return nil
		},
	}
}
