package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/pixdiff/pkg/mocks"
	"github.com/user/pixdiff/pkg/stages/compare"
	"github.com/user/pixdiff/pkg/stages/encode"
	"github.com/user/pixdiff/pkg/stages/load"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newTestOrchestrator(fs *mocks.FileSystem, sink *mocks.DebugSink) *Orchestrator {
	logger := mocks.NewLogger()
	return New(
		load.NewStage(fs, logger),
		compare.NewStage(),
		encode.NewStage(logger),
		fs,
		sink,
		logger,
	)
}

func TestRun_DifferingImages(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("base.png", pngBytes(t, 8, 8, color.NRGBA{R: 255, A: 255}))
	fs.AddFile("target.png", pngBytes(t, 8, 8, color.NRGBA{B: 255, A: 255}))

	o := newTestOrchestrator(fs, mocks.NewDebugSink(false))
	config := DefaultConfig()
	config.BasePath = "base.png"
	config.TargetPath = "target.png"
	config.OutputPath = "diff.png"

	result, err := o.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Identical {
		t.Error("expected differing images")
	}
	if result.DiffCount != 64 {
		t.Errorf("expected 64 differing pixels, got %d", result.DiffCount)
	}
	if result.Width != 8 || result.Height != 8 {
		t.Errorf("expected 8x8, got %dx%d", result.Width, result.Height)
	}
	if result.BaseFormat != "png" {
		t.Errorf("expected png, got %q", result.BaseFormat)
	}

	data, ok := fs.GetFile("diff.png")
	if !ok {
		t.Fatal("expected the diff image to be written")
	}
	if result.OutputBytes != len(data) {
		t.Errorf("expected %d output bytes, got %d", len(data), result.OutputBytes)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("diff output does not parse as PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 8 {
		t.Errorf("unexpected diff image width %d", decoded.Bounds().Dx())
	}
}

func TestRun_IdenticalImagesWriteNoOutput(t *testing.T) {
	fs := mocks.NewFileSystem()
	data := pngBytes(t, 8, 8, color.NRGBA{G: 128, A: 255})
	fs.AddFile("base.png", data)
	fs.AddFile("target.png", data)

	o := newTestOrchestrator(fs, mocks.NewDebugSink(false))
	config := DefaultConfig()
	config.BasePath = "base.png"
	config.TargetPath = "target.png"
	config.OutputPath = "diff.png"

	result, err := o.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Identical {
		t.Error("expected identical images")
	}
	if _, ok := fs.GetFile("diff.png"); ok {
		t.Error("expected no diff image for identical inputs")
	}
	if result.OutputBytes != 0 {
		t.Errorf("expected no output bytes, got %d", result.OutputBytes)
	}
}

func TestRun_NoOutputPath(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("base.png", pngBytes(t, 4, 4, color.NRGBA{R: 255, A: 255}))
	fs.AddFile("target.png", pngBytes(t, 4, 4, color.NRGBA{B: 255, A: 255}))

	o := newTestOrchestrator(fs, mocks.NewDebugSink(false))
	config := DefaultConfig()
	config.BasePath = "base.png"
	config.TargetPath = "target.png"

	result, err := o.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.DiffCount != 16 {
		t.Errorf("expected 16 differing pixels, got %d", result.DiffCount)
	}
	if len(fs.GetAllFiles()) != 2 {
		t.Error("expected no files to be written without an output path")
	}
}

func TestRun_LoadFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	o := newTestOrchestrator(fs, mocks.NewDebugSink(false))

	config := DefaultConfig()
	config.BasePath = "nope.png"
	config.TargetPath = "nope.png"
	if _, err := o.Run(context.Background(), config); err == nil {
		t.Error("expected an error for missing inputs")
	}
}

func TestRun_SizeMismatch(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("base.png", pngBytes(t, 4, 4, color.NRGBA{A: 255}))
	fs.AddFile("target.png", pngBytes(t, 4, 6, color.NRGBA{A: 255}))

	o := newTestOrchestrator(fs, mocks.NewDebugSink(false))
	config := DefaultConfig()
	config.BasePath = "base.png"
	config.TargetPath = "target.png"
	if _, err := o.Run(context.Background(), config); err == nil {
		t.Error("expected an error for mismatched sizes")
	}
}

func TestRun_DebugSink(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("base.png", pngBytes(t, 4, 4, color.NRGBA{R: 255, A: 255}))
	fs.AddFile("target.png", pngBytes(t, 4, 4, color.NRGBA{B: 255, A: 255}))

	sink := mocks.NewDebugSink(true)
	o := newTestOrchestrator(fs, sink)
	config := DefaultConfig()
	config.BasePath = "base.png"
	config.TargetPath = "target.png"

	result, err := o.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(sink.DecodedInputs) != 2 {
		t.Errorf("expected both decoded inputs saved, got %d", len(sink.DecodedInputs))
	}
	// The sink forces rendering even without an output path.
	if sink.DiffImage == nil {
		t.Error("expected the diff image in the sink")
	}
	if sink.ResultJSON == nil {
		t.Fatal("expected the result JSON in the sink")
	}
	var saved RunResult
	if err := json.Unmarshal(sink.ResultJSON, &saved); err != nil {
		t.Fatalf("result JSON does not parse: %v", err)
	}
	if saved.DiffCount != result.DiffCount {
		t.Errorf("expected saved count %d, got %d", result.DiffCount, saved.DiffCount)
	}
}
