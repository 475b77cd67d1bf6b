// Package e2e contains end-to-end tests for the pixdiff CLI.
// This package execs the built binary so it can run against pre-built
// release artifacts.
package e2e

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// getBinaryName returns the test binary name with platform-specific extension
func getBinaryName() string {
	if runtime.GOOS == "windows" {
		return "pixdiff-test.exe"
	}
	return "pixdiff-test"
}

// getBinaryPath returns the path to execute the test binary
// If PIXDIFF_BINARY env var is set, use that instead (for CI with pre-built binaries)
func getBinaryPath() string {
	if path := os.Getenv("PIXDIFF_BINARY"); path != "" {
		return path
	}
	if runtime.GOOS == "windows" {
		return ".\\pixdiff-test.exe"
	}
	return "./pixdiff-test"
}

// shouldBuildBinary returns true if we need to build the binary (no pre-built binary provided)
func shouldBuildBinary() bool {
	return os.Getenv("PIXDIFF_BINARY") == ""
}

func skipUnlessE2E(t *testing.T) {
	t.Helper()
	if os.Getenv("PIXDIFF_E2E") != "1" {
		t.Skip("Skipping E2E test (set PIXDIFF_E2E=1 to run)")
	}
}

func buildBinary(t *testing.T) {
	t.Helper()
	if !shouldBuildBinary() {
		return
	}
	buildCmd := exec.Command("go", "build", "-o", getBinaryName(), "./cmd/pixdiff")
	buildCmd.Dir = getProjectRoot(t)
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	t.Cleanup(func() {
		os.Remove(filepath.Join(getProjectRoot(t), getBinaryName()))
	})
}

// writeTestPNG writes a w x h PNG where pixels inside the marked region
// are black and the rest white.
func writeTestPNG(t *testing.T, path string, w, h int, marked image.Rectangle) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(marked) {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestCompareCommand tests the compare subcommand with differing images
func TestCompareCommand(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.png")
	targetPath := filepath.Join(dir, "target.png")
	outputPath := filepath.Join(dir, "diff.png")

	writeTestPNG(t, basePath, 60, 40, image.Rectangle{})
	writeTestPNG(t, targetPath, 60, 40, image.Rect(10, 10, 20, 20))

	cmd := exec.Command(getBinaryPath(), "compare", basePath, targetPath, outputPath)
	cmd.Dir = getProjectRoot(t)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Differing images exit with code 1.
	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected exit error, got %v\nstdout: %s\nstderr: %s", err, stdout.String(), stderr.String())
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d\nstderr: %s", exitErr.ExitCode(), stderr.String())
	}

	// Default output format is one-line JSON with the diff count.
	var summary struct {
		DiffCount uint64 `json:"diffCount"`
		Identical bool   `json:"identical"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, stdout.String())
	}
	if summary.DiffCount != 100 {
		t.Errorf("expected 100 differing pixels, got %d", summary.DiffCount)
	}
	if summary.Identical {
		t.Error("expected identical=false")
	}

	// The diff image must exist and be a valid PNG.
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read diff image: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("diff image is not valid PNG: %v", err)
	}
	if cfg.Width != 60 || cfg.Height != 40 {
		t.Errorf("expected 60x40 diff image, got %dx%d", cfg.Width, cfg.Height)
	}
}

// TestCompareCommandIdentical tests that identical images exit with code 0
func TestCompareCommandIdentical(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.png")
	targetPath := filepath.Join(dir, "target.png")

	writeTestPNG(t, basePath, 30, 30, image.Rect(5, 5, 10, 10))
	writeTestPNG(t, targetPath, 30, 30, image.Rect(5, 5, 10, 10))

	cmd := exec.Command(getBinaryPath(), "compare", basePath, targetPath)
	cmd.Dir = getProjectRoot(t)

	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("compare failed for identical images: %v", err)
	}
	if !strings.Contains(string(out), `"identical":true`) {
		t.Errorf("expected identical summary, got: %s", out)
	}
}

// TestCompareCommandTextFormat tests the text output format
func TestCompareCommandTextFormat(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.png")
	targetPath := filepath.Join(dir, "target.png")

	writeTestPNG(t, basePath, 20, 20, image.Rectangle{})
	writeTestPNG(t, targetPath, 20, 20, image.Rect(0, 0, 2, 2))

	cmd := exec.Command(getBinaryPath(), "compare", "--output-format", "text", basePath, targetPath)
	cmd.Dir = getProjectRoot(t)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	_ = cmd.Run() // exit 1 is expected

	if !strings.Contains(stdout.String(), "Diff count: 4") {
		t.Errorf("unexpected text output: %s", stdout.String())
	}
}

// TestCompareMissingFile tests that a missing input exits with code 2
func TestCompareMissingFile(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.png")
	writeTestPNG(t, basePath, 10, 10, image.Rectangle{})

	cmd := exec.Command(getBinaryPath(), "compare", basePath, filepath.Join(dir, "missing.png"))
	cmd.Dir = getProjectRoot(t)

	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected exit error, got %v", err)
	}
	if exitErr.ExitCode() != 2 {
		t.Errorf("expected exit code 2, got %d", exitErr.ExitCode())
	}
}

// TestInfoCommand tests the info subcommand
func TestInfoCommand(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "probe.png")
	writeTestPNG(t, path, 48, 32, image.Rectangle{})

	cmd := exec.Command(getBinaryPath(), "info", path)
	cmd.Dir = getProjectRoot(t)

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Info command failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "png 48x32") {
		t.Errorf("Unexpected info output: %s", out)
	}
}

// TestJuxtaposeCommand tests the juxtapose subcommand
func TestJuxtaposeCommand(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.png")
	targetPath := filepath.Join(dir, "target.png")
	sheetPath := filepath.Join(dir, "sheet.png")

	writeTestPNG(t, basePath, 40, 30, image.Rectangle{})
	writeTestPNG(t, targetPath, 40, 30, image.Rect(0, 0, 10, 10))

	cmd := exec.Command(getBinaryPath(), "juxtapose", "-o", sheetPath, basePath, targetPath)
	cmd.Dir = getProjectRoot(t)

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Juxtapose command failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(sheetPath)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		t.Errorf("sheet is not valid PNG: %v", err)
	}
}

// TestVersionCommand tests the version flag
func TestVersionCommand(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	// urfave/cli uses --version flag instead of version subcommand
	cmd := exec.Command(getBinaryPath(), "--version")
	cmd.Dir = getProjectRoot(t)

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Version command failed: %v", err)
	}
	if !strings.Contains(string(out), "pixdiff version") {
		t.Errorf("Unexpected version output: %s", out)
	}
}

// getProjectRoot walks up from the working directory to the go.mod root.
func getProjectRoot(t *testing.T) string {
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Failed to find project root (no go.mod)")
		}
		dir = parent
	}
}
