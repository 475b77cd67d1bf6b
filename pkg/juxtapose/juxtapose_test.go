package juxtapose

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/pixdiff/pkg/mocks"
	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

func testImages(t *testing.T, w, h uint32) (*rawimage.Image, *rawimage.Image, *rawimage.Image) {
	t.Helper()
	base, _ := rawimage.New(w, h)
	target, _ := rawimage.New(w, h)
	diff, _ := rawimage.New(w, h)
	return base, target, diff
}

func TestCompose_ThreePanels(t *testing.T) {
	var canvas *mocks.Canvas
	renderer := &mocks.Renderer{
		CreateCanvasFunc: func(width, height int, bg color.Color) ports.Canvas {
			canvas = &mocks.Canvas{}
			// 3 panels of 100px, 2 gaps of 10px, 16px padding on both sides.
			if width != 16*2+100*3+10*2 {
				t.Errorf("unexpected canvas width %d", width)
			}
			if height != 16*2+18+50 {
				t.Errorf("unexpected canvas height %d", height)
			}
			return canvas
		},
	}
	j := New(renderer, mocks.NewFileSystem())

	base, target, diff := testImages(t, 100, 50)
	if _, err := j.Compose(base, target, diff, DefaultOptions()); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if canvas.DrawImageCalls != 3 {
		t.Errorf("expected 3 panels, got %d", canvas.DrawImageCalls)
	}
	if len(canvas.Texts) != 3 || canvas.Texts[0] != "base" || canvas.Texts[1] != "target" || canvas.Texts[2] != "diff" {
		t.Errorf("unexpected captions %v", canvas.Texts)
	}
}

func TestCompose_TwoPanelsWithoutDiff(t *testing.T) {
	var canvas *mocks.Canvas
	renderer := &mocks.Renderer{
		CreateCanvasFunc: func(width, height int, bg color.Color) ports.Canvas {
			canvas = &mocks.Canvas{}
			return canvas
		},
	}
	j := New(renderer, mocks.NewFileSystem())

	base, target, _ := testImages(t, 40, 40)
	if _, err := j.Compose(base, target, nil, DefaultOptions()); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if canvas.DrawImageCalls != 2 {
		t.Errorf("expected 2 panels, got %d", canvas.DrawImageCalls)
	}
}

func TestCompose_NoLabels(t *testing.T) {
	var canvas *mocks.Canvas
	renderer := &mocks.Renderer{
		CreateCanvasFunc: func(width, height int, bg color.Color) ports.Canvas {
			canvas = &mocks.Canvas{}
			return canvas
		},
	}
	j := New(renderer, mocks.NewFileSystem())

	opts := DefaultOptions()
	opts.Labels = false
	base, target, diff := testImages(t, 20, 20)
	if _, err := j.Compose(base, target, diff, opts); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if canvas.DrawTextCalls != 0 {
		t.Errorf("expected no captions, got %d", canvas.DrawTextCalls)
	}
}

func TestCompose_ScalesWidePanels(t *testing.T) {
	resized := 0
	renderer := &mocks.Renderer{
		ResizeImageFunc: func(img image.Image, width, height int) image.Image {
			resized++
			if width != 100 {
				t.Errorf("expected panels scaled to 100px, got %d", width)
			}
			return image.NewRGBA(image.Rect(0, 0, width, height))
		},
	}
	j := New(renderer, mocks.NewFileSystem())

	opts := DefaultOptions()
	opts.MaxPanelWidth = 100
	base, target, diff := testImages(t, 200, 100)
	if _, err := j.Compose(base, target, diff, opts); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if resized != 3 {
		t.Errorf("expected all panels resized, got %d", resized)
	}
}

func TestCompose_MissingInputs(t *testing.T) {
	j := New(&mocks.Renderer{}, mocks.NewFileSystem())
	base, _, _ := testImages(t, 10, 10)

	if _, err := j.Compose(nil, base, nil, DefaultOptions()); err == nil {
		t.Error("expected an error without a base image")
	}
	if _, err := j.Compose(base, nil, nil, DefaultOptions()); err == nil {
		t.Error("expected an error without a target image")
	}
}

func TestWriteFile(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image) ([]byte, error) {
			return []byte("png-bytes"), nil
		},
	}
	j := New(renderer, fs)

	base, target, diff := testImages(t, 10, 10)
	if err := j.WriteFile("sheet.png", base, target, diff, DefaultOptions()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, ok := fs.GetFile("sheet.png")
	if !ok || string(data) != "png-bytes" {
		t.Errorf("expected the encoded sheet to be written, got %q ok=%v", data, ok)
	}
}

func TestWriteFile_EncodeFailure(t *testing.T) {
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image) ([]byte, error) {
			return nil, errors.New("encode broken")
		},
	}
	j := New(renderer, mocks.NewFileSystem())

	base, target, _ := testImages(t, 10, 10)
	if err := j.WriteFile("sheet.png", base, target, nil, DefaultOptions()); err == nil {
		t.Error("expected the encode error to propagate")
	}
}
