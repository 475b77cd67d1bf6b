package mocks

import (
	"image"
	"image/color"

	"github.com/user/pixdiff/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (m *Renderer) EncodeImage(img image.Image) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas. It records draw
// calls and exposes the backing image for verification.
type Canvas struct {
	img *image.RGBA

	DrawImageCalls int
	DrawRectCalls  int
	DrawTextCalls  int
	Texts          []string
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {
	m.DrawImageCalls++
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	m.DrawRectCalls++
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.DrawTextCalls++
	m.Texts = append(m.Texts, text)
}

func (m *Canvas) ToImage() image.Image {
	return m.img
}

var _ ports.Canvas = (*Canvas)(nil)
