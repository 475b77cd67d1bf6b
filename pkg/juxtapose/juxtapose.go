// Package juxtapose renders a base image, a candidate image, and their
// diff side by side on one review sheet.
package juxtapose

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// Options configures the review sheet.
type Options struct {
	// Gap is the horizontal gap between panels in pixels.
	Gap int
	// Padding is the outer margin in pixels.
	Padding int
	// MaxPanelWidth scales panels down when the images are wider.
	// Zero means no scaling.
	MaxPanelWidth int
	// Labels enables the panel captions.
	Labels bool
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Gap:           10,
		Padding:       16,
		MaxPanelWidth: 640,
		Labels:        true,
	}
}

var (
	background = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	labelColor = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

const labelHeight = 18

// Juxtaposer composes review sheets.
type Juxtaposer struct {
	renderer ports.Renderer
	fs       ports.FileSystem
}

// New creates a Juxtaposer with the given adapters.
func New(renderer ports.Renderer, fs ports.FileSystem) *Juxtaposer {
	return &Juxtaposer{renderer: renderer, fs: fs}
}

// Compose renders the three images onto one canvas. The diff panel may
// be nil, producing a two-panel sheet.
func (j *Juxtaposer) Compose(base, target, diff *rawimage.Image, opts Options) (image.Image, error) {
	if base == nil || target == nil {
		return nil, fmt.Errorf("juxtapose: base and target are required")
	}

	panels := []struct {
		label string
		img   *rawimage.Image
	}{
		{"base", base},
		{"target", target},
	}
	if diff != nil {
		panels = append(panels, struct {
			label string
			img   *rawimage.Image
		}{"diff", diff})
	}

	// All panels share one scale so pixel rows stay aligned.
	pw, ph := 0, 0
	for _, p := range panels {
		pw = max(pw, int(p.img.Width))
		ph = max(ph, int(p.img.Height))
	}
	if pw == 0 || ph == 0 {
		return nil, fmt.Errorf("juxtapose: empty images")
	}
	scale := 1.0
	if opts.MaxPanelWidth > 0 && pw > opts.MaxPanelWidth {
		scale = float64(opts.MaxPanelWidth) / float64(pw)
		pw = opts.MaxPanelWidth
		ph = int(float64(ph)*scale + 0.5)
	}

	captionH := 0
	if opts.Labels {
		captionH = labelHeight
	}

	width := opts.Padding*2 + pw*len(panels) + opts.Gap*(len(panels)-1)
	height := opts.Padding*2 + captionH + ph

	canvas := j.renderer.CreateCanvas(width, height, background)

	x := opts.Padding
	for _, p := range panels {
		var img image.Image = p.img.NRGBA()
		if scale != 1.0 {
			w := int(float64(p.img.Width)*scale + 0.5)
			h := int(float64(p.img.Height)*scale + 0.5)
			img = j.renderer.ResizeImage(img, w, h)
		}
		if opts.Labels {
			canvas.DrawText(p.label, x, opts.Padding+labelHeight/2, ports.TextStyle{
				FontSize: 12,
				Color:    labelColor,
			})
		}
		canvas.DrawImage(img, x, opts.Padding+captionH)
		x += pw + opts.Gap
	}

	return canvas.ToImage(), nil
}

// WriteFile composes the sheet and writes it as PNG to path.
func (j *Juxtaposer) WriteFile(path string, base, target, diff *rawimage.Image, opts Options) error {
	sheet, err := j.Compose(base, target, diff, opts)
	if err != nil {
		return err
	}
	data, err := j.renderer.EncodeImage(sheet)
	if err != nil {
		return fmt.Errorf("juxtapose: %w", err)
	}
	if err := j.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("juxtapose: write output: %w", err)
	}
	return nil
}
