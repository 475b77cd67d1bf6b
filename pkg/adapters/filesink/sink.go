// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"path/filepath"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
	encoder ports.ImageEncoder
}

// New creates a new Sink writing under baseDir. Images are saved with
// the given encoder, normally PNG.
func New(baseDir string, fs ports.FileSystem, encoder ports.ImageEncoder) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
		encoder: encoder,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveDecodedInput saves a decoded input image.
func (s *Sink) SaveDecodedInput(index int, img *rawimage.Image) error {
	return s.saveImage(fmt.Sprintf("input-%d.png", index), img)
}

// SaveDiffImage saves the rendered diff overlay.
func (s *Sink) SaveDiffImage(img *rawimage.Image) error {
	return s.saveImage("diff.png", img)
}

// SaveResultJSON saves the comparison result as JSON.
func (s *Sink) SaveResultJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "result.json")
	return s.fs.WriteFile(path, data)
}

func (s *Sink) saveImage(name string, img *rawimage.Image) error {
	data, err := s.encoder.Encode(img, 0)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, name), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
