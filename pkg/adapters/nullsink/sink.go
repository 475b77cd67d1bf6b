// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveDecodedInput does nothing.
func (s *Sink) SaveDecodedInput(index int, img *rawimage.Image) error {
	return nil
}

// SaveDiffImage does nothing.
func (s *Sink) SaveDiffImage(img *rawimage.Image) error {
	return nil
}

// SaveResultJSON does nothing.
func (s *Sink) SaveResultJSON(data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
