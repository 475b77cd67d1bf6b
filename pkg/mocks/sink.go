package mocks

import (
	"sync"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	DecodedInputs map[int]*rawimage.Image
	DiffImage     *rawimage.Image
	ResultJSON    []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		DecodedInputs: make(map[int]*rawimage.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveDecodedInput(index int, img *rawimage.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DecodedInputs[index] = img
	return nil
}

func (m *DebugSink) SaveDiffImage(img *rawimage.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DiffImage = img
	return nil
}

func (m *DebugSink) SaveResultJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultJSON = data
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
