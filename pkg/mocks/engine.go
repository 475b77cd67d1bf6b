package mocks

import (
	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// DecodeEngine is a mock implementation of ports.DecodeEngine. The
// Fail* hooks inject an error at a specific point of the decode
// protocol; by default every step succeeds and DecodeFrame fills the
// destination with the Fill pixel.
type DecodeEngine struct {
	Width  uint32
	Height uint32

	// Workbuf is the scratch requirement the session reports.
	Workbuf uint64

	// Fill is written to every destination pixel on success.
	Fill [4]uint8

	SniffFunc func(src []byte) bool

	FailNewSession  error
	FailConfig      error
	FailDecodeFrame error

	// Recorded state for verification.
	Sessions      int
	ClosedCount   int
	LastWorkbuf   []byte
	DecodedFrames int
}

func (m *DecodeEngine) Sniff(src []byte) bool {
	if m.SniffFunc != nil {
		return m.SniffFunc(src)
	}
	return true
}

func (m *DecodeEngine) NewSession(src []byte) (ports.DecodeSession, error) {
	if m.FailNewSession != nil {
		return nil, m.FailNewSession
	}
	m.Sessions++
	return &decodeSession{engine: m}, nil
}

var _ ports.DecodeEngine = (*DecodeEngine)(nil)

type decodeSession struct {
	engine *DecodeEngine
}

func (s *decodeSession) DecodeConfig() (ports.ImageConfig, error) {
	if err := s.engine.FailConfig; err != nil {
		return ports.ImageConfig{}, err
	}
	return ports.ImageConfig{Width: s.engine.Width, Height: s.engine.Height}, nil
}

func (s *decodeSession) WorkbufLen() uint64 {
	return s.engine.Workbuf
}

func (s *decodeSession) DecodeFrame(dst *rawimage.Image, workbuf []byte) error {
	s.engine.LastWorkbuf = workbuf
	if err := s.engine.FailDecodeFrame; err != nil {
		return err
	}
	f := s.engine.Fill
	for y := uint32(0); y < dst.Height; y++ {
		for x := uint32(0); x < dst.Width; x++ {
			dst.Set(x, y, f[0], f[1], f[2], f[3])
		}
	}
	s.engine.DecodedFrames++
	return nil
}

func (s *decodeSession) Close() {
	s.engine.ClosedCount++
}

var _ ports.DecodeSession = (*decodeSession)(nil)
