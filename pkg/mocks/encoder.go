package mocks

import (
	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// ImageEncoder is a mock implementation of ports.ImageEncoder.
type ImageEncoder struct {
	EncodeFunc func(img *rawimage.Image, quality int) ([]byte, error)

	// Recorded calls for verification
	EncodeCalls int
	LastQuality int
}

func (m *ImageEncoder) Encode(img *rawimage.Image, quality int) ([]byte, error) {
	m.EncodeCalls++
	m.LastQuality = quality
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, quality)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

var _ ports.ImageEncoder = (*ImageEncoder)(nil)
