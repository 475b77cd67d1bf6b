package ports

import (
	"github.com/user/pixdiff/pkg/rawimage"
)

// ImageConfig describes the declared geometry of an encoded image,
// learned from its structural header without materializing pixels.
type ImageConfig struct {
	Width  uint32
	Height uint32
}

// DecodeEngine abstracts one image codec as a capability. An engine is
// stateless and safe for concurrent use; all per-decode state lives in
// the session it creates.
type DecodeEngine interface {
	// Sniff reports whether src starts with this engine's format
	// signature. It never reads beyond the magic bytes.
	Sniff(src []byte) bool

	// NewSession acquires a decode session over the source buffer.
	// The source is borrowed read-only for the session's lifetime and
	// never retained past Close.
	NewSession(src []byte) (DecodeSession, error)
}

// DecodeSession is one decode attempt over one source buffer. Sessions
// are never shared across calls and never reused; Close must be called
// on every path once a session has been acquired.
type DecodeSession interface {
	// DecodeConfig parses just enough of the source to learn the
	// image dimensions. It does not touch the compressed pixel
	// payload and writes nothing into any destination.
	DecodeConfig() (ImageConfig, error)

	// WorkbufLen reports an upper bound on the transient working
	// memory DecodeFrame needs for this specific image. Only valid
	// after a successful DecodeConfig. Zero means no scratch needed.
	WorkbufLen() uint64

	// DecodeFrame reconstructs the full first frame into dst using
	// replace blending. workbuf must be at least WorkbufLen bytes;
	// its contents are opaque scratch and hold nothing after return.
	// On error, dst may have been partially written.
	DecodeFrame(dst *rawimage.Image, workbuf []byte) error

	// Close releases all session resources.
	Close()
}

// ImageEncoder abstracts encoding an RGBA image to a byte stream.
type ImageEncoder interface {
	// Encode serializes img. The meaning of quality depends on the
	// codec: PNG compression level 0-9, JPEG quality 1-100.
	Encode(img *rawimage.Image, quality int) ([]byte, error)
}
