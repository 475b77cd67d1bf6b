// Package decode is the bounded decode front-end around a codec
// engine. It accepts an untrusted source buffer and a caller-owned
// destination buffer and drives one engine session through a strict
// probe, validate, scratch, decode sequence, mapping engine failures
// onto a small closed set of status codes.
//
// The pixel reconstruction itself (chunk grammar, entropy coding,
// filters) belongs to the engine behind ports.DecodeEngine; this
// package only orchestrates it.
package decode

import (
	"errors"
	"math"

	"github.com/user/pixdiff/pkg/ports"
	"github.com/user/pixdiff/pkg/rawimage"
)

// Status is the outcome of a decode call. The set is closed; callers
// can rely on every non-success path returning one of these values.
type Status int

const (
	// StatusOK means the call succeeded and the out-parameters are valid.
	StatusOK Status = 0
	// StatusResourceExhausted means a decode session could not be acquired.
	StatusResourceExhausted Status = 1
	// StatusMalformedInput means the source does not parse as a
	// structurally valid image (truncation, bad magic, inconsistent header).
	StatusMalformedInput Status = 2
	// StatusBufferTooSmall means the destination buffer is smaller than
	// width*height*4 for the probed dimensions.
	StatusBufferTooSmall Status = 3
	// StatusSinkBindFailure means the destination could not be bound as
	// a pixel sink for the probed geometry.
	StatusSinkBindFailure Status = 4
	// StatusScratchFailed means the per-image working memory could not
	// be acquired.
	StatusScratchFailed Status = 5
	// StatusDecodeFailed means the pixel stream could not be fully
	// reconstructed. The destination contents are undefined.
	StatusDecodeFailed Status = 6
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusResourceExhausted:
		return "resource exhausted"
	case StatusMalformedInput:
		return "malformed input"
	case StatusBufferTooSmall:
		return "buffer too small"
	case StatusSinkBindFailure:
		return "sink bind failure"
	case StatusScratchFailed:
		return "scratch allocation failed"
	case StatusDecodeFailed:
		return "decode failed"
	default:
		return "unknown"
	}
}

// Error taxonomy. Every failure returned by this package wraps exactly
// one of these sentinels.
var (
	ErrResourceExhausted = errors.New("decode: resource exhausted")
	ErrMalformedInput    = errors.New("decode: malformed input")
	ErrBufferTooSmall    = errors.New("decode: destination buffer too small")
	ErrSinkBindFailure   = errors.New("decode: pixel sink bind failed")
	ErrDecodeFailure     = errors.New("decode: frame decode failed")
)

// StatusOf maps an error from this package onto its status code.
// A nil error maps to StatusOK.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, errScratch):
		return StatusScratchFailed
	case errors.Is(err, ErrResourceExhausted):
		return StatusResourceExhausted
	case errors.Is(err, ErrMalformedInput):
		return StatusMalformedInput
	case errors.Is(err, ErrBufferTooSmall):
		return StatusBufferTooSmall
	case errors.Is(err, ErrSinkBindFailure):
		return StatusSinkBindFailure
	case errors.Is(err, ErrDecodeFailure):
		return StatusDecodeFailed
	default:
		return StatusDecodeFailed
	}
}

// DefaultScratchLimit bounds the per-image working memory the
// orchestrator will acquire on an engine's behalf. Engines size their
// scratch from untrusted dimensions, so the bound keeps a hostile
// header from turning into an arbitrarily large allocation.
const DefaultScratchLimit = 1 << 30

// Options configures an Orchestrator.
type Options struct {
	// ScratchLimit overrides DefaultScratchLimit when positive.
	ScratchLimit uint64
}

// Orchestrator drives decode sessions for one engine. It is stateless
// between calls; concurrent calls need no coordination as long as each
// supplies its own buffers.
type Orchestrator struct {
	engine       ports.DecodeEngine
	scratchLimit uint64
}

// New creates an Orchestrator over the given engine.
func New(engine ports.DecodeEngine, opts Options) *Orchestrator {
	limit := opts.ScratchLimit
	if limit == 0 {
		limit = DefaultScratchLimit
	}
	return &Orchestrator{
		engine:       engine,
		scratchLimit: limit,
	}
}

// ProbeDimensions parses only the structural header of src and reports
// the declared image dimensions. It never writes pixels anywhere.
// Width and height are only meaningful when the status is StatusOK.
func (o *Orchestrator) ProbeDimensions(src []byte) (Status, uint32, uint32) {
	cfg, err := o.probe(src)
	if err != nil {
		return StatusOf(err), 0, 0
	}
	return StatusOK, cfg.Width, cfg.Height
}

// Probe is ProbeDimensions with an error result instead of a status,
// for callers composing with the rest of the pipeline.
func (o *Orchestrator) Probe(src []byte) (ports.ImageConfig, error) {
	return o.probe(src)
}

func (o *Orchestrator) probe(src []byte) (ports.ImageConfig, error) {
	sess, err := o.engine.NewSession(src)
	if err != nil {
		return ports.ImageConfig{}, wrap(ErrResourceExhausted, err)
	}
	defer sess.Close()

	cfg, err := sess.DecodeConfig()
	if err != nil {
		return ports.ImageConfig{}, wrap(ErrMalformedInput, err)
	}
	return cfg, nil
}

// DecodeInto decodes the first frame of src into dst as RGBA,
// non-premultiplied, alpha last, using replace blending. dst must be
// at least width*height*4 bytes for the image's declared dimensions.
// On any non-OK status dst may have been partially written and must be
// treated as undefined. Width and height are populated on StatusOK.
func (o *Orchestrator) DecodeInto(src, dst []byte) (Status, uint32, uint32) {
	cfg, err := o.decodeInto(src, dst)
	return StatusOf(err), cfg.Width, cfg.Height
}

// Decode probes src, allocates an exactly sized destination and
// decodes into it. This is the two-call protocol packaged for callers
// that do not manage their own buffers.
func (o *Orchestrator) Decode(src []byte) (*rawimage.Image, error) {
	cfg, err := o.probe(src)
	if err != nil {
		return nil, err
	}
	img, err := rawimage.New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, wrap(ErrResourceExhausted, err)
	}
	if _, err := o.decodeInto(src, img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}

func (o *Orchestrator) decodeInto(src, dst []byte) (ports.ImageConfig, error) {
	sess, err := o.engine.NewSession(src)
	if err != nil {
		return ports.ImageConfig{}, wrap(ErrResourceExhausted, err)
	}
	defer sess.Close()

	cfg, err := sess.DecodeConfig()
	if err != nil {
		return ports.ImageConfig{}, wrap(ErrMalformedInput, err)
	}

	required, ok := rawimage.PixelBytes(cfg.Width, cfg.Height)
	if !ok || uint64(len(dst)) < required {
		// An overflowing requirement can never be satisfied by any
		// real buffer, so it reports the same way as a short one.
		return cfg, ErrBufferTooSmall
	}

	workbufLen := sess.WorkbufLen()
	var workbuf []byte
	if workbufLen > 0 {
		if workbufLen > o.scratchLimit || workbufLen > math.MaxInt {
			return cfg, errScratch
		}
		workbuf = make([]byte, workbufLen)
	}

	sink, err := rawimage.BindRGBA(dst, cfg.Width, cfg.Height)
	if err != nil {
		// Guarded separately from the length check above: a bind
		// failure here is an internal geometry inconsistency, not a
		// caller sizing mistake.
		return cfg, wrap(ErrSinkBindFailure, err)
	}

	if err := sess.DecodeFrame(sink, workbuf); err != nil {
		return cfg, wrap(ErrDecodeFailure, err)
	}
	return cfg, nil
}

// errScratch is a scratch acquisition failure. It satisfies
// errors.Is(err, ErrResourceExhausted) like a session acquisition
// failure but reports StatusScratchFailed at the boundary.
var errScratch = &scratchError{}

type scratchError struct{}

func (e *scratchError) Error() string {
	return "decode: scratch allocation failed"
}

func (e *scratchError) Is(target error) bool {
	return target == errScratch || target == ErrResourceExhausted
}

func wrap(kind, cause error) error {
	return &taggedError{kind: kind, cause: cause}
}

type taggedError struct {
	kind  error
	cause error
}

func (e *taggedError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *taggedError) Is(target error) bool {
	return target == e.kind
}

func (e *taggedError) Unwrap() error {
	return e.cause
}
