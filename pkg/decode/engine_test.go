package decode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"
	"testing"

	"github.com/user/pixdiff/pkg/adapters/pngengine"
	"github.com/user/pixdiff/pkg/adapters/qoiengine"
)

// pngFixture encodes a w x h PNG, filling each pixel from fill.
func pngFixture(t *testing.T, w, h int, fill func(x, y int) color.NRGBA) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeInto_ConcurrentCalls(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	src := pngFixture(t, 48, 32, func(x, y int) color.NRGBA {
		return color.NRGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: 255,
		}
	})
	o := New(pngengine.New(), Options{})

	ref := make([]byte, 48*32*4)
	if status, _, _ := o.DecodeInto(src, ref); status != StatusOK {
		t.Fatalf("reference decode: expected StatusOK, got %v", status)
	}

	// Calls share no state, so independent destinations must all come
	// out byte-identical.
	const calls = 8
	results := make([][]byte, calls)
	statuses := make([]Status, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dst := make([]byte, len(ref))
			statuses[i], _, _ = o.DecodeInto(src, dst)
			results[i] = dst
		}(i)
	}
	wg.Wait()

	for i := 0; i < calls; i++ {
		if statuses[i] != StatusOK {
			t.Fatalf("call %d: expected StatusOK, got %v", i, statuses[i])
		}
		if !bytes.Equal(results[i], ref) {
			t.Errorf("call %d: pixel output differs from reference", i)
		}
	}
}

func TestDecodeInto_CorruptPayload(t *testing.T) {
	green := color.NRGBA{R: 10, G: 200, B: 30, A: 255}
	src := pngFixture(t, 64, 64, func(x, y int) color.NRGBA { return green })
	o := New(pngengine.New(), Options{})

	dst := make([]byte, 64*64*4)
	if status, _, _ := o.DecodeInto(src, dst); status != StatusOK {
		t.Fatalf("baseline decode: expected StatusOK, got %v", status)
	}

	// Flip single bytes in the middle of the compressed pixel stream.
	// A flip may survive inflate by landing on redundant bits, so a
	// window of offsets is tried; at least one must break the frame,
	// and none may report anything but OK or a frame failure.
	failed := false
	for off := len(src)/2 - 4; off < len(src)/2+4; off++ {
		corrupt := append([]byte(nil), src...)
		corrupt[off] ^= 0xff

		status, w, h := o.DecodeInto(corrupt, dst)
		switch status {
		case StatusDecodeFailed:
			failed = true
			if w != 64 || h != 64 {
				t.Errorf("offset %d: expected probed dimensions 64x64, got %dx%d", off, w, h)
			}
		case StatusOK:
		default:
			t.Fatalf("offset %d: unexpected status %v", off, status)
		}

		// The header chunks are untouched, so probing still succeeds
		// with the real dimensions.
		if status, w, h := o.ProbeDimensions(corrupt); status != StatusOK || w != 64 || h != 64 {
			t.Fatalf("offset %d: probe returned %v %dx%d", off, status, w, h)
		}
	}
	if !failed {
		t.Error("no corrupted offset produced StatusDecodeFailed")
	}
}

func TestDecodeInto_ZeroDimensions(t *testing.T) {
	src := make([]byte, 0, 22)
	src = append(src, 'q', 'o', 'i', 'f')
	src = append(src, 0, 0, 0, 0) // width
	src = append(src, 0, 0, 0, 0) // height
	src = append(src, 4, 0)       // channels, colorspace
	src = append(src, 0, 0, 0, 0, 0, 0, 0, 1)

	o := New(qoiengine.New(), Options{})

	// A zero-length destination satisfies a zero-size image and no
	// scratch is requested.
	status, w, h := o.DecodeInto(src, nil)
	if status != StatusOK {
		t.Fatalf("expected StatusOK, got %v", status)
	}
	if w != 0 || h != 0 {
		t.Errorf("expected 0x0, got %dx%d", w, h)
	}
}
