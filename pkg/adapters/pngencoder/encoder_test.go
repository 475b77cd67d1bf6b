package pngencoder

import (
	"bytes"
	"image"
	"image/png"
	"math/rand"
	"testing"

	"github.com/user/pixdiff/pkg/rawimage"
)

func TestEncode_Roundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	img, _ := rawimage.New(9, 7)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}

	data, err := New().Encode(img, 6)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// The standard library decoder is the oracle here.
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output does not parse as PNG: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 9 || bounds.Dy() != 7 {
		t.Fatalf("expected 9x7, got %dx%d", bounds.Dx(), bounds.Dy())
	}
	nrgba, ok := decoded.(*image.NRGBA)
	if !ok {
		t.Fatalf("expected truecolor-alpha output, got %T", decoded)
	}
	for y := 0; y < 7; y++ {
		for x := 0; x < 9; x++ {
			wr, wg, wb, wa := img.At(uint32(x), uint32(y))
			c := nrgba.NRGBAAt(x, y)
			if c.R != wr || c.G != wg || c.B != wb || c.A != wa {
				t.Fatalf("pixel (%d,%d): expected (%d %d %d %d), got %+v", x, y, wr, wg, wb, wa, c)
			}
		}
	}
}

func TestEncode_EmptyImage(t *testing.T) {
	img := &rawimage.Image{}
	if _, err := New().Encode(img, 6); err == nil {
		t.Error("expected an error for an empty image")
	}
}

func TestEncode_LevelClamping(t *testing.T) {
	img, _ := rawimage.New(4, 4)
	for _, level := range []int{-5, 0, 9, 42} {
		data, err := New().Encode(img, level)
		if err != nil {
			t.Fatalf("level %d: Encode failed: %v", level, err)
		}
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			t.Errorf("level %d: output does not parse as PNG: %v", level, err)
		}
	}
}
