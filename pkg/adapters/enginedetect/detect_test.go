package enginedetect

import (
	"errors"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		want Format
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n...."), FormatPNG},
		{"qoi", []byte("qoif............"), FormatQOI},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, FormatJPEG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, format, err := Detect(tt.src)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if format != tt.want {
				t.Errorf("expected %v, got %v", tt.want, format)
			}
			if engine == nil {
				t.Error("expected an engine")
			}
		})
	}
}

func TestDetect_Unknown(t *testing.T) {
	_, format, err := Detect([]byte("GIF89a"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if format != FormatUnknown {
		t.Errorf("expected FormatUnknown, got %v", format)
	}
}

func TestDetect_Empty(t *testing.T) {
	if _, _, err := Detect(nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat for empty input, got %v", err)
	}
}

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"out.png", FormatPNG},
		{"dir/OUT.PNG", FormatPNG},
		{"diff.qoi", FormatQOI},
		{"photo.jpg", FormatJPEG},
		{"photo.jpeg", FormatJPEG},
		{"report.bmp", FormatUnknown},
		{"noext", FormatUnknown},
	}
	for _, tt := range tests {
		if got := FromPath(tt.path); got != tt.want {
			t.Errorf("FromPath(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestFormatString(t *testing.T) {
	if FormatPNG.String() != "png" || FormatQOI.String() != "qoi" || FormatJPEG.String() != "jpeg" {
		t.Error("unexpected format names")
	}
	if FormatUnknown.String() != "unknown" {
		t.Errorf("expected unknown, got %q", FormatUnknown)
	}
}
