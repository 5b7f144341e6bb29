package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/framekit/canvas"
)

func TestUnpackRGBA(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		stride int
		format canvas.Format
		premul bool
		want   []byte
	}{
		{"rgbx", []byte{0x00, 3, 2, 1, 0x00, 6, 5, 4}, 8, canvas.RGBX8888, false,
			[]byte{1, 2, 3, 0xFF, 4, 5, 6, 0xFF}},
		{"rgbx padded", []byte{0x00, 3, 2, 1, 0x00, 6, 5, 4, 9, 9}, 10, canvas.RGBX8888, true,
			[]byte{1, 2, 3, 0xFF, 4, 5, 6, 0xFF}},
		{"rgba straight", []byte{200, 100, 50, 128, 0, 0, 0, 0}, 8, canvas.RGBA8, false,
			[]byte{200, 100, 50, 128, 0, 0, 0, 0}},
		{"rgba premultiplied", []byte{200, 100, 50, 128, 255, 255, 255, 0}, 8, canvas.RGBA8, true,
			[]byte{100, 50, 25, 128, 0, 0, 0, 0}},
		{"a8", []byte{0x40, 0xFF}, 2, canvas.A8, false,
			[]byte{0xFF, 0xFF, 0xFF, 0x40, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, 8)
			if err := UnpackRGBA(dst, tt.src, 2, 1, tt.stride, tt.format, tt.premul); err != nil {
				t.Fatalf("UnpackRGBA() error = %v", err)
			}
			if !slices.Equal(dst, tt.want) {
				t.Errorf("UnpackRGBA() = %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestUnpackRGBAErrors(t *testing.T) {
	if err := UnpackRGBA(make([]byte, 4), []byte{1}, 1, 1, 1, canvas.Indexed8, false); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Indexed8 error = %v, want ErrUnsupportedFormat", err)
	}
	if err := UnpackRGBA(make([]byte, 3), make([]byte, 4), 1, 1, 4, canvas.RGBX8888, false); err == nil {
		t.Error("short destination accepted")
	}
	if err := UnpackRGBA(make([]byte, 8), make([]byte, 4), 2, 1, 8, canvas.RGBX8888, false); err == nil {
		t.Error("short source accepted")
	}
	if SupportsFormat(canvas.Indexed8) || !SupportsFormat(canvas.A8) {
		t.Error("SupportsFormat() mismatch")
	}
}
