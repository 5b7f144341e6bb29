package image

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestEncodeDecodePNG(t *testing.T) {
	src, _ := NewImageBuf(3, 2, FormatRGBX8888)
	_ = src.SetRGBA(2, 1, 10, 20, 30, 255)

	var out bytes.Buffer
	if err := src.EncodePNG(&out); err != nil {
		t.Fatal(err)
	}

	got, pal, err := DecodePNG(&out)
	if err != nil {
		t.Fatal(err)
	}
	if pal != nil {
		t.Error("truecolor PNG should not return a palette")
	}
	if got.Format() != FormatRGBA8 || got.Width() != 3 || got.Height() != 2 {
		t.Fatalf("decoded %v %dx%d", got.Format(), got.Width(), got.Height())
	}
	if r, g, b, a := got.GetRGBA(2, 1); r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("pixel = %d,%d,%d,%d", r, g, b, a)
	}
}

func TestDecodePNGPaletted(t *testing.T) {
	pal := color.Palette{color.Black, color.RGBA{R: 255, A: 255}}
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
	img.SetColorIndex(1, 1, 1)

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		t.Fatal(err)
	}

	got, gotPal, err := DecodePNG(&out)
	if err != nil {
		t.Fatal(err)
	}
	if got.Format() != FormatIndexed8 {
		t.Fatalf("Format() = %v, want Indexed8", got.Format())
	}
	if len(gotPal) != 2 {
		t.Errorf("palette length = %d, want 2", len(gotPal))
	}
	if idx := got.PixelBytes(1, 1)[0]; idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode() should fail on garbage")
	}
}
