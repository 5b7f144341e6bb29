package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("image: empty data")

// Decode decodes a registered image format (PNG is always available) into
// an RGBA8 buffer.
func Decode(r io.Reader) (*ImageBuf, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyData
	}
	return FromStdImage(img), nil
}

// DecodePNG decodes a PNG image. Paletted PNGs keep their indices and
// return the palette alongside; all others convert to RGBA8 with a nil palette.
func DecodePNG(r io.Reader) (*ImageBuf, color.Palette, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, nil, fmt.Errorf("image: decode PNG: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, nil, ErrEmptyData
	}
	if p, ok := img.(*image.Paletted); ok {
		return fromPaletted(p), p.Palette, nil
	}
	return FromStdImage(img), nil, nil
}

// EncodePNG writes b as PNG. Indexed buffers are written as grayscale indices.
func (b *ImageBuf) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToStdImage()); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

func fromPaletted(p *image.Paletted) *ImageBuf {
	bounds := p.Bounds()
	buf, _ := NewImageBuf(bounds.Dx(), bounds.Dy(), FormatIndexed8)
	for y := range buf.height {
		start := y * p.Stride
		copy(buf.RowBytes(y), p.Pix[start:start+buf.width])
	}
	return buf
}

// FromStdImage creates an RGBA8 ImageBuf from a standard library image.
func FromStdImage(img image.Image) *ImageBuf {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	buf, err := NewImageBuf(width, height, FormatRGBA8)
	if err != nil {
		return nil
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range height {
			start := y * nrgba.Stride
			copy(buf.RowBytes(y), nrgba.Pix[start:start+width*4])
		}
		return buf
	}

	// Generic path un-premultiplies through color.NRGBAModel.
	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			_ = buf.SetRGBA(x, y, c.R, c.G, c.B, c.A)
		}
	}
	return buf
}

// ToStdImage converts the buffer to a standard library image.
// Color formats become *image.NRGBA, A8 becomes *image.Alpha and
// Indexed8 becomes *image.Gray holding the raw indices.
func (b *ImageBuf) ToStdImage() image.Image {
	rect := image.Rect(0, 0, b.width, b.height)

	switch b.format {
	case FormatA8:
		alpha := image.NewAlpha(rect)
		for y := range b.height {
			copy(alpha.Pix[y*alpha.Stride:], b.RowBytes(y))
		}
		return alpha

	case FormatIndexed8:
		gray := image.NewGray(rect)
		for y := range b.height {
			copy(gray.Pix[y*gray.Stride:], b.RowBytes(y))
		}
		return gray

	case FormatRGBA8:
		nrgba := image.NewNRGBA(rect)
		for y := range b.height {
			copy(nrgba.Pix[y*nrgba.Stride:], b.RowBytes(y))
		}
		return nrgba

	default:
		nrgba := image.NewNRGBA(rect)
		for y := range b.height {
			row := b.RowBytes(y)
			dst := nrgba.Pix[y*nrgba.Stride:]
			for x := range b.width {
				r, g, bl, a := DecodePixel(row[x*4:], b.format)
				dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = r, g, bl, a
			}
		}
		return nrgba
	}
}
