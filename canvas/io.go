package canvas

import (
	"fmt"
	stdimage "image"
	"image/color"
	"io"

	"github.com/gogpu/framekit"
	intImage "github.com/gogpu/framekit/internal/image"
)

// DecodePNG decodes a PNG into a new canvas. Paletted files keep their
// indices and return the palette; everything else becomes RGBA8 with a nil
// palette.
func DecodePNG(r io.Reader) (*Canvas, []framekit.Color, error) {
	buf, pal, err := intImage.DecodePNG(r)
	if err != nil {
		return nil, nil, fmt.Errorf("canvas: %w", err)
	}
	c := wrap(buf)
	if pal == nil {
		return c, nil, nil
	}
	colors := make([]framekit.Color, len(pal))
	for i, p := range pal {
		n := color.NRGBAModel.Convert(p).(color.NRGBA)
		colors[i] = framekit.RGBA(n.R, n.G, n.B, n.A)
	}
	return c, colors, nil
}

// FromImage copies a standard library image into a new RGBA8 canvas.
func FromImage(img stdimage.Image) *Canvas {
	buf := intImage.FromStdImage(img)
	if buf == nil {
		return nil
	}
	return wrap(buf)
}

// ToImage copies the canvas into a standard library image. Color formats
// become *image.NRGBA, A8 becomes *image.Alpha and Indexed8 becomes
// *image.Gray holding the raw indices.
func (c *Canvas) ToImage() stdimage.Image {
	return c.buf.ToStdImage()
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := c.buf.EncodePNG(w); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	return nil
}
