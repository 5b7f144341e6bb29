package canvas

import (
	"fmt"

	"github.com/gogpu/framekit"
	intImage "github.com/gogpu/framekit/internal/image"
)

// Canvas is a drawing surface over one pixel buffer.
type Canvas struct {
	buf       *intImage.ImageBuf
	format    Format
	scissor   framekit.Rect
	scissorOn bool
}

// New allocates a zeroed canvas that owns its memory.
func New(width, height int, format Format) (*Canvas, error) {
	if !format.valid() {
		return nil, fmt.Errorf("%w: format %d", ErrInvalidCanvas, format)
	}
	buf, err := intImage.NewImageBuf(width, height, format.internal())
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrInvalidCanvas, framekit.ErrInvalidArgument, err)
	}
	return &Canvas{buf: buf, format: format}, nil
}

// FromRaw wraps caller memory without copying. Stride is in bytes and may
// exceed width times the pixel size.
func FromRaw(data []byte, width, height, stride int, format Format) (*Canvas, error) {
	if !format.valid() {
		return nil, fmt.Errorf("%w: format %d", ErrInvalidCanvas, format)
	}
	buf, err := intImage.FromRaw(data, width, height, format.internal(), stride)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrInvalidCanvas, framekit.ErrInvalidArgument, err)
	}
	return &Canvas{buf: buf, format: format}, nil
}

func wrap(buf *intImage.ImageBuf) *Canvas {
	f, ok := fromInternal(buf.Format())
	if !ok {
		return nil
	}
	return &Canvas{buf: buf, format: f}
}

// Width returns the width in pixels.
func (c *Canvas) Width() int { return c.buf.Width() }

// Height returns the height in pixels.
func (c *Canvas) Height() int { return c.buf.Height() }

// Stride returns the number of bytes between the starts of two rows.
func (c *Canvas) Stride() int { return c.buf.Stride() }

// Format returns the pixel format.
func (c *Canvas) Format() Format { return c.format }

// Bytes returns the underlying pixel memory, row padding included.
// For a borrowed canvas this is the caller's slice.
func (c *Canvas) Bytes() []byte { return c.buf.Data() }

// Bounds returns the full canvas rectangle.
func (c *Canvas) Bounds() framekit.Rect {
	return framekit.RectXYWH(0, 0, c.buf.Width(), c.buf.Height())
}

// SharesMemory reports whether c and o are views over the same memory.
func (c *Canvas) SharesMemory(o *Canvas) bool {
	if c == nil || o == nil {
		return false
	}
	return c.buf.SharesMemory(o.buf)
}

// Pixel returns the color at (x, y). RGBX pixels are opaque, A8 pixels are
// white with the coverage as alpha and Indexed8 pixels report the index in
// every color channel. Out-of-range coordinates return Transparent.
func (c *Canvas) Pixel(x, y int) framekit.Color {
	p := c.buf.PixelBytes(x, y)
	if p == nil {
		return framekit.Transparent
	}
	r, g, b, a := intImage.DecodePixel(p, c.buf.Format())
	return framekit.Color{R: r, G: g, B: b, A: a}
}

// SetPixel writes one pixel, replacing its value. Clipped like every other
// write.
func (c *Canvas) SetPixel(x, y int, col framekit.Color) {
	if !c.clip().Contains(framekit.Pt(x, y)) {
		return
	}
	intImage.EncodePixel(c.buf.PixelBytes(x, y), c.buf.Format(), col.R, col.G, col.B, col.A)
}

// SetScissor restricts all subsequent writes to r. An empty rectangle
// suppresses every write until the scissor is cleared.
func (c *Canvas) SetScissor(r framekit.Rect) {
	c.scissor = r
	c.scissorOn = true
}

// ClearScissor removes the scissor rectangle.
func (c *Canvas) ClearScissor() {
	c.scissor = framekit.Rect{}
	c.scissorOn = false
}

// Scissor returns the active scissor rectangle and whether one is set.
func (c *Canvas) Scissor() (framekit.Rect, bool) {
	return c.scissor, c.scissorOn
}

// clip returns the writable region: bounds intersected with the scissor.
func (c *Canvas) clip() framekit.Rect {
	b := c.Bounds()
	if c.scissorOn {
		return b.Intersect(c.scissor)
	}
	return b
}

// Clear zeroes the whole buffer, ignoring the scissor.
func (c *Canvas) Clear() {
	c.buf.Clear()
}

// ReplacePixels copies every pixel of src into c. Both must have the same
// dimensions and format. The scissor is ignored.
func (c *Canvas) ReplacePixels(src *Canvas) error {
	if src == nil || src.format != c.format || src.Width() != c.Width() || src.Height() != c.Height() {
		return ErrFormatMismatch
	}
	for y := range c.Height() {
		copy(c.buf.RowBytes(y), src.buf.RowBytes(y))
	}
	return nil
}

// Clone returns a canvas owning a copy of c's pixels. The scissor is not copied.
func (c *Canvas) Clone() *Canvas {
	return &Canvas{buf: c.buf.Clone(), format: c.format}
}

// String describes the canvas for logs.
func (c *Canvas) String() string {
	return fmt.Sprintf("Canvas(%dx%d %s stride=%d)", c.Width(), c.Height(), c.format, c.Stride())
}
