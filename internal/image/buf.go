package image

import "errors"

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrInvalidStride is returned when stride is less than minimum required.
	ErrInvalidStride = errors.New("image: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// ImageBuf is a pixel buffer with an explicit row stride.
//
// The stride may exceed width*BytesPerPixel; every accessor honors it.
// An ImageBuf created by FromRaw borrows caller memory and never reallocates.
//
// Thread safety: ImageBuf is safe for concurrent read access. Writes require
// external synchronization.
type ImageBuf struct {
	data   []byte
	width  int
	height int
	stride int
	format Format
}

// NewImageBuf creates a new image buffer with the given dimensions and format.
// Returns an error if dimensions are invalid or format is unknown.
func NewImageBuf(width, height int, format Format) (*ImageBuf, error) {
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	return NewImageBufWithStride(width, height, format, format.RowBytes(width))
}

// NewImageBufWithStride creates a new image buffer with custom stride for alignment.
// Stride must be at least format.RowBytes(width).
func NewImageBufWithStride(width, height int, format Format, stride int) (*ImageBuf, error) {
	if err := validate(width, height, format, stride); err != nil {
		return nil, err
	}
	return &ImageBuf{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// FromRaw creates an ImageBuf from existing data without copying.
// The caller must ensure data remains valid for the lifetime of the ImageBuf.
// Stride must be at least format.RowBytes(width); the last row only needs
// RowBytes(width) bytes, so a tightly cut sub-slice is accepted.
func FromRaw(data []byte, width, height int, format Format, stride int) (*ImageBuf, error) {
	if err := validate(width, height, format, stride); err != nil {
		return nil, err
	}
	required := (height-1)*stride + format.RowBytes(width)
	if len(data) < required {
		return nil, ErrDataTooSmall
	}
	end := min(len(data), stride*height)
	return &ImageBuf{
		data:   data[:end],
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

func validate(width, height int, format Format, stride int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if !format.IsValid() {
		return ErrInvalidFormat
	}
	if stride < format.RowBytes(width) {
		return ErrInvalidStride
	}
	return nil
}

// Clone creates a deep copy of the image buffer with the same stride.
func (b *ImageBuf) Clone() *ImageBuf {
	newData := make([]byte, len(b.data))
	copy(newData, b.data)
	return &ImageBuf{
		data:   newData,
		width:  b.width,
		height: b.height,
		stride: b.stride,
		format: b.format,
	}
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int {
	return b.width
}

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int {
	return b.height
}

// Stride returns the number of bytes per row (including padding).
func (b *ImageBuf) Stride() int {
	return b.stride
}

// Format returns the pixel format.
func (b *ImageBuf) Format() Format {
	return b.format
}

// Bounds returns the image dimensions as (width, height).
func (b *ImageBuf) Bounds() (int, int) {
	return b.width, b.height
}

// Data returns the raw pixel data slice, padding included.
func (b *ImageBuf) Data() []byte {
	return b.data
}

// RowBytes returns the pixel bytes of row y without padding.
// Returns nil if y is out of bounds.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.data[start : start+b.format.RowBytes(b.width)]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (b *ImageBuf) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*b.format.BytesPerPixel()
}

// PixelBytes returns a slice of the raw bytes for pixel (x, y).
// Returns nil if coordinates are out of bounds.
func (b *ImageBuf) PixelBytes(x, y int) []byte {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return nil
	}
	return b.data[offset : offset+b.format.BytesPerPixel()]
}

// GetRGBA returns the color at (x, y) as (r, g, b, a) in 0-255 range.
// RGBX pixels report a=255. A8 masks report white with the coverage as alpha.
// Indexed8 pixels report the index in every color channel; resolve them
// through a palette instead. Returns zeros if (x, y) is out of bounds.
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8) {
	p := b.PixelBytes(x, y)
	if p == nil {
		return 0, 0, 0, 0
	}
	return DecodePixel(p, b.format)
}

// SetRGBA stores the color at (x, y).
// Returns ErrOutOfBounds if coordinates are outside image bounds.
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	p := b.PixelBytes(x, y)
	if p == nil {
		return ErrOutOfBounds
	}
	EncodePixel(p, b.format, r, g, bl, a)
	return nil
}

// DecodePixel reads one pixel of format f from p.
func DecodePixel(p []byte, f Format) (r, g, b, a uint8) {
	switch f {
	case FormatRGBX8888:
		return p[3], p[2], p[1], 0xFF
	case FormatRGBA8:
		return p[0], p[1], p[2], p[3]
	case FormatBGRA8:
		return p[2], p[1], p[0], p[3]
	case FormatA8:
		return 0xFF, 0xFF, 0xFF, p[0]
	case FormatIndexed8:
		return p[0], p[0], p[0], 0xFF
	default:
		return 0, 0, 0, 0
	}
}

// EncodePixel writes one pixel of format f into p.
// RGBX pixels get X=0xFF. A8 keeps only alpha. Indexed8 stores r as the index.
func EncodePixel(p []byte, f Format, r, g, b, a uint8) {
	switch f {
	case FormatRGBX8888:
		p[0], p[1], p[2], p[3] = 0xFF, b, g, r
	case FormatRGBA8:
		p[0], p[1], p[2], p[3] = r, g, b, a
	case FormatBGRA8:
		p[0], p[1], p[2], p[3] = b, g, r, a
	case FormatA8:
		p[0] = a
	case FormatIndexed8:
		p[0] = r
	}
}

// Clear sets all bytes to zero, padding included.
func (b *ImageBuf) Clear() {
	clear(b.data)
}

// Fill sets all pixels to the given RGBA color.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	bpp := b.format.BytesPerPixel()
	for y := range b.height {
		row := b.RowBytes(y)
		for off := 0; off < len(row); off += bpp {
			EncodePixel(row[off:off+bpp], b.format, r, g, bl, a)
		}
	}
}

// SubImage returns a view into a rectangular region of the image.
// The returned ImageBuf shares the underlying data with the original.
// Returns nil if the bounds are invalid or outside the image.
func (b *ImageBuf) SubImage(x, y, width, height int) *ImageBuf {
	if x < 0 || y < 0 || width <= 0 || height <= 0 {
		return nil
	}
	if x+width > b.width || y+height > b.height {
		return nil
	}

	bpp := b.format.BytesPerPixel()
	offset := y*b.stride + x*bpp
	endOffset := (y+height-1)*b.stride + (x+width)*bpp

	return &ImageBuf{
		data:   b.data[offset:endOffset],
		width:  width,
		height: height,
		stride: b.stride,
		format: b.format,
	}
}

// SharesMemory reports whether b and o are views over the same backing array.
// Views created by FromRaw or SubImage over one buffer share memory.
func (b *ImageBuf) SharesMemory(o *ImageBuf) bool {
	if b == o {
		return true
	}
	if b == nil || o == nil || cap(b.data) == 0 || cap(o.data) == 0 {
		return false
	}
	// Compare the ends of the backing arrays; SubImage views keep the
	// parent's capacity tail.
	be := b.data[:cap(b.data)]
	oe := o.data[:cap(o.data)]
	return &be[len(be)-1] == &oe[len(oe)-1]
}

// ByteSize returns the total size of the image data in bytes.
func (b *ImageBuf) ByteSize() int {
	return len(b.data)
}

// IsEmpty returns true if the image has zero dimensions.
func (b *ImageBuf) IsEmpty() bool {
	return b.width == 0 || b.height == 0
}
