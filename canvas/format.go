package canvas

import intImage "github.com/gogpu/framekit/internal/image"

// Format is the pixel layout of a canvas.
type Format uint8

const (
	// RGBX8888 is the framebuffer format: 32 bits per pixel, no alpha,
	// memory order X, B, G, R.
	RGBX8888 Format = iota

	// RGBA8 is 32-bit color with straight alpha, memory order R, G, B, A.
	RGBA8

	// A8 is an 8-bit coverage mask used for glyphs and stencils.
	A8

	// Indexed8 holds 8-bit palette indices resolved at draw time.
	Indexed8
)

var formatMap = [...]intImage.Format{
	RGBX8888: intImage.FormatRGBX8888,
	RGBA8:    intImage.FormatRGBA8,
	A8:       intImage.FormatA8,
	Indexed8: intImage.FormatIndexed8,
}

func (f Format) valid() bool {
	return int(f) < len(formatMap)
}

func (f Format) internal() intImage.Format {
	return formatMap[f]
}

func fromInternal(f intImage.Format) (Format, bool) {
	for i, v := range formatMap {
		if v == f {
			return Format(i), true
		}
	}
	return 0, false
}

// BytesPerPixel returns the storage size of one pixel, or 0 for an unknown format.
func (f Format) BytesPerPixel() int {
	if !f.valid() {
		return 0
	}
	return f.internal().BytesPerPixel()
}

// HasAlpha reports whether pixels of this format carry their own coverage.
func (f Format) HasAlpha() bool {
	return f == RGBA8 || f == A8
}

// String returns the format name.
func (f Format) String() string {
	if !f.valid() {
		return "Unknown"
	}
	return f.internal().String()
}
