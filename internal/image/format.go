// Package image provides the stride-aware pixel buffers that back
// framebuffers, asset images and glyph masks.
package image

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatRGBX8888 is the native framebuffer format: a 32-bit word
	// 0xRRGGBBXX stored little-endian, so memory order is X, B, G, R.
	// The X byte carries no meaning and is never read as alpha.
	FormatRGBX8888 Format = iota

	// FormatRGBA8 is 32-bit RGBA with straight alpha, memory order R, G, B, A.
	// This is the order the software scalers operate on.
	FormatRGBA8

	// FormatBGRA8 is 32-bit BGRA with straight alpha, memory order B, G, R, A.
	// Used for presentation surfaces that report a BGRA swapchain.
	FormatBGRA8

	// FormatA8 is an 8-bit coverage mask (glyphs, stencils).
	FormatA8

	// FormatIndexed8 is an 8-bit palette index resolved through a colormap.
	FormatIndexed8

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// Name is the display name.
	Name string

	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// HasAlpha indicates if the format carries per-pixel alpha.
	HasAlpha bool

	// IsMask indicates a single-channel coverage format.
	IsMask bool

	// IsIndexed indicates palette indices instead of colors.
	IsIndexed bool
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatRGBX8888: {Name: "RGBX8888", BytesPerPixel: 4},
	FormatRGBA8:    {Name: "RGBA8", BytesPerPixel: 4, HasAlpha: true},
	FormatBGRA8:    {Name: "BGRA8", BytesPerPixel: 4, HasAlpha: true},
	FormatA8:       {Name: "A8", BytesPerPixel: 1, HasAlpha: true, IsMask: true},
	FormatIndexed8: {Name: "Indexed8", BytesPerPixel: 1, IsIndexed: true},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// HasAlpha returns true if this format has an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Info().HasAlpha
}

// IsMask returns true for single-channel coverage formats.
func (f Format) IsMask() bool {
	return f.Info().IsMask
}

// IsIndexed returns true for palette formats.
func (f Format) IsIndexed() bool {
	return f.Info().IsIndexed
}

// String returns a string representation of the format.
func (f Format) String() string {
	if !f.IsValid() {
		return "Unknown"
	}
	return formatInfoTable[f].Name
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes calculates the number of bytes needed for a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// ImageBytes calculates the total number of bytes needed for an image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}
