package assets

import (
	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/canvas"
)

// Image is a drawable asset.
type Image struct {
	// Canvas holds the pixels. It is read-only once registered.
	Canvas *canvas.Canvas

	// HotSpot is the point of the image placed at the draw position.
	HotSpot framekit.Point

	// Palette resolves Indexed8 pixels when a command names no colormap.
	Palette []framekit.Color

	// Mipmap is an optional pre-reduced copy used for trilinear draws.
	Mipmap    *Image
	MipmapHot framekit.Point
}

// Glyph is a rendered character.
type Glyph struct {
	// Mask is an A8 coverage canvas.
	Mask *canvas.Canvas

	// HotSpot is the pen position inside Mask, on the baseline.
	HotSpot framekit.Point

	// Advance is the horizontal pen movement after the glyph.
	Advance int
}

// Provider resolves handles for the draw command dispatcher. Every method
// must be safe to call from the render goroutine while producers register
// new assets. Lookups of unknown or deleted handles report false.
type Provider interface {
	Image(ref ImageRef) (*Image, bool)
	DeleteImage(ref ImageRef)
	SetMipmap(img, mip ImageRef, hot framekit.Point)

	Glyph(ref FontCharRef) (*Glyph, bool)

	Palette(ref ColorMapRef) ([]framekit.Color, bool)

	DeleteData(ref DataRef)
}

// PaletteSource supplies colormaps owned elsewhere, such as a fade engine.
type PaletteSource interface {
	Palette(ref ColorMapRef) ([]framekit.Color, bool)
}
